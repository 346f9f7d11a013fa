package source

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Retriever fetches posts for one handle and memoizes every successful
// retrieval for its own lifetime. Entries are never evicted; use Reset to
// drop them.
type Retriever struct {
	handle   string
	searcher Searcher

	group singleflight.Group
	mu    sync.Mutex
	cache map[cacheKey][]Post
}

// NewRetriever creates a retriever that searches s on behalf of handle.
func NewRetriever(handle string, s Searcher) *Retriever {
	return &Retriever{
		handle:   handle,
		searcher: s,
		cache:    make(map[cacheKey][]Post),
	}
}

// Handle returns the watched handle.
func (r *Retriever) Handle() string {
	return r.handle
}

// Retrieve returns the posts matching q in the order the searcher produced
// them, keeping at most q.Limit. Repeated calls with the same direction,
// dates and limit hit the searcher once; concurrent identical calls share a
// single search. The shared search outlives the cancellation of any one
// caller, and each caller stops waiting when its own ctx is done. Each
// caller receives its own copy of the slice.
func (r *Retriever) Retrieve(ctx context.Context, q Query) ([]Post, error) {
	key := q.key()
	if posts, ok := r.lookup(key); ok {
		slog.Debug("retrieve: cache hit", "key", key.String(), "posts", len(posts))
		return slices.Clone(posts), nil
	}

	searchCtx := context.WithoutCancel(ctx)
	ch := r.group.DoChan(key.String(), func() (any, error) {
		if posts, ok := r.lookup(key); ok {
			return posts, nil
		}
		posts, err := r.fetch(searchCtx, q)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.cache[key] = posts
		r.mu.Unlock()
		return posts, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			slog.Debug("retrieve: joined in-flight search", "key", key.String())
		}
		return slices.Clone(res.Val.([]Post)), nil
	}
}

// Reset forgets every memoized retrieval.
func (r *Retriever) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.cache)
}

func (r *Retriever) lookup(key cacheKey) ([]Post, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	posts, ok := r.cache[key]
	return posts, ok
}

func (r *Retriever) fetch(ctx context.Context, q Query) ([]Post, error) {
	query := BuildQuery(r.handle, q.Direction, q.Since, q.Until)
	slog.Debug("retrieve: searching", "backend", r.searcher.Name(), "query", query, "limit", q.Limit)

	posts := make([]Post, 0)
	if q.Limit == 0 {
		return posts, nil
	}
	if q.Limit > 0 {
		posts = make([]Post, 0, min(q.Limit, 256))
	}
	for p, err := range r.searcher.Search(ctx, query) {
		if err != nil {
			return nil, fmt.Errorf("%s: search %q: %w", r.searcher.Name(), query, err)
		}
		posts = append(posts, p)
		if q.Limit > 0 && len(posts) >= q.Limit {
			break
		}
	}

	slog.Debug("retrieve: done", "backend", r.searcher.Name(), "query", query, "posts", len(posts))
	return posts, nil
}
