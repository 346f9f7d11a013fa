// Package watch binds one target handle to a search backend, a classifier
// and a summarizer, and derives sentiment, summary and fan rankings from the
// posts it retrieves.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ppiankov/twitterwatch/internal/fans"
	"github.com/ppiankov/twitterwatch/internal/privacy"
	"github.com/ppiankov/twitterwatch/internal/report"
	"github.com/ppiankov/twitterwatch/internal/sentiment"
	"github.com/ppiankov/twitterwatch/internal/source"
	"github.com/ppiankov/twitterwatch/internal/summarize"
)

var (
	// ErrNoClassifier is returned by Sentiment when no classifier is configured.
	ErrNoClassifier = errors.New("watch: no classifier configured")
	// ErrNoSummarizer is returned by Summarize when no summarizer is configured.
	ErrNoSummarizer = errors.New("watch: no summarizer configured")
)

// Watcher monitors a single handle. It is safe for concurrent use; all
// retrievals share one cache.
type Watcher struct {
	retriever  *source.Retriever
	classifier sentiment.Classifier
	summarizer summarize.Summarizer
	labels     []string
	policy     sentiment.MeanPolicy
	redactor   *privacy.Redactor
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithClassifier sets the classifier used by Sentiment.
func WithClassifier(c sentiment.Classifier) Option {
	return func(w *Watcher) { w.classifier = c }
}

// WithSummarizer sets the summarizer used by Summarize.
func WithSummarizer(s summarize.Summarizer) Option {
	return func(w *Watcher) { w.summarizer = s }
}

// WithLabels sets the candidate labels. Defaults to sentiment.DefaultLabels.
func WithLabels(labels ...string) Option {
	return func(w *Watcher) { w.labels = labels }
}

// WithMeanPolicy sets the sentiment averaging policy.
func WithMeanPolicy(p sentiment.MeanPolicy) Option {
	return func(w *Watcher) { w.policy = p }
}

// WithRedactor masks post text before it reaches the classifier or the
// summarizer.
func WithRedactor(r *privacy.Redactor) Option {
	return func(w *Watcher) { w.redactor = r }
}

// New creates a Watcher for handle that searches with s.
func New(handle string, s source.Searcher, opts ...Option) (*Watcher, error) {
	handle = strings.TrimPrefix(strings.TrimSpace(handle), "@")
	if handle == "" {
		return nil, errors.New("watch: handle is required")
	}
	if s == nil {
		return nil, errors.New("watch: searcher is required")
	}

	w := &Watcher{
		retriever: source.NewRetriever(handle, s),
		labels:    sentiment.DefaultLabels,
		policy:    sentiment.GlobalIndex,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Handle returns the watched handle.
func (w *Watcher) Handle() string {
	return w.retriever.Handle()
}

// Labels returns the configured candidate labels.
func (w *Watcher) Labels() []string {
	return w.labels
}

// Query returns the search string for posts in direction d between since
// and until.
func (w *Watcher) Query(d source.Direction, since, until time.Time) string {
	return source.BuildQuery(w.Handle(), d, since, until)
}

// Scrape retrieves posts for q, memoized per watcher.
func (w *Watcher) Scrape(ctx context.Context, q source.Query) ([]source.Post, error) {
	return w.retriever.Retrieve(ctx, q)
}

// Reset drops every cached retrieval.
func (w *Watcher) Reset() {
	w.retriever.Reset()
}

// Sentiment returns the averaged label distribution over posts.
func (w *Watcher) Sentiment(ctx context.Context, posts []source.Post) (sentiment.Distribution, error) {
	if w.classifier == nil {
		return nil, ErrNoClassifier
	}
	return sentiment.Aggregate(ctx, w.classifier, w.redact(posts), w.labels, w.policy)
}

// Summarize reduces posts to a single summary. Zero or one post is
// returned without calling the summarizer.
func (w *Watcher) Summarize(ctx context.Context, posts []source.Post) ([]string, error) {
	if w.summarizer == nil {
		return nil, ErrNoSummarizer
	}
	return summarize.Reduce(ctx, w.summarizer, w.redact(posts))
}

// Fans ranks the authors of posts in descending lexicographic order.
func (w *Watcher) Fans(posts []source.Post) []string {
	return fans.Rank(posts)
}

func (w *Watcher) redact(posts []source.Post) []source.Post {
	if w.redactor.Len() == 0 {
		return posts
	}
	return w.redactor.Posts(posts)
}

// ReportRequest selects what goes into a report.
type ReportRequest struct {
	Direction source.Direction
	Since     time.Time
	Until     time.Time
	Limit     int // as source.Query.Limit
	// ByCount ranks fans by post count instead of lexically.
	ByCount bool
}

// Report retrieves posts in req.Direction and posts addressed to the handle,
// then fills in every section whose backend is configured. Fans always come
// from posts addressed to the handle.
func (w *Watcher) Report(ctx context.Context, req ReportRequest) (*report.Report, error) {
	r := report.New(w.Handle(), req.Direction, req.Since, req.Until)

	posts, err := w.Scrape(ctx, source.Query{Direction: req.Direction, Since: req.Since, Until: req.Until, Limit: req.Limit})
	if err != nil {
		return nil, err
	}
	r.Posts = len(posts)

	mentions := posts
	if req.Direction != source.To {
		mentions, err = w.Scrape(ctx, source.Query{Direction: source.To, Since: req.Since, Until: req.Until, Limit: req.Limit})
		if err != nil {
			return nil, err
		}
	}
	r.Mentions = len(mentions)

	slog.Debug("report posts retrieved", "handle", w.Handle(), "direction", req.Direction, "posts", r.Posts, "mentions", r.Mentions)

	if w.classifier != nil && len(posts) > 0 {
		if r.Sentiment, err = w.Sentiment(ctx, posts); err != nil {
			return nil, fmt.Errorf("sentiment: %w", err)
		}
	}
	if w.summarizer != nil {
		if r.Summary, err = w.Summarize(ctx, posts); err != nil {
			return nil, fmt.Errorf("summarize: %w", err)
		}
	}

	counts := fans.Tally(mentions)
	if req.ByCount {
		r.Fans = counts.ByFrequency()
	} else {
		r.Fans = counts.Annotate(counts.Lexical())
	}

	return r, nil
}
