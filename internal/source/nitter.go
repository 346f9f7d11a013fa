package source

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
)

const (
	nitterName       = "nitter"
	DefaultNitterURL = "https://nitter.net"
	nitterUserAgent  = "Mozilla/5.0 (compatible; twitterwatch/1.0; +https://github.com/ppiankov/twitterwatch)"
	nitterCursorHdr  = "Min-Id"
	nitterMaxPages   = 50
)

// NitterSearcher reads the RSS search feed of a Nitter instance, following
// its pagination cursor until the feed runs dry.
type NitterSearcher struct {
	baseURL string
	client  *http.Client
}

// NewNitter creates a searcher for the Nitter instance at baseURL.
func NewNitter(baseURL string, timeout time.Duration) (*NitterSearcher, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultNitterURL
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("nitter: invalid base url %q: %w", baseURL, err)
	}
	return &NitterSearcher{
		baseURL: baseURL,
		client: &http.Client{
			Timeout:   timeout,
			Transport: &userAgentTransport{base: http.DefaultTransport, agent: nitterUserAgent},
		},
	}, nil
}

// Name returns "nitter".
func (n *NitterSearcher) Name() string {
	return nitterName
}

// Search fetches result pages lazily; a page is requested only when the
// previous one has been fully consumed.
func (n *NitterSearcher) Search(ctx context.Context, query string) iter.Seq2[Post, error] {
	return func(yield func(Post, error) bool) {
		cursor := ""
		for range nitterMaxPages {
			feed, next, err := n.fetchPage(ctx, query, cursor)
			if err != nil {
				yield(Post{}, err)
				return
			}
			for _, item := range feed.Items {
				if !yield(postFromItem(item), nil) {
					return
				}
			}
			if len(feed.Items) == 0 || next == "" || next == cursor {
				return
			}
			cursor = next
		}
	}
}

func (n *NitterSearcher) fetchPage(ctx context.Context, query, cursor string) (*gofeed.Feed, string, error) {
	params := url.Values{}
	params.Set("f", "tweets")
	params.Set("q", query)
	if cursor != "" {
		params.Set("cursor", cursor)
	}
	u := n.baseURL + "/search/rss?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, "", fmt.Errorf("nitter: create request: %w", err)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("nitter: fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("nitter: status %d", resp.StatusCode)
	}

	feed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		if errors.Is(err, gofeed.ErrFeedTypeNotDetected) {
			return nil, "", errors.New("nitter: response is not an RSS feed")
		}
		return nil, "", fmt.Errorf("nitter: parse feed: %w", err)
	}
	return feed, resp.Header.Get(nitterCursorHdr), nil
}

func postFromItem(item *gofeed.Item) Post {
	var date time.Time
	if item.PublishedParsed != nil {
		date = *item.PublishedParsed
	} else if item.UpdatedParsed != nil {
		date = *item.UpdatedParsed
	}

	text := htmlText(item.Description)
	if text == "" {
		text = strings.TrimSpace(item.Title)
	}

	return Post{
		Date:     date,
		Username: itemUsername(item),
		Text:     text,
	}
}

// itemUsername reads dc:creator, which Nitter fills with "@handle".
func itemUsername(item *gofeed.Item) string {
	name := ""
	if item.Author != nil {
		name = item.Author.Name
	}
	if name == "" && item.DublinCoreExt != nil && len(item.DublinCoreExt.Creator) > 0 {
		name = item.DublinCoreExt.Creator[0]
	}
	return strings.TrimPrefix(strings.TrimSpace(name), "@")
}

// htmlText flattens an HTML fragment to its visible text.
func htmlText(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.TrimSpace(fragment)
	}
	doc.Find("br").ReplaceWithHtml("\n")
	return strings.TrimSpace(doc.Text())
}

// userAgentTransport injects a User-Agent header into every request.
type userAgentTransport struct {
	base  http.RoundTripper
	agent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", t.agent)
	return t.base.RoundTrip(req)
}
