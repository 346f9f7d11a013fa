package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const nitterPage = `<?xml version="1.0" encoding="UTF-8"?>
<rss xmlns:atom="http://www.w3.org/2005/Atom" xmlns:dc="http://purl.org/dc/elements/1.1/" version="2.0">
  <channel>
    <title>Search results</title>
    <link>https://nitter.example/search</link>
    <description>Twitter feed</description>
    %s
  </channel>
</rss>`

func nitterItem(user, title, html, date string) string {
	return fmt.Sprintf(`<item>
      <title>%s</title>
      <dc:creator>@%s</dc:creator>
      <description><![CDATA[%s]]></description>
      <pubDate>%s</pubDate>
      <link>https://nitter.example/%s/status/1</link>
    </item>`, title, user, html, date, user)
}

func TestNewNitter_Defaults(t *testing.T) {
	n, err := NewNitter("", time.Second)
	require.NoError(t, err)
	assert.Equal(t, DefaultNitterURL, n.baseURL)
	assert.Equal(t, "nitter", n.Name())
}

func TestNewNitter_InvalidURL(t *testing.T) {
	_, err := NewNitter("not a url", time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nitter:")
}

func TestNitter_SearchFollowsCursor(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		assert.Equal(t, "/search/rss", r.URL.Path)
		assert.Equal(t, "(to:JohnDoe) since:1970-01-01 until:2050-12-31", r.URL.Query().Get("q"))
		assert.Contains(t, r.Header.Get("User-Agent"), "twitterwatch")

		w.Header().Set("Content-Type", "application/rss+xml")
		switch r.URL.Query().Get("cursor") {
		case "":
			w.Header().Set("Min-Id", "page2")
			_, _ = fmt.Fprintf(w, nitterPage,
				nitterItem("JaneDoe", "Booo.", "<p>Booo.</p>", "Mon, 02 Jan 2023 10:00:00 GMT")+
					nitterItem("ConcernedCitizen", "Are you alive?", "<p>Are you <b>alive</b>?</p>", "Mon, 02 Jan 2023 09:00:00 GMT"))
		case "page2":
			w.Header().Set("Min-Id", "page3")
			_, _ = fmt.Fprintf(w, nitterPage,
				nitterItem("JaneDoe", "Your opinions suck", "Your opinions suck<br>and you should feel bad.", "Sun, 01 Jan 2023 09:00:00 GMT"))
		default:
			_, _ = fmt.Fprintf(w, nitterPage, "")
		}
	}))
	defer srv.Close()

	n, err := NewNitter(srv.URL, 5*time.Second)
	require.NoError(t, err)

	posts, err := collect(n.Search(context.Background(), "(to:JohnDoe) since:1970-01-01 until:2050-12-31"))
	require.NoError(t, err)
	require.Len(t, posts, 3)

	assert.Equal(t, "JaneDoe", posts[0].Username)
	assert.Equal(t, "Booo.", posts[0].Text)
	assert.True(t, posts[0].Date.Equal(time.Date(2023, 1, 2, 10, 0, 0, 0, time.UTC)))
	assert.Equal(t, "Are you alive?", posts[1].Text)
	assert.Equal(t, "Your opinions suck\nand you should feel bad.", posts[2].Text)
	assert.Equal(t, int32(3), requests.Load())
}

func TestNitter_EarlyStopSkipsNextPage(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests.Add(1)
		w.Header().Set("Min-Id", fmt.Sprintf("p%d", requests.Load()))
		_, _ = fmt.Fprintf(w, nitterPage,
			nitterItem("a", "one", "one", "Mon, 02 Jan 2023 10:00:00 GMT")+
				nitterItem("b", "two", "two", "Mon, 02 Jan 2023 09:00:00 GMT"))
	}))
	defer srv.Close()

	n, err := NewNitter(srv.URL, 5*time.Second)
	require.NoError(t, err)

	posts, err := NewRetriever("JohnDoe", n).Retrieve(context.Background(), Query{Direction: From, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, posts, 2)
	assert.Equal(t, int32(1), requests.Load())
}

func TestNitter_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	n, err := NewNitter(srv.URL, 5*time.Second)
	require.NoError(t, err)

	_, err = collect(n.Search(context.Background(), "(from:JohnDoe)"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}

func TestNitter_NotAFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html><body>captcha</body></html>"))
	}))
	defer srv.Close()

	n, err := NewNitter(srv.URL, 5*time.Second)
	require.NoError(t, err)

	_, err = collect(n.Search(context.Background(), "(from:JohnDoe)"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nitter:")
}

func TestHTMLText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple tags", "<p>hello</p>", "hello"},
		{"nested tags", "<div><p>hello <b>world</b></p></div>", "hello world"},
		{"entities", "&amp; &lt; &gt;", "& < >"},
		{"line break", "line<br>break", "line\nbreak"},
		{"empty", "", ""},
		{"no html", "plain text", "plain text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, htmlText(tt.input))
		})
	}
}
