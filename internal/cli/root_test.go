package cli

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/twitterwatch/internal/source"
)

const rssPage = `<?xml version="1.0" encoding="UTF-8"?>
<rss xmlns:dc="http://purl.org/dc/elements/1.1/" version="2.0">
  <channel>
    <title>Search results</title>
    <link>https://nitter.example/search</link>
    <description>Twitter feed</description>
    %s
  </channel>
</rss>`

func rssItem(user, text, date string) string {
	return fmt.Sprintf(`<item>
      <title>%s</title>
      <dc:creator>@%s</dc:creator>
      <description><![CDATA[<p>%s</p>]]></description>
      <pubDate>%s</pubDate>
    </item>`, text, user, text, date)
}

// nitterStub serves posts addressed to JohnDoe for "(to:" queries and posts
// written by JohnDoe otherwise. It counts requests per direction.
func nitterStub(t *testing.T) (*httptest.Server, map[string]int) {
	t.Helper()
	requests := map[string]int{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		w.Header().Set("Content-Type", "application/rss+xml")
		if strings.HasPrefix(q, "(to:") {
			requests["to"]++
			_, _ = fmt.Fprintf(w, rssPage,
				rssItem("JaneDoe", "Booo.", "Mon, 02 Jan 2023 10:00:00 GMT")+
					rssItem("ConcernedCitizen", "Are you alive?", "Mon, 02 Jan 2023 09:00:00 GMT")+
					rssItem("JaneDoe", "Your opinions suck and you should feel bad.", "Sun, 01 Jan 2023 09:00:00 GMT"))
			return
		}
		requests["from"]++
		_, _ = fmt.Fprintf(w, rssPage,
			rssItem("JohnDoe", "I am very opinionated.", "Mon, 02 Jan 2023 08:00:00 GMT")+
				rssItem("JohnDoe", "And all the world must know about it.", "Sun, 01 Jan 2023 08:00:00 GMT"))
	}))
	t.Cleanup(srv.Close)
	return srv, requests
}

// setupCLI points the package globals at a fresh config directory and
// restores them after the test.
func setupCLI(t *testing.T, configYAML string) string {
	t.Helper()

	oldConfigDir, oldHandle, oldLevel, oldFormat := configDir, handleFlag, logLevel, logFormat
	oldNow := now
	oldWindows := []windowFlags{queryWindow, scrapeWindow, sentimentWindow, summarizeWindow, fansWindow, reportWindow}
	oldScrapeFormat, oldLabels, oldMean, oldFansByCount := scrapeFormat, sentimentLabels, sentimentMean, fansByCount
	oldReportFormat, oldReportByCount, oldNoColor := reportFormat, reportByCount, noColor
	t.Cleanup(func() {
		configDir, handleFlag, logLevel, logFormat = oldConfigDir, oldHandle, oldLevel, oldFormat
		now = oldNow
		queryWindow, scrapeWindow, sentimentWindow = oldWindows[0], oldWindows[1], oldWindows[2]
		summarizeWindow, fansWindow, reportWindow = oldWindows[3], oldWindows[4], oldWindows[5]
		scrapeFormat, sentimentLabels, sentimentMean, fansByCount = oldScrapeFormat, oldLabels, oldMean, oldFansByCount
		reportFormat, reportByCount, noColor = oldReportFormat, oldReportByCount, oldNoColor
	})

	dir := t.TempDir()
	if configYAML != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(configYAML), 0o644))
	}

	configDir = dir
	handleFlag, logLevel, logFormat = "", "error", ""
	now = func() time.Time { return time.Date(2023, 3, 15, 12, 0, 0, 0, time.UTC) }
	window := windowFlags{direction: "from", limit: source.NoLimit}
	queryWindow, scrapeWindow, sentimentWindow = window, window, window
	summarizeWindow, fansWindow, reportWindow = window, windowFlags{limit: source.NoLimit}, window
	scrapeFormat, sentimentLabels, sentimentMean, fansByCount = "text", nil, "", false
	reportFormat, reportByCount, noColor = "json", false, true
	return dir
}

func offlineConfig(baseURL string) string {
	return fmt.Sprintf(`
handle: JohnDoe
search:
  backend: nitter
  nitter:
    base_url: %s
    timeout: 5s
sentiment:
  backend: lexicon
summarize:
  backend: extractive
`, baseURL)
}

func run(t *testing.T, action func(*cobra.Command, []string) error) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	cmd.SetOut(&buf)
	err := action(cmd, nil)
	return buf.String(), err
}

func TestVersionNotEmpty(t *testing.T) {
	assert.NotEmpty(t, Version)
}

func TestExecuteVersion(t *testing.T) {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"version"})
	t.Cleanup(func() { rootCmd.SetOut(nil); rootCmd.SetArgs(nil) })

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, buf.String(), "twitterwatch "+Version)
}

func TestQueryAction_DefaultWindow(t *testing.T) {
	setupCLI(t, "")
	handleFlag = "@JohnDoe"

	out, err := run(t, queryAction)
	require.NoError(t, err)
	assert.Equal(t, "(from:JohnDoe) since:1970-01-01 until:2023-03-15\n", out)
}

func TestQueryAction_Flags(t *testing.T) {
	setupCLI(t, "handle: JohnDoe\n")
	queryWindow = windowFlags{direction: "TO", since: "2023-01-01", until: "Feb 1, 2023"}

	out, err := run(t, queryAction)
	require.NoError(t, err)
	assert.Equal(t, "(to:JohnDoe) since:2023-01-01 until:2023-02-01\n", out)
}

func TestQueryAction_Errors(t *testing.T) {
	setupCLI(t, "")

	_, err := run(t, queryAction)
	assert.ErrorContains(t, err, "no handle")

	handleFlag = "JohnDoe"
	queryWindow.direction = "sideways"
	_, err = run(t, queryAction)
	assert.ErrorContains(t, err, "unknown direction")

	queryWindow = windowFlags{direction: "to", since: "not a date"}
	_, err = run(t, queryAction)
	assert.ErrorContains(t, err, "--since")
}

func TestScrapeAction(t *testing.T) {
	srv, _ := nitterStub(t)
	setupCLI(t, offlineConfig(srv.URL))
	scrapeWindow.direction = "to"

	out, err := run(t, scrapeAction)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "2023-01-02 10:00:00 @JaneDoe: Booo.", lines[0])
	assert.Equal(t, "2023-01-01 09:00:00 @JaneDoe: Your opinions suck and you should feel bad.", lines[2])
}

func TestScrapeAction_LimitAndJSONL(t *testing.T) {
	srv, _ := nitterStub(t)
	setupCLI(t, offlineConfig(srv.URL))
	scrapeWindow = windowFlags{direction: "to", limit: 1}
	scrapeFormat = "jsonl"

	out, err := run(t, scrapeAction)
	require.NoError(t, err)
	assert.Equal(t, `{"date":"2023-01-02T10:00:00Z","username":"JaneDoe","text":"Booo."}`+"\n", out)
}

func TestScrapeAction_ZeroLimit(t *testing.T) {
	srv, requests := nitterStub(t)
	setupCLI(t, offlineConfig(srv.URL))
	scrapeWindow = windowFlags{direction: "to", limit: 0}

	out, err := run(t, scrapeAction)
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Empty(t, requests)
}

func TestWindowFlags_DefaultLimitIsUnbounded(t *testing.T) {
	var w windowFlags
	cmd := &cobra.Command{}
	w.register(cmd, true)

	assert.Equal(t, source.NoLimit, w.limit)
	assert.Equal(t, "-1", cmd.Flags().Lookup("limit").DefValue)
}

func TestScrapeAction_UnknownFormat(t *testing.T) {
	srv, _ := nitterStub(t)
	setupCLI(t, offlineConfig(srv.URL))
	scrapeFormat = "xml"

	_, err := run(t, scrapeAction)
	assert.ErrorContains(t, err, "unknown format")
}

func TestSentimentAction(t *testing.T) {
	srv, _ := nitterStub(t)
	setupCLI(t, offlineConfig(srv.URL))
	sentimentWindow.direction = "to"

	out, err := run(t, sentimentAction)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "negative     0.7778", lines[0])
	assert.Contains(t, out, "neutral      0.1111")
	assert.Contains(t, out, "positive     0.1111")
}

func TestSentimentAction_Flags(t *testing.T) {
	srv, _ := nitterStub(t)
	setupCLI(t, offlineConfig(srv.URL))
	sentimentWindow.direction = "to"
	sentimentLabels = []string{"negative"}
	sentimentMean = "per_label"

	out, err := run(t, sentimentAction)
	require.NoError(t, err)
	assert.Equal(t, "negative     1.0000\n", out)

	sentimentMean = "median"
	_, err = run(t, sentimentAction)
	assert.ErrorContains(t, err, "unknown mean policy")
}

func TestSummarizeAction(t *testing.T) {
	srv, _ := nitterStub(t)
	setupCLI(t, offlineConfig(srv.URL))

	out, err := run(t, summarizeAction)
	require.NoError(t, err)
	assert.Equal(t, "I am very opinionated. And all the world must know about it.\n", out)
}

func llmWithoutKeyConfig(t *testing.T, baseURL string) string {
	t.Helper()
	t.Setenv("TW_TEST_MISSING_KEY", "")
	return fmt.Sprintf(`
handle: JohnDoe
search:
  backend: nitter
  nitter:
    base_url: %s
sentiment:
  backend: lexicon
summarize:
  backend: llm
  llm:
    api_key_env: TW_TEST_MISSING_KEY
`, baseURL)
}

func TestSearchOnlyCommands_IgnoreSummarizerKey(t *testing.T) {
	srv, _ := nitterStub(t)
	setupCLI(t, llmWithoutKeyConfig(t, srv.URL))
	scrapeWindow.direction = "to"

	out, err := run(t, scrapeAction)
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 3)

	_, err = run(t, fansAction)
	require.NoError(t, err)

	_, err = run(t, sentimentAction)
	require.NoError(t, err)
}

func TestSummarizeAction_MissingLLMKey(t *testing.T) {
	srv, _ := nitterStub(t)
	setupCLI(t, llmWithoutKeyConfig(t, srv.URL))

	_, err := run(t, summarizeAction)
	assert.ErrorContains(t, err, "TW_TEST_MISSING_KEY is not set")
}

func TestFansAction(t *testing.T) {
	srv, requests := nitterStub(t)
	setupCLI(t, offlineConfig(srv.URL))

	out, err := run(t, fansAction)
	require.NoError(t, err)
	assert.Equal(t, "JaneDoe\t2\nConcernedCitizen\t1\n", out)
	assert.Equal(t, 1, requests["to"])
	assert.Zero(t, requests["from"])
}

func TestFansAction_ByCount(t *testing.T) {
	srv, _ := nitterStub(t)
	setupCLI(t, offlineConfig(srv.URL))
	fansByCount = true

	out, err := run(t, fansAction)
	require.NoError(t, err)
	assert.Equal(t, "JaneDoe\t2\nConcernedCitizen\t1\n", out)
}

func TestReportAction_JSON(t *testing.T) {
	srv, requests := nitterStub(t)
	setupCLI(t, offlineConfig(srv.URL))

	out, err := run(t, reportAction)
	require.NoError(t, err)

	assert.Contains(t, out, `"handle": "JohnDoe"`)
	assert.Contains(t, out, `"direction": "from"`)
	assert.Contains(t, out, `"posts": 2`)
	assert.Contains(t, out, `"mentions": 3`)
	assert.Contains(t, out, `"username": "JaneDoe"`)
	assert.Contains(t, out, "I am very opinionated.")
	assert.Equal(t, 1, requests["to"])
	assert.Equal(t, 1, requests["from"])
}

func TestReportAction_Terminal(t *testing.T) {
	srv, _ := nitterStub(t)
	setupCLI(t, offlineConfig(srv.URL))
	reportFormat = "terminal"

	out, err := run(t, reportAction)
	require.NoError(t, err)
	assert.Contains(t, out, "--- Sentiment ---")
	assert.Contains(t, out, "--- Fans (2) ---")
	assert.NotContains(t, out, "\033[")
}

func TestNewFormatter(t *testing.T) {
	for _, f := range []string{"", "terminal", "json", "markdown", "md"} {
		_, err := newFormatter(f, false)
		assert.NoError(t, err, f)
	}
	_, err := newFormatter("pdf", false)
	assert.ErrorContains(t, err, "unknown format")
}

func TestUseColor_NonTerminal(t *testing.T) {
	setupCLI(t, "")
	noColor = false
	assert.False(t, useColor(&bytes.Buffer{}))
}

func TestParseDate(t *testing.T) {
	fallback := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		input string
		want  time.Time
	}{
		{"", fallback},
		{"2023-01-05", time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC)},
		{"2023/01/05", time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC)},
		{"January 5, 2023", time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, err := parseDate(tt.input, fallback)
		require.NoError(t, err, tt.input)
		assert.True(t, tt.want.Equal(got), "%q: got %v", tt.input, got)
	}

	_, err := parseDate("yesterday-ish", fallback)
	assert.Error(t, err)
}

func TestInitAction(t *testing.T) {
	dir := setupCLI(t, "")
	configDir = filepath.Join(dir, "fresh")

	out, err := run(t, initAction)
	require.NoError(t, err)
	assert.Contains(t, out, "Initialized")
	assert.FileExists(t, filepath.Join(configDir, "config.yaml"))
	assert.FileExists(t, filepath.Join(configDir, defaultLexiconFile))

	out, err = run(t, initAction)
	require.NoError(t, err)
	assert.Contains(t, out, "already initialized")

	// The example config must load as written.
	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "your_handle_here", cfg.Handle)
	assert.Equal(t, []string{"hate", "suck", "awful", "worst", "boo", "wrong"}, cfg.Sentiment.Lexicon["negative"])
}

func TestDoctorAction_Nitter(t *testing.T) {
	srv, _ := nitterStub(t)
	setupCLI(t, offlineConfig(srv.URL))

	out, err := run(t, doctorAction)
	require.NoError(t, err)
	assert.Contains(t, out, "[ OK ] handle @JohnDoe")
	assert.Contains(t, out, "All checks passed.")
}

func TestDoctorAction_MissingConfig(t *testing.T) {
	setupCLI(t, "")

	out, err := run(t, doctorAction)
	require.Error(t, err)
	assert.Contains(t, out, "[FAIL] config.yaml")
}

func TestDoctorAction_MissingLLMKey(t *testing.T) {
	srv, _ := nitterStub(t)
	setupCLI(t, llmWithoutKeyConfig(t, srv.URL))

	out, err := run(t, doctorAction)
	require.Error(t, err)
	assert.Contains(t, out, "[FAIL] llm api key: TW_TEST_MISSING_KEY not set")
}

func TestDoctorAction_MissingSnscrape(t *testing.T) {
	setupCLI(t, "handle: JohnDoe\nsearch:\n  snscrape:\n    path: /nonexistent/snscrape\n")

	out, err := run(t, doctorAction)
	require.Error(t, err)
	assert.Contains(t, out, "[FAIL] snscrape not found")
}
