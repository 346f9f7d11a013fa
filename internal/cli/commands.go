package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/twitterwatch/internal/fans"
	"github.com/ppiankov/twitterwatch/internal/sentiment"
	"github.com/ppiankov/twitterwatch/internal/source"
	"github.com/ppiankov/twitterwatch/internal/watch"
)

var (
	queryWindow     windowFlags
	scrapeWindow    windowFlags
	scrapeFormat    string
	sentimentWindow windowFlags
	sentimentLabels []string
	sentimentMean   string
	summarizeWindow windowFlags
	fansWindow      windowFlags
	fansByCount     bool
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Print the search query for a direction and date window",
	RunE:  queryAction,
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Retrieve and list posts",
	RunE:  scrapeAction,
}

var sentimentCmd = &cobra.Command{
	Use:   "sentiment",
	Short: "Print the averaged sentiment distribution of retrieved posts",
	RunE:  sentimentAction,
}

var summarizeCmd = &cobra.Command{
	Use:   "summarize",
	Short: "Summarize retrieved posts into one text",
	RunE:  summarizeAction,
}

var fansCmd = &cobra.Command{
	Use:   "fans",
	Short: "Rank the accounts that post to the handle",
	RunE:  fansAction,
}

func init() {
	queryWindow.register(queryCmd, true)
	scrapeWindow.register(scrapeCmd, true)
	scrapeCmd.Flags().StringVar(&scrapeFormat, "format", "text", "output format: text, jsonl")
	sentimentWindow.register(sentimentCmd, true)
	sentimentCmd.Flags().StringSliceVar(&sentimentLabels, "labels", nil, "candidate labels (default from config)")
	sentimentCmd.Flags().StringVar(&sentimentMean, "mean", "", "averaging policy: global, per_label (default from config)")
	summarizeWindow.register(summarizeCmd, true)
	fansWindow.register(fansCmd, false)
	fansCmd.Flags().BoolVar(&fansByCount, "by-count", false, "order by number of posts instead of by name")
}

func queryAction(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	q, err := queryWindow.query("")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), source.BuildQuery(cfg.Handle, q.Direction, q.Since, q.Until))
	return nil
}

// retrieve loads config, builds a watcher and retrieves posts for the window.
func retrieve(cmd *cobra.Command, w *windowFlags, fixed source.Direction, need backends, extra ...watch.Option) (*watch.Watcher, []source.Post, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	q, err := w.query(fixed)
	if err != nil {
		return nil, nil, err
	}
	watcher, err := newWatcher(cfg, need, extra...)
	if err != nil {
		return nil, nil, err
	}
	posts, err := watcher.Scrape(cmd.Context(), q)
	if err != nil {
		return nil, nil, err
	}
	return watcher, posts, nil
}

func scrapeAction(cmd *cobra.Command, _ []string) error {
	_, posts, err := retrieve(cmd, &scrapeWindow, "", searchOnly)
	if err != nil {
		return err
	}
	return writePosts(cmd.OutOrStdout(), posts, scrapeFormat)
}

type jsonPost struct {
	Date     string `json:"date"`
	Username string `json:"username"`
	Text     string `json:"text"`
}

func writePosts(w io.Writer, posts []source.Post, format string) error {
	switch format {
	case "jsonl":
		enc := json.NewEncoder(w)
		for _, p := range posts {
			if err := enc.Encode(jsonPost{Date: p.Date.Format(time.RFC3339), Username: p.Username, Text: p.Text}); err != nil {
				return err
			}
		}
	case "text", "":
		for _, p := range posts {
			text := strings.ReplaceAll(p.Text, "\n", " ")
			fmt.Fprintf(w, "%s @%s: %s\n", p.Date.Format(time.DateTime), p.Username, text)
		}
	default:
		return fmt.Errorf("unknown format %q (want text or jsonl)", format)
	}
	return nil
}

func sentimentAction(cmd *cobra.Command, _ []string) error {
	var extra []watch.Option
	if len(sentimentLabels) > 0 {
		extra = append(extra, watch.WithLabels(sentimentLabels...))
	}
	if sentimentMean != "" {
		policy, err := sentiment.ParseMeanPolicy(sentimentMean)
		if err != nil {
			return err
		}
		extra = append(extra, watch.WithMeanPolicy(policy))
	}

	watcher, posts, err := retrieve(cmd, &sentimentWindow, "", withClassifier, extra...)
	if err != nil {
		return err
	}
	dist, err := watcher.Sentiment(cmd.Context(), posts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(dist) == 0 {
		fmt.Fprintln(out, "No posts found.")
		return nil
	}
	for _, ls := range dist.Ranked() {
		fmt.Fprintf(out, "%-12s %.4f\n", ls.Label, ls.Score)
	}
	return nil
}

func summarizeAction(cmd *cobra.Command, _ []string) error {
	watcher, posts, err := retrieve(cmd, &summarizeWindow, "", withSummarizer)
	if err != nil {
		return err
	}
	summary, err := watcher.Summarize(cmd.Context(), posts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(summary) == 0 {
		fmt.Fprintln(out, "No posts found.")
		return nil
	}
	for _, s := range summary {
		fmt.Fprintln(out, s)
	}
	return nil
}

func fansAction(cmd *cobra.Command, _ []string) error {
	watcher, posts, err := retrieve(cmd, &fansWindow, source.To, searchOnly)
	if err != nil {
		return err
	}

	counts := fans.Tally(posts)
	ranked := counts.Annotate(watcher.Fans(posts))
	if fansByCount {
		ranked = counts.ByFrequency()
	}

	out := cmd.OutOrStdout()
	for _, f := range ranked {
		fmt.Fprintf(out, "%s\t%d\n", f.Username, f.Posts)
	}
	return nil
}
