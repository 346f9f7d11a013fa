package report

import (
	"fmt"
	"io"
)

// MarkdownFormatter formats a report as Markdown.
type MarkdownFormatter struct{}

// NewMarkdown creates a Markdown formatter.
func NewMarkdown() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

// Format writes the report as Markdown to w.
func (f *MarkdownFormatter) Format(w io.Writer, r *Report) error {
	fmt.Fprintf(w, "# twitterwatch report: @%s\n\n", r.Handle)
	fmt.Fprintf(w, "%d %s posts, %d mentions, %s to %s\n\n",
		r.Posts, r.Direction, r.Mentions,
		r.Since.Format(dateLayout), r.Until.Format(dateLayout))

	if r.Empty() {
		fmt.Fprintln(w, "No posts found.")
		return nil
	}

	if ranked := r.Sentiment.Ranked(); len(ranked) > 0 {
		fmt.Fprintf(w, "## Sentiment\n\n")
		fmt.Fprintln(w, "| Label | Score |")
		fmt.Fprintln(w, "|---|---|")
		for _, ls := range ranked {
			fmt.Fprintf(w, "| %s | %.3f |\n", ls.Label, ls.Score)
		}
		fmt.Fprintln(w)
	}

	if len(r.Summary) > 0 {
		fmt.Fprintf(w, "## Summary\n\n")
		for _, s := range r.Summary {
			fmt.Fprintf(w, "%s\n\n", s)
		}
	}

	if len(r.Fans) > 0 {
		fmt.Fprintf(w, "## Fans (%d)\n\n", len(r.Fans))
		for i, fan := range r.Fans {
			fmt.Fprintf(w, "%d. **@%s** (%d posts)\n", i+1, fan.Username, fan.Posts)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "*Run %s*\n", r.RunID)
	return nil
}
