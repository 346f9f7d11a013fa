package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
)

const barWidth = 20

// TerminalFormatter formats a report for terminal output.
type TerminalFormatter struct {
	color bool
}

// NewTerminal creates a terminal formatter. Set color=true for ANSI colors.
func NewTerminal(color bool) *TerminalFormatter {
	return &TerminalFormatter{color: color}
}

// Format writes the report to w, one section per summary.
func (f *TerminalFormatter) Format(w io.Writer, r *Report) error {
	header := fmt.Sprintf("twitterwatch: @%s, %s %s posts, %s mentions, %s to %s",
		r.Handle,
		humanize.Comma(int64(r.Posts)), r.Direction,
		humanize.Comma(int64(r.Mentions)),
		r.Since.Format(dateLayout), r.Until.Format(dateLayout))
	fmt.Fprintln(w, f.bold(header))
	fmt.Fprintln(w)

	if r.Empty() {
		fmt.Fprintln(w, "No posts found.")
		return nil
	}

	if ranked := r.Sentiment.Ranked(); len(ranked) > 0 {
		fmt.Fprintln(w, f.green(f.bold("--- Sentiment ---")))
		fmt.Fprintln(w)
		for _, ls := range ranked {
			fmt.Fprintf(w, "  %-12s %5.1f%% %s\n", ls.Label, ls.Score*100, f.dim(bar(ls.Score)))
		}
		fmt.Fprintln(w)
	}

	if len(r.Summary) > 0 {
		fmt.Fprintln(w, f.yellow(f.bold("--- Summary ---")))
		fmt.Fprintln(w)
		for _, s := range r.Summary {
			fmt.Fprintf(w, "  %s\n", s)
		}
		fmt.Fprintln(w)
	}

	if len(r.Fans) > 0 {
		fmt.Fprintln(w, f.bold(fmt.Sprintf("--- Fans (%s) ---", humanize.Comma(int64(len(r.Fans))))))
		fmt.Fprintln(w)
		for i, fan := range r.Fans {
			fmt.Fprintf(w, "  %-5s @%s %s\n", humanize.Ordinal(i+1), fan.Username,
				f.dim(fmt.Sprintf("(%s posts)", humanize.Comma(int64(fan.Posts)))))
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, f.dim("run "+r.RunID))
	return nil
}

func bar(score float64) string {
	n := int(score*barWidth + 0.5)
	n = max(0, min(n, barWidth))
	return strings.Repeat("#", n)
}

func (f *TerminalFormatter) bold(s string) string {
	if !f.color {
		return s
	}
	return "\033[1m" + s + "\033[0m"
}

func (f *TerminalFormatter) green(s string) string {
	if !f.color {
		return s
	}
	return "\033[32m" + s + "\033[0m"
}

func (f *TerminalFormatter) yellow(s string) string {
	if !f.color {
		return s
	}
	return "\033[33m" + s + "\033[0m"
}

func (f *TerminalFormatter) dim(s string) string {
	if !f.color {
		return s
	}
	return "\033[2m" + s + "\033[0m"
}
