package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/ppiankov/twitterwatch/internal/report"
	"github.com/ppiankov/twitterwatch/internal/watch"
)

var (
	reportWindow  windowFlags
	reportFormat  string
	reportByCount bool
	noColor       bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print sentiment, summary and fans in one report",
	Long: "report retrieves posts in the chosen direction for sentiment and summary, and posts " +
		"addressed to the handle for the fan ranking. Identical retrievals are made once.",
	RunE: reportAction,
}

func init() {
	reportWindow.register(reportCmd, true)
	reportCmd.Flags().StringVar(&reportFormat, "format", "terminal", "output format: terminal, json, markdown")
	reportCmd.Flags().BoolVar(&reportByCount, "by-count", false, "order fans by number of posts instead of by name")
	reportCmd.Flags().BoolVar(&noColor, "no-color", false, "disable ANSI colors")
}

func reportAction(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	formatter, err := newFormatter(reportFormat, useColor(out))
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	q, err := reportWindow.query("")
	if err != nil {
		return err
	}
	watcher, err := newWatcher(cfg, allBackends)
	if err != nil {
		return err
	}

	r, err := watcher.Report(cmd.Context(), watch.ReportRequest{
		Direction: q.Direction,
		Since:     q.Since,
		Until:     q.Until,
		Limit:     q.Limit,
		ByCount:   reportByCount,
	})
	if err != nil {
		return err
	}
	return formatter.Format(out, r)
}

func newFormatter(format string, color bool) (report.Formatter, error) {
	switch format {
	case "json":
		return report.NewJSON(), nil
	case "markdown", "md":
		return report.NewMarkdown(), nil
	case "terminal", "":
		return report.NewTerminal(color), nil
	default:
		return nil, fmt.Errorf("unknown format %q (want terminal, json, or markdown)", format)
	}
}

// useColor reports whether ANSI colors should be written to w.
func useColor(w io.Writer) bool {
	if noColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
