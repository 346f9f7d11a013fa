package cli

import (
	"fmt"
	"time"

	"github.com/araddon/dateparse"
	"github.com/spf13/cobra"

	"github.com/ppiankov/twitterwatch/internal/source"
)

// epoch is the default lower bound of the date window.
var epoch = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)

// now is replaced in tests.
var now = time.Now

// windowFlags are the flags shared by every command that retrieves posts.
type windowFlags struct {
	direction string
	since     string
	until     string
	limit     int
}

func (w *windowFlags) register(cmd *cobra.Command, withDirection bool) {
	if withDirection {
		cmd.Flags().StringVar(&w.direction, "direction", string(source.From), "posts to or from the handle")
	}
	cmd.Flags().StringVar(&w.since, "since", "", "start date, inclusive (default 1970-01-01)")
	cmd.Flags().StringVar(&w.until, "until", "", "end date, exclusive (default today)")
	cmd.Flags().IntVar(&w.limit, "limit", source.NoLimit, "maximum posts to retrieve, negative for no limit")
}

// query turns the flags into a retrieval query. fixed, when set, overrides
// the direction flag.
func (w *windowFlags) query(fixed source.Direction) (source.Query, error) {
	d := fixed
	if d == "" {
		var err error
		if d, err = source.ParseDirection(w.direction); err != nil {
			return source.Query{}, err
		}
	}

	since, err := parseDate(w.since, epoch)
	if err != nil {
		return source.Query{}, fmt.Errorf("--since: %w", err)
	}
	until, err := parseDate(w.until, today())
	if err != nil {
		return source.Query{}, fmt.Errorf("--until: %w", err)
	}

	return source.Query{Direction: d, Since: since, Until: until, Limit: w.limit}, nil
}

// parseDate accepts any layout dateparse recognises, interpreted in UTC.
func parseDate(s string, fallback time.Time) (time.Time, error) {
	if s == "" {
		return fallback, nil
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

func today() time.Time {
	y, m, d := now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
