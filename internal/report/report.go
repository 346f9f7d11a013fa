package report

import (
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/ppiankov/twitterwatch/internal/fans"
	"github.com/ppiankov/twitterwatch/internal/sentiment"
	"github.com/ppiankov/twitterwatch/internal/source"
)

const dateLayout = "2006-01-02"

// Report combines the three summaries derived for one handle and window.
type Report struct {
	RunID       string
	Handle      string
	Direction   source.Direction
	Since       time.Time
	Until       time.Time
	GeneratedAt time.Time

	Posts    int // posts in Direction, fed to sentiment and summary
	Mentions int // posts addressed to the handle, fed to fans

	Sentiment sentiment.Distribution
	Summary   []string
	Fans      []fans.Fan
}

// New returns an empty report with a fresh run id.
func New(handle string, d source.Direction, since, until time.Time) *Report {
	return &Report{
		RunID:       uuid.NewString(),
		Handle:      handle,
		Direction:   d,
		Since:       since,
		Until:       until,
		GeneratedAt: time.Now().UTC(),
	}
}

// Empty reports whether no posts were found in either direction.
func (r *Report) Empty() bool {
	return r.Posts == 0 && r.Mentions == 0
}

// Formatter writes a formatted report to w.
type Formatter interface {
	Format(w io.Writer, r *Report) error
}
