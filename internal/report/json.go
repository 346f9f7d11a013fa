package report

import (
	"encoding/json"
	"io"
	"time"
)

type jsonReport struct {
	Meta      jsonMeta    `json:"meta"`
	Sentiment []jsonScore `json:"sentiment"`
	Summary   []string    `json:"summary"`
	Fans      []jsonFan   `json:"fans"`
}

type jsonMeta struct {
	RunID       string `json:"run_id"`
	Handle      string `json:"handle"`
	Direction   string `json:"direction"`
	Since       string `json:"since"`
	Until       string `json:"until"`
	GeneratedAt string `json:"generated_at"`
	Posts       int    `json:"posts"`
	Mentions    int    `json:"mentions"`
}

type jsonScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

type jsonFan struct {
	Username string `json:"username"`
	Posts    int    `json:"posts"`
}

// JSONFormatter formats a report as JSON.
type JSONFormatter struct{}

// NewJSON creates a JSON formatter.
func NewJSON() *JSONFormatter {
	return &JSONFormatter{}
}

// Format writes the report as JSON to w. Empty sections are encoded as
// empty arrays, never null.
func (f *JSONFormatter) Format(w io.Writer, r *Report) error {
	out := jsonReport{
		Meta: jsonMeta{
			RunID:       r.RunID,
			Handle:      r.Handle,
			Direction:   r.Direction.String(),
			Since:       r.Since.Format(dateLayout),
			Until:       r.Until.Format(dateLayout),
			GeneratedAt: r.GeneratedAt.Format(time.RFC3339),
			Posts:       r.Posts,
			Mentions:    r.Mentions,
		},
		Sentiment: make([]jsonScore, 0, len(r.Sentiment)),
		Summary:   make([]string, 0, len(r.Summary)),
		Fans:      make([]jsonFan, 0, len(r.Fans)),
	}
	for _, ls := range r.Sentiment.Ranked() {
		out.Sentiment = append(out.Sentiment, jsonScore{Label: ls.Label, Score: ls.Score})
	}
	out.Summary = append(out.Summary, r.Summary...)
	for _, fan := range r.Fans {
		out.Fans = append(out.Fans, jsonFan{Username: fan.Username, Posts: fan.Posts})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
