// Package summarize condenses a set of posts into a single summary by
// repeatedly summarizing fixed-size batches.
package summarize

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/ppiankov/twitterwatch/internal/source"
)

const (
	// BatchSize is the number of texts joined into one summarizer call.
	BatchSize = 40
	// MinLength and MaxLength bound each summary, in the summarizer's unit.
	MinLength = 50
	MaxLength = 400
)

// Summarizer produces one summary of text within the given length bounds.
type Summarizer interface {
	Summarize(ctx context.Context, text string, minLength, maxLength int) (string, error)
}

// Reduce summarizes the text of posts down to a single entry.
func Reduce(ctx context.Context, s Summarizer, posts []source.Post) ([]string, error) {
	texts := make([]string, len(posts))
	for i, p := range posts {
		texts[i] = p.Text
	}
	return ReduceTexts(ctx, s, texts)
}

// ReduceTexts groups texts into consecutive batches of BatchSize, joins each
// batch with a space, summarizes it, and repeats on the summaries until at
// most one text remains. Zero or one input text is returned unchanged
// without calling s.
func ReduceTexts(ctx context.Context, s Summarizer, texts []string) ([]string, error) {
	texts = slices.Clone(texts)
	if texts == nil {
		texts = []string{}
	}

	for level := 1; len(texts) > 1; level++ {
		next := make([]string, 0, (len(texts)+BatchSize-1)/BatchSize)
		for batch := range slices.Chunk(texts, BatchSize) {
			summary, err := s.Summarize(ctx, strings.Join(batch, " "), MinLength, MaxLength)
			if err != nil {
				return nil, fmt.Errorf("summarize level %d batch %d: %w", level, len(next)+1, err)
			}
			next = append(next, summary)
		}
		slog.Debug("summarize: reduced", "level", level, "from", len(texts), "to", len(next))
		texts = next
	}
	return texts, nil
}
