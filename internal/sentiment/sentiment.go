// Package sentiment averages per-post classifier scores into a distribution.
package sentiment

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/ppiankov/twitterwatch/internal/source"
)

// DefaultLabels is the label set used when none is configured.
var DefaultLabels = []string{"positive", "neutral", "negative"}

// LabelScore is one label assigned to a text with the classifier's score.
type LabelScore struct {
	Label string
	Score float64
}

// Classifier scores texts against candidate labels. The result holds one
// entry per input text, in input order; an entry need not cover every label.
type Classifier interface {
	Classify(ctx context.Context, texts, labels []string) ([][]LabelScore, error)
}

// MeanPolicy selects the divisor of the running mean.
type MeanPolicy string

const (
	// GlobalIndex divides by the 1-based position of the post, whether or
	// not the label appeared in earlier posts. Labels missing from some
	// results are pulled towards zero.
	GlobalIndex MeanPolicy = "global"

	// PerLabel divides by the number of times the label has been scored,
	// giving the true mean over the posts that carried it.
	PerLabel MeanPolicy = "per_label"
)

// ParseMeanPolicy accepts "global" or "per_label".
func ParseMeanPolicy(s string) (MeanPolicy, error) {
	switch MeanPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case GlobalIndex, "":
		return GlobalIndex, nil
	case PerLabel:
		return PerLabel, nil
	default:
		return "", fmt.Errorf("unknown mean policy %q (want global or per_label)", s)
	}
}

// Distribution maps a label to its mean score.
type Distribution map[string]float64

// Score returns the mean for label, or 0 if the classifier never returned it.
func (d Distribution) Score(label string) float64 {
	return d[label]
}

// Ranked returns the labels by descending score, ties by label.
func (d Distribution) Ranked() []LabelScore {
	out := make([]LabelScore, 0, len(d))
	for label, score := range d {
		out = append(out, LabelScore{Label: label, Score: score})
	}
	slices.SortFunc(out, func(a, b LabelScore) int {
		if n := cmp.Compare(b.Score, a.Score); n != 0 {
			return n
		}
		return strings.Compare(a.Label, b.Label)
	})
	return out
}

// Aggregate classifies every post text in a single classifier call and
// folds the results into a running mean per label.
func Aggregate(ctx context.Context, c Classifier, posts []source.Post, labels []string, policy MeanPolicy) (Distribution, error) {
	texts := make([]string, len(posts))
	for i, p := range posts {
		texts[i] = p.Text
	}

	results, err := c.Classify(ctx, texts, labels)
	if err != nil {
		return nil, fmt.Errorf("classify %d posts: %w", len(texts), err)
	}
	return Average(results, policy), nil
}

// Average folds classifier results, taken in order, into an online mean:
//
//	mean = (mean*(n-1) + score) / n
//
// where n depends on policy. Only labels present in results appear in the
// returned distribution.
func Average(results [][]LabelScore, policy MeanPolicy) Distribution {
	dist := make(Distribution)
	updates := make(map[string]int)

	for i, item := range results {
		for _, ls := range item {
			n := i + 1
			if policy == PerLabel {
				updates[ls.Label]++
				n = updates[ls.Label]
			}
			dist[ls.Label] = (dist[ls.Label]*float64(n-1) + ls.Score) / float64(n)
		}
	}
	return dist
}
