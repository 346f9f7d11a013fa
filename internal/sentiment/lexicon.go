package sentiment

import (
	"cmp"
	"context"
	"slices"
	"strings"
)

// DefaultLexicon is a small English keyword list for the default labels.
var DefaultLexicon = map[string][]string{
	"positive": {"love", "great", "thanks", "thank you", "awesome", "congrats", "good", "agree", "amazing", "well done"},
	"negative": {"hate", "suck", "bad", "awful", "worst", "boo", "stupid", "wrong", "terrible", "disgrace"},
}

// LexiconClassifier scores texts by counting keyword hits per label. It runs
// offline and is deterministic.
type LexiconClassifier struct {
	keywords map[string][]string
}

// NewLexicon creates a keyword classifier. A nil lexicon uses DefaultLexicon.
func NewLexicon(lexicon map[string][]string) *LexiconClassifier {
	if len(lexicon) == 0 {
		lexicon = DefaultLexicon
	}
	lowered := make(map[string][]string, len(lexicon))
	for label, kws := range lexicon {
		for _, kw := range kws {
			lowered[label] = append(lowered[label], strings.ToLower(kw))
		}
	}
	return &LexiconClassifier{keywords: lowered}
}

// Classify gives each label the share of keyword hits it received in a text.
// A text with no hits spreads its score evenly over all labels. Each result
// lists every label, highest score first.
func (l *LexiconClassifier) Classify(_ context.Context, texts, labels []string) ([][]LabelScore, error) {
	out := make([][]LabelScore, len(texts))
	for i, text := range texts {
		out[i] = l.score(strings.ToLower(text), labels)
	}
	return out, nil
}

func (l *LexiconClassifier) score(textLower string, labels []string) []LabelScore {
	hits := make([]int, len(labels))
	total := 0
	for i, label := range labels {
		for _, kw := range l.keywords[label] {
			hits[i] += strings.Count(textLower, kw)
		}
		total += hits[i]
	}

	scores := make([]LabelScore, len(labels))
	for i, label := range labels {
		s := 1.0 / float64(len(labels))
		if total > 0 {
			s = float64(hits[i]) / float64(total)
		}
		scores[i] = LabelScore{Label: label, Score: s}
	}

	slices.SortStableFunc(scores, func(a, b LabelScore) int {
		return cmp.Compare(b.Score, a.Score)
	})
	return scores
}
