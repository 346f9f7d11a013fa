package summarize

import (
	"context"
	"regexp"
	"strings"
)

var (
	urlRe     = regexp.MustCompile(`https?://\S+`)
	mentionRe = regexp.MustCompile(`(^|\s)@\w+`)
)

// ExtractiveSummarizer builds a summary from the leading sentences of the
// input. Lengths are counted in words. It needs no network access.
type ExtractiveSummarizer struct{}

// Summarize keeps whole sentences, in order, until at least minLength words
// are collected, never exceeding maxLength words. Links and @mentions are
// dropped first.
func (e *ExtractiveSummarizer) Summarize(_ context.Context, text string, minLength, maxLength int) (string, error) {
	text = urlRe.ReplaceAllString(text, " ")
	text = mentionRe.ReplaceAllString(text, "$1")

	if maxLength <= 0 {
		maxLength = MaxLength
	}

	var kept []string
	words := 0
	for _, sent := range splitSentences(text) {
		sentWords := strings.Fields(sent)
		sent = strings.Join(sentWords, " ")
		if words+len(sentWords) > maxLength {
			if words < minLength {
				kept = append(kept, strings.Join(sentWords[:maxLength-words], " ")+"...")
			}
			break
		}
		kept = append(kept, sent)
		words += len(sentWords)
		if words >= minLength {
			break
		}
	}

	return strings.Join(kept, " "), nil
}

// splitSentences splits text into sentences by ". ", "! ", "? " or newline
// boundaries.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			sentences = append(sentences, s)
		}
		current.Reset()
	}

	for i := 0; i < len(text); i++ {
		current.WriteByte(text[i])

		if text[i] == '\n' {
			flush()
			continue
		}

		if isTerminator(text[i]) && i+1 < len(text) && (text[i+1] == ' ' || text[i+1] == '\n') {
			flush()
		}
	}
	flush()

	return sentences
}

func isTerminator(b byte) bool {
	return b == '.' || b == '!' || b == '?'
}
