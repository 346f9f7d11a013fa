package privacy

import (
	"fmt"
	"regexp"

	"github.com/ppiankov/twitterwatch/internal/source"
)

const redactedPlaceholder = "[REDACTED]"

// Redactor masks configured patterns in post text before it is sent to an
// external classifier or summarizer. A nil or empty Redactor is a no-op.
type Redactor struct {
	patterns []*regexp.Regexp
}

// New compiles patterns into a Redactor.
// Returns an error if any pattern is invalid.
func New(patterns []string) (*Redactor, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compile redact pattern %q: %w", p, err)
		}
		compiled = append(compiled, re)
	}
	return &Redactor{patterns: compiled}, nil
}

// Len reports the number of compiled patterns.
func (r *Redactor) Len() int {
	if r == nil {
		return 0
	}
	return len(r.patterns)
}

// Apply replaces all matches in text with [REDACTED].
func (r *Redactor) Apply(text string) string {
	if r == nil {
		return text
	}
	for _, re := range r.patterns {
		text = re.ReplaceAllString(text, redactedPlaceholder)
	}
	return text
}

// Posts returns copies of posts with their text redacted. Usernames and
// dates are left alone so fan ranking is unaffected.
func (r *Redactor) Posts(posts []source.Post) []source.Post {
	out := make([]source.Post, len(posts))
	for i, p := range posts {
		p.Text = r.Apply(p.Text)
		out[i] = p
	}
	return out
}
