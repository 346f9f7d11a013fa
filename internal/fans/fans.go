// Package fans ranks the accounts that interact with a watched handle.
package fans

import (
	"cmp"
	"slices"
	"strings"

	"github.com/ppiankov/twitterwatch/internal/source"
)

// Counts maps a username to the number of posts it authored.
type Counts map[string]int

// Fan is a username with its post count.
type Fan struct {
	Username string
	Posts    int
}

// Tally counts posts per author.
func Tally(posts []source.Post) Counts {
	counts := make(Counts)
	for _, p := range posts {
		counts[p.Username]++
	}
	return counts
}

// Count returns how many posts name authored; zero when unseen.
func (c Counts) Count(name string) int {
	return c[name]
}

// Lexical orders the distinct usernames by descending byte-wise string
// comparison. Counts do not affect the order.
func (c Counts) Lexical() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	slices.SortFunc(names, func(a, b string) int {
		return strings.Compare(b, a)
	})
	return names
}

// ByFrequency orders fans by post count descending, then username ascending.
func (c Counts) ByFrequency() []Fan {
	ranked := make([]Fan, 0, len(c))
	for name, n := range c {
		ranked = append(ranked, Fan{Username: name, Posts: n})
	}
	slices.SortFunc(ranked, func(a, b Fan) int {
		if n := cmp.Compare(b.Posts, a.Posts); n != 0 {
			return n
		}
		return strings.Compare(a.Username, b.Username)
	})
	return ranked
}

// Annotate pairs each name with its count, keeping the given order.
func (c Counts) Annotate(names []string) []Fan {
	out := make([]Fan, len(names))
	for i, name := range names {
		out[i] = Fan{Username: name, Posts: c[name]}
	}
	return out
}

// Rank returns the distinct authors of posts in descending lexicographic
// order of their usernames.
//
// The ordering ignores how often each author posted. Use
// Tally(posts).ByFrequency for a ranking by activity.
func Rank(posts []source.Post) []string {
	return Tally(posts).Lexical()
}
