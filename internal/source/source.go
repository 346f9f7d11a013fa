// Package source retrieves posts that mention or come from a watched handle.
package source

import (
	"context"
	"fmt"
	"iter"
	"strings"
	"time"
)

// Post is a single retrieved message.
type Post struct {
	Date     time.Time // publication time as reported by the search backend
	Username string    // author handle, without the leading @
	Text     string    // post body
}

// Direction selects whether the watched handle is the recipient or the author.
type Direction string

const (
	To   Direction = "to"
	From Direction = "from"
)

// ParseDirection accepts "to" or "from" in any case.
func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToLower(strings.TrimSpace(s))) {
	case To:
		return To, nil
	case From:
		return From, nil
	default:
		return "", fmt.Errorf("unknown direction %q (want to or from)", s)
	}
}

func (d Direction) String() string {
	return string(d)
}

// Searcher runs a search expression against a social platform.
type Searcher interface {
	// Name returns the backend identifier (e.g. "snscrape").
	Name() string

	// Search yields posts matching query in backend order. The sequence is
	// lazy and can be consumed once; stopping early releases the backend.
	Search(ctx context.Context, query string) iter.Seq2[Post, error]
}
