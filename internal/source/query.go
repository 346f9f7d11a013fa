package source

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// NoLimit as Query.Limit keeps every matching post.
const NoLimit = -1

// Query selects posts exchanged with the watched handle in a date window.
type Query struct {
	Direction Direction
	Since     time.Time // inclusive
	Until     time.Time // exclusive
	Limit     int       // maximum posts to keep; 0 keeps none, NoLimit keeps all
}

// BuildQuery renders the search expression understood by Twitter search:
//
//	(to:handle) since:2006-01-02 until:2006-01-02
func BuildQuery(handle string, d Direction, since, until time.Time) string {
	return fmt.Sprintf("(%s:%s) since:%s until:%s",
		d, handle, since.Format(dateLayout), until.Format(dateLayout))
}

// cacheKey identifies a retrieval. Dates are compared by calendar day since
// that is all the search expression carries.
type cacheKey struct {
	direction Direction
	since     string
	until     string
	limit     int
}

func (q Query) key() cacheKey {
	limit := q.Limit
	if limit < 0 {
		limit = NoLimit
	}
	return cacheKey{
		direction: q.Direction,
		since:     q.Since.Format(dateLayout),
		until:     q.Until.Format(dateLayout),
		limit:     limit,
	}
}

func (k cacheKey) String() string {
	return fmt.Sprintf("%s|%s|%s|%d", k.direction, k.since, k.until, k.limit)
}
