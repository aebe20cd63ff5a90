package store

import (
	"fmt"
	"regexp"
	"time"
)

// InputEntry is one committed console input.
type InputEntry struct {
	// ID is the unique identifier for this entry.
	ID uint

	// SessionKey groups entries; a console session only sees its own key.
	SessionKey string

	// Input is the committed text.
	Input string

	// Timestamp is the commit time used for ordering.
	Timestamp time.Time

	// CreatedAt is managed by the storage layer.
	CreatedAt time.Time
}

// AppendInput contains the data needed to store a new input.
type AppendInput struct {
	SessionKey string
	Input      string

	// Timestamp is the commit time. If zero, the current time is used.
	Timestamp time.Time
}

// SearchQuery contains parameters for searching stored inputs.
type SearchQuery struct {
	// SessionKey restricts the search to one session. Empty searches all.
	SessionKey string

	// Pattern is the regex pattern to search for.
	Pattern string

	// CaseSensitive indicates whether the search is case-sensitive.
	CaseSensitive bool

	// Limit is the maximum number of results to return.
	// A value of 0 means no limit.
	Limit int
}

// Compile compiles the query pattern, honouring CaseSensitive.
func (q *SearchQuery) Compile() (*regexp.Regexp, error) {
	pattern := q.Pattern
	if !q.CaseSensitive {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid regex pattern: %w", err)
	}
	return re, nil
}
