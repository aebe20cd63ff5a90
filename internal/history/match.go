package history

import "strings"

// Match is a history entry that matched a query. Start and End are the byte
// offsets of the matched span within Input.
type Match struct {
	Entry
	Start int
	End   int
}

// Strategy maps a query to matching history entries.
//
// Results are ordered oldest to newest; consumers pick the most recent match
// by indexing from the end. Implementations must not mutate the log.
type Strategy interface {
	Matches(query string) []Match
}

// EmptyStrategy never matches. It stands in when there is no history yet.
type EmptyStrategy struct{}

// Matches always returns nil.
func (EmptyStrategy) Matches(string) []Match {
	return nil
}

// PrefixStrategy matches entries whose input starts with the query.
type PrefixStrategy struct {
	log *Log
}

// NewPrefixStrategy creates a prefix strategy over log.
func NewPrefixStrategy(log *Log) *PrefixStrategy {
	return &PrefixStrategy{log: log}
}

// Matches returns deduplicated prefix matches, oldest to newest.
func (s *PrefixStrategy) Matches(query string) []Match {
	return collect(s.log, func(input string) int {
		if strings.HasPrefix(input, query) {
			return 0
		}
		return -1
	}, len(query))
}

// InfixStrategy matches entries that contain the query anywhere.
type InfixStrategy struct {
	log *Log
}

// NewInfixStrategy creates an infix strategy over log.
func NewInfixStrategy(log *Log) *InfixStrategy {
	return &InfixStrategy{log: log}
}

// Matches returns deduplicated infix matches, oldest to newest. The span
// covers the first occurrence of query.
func (s *InfixStrategy) Matches(query string) []Match {
	return collect(s.log, func(input string) int {
		return strings.Index(input, query)
	}, len(query))
}

// collect walks the log newest to oldest so the first time an input is seen
// is its most recent occurrence, then reverses into oldest-to-newest order.
func collect(log *Log, index func(input string) int, width int) []Match {
	if log == nil {
		return nil
	}
	entries := log.Entries()

	seen := make(map[string]struct{}, len(entries))
	var newestFirst []Match
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if _, dup := seen[e.Input]; dup {
			continue
		}
		start := index(e.Input)
		if start < 0 {
			continue
		}
		seen[e.Input] = struct{}{}
		newestFirst = append(newestFirst, Match{Entry: e, Start: start, End: start + width})
	}

	matches := make([]Match, len(newestFirst))
	for i, m := range newestFirst {
		matches[len(newestFirst)-1-i] = m
	}
	return matches
}
