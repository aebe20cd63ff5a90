package inputs

import (
	"fmt"
	"strings"

	"github.com/yiblet/replkit/internal/history"
	"github.com/yiblet/replkit/internal/store"
)

// Mode selects how Search matches a query.
type Mode int

const (
	ModePrefix Mode = iota
	ModeInfix
	ModeRegex
)

func (m Mode) String() string {
	switch m {
	case ModePrefix:
		return "prefix"
	case ModeInfix:
		return "infix"
	case ModeRegex:
		return "regex"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode parses a mode name. The empty string selects prefix.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "", "prefix":
		return ModePrefix, nil
	case "infix":
		return ModeInfix, nil
	case "regex":
		return ModeRegex, nil
	default:
		return 0, fmt.Errorf("unknown search mode %q (want prefix, infix or regex)", s)
	}
}

// Strategy returns the match strategy for a prefix or infix mode.
func (m Mode) Strategy(log *history.Log) (history.Strategy, error) {
	switch m {
	case ModePrefix:
		return history.NewPrefixStrategy(log), nil
	case ModeInfix:
		return history.NewInfixStrategy(log), nil
	default:
		return nil, fmt.Errorf("no history strategy for %s mode", m)
	}
}

// Search matches query against a session's history. Results are ordered
// oldest to newest with identical inputs collapsed to their newest
// occurrence, for every mode. Regex mode is case-sensitive and runs in the
// store.
func (m *Manager) Search(sessionKey string, mode Mode, query string) ([]history.Match, error) {
	if mode != ModeRegex {
		log, err := m.LoadLog(sessionKey)
		if err != nil {
			return nil, err
		}
		strategy, err := mode.Strategy(log)
		if err != nil {
			return nil, err
		}
		return strategy.Matches(query), nil
	}

	q := &store.SearchQuery{
		SessionKey:    sessionKey,
		Pattern:       query,
		CaseSensitive: true,
		Limit:         m.historyLimit,
	}
	re, err := q.Compile()
	if err != nil {
		return nil, err
	}
	found, err := m.store.Inputs().Search(q)
	if err != nil {
		return nil, fmt.Errorf("failed to search history: %w", err)
	}

	// found is newest first.
	seen := make(map[string]bool, len(found))
	var matches []history.Match
	for _, e := range found {
		if seen[e.Input] {
			continue
		}
		seen[e.Input] = true
		loc := re.FindStringIndex(e.Input)
		if loc == nil {
			continue
		}
		matches = append(matches, history.Match{Entry: toEntry(e), Start: loc[0], End: loc[1]})
	}
	for i, j := 0, len(matches)-1; i < j; i, j = i+1, j-1 {
		matches[i], matches[j] = matches[j], matches[i]
	}
	return matches, nil
}
