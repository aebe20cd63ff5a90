// Package history implements the console input history: a bounded,
// append-only log with a navigation cursor, the match strategies used by the
// history browser, and the up/down navigator that stashes the fragment being
// edited.
package history

import (
	"errors"
	"sync"
)

const (
	// DefaultCapacity is the number of entries kept when no capacity is given.
	DefaultCapacity = 1000
	// MaxCapacity is the absolute maximum capacity of a log.
	MaxCapacity = 10000
)

var (
	// ErrAtStart is returned by Previous when the cursor is on the oldest entry.
	ErrAtStart = errors.New("history: at start of log")
	// ErrAtEnd is returned by Next when the cursor is already at the end.
	ErrAtEnd = errors.New("history: at end of log")
	// ErrEmptyLog is returned by Last when the log has no entries.
	ErrEmptyLog = errors.New("history: log is empty")
)

// Entry is a single committed input.
type Entry struct {
	Input string `json:"input"`
	// Timestamp is the commit time in unix milliseconds.
	Timestamp int64 `json:"when"`
}

// Log is a fixed-capacity, FIFO-evicting record of past inputs with a
// navigation cursor.
//
// The cursor is always in [0, Len()]. Len() is the end position: no entry is
// selected and the user is editing a fresh fragment.
type Log struct {
	mu       sync.RWMutex
	entries  []Entry
	capacity int
	cursor   int
}

// NewLog creates a log with the given capacity, seeded with entries (oldest
// first). Only the last capacity seed entries are kept. If capacity is 0 or
// negative, DefaultCapacity is used; it is clamped to MaxCapacity.
func NewLog(capacity int, entries ...Entry) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if capacity > MaxCapacity {
		capacity = MaxCapacity
	}

	if len(entries) > capacity {
		entries = entries[len(entries)-capacity:]
	}
	seeded := make([]Entry, len(entries))
	copy(seeded, entries)

	return &Log{
		entries:  seeded,
		capacity: capacity,
		cursor:   len(seeded),
	}
}

// Add appends an entry, evicting the oldest one when the log is full.
// Adding resets the cursor to the end.
func (l *Log) Add(e Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, e)
	if len(l.entries) > l.capacity {
		// Reslicing drops the head; append compacts into a fresh array when it
		// next grows, so eviction stays O(1) amortized.
		l.entries[0] = Entry{}
		l.entries = l.entries[1:]
	}
	l.cursor = len(l.entries)
}

// Previous moves the cursor back one entry and returns the entry there.
func (l *Log) Previous() (Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cursor == 0 {
		return Entry{}, ErrAtStart
	}
	l.cursor--
	return l.entries[l.cursor], nil
}

// Next moves the cursor forward one entry and returns the entry at the new
// cursor. When the step lands on the end position the zero Entry is returned
// with a nil error and IsAtEnd reports true. Calling Next while already at the
// end returns ErrAtEnd and leaves the cursor alone.
func (l *Log) Next() (Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cursor >= len(l.entries) {
		return Entry{}, ErrAtEnd
	}
	l.cursor++
	if l.cursor == len(l.entries) {
		return Entry{}, nil
	}
	return l.entries[l.cursor], nil
}

// Current returns the entry under the cursor. It reports false at the end.
func (l *Log) Current() (Entry, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.cursor >= len(l.entries) {
		return Entry{}, false
	}
	return l.entries[l.cursor], true
}

// IsAtEnd reports whether the cursor is past the newest entry.
func (l *Log) IsAtEnd() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cursor == len(l.entries)
}

// Last returns the most recently added entry without moving the cursor.
func (l *Log) Last() (Entry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if len(l.entries) == 0 {
		return Entry{}, ErrEmptyLog
	}
	return l.entries[len(l.entries)-1], nil
}

// ResetToEnd moves the cursor to the end position.
func (l *Log) ResetToEnd() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cursor = len(l.entries)
}

// Clear removes all entries.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
	l.cursor = 0
}

// Len returns the number of entries.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Cap returns the capacity.
func (l *Log) Cap() int {
	return l.capacity
}

// Cursor returns the cursor position.
func (l *Log) Cursor() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cursor
}

// Entries returns a copy of all entries, oldest to newest.
func (l *Log) Entries() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make([]Entry, len(l.entries))
	copy(result, l.entries)
	return result
}
