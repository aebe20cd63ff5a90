// Package store defines the storage interfaces for replkit's persistence
// layer: the per-session console input history that seeds the in-memory
// history log at session start.
package store

import "errors"

// ErrNotFound is returned when an entry does not exist.
var ErrNotFound = errors.New("store: entry not found")

// InputStore manages persisted console inputs.
// Entries are grouped by session key (typically the language id) and
// ordered by commit timestamp.
type InputStore interface {
	// Append stores a new input for a session.
	// If the timestamp is zero, the storage layer uses the current time.
	// Returns the created entry with generated ID.
	Append(input *AppendInput) (*InputEntry, error)

	// List returns a session's entries ordered by timestamp (newest first).
	// If limit is 0, all entries are returned. If limit > 0, at most limit
	// entries are returned.
	List(sessionKey string, limit int) ([]*InputEntry, error)

	// Get retrieves a single entry by ID.
	// Returns ErrNotFound if the entry does not exist.
	Get(id uint) (*InputEntry, error)

	// Delete removes an entry by ID.
	// Returns ErrNotFound if the entry does not exist.
	Delete(id uint) error

	// DeleteOldest removes a session's N oldest entries based on timestamp.
	// If count exceeds the number of entries, all of them are deleted.
	DeleteOldest(sessionKey string, count int) error

	// Count returns the number of entries stored for a session.
	Count(sessionKey string) (int, error)

	// Clear removes all entries of a session.
	Clear(sessionKey string) error

	// Sessions returns the distinct session keys that have entries, sorted.
	Sessions() ([]string, error)

	// Search finds entries whose input matches the query pattern.
	Search(query *SearchQuery) ([]*InputEntry, error)

	// Close releases any resources (DB connections, file handles, etc.).
	Close() error
}

// Store owns the input store and manages its lifecycle.
type Store interface {
	// Inputs returns the input history store.
	Inputs() InputStore

	// Close releases all resources.
	Close() error
}
