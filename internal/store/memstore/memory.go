// Package memstore provides an in-memory implementation of the store interfaces.
// This implementation is designed for fast unit testing and does not persist data.
package memstore

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/yiblet/replkit/internal/store"
)

// MemoryStore is an in-memory implementation of store.Store.
// It is thread-safe via a mutex. Data exists only for the lifetime of the
// process.
type MemoryStore struct {
	inputs *memoryInputStore
}

// NewMemoryStore creates a new in-memory store for testing.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		inputs: &memoryInputStore{
			entries: make(map[uint]*store.InputEntry),
			nextID:  1,
		},
	}
}

// Inputs returns the input store.
func (m *MemoryStore) Inputs() store.InputStore {
	return m.inputs
}

// Close releases resources (no-op for memory store).
func (m *MemoryStore) Close() error {
	return nil
}

// memoryInputStore implements store.InputStore using a map keyed by ID.
type memoryInputStore struct {
	mu      sync.RWMutex
	entries map[uint]*store.InputEntry
	nextID  uint
}

func (m *memoryInputStore) Append(input *store.AppendInput) (*store.InputEntry, error) {
	if input == nil {
		return nil, fmt.Errorf("append: nil input")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	timestamp := input.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	entry := &store.InputEntry{
		ID:         m.nextID,
		SessionKey: input.SessionKey,
		Input:      input.Input,
		Timestamp:  timestamp,
		CreatedAt:  time.Now(),
	}
	m.nextID++
	m.entries[entry.ID] = entry

	return copyEntry(entry), nil
}

// List returns a session's entries newest first.
func (m *memoryInputStore) List(sessionKey string, limit int) ([]*store.InputEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entries := m.sessionEntries(sessionKey)
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (m *memoryInputStore) Get(id uint) (*store.InputEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", store.ErrNotFound, id)
	}
	return copyEntry(entry), nil
}

func (m *memoryInputStore) Delete(id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entries[id]; !ok {
		return fmt.Errorf("%w: %d", store.ErrNotFound, id)
	}
	delete(m.entries, id)
	return nil
}

func (m *memoryInputStore) DeleteOldest(sessionKey string, count int) error {
	if count <= 0 {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	entries := m.sessionEntries(sessionKey)
	if count > len(entries) {
		count = len(entries)
	}
	// entries is newest first; the oldest are at the tail.
	for _, entry := range entries[len(entries)-count:] {
		delete(m.entries, entry.ID)
	}
	return nil
}

func (m *memoryInputStore) Count(sessionKey string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, entry := range m.entries {
		if entry.SessionKey == sessionKey {
			count++
		}
	}
	return count, nil
}

func (m *memoryInputStore) Clear(sessionKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, entry := range m.entries {
		if entry.SessionKey == sessionKey {
			delete(m.entries, id)
		}
	}
	return nil
}

func (m *memoryInputStore) Sessions() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]bool)
	var sessions []string
	for _, entry := range m.entries {
		if !seen[entry.SessionKey] {
			seen[entry.SessionKey] = true
			sessions = append(sessions, entry.SessionKey)
		}
	}
	sort.Strings(sessions)
	return sessions, nil
}

// Search matches the pattern against inputs, newest first.
func (m *memoryInputStore) Search(query *store.SearchQuery) ([]*store.InputEntry, error) {
	if query.Pattern == "" {
		return []*store.InputEntry{}, nil
	}

	re, err := query.Compile()
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var candidates []*store.InputEntry
	if query.SessionKey != "" {
		candidates = m.sessionEntries(query.SessionKey)
	} else {
		candidates = m.sortedEntries(func(*store.InputEntry) bool { return true })
	}

	results := []*store.InputEntry{}
	for _, entry := range candidates {
		if re.MatchString(entry.Input) {
			results = append(results, entry)
			if query.Limit > 0 && len(results) >= query.Limit {
				break
			}
		}
	}
	return results, nil
}

func (m *memoryInputStore) Close() error {
	return nil
}

// sessionEntries returns copies of a session's entries, newest first.
// Callers must hold the lock.
func (m *memoryInputStore) sessionEntries(sessionKey string) []*store.InputEntry {
	return m.sortedEntries(func(e *store.InputEntry) bool { return e.SessionKey == sessionKey })
}

func (m *memoryInputStore) sortedEntries(keep func(*store.InputEntry) bool) []*store.InputEntry {
	entries := make([]*store.InputEntry, 0, len(m.entries))
	for _, entry := range m.entries {
		if keep(entry) {
			entries = append(entries, copyEntry(entry))
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Timestamp.Equal(entries[j].Timestamp) {
			return entries[i].ID > entries[j].ID
		}
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
	return entries
}

func copyEntry(e *store.InputEntry) *store.InputEntry {
	c := *e
	return &c
}
