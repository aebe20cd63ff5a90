// Package inputs connects the in-memory history log to persisted storage:
// it seeds a session's log from the store, commits submitted code to both,
// and enforces the history limit.
package inputs

import (
	"fmt"
	"strings"
	"time"

	"github.com/yiblet/replkit/internal/history"
	"github.com/yiblet/replkit/internal/store"
)

const (
	DefaultHistoryLimit = history.DefaultCapacity
)

// Manager manages per-session input history using a store interface.
type Manager struct {
	store        store.Store
	historyLimit int
	now          func() time.Time
}

// NewManager creates a new input manager with the default history limit.
func NewManager(s store.Store) *Manager {
	return NewManagerWithLimit(s, DefaultHistoryLimit)
}

// NewManagerWithLimit creates a new input manager with a custom history limit.
func NewManagerWithLimit(s store.Store, historyLimit int) *Manager {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	if historyLimit > history.MaxCapacity {
		historyLimit = history.MaxCapacity
	}

	return &Manager{
		store:        s,
		historyLimit: historyLimit,
		now:          time.Now,
	}
}

// GetInputEntries returns a session's persisted entries, oldest first, capped
// at the history limit.
func (m *Manager) GetInputEntries(sessionKey string) ([]history.Entry, error) {
	stored, err := m.store.Inputs().List(sessionKey, m.historyLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load history for %s: %w", sessionKey, err)
	}

	// List is newest first.
	entries := make([]history.Entry, len(stored))
	for i, e := range stored {
		entries[len(stored)-1-i] = toEntry(e)
	}
	return entries, nil
}

// LoadLog builds a session's history log from the store.
func (m *Manager) LoadLog(sessionKey string) (*history.Log, error) {
	entries, err := m.GetInputEntries(sessionKey)
	if err != nil {
		return nil, err
	}
	return history.NewLog(m.historyLimit, entries...), nil
}

// Commit records submitted code in the store and then in log. Blank code and
// code equal to the last entry are skipped; the return value reports whether
// an entry was added. When the store rejects the entry, log is left without
// it.
func (m *Manager) Commit(sessionKey string, log *history.Log, code string) (bool, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return false, nil
	}
	if last, err := log.Last(); err == nil && last.Input == code {
		log.ResetToEnd()
		return false, nil
	}

	now := m.now()
	if _, err := m.store.Inputs().Append(&store.AppendInput{
		SessionKey: sessionKey,
		Input:      code,
		Timestamp:  now,
	}); err != nil {
		log.ResetToEnd()
		return false, fmt.Errorf("failed to store input: %w", err)
	}
	log.Add(history.Entry{Input: code, Timestamp: now.UnixMilli()})

	if err := m.cleanupOldEntries(sessionKey); err != nil {
		return true, fmt.Errorf("failed to cleanup: %w", err)
	}
	return true, nil
}

// Add appends code to a session's stored history without a live log.
func (m *Manager) Add(sessionKey, code string) (*store.InputEntry, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("input is empty")
	}

	entry, err := m.store.Inputs().Append(&store.AppendInput{
		SessionKey: sessionKey,
		Input:      code,
		Timestamp:  m.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store input: %w", err)
	}

	if err := m.cleanupOldEntries(sessionKey); err != nil {
		return nil, fmt.Errorf("failed to cleanup: %w", err)
	}
	return entry, nil
}

// List returns a session's stored entries, newest first.
func (m *Manager) List(sessionKey string) ([]*store.InputEntry, error) {
	return m.store.Inputs().List(sessionKey, m.historyLimit)
}

// Delete removes a stored entry by ID.
func (m *Manager) Delete(id uint) error {
	return m.store.Inputs().Delete(id)
}

// Clear removes a session's stored history.
func (m *Manager) Clear(sessionKey string) error {
	return m.store.Inputs().Clear(sessionKey)
}

// Sessions returns the session keys with stored history.
func (m *Manager) Sessions() ([]string, error) {
	return m.store.Inputs().Sessions()
}

// Size returns the number of stored entries for a session.
func (m *Manager) Size(sessionKey string) (int, error) {
	return m.store.Inputs().Count(sessionKey)
}

// HistoryLimit returns the configured history limit.
func (m *Manager) HistoryLimit() int {
	return m.historyLimit
}

// Close releases store resources.
func (m *Manager) Close() error {
	return m.store.Close()
}

// cleanupOldEntries removes a session's entries exceeding the history limit.
func (m *Manager) cleanupOldEntries(sessionKey string) error {
	count, err := m.store.Inputs().Count(sessionKey)
	if err != nil {
		return err
	}

	if count > m.historyLimit {
		return m.store.Inputs().DeleteOldest(sessionKey, count-m.historyLimit)
	}

	return nil
}

func toEntry(e *store.InputEntry) history.Entry {
	return history.Entry{Input: e.Input, Timestamp: e.Timestamp.UnixMilli()}
}
