package dbstore

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/yiblet/replkit/internal/store"
	"github.com/yiblet/replkit/internal/store/storetest"
)

// setupTestDB creates a temporary database for testing
func setupTestDB(t *testing.T) (*SQLiteStore, func()) {
	t.Helper()

	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	st, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}

	cleanup := func() {
		st.Close()
	}

	return st, cleanup
}

func TestSQLiteStore_Conformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		st, _ := setupTestDB(t)
		return st
	})
}

// TestNewSQLiteStore tests database initialization
func TestNewSQLiteStore(t *testing.T) {
	st, cleanup := setupTestDB(t)
	defer cleanup()

	if _, err := os.Stat(st.Path()); err != nil {
		t.Fatalf("expected database file to exist: %v", err)
	}

	version, err := st.Version()
	if err != nil {
		t.Fatalf("failed to read version: %v", err)
	}
	if version != SchemaVersion {
		t.Errorf("expected version %s, got %s", SchemaVersion, version)
	}
}

// TestPersistenceAcrossReopen verifies entries survive closing the store
func TestPersistenceAcrossReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")

	st, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	ts := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	if _, err := st.Inputs().Append(&store.AppendInput{SessionKey: "r", Input: "summary(df)", Timestamp: ts}); err != nil {
		t.Fatalf("Append() error: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	reopened, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	defer reopened.Close()

	entries, err := reopened.Inputs().List("r", 0)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(entries) != 1 || entries[0].Input != "summary(df)" {
		t.Fatalf("List() = %+v, want one summary(df) entry", entries)
	}
	if !entries[0].Timestamp.Equal(ts) {
		t.Errorf("Timestamp = %v, want %v", entries[0].Timestamp, ts)
	}

	version, err := reopened.Version()
	if err != nil || version != SchemaVersion {
		t.Errorf("Version() = %q, %v; want %s", version, err, SchemaVersion)
	}
}

// TestMultilineInput verifies inputs with newlines round-trip unchanged
func TestMultilineInput(t *testing.T) {
	st, cleanup := setupTestDB(t)
	defer cleanup()

	code := "for (i in 1:3) {\n  print(i)\n}"
	entry, err := st.Inputs().Append(&store.AppendInput{SessionKey: "r", Input: code})
	if err != nil {
		t.Fatalf("Append() error: %v", err)
	}

	got, err := st.Inputs().Get(entry.ID)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got.Input != code {
		t.Errorf("Input = %q, want %q", got.Input, code)
	}
}
