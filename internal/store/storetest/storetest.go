// Package storetest holds conformance tests shared by the store
// implementations.
package storetest

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/yiblet/replkit/internal/store"
)

// Run runs the InputStore conformance suite. newStore must return a fresh,
// empty store on every call.
func Run(t *testing.T, newStore func(t *testing.T) store.Store) {
	tests := []struct {
		name string
		fn   func(t *testing.T, s store.InputStore)
	}{
		{"AppendAndGet", testAppendAndGet},
		{"AppendDefaultsTimestamp", testAppendDefaultsTimestamp},
		{"ListOrderAndLimit", testListOrderAndLimit},
		{"SessionsAreIsolated", testSessionsAreIsolated},
		{"DeleteAndNotFound", testDeleteAndNotFound},
		{"DeleteOldest", testDeleteOldest},
		{"Clear", testClear},
		{"Search", testSearch},
		{"ConcurrentAppend", testConcurrentAppend},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore(t)
			defer s.Close()
			tt.fn(t, s.Inputs())
		})
	}
}

var base = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func appendAt(t *testing.T, s store.InputStore, session, input string, offset int) *store.InputEntry {
	t.Helper()
	entry, err := s.Append(&store.AppendInput{
		SessionKey: session,
		Input:      input,
		Timestamp:  base.Add(time.Duration(offset) * time.Second),
	})
	if err != nil {
		t.Fatalf("Append(%q) error: %v", input, err)
	}
	return entry
}

func inputs(entries []*store.InputEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Input
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func testAppendAndGet(t *testing.T, s store.InputStore) {
	entry := appendAt(t, s, "r", "ls()", 0)
	if entry.ID == 0 {
		t.Error("Appended entry has zero ID")
	}

	got, err := s.Get(entry.ID)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got.Input != "ls()" || got.SessionKey != "r" {
		t.Errorf("Get() = %+v, want ls() in session r", got)
	}
	if !got.Timestamp.Equal(base) {
		t.Errorf("Timestamp = %v, want %v", got.Timestamp, base)
	}
}

func testAppendDefaultsTimestamp(t *testing.T, s store.InputStore) {
	before := time.Now().Add(-time.Second)
	entry, err := s.Append(&store.AppendInput{SessionKey: "r", Input: "x"})
	if err != nil {
		t.Fatalf("Append() error: %v", err)
	}
	if entry.Timestamp.Before(before) {
		t.Errorf("Timestamp = %v, want current time", entry.Timestamp)
	}
}

func testListOrderAndLimit(t *testing.T, s store.InputStore) {
	appendAt(t, s, "r", "first", 1)
	appendAt(t, s, "r", "third", 3)
	appendAt(t, s, "r", "second", 2)

	all, err := s.List("r", 0)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if want := []string{"third", "second", "first"}; !equal(inputs(all), want) {
		t.Errorf("List() = %v, want %v", inputs(all), want)
	}

	limited, err := s.List("r", 2)
	if err != nil {
		t.Fatalf("List(limit) error: %v", err)
	}
	if want := []string{"third", "second"}; !equal(inputs(limited), want) {
		t.Errorf("List(2) = %v, want %v", inputs(limited), want)
	}
}

func testSessionsAreIsolated(t *testing.T, s store.InputStore) {
	appendAt(t, s, "r", "ls()", 0)
	appendAt(t, s, "python", "dir()", 1)
	appendAt(t, s, "python", "len(x)", 2)

	n, err := s.Count("python")
	if err != nil {
		t.Fatalf("Count() error: %v", err)
	}
	if n != 2 {
		t.Errorf("Count(python) = %d, want 2", n)
	}

	r, _ := s.List("r", 0)
	if !equal(inputs(r), []string{"ls()"}) {
		t.Errorf("List(r) = %v, want [ls()]", inputs(r))
	}

	sessions, err := s.Sessions()
	if err != nil {
		t.Fatalf("Sessions() error: %v", err)
	}
	if !equal(sessions, []string{"python", "r"}) {
		t.Errorf("Sessions() = %v, want [python r]", sessions)
	}
}

func testDeleteAndNotFound(t *testing.T, s store.InputStore) {
	entry := appendAt(t, s, "r", "ls()", 0)

	if err := s.Delete(entry.ID); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, err := s.Get(entry.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
	}
	if err := s.Delete(entry.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Delete() twice error = %v, want ErrNotFound", err)
	}
}

func testDeleteOldest(t *testing.T, s store.InputStore) {
	for i := 0; i < 5; i++ {
		appendAt(t, s, "r", fmt.Sprintf("in-%d", i), i)
	}
	appendAt(t, s, "python", "other", 0)

	if err := s.DeleteOldest("r", 2); err != nil {
		t.Fatalf("DeleteOldest() error: %v", err)
	}
	left, _ := s.List("r", 0)
	if want := []string{"in-4", "in-3", "in-2"}; !equal(inputs(left), want) {
		t.Errorf("List() after DeleteOldest = %v, want %v", inputs(left), want)
	}

	if err := s.DeleteOldest("r", 10); err != nil {
		t.Fatalf("DeleteOldest(excess) error: %v", err)
	}
	if n, _ := s.Count("r"); n != 0 {
		t.Errorf("Count(r) = %d, want 0", n)
	}
	if n, _ := s.Count("python"); n != 1 {
		t.Errorf("Count(python) = %d, want 1 (untouched)", n)
	}
}

func testClear(t *testing.T, s store.InputStore) {
	appendAt(t, s, "r", "a", 0)
	appendAt(t, s, "r", "b", 1)
	appendAt(t, s, "python", "c", 2)

	if err := s.Clear("r"); err != nil {
		t.Fatalf("Clear() error: %v", err)
	}
	if n, _ := s.Count("r"); n != 0 {
		t.Errorf("Count(r) = %d, want 0", n)
	}
	if n, _ := s.Count("python"); n != 1 {
		t.Errorf("Count(python) = %d, want 1", n)
	}
}

func testSearch(t *testing.T, s store.InputStore) {
	appendAt(t, s, "r", "ls()", 0)
	appendAt(t, s, "r", "LS(all=TRUE)", 1)
	appendAt(t, s, "r", "print(x)", 2)
	appendAt(t, s, "python", "ls", 3)

	tests := []struct {
		name  string
		query store.SearchQuery
		want  []string
	}{
		{"case insensitive", store.SearchQuery{SessionKey: "r", Pattern: "^ls"}, []string{"LS(all=TRUE)", "ls()"}},
		{"case sensitive", store.SearchQuery{SessionKey: "r", Pattern: "^ls", CaseSensitive: true}, []string{"ls()"}},
		{"all sessions", store.SearchQuery{Pattern: "^ls", CaseSensitive: true}, []string{"ls", "ls()"}},
		{"limit", store.SearchQuery{SessionKey: "r", Pattern: `\(`, Limit: 2}, []string{"print(x)", "LS(all=TRUE)"}},
		{"empty pattern", store.SearchQuery{SessionKey: "r"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Search(&tt.query)
			if err != nil {
				t.Fatalf("Search() error: %v", err)
			}
			if !equal(inputs(got), tt.want) {
				t.Errorf("Search() = %v, want %v", inputs(got), tt.want)
			}
		})
	}

	if _, err := s.Search(&store.SearchQuery{Pattern: "["}); err == nil {
		t.Error("Expected error for invalid regex")
	}
}

func testConcurrentAppend(t *testing.T, s store.InputStore) {
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := s.Append(&store.AppendInput{SessionKey: "r", Input: fmt.Sprintf("in-%d", i)}); err != nil {
				t.Errorf("Append() error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if n, _ := s.Count("r"); n != 10 {
		t.Errorf("Count() = %d, want 10", n)
	}
}
