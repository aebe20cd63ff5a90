package history

import "testing"

func TestNavigatorEmptyLog(t *testing.T) {
	n := NewNavigator(NewLog(10))
	if _, ok := n.Up("draft"); ok {
		t.Error("Up() on empty log should report false")
	}
	if _, ok := n.Down(); ok {
		t.Error("Down() on empty log should report false")
	}
	if n.HasFragment() {
		t.Error("Up() on empty log should not stash a fragment")
	}
}

func TestNavigatorFragmentRoundTrip(t *testing.T) {
	log := NewLog(10, entry("first", 1), entry("second", 2))
	n := NewNavigator(log)

	got, ok := n.Up("draft")
	if !ok || got != "second" {
		t.Fatalf("Up() = %q, %v; want second", got, ok)
	}
	if !n.HasFragment() {
		t.Fatal("expected fragment to be stashed")
	}

	got, ok = n.Up("second")
	if !ok || got != "first" {
		t.Fatalf("Up() = %q, %v; want first", got, ok)
	}

	if _, ok := n.Up("first"); ok {
		t.Error("Up() at start should report false")
	}

	got, ok = n.Down()
	if !ok || got != "second" {
		t.Fatalf("Down() = %q, %v; want second", got, ok)
	}

	got, ok = n.Down()
	if !ok || got != "draft" {
		t.Fatalf("Down() onto end = %q, %v; want draft", got, ok)
	}
	if n.HasFragment() {
		t.Error("fragment should be cleared after restore")
	}
	if !log.IsAtEnd() {
		t.Error("log should be at end after restoring fragment")
	}

	if _, ok := n.Down(); ok {
		t.Error("Down() at end should report false")
	}
}

func TestNavigatorStashesOnlyFromEnd(t *testing.T) {
	log := NewLog(10, entry("a", 1), entry("b", 2), entry("c", 3))
	n := NewNavigator(log)

	n.Up("draft")
	n.Up("edited-c")

	// Back at the end the original draft comes back, not the edited entry.
	n.Down()
	got, _ := n.Down()
	if got != "draft" {
		t.Errorf("restored fragment = %q, want draft", got)
	}
}

func TestNavigatorReset(t *testing.T) {
	log := NewLog(10, entry("a", 1), entry("b", 2))
	n := NewNavigator(log)

	n.Up("draft")
	n.Reset()

	if n.HasFragment() {
		t.Error("Reset() should drop the fragment")
	}
	if !log.IsAtEnd() {
		t.Error("Reset() should move the log to the end")
	}
}
