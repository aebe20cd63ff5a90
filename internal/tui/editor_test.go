package tui

import (
	"testing"

	"github.com/yiblet/replkit/internal/browser"
)

func TestLineEditor_Editing(t *testing.T) {
	e := NewLineEditor()

	e.Update(InsertMsg{Runes: []rune("ls()")})
	if e.Value() != "ls()" || e.Position() != 4 {
		t.Fatalf("after insert: value=%q pos=%d", e.Value(), e.Position())
	}

	e.Update(CursorLeftMsg{})
	e.Update(InsertMsg{Runes: []rune("x")})
	if e.Value() != "ls(x)" || e.Position() != 4 {
		t.Errorf("insert mid-line: value=%q pos=%d", e.Value(), e.Position())
	}

	e.Update(BackspaceMsg{})
	if e.Value() != "ls()" || e.Position() != 3 {
		t.Errorf("backspace: value=%q pos=%d", e.Value(), e.Position())
	}

	e.Update(CursorHomeMsg{})
	e.Update(DeleteForwardMsg{})
	if e.Value() != "s()" || e.Position() != 0 {
		t.Errorf("delete forward: value=%q pos=%d", e.Value(), e.Position())
	}

	e.Update(CursorEndMsg{})
	if e.Position() != 3 {
		t.Errorf("end: pos=%d, want 3", e.Position())
	}

	e.Update(ClearLineMsg{})
	if e.Value() != "" || e.Position() != 0 {
		t.Errorf("clear: value=%q pos=%d", e.Value(), e.Position())
	}
}

func TestLineEditor_ReportsTextChanges(t *testing.T) {
	tests := []struct {
		name  string
		setup string
		pos   int
		msg   EditorMsg
		want  bool
	}{
		{"insert", "ab", 2, InsertMsg{Runes: []rune("c")}, true},
		{"empty insert", "ab", 2, InsertMsg{}, false},
		{"backspace", "ab", 2, BackspaceMsg{}, true},
		{"backspace at start", "ab", 0, BackspaceMsg{}, false},
		{"delete forward", "ab", 0, DeleteForwardMsg{}, true},
		{"delete forward at end", "ab", 2, DeleteForwardMsg{}, false},
		{"cursor left", "ab", 2, CursorLeftMsg{}, false},
		{"cursor right", "ab", 0, CursorRightMsg{}, false},
		{"home", "ab", 2, CursorHomeMsg{}, false},
		{"end", "ab", 0, CursorEndMsg{}, false},
		{"clear line", "ab", 1, ClearLineMsg{}, true},
		{"clear empty line", "", 0, ClearLineMsg{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewLineEditor()
			e.SetValue(tt.setup)
			e.SetPosition(tt.pos)
			if got := e.Update(tt.msg); got != tt.want {
				t.Errorf("Update(%T) = %v, want %v", tt.msg, got, tt.want)
			}
		})
	}
}

func TestLineEditor_Unicode(t *testing.T) {
	e := NewLineEditor()
	e.SetValue("café")
	if e.Position() != 4 {
		t.Fatalf("pos = %d, want 4 runes", e.Position())
	}
	e.Update(BackspaceMsg{})
	if e.Value() != "caf" {
		t.Errorf("value = %q, want caf", e.Value())
	}
}

func TestLineEditor_Selection(t *testing.T) {
	e := NewLineEditor()
	e.SetValue("print(x)")

	e.SetSelection(browser.Selection{Start: 5, End: 2})
	if got := e.Selection(); got != (browser.Selection{Start: 2, End: 5}) {
		t.Errorf("Selection() = %+v, want {2 5}", got)
	}
	if e.Position() != 5 {
		t.Errorf("Position() = %d, want 5", e.Position())
	}

	e.SetSelection(browser.Selection{Start: -3, End: 99})
	if got := e.Selection(); got != (browser.Selection{Start: 0, End: 8}) {
		t.Errorf("clamped Selection() = %+v, want {0 8}", got)
	}

	if got := browser.TextLeftOfCursor(e); got != "print(x)" {
		t.Errorf("TextLeftOfCursor() = %q", got)
	}
	e.SetPosition(5)
	if got := browser.TextLeftOfCursor(e); got != "print" {
		t.Errorf("TextLeftOfCursor() = %q, want print", got)
	}
}
