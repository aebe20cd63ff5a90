package tui

import (
	"github.com/yiblet/replkit/internal/browser"
)

// EditorMsg represents messages that the line editor handles
type EditorMsg interface {
	isEditorMsg()
}

// Editor message implementations
type InsertMsg struct {
	Runes []rune
}

func (InsertMsg) isEditorMsg() {}

type BackspaceMsg struct{}

func (BackspaceMsg) isEditorMsg() {}

type DeleteForwardMsg struct{}

func (DeleteForwardMsg) isEditorMsg() {}

type CursorLeftMsg struct{}

func (CursorLeftMsg) isEditorMsg() {}

type CursorRightMsg struct{}

func (CursorRightMsg) isEditorMsg() {}

type CursorHomeMsg struct{}

func (CursorHomeMsg) isEditorMsg() {}

type CursorEndMsg struct{}

func (CursorEndMsg) isEditorMsg() {}

type ClearLineMsg struct{}

func (ClearLineMsg) isEditorMsg() {}

// LineEditor is a single-line text input. Positions are rune columns.
type LineEditor struct {
	value     []rune
	pos       int
	selection browser.Selection
}

var _ browser.Editor = (*LineEditor)(nil)

// NewLineEditor creates an empty editor
func NewLineEditor() *LineEditor {
	return &LineEditor{}
}

// Update applies an editing message. It reports whether the text changed;
// cursor movement alone reports false.
func (e *LineEditor) Update(msg EditorMsg) bool {
	changed := false

	switch m := msg.(type) {
	case InsertMsg:
		if len(m.Runes) == 0 {
			return false
		}
		value := make([]rune, 0, len(e.value)+len(m.Runes))
		value = append(value, e.value[:e.pos]...)
		value = append(value, m.Runes...)
		value = append(value, e.value[e.pos:]...)
		e.value = value
		e.pos += len(m.Runes)
		changed = true
	case BackspaceMsg:
		if e.pos == 0 {
			return false
		}
		e.value = append(e.value[:e.pos-1], e.value[e.pos:]...)
		e.pos--
		changed = true
	case DeleteForwardMsg:
		if e.pos >= len(e.value) {
			return false
		}
		e.value = append(e.value[:e.pos], e.value[e.pos+1:]...)
		changed = true
	case CursorLeftMsg:
		if e.pos > 0 {
			e.pos--
		}
	case CursorRightMsg:
		if e.pos < len(e.value) {
			e.pos++
		}
	case CursorHomeMsg:
		e.pos = 0
	case CursorEndMsg:
		e.pos = len(e.value)
	case ClearLineMsg:
		changed = len(e.value) > 0
		e.value = nil
		e.pos = 0
	}

	e.selection = browser.Selection{Start: e.pos, End: e.pos}
	return changed
}

// Value returns the full editor text
func (e *LineEditor) Value() string {
	return string(e.value)
}

// SetValue replaces the text and moves the cursor to the end
func (e *LineEditor) SetValue(value string) {
	e.value = []rune(value)
	e.pos = len(e.value)
	e.selection = browser.Selection{Start: e.pos, End: e.pos}
}

func (e *LineEditor) Selection() browser.Selection {
	return e.selection
}

// SetSelection stores sel clamped to the text and places the cursor at its end.
func (e *LineEditor) SetSelection(sel browser.Selection) {
	sel.Start = e.clamp(sel.Start)
	sel.End = e.clamp(sel.End)
	if sel.End < sel.Start {
		sel.Start, sel.End = sel.End, sel.Start
	}
	e.selection = sel
	e.pos = sel.End
}

func (e *LineEditor) Position() int {
	return e.pos
}

func (e *LineEditor) SetPosition(pos int) {
	e.pos = e.clamp(pos)
	e.selection = browser.Selection{Start: e.pos, End: e.pos}
}

func (e *LineEditor) clamp(pos int) int {
	if pos < 0 {
		return 0
	}
	if pos > len(e.value) {
		return len(e.value)
	}
	return pos
}
