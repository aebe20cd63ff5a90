// Package browser implements the interactive history browser: a transient
// overlay that queries a history match strategy with the text left of the
// edit cursor and lets the user step through and accept a match.
package browser

// Selection is a half-open rune range within the editor value.
type Selection struct {
	Start int
	End   int
}

// Editor is the text input the browser reads its query from and writes an
// accepted match into.
type Editor interface {
	Value() string
	SetValue(value string)
	Selection() Selection
	SetSelection(sel Selection)
	// Position is the rune column of the edit cursor.
	Position() int
	SetPosition(pos int)
}

// TextLeftOfCursor returns the editor text before the edit cursor.
func TextLeftOfCursor(e Editor) string {
	runes := []rune(e.Value())
	pos := e.Position()
	if pos < 0 {
		pos = 0
	}
	if pos > len(runes) {
		pos = len(runes)
	}
	return string(runes[:pos])
}
