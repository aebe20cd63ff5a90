package browser

import (
	"fmt"

	"github.com/yiblet/replkit/internal/history"
)

// State is the browser's activity state.
type State int

const (
	Inactive State = iota
	Active
)

func (s State) String() string {
	switch s {
	case Inactive:
		return "inactive"
	case Active:
		return "active"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Msg represents messages the browser session handles
type Msg interface {
	isBrowserMsg()
}

// EngageMsg activates the browser with a strategy.
type EngageMsg struct {
	Strategy history.Strategy
}

func (EngageMsg) isBrowserMsg() {}

// QueryChangedMsg signals that the editor text changed.
type QueryChangedMsg struct{}

func (QueryChangedMsg) isBrowserMsg() {}

type MoveUpMsg struct{}

func (MoveUpMsg) isBrowserMsg() {}

type MoveDownMsg struct{}

func (MoveDownMsg) isBrowserMsg() {}

// AcceptMsg applies the selected match to the editor and dismisses.
type AcceptMsg struct{}

func (AcceptMsg) isBrowserMsg() {}

type DismissMsg struct{}

func (DismissMsg) isBrowserMsg() {}

// BlurMsg signals that the editor lost focus.
type BlurMsg struct{}

func (BlurMsg) isBrowserMsg() {}

// Session holds the state of one history browser bound to an editor.
type Session struct {
	editor   Editor
	state    State
	strategy history.Strategy
	matches  []history.Match
	selected int
}

// NewSession creates an inactive browser session over editor.
func NewSession(editor Editor) *Session {
	return &Session{
		editor:   editor,
		state:    Inactive,
		selected: -1,
	}
}

// Update applies a message to the session.
func (s *Session) Update(msg Msg) error {
	switch m := msg.(type) {
	case EngageMsg:
		if m.Strategy == nil {
			return fmt.Errorf("engage: nil strategy")
		}
		s.strategy = m.Strategy
		s.state = Active
		s.refresh()
	case QueryChangedMsg:
		if s.state == Active {
			s.refresh()
		}
	case MoveUpMsg:
		if s.state == Active && s.selected > 0 {
			s.selected--
		}
	case MoveDownMsg:
		if s.state == Active && s.selected < len(s.matches)-1 {
			s.selected++
		}
	case AcceptMsg:
		if s.state != Active {
			return nil
		}
		if match, ok := s.SelectedMatch(); ok {
			sel := s.editor.Selection()
			s.editor.SetValue(match.Input)
			s.editor.SetSelection(sel)
		}
		s.disengage()
	case DismissMsg, BlurMsg:
		s.disengage()
	default:
		return fmt.Errorf("unknown browser message %T", msg)
	}
	return nil
}

// refresh re-queries the strategy and selects the most recent match.
func (s *Session) refresh() {
	s.matches = s.strategy.Matches(TextLeftOfCursor(s.editor))
	s.selected = len(s.matches) - 1
}

func (s *Session) disengage() {
	s.state = Inactive
	s.strategy = nil
	s.matches = nil
	s.selected = -1
}

// State returns the current state.
func (s *Session) State() State {
	return s.state
}

// IsActive returns whether the browser is showing matches
func (s *Session) IsActive() bool {
	return s.state == Active
}

// Matches returns the visible matches, oldest to newest.
func (s *Session) Matches() []history.Match {
	return s.matches
}

// Selected returns the selected index, or -1 when nothing is selected.
func (s *Session) Selected() int {
	return s.selected
}

// SelectedMatch returns the match under the selection.
func (s *Session) SelectedMatch() (history.Match, bool) {
	if s.selected < 0 || s.selected >= len(s.matches) {
		return history.Match{}, false
	}
	return s.matches[s.selected], true
}

// Strategy returns the active strategy, or nil when inactive.
func (s *Session) Strategy() history.Strategy {
	return s.strategy
}
