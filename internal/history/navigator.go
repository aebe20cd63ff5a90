package history

// Navigator drives plain up/down history navigation over a Log.
//
// Moving up from the end stashes the fragment being edited; moving down back
// onto the end restores it.
type Navigator struct {
	log      *Log
	fragment *string
}

// NewNavigator creates a navigator over log.
func NewNavigator(log *Log) *Navigator {
	return &Navigator{log: log}
}

// Up returns the value to show after moving to the previous entry. It reports
// false when there is nothing older to show.
func (n *Navigator) Up(current string) (string, bool) {
	if n.log == nil || n.log.Len() == 0 {
		return "", false
	}

	if n.log.IsAtEnd() && n.fragment == nil {
		fragment := current
		n.fragment = &fragment
	}

	entry, err := n.log.Previous()
	if err != nil {
		return "", false
	}
	return entry.Input, true
}

// Down returns the value to show after moving to the next entry. Landing on
// the end position yields the stashed fragment. It reports false when already
// at the end.
func (n *Navigator) Down() (string, bool) {
	if n.log == nil {
		return "", false
	}

	entry, err := n.log.Next()
	if err != nil {
		return "", false
	}
	if !n.log.IsAtEnd() {
		return entry.Input, true
	}

	var fragment string
	if n.fragment != nil {
		fragment = *n.fragment
		n.fragment = nil
	}
	return fragment, true
}

// HasFragment reports whether a fragment is stashed.
func (n *Navigator) HasFragment() bool {
	return n.fragment != nil
}

// Reset drops any stashed fragment and moves the log cursor to the end.
func (n *Navigator) Reset() {
	n.fragment = nil
	if n.log != nil {
		n.log.ResetToEnd()
	}
}
