package inputs

import (
	"strings"
	"unicode"
)

// Summarize renders an input on one line for lists: control characters and
// runs of whitespace collapse to single spaces, and the result is cut to
// maxLen runes with a trailing "...".
func Summarize(input string, maxLen int) string {
	s := Sanitize(input)
	if s == "" {
		return "[empty]"
	}
	return Truncate(s, maxLen)
}

// Truncate ensures s is at most maxLen runes.
// If truncation is needed, appends "..." to indicate truncation.
func Truncate(s string, maxLen int) string {
	s = strings.TrimSpace(s)

	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}

	// Reserve 3 characters for "..."
	if maxLen < 3 {
		return strings.Repeat(".", max(maxLen, 0))
	}

	return string(runes[:maxLen-3]) + "..."
}

// Sanitize removes control characters and collapses whitespace.
// This keeps multi-line inputs safe for single-line terminal display.
func Sanitize(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)

	return strings.Join(strings.Fields(s), " ")
}
