package tui

import (
	"strings"
	"unicode/utf8"
)

// WrapText splits text into display lines no wider than maxWidth runes.
// Lines break on newlines and are then cut at maxWidth; whitespace is kept
// as is so indentation in code survives. Height truncation is handled by the
// caller during rendering, not here.
func WrapText(text string, maxWidth int) []string {
	if maxWidth <= 0 {
		return []string{}
	}

	var result []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.ReplaceAll(line, "\t", "    ")
		result = append(result, wrapLine(line, maxWidth)...)
	}
	return result
}

// wrapLine cuts a single line into chunks of at most maxWidth runes
func wrapLine(line string, maxWidth int) []string {
	if utf8.RuneCountInString(line) <= maxWidth {
		return []string{line}
	}

	var result []string
	runes := []rune(line)
	for len(runes) > maxWidth {
		result = append(result, string(runes[:maxWidth]))
		runes = runes[maxWidth:]
	}
	if len(runes) > 0 {
		result = append(result, string(runes))
	}
	return result
}

// lastLines returns at most n lines from the end of lines
func lastLines(lines []string, n int) []string {
	if n <= 0 {
		return nil
	}
	if len(lines) <= n {
		return lines
	}
	return lines[len(lines)-n:]
}
