package tui

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/yiblet/replkit/internal/history"
	"github.com/yiblet/replkit/internal/inputs"
)

const (
	promptPrefix   = "> "
	maxBrowserRows = 8
)

var (
	promptStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	cursorStyle    = lipgloss.NewStyle().Reverse(true)
	headerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	rowStyle       = lipgloss.NewStyle()
	selectedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Underline(true)
	flashStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

// ConsoleView renders the console using pure functions
func ConsoleView(model ConsoleModel) string {
	if model.Width == 0 {
		return "Initializing..."
	}

	var panel []string
	if model.Browser.IsActive() {
		panel = renderBrowser(model)
	}

	// transcript fills whatever the prompt, panel and status line leave
	room := model.Height - len(panel) - 2
	var transcript []string
	for _, entry := range model.Transcript {
		transcript = append(transcript, WrapText(entry, model.Width)...)
	}
	transcript = lastLines(transcript, room)

	var b strings.Builder
	for _, line := range transcript {
		b.WriteString(line + "\n")
	}
	for _, line := range panel {
		b.WriteString(line + "\n")
	}
	b.WriteString(renderPrompt(model) + "\n")
	b.WriteString(renderStatusLine(model))
	return b.String()
}

// renderPrompt renders the editor line with its cursor
func renderPrompt(model ConsoleModel) string {
	runes := []rune(model.Editor.Value())
	pos := model.Editor.Position()

	cursor := " "
	var after string
	if pos < len(runes) {
		cursor = string(runes[pos])
		after = string(runes[pos+1:])
	}
	return promptStyle.Render(promptPrefix) + string(runes[:pos]) + cursorStyle.Render(cursor) + after
}

// renderBrowser renders the header and the visible window of matches,
// oldest at the top so the newest match sits next to the prompt.
func renderBrowser(model ConsoleModel) []string {
	matches := model.Browser.Matches()
	selected := model.Browser.Selected()

	header := fmt.Sprintf("history (%s): %d matches", model.BrowserMode, len(matches))
	lines := []string{headerStyle.Render(header)}
	if len(matches) == 0 {
		return append(lines, headerStyle.Render("  no matching history"))
	}

	start, end := browserWindow(len(matches), selected, maxBrowserRows)
	width := max(model.Width-2, 4)
	for i := start; i < end; i++ {
		marker, base := "  ", rowStyle
		if i == selected {
			marker, base = "> ", selectedStyle
		}
		lines = append(lines, base.Render(marker)+highlightSpan(matches[i], width, base))
	}
	return lines
}

// browserWindow returns the [start, end) range of rows to show so that the
// selected row is visible, preferring the newest rows.
func browserWindow(total, selected, rows int) (int, int) {
	if total <= rows {
		return 0, total
	}
	end := total
	if selected >= 0 && selected < total-rows {
		end = selected + rows
	}
	return end - rows, end
}

// printable replaces every control character and invalid byte in s with
// spaces, one per byte.
func printable(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if unicode.IsControl(r) || r == utf8.RuneError {
			b.WriteString(strings.Repeat(" ", size))
		} else {
			b.WriteString(s[i : i+size])
		}
		i += size
	}
	return b.String()
}

// highlightSpan renders a match on one line, cut to width runes, with the
// matched span highlighted. Control characters and invalid bytes become one
// space per byte so the byte offsets of the span stay valid.
func highlightSpan(m history.Match, width int, base lipgloss.Style) string {
	line := printable(m.Input)

	start := min(max(m.Start, 0), len(line))
	end := min(max(m.End, start), len(line))
	parts := []string{line[:start], line[start:end], line[end:]}

	budget := width
	ellipsis := ""
	if utf8.RuneCountInString(line) > width {
		budget = max(width-3, 0)
		ellipsis = "..."
	}

	var b strings.Builder
	for i, part := range parts {
		if budget <= 0 {
			break
		}
		if n := utf8.RuneCountInString(part); n > budget {
			part = string([]rune(part)[:budget])
		}
		budget -= utf8.RuneCountInString(part)
		if part == "" {
			continue
		}
		if i == 1 {
			b.WriteString(highlightStyle.Render(part))
		} else {
			b.WriteString(base.Render(part))
		}
	}
	if ellipsis != "" {
		b.WriteString(base.Render(ellipsis))
	}
	return b.String()
}

// renderStatusLine renders the bottom status line (pure function)
func renderStatusLine(model ConsoleModel) string {
	if model.FlashMessage != "" && time.Now().Before(model.FlashExpiry) {
		return flashStyle.Width(model.Width).Render(inputs.Truncate(model.FlashMessage, model.Width))
	}

	var statusLine string
	if model.Browser.IsActive() {
		statusLine = "↑/↓ select, Enter accept, Esc dismiss, Ctrl+y copy"
	} else {
		statusLine = fmt.Sprintf("[%s] %d in history - Ctrl+r search, Ctrl+↑ prefix, Ctrl+v paste, Ctrl+c quit", model.SessionKey, model.Log.Len())
	}
	return lipgloss.NewStyle().Width(model.Width).Render(inputs.Truncate(statusLine, model.Width))
}
