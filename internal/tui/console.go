// Package tui implements the interactive console: a prompt with history
// navigation, the history browser overlay and a transcript of submitted code.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/yiblet/replkit/internal/browser"
	"github.com/yiblet/replkit/internal/clipboard"
	"github.com/yiblet/replkit/internal/history"
	"github.com/yiblet/replkit/internal/inputs"
)

const flashDuration = 2 * time.Second

// ConsoleMsg represents messages that the console handles besides key presses
type ConsoleMsg interface {
	isConsoleMsg()
}

type flashExpiredMsg struct{}

func (flashExpiredMsg) isConsoleMsg() {}

// SubmittedMsg is emitted after code is committed to history.
type SubmittedMsg struct {
	Code  string
	Added bool
}

func (SubmittedMsg) isConsoleMsg() {}

// ConsoleModel is the bubbletea model for one console session
type ConsoleModel struct {
	Width      int
	Height     int
	SessionKey string

	Editor     *LineEditor
	Browser    *browser.Session
	Navigator  *history.Navigator
	Log        *history.Log
	Transcript []string

	// BrowserMode names the strategy the browser was engaged with
	BrowserMode string

	FlashMessage string
	FlashExpiry  time.Time

	inputs    *inputs.Manager
	clipboard clipboard.Clipboard
}

// NewConsoleModel loads the session's history and creates a console over it.
// cb may be nil when no clipboard is available.
func NewConsoleModel(manager *inputs.Manager, sessionKey string, cb clipboard.Clipboard) (*ConsoleModel, error) {
	log, err := manager.LoadLog(sessionKey)
	if err != nil {
		return nil, err
	}

	editor := NewLineEditor()
	return &ConsoleModel{
		Width:      80,
		Height:     20,
		SessionKey: sessionKey,
		Editor:     editor,
		Browser:    browser.NewSession(editor),
		Navigator:  history.NewNavigator(log),
		Log:        log,
		inputs:     manager,
		clipboard:  cb,
	}, nil
}

// Init implements tea.Model
func (c *ConsoleModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (c *ConsoleModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		c.Width = max(m.Width, 20)
		c.Height = max(m.Height, 5)
	case tea.KeyMsg:
		return c.handleKeyPress(m)
	case tea.BlurMsg:
		if err := c.Browser.Update(browser.BlurMsg{}); err != nil {
			return c, c.setFlashMessage(err.Error(), flashDuration)
		}
	case flashExpiredMsg:
		if !time.Now().Before(c.FlashExpiry) {
			c.FlashMessage = ""
			c.FlashExpiry = time.Time{}
		}
	}
	return c, nil
}

// handleKeyPress routes a key to the browser when it is showing matches and
// to the prompt otherwise.
func (c *ConsoleModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyRunes {
		return c, c.edit(InsertMsg{Runes: msg.Runes})
	}

	switch msg.String() {
	case "ctrl+c":
		return c, tea.Quit
	case "ctrl+up":
		if c.Browser.IsActive() {
			return c, c.browse(browser.MoveUpMsg{})
		}
		return c, c.engage("prefix")
	case "ctrl+r":
		return c, c.engage("infix")
	case "ctrl+y":
		return c, c.copyToClipboard()
	case "ctrl+v":
		return c, c.pasteFromClipboard()
	case "esc":
		return c, c.browse(browser.DismissMsg{})
	case "up":
		if c.Browser.IsActive() {
			return c, c.browse(browser.MoveUpMsg{})
		}
		if value, ok := c.Navigator.Up(c.Editor.Value()); ok {
			c.Editor.SetValue(value)
		}
		return c, nil
	case "down":
		if c.Browser.IsActive() {
			return c, c.browse(browser.MoveDownMsg{})
		}
		if value, ok := c.Navigator.Down(); ok {
			c.Editor.SetValue(value)
		}
		return c, nil
	case "enter":
		if c.Browser.IsActive() {
			return c, c.browse(browser.AcceptMsg{})
		}
		return c, c.submit()
	}

	if edit := editorMsgForKey(msg); edit != nil {
		return c, c.edit(edit)
	}
	return c, nil
}

// edit applies an editing message and requeries an open browser when the
// text changed
func (c *ConsoleModel) edit(msg EditorMsg) tea.Cmd {
	if c.Editor.Update(msg) && c.Browser.IsActive() {
		return c.browse(browser.QueryChangedMsg{})
	}
	return nil
}

// editorMsgForKey maps editing keys to editor messages
func editorMsgForKey(msg tea.KeyMsg) EditorMsg {
	switch msg.Type {
	case tea.KeySpace:
		return InsertMsg{Runes: []rune{' '}}
	case tea.KeyBackspace:
		return BackspaceMsg{}
	case tea.KeyDelete:
		return DeleteForwardMsg{}
	case tea.KeyLeft:
		return CursorLeftMsg{}
	case tea.KeyRight:
		return CursorRightMsg{}
	case tea.KeyHome, tea.KeyCtrlA:
		return CursorHomeMsg{}
	case tea.KeyEnd, tea.KeyCtrlE:
		return CursorEndMsg{}
	case tea.KeyCtrlU:
		return ClearLineMsg{}
	}
	return nil
}

// engage opens the browser with the named match strategy
func (c *ConsoleModel) engage(mode string) tea.Cmd {
	var strategy history.Strategy = history.EmptyStrategy{}
	if c.Log.Len() > 0 {
		switch mode {
		case "prefix":
			strategy = history.NewPrefixStrategy(c.Log)
		case "infix":
			strategy = history.NewInfixStrategy(c.Log)
		}
	}

	c.BrowserMode = mode
	return c.browse(browser.EngageMsg{Strategy: strategy})
}

func (c *ConsoleModel) browse(msg browser.Msg) tea.Cmd {
	if err := c.Browser.Update(msg); err != nil {
		return c.setFlashMessage(err.Error(), flashDuration)
	}
	if !c.Browser.IsActive() {
		c.BrowserMode = ""
	}
	return nil
}

// submit commits the prompt to history and echoes it into the transcript
func (c *ConsoleModel) submit() tea.Cmd {
	code := c.Editor.Value()
	c.Transcript = append(c.Transcript, promptPrefix+code)
	c.Editor.Update(ClearLineMsg{})

	added, err := c.inputs.Commit(c.SessionKey, c.Log, code)
	c.Navigator.Reset()
	if err != nil {
		return c.setFlashMessage(fmt.Sprintf("Error saving history: %v", err), flashDuration)
	}

	return func() tea.Msg {
		return SubmittedMsg{Code: code, Added: added}
	}
}

// setFlashMessage sets a flash message that will disappear after the specified duration
func (c *ConsoleModel) setFlashMessage(message string, duration time.Duration) tea.Cmd {
	c.FlashMessage = message
	c.FlashExpiry = time.Now().Add(duration)
	return tea.Tick(duration, func(t time.Time) tea.Msg {
		return flashExpiredMsg{}
	})
}

// copyToClipboard copies the selected match, or the prompt when the browser
// is closed, to the clipboard
func (c *ConsoleModel) copyToClipboard() tea.Cmd {
	content := c.Editor.Value()
	if match, ok := c.Browser.SelectedMatch(); ok {
		content = match.Input
	}
	if content == "" {
		return c.setFlashMessage("Nothing to copy", flashDuration)
	}

	if c.clipboard == nil || !c.clipboard.IsSupported() {
		return c.setFlashMessage("Clipboard not available", flashDuration)
	}
	if err := clipboard.WriteString(c.clipboard, content); err != nil {
		return c.setFlashMessage(fmt.Sprintf("Error writing clipboard: %v", err), flashDuration)
	}

	return c.setFlashMessage(fmt.Sprintf("Copied %d bytes to clipboard: %s", len(content), inputs.Summarize(content, 30)), flashDuration)
}

// pasteFromClipboard inserts the clipboard text at the cursor
func (c *ConsoleModel) pasteFromClipboard() tea.Cmd {
	if c.clipboard == nil || !c.clipboard.IsSupported() {
		return c.setFlashMessage("Clipboard not available", flashDuration)
	}
	content, err := clipboard.ReadString(c.clipboard)
	if err != nil {
		return c.setFlashMessage(fmt.Sprintf("Error reading clipboard: %v", err), flashDuration)
	}
	content = strings.ReplaceAll(content, "\r\n", "\n")
	if content == "" {
		return c.setFlashMessage("Clipboard is empty", flashDuration)
	}
	return c.edit(InsertMsg{Runes: []rune(content)})
}

// View implements tea.Model
func (c *ConsoleModel) View() string {
	return ConsoleView(*c)
}
