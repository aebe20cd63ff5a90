package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/yiblet/replkit/internal/inputs"
)

const previewLength = 80

// executeHistory handles the 'replkit history' command
func (c *CLI) executeHistory(cmd *HistoryCmd) error {
	manager, err := c.inputManager()
	if err != nil {
		return err
	}

	switch {
	case cmd.List != nil:
		return c.executeHistoryList(manager, cmd.List)
	case cmd.Search != nil:
		return c.executeHistorySearch(manager, cmd.Search)
	case cmd.Add != nil:
		return c.executeHistoryAdd(manager, cmd.Add)
	case cmd.Delete != nil:
		if err := manager.Delete(cmd.Delete.ID); err != nil {
			return fmt.Errorf("failed to delete entry %d: %w", cmd.Delete.ID, err)
		}
		fmt.Fprintf(c.out, "Deleted entry %d.\n", cmd.Delete.ID)
		return nil
	case cmd.Clear != nil:
		return c.executeHistoryClear(manager, cmd.Clear)
	case cmd.Sessions != nil:
		sessions, err := manager.Sessions()
		if err != nil {
			return fmt.Errorf("failed to list sessions: %w", err)
		}
		for _, s := range sessions {
			fmt.Fprintln(c.out, s)
		}
		return nil
	default:
		return fmt.Errorf("no history subcommand specified")
	}
}

func (c *CLI) executeHistoryList(manager *inputs.Manager, cmd *HistoryListCmd) error {
	entries, err := manager.List(c.session)
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}
	if cmd.Limit > 0 && len(entries) > cmd.Limit {
		entries = entries[:cmd.Limit]
	}

	if len(entries) == 0 {
		fmt.Fprintf(c.out, "No history for session %s.\n", c.session)
		return nil
	}
	for _, e := range entries {
		fmt.Fprintf(c.out, "%d\t%s\t%s\n", e.ID, e.Timestamp.Format("2006-01-02 15:04:05"), inputs.Summarize(e.Input, previewLength))
	}
	return nil
}

func (c *CLI) executeHistorySearch(manager *inputs.Manager, cmd *HistorySearchCmd) error {
	mode, err := inputs.ParseMode(cmd.Mode)
	if err != nil {
		return err
	}

	matches, err := manager.Search(c.session, mode, cmd.Query)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	if len(matches) == 0 {
		return fmt.Errorf("no matches found for %s: %s", mode, cmd.Query)
	}

	for _, m := range matches {
		fmt.Fprintln(c.out, inputs.Summarize(m.Input, previewLength))
	}
	return nil
}

func (c *CLI) executeHistoryAdd(manager *inputs.Manager, cmd *HistoryAddCmd) error {
	code := strings.Join(cmd.Code, " ")
	if len(cmd.Code) == 0 {
		data, err := io.ReadAll(c.in)
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		code = string(data)
	}

	entry, err := manager.Add(c.session, code)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Added %d: %s\n", entry.ID, inputs.Summarize(entry.Input, previewLength))
	return nil
}

// executeHistoryClear handles the 'replkit history clear' command
func (c *CLI) executeHistoryClear(manager *inputs.Manager, cmd *HistoryClearCmd) error {
	size, err := manager.Size(c.session)
	if err != nil {
		return fmt.Errorf("failed to count history: %w", err)
	}

	if size == 0 {
		fmt.Fprintf(c.out, "History for session %s is already empty.\n", c.session)
		return nil
	}

	// Prompt for confirmation unless --force is used
	if !cmd.Force {
		fmt.Fprintf(c.out, "This will delete %d item(s) from session %s. Continue? [y/N]: ", size, c.session)
		response, _ := bufio.NewReader(c.in).ReadString('\n')
		response = strings.ToLower(strings.TrimSpace(response))
		if response != "y" && response != "yes" {
			fmt.Fprintln(c.out, "Cancelled.")
			return nil
		}
	}

	if err := manager.Clear(c.session); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}

	fmt.Fprintf(c.out, "Cleared %d item(s) from history.\n", size)
	return nil
}
