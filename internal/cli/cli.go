// Package cli wires parsed command-line arguments to replkit's history
// store, console and comm clients.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/golang/glog"
	"github.com/yiblet/replkit/internal/appfs"
	"github.com/yiblet/replkit/internal/clipboard"
	"github.com/yiblet/replkit/internal/clipboard/sysboard"
	"github.com/yiblet/replkit/internal/config"
	"github.com/yiblet/replkit/internal/inputs"
	"github.com/yiblet/replkit/internal/store/dbstore"
	"github.com/yiblet/replkit/internal/tui"
)

// CLI handles the command-line interface
type CLI struct {
	config        *config.Config
	configManager *config.ConfigManager
	filesystem    *appfs.AppFS
	clipboard     clipboard.Clipboard

	dbPath  string
	session string

	// opened on first use; only history commands and the console need it
	manager *inputs.Manager

	in  io.Reader
	out io.Writer
}

// New creates a new CLI instance
func New() (*CLI, error) {
	return NewWithArgs(nil)
}

// NewWithArgs creates a new CLI instance, applying the global flags in args
func NewWithArgs(args *Args) (*CLI, error) {
	var cm *config.ConfigManager
	if args != nil && args.ConfigPath != nil {
		cm = config.NewConfigManagerWithPath(*args.ConfigPath)
	} else {
		var err error
		if cm, err = config.NewConfigManager(); err != nil {
			return nil, err
		}
	}

	cfg, err := cm.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	filesystem, err := appfs.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	c := &CLI{
		config:        cfg,
		configManager: cm,
		filesystem:    filesystem,
		clipboard:     sysboard.New(),
		session:       cfg.Session,
		in:            os.Stdin,
		out:           os.Stdout,
	}

	if args != nil && args.DBPath != nil {
		c.dbPath = *args.DBPath
	} else {
		if c.dbPath, err = filesystem.DBPath(cfg.HistoryLocation); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	if args != nil && args.Session != nil {
		c.session = *args.Session
	}

	return c, nil
}

// Close releases the history store if it was opened
func (c *CLI) Close() error {
	if c.manager == nil {
		return nil
	}
	return c.manager.Close()
}

// Execute runs the CLI command based on parsed arguments
func (c *CLI) Execute(ctx context.Context, args *Args) error {
	if err := args.Validate(); err != nil {
		return err
	}

	switch {
	case args.History != nil:
		return c.executeHistory(args.History)
	case args.Call != nil:
		return c.executeCall(ctx, args.Call)
	case args.Listen != nil:
		return c.executeListen(ctx, args.Listen)
	case args.Connections != nil:
		return c.executeConnections(ctx, args.Connections)
	case args.Serve != nil:
		return c.executeServe(ctx, args.Serve)
	case args.Config != nil:
		return c.executeConfig(args.Config)
	default:
		// Default behavior: launch the console
		return c.launchConsole(ctx)
	}
}

// inputManager opens the history store on first use
func (c *CLI) inputManager() (*inputs.Manager, error) {
	if c.manager != nil {
		return c.manager, nil
	}

	sqliteStore, err := dbstore.NewSQLiteStore(c.dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create database store: %w", err)
	}
	glog.V(1).Infof("[cli]history store %s, limit %d\n", c.dbPath, c.config.HistoryLimit)

	c.manager = inputs.NewManagerWithLimit(sqliteStore, c.config.HistoryLimit)
	return c.manager, nil
}

// launchConsole starts the interactive console
func (c *CLI) launchConsole(ctx context.Context) error {
	manager, err := c.inputManager()
	if err != nil {
		return err
	}

	model, err := tui.NewConsoleModel(manager, c.session, c.clipboard)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	_, err = consoleProgram(ctx, model).Run()
	return err
}

// consoleProgram builds the console's program. Focus reporting must be on for
// the terminal to deliver tea.BlurMsg, which closes the history browser.
func consoleProgram(ctx context.Context, model tea.Model, opts ...tea.ProgramOption) *tea.Program {
	opts = append([]tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithReportFocus(),
		tea.WithContext(ctx),
	}, opts...)
	return tea.NewProgram(model, opts...)
}

// executeConfig handles the 'replkit config' command
func (c *CLI) executeConfig(cmd *ConfigCmd) error {
	switch {
	case cmd.Get != nil:
		value, err := c.configManager.Get(cmd.Get.Key)
		if err != nil {
			return fmt.Errorf("failed to get config value: %w", err)
		}
		fmt.Fprintf(c.out, "%s\n", value)
		return nil
	case cmd.Set != nil:
		if err := c.configManager.Update(cmd.Set.Key, cmd.Set.Value); err != nil {
			return fmt.Errorf("failed to set config value: %w", err)
		}
		fmt.Fprintf(c.out, "Set %s = %s\n", cmd.Set.Key, cmd.Set.Value)
		return nil
	case cmd.List != nil:
		values, err := c.configManager.List()
		if err != nil {
			return fmt.Errorf("failed to list config values: %w", err)
		}
		fmt.Fprintf(c.out, "Current configuration (%s):\n", c.configManager.GetConfigPath())
		for _, key := range config.Keys {
			fmt.Fprintf(c.out, "  %s = %s\n", key, values[key])
		}
		return nil
	default:
		return fmt.Errorf("no config subcommand specified")
	}
}
