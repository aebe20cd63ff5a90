package cli

import (
	"fmt"
	"strings"

	"github.com/yiblet/replkit/internal/inputs"
)

// Args represents the top-level command structure
type Args struct {
	ConfigPath *string `arg:"--config" help:"Config file (default ~/.config/replkit/config.yaml)"`
	DBPath     *string `arg:"--db" help:"History database path (overrides history_location)"`
	Session    *string `arg:"-s,--session" help:"History session key (default from config)"`
	Verbosity  int     `arg:"-v,--verbosity" default:"0" help:"Log verbosity for -v style logging"`

	Console     *ConsoleCmd     `arg:"subcommand:console" help:"Run the interactive console (default)"`
	History     *HistoryCmd     `arg:"subcommand:history" help:"Inspect and edit input history"`
	Call        *CallCmd        `arg:"subcommand:call" help:"Send one request to the runtime"`
	Listen      *ListenCmd      `arg:"subcommand:listen" help:"Print connection events from the runtime"`
	Connections *ConnectionsCmd `arg:"subcommand:connections" help:"Browse the runtime's data connections"`
	Serve       *ServeCmd       `arg:"subcommand:serve" help:"Serve a connections catalog over websocket"`
	Config      *ConfigCmd      `arg:"subcommand:config" help:"Manage configuration"`
}

// ConsoleCmd represents the 'replkit console' command
type ConsoleCmd struct{}

// HistoryCmd represents the 'replkit history' command
type HistoryCmd struct {
	List     *HistoryListCmd     `arg:"subcommand:list" help:"List stored inputs, newest first"`
	Search   *HistorySearchCmd   `arg:"subcommand:search" help:"Search stored inputs"`
	Add      *HistoryAddCmd      `arg:"subcommand:add" help:"Add an input to history"`
	Delete   *HistoryDeleteCmd   `arg:"subcommand:delete" help:"Delete one input by id"`
	Clear    *HistoryClearCmd    `arg:"subcommand:clear" help:"Delete the session's history"`
	Sessions *HistorySessionsCmd `arg:"subcommand:sessions" help:"List sessions with history"`
}

type HistoryListCmd struct {
	Limit int `arg:"-n,--limit" default:"0" help:"Maximum entries to show (0 = all)"`
}

type HistorySearchCmd struct {
	Query string `arg:"positional,required" help:"Text or pattern to search for"`
	Mode  string `arg:"-m,--mode" default:"prefix" help:"Match mode: prefix, infix or regex"`
}

type HistoryAddCmd struct {
	Code []string `arg:"positional" help:"Code to add (reads stdin if omitted)"`
}

type HistoryDeleteCmd struct {
	ID uint `arg:"positional,required" help:"Entry id as shown by 'history list'"`
}

type HistoryClearCmd struct {
	Force bool `arg:"-f,--force" help:"Skip confirmation prompt"`
}

type HistorySessionsCmd struct{}

// CallCmd represents the 'replkit call' command
type CallCmd struct {
	Method string   `arg:"positional,required" help:"Method name"`
	Params []string `arg:"positional" help:"Parameters as name=value; values are JSON, or strings when not valid JSON"`
}

// ListenCmd represents the 'replkit listen' command
type ListenCmd struct {
	Count int `arg:"-n,--count" default:"0" help:"Exit after this many events (0 = until interrupted)"`
}

// ConnectionsCmd represents the 'replkit connections' command
type ConnectionsCmd struct {
	ListObjects  *PathCmd `arg:"subcommand:list-objects" help:"List child objects"`
	ListFields   *PathCmd `arg:"subcommand:list-fields" help:"List an object's fields"`
	ContainsData *PathCmd `arg:"subcommand:contains-data" help:"Report whether an object holds data"`
	GetIcon      *PathCmd `arg:"subcommand:get-icon" help:"Print an object's icon"`
	Preview      *PathCmd `arg:"subcommand:preview" help:"Ask the runtime to preview an object"`
}

// PathCmd carries an object path as name:kind segments
type PathCmd struct {
	Path []string `arg:"positional" help:"Object path segments as name:kind"`
}

// ServeCmd represents the 'replkit serve' command
type ServeCmd struct {
	Addr    string  `arg:"--addr" default:"127.0.0.1:8765" help:"Listen address"`
	Catalog *string `arg:"--catalog" help:"Catalog YAML file (default from config)"`
}

// ConfigCmd represents the 'replkit config' command
type ConfigCmd struct {
	Get  *ConfigGetCmd  `arg:"subcommand:get" help:"Get configuration value"`
	Set  *ConfigSetCmd  `arg:"subcommand:set" help:"Set configuration value"`
	List *ConfigListCmd `arg:"subcommand:list" help:"List all configuration"`
}

type ConfigGetCmd struct {
	Key string `arg:"positional,required" help:"Configuration key"`
}

type ConfigSetCmd struct {
	Key   string `arg:"positional,required" help:"Configuration key"`
	Value string `arg:"positional,required" help:"Configuration value"`
}

type ConfigListCmd struct{}

// Description returns the program description
func (Args) Description() string {
	return "replkit - console, input history and runtime comms for interactive sessions"
}

// Version returns the program version
func (Args) Version() string {
	return "replkit 0.1.0"
}

// Epilogue returns additional help text
func (Args) Epilogue() string {
	return `Examples:
  replkit                                   # Interactive console
  replkit -s python history list            # Inputs of the python session
  replkit history search --mode infix ls    # Inputs containing "ls"
  replkit serve --catalog catalog.yaml      # Serve a connections catalog
  replkit connections list-objects main:schema
  replkit call get_icon 'path=[{"name":"main","kind":"schema"}]'
  replkit config set call-timeout 30s`
}

// Validate performs validation on the parsed arguments
func (args *Args) Validate() error {
	if args.Session != nil && strings.TrimSpace(*args.Session) == "" {
		return fmt.Errorf("session must not be empty")
	}
	if args.History != nil {
		return args.History.Validate()
	}
	if args.Listen != nil && args.Listen.Count < 0 {
		return fmt.Errorf("count must be non-negative")
	}
	return nil
}

// Validate validates history command arguments
func (h *HistoryCmd) Validate() error {
	if h.List != nil && h.List.Limit < 0 {
		return fmt.Errorf("limit must be non-negative")
	}
	if h.Search != nil {
		if _, err := inputs.ParseMode(h.Search.Mode); err != nil {
			return err
		}
	}
	return nil
}
