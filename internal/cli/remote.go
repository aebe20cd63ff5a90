package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/golang/glog"
	"github.com/yiblet/replkit/internal/comm"
	"github.com/yiblet/replkit/internal/connections"
	"gopkg.in/yaml.v3"
)

// connect dials the configured endpoint. The returned close func shuts down
// both the client and the connection.
func (c *CLI) connect(ctx context.Context) (*comm.Client, <-chan struct{}, func(), error) {
	dialCtx, cancel := context.WithTimeout(ctx, c.config.CallTimeout)
	defer cancel()

	ch, err := comm.DialWebSocket(dialCtx, c.config.Endpoint, nil)
	if err != nil {
		return nil, nil, nil, err
	}
	glog.V(1).Infof("[cli]connected %s\n", c.config.Endpoint)

	client := comm.NewClient(ch)
	return client, ch.Done(), func() {
		client.Close()
		ch.Close()
	}, nil
}

// parseParams splits name=value arguments. Values that are not valid JSON
// are sent as strings.
func parseParams(args []string) ([]string, []any, error) {
	names := make([]string, 0, len(args))
	values := make([]any, 0, len(args))
	seen := make(map[string]bool, len(args))

	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		if !ok || name == "" {
			return nil, nil, fmt.Errorf("invalid parameter %q: want name=value", arg)
		}
		if seen[name] {
			return nil, nil, fmt.Errorf("duplicate parameter %q", name)
		}
		seen[name] = true

		names = append(names, name)
		if json.Valid([]byte(value)) {
			values = append(values, json.RawMessage(value))
		} else {
			values = append(values, value)
		}
	}
	return names, values, nil
}

// executeCall handles the 'replkit call' command
func (c *CLI) executeCall(ctx context.Context, cmd *CallCmd) error {
	names, values, err := parseParams(cmd.Params)
	if err != nil {
		return err
	}

	client, _, closeFn, err := c.connect(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	ctx, cancel := context.WithTimeout(ctx, c.config.CallTimeout)
	defer cancel()

	call, err := client.PerformCall(ctx, cmd.Method, names, values)
	if err != nil {
		return err
	}
	result, err := call.Wait(ctx)
	if err != nil {
		return fmt.Errorf("%s failed: %w", cmd.Method, err)
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, result, "", "  "); err != nil {
		return fmt.Errorf("invalid result: %w", err)
	}
	fmt.Fprintln(c.out, pretty.String())
	return nil
}

// executeListen handles the 'replkit listen' command
func (c *CLI) executeListen(ctx context.Context, cmd *ListenCmd) error {
	client, closed, closeFn, err := c.connect(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	events := make(chan comm.Event, 16)
	forward := func(ev comm.Event) {
		select {
		case events <- ev:
		default:
			glog.Warningf("[cli]dropped event %s\n", ev.Name)
		}
	}

	cc := connections.NewComm(client)
	defer cc.OnDidFocus.Subscribe(forward)()
	defer cc.OnDidUpdate.Subscribe(forward)()

	for seen := 0; cmd.Count == 0 || seen < cmd.Count; seen++ {
		select {
		case <-ctx.Done():
			return nil
		case <-closed:
			return fmt.Errorf("connection to %s closed", c.config.Endpoint)
		case ev := <-events:
			fmt.Fprintf(c.out, "%s %s\n", ev.Name, formatEventParams(ev.Params))
		}
	}
	return nil
}

func formatEventParams(params map[string]json.RawMessage) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + string(params[k])
	}
	return "{" + strings.Join(parts, " ") + "}"
}

// executeConnections handles the 'replkit connections' command
func (c *CLI) executeConnections(ctx context.Context, cmd *ConnectionsCmd) error {
	var pathCmd *PathCmd
	switch {
	case cmd.ListObjects != nil:
		pathCmd = cmd.ListObjects
	case cmd.ListFields != nil:
		pathCmd = cmd.ListFields
	case cmd.ContainsData != nil:
		pathCmd = cmd.ContainsData
	case cmd.GetIcon != nil:
		pathCmd = cmd.GetIcon
	case cmd.Preview != nil:
		pathCmd = cmd.Preview
	default:
		return fmt.Errorf("no connections subcommand specified")
	}

	path, err := connections.ParsePath(pathCmd.Path)
	if err != nil {
		return err
	}

	client, _, closeFn, err := c.connect(ctx)
	if err != nil {
		return err
	}
	defer closeFn()
	cc := connections.NewComm(client)

	ctx, cancel := context.WithTimeout(ctx, c.config.CallTimeout)
	defer cancel()

	var result any
	switch {
	case cmd.ListObjects != nil:
		result, err = cc.ListObjects(ctx, path)
	case cmd.ListFields != nil:
		result, err = cc.ListFields(ctx, path)
	case cmd.ContainsData != nil:
		result, err = cc.ContainsData(ctx, path)
	case cmd.GetIcon != nil:
		result, err = cc.GetIcon(ctx, path)
	case cmd.Preview != nil:
		if err = cc.PreviewObject(ctx, path); err == nil {
			result = fmt.Sprintf("previewing %s", connections.FormatPath(path))
		}
	}
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(c.out)
	if err := enc.Encode(result); err != nil {
		return err
	}
	return enc.Close()
}
