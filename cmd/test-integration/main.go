package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/yiblet/replkit/internal/clipboard/mockboard"
	"github.com/yiblet/replkit/internal/comm"
	"github.com/yiblet/replkit/internal/connections"
	"github.com/yiblet/replkit/internal/inputs"
	"github.com/yiblet/replkit/internal/store/dbstore"
	"github.com/yiblet/replkit/internal/tui"
)

const smokeCatalog = `objects:
  - name: main
    kind: schema
    children:
      - name: flights
        kind: table
        icon: table
        fields:
          - {name: carrier, dtype: str}
`

func main() {
	fmt.Println("Testing websocket comm and console rendering")
	fmt.Println("============================================")

	failures := 0
	check := func(name string, ok bool, detail string) {
		if ok {
			fmt.Printf("ok    %s\n", name)
			return
		}
		failures++
		fmt.Printf("FAIL  %s: %s\n", name, detail)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	commSmoke(ctx, check)
	consoleSmoke(check)

	if failures > 0 {
		fmt.Printf("\n%d check(s) failed\n", failures)
		os.Exit(1)
	}
	fmt.Println("\nAll checks passed!")
}

// commSmoke serves a catalog on a loopback websocket and queries it
func commSmoke(ctx context.Context, check func(string, bool, string)) {
	catalog, err := connections.ParseCatalog([]byte(smokeCatalog))
	if err != nil {
		log.Fatalf("Error parsing catalog: %v", err)
	}
	server := comm.NewServer()
	connections.NewBackend(server, catalog)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		log.Fatalf("Error listening: %v", err)
	}
	httpServer := &http.Server{Handler: server}
	go httpServer.Serve(listener)
	defer httpServer.Close()

	ch, err := comm.DialWebSocket(ctx, fmt.Sprintf("ws://%s/comm", listener.Addr()), nil)
	if err != nil {
		log.Fatalf("Error dialing: %v", err)
	}
	defer ch.Close()

	client := comm.NewClient(ch)
	defer client.Close()
	cc := connections.NewComm(client)

	focused := make(chan struct{}, 1)
	defer cc.OnDidFocus.Subscribe(func(comm.Event) {
		select {
		case focused <- struct{}{}:
		default:
		}
	})()

	objects, err := cc.ListObjects(ctx, nil)
	check("list_objects", err == nil && len(objects) == 1 && objects[0].Name == "main", fmt.Sprintf("%v %v", objects, err))

	path := []connections.ObjectSchema{{Name: "main", Kind: "schema"}, {Name: "flights", Kind: "table"}}
	has, err := cc.ContainsData(ctx, path)
	check("contains_data", err == nil && has, fmt.Sprintf("%v %v", has, err))

	icon, err := cc.GetIcon(ctx, path)
	check("get_icon", err == nil && icon == "table", fmt.Sprintf("%q %v", icon, err))

	_, err = cc.ListFields(ctx, []connections.ObjectSchema{{Name: "nope", Kind: "table"}})
	check("unknown path error", err != nil && strings.Contains(err.Error(), "no such object"), fmt.Sprintf("%v", err))

	err = cc.PreviewObject(ctx, path)
	select {
	case <-focused:
		check("preview_object focus event", err == nil, fmt.Sprintf("%v", err))
	case <-time.After(2 * time.Second):
		check("preview_object focus event", false, "no focus event")
	}

	check("no pending calls", client.Pending() == 0, fmt.Sprintf("%d pending", client.Pending()))
}

// consoleSmoke drives the console against a temporary sqlite history
func consoleSmoke(check func(string, bool, string)) {
	dir, err := os.MkdirTemp("", "replkit-smoke")
	if err != nil {
		log.Fatalf("Error creating temp dir: %v", err)
	}
	defer os.RemoveAll(dir)

	sqliteStore, err := dbstore.NewSQLiteStore(filepath.Join(dir, "history.db"))
	if err != nil {
		log.Fatalf("Error creating store: %v", err)
	}
	manager := inputs.NewManager(sqliteStore)
	defer manager.Close()

	for _, code := range []string{"ls()", "summary(flights)", "ls(all.names = TRUE)"} {
		if _, err := manager.Add("r", code); err != nil {
			log.Fatalf("Error adding history: %v", err)
		}
	}

	model, err := tui.NewConsoleModel(manager, "r", mockboard.New())
	if err != nil {
		log.Fatalf("Error creating console: %v", err)
	}
	model.Update(tea.WindowSizeMsg{Width: 80, Height: 12})
	model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("ls")})
	model.Update(tea.KeyMsg{Type: tea.KeyCtrlUp})

	view := model.View()
	lines := strings.Split(view, "\n")
	fmt.Printf("\nRendered console view (%d lines):\n", len(lines))
	fmt.Println(strings.Repeat("=", 80))
	for i, line := range lines {
		fmt.Printf("Line %2d: %s\n", i, line)
	}
	fmt.Println(strings.Repeat("=", 80))

	check("prefix browser matches", len(model.Browser.Matches()) == 2, fmt.Sprintf("%d matches", len(model.Browser.Matches())))
	check("view fits height", len(lines) <= 12, fmt.Sprintf("%d lines", len(lines)))

	model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	check("accept fills prompt", model.Editor.Value() == "ls(all.names = TRUE)", model.Editor.Value())
}
