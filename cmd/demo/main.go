package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/yiblet/replkit/internal/comm"
	"github.com/yiblet/replkit/internal/connections"
	"github.com/yiblet/replkit/internal/inputs"
	"github.com/yiblet/replkit/internal/store/memstore"
)

const demoCatalog = `objects:
  - name: main
    kind: schema
    children:
      - name: flights
        kind: table
        icon: table
        fields:
          - {name: carrier, dtype: str}
          - {name: dep_delay, dtype: float}
`

func main() {
	fmt.Println("replkit History Demo")

	// Create in-memory store and input manager
	manager := inputs.NewManagerWithLimit(memstore.NewMemoryStore(), 5)
	defer manager.Close()

	hist, err := manager.LoadLog("r")
	if err != nil {
		log.Fatalf("Failed to load history: %v", err)
	}

	testInputs := []string{
		"library(dplyr)",
		"flights <- read.csv(\"flights.csv\")",
		"summary(flights)",
		"flights %>% filter(dep_delay > 60)",
		"summary(flights)",
		"flights %>%\n  group_by(carrier) %>%\n  summarise(n = n())",
		"ls()",
	}

	fmt.Println("Committing inputs (limit 5):")
	for _, code := range testInputs {
		added, err := manager.Commit("r", hist, code)
		if err != nil {
			log.Printf("Failed to commit %q: %v", code, err)
			continue
		}
		fmt.Printf("  %-5v %s\n", added, inputs.Summarize(code, 60))
	}

	stored, err := manager.List("r")
	if err != nil {
		log.Fatalf("Failed to list history: %v", err)
	}
	fmt.Printf("\nStored history (newest first, %d entries):\n", len(stored))
	for i, e := range stored {
		fmt.Printf("%d. [%s] %s\n", i, e.Timestamp.Format("15:04:05"), inputs.Summarize(e.Input, 60))
	}

	// Demonstrate each match mode
	queries := []struct {
		mode  inputs.Mode
		query string
	}{
		{inputs.ModePrefix, "flights"},
		{inputs.ModeInfix, "summar"},
		{inputs.ModeRegex, `dep_delay > \d+`},
	}
	for _, q := range queries {
		matches, err := manager.Search("r", q.mode, q.query)
		if err != nil {
			log.Printf("Search failed: %v", err)
			continue
		}
		fmt.Printf("\n%s %q:\n", q.mode, q.query)
		for _, m := range matches {
			line := inputs.Sanitize(m.Input)
			fmt.Printf("  %s\n", line)
		}
	}

	connectionsDemo()
}

// connectionsDemo runs the Connections comm over an in-process pipe
func connectionsDemo() {
	fmt.Println("\nConnections over an in-process channel:")

	catalog, err := connections.ParseCatalog([]byte(demoCatalog))
	if err != nil {
		log.Fatalf("Failed to parse catalog: %v", err)
	}

	frontend, backendEnd := comm.NewPipe()
	server := comm.NewServer()
	backend := connections.NewBackend(server, catalog)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	detach := server.Attach(ctx, backendEnd)
	defer detach()

	client := comm.NewClient(frontend)
	defer client.Close()
	cc := connections.NewComm(client)

	unsubscribe := cc.OnDidUpdate.Subscribe(func(ev comm.Event) {
		fmt.Println("  <- update event")
	})
	defer unsubscribe()

	objects, err := cc.ListObjects(ctx, nil)
	if err != nil {
		log.Fatalf("list_objects failed: %v", err)
	}
	for _, o := range objects {
		fmt.Printf("  %s (%s)\n", o.Name, o.Kind)
	}

	path := []connections.ObjectSchema{{Name: "main", Kind: "schema"}, {Name: "flights", Kind: "table"}}
	fields, err := cc.ListFields(ctx, path)
	if err != nil {
		log.Fatalf("list_fields failed: %v", err)
	}
	fmt.Printf("  fields of %s:\n", connections.FormatPath(path))
	for _, f := range fields {
		fmt.Printf("    %s: %s\n", f.Name, f.DType)
	}

	if err := backend.Reload(ctx, catalog); err != nil {
		log.Printf("Reload failed: %v", err)
	}
}
