package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang/glog"
	"github.com/yiblet/replkit/internal/comm"
	"github.com/yiblet/replkit/internal/connections"
)

const (
	commPath        = "/comm"
	shutdownTimeout = 5 * time.Second
)

// loadCatalog reads the catalog at path, or returns an empty catalog when
// no path is configured
func (c *CLI) loadCatalog(path string) (*connections.Catalog, error) {
	if path == "" {
		return &connections.Catalog{}, nil
	}
	data, err := c.filesystem.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	return connections.ParseCatalog(data)
}

// executeServe handles the 'replkit serve' command. SIGHUP reloads the
// catalog and notifies connected clients.
func (c *CLI) executeServe(ctx context.Context, cmd *ServeCmd) error {
	catalogPath := c.config.Catalog
	if cmd.Catalog != nil {
		catalogPath = *cmd.Catalog
	}
	catalog, err := c.loadCatalog(catalogPath)
	if err != nil {
		return err
	}

	server := comm.NewServer()
	backend := connections.NewBackend(server, catalog)

	listener, err := net.Listen("tcp", cmd.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cmd.Addr, err)
	}

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-hup:
				c.reloadCatalog(ctx, backend, catalogPath)
			}
		}
	}()

	fmt.Fprintf(c.out, "Serving %d objects on ws://%s%s\n", len(catalog.Objects), listener.Addr(), commPath)
	return c.serveComm(ctx, listener, server)
}

func (c *CLI) reloadCatalog(ctx context.Context, backend *connections.Backend, path string) {
	catalog, err := c.loadCatalog(path)
	if err != nil {
		glog.Errorf("[serve]reload error = %s\n", err)
		return
	}
	if err := backend.Reload(ctx, catalog); err != nil {
		glog.Warningf("[serve]update notify error = %s\n", err)
	}
}

// serveComm serves server's websocket endpoint on listener until ctx is done
func (c *CLI) serveComm(ctx context.Context, listener net.Listener, server *comm.Server) error {
	mux := http.NewServeMux()
	mux.Handle(commPath, server)

	httpServer := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errs := make(chan error, 1)
	go func() {
		errs <- httpServer.Serve(listener)
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	glog.Infof("[serve]shutting down\n")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errs; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
