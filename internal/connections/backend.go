package connections

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/golang/glog"
	"github.com/yiblet/replkit/internal/comm"
)

// Backend answers Connections requests from a Catalog.
type Backend struct {
	server *comm.Server

	mu      sync.RWMutex
	catalog *Catalog
}

// NewBackend registers the Connections methods on server, serving catalog.
func NewBackend(server *comm.Server, catalog *Catalog) *Backend {
	if catalog == nil {
		catalog = &Catalog{}
	}
	b := &Backend{server: server, catalog: catalog}

	server.Handle(MethodListObjects, b.withNode(func(ctx context.Context, n *Node, _ []ObjectSchema) (any, error) {
		objects := make([]ObjectSchema, 0, len(n.Children))
		for i := range n.Children {
			objects = append(objects, n.Children[i].Schema())
		}
		return objects, nil
	}))
	server.Handle(MethodListFields, b.withNode(func(ctx context.Context, n *Node, _ []ObjectSchema) (any, error) {
		fields := make([]FieldSchema, len(n.Fields))
		copy(fields, n.Fields)
		return fields, nil
	}))
	server.Handle(MethodContainsData, b.withNode(func(ctx context.Context, n *Node, _ []ObjectSchema) (any, error) {
		return n.ContainsData(), nil
	}))
	server.Handle(MethodGetIcon, b.withNode(func(ctx context.Context, n *Node, _ []ObjectSchema) (any, error) {
		return n.Icon, nil
	}))
	server.Handle(MethodPreviewObject, b.withNode(func(ctx context.Context, n *Node, path []ObjectSchema) (any, error) {
		glog.Infof("[connections]preview %s\n", FormatPath(path))
		if err := server.Notify(ctx, EventFocus, FocusEvent{}); err != nil {
			glog.Warningf("[connections]focus notify error = %s\n", err)
		}
		return nil, nil
	}))
	return b
}

// Catalog returns the catalog being served.
func (b *Backend) Catalog() *Catalog {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.catalog
}

// Reload swaps the served catalog and notifies attached frontends.
func (b *Backend) Reload(ctx context.Context, catalog *Catalog) error {
	if catalog == nil {
		catalog = &Catalog{}
	}
	b.mu.Lock()
	b.catalog = catalog
	b.mu.Unlock()

	glog.Infof("[connections]catalog reloaded, %d top-level objects\n", len(catalog.Objects))
	return b.server.Notify(ctx, EventUpdate, UpdateEvent{})
}

type nodeHandler func(ctx context.Context, n *Node, path []ObjectSchema) (any, error)

// withNode decodes the path parameter and resolves it before calling fn.
func (b *Backend) withNode(fn nodeHandler) comm.HandlerFunc {
	return func(ctx context.Context, params json.RawMessage) (any, error) {
		var p struct {
			Path []ObjectSchema `json:"path"`
		}
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, comm.Errorf(comm.CodeInvalidParams, "invalid path: %s", err)
		}

		node, ok := b.Catalog().Resolve(p.Path)
		if !ok {
			return nil, comm.Errorf(comm.CodeInvalidParams, "no such object: %s", FormatPath(p.Path))
		}
		return fn(ctx, node, p.Path)
	}
}
