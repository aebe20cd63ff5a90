// Package connections implements the Connections comm: typed stubs for
// browsing a runtime's data connections over a comm.Client, and a
// catalog-backed backend that answers them.
package connections

import (
	"context"

	"github.com/yiblet/replkit/internal/comm"
)

// ObjectSchema names one object in a connection hierarchy.
type ObjectSchema struct {
	Name string `json:"name" yaml:"name"`
	Kind string `json:"kind" yaml:"kind"`
}

// FieldSchema describes one field of a data object.
type FieldSchema struct {
	Name  string `json:"name" yaml:"name"`
	DType string `json:"dtype" yaml:"dtype"`
}

// FocusEvent asks the frontend to focus the connections pane.
type FocusEvent struct{}

// UpdateEvent tells the frontend the connection contents changed.
type UpdateEvent struct{}

// Backend request methods.
const (
	MethodListObjects   = "list_objects"
	MethodListFields    = "list_fields"
	MethodContainsData  = "contains_data"
	MethodGetIcon       = "get_icon"
	MethodPreviewObject = "preview_object"
)

// Frontend events.
const (
	EventFocus  = "focus"
	EventUpdate = "update"
)

var pathParam = []string{"path"}

// Comm is the frontend side of the Connections comm.
type Comm struct {
	client *comm.Client

	OnDidFocus  *comm.Emitter
	OnDidUpdate *comm.Emitter
}

func NewComm(client *comm.Client) *Comm {
	return &Comm{
		client:      client,
		OnDidFocus:  client.CreateEventEmitter(EventFocus, nil),
		OnDidUpdate: client.CreateEventEmitter(EventUpdate, nil),
	}
}

// ListObjects lists the children of the object at path. An empty path
// lists the top level.
func (c *Comm) ListObjects(ctx context.Context, path []ObjectSchema) ([]ObjectSchema, error) {
	return comm.Call[[]ObjectSchema](ctx, c.client, MethodListObjects, pathParam, []any{normalize(path)})
}

// ListFields lists the fields of the object at path.
func (c *Comm) ListFields(ctx context.Context, path []ObjectSchema) ([]FieldSchema, error) {
	return comm.Call[[]FieldSchema](ctx, c.client, MethodListFields, pathParam, []any{normalize(path)})
}

// ContainsData reports whether the object at path holds previewable data.
func (c *Comm) ContainsData(ctx context.Context, path []ObjectSchema) (bool, error) {
	return comm.Call[bool](ctx, c.client, MethodContainsData, pathParam, []any{normalize(path)})
}

// GetIcon returns the icon of the object at path, or "" if it has none.
func (c *Comm) GetIcon(ctx context.Context, path []ObjectSchema) (string, error) {
	return comm.Call[string](ctx, c.client, MethodGetIcon, pathParam, []any{normalize(path)})
}

// PreviewObject asks the backend to open a preview of the object at path.
func (c *Comm) PreviewObject(ctx context.Context, path []ObjectSchema) error {
	_, err := comm.Call[any](ctx, c.client, MethodPreviewObject, pathParam, []any{normalize(path)})
	return err
}

// nil paths are sent as [] rather than null.
func normalize(path []ObjectSchema) []ObjectSchema {
	if path == nil {
		return []ObjectSchema{}
	}
	return path
}
