package connections

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/go-playground/assert/v2"
	"github.com/yiblet/replkit/internal/comm"
)

const testCatalog = `
objects:
  - name: main
    kind: schema
    icon: schema.svg
    children:
      - name: flights
        kind: table
        fields:
          - {name: id, dtype: int}
          - {name: carrier, dtype: varchar}
      - name: delays
        kind: view
  - name: scratch
    kind: schema
`

func newTestComm(t *testing.T) (*Comm, *Backend) {
	t.Helper()
	catalog, err := ParseCatalog([]byte(testCatalog))
	assert.Equal(t, err, nil)

	srv := comm.NewServer()
	backend := NewBackend(srv, catalog)

	a, b := comm.NewPipe()
	detach := srv.Attach(context.Background(), b)
	client := comm.NewClient(a)
	t.Cleanup(func() {
		client.Close()
		detach()
	})
	return NewComm(client), backend
}

var (
	mainSchema = ObjectSchema{Name: "main", Kind: "schema"}
	flights    = ObjectSchema{Name: "flights", Kind: "table"}
)

func TestListObjects(t *testing.T) {
	c, _ := newTestComm(t)
	ctx := context.Background()

	top, err := c.ListObjects(ctx, nil)
	assert.Equal(t, err, nil)
	assert.Equal(t, top, []ObjectSchema{mainSchema, {Name: "scratch", Kind: "schema"}})

	children, err := c.ListObjects(ctx, []ObjectSchema{mainSchema})
	assert.Equal(t, err, nil)
	assert.Equal(t, children, []ObjectSchema{flights, {Name: "delays", Kind: "view"}})

	leaf, err := c.ListObjects(ctx, []ObjectSchema{mainSchema, flights})
	assert.Equal(t, err, nil)
	assert.Equal(t, len(leaf), 0)
}

func TestListFields(t *testing.T) {
	c, _ := newTestComm(t)

	fields, err := c.ListFields(context.Background(), []ObjectSchema{mainSchema, flights})
	assert.Equal(t, err, nil)
	assert.Equal(t, fields, []FieldSchema{{Name: "id", DType: "int"}, {Name: "carrier", DType: "varchar"}})
}

func TestContainsData(t *testing.T) {
	c, _ := newTestComm(t)
	ctx := context.Background()

	tests := []struct {
		path []ObjectSchema
		want bool
	}{
		{[]ObjectSchema{mainSchema}, false},
		{[]ObjectSchema{mainSchema, flights}, true},
		{[]ObjectSchema{mainSchema, {Name: "delays", Kind: "view"}}, true},
	}
	for _, tt := range tests {
		t.Run(FormatPath(tt.path), func(t *testing.T) {
			got, err := c.ContainsData(ctx, tt.path)
			assert.Equal(t, err, nil)
			assert.Equal(t, got, tt.want)
		})
	}
}

func TestGetIcon(t *testing.T) {
	c, _ := newTestComm(t)
	ctx := context.Background()

	icon, err := c.GetIcon(ctx, []ObjectSchema{mainSchema})
	assert.Equal(t, err, nil)
	assert.Equal(t, icon, "schema.svg")

	icon, err = c.GetIcon(ctx, []ObjectSchema{mainSchema, flights})
	assert.Equal(t, err, nil)
	assert.Equal(t, icon, "")
}

func TestUnknownPath(t *testing.T) {
	c, _ := newTestComm(t)

	// Kind must match as well as name.
	_, err := c.ListFields(context.Background(), []ObjectSchema{{Name: "main", Kind: "table"}})
	var rerr *comm.RemoteError
	assert.Equal(t, errors.As(err, &rerr), true)
	assert.Equal(t, rerr.Code, comm.CodeInvalidParams)
	assert.Equal(t, rerr.Message, "no such object: /main:table")
}

func TestPreviewEmitsFocus(t *testing.T) {
	c, _ := newTestComm(t)

	focused := 0
	c.OnDidFocus.Subscribe(func(comm.Event) { focused++ })

	err := c.PreviewObject(context.Background(), []ObjectSchema{mainSchema, flights})
	assert.Equal(t, err, nil)
	assert.Equal(t, focused, 1)
}

func TestReloadEmitsUpdate(t *testing.T) {
	c, backend := newTestComm(t)
	ctx := context.Background()

	updates := 0
	c.OnDidUpdate.Subscribe(func(comm.Event) { updates++ })

	next, err := ParseCatalog([]byte("objects:\n  - {name: other, kind: schema}\n"))
	assert.Equal(t, err, nil)
	assert.Equal(t, backend.Reload(ctx, next), nil)
	assert.Equal(t, updates, 1)

	top, err := c.ListObjects(ctx, nil)
	assert.Equal(t, err, nil)
	assert.Equal(t, top, []ObjectSchema{{Name: "other", Kind: "schema"}})
}

func TestParseCatalogRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"missing kind": "objects:\n  - {name: a}\n",
		"duplicate":    "objects:\n  - {name: a, kind: t}\n  - {name: a, kind: t}\n",
		"bad yaml":     "objects: [",
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(data))
			assert.NotEqual(t, err, nil)
		})
	}
}

func TestReadCatalog(t *testing.T) {
	c, err := ReadCatalog(strings.NewReader(testCatalog))
	assert.Equal(t, err, nil)
	node, ok := c.Resolve([]ObjectSchema{mainSchema, flights})
	assert.Equal(t, ok, true)
	assert.Equal(t, len(node.Fields), 2)
}

func TestParsePath(t *testing.T) {
	path, err := ParsePath([]string{"main:schema", "flights:table"})
	assert.Equal(t, err, nil)
	assert.Equal(t, path, []ObjectSchema{mainSchema, flights})
	assert.Equal(t, FormatPath(path), "/main:schema/flights:table")

	_, err = ParsePath([]string{"nokind"})
	assert.NotEqual(t, err, nil)
}
