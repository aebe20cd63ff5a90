package connections

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Catalog is a static tree of connection objects, loaded from YAML:
//
//	objects:
//	  - name: main
//	    kind: schema
//	    children:
//	      - name: flights
//	        kind: table
//	        fields:
//	          - {name: id, dtype: int}
type Catalog struct {
	Objects []Node `yaml:"objects"`
}

// Node is one object in a Catalog.
type Node struct {
	Name     string        `yaml:"name"`
	Kind     string        `yaml:"kind"`
	Icon     string        `yaml:"icon,omitempty"`
	Fields   []FieldSchema `yaml:"fields,omitempty"`
	Children []Node        `yaml:"children,omitempty"`
}

// ParseCatalog decodes a YAML catalog and checks that sibling objects are
// distinct.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if err := validateNodes(c.Objects, nil); err != nil {
		return nil, err
	}
	return &c, nil
}

// ReadCatalog parses a catalog from r.
func ReadCatalog(r io.Reader) (*Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return ParseCatalog(data)
}

func validateNodes(nodes []Node, parent []string) error {
	seen := make(map[ObjectSchema]bool, len(nodes))
	for _, n := range nodes {
		if n.Name == "" || n.Kind == "" {
			return fmt.Errorf("catalog object under /%s needs a name and a kind", strings.Join(parent, "/"))
		}
		key := ObjectSchema{Name: n.Name, Kind: n.Kind}
		if seen[key] {
			return fmt.Errorf("duplicate catalog object %s:%s under /%s", n.Name, n.Kind, strings.Join(parent, "/"))
		}
		seen[key] = true
		if err := validateNodes(n.Children, append(parent, n.Name)); err != nil {
			return err
		}
	}
	return nil
}

// Resolve walks path from the top level. An empty path resolves to a root
// node whose children are the top-level objects.
func (c *Catalog) Resolve(path []ObjectSchema) (*Node, bool) {
	node := &Node{Children: c.Objects}
	for _, step := range path {
		var next *Node
		for i := range node.Children {
			child := &node.Children[i]
			if child.Name == step.Name && child.Kind == step.Kind {
				next = child
				break
			}
		}
		if next == nil {
			return nil, false
		}
		node = next
	}
	return node, true
}

// Schema returns the node's name and kind.
func (n *Node) Schema() ObjectSchema {
	return ObjectSchema{Name: n.Name, Kind: n.Kind}
}

// ContainsData reports whether the node holds tabular data.
func (n *Node) ContainsData() bool {
	return n.Kind == "table" || n.Kind == "view"
}

// FormatPath renders path as name:kind segments joined by slashes.
func FormatPath(path []ObjectSchema) string {
	parts := make([]string, len(path))
	for i, p := range path {
		parts[i] = p.Name + ":" + p.Kind
	}
	return "/" + strings.Join(parts, "/")
}

// ParsePath parses name:kind arguments, as accepted on the command line.
func ParsePath(args []string) ([]ObjectSchema, error) {
	path := make([]ObjectSchema, 0, len(args))
	for _, arg := range args {
		name, kind, ok := strings.Cut(arg, ":")
		if !ok || name == "" || kind == "" {
			return nil, fmt.Errorf("invalid path segment %q: want name:kind", arg)
		}
		path = append(path, ObjectSchema{Name: name, Kind: kind})
	}
	return path, nil
}
