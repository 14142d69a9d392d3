// Package catalog loads the hierarchical facet catalog and resolves category
// paths such as "vetements > pantalons > shorts".
package catalog

import (
	"strings"

	ferrors "facettes/internal/errors"
)

// PathSeparator separates the segments of a category path.
const PathSeparator = ">"

// Facet is one facet type and its ordered values.
type Facet struct {
	Type   string
	Values []string
}

// Node is a category. Facets and Subcategories keep document order.
type Node struct {
	Name          string
	Genres        []string
	Facets        []Facet
	Subcategories []*Node
}

// Catalog is the set of root categories in document order.
type Catalog struct {
	Categories []*Node
}

// SplitPath returns the trimmed segments of path.
func SplitPath(path string) []string {
	parts := strings.Split(path, PathSeparator)
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

// JoinPath builds a canonical path from segments.
func JoinPath(segments ...string) string {
	return strings.Join(segments, " "+PathSeparator+" ")
}

// LeafName returns the last segment of path, or path itself when that
// segment is empty.
func LeafName(path string) string {
	parts := SplitPath(path)
	if leaf := parts[len(parts)-1]; leaf != "" {
		return leaf
	}
	return path
}

// Depth returns the number of separators in path: 0 for a root category.
func Depth(path string) int {
	return strings.Count(path, PathSeparator)
}

// ResolveNode walks path from the root. A missing segment is a NOT_FOUND error.
func (c *Catalog) ResolveNode(path string) (*Node, error) {
	if strings.TrimSpace(path) == "" {
		return nil, ferrors.New(ferrors.NotFound, "empty category path")
	}

	level := c.Categories
	var node *Node
	for i, segment := range SplitPath(path) {
		node = findChild(level, segment)
		if node == nil {
			if i == 0 {
				return nil, ferrors.Newf(ferrors.NotFound, "unknown category %q (path %q)", segment, path)
			}
			return nil, ferrors.Newf(ferrors.NotFound, "unknown subcategory %q (path %q)", segment, path)
		}
		level = node.Subcategories
	}
	return node, nil
}

// ListPaths returns every category path, depth first in document order.
func (c *Catalog) ListPaths() []string {
	var paths []string
	type frame struct {
		prefix string
		nodes  []*Node
	}
	// explicit stack, children pushed in reverse to pop in document order
	stack := []frame{{nodes: c.Categories}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if len(top.nodes) == 0 {
			stack = stack[:len(stack)-1]
			continue
		}
		n := top.nodes[0]
		top.nodes = top.nodes[1:]

		path := n.Name
		if top.prefix != "" {
			path = JoinPath(top.prefix, n.Name)
		}
		paths = append(paths, path)
		if len(n.Subcategories) > 0 {
			stack = append(stack, frame{prefix: path, nodes: n.Subcategories})
		}
	}
	return paths
}

// Genres returns the genres of the category at path.
func (c *Catalog) Genres(path string) ([]string, error) {
	n, err := c.ResolveNode(path)
	if err != nil {
		return nil, err
	}
	return n.Genres, nil
}

// Facets returns the facets of the category at path.
func (c *Catalog) Facets(path string) ([]Facet, error) {
	n, err := c.ResolveNode(path)
	if err != nil {
		return nil, err
	}
	return n.Facets, nil
}

// HasGenre reports whether gender is declared on n.
func (n *Node) HasGenre(gender string) bool {
	for _, g := range n.Genres {
		if g == gender {
			return true
		}
	}
	return false
}

// Facet returns the facet named typ.
func (n *Node) Facet(typ string) (Facet, bool) {
	for _, f := range n.Facets {
		if f.Type == typ {
			return f, true
		}
	}
	return Facet{}, false
}

// Validate checks that every category has a name, genres and facets, and
// that every facet has a name and at least one value.
func (c *Catalog) Validate() error {
	if len(c.Categories) == 0 {
		return ferrors.New(ferrors.ValidationError, "catalog is empty")
	}
	for _, n := range c.Categories {
		if err := validateNode(n.Name, n); err != nil {
			return err
		}
	}
	return nil
}

func validateNode(path string, n *Node) error {
	if strings.TrimSpace(n.Name) == "" {
		return ferrors.New(ferrors.ValidationError, "invalid category name (empty)")
	}
	if len(n.Genres) == 0 {
		return ferrors.Newf(ferrors.ValidationError, "category %q: genres missing or empty", path)
	}
	if len(n.Facets) == 0 {
		return ferrors.Newf(ferrors.ValidationError, "category %q: facets missing or empty", path)
	}
	for _, f := range n.Facets {
		if strings.TrimSpace(f.Type) == "" {
			return ferrors.Newf(ferrors.ValidationError, "category %q: invalid facet name", path)
		}
		if len(f.Values) == 0 {
			return ferrors.Newf(ferrors.ValidationError, "category %q, facet %q: no values", path, f.Type)
		}
	}
	for _, sub := range n.Subcategories {
		if err := validateNode(JoinPath(path, sub.Name), sub); err != nil {
			return err
		}
	}
	return nil
}

func findChild(nodes []*Node, name string) *Node {
	for _, n := range nodes {
		if n.Name == name {
			return n
		}
	}
	return nil
}
