package menu

import (
	"github.com/aristath/stockboard/internal/domain"
)

// DefaultPath is where the root path and unknown paths land.
const DefaultPath = "/dashboard"

// Tree is a validated, immutable navigation tree.
type Tree struct {
	roots  []Node
	routes []RouteEntry
	byPath map[string]Node
}

// NewTree validates roots and builds a Tree.
// A path that appears on more than one node is a *domain.ConfigurationError.
func NewTree(roots ...Node) (*Tree, error) {
	owners := make(map[string]string)
	if err := checkPaths(roots, owners); err != nil {
		return nil, err
	}

	t := &Tree{
		roots:  cloneNodes(roots),
		byPath: make(map[string]Node, len(owners)),
	}
	t.routes = FlattenRoutes(t.roots)
	walk(t.roots, func(n Node) {
		if n.Path != "" {
			t.byPath[n.Path] = n
		}
	})
	return t, nil
}

func checkPaths(nodes []Node, owners map[string]string) error {
	for _, n := range nodes {
		if n.Path != "" {
			if prev, ok := owners[n.Path]; ok {
				return domain.NewConfigurationError("duplicate menu path %q on keys %q and %q", n.Path, prev, n.Key)
			}
			owners[n.Path] = n.Key
		}
		if err := checkPaths(n.Children, owners); err != nil {
			return err
		}
	}
	return nil
}

// walk visits nodes depth-first in pre-order.
func walk(nodes []Node, fn func(Node)) {
	for _, n := range nodes {
		fn(n)
		walk(n.Children, fn)
	}
}

// FlattenRoutes lists one RouteEntry per node carrying both a path and a component,
// in pre-order. Group nodes contribute only their descendants.
func FlattenRoutes(nodes []Node) []RouteEntry {
	routes := []RouteEntry{}
	walk(nodes, func(n Node) {
		if n.Routable() {
			routes = append(routes, RouteEntry{Path: n.Path, Component: n.Component})
		}
	})
	return routes
}

// FindNodeByPath returns the first node, depth-first, whose path equals path.
func FindNodeByPath(nodes []Node, path string) (Node, bool) {
	if path == "" {
		return Node{}, false
	}
	for _, n := range nodes {
		if n.Path == path {
			return n.clone(), true
		}
		if found, ok := FindNodeByPath(n.Children, path); ok {
			return found, true
		}
	}
	return Node{}, false
}

// FindParentByPath returns the top-level node whose direct children contain childPath.
// Only top-level nodes are considered as parents.
func FindParentByPath(nodes []Node, childPath string) (Node, bool) {
	if childPath == "" {
		return Node{}, false
	}
	for _, n := range nodes {
		for _, c := range n.Children {
			if c.Path == childPath {
				return n.clone(), true
			}
		}
	}
	return Node{}, false
}

// Roots returns a copy of the top-level nodes.
func (t *Tree) Roots() []Node {
	return cloneNodes(t.roots)
}

// Routes returns the flattened route table.
func (t *Tree) Routes() []RouteEntry {
	out := make([]RouteEntry, len(t.routes))
	copy(out, t.routes)
	return out
}

// FindNodeByPath looks up a node by exact path.
func (t *Tree) FindNodeByPath(path string) (Node, bool) {
	n, ok := t.byPath[path]
	if !ok {
		return Node{}, false
	}
	return n.clone(), true
}

// FindParentByPath returns the top-level parent of childPath.
func (t *Tree) FindParentByPath(childPath string) (Node, bool) {
	return FindParentByPath(t.roots, childPath)
}
