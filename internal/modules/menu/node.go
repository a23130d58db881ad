// Package menu holds the navigation tree and the lookups the UI shell needs:
// route flattening, path lookup, and parent resolution for header highlighting.
package menu

// Node is one entry of the navigation tree.
// A node without Path is a group: it only carries children.
type Node struct {
	Key       string `json:"key" yaml:"key"`
	Label     string `json:"label" yaml:"label"`
	Icon      string `json:"icon,omitempty" yaml:"icon,omitempty"`
	Component string `json:"component,omitempty" yaml:"component,omitempty"`
	Path      string `json:"path,omitempty" yaml:"path,omitempty"`
	Children  []Node `json:"children,omitempty" yaml:"children,omitempty"`
}

// IsGroup reports whether the node has no route of its own.
func (n Node) IsGroup() bool {
	return n.Path == ""
}

// Routable reports whether the node yields a route entry.
func (n Node) Routable() bool {
	return n.Path != "" && n.Component != ""
}

// clone returns a deep copy so callers cannot mutate the tree through returned values.
func (n Node) clone() Node {
	out := n
	if n.Children != nil {
		out.Children = cloneNodes(n.Children)
	}
	return out
}

func cloneNodes(nodes []Node) []Node {
	if nodes == nil {
		return nil
	}
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		out[i] = n.clone()
	}
	return out
}

// RouteEntry binds a concrete path to the view that renders it.
type RouteEntry struct {
	Path      string `json:"path"`
	Component string `json:"component"`
}
