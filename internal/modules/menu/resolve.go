package menu

// Resolution is the outcome of routing a requested path.
type Resolution struct {
	Path      string `json:"path"`
	Component string `json:"component"`
	Parent    string `json:"parent,omitempty"`
	Found     bool   `json:"found"`
}

// AllPaths lists every node path in pre-order, groups with a path included.
func (t *Tree) AllPaths() []string {
	paths := []string{}
	walk(t.roots, func(n Node) {
		if n.Path != "" {
			paths = append(paths, n.Path)
		}
	})
	return paths
}

// ComponentByPath returns the view registered for path.
func (t *Tree) ComponentByPath(path string) (string, bool) {
	n, ok := t.byPath[path]
	if !ok || n.Component == "" {
		return "", false
	}
	return n.Component, true
}

// ActiveSection returns the top-level key to highlight for path: the parent's key when
// path sits under a top-level node, else the key of the top-level node at path.
func (t *Tree) ActiveSection(path string) (string, bool) {
	if parent, ok := t.FindParentByPath(path); ok {
		return parent.Key, true
	}
	for _, n := range t.roots {
		if n.Path != "" && n.Path == path {
			return n.Key, true
		}
	}
	return "", false
}

// SubMenu returns the children of the top-level node with key, or nil.
func (t *Tree) SubMenu(key string) []Node {
	for _, n := range t.roots {
		if n.Key == key {
			return cloneNodes(n.Children)
		}
	}
	return nil
}

// Resolve maps a requested path to the view to render.
// The root path resolves to DefaultPath, found only when the tree routes it. Unknown
// paths, and paths without a view, fall back to DefaultPath with Found=false.
func (t *Tree) Resolve(path string) Resolution {
	if path == "" || path == "/" {
		return t.resolveKnown(DefaultPath)
	}
	if _, ok := t.ComponentByPath(path); ok {
		return t.resolveKnown(path)
	}
	res := t.resolveKnown(DefaultPath)
	res.Found = false
	return res
}

func (t *Tree) resolveKnown(path string) Resolution {
	res := Resolution{Path: path}
	component, ok := t.ComponentByPath(path)
	if !ok {
		return res
	}
	res.Component = component
	res.Found = true
	if parent, ok := t.FindParentByPath(path); ok {
		res.Parent = parent.Key
	}
	return res
}
