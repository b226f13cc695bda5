package scene

// Scene owns the root of a node tree.
type Scene struct {
	Root       *Node
	Background *Color
}

// New creates an empty scene whose root carries the given name.
func New(name string) *Scene {
	return &Scene{Root: NewNode(name, TypeScene)}
}

// Name returns the root node name.
func (s *Scene) Name() string { return s.Root.Name }

// ID returns the root node UUID.
func (s *Scene) ID() string { return s.Root.ID }

// Add appends node to the scene root.
func (s *Scene) Add(node *Node) { s.Root.Add(node) }

// Remove detaches node from the scene root.
func (s *Scene) Remove(node *Node) bool { return s.Root.Remove(node) }

// FindByName returns the first node whose name matches exactly, searching
// depth-first from the root (root included).
func (s *Scene) FindByName(name string) *Node {
	if s == nil || s.Root == nil {
		return nil
	}
	return findByName(s.Root, name)
}

func findByName(n *Node, name string) *Node {
	if n.Name == name {
		return n
	}
	for _, child := range n.children {
		if found := findByName(child, name); found != nil {
			return found
		}
	}
	return nil
}

// FindByID returns the node with the given UUID.
func (s *Scene) FindByID(id string) *Node {
	var found *Node
	s.Root.Traverse(func(n *Node) {
		if found == nil && n.ID == id {
			found = n
		}
	})
	return found
}

// Objects returns every node below the root in traversal order.
func (s *Scene) Objects() []*Node {
	var out []*Node
	s.Root.Traverse(func(n *Node) {
		if n != s.Root {
			out = append(out, n)
		}
	})
	return out
}

// Contains reports whether node is attached somewhere under the root.
func (s *Scene) Contains(node *Node) bool {
	for p := node; p != nil; p = p.parent {
		if p == s.Root {
			return true
		}
	}
	return false
}
