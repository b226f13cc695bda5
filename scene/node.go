package scene

import (
	"slices"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// NodeType is the engine type tag of a node.
type NodeType string

const (
	TypeScene             NodeType = "Scene"
	TypeGroup             NodeType = "Group"
	TypeMesh              NodeType = "Mesh"
	TypeAmbientLight      NodeType = "AmbientLight"
	TypeDirectionalLight  NodeType = "DirectionalLight"
	TypePointLight        NodeType = "PointLight"
	TypeSpotLight         NodeType = "SpotLight"
	TypeHemisphereLight   NodeType = "HemisphereLight"
	TypePerspectiveCamera NodeType = "PerspectiveCamera"
)

// IsLight reports whether the type tag names a light.
func (t NodeType) IsLight() bool { return strings.Contains(string(t), "Light") }

// IsCamera reports whether the type tag names a camera.
func (t NodeType) IsCamera() bool { return strings.Contains(string(t), "Camera") }

// Geometry summarizes the mesh geometry attached to a node.
type Geometry struct {
	Type     string `json:"type"`
	Vertices int    `json:"vertices"`
}

// Light holds the emitter parameters of a light node.
type Light struct {
	Color     Color   `json:"color"`
	Intensity float64 `json:"intensity"`
}

// Node is one element of the scene graph.
// Transform fields are read and written directly by commands.
type Node struct {
	ID      string
	Name    string
	Type    NodeType
	Visible bool

	Position mgl64.Vec3
	// Rotation holds Euler angles in radians, applied in XYZ order.
	Rotation mgl64.Vec3
	Scale    mgl64.Vec3

	Material *Material
	Geometry *Geometry
	Light    *Light

	parent   *Node
	children []*Node
	disposed bool
}

// NewNode creates a visible node with identity transform and a fresh UUID.
func NewNode(name string, typ NodeType) *Node {
	return &Node{
		ID:      uuid.NewString(),
		Name:    name,
		Type:    typ,
		Visible: true,
		Scale:   mgl64.Vec3{1, 1, 1},
	}
}

// Parent returns the node's parent, or nil for a detached node or root.
func (n *Node) Parent() *Node { return n.parent }

// Children returns a copy of the ordered child list.
func (n *Node) Children() []*Node { return slices.Clone(n.children) }

// ChildCount returns the number of direct children.
func (n *Node) ChildCount() int { return len(n.children) }

// IndexOf returns the index of child among n's children, or -1.
func (n *Node) IndexOf(child *Node) int { return slices.Index(n.children, child) }

// Add appends child, detaching it from any previous parent first.
func (n *Node) Add(child *Node) {
	if child == nil || child == n {
		return
	}
	if child.parent != nil {
		child.parent.Remove(child)
	}
	child.parent = n
	n.children = append(n.children, child)
}

// InsertAt inserts child at index. Out-of-range indices append.
func (n *Node) InsertAt(child *Node, index int) {
	if child == nil || child == n {
		return
	}
	if child.parent != nil {
		child.parent.Remove(child)
	}
	if index < 0 || index > len(n.children) {
		index = len(n.children)
	}
	child.parent = n
	n.children = slices.Insert(n.children, index, child)
}

// Remove detaches child and reports whether it was a child of n.
func (n *Node) Remove(child *Node) bool {
	idx := n.IndexOf(child)
	if idx < 0 {
		return false
	}
	n.children = slices.Delete(n.children, idx, idx+1)
	child.parent = nil
	return true
}

// Traverse visits n and all descendants depth-first, parents before children.
func (n *Node) Traverse(fn func(*Node)) {
	fn(n)
	for _, child := range n.children {
		child.Traverse(fn)
	}
}

// Dispose marks the node and its subtree as released by the engine.
// Commands refuse to mutate disposed nodes.
func (n *Node) Dispose() {
	n.Traverse(func(node *Node) { node.disposed = true })
}

// Disposed reports whether the engine released this node.
func (n *Node) Disposed() bool { return n.disposed }

// LocalMatrix composes translation, XYZ Euler rotation and scale.
func (n *Node) LocalMatrix() mgl64.Mat4 {
	rot := mgl64.HomogRotate3DX(n.Rotation.X()).
		Mul4(mgl64.HomogRotate3DY(n.Rotation.Y())).
		Mul4(mgl64.HomogRotate3DZ(n.Rotation.Z()))
	return mgl64.Translate3D(n.Position.X(), n.Position.Y(), n.Position.Z()).
		Mul4(rot).
		Mul4(mgl64.Scale3D(n.Scale.X(), n.Scale.Y(), n.Scale.Z()))
}

// WorldMatrix multiplies local matrices from the root down to n.
func (n *Node) WorldMatrix() mgl64.Mat4 {
	m := n.LocalMatrix()
	for p := n.parent; p != nil; p = p.parent {
		m = p.LocalMatrix().Mul4(m)
	}
	return m
}

// WorldPosition returns the node origin in scene space.
func (n *Node) WorldPosition() mgl64.Vec3 {
	return n.WorldMatrix().Mul4x1(mgl64.Vec4{0, 0, 0, 1}).Vec3()
}
