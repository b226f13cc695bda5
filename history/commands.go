package history

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/slighter12/modelweb-mcp-go/scene"
)

// TransformCommand sets one transform vector (Move, Rotate or Scale).
type TransformCommand struct {
	target *scene.Node
	field  TransformField
	old    mgl64.Vec3
	new    mgl64.Vec3
}

// NewTransformCommand captures the current value of field as the undo state.
func NewTransformCommand(target *scene.Node, field TransformField, value mgl64.Vec3) *TransformCommand {
	cmd := &TransformCommand{target: target, field: field, new: value}
	if target != nil {
		cmd.old = field.Get(target)
	}
	return cmd
}

// newTransformCommandFrom is used by interactive edits, where the live value
// already moved away from the value the edit started at.
func newTransformCommandFrom(target *scene.Node, field TransformField, old, value mgl64.Vec3) *TransformCommand {
	return &TransformCommand{target: target, field: field, old: old, new: value}
}

func NewMoveCommand(target *scene.Node, position mgl64.Vec3) *TransformCommand {
	return NewTransformCommand(target, FieldPosition, position)
}

func NewRotateCommand(target *scene.Node, rotation mgl64.Vec3) *TransformCommand {
	return NewTransformCommand(target, FieldRotation, rotation)
}

func NewScaleCommand(target *scene.Node, scale mgl64.Vec3) *TransformCommand {
	return NewTransformCommand(target, FieldScale, scale)
}

func (c *TransformCommand) Execute() error { return c.apply(c.new) }
func (c *TransformCommand) Undo() error    { return c.apply(c.old) }
func (c *TransformCommand) Type() CommandType {
	return c.field.commandType()
}

func (c *TransformCommand) apply(v mgl64.Vec3) error {
	if !alive(c.target) {
		return ErrTargetGone
	}
	c.field.Set(c.target, v)
	return nil
}

// AddObjectCommand attaches a node to a parent.
type AddObjectCommand struct {
	parent *scene.Node
	node   *scene.Node
}

func NewAddObjectCommand(parent, node *scene.Node) *AddObjectCommand {
	return &AddObjectCommand{parent: parent, node: node}
}

func (c *AddObjectCommand) Execute() error {
	if !alive(c.parent) || !alive(c.node) {
		return ErrTargetGone
	}
	c.parent.Add(c.node)
	return nil
}

func (c *AddObjectCommand) Undo() error {
	if !alive(c.parent) || c.node == nil {
		return ErrTargetGone
	}
	c.parent.Remove(c.node)
	return nil
}

func (c *AddObjectCommand) Type() CommandType { return TypeAddObject }

// RemoveObjectCommand detaches a node from its current parent and restores it
// at the same child index on undo.
type RemoveObjectCommand struct {
	parent *scene.Node
	node   *scene.Node
	index  int
}

func NewRemoveObjectCommand(node *scene.Node) *RemoveObjectCommand {
	cmd := &RemoveObjectCommand{node: node, index: -1}
	if node != nil {
		cmd.parent = node.Parent()
	}
	return cmd
}

func (c *RemoveObjectCommand) Execute() error {
	if !alive(c.parent) || !alive(c.node) {
		return ErrTargetGone
	}
	c.index = c.parent.IndexOf(c.node)
	c.parent.Remove(c.node)
	return nil
}

func (c *RemoveObjectCommand) Undo() error {
	if !alive(c.parent) || !alive(c.node) {
		return ErrTargetGone
	}
	c.parent.InsertAt(c.node, c.index)
	return nil
}

func (c *RemoveObjectCommand) Type() CommandType { return TypeRemoveObject }

// SetMaterialCommand sets one material property.
type SetMaterialCommand struct {
	material *scene.Material
	old      scene.MaterialValue
	new      scene.MaterialValue
}

func NewSetMaterialCommand(material *scene.Material, value scene.MaterialValue) *SetMaterialCommand {
	cmd := &SetMaterialCommand{material: material, new: value}
	if material != nil {
		cmd.old = material.Get(value.Property)
	}
	return cmd
}

func (c *SetMaterialCommand) Execute() error { return c.apply(c.new) }
func (c *SetMaterialCommand) Undo() error    { return c.apply(c.old) }
func (c *SetMaterialCommand) Type() CommandType {
	return TypeSetMaterial
}

func (c *SetMaterialCommand) apply(v scene.MaterialValue) error {
	if c.material == nil {
		return ErrTargetGone
	}
	return c.material.Set(v)
}

// SetVisibilityCommand toggles a node's visible flag.
type SetVisibilityCommand struct {
	target *scene.Node
	old    bool
	new    bool
}

func NewSetVisibilityCommand(target *scene.Node, visible bool) *SetVisibilityCommand {
	cmd := &SetVisibilityCommand{target: target, new: visible}
	if target != nil {
		cmd.old = target.Visible
	}
	return cmd
}

func (c *SetVisibilityCommand) Execute() error { return c.apply(c.new) }
func (c *SetVisibilityCommand) Undo() error    { return c.apply(c.old) }
func (c *SetVisibilityCommand) Type() CommandType {
	return TypeSetVisibility
}

func (c *SetVisibilityCommand) apply(v bool) error {
	if !alive(c.target) {
		return ErrTargetGone
	}
	c.target.Visible = v
	return nil
}
