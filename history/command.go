package history

import (
	"errors"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/slighter12/modelweb-mcp-go/scene"
)

// ErrTargetGone is returned when a command's target is nil or was disposed
// by the engine.
var ErrTargetGone = errors.New("command target is no longer available")

// CommandType tags a command for diagnostics and history listings.
type CommandType string

const (
	TypeMove          CommandType = "MOVE"
	TypeRotate        CommandType = "ROTATE"
	TypeScale         CommandType = "SCALE"
	TypeAddObject     CommandType = "ADD_OBJECT"
	TypeRemoveObject  CommandType = "REMOVE_OBJECT"
	TypeSetMaterial   CommandType = "SET_MATERIAL"
	TypeSetVisibility CommandType = "SET_VISIBILITY"
)

// Command is a reversible mutation. The old value is captured when the
// command is constructed and never changes afterwards.
type Command interface {
	Execute() error
	Undo() error
	Type() CommandType
}

func alive(n *scene.Node) bool {
	return n != nil && !n.Disposed()
}

// TransformField selects which transform vector a command edits.
type TransformField string

const (
	FieldPosition TransformField = "position"
	FieldRotation TransformField = "rotation"
	FieldScale    TransformField = "scale"
)

// ParseTransformField validates a field name.
func ParseTransformField(s string) (TransformField, bool) {
	switch f := TransformField(s); f {
	case FieldPosition, FieldRotation, FieldScale:
		return f, true
	}
	return "", false
}

// Get reads the field from n.
func (f TransformField) Get(n *scene.Node) mgl64.Vec3 {
	switch f {
	case FieldRotation:
		return n.Rotation
	case FieldScale:
		return n.Scale
	default:
		return n.Position
	}
}

// Set writes v into the field of n.
func (f TransformField) Set(n *scene.Node, v mgl64.Vec3) {
	switch f {
	case FieldRotation:
		n.Rotation = v
	case FieldScale:
		n.Scale = v
	default:
		n.Position = v
	}
}

func (f TransformField) commandType() CommandType {
	switch f {
	case FieldRotation:
		return TypeRotate
	case FieldScale:
		return TypeScale
	default:
		return TypeMove
	}
}
