package types

import (
	"context"

	"github.com/slighter12/modelweb-mcp-go/history"
	"github.com/slighter12/modelweb-mcp-go/mcp"
	"github.com/slighter12/modelweb-mcp-go/scene"
	"github.com/slighter12/modelweb-mcp-go/session"
)

// Tool is one named dispatcher operation. Execute runs with the session
// lock held; sess may be nil when no session is mounted.
type Tool interface {
	Name() string
	Description() string
	InputSchema() mcp.InputSchema
	Execute(ctx context.Context, sess *session.Session, params Params) (any, error)
}

// ToolRegistry is the lookup surface transports depend on.
type ToolRegistry interface {
	RegisterTool(tool Tool) error
	GetTool(name string) (Tool, bool)
	ListTools() []Tool
}

// RequireScene returns the session's scene or a NO_SCENE error.
func RequireScene(sess *session.Session) (*scene.Scene, error) {
	if sess == nil || sess.Scene() == nil {
		return nil, NoSceneError()
	}
	return sess.Scene(), nil
}

// FindObject resolves name by depth-first search.
func FindObject(sc *scene.Scene, name string) (*scene.Node, error) {
	node := sc.FindByName(name)
	if node == nil {
		return nil, ObjectNotFoundError(name)
	}
	return node, nil
}

// Schema is a shorthand for building input schemas.
func Schema(title string, properties map[string]any, required ...string) mcp.InputSchema {
	if properties == nil {
		properties = map[string]any{}
	}
	if required == nil {
		required = []string{}
	}
	return mcp.InputSchema{Type: "object", Properties: properties, Required: required, Title: title}
}

// Vector3Property is the schema fragment for a [x,y,z] parameter.
func Vector3Property(description string) map[string]any {
	return map[string]any{
		"type":        "array",
		"items":       map[string]any{"type": "number"},
		"minItems":    3,
		"maxItems":    3,
		"description": description,
	}
}

func StringProperty(description string) map[string]any {
	return map[string]any{"type": "string", "description": description}
}

// Apply runs cmd through the session history, or directly when the session
// has no history attached.
func Apply(sess *session.Session, cmd history.Command) error {
	if h := sess.History(); h != nil {
		return h.Execute(cmd)
	}
	return cmd.Execute()
}
