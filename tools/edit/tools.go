// Package edit exposes interactive transform edits: a burst of live updates
// that lands in history as a single command.
package edit

import (
	"context"
	"errors"

	"github.com/slighter12/modelweb-mcp-go/history"
	"github.com/slighter12/modelweb-mcp-go/mcp"
	"github.com/slighter12/modelweb-mcp-go/session"
	"github.com/slighter12/modelweb-mcp-go/tools/types"
)

func modificationFailed(err error) error {
	return types.WrapToolError(mcp.CodeModificationFailed, "Failed to modify object: "+err.Error(), err)
}

type BeginEditTool struct{}

func (t *BeginEditTool) Name() string        { return mcp.OpBeginEdit }
func (t *BeginEditTool) Description() string { return "Starts an interactive transform edit" }
func (t *BeginEditTool) InputSchema() mcp.InputSchema {
	return types.Schema("Begin Edit", map[string]any{
		"objectName": types.StringProperty("Exact name of the target object"),
		"field": map[string]any{
			"type":        "string",
			"enum":        []string{"position", "rotation", "scale"},
			"description": "Transform field being dragged",
		},
	}, "objectName", "field")
}
func (t *BeginEditTool) Execute(_ context.Context, sess *session.Session, params types.Params) (any, error) {
	name, err := params.RequiredString("objectName")
	if err != nil {
		return nil, err
	}
	rawField, err := params.RequiredString("field")
	if err != nil {
		return nil, err
	}
	field, ok := history.ParseTransformField(rawField)
	if !ok {
		return nil, types.InvalidParamError("field", errors.New("expected position, rotation or scale"))
	}
	sc, err := types.RequireScene(sess)
	if err != nil {
		return nil, err
	}
	n, err := types.FindObject(sc, name)
	if err != nil {
		return nil, err
	}

	editor := sess.Editor()
	if err := editor.Begin(n, field); err != nil {
		return nil, modificationFailed(err)
	}
	return map[string]any{
		"message":        "Edit started",
		"objectName":     name,
		"field":          field,
		"debounceMillis": editor.Interval().Milliseconds(),
	}, nil
}

type UpdateEditTool struct{}

func (t *UpdateEditTool) Name() string { return mcp.OpUpdateEdit }
func (t *UpdateEditTool) Description() string {
	return "Applies a live value to the edit in progress without recording history"
}
func (t *UpdateEditTool) InputSchema() mcp.InputSchema {
	return types.Schema("Update Edit", map[string]any{
		"value": types.Vector3Property("Live value for the edited field"),
	}, "value")
}
func (t *UpdateEditTool) Execute(_ context.Context, sess *session.Session, params types.Params) (any, error) {
	if err := params.Require("value"); err != nil {
		return nil, err
	}
	value, _, err := params.Vec3("value")
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, types.NoSceneError()
	}
	if err := sess.Editor().Update(value); err != nil {
		return nil, modificationFailed(err)
	}
	return map[string]any{"value": [3]float64(value)}, nil
}

type CommitEditTool struct{}

func (t *CommitEditTool) Name() string        { return mcp.OpCommitEdit }
func (t *CommitEditTool) Description() string { return "Finishes the edit in progress as one command" }
func (t *CommitEditTool) InputSchema() mcp.InputSchema {
	return types.Schema("Commit Edit", nil)
}
func (t *CommitEditTool) Execute(_ context.Context, sess *session.Session, _ types.Params) (any, error) {
	if sess == nil {
		return nil, types.NoSceneError()
	}
	recorded, err := sess.Editor().Commit()
	if err != nil {
		return nil, modificationFailed(err)
	}
	message := "Edit committed"
	if !recorded {
		message = "Edit finished without changes"
	}
	return map[string]any{"message": message, "recorded": recorded}, nil
}

type CancelEditTool struct{}

func (t *CancelEditTool) Name() string { return mcp.OpCancelEdit }
func (t *CancelEditTool) Description() string {
	return "Abandons the edit in progress and restores the starting value"
}
func (t *CancelEditTool) InputSchema() mcp.InputSchema {
	return types.Schema("Cancel Edit", nil)
}
func (t *CancelEditTool) Execute(_ context.Context, sess *session.Session, _ types.Params) (any, error) {
	if sess == nil {
		return nil, types.NoSceneError()
	}
	if _, active := sess.Editor().Active(); !active {
		return nil, modificationFailed(history.ErrNoActiveEdit)
	}
	sess.Editor().Cancel()
	return map[string]any{"message": "Edit cancelled"}, nil
}

func GetAllTools() []types.Tool {
	return []types.Tool{
		&BeginEditTool{},
		&UpdateEditTool{},
		&CommitEditTool{},
		&CancelEditTool{},
	}
}
