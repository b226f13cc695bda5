package utility

import (
	"context"

	"github.com/slighter12/modelweb-mcp-go/history"
	"github.com/slighter12/modelweb-mcp-go/mcp"
	"github.com/slighter12/modelweb-mcp-go/session"
	"github.com/slighter12/modelweb-mcp-go/tools/types"
)

func requireHistory(sess *session.Session) (*history.History, error) {
	if sess == nil || sess.History() == nil {
		return nil, types.NoHistoryError()
	}
	return sess.History(), nil
}

type UndoTool struct{}

func (t *UndoTool) Name() string        { return mcp.OpUndo }
func (t *UndoTool) Description() string { return "Reverts the most recent command" }
func (t *UndoTool) InputSchema() mcp.InputSchema {
	return types.Schema("Undo", nil)
}
func (t *UndoTool) Execute(_ context.Context, sess *session.Session, _ types.Params) (any, error) {
	h, err := requireHistory(sess)
	if err != nil {
		return nil, err
	}
	if !h.CanUndo() {
		return nil, types.NewToolError(mcp.CodeCannotUndo, "Nothing to undo")
	}
	if err := h.Undo(); err != nil {
		return nil, err
	}
	return map[string]any{"message": "Undo operation successful"}, nil
}

type RedoTool struct{}

func (t *RedoTool) Name() string        { return mcp.OpRedo }
func (t *RedoTool) Description() string { return "Re-applies the most recently undone command" }
func (t *RedoTool) InputSchema() mcp.InputSchema {
	return types.Schema("Redo", nil)
}
func (t *RedoTool) Execute(_ context.Context, sess *session.Session, _ types.Params) (any, error) {
	h, err := requireHistory(sess)
	if err != nil {
		return nil, err
	}
	if !h.CanRedo() {
		return nil, types.NewToolError(mcp.CodeCannotRedo, "Nothing to redo")
	}
	if err := h.Redo(); err != nil {
		return nil, err
	}
	return map[string]any{"message": "Redo operation successful"}, nil
}

type GetHistoryTool struct{}

func (t *GetHistoryTool) Name() string        { return mcp.OpGetHistory }
func (t *GetHistoryTool) Description() string { return "Reports undo/redo availability and stack sizes" }
func (t *GetHistoryTool) InputSchema() mcp.InputSchema {
	return types.Schema("Get History", nil)
}
func (t *GetHistoryTool) Execute(_ context.Context, sess *session.Session, _ types.Params) (any, error) {
	h, err := requireHistory(sess)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"canUndo":       h.CanUndo(),
		"canRedo":       h.CanRedo(),
		"undoStackSize": h.UndoSize(),
		"redoStackSize": h.RedoSize(),
		"maxSize":       h.MaxSize(),
		"entries":       h.Entries(),
	}, nil
}

func GetAllTools() []types.Tool {
	return []types.Tool{
		&UndoTool{},
		&RedoTool{},
		&GetHistoryTool{},
	}
}
