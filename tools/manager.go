package tools

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/slighter12/modelweb-mcp-go/logger"
	"github.com/slighter12/modelweb-mcp-go/mcp"
	"github.com/slighter12/modelweb-mcp-go/session"
	"github.com/slighter12/modelweb-mcp-go/tools/types"
)

var ErrToolNotFound = errors.New("tool not found")

func IsToolNotFound(err error) bool {
	return errors.Is(err, ErrToolNotFound)
}

// Manager maps operation names to tools and turns every call into exactly
// one response.
type Manager struct {
	tools map[string]types.Tool
	mutex sync.RWMutex
}

// NewManager creates a new tool manager
func NewManager() *Manager {
	return &Manager{
		tools: make(map[string]types.Tool),
	}
}

// NewDefaultManager returns a manager with every built-in operation.
func NewDefaultManager() *Manager {
	m := NewManager()
	m.RegisterDefaultTools()
	return m
}

// RegisterTool registers a new tool
func (m *Manager) RegisterTool(tool types.Tool) error {
	if tool == nil {
		return errors.New("tool cannot be nil")
	}
	name := tool.Name()
	if name == "" {
		return errors.New("tool name cannot be empty")
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.tools[name] = tool
	logger.Debug("Tool registered", "name", name)
	return nil
}

// GetTool retrieves a tool by name
func (m *Manager) GetTool(name string) (types.Tool, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	tool, exists := m.tools[name]
	return tool, exists
}

// ListTools returns all registered tools sorted by name.
func (m *Manager) ListTools() []types.Tool {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	tools := make([]types.Tool, 0, len(m.tools))
	for _, tool := range m.tools {
		tools = append(tools, tool)
	}
	sort.Slice(tools, func(i, j int) bool { return tools[i].Name() < tools[j].Name() })
	return tools
}

// RegisterDefaultTools registers all default tools
func (m *Manager) RegisterDefaultTools() {
	allTools := GetAllTools()
	for _, tool := range allTools {
		if err := m.RegisterTool(tool); err != nil {
			logger.Error("Failed to register tool", "name", tool.Name(), "error", err)
		}
	}
	logger.Debug("Default tools registered", "count", len(allTools))
}

// GetTools returns the wire descriptions of every registered tool.
func (m *Manager) GetTools() []mcp.Tool {
	tools := m.ListTools()
	mcpTools := make([]mcp.Tool, 0, len(tools))
	for _, tool := range tools {
		mcpTools = append(mcpTools, mcp.Tool{
			Name:        tool.Name(),
			Description: tool.Description(),
			InputSchema: tool.InputSchema(),
		})
	}
	return mcpTools
}

// Handle dispatches req against sess. It never returns an error: every
// failure, including a panicking tool, becomes an error response.
func (m *Manager) Handle(ctx context.Context, sess *session.Session, req mcp.Request) mcp.Response {
	requestID := mcp.NormalizeRequestID(req.RequestID)

	tool, exists := m.GetTool(req.Function)
	if !exists {
		logger.WarnContext(ctx, "Unknown function requested", "function", req.Function, "request_id", requestID)
		return mcp.NewError(requestID, mcp.CodeUnknownFunction, fmt.Sprintf("Function %q is not supported", req.Function))
	}

	result, err := m.execute(ctx, tool, sess, types.Params(req.Parameters))
	if err != nil {
		if toolErr, ok := types.AsToolError(err); ok {
			logger.DebugContext(ctx, "Function failed", "function", req.Function, "code", toolErr.Code, "error", toolErr.Message)
			return mcp.NewError(requestID, toolErr.Code, toolErr.Message)
		}
		logger.ErrorContext(ctx, "Function raised an unexpected error", "function", req.Function, "error", err)
		return mcp.NewError(requestID, mcp.CodeExecutionError, "Error executing function: "+err.Error())
	}
	logger.DebugContext(ctx, "Function executed", "function", req.Function, "request_id", requestID)
	return mcp.NewSuccess(requestID, result)
}

func (m *Manager) execute(ctx context.Context, tool types.Tool, sess *session.Session, params types.Params) (result any, err error) {
	if params == nil {
		params = types.Params{}
	}
	if sess != nil {
		sess.Lock()
		defer sess.Unlock()
	}
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("%v", r)
		}
	}()
	return tool.Execute(ctx, sess, params)
}

// HandleMessage decodes raw JSON and dispatches it.
func (m *Manager) HandleMessage(ctx context.Context, sess *session.Session, data []byte) mcp.Response {
	req, errResp := mcp.ParseRequest(data)
	if errResp != nil {
		logger.WarnContext(ctx, "Rejected malformed request", "error", errResp.Error.Message)
		return *errResp
	}
	return m.Handle(ctx, sess, req)
}

// Handler binds sess to the manager so a transport can dispatch raw
// messages without knowing about sessions.
func (m *Manager) Handler(sess *session.Session) mcp.Handler {
	return mcp.HandlerFunc(func(ctx context.Context, data []byte) mcp.Response {
		return m.HandleMessage(ctx, sess, data)
	})
}
