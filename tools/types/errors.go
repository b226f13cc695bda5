package types

import (
	"errors"
	"fmt"

	"github.com/slighter12/modelweb-mcp-go/mcp"
)

// ToolError is a failure that maps onto a response error code.
type ToolError struct {
	Code    mcp.ErrorCode
	Message string
	Err     error
}

func (e *ToolError) Error() string {
	if e == nil {
		return "tool error"
	}
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("tool error: %s", e.Code)
}

func (e *ToolError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func NewToolError(code mcp.ErrorCode, message string) *ToolError {
	return &ToolError{Code: code, Message: message}
}

// WrapToolError keeps cause reachable through errors.Is.
func WrapToolError(code mcp.ErrorCode, message string, cause error) *ToolError {
	return &ToolError{Code: code, Message: message, Err: cause}
}

func AsToolError(err error) (*ToolError, bool) {
	if err == nil {
		return nil, false
	}
	var toolErr *ToolError
	if errors.As(err, &toolErr) {
		return toolErr, true
	}
	return nil, false
}

func NoSceneError() *ToolError {
	return NewToolError(mcp.CodeNoScene, "No active scene found")
}

func NoHistoryError() *ToolError {
	return NewToolError(mcp.CodeNoHistory, "Command history not available")
}

func ObjectNotFoundError(name string) *ToolError {
	return NewToolError(mcp.CodeObjectNotFound, fmt.Sprintf("Object %q not found", name))
}

func MissingParamError(name string) *ToolError {
	return NewToolError(mcp.CodeInvalidParams, "Missing required parameter: "+name)
}

func InvalidParamError(name string, cause error) *ToolError {
	return WrapToolError(mcp.CodeInvalidParams, fmt.Sprintf("Invalid parameter %s: %v", name, cause), cause)
}
