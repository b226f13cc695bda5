package mcp

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Request is one dispatch call.
type Request struct {
	Function   string         `json:"function"`
	Parameters map[string]any `json:"parameters"`
	RequestID  string         `json:"requestId"`
}

// ErrorBody is the error half of a response.
type ErrorBody struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// Response answers exactly one Request and echoes its RequestID.
type Response struct {
	RequestID  string     `json:"requestId"`
	Status     Status     `json:"status"`
	Result     any        `json:"result,omitempty"`
	Error      *ErrorBody `json:"error,omitempty"`
	AIInsights string     `json:"aiInsights,omitempty"`
}

// Tool describes a registered operation.
type Tool struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	InputSchema InputSchema `json:"inputSchema"`
}

// InputSchema represents the JSON schema for tool input
type InputSchema struct {
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties"`
	Required   []string       `json:"required"`
	Title      string         `json:"title"`
}

// NormalizeRequestID substitutes UnknownRequestID for an empty ID.
func NormalizeRequestID(id string) string {
	if strings.TrimSpace(id) == "" {
		return UnknownRequestID
	}
	return id
}

// NewSuccess builds a success response.
func NewSuccess(requestID string, result any) Response {
	return Response{RequestID: NormalizeRequestID(requestID), Status: StatusSuccess, Result: result}
}

// NewError builds an error response.
func NewError(requestID string, code ErrorCode, message string) Response {
	return Response{
		RequestID: NormalizeRequestID(requestID),
		Status:    StatusError,
		Error:     &ErrorBody{Code: code, Message: message},
	}
}

// ParseRequest decodes a raw message. When decoding fails the second return
// is a ready INVALID_REQUEST response carrying whatever requestId could be
// recovered from the payload.
func ParseRequest(data []byte) (Request, *Response) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		resp := NewError(salvageRequestID(data), CodeInvalidRequest, fmt.Sprintf("Error processing request: %v", err))
		return Request{}, &resp
	}
	if req.Parameters == nil {
		req.Parameters = map[string]any{}
	}
	return req, nil
}

func salvageRequestID(data []byte) string {
	var fields map[string]json.RawMessage
	if json.Unmarshal(data, &fields) != nil {
		return UnknownRequestID
	}
	var id string
	if json.Unmarshal(fields["requestId"], &id) != nil {
		return UnknownRequestID
	}
	return NormalizeRequestID(id)
}

// Marshal encodes a response; Response always encodes.
func (r Response) Marshal() []byte {
	data, err := json.Marshal(r)
	if err != nil {
		fallback, _ := json.Marshal(NewError(r.RequestID, CodeExecutionError, err.Error()))
		return fallback
	}
	return data
}
