package mcp

import "context"

// Handler turns one raw request message into exactly one response.
type Handler interface {
	ServeMCP(ctx context.Context, data []byte) Response
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, data []byte) Response

func (f HandlerFunc) ServeMCP(ctx context.Context, data []byte) Response {
	return f(ctx, data)
}
