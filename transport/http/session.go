package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/slighter12/modelweb-mcp-go/mcp"
	"github.com/slighter12/modelweb-mcp-go/session"
)

const (
	headerSessionID = "MCP-Session-Id"
	querySessionID  = "session"
)

// requestedSessionID reads the session from the header, then the query
// string. Browsers cannot set headers on websocket or EventSource requests.
func requestedSessionID(c echo.Context) string {
	if id := strings.TrimSpace(c.Request().Header.Get(headerSessionID)); id != "" {
		return id
	}
	return strings.TrimSpace(c.QueryParam(querySessionID))
}

// resolveSession returns the selected session, or the default one when the
// caller named none.
func (s *Server) resolveSession(c echo.Context) (*session.Session, bool) {
	id := requestedSessionID(c)
	if id == "" {
		id = session.DefaultID
	}
	sess, err := s.sessionManager.Get(id)
	if err != nil {
		return nil, false
	}
	return sess, true
}

func unknownSession(c echo.Context) error {
	return c.JSON(http.StatusNotFound, mcp.NewError(mcp.UnknownRequestID, mcp.CodeInvalidRequest, "Unknown MCP session"))
}

// dispatch sends data to the adapter for the default session and straight
// to the tool manager for any other.
func (s *Server) dispatch(ctx context.Context, sess *session.Session, data []byte) mcp.Response {
	if s.adapter != nil && sess.ID == session.DefaultID {
		return s.adapter.HandleMessage(ctx, data)
	}
	return s.toolManager.HandleMessage(ctx, sess, data)
}
