package http

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/slighter12/modelweb-mcp-go/logger"
	"github.com/slighter12/modelweb-mcp-go/mcp"
	"github.com/slighter12/modelweb-mcp-go/scene"
	"github.com/slighter12/modelweb-mcp-go/session"
)

const maxRequestBodyBytes = 1 << 20

func RegisterRoutes(e *echo.Echo, s *Server) {
	e.GET("/", s.handleHTTPInfo)
	e.GET("/tools", s.handleListTools)
	e.POST("/mcp", s.handleDispatch)
	e.GET("/mcp/ws", s.handleWebsocket)
	e.GET("/mcp/events", s.handleEvents)
	e.GET("/sessions", s.handleListSessions)
	e.POST("/sessions", s.handleCreateSession)
	e.DELETE("/sessions/:id", s.handleDeleteSession)
	e.GET("/transport", s.handleTransportStatus)
	e.POST("/transport/start", s.handleTransportStart)
	e.POST("/transport/stop", s.handleTransportStop)
}

func (s *Server) handleHTTPInfo(c echo.Context) error {
	logger.Debug("HTTP info requested", "remote_addr", c.RealIP())
	return c.JSON(http.StatusOK, map[string]any{
		"name":    s.config.Name,
		"version": s.config.Version,
		"endpoints": map[string]string{
			"dispatch":  "/mcp",
			"websocket": "/mcp/ws",
			"events":    "/mcp/events",
			"tools":     "/tools",
			"sessions":  "/sessions",
			"transport": "/transport",
		},
		"sessions": len(s.sessionManager.IDs()),
		"peers":    s.registry.Count(),
	})
}

func (s *Server) handleListTools(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"tools": s.toolManager.GetTools()})
}

func (s *Server) handleDispatch(c echo.Context) error {
	limitedBody := http.MaxBytesReader(c.Response(), c.Request().Body, maxRequestBodyBytes)
	defer limitedBody.Close()

	body, err := io.ReadAll(limitedBody)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			logger.Warn("Request body too large", "limit_bytes", maxRequestBodyBytes, "remote_addr", c.RealIP())
			return c.JSON(http.StatusRequestEntityTooLarge, mcp.NewError(mcp.UnknownRequestID, mcp.CodeInvalidRequest, "Request body too large"))
		}
		logger.Error("Failed to read request body", "error", err)
		return c.JSON(http.StatusBadRequest, mcp.NewError(mcp.UnknownRequestID, mcp.CodeInvalidRequest, "Error processing request: "+err.Error()))
	}

	sess, ok := s.resolveSession(c)
	if !ok {
		return unknownSession(c)
	}

	resp := s.dispatch(c.Request().Context(), sess, body)
	c.Response().Header().Set(headerSessionID, sess.ID)
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleWebsocket(c echo.Context) error {
	sess, ok := s.resolveSession(c)
	if !ok {
		return unknownSession(c)
	}

	conn, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logger.Warn("Websocket upgrade failed", "remote_addr", c.RealIP(), "error", err)
		return nil
	}
	defer conn.Close()

	detach := sess.Attach()
	defer detach()

	peerID := uuid.NewString()
	if err := s.registry.RegisterConn(peerID, sess.ID, "websocket", conn); err != nil {
		logger.Error("Failed to register peer", "error", err)
		return nil
	}
	defer s.registry.Unregister(peerID)
	logger.Info("Websocket peer connected", "peer", peerID, "session", sess.ID)

	ctx := c.Request().Context()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debug("Websocket peer read ended", "peer", peerID, "error", err)
			}
			logger.Info("Websocket peer disconnected", "peer", peerID)
			return nil
		}
		if err := s.registry.Touch(peerID); err != nil {
			logger.Warn("Websocket peer no longer registered", "peer", peerID, "error", err)
			return nil
		}
		sess.Touch(time.Now())

		resp := s.dispatch(ctx, sess, data)
		if err := conn.WriteMessage(websocket.TextMessage, resp.Marshal()); err != nil {
			logger.Warn("Failed to write websocket response", "peer", peerID, "error", err)
			return nil
		}
	}
}

func (s *Server) handleEvents(c echo.Context) error {
	sess, ok := s.resolveSession(c)
	if !ok {
		return unknownSession(c)
	}

	flusher, ok := c.Response().Writer.(http.Flusher)
	if !ok {
		return c.JSON(http.StatusMethodNotAllowed, mcp.NewError(mcp.UnknownRequestID, mcp.CodeInvalidRequest, "SSE stream is not available"))
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/event-stream")
	c.Response().Header().Set("Cache-Control", "no-cache")
	c.Response().Header().Set("Connection", "keep-alive")
	c.Response().Header().Set(headerSessionID, sess.ID)
	c.Response().WriteHeader(http.StatusOK)

	stream := NewEventStream(c.Response().Writer, flusher)
	defer stream.Close()

	events, unsubscribe := sess.Subscribe()
	defer unsubscribe()

	if err := stream.SendComment("stream opened"); err != nil {
		logger.Warn("Failed to write initial SSE comment", "session", sess.ID, "error", err)
		return nil
	}

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, open := <-events:
			if !open {
				return nil
			}
			if err := stream.Send("history", ev); err != nil {
				logger.Debug("SSE client went away", "session", sess.ID, "error", err)
				return nil
			}
		}
	}
}

func (s *Server) handleListSessions(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"sessions": s.sessionManager.IDs()})
}

func (s *Server) handleCreateSession(c echo.Context) error {
	sess := s.sessionManager.Create(scene.New(""))
	c.Response().Header().Set(headerSessionID, sess.ID)
	return c.JSON(http.StatusCreated, map[string]any{"sessionId": sess.ID})
}

func (s *Server) handleDeleteSession(c echo.Context) error {
	id := c.Param("id")
	if id == session.DefaultID {
		return c.JSON(http.StatusConflict, mcp.NewError(mcp.UnknownRequestID, mcp.CodeInvalidRequest, "The default session cannot be removed"))
	}
	if !s.sessionManager.Remove(id) {
		return unknownSession(c)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) transportStatus() map[string]any {
	if s.adapter == nil {
		return map[string]any{"mode": "none", "running": false}
	}
	return map[string]any{"mode": s.adapter.Mode(), "running": s.adapter.Running()}
}

func (s *Server) handleTransportStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, s.transportStatus())
}

func (s *Server) handleTransportStart(c echo.Context) error {
	if s.adapter == nil {
		return c.JSON(http.StatusConflict, s.transportStatus())
	}
	if err := s.adapter.Start(c.Request().Context()); err != nil {
		return c.JSON(http.StatusBadGateway, map[string]any{
			"mode":    s.adapter.Mode(),
			"running": s.adapter.Running(),
			"error":   err.Error(),
		})
	}
	return c.JSON(http.StatusOK, s.transportStatus())
}

func (s *Server) handleTransportStop(c echo.Context) error {
	if s.adapter == nil {
		return c.JSON(http.StatusConflict, s.transportStatus())
	}
	if err := s.adapter.Stop(); err != nil {
		logger.Warn("Transport stop reported an error", "error", err)
	}
	return c.JSON(http.StatusOK, s.transportStatus())
}
