package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/slighter12/modelweb-mcp-go/config"
	"github.com/slighter12/modelweb-mcp-go/logger"
	"github.com/slighter12/modelweb-mcp-go/mcp"
	"github.com/slighter12/modelweb-mcp-go/session"
	"github.com/slighter12/modelweb-mcp-go/tools"
	"github.com/slighter12/modelweb-mcp-go/transport"
)

const (
	sessionIdleTimeout = 30 * time.Minute
	cleanupInterval    = 5 * time.Minute
)

// Server exposes the dispatcher over HTTP, websocket and SSE.
type Server struct {
	config         *config.Config
	toolManager    *tools.Manager
	sessionManager *session.Manager
	registry       *mcp.Registry
	adapter        transport.Adapter
	upgrader       websocket.Upgrader
	echo           *echo.Echo
}

// NewServer wires routes. adapter may be nil; when set, requests for the
// default session go through it so hosted insights apply.
func NewServer(cfg *config.Config, toolManager *tools.Manager, sessions *session.Manager, adapter transport.Adapter) *Server {
	s := &Server{
		config:         cfg,
		toolManager:    toolManager,
		sessionManager: sessions,
		registry:       mcp.NewRegistry(),
		adapter:        adapter,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		echo: echo.New(),
	}
	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.setupEcho()
	return s
}

func (s *Server) setupEcho() {
	s.echo.Use(middleware.Logger())
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, headerSessionID},
	}))
	RegisterRoutes(s.echo, s)
}

// Handler returns the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens on the configured address until ctx ends.
func (s *Server) Start(ctx context.Context) error {
	go s.cleanupLoop(ctx)

	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	logger.Info("HTTP server starting to listen", "address", addr)

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.echo.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Info("HTTP server shutting down")
		return s.echo.Shutdown(shutdownCtx)
	}
}

func (s *Server) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := s.sessionManager.Cleanup(sessionIdleTimeout, now); n > 0 {
				logger.Info("Expired idle sessions", "count", n)
			}
			if ids := s.registry.Cleanup(sessionIdleTimeout); len(ids) > 0 {
				logger.Info("Dropped idle peers", "peers", ids)
			}
		}
	}
}

func (s *Server) GetRegistry() *mcp.Registry {
	return s.registry
}
func (s *Server) GetToolManager() *tools.Manager {
	return s.toolManager
}
func (s *Server) GetSessionManager() *session.Manager {
	return s.sessionManager
}
func (s *Server) GetConfig() *config.Config {
	return s.config
}
