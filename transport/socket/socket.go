// Package socket carries dispatch traffic over a persistent websocket.
package socket

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/slighter12/modelweb-mcp-go/logger"
	"github.com/slighter12/modelweb-mcp-go/mcp"
)

const Mode = "socket"

var ErrNotConnected = errors.New("socket: not connected")

// Options configure the dialer.
type Options struct {
	URL              string
	HandshakeTimeout time.Duration
}

// Adapter dials URL, answers every inbound message with the handler's
// response on the same connection, and tracks whether it is connected.
type Adapter struct {
	url     string
	dialer  *websocket.Dialer
	handler mcp.Handler

	mu      sync.Mutex
	conn    *websocket.Conn
	cancel  context.CancelFunc
	done    chan struct{}
	writeMu sync.Mutex
	running atomic.Bool
}

// New returns an unstarted adapter.
func New(opts Options, handler mcp.Handler) *Adapter {
	timeout := opts.HandshakeTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Adapter{
		url:     opts.URL,
		handler: handler,
		dialer: &websocket.Dialer{
			Proxy:            websocket.DefaultDialer.Proxy,
			HandshakeTimeout: timeout,
		},
	}
}

func (a *Adapter) Mode() string { return Mode }

func (a *Adapter) Running() bool { return a.running.Load() }

// URL returns the endpoint the adapter dials.
func (a *Adapter) URL() string { return a.url }

// Start connects and begins serving. Calling it while running is a no-op.
func (a *Adapter) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.running.Load() {
		logger.Warn("Socket transport is already running", "url", a.url)
		return nil
	}
	if a.conn != nil {
		// The peer hung up earlier; release the stale connection.
		a.cancel()
		_ = a.conn.Close()
		<-a.done
		a.conn = nil
	}

	conn, _, err := a.dialer.DialContext(ctx, a.url, nil)
	if err != nil {
		logger.Error("Failed to connect socket transport", "url", a.url, "error", err)
		return err
	}

	serveCtx, cancel := context.WithCancel(context.Background())
	a.conn = conn
	a.cancel = cancel
	a.done = make(chan struct{})
	a.running.Store(true)
	logger.Info("Socket transport connected", "url", a.url)

	go a.readLoop(serveCtx, conn, a.done)
	return nil
}

func (a *Adapter) readLoop(ctx context.Context, conn *websocket.Conn, done chan struct{}) {
	defer close(done)
	defer a.running.Store(false)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) || ctx.Err() != nil {
				logger.Info("Socket transport disconnected", "url", a.url)
			} else {
				logger.Warn("Socket transport read failed", "url", a.url, "error", err)
			}
			return
		}

		resp := a.HandleMessage(ctx, data)
		if err := a.write(conn, resp.Marshal()); err != nil {
			logger.Error("Failed to send socket response", "request_id", resp.RequestID, "error", err)
		}
	}
}

// HandleMessage dispatches one raw request locally.
func (a *Adapter) HandleMessage(ctx context.Context, data []byte) mcp.Response {
	return a.handler.ServeMCP(ctx, data)
}

// Send writes an unsolicited message on the open connection.
func (a *Adapter) Send(data []byte) error {
	a.mu.Lock()
	conn := a.conn
	a.mu.Unlock()
	if conn == nil || !a.running.Load() {
		return ErrNotConnected
	}
	return a.write(conn, data)
}

func (a *Adapter) write(conn *websocket.Conn, data []byte) error {
	a.writeMu.Lock()
	defer a.writeMu.Unlock()
	return conn.WriteMessage(websocket.TextMessage, data)
}

// Stop closes the connection and clears the running flag.
func (a *Adapter) Stop() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.conn == nil {
		logger.Warn("Socket transport is not running", "url", a.url)
		return nil
	}

	a.cancel()
	a.writeMu.Lock()
	_ = a.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	a.writeMu.Unlock()
	err := a.conn.Close()
	<-a.done

	a.conn = nil
	a.cancel = nil
	a.done = nil
	a.running.Store(false)
	logger.Info("Socket transport stopped", "url", a.url)
	return err
}
