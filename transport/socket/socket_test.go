package socket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slighter12/modelweb-mcp-go/mcp"
)

// peer is the remote end the adapter dials into.
type peer struct {
	server *httptest.Server
	conns  chan *websocket.Conn
}

func newPeer(t *testing.T) *peer {
	t.Helper()
	p := &peer{conns: make(chan *websocket.Conn, 1)}
	upgrader := websocket.Upgrader{}
	p.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		p.conns <- conn
	}))
	t.Cleanup(p.server.Close)
	return p
}

func (p *peer) url() string {
	return "ws" + strings.TrimPrefix(p.server.URL, "http")
}

func (p *peer) accept(t *testing.T) *websocket.Conn {
	t.Helper()
	select {
	case conn := <-p.conns:
		t.Cleanup(func() { _ = conn.Close() })
		return conn
	case <-time.After(2 * time.Second):
		t.Fatal("peer never saw a connection")
		return nil
	}
}

func echoHandler() mcp.Handler {
	return mcp.HandlerFunc(func(_ context.Context, data []byte) mcp.Response {
		req, errResp := mcp.ParseRequest(data)
		if errResp != nil {
			return *errResp
		}
		return mcp.NewSuccess(req.RequestID, map[string]any{"function": req.Function})
	})
}

func TestAdapter_RoundTrip(t *testing.T) {
	p := newPeer(t)
	a := New(Options{URL: p.url(), HandshakeTimeout: time.Second}, echoHandler())

	require.NoError(t, a.Start(context.Background()))
	defer a.Stop()
	assert.True(t, a.Running())
	assert.Equal(t, Mode, a.Mode())

	remote := p.accept(t)
	require.NoError(t, remote.WriteMessage(websocket.TextMessage,
		[]byte(`{"function":"mcp_modelweb_get_scene_info","parameters":{},"requestId":"r1"}`)))

	require.NoError(t, remote.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := remote.ReadMessage()
	require.NoError(t, err)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(data, &resp))
	assert.Equal(t, "r1", resp["requestId"])
	assert.Equal(t, "success", resp["status"])
}

func TestAdapter_MalformedMessage(t *testing.T) {
	p := newPeer(t)
	a := New(Options{URL: p.url()}, echoHandler())
	require.NoError(t, a.Start(context.Background()))
	defer a.Stop()

	remote := p.accept(t)
	require.NoError(t, remote.WriteMessage(websocket.TextMessage, []byte(`{not json`)))
	require.NoError(t, remote.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := remote.ReadMessage()
	require.NoError(t, err)

	var resp mcp.Response
	require.NoError(t, json.Unmarshal(data, &resp))
	assert.Equal(t, mcp.StatusError, resp.Status)
	assert.Equal(t, mcp.CodeInvalidRequest, resp.Error.Code)
	assert.Equal(t, mcp.UnknownRequestID, resp.RequestID)
}

func TestAdapter_StartIsIdempotent(t *testing.T) {
	p := newPeer(t)
	a := New(Options{URL: p.url()}, echoHandler())

	require.NoError(t, a.Start(context.Background()))
	p.accept(t)
	require.NoError(t, a.Start(context.Background()))
	assert.True(t, a.Running())

	select {
	case <-p.conns:
		t.Fatal("second Start dialed again")
	case <-time.After(100 * time.Millisecond):
	}
	require.NoError(t, a.Stop())
}

func TestAdapter_Stop(t *testing.T) {
	p := newPeer(t)
	a := New(Options{URL: p.url()}, echoHandler())

	// Stopping before starting only warns.
	require.NoError(t, a.Stop())

	require.NoError(t, a.Start(context.Background()))
	p.accept(t)
	require.NoError(t, a.Stop())
	assert.False(t, a.Running())
	assert.ErrorIs(t, a.Send([]byte("x")), ErrNotConnected)
}

func TestAdapter_PeerDisconnectClearsRunning(t *testing.T) {
	p := newPeer(t)
	a := New(Options{URL: p.url()}, echoHandler())
	require.NoError(t, a.Start(context.Background()))

	remote := p.accept(t)
	require.NoError(t, remote.Close())

	assert.Eventually(t, func() bool { return !a.Running() }, 2*time.Second, 10*time.Millisecond)

	// A later Start reconnects.
	require.NoError(t, a.Start(context.Background()))
	p.accept(t)
	assert.True(t, a.Running())
	require.NoError(t, a.Stop())
}

func TestAdapter_DialFailure(t *testing.T) {
	a := New(Options{URL: "ws://127.0.0.1:1/unreachable", HandshakeTimeout: 200 * time.Millisecond}, echoHandler())
	require.Error(t, a.Start(context.Background()))
	assert.False(t, a.Running())
}
