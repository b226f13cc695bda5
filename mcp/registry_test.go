package mcp

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("p1", "default", "websocket"))
	assert.ErrorIs(t, r.Register("p1", "default", "websocket"), ErrPeerAlreadyRegistered)

	require.NoError(t, r.Touch("p1"))
	require.NoError(t, r.Touch("p1"))
	assert.ErrorIs(t, r.Touch("nope"), ErrPeerNotFound)

	peer, ok := r.Get("p1")
	require.True(t, ok)
	assert.Equal(t, 2, peer.Requests)
	assert.Equal(t, "default", peer.SessionID)
	assert.Equal(t, 1, r.Count())

	r.Unregister("p1")
	assert.Equal(t, 0, r.Count())
	_, ok = r.Get("p1")
	assert.False(t, ok)
}

func TestRegistryCleanup(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("old", "s", "websocket"))
	require.NoError(t, r.Register("new", "s", "websocket"))

	r.mu.Lock()
	r.peers["old"].LastSeen = time.Now().Add(-time.Hour)
	r.mu.Unlock()

	assert.Equal(t, []string{"old"}, r.Cleanup(time.Minute))
	ids := []string{}
	for _, p := range r.List() {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"new"}, ids)
}

type closeCounter struct{ closed int }

func (c *closeCounter) Close() error {
	c.closed++
	return nil
}

func TestRegistryCleanupClosesEvictedConns(t *testing.T) {
	r := NewRegistry()
	idle := &closeCounter{}
	active := &closeCounter{}
	require.NoError(t, r.RegisterConn("idle", "s", "websocket", idle))
	require.NoError(t, r.RegisterConn("active", "s", "websocket", active))

	r.mu.Lock()
	r.peers["idle"].LastSeen = time.Now().Add(-time.Hour)
	r.mu.Unlock()

	assert.Equal(t, []string{"idle"}, r.Cleanup(time.Minute))
	assert.Equal(t, 1, idle.closed)
	assert.Equal(t, 0, active.closed)
	assert.ErrorIs(t, r.Touch("idle"), ErrPeerNotFound)

	r.Unregister("active")
	assert.Empty(t, r.Cleanup(0))
	assert.Equal(t, 0, active.closed)
}

func TestHandlerFunc(t *testing.T) {
	var h Handler = HandlerFunc(func(_ context.Context, data []byte) Response {
		return NewSuccess("r1", string(data))
	})
	resp := h.ServeMCP(context.Background(), []byte("ping"))
	assert.Equal(t, "ping", resp.Result)
}
