package mcp

import (
	"errors"
	"io"
	"sort"
	"sync"
	"time"
)

var (
	ErrPeerAlreadyRegistered = errors.New("peer already registered")
	ErrPeerNotFound          = errors.New("peer not found")
)

// PeerInfo describes a connected remote controller.
type PeerInfo struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"sessionId"`
	Channel     string    `json:"channel"`
	ConnectedAt time.Time `json:"connectedAt"`
	LastSeen    time.Time `json:"lastSeen"`
	Requests    int       `json:"requests"`
}

// Registry tracks peers attached over long-lived channels.
type Registry struct {
	peers   map[string]*PeerInfo
	closers map[string]io.Closer
	mu      sync.RWMutex
}

// NewRegistry creates a new registry
func NewRegistry() *Registry {
	return &Registry{
		peers:   make(map[string]*PeerInfo),
		closers: make(map[string]io.Closer),
	}
}

// Register records a new peer bound to sessionID.
func (r *Registry) Register(id, sessionID, channel string) error {
	return r.RegisterConn(id, sessionID, channel, nil)
}

// RegisterConn records a peer whose connection is closed if Cleanup evicts it.
func (r *Registry) RegisterConn(id, sessionID, channel string, conn io.Closer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.peers[id]; exists {
		return ErrPeerAlreadyRegistered
	}

	now := time.Now()
	r.peers[id] = &PeerInfo{
		ID:          id,
		SessionID:   sessionID,
		Channel:     channel,
		ConnectedAt: now,
		LastSeen:    now,
	}
	if conn != nil {
		r.closers[id] = conn
	}
	return nil
}

// Touch counts one request from the peer.
func (r *Registry) Touch(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	peer, exists := r.peers[id]
	if !exists {
		return ErrPeerNotFound
	}
	peer.LastSeen = time.Now()
	peer.Requests++
	return nil
}

// Unregister removes a peer.
func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.peers, id)
	delete(r.closers, id)
}

// Get returns a copy of the peer's info.
func (r *Registry) Get(id string) (PeerInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	peer, exists := r.peers[id]
	if !exists {
		return PeerInfo{}, false
	}
	return *peer, true
}

// List returns all peers ordered by connection time.
func (r *Registry) List() []PeerInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]PeerInfo, 0, len(r.peers))
	for _, peer := range r.peers {
		out = append(out, *peer)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ConnectedAt.Equal(out[j].ConnectedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].ConnectedAt.Before(out[j].ConnectedAt)
	})
	return out
}

// Count returns the number of attached peers.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.peers)
}

// Cleanup drops peers idle for longer than timeout, closes their
// connections and returns their IDs.
func (r *Registry) Cleanup(timeout time.Duration) []string {
	r.mu.Lock()
	var removed []string
	var conns []io.Closer
	now := time.Now()
	for id, peer := range r.peers {
		if now.Sub(peer.LastSeen) > timeout {
			delete(r.peers, id)
			if conn, ok := r.closers[id]; ok {
				conns = append(conns, conn)
				delete(r.closers, id)
			}
			removed = append(removed, id)
		}
	}
	r.mu.Unlock()

	for _, conn := range conns {
		_ = conn.Close()
	}
	sort.Strings(removed)
	return removed
}
