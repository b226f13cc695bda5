package session

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/slighter12/modelweb-mcp-go/history"
	"github.com/slighter12/modelweb-mcp-go/logger"
	"github.com/slighter12/modelweb-mcp-go/scene"
)

// Options configure a new editing session.
type Options struct {
	// HistorySize caps the undo stack; <= 0 selects history.DefaultMaxSize.
	HistorySize int
	// DisableHistory makes mutating operations bypass undo/redo.
	DisableHistory bool
	// EditDebounce is the idle interval before an interactive edit commits.
	EditDebounce time.Duration
}

// Session holds one scene together with its command history. All access is
// serialized through Lock/Unlock so requests apply in arrival order.
type Session struct {
	ID      string
	Created time.Time

	mu       sync.Mutex
	scene    *scene.Scene
	history  *history.History
	editor   *history.Editor
	lastSeen time.Time
	attached atomic.Int32

	subMu       sync.Mutex
	subscribers map[int]chan HistoryEvent
	nextSub     int
}

// HistoryEvent reports the undo/redo state after a change.
type HistoryEvent struct {
	Session  string `json:"session"`
	CanUndo  bool   `json:"canUndo"`
	CanRedo  bool   `json:"canRedo"`
	UndoSize int    `json:"undoStackSize"`
	RedoSize int    `json:"redoStackSize"`
}

// New creates a session over sc. sc may be nil until a scene is mounted.
func New(id string, sc *scene.Scene, opts Options) *Session {
	now := time.Now()
	s := &Session{ID: id, Created: now, lastSeen: now, scene: sc}
	if !opts.DisableHistory {
		s.history = history.New(opts.HistorySize)
		s.history.SetOnChange(func() {
			ev := HistoryEvent{
				Session:  id,
				CanUndo:  s.history.CanUndo(),
				CanRedo:  s.history.CanRedo(),
				UndoSize: s.history.UndoSize(),
				RedoSize: s.history.RedoSize(),
			}
			logger.Debug("History changed", "session", id, "undo", ev.UndoSize, "redo", ev.RedoSize)
			s.publish(ev)
		})
	}
	s.editor = history.NewEditor(s.history, &s.mu, opts.EditDebounce)
	return s
}

func (s *Session) Lock()   { s.mu.Lock() }
func (s *Session) Unlock() { s.mu.Unlock() }

// Scene returns the mounted scene; callers hold the session lock.
func (s *Session) Scene() *scene.Scene { return s.scene }

// History returns the command history, or nil when disabled.
func (s *Session) History() *history.History { return s.history }

// Editor returns the interactive edit batcher.
func (s *Session) Editor() *history.Editor { return s.editor }

// Mount swaps in a new scene, dropping any in-flight edit and all history
// because recorded commands point at the old node tree.
func (s *Session) Mount(sc *scene.Scene) {
	s.editor.Cancel()
	s.scene = sc
	if s.history != nil {
		s.history.Clear()
	}
}

// Touch records activity for idle expiry.
func (s *Session) Touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

// LastSeen returns the time of the most recent activity.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Attach marks the session as held open by a long-lived connection until
// the returned function runs. Attached sessions never expire.
func (s *Session) Attach() (detach func()) {
	s.attached.Add(1)
	var once sync.Once
	return func() {
		once.Do(func() { s.attached.Add(-1) })
	}
}

// Attached reports whether a connection or event subscriber holds the session.
func (s *Session) Attached() bool {
	if s.attached.Load() > 0 {
		return true
	}
	s.subMu.Lock()
	defer s.subMu.Unlock()
	return len(s.subscribers) > 0
}

// Subscribe returns a channel of history events and a function that ends
// the subscription. Slow readers miss events rather than block editing.
func (s *Session) Subscribe() (<-chan HistoryEvent, func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	if s.subscribers == nil {
		s.subscribers = make(map[int]chan HistoryEvent)
	}
	id := s.nextSub
	s.nextSub++
	ch := make(chan HistoryEvent, 16)
	s.subscribers[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subscribers, id)
			s.subMu.Unlock()
			close(ch)
		})
	}
}

func (s *Session) publish(ev HistoryEvent) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subscribers {
		select {
		case ch <- ev:
		default:
		}
	}
}
