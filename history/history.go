package history

import (
	"sync"

	"github.com/slighter12/modelweb-mcp-go/logger"
)

// DefaultMaxSize is the undo depth used when none is configured.
const DefaultMaxSize = 50

// History is a bounded undo/redo sequencer.
type History struct {
	mu       sync.Mutex
	undo     []Command
	redo     []Command
	maxSize  int
	onChange func()
}

// New creates a history holding at most maxSize undo entries.
// A non-positive maxSize selects DefaultMaxSize.
func New(maxSize int) *History {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &History{maxSize: maxSize}
}

// SetOnChange registers a listener called after every stack change.
// The listener runs without the history lock held.
func (h *History) SetOnChange(fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onChange = fn
}

// Execute runs cmd and records it. A failed command is not recorded and
// leaves both stacks untouched.
func (h *History) Execute(cmd Command) error {
	h.mu.Lock()
	if err := cmd.Execute(); err != nil {
		h.mu.Unlock()
		return err
	}
	h.undo = append(h.undo, cmd)
	h.redo = nil
	if len(h.undo) > h.maxSize {
		evicted := h.undo[0]
		h.undo = append([]Command(nil), h.undo[1:]...)
		logger.Debug("History cap reached, dropped oldest command", "type", evicted.Type(), "max_size", h.maxSize)
	}
	h.mu.Unlock()
	h.notify()
	return nil
}

// Undo reverts the most recent command. Empty history is a no-op.
// If the command fails to revert it stays on the undo stack.
func (h *History) Undo() error {
	h.mu.Lock()
	if len(h.undo) == 0 {
		h.mu.Unlock()
		return nil
	}
	cmd := h.undo[len(h.undo)-1]
	if err := cmd.Undo(); err != nil {
		h.mu.Unlock()
		return err
	}
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, cmd)
	h.mu.Unlock()
	h.notify()
	return nil
}

// Redo re-applies the most recently undone command. Empty redo stack is a no-op.
func (h *History) Redo() error {
	h.mu.Lock()
	if len(h.redo) == 0 {
		h.mu.Unlock()
		return nil
	}
	cmd := h.redo[len(h.redo)-1]
	if err := cmd.Execute(); err != nil {
		h.mu.Unlock()
		return err
	}
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, cmd)
	h.mu.Unlock()
	h.notify()
	return nil
}

// Clear empties both stacks.
func (h *History) Clear() {
	h.mu.Lock()
	h.undo = nil
	h.redo = nil
	h.mu.Unlock()
	h.notify()
}

func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undo) > 0
}

func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redo) > 0
}

func (h *History) UndoSize() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undo)
}

func (h *History) RedoSize() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redo)
}

func (h *History) MaxSize() int { return h.maxSize }

// Entries lists the undo stack type tags, oldest first.
func (h *History) Entries() []CommandType {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]CommandType, len(h.undo))
	for i, cmd := range h.undo {
		out[i] = cmd.Type()
	}
	return out
}

func (h *History) notify() {
	h.mu.Lock()
	fn := h.onChange
	h.mu.Unlock()
	if fn != nil {
		fn()
	}
}
