package history

import (
	"errors"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/slighter12/modelweb-mcp-go/logger"
	"github.com/slighter12/modelweb-mcp-go/scene"
)

// DefaultDebounce is the idle interval after which an interactive edit
// commits itself.
const DefaultDebounce = 300 * time.Millisecond

var (
	ErrNoActiveEdit = errors.New("no interactive edit in progress")
	ErrEditActive   = errors.New("an interactive edit is already in progress")
)

// Editor batches a burst of live transform updates into a single command.
// Begin, Update and Commit must be called with locker held; the debounce
// timer acquires locker itself before committing.
type Editor struct {
	history  *History
	locker   sync.Locker
	interval time.Duration

	active *edit
	gen    uint64
}

type edit struct {
	target *scene.Node
	field  TransformField
	start  mgl64.Vec3
	timer  *time.Timer
	gen    uint64
}

// EditStatus describes the edit in progress.
type EditStatus struct {
	Target string
	Field  TransformField
}

// NewEditor creates an editor pushing into h. interval <= 0 selects
// DefaultDebounce.
func NewEditor(h *History, locker sync.Locker, interval time.Duration) *Editor {
	if interval <= 0 {
		interval = DefaultDebounce
	}
	return &Editor{history: h, locker: locker, interval: interval}
}

func (e *Editor) Interval() time.Duration { return e.interval }

// Active reports the edit in progress, if any.
func (e *Editor) Active() (EditStatus, bool) {
	if e.active == nil {
		return EditStatus{}, false
	}
	return EditStatus{Target: e.active.target.Name, Field: e.active.field}, true
}

// Begin snapshots field of target as the value the eventual command undoes to.
func (e *Editor) Begin(target *scene.Node, field TransformField) error {
	if !alive(target) {
		return ErrTargetGone
	}
	if e.active != nil {
		return ErrEditActive
	}
	e.active = &edit{target: target, field: field, start: field.Get(target)}
	e.arm()
	return nil
}

// Update applies v live, outside history, and re-arms the debounce timer.
func (e *Editor) Update(v mgl64.Vec3) error {
	if e.active == nil {
		return ErrNoActiveEdit
	}
	if !alive(e.active.target) {
		e.reset()
		return ErrTargetGone
	}
	e.active.field.Set(e.active.target, v)
	e.arm()
	return nil
}

// Commit pushes one command from the start value to the live value. It
// reports whether a command was recorded; an unchanged field records nothing.
func (e *Editor) Commit() (bool, error) {
	if e.active == nil {
		return false, ErrNoActiveEdit
	}
	cur := e.active
	e.reset()
	if !alive(cur.target) {
		return false, ErrTargetGone
	}
	final := cur.field.Get(cur.target)
	if final.ApproxEqual(cur.start) {
		return false, nil
	}
	if e.history == nil {
		return false, nil
	}
	cmd := newTransformCommandFrom(cur.target, cur.field, cur.start, final)
	if err := e.history.Execute(cmd); err != nil {
		return false, err
	}
	return true, nil
}

// Cancel restores the start value and drops the edit.
func (e *Editor) Cancel() {
	if e.active == nil {
		return
	}
	cur := e.active
	e.reset()
	if alive(cur.target) {
		cur.field.Set(cur.target, cur.start)
	}
}

func (e *Editor) arm() {
	if e.active.timer != nil {
		e.active.timer.Stop()
	}
	e.gen++
	e.active.gen = e.gen
	gen := e.gen
	e.active.timer = time.AfterFunc(e.interval, func() { e.expire(gen) })
}

func (e *Editor) expire(gen uint64) {
	e.locker.Lock()
	defer e.locker.Unlock()
	if e.active == nil || e.active.gen != gen {
		return
	}
	recorded, err := e.Commit()
	if err != nil {
		logger.Warn("Interactive edit auto-commit failed", "error", err)
		return
	}
	logger.Debug("Interactive edit auto-committed", "recorded", recorded)
}

func (e *Editor) reset() {
	if e.active != nil && e.active.timer != nil {
		e.active.timer.Stop()
	}
	e.active = nil
}
