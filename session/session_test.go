package session

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slighter12/modelweb-mcp-go/history"
	"github.com/slighter12/modelweb-mcp-go/scene"
)

func TestSessionsAreIsolated(t *testing.T) {
	m := NewManager(Options{HistorySize: 5})
	a := m.Create(scene.New("A"))
	b := m.Create(scene.New("B"))
	require.NotEqual(t, a.ID, b.ID)

	node := scene.NewNode("Cube_1", scene.TypeMesh)
	a.Scene().Add(node)
	require.NoError(t, a.History().Execute(history.NewMoveCommand(node, mgl64.Vec3{1, 0, 0})))

	assert.Equal(t, 1, a.History().UndoSize())
	assert.Equal(t, 0, b.History().UndoSize())
	assert.Nil(t, b.Scene().FindByName("Cube_1"))
	assert.Equal(t, 5, a.History().MaxSize())
}

func TestMountClearsHistory(t *testing.T) {
	s := New("s1", scene.New("Old"), Options{})
	node := scene.NewNode("Cube_1", scene.TypeMesh)
	s.Scene().Add(node)
	require.NoError(t, s.History().Execute(history.NewMoveCommand(node, mgl64.Vec3{1, 0, 0})))

	s.Lock()
	s.Mount(scene.New("New"))
	s.Unlock()

	assert.Equal(t, "New", s.Scene().Name())
	assert.False(t, s.History().CanUndo())
}

func TestDisableHistory(t *testing.T) {
	s := New("s1", scene.New("Main"), Options{DisableHistory: true})
	assert.Nil(t, s.History())
	assert.NotNil(t, s.Editor())
}

func TestManager_GetRemoveCleanup(t *testing.T) {
	m := NewManager(Options{})
	def := m.CreateWithID(DefaultID, scene.New("Main"))
	other := m.Create(scene.New("Other"))

	got, err := m.Get(other.ID)
	require.NoError(t, err)
	assert.Same(t, other, got)

	_, err = m.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	removed := m.Cleanup(time.Minute, time.Now().Add(time.Hour))
	assert.Equal(t, 1, removed)
	assert.Equal(t, []string{DefaultID}, m.IDs())

	assert.True(t, m.Remove(def.ID))
	assert.False(t, m.Remove(def.ID))
}

func TestSubscribeReceivesHistoryEvents(t *testing.T) {
	s := New("s1", scene.New("Main"), Options{})
	events, cancel := s.Subscribe()
	defer cancel()

	node := scene.NewNode("Cube_1", scene.TypeMesh)
	s.Scene().Add(node)
	require.NoError(t, s.History().Execute(history.NewMoveCommand(node, mgl64.Vec3{1, 0, 0})))

	select {
	case ev := <-events:
		assert.Equal(t, HistoryEvent{Session: "s1", CanUndo: true, UndoSize: 1}, ev)
	case <-time.After(time.Second):
		t.Fatal("no history event")
	}

	require.NoError(t, s.History().Undo())
	ev := <-events
	assert.True(t, ev.CanRedo)
	assert.False(t, ev.CanUndo)

	cancel()
	cancel()
	_, open := <-events
	assert.False(t, open)
}

func TestManager_CleanupSkipsAttachedSessions(t *testing.T) {
	m := NewManager(Options{})
	held := m.Create(scene.New("Held"))
	watched := m.Create(scene.New("Watched"))
	later := time.Now().Add(time.Hour)

	detach := held.Attach()
	_, unsubscribe := watched.Subscribe()
	assert.True(t, held.Attached())
	assert.True(t, watched.Attached())

	assert.Equal(t, 0, m.Cleanup(time.Minute, later))
	assert.ElementsMatch(t, []string{held.ID, watched.ID}, m.IDs())

	detach()
	detach()
	unsubscribe()
	assert.False(t, held.Attached())
	assert.False(t, watched.Attached())

	assert.Equal(t, 2, m.Cleanup(time.Minute, later))
	assert.Empty(t, m.IDs())
}
