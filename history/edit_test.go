package history

import (
	"sync"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slighter12/modelweb-mcp-go/scene"
)

func TestEditor_CommitPushesSingleCommand(t *testing.T) {
	s := scene.New("Main")
	node := newMesh(t, s, "Cube_1")
	h := New(0)
	e := NewEditor(h, &sync.Mutex{}, time.Hour)

	require.NoError(t, e.Begin(node, FieldPosition))
	for i := 1; i <= 5; i++ {
		require.NoError(t, e.Update(mgl64.Vec3{float64(i), 0, 0}))
	}
	assert.Equal(t, 0, h.UndoSize())

	recorded, err := e.Commit()
	require.NoError(t, err)
	assert.True(t, recorded)
	assert.Equal(t, 1, h.UndoSize())
	assert.Equal(t, mgl64.Vec3{5, 0, 0}, node.Position)

	require.NoError(t, h.Undo())
	assert.Equal(t, mgl64.Vec3{}, node.Position)
}

func TestEditor_UnchangedCommitRecordsNothing(t *testing.T) {
	s := scene.New("Main")
	node := newMesh(t, s, "Cube_1")
	h := New(0)
	e := NewEditor(h, &sync.Mutex{}, time.Hour)

	require.NoError(t, e.Begin(node, FieldScale))
	recorded, err := e.Commit()
	require.NoError(t, err)
	assert.False(t, recorded)
	assert.Equal(t, 0, h.UndoSize())

	_, err = e.Commit()
	assert.ErrorIs(t, err, ErrNoActiveEdit)
}

func TestEditor_BeginTwiceFails(t *testing.T) {
	s := scene.New("Main")
	node := newMesh(t, s, "Cube_1")
	e := NewEditor(New(0), &sync.Mutex{}, time.Hour)

	require.NoError(t, e.Begin(node, FieldRotation))
	assert.ErrorIs(t, e.Begin(node, FieldPosition), ErrEditActive)
	status, ok := e.Active()
	require.True(t, ok)
	assert.Equal(t, "Cube_1", status.Target)
	assert.Equal(t, FieldRotation, status.Field)

	e.Cancel()
	_, ok = e.Active()
	assert.False(t, ok)
}

func TestEditor_DebounceAutoCommits(t *testing.T) {
	s := scene.New("Main")
	node := newMesh(t, s, "Cube_1")
	h := New(0)
	mu := &sync.Mutex{}
	e := NewEditor(h, mu, 20*time.Millisecond)

	mu.Lock()
	require.NoError(t, e.Begin(node, FieldPosition))
	require.NoError(t, e.Update(mgl64.Vec3{0, 9, 0}))
	mu.Unlock()

	assert.Eventually(t, func() bool { return h.UndoSize() == 1 }, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	_, active := e.Active()
	assert.False(t, active)
	assert.Equal(t, []CommandType{TypeMove}, h.Entries())
}
