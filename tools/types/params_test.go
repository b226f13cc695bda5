package types

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slighter12/modelweb-mcp-go/mcp"
)

func TestRequire(t *testing.T) {
	p := Params{"objectName": "Cube_1", "null": nil, "count": 2.0}
	assert.NoError(t, p.Require("objectName", "null"))

	err := p.Require("objectName", "missing")
	toolErr, ok := AsToolError(err)
	require.True(t, ok)
	assert.Equal(t, mcp.CodeInvalidParams, toolErr.Code)
	assert.Equal(t, "Missing required parameter: missing", toolErr.Message)

	name, err := p.RequiredString("objectName")
	require.NoError(t, err)
	assert.Equal(t, "Cube_1", name)

	for _, key := range []string{"null", "count"} {
		_, err := p.RequiredString(key)
		toolErr, ok := AsToolError(err)
		require.True(t, ok, key)
		assert.Equal(t, mcp.CodeInvalidParams, toolErr.Code)
		assert.Contains(t, toolErr.Message, "Invalid parameter "+key)
	}
}

func TestVec3(t *testing.T) {
	p := Params{
		"array":  []any{1.0, 2.0, 3.0},
		"object": map[string]any{"x": 1.0, "y": 2.0, "z": 3.0},
		"short":  []any{1.0, 2.0},
		"text":   []any{"a", 2.0, 3.0},
	}

	for _, key := range []string{"array", "object"} {
		v, ok, err := p.Vec3(key)
		require.NoError(t, err, key)
		assert.True(t, ok)
		assert.Equal(t, mgl64.Vec3{1, 2, 3}, v)
	}

	_, ok, err := p.Vec3("absent")
	assert.NoError(t, err)
	assert.False(t, ok)

	for _, key := range []string{"short", "text"} {
		_, ok, err := p.Vec3(key)
		assert.True(t, ok)
		toolErr, isToolErr := AsToolError(err)
		require.True(t, isToolErr, key)
		assert.Equal(t, mcp.CodeInvalidParams, toolErr.Code)
	}
}

func TestStringAndBool(t *testing.T) {
	p := Params{"name": "Cube_1", "visible": false, "bad": 3.0}

	s, ok, err := p.String("name")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Cube_1", s)

	b, ok, err := p.Bool("visible")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, b)

	_, _, err = p.String("bad")
	assert.Error(t, err)
	_, _, err = p.Bool("bad")
	assert.Error(t, err)
}
