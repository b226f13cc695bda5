package scene

import (
	"context"

	"github.com/slighter12/modelweb-mcp-go/mcp"
	graph "github.com/slighter12/modelweb-mcp-go/scene"
	"github.com/slighter12/modelweb-mcp-go/session"
	"github.com/slighter12/modelweb-mcp-go/tools/types"
)

const untitledScene = "Untitled Scene"

type GetSceneInfoTool struct{}

func (t *GetSceneInfoTool) Name() string { return mcp.OpGetSceneInfo }
func (t *GetSceneInfoTool) Description() string {
	return "Summarizes the active scene: object, mesh, light and camera counts"
}
func (t *GetSceneInfoTool) InputSchema() mcp.InputSchema {
	return types.Schema("Get Scene Info", nil)
}
func (t *GetSceneInfoTool) Execute(_ context.Context, sess *session.Session, _ types.Params) (any, error) {
	sc, err := types.RequireScene(sess)
	if err != nil {
		return nil, err
	}

	var meshes, lights, cameras int
	sc.Root.Traverse(func(n *graph.Node) {
		switch {
		case n.Type == graph.TypeMesh:
			meshes++
		case n.Type.IsLight():
			lights++
		case n.Type.IsCamera():
			cameras++
		}
	})

	name := sc.Name()
	if name == "" {
		name = untitledScene
	}
	background := "none"
	if sc.Background != nil {
		background = sc.Background.HexString()
	}

	return map[string]any{
		"objectCount": sc.Root.ChildCount(),
		"meshCount":   meshes,
		"lightCount":  lights,
		"cameraCount": cameras,
		"sceneStats": map[string]any{
			"uuid":       sc.ID(),
			"name":       name,
			"background": background,
		},
	}, nil
}

type ListObjectsTool struct{}

func (t *ListObjectsTool) Name() string { return mcp.OpListObjects }
func (t *ListObjectsTool) Description() string {
	return "Lists every object below the scene root in traversal order"
}
func (t *ListObjectsTool) InputSchema() mcp.InputSchema {
	return types.Schema("List Objects", nil)
}
func (t *ListObjectsTool) Execute(_ context.Context, sess *session.Session, _ types.Params) (any, error) {
	sc, err := types.RequireScene(sess)
	if err != nil {
		return nil, err
	}

	objects := make([]map[string]any, 0)
	for _, n := range sc.Objects() {
		objects = append(objects, map[string]any{
			"name":        n.Name,
			"type":        n.Type,
			"uuid":        n.ID,
			"visible":     n.Visible,
			"position":    [3]float64(n.Position),
			"hasChildren": n.ChildCount() > 0,
		})
	}
	return map[string]any{"objects": objects}, nil
}

func GetAllTools() []types.Tool {
	return []types.Tool{
		&GetSceneInfoTool{},
		&ListObjectsTool{},
	}
}
