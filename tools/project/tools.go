// Package project loads and stores scene documents inside the workspace root.
package project

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/slighter12/modelweb-mcp-go/mcp"
	"github.com/slighter12/modelweb-mcp-go/sceneio"
	"github.com/slighter12/modelweb-mcp-go/session"
	"github.com/slighter12/modelweb-mcp-go/tools/types"
)

var sceneExts = []string{".json"}

var pathProperty = types.StringProperty("Workspace-relative path of a .json scene file")

// pathError maps workspace confinement failures to INVALID_PARAMS and
// leaves I/O failures to the dispatcher.
func pathError(err error) error {
	for _, known := range []error{types.ErrPathRequired, types.ErrAbsolutePath, types.ErrPathEscapesRoot, types.ErrUnsupportedFile} {
		if errors.Is(err, known) {
			return types.InvalidParamError("path", err)
		}
	}
	return err
}

type ListSceneFilesTool struct{}

func (t *ListSceneFilesTool) Name() string        { return mcp.OpListScenes }
func (t *ListSceneFilesTool) Description() string { return "Lists scene documents in the workspace" }
func (t *ListSceneFilesTool) InputSchema() mcp.InputSchema {
	return types.Schema("List Scene Files", nil)
}
func (t *ListSceneFilesTool) Execute(_ context.Context, _ *session.Session, _ types.Params) (any, error) {
	root, err := types.WorkspaceRoot()
	if err != nil {
		return nil, err
	}
	files := make([]string, 0)
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.ToLower(filepath.Ext(path)) != ".json" {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return map[string]any{"files": files}, nil
}

type LoadSceneTool struct{}

func (t *LoadSceneTool) Name() string { return mcp.OpLoadScene }
func (t *LoadSceneTool) Description() string {
	return "Replaces the active scene with a scene document; clears history"
}
func (t *LoadSceneTool) InputSchema() mcp.InputSchema {
	return types.Schema("Load Scene", map[string]any{"path": pathProperty}, "path")
}
func (t *LoadSceneTool) Execute(_ context.Context, sess *session.Session, params types.Params) (any, error) {
	path, err := params.RequiredString("path")
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, types.NoSceneError()
	}
	data, rel, err := types.ReadWorkspaceFile(path, sceneExts)
	if err != nil {
		return nil, pathError(err)
	}
	sc, err := sceneio.Deserialize(data)
	if err != nil {
		return nil, err
	}
	sess.Mount(sc)
	return map[string]any{
		"path":        rel,
		"name":        sc.Name(),
		"objectCount": len(sc.Objects()),
	}, nil
}

type SaveSceneTool struct{}

func (t *SaveSceneTool) Name() string        { return mcp.OpSaveScene }
func (t *SaveSceneTool) Description() string { return "Writes the active scene to a scene document" }
func (t *SaveSceneTool) InputSchema() mcp.InputSchema {
	return types.Schema("Save Scene", map[string]any{"path": pathProperty}, "path")
}
func (t *SaveSceneTool) Execute(_ context.Context, sess *session.Session, params types.Params) (any, error) {
	path, err := params.RequiredString("path")
	if err != nil {
		return nil, err
	}
	sc, err := types.RequireScene(sess)
	if err != nil {
		return nil, err
	}
	data, err := sceneio.Serialize(sc)
	if err != nil {
		return nil, err
	}
	rel, err := types.WriteWorkspaceFile(path, sceneExts, data)
	if err != nil {
		return nil, pathError(err)
	}
	return map[string]any{"path": rel, "bytes": len(data)}, nil
}

type ExportSceneTool struct{}

func (t *ExportSceneTool) Name() string        { return mcp.OpExportScene }
func (t *ExportSceneTool) Description() string { return "Returns the active scene encoded in a format" }
func (t *ExportSceneTool) InputSchema() mcp.InputSchema {
	return types.Schema("Export Scene", map[string]any{
		"format": types.StringProperty("Export format; only json is produced"),
	})
}
func (t *ExportSceneTool) Execute(_ context.Context, sess *session.Session, params types.Params) (any, error) {
	format, _, err := params.String("format")
	if err != nil {
		return nil, err
	}
	sc, err := types.RequireScene(sess)
	if err != nil {
		return nil, err
	}
	data, err := sceneio.ExportModel(sc, format)
	if errors.Is(err, sceneio.ErrUnsupportedFormat) {
		return nil, types.InvalidParamError("format", err)
	}
	if err != nil {
		return nil, err
	}
	if format == "" {
		format = "json"
	}
	return map[string]any{"format": strings.ToLower(format), "content": string(data)}, nil
}

func GetAllTools() []types.Tool {
	return []types.Tool{
		&ListSceneFilesTool{},
		&LoadSceneTool{},
		&SaveSceneTool{},
		&ExportSceneTool{},
	}
}
