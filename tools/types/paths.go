package types

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// WorkspaceRootEnv names the directory scene files are confined to.
const WorkspaceRootEnv = "MODELWEB_WORKSPACE_ROOT"

var (
	ErrPathRequired     = errors.New("path is required")
	ErrAbsolutePath     = errors.New("absolute paths are not allowed")
	ErrPathEscapesRoot  = errors.New("path escapes workspace root")
	ErrUnsupportedFile  = errors.New("unsupported file extension")
	errWorkspaceMissing = errors.New("workspace root is not a directory")
)

// WorkspaceRoot returns $MODELWEB_WORKSPACE_ROOT when it names a directory,
// otherwise the current directory.
func WorkspaceRoot() (string, error) {
	if env := strings.TrimSpace(os.Getenv(WorkspaceRootEnv)); env != "" {
		stat, err := os.Stat(env)
		if err != nil || !stat.IsDir() {
			return "", errWorkspaceMissing
		}
		return filepath.Abs(env)
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return wd, nil
}

// ResolveWorkspacePath turns a workspace-relative path into an absolute one,
// rejecting absolute inputs, escapes and extensions outside allowedExts.
// The second return is the cleaned slash-separated relative form.
func ResolveWorkspacePath(input string, allowedExts []string) (string, string, error) {
	rel := strings.TrimSpace(strings.ReplaceAll(input, "\\", "/"))
	rel = strings.TrimPrefix(rel, "./")
	if rel == "" {
		return "", "", ErrPathRequired
	}
	if filepath.IsAbs(rel) || strings.HasPrefix(rel, "/") {
		return "", "", ErrAbsolutePath
	}

	cleanRel := filepath.Clean(filepath.FromSlash(rel))
	if cleanRel == "." || cleanRel == ".." || strings.HasPrefix(cleanRel, ".."+string(filepath.Separator)) {
		return "", "", ErrPathEscapesRoot
	}

	if len(allowedExts) > 0 {
		ext := strings.ToLower(filepath.Ext(cleanRel))
		allowed := false
		for _, candidate := range allowedExts {
			if ext == strings.ToLower(candidate) {
				allowed = true
				break
			}
		}
		if !allowed {
			return "", "", ErrUnsupportedFile
		}
	}

	root, err := WorkspaceRoot()
	if err != nil {
		return "", "", err
	}
	full := filepath.Join(root, cleanRel)
	if !isWithinRoot(full, root) {
		return "", "", ErrPathEscapesRoot
	}
	return full, filepath.ToSlash(cleanRel), nil
}

// ReadWorkspaceFile reads a file after resolving symlinks, so a link
// pointing outside the workspace is refused.
func ReadWorkspaceFile(input string, allowedExts []string) ([]byte, string, error) {
	full, rel, err := ResolveWorkspacePath(input, allowedExts)
	if err != nil {
		return nil, "", err
	}
	root, err := WorkspaceRoot()
	if err != nil {
		return nil, "", err
	}
	if real, evalErr := filepath.EvalSymlinks(root); evalErr == nil {
		root = real
	}
	resolved, err := filepath.EvalSymlinks(full)
	if err != nil {
		return nil, "", err
	}
	if !isWithinRoot(resolved, root) {
		return nil, "", ErrPathEscapesRoot
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		return nil, "", err
	}
	return data, rel, nil
}

// WriteWorkspaceFile writes data, creating parent directories. The deepest
// existing ancestor is resolved through symlinks and must stay inside the
// workspace, and the target itself may not be a symlink.
func WriteWorkspaceFile(input string, allowedExts []string, data []byte) (string, error) {
	full, rel, err := ResolveWorkspacePath(input, allowedExts)
	if err != nil {
		return "", err
	}
	root, err := WorkspaceRoot()
	if err != nil {
		return "", err
	}
	if real, evalErr := filepath.EvalSymlinks(root); evalErr == nil {
		root = real
	}
	resolved, err := resolveExistingAncestor(full)
	if err != nil {
		return "", err
	}
	if !isWithinRoot(resolved, root) {
		return "", ErrPathEscapesRoot
	}
	if info, statErr := os.Lstat(resolved); statErr == nil && info.Mode()&os.ModeSymlink != 0 {
		return "", ErrPathEscapesRoot
	}

	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(resolved, data, 0o644); err != nil {
		return "", err
	}
	return rel, nil
}

// resolveExistingAncestor evaluates symlinks on the longest existing prefix
// of path and re-appends the components that do not exist yet.
func resolveExistingAncestor(path string) (string, error) {
	dir := filepath.Dir(path)
	rest := []string{filepath.Base(path)}
	for {
		real, err := filepath.EvalSymlinks(dir)
		if err == nil {
			return filepath.Join(append([]string{real}, rest...)...), nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", err
		}
		rest = append([]string{filepath.Base(dir)}, rest...)
		dir = parent
	}
}

func isWithinRoot(path string, root string) bool {
	cleanPath := filepath.Clean(path)
	cleanRoot := filepath.Clean(root)
	if cleanPath == cleanRoot {
		return true
	}
	return strings.HasPrefix(cleanPath, cleanRoot+string(filepath.Separator))
}
