package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/slighter12/modelweb-mcp-go/logger"
	"github.com/slighter12/modelweb-mcp-go/sceneio"
	"github.com/slighter12/modelweb-mcp-go/session"
)

// sceneWatcher remounts a scene file into a session whenever it changes.
type sceneWatcher struct {
	path    string
	sess    *session.Session
	watcher *fsnotify.Watcher
}

// newSceneWatcher starts watching immediately. The parent directory is
// watched so editors that replace the file by rename are still seen.
func newSceneWatcher(path string, sess *session.Session) (*sceneWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	return &sceneWatcher{path: abs, sess: sess, watcher: watcher}, nil
}

// run blocks until ctx ends or the watcher fails.
func (w *sceneWatcher) run(ctx context.Context) error {
	defer w.watcher.Close()
	logger.Info("Watching scene file", "path", w.path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			_ = w.reload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Scene watcher error", "path", w.path, "error", err)
		}
	}
}

// reload mounts the file's current contents. A half-written or invalid
// file leaves the mounted scene alone.
func (w *sceneWatcher) reload() error {
	sc, err := sceneio.LoadFile(w.path)
	if err != nil {
		logger.Warn("Scene reload failed", "path", w.path, "error", err)
		return err
	}
	w.sess.Lock()
	w.sess.Mount(sc)
	w.sess.Unlock()
	logger.Info("Scene reloaded", "path", w.path, "objects", len(sc.Objects()))
	return nil
}
