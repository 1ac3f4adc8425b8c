package ml

import (
	"context"
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher marks loaded artifacts as stale once any of their files changes on
// disk. It never reloads: artifacts are read once per process, and a stale
// bundle needs a restart to pick up new files.
type Watcher struct {
	dir     string
	files   map[string]string
	watcher *fsnotify.Watcher
	stale   atomic.Bool
	logger  *zap.Logger
}

func NewWatcher(dir string, files ArtifactFiles, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, err
	}
	names := make(map[string]string)
	for artifact, name := range files.Names() {
		names[name] = artifact
	}
	return &Watcher{dir: dir, files: names, watcher: fw, logger: logger}, nil
}

// Run consumes file events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("artifact watcher error", zap.String("dir", w.dir), zap.Error(err))
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	artifact, ok := w.files[filepath.Base(event.Name)]
	if !ok {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}
	if w.stale.CompareAndSwap(false, true) {
		w.logger.Warn("model artifact changed on disk, restart to load it",
			zap.String("artifact", artifact),
			zap.String("path", event.Name),
			zap.String("op", event.Op.String()))
	}
}

// Stale reports whether an artifact changed after load. A nil watcher is never
// stale.
func (w *Watcher) Stale() bool {
	return w != nil && w.stale.Load()
}

func (w *Watcher) Close() error {
	if w == nil {
		return nil
	}
	return w.watcher.Close()
}
