package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a manager's config whenever the underlying TOML file
// changes on disk, debouncing rapid successive writes from editors that
// save in multiple steps.
type Watcher struct {
	watcher *fsnotify.Watcher
	mgr     *RWMutexManager
	path    string
	logger  *slog.Logger
}

// WatchFile starts watching path's directory for changes to path and
// reloads mgr whenever one settles, returning a Watcher the caller must
// Close when done.
func WatchFile(path string, mgr *RWMutexManager, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, err
	}
	w := &Watcher{watcher: fw, mgr: mgr, path: path, logger: logger}
	return w, nil
}

// Run processes filesystem events until ctx is cancelled or Close is
// called, debouncing bursts of writes to the watched file.
func (w *Watcher) Run(ctx context.Context) {
	const debounce = 200 * time.Millisecond
	var pending *time.Timer

	reload := func() {
		if err := w.mgr.Reload(w.path); err != nil {
			w.logger.Warn("config reload failed", "path", w.path, "error", err)
			return
		}
		w.logger.Info("config reloaded", "path", w.path)
	}

	for {
		select {
		case <-ctx.Done():
			if pending != nil {
				pending.Stop()
			}
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if pending != nil {
				pending.Stop()
			}
			pending = time.AfterFunc(debounce, reload)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher error", "error", err)
		}
	}
}

// Close stops the underlying filesystem watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
