package engine

import (
	"fmt"
	"path/filepath"

	"github.com/Carmen-Shannon/oxy-showcase/engine/logger"

	"github.com/fsnotify/fsnotify"
)

// remountOps are the file events that trigger a remount. Editors often save by renaming a
// temporary file over the target, so the parent directory is watched rather than the file.
const remountOps = fsnotify.Write | fsnotify.Create | fsnotify.Rename

func (e *engine) Watch(paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	if e.watcher != nil {
		return fmt.Errorf("already watching")
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	targets := make(map[string]bool, len(paths))
	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			w.Close()
			return fmt.Errorf("failed to resolve %s: %w", p, err)
		}
		targets[abs] = true
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := w.Add(dir); err != nil {
			w.Close()
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		dirs[dir] = true
	}

	e.watcher = w
	e.watchDone = make(chan struct{})
	go e.watch(w, targets, e.watchDone)
	logger.Info("watching %d files for changes", len(targets))
	return nil
}

// watch forwards matching events to the loop thread. Bursts of events collapse into a
// single remount until the queued one has run.
func (e *engine) watch(w *fsnotify.Watcher, targets map[string]bool, done chan struct{}) {
	defer close(done)
	for {
		select {
		case event, ok := <-w.Events:
			if !ok {
				return
			}
			if event.Op&remountOps == 0 {
				continue
			}
			name, err := filepath.Abs(event.Name)
			if err != nil || !targets[name] {
				continue
			}
			logger.Debug("%s changed (%s)", name, event.Op)
			e.queueRemount()
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			logger.Warn("watch: %v", err)
		}
	}
}

func (e *engine) queueRemount() {
	e.watchMu.Lock()
	defer e.watchMu.Unlock()
	if e.remountQueued {
		return
	}
	e.remountQueued = true
	e.scheduler.Post(func() {
		e.watchMu.Lock()
		e.remountQueued = false
		e.watchMu.Unlock()
		e.remountLogged()
	})
}

func (e *engine) stopWatching() {
	if e.watcher == nil {
		return
	}
	e.watcher.Close()
	<-e.watchDone
	e.watcher = nil
}
