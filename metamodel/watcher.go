package metamodel

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/teranos/ypgen/errors"
	"github.com/teranos/ypgen/logger"
)

// ReloadCallback receives the freshly loaded context after a change
type ReloadCallback func(*Context) error

// ContextWatcher reloads a context description whenever its file changes
type ContextWatcher struct {
	path           string
	watcher        *fsnotify.Watcher
	debouncePeriod time.Duration

	mu            sync.Mutex
	callbacks     []ReloadCallback
	debounceTimer *time.Timer
}

// NewContextWatcher watches the directory holding path, so editors that
// replace the file via rename are still seen
func NewContextWatcher(path string) (*ContextWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, errors.Wrapf(err, "failed to watch %s", path)
	}
	return &ContextWatcher{
		path:           filepath.Clean(path),
		watcher:        w,
		debouncePeriod: 500 * time.Millisecond,
	}, nil
}

// OnReload registers a callback for successful reloads
func (cw *ContextWatcher) OnReload(cb ReloadCallback) {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	cw.callbacks = append(cw.callbacks, cb)
}

// Run blocks until ctx is done, dispatching reloads
func (cw *ContextWatcher) Run(ctx context.Context) error {
	defer cw.watcher.Close()
	for {
		select {
		case <-ctx.Done():
			cw.mu.Lock()
			if cw.debounceTimer != nil {
				cw.debounceTimer.Stop()
			}
			cw.mu.Unlock()
			return nil

		case event, ok := <-cw.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != cw.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			logger.Debugw("Context file changed", logger.FieldFile, event.Name, "op", event.Op.String())
			cw.scheduleReload()

		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warnw("Context watcher error", logger.FieldError, err)
		}
	}
}

func (cw *ContextWatcher) scheduleReload() {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	if cw.debounceTimer != nil {
		cw.debounceTimer.Stop()
	}
	cw.debounceTimer = time.AfterFunc(cw.debouncePeriod, cw.reload)
}

func (cw *ContextWatcher) reload() {
	ctx, err := Load(cw.path)
	if err != nil {
		// keep serving the previous context until the file is valid again
		logger.Warnw("Context reload failed", logger.FieldFile, cw.path, logger.FieldError, err)
		return
	}

	cw.mu.Lock()
	callbacks := make([]ReloadCallback, len(cw.callbacks))
	copy(callbacks, cw.callbacks)
	cw.mu.Unlock()

	for _, cb := range callbacks {
		if err := cb(ctx); err != nil {
			logger.Errorw("Context reload callback failed", logger.FieldFile, cw.path, logger.FieldError, err)
		}
	}
}
