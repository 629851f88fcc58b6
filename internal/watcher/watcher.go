// Package watcher monitors the dataset source file and triggers a reload
// when it changes.
//
// The file is watched through its parent directory so that editors and
// pipelines that replace the file via rename are still detected. Events
// are debounced: a write burst produces one reload after the file has
// been quiet for the debounce window.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/shelfstats/shelfstats-server/internal/logger"
)

// DefaultDebounce is the quiet window before a change triggers a reload.
const DefaultDebounce = 500 * time.Millisecond

// OnChange is called after the watched file has settled. A returned error
// is logged; watching continues either way.
type OnChange func() error

// FileWatcher watches a single file for writes, creates, and renames.
type FileWatcher struct {
	path     string
	debounce time.Duration
	onChange OnChange
	log      *logger.Logger

	fsw *fsnotify.Watcher

	mu    sync.Mutex
	timer *time.Timer

	done     chan struct{}
	stopOnce sync.Once
}

// New creates a watcher for path. The file must exist; its parent
// directory is what actually gets registered with fsnotify.
func New(path string, debounce time.Duration, onChange OnChange, log *logger.Logger) (*FileWatcher, error) {
	path = filepath.Clean(path)

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("stat watched file: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	if err := fsw.Add(filepath.Dir(path)); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watch directory: %w", err)
	}

	return &FileWatcher{
		path:     path,
		debounce: debounce,
		onChange: onChange,
		log:      log,
		fsw:      fsw,
		done:     make(chan struct{}),
	}, nil
}

// Path returns the watched file path.
func (w *FileWatcher) Path() string { return w.path }

// Start processes events until the context is canceled or Stop is called.
// It blocks; run it in its own goroutine.
func (w *FileWatcher) Start(ctx context.Context) error {
	w.log.Info("watching dataset file", "path", w.path, "debounce", w.debounce)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.done:
			return nil
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.WithError(err).Warn("watcher error")
		}
	}
}

// Stop shuts the watcher down and releases the fsnotify handle.
func (w *FileWatcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)

		w.mu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()

		err = w.fsw.Close()
	})
	return err
}

// handleEvent filters directory events down to the watched file and arms
// the debounce timer.
func (w *FileWatcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}

	w.log.Debug("dataset file changed", "op", event.Op.String())

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.fire)
}

// fire runs the change callback once the file has settled.
func (w *FileWatcher) fire() {
	select {
	case <-w.done:
		return
	default:
	}

	// The file may have been renamed away and not yet replaced.
	if _, err := os.Stat(w.path); err != nil {
		w.log.Warn("watched file missing, skipping reload", "path", w.path)
		return
	}

	if err := w.onChange(); err != nil {
		w.log.WithError(err).Error("reload after file change failed")
		return
	}

	w.log.Info("dataset reloaded after file change", "path", w.path)
}
