package meta

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/yaklabco/ritobin-lsp/internal/logging"
)

// DefaultDebounce is how long the watcher waits for writes to settle before
// reloading.
const DefaultDebounce = 250 * time.Millisecond

// Watcher reloads a Service whenever its dump file changes on disk.
//
// The parent directory is watched rather than the file itself so that
// editors and tools replacing the file by rename are picked up.
type Watcher struct {
	service  *Service
	path     string
	debounce time.Duration
	watcher  *fsnotify.Watcher

	// reloaded receives the outcome of every reload; used by tests.
	reloaded chan error

	done     chan struct{}
	stopOnce sync.Once
}

// NewWatcher creates a watcher for path. Call Start to begin watching.
func NewWatcher(service *Service, path string, debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve meta path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	return &Watcher{
		service:  service,
		path:     abs,
		debounce: debounce,
		watcher:  watcher,
		reloaded: make(chan error, 1),
		done:     make(chan struct{}),
	}, nil
}

// Reloaded returns a channel receiving the result of each reload. Results
// are dropped when nobody is receiving.
func (w *Watcher) Reloaded() <-chan error {
	return w.reloaded
}

// Start begins watching. It returns once the watch is registered; events are
// processed until ctx is canceled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}
	go w.loop(ctx)
	return nil
}

// Stop stops the watcher. It is safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		_ = w.watcher.Close()
	})
}

func (w *Watcher) loop(ctx context.Context) {
	defer w.Stop()

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.service.logger.Warn("Metadata watcher error", logging.FieldError, err)
		case <-fire:
			fire = nil
			w.reload()
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}

func (w *Watcher) reload() {
	err := w.service.Load(w.path)
	if err != nil {
		w.service.logger.Warn("Metadata reload failed, keeping previous index", logging.FieldPath, w.path, logging.FieldError, err)
	}
	select {
	case w.reloaded <- err:
	default:
	}
}
