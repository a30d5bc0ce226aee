// Package watcher provides file watching with debouncing using fsnotify.
// watcher.go reports changes to a single file, such as a workload definition.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the file must be quiet before a change is
// reported.
const DefaultDebounce = 200 * time.Millisecond

// ErrAlreadyStarted is returned by Start on a running watcher.
var ErrAlreadyStarted = errors.New("watcher already started")

// FileWatcher reports writes, creates and renames of one file. Editors that
// save by rename are handled by watching the parent directory.
type FileWatcher struct {
	path     string
	debounce time.Duration
	changes  chan string

	mu         sync.Mutex
	fs         *fsnotify.Watcher
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
}

// FileWatcherOption configures a FileWatcher.
type FileWatcherOption func(*FileWatcher)

// WithDebounce sets the quiet period before a change is reported.
func WithDebounce(d time.Duration) FileWatcherOption {
	return func(w *FileWatcher) {
		if d >= 0 {
			w.debounce = d
		}
	}
}

// NewFileWatcher returns a stopped watcher for path.
func NewFileWatcher(path string, opts ...FileWatcherOption) *FileWatcher {
	w := &FileWatcher{
		path:     filepath.Clean(path),
		debounce: DefaultDebounce,
		changes:  make(chan string, 1),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Changes delivers the watched path after each debounced burst of events.
// Bursts that arrive while a previous change is unread are coalesced.
func (w *FileWatcher) Changes() <-chan string {
	return w.changes
}

// Path returns the watched file.
func (w *FileWatcher) Path() string {
	return w.path
}

// Start begins watching in a background goroutine until ctx is done or Stop
// is called.
func (w *FileWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fs != nil {
		return ErrAlreadyStarted
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		fsw.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}

	ctx, cancel := context.WithCancel(ctx)
	w.fs = fsw
	w.cancelFunc = cancel

	w.wg.Add(1)
	go w.run(ctx, fsw)

	slog.Debug("watching file", "path", w.path, "debounce", w.debounce)
	return nil
}

// Stop halts the watcher and waits for its goroutine to exit.
func (w *FileWatcher) Stop() {
	w.mu.Lock()
	cancel, fsw := w.cancelFunc, w.fs
	w.cancelFunc, w.fs = nil, nil
	w.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	w.wg.Wait()
	if fsw != nil {
		fsw.Close()
	}
}

func (w *FileWatcher) run(ctx context.Context, fsw *fsnotify.Watcher) {
	defer w.wg.Done()

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			select {
			case w.changes <- w.path:
			default:
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			slog.Warn("file watcher error", "path", w.path, "error", err)
		}
	}
}
