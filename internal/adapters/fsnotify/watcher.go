// Package fsnotify implements the ports.Watcher interface using github.com/fsnotify/fsnotify.
// It watches individual files by watching their parent directories, so files that
// are rotated, replaced or created after Watch starts are still seen. Bursts of
// events for the same file are coalesced (editors and loggers often write several
// times per update).
package fsnotify

import (
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/corey/tally/internal/ports"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period after the last event for a file before
// onChange fires.
const DefaultDebounce = 100 * time.Millisecond

// Watcher implements ports.Watcher using fsnotify.
type Watcher struct {
	fw       *fsnotify.Watcher
	debounce time.Duration
	onError  func(error)

	mu      sync.Mutex
	cbMu    sync.Mutex // serializes onChange
	timers  map[string]*time.Timer
	done    chan struct{}
	stopped bool
	wg      sync.WaitGroup
}

var _ ports.Watcher = (*Watcher)(nil)

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period. Zero fires on every event.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithErrorHandler receives errors reported by fsnotify. Without one they are dropped.
func WithErrorHandler(fn func(error)) Option {
	return func(w *Watcher) { w.onError = fn }
}

// NewWatcher creates a new file watcher.
func NewWatcher(opts ...Option) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		fw:       fw,
		debounce: DefaultDebounce,
		timers:   make(map[string]*time.Timer),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Watch starts monitoring the given files.
// onChange is called with the absolute path of a file after it was written,
// created, removed or renamed. Calls are serialized.
func (w *Watcher) Watch(paths []string, onChange func(filePath string)) error {
	if len(paths) == 0 {
		return errors.New("no files to watch")
	}

	targets := make(map[string]bool, len(paths))
	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return err
		}
		targets[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := w.fw.Add(dir); err != nil {
			return err
		}
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			select {
			case event, ok := <-w.fw.Events:
				if !ok {
					return
				}
				path := filepath.Clean(event.Name)
				if !targets[path] {
					continue
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
					event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
					w.schedule(path, onChange)
				}

			case err, ok := <-w.fw.Errors:
				if !ok {
					return
				}
				if w.onError != nil {
					w.onError(err)
				}

			case <-w.done:
				return
			}
		}
	}()

	return nil
}

// schedule fires onChange once path has been quiet for the debounce interval.
func (w *Watcher) schedule(path string, onChange func(string)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}

	if t, ok := w.timers[path]; ok {
		t.Reset(w.debounce)
		return
	}
	w.timers[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, path)
		stopped := w.stopped
		w.mu.Unlock()
		if stopped {
			return
		}
		w.cbMu.Lock()
		defer w.cbMu.Unlock()
		onChange(path)
	})
}

// Stop ends monitoring and releases all resources.
// Pending callbacks are cancelled. Safe to call multiple times.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	for path, t := range w.timers {
		t.Stop()
		delete(w.timers, path)
	}
	close(w.done)
	w.mu.Unlock()

	err := w.fw.Close()
	w.wg.Wait()
	return err
}
