package config

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces the burst of events an editor save produces.
const DefaultDebounce = 100 * time.Millisecond

// ErrWatcherClosed is returned when operating on a closed watcher.
var ErrWatcherClosed = errors.New("watcher is closed")

// ReloadFunc receives the reloaded configuration, or the error that
// prevented it. On error the previous configuration stays in effect.
type ReloadFunc func(cfg *Config, err error)

// Watcher reloads a configuration file when it changes on disk.
//
// The file's directory is watched rather than the file itself, since many
// editors save by writing a new file and renaming it over the old one.
type Watcher struct {
	mu sync.Mutex

	path     string
	fsw      *fsnotify.Watcher
	debounce time.Duration
	lookup   LookupFunc
	handlers []ReloadFunc
	timer    *time.Timer
	reloads  int

	closed  bool
	closeCh chan struct{}
	wg      sync.WaitGroup
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets the quiet period before a reload.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d >= 0 {
			w.debounce = d
		}
	}
}

// WithLookup sets the environment lookup applied on every reload.
func WithLookup(fn LookupFunc) WatcherOption {
	return func(w *Watcher) {
		if fn != nil {
			w.lookup = fn
		}
	}
}

// NewWatcher starts watching path.
func NewWatcher(path string, opts ...WatcherOption) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if _, err := FormatFor(abs); err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	w := &Watcher{
		path:     abs,
		fsw:      fsw,
		debounce: DefaultDebounce,
		lookup:   os.LookupEnv,
		closeCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	w.wg.Add(1)
	go w.processLoop()
	return w, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// OnReload registers a handler for reloads.
func (w *Watcher) OnReload(fn ReloadFunc) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers = append(w.handlers, fn)
}

// Reloads returns how many reloads have been attempted.
func (w *Watcher) Reloads() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.reloads
}

// processLoop handles incoming fsnotify events.
func (w *Watcher) processLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.closeCh:
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Op.Has(fsnotify.Write) || ev.Op.Has(fsnotify.Create) ||
				ev.Op.Has(fsnotify.Rename) || ev.Op.Has(fsnotify.Remove) {
				w.schedule()
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.emit(nil, err)
		}
	}
}

// schedule arms the debounce timer, restarting it if already armed.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

func (w *Watcher) reload() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.reloads++
	lookup := w.lookup
	w.mu.Unlock()

	cfg, err := LoadFile(w.path)
	if err == nil {
		err = ApplyEnv(cfg, lookup)
	}
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		cfg = nil
	}
	w.emit(cfg, err)
}

// emit calls all handlers. A panicking handler does not stop the watcher.
func (w *Watcher) emit(cfg *Config, err error) {
	w.mu.Lock()
	handlers := make([]ReloadFunc, len(w.handlers))
	copy(handlers, w.handlers)
	w.mu.Unlock()

	for _, h := range handlers {
		safeCall(h, cfg, err)
	}
}

func safeCall(h ReloadFunc, cfg *Config, err error) {
	defer func() {
		_ = recover()
	}()
	h(cfg, err)
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrWatcherClosed
	}
	w.closed = true
	close(w.closeCh)
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	w.wg.Wait()
	return w.fsw.Close()
}
