// Package app wires configuration, the simulated browser and one dispatch
// engine per view into a runnable shell.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/dshills/modeshell/internal/config"
	"github.com/dshills/modeshell/internal/engine"
	"github.com/dshills/modeshell/internal/host"
	"github.com/dshills/modeshell/internal/host/sim"
	"github.com/dshills/modeshell/internal/input/key"
	"github.com/dshills/modeshell/internal/input/keymap"
	"github.com/dshills/modeshell/internal/input/leader"
	"github.com/dshills/modeshell/internal/router"
)

// Options configures the shell.
type Options struct {
	// ConfigPath is the configuration file. Empty means defaults and
	// environment only.
	ConfigPath string

	// Config, when set, is used instead of loading ConfigPath.
	Config *config.Config

	// LogLevel overrides the configured level.
	LogLevel string

	// Debug forces debug logging.
	Debug bool

	// Watch reloads the configuration file when it changes.
	Watch bool

	// LogOutput receives log lines when no log file is configured.
	// Nil discards them.
	LogOutput io.Writer

	// Surfaces selects which capture surfaces see each key press.
	// Zero means the content view only.
	Surfaces router.Targets

	// Clock overrides the clock used for the compose window.
	Clock leader.Clock
}

// Shell owns the browser and one engine per open view.
type Shell struct {
	mu    sync.RWMutex
	cfg   *config.Config
	table *keymap.Table
	views map[host.ViewID]*view

	browser   *sim.Browser
	metrics   *engine.Metrics
	log       *Logger
	logCloser io.Closer
	watcher   *config.Watcher

	serial    atomic.Uint64
	running   atomic.Bool
	closeOnce sync.Once
	closeErr  error

	opts Options
}

// view is one content surface with its pipeline.
type view struct {
	page   *sim.Page
	engine *engine.Engine
	router *router.Router
}

// New builds a shell and opens the first view.
func New(opts Options) (*Shell, error) {
	if opts.Surfaces == 0 {
		opts.Surfaces = router.ToContent
	}
	if opts.Clock == nil {
		opts.Clock = leader.SystemClock
	}

	cfg := opts.Config
	if cfg == nil {
		var err error
		if cfg, err = config.Load(opts.ConfigPath); err != nil {
			return nil, NewComponentError("config", "load", err)
		}
	}

	table, err := cfg.Table()
	if err != nil {
		return nil, NewComponentError("config", "build key table", err)
	}

	out := opts.LogOutput
	if out == nil {
		out = io.Discard
	}
	logger, closer, err := OpenLogger(cfg.Logging, out)
	if err != nil {
		return nil, NewComponentError("logging", "open", err)
	}

	s := &Shell{
		cfg:       cfg,
		table:     table,
		views:     make(map[host.ViewID]*view),
		metrics:   engine.NewMetrics(),
		log:       logger,
		logCloser: closer,
		opts:      opts,
	}
	s.applyLogLevel(cfg)

	s.browser = sim.NewBrowser(
		sim.WithLatency(cfg.Page.Latency.Std()),
		sim.WithURL(cfg.Page.Home),
	)
	s.browser.OnCreate(s.attach)
	s.browser.OnClose(s.detach)

	if opts.Watch && cfg.Path != "" {
		w, err := config.NewWatcher(cfg.Path)
		if err != nil {
			s.log.Warn("config watch disabled: %v", err)
		} else {
			w.OnReload(s.onReload)
			s.watcher = w
		}
	}

	if _, err := s.browser.Open(context.Background()); err != nil {
		_ = s.Close()
		return nil, NewComponentError("browser", "open first view", err)
	}

	s.log.Info("started with leader %s, %d key table rows", table.Leader().VimString(), table.Len())
	return s, nil
}

// attach builds the pipeline for a newly created page.
func (s *Shell) attach(p *sim.Page) {
	s.mu.Lock()
	defer s.mu.Unlock()

	vlog := s.log.WithField("view", shortID(p.ID()))
	eng, err := engine.New(s.browser.Surface(p), s.table,
		engine.WithScripts(sim.Lua),
		engine.WithClock(s.opts.Clock),
		engine.WithLogger(vlog),
		engine.WithMetrics(s.metrics),
		engine.WithScrollStep(s.cfg.Scroll.Step),
		engine.WithComposeTimeout(s.cfg.Leader.Timeout.Std()),
	)
	if err != nil {
		s.log.Error("view %s: %v", p.ID(), err)
		return
	}

	s.views[p.ID()] = &view{page: p, engine: eng, router: router.New(eng)}
	vlog.Debug("view attached")
}

func (s *Shell) detach(id host.ViewID) {
	s.mu.Lock()
	delete(s.views, id)
	s.mu.Unlock()
	s.log.Debug("view %s closed", shortID(id))
}

func shortID(id host.ViewID) string {
	if len(id) > 8 {
		return string(id[:8])
	}
	return string(id)
}

// HandleKey delivers one key press to the focused view. When no surface
// stops it the page's default handling runs. ErrQuit is returned once the
// session has ended.
func (s *Shell) HandleKey(ctx context.Context, ev key.Event) (d router.Delivery, err error) {
	if s.Done() {
		return d, ErrQuit
	}

	v := s.focused()
	if v == nil {
		return d, ErrNoView
	}
	if ev.Serial == 0 {
		ev = ev.WithSerial(s.serial.Add(1))
	}

	defer func() {
		if r := recover(); r != nil {
			err = NewRecoveredPanicError(r, string(debug.Stack()))
			s.log.Error("key %s: %v", ev, r)
		}
	}()

	d = v.router.Deliver(ctx, ev, s.opts.Surfaces)
	if !d.Stopped() && !v.page.Closed() {
		v.page.Default(ev)
	}

	if s.Done() {
		return d, ErrQuit
	}
	return d, nil
}

// Run feeds keys to the shell until the session ends, keys closes or ctx
// is cancelled. update, when set, is called after every key.
func (s *Shell) Run(ctx context.Context, keys <-chan key.Event, update func(Status)) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer s.running.Store(false)

	if update != nil {
		update(s.Status())
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-s.browser.Done():
			return nil

		case ev, ok := <-keys:
			if !ok {
				return nil
			}
			_, err := s.HandleKey(ctx, ev)
			switch {
			case errors.Is(err, ErrQuit):
				return nil
			case err != nil:
				s.log.Warn("key %s: %v", ev, err)
			}
			if update != nil {
				update(s.Status())
			}
		}
	}
}

func (s *Shell) focused() *view {
	p := s.browser.Focused()
	if p == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.views[p.ID()]
}

// onReload applies a configuration delivered by the watcher.
func (s *Shell) onReload(cfg *config.Config, err error) {
	if err != nil {
		s.log.Warn("config reload rejected, keeping current settings: %v", err)
		return
	}
	if err := s.Reload(cfg); err != nil {
		s.log.Warn("config reload rejected, keeping current settings: %v", err)
		return
	}
	s.log.Info("configuration reloaded from %s", cfg.Path)
}

// Reload swaps in cfg for every open view. Page settings apply to views
// opened afterwards.
func (s *Shell) Reload(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	table, err := cfg.Table()
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.cfg = cfg
	s.table = table
	views := make([]*view, 0, len(s.views))
	for _, v := range s.views {
		views = append(views, v)
	}
	s.mu.Unlock()

	for _, v := range views {
		if err := v.engine.SetTable(table); err != nil {
			return NewOperationError("reload", string(v.page.ID()), err)
		}
		v.engine.SetComposeTimeout(cfg.Leader.Timeout.Std())
		v.engine.SetScrollStep(cfg.Scroll.Step)
	}
	s.applyLogLevel(cfg)
	return nil
}

func (s *Shell) applyLogLevel(cfg *config.Config) {
	switch {
	case s.opts.Debug:
		s.log.SetLevel(LogLevelDebug)
	case s.opts.LogLevel != "":
		s.log.SetLevel(ParseLogLevel(s.opts.LogLevel))
	default:
		s.log.SetLevel(ParseLogLevel(cfg.Logging.Level))
	}
}

// Config returns the active configuration.
func (s *Shell) Config() *config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Table returns the active key table.
func (s *Shell) Table() *keymap.Table {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.table
}

// Browser returns the simulated browser.
func (s *Shell) Browser() *sim.Browser {
	return s.browser
}

// Engine returns the engine for view id, or nil.
func (s *Shell) Engine(id host.ViewID) *engine.Engine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.views[id]; ok {
		return v.engine
	}
	return nil
}

// Metrics returns the metrics shared by every view.
func (s *Shell) Metrics() *engine.Metrics {
	return s.metrics
}

// Logger returns the shell logger.
func (s *Shell) Logger() *Logger {
	return s.log
}

// Done reports whether the session has ended.
func (s *Shell) Done() bool {
	select {
	case <-s.browser.Done():
		return true
	default:
		return false
	}
}

// Close stops the watcher, closes every view and the log file.
func (s *Shell) Close() error {
	s.closeOnce.Do(func() {
		errs := NewErrorList()
		if s.watcher != nil {
			errs.Add(s.watcher.Close())
		}

		s.mu.RLock()
		pages := make([]*sim.Page, 0, len(s.views))
		for _, v := range s.views {
			pages = append(pages, v.page)
		}
		s.mu.RUnlock()

		s.browser.Close()
		for _, p := range pages {
			p.Wait()
		}

		s.log.Info("shut down after %d keys", s.metrics.Snapshot().KeysTotal)
		errs.Add(s.logCloser.Close())
		if errs.HasErrors() {
			s.closeErr = fmt.Errorf("close: %w", errs)
		}
	})
	return s.closeErr
}
