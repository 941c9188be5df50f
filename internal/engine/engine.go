package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dshills/modeshell/internal/host"
	"github.com/dshills/modeshell/internal/input/key"
	"github.com/dshills/modeshell/internal/input/keymap"
	"github.com/dshills/modeshell/internal/input/leader"
	"github.com/dshills/modeshell/internal/input/mode"
	"github.com/dshills/modeshell/internal/inspector"
)

// Engine dispatches key presses for one content view.
type Engine struct {
	mu sync.Mutex

	surface host.Surface
	table   *keymap.Table
	timer   *leader.Timer
	oracle  *mode.Oracle
	insp    *inspector.Tracker

	scripts host.Scripts
	step    int
	timeout time.Duration
	clock   leader.Clock
	log     Logger
	metrics *Metrics

	// last is the outcome of the most recent serialed key press. A second
	// delivery of the same press reuses it instead of running the command
	// again.
	last struct {
		serial    uint64
		mode      mode.Mode
		composing bool
		res       keymap.Result
	}
}

// Decision is the full outcome of one HandleKey call.
type Decision struct {
	Source      Source
	Event       key.Event
	Token       key.Token
	Mode        mode.Mode
	Composing   bool
	Action      keymap.Action
	Count       int
	Propagation keymap.Propagation

	// Repeat is set when the press was already handled through the other
	// surface. Nothing was executed; the earlier decision is reported.
	Repeat bool
}

// String renders the decision as a log line.
func (d Decision) String() string {
	line := fmt.Sprintf("surface=%s key=%s mode=%s composing=%t action=%s %s",
		d.Source, d.Event, d.Mode, d.Composing, d.Action, d.Propagation)
	if d.Repeat {
		line += " repeat"
	}
	return line
}

// New creates an engine bound to surface.
func New(surface host.Surface, table *keymap.Table, opts ...Option) (*Engine, error) {
	if table == nil {
		return nil, ErrNoTable
	}

	e := &Engine{
		surface: surface,
		table:   table,
		scripts: host.JavaScript,
		step:    DefaultScrollStep,
		timeout: DefaultComposeTimeout,
		clock:   leader.SystemClock,
		log:     nopLogger{},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.metrics == nil {
		e.metrics = NewMetrics()
	}

	e.timer = leader.NewTimer(table.Leader(), e.timeout)
	e.oracle = mode.NewOracle(surface.Bridge, e.scripts.ModeQuery,
		mode.WithErrorHandler(e.queryFailed))
	e.insp = inspector.NewTracker(surface.Inspector)

	return e, nil
}

// HandleKey runs one key press from src through the pipeline and returns
// whether the host should continue its default handling.
//
// A press carrying the same non-zero serial as the previous one is the
// same physical key seen by a second surface: it is answered with the
// earlier propagation and the command is not run again.
func (e *Engine) HandleKey(ctx context.Context, src Source, ev key.Event) keymap.Propagation {
	return e.Handle(ctx, src, ev).Propagation
}

// Handle is HandleKey returning the whole decision.
func (e *Engine) Handle(ctx context.Context, src Source, ev key.Event) Decision {
	start := time.Now()
	tok := key.Normalize(ev)

	e.mu.Lock()
	if ev.Serial != 0 && ev.Serial == e.last.serial {
		last := e.last
		e.mu.Unlock()

		d := Decision{
			Source:      src,
			Event:       ev,
			Token:       tok,
			Mode:        last.mode,
			Composing:   last.composing,
			Action:      last.res.Action,
			Count:       last.res.Count,
			Propagation: last.res.Propagation,
			Repeat:      true,
		}
		e.metrics.RecordRepeat(src, last.res)
		e.log.Debug("%s", d)
		return d
	}

	e.oracle.Refresh(ctx)
	now := e.clock.Now()
	m := e.oracle.Current()
	composing := e.timer.Composing(now)
	res := e.table.Dispatch(m, tok, composing)
	if res.Action == keymap.ActionArmLeader {
		e.timer.Arm(now)
	}
	if ev.Serial != 0 {
		e.last.serial = ev.Serial
		e.last.mode = m
		e.last.composing = composing
		e.last.res = res
	}
	step := e.step
	e.mu.Unlock()

	e.execute(ctx, res, step)

	d := Decision{
		Source:      src,
		Event:       ev,
		Token:       tok,
		Mode:        m,
		Composing:   composing,
		Action:      res.Action,
		Count:       res.Count,
		Propagation: res.Propagation,
	}
	e.metrics.RecordKey(src, res, composing, time.Since(start))
	e.log.Debug("%s", d)
	return d
}

// execute performs the side effects of res against the host.
func (e *Engine) execute(ctx context.Context, res keymap.Result, step int) {
	s := e.surface
	switch res.Action {
	case keymap.ActionNone, keymap.ActionPassThrough, keymap.ActionSuppress, keymap.ActionArmLeader:
		// Leader arming happens under the lock in Handle.

	case keymap.ActionScrollDown:
		e.run(ctx, res.Action, e.scripts.Scroll(0, step*res.Count))
	case keymap.ActionScrollUp:
		e.run(ctx, res.Action, e.scripts.Scroll(0, -step*res.Count))
	case keymap.ActionScrollRight:
		e.run(ctx, res.Action, e.scripts.Scroll(step*res.Count, 0))
	case keymap.ActionScrollLeft:
		e.run(ctx, res.Action, e.scripts.Scroll(-step*res.Count, 0))
	case keymap.ActionScrollTop:
		e.run(ctx, res.Action, e.scripts.ScrollTop)
	case keymap.ActionScrollBottom:
		e.run(ctx, res.Action, e.scripts.ScrollBottom)

	case keymap.ActionGoBack:
		if e.need(res.Action, s.Content != nil) {
			if h, ok := s.Content.(host.History); ok && !h.CanGoBack() {
				e.log.Debug("%s: history empty", res.Action)
				return
			}
			s.Content.GoBack()
		}
	case keymap.ActionGoForward:
		if e.need(res.Action, s.Content != nil) {
			if h, ok := s.Content.(host.History); ok && !h.CanGoForward() {
				e.log.Debug("%s: history empty", res.Action)
				return
			}
			s.Content.GoForward()
		}
	case keymap.ActionReload:
		if e.need(res.Action, s.Content != nil) {
			s.Content.Reload()
		}
	case keymap.ActionHardReload:
		if e.need(res.Action, s.Content != nil) {
			s.Content.ReloadBypassCache()
		}

	case keymap.ActionToggleInspector:
		if e.need(res.Action, e.insp.Available()) {
			visible := e.insp.Toggle()
			e.log.Debug("inspector visible=%t", visible)
		}

	case keymap.ActionNewTab:
		if e.need(res.Action, s.Views != nil) {
			id, err := s.Views.CreateView(ctx)
			if err != nil {
				e.log.Warn("%s: %v", res.Action, err)
				return
			}
			s.Views.FocusView(id)
		}
	case keymap.ActionCloseView:
		if e.need(res.Action, s.Views != nil) {
			s.Views.CloseView(s.View)
		}
	case keymap.ActionCloseWindow:
		if e.need(res.Action, s.Window != nil) {
			s.Window.Close()
		}
	case keymap.ActionQuit:
		if e.need(res.Action, s.Window != nil) {
			s.Window.Quit()
		}

	default:
		e.log.Warn("unhandled action %q", res.Action)
	}
}

// need logs and counts a missing capability. It returns ok.
func (e *Engine) need(a keymap.Action, ok bool) bool {
	if !ok {
		e.metrics.RecordMissingCapability()
		e.log.Debug("%s: %v", a, ErrMissingCapability)
	}
	return ok
}

// run sends a side-effecting snippet through the bridge.
func (e *Engine) run(ctx context.Context, a keymap.Action, script string) {
	bridge := e.surface.Bridge
	if !e.need(a, bridge != nil) {
		return
	}
	bridge.Evaluate(ctx, script, func(_ host.Value, err error) {
		if err != nil {
			e.log.Debug("%s: %v", a, err)
		}
	})
}

func (e *Engine) queryFailed(gen uint64, err error) {
	e.metrics.RecordQueryFailure()
	e.log.Debug("mode query %d failed: %v", gen, err)
}

// SetTable replaces the command table. The leader window keeps its
// armed instant.
func (e *Engine) SetTable(t *keymap.Table) error {
	if t == nil {
		return ErrNoTable
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.table = t
	e.timer.Reconfigure(t.Leader(), e.timeout)
	return nil
}

// SetComposeTimeout changes the leader window. Non-positive values are ignored.
func (e *Engine) SetComposeTimeout(d time.Duration) {
	if d <= 0 {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.timeout = d
	e.timer.Reconfigure(e.table.Leader(), d)
}

// SetScrollStep changes the scroll unit. Non-positive values are ignored.
func (e *Engine) SetScrollStep(px int) {
	if px <= 0 {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.step = px
}

// Table returns the current command table.
func (e *Engine) Table() *keymap.Table {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.table
}

// View returns the identifier of the bound content view.
func (e *Engine) View() host.ViewID {
	return e.surface.View
}

// Mode returns the cached mode.
func (e *Engine) Mode() mode.Mode {
	return e.oracle.Current()
}

// Composing reports whether the leader window is open now.
func (e *Engine) Composing() bool {
	return e.timer.Composing(e.clock.Now())
}

// Oracle returns the mode oracle.
func (e *Engine) Oracle() *mode.Oracle {
	return e.oracle
}

// Inspector returns the inspector tracker.
func (e *Engine) Inspector() *inspector.Tracker {
	return e.insp
}

// Metrics returns the metrics collector.
func (e *Engine) Metrics() *Metrics {
	return e.metrics
}
