package sim

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/modeshell/internal/host"
	"github.com/dshills/modeshell/internal/input/key"
)

// PageOption configures a Page.
type PageOption func(*Page)

// WithLatency delays every script completion by d, simulating the round
// trip into a rendering process.
func WithLatency(d time.Duration) PageOption {
	return func(p *Page) {
		if d > 0 {
			p.latency = d
		}
	}
}

// WithQueueSize sets how many pending operations a page accepts.
func WithQueueSize(n int) PageOption {
	return func(p *Page) {
		p.queueSize = n
	}
}

// WithURL sets the initial document address.
func WithURL(url string) PageOption {
	return func(p *Page) {
		p.url = url
	}
}

// Page is a simulated content view backed by a Lua document model.
// It implements host.ScriptBridge, host.Content and host.History.
type Page struct {
	id        host.ViewID
	exec      *executor
	panel     *Panel
	latency   time.Duration
	queueSize int
	url       string

	// pending tracks delayed completions so Close can wait for them.
	pending sync.WaitGroup
}

// State is a point-in-time copy of the page model.
type State struct {
	URL         string
	Focus       string
	Editable    bool
	Value       string
	ScrollX     int
	ScrollY     int
	Reloads     int
	HardReloads int
	CanBack     bool
	CanForward  bool
}

// BlankURL is the address a page starts on.
const BlankURL = "about:blank"

// NewPage creates a page and starts its goroutine.
func NewPage(id host.ViewID, opts ...PageOption) (*Page, error) {
	p := &Page{id: id}
	for _, opt := range opts {
		opt(p)
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(L)
	if err := L.DoString(prelude); err != nil {
		L.Close()
		return nil, fmt.Errorf("load page model: %w", err)
	}
	if p.url != "" && p.url != BlankURL {
		if err := L.CallByParam(lua.P{
			Fn:      L.GetField(L.GetGlobal("page"), "navigate"),
			Protect: true,
		}, lua.LString(p.url)); err != nil {
			L.Close()
			return nil, fmt.Errorf("open %s: %w", p.url, err)
		}
	}

	p.exec = newExecutor(L, p.queueSize)
	p.panel = NewPanel()
	return p, nil
}

// openSafeLibraries opens only the Lua libraries the page model needs.
// io, os, debug and package are intentionally not opened.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// ID returns the view identifier.
func (p *Page) ID() host.ViewID {
	return p.id
}

// Panel returns the page's inspector panel.
func (p *Page) Panel() *Panel {
	return p.panel
}

// Evaluate implements host.ScriptBridge. The script runs on the page
// goroutine; done is called exactly once, after the configured latency.
func (p *Page) Evaluate(ctx context.Context, script string, done func(host.Value, error)) {
	var once sync.Once
	finish := func(v host.Value, err error) {
		once.Do(func() { done(v, err) })
	}

	err := p.exec.post(job{
		run: func(L *lua.LState) {
			v, err := evalScript(ctx, L, script)
			p.deliver(finish, v, err)
		},
		fail: func(err error) {
			finish(nil, surfaceErr(err))
		},
	})
	if err != nil {
		finish(nil, surfaceErr(err))
	}
}

func (p *Page) deliver(finish func(host.Value, error), v host.Value, err error) {
	if p.latency <= 0 {
		finish(v, err)
		return
	}
	p.pending.Add(1)
	time.AfterFunc(p.latency, func() {
		defer p.pending.Done()
		finish(v, err)
	})
}

func surfaceErr(err error) error {
	if err == ErrClosed {
		return fmt.Errorf("%w: %v", host.ErrSurfaceGone, err)
	}
	return err
}

// evalScript runs script as a chunk and encodes its first return value.
func evalScript(ctx context.Context, L *lua.LState, script string) (host.Value, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fn, err := L.LoadString(script)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", host.ErrScriptFailed, err)
	}

	L.SetContext(ctx)
	defer L.RemoveContext()

	L.Push(fn)
	if err := L.PCall(0, 1, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", host.ErrScriptFailed, err)
	}
	ret := L.Get(-1)
	L.Pop(1)
	return encodeValue(ret)
}

// call invokes page.<name>(args...) and returns its first result.
func (p *Page) call(name string, args ...lua.LValue) (lua.LValue, error) {
	var out lua.LValue = lua.LNil
	err := p.exec.do(context.Background(), func(L *lua.LState) error {
		fn := L.GetField(L.GetGlobal("page"), name)
		if fn.Type() != lua.LTFunction {
			return fmt.Errorf("page.%s is not a function", name)
		}
		if err := L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, args...); err != nil {
			return err
		}
		out = L.Get(-1)
		L.Pop(1)
		return nil
	})
	return out, err
}

func (p *Page) callBool(name string, args ...lua.LValue) bool {
	v, err := p.call(name, args...)
	return err == nil && lua.LVAsBool(v)
}

// Reload implements host.Content.
func (p *Page) Reload() { _, _ = p.call("reload", lua.LFalse) }

// ReloadBypassCache implements host.Content.
func (p *Page) ReloadBypassCache() { _, _ = p.call("reload", lua.LTrue) }

// GoBack implements host.Content.
func (p *Page) GoBack() { _, _ = p.call("back") }

// GoForward implements host.Content.
func (p *Page) GoForward() { _, _ = p.call("forward") }

// CanGoBack implements host.History.
func (p *Page) CanGoBack() bool { return p.callBool("can_go_back") }

// CanGoForward implements host.History.
func (p *Page) CanGoForward() bool { return p.callBool("can_go_forward") }

// Navigate loads url, discarding forward history.
func (p *Page) Navigate(url string) error {
	_, err := p.call("navigate", lua.LString(url))
	return err
}

// Focus moves focus to the named element.
func (p *Page) Focus(name string) error {
	v, err := p.call("focus_on", lua.LString(name))
	if err != nil {
		return err
	}
	if !lua.LVAsBool(v) {
		return fmt.Errorf("%w: %q", ErrNoElement, name)
	}
	return nil
}

// Blur returns focus to the document body.
func (p *Page) Blur() error {
	_, err := p.call("blur")
	return err
}

// Default performs the page's own handling of a key the engine let
// through: Tab cycles focus, Escape blurs, Enter activates the focused
// element, Backspace erases and printable characters are typed into an
// editable element. It reports whether the page consumed the key.
func (p *Page) Default(ev key.Event) bool {
	if ev.Modifiers.Has(key.ModCtrl | key.ModAlt | key.ModMeta) {
		return false
	}
	switch ev.Key {
	case key.KeyTab:
		_, err := p.call("focus_next")
		return err == nil
	case key.KeyEscape:
		return p.Blur() == nil
	case key.KeyEnter:
		return p.callBool("activate")
	case key.KeyBackspace:
		return p.callBool("erase")
	case key.KeyRune:
		if ev.Rune == 0 {
			return false
		}
		return p.callBool("type", lua.LString(string(ev.Rune)))
	}
	return false
}

// State returns a copy of the page model.
func (p *Page) State() (State, error) {
	var s State
	err := p.exec.do(context.Background(), func(L *lua.LState) error {
		pg, ok := L.GetGlobal("page").(*lua.LTable)
		if !ok {
			return errors.New("page model missing")
		}
		str := func(k string) string { return lua.LVAsString(pg.RawGetString(k)) }
		num := func(k string) int { return int(lua.LVAsNumber(pg.RawGetString(k))) }
		call := func(k string) lua.LValue {
			if err := L.CallByParam(lua.P{Fn: pg.RawGetString(k), NRet: 1, Protect: true}); err != nil {
				return lua.LNil
			}
			v := L.Get(-1)
			L.Pop(1)
			return v
		}

		s = State{
			URL:         str("url"),
			Focus:       str("focus"),
			ScrollX:     num("scroll_x"),
			ScrollY:     num("scroll_y"),
			Reloads:     num("reloads"),
			HardReloads: num("hard_reloads"),
			Editable:    lua.LVAsBool(call("editable")),
			Value:       lua.LVAsString(call("value")),
			CanBack:     lua.LVAsBool(call("can_go_back")),
			CanForward:  lua.LVAsBool(call("can_go_forward")),
		}
		return nil
	})
	return s, err
}

// Closed reports whether the page was closed.
func (p *Page) Closed() bool {
	return p.exec.isClosed()
}

// Close stops the page. Pending and later script evaluations complete
// with host.ErrSurfaceGone. The inspector panel is closed as well.
func (p *Page) Close() {
	p.exec.Close()
	p.panel.Close()
}

// Wait blocks until the page goroutine has exited and every delayed
// completion has been delivered.
func (p *Page) Wait() {
	p.exec.wait()
	p.pending.Wait()
}
