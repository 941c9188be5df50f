// Package router binds the dispatch engine of a content view to the two
// surfaces that capture key events: the host window and the content view.
//
// The host may deliver one key press to either surface or to both. Each
// surface makes its own stop or proceed decision; the router holds no
// state of its own. A press delivered to both surfaces runs its command
// once when it carries a serial: the engine answers the second surface
// with the decision it made for the first.
package router

import (
	"context"

	"github.com/dshills/modeshell/internal/engine"
	"github.com/dshills/modeshell/internal/input/key"
	"github.com/dshills/modeshell/internal/input/keymap"
)

// Dispatcher runs one key press through a dispatch pipeline.
type Dispatcher interface {
	HandleKey(ctx context.Context, src engine.Source, ev key.Event) keymap.Propagation
}

// Handler is the callback a host installs on one capture surface.
// It returns Stop when the event was handled.
type Handler func(ctx context.Context, ev key.Event) keymap.Propagation

// Targets selects the surfaces a key press is delivered to.
type Targets uint8

const (
	// ToWindow delivers to the host window handler.
	ToWindow Targets = 1 << iota
	// ToContent delivers to the content view handler.
	ToContent

	// ToBoth delivers to both, window first.
	ToBoth = ToWindow | ToContent
)

// Delivery holds the per-surface decisions for one key press.
type Delivery struct {
	Targets Targets
	Window  keymap.Propagation
	Content keymap.Propagation
}

// Stopped reports whether any surface that received the event stopped it.
func (d Delivery) Stopped() bool {
	return (d.Targets&ToWindow != 0 && d.Window == keymap.Stop) ||
		(d.Targets&ToContent != 0 && d.Content == keymap.Stop)
}

// Router exposes one handler per capture surface.
type Router struct {
	d Dispatcher
}

// New creates a router over d.
func New(d Dispatcher) *Router {
	return &Router{d: d}
}

// Window returns the handler for the host window.
func (r *Router) Window() Handler {
	return func(ctx context.Context, ev key.Event) keymap.Propagation {
		return r.d.HandleKey(ctx, engine.SourceWindow, ev)
	}
}

// Content returns the handler for the content view.
func (r *Router) Content() Handler {
	return func(ctx context.Context, ev key.Event) keymap.Propagation {
		return r.d.HandleKey(ctx, engine.SourceContent, ev)
	}
}

// Deliver hands ev to each selected surface and collects the decisions.
// A surface's decision never suppresses delivery to the other one; that
// is the host's call.
func (r *Router) Deliver(ctx context.Context, ev key.Event, to Targets) Delivery {
	d := Delivery{Targets: to}
	if to&ToWindow != 0 {
		d.Window = r.d.HandleKey(ctx, engine.SourceWindow, ev)
	}
	if to&ToContent != 0 {
		d.Content = r.d.HandleKey(ctx, engine.SourceContent, ev)
	}
	return d
}
