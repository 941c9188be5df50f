// Package host defines the capabilities the dispatch engine consumes from
// the surrounding browser toolkit.
//
// Each interface is deliberately small. A host that cannot provide a
// capability passes nil and the engine turns the matching command into a
// logged no-op.
package host

import (
	"context"
	"errors"
)

// Errors reported by hosts.
var (
	// ErrSurfaceGone indicates the content surface was destroyed or navigated
	// away before a script completed.
	ErrSurfaceGone = errors.New("content surface unavailable")

	// ErrScriptFailed indicates the script raised an error in the page.
	ErrScriptFailed = errors.New("script evaluation failed")

	// ErrNoSuchView indicates a view identifier is unknown to the host.
	ErrNoSuchView = errors.New("no such view")
)

// Value is the completion value of a script, encoded as JSON text.
type Value []byte

// String returns the JSON text.
func (v Value) String() string { return string(v) }

// ScriptBridge executes script in a content surface.
type ScriptBridge interface {
	// Evaluate runs script and reports its completion value through done.
	// Evaluate must not block on the page. done is invoked exactly once,
	// possibly on another goroutine, and completions of separate calls may
	// arrive in any order.
	Evaluate(ctx context.Context, script string, done func(Value, error))
}

// Content is the lifecycle surface of one content view.
type Content interface {
	Reload()
	ReloadBypassCache()
	GoBack()
	GoForward()
}

// History is implemented by Content values that can report whether
// navigating back or forward would do anything.
type History interface {
	CanGoBack() bool
	CanGoForward() bool
}

// ViewID identifies a content view owned by the host.
type ViewID string

// Views creates, focuses and destroys content views.
type Views interface {
	CreateView(ctx context.Context) (ViewID, error)
	FocusView(id ViewID)
	CloseView(id ViewID)
}

// Inspector is the developer inspector panel attached to a content view.
type Inspector interface {
	Show()
	Close()
	// OnClosed registers fn to run when the panel is closed by any means,
	// including its own UI.
	OnClosed(fn func())
}

// Window is the top-level host window.
type Window interface {
	Quit()
	Close()
}

// Surface bundles the collaborators bound to one content view.
// Any field may be nil.
type Surface struct {
	View      ViewID
	Bridge    ScriptBridge
	Content   Content
	Views     Views
	Inspector Inspector
	Window    Window
}
