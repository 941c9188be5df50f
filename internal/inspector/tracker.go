// Package inspector mirrors the open/closed state of the developer
// inspector panel.
package inspector

import (
	"sync"

	"github.com/dshills/modeshell/internal/host"
)

// Tracker keeps an explicit visibility flag for one inspector panel.
//
// The flag changes through Toggle and through the panel's own closed
// notification, which Attach wires exactly once. Calls into the panel are
// made without holding the lock, so a panel that reports its closure
// synchronously from Close cannot deadlock the tracker.
type Tracker struct {
	mu       sync.Mutex
	panel    host.Inspector
	visible  bool
	attached bool
	shows    int
	closes   int
}

// NewTracker creates a tracker for panel, which may be nil.
func NewTracker(panel host.Inspector) *Tracker {
	t := &Tracker{}
	t.Attach(panel)
	return t
}

// Attach binds the tracker to panel and subscribes to its closed
// notification. Attaching the same tracker again is a no-op.
func (t *Tracker) Attach(panel host.Inspector) {
	if panel == nil {
		return
	}
	t.mu.Lock()
	if t.attached {
		t.mu.Unlock()
		return
	}
	t.panel = panel
	t.attached = true
	t.mu.Unlock()

	panel.OnClosed(t.OnExternalClose)
}

// Available reports whether a panel is attached.
func (t *Tracker) Available() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.panel != nil
}

// Visible reports the tracked state.
func (t *Tracker) Visible() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.visible
}

// Toggle flips the state and shows or closes the panel accordingly.
// It returns the new state. Without a panel it returns false and does
// nothing.
func (t *Tracker) Toggle() bool {
	t.mu.Lock()
	panel := t.panel
	if panel == nil {
		t.mu.Unlock()
		return false
	}
	t.visible = !t.visible
	show := t.visible
	if show {
		t.shows++
	} else {
		t.closes++
	}
	t.mu.Unlock()

	if show {
		panel.Show()
	} else {
		panel.Close()
	}
	return show
}

// OnExternalClose forces the state to closed. It is the callback given to
// the panel's closed notification and is safe to call at any time.
func (t *Tracker) OnExternalClose() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.visible = false
}

// Counts returns how many show and close calls Toggle has issued.
func (t *Tracker) Counts() (shows, closes int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.shows, t.closes
}
