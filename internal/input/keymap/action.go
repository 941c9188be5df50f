package keymap

import (
	"maps"
	"slices"
)

// Action identifies a command.
type Action string

// Actions understood by the engine.
const (
	ActionNone        Action = "none"
	ActionPassThrough Action = "passthrough"
	ActionSuppress    Action = "suppress"
	ActionArmLeader   Action = "leader.arm"

	ActionScrollUp     Action = "scroll.up"
	ActionScrollDown   Action = "scroll.down"
	ActionScrollLeft   Action = "scroll.left"
	ActionScrollRight  Action = "scroll.right"
	ActionScrollTop    Action = "scroll.top"
	ActionScrollBottom Action = "scroll.bottom"

	ActionGoBack     Action = "nav.back"
	ActionGoForward  Action = "nav.forward"
	ActionReload     Action = "nav.reload"
	ActionHardReload Action = "nav.hardReload"

	ActionToggleInspector Action = "inspector.toggle"

	ActionCloseView   Action = "view.close"
	ActionCloseWindow Action = "window.close"
	ActionQuit        Action = "app.quit"
	ActionNewTab      Action = "tab.new"
)

var knownActions = map[Action]string{
	ActionNone:            "Swallow the key",
	ActionPassThrough:     "Let the host handle the key",
	ActionSuppress:        "Block a host accelerator",
	ActionArmLeader:       "Open the leader window",
	ActionScrollUp:        "Scroll up",
	ActionScrollDown:      "Scroll down",
	ActionScrollLeft:      "Scroll left",
	ActionScrollRight:     "Scroll right",
	ActionScrollTop:       "Scroll to top",
	ActionScrollBottom:    "Scroll to bottom",
	ActionGoBack:          "Go back",
	ActionGoForward:       "Go forward",
	ActionReload:          "Reload",
	ActionHardReload:      "Reload bypassing cache",
	ActionToggleInspector: "Toggle developer inspector",
	ActionCloseView:       "Close view",
	ActionCloseWindow:     "Close window",
	ActionQuit:            "Quit",
	ActionNewTab:          "New tab",
}

// Valid reports whether a is a known action.
func (a Action) Valid() bool {
	_, ok := knownActions[a]
	return ok
}

// Description returns a short human-readable description.
func (a Action) Description() string {
	return knownActions[a]
}

// IsScroll reports whether a scrolls the page.
func (a Action) IsScroll() bool {
	switch a {
	case ActionScrollUp, ActionScrollDown, ActionScrollLeft, ActionScrollRight,
		ActionScrollTop, ActionScrollBottom:
		return true
	}
	return false
}

// mustStop reports whether a always stops propagation regardless of binding.
// The inspector toggle would otherwise double-fire the host's own shortcut,
// and suppression exists only to stop.
func (a Action) mustStop() bool {
	switch a {
	case ActionToggleInspector, ActionSuppress, ActionArmLeader, ActionNone:
		return true
	}
	return false
}

// Actions returns every known action in name order.
func Actions() []Action {
	return slices.Sorted(maps.Keys(knownActions))
}

// Propagation is the decision returned to the host for a key event.
type Propagation uint8

const (
	// Proceed lets the host's default handling run.
	Proceed Propagation = iota
	// Stop marks the event as fully handled.
	Stop
)

// String returns "proceed" or "stop".
func (p Propagation) String() string {
	if p == Stop {
		return "stop"
	}
	return "proceed"
}
