package keymap

import (
	"fmt"

	"github.com/dshills/modeshell/internal/input/key"
	"github.com/dshills/modeshell/internal/input/mode"
)

// Compose is the composing predicate of an entry.
type Compose uint8

const (
	// ComposeNever matches only outside the leader window.
	ComposeNever Compose = iota
	// ComposeOnly matches only inside the leader window.
	ComposeOnly
)

// String returns the predicate name as used in configuration.
func (c Compose) String() string {
	if c == ComposeOnly {
		return "only"
	}
	return "never"
}

// Entry is one row of the command table.
type Entry struct {
	// Modes is the set of modes the entry is active in.
	Modes mode.Set

	// Token is the canonical key, modifiers included.
	Token key.Token

	// Composing selects compose entries from ordinary ones.
	Composing Compose

	// Action is the command to run.
	Action Action

	// Count multiplies the scroll step. Zero means one.
	Count int

	// Propagation is returned to the host when the entry matches.
	Propagation Propagation

	// Description documents the entry in key listings.
	Description string
}

// Matches reports whether the entry applies.
func (e *Entry) Matches(m mode.Mode, tok key.Token, composing bool) bool {
	if (e.Composing == ComposeOnly) != composing {
		return false
	}
	return e.Modes.Contains(m) && e.Token == tok
}

// Validate checks that the entry is usable.
func (e *Entry) Validate() error {
	if e.Token.IsZero() {
		return fmt.Errorf("entry %q: empty key", e.Action)
	}
	if !e.Action.Valid() {
		return fmt.Errorf("entry %s: unknown action %q", e.Token.VimString(), e.Action)
	}
	if e.Modes == 0 {
		return fmt.Errorf("entry %s: no modes", e.Token.VimString())
	}
	if e.Count < 0 {
		return fmt.Errorf("entry %s: negative count %d", e.Token.VimString(), e.Count)
	}
	return nil
}

// normalize fills defaults and applies the propagation rules that no
// binding may override: modified keys that run a command always stop so
// the host shortcut underneath cannot also fire, and some actions stop
// unconditionally.
func (e Entry) normalize() Entry {
	if e.Count == 0 {
		e.Count = 1
	}
	switch {
	case e.Action == ActionPassThrough:
		e.Propagation = Proceed
	case e.Action.mustStop():
		e.Propagation = Stop
	case hasCommandModifier(e.Token):
		e.Propagation = Stop
	}
	if e.Description == "" {
		e.Description = e.Action.Description()
	}
	return e
}

func hasCommandModifier(t key.Token) bool {
	return t.Modifiers.Has(key.ModCtrl | key.ModAlt | key.ModMeta)
}

// Result is the outcome of a dispatch.
type Result struct {
	Action      Action
	Count       int
	Propagation Propagation

	// Entry is the matched row, nil when nothing matched.
	Entry *Entry
}

// Matched reports whether an entry produced the result.
func (r Result) Matched() bool {
	return r.Entry != nil
}

var (
	passThrough = Result{Action: ActionPassThrough, Count: 1, Propagation: Proceed}
	swallow     = Result{Action: ActionNone, Count: 1, Propagation: Stop}
)
