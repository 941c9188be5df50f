package keymap

import (
	"fmt"
	"strings"

	"github.com/dshills/modeshell/internal/input/key"
	"github.com/dshills/modeshell/internal/input/mode"
)

// Binding is a user-facing key binding, as written in configuration.
type Binding struct {
	// Keys is a single key specification: "j", "<C-e>", "Ctrl+Shift+K".
	Keys string `toml:"keys" yaml:"keys"`

	// Action is the command name, e.g. "scroll.down".
	Action string `toml:"action" yaml:"action"`

	// Modes lists the modes the binding is active in.
	// Empty means normal mode only.
	Modes []string `toml:"modes,omitempty" yaml:"modes,omitempty"`

	// Leader makes this a compose command, valid only inside the leader window.
	Leader bool `toml:"leader,omitempty" yaml:"leader,omitempty"`

	// Count multiplies the scroll step.
	Count int `toml:"count,omitempty" yaml:"count,omitempty"`

	// Propagate lets the host also see the key. Ignored for keys with
	// Ctrl, Alt or Meta, which always stop.
	Propagate bool `toml:"propagate,omitempty" yaml:"propagate,omitempty"`

	// Description documents the binding.
	Description string `toml:"description,omitempty" yaml:"description,omitempty"`
}

// NewBinding creates a normal-mode binding with the given keys and action.
func NewBinding(keys, action string) Binding {
	return Binding{
		Keys:   keys,
		Action: action,
	}
}

// WithModes sets the modes for this binding.
func (b Binding) WithModes(modes ...string) Binding {
	b.Modes = modes
	return b
}

// AsLeader marks the binding as a compose command.
func (b Binding) AsLeader() Binding {
	b.Leader = true
	return b
}

// WithCount sets the scroll multiplier.
func (b Binding) WithCount(n int) Binding {
	b.Count = n
	return b
}

// Entry converts the binding into a table row.
func (b Binding) Entry() (Entry, error) {
	tok, err := key.Parse(b.Keys)
	if err != nil {
		return Entry{}, fmt.Errorf("keys %q: %w", b.Keys, err)
	}

	action := Action(strings.TrimSpace(b.Action))
	if !action.Valid() {
		return Entry{}, fmt.Errorf("keys %q: unknown action %q", b.Keys, b.Action)
	}

	modes := mode.InNormal
	if len(b.Modes) > 0 {
		var unknown []string
		modes, unknown = mode.SetOf(b.Modes...)
		if len(unknown) > 0 {
			return Entry{}, fmt.Errorf("keys %q: unknown modes %v", b.Keys, unknown)
		}
	}
	if b.Leader {
		modes = mode.InAny
	}

	e := Entry{
		Modes:       modes,
		Token:       tok,
		Action:      action,
		Count:       b.Count,
		Propagation: Stop,
		Description: b.Description,
	}
	if b.Leader {
		e.Composing = ComposeOnly
	}
	if b.Propagate {
		e.Propagation = Proceed
	}
	if err := e.Validate(); err != nil {
		return Entry{}, err
	}
	return e, nil
}

// FromEntry converts a table row back into its configuration form.
func FromEntry(e Entry) Binding {
	b := Binding{
		Keys:        e.Token.VimString(),
		Action:      string(e.Action),
		Leader:      e.Composing == ComposeOnly,
		Propagate:   e.Propagation == Proceed,
		Description: e.Description,
	}
	if e.Count > 1 {
		b.Count = e.Count
	}
	if !b.Leader {
		for _, m := range []mode.Mode{mode.Normal, mode.Insert} {
			if e.Modes.Contains(m) {
				b.Modes = append(b.Modes, m.String())
			}
		}
	}
	return b
}
