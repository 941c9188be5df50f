package keymap

import (
	"errors"
	"fmt"

	"github.com/dshills/modeshell/internal/input/key"
	"github.com/dshills/modeshell/internal/input/mode"
)

// ErrNoLeader indicates a table was built without a leader key.
var ErrNoLeader = errors.New("no leader key")

// Options controls the generated leader entries of a table.
type Options struct {
	// Leader is the leader key token, without modifiers.
	Leader key.Token

	// InsertRequiresCtrl makes the leader arm in Insert mode only with
	// Control held, so typing the leader character into a field works.
	InsertRequiresCtrl bool
}

// DefaultOptions returns the default leader configuration: Space, with
// Control required in Insert mode.
func DefaultOptions() Options {
	return Options{
		Leader:             key.RuneToken(' '),
		InsertRequiresCtrl: true,
	}
}

// Table is an immutable, ordered command table.
type Table struct {
	opts    Options
	entries []Entry
}

// NewTable builds a table from entries in precedence order, followed by
// the leader entries derived from opts.
func NewTable(opts Options, entries ...Entry) (*Table, error) {
	if opts.Leader.IsZero() {
		return nil, ErrNoLeader
	}
	opts.Leader = opts.Leader.Bare()

	all := make([]Entry, 0, len(entries)+4)
	for i := range entries {
		if err := entries[i].Validate(); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		all = append(all, entries[i].normalize())
	}
	all = append(all, leaderEntries(opts)...)

	return &Table{opts: opts, entries: all}, nil
}

// leaderEntries returns the arming rows. The leader re-arms while
// composing as well, restarting the window.
func leaderEntries(opts Options) []Entry {
	bare := opts.Leader
	ctrl := bare.WithModifiers(key.ModCtrl)

	bareModes := mode.InAny
	if opts.InsertRequiresCtrl {
		bareModes = mode.InNormal
	}

	rows := []Entry{
		{Modes: bareModes, Token: bare, Action: ActionArmLeader},
		{Modes: mode.InAny, Token: ctrl, Action: ActionArmLeader},
		{Modes: bareModes, Token: bare, Composing: ComposeOnly, Action: ActionArmLeader},
		{Modes: mode.InAny, Token: ctrl, Composing: ComposeOnly, Action: ActionArmLeader},
	}
	for i := range rows {
		rows[i] = rows[i].normalize()
	}
	return rows
}

// Options returns the options the table was built with.
func (t *Table) Options() Options {
	return t.opts
}

// Leader returns the leader token.
func (t *Table) Leader() key.Token {
	return t.opts.Leader
}

// Entries returns a copy of the table rows in precedence order.
func (t *Table) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.entries)
}

// Dispatch maps a key press to an action and a propagation decision.
//
// While composing only compose rows are considered and an unmatched key is
// swallowed. Otherwise the first matching row wins and an unmatched key
// passes through.
func (t *Table) Dispatch(m mode.Mode, tok key.Token, composing bool) Result {
	if tok.IsZero() {
		if composing {
			return swallow
		}
		return passThrough
	}

	for i := range t.entries {
		e := &t.entries[i]
		if e.Matches(m, tok, composing) {
			return Result{
				Action:      e.Action,
				Count:       e.Count,
				Propagation: e.Propagation,
				Entry:       e,
			}
		}
	}

	if composing {
		return swallow
	}
	return passThrough
}
