package keymap

import (
	"fmt"

	"github.com/dshills/modeshell/internal/input/key"
	"github.com/dshills/modeshell/internal/input/mode"
)

// HalfPage is the scroll multiplier used by the half-page bindings.
const HalfPage = 10

func row(modes mode.Set, spec string, action Action) Entry {
	return Entry{Modes: modes, Token: key.MustParse(spec), Action: action, Propagation: Stop}
}

func compose(spec string, action Action) Entry {
	e := row(mode.InAny, spec, action)
	e.Composing = ComposeOnly
	return e
}

func counted(e Entry, n int) Entry {
	e.Count = n
	return e
}

// DefaultEntries returns the built-in rows in precedence order.
func DefaultEntries() []Entry {
	return []Entry{
		// Leader commands
		compose("q", ActionQuit),
		compose("n", ActionNewTab),

		// Host accelerators that open the emoji picker
		row(mode.InAny, "<C-.>", ActionSuppress),
		row(mode.InAny, "<C-;>", ActionSuppress),

		// Inspector
		row(mode.InAny, "<C-I>", ActionToggleInspector),
		row(mode.InAny, "<F12>", ActionToggleInspector),

		// Navigation, any mode
		row(mode.InAny, "<C-r>", ActionReload),
		row(mode.InAny, "<C-R>", ActionHardReload),
		row(mode.InAny, "<A-Left>", ActionGoBack),
		row(mode.InAny, "<A-Right>", ActionGoForward),

		// Scrolling, any mode
		row(mode.InAny, "<C-j>", ActionScrollDown),
		row(mode.InAny, "<C-k>", ActionScrollUp),
		row(mode.InAny, "<C-h>", ActionScrollLeft),
		row(mode.InAny, "<C-l>", ActionScrollRight),

		// Views and window
		row(mode.InAny, "<C-w>", ActionCloseView),
		row(mode.InAny, "<C-W>", ActionCloseWindow),
		row(mode.InAny, "<C-q>", ActionQuit),

		// Normal mode only; in Insert mode these letters are typed
		row(mode.InNormal, "j", ActionScrollDown),
		row(mode.InNormal, "k", ActionScrollUp),
		row(mode.InNormal, "h", ActionScrollLeft),
		row(mode.InNormal, "l", ActionScrollRight),
		counted(row(mode.InNormal, "d", ActionScrollDown), HalfPage),
		counted(row(mode.InNormal, "u", ActionScrollUp), HalfPage),
		row(mode.InNormal, "g", ActionScrollTop),
		row(mode.InNormal, "G", ActionScrollBottom),
		row(mode.InNormal, "H", ActionGoBack),
		row(mode.InNormal, "L", ActionGoForward),
		row(mode.InNormal, "r", ActionReload),
		row(mode.InNormal, "R", ActionHardReload),
	}
}

// Default builds the default table.
func Default(opts Options) (*Table, error) {
	return NewTable(opts, DefaultEntries()...)
}

// Build builds a table with user bindings ahead of the defaults.
func Build(opts Options, bindings []Binding) (*Table, error) {
	entries := make([]Entry, 0, len(bindings)+len(DefaultEntries()))
	for i, b := range bindings {
		e, err := b.Entry()
		if err != nil {
			return nil, fmt.Errorf("binding %d: %w", i, err)
		}
		entries = append(entries, e)
	}
	entries = append(entries, DefaultEntries()...)
	return NewTable(opts, entries...)
}
