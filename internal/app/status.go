package app

import (
	"fmt"

	"github.com/dshills/modeshell/internal/host"
	"github.com/dshills/modeshell/internal/host/sim"
	"github.com/dshills/modeshell/internal/input/mode"
)

// Status is what the terminal shows about the focused view.
type Status struct {
	View      host.ViewID
	Views     int
	Page      sim.State
	Mode      mode.Mode
	Composing bool
	Inspector bool
	Keys      uint64
	Ended     bool
}

// Status reports the focused view's state.
func (s *Shell) Status() Status {
	st := Status{
		Views: len(s.browser.Views()),
		Keys:  s.metrics.Snapshot().KeysTotal,
		Ended: s.Done(),
	}

	v := s.focused()
	if v == nil {
		return st
	}
	st.View = v.page.ID()
	st.Mode = v.engine.Mode()
	st.Composing = v.engine.Composing()
	st.Inspector = v.engine.Inspector().Visible()
	if ps, err := v.page.State(); err == nil {
		st.Page = ps
	}
	return st
}

// Lines renders the status for a plain text display.
func (st Status) Lines() []string {
	if st.View == "" {
		return []string{"no view open"}
	}

	modeLine := "-- " + st.Mode.String() + " --"
	if st.Composing {
		modeLine += " [leader]"
	}
	if st.Inspector {
		modeLine += " [inspector]"
	}

	focus := st.Page.Focus
	if st.Page.Editable {
		focus = fmt.Sprintf("%s %q", focus, st.Page.Value)
	}

	return []string{
		fmt.Sprintf("view %s (%d open)  %s", shortID(st.View), st.Views, st.Page.URL),
		modeLine,
		"focus: " + focus,
		fmt.Sprintf("scroll: %d,%d  reloads: %d/%d", st.Page.ScrollX, st.Page.ScrollY, st.Page.Reloads, st.Page.HardReloads),
		fmt.Sprintf("keys: %d", st.Keys),
	}
}
