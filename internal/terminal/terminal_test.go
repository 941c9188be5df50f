package terminal

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/modeshell/internal/input/key"
)

func TestConvertKey(t *testing.T) {
	tests := []struct {
		name string
		ev   *tcell.EventKey
		want key.Token
	}{
		{"rune", tcell.NewEventKey(tcell.KeyRune, 'j', tcell.ModNone), key.MustParse("j")},
		{"upper rune", tcell.NewEventKey(tcell.KeyRune, 'G', tcell.ModNone), key.MustParse("G")},
		{"space", tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone), key.MustParse("<Space>")},
		{"alt rune", tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModAlt), key.MustParse("<A-x>")},
		{"ctrl letter", tcell.NewEventKey(tcell.KeyRune, 'j', tcell.ModCtrl), key.MustParse("<C-j>")},
		{"ctrl q", tcell.NewEventKey(tcell.KeyCtrlQ, 'q', tcell.ModCtrl), key.MustParse("<C-q>")},
		{"tab", tcell.NewEventKey(tcell.KeyTab, 0, tcell.ModNone), key.MustParse("<Tab>")},
		{"backtab", tcell.NewEventKey(tcell.KeyBacktab, 0, tcell.ModNone), key.MustParse("<S-Tab>")},
		{"enter", tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone), key.MustParse("<CR>")},
		{"escape", tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone), key.MustParse("<Esc>")},
		{"backspace", tcell.NewEventKey(tcell.KeyBackspace2, 0, tcell.ModNone), key.MustParse("<BS>")},
		{"f12", tcell.NewEventKey(tcell.KeyF12, 0, tcell.ModNone), key.MustParse("<F12>")},
		{"alt left", tcell.NewEventKey(tcell.KeyLeft, 0, tcell.ModAlt), key.MustParse("<A-Left>")},
		{"page down", tcell.NewEventKey(tcell.KeyPgDn, 0, tcell.ModNone), key.MustParse("<PageDown>")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, ok := ConvertKey(tt.ev)
			if !ok {
				t.Fatal("ConvertKey() reported no key")
			}
			if got := ev.Token(); got != tt.want {
				t.Errorf("token = %v, want %v", got, tt.want)
			}
			if ev.Timestamp.IsZero() {
				t.Error("timestamp not set")
			}
		})
	}
}

func TestConvertKeyCtrlCodes(t *testing.T) {
	// Terminals deliver Ctrl+letter as the ASCII control code.
	ev, ok := ConvertKey(tcell.NewEventKey(tcell.KeyRune, 0x12, tcell.ModNone))
	if !ok {
		t.Fatal("ConvertKey() reported no key")
	}
	if got := ev.Token(); got != key.MustParse("<C-r>") {
		t.Errorf("token = %v, want <C-r>", got)
	}
}

func newSimScreen(t *testing.T) (*Screen, tcell.SimulationScreen) {
	t.Helper()
	sim := tcell.NewSimulationScreen("UTF-8")
	s := NewWithScreen(sim)
	if err := s.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	sim.SetSize(40, 6)
	return s, sim
}

func rowText(sim tcell.SimulationScreen, y int) string {
	cells, width, _ := sim.GetContents()
	var b strings.Builder
	for x := 0; x < width; x++ {
		c := cells[y*width+x]
		if len(c.Runes) == 0 {
			b.WriteByte(' ')
			continue
		}
		b.WriteRune(c.Runes[0])
	}
	return strings.TrimRight(b.String(), " ")
}

func TestScreenDraw(t *testing.T) {
	s, sim := newSimScreen(t)
	defer s.Shutdown()

	s.SetFooter("<Space>q quit")
	s.Draw([]string{"view abc", "-- normal --", strings.Repeat("x", 60)})

	if got := rowText(sim, 0); got != "view abc" {
		t.Errorf("row 0 = %q", got)
	}
	if got := rowText(sim, 1); got != "-- normal --" {
		t.Errorf("row 1 = %q", got)
	}
	if got := rowText(sim, 2); got != strings.Repeat("x", 40) {
		t.Errorf("row 2 should be clipped, got %q", got)
	}
	if got := rowText(sim, 5); got != "<Space>q quit" {
		t.Errorf("footer = %q", got)
	}
}

func TestScreenKeys(t *testing.T) {
	s, sim := newSimScreen(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	keys := s.Keys(ctx)

	sim.InjectKey(tcell.KeyRune, 'j', tcell.ModNone)
	sim.InjectKey(tcell.KeyTab, 0, tcell.ModNone)

	want := []key.Token{key.MustParse("j"), key.MustParse("<Tab>")}
	for i, w := range want {
		select {
		case ev := <-keys:
			if ev.Token() != w {
				t.Errorf("key %d = %v, want %v", i, ev.Token(), w)
			}
			if ev.Serial != uint64(i+1) {
				t.Errorf("key %d serial = %d, want %d", i, ev.Serial, i+1)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for key %d", i)
		}
	}

	s.Shutdown()
	select {
	case _, ok := <-keys:
		if ok {
			t.Error("expected the channel to close after Shutdown")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("channel did not close after Shutdown")
	}
}
