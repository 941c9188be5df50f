// Package terminal reads key presses from a tcell screen and draws a plain
// status display.
package terminal

import (
	"context"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/modeshell/internal/input/key"
)

// Screen wraps a tcell screen as a key source and line display.
type Screen struct {
	mu     sync.Mutex
	screen tcell.Screen
	serial uint64
	footer string
	done   bool
}

// New creates a screen on the controlling terminal.
func New() (*Screen, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return NewWithScreen(screen), nil
}

// NewWithScreen wraps an existing tcell screen, such as a simulation screen.
func NewWithScreen(screen tcell.Screen) *Screen {
	return &Screen{screen: screen}
}

// Init puts the terminal into raw mode.
func (s *Screen) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.screen.Init(); err != nil {
		return err
	}
	s.screen.HideCursor()
	s.screen.Clear()
	return nil
}

// Shutdown restores the terminal. Pending Keys channels close. Calling it
// again does nothing.
func (s *Screen) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done {
		return
	}
	s.done = true
	s.screen.Fini()
}

// SetFooter sets a help line drawn on the bottom row.
func (s *Screen) SetFooter(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.footer = text
}

// Keys starts polling the terminal and returns the key presses. Every
// press gets a fresh serial. The channel closes on Shutdown or when ctx
// is cancelled.
//
// PollEvent is blocking, so the goroutine only notices ctx after the next
// terminal event; Shutdown unblocks it immediately.
func (s *Screen) Keys(ctx context.Context) <-chan key.Event {
	events := make(chan key.Event, 64)

	go func() {
		defer close(events)

		for {
			ev := s.screen.PollEvent()
			if ev == nil {
				return
			}

			switch e := ev.(type) {
			case *tcell.EventKey:
				kev, ok := ConvertKey(e)
				if !ok {
					continue
				}
				s.mu.Lock()
				s.serial++
				kev.Serial = s.serial
				s.mu.Unlock()

				select {
				case events <- kev:
				case <-ctx.Done():
					return
				}

			case *tcell.EventResize:
				s.mu.Lock()
				s.screen.Sync()
				s.mu.Unlock()
			}

			if ctx.Err() != nil {
				return
			}
		}
	}()

	return events
}

// Draw replaces the screen contents with lines, the first one highlighted.
func (s *Screen) Draw(lines []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done {
		return
	}
	s.screen.Clear()
	width, height := s.screen.Size()

	for y, line := range lines {
		if y >= height {
			break
		}
		style := tcell.StyleDefault
		if y == 0 {
			style = style.Reverse(true)
		}
		s.putLine(y, width, line, style)
	}
	if s.footer != "" && height > len(lines) {
		s.putLine(height-1, width, s.footer, tcell.StyleDefault.Dim(true))
	}

	s.screen.Show()
}

func (s *Screen) putLine(y, width int, text string, style tcell.Style) {
	x := 0
	for _, r := range text {
		if x >= width {
			return
		}
		s.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

// ConvertKey converts a tcell key event into a raw key event. It reports
// false for events with no key equivalent.
func ConvertKey(ev *tcell.EventKey) (key.Event, bool) {
	mods := convertMod(ev.Modifiers())
	k := ev.Key()

	if k == tcell.KeyRune {
		if ev.Rune() == 0 {
			return key.Event{}, false
		}
		return event(key.KeyRune, ev.Rune(), mods, ev), true
	}

	// Named keys come first: with some terminals Tab, Enter and Backspace
	// share codes with Ctrl+I, Ctrl+M and Ctrl+H.
	if sk, ok := specialKeys[k]; ok {
		if k == tcell.KeyBacktab {
			mods |= key.ModShift
		}
		return event(sk, 0, mods, ev), true
	}

	switch {
	case k == tcell.KeyCtrlSpace || k == tcell.KeyNUL:
		return event(key.KeyRune, ' ', mods|key.ModCtrl, ev), true

	case k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ:
		return event(key.KeyRune, 'a'+rune(k-tcell.KeyCtrlA), mods|key.ModCtrl, ev), true

	case k > tcell.KeyNUL && k <= tcell.KeySUB:
		// ASCII control codes, reported with the letter as the rune.
		r := ev.Rune()
		if r < 'a' || r > 'z' {
			r = 'a' + rune(k-tcell.KeySOH)
		}
		return event(key.KeyRune, r, mods|key.ModCtrl, ev), true
	}

	return key.Event{}, false
}

func event(k key.Key, r rune, mods key.Modifier, ev *tcell.EventKey) key.Event {
	return key.Event{
		Key:       k,
		Rune:      r,
		Modifiers: mods,
		Timestamp: ev.When(),
	}
}

var specialKeys = map[tcell.Key]key.Key{
	tcell.KeyEscape:     key.KeyEscape,
	tcell.KeyEnter:      key.KeyEnter,
	tcell.KeyTab:        key.KeyTab,
	tcell.KeyBacktab:    key.KeyTab,
	tcell.KeyBackspace:  key.KeyBackspace,
	tcell.KeyBackspace2: key.KeyBackspace,
	tcell.KeyDelete:     key.KeyDelete,
	tcell.KeyInsert:     key.KeyInsert,
	tcell.KeyHome:       key.KeyHome,
	tcell.KeyEnd:        key.KeyEnd,
	tcell.KeyPgUp:       key.KeyPageUp,
	tcell.KeyPgDn:       key.KeyPageDown,
	tcell.KeyUp:         key.KeyUp,
	tcell.KeyDown:       key.KeyDown,
	tcell.KeyLeft:       key.KeyLeft,
	tcell.KeyRight:      key.KeyRight,
	tcell.KeyF1:         key.KeyF1,
	tcell.KeyF2:         key.KeyF2,
	tcell.KeyF3:         key.KeyF3,
	tcell.KeyF4:         key.KeyF4,
	tcell.KeyF5:         key.KeyF5,
	tcell.KeyF6:         key.KeyF6,
	tcell.KeyF7:         key.KeyF7,
	tcell.KeyF8:         key.KeyF8,
	tcell.KeyF9:         key.KeyF9,
	tcell.KeyF10:        key.KeyF10,
	tcell.KeyF11:        key.KeyF11,
	tcell.KeyF12:        key.KeyF12,
}

// convertMod converts tcell modifier mask to key modifiers.
func convertMod(m tcell.ModMask) key.Modifier {
	var result key.Modifier
	if m&tcell.ModShift != 0 {
		result |= key.ModShift
	}
	if m&tcell.ModCtrl != 0 {
		result |= key.ModCtrl
	}
	if m&tcell.ModAlt != 0 {
		result |= key.ModAlt
	}
	if m&tcell.ModMeta != 0 {
		result |= key.ModMeta
	}
	return result
}
