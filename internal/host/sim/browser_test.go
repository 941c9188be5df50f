package sim

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/dshills/modeshell/internal/host"
)

// Compile-time interface checks.
var (
	_ host.ScriptBridge = (*Page)(nil)
	_ host.Content      = (*Page)(nil)
	_ host.History      = (*Page)(nil)
	_ host.Inspector    = (*Panel)(nil)
	_ host.Views        = (*Browser)(nil)
	_ host.Window       = (*Browser)(nil)
)

func TestBrowserCreateAndFocus(t *testing.T) {
	b := NewBrowser()
	defer b.Close()
	ctx := context.Background()

	var created []host.ViewID
	var focused []host.ViewID
	b.OnCreate(func(p *Page) { created = append(created, p.ID()) })
	b.OnFocus(func(id host.ViewID) { focused = append(focused, id) })

	first, err := b.Open(ctx)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	second, err := b.CreateView(ctx)
	if err != nil {
		t.Fatalf("CreateView: %v", err)
	}

	if _, err := uuid.Parse(string(second)); err != nil {
		t.Errorf("view id %q is not a UUID: %v", second, err)
	}
	if len(created) != 2 {
		t.Errorf("create hooks = %d, want 2", len(created))
	}
	if b.Focused() != first {
		t.Error("first page should be focused")
	}

	b.FocusView(second)
	if b.Focused().ID() != second {
		t.Error("FocusView did not move focus")
	}
	if len(focused) != 1 || focused[0] != second {
		t.Errorf("focus hooks = %v", focused)
	}

	b.FocusView("unknown")
	if b.Focused().ID() != second {
		t.Error("unknown view must not steal focus")
	}
}

func TestBrowserCloseView(t *testing.T) {
	b := NewBrowser()
	ctx := context.Background()

	var closed []host.ViewID
	b.OnClose(func(id host.ViewID) { closed = append(closed, id) })

	p1, _ := b.Open(ctx)
	p2, _ := b.Open(ctx)
	b.FocusView(p2.ID())

	b.CloseView(p2.ID())
	if !p2.Closed() {
		t.Error("closed view's page should be closed")
	}
	if b.Focused() != p1 {
		t.Error("focus should move to the remaining view")
	}
	if got := b.Views(); len(got) != 1 || got[0] != p1.ID() {
		t.Errorf("Views() = %v", got)
	}

	b.CloseView(p1.ID())
	select {
	case <-b.Done():
	default:
		t.Error("closing the last view should close the window")
	}
	if b.Quitting() {
		t.Error("closing the window is not quitting")
	}
	if len(closed) != 2 {
		t.Errorf("close hooks = %d, want 2", len(closed))
	}
}

func TestBrowserQuit(t *testing.T) {
	b := NewBrowser()
	p, _ := b.Open(context.Background())

	b.Quit()
	b.Quit()

	select {
	case <-b.Done():
	default:
		t.Fatal("Done should be closed after Quit")
	}
	if !b.Quitting() {
		t.Error("Quitting() = false")
	}
	if !p.Closed() {
		t.Error("pages should close with the window")
	}
	if _, err := b.Open(context.Background()); err == nil {
		t.Error("Open after quit should fail")
	}
}

func TestBrowserSurface(t *testing.T) {
	b := NewBrowser()
	defer b.Close()
	p, _ := b.Open(context.Background())

	s := b.Surface(p)
	if s.View != p.ID() || s.Bridge == nil || s.Content == nil ||
		s.Views == nil || s.Inspector == nil || s.Window == nil {
		t.Errorf("incomplete surface: %+v", s)
	}
}

func TestPanel(t *testing.T) {
	p := NewPanel()
	var notified int
	p.OnClosed(func() { notified++ })

	p.Close()
	if notified != 0 {
		t.Error("closing a hidden panel should not notify")
	}

	p.Show()
	p.UserClose()
	if p.Visible() || notified != 1 {
		t.Errorf("visible=%t notified=%d, want false 1", p.Visible(), notified)
	}

	p.Show()
	p.Close()
	if notified != 2 {
		t.Errorf("notified = %d, want 2", notified)
	}
	if shows, closes := p.Counts(); shows != 2 || closes != 2 {
		t.Errorf("Counts = %d, %d; want 2, 2", shows, closes)
	}
}
