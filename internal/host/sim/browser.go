package sim

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/dshills/modeshell/internal/host"
)

// Browser is a simulated host window holding a set of pages.
// It implements host.Views and host.Window.
type Browser struct {
	mu       sync.Mutex
	pages    map[host.ViewID]*Page
	order    []host.ViewID
	focused  host.ViewID
	pageOpts []PageOption

	onCreate []func(*Page)
	onClose  []func(host.ViewID)
	onFocus  []func(host.ViewID)

	quitting bool
	done     chan struct{}
	doneOnce sync.Once
}

// NewBrowser creates an empty browser. opts apply to every page it opens.
func NewBrowser(opts ...PageOption) *Browser {
	return &Browser{
		pages:    make(map[host.ViewID]*Page),
		pageOpts: opts,
		done:     make(chan struct{}),
	}
}

// OnCreate registers fn to run for every new page.
func (b *Browser) OnCreate(fn func(*Page)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onCreate = append(b.onCreate, fn)
}

// OnClose registers fn to run when a view is closed.
func (b *Browser) OnClose(fn func(host.ViewID)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onClose = append(b.onClose, fn)
}

// OnFocus registers fn to run when focus moves to a view.
func (b *Browser) OnFocus(fn func(host.ViewID)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onFocus = append(b.onFocus, fn)
}

// Open creates a page with a fresh identifier. The first page is focused.
func (b *Browser) Open(ctx context.Context) (*Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	select {
	case <-b.done:
		return nil, fmt.Errorf("open view: %w", host.ErrSurfaceGone)
	default:
	}

	id := host.ViewID(uuid.NewString())
	p, err := NewPage(id, b.pageOpts...)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	b.pages[id] = p
	b.order = append(b.order, id)
	first := b.focused == ""
	if first {
		b.focused = id
	}
	hooks := slices.Clone(b.onCreate)
	b.mu.Unlock()

	for _, fn := range hooks {
		fn(p)
	}
	return p, nil
}

// CreateView implements host.Views.
func (b *Browser) CreateView(ctx context.Context) (host.ViewID, error) {
	p, err := b.Open(ctx)
	if err != nil {
		return "", err
	}
	return p.ID(), nil
}

// FocusView implements host.Views. Unknown identifiers are ignored.
func (b *Browser) FocusView(id host.ViewID) {
	b.mu.Lock()
	if _, ok := b.pages[id]; !ok {
		b.mu.Unlock()
		return
	}
	b.focused = id
	hooks := slices.Clone(b.onFocus)
	b.mu.Unlock()

	for _, fn := range hooks {
		fn(id)
	}
}

// CloseView implements host.Views. Focus moves to the neighbouring view;
// closing the last view closes the window.
func (b *Browser) CloseView(id host.ViewID) {
	b.mu.Lock()
	p, ok := b.pages[id]
	if !ok {
		b.mu.Unlock()
		return
	}
	delete(b.pages, id)
	idx := slices.Index(b.order, id)
	b.order = slices.Delete(b.order, idx, idx+1)

	var next host.ViewID
	if b.focused == id {
		b.focused = ""
		if len(b.order) > 0 {
			next = b.order[min(idx, len(b.order)-1)]
			b.focused = next
		}
	}
	empty := len(b.order) == 0
	closeHooks := slices.Clone(b.onClose)
	focusHooks := slices.Clone(b.onFocus)
	b.mu.Unlock()

	p.Close()
	for _, fn := range closeHooks {
		fn(id)
	}
	if next != "" {
		for _, fn := range focusHooks {
			fn(next)
		}
	}
	if empty {
		b.Close()
	}
}

// Quit implements host.Window.
func (b *Browser) Quit() {
	b.mu.Lock()
	b.quitting = true
	b.mu.Unlock()
	b.shutdown()
}

// Close implements host.Window.
func (b *Browser) Close() {
	b.shutdown()
}

func (b *Browser) shutdown() {
	b.doneOnce.Do(func() {
		b.mu.Lock()
		pages := make([]*Page, 0, len(b.pages))
		for _, id := range b.order {
			pages = append(pages, b.pages[id])
		}
		b.mu.Unlock()

		for _, p := range pages {
			p.Close()
		}
		close(b.done)
	})
}

// Done is closed when the window closes or the application quits.
func (b *Browser) Done() <-chan struct{} {
	return b.done
}

// Quitting reports whether Quit ended the session, as opposed to Close.
func (b *Browser) Quitting() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.quitting
}

// Page returns the page for id, or nil.
func (b *Browser) Page(id host.ViewID) *Page {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pages[id]
}

// Focused returns the focused page, or nil when no view is open.
func (b *Browser) Focused() *Page {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pages[b.focused]
}

// Views returns the open view identifiers in tab order.
func (b *Browser) Views() []host.ViewID {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.order)
}

// Surface returns the host capabilities bound to page p.
func (b *Browser) Surface(p *Page) host.Surface {
	return host.Surface{
		View:      p.ID(),
		Bridge:    p,
		Content:   p,
		Views:     b,
		Inspector: p.Panel(),
		Window:    b,
	}
}
