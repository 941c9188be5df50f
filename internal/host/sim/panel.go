package sim

import "sync"

// Panel is a simulated developer inspector. It implements host.Inspector.
type Panel struct {
	mu       sync.Mutex
	visible  bool
	shows    int
	closes   int
	onClosed []func()
}

// NewPanel creates a hidden panel.
func NewPanel() *Panel {
	return &Panel{}
}

// Show opens the panel.
func (p *Panel) Show() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.visible = true
	p.shows++
}

// Close closes the panel and notifies subscribers if it was open.
func (p *Panel) Close() {
	p.mu.Lock()
	p.closes++
	p.mu.Unlock()
	p.closed()
}

// UserClose closes the panel from its own UI, bypassing any command.
func (p *Panel) UserClose() {
	p.closed()
}

func (p *Panel) closed() {
	p.mu.Lock()
	if !p.visible {
		p.mu.Unlock()
		return
	}
	p.visible = false
	fns := append([]func(){}, p.onClosed...)
	p.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// OnClosed registers fn to run whenever the panel closes.
func (p *Panel) OnClosed(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onClosed = append(p.onClosed, fn)
}

// Visible reports whether the panel is open.
func (p *Panel) Visible() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.visible
}

// Counts returns how many times Show and Close were called.
func (p *Panel) Counts() (shows, closes int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.shows, p.closes
}
