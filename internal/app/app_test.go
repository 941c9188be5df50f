package app

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dshills/modeshell/internal/config"
	"github.com/dshills/modeshell/internal/host/sim"
	"github.com/dshills/modeshell/internal/input/key"
	"github.com/dshills/modeshell/internal/input/keymap"
	"github.com/dshills/modeshell/internal/input/mode"
	"github.com/dshills/modeshell/internal/router"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Page.Latency = 0
	return cfg
}

func newShell(t *testing.T, opts Options) (*Shell, *testClock) {
	t.Helper()
	clock := &testClock{now: time.Unix(1_700_000_000, 0)}
	if opts.Config == nil && opts.ConfigPath == "" {
		opts.Config = testConfig()
	}
	opts.Clock = clock

	s, err := New(opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s, clock
}

func press(t *testing.T, s *Shell, spec string) (router.Delivery, error) {
	t.Helper()
	tok, err := key.Parse(spec)
	if err != nil {
		t.Fatalf("Parse(%q) error = %v", spec, err)
	}
	return s.HandleKey(context.Background(), key.NewEvent(tok.Key, tok.Rune, tok.Modifiers))
}

func mustPress(t *testing.T, s *Shell, specs ...string) {
	t.Helper()
	for _, spec := range specs {
		if _, err := press(t, s, spec); err != nil {
			t.Fatalf("press %q: %v", spec, err)
		}
	}
}

// waitMode refreshes the focused view's mode until it settles on want.
func waitMode(t *testing.T, s *Shell, want mode.Mode) {
	t.Helper()
	eng := s.Engine(s.Browser().Focused().ID())
	deadline := time.Now().Add(2 * time.Second)
	for {
		eng.Oracle().Refresh(context.Background())
		time.Sleep(5 * time.Millisecond)
		if eng.Mode() == want {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("mode = %s, want %s", eng.Mode(), want)
		}
	}
}

func pageState(t *testing.T, s *Shell) sim.State {
	t.Helper()
	st, err := s.Browser().Focused().State()
	if err != nil {
		t.Fatalf("State() error = %v", err)
	}
	return st
}

func TestShell_OpensFirstView(t *testing.T) {
	s, _ := newShell(t, Options{})

	if got := len(s.Browser().Views()); got != 1 {
		t.Fatalf("views = %d, want 1", got)
	}
	p := s.Browser().Focused()
	if s.Engine(p.ID()) == nil {
		t.Fatal("expected an engine for the first view")
	}
	if s.Table().Leader() != key.RuneToken(' ') {
		t.Errorf("leader = %v, want Space", s.Table().Leader())
	}
}

func TestShell_NormalModeScroll(t *testing.T) {
	s, _ := newShell(t, Options{})

	mustPress(t, s, "j", "j", "j", "k")
	if got := pageState(t, s).ScrollY; got != 80 {
		t.Errorf("ScrollY = %d, want 80", got)
	}

	mustPress(t, s, "G")
	if got := pageState(t, s).ScrollY; got != 5200 {
		t.Errorf("ScrollY after G = %d, want 5200", got)
	}

	mustPress(t, s, "u")
	if got := pageState(t, s).ScrollY; got != 4800 {
		t.Errorf("ScrollY after u = %d, want 4800", got)
	}
}

func TestShell_LeaderQuit(t *testing.T) {
	s, clock := newShell(t, Options{})

	d, err := press(t, s, "<Space>")
	if err != nil {
		t.Fatalf("press leader: %v", err)
	}
	if !d.Stopped() {
		t.Error("leader should stop propagation")
	}

	clock.Advance(100 * time.Millisecond)
	if _, err := press(t, s, "q"); !errors.Is(err, ErrQuit) {
		t.Fatalf("press q error = %v, want ErrQuit", err)
	}
	if !s.Browser().Quitting() {
		t.Error("expected the browser to be quitting")
	}
	if _, err := press(t, s, "j"); !errors.Is(err, ErrQuit) {
		t.Errorf("key after quit error = %v, want ErrQuit", err)
	}
}

func TestShell_LeaderWindowLapses(t *testing.T) {
	s, clock := newShell(t, Options{})

	mustPress(t, s, "<Space>")
	clock.Advance(500 * time.Millisecond)
	mustPress(t, s, "q")

	if s.Done() {
		t.Error("q after the window lapsed should not quit")
	}
}

func TestShell_InsertModeTyping(t *testing.T) {
	s, _ := newShell(t, Options{})

	mustPress(t, s, "<Tab>")
	waitMode(t, s, mode.Insert)

	mustPress(t, s, "j", "k", "<Space>", "x")
	st := pageState(t, s)
	if st.Focus != "search" {
		t.Fatalf("Focus = %q, want search", st.Focus)
	}
	if st.Value != "jk x" {
		t.Errorf("Value = %q, want %q", st.Value, "jk x")
	}
	if st.ScrollY != 0 {
		t.Errorf("ScrollY = %d, typing should not scroll", st.ScrollY)
	}

	// Modified scroll keys still work while typing.
	mustPress(t, s, "<C-j>")
	if got := pageState(t, s).ScrollY; got != 40 {
		t.Errorf("ScrollY after <C-j> = %d, want 40", got)
	}

	mustPress(t, s, "<BS>")
	if got := pageState(t, s).Value; got != "jk " {
		t.Errorf("Value after backspace = %q", got)
	}

	mustPress(t, s, "<Esc>")
	waitMode(t, s, mode.Normal)
	mustPress(t, s, "j")
	if got := pageState(t, s).ScrollY; got != 80 {
		t.Errorf("ScrollY back in normal mode = %d, want 80", got)
	}
}

func TestShell_InsertModeLeaderNeedsControl(t *testing.T) {
	s, _ := newShell(t, Options{})

	mustPress(t, s, "<Tab>")
	waitMode(t, s, mode.Insert)
	eng := s.Engine(s.Browser().Focused().ID())

	mustPress(t, s, "<Space>")
	if eng.Composing() {
		t.Error("bare leader should not arm in insert mode")
	}

	mustPress(t, s, "<C-Space>")
	if !eng.Composing() {
		t.Fatal("Control+leader should arm in insert mode")
	}
	if _, err := press(t, s, "q"); !errors.Is(err, ErrQuit) {
		t.Errorf("press q error = %v, want ErrQuit", err)
	}
}

func TestShell_NewTabAndCloseViews(t *testing.T) {
	s, _ := newShell(t, Options{})
	first := s.Browser().Focused().ID()

	mustPress(t, s, "<Space>", "n")
	if got := len(s.Browser().Views()); got != 2 {
		t.Fatalf("views = %d, want 2", got)
	}
	second := s.Browser().Focused().ID()
	if second == first {
		t.Fatal("new tab should take focus")
	}
	if s.Engine(second) == nil {
		t.Fatal("new view has no engine")
	}

	mustPress(t, s, "<C-w>")
	if s.Engine(second) != nil {
		t.Error("closed view should be detached")
	}
	if s.Browser().Focused().ID() != first {
		t.Error("focus should return to the first view")
	}

	if _, err := press(t, s, "<C-w>"); !errors.Is(err, ErrQuit) {
		t.Errorf("closing the last view error = %v, want ErrQuit", err)
	}
	if s.Browser().Quitting() {
		t.Error("closing the last view closes the window without quitting")
	}
}

func TestShell_SuppressedAcceleratorDoesNothing(t *testing.T) {
	s, _ := newShell(t, Options{})

	d, err := press(t, s, "<C-.>")
	if err != nil {
		t.Fatalf("press: %v", err)
	}
	if !d.Stopped() {
		t.Error("accelerator should be stopped")
	}
	st := pageState(t, s)
	if st.ScrollY != 0 || st.Reloads != 0 {
		t.Errorf("accelerator had an effect: %+v", st)
	}
}

func TestShell_InspectorToggle(t *testing.T) {
	s, _ := newShell(t, Options{})
	panel := s.Browser().Focused().Panel()

	mustPress(t, s, "<F12>")
	if !panel.Visible() || !s.Status().Inspector {
		t.Fatal("inspector should be visible")
	}

	panel.UserClose()
	if s.Status().Inspector {
		t.Error("user close should be mirrored")
	}

	mustPress(t, s, "<C-S-i>")
	if !panel.Visible() {
		t.Error("toggle after user close should show the inspector")
	}
}

func TestShell_Reload(t *testing.T) {
	s, _ := newShell(t, Options{})

	cfg := testConfig()
	cfg.Leader.Key = ","
	cfg.Scroll.Step = 100
	if err := s.Reload(cfg); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	mustPress(t, s, "j")
	if got := pageState(t, s).ScrollY; got != 100 {
		t.Errorf("ScrollY = %d, want new step 100", got)
	}

	mustPress(t, s, ",")
	if !s.Engine(s.Browser().Focused().ID()).Composing() {
		t.Error("new leader should arm")
	}

	bad := testConfig()
	bad.Scroll.Step = 0
	if err := s.Reload(bad); !errors.Is(err, config.ErrValidationFailed) {
		t.Errorf("Reload(bad) error = %v, want ErrValidationFailed", err)
	}
	if s.Config().Scroll.Step != 100 {
		t.Error("rejected reload should keep the current config")
	}
}

func TestShell_WatchReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "modeshell.toml")
	write := func(step int) {
		content := "[scroll]\nstep = " + strconv.Itoa(step) + "\n[page]\nlatency = \"0s\"\n"
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
	}
	write(10)

	s, _ := newShell(t, Options{ConfigPath: path, Watch: true})
	if s.Config().Scroll.Step != 10 {
		t.Fatalf("Scroll.Step = %d, want 10", s.Config().Scroll.Step)
	}

	write(70)
	deadline := time.Now().Add(3 * time.Second)
	for s.Config().Scroll.Step != 70 {
		if time.Now().After(deadline) {
			t.Fatalf("Scroll.Step = %d, want 70 after reload", s.Config().Scroll.Step)
		}
		time.Sleep(10 * time.Millisecond)
	}

	mustPress(t, s, "j")
	if got := pageState(t, s).ScrollY; got != 70 {
		t.Errorf("ScrollY = %d, want 70", got)
	}
}

func TestShell_BothSurfaces(t *testing.T) {
	s, _ := newShell(t, Options{Surfaces: router.ToBoth})

	d, err := press(t, s, "x")
	if err != nil {
		t.Fatalf("press: %v", err)
	}
	if d.Stopped() {
		t.Error("unbound key should proceed on both surfaces")
	}

	snap := s.Metrics().Snapshot()
	if snap.WindowKeys != 1 || snap.ContentKeys != 1 {
		t.Errorf("window=%d content=%d, want 1 each", snap.WindowKeys, snap.ContentKeys)
	}
	eng := s.Engine(s.Browser().Focused().ID())
	if got := eng.Oracle().Issued(); got != 1 {
		t.Errorf("mode queries = %d, want one per key press", got)
	}

	// Commands run once per press, not once per surface.
	panel := s.Browser().Focused().Panel()
	d, err = press(t, s, "<C-I>")
	if err != nil {
		t.Fatalf("press: %v", err)
	}
	if d.Window != keymap.Stop || d.Content != keymap.Stop {
		t.Errorf("inspector toggle: window=%s content=%s, want stop on both", d.Window, d.Content)
	}
	if !panel.Visible() {
		t.Error("inspector should be visible after one press")
	}
	if shows, closes := panel.Counts(); shows != 1 || closes != 0 {
		t.Errorf("panel calls = %d show, %d close; want 1 and 0", shows, closes)
	}

	mustPress(t, s, "<C-j>")
	if got := pageState(t, s).ScrollY; got != 40 {
		t.Errorf("ScrollY = %d, want one step of 40", got)
	}
	if got := s.Metrics().Snapshot().Repeats; got != 3 {
		t.Errorf("repeats = %d, want 3", got)
	}
}

func TestShell_DebugLogging(t *testing.T) {
	var buf syncBuffer
	s, _ := newShell(t, Options{Debug: true, LogOutput: &buf})

	mustPress(t, s, "j")

	out := buf.String()
	if !strings.Contains(out, "surface=content key=j mode=normal composing=false action=scroll.down stop") {
		t.Errorf("expected decision line, got:\n%s", out)
	}
	if !strings.Contains(out, "{view=") {
		t.Errorf("expected view field, got:\n%s", out)
	}
}

func TestShell_LogLevelOverride(t *testing.T) {
	s, _ := newShell(t, Options{LogLevel: "error"})
	if s.Logger().Level() != LogLevelError {
		t.Errorf("Level() = %v, want ERROR", s.Logger().Level())
	}

	if err := s.Reload(testConfig()); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if s.Logger().Level() != LogLevelError {
		t.Error("reload should not undo the command line level")
	}
}

func TestShell_Run(t *testing.T) {
	s, _ := newShell(t, Options{})

	keys := make(chan key.Event, 4)
	keys <- key.NewRuneEvent('j', 0)
	keys <- key.NewRuneEvent(' ', 0)
	keys <- key.NewRuneEvent('q', 0)

	var updates []Status
	err := s.Run(context.Background(), keys, func(st Status) {
		updates = append(updates, st)
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(updates) != 3 {
		t.Errorf("updates = %d, want 3", len(updates))
	}
	if !s.Done() {
		t.Error("expected the session to have ended")
	}
}

func TestShell_RunStopsOnCancel(t *testing.T) {
	s, _ := newShell(t, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Run(ctx, make(chan key.Event), nil); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}

func TestShell_BadConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Leader.Key = "<Nope>"

	_, err := New(Options{Config: cfg})
	if !errors.Is(err, ErrInitialization) {
		t.Errorf("New() error = %v, want ErrInitialization", err)
	}
}

func TestStatus_Lines(t *testing.T) {
	st := Status{
		View:      "0123456789",
		Views:     2,
		Mode:      mode.Insert,
		Composing: true,
		Keys:      7,
		Page: sim.State{
			URL:      "about:blank",
			Focus:    "search",
			Editable: true,
			Value:    "go",
			ScrollY:  40,
		},
	}

	lines := st.Lines()
	want := []string{
		"view 01234567 (2 open)  about:blank",
		"-- insert -- [leader]",
		`focus: search "go"`,
		"scroll: 0,40  reloads: 0/0",
		"keys: 7",
	}
	if len(lines) != len(want) {
		t.Fatalf("lines = %q", lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}

	if got := (Status{}).Lines(); len(got) != 1 {
		t.Errorf("empty status lines = %q", got)
	}
}
