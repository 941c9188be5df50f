package keymap

import (
	"errors"
	"slices"
	"testing"

	"github.com/dshills/modeshell/internal/input/key"
	"github.com/dshills/modeshell/internal/input/mode"
)

func defaultTable(t *testing.T) *Table {
	t.Helper()
	tbl, err := Default(DefaultOptions())
	if err != nil {
		t.Fatalf("Default() error: %v", err)
	}
	return tbl
}

func TestDefaultDispatch(t *testing.T) {
	tbl := defaultTable(t)

	tests := []struct {
		name      string
		mode      mode.Mode
		spec      string
		composing bool
		action    Action
		prop      Propagation
		count     int
	}{
		{"normal j scrolls", mode.Normal, "j", false, ActionScrollDown, Stop, 1},
		{"insert j is typed", mode.Insert, "j", false, ActionPassThrough, Proceed, 1},
		{"insert ctrl-j scrolls", mode.Insert, "<C-j>", false, ActionScrollDown, Stop, 1},
		{"normal d half page", mode.Normal, "d", false, ActionScrollDown, Stop, HalfPage},
		{"normal G bottom", mode.Normal, "G", false, ActionScrollBottom, Stop, 1},
		{"reload", mode.Insert, "<C-r>", false, ActionReload, Stop, 1},
		{"hard reload", mode.Normal, "Ctrl+Shift+R", false, ActionHardReload, Stop, 1},
		{"inspector", mode.Insert, "<C-S-i>", false, ActionToggleInspector, Stop, 1},
		{"emoji picker", mode.Insert, "<C-.>", false, ActionSuppress, Stop, 1},
		{"alt-left", mode.Insert, "<A-Left>", false, ActionGoBack, Stop, 1},
		{"unbound", mode.Normal, "z", false, ActionPassThrough, Proceed, 1},
		{"leader arms in normal", mode.Normal, "<Space>", false, ActionArmLeader, Stop, 1},
		{"bare leader typed in insert", mode.Insert, "<Space>", false, ActionPassThrough, Proceed, 1},
		{"ctrl leader arms in insert", mode.Insert, "<C-Space>", false, ActionArmLeader, Stop, 1},
		{"compose quit", mode.Normal, "q", true, ActionQuit, Stop, 1},
		{"compose quit from insert", mode.Insert, "q", true, ActionQuit, Stop, 1},
		{"compose new tab", mode.Normal, "n", true, ActionNewTab, Stop, 1},
		{"compose re-arm", mode.Normal, "<Space>", true, ActionArmLeader, Stop, 1},
		{"n outside window", mode.Normal, "n", false, ActionPassThrough, Proceed, 1},
		{"q outside window", mode.Normal, "q", false, ActionPassThrough, Proceed, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tbl.Dispatch(tt.mode, key.MustParse(tt.spec), tt.composing)
			if got.Action != tt.action {
				t.Errorf("Action = %q, want %q", got.Action, tt.action)
			}
			if got.Propagation != tt.prop {
				t.Errorf("Propagation = %v, want %v", got.Propagation, tt.prop)
			}
			if got.Count != tt.count {
				t.Errorf("Count = %d, want %d", got.Count, tt.count)
			}
		})
	}
}

func TestComposingSwallowsEverythingElse(t *testing.T) {
	tbl := defaultTable(t)

	specs := []string{"j", "<C-j>", "<C-r>", "<C-I>", "x", "<Esc>", "<F12>", "Q", "<C-q>"}
	for _, m := range []mode.Mode{mode.Normal, mode.Insert} {
		for _, spec := range specs {
			got := tbl.Dispatch(m, key.MustParse(spec), true)
			if got.Action != ActionNone || got.Propagation != Stop || got.Matched() {
				t.Errorf("%v %s while composing = %+v, want swallowed", m, spec, got)
			}
		}
	}
}

func TestModifiedLeaderInsertWithoutCtrlRule(t *testing.T) {
	opts := DefaultOptions()
	opts.InsertRequiresCtrl = false
	tbl, err := Default(opts)
	if err != nil {
		t.Fatal(err)
	}

	got := tbl.Dispatch(mode.Insert, key.RuneToken(' '), false)
	if got.Action != ActionArmLeader {
		t.Errorf("Action = %q, want leader.arm when Control is not required", got.Action)
	}
}

func TestCustomLeader(t *testing.T) {
	tbl, err := Default(Options{Leader: key.RuneToken(','), InsertRequiresCtrl: true})
	if err != nil {
		t.Fatal(err)
	}

	if got := tbl.Dispatch(mode.Normal, key.RuneToken(','), false); got.Action != ActionArmLeader {
		t.Errorf(", = %q, want leader.arm", got.Action)
	}
	if got := tbl.Dispatch(mode.Normal, key.RuneToken(' '), false); got.Action != ActionPassThrough {
		t.Errorf("space = %q, want passthrough", got.Action)
	}
}

func TestNewTableRequiresLeader(t *testing.T) {
	_, err := NewTable(Options{})
	if !errors.Is(err, ErrNoLeader) {
		t.Errorf("err = %v, want ErrNoLeader", err)
	}
}

func TestNewTableRejectsInvalidEntry(t *testing.T) {
	_, err := NewTable(DefaultOptions(), Entry{Modes: mode.InAny, Token: key.RuneToken('x'), Action: "launch.rockets"})
	if err == nil {
		t.Error("expected error for unknown action")
	}
}

func TestZeroTokenPassesThrough(t *testing.T) {
	tbl := defaultTable(t)

	if got := tbl.Dispatch(mode.Normal, key.Token{}, false); got.Propagation != Proceed {
		t.Errorf("zero token = %+v, want proceed", got)
	}
	if got := tbl.Dispatch(mode.Normal, key.Token{}, true); got.Propagation != Stop {
		t.Errorf("zero token while composing = %+v, want stop", got)
	}
}

func TestPropagationRules(t *testing.T) {
	tbl, err := NewTable(DefaultOptions(),
		Entry{Modes: mode.InNormal, Token: key.RuneToken('x'), Action: ActionScrollDown, Propagation: Proceed},
		Entry{Modes: mode.InAny, Token: key.MustParse("<C-x>"), Action: ActionScrollDown, Propagation: Proceed},
		Entry{Modes: mode.InAny, Token: key.MustParse("<F1>"), Action: ActionToggleInspector, Propagation: Proceed},
		Entry{Modes: mode.InAny, Token: key.MustParse("<F2>"), Action: ActionPassThrough, Propagation: Stop},
	)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		spec string
		want Propagation
	}{
		{"x", Proceed},
		{"<C-x>", Stop},
		{"<F1>", Stop},
		{"<F2>", Proceed},
	}

	for _, tt := range tests {
		if got := tbl.Dispatch(mode.Normal, key.MustParse(tt.spec), false); got.Propagation != tt.want {
			t.Errorf("%s propagation = %v, want %v", tt.spec, got.Propagation, tt.want)
		}
	}
}

func TestBuildUserBindingsTakePrecedence(t *testing.T) {
	tbl, err := Build(DefaultOptions(), []Binding{
		NewBinding("j", "scroll.up"),
		NewBinding("<C-e>", "scroll.down").WithModes("normal", "insert").WithCount(3),
		NewBinding("t", "tab.new").AsLeader(),
	})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	if got := tbl.Dispatch(mode.Normal, key.RuneToken('j'), false); got.Action != ActionScrollUp {
		t.Errorf("j = %q, want user override scroll.up", got.Action)
	}
	got := tbl.Dispatch(mode.Insert, key.MustParse("<C-e>"), false)
	if got.Action != ActionScrollDown || got.Count != 3 {
		t.Errorf("<C-e> = %+v, want scroll.down x3", got)
	}
	if got := tbl.Dispatch(mode.Insert, key.RuneToken('t'), true); got.Action != ActionNewTab {
		t.Errorf("leader t = %q, want tab.new", got.Action)
	}
	if got := tbl.Dispatch(mode.Normal, key.RuneToken('t'), false); got.Action != ActionPassThrough {
		t.Errorf("t outside window = %q, want passthrough", got.Action)
	}
}

func TestBindingEntryErrors(t *testing.T) {
	tests := []Binding{
		NewBinding("", "scroll.down"),
		NewBinding("<Q-j>", "scroll.down"),
		NewBinding("j", "scroll.sideways"),
		NewBinding("j", "scroll.down").WithModes("visual"),
		NewBinding("j", "scroll.down").WithCount(-1),
	}

	for _, b := range tests {
		if _, err := b.Entry(); err == nil {
			t.Errorf("Entry(%+v) should fail", b)
		}
	}
}

func TestFromEntry(t *testing.T) {
	b := NewBinding("<C-e>", "scroll.down").WithModes("normal", "insert").WithCount(3)
	e, err := b.Entry()
	if err != nil {
		t.Fatal(err)
	}

	got := FromEntry(e)
	if got.Keys != "<C-e>" || got.Action != "scroll.down" || got.Count != 3 {
		t.Errorf("FromEntry = %+v", got)
	}
	if len(got.Modes) != 2 {
		t.Errorf("Modes = %v, want both", got.Modes)
	}

	back, err := got.Entry()
	if err != nil {
		t.Fatal(err)
	}
	if back.Token != e.Token || back.Modes != e.Modes {
		t.Errorf("round trip = %+v, want %+v", back, e)
	}
}

func TestEntriesIsACopy(t *testing.T) {
	tbl := defaultTable(t)
	entries := tbl.Entries()
	entries[0].Action = ActionNone

	if tbl.Entries()[0].Action == ActionNone {
		t.Error("Entries must return a copy")
	}
	if tbl.Len() != len(entries) {
		t.Errorf("Len = %d, want %d", tbl.Len(), len(entries))
	}
}

func TestActionHelpers(t *testing.T) {
	if !ActionScrollTop.IsScroll() || ActionReload.IsScroll() {
		t.Error("IsScroll misclassified")
	}
	if !ActionQuit.Valid() || Action("nope").Valid() {
		t.Error("Valid misclassified")
	}
	actions := Actions()
	if len(actions) != len(knownActions) {
		t.Error("Actions should list every known action")
	}
	if !slices.IsSorted(actions) {
		t.Errorf("Actions() = %v, want name order", actions)
	}
	if Stop.String() != "stop" || Proceed.String() != "proceed" {
		t.Error("Propagation names")
	}
}
