package main

import (
	"strings"
	"testing"

	"github.com/dshills/modeshell/internal/input/key"
	"github.com/dshills/modeshell/internal/input/keymap"
	"github.com/dshills/modeshell/internal/input/mode"
)

func TestHintsMatchDefaultTable(t *testing.T) {
	table, err := keymap.Default(keymap.DefaultOptions())
	if err != nil {
		t.Fatalf("Default: %v", err)
	}

	for _, h := range hints {
		t.Run(h.text, func(t *testing.T) {
			composing := false
			var res keymap.Result
			for i, spec := range h.seq {
				res = table.Dispatch(mode.Normal, key.MustParse(spec), composing)
				if i < len(h.seq)-1 {
					if res.Action != keymap.ActionArmLeader {
						t.Fatalf("%s: action = %s, want leader.arm", spec, res.Action)
					}
					composing = true
				}
			}
			if res.Action != h.action {
				t.Errorf("action = %s, want %s", res.Action, h.action)
			}
		})
	}
}

func TestFooter(t *testing.T) {
	got := footer()
	for _, want := range []string{"<Space>n tab", "<C-w> close", "<Space>q quit"} {
		if !strings.Contains(got, want) {
			t.Errorf("footer %q missing %q", got, want)
		}
	}
	if strings.Contains(got, "<Space>t") || strings.Contains(got, "<Space>w") {
		t.Errorf("footer %q advertises an unbound leader command", got)
	}
}
