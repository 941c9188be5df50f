package config

import (
	"errors"
	"testing"
	"time"
)

func lookupMap(m map[string]string) LookupFunc {
	return func(name string) (string, bool) {
		v, ok := m[name]
		return v, ok
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := ApplyEnv(cfg, lookupMap(map[string]string{
		EnvLeader:         ",",
		EnvComposeTimeout: "300",
		EnvInsertCtrl:     "off",
		EnvScrollStep:     "12",
		EnvLogLevel:       "DEBUG",
		EnvLogFile:        "/tmp/modeshell.log",
		EnvPageLatency:    "20ms",
	}))
	if err != nil {
		t.Fatalf("ApplyEnv() error = %v", err)
	}

	if cfg.Leader.Key != "," {
		t.Errorf("Leader.Key = %q", cfg.Leader.Key)
	}
	if cfg.Leader.Timeout.Std() != 300*time.Millisecond {
		t.Errorf("Leader.Timeout = %v", cfg.Leader.Timeout)
	}
	if cfg.Leader.InsertRequiresCtrl {
		t.Error("InsertRequiresCtrl = true")
	}
	if cfg.Scroll.Step != 12 {
		t.Errorf("Scroll.Step = %d", cfg.Scroll.Step)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q", cfg.Logging.Level)
	}
	if cfg.Logging.File != "/tmp/modeshell.log" {
		t.Errorf("Logging.File = %q", cfg.Logging.File)
	}
	if cfg.Page.Latency.Std() != 20*time.Millisecond {
		t.Errorf("Page.Latency = %v", cfg.Page.Latency)
	}
}

func TestApplyEnvIgnoresEmpty(t *testing.T) {
	cfg := Default()
	if err := ApplyEnv(cfg, lookupMap(map[string]string{EnvScrollStep: "  "})); err != nil {
		t.Fatalf("ApplyEnv() error = %v", err)
	}
	if cfg.Scroll.Step != 40 {
		t.Errorf("Scroll.Step = %d, want default", cfg.Scroll.Step)
	}
}

func TestApplyEnvReportsEveryBadValue(t *testing.T) {
	cfg := Default()
	err := ApplyEnv(cfg, lookupMap(map[string]string{
		EnvScrollStep:     "lots",
		EnvInsertCtrl:     "maybe",
		EnvComposeTimeout: "later",
	}))

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("ApplyEnv() error = %v, want *ValidationError", err)
	}
	for _, f := range []string{"scroll.step", "leader.insert_requires_ctrl", "leader.timeout"} {
		if !verr.Has(f) {
			t.Errorf("missing issue for %s", f)
		}
	}
	if cfg.Scroll.Step != 40 {
		t.Error("bad value should leave the setting unchanged")
	}
}

func TestEnvNames(t *testing.T) {
	names := EnvNames()
	if len(names) != 7 {
		t.Fatalf("len(EnvNames()) = %d, want 7", len(names))
	}
	for _, n := range names {
		if len(n) <= len(EnvPrefix) || n[:len(EnvPrefix)] != EnvPrefix {
			t.Errorf("%s lacks prefix", n)
		}
	}
}
