package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// EnvPrefix prefixes every environment variable the loader reads.
const EnvPrefix = "MODESHELL_"

// Environment variables mapped onto settings.
const (
	EnvLeader         = EnvPrefix + "LEADER"
	EnvComposeTimeout = EnvPrefix + "COMPOSE_TIMEOUT"
	EnvInsertCtrl     = EnvPrefix + "INSERT_REQUIRES_CTRL"
	EnvScrollStep     = EnvPrefix + "SCROLL_STEP"
	EnvLogLevel       = EnvPrefix + "LOG_LEVEL"
	EnvLogFile        = EnvPrefix + "LOG_FILE"
	EnvPageLatency    = EnvPrefix + "PAGE_LATENCY"
)

// LookupFunc reads one environment variable. os.LookupEnv satisfies it.
type LookupFunc func(name string) (string, bool)

// envSetting applies one variable to the configuration.
type envSetting struct {
	name  string
	field string
	apply func(c *Config, v string) error
}

var envSettings = []envSetting{
	{EnvLeader, "leader.key", func(c *Config, v string) error {
		c.Leader.Key = v
		return nil
	}},
	{EnvComposeTimeout, "leader.timeout", func(c *Config, v string) error {
		d, err := parseDuration(v)
		if err == nil {
			c.Leader.Timeout = Duration(d)
		}
		return err
	}},
	{EnvInsertCtrl, "leader.insert_requires_ctrl", func(c *Config, v string) error {
		b, err := parseBool(v)
		if err == nil {
			c.Leader.InsertRequiresCtrl = b
		}
		return err
	}},
	{EnvScrollStep, "scroll.step", func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err == nil {
			c.Scroll.Step = n
		}
		return err
	}},
	{EnvLogLevel, "logging.level", func(c *Config, v string) error {
		c.Logging.Level = strings.ToLower(v)
		return nil
	}},
	{EnvLogFile, "logging.file", func(c *Config, v string) error {
		c.Logging.File = v
		return nil
	}},
	{EnvPageLatency, "page.latency", func(c *Config, v string) error {
		d, err := parseDuration(v)
		if err == nil {
			c.Page.Latency = Duration(d)
		}
		return err
	}},
}

// ApplyEnv overrides settings from environment variables read through
// lookup. Empty values are treated as unset.
func ApplyEnv(c *Config, lookup LookupFunc) error {
	var issues []Issue
	for _, s := range envSettings {
		v, ok := lookup(s.name)
		v = strings.TrimSpace(v)
		if !ok || v == "" {
			continue
		}
		if err := s.apply(c, v); err != nil {
			issues = append(issues, Issue{
				Field:   s.field,
				Message: fmt.Sprintf("%s=%q: %v", s.name, v, err),
			})
		}
	}
	if len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}
	return nil
}

// EnvNames returns the recognised variable names.
func EnvNames() []string {
	names := make([]string, len(envSettings))
	for i, s := range envSettings {
		names[i] = s.name
	}
	return names
}

// parseDuration accepts Go duration syntax or a bare number of milliseconds.
func parseDuration(s string) (time.Duration, error) {
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	return time.ParseDuration(s)
}

// parseBool accepts the spellings the shell commonly uses.
func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "true", "yes", "on", "1":
		return true, nil
	case "false", "no", "off", "0":
		return false, nil
	}
	return false, fmt.Errorf("not a boolean")
}
