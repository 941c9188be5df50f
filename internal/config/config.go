package config

import (
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/dshills/modeshell/internal/input/key"
	"github.com/dshills/modeshell/internal/input/keymap"
	"github.com/dshills/modeshell/internal/input/leader"
)

// Limits enforced by Validate.
const (
	MaxComposeTimeout = 10 * time.Second
	MaxScrollStep     = 10000
)

// LogLevels lists the accepted logging.level values.
var LogLevels = []string{"debug", "info", "warn", "error"}

// Config is the complete modeshell configuration.
type Config struct {
	Leader   LeaderConfig     `toml:"leader" yaml:"leader"`
	Scroll   ScrollConfig     `toml:"scroll" yaml:"scroll"`
	Logging  LoggingConfig    `toml:"logging" yaml:"logging"`
	Page     PageConfig       `toml:"page" yaml:"page"`
	Bindings []keymap.Binding `toml:"bindings" yaml:"bindings"`

	// Path is the file the configuration was read from, if any.
	Path string `toml:"-" yaml:"-"`
}

// LeaderConfig configures the leader key.
type LeaderConfig struct {
	// Key is the leader key specification, without modifiers.
	Key string `toml:"key" yaml:"key"`

	// Timeout is the compose window.
	Timeout Duration `toml:"timeout" yaml:"timeout"`

	// InsertRequiresCtrl makes the leader arm in Insert mode only with
	// Control held.
	InsertRequiresCtrl bool `toml:"insert_requires_ctrl" yaml:"insert_requires_ctrl"`
}

// ScrollConfig configures scrolling.
type ScrollConfig struct {
	// Step is the scroll unit in pixels.
	Step int `toml:"step" yaml:"step"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	// Level is one of debug, info, warn or error.
	Level string `toml:"level" yaml:"level"`

	// File, when set, receives log output instead of stderr.
	File string `toml:"file" yaml:"file"`
}

// PageConfig configures the simulated page.
type PageConfig struct {
	// Home is the address each new view opens.
	Home string `toml:"home" yaml:"home"`

	// Latency delays every script completion.
	Latency Duration `toml:"latency" yaml:"latency"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Leader: LeaderConfig{
			Key:                "<Space>",
			Timeout:            Duration(leader.DefaultTimeout),
			InsertRequiresCtrl: true,
		},
		Scroll: ScrollConfig{
			Step: 40,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Page: PageConfig{
			Home:    "about:blank",
			Latency: Duration(5 * time.Millisecond),
		},
	}
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Bindings = make([]keymap.Binding, len(c.Bindings))
	for i, b := range c.Bindings {
		b.Modes = slices.Clone(b.Modes)
		out.Bindings[i] = b
	}
	return &out
}

// LeaderToken parses the leader key.
func (c *Config) LeaderToken() (key.Token, error) {
	return key.Parse(c.Leader.Key)
}

// KeymapOptions returns the command table options.
func (c *Config) KeymapOptions() (keymap.Options, error) {
	tok, err := c.LeaderToken()
	if err != nil {
		return keymap.Options{}, err
	}
	return keymap.Options{
		Leader:             tok,
		InsertRequiresCtrl: c.Leader.InsertRequiresCtrl,
	}, nil
}

// Table builds the command table: configured bindings, then defaults.
func (c *Config) Table() (*keymap.Table, error) {
	opts, err := c.KeymapOptions()
	if err != nil {
		return nil, err
	}
	return keymap.Build(opts, c.Bindings)
}

// Validate checks the configuration and reports every problem found.
func (c *Config) Validate() error {
	var issues []Issue
	add := func(field, msg string) {
		issues = append(issues, Issue{Field: field, Message: msg})
	}

	if tok, err := c.LeaderToken(); err != nil {
		add("leader.key", err.Error())
	} else if tok.Modifiers != 0 {
		add("leader.key", "must not include modifiers")
	}

	switch t := c.Leader.Timeout.Std(); {
	case t <= 0:
		add("leader.timeout", "must be positive")
	case t > MaxComposeTimeout:
		add("leader.timeout", "must be at most "+MaxComposeTimeout.String())
	}

	if c.Scroll.Step <= 0 || c.Scroll.Step > MaxScrollStep {
		add("scroll.step", "must be between 1 and 10000")
	}

	if !slices.Contains(LogLevels, strings.ToLower(c.Logging.Level)) {
		add("logging.level", "must be one of "+strings.Join(LogLevels, ", "))
	}

	if c.Page.Latency < 0 {
		add("page.latency", "must not be negative")
	}

	for i, b := range c.Bindings {
		if _, err := b.Entry(); err != nil {
			add(bindingField(i), err.Error())
		}
	}

	if len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}
	return nil
}

func bindingField(i int) string {
	return "bindings[" + strconv.Itoa(i) + "]"
}
