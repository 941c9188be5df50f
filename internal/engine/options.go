package engine

import (
	"time"

	"github.com/dshills/modeshell/internal/host"
	"github.com/dshills/modeshell/internal/input/leader"
)

// Default configuration values.
const (
	DefaultScrollStep     = 40
	DefaultComposeTimeout = leader.DefaultTimeout
)

// Logger is the logging surface the engine needs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// Option configures an Engine during creation.
type Option func(*Engine)

// WithClock sets the clock used for the compose window.
func WithClock(c leader.Clock) Option {
	return func(e *Engine) {
		if c != nil {
			e.clock = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithScrollStep sets the scroll unit in pixels.
func WithScrollStep(px int) Option {
	return func(e *Engine) {
		if px > 0 {
			e.step = px
		}
	}
}

// WithComposeTimeout sets the leader window.
func WithComposeTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithScripts sets the snippet dialect sent through the script bridge.
func WithScripts(s host.Scripts) Option {
	return func(e *Engine) {
		e.scripts = s
	}
}

// WithMetrics shares a metrics collector between engines.
func WithMetrics(m *Metrics) Option {
	return func(e *Engine) {
		if m != nil {
			e.metrics = m
		}
	}
}
