// Package leader tracks the leader key composition window.
//
// A Timer holds a single piece of state: when the leader key was last
// armed. Whether a key press is part of a composed command is a pure
// function of that instant and the current time; nothing is scheduled and
// nothing needs to be cancelled.
package leader

import (
	"sync"
	"time"

	"github.com/dshills/modeshell/internal/input/key"
)

// DefaultTimeout is the default compose window.
const DefaultTimeout = 500 * time.Millisecond

// Clock supplies the current time. Tests substitute a fake.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the wall clock. time.Now carries a monotonic reading,
// so elapsed-time comparisons are unaffected by clock adjustments.
var SystemClock Clock = ClockFunc(time.Now)

// Timer tracks the leader key and the instant it was last armed.
//
// The zero state is Idle. Arm moves to Armed(now); Composing reports
// whether now falls strictly inside the window. There is no disarm: the
// window simply lapses.
type Timer struct {
	mu      sync.RWMutex
	token   key.Token
	timeout time.Duration
	armedAt time.Time
	armed   bool
}

// NewTimer creates an idle timer for the given leader token.
// A non-positive timeout selects DefaultTimeout.
func NewTimer(leaderKey key.Token, timeout time.Duration) *Timer {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Timer{
		token:   leaderKey,
		timeout: timeout,
	}
}

// Key returns the configured leader token.
func (t *Timer) Key() key.Token {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.token
}

// Timeout returns the compose window length.
func (t *Timer) Timeout() time.Duration {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.timeout
}

// Arm records a leader press at now.
// The armed instant never moves backwards.
func (t *Timer) Arm(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.armed && now.Before(t.armedAt) {
		return
	}
	t.armedAt = now
	t.armed = true
}

// Composing reports whether now is inside the compose window:
// now - armedAt < timeout.
func (t *Timer) Composing(now time.Time) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if !t.armed {
		return false
	}
	elapsed := now.Sub(t.armedAt)
	return elapsed >= 0 && elapsed < t.timeout
}

// ArmedAt returns the last arming instant and whether the timer was ever armed.
func (t *Timer) ArmedAt() (time.Time, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.armedAt, t.armed
}

// Reconfigure replaces the leader token and window, keeping the armed instant.
func (t *Timer) Reconfigure(leaderKey key.Token, timeout time.Duration) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.token = leaderKey
	t.timeout = timeout
}
