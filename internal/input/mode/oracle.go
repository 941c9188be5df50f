package mode

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/tidwall/gjson"

	"github.com/dshills/modeshell/internal/host"
)

// Errors reported to the oracle's error handler.
var (
	// ErrNoBridge indicates the oracle has no script bridge to query.
	ErrNoBridge = errors.New("no script bridge")

	// ErrNotBoolean indicates the mode query completed with a non-boolean value.
	ErrNotBoolean = errors.New("mode query did not return a boolean")
)

// Snapshot is the cached mode together with the generation that produced it.
type Snapshot struct {
	Mode Mode

	// Generation is the request that produced Mode. Zero means no query has
	// resolved yet and Mode is the Normal default.
	Generation uint64
}

// Resolved reports whether any query has completed successfully.
func (s Snapshot) Resolved() bool {
	return s.Generation != 0
}

// Stats counts oracle activity.
type Stats struct {
	Issued   uint64
	Applied  uint64
	Stale    uint64
	Failures uint64
}

// ErrorHandler receives query failures. The cache is never touched on failure.
type ErrorHandler func(generation uint64, err error)

// Oracle caches the result of an asynchronous "is the focused element a
// text input" query.
//
// Every Refresh takes the next generation number. A completion is applied
// only if its generation is newer than the one already cached, so a slow
// response can never overwrite a faster, newer one. The cache is swapped
// atomically and may be written from any goroutine.
type Oracle struct {
	bridge  host.ScriptBridge
	script  string
	onError ErrorHandler

	issued   atomic.Uint64
	cache    atomic.Pointer[Snapshot]
	applied  atomic.Uint64
	stale    atomic.Uint64
	failures atomic.Uint64
}

// Option configures an Oracle.
type Option func(*Oracle)

// WithErrorHandler sets the handler for query failures.
func WithErrorHandler(fn ErrorHandler) Option {
	return func(o *Oracle) {
		o.onError = fn
	}
}

// NewOracle creates an oracle that runs script through bridge.
// Until a query resolves the oracle reports Normal.
func NewOracle(bridge host.ScriptBridge, script string, opts ...Option) *Oracle {
	o := &Oracle{
		bridge: bridge,
		script: script,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.cache.Store(&Snapshot{Mode: Normal})
	return o
}

// Current returns the cached mode without blocking.
func (o *Oracle) Current() Mode {
	return o.cache.Load().Mode
}

// Snapshot returns the cached mode and its generation.
func (o *Oracle) Snapshot() Snapshot {
	return *o.cache.Load()
}

// Issued returns the latest generation handed out.
func (o *Oracle) Issued() uint64 {
	return o.issued.Load()
}

// Stats returns activity counters.
func (o *Oracle) Stats() Stats {
	return Stats{
		Issued:   o.issued.Load(),
		Applied:  o.applied.Load(),
		Stale:    o.stale.Load(),
		Failures: o.failures.Load(),
	}
}

// Refresh issues a new mode query and returns its generation.
// It never waits for the answer.
func (o *Oracle) Refresh(ctx context.Context) uint64 {
	gen := o.issued.Add(1)
	if o.bridge == nil {
		o.fail(gen, ErrNoBridge)
		return gen
	}
	o.bridge.Evaluate(ctx, o.script, func(v host.Value, err error) {
		o.complete(gen, v, err)
	})
	return gen
}

// complete applies the result of request gen.
func (o *Oracle) complete(gen uint64, v host.Value, err error) {
	if err != nil {
		o.fail(gen, err)
		return
	}
	m, err := Decode(v)
	if err != nil {
		o.fail(gen, err)
		return
	}
	if !o.apply(gen, m) {
		o.stale.Add(1)
		return
	}
	o.applied.Add(1)
}

// apply stores m unless a newer generation is already cached.
func (o *Oracle) apply(gen uint64, m Mode) bool {
	next := &Snapshot{Mode: m, Generation: gen}
	for {
		cur := o.cache.Load()
		if cur.Generation >= gen {
			return false
		}
		if o.cache.CompareAndSwap(cur, next) {
			return true
		}
	}
}

func (o *Oracle) fail(gen uint64, err error) {
	o.failures.Add(1)
	if o.onError != nil {
		o.onError(gen, err)
	}
}

// Decode interprets a mode query completion value.
func Decode(v host.Value) (Mode, error) {
	if !gjson.ValidBytes(v) {
		return Normal, fmt.Errorf("%w: invalid JSON %q", ErrNotBoolean, string(v))
	}
	switch r := gjson.ParseBytes(v); r.Type {
	case gjson.True:
		return Insert, nil
	case gjson.False:
		return Normal, nil
	default:
		return Normal, fmt.Errorf("%w: got %s", ErrNotBoolean, r.Type)
	}
}
