package engine

import (
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dshills/modeshell/internal/input/keymap"
)

const defaultLatencySamples = 1000

// Metrics tracks dispatch activity. It is safe for concurrent use and may
// be shared by the engines of several views.
type Metrics struct {
	// Event counters
	keysTotal     atomic.Uint64
	windowKeys    atomic.Uint64
	contentKeys   atomic.Uint64
	actionsTotal  atomic.Uint64
	stopped       atomic.Uint64
	proceeded     atomic.Uint64
	swallowed     atomic.Uint64
	leaderArms    atomic.Uint64
	composed      atomic.Uint64
	missingCaps   atomic.Uint64
	queryFailures atomic.Uint64
	scrolls       atomic.Uint64
	repeats       atomic.Uint64

	// Latency tracking
	mu          sync.RWMutex
	latencies   []time.Duration
	maxSamples  int
	latencyIdx  int
	peakLatency atomic.Int64

	startTime time.Time
	enabled   atomic.Bool
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	m := &Metrics{
		latencies:  make([]time.Duration, defaultLatencySamples),
		maxSamples: defaultLatencySamples,
		startTime:  time.Now(),
	}
	m.enabled.Store(true)
	return m
}

// SetEnabled enables or disables metrics collection.
func (m *Metrics) SetEnabled(enabled bool) {
	m.enabled.Store(enabled)
}

// IsEnabled returns whether metrics collection is enabled.
func (m *Metrics) IsEnabled() bool {
	return m.enabled.Load()
}

// RecordKey records one dispatched key press.
func (m *Metrics) RecordKey(src Source, res keymap.Result, composing bool, latency time.Duration) {
	if !m.enabled.Load() {
		return
	}

	m.keysTotal.Add(1)
	if src == SourceContent {
		m.contentKeys.Add(1)
	} else {
		m.windowKeys.Add(1)
	}

	if res.Propagation == keymap.Stop {
		m.stopped.Add(1)
	} else {
		m.proceeded.Add(1)
	}

	switch {
	case res.Action == keymap.ActionArmLeader:
		m.leaderArms.Add(1)
	case composing && res.Matched():
		m.composed.Add(1)
	case composing:
		m.swallowed.Add(1)
	}

	if res.Matched() && res.Action != keymap.ActionPassThrough {
		m.actionsTotal.Add(1)
	}
	if res.Action.IsScroll() {
		m.scrolls.Add(1)
	}

	latencyNs := latency.Nanoseconds()
	for {
		current := m.peakLatency.Load()
		if latencyNs <= current {
			break
		}
		if m.peakLatency.CompareAndSwap(current, latencyNs) {
			break
		}
	}

	m.mu.Lock()
	m.latencies[m.latencyIdx] = latency
	m.latencyIdx = (m.latencyIdx + 1) % m.maxSamples
	m.mu.Unlock()
}

// RecordRepeat records a press already handled through another surface.
// It counts toward the surface totals and the propagation answered, but
// not toward actions.
func (m *Metrics) RecordRepeat(src Source, res keymap.Result) {
	if !m.enabled.Load() {
		return
	}

	m.keysTotal.Add(1)
	m.repeats.Add(1)
	if src == SourceContent {
		m.contentKeys.Add(1)
	} else {
		m.windowKeys.Add(1)
	}
	if res.Propagation == keymap.Stop {
		m.stopped.Add(1)
	} else {
		m.proceeded.Add(1)
	}
}

// RecordMissingCapability records a command skipped for lack of a host
// capability.
func (m *Metrics) RecordMissingCapability() {
	if !m.enabled.Load() {
		return
	}
	m.missingCaps.Add(1)
}

// RecordQueryFailure records a failed mode query.
func (m *Metrics) RecordQueryFailure() {
	if !m.enabled.Load() {
		return
	}
	m.queryFailures.Add(1)
}

// MetricsSnapshot holds a point-in-time view of metrics.
type MetricsSnapshot struct {
	KeysTotal           uint64
	WindowKeys          uint64
	ContentKeys         uint64
	ActionsTotal        uint64
	Stopped             uint64
	Proceeded           uint64
	Swallowed           uint64
	LeaderArms          uint64
	Composed            uint64
	MissingCapabilities uint64
	QueryFailures       uint64
	Scrolls             uint64
	Repeats             uint64

	AvgLatency  time.Duration
	MaxLatency  time.Duration
	P99Latency  time.Duration
	PeakLatency time.Duration

	KeysPerSecond float64
	Uptime        time.Duration
}

// Snapshot returns a point-in-time view of all metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	latencies := make([]time.Duration, len(m.latencies))
	copy(latencies, m.latencies)
	uptime := time.Since(m.startTime)
	m.mu.RUnlock()

	keys := m.keysTotal.Load()

	snap := MetricsSnapshot{
		KeysTotal:           keys,
		WindowKeys:          m.windowKeys.Load(),
		ContentKeys:         m.contentKeys.Load(),
		ActionsTotal:        m.actionsTotal.Load(),
		Stopped:             m.stopped.Load(),
		Proceeded:           m.proceeded.Load(),
		Swallowed:           m.swallowed.Load(),
		LeaderArms:          m.leaderArms.Load(),
		Composed:            m.composed.Load(),
		MissingCapabilities: m.missingCaps.Load(),
		QueryFailures:       m.queryFailures.Load(),
		Scrolls:             m.scrolls.Load(),
		Repeats:             m.repeats.Load(),
		PeakLatency:         time.Duration(m.peakLatency.Load()),
		Uptime:              uptime,
	}
	if uptime > 0 {
		snap.KeysPerSecond = float64(keys) / uptime.Seconds()
	}
	snap.AvgLatency, snap.MaxLatency, snap.P99Latency = calculateLatencyStats(latencies)
	return snap
}

// calculateLatencyStats computes average, max, and p99 from a slice of latencies.
func calculateLatencyStats(latencies []time.Duration) (avg, maxLat, p99 time.Duration) {
	valid := make([]time.Duration, 0, len(latencies))
	for _, l := range latencies {
		if l > 0 {
			valid = append(valid, l)
		}
	}
	if len(valid) == 0 {
		return 0, 0, 0
	}

	var sum time.Duration
	for _, l := range valid {
		sum += l
		if l > maxLat {
			maxLat = l
		}
	}
	avg = sum / time.Duration(len(valid))

	slices.Sort(valid)
	idx := int(float64(len(valid)) * 0.99)
	if idx >= len(valid) {
		idx = len(valid) - 1
	}
	p99 = valid[idx]

	return avg, maxLat, p99
}

// Reset clears all metrics.
func (m *Metrics) Reset() {
	m.keysTotal.Store(0)
	m.windowKeys.Store(0)
	m.contentKeys.Store(0)
	m.actionsTotal.Store(0)
	m.stopped.Store(0)
	m.proceeded.Store(0)
	m.swallowed.Store(0)
	m.leaderArms.Store(0)
	m.composed.Store(0)
	m.missingCaps.Store(0)
	m.queryFailures.Store(0)
	m.scrolls.Store(0)
	m.repeats.Store(0)
	m.peakLatency.Store(0)

	m.mu.Lock()
	for i := range m.latencies {
		m.latencies[i] = 0
	}
	m.latencyIdx = 0
	m.startTime = time.Now()
	m.mu.Unlock()
}
