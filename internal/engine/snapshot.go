package engine

import (
	"time"

	"github.com/tidwall/sjson"
)

// Snapshot returns the engine state as a JSON document:
//
//	{"view":"...","mode":"normal","resolved":true,"generation":3,"issued":4,
//	 "composing":false,"leader":"<Space>","timeoutMs":500,
//	 "armedAt":"...","inspector":false,"entries":31,"scrollStep":40,
//	 "metrics":{...}}
//
// armedAt is omitted while the leader has never been armed.
func (e *Engine) Snapshot() (string, error) {
	e.mu.Lock()
	table := e.table
	step := e.step
	e.mu.Unlock()

	now := e.clock.Now()
	snap := e.oracle.Snapshot()
	m := e.metrics.Snapshot()

	type field struct {
		path  string
		value any
	}
	fields := []field{
		{"view", string(e.surface.View)},
		{"mode", snap.Mode.String()},
		{"resolved", snap.Resolved()},
		{"generation", snap.Generation},
		{"issued", e.oracle.Issued()},
		{"composing", e.timer.Composing(now)},
		{"leader", e.timer.Key().VimString()},
		{"timeoutMs", e.timer.Timeout().Milliseconds()},
		{"inspector", e.insp.Visible()},
		{"entries", table.Len()},
		{"scrollStep", step},
		{"metrics.keys", m.KeysTotal},
		{"metrics.window", m.WindowKeys},
		{"metrics.content", m.ContentKeys},
		{"metrics.actions", m.ActionsTotal},
		{"metrics.stopped", m.Stopped},
		{"metrics.proceeded", m.Proceeded},
		{"metrics.swallowed", m.Swallowed},
		{"metrics.leaderArms", m.LeaderArms},
		{"metrics.composed", m.Composed},
		{"metrics.missingCapabilities", m.MissingCapabilities},
		{"metrics.queryFailures", m.QueryFailures},
		{"metrics.scrolls", m.Scrolls},
		{"metrics.repeats", m.Repeats},
		{"metrics.p99LatencyUs", m.P99Latency.Microseconds()},
	}
	if at, ok := e.timer.ArmedAt(); ok {
		fields = append(fields, field{"armedAt", at.Format(time.RFC3339Nano)})
	}

	doc := "{}"
	for _, f := range fields {
		var err error
		doc, err = sjson.Set(doc, f.path, f.value)
		if err != nil {
			return "", err
		}
	}
	return doc, nil
}
