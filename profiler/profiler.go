// Package profiler - Lightweight operation timing for evaluation runs.
//
// The evaluator spends its time in two places, image preprocessing and model
// inference. The profiler tracks wall-clock latency per named operation so a
// run can report where the time went without attaching an external tracer.
package profiler

import (
	"sort"
	"sync"
	"time"
)

// OperationStats is a snapshot of one operation's timing statistics.
type OperationStats struct {
	// Name is the operation name.
	Name string `json:"name"`
	// Count is the number of recorded invocations.
	Count int64 `json:"count"`
	// Total is the cumulative wall-clock time.
	Total time.Duration `json:"total"`
	// Min is the fastest recorded invocation.
	Min time.Duration `json:"min"`
	// Max is the slowest recorded invocation.
	Max time.Duration `json:"max"`
}

// Average returns the mean invocation latency.
func (s OperationStats) Average() time.Duration {
	if s.Count == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Count)
}

// Profiler accumulates per-operation timing. Safe for concurrent use; the
// evaluator's shard workers all record into one instance.
type Profiler struct {
	mu  sync.Mutex
	ops map[string]*OperationStats
}

// New creates an empty profiler.
func New() *Profiler {
	return &Profiler{ops: make(map[string]*OperationStats)}
}

// StartOperation begins timing one invocation of the named operation.
//
// Returns:
// - A function to call when the operation completes.
func (p *Profiler) StartOperation(name string) func() {
	start := time.Now()
	return func() {
		p.Record(name, time.Since(start))
	}
}

// Record adds one invocation of the named operation with the given duration.
func (p *Profiler) Record(name string, d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	stats, ok := p.ops[name]
	if !ok {
		stats = &OperationStats{Name: name, Min: d, Max: d}
		p.ops[name] = stats
	}

	stats.Count++
	stats.Total += d
	if d < stats.Min {
		stats.Min = d
	}
	if d > stats.Max {
		stats.Max = d
	}
}

// Stats returns a snapshot of all operations, sorted by name.
func (p *Profiler) Stats() []OperationStats {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]OperationStats, 0, len(p.ops))
	for _, stats := range p.ops {
		out = append(out, *stats)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Name < out[b].Name })

	return out
}
