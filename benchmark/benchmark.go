// Package benchmark - Classification latency benchmarking across delegates.
//
// The accuracy evaluator answers "how accurate is this model"; the benchmark
// suite answers "how fast does it run under each delegate". Both share the
// same preprocessing and inference stack, so the measured numbers match what
// an evaluation run will see.
package benchmark

import (
	"runtime"
	"time"

	"github.com/pkg/errors"
)

// Scenario defines one benchmark configuration.
type Scenario struct {
	// Name identifies the scenario in reports.
	Name string `json:"name"           yaml:"name"`
	// Delegate is the execution backend to benchmark.
	Delegate string `json:"delegate"       yaml:"delegate"`
	// IntraOpThreads is the runtime's intra-op thread count.
	IntraOpThreads int `json:"intraOpThreads" yaml:"intraOpThreads"`
	// Iterations is how many inference runs to measure.
	Iterations int `json:"iterations"     yaml:"iterations"`
	// WarmupRuns are unmeasured runs before the iterations start.
	WarmupRuns int `json:"warmupRuns"     yaml:"warmupRuns"`
}

// WithDefaults returns a copy of the scenario with unset fields defaulted.
func (s Scenario) WithDefaults() Scenario {
	if s.Iterations <= 0 {
		s.Iterations = 100
	}
	if s.WarmupRuns < 0 {
		s.WarmupRuns = 0
	}
	if s.Name == "" {
		s.Name = s.Delegate
		if s.Name == "" {
			s.Name = "cpu"
		}
	}
	return s
}

// MemoryMetrics captures process memory statistics after a scenario run.
type MemoryMetrics struct {
	AllocBytes      uint64 `json:"allocBytes"`
	TotalAllocBytes uint64 `json:"totalAllocBytes"`
	SysBytes        uint64 `json:"sysBytes"`
	NumGC           uint32 `json:"numGC"`
}

// Result holds the measurements for one scenario.
type Result struct {
	Scenario   Scenario      `json:"scenario"`
	Timestamp  time.Time     `json:"timestamp"`
	Iterations int           `json:"iterations"`
	Total      time.Duration `json:"total"`
	Average    time.Duration `json:"average"`
	Min        time.Duration `json:"min"`
	Max        time.Duration `json:"max"`
	// Throughput is inference runs per second.
	Throughput float64       `json:"throughput"`
	Memory     MemoryMetrics `json:"memory"`
}

// newResult computes a result from per-iteration latencies.
func newResult(scenario Scenario, latencies []time.Duration) (Result, error) {
	if len(latencies) == 0 {
		return Result{}, errors.New("no latencies recorded")
	}

	result := Result{
		Scenario:   scenario,
		Timestamp:  time.Now().UTC(),
		Iterations: len(latencies),
		Min:        latencies[0],
		Max:        latencies[0],
	}
	for _, d := range latencies {
		result.Total += d
		if d < result.Min {
			result.Min = d
		}
		if d > result.Max {
			result.Max = d
		}
	}
	result.Average = result.Total / time.Duration(len(latencies))
	result.Throughput = float64(len(latencies)) / result.Total.Seconds()

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	result.Memory = MemoryMetrics{
		AllocBytes:      mem.Alloc,
		TotalAllocBytes: mem.TotalAlloc,
		SysBytes:        mem.Sys,
		NumGC:           mem.NumGC,
	}

	return result, nil
}
