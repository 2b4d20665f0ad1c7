package benchmark

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarioWithDefaults(t *testing.T) {
	s := Scenario{}.WithDefaults()
	assert.Equal(t, 100, s.Iterations)
	assert.Equal(t, "cpu", s.Name)

	s = Scenario{Delegate: "cuda", Iterations: 10}.WithDefaults()
	assert.Equal(t, "cuda", s.Name)
	assert.Equal(t, 10, s.Iterations)

	s = Scenario{Name: "cuda-4t", Delegate: "cuda"}.WithDefaults()
	assert.Equal(t, "cuda-4t", s.Name)
}

func TestNewResult(t *testing.T) {
	latencies := []time.Duration{
		10 * time.Millisecond,
		20 * time.Millisecond,
		30 * time.Millisecond,
	}

	result, err := newResult(Scenario{Name: "cpu"}, latencies)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Iterations)
	assert.Equal(t, 60*time.Millisecond, result.Total)
	assert.Equal(t, 20*time.Millisecond, result.Average)
	assert.Equal(t, 10*time.Millisecond, result.Min)
	assert.Equal(t, 30*time.Millisecond, result.Max)
	assert.InDelta(t, 50.0, result.Throughput, 0.1)
	assert.False(t, result.Timestamp.IsZero())
}

func TestNewResultEmpty(t *testing.T) {
	_, err := newResult(Scenario{}, nil)
	assert.Error(t, err)
}

func TestNewSuiteValidation(t *testing.T) {
	_, err := NewSuite(SuiteConfig{}, []Scenario{{}})
	assert.Error(t, err)

	_, err = NewSuite(SuiteConfig{ModelPath: "m.onnx"}, nil)
	assert.Error(t, err)
}
