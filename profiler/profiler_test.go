package profiler

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord(t *testing.T) {
	p := New()

	p.Record("inference", 10*time.Millisecond)
	p.Record("inference", 30*time.Millisecond)
	p.Record("preprocess", 5*time.Millisecond)

	stats := p.Stats()
	require.Len(t, stats, 2)

	// Sorted by name.
	assert.Equal(t, "inference", stats[0].Name)
	assert.Equal(t, "preprocess", stats[1].Name)

	inf := stats[0]
	assert.Equal(t, int64(2), inf.Count)
	assert.Equal(t, 40*time.Millisecond, inf.Total)
	assert.Equal(t, 10*time.Millisecond, inf.Min)
	assert.Equal(t, 30*time.Millisecond, inf.Max)
	assert.Equal(t, 20*time.Millisecond, inf.Average())
}

func TestStartOperation(t *testing.T) {
	p := New()

	stop := p.StartOperation("op")
	time.Sleep(time.Millisecond)
	stop()

	stats := p.Stats()
	require.Len(t, stats, 1)
	assert.Equal(t, int64(1), stats[0].Count)
	assert.Greater(t, stats[0].Total, time.Duration(0))
}

func TestAverageEmpty(t *testing.T) {
	assert.Equal(t, time.Duration(0), OperationStats{}.Average())
}

func TestConcurrentRecording(t *testing.T) {
	p := New()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				p.Record("op", time.Microsecond)
			}
		}()
	}
	wg.Wait()

	stats := p.Stats()
	require.Len(t, stats, 1)
	assert.Equal(t, int64(800), stats[0].Count)
}
