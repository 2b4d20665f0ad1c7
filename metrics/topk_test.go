package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLabels = []string{"cat", "dog", "fish", "bird", "snake"}

func TestTopIndices(t *testing.T) {
	scores := []float32{0.1, 0.5, 0.2, 0.9, 0.3}

	assert.Equal(t, []int{3, 1, 4}, TopIndices(scores, 3))
	assert.Equal(t, []int{3}, TopIndices(scores, 1))
}

func TestTopIndicesTiesBreakByLowerIndex(t *testing.T) {
	scores := []float32{0.5, 0.9, 0.5, 0.9}

	assert.Equal(t, []int{1, 3, 0, 2}, TopIndices(scores, 4))
}

func TestTopIndicesClampsK(t *testing.T) {
	scores := []float32{0.1, 0.2}

	assert.Len(t, TopIndices(scores, 10), 2)
}

func TestNewStageValidation(t *testing.T) {
	_, err := NewStage(testLabels, 0)
	assert.Error(t, err)

	_, err = NewStage(testLabels, -1)
	assert.Error(t, err)

	_, err = NewStage(nil, 3)
	assert.Error(t, err)
}

func TestNewStageClampsKToLabelCount(t *testing.T) {
	stage, err := NewStage(testLabels, 100)
	require.NoError(t, err)

	acc := stage.Accuracy()
	assert.Equal(t, len(testLabels), acc.K)
}

func TestStageProcessCumulativeHits(t *testing.T) {
	stage, err := NewStage(testLabels, 3)
	require.NoError(t, err)

	// Ground truth "dog" (index 1) ranks second.
	snapshot, err := stage.Process([]float32{0.1, 0.5, 0.2, 0.9, 0.3}, "dog")
	require.NoError(t, err)

	assert.Equal(t, int64(1), snapshot.Count)
	assert.Equal(t, []int64{0, 1, 1}, snapshot.Hits)

	// Ground truth "bird" (index 3) ranks first.
	snapshot, err = stage.Process([]float32{0.1, 0.5, 0.2, 0.9, 0.3}, "bird")
	require.NoError(t, err)

	assert.Equal(t, int64(2), snapshot.Count)
	assert.Equal(t, []int64{1, 2, 2}, snapshot.Hits)

	// Ground truth "cat" (index 0) ranks last, outside the top 3.
	snapshot, err = stage.Process([]float32{0.1, 0.5, 0.2, 0.9, 0.3}, "cat")
	require.NoError(t, err)

	assert.Equal(t, int64(3), snapshot.Count)
	assert.Equal(t, []int64{1, 2, 2}, snapshot.Hits)

	accs := snapshot.Accuracies()
	assert.InDelta(t, 1.0/3.0, accs[0], 1e-9)
	assert.InDelta(t, 2.0/3.0, accs[1], 1e-9)
	assert.InDelta(t, 2.0/3.0, accs[2], 1e-9)
}

func TestStageProcessScoreCountMismatch(t *testing.T) {
	stage, err := NewStage(testLabels, 3)
	require.NoError(t, err)

	_, err = stage.Process([]float32{0.1, 0.2}, "dog")
	assert.Error(t, err)
}

func TestStageProcessUnknownLabel(t *testing.T) {
	stage, err := NewStage(testLabels, 3)
	require.NoError(t, err)

	_, err = stage.Process([]float32{0.1, 0.5, 0.2, 0.9, 0.3}, "dragon")
	assert.Error(t, err)
}

func TestSnapshotIsIndependent(t *testing.T) {
	stage, err := NewStage(testLabels, 2)
	require.NoError(t, err)

	first, err := stage.Process([]float32{0.9, 0.5, 0.2, 0.1, 0.3}, "cat")
	require.NoError(t, err)

	_, err = stage.Process([]float32{0.9, 0.5, 0.2, 0.1, 0.3}, "cat")
	require.NoError(t, err)

	// The earlier snapshot must not see the later update.
	assert.Equal(t, int64(1), first.Count)
	assert.Equal(t, []int64{1, 1}, first.Hits)
}

func TestMerge(t *testing.T) {
	a := NewTopKAccuracy(3)
	a.Count = 10
	copy(a.Hits, []int64{5, 7, 8})

	b := NewTopKAccuracy(3)
	b.Count = 6
	copy(b.Hits, []int64{3, 4, 5})

	require.NoError(t, a.Merge(b))
	assert.Equal(t, int64(16), a.Count)
	assert.Equal(t, []int64{8, 11, 13}, a.Hits)
}

func TestMergeMismatchedRanks(t *testing.T) {
	a := NewTopKAccuracy(3)
	b := NewTopKAccuracy(5)

	assert.Error(t, a.Merge(b))
}

func TestAccuraciesEmpty(t *testing.T) {
	acc := NewTopKAccuracy(3)

	assert.Equal(t, []float64{0, 0, 0}, acc.Accuracies())
}
