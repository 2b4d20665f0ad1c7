package evaluator

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-ilsvrc/metrics"
)

func TestReportWrite(t *testing.T) {
	acc := metrics.NewTopKAccuracy(2)
	acc.Count = 4
	copy(acc.Hits, []int64{2, 3})

	params := Params{ModelPath: "m.onnx", NumRanks: 2}
	report := NewReport(params, acc)

	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, report.Write(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded Report
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "m.onnx", decoded.Params.ModelPath)
	assert.Equal(t, 2, decoded.K)
	assert.Equal(t, int64(4), decoded.Count)
	require.Len(t, decoded.Accuracies, 2)
	assert.InDelta(t, 0.5, decoded.Accuracies[0], 1e-9)
	assert.InDelta(t, 0.75, decoded.Accuracies[1], 1e-9)
	assert.False(t, decoded.GeneratedAt.IsZero())
}

func TestReportWriteBadPath(t *testing.T) {
	report := NewReport(Params{}, metrics.NewTopKAccuracy(1))
	assert.Error(t, report.Write(filepath.Join(t.TempDir(), "missing", "report.json")))
}
