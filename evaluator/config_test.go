package evaluator

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeParamsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "params.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadParams(t *testing.T) {
	path := writeParamsFile(t, `
modelFile: mobilenet_v1.onnx
groundTruthImagesPath: /data/ilsvrc/val
groundTruthLabels: /data/ilsvrc/labels.txt
modelOutputLabels: /data/ilsvrc/output_labels.txt
blacklistFilePath: /data/ilsvrc/blacklist.txt
delegate: cuda
numImages: 5000
numRanks: 5
numInterpreterThreads: 4
allowFP16: true
numEvalThreads: 2
outputFilePath: report.json
`)

	params, err := LoadParams(path)
	require.NoError(t, err)

	assert.Equal(t, "mobilenet_v1.onnx", params.ModelPath)
	assert.Equal(t, "/data/ilsvrc/val", params.ImagesPath)
	assert.Equal(t, "/data/ilsvrc/labels.txt", params.GroundTruthLabelsPath)
	assert.Equal(t, "/data/ilsvrc/output_labels.txt", params.ModelOutputLabelsPath)
	assert.Equal(t, "/data/ilsvrc/blacklist.txt", params.BlacklistPath)
	assert.Equal(t, "cuda", params.Delegate)
	assert.Equal(t, 5000, params.NumImages)
	assert.Equal(t, 5, params.NumRanks)
	assert.Equal(t, 4, params.NumInterpreterThreads)
	assert.True(t, params.AllowFP16)
	assert.Equal(t, 2, params.NumEvalThreads)
	assert.Equal(t, "report.json", params.OutputPath)
}

func TestLoadParamsRejectsUnknownKeys(t *testing.T) {
	path := writeParamsFile(t, "modelFile: m.onnx\nnumRank: 5\n")

	_, err := LoadParams(path)
	assert.Error(t, err)
}

func TestLoadParamsMissingFile(t *testing.T) {
	_, err := LoadParams(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
