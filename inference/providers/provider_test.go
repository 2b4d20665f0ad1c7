package providers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForDelegate(t *testing.T) {
	cases := []struct {
		name    string
		backend Backend
	}{
		{"", CPUBackend},
		{"cpu", CPUBackend},
		{"CPU", CPUBackend},
		{"gpu", CUDABackend},
		{"cuda", CUDABackend},
		{" cuda ", CUDABackend},
		{"coreml", CoreMLBackend},
		{"openvino", OpenVINOBackend},
		{"dnnl", DNNLBackend},
	}

	for _, c := range cases {
		backend, err := ForDelegate(c.name)
		require.NoError(t, err, "delegate %q", c.name)
		assert.Equal(t, c.backend, backend, "delegate %q", c.name)
	}
}

func TestForDelegateUnknown(t *testing.T) {
	_, err := ForDelegate("nnapi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nnapi")
	assert.Contains(t, err.Error(), "cuda", "error should list valid values")
}
