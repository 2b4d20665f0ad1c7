// Package providers - Execution provider selection for the inference runtime.
package providers

import (
	"fmt"
	"sort"
	"strings"
)

// Backend identifies an ONNX Runtime execution provider.
type Backend string

const (
	// CPUBackend runs inference on the default CPU provider.
	CPUBackend Backend = "cpu"
	// CUDABackend uses NVIDIA CUDA for GPU acceleration.
	CUDABackend Backend = "cuda"
	// CoreMLBackend uses Apple CoreML for macOS acceleration.
	CoreMLBackend Backend = "coreml"
	// OpenVINOBackend uses Intel OpenVINO for inference optimization.
	OpenVINOBackend Backend = "openvino"
	// DNNLBackend uses Intel DNNL (oneDNN) for CPU optimization.
	DNNLBackend Backend = "dnnl"
)

// Options is a marker interface for provider-specific config.
type Options interface {
	isOptions()
}

// delegateBackends maps accepted -delegate flag values to backends. The
// legacy "gpu" spelling is kept for compatibility with older evaluation
// scripts.
var delegateBackends = map[string]Backend{
	"":         CPUBackend,
	"cpu":      CPUBackend,
	"gpu":      CUDABackend,
	"cuda":     CUDABackend,
	"coreml":   CoreMLBackend,
	"openvino": OpenVINOBackend,
	"dnnl":     DNNLBackend,
}

// ForDelegate resolves a delegate name from the command line into an
// execution provider backend.
//
// Arguments:
// - name: The delegate name, case-insensitive. Empty selects the CPU.
//
// Returns:
// - Backend: The resolved backend.
// - error: An error naming the valid values if the name is unknown.
func ForDelegate(name string) (Backend, error) {
	backend, ok := delegateBackends[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return "", fmt.Errorf(
			"unknown delegate %q, valid values: %s", name, strings.Join(delegateNames(), ", "),
		)
	}
	return backend, nil
}

func delegateNames() []string {
	names := make([]string, 0, len(delegateBackends))
	for name := range delegateBackends {
		if name == "" {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
