// Package providers - OpenVINO execution provider options.
package providers

// OpenVINOOptions contains arguments for the OpenVINO provider.
// See:
// https://onnxruntime.ai/docs/execution-providers/OpenVINO-ExecutionProvider.html#summary-of-options
type OpenVINOOptions struct {
	DeviceID string `json:"deviceID"     yaml:"deviceID"`
	// Overrides the accelerator hardware type with these values at runtime.
	// If this option is not explicitly set, the default hardware specified
	// during build is used.
	DeviceType string `json:"deviceType"   yaml:"deviceType"`
	// Supported precisions per HW: {CPU:FP32, GPU:[FP32, FP16, ACCURACY],
	// NPU:FP16}.
	Precision string `json:"precision"    yaml:"precision"`
	// Overrides the accelerator default value of number of threads at
	// runtime.
	NumOfThreads int `json:"numOfThreads" yaml:"numOfThreads"`
	// Overrides the accelerator default streams at runtime.
	NumStreams int `json:"numStreams"   yaml:"numStreams"`
}

// isOptions is a marker function to ensure the options are valid.
func (OpenVINOOptions) isOptions() {}
