// Package providers - CoreML execution provider options.
package providers

// CoreMLOptions contains arguments for the CoreML provider.
// See: https://onnxruntime.ai/docs/execution-providers/CoreML-ExecutionProvider.html
type CoreMLOptions struct {
	// The device ID.
	DeviceID uint32 `json:"deviceID"                 yaml:"deviceID"`
	// Only allow the CoreML EP to take nodes with inputs that have static
	// shapes. Classification inputs are fixed-shape, so this is safe to
	// enable for evaluation runs.
	RequireStaticInputShapes int `json:"requireStaticInputShapes" yaml:"requireStaticInputShapes"`
}

// isOptions is a marker function to ensure the options are valid.
func (CoreMLOptions) isOptions() {}
