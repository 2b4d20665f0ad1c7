// Package providers - Session option construction for the inference runtime.
package providers

import (
	"fmt"

	ort "github.com/yalue/onnxruntime_go"
)

// Config selects an execution provider and the runtime threading behavior
// for an inference session.
type Config struct {
	// Backend specifies the execution provider to use.
	Backend Backend `json:"backend"        yaml:"backend"`
	// Options contains provider-specific configuration. May be nil for
	// providers without options.
	Options Options `json:"options"        yaml:"options"`
	// IntraOpThreads sets threads for parallelizing ops. 0 lets the runtime
	// decide.
	IntraOpThreads int `json:"intraOpThreads" yaml:"intraOpThreads"`
	// InterOpThreads sets threads for parallelizing independent ops. 0 lets
	// the runtime decide.
	InterOpThreads int `json:"interOpThreads" yaml:"interOpThreads"`
}

// SessionOptions builds ONNX Runtime session options for the configuration.
//
// The options apply extended graph optimization, the configured thread
// counts, and the selected execution provider. The caller owns the returned
// options and must Destroy them after session creation.
//
// Arguments:
//   - cfg: The provider configuration.
//
// Returns:
//   - *ort.SessionOptions: Configured session options.
//   - error: An error if the provider cannot be enabled.
func SessionOptions(cfg Config) (*ort.SessionOptions, error) {
	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("error creating ORT session options: %w", err)
	}

	// Set intra-op parallelism threads for node execution inside the model
	// graph (e.g., matrix multiplication).
	options.SetIntraOpNumThreads(cfg.IntraOpThreads)
	// Set inter-op parallelism threads for parallel execution of independent
	// graph nodes.
	options.SetInterOpNumThreads(cfg.InterOpThreads)
	// Enables advanced graph rewrites (e.g., fusion, constant folding) to
	// improve performance during graph loading.
	options.SetGraphOptimizationLevel(ort.GraphOptimizationLevelEnableExtended)

	if err := appendExecutionProvider(options, cfg); err != nil {
		options.Destroy()
		return nil, err
	}

	return options, nil
}

// appendExecutionProvider enables the configured execution provider on the
// session options. The CPU provider is always available and needs no
// explicit configuration.
func appendExecutionProvider(options *ort.SessionOptions, cfg Config) error {
	switch cfg.Backend {
	case CPUBackend, "":
		return nil

	case CoreMLBackend:
		deviceID := uint32(0)
		if opts, ok := cfg.Options.(CoreMLOptions); ok {
			deviceID = opts.DeviceID
		}
		if err := options.AppendExecutionProviderCoreML(deviceID); err != nil {
			return fmt.Errorf("error enabling CoreML: %w", err)
		}
		return nil

	case OpenVINOBackend:
		opts, ok := cfg.Options.(OpenVINOOptions)
		if !ok && cfg.Options != nil {
			return fmt.Errorf("invalid options type for OpenVINO: %T", cfg.Options)
		}
		settings := map[string]string{}
		if opts.DeviceID != "" {
			settings["device_id"] = opts.DeviceID
		}
		if opts.DeviceType != "" {
			settings["device_type"] = opts.DeviceType
		}
		if opts.Precision != "" {
			settings["precision"] = opts.Precision
		}
		if opts.NumOfThreads > 0 {
			settings["num_of_threads"] = fmt.Sprintf("%d", opts.NumOfThreads)
		}
		if opts.NumStreams > 0 {
			settings["num_streams"] = fmt.Sprintf("%d", opts.NumStreams)
		}
		if err := options.AppendExecutionProviderOpenVINO(settings); err != nil {
			return fmt.Errorf("error enabling OpenVINO: %w", err)
		}
		return nil

	case CUDABackend:
		opts, ok := cfg.Options.(CUDAOptions)
		if !ok && cfg.Options != nil {
			return fmt.Errorf("invalid options type for CUDA: %T", cfg.Options)
		}
		cuda, err := opts.ToNativeProviderOptions()
		if err != nil {
			return fmt.Errorf("error converting CUDA options: %w", err)
		}
		defer cuda.Destroy()
		if err := options.AppendExecutionProviderCUDA(cuda); err != nil {
			return fmt.Errorf("error enabling CUDA: %w", err)
		}
		return nil

	case DNNLBackend:
		// DNNL is not exposed by the onnxruntime Go binding. The default CPU
		// provider still runs the model, just without oneDNN kernels.
		fmt.Printf("Info: %s provider not yet supported by the runtime binding, using CPU\n", cfg.Backend)
		return nil

	default:
		return fmt.Errorf("unsupported execution provider: %s", cfg.Backend)
	}
}
