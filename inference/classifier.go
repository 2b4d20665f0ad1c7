// Package inference - Image classification sessions on the ONNX runtime.
package inference

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nvr-ai/go-ilsvrc/images"
	"github.com/nvr-ai/go-ilsvrc/inference/providers"
	ort "github.com/yalue/onnxruntime_go"
)

// Config describes a classification model session.
type Config struct {
	// ModelPath is the path to the ONNX model file.
	ModelPath string `json:"modelPath"   yaml:"modelPath"`
	// InputName is the model's input node name.
	InputName string `json:"inputName"   yaml:"inputName"`
	// OutputName is the model's output node name.
	OutputName string `json:"outputName"  yaml:"outputName"`
	// InputShape is the fixed input shape, [batch, channels, height, width].
	InputShape []int64 `json:"inputShape"  yaml:"inputShape"`
	// OutputCount is the number of output categories.
	OutputCount int `json:"outputCount" yaml:"outputCount"`
	// Provider selects the execution provider and threading.
	Provider providers.Config `json:"provider"    yaml:"provider"`
	// Precision is the requested execution precision.
	Precision Precision `json:"precision"   yaml:"precision"`
	// Warmup defines how many inference runs to perform during
	// initialization.
	Warmup int `json:"warmup"      yaml:"warmup"`
	// ApplySoftmax converts raw logits into probabilities after each run.
	ApplySoftmax bool `json:"applySoftmax" yaml:"applySoftmax"`
}

// Classifier runs single-image classification against a fixed-shape ONNX
// session.
//
// The session binds preallocated input and output tensors, so a Classifier
// must not be shared across goroutines; the evaluator creates one per shard.
type Classifier struct {
	cfg     Config
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]

	mu             sync.Mutex
	inferenceCount int64
	totalTime      time.Duration
}

// NewClassifier creates a classification session for the model.
//
// Order of operations:
//  1. Environment setup: loads the native runtime once per process.
//  2. Tensor allocation: fixed-shape buffers for input scores and output.
//  3. Session options: threading, graph optimization, execution provider.
//  4. Session creation: loads the model and binds the tensors.
//  5. Warmup: optional runs so the first measured image is not paying
//     one-time allocation costs.
//
// Arguments:
//   - cfg: The session configuration.
//
// Returns:
//   - *Classifier: The runnable classifier.
//   - error: An error if any setup step fails.
func NewClassifier(cfg Config) (*Classifier, error) {
	if cfg.ModelPath == "" {
		return nil, fmt.Errorf("model path is required")
	}
	if len(cfg.InputShape) != 4 {
		return nil, fmt.Errorf("input shape must be [batch, channels, height, width], got %v", cfg.InputShape)
	}
	if cfg.OutputCount <= 0 {
		return nil, fmt.Errorf("output count must be positive, got %d", cfg.OutputCount)
	}
	if cfg.InputName == "" {
		cfg.InputName = "input"
	}
	if cfg.OutputName == "" {
		cfg.OutputName = "output"
	}
	if cfg.Precision == "" {
		cfg.Precision = PrecisionFP32
	}

	if err := providers.Initialize(); err != nil {
		return nil, err
	}

	input, err := ort.NewEmptyTensor[float32](ort.NewShape(cfg.InputShape...))
	if err != nil {
		return nil, fmt.Errorf("error creating input tensor: %w", err)
	}

	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(cfg.OutputCount)))
	if err != nil {
		input.Destroy()
		return nil, fmt.Errorf("error creating output tensor: %w", err)
	}

	options, err := providers.SessionOptions(cfg.Provider)
	if err != nil {
		input.Destroy()
		output.Destroy()
		return nil, err
	}
	defer options.Destroy()

	session, err := ort.NewAdvancedSession(
		cfg.ModelPath,
		[]string{cfg.InputName},
		[]string{cfg.OutputName},
		[]ort.ArbitraryTensor{input},
		[]ort.ArbitraryTensor{output},
		options,
	)
	if err != nil {
		input.Destroy()
		output.Destroy()
		return nil, fmt.Errorf("error creating ORT session: %w", err)
	}

	c := &Classifier{
		cfg:     cfg,
		session: session,
		input:   input,
		output:  output,
	}

	for i := 0; i < cfg.Warmup; i++ {
		if err := session.Run(); err != nil {
			c.Close()
			return nil, fmt.Errorf("warmup run %d failed: %w", i+1, err)
		}
	}

	return c, nil
}

// Classify runs one preprocessed image through the model and returns the
// per-category scores.
//
// Arguments:
//   - ctx: Cancels before the run starts; an in-flight run is not
//     interrupted.
//   - t: The preprocessed image tensor matching the configured input shape.
//
// Returns:
//   - []float32: Scores per output category, softmaxed when configured.
//   - error: An error if the shapes mismatch or the run fails.
func (c *Classifier) Classify(ctx context.Context, t *images.Tensor) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		return nil, fmt.Errorf("classifier is closed")
	}

	data := c.input.GetData()
	if len(t.Data) != len(data) {
		return nil, fmt.Errorf(
			"input tensor holds %d floats, model expects %d (check preprocessing shape)",
			len(t.Data), len(data),
		)
	}
	copy(data, t.Data)

	start := time.Now()
	if err := c.session.Run(); err != nil {
		return nil, fmt.Errorf("inference run failed: %w", err)
	}
	c.inferenceCount++
	c.totalTime += time.Since(start)

	scores := make([]float32, c.cfg.OutputCount)
	copy(scores, c.output.GetData())

	if c.cfg.ApplySoftmax {
		return softmax(scores), nil
	}
	return scores, nil
}

// GetModelInfo returns information about the loaded model.
func (c *Classifier) GetModelInfo() map[string]interface{} {
	c.mu.Lock()
	defer c.mu.Unlock()

	info := map[string]interface{}{
		"model_path":      c.cfg.ModelPath,
		"input_shape":     c.cfg.InputShape,
		"output_count":    c.cfg.OutputCount,
		"backend":         c.cfg.Provider.Backend,
		"precision":       c.cfg.Precision,
		"inference_count": c.inferenceCount,
	}
	if c.inferenceCount > 0 {
		avg := float64(c.totalTime.Nanoseconds()) / float64(c.inferenceCount) / 1e6
		info["average_time_ms"] = avg
		info["throughput_fps"] = 1000.0 / avg
	}
	return info
}

// Close releases the session and its tensors.
func (c *Classifier) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.input != nil {
		c.input.Destroy()
		c.input = nil
	}
	if c.output != nil {
		c.output.Destroy()
		c.output = nil
	}
	if c.session != nil {
		if err := c.session.Destroy(); err != nil {
			return fmt.Errorf("error destroying ORT session: %w", err)
		}
		c.session = nil
	}
	return nil
}
