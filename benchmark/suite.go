package benchmark

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"

	"github.com/nvr-ai/go-ilsvrc/dataset"
	"github.com/nvr-ai/go-ilsvrc/images"
	"github.com/nvr-ai/go-ilsvrc/inference"
	"github.com/nvr-ai/go-ilsvrc/inference/providers"
	"github.com/nvr-ai/go-ilsvrc/models"
)

// SuiteConfig configures a benchmark suite.
type SuiteConfig struct {
	// ModelPath is the ONNX model under test.
	ModelPath string `json:"modelPath"  yaml:"modelPath"`
	// Spec is the model architecture being benchmarked.
	Spec models.Spec `json:"spec"       yaml:"spec"`
	// ImagesPath is a directory of sample images. The suite preprocesses up
	// to MaxImages of them once and cycles through the tensors.
	ImagesPath string `json:"imagesPath" yaml:"imagesPath"`
	// MaxImages caps how many sample images are preprocessed. 0 means 16.
	MaxImages int `json:"maxImages"  yaml:"maxImages"`
}

// Suite runs benchmark scenarios against one model.
type Suite struct {
	cfg       SuiteConfig
	tensors   []*images.Tensor
	scenarios []Scenario
	results   []Result
}

// NewSuite creates a suite and preprocesses the sample images.
//
// Arguments:
// - cfg: The suite configuration.
// - scenarios: The scenarios to run, in order.
//
// Returns:
// - *Suite: The prepared suite.
// - error: An error if no sample image can be loaded.
func NewSuite(cfg SuiteConfig, scenarios []Scenario) (*Suite, error) {
	if cfg.ModelPath == "" {
		return nil, errors.New("model path is required")
	}
	if len(scenarios) == 0 {
		return nil, errors.New("at least one scenario is required")
	}
	if cfg.MaxImages <= 0 {
		cfg.MaxImages = 16
	}

	paths, err := dataset.ListImages(cfg.ImagesPath)
	if err != nil {
		return nil, err
	}
	if len(paths) > cfg.MaxImages {
		paths = paths[:cfg.MaxImages]
	}

	tensors := make([]*images.Tensor, 0, len(paths))
	for _, path := range paths {
		t, err := images.PreprocessFile(path, cfg.Spec.Preprocess)
		if err != nil {
			return nil, err
		}
		tensors = append(tensors, t)
	}

	for i := range scenarios {
		scenarios[i] = scenarios[i].WithDefaults()
	}

	return &Suite{cfg: cfg, tensors: tensors, scenarios: scenarios}, nil
}

// Run executes all scenarios sequentially and returns their results.
func (s *Suite) Run(ctx context.Context) ([]Result, error) {
	s.results = s.results[:0]

	for _, scenario := range s.scenarios {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result, err := s.runScenario(ctx, scenario)
		if err != nil {
			return nil, errors.Wrapf(err, "scenario %s failed", scenario.Name)
		}
		s.results = append(s.results, result)
	}

	return s.results, nil
}

// runScenario measures one scenario with a fresh classifier session.
func (s *Suite) runScenario(ctx context.Context, scenario Scenario) (Result, error) {
	backend, err := providers.ForDelegate(scenario.Delegate)
	if err != nil {
		return Result{}, err
	}

	classifier, err := inference.NewClassifier(inference.Config{
		ModelPath:   s.cfg.ModelPath,
		InputName:   s.cfg.Spec.InputName,
		OutputName:  s.cfg.Spec.OutputName,
		InputShape:  []int64{1, 3, int64(s.cfg.Spec.Preprocess.Height), int64(s.cfg.Spec.Preprocess.Width)},
		OutputCount: s.cfg.Spec.OutputCount,
		Provider: providers.Config{
			Backend:        backend,
			IntraOpThreads: scenario.IntraOpThreads,
		},
		Warmup: scenario.WarmupRuns,
	})
	if err != nil {
		return Result{}, err
	}
	defer classifier.Close()

	latencies := make([]time.Duration, 0, scenario.Iterations)
	for i := 0; i < scenario.Iterations; i++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		tensor := s.tensors[i%len(s.tensors)]
		start := time.Now()
		if _, err := classifier.Classify(ctx, tensor); err != nil {
			return Result{}, err
		}
		latencies = append(latencies, time.Since(start))
	}

	return newResult(scenario, latencies)
}

// SaveResults writes the collected results as indented JSON.
func (s *Suite) SaveResults(path string) error {
	data, err := json.MarshalIndent(s.results, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal benchmark results")
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return errors.Wrapf(err, "failed to write benchmark results to %s", path)
	}
	return nil
}

// PrintReport renders the collected results as a table to stdout.
func (s *Suite) PrintReport() {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Scenario", "Delegate", "Iters", "Avg", "Min", "Max", "FPS"})
	table.SetBorder(false)

	for _, r := range s.results {
		table.Append([]string{
			r.Scenario.Name,
			r.Scenario.Delegate,
			fmt.Sprintf("%d", r.Iterations),
			r.Average.Truncate(time.Microsecond).String(),
			r.Min.Truncate(time.Microsecond).String(),
			r.Max.Truncate(time.Microsecond).String(),
			fmt.Sprintf("%.1f", r.Throughput),
		})
	}

	table.Render()
}
