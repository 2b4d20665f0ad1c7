// Package evaluator - Orchestrates ILSVRC accuracy evaluation over a model.
//
// The evaluator owns dataset iteration, sharding, and observer fan-out. The
// actual per-image classification is delegated to a Stage supplied by the
// caller, and accuracy tallying to the metrics package.
package evaluator

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/nvr-ai/go-ilsvrc/dataset"
	"github.com/nvr-ai/go-ilsvrc/metrics"
)

// Params configures an evaluation run.
type Params struct {
	// ModelPath is the path to the model file.
	ModelPath string `json:"modelFile"             yaml:"modelFile"`
	// ImagesPath is the path to the ground truth images directory.
	ImagesPath string `json:"groundTruthImagesPath" yaml:"groundTruthImagesPath"`
	// GroundTruthLabelsPath is the labels file for the ground truth images,
	// one label per image in sorted image order.
	GroundTruthLabelsPath string `json:"groundTruthLabels"     yaml:"groundTruthLabels"`
	// ModelOutputLabelsPath maps model output category indices to labels.
	// The category indices of output probabilities generated by the model
	// may differ from the indices in the ImageNet dataset.
	ModelOutputLabelsPath string `json:"modelOutputLabels"     yaml:"modelOutputLabels"`
	// BlacklistPath is the optional ILSVRC2014 devkit blacklist file: sorted
	// 1-based image indices to exclude.
	BlacklistPath string `json:"blacklistFilePath"     yaml:"blacklistFilePath"`
	// Delegate names the execution backend used to perform inference.
	// Empty selects the CPU.
	Delegate string `json:"delegate"              yaml:"delegate"`
	// NumImages is the maximum number of images to evaluate. 0 means all.
	NumImages int `json:"numImages"             yaml:"numImages"`
	// NumRanks is K for top-K accuracy.
	NumRanks int `json:"numRanks"              yaml:"numRanks"`
	// NumInterpreterThreads is the intra-op thread count for the runtime.
	NumInterpreterThreads int `json:"numInterpreterThreads" yaml:"numInterpreterThreads"`
	// AllowFP16 permits reduced-precision execution.
	AllowFP16 bool `json:"allowFP16"             yaml:"allowFP16"`
	// NumEvalThreads is the number of dataset shards evaluated in parallel.
	NumEvalThreads int `json:"numEvalThreads"        yaml:"numEvalThreads"`
	// OutputPath is where the final report is written. Empty disables it.
	OutputPath string `json:"outputFilePath"        yaml:"outputFilePath"`
}

// DefaultNumRanks matches the harness default of tracking top-1 through
// top-10.
const DefaultNumRanks = 10

// WithDefaults returns a copy of the params with unset fields defaulted.
func (p Params) WithDefaults() Params {
	if p.NumRanks == 0 {
		p.NumRanks = DefaultNumRanks
	}
	if p.NumEvalThreads <= 0 {
		p.NumEvalThreads = 1
	}
	if p.NumInterpreterThreads <= 0 {
		p.NumInterpreterThreads = 1
	}
	return p
}

// Observer receives evaluation events.
//
// Observers can be called from multiple goroutines and need to be thread
// safe.
type Observer interface {
	// OnEvaluationStart is called once, before any image is evaluated, with
	// the per-shard image counts.
	OnEvaluationStart(shardCounts map[uint64]int)

	// OnSingleImageEvaluationComplete is called when evaluation is complete
	// for an image, with the owning shard's running accuracy snapshot.
	OnSingleImageEvaluationComplete(shardID uint64, acc metrics.TopKAccuracy, imagePath string)
}

// Stage classifies a single image, returning one score per model output
// category. A Stage instance is owned by exactly one shard and is never
// called concurrently.
type Stage interface {
	Classify(ctx context.Context, imagePath string) ([]float32, error)
	Close() error
}

// StageFactory creates the classification stage for one shard.
type StageFactory func(shardID uint64) (Stage, error)

// Evaluator evaluates a model's top-K accuracy over the ILSVRC dataset.
//
// Usage:
//
//	eval, err := evaluator.New(params, outputLabels, factory)
//	eval.AddObserver(&observer)
//	acc, err := eval.Run(ctx)
type Evaluator struct {
	params       Params
	outputLabels []string
	factory      StageFactory

	mu        sync.Mutex
	observers []Observer
}

// New creates an evaluator.
//
// Arguments:
// - params: Evaluation parameters. Defaults are applied for unset fields.
// - outputLabels: Label per model output category index.
// - factory: Creates the per-shard classification stage.
//
// Returns:
// - *Evaluator: The configured evaluator.
// - error: Error if the parameters are unusable.
func New(params Params, outputLabels []string, factory StageFactory) (*Evaluator, error) {
	params = params.WithDefaults()

	if params.NumRanks < 0 {
		return nil, errors.Errorf("num ranks must be positive, got %d", params.NumRanks)
	}
	if len(outputLabels) == 0 {
		return nil, errors.New("model output labels are required")
	}
	if factory == nil {
		return nil, errors.New("stage factory is required")
	}

	return &Evaluator{
		params:       params,
		outputLabels: outputLabels,
		factory:      factory,
	}, nil
}

// Params returns the evaluation parameters after defaulting.
func (e *Evaluator) Params() Params {
	return e.params
}

// AddObserver registers an observer for evaluation events. Observers must be
// added before Run is called.
func (e *Evaluator) AddObserver(o Observer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observers = append(e.observers, o)
}

// Run evaluates the model over the dataset and returns the merged top-K
// accuracy across all shards.
//
// The dataset is listed, paired with ground truth labels, filtered by the
// blacklist, capped to NumImages, and split into NumEvalThreads contiguous
// shards. Each shard runs its own stage instance and accumulator; observers
// are notified per image with the shard's running snapshot.
func (e *Evaluator) Run(ctx context.Context) (metrics.TopKAccuracy, error) {
	samples, err := e.loadSamples()
	if err != nil {
		return metrics.TopKAccuracy{}, err
	}

	shards := shardSamples(samples, e.params.NumEvalThreads)

	counts := make(map[uint64]int, len(shards))
	for _, shard := range shards {
		counts[shard.id] = len(shard.samples)
	}
	for _, o := range e.observers {
		o.OnEvaluationStart(counts)
	}

	results := make([]metrics.TopKAccuracy, len(shards))
	g, ctx := errgroup.WithContext(ctx)
	for i, shard := range shards {
		i, shard := i, shard
		g.Go(func() error {
			acc, err := e.runShard(ctx, shard)
			if err != nil {
				return err
			}
			results[i] = acc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return metrics.TopKAccuracy{}, err
	}

	total := results[0]
	for _, acc := range results[1:] {
		if err := total.Merge(acc); err != nil {
			return metrics.TopKAccuracy{}, err
		}
	}

	return total, nil
}

// loadSamples builds the evaluation sequence: sorted images paired with
// ground truth labels, blacklist applied before the NumImages cap.
func (e *Evaluator) loadSamples() ([]dataset.Sample, error) {
	imagePaths, err := dataset.ListImages(e.params.ImagesPath)
	if err != nil {
		return nil, err
	}

	labels, err := dataset.ReadLabels(e.params.GroundTruthLabelsPath)
	if err != nil {
		return nil, err
	}

	samples, err := dataset.Pair(imagePaths, labels)
	if err != nil {
		return nil, err
	}

	if e.params.BlacklistPath != "" {
		blacklist, err := dataset.ReadBlacklist(e.params.BlacklistPath)
		if err != nil {
			return nil, err
		}
		samples, err = dataset.ApplyBlacklist(samples, blacklist)
		if err != nil {
			return nil, err
		}
	}

	samples = dataset.Cap(samples, e.params.NumImages)
	if len(samples) == 0 {
		return nil, errors.New("no images left to evaluate after filtering")
	}

	return samples, nil
}

// runShard evaluates one shard with its own stage and accumulator.
func (e *Evaluator) runShard(ctx context.Context, s shard) (metrics.TopKAccuracy, error) {
	stage, err := e.factory(s.id)
	if err != nil {
		return metrics.TopKAccuracy{}, errors.Wrapf(err, "failed to create stage for shard %d", s.id)
	}
	defer stage.Close()

	tally, err := metrics.NewStage(e.outputLabels, e.params.NumRanks)
	if err != nil {
		return metrics.TopKAccuracy{}, err
	}

	for _, sample := range s.samples {
		if err := ctx.Err(); err != nil {
			return metrics.TopKAccuracy{}, err
		}

		scores, err := stage.Classify(ctx, sample.ImagePath)
		if err != nil {
			return metrics.TopKAccuracy{}, errors.Wrapf(err, "shard %d failed on %s", s.id, sample.ImagePath)
		}

		snapshot, err := tally.Process(scores, sample.Label)
		if err != nil {
			return metrics.TopKAccuracy{}, errors.Wrapf(err, "shard %d failed on %s", s.id, sample.ImagePath)
		}

		for _, o := range e.observers {
			o.OnSingleImageEvaluationComplete(s.id, snapshot, sample.ImagePath)
		}
	}

	return tally.Accuracy(), nil
}

// shard is a contiguous slice of the dataset assigned to one worker.
type shard struct {
	id      uint64
	samples []dataset.Sample
}

// shardSamples splits the sequence into at most n contiguous, near-even
// shards with 1-based IDs. Shards never receive zero images; fewer shards
// than requested are produced when images run short.
func shardSamples(samples []dataset.Sample, n int) []shard {
	if n < 1 {
		n = 1
	}
	if n > len(samples) {
		n = len(samples)
	}

	shards := make([]shard, 0, n)
	base := len(samples) / n
	extra := len(samples) % n

	start := 0
	for i := 0; i < n; i++ {
		size := base
		if i < extra {
			size++
		}
		shards = append(shards, shard{
			id:      uint64(i + 1),
			samples: samples[start : start+size],
		})
		start += size
	}

	return shards
}
