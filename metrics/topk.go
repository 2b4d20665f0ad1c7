// Package metrics - Top-K accuracy computation for classification evaluation.
package metrics

import (
	"sort"

	"github.com/pkg/errors"
)

// TopKAccuracy holds cumulative top-K hit counts for a sequence of evaluated
// images.
//
// Hits[i] is the number of images whose ground truth label ranked within the
// top i+1 model outputs, so Hits[0] backs top-1 accuracy and Hits[K-1] backs
// top-K accuracy.
type TopKAccuracy struct {
	// K is the number of ranks tracked.
	K int `json:"k"`
	// Count is the number of images evaluated.
	Count int64 `json:"count"`
	// Hits are cumulative per-rank hit counts, length K.
	Hits []int64 `json:"hits"`
}

// NewTopKAccuracy creates an empty accumulator for k ranks.
func NewTopKAccuracy(k int) TopKAccuracy {
	return TopKAccuracy{K: k, Hits: make([]int64, k)}
}

// Accuracies returns the cumulative accuracy fraction per rank. Index 0 is
// top-1 accuracy, index K-1 is top-K accuracy. Returns all zeros when no
// images have been evaluated.
func (a TopKAccuracy) Accuracies() []float64 {
	out := make([]float64, a.K)
	if a.Count == 0 {
		return out
	}
	for i, hits := range a.Hits {
		out[i] = float64(hits) / float64(a.Count)
	}
	return out
}

// Merge combines another accumulator into this one. Both must track the same
// number of ranks.
func (a *TopKAccuracy) Merge(other TopKAccuracy) error {
	if a.K != other.K {
		return errors.Errorf("cannot merge accumulators with k=%d and k=%d", a.K, other.K)
	}
	a.Count += other.Count
	for i := range a.Hits {
		a.Hits[i] += other.Hits[i]
	}
	return nil
}

// Stage tallies top-K accuracy over a stream of model outputs.
//
// A Stage is not safe for concurrent use; the evaluator creates one per
// shard and merges the results.
type Stage struct {
	k      int
	labels []string
	index  map[string]int
	acc    TopKAccuracy
}

// NewStage creates a top-K stage for the given model output labels.
//
// Arguments:
// - outputLabels: Label per model output category index.
// - k: Number of ranks to track. Values above the category count are clamped.
//
// Returns:
// - *Stage: The configured stage.
// - error: Error if k is not positive or no labels were given.
func NewStage(outputLabels []string, k int) (*Stage, error) {
	if k <= 0 {
		return nil, errors.Errorf("num ranks must be positive, got %d", k)
	}
	if len(outputLabels) == 0 {
		return nil, errors.New("model output labels are required")
	}
	if k > len(outputLabels) {
		k = len(outputLabels)
	}

	index := make(map[string]int, len(outputLabels))
	for i, label := range outputLabels {
		index[label] = i
	}

	return &Stage{
		k:      k,
		labels: outputLabels,
		index:  index,
		acc:    NewTopKAccuracy(k),
	}, nil
}

// Process ranks one image's scores against its ground truth label and updates
// the counters.
//
// Arguments:
// - scores: Model output scores, one per output category.
// - groundTruth: The image's ground truth label.
//
// Returns:
// - TopKAccuracy: Snapshot of the running accumulator after this image.
// - error: Error if the score count or label is invalid.
func (s *Stage) Process(scores []float32, groundTruth string) (TopKAccuracy, error) {
	if len(scores) != len(s.labels) {
		return TopKAccuracy{}, errors.Errorf(
			"score count (%d) does not match output label count (%d)",
			len(scores), len(s.labels),
		)
	}

	truth, ok := s.index[groundTruth]
	if !ok {
		return TopKAccuracy{}, errors.Errorf("unknown ground truth label %q", groundTruth)
	}

	s.acc.Count++
	for rank, category := range TopIndices(scores, s.k) {
		if category == truth {
			// A hit at rank r counts for every rank >= r.
			for i := rank; i < s.k; i++ {
				s.acc.Hits[i]++
			}
			break
		}
	}

	return s.snapshot(), nil
}

// Accuracy returns a snapshot of the running accumulator.
func (s *Stage) Accuracy() TopKAccuracy {
	return s.snapshot()
}

func (s *Stage) snapshot() TopKAccuracy {
	out := NewTopKAccuracy(s.k)
	out.Count = s.acc.Count
	copy(out.Hits, s.acc.Hits)
	return out
}

// TopIndices returns the indices of the k highest scores in descending score
// order. Ties are broken by the lower category index.
func TopIndices(scores []float32, k int) []int {
	if k > len(scores) {
		k = len(scores)
	}

	indices := make([]int, len(scores))
	for i := range indices {
		indices[i] = i
	}

	sort.SliceStable(indices, func(a, b int) bool {
		if scores[indices[a]] != scores[indices[b]] {
			return scores[indices[a]] > scores[indices[b]]
		}
		return indices[a] < indices[b]
	})

	return indices[:k]
}
