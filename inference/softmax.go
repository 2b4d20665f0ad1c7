// Package inference - Score normalization helpers.
package inference

import "github.com/chewxy/math32"

// softmax converts raw logits into probabilities. Ranking is unchanged by
// the transform; it exists so downstream consumers see calibrated scores
// rather than raw logits. Shifted by the max logit for numeric stability.
func softmax(logits []float32) []float32 {
	if len(logits) == 0 {
		return logits
	}

	max := logits[0]
	for _, v := range logits[1:] {
		if v > max {
			max = v
		}
	}

	var sum float32
	for i, v := range logits {
		logits[i] = math32.Exp(v - max)
		sum += logits[i]
	}
	for i := range logits {
		logits[i] /= sum
	}

	return logits
}
