// Package evaluator - Final evaluation report.
package evaluator

import (
	"encoding/json"
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-ilsvrc/metrics"
)

// Report is the final evaluation result written to the output file.
type Report struct {
	// GeneratedAt is when the evaluation finished.
	GeneratedAt time.Time `json:"generatedAt"`
	// Params echoes the parameters the run was configured with.
	Params Params `json:"params"`
	// K is the number of ranks tracked.
	K int `json:"k"`
	// Count is the number of images evaluated.
	Count int64 `json:"count"`
	// Accuracies are the cumulative top-1..top-K accuracy fractions.
	Accuracies []float64 `json:"accuracies"`
}

// NewReport builds a report from the merged accuracy result.
func NewReport(params Params, acc metrics.TopKAccuracy) Report {
	return Report{
		GeneratedAt: time.Now().UTC(),
		Params:      params,
		K:           acc.K,
		Count:       acc.Count,
		Accuracies:  acc.Accuracies(),
	}
}

// Write serializes the report as indented JSON to path.
func (r Report) Write(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal report")
	}

	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return errors.Wrapf(err, "failed to write report to %s", path)
	}
	return nil
}
