// Package inference - This file provides common utilities for inference tasks.
package inference

// Precision represents the numeric precision a model is executed with.
type Precision string

// Precision constants are the supported precisions for inference.
const (
	PrecisionFP16 Precision = "FP16"
	PrecisionFP32 Precision = "FP32"
)
