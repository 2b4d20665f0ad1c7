// Package models - Registry of known ImageNet classification architectures.
//
// The registry centralizes the per-architecture facts the evaluator needs:
// input and output node names, output category count, and the preprocessing
// the architecture was trained with. Selecting an architecture by name keeps
// those facts consistent instead of spreading them across command line flags.
package models

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nvr-ai/go-ilsvrc/images"
)

// Spec describes one classification architecture.
type Spec struct {
	// Name is the registry key.
	Name string `json:"name"        yaml:"name"`
	// InputName is the model's input node name.
	InputName string `json:"inputName"   yaml:"inputName"`
	// OutputName is the model's output node name.
	OutputName string `json:"outputName"  yaml:"outputName"`
	// OutputCount is the number of output categories. ImageNet models ship
	// with either 1000 classes or 1001 with a leading background class.
	OutputCount int `json:"outputCount" yaml:"outputCount"`
	// Logits indicates raw logit outputs that need a softmax before they can
	// be read as probabilities.
	Logits bool `json:"logits"      yaml:"logits"`
	// Preprocess is the input preprocessing the architecture expects.
	Preprocess images.Config `json:"preprocess"  yaml:"preprocess"`
}

var registry = map[string]Spec{
	"mobilenet_v1": {
		Name:        "mobilenet_v1",
		InputName:   "input",
		OutputName:  "MobilenetV1/Predictions/Reshape_1:0",
		OutputCount: 1001,
		Preprocess:  images.MobileNetConfig(),
	},
	"mobilenet_v2": {
		Name:        "mobilenet_v2",
		InputName:   "input",
		OutputName:  "output",
		OutputCount: 1001,
		Preprocess:  images.MobileNetConfig(),
	},
	"resnet50": {
		Name:        "resnet50",
		InputName:   "input",
		OutputName:  "output",
		OutputCount: 1000,
		Logits:      true,
		Preprocess:  images.ResNetConfig(),
	},
	"inception_v3": {
		Name:        "inception_v3",
		InputName:   "input",
		OutputName:  "output",
		OutputCount: 1001,
		Preprocess: images.Config{
			Width:            299,
			Height:           299,
			ScaleShorterSide: 342,
			Mean:             [3]float32{127.5, 127.5, 127.5},
			Std:              [3]float32{127.5, 127.5, 127.5},
		},
	},
}

// Lookup resolves an architecture name.
//
// Arguments:
// - name: The architecture name, case-insensitive.
//
// Returns:
// - Spec: The architecture description.
// - error: An error naming the known architectures if the name is unknown.
func Lookup(name string) (Spec, error) {
	spec, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Spec{}, fmt.Errorf(
			"unknown model architecture %q, known architectures: %s",
			name, strings.Join(Names(), ", "),
		)
	}
	return spec, nil
}

// Names returns the registered architecture names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
