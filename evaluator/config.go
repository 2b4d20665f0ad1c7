// Package evaluator - Parameter file loading.
package evaluator

import (
	"bytes"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// LoadParams reads evaluation parameters from a YAML file. Unknown keys are
// rejected so typos in a params file fail loudly instead of silently
// evaluating with defaults.
func LoadParams(path string) (Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Params{}, errors.Wrapf(err, "failed to read params file %s", path)
	}

	var params Params
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&params); err != nil {
		return Params{}, errors.Wrapf(err, "failed to parse params file %s", path)
	}

	return params, nil
}
