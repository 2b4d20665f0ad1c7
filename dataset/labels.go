// Package dataset - Label and blacklist file parsing.
package dataset

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ReadLabels reads a newline-separated label file. Each line is one label;
// surrounding whitespace is trimmed and trailing blank lines are ignored.
//
// Used for both the ground truth labels file (one label per image, in sorted
// image order) and the model output labels file (one label per output
// category index).
func ReadLabels(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open labels file %s", path)
	}
	defer f.Close()

	var labels []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		labels = append(labels, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to read labels file %s", path)
	}

	if len(labels) == 0 {
		return nil, errors.Errorf("labels file %s is empty", path)
	}

	return labels, nil
}

// ReadBlacklist reads the ILSVRC blacklist file: one 1-based image index per
// line, in ascending order. The ILSVRC2014 devkit ships such a file with 1762
// entries; see its readme for the rationale.
func ReadBlacklist(path string) ([]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open blacklist file %s", path)
	}
	defer f.Close()

	var indices []int
	prev := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		idx, err := strconv.Atoi(line)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid blacklist entry %q in %s", line, path)
		}
		if idx < 1 {
			return nil, errors.Errorf("blacklist index %d must be >= 1", idx)
		}
		if idx <= prev {
			return nil, errors.Errorf(
				"blacklist indices must be strictly ascending, got %d after %d", idx, prev,
			)
		}
		indices = append(indices, idx)
		prev = idx
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to read blacklist file %s", path)
	}

	return indices, nil
}
