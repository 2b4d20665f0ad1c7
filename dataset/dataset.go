// Package dataset - Ground truth dataset loading for ILSVRC evaluation.
package dataset

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
)

// Sample pairs an image file with its ground truth label.
type Sample struct {
	// ImagePath is the path to the image file.
	ImagePath string
	// Label is the ground truth label for the image.
	Label string
}

// ListImages reads all image files from a directory and returns their paths
// in sorted order. The sorted order is what aligns images with the ground
// truth labels file, so it must be stable across runs and platforms.
//
// Arguments:
// - dir: Directory path containing image files.
//
// Returns:
// - []string: Sorted slice of image file paths.
// - error: Error if listing fails or the directory holds no images.
func ListImages(dir string) ([]string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read image directory %s", dir)
	}

	var images []string
	for _, file := range files {
		if file.IsDir() {
			continue
		}

		ext := filepath.Ext(file.Name())
		switch ext {
		case ".jpg", ".jpeg", ".png", ".bmp", ".JPEG":
			images = append(images, filepath.Join(dir, file.Name()))
		}
	}

	if len(images) == 0 {
		return nil, errors.Errorf("no image files found in %s", dir)
	}

	sort.Strings(images)

	return images, nil
}

// Pair aligns sorted image paths with their ground truth labels.
//
// The i-th label belongs to the i-th image, so the counts must match exactly.
//
// Arguments:
// - imagePaths: Sorted image file paths.
// - labels: Ground truth labels, one per image.
//
// Returns:
// - []Sample: Image/label pairs in image order.
// - error: Error if the counts differ.
func Pair(imagePaths, labels []string) ([]Sample, error) {
	if len(imagePaths) != len(labels) {
		return nil, errors.Errorf(
			"image count (%d) does not match ground truth label count (%d)",
			len(imagePaths), len(labels),
		)
	}

	samples := make([]Sample, len(imagePaths))
	for i, path := range imagePaths {
		samples[i] = Sample{ImagePath: path, Label: labels[i]}
	}

	return samples, nil
}

// ApplyBlacklist removes the blacklisted samples from the paired sequence.
// Indices are 1-based positions in the sorted sample list, matching the
// ILSVRC2014 devkit blacklist file format.
//
// Arguments:
// - samples: Paired samples in sorted image order.
// - blacklist: Sorted, 1-based indices of samples to exclude.
//
// Returns:
// - []Sample: Samples with blacklisted entries removed.
// - error: Error if an index is out of range.
func ApplyBlacklist(samples []Sample, blacklist []int) ([]Sample, error) {
	if len(blacklist) == 0 {
		return samples, nil
	}

	skip := make(map[int]bool, len(blacklist))
	for _, idx := range blacklist {
		if idx < 1 || idx > len(samples) {
			return nil, errors.Errorf(
				"blacklist index %d out of range [1, %d]", idx, len(samples),
			)
		}
		skip[idx] = true
	}

	kept := make([]Sample, 0, len(samples)-len(skip))
	for i, sample := range samples {
		if skip[i+1] {
			continue
		}
		kept = append(kept, sample)
	}

	return kept, nil
}

// Cap limits the sample sequence to the first n entries. n <= 0 means no cap.
func Cap(samples []Sample, n int) []Sample {
	if n <= 0 || n >= len(samples) {
		return samples
	}
	return samples[:n]
}
