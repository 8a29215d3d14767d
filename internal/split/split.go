// SeqForge - Sequential Recommendation Dataset Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seqforge

// Package split partitions windows into train and test sets with a seeded
// random permutation.
package split

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/tomtom215/seqforge/internal/models"
)

// ErrInvalidRatio is returned when the test proportion is outside [0, 1).
var ErrInvalidRatio = errors.New("split percentage must be in [0, 1)")

// Indices holds the window positions assigned to each split.
type Indices struct {
	Train []int
	Test  []int
}

// Partition permutes [0, total) with seed and cuts it at
// boundary = floor(total*(1-p)). Train receives perm[:boundary-1] and test
// perm[boundary:]; the element at boundary-1 is assigned to neither, which
// keeps outputs compatible with existing datasets. When boundary is 0 the
// train side is empty.
func Partition(total int, p float64, seed int64) (Indices, error) {
	if math.IsNaN(p) || p < 0 || p >= 1 {
		return Indices{}, fmt.Errorf("%w: got %v", ErrInvalidRatio, p)
	}
	if total < 0 {
		return Indices{}, fmt.Errorf("total must not be negative: got %d", total)
	}

	perm := rand.New(rand.NewSource(seed)).Perm(total) //nolint:gosec // reproducible shuffle, not security sensitive

	boundary := int(math.Floor(float64(total) * (1 - p)))
	trainEnd := boundary - 1
	if trainEnd < 0 {
		trainEnd = 0
	}

	return Indices{
		Train: perm[:trainEnd:trainEnd],
		Test:  perm[boundary:],
	}, nil
}

// Apply materialises the windows selected by idx, in index order.
func Apply(windows []models.Window, idx Indices) (train, test []models.Window) {
	train = make([]models.Window, len(idx.Train))
	for i, j := range idx.Train {
		train[i] = windows[j]
	}
	test = make([]models.Window, len(idx.Test))
	for i, j := range idx.Test {
		test[i] = windows[j]
	}
	return train, test
}
