// SeqForge - Sequential Recommendation Dataset Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seqforge

package models

// VocabEntry assigns a dense id to a retained item.
type VocabEntry struct {
	// DenseID is the zero-based contiguous id used in training data.
	DenseID int `json:"id"`

	// ExternalID is the item id used in the raw logs.
	ExternalID string `json:"-"`

	// Title is the display title.
	Title string `json:"title"`

	// Year is the release year as found in the metadata source (may be "NULL").
	Year string `json:"year"`
}

// Window is one training example: the newest rating of a slice is the label
// and the remaining, older ratings of the slice form the context.
type Window struct {
	Context []int `json:"context"`
	Label   int   `json:"label"`
}

// Shard is a contiguous block of windows written to one file.
type Shard struct {
	// Index is the zero-based position of the shard within its split.
	Index int

	// Windows holds the shard content in emission order.
	Windows []Window
}

// Len returns the number of windows in the shard.
func (s Shard) Len() int {
	return len(s.Windows)
}
