// SeqForge - Sequential Recommendation Dataset Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seqforge

package history

import (
	"sort"

	"github.com/tomtom215/seqforge/internal/models"
)

// SortByDateDesc orders every user's ratings newest first, in place.
// Ratings on the same date keep their relative order.
func SortByDateDesc(h models.UserHistory) {
	for _, ratings := range h {
		sort.SliceStable(ratings, func(i, j int) bool {
			return ratings[i].Date.After(ratings[j].Date)
		})
	}
}
