// SeqForge - Sequential Recommendation Dataset Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seqforge

package history

import (
	"errors"
	"fmt"
	"sort"

	"github.com/tomtom215/seqforge/internal/models"
)

// ErrInvalidTopN is returned when the requested item count is not positive.
var ErrInvalidTopN = errors.New("top-n must be positive")

// ItemSet is an immutable set of retained item ids.
type ItemSet struct {
	ids     []string
	members map[string]struct{}
}

// NewItemSet builds a set from ids. Duplicates are ignored; the first
// occurrence fixes the position.
func NewItemSet(ids ...string) ItemSet {
	s := ItemSet{members: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		if _, ok := s.members[id]; ok {
			continue
		}
		s.members[id] = struct{}{}
		s.ids = append(s.ids, id)
	}
	return s
}

// Contains reports whether id is in the set.
func (s ItemSet) Contains(id string) bool {
	_, ok := s.members[id]
	return ok
}

// Len returns the number of items.
func (s ItemSet) Len() int {
	return len(s.ids)
}

// IDs returns a copy of the ids in selection order (most popular first).
func (s ItemSet) IDs() []string {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

// TieBreakFirstSeen orders two items with equal counts: the one whose
// position in the first-seen order is lower wins.
func TieBreakFirstSeen(posA, posB int) bool {
	return posA < posB
}

// SelectTopN returns the n items with the highest rating counts. If fewer
// than n distinct items exist, all of them are returned.
func SelectTopN(pop *models.ItemPopularity, n int) (ItemSet, error) {
	if n <= 0 {
		return ItemSet{}, fmt.Errorf("%w: got %d", ErrInvalidTopN, n)
	}

	ranked := make([]string, len(pop.Order))
	copy(ranked, pop.Order)

	// ranked starts in first-seen order, so index is the first-seen position.
	position := make(map[string]int, len(ranked))
	for i, id := range ranked {
		position[id] = i
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		ci, cj := pop.Counts[ranked[i]], pop.Counts[ranked[j]]
		if ci != cj {
			return ci > cj
		}
		return TieBreakFirstSeen(position[ranked[i]], position[ranked[j]])
	})

	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return NewItemSet(ranked...), nil
}

// FilterHistories returns a new history holding only ratings of items in set.
// Relative order is preserved and users left without ratings are dropped.
func FilterHistories(h models.UserHistory, set ItemSet) models.UserHistory {
	out := make(models.UserHistory, len(h))
	for userID, ratings := range h {
		var kept []models.Rating
		for _, r := range ratings {
			if set.Contains(r.ItemID) {
				kept = append(kept, r)
			}
		}
		if len(kept) > 0 {
			out[userID] = kept
		}
	}
	return out
}
