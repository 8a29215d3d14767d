// SeqForge - Sequential Recommendation Dataset Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seqforge

package models

import (
	"sort"
	"time"
)

// DateLayout is the layout of rating dates in the raw logs.
const DateLayout = "2006-01-02"

// Rating is a single user rating of an item.
type Rating struct {
	// ItemID is the external item identifier from the raw logs.
	ItemID string `json:"item_id"`

	// Score is the integer rating value (1-5 in the Netflix data).
	Score int `json:"score"`

	// Date is the day the rating was made.
	Date time.Time `json:"date"`
}

// UserHistory maps a user id to that user's ratings.
// Order is unspecified after ingestion and newest-first after sorting.
type UserHistory map[int][]Rating

// UserIDs returns the user ids in ascending order.
func (h UserHistory) UserIDs() []int {
	ids := make([]int, 0, len(h))
	for id := range h {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// TotalRatings returns the number of ratings across all users.
func (h UserHistory) TotalRatings() int {
	total := 0
	for _, ratings := range h {
		total += len(ratings)
	}
	return total
}

// ItemPopularity counts ratings per item. Order records each item id the
// first time it was seen, which makes popularity ties reproducible.
type ItemPopularity struct {
	Counts map[string]int
	Order  []string
}

// NewItemPopularity returns an empty popularity table.
func NewItemPopularity() *ItemPopularity {
	return &ItemPopularity{Counts: make(map[string]int)}
}

// Add records n ratings for item.
func (p *ItemPopularity) Add(item string, n int) {
	if _, seen := p.Counts[item]; !seen {
		p.Order = append(p.Order, item)
	}
	p.Counts[item] += n
}

// Merge adds other's counts into p. Items new to p are appended in other's
// first-seen order.
func (p *ItemPopularity) Merge(other *ItemPopularity) {
	for _, item := range other.Order {
		p.Add(item, other.Counts[item])
	}
}

// Len returns the number of distinct items.
func (p *ItemPopularity) Len() int {
	return len(p.Order)
}
