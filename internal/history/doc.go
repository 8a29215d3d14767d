// SeqForge - Sequential Recommendation Dataset Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seqforge

// Package history selects the most popular items and prepares per-user
// rating histories for windowing.
//
// SelectTopN picks the n most-rated items (ties resolved by TieBreakFirstSeen),
// FilterHistories drops every rating of an item outside that set, and
// SortByDateDesc orders each user's remaining ratings newest first.
package history
