// SeqForge - Sequential Recommendation Dataset Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seqforge

// Package window cuts newest-first user histories into non-overlapping
// (context, label) training windows.
//
// A history is sliced into consecutive blocks of ChunkSize+1 ratings. The
// first (newest) rating of a block is the label and the rest, still newest
// first, are the context. Blocks of a single rating yield nothing, so a user
// with h ratings produces h/(C+1) windows, plus one when h mod (C+1) >= 2.
package window
