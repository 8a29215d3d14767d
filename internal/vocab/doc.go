// SeqForge - Sequential Recommendation Dataset Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seqforge

// Package vocab assigns contiguous dense ids to the retained items and
// persists the mapping as {dataset}_vocab.json.
//
// Dense ids are zero-based and follow SortKey order of the external ids, so
// the same item set always produces the same ids and a byte-identical file.
package vocab
