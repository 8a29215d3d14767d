// SeqForge - Sequential Recommendation Dataset Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seqforge

// Package models defines the data types shared by the dataset pipeline stages.
//
// All values are run-local: they are created while one dataset-generation run
// executes and are discarded once the shards and vocabulary are written.
//
//   - Rating: one (item, score, date) event from the raw logs
//   - UserHistory: ratings grouped by user id
//   - ItemPopularity: rating counts per item plus first-seen order
//   - VocabEntry: dense id assignment for a retained item
//   - Window: one (context, label) training example
//   - Shard: a bounded block of windows written as one file
package models
