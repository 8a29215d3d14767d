// SeqForge - Sequential Recommendation Dataset Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seqforge

// Package ingest reads raw per-item rating logs into per-user histories and
// per-item popularity counts.
//
// # Input Format
//
// Each source is a sequence of lines. A line ending in ':' introduces the
// current item id; every following line is a "user_id,score,YYYY-MM-DD"
// triple attributed to that item:
//
//	1:
//	1488844,3,2005-09-06
//	822109,5,2005-05-13
//	2:
//	2059652,4,2005-09-05
//
// A rating line that appears before any item line, or a rating line with a
// malformed field, aborts ingestion with a *ParseError carrying the source
// name and line number. Corrupt input is never skipped.
//
// # Concurrency
//
// Ingestor parses several files concurrently and merges the per-file results
// in file order. Counts merge by addition and the first-seen item order is
// file order then line order, so the merged result does not depend on
// scheduling.
package ingest
