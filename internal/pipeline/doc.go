// SeqForge - Sequential Recommendation Dataset Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seqforge

/*
Package pipeline runs the dataset generation stages in order.

# Stages

	ingest -> top-n -> sort -> vocab -> window -> split -> shard -> report

Every stage runs to completion before the next one starts. Parallelism lives
inside the ingest, window and shard stages, each bounded by the configured
worker count. The first error aborts the run; nothing is retried and partial
output is left for the next run to overwrite.

# Outputs

In dataset.output_dir, for a dataset named "netflix" with chunk size 5:

	netflix_vocab.json
	netflix_5_train_{i}_{count}.tfrec
	netflix_5_test_{i}_{count}.tfrec
	netflix_check_{i}_{count}.tfrec   (with dataset.generate_check)
	netflix_report.json

The report records per-stage counts and the distribution of filtered history
lengths and windows per user.
*/
package pipeline
