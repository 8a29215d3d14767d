// SeqForge - Sequential Recommendation Dataset Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seqforge

/*
Package metrics provides Prometheus instrumentation for dataset generation runs.

All collectors are registered on the default registry through promauto. A
generation run is a batch job, so nothing is served over HTTP; instead the
default gatherer can be dumped to a node-exporter textfile at the end of a run:

	if err := metrics.WriteTextfile("/var/lib/node_exporter/seqforge.prom"); err != nil {
		logging.Warn().Err(err).Msg("Failed to write metrics textfile")
	}

# Available Metrics

Ingestion:
  - seqforge_ratings_ingested_total: rating lines parsed (counter)
  - seqforge_ingest_parse_errors_total: sources rejected as corrupt (counter)

Selection and windowing:
  - seqforge_items_retained: size of the top-N item set (gauge)
  - seqforge_windows_generated_total: training windows produced (counter)
  - seqforge_users_skipped_total: users below the minimum-ratings threshold (counter)
  - seqforge_split_windows: windows per split (gauge, label: split)

Output:
  - seqforge_shards_written_total: shard files written (counter, label: format)
  - seqforge_shard_bytes_written_total: bytes written to shards (counter, label: format)

Stages:
  - seqforge_stage_duration_seconds: stage wall time (histogram, label: stage)

Metadata fetch:
  - seqforge_metadata_fetch_total: fetch outcomes (counter, label: outcome)
  - seqforge_circuit_breaker_state: 0=closed, 1=half-open, 2=open (gauge, label: name)
  - seqforge_circuit_breaker_transitions_total: state changes (counter, labels: name, from, to)
*/
package metrics
