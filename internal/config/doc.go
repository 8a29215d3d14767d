// SeqForge - Sequential Recommendation Dataset Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seqforge

/*
Package config provides layered configuration for SeqForge.

Configuration is assembled with Koanf v2 from four sources, each overriding
the one before it:

 1. Struct defaults (defaultConfig)
 2. An optional YAML file (--config, CONFIG_PATH, or a default location)
 3. SEQFORGE_* environment variables, mapped through an explicit table
 4. Command-line flags the user actually set

# Configuration Structure

  - DatasetConfig: input discovery, top-N, windowing, split and shard output
  - FetchConfig: metadata enrichment (API endpoint, rate, checkpoint)
  - MetricsConfig: optional Prometheus textfile output
  - LoggingConfig: zerolog level, format and caller info

# Environment Variables

Dataset:
  - SEQFORGE_INPUT_DIR: Directory holding the raw rating logs
  - SEQFORGE_INPUT_GLOB: File pattern inside the input directory (default: combined_data_*.txt)
  - SEQFORGE_TITLES_FILE: Item catalog file (default: movie_titles.csv)
  - SEQFORGE_DATASET_NAME: Prefix for every output file (default: netflix)
  - SEQFORGE_OUTPUT_DIR: Output directory
  - SEQFORGE_TOP_N: Number of most-rated items to keep (default: 500)
  - SEQFORGE_CHUNK_SIZE: Maximum context length (default: 5)
  - SEQFORGE_MIN_RATINGS: Minimum raw ratings per user (default: chunk size)
  - SEQFORGE_SPLIT_PERCENTAGE: Test fraction in [0, 1) (default: 0.2)
  - SEQFORGE_SHARD_SIZE: Windows per shard (default: 650000)
  - SEQFORGE_SEED: Shuffle seed (default: 42)
  - SEQFORGE_FORMAT: tfrecord or jsonl
  - SEQFORGE_COMPRESSION: none or gzip
  - SEQFORGE_WORKERS: Worker goroutines per stage (default: 4)

Metadata fetch:
  - SEQFORGE_API_URL, SEQFORGE_API_KEY, SEQFORGE_FETCH_RATE,
    SEQFORGE_FETCH_MAX_ATTEMPTS, SEQFORGE_FETCH_TIMEOUT,
    SEQFORGE_CHECKPOINT_DIR

Logging:
  - SEQFORGE_LOG_LEVEL, SEQFORGE_LOG_FORMAT, SEQFORGE_LOG_CALLER

# Usage

	cfg, err := config.Load(config.LoadOptions{
	    ConfigFile: path,
	    Flags:      cmd.Flags(),
	    FlagKeys:   generateFlagKeys,
	})
	if err != nil {
	    logging.Fatal().Err(err).Msg("invalid configuration")
	}

Load validates the result; a returned error wraps ErrInvalidConfig when the
values themselves are wrong.
*/
package config
