// SeqForge - Sequential Recommendation Dataset Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seqforge

/*
Package main is the seqforge command-line tool.

# Commands

	seqforge generate         ingest rating logs, write vocabulary, shards and report
	seqforge fetch-metadata   enrich the vocabulary through an OMDb-style API (resumable)
	seqforge inspect <dir>    verify shard files against their names and the vocabulary
	seqforge recommend <id>   rank items after a history with a Markov baseline

# Configuration

Every generate and fetch-metadata setting can come from a YAML file
(--config, $CONFIG_PATH or ./seqforge.yaml), a SEQFORGE_* environment
variable, or a flag. Flags win, then the environment, then the file, then
built-in defaults. Only flags given on the command line override anything.

Example seqforge.yaml:

	dataset:
	  input_dir: data/raw/netflix-prize-data
	  output_dir: data/processed/netflix
	  top_n: 500
	  chunk_size: 5
	  split_percentage: 0.2
	  format: tfrecord
	fetch:
	  api_key: your-key
	  rate: 5
	logging:
	  level: info
	  format: console

# Signal Handling

SIGINT and SIGTERM cancel the running command. A cancelled generate leaves
partial output that the next run overwrites; a cancelled fetch-metadata
keeps every item fetched so far in its checkpoint.

# Example Usage

	seqforge generate --netflix-prize-data-dir data/raw/netflix-prize-data \
	    --output-path data/processed/netflix --top-movie-n 500 --chunksize 5

	SEQFORGE_API_KEY=... seqforge fetch-metadata --dataset-dir data/processed/netflix

	seqforge inspect data/processed/netflix --vocab-path data/processed/netflix/netflix_vocab.json

	seqforge recommend 571 1905 --dataset-dir data/processed/netflix --k 5
*/
package main
