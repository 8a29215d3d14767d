// SeqForge - Sequential Recommendation Dataset Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seqforge

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomtom215/seqforge/internal/config"
	"github.com/tomtom215/seqforge/internal/logging"
	"github.com/tomtom215/seqforge/internal/pipeline"
)

// generateFlagKeys maps generate flags to configuration keys.
var generateFlagKeys = map[string]string{
	"netflix-prize-data-dir": "dataset.input_dir",
	"input-glob":             "dataset.input_glob",
	"titles-file":            "dataset.titles_file",
	"dataset-name":           "dataset.name",
	"output-path":            "dataset.output_dir",
	"top-movie-n":            "dataset.top_n",
	"chunksize":              "dataset.chunk_size",
	"min-ratings":            "dataset.min_ratings",
	"split-percentage":       "dataset.split_percentage",
	"shard-size":             "dataset.shard_size",
	"generate-check-dataset": "dataset.generate_check",
	"check-dataset-cutoff":   "dataset.check_cutoff",
	"seed":                   "dataset.seed",
	"format":                 "dataset.format",
	"compression":            "dataset.compression",
	"workers":                "dataset.workers",
}

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate vocabulary, train/test shards and a run report",
		Long: `Reads every rating log matching --input-glob in --netflix-prize-data-dir,
keeps the --top-movie-n most rated items, cuts each user's newest-first history
into windows of --chunksize context items plus a label, and writes shuffled
train and test shards to --output-path.`,
		Args: cobra.NoArgs,
		RunE: runGenerate,
	}

	d := config.Defaults().Dataset
	f := cmd.Flags()
	f.String("netflix-prize-data-dir", d.InputDir, "directory holding the raw rating logs and titles file")
	f.String("input-glob", d.InputGlob, "rating log file pattern inside the input directory")
	f.String("titles-file", d.TitlesFile, "item catalog (id,year,title), relative to the input directory")
	f.String("dataset-name", d.Name, "prefix of every output file")
	f.String("output-path", d.OutputDir, "output directory")
	f.Int("top-movie-n", d.TopN, "number of most-rated items to keep")
	f.Int("chunksize", d.ChunkSize, "context length of each window")
	f.Int("min-ratings", d.MinRatings, "skip users with fewer raw ratings (0 = chunksize)")
	f.Float64("split-percentage", d.SplitPercentage, "fraction of windows held out for test, in [0, 1)")
	f.Int("shard-size", d.ShardSize, "windows per shard file")
	f.Bool("generate-check-dataset", d.GenerateCheck, "also write a small check shard set from the test split")
	f.Int("check-dataset-cutoff", d.CheckCutoff, "number of test windows in the check set")
	f.Int64("seed", d.Seed, "shuffle seed")
	f.String("format", d.Format, "shard encoding (tfrecord, jsonl)")
	f.String("compression", d.Compression, "shard compression (none, gzip)")
	f.Int("workers", d.Workers, "worker goroutines per stage")

	return cmd
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd, generateFlagKeys)
	if err != nil {
		return err
	}

	ctx := logging.ContextWithNewRunID(cmd.Context())
	report, err := pipeline.NewRunner(cfg).Run(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "windows: %d (train %d, test %d)\n",
		report.Counts.Windows, report.Counts.TrainWindows, report.Counts.TestWindows)
	fmt.Fprintf(out, "shards:  %d in %s\n", len(report.Shards), cfg.Dataset.OutputDir)
	fmt.Fprintf(out, "report:  %s\n", cfg.Dataset.ReportPath())
	return nil
}
