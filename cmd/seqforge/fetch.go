// SeqForge - Sequential Recommendation Dataset Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seqforge

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tomtom215/seqforge/internal/config"
	"github.com/tomtom215/seqforge/internal/logging"
	"github.com/tomtom215/seqforge/internal/metadata"
	"github.com/tomtom215/seqforge/internal/metrics"
	"github.com/tomtom215/seqforge/internal/vocab"
)

// fetchFlagKeys maps fetch-metadata flags to configuration keys.
var fetchFlagKeys = map[string]string{
	"dataset-name":   "dataset.name",
	"dataset-dir":    "dataset.output_dir",
	"vocab-path":     "fetch.vocab_path",
	"output-path":    "fetch.output_path",
	"checkpoint-dir": "fetch.checkpoint_dir",
	"api-url":        "fetch.api_url",
	"api-key":        "fetch.api_key",
	"rate":           "fetch.rate",
	"max-attempts":   "fetch.max_attempts",
	"timeout":        "fetch.timeout",
	"skip-not-found": "fetch.skip_not_found",
	"poster-size":    "fetch.poster_size",
}

func newFetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch-metadata",
		Short: "Enrich the vocabulary with details from an OMDb-style API",
		Long: `Looks up every vocabulary item by title and year and writes
{dataset}_info.json. Progress is saved per item in a checkpoint directory, so
an interrupted or failed run resumes where it stopped. Use --reset to start
over.`,
		Args: cobra.NoArgs,
		RunE: runFetch,
	}

	defaults := config.Defaults()
	f := cmd.Flags()
	f.String("dataset-name", defaults.Dataset.Name, "dataset name used to derive default paths")
	f.String("dataset-dir", defaults.Dataset.OutputDir, "dataset output directory used to derive default paths")
	f.String("vocab-path", "", "vocabulary file (default: {dataset-dir}/{dataset-name}_vocab.json)")
	f.String("output-path", "", "details file (default: {dataset-dir}/{dataset-name}_info.json)")
	f.String("checkpoint-dir", "", "checkpoint database directory (default: {dataset-dir}/.checkpoint)")
	f.String("api-url", defaults.Fetch.APIURL, "metadata API base URL")
	f.String("api-key", "", "metadata API key")
	f.Float64("rate", defaults.Fetch.Rate, "maximum requests per second (0 = unlimited)")
	f.Int("max-attempts", defaults.Fetch.MaxAttempts, "attempts per item, including the first")
	f.Duration("timeout", defaults.Fetch.Timeout, "per-request timeout")
	f.Bool("skip-not-found", false, "record items unknown to the API with catalog details instead of stopping")
	f.Int("poster-size", 0, "rewrite poster URLs to this height (0 = unchanged)")
	f.Bool("reset", false, "discard saved progress before fetching")

	return cmd
}

func runFetch(cmd *cobra.Command, _ []string) (err error) {
	cfg, err := loadConfig(cmd, fetchFlagKeys)
	if err != nil {
		return err
	}
	reset, err := cmd.Flags().GetBool("reset")
	if err != nil {
		return err
	}

	ctx := logging.ContextWithNewRunID(cmd.Context())
	fc := cfg.Fetch

	v, err := vocab.LoadFile(fc.VocabPath)
	if err != nil {
		return err
	}

	provider, err := metadata.NewHTTPProvider(metadata.HTTPProviderConfig{
		BaseURL: fc.APIURL,
		APIKey:  fc.APIKey,
		Rate:    fc.Rate,
		Timeout: fc.Timeout,
	})
	if err != nil {
		return err
	}

	if err := os.MkdirAll(fc.CheckpointDir, 0o750); err != nil {
		return fmt.Errorf("create checkpoint dir: %w", err)
	}
	checkpoint, err := metadata.OpenBadgerCheckpoint(fc.CheckpointDir)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := checkpoint.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close checkpoint: %w", cerr)
		}
	}()

	if reset {
		if err := checkpoint.Clear(ctx); err != nil {
			return err
		}
		logging.Ctx(ctx).Info().Str("checkpoint_dir", fc.CheckpointDir).Msg("Checkpoint cleared")
	}

	fetcher := metadata.NewFetcher(provider, checkpoint, metadata.FetcherConfig{
		MaxAttempts:  fc.MaxAttempts,
		SkipNotFound: fc.SkipNotFound,
	})
	details, err := fetcher.Run(ctx, v.Items())
	defer writeMetrics(cfg)
	if err != nil {
		var ferr *metadata.FetchError
		if errors.As(err, &ferr) {
			return fmt.Errorf("%w; rerun to resume after item %s", err, ferr.ItemID)
		}
		return err
	}

	if fc.PosterSize > 0 {
		for id, d := range details {
			d.Img = metadata.ResizeImage(d.Img, fc.PosterSize)
			details[id] = d
		}
	}

	if err := os.MkdirAll(filepath.Dir(fc.OutputPath), 0o750); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := metadata.WriteDetails(fc.OutputPath, details); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "details: %d items written to %s\n", len(details), fc.OutputPath)
	return nil
}

// writeMetrics writes the metrics textfile, if configured. Failures are
// logged; they never change the command's outcome.
func writeMetrics(cfg *config.Config) {
	path := cfg.Metrics.Textfile
	if path == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		logging.Warn().Err(err).Str("path", path).Msg("Failed to create metrics dir")
		return
	}
	if err := metrics.WriteTextfile(path); err != nil {
		logging.Warn().Err(err).Str("path", path).Msg("Failed to write metrics textfile")
	}
}
