// SeqForge - Sequential Recommendation Dataset Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seqforge

package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tomtom215/seqforge/internal/config"
	"github.com/tomtom215/seqforge/internal/history"
	"github.com/tomtom215/seqforge/internal/ingest"
	"github.com/tomtom215/seqforge/internal/logging"
	"github.com/tomtom215/seqforge/internal/metadata"
	"github.com/tomtom215/seqforge/internal/metrics"
	"github.com/tomtom215/seqforge/internal/models"
	"github.com/tomtom215/seqforge/internal/shard"
	"github.com/tomtom215/seqforge/internal/split"
	"github.com/tomtom215/seqforge/internal/vocab"
	"github.com/tomtom215/seqforge/internal/window"
)

// Runner executes the generate pipeline for one configuration.
type Runner struct {
	cfg     *config.Config
	catalog metadata.Source
	stages  []StageReport
}

// Option customizes a Runner.
type Option func(*Runner)

// WithCatalog replaces the catalog file named by dataset.titles_file.
func WithCatalog(src metadata.Source) Option {
	return func(r *Runner) { r.catalog = src }
}

// NewRunner returns a Runner for cfg. cfg must already be validated.
func NewRunner(cfg *config.Config, opts ...Option) *Runner {
	r := &Runner{cfg: cfg}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes every stage and returns the written report.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	if logging.RunIDFromContext(ctx) == "" {
		ctx = logging.ContextWithNewRunID(ctx)
	}
	d := r.cfg.Dataset
	logger := logging.Ctx(ctx)
	started := time.Now()
	r.stages = nil

	logger.Info().
		Str("dataset", d.Name).
		Str("input_dir", d.InputDir).
		Str("output_dir", d.OutputDir).
		Int("top_n", d.TopN).
		Int("chunk_size", d.ChunkSize).
		Msg("Starting dataset generation")

	if err := os.MkdirAll(d.OutputDir, 0o750); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	report := &Report{
		RunID:     logging.RunIDFromContext(ctx),
		Dataset:   d.Name,
		StartedAt: started.UTC(),
		Parameters: Parameters{
			TopN:            d.TopN,
			ChunkSize:       d.ChunkSize,
			MinRatings:      d.EffectiveMinRatings(),
			SplitPercentage: d.SplitPercentage,
			ShardSize:       d.ShardSize,
			Seed:            d.Seed,
			Format:          d.Format,
			Compression:     d.Compression,
		},
	}

	// Ingest
	stageStart := time.Now()
	paths, err := ingest.FindFiles(d.InputDir, d.InputGlob)
	if err != nil {
		return nil, err
	}
	ingested, err := ingest.NewIngestor(d.Workers).IngestFiles(ctx, paths)
	if err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}
	r.stageDone("ingest", stageStart)
	report.Counts.Sources = ingested.Sources
	report.Counts.Ratings = ingested.Ratings
	report.Counts.Users = len(ingested.Histories)
	report.Counts.ItemsSeen = ingested.Popularity.Len()

	// Top-N selection, filtering and chronological sort
	stageStart = time.Now()
	topN, err := history.SelectTopN(ingested.Popularity, d.TopN)
	if err != nil {
		return nil, err
	}
	rawCounts := ingested.RawCounts()
	filtered := history.FilterHistories(ingested.Histories, topN)
	history.SortByDateDesc(filtered)
	metrics.ItemsRetained.Set(float64(topN.Len()))
	report.Counts.ItemsRetained = topN.Len()
	report.Histories = Describe(historyLengths(filtered))
	r.stageDone("topn", stageStart)
	logging.Stage(ctx, "topn").Info().
		Int("items_seen", report.Counts.ItemsSeen).
		Int("items_retained", topN.Len()).
		Int("users_with_history", len(filtered)).
		Msg("Top-N selection complete")

	// Vocabulary
	stageStart = time.Now()
	catalog, err := r.loadCatalog()
	if err != nil {
		return nil, err
	}
	vocabulary, err := vocab.Build(topN, catalog)
	if err != nil {
		return nil, fmt.Errorf("build vocabulary: %w", err)
	}
	if err := vocabulary.WriteFile(d.VocabPath()); err != nil {
		return nil, err
	}
	r.stageDone("vocab", stageStart)
	logging.Stage(ctx, "vocab").Info().
		Int("entries", vocabulary.Len()).
		Str("file", d.VocabPath()).
		Msg("Vocabulary written")

	// Windows
	stageStart = time.Now()
	windower, err := window.NewWindower(window.Config{
		ChunkSize:  d.ChunkSize,
		MinRatings: d.EffectiveMinRatings(),
		Workers:    d.Workers,
	}, vocabulary)
	if err != nil {
		return nil, err
	}
	windows, err := windower.Generate(ctx, filtered, rawCounts)
	if err != nil {
		return nil, fmt.Errorf("generate windows: %w", err)
	}
	r.stageDone("window", stageStart)
	report.Counts.Windows = len(windows.Windows)
	report.Counts.UsersSkipped = windows.Skipped
	report.PerUser = Describe(windows.WindowsPerUser)

	// Split
	stageStart = time.Now()
	idx, err := split.Partition(len(windows.Windows), d.SplitPercentage, d.Seed)
	if err != nil {
		return nil, err
	}
	train, test := split.Apply(windows.Windows, idx)
	metrics.RecordSplit("train", len(train))
	metrics.RecordSplit("test", len(test))
	report.Counts.TrainWindows = len(train)
	report.Counts.TestWindows = len(test)
	r.stageDone("split", stageStart)
	logging.Stage(ctx, "split").Info().
		Int("train", len(train)).
		Int("test", len(test)).
		Int("dropped", len(windows.Windows)-len(train)-len(test)).
		Int64("seed", d.Seed).
		Msg("Split complete")

	// Shards
	stageStart = time.Now()
	enc, err := shard.NewEncoder(d.Format)
	if err != nil {
		return nil, err
	}
	emitter, err := shard.NewEmitter(shard.Config{
		OutputDir:   d.OutputDir,
		ShardSize:   d.ShardSize,
		Workers:     d.Workers,
		Compression: d.Compression,
	}, enc)
	if err != nil {
		return nil, err
	}
	sets := []splitSet{
		{"train", shard.TrainBase(d.Name, d.ChunkSize), train},
		{"test", shard.TestBase(d.Name, d.ChunkSize), test},
	}
	if d.GenerateCheck {
		check := test[:min(d.CheckCutoff, len(test))]
		report.Counts.CheckWindows = len(check)
		sets = append(sets, splitSet{"check", shard.CheckBase(d.Name), check})
	}
	for _, set := range sets {
		files, err := emitter.Emit(ctx, set.windows, set.base)
		if err != nil {
			return nil, fmt.Errorf("emit %s shards: %w", set.split, err)
		}
		report.Shards = append(report.Shards, shardReports(set.split, files)...)
	}
	r.stageDone("shard", stageStart)

	// Report
	report.Stages = r.stages
	report.Duration = time.Since(started).Round(time.Millisecond).String()
	if err := report.WriteFile(d.ReportPath()); err != nil {
		return nil, err
	}

	if path := r.cfg.Metrics.Textfile; path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("create metrics dir: %w", err)
		}
		if err := metrics.WriteTextfile(path); err != nil {
			return nil, err
		}
	}

	logger.Info().
		Int("windows", report.Counts.Windows).
		Int("train", report.Counts.TrainWindows).
		Int("test", report.Counts.TestWindows).
		Int("shards", len(report.Shards)).
		Str("duration", report.Duration).
		Msg("Dataset generation complete")

	return report, nil
}

// splitSet is one group of windows written under a shard base name.
type splitSet struct {
	split   string
	base    string
	windows []models.Window
}

func (r *Runner) loadCatalog() (metadata.Source, error) {
	if r.catalog != nil {
		return r.catalog, nil
	}
	table, err := metadata.LoadTable(r.cfg.Dataset.TitlesPath())
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return table, nil
}

func (r *Runner) stageDone(stage string, start time.Time) {
	elapsed := time.Since(start)
	switch stage {
	case "topn", "vocab", "split", "shard":
		// ingest and window record their own durations
		metrics.RecordStage(stage, elapsed)
	}
	r.stages = append(r.stages, StageReport{Stage: stage, Duration: elapsed.Round(time.Microsecond).String()})
}

func historyLengths(h models.UserHistory) []int {
	ids := h.UserIDs()
	out := make([]int, len(ids))
	for i, id := range ids {
		out[i] = len(h[id])
	}
	return out
}
