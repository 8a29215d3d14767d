// SeqForge - Sequential Recommendation Dataset Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seqforge

package config

import (
	"path/filepath"
	"time"

	"github.com/tomtom215/seqforge/internal/logging"
	"github.com/tomtom215/seqforge/internal/vocab"
)

// Config holds all application configuration.
type Config struct {
	Dataset DatasetConfig `koanf:"dataset"`
	Fetch   FetchConfig   `koanf:"fetch"`
	Metrics MetricsConfig `koanf:"metrics"`
	Logging LoggingConfig `koanf:"logging"`
}

// DatasetConfig controls the generate pipeline.
type DatasetConfig struct {
	InputDir   string `koanf:"input_dir" validate:"required"`
	InputGlob  string `koanf:"input_glob" validate:"required,glob"`
	TitlesFile string `koanf:"titles_file" validate:"required"`
	Name       string `koanf:"name" validate:"required"`
	OutputDir  string `koanf:"output_dir" validate:"required"`

	TopN            int     `koanf:"top_n" validate:"gt=0"`
	ChunkSize       int     `koanf:"chunk_size" validate:"gt=0"`
	MinRatings      int     `koanf:"min_ratings" validate:"gte=0"`
	SplitPercentage float64 `koanf:"split_percentage" validate:"gte=0,lt=1"`
	ShardSize       int     `koanf:"shard_size" validate:"gt=0"`

	GenerateCheck bool `koanf:"generate_check"`
	CheckCutoff   int  `koanf:"check_cutoff" validate:"gte=0"`

	Seed        int64  `koanf:"seed"`
	Format      string `koanf:"format" validate:"oneof=tfrecord jsonl"`
	Compression string `koanf:"compression" validate:"oneof=none gzip"`
	Workers     int    `koanf:"workers" validate:"gt=0"`
}

// TitlesPath resolves the catalog file: relative names live inside InputDir.
func (d DatasetConfig) TitlesPath() string {
	if filepath.IsAbs(d.TitlesFile) {
		return d.TitlesFile
	}
	return filepath.Join(d.InputDir, d.TitlesFile)
}

// VocabPath is where generate writes the vocabulary.
func (d DatasetConfig) VocabPath() string {
	return filepath.Join(d.OutputDir, vocab.FileName(d.Name))
}

// InfoPath is where fetch-metadata writes enriched item details.
func (d DatasetConfig) InfoPath() string {
	return filepath.Join(d.OutputDir, d.Name+"_info.json")
}

// ReportPath is where generate writes the run report.
func (d DatasetConfig) ReportPath() string {
	return filepath.Join(d.OutputDir, d.Name+"_report.json")
}

// CheckpointDir is the default BadgerDB directory for metadata progress.
func (d DatasetConfig) CheckpointDir() string {
	return filepath.Join(d.OutputDir, ".checkpoint")
}

// FetchConfig controls metadata enrichment. Empty paths are derived from
// DatasetConfig after loading.
type FetchConfig struct {
	VocabPath     string        `koanf:"vocab_path"`
	OutputPath    string        `koanf:"output_path"`
	CheckpointDir string        `koanf:"checkpoint_dir"`
	APIURL        string        `koanf:"api_url" validate:"required"`
	APIKey        string        `koanf:"api_key"`
	Rate          float64       `koanf:"rate" validate:"gte=0"`
	MaxAttempts   int           `koanf:"max_attempts" validate:"gt=0"`
	Timeout       time.Duration `koanf:"timeout" validate:"gt=0"`
	SkipNotFound  bool          `koanf:"skip_not_found"`

	// PosterSize rewrites poster URLs to this height. Zero keeps them as returned.
	PosterSize int `koanf:"poster_size" validate:"gte=0"`
}

// MetricsConfig controls Prometheus output for batch runs.
type MetricsConfig struct {
	// Textfile, when set, receives the default registry in node-exporter
	// textfile format at the end of a run.
	Textfile string `koanf:"textfile"`
}

// LoggingConfig mirrors logging.Config for the loadable fields.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"required"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// ToLogging converts to the logging package configuration.
func (l LoggingConfig) ToLogging() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = l.Level
	cfg.Format = l.Format
	cfg.Caller = l.Caller
	return cfg
}

// EffectiveMinRatings returns the per-user threshold, where zero means ChunkSize.
func (d DatasetConfig) EffectiveMinRatings() int {
	if d.MinRatings == 0 {
		return d.ChunkSize
	}
	return d.MinRatings
}

// deriveFetchPaths fills fetch paths left empty from the dataset settings.
func (c *Config) deriveFetchPaths() {
	if c.Fetch.VocabPath == "" {
		c.Fetch.VocabPath = c.Dataset.VocabPath()
	}
	if c.Fetch.OutputPath == "" {
		c.Fetch.OutputPath = c.Dataset.InfoPath()
	}
	if c.Fetch.CheckpointDir == "" {
		c.Fetch.CheckpointDir = c.Dataset.CheckpointDir()
	}
}
