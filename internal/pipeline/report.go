// SeqForge - Sequential Recommendation Dataset Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seqforge

package pipeline

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/goccy/go-json"
	"gonum.org/v1/gonum/stat"

	"github.com/tomtom215/seqforge/internal/shard"
)

// Report summarizes one generate run.
type Report struct {
	RunID      string        `json:"run_id"`
	Dataset    string        `json:"dataset"`
	StartedAt  time.Time     `json:"started_at"`
	Duration   string        `json:"duration"`
	Parameters Parameters    `json:"parameters"`
	Counts     Counts        `json:"counts"`
	Histories  Distribution  `json:"history_lengths"`
	PerUser    Distribution  `json:"windows_per_user"`
	Shards     []ShardReport `json:"shards"`
	Stages     []StageReport `json:"stages"`
}

// Parameters echoes the settings that determine the output.
type Parameters struct {
	TopN            int     `json:"top_n"`
	ChunkSize       int     `json:"chunk_size"`
	MinRatings      int     `json:"min_ratings"`
	SplitPercentage float64 `json:"split_percentage"`
	ShardSize       int     `json:"shard_size"`
	Seed            int64   `json:"seed"`
	Format          string  `json:"format"`
	Compression     string  `json:"compression"`
}

// Counts holds per-stage totals.
type Counts struct {
	Sources       int `json:"sources"`
	Ratings       int `json:"ratings"`
	Users         int `json:"users"`
	ItemsSeen     int `json:"items_seen"`
	ItemsRetained int `json:"items_retained"`
	UsersSkipped  int `json:"users_skipped"`
	Windows       int `json:"windows"`
	TrainWindows  int `json:"train_windows"`
	TestWindows   int `json:"test_windows"`
	CheckWindows  int `json:"check_windows"`
}

// Distribution describes a sample of non-negative counts.
type Distribution struct {
	N      int     `json:"n"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
	P50    float64 `json:"p50"`
	P90    float64 `json:"p90"`
	P99    float64 `json:"p99"`
}

// ShardReport describes one written shard file.
type ShardReport struct {
	Split string `json:"split"`
	File  string `json:"file"`
	Count int    `json:"count"`
	Bytes int64  `json:"bytes"`
}

// StageReport is the wall time of one stage.
type StageReport struct {
	Stage    string `json:"stage"`
	Duration string `json:"duration"`
}

// Describe computes the distribution of values. Standard deviation is zero
// for fewer than two values.
func Describe(values []int) Distribution {
	if len(values) == 0 {
		return Distribution{}
	}
	x := make([]float64, len(values))
	for i, v := range values {
		x[i] = float64(v)
	}
	sort.Float64s(x)

	d := Distribution{
		N:    len(x),
		Mean: stat.Mean(x, nil),
		P50:  stat.Quantile(0.5, stat.Empirical, x, nil),
		P90:  stat.Quantile(0.9, stat.Empirical, x, nil),
		P99:  stat.Quantile(0.99, stat.Empirical, x, nil),
	}
	if len(x) > 1 {
		d.StdDev = stat.StdDev(x, nil)
	}
	if math.IsNaN(d.StdDev) {
		d.StdDev = 0
	}
	return d
}

func shardReports(split string, files []shard.File) []ShardReport {
	out := make([]ShardReport, len(files))
	for i, f := range files {
		out[i] = ShardReport{Split: split, File: filepath.Base(f.Path), Count: f.Count, Bytes: f.Bytes}
	}
	return out
}

// WriteFile writes the report as indented JSON, replacing path atomically.
func (r *Report) WriteFile(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	data = append(data, '\n')

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o640); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp) //nolint:errcheck // best-effort cleanup
		return fmt.Errorf("rename report: %w", err)
	}
	return nil
}

// ReadReport loads a report written by WriteFile.
func ReadReport(path string) (*Report, error) {
	data, err := os.ReadFile(path) //nolint:gosec // operator-supplied path
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode report %s: %w", path, err)
	}
	return &r, nil
}
