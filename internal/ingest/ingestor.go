// SeqForge - Sequential Recommendation Dataset Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seqforge

package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/seqforge/internal/logging"
	"github.com/tomtom215/seqforge/internal/metrics"
)

// Source is a named raw log stream.
type Source struct {
	Name   string
	Reader io.Reader
}

// Ingestor parses raw log sources, optionally in parallel.
type Ingestor struct {
	workers int
}

// NewIngestor creates an ingestor that parses at most workers sources at once.
// workers < 1 is treated as 1.
func NewIngestor(workers int) *Ingestor {
	if workers < 1 {
		workers = 1
	}
	return &Ingestor{workers: workers}
}

// FindFiles returns the files in dir matching pattern, sorted by name.
func FindFiles(dir, pattern string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", pattern, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no input files matching %q in %s", pattern, dir)
	}
	sort.Strings(matches)
	return matches, nil
}

// IngestFiles parses every file in paths and merges the results in path order.
func (i *Ingestor) IngestFiles(ctx context.Context, paths []string) (*Result, error) {
	return i.ingest(ctx, len(paths), func(ctx context.Context, idx int) (*Result, error) {
		path := paths[idx]
		f, err := os.Open(path) //nolint:gosec // input paths come from operator configuration
		if err != nil {
			return nil, fmt.Errorf("open rating log: %w", err)
		}
		defer func() { _ = f.Close() }() //nolint:errcheck // read-only file

		return ParseSource(ctx, filepath.Base(path), f)
	})
}

// IngestReaders parses in-memory sources and merges the results in slice order.
func (i *Ingestor) IngestReaders(ctx context.Context, sources []Source) (*Result, error) {
	return i.ingest(ctx, len(sources), func(ctx context.Context, idx int) (*Result, error) {
		return ParseSource(ctx, sources[idx].Name, sources[idx].Reader)
	})
}

func (i *Ingestor) ingest(ctx context.Context, n int, parse func(context.Context, int) (*Result, error)) (*Result, error) {
	logger := logging.Stage(ctx, "ingest")
	start := time.Now()

	partials := make([]*Result, n)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(i.workers)

	for idx := 0; idx < n; idx++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fileStart := time.Now()
			res, err := parse(gctx, idx)
			if err != nil {
				var perr *ParseError
				if errors.As(err, &perr) {
					metrics.IngestParseErrors.Inc()
				}
				return err
			}
			partials[idx] = res
			metrics.RatingsIngested.Add(float64(res.Ratings))
			logger.Debug().
				Int("source", idx).
				Int("ratings", res.Ratings).
				Int("users", len(res.Histories)).
				Dur("duration", time.Since(fileStart)).
				Msg("Source parsed")
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := NewResult()
	for _, partial := range partials {
		merged.Merge(partial)
	}

	metrics.RecordStage("ingest", time.Since(start))
	logger.Info().
		Int("sources", merged.Sources).
		Int("ratings", merged.Ratings).
		Int("users", len(merged.Histories)).
		Int("items", merged.Popularity.Len()).
		Dur("duration", time.Since(start)).
		Msg("Ingestion complete")

	return merged, nil
}
