// SeqForge - Sequential Recommendation Dataset Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seqforge

package metadata

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/seqforge/internal/logging"
	"github.com/tomtom215/seqforge/internal/metrics"
)

// Item is one vocabulary entry to enrich.
type Item struct {
	ID string
	Info
}

// FetchError reports the item that stopped a fetch run. Items fetched before
// it are saved in the checkpoint.
type FetchError struct {
	ItemID  string
	Fetched int
	Err     error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch metadata for item %s (fetched %d before failure): %v", e.ItemID, e.Fetched, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// FetcherConfig controls per-item retry.
type FetcherConfig struct {
	// MaxAttempts is the number of tries per item, including the first. Default: 5.
	MaxAttempts int

	// InitialInterval is the first retry delay. Default: 500ms.
	InitialInterval time.Duration

	// MaxInterval caps the retry delay. Default: 30s.
	MaxInterval time.Duration

	// SkipNotFound records items the provider does not know with empty
	// details instead of stopping the run.
	SkipNotFound bool
}

// Fetcher enriches vocabulary items through a Provider, resuming from a Checkpoint.
type Fetcher struct {
	provider   Provider
	checkpoint Checkpoint
	cfg        FetcherConfig
}

// NewFetcher creates a fetcher, filling zero config fields with defaults.
func NewFetcher(provider Provider, checkpoint Checkpoint, cfg FetcherConfig) *Fetcher {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = 500 * time.Millisecond
	}
	if cfg.MaxInterval <= 0 {
		cfg.MaxInterval = 30 * time.Second
	}
	return &Fetcher{provider: provider, checkpoint: checkpoint, cfg: cfg}
}

// Run fetches details for every item not yet in the checkpoint, in the given
// order, saving each success immediately. It returns the details of all items
// once every item is present. A permanent failure stops the run with a
// *FetchError; cancellation stops it with the context error.
func (f *Fetcher) Run(ctx context.Context, items []Item) (map[string]Details, error) {
	logger := logging.Stage(ctx, "fetch-metadata")
	start := time.Now()

	done, err := f.checkpoint.Load(ctx)
	if err != nil {
		return nil, err
	}

	var pending []Item
	for _, item := range items {
		if _, ok := done[item.ID]; ok {
			metrics.RecordFetch(metrics.FetchSkipped)
			continue
		}
		pending = append(pending, item)
	}

	logger.Info().
		Int("items", len(items)).
		Int("already_fetched", len(items)-len(pending)).
		Int("pending", len(pending)).
		Msg("Starting metadata fetch")

	fetched := 0
	for _, item := range pending {
		d, err := f.fetchWithRetry(ctx, item)
		if err != nil {
			if ctx.Err() != nil {
				logger.Warn().Int("fetched", fetched).Msg("Metadata fetch cancelled, progress saved")
				return nil, ctx.Err()
			}
			if f.cfg.SkipNotFound && errors.Is(err, ErrNotFound) {
				logger.Warn().Str("item_id", item.ID).Str("title", item.Title).Msg("Item unknown to provider, recording empty details")
				d = Details{Title: item.Title, Year: item.Year}
			} else {
				metrics.RecordFetch(metrics.FetchFailure)
				logger.Error().Err(err).Str("item_id", item.ID).Int("fetched", fetched).Msg("Metadata fetch stopped")
				return nil, &FetchError{ItemID: item.ID, Fetched: fetched, Err: err}
			}
		}

		if err := f.checkpoint.Save(ctx, item.ID, d); err != nil {
			return nil, fmt.Errorf("save checkpoint for item %s: %w", item.ID, err)
		}
		done[item.ID] = d
		fetched++
		metrics.RecordFetch(metrics.FetchSuccess)
	}

	out := make(map[string]Details, len(items))
	for _, item := range items {
		out[item.ID] = done[item.ID]
	}

	metrics.RecordStage("fetch-metadata", time.Since(start))
	logger.Info().
		Int("fetched", fetched).
		Int("total", len(out)).
		Dur("duration", time.Since(start)).
		Msg("Metadata fetch complete")

	return out, nil
}

func (f *Fetcher) fetchWithRetry(ctx context.Context, item Item) (Details, error) {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = f.cfg.InitialInterval
	eb.MaxInterval = f.cfg.MaxInterval
	eb.MaxElapsedTime = 0

	var b backoff.BackOff = backoff.WithMaxRetries(eb, uint64(f.cfg.MaxAttempts-1)) //nolint:gosec // MaxAttempts >= 1
	b = backoff.WithContext(b, ctx)

	var result Details
	op := func() error {
		d, err := f.provider.Fetch(ctx, item.Info)
		if err != nil {
			if IsTransient(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		result = d
		return nil
	}

	notify := func(err error, wait time.Duration) {
		metrics.RecordFetch(metrics.FetchRetry)
		logging.Ctx(ctx).Debug().Err(err).Str("item_id", item.ID).Dur("wait", wait).Msg("Retrying metadata fetch")
	}

	if err := backoff.RetryNotify(op, b, notify); err != nil {
		return Details{}, err
	}
	return result, nil
}

// WriteDetails writes details as a JSON object keyed by item id. The file is
// written to a temporary name and renamed into place.
func WriteDetails(path string, details map[string]Details) error {
	data, err := json.MarshalIndent(details, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal details: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()        //nolint:errcheck // already failing
		_ = os.Remove(tmpName) //nolint:errcheck // best-effort cleanup
		return fmt.Errorf("write details: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName) //nolint:errcheck // best-effort cleanup
		return fmt.Errorf("close details: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename details: %w", err)
	}
	return nil
}
