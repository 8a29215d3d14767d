// SeqForge - Sequential Recommendation Dataset Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seqforge

package window

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/seqforge/internal/logging"
	"github.com/tomtom215/seqforge/internal/metrics"
	"github.com/tomtom215/seqforge/internal/models"
)

var (
	// ErrInvalidChunkSize is returned for a chunk size below 1.
	ErrInvalidChunkSize = errors.New("chunk size must be at least 1")

	// ErrUnknownItem is returned when a rated item has no dense id.
	ErrUnknownItem = errors.New("item missing from vocabulary")
)

// Mapper resolves external item ids to dense ids.
type Mapper interface {
	DenseID(externalID string) (int, bool)
}

// Config controls window generation.
type Config struct {
	// ChunkSize is the maximum context length C.
	ChunkSize int

	// MinRatings skips users with fewer pre-filter ratings. Zero skips nobody.
	MinRatings int

	// Workers bounds the goroutines used by Generate. Values below 1 mean 1.
	Workers int
}

// Windower turns user histories into windows.
type Windower struct {
	chunkSize  int
	minRatings int
	workers    int
	mapper     Mapper
}

// NewWindower validates cfg and returns a windower using mapper for dense ids.
func NewWindower(cfg Config, mapper Mapper) (*Windower, error) {
	if cfg.ChunkSize < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidChunkSize, cfg.ChunkSize)
	}
	if cfg.MinRatings < 0 {
		return nil, fmt.Errorf("min ratings must not be negative: got %d", cfg.MinRatings)
	}
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	return &Windower{chunkSize: cfg.ChunkSize, minRatings: cfg.MinRatings, workers: workers, mapper: mapper}, nil
}

// MinRatings returns the minimum-ratings threshold.
func (w *Windower) MinRatings() int {
	return w.minRatings
}

// UserWindows windows one user's newest-first ratings. rawCount is the
// user's rating count before top-N filtering; skipped reports whether the
// user fell below the threshold.
func (w *Windower) UserWindows(ratings []models.Rating, rawCount int) (windows []models.Window, skipped bool, err error) {
	if rawCount < w.minRatings {
		return nil, true, nil
	}

	step := w.chunkSize + 1
	for start := 0; start < len(ratings); start += step {
		end := start + step
		if end > len(ratings) {
			end = len(ratings)
		}
		slice := ratings[start:end]
		if len(slice) < 2 {
			continue
		}

		label, err := w.dense(slice[0].ItemID)
		if err != nil {
			return nil, false, err
		}
		ctxIDs := make([]int, len(slice)-1)
		for i, r := range slice[1:] {
			if ctxIDs[i], err = w.dense(r.ItemID); err != nil {
				return nil, false, err
			}
		}
		windows = append(windows, models.Window{Context: ctxIDs, Label: label})
	}
	return windows, false, nil
}

func (w *Windower) dense(item string) (int, error) {
	id, ok := w.mapper.DenseID(item)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownItem, item)
	}
	return id, nil
}

// Result is the output of Generate.
type Result struct {
	// Windows holds all windows, grouped by user in ascending user id order.
	Windows []models.Window

	// WindowsPerUser holds the window count of every non-skipped user, in
	// the same order.
	WindowsPerUser []int

	// Users is the number of users considered.
	Users int

	// Skipped is the number of users below the minimum-ratings threshold.
	Skipped int
}

// userResult is the per-user slot filled by a worker.
type userResult struct {
	windows []models.Window
	skipped bool
}

// Generate windows every user of h. rawCounts holds pre-filter rating counts;
// a user missing from it is judged by the filtered length.
func (w *Windower) Generate(ctx context.Context, h models.UserHistory, rawCounts map[int]int) (*Result, error) {
	logger := logging.Stage(ctx, "window")
	start := time.Now()

	userIDs := h.UserIDs()
	slots := make([]userResult, len(userIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.workers)

	// Each goroutine handles a contiguous block of users to keep scheduling
	// overhead low for millions of users.
	blockSize := (len(userIDs) + w.workers - 1) / w.workers
	if blockSize == 0 {
		blockSize = 1
	}
	for lo := 0; lo < len(userIDs); lo += blockSize {
		hi := lo + blockSize
		if hi > len(userIDs) {
			hi = len(userIDs)
		}
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				if i%4096 == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				userID := userIDs[i]
				raw, ok := rawCounts[userID]
				if !ok {
					raw = len(h[userID])
				}
				windows, skipped, err := w.UserWindows(h[userID], raw)
				if err != nil {
					return fmt.Errorf("user %d: %w", userID, err)
				}
				slots[i] = userResult{windows: windows, skipped: skipped}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{Users: len(userIDs)}
	for _, slot := range slots {
		if slot.skipped {
			res.Skipped++
			continue
		}
		res.Windows = append(res.Windows, slot.windows...)
		res.WindowsPerUser = append(res.WindowsPerUser, len(slot.windows))
	}

	metrics.WindowsGenerated.Add(float64(len(res.Windows)))
	metrics.UsersSkipped.Add(float64(res.Skipped))
	metrics.RecordStage("window", time.Since(start))
	logger.Info().
		Int("users", res.Users).
		Int("skipped_users", res.Skipped).
		Int("windows", len(res.Windows)).
		Int("chunk_size", w.chunkSize).
		Int("min_ratings", w.minRatings).
		Dur("duration", time.Since(start)).
		Msg("Windowing complete")

	return res, nil
}

// ExpectedCount returns the number of windows a history of length n yields
// with chunk size c.
func ExpectedCount(n, c int) int {
	step := c + 1
	count := n / step
	if n%step >= 2 {
		count++
	}
	return count
}
