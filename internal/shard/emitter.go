// SeqForge - Sequential Recommendation Dataset Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seqforge

package shard

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/gzip"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/seqforge/internal/logging"
	"github.com/tomtom215/seqforge/internal/metrics"
	"github.com/tomtom215/seqforge/internal/models"
)

// ErrInvalidShardSize is returned for a shard size below 1.
var ErrInvalidShardSize = errors.New("shard size must be at least 1")

// Config controls shard emission.
type Config struct {
	OutputDir   string
	ShardSize   int
	Workers     int
	Compression string
}

// File describes one written shard.
type File struct {
	Path  string
	Index int
	Count int
	Bytes int64
}

// Emitter writes window lists as shard files.
type Emitter struct {
	cfg Config
	enc Encoder
}

// NewEmitter validates cfg and returns an emitter using enc.
func NewEmitter(cfg Config, enc Encoder) (*Emitter, error) {
	if cfg.ShardSize < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidShardSize, cfg.ShardSize)
	}
	switch cfg.Compression {
	case "", CompressionNone:
		cfg.Compression = CompressionNone
	case CompressionGzip:
	default:
		return nil, fmt.Errorf("unknown compression %q", cfg.Compression)
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &Emitter{cfg: cfg, enc: enc}, nil
}

// Blocks returns the [start, end) bounds of consecutive blocks of size over n items.
func Blocks(n, size int) [][2]int {
	var out [][2]int
	for start := 0; start < n; start += size {
		end := start + size
		if end > n {
			end = n
		}
		out = append(out, [2]int{start, end})
	}
	return out
}

// Emit writes windows as consecutive shards named after base and returns
// them in index order. Shards are written concurrently; names depend only
// on position.
func (e *Emitter) Emit(ctx context.Context, windows []models.Window, base string) ([]File, error) {
	logger := logging.Stage(ctx, "shard")
	start := time.Now()

	if err := os.MkdirAll(e.cfg.OutputDir, 0o750); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	blocks := Blocks(len(windows), e.cfg.ShardSize)
	files := make([]File, len(blocks))
	ext := e.enc.Extension(e.cfg.Compression == CompressionGzip)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Workers)

	for i, b := range blocks {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			block := windows[b[0]:b[1]]
			path := filepath.Join(e.cfg.OutputDir, ShardName(base, i, len(block), ext))

			n, err := e.writeShard(path, block)
			if err != nil {
				return fmt.Errorf("write shard %s: %w", filepath.Base(path), err)
			}
			files[i] = File{Path: path, Index: i, Count: len(block), Bytes: n}
			metrics.RecordShard(e.enc.Format(), n)
			logger.Debug().Str("file", filepath.Base(path)).Int("records", len(block)).Int64("bytes", n).Msg("Wrote shard")
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger.Info().
		Str("base", base).
		Int("shards", len(files)).
		Int("windows", len(windows)).
		Str("format", e.enc.Format()).
		Dur("duration", time.Since(start)).
		Msg("Shards written")

	return files, nil
}

// writeShard encodes block to a temporary file and renames it to path.
// It returns the size of the file on disk.
func (e *Emitter) writeShard(path string, block []models.Window) (int64, error) {
	tmp := path + ".tmp"
	f, err := os.Create(tmp) //nolint:gosec // output path built from operator configuration
	if err != nil {
		return 0, err
	}

	cw := &countingWriter{w: f}
	bw := bufio.NewWriterSize(cw, 256*1024)

	var sink io.Writer = bw
	var gz *gzip.Writer
	if e.cfg.Compression == CompressionGzip {
		gz = gzip.NewWriter(bw)
		sink = gz
	}

	err = e.enc.Encode(sink, block)
	if err == nil && gz != nil {
		err = gz.Close()
	}
	if err == nil {
		err = bw.Flush()
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tmp) //nolint:errcheck // best-effort cleanup
		return 0, err
	}

	if err := os.Rename(tmp, path); err != nil {
		return 0, err
	}
	return cw.n, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
