// SeqForge - Sequential Recommendation Dataset Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seqforge

package shard

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/klauspost/compress/gzip"

	"github.com/tomtom215/seqforge/internal/models"
	"github.com/tomtom215/seqforge/internal/tfrecord"
)

// Encoding and compression names.
const (
	FormatTFRecord = "tfrecord"
	FormatJSONL    = "jsonl"

	CompressionNone = "none"
	CompressionGzip = "gzip"
)

// Feature names of the tf.train.Example payload.
const (
	FeatureContext = "rating_chunk"
	FeatureLabel   = "label"
)

// ErrUnknownFormat is returned for an unsupported encoding name.
var ErrUnknownFormat = errors.New("unknown shard format")

// Encoder writes and reads one shard's windows.
type Encoder interface {
	// Format returns the encoding name.
	Format() string

	// Extension returns the file extension, including the leading dot.
	Extension(compressed bool) string

	// Encode writes windows to w.
	Encode(w io.Writer, windows []models.Window) error

	// Decode reads every window from r.
	Decode(r io.Reader) ([]models.Window, error)
}

// NewEncoder returns the encoder for format.
func NewEncoder(format string) (Encoder, error) {
	switch format {
	case FormatTFRecord:
		return TFRecordEncoder{}, nil
	case FormatJSONL:
		return JSONLEncoder{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// TFRecordEncoder writes tf.train.Example records.
type TFRecordEncoder struct{}

func (TFRecordEncoder) Format() string { return FormatTFRecord }

func (TFRecordEncoder) Extension(bool) string { return ".tfrec" }

// Encode implements Encoder.
func (TFRecordEncoder) Encode(w io.Writer, windows []models.Window) error {
	tw := tfrecord.NewWriter(w)
	for i, win := range windows {
		ctxIDs := make([]int64, len(win.Context))
		for j, id := range win.Context {
			ctxIDs[j] = int64(id)
		}
		payload := tfrecord.MarshalExample(tfrecord.Features{
			FeatureContext: ctxIDs,
			FeatureLabel:   {int64(win.Label)},
		})
		if err := tw.Write(payload); err != nil {
			return fmt.Errorf("window %d: %w", i, err)
		}
	}
	return nil
}

// Decode implements Encoder. Gzip input is detected automatically.
func (TFRecordEncoder) Decode(r io.Reader) ([]models.Window, error) {
	rd, err := tfrecord.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rd.Close() }() //nolint:errcheck // read side

	var out []models.Window
	for {
		rec, err := rd.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", len(out), err)
		}

		features, err := tfrecord.UnmarshalExample(rec)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", len(out), err)
		}
		labels := features[FeatureLabel]
		if len(labels) != 1 {
			return nil, fmt.Errorf("record %d: want 1 label, got %d", len(out), len(labels))
		}
		ctxIDs := make([]int, len(features[FeatureContext]))
		for i, id := range features[FeatureContext] {
			ctxIDs[i] = int(id)
		}
		out = append(out, models.Window{Context: ctxIDs, Label: int(labels[0])})
	}
}

// JSONLEncoder writes one JSON object per window.
type JSONLEncoder struct{}

func (JSONLEncoder) Format() string { return FormatJSONL }

func (JSONLEncoder) Extension(compressed bool) string {
	if compressed {
		return ".jsonl.gz"
	}
	return ".jsonl"
}

// Encode implements Encoder.
func (JSONLEncoder) Encode(w io.Writer, windows []models.Window) error {
	enc := json.NewEncoder(w)
	for i, win := range windows {
		if err := enc.Encode(win); err != nil {
			return fmt.Errorf("window %d: %w", i, err)
		}
	}
	return nil
}

// Decode implements Encoder. The input must already be decompressed.
func (JSONLEncoder) Decode(r io.Reader) ([]models.Window, error) {
	dec := json.NewDecoder(r)
	var out []models.Window
	for {
		var win models.Window
		if err := dec.Decode(&win); err != nil {
			if errors.Is(err, io.EOF) {
				return out, nil
			}
			return nil, fmt.Errorf("line %d: %w", len(out)+1, err)
		}
		out = append(out, win)
	}
}

// ReadFile decodes a shard file, choosing the encoding from its extension.
func ReadFile(path string) ([]models.Window, error) {
	f, err := os.Open(path) //nolint:gosec // shard paths come from a directory listing
	if err != nil {
		return nil, fmt.Errorf("open shard: %w", err)
	}
	defer func() { _ = f.Close() }() //nolint:errcheck // read-only file

	br := bufio.NewReader(f)
	switch {
	case strings.HasSuffix(path, ".tfrec"):
		return TFRecordEncoder{}.Decode(br)
	case strings.HasSuffix(path, ".jsonl.gz"):
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("open gzip shard: %w", err)
		}
		defer func() { _ = gz.Close() }() //nolint:errcheck // read side
		return JSONLEncoder{}.Decode(gz)
	case strings.HasSuffix(path, ".jsonl"):
		return JSONLEncoder{}.Decode(br)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}
