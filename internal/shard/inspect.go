// SeqForge - Sequential Recommendation Dataset Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seqforge

package shard

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/seqforge/internal/models"
)

var (
	// ErrCountMismatch marks a shard whose record count differs from its name.
	ErrCountMismatch = errors.New("record count does not match file name")

	// ErrIDOutOfRange marks a shard holding a dense id outside the vocabulary.
	ErrIDOutOfRange = errors.New("dense id out of vocabulary range")
)

// FileReport is the result of checking one shard file.
type FileReport struct {
	Name    string
	Base    string
	Index   int
	Count   int
	Decoded int
	Bytes   int64
	Err     error
}

// SetReport aggregates the shards sharing a base name.
type SetReport struct {
	Base    string
	Files   int
	Windows int
	// Missing lists shard indices absent from the directory.
	Missing []int
}

// Inspection is the outcome of Inspect.
type Inspection struct {
	Files []FileReport
	Sets  []SetReport
}

// Problems counts failed files and incomplete sets.
func (in *Inspection) Problems() int {
	n := 0
	for _, f := range in.Files {
		if f.Err != nil {
			n++
		}
	}
	for _, s := range in.Sets {
		if len(s.Missing) > 0 {
			n++
		}
	}
	return n
}

// Inspect decodes every shard file in dir and checks it against its name.
// When vocabSize is positive every dense id must lie in [0, vocabSize).
// Per-file problems are reported in the result; the error is reserved for
// failures to read the directory or cancellation.
func Inspect(ctx context.Context, dir string, vocabSize, workers int) (*Inspection, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read shard dir: %w", err)
	}

	var files []FileReport
	for _, e := range entries {
		if e.IsDir() || !isShardExt(e.Name()) {
			continue
		}
		name, err := ParseShardName(e.Name())
		if err != nil {
			continue
		}
		files = append(files, FileReport{Name: e.Name(), Base: name.Base, Index: name.Index, Count: name.Count})
	}
	sort.Slice(files, func(i, j int) bool {
		if files[i].Base != files[j].Base {
			return files[i].Base < files[j].Base
		}
		return files[i].Index < files[j].Index
	})

	if workers < 1 {
		workers = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			checkFile(filepath.Join(dir, files[i].Name), &files[i], vocabSize)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Inspection{Files: files, Sets: summarize(files)}, nil
}

func isShardExt(name string) bool {
	return strings.HasSuffix(name, ".tfrec") ||
		strings.HasSuffix(name, ".jsonl") ||
		strings.HasSuffix(name, ".jsonl.gz")
}

func checkFile(path string, f *FileReport, vocabSize int) {
	if info, err := os.Stat(path); err == nil {
		f.Bytes = info.Size()
	}

	windows, err := ReadFile(path)
	if err != nil {
		f.Err = err
		return
	}
	f.Decoded = len(windows)
	if f.Decoded != f.Count {
		f.Err = fmt.Errorf("%w: decoded %d, name says %d", ErrCountMismatch, f.Decoded, f.Count)
		return
	}
	if vocabSize > 0 {
		if id, ok := firstOutOfRange(windows, vocabSize); !ok {
			f.Err = fmt.Errorf("%w: %d (vocabulary size %d)", ErrIDOutOfRange, id, vocabSize)
		}
	}
}

// firstOutOfRange returns the first id outside [0, n) and false, or 0 and
// true when every id is in range.
func firstOutOfRange(windows []models.Window, n int) (int, bool) {
	for _, w := range windows {
		if w.Label < 0 || w.Label >= n {
			return w.Label, false
		}
		for _, id := range w.Context {
			if id < 0 || id >= n {
				return id, false
			}
		}
	}
	return 0, true
}

// summarize groups files (sorted by base, index) into sets.
func summarize(files []FileReport) []SetReport {
	var sets []SetReport
	for i := 0; i < len(files); {
		j := i
		set := SetReport{Base: files[i].Base}
		present := make(map[int]bool)
		maxIndex := 0
		for ; j < len(files) && files[j].Base == set.Base; j++ {
			set.Files++
			set.Windows += files[j].Decoded
			present[files[j].Index] = true
			if files[j].Index > maxIndex {
				maxIndex = files[j].Index
			}
		}
		for idx := 0; idx < maxIndex; idx++ {
			if !present[idx] {
				set.Missing = append(set.Missing, idx)
			}
		}
		sets = append(sets, set)
		i = j
	}
	return sets
}
