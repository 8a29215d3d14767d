// SeqForge - Sequential Recommendation Dataset Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seqforge

package vocab

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/goccy/go-json"

	"github.com/tomtom215/seqforge/internal/models"
)

// FileName returns the vocabulary file name for a dataset.
func FileName(dataset string) string {
	return dataset + "_vocab.json"
}

// Write encodes the vocabulary as a JSON object keyed by external id, with
// keys in dense id order.
func (v *Vocabulary) Write(w io.Writer) error {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range v.entries {
		if i > 0 {
			buf.WriteString(", ")
		}
		key, err := json.Marshal(e.ExternalID)
		if err != nil {
			return fmt.Errorf("marshal id %s: %w", e.ExternalID, err)
		}
		val, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("marshal entry %s: %w", e.ExternalID, err)
		}
		buf.Write(key)
		buf.WriteString(": ")
		buf.Write(val)
	}
	buf.WriteString("}\n")

	_, err := w.Write(buf.Bytes())
	return err
}

// WriteFile writes the vocabulary to path.
func (v *Vocabulary) WriteFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create vocabulary dir: %w", err)
	}

	f, err := os.Create(path) //nolint:gosec // output path comes from operator configuration
	if err != nil {
		return fmt.Errorf("create vocabulary file: %w", err)
	}

	bw := bufio.NewWriter(f)
	if err := v.Write(bw); err != nil {
		_ = f.Close() //nolint:errcheck // already failing
		return fmt.Errorf("write vocabulary: %w", err)
	}
	if err := bw.Flush(); err != nil {
		_ = f.Close() //nolint:errcheck // already failing
		return fmt.Errorf("flush vocabulary: %w", err)
	}
	return f.Close()
}

// Read decodes a vocabulary written by Write and checks that the dense ids
// form a bijection onto [0, N) consistent with SortKey order.
func Read(r io.Reader) (*Vocabulary, error) {
	var raw map[string]models.VocabEntry
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode vocabulary: %w", err)
	}

	entries := make([]models.VocabEntry, 0, len(raw))
	for ext, e := range raw {
		e.ExternalID = ext
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].DenseID < entries[j].DenseID })

	for i, e := range entries {
		if e.DenseID != i {
			return nil, fmt.Errorf("%w: dense ids are not contiguous from 0 (found %d at position %d)", ErrInvalidVocabulary, e.DenseID, i)
		}
		if i > 0 && !SortKey(entries[i-1].ExternalID, e.ExternalID) {
			return nil, fmt.Errorf("%w: id %s numbered before %s", ErrInvalidVocabulary, entries[i-1].ExternalID, e.ExternalID)
		}
	}

	return newVocabulary(entries), nil
}

// LoadFile reads a vocabulary file.
func LoadFile(path string) (*Vocabulary, error) {
	f, err := os.Open(path) //nolint:gosec // input path comes from operator configuration
	if err != nil {
		return nil, fmt.Errorf("open vocabulary: %w", err)
	}
	defer func() { _ = f.Close() }() //nolint:errcheck // read-only file

	return Read(bufio.NewReader(f))
}
