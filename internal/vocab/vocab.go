// SeqForge - Sequential Recommendation Dataset Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seqforge

package vocab

import (
	"errors"
	"fmt"
	"sort"

	"github.com/tomtom215/seqforge/internal/history"
	"github.com/tomtom215/seqforge/internal/metadata"
	"github.com/tomtom215/seqforge/internal/models"
)

var (
	// ErrMissingMetadata is returned when a retained item has no catalog entry.
	ErrMissingMetadata = errors.New("no metadata for item")

	// ErrInvalidVocabulary is returned when a loaded file is not a bijection onto [0, N).
	ErrInvalidVocabulary = errors.New("invalid vocabulary")
)

// LookupError names the item whose metadata could not be resolved.
type LookupError struct {
	ExternalID string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("%v: %s", ErrMissingMetadata, e.ExternalID)
}

func (e *LookupError) Unwrap() error {
	return ErrMissingMetadata
}

// SortKey orders external ids for dense id assignment: byte-wise ascending.
func SortKey(a, b string) bool {
	return a < b
}

// Vocabulary is an immutable bijection between external ids and dense ids.
type Vocabulary struct {
	entries []models.VocabEntry
	byExt   map[string]int
}

// Build numbers the items of set from 0 in SortKey order and attaches
// metadata from source. Every item must be present in source.
func Build(set history.ItemSet, source metadata.Source) (*Vocabulary, error) {
	ids := set.IDs()
	sort.Slice(ids, func(i, j int) bool { return SortKey(ids[i], ids[j]) })

	entries := make([]models.VocabEntry, len(ids))
	for i, id := range ids {
		info, ok := source.Lookup(id)
		if !ok {
			return nil, &LookupError{ExternalID: id}
		}
		entries[i] = models.VocabEntry{DenseID: i, ExternalID: id, Title: info.Title, Year: info.Year}
	}
	return newVocabulary(entries), nil
}

func newVocabulary(entries []models.VocabEntry) *Vocabulary {
	byExt := make(map[string]int, len(entries))
	for _, e := range entries {
		byExt[e.ExternalID] = e.DenseID
	}
	return &Vocabulary{entries: entries, byExt: byExt}
}

// Len returns the number of items.
func (v *Vocabulary) Len() int {
	return len(v.entries)
}

// DenseID maps an external id to its dense id.
func (v *Vocabulary) DenseID(externalID string) (int, bool) {
	id, ok := v.byExt[externalID]
	return id, ok
}

// Entry returns the entry with the given dense id.
func (v *Vocabulary) Entry(denseID int) (models.VocabEntry, bool) {
	if denseID < 0 || denseID >= len(v.entries) {
		return models.VocabEntry{}, false
	}
	return v.entries[denseID], true
}

// Entries returns a copy of all entries in dense id order.
func (v *Vocabulary) Entries() []models.VocabEntry {
	out := make([]models.VocabEntry, len(v.entries))
	copy(out, v.entries)
	return out
}

// Items returns the vocabulary as metadata fetch items in dense id order.
func (v *Vocabulary) Items() []metadata.Item {
	out := make([]metadata.Item, len(v.entries))
	for i, e := range v.entries {
		out[i] = metadata.Item{ID: e.ExternalID, Info: metadata.Info{Title: e.Title, Year: e.Year}}
	}
	return out
}
