// SeqForge - Sequential Recommendation Dataset Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seqforge

// Package rank turns model scores into next-item recommendations using the
// dataset vocabulary. It is the serving-side contract of the generated data:
// inputs are padded or truncated like training contexts and ids already in
// the input are never recommended.
package rank

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/tomtom215/seqforge/internal/models"
)

// Defaults of the serving contract.
const (
	DefaultMaxSeqLength = 15
	DefaultK            = 10
	DefaultPadID        = -1
)

var (
	// ErrUnknownItem is returned for an external id missing from the vocabulary.
	ErrUnknownItem = errors.New("unknown item")

	// ErrScoreCount is returned when a scorer returns the wrong number of scores.
	ErrScoreCount = errors.New("scorer returned wrong number of scores")

	// ErrInvalidRanker is returned by Recommend when K or MaxSeqLength is below 1.
	ErrInvalidRanker = errors.New("ranker K and MaxSeqLength must be positive")
)

// Scorer produces one score per dense id for a padded input sequence.
type Scorer interface {
	Score(ctx context.Context, sequence []int) ([]float64, error)
}

// ScorerFunc adapts a function to Scorer.
type ScorerFunc func(ctx context.Context, sequence []int) ([]float64, error)

// Score implements Scorer.
func (f ScorerFunc) Score(ctx context.Context, sequence []int) ([]float64, error) {
	return f(ctx, sequence)
}

// Vocabulary is the subset of vocab.Vocabulary used for ranking.
type Vocabulary interface {
	Len() int
	DenseID(externalID string) (int, bool)
	Entry(denseID int) (models.VocabEntry, bool)
}

// Recommendation is one ranked item.
type Recommendation struct {
	DenseID    int     `json:"-"`
	ExternalID string  `json:"id"`
	Title      string  `json:"title"`
	Year       string  `json:"year"`
	Score      float64 `json:"score"`
}

// Ranker ranks items for an input sequence.
type Ranker struct {
	Scorer       Scorer
	Vocabulary   Vocabulary
	MaxSeqLength int
	K            int
	PadID        int
}

// NewRanker returns a ranker with the default sequence length, K and pad id.
func NewRanker(scorer Scorer, vocab Vocabulary) *Ranker {
	return &Ranker{
		Scorer:       scorer,
		Vocabulary:   vocab,
		MaxSeqLength: DefaultMaxSeqLength,
		K:            DefaultK,
		PadID:        DefaultPadID,
	}
}

// Pad right-pads ids with PadID to MaxSeqLength, or keeps the first
// MaxSeqLength ids.
func (r *Ranker) Pad(ids []int) []int {
	out := make([]int, max(r.MaxSeqLength, 0))
	n := copy(out, ids)
	for i := n; i < len(out); i++ {
		out[i] = r.PadID
	}
	return out
}

// Recommend scores the padded input and returns up to K items by descending
// score, excluding ids present in the input. Equal scores rank the lower
// dense id first.
func (r *Ranker) Recommend(ctx context.Context, ids []int) ([]Recommendation, error) {
	if r.K < 1 || r.MaxSeqLength < 1 {
		return nil, fmt.Errorf("%w: K=%d MaxSeqLength=%d", ErrInvalidRanker, r.K, r.MaxSeqLength)
	}
	scores, err := r.Scorer.Score(ctx, r.Pad(ids))
	if err != nil {
		return nil, fmt.Errorf("score sequence: %w", err)
	}
	if len(scores) != r.Vocabulary.Len() {
		return nil, fmt.Errorf("%w: got %d, vocabulary has %d", ErrScoreCount, len(scores), r.Vocabulary.Len())
	}

	seen := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		seen[id] = struct{}{}
	}

	candidates := make([]int, 0, len(scores))
	for id := range scores {
		if _, ok := seen[id]; !ok {
			candidates = append(candidates, id)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return scores[candidates[i]] > scores[candidates[j]]
	})
	if len(candidates) > r.K {
		candidates = candidates[:r.K]
	}

	out := make([]Recommendation, 0, len(candidates))
	for _, id := range candidates {
		entry, ok := r.Vocabulary.Entry(id)
		if !ok {
			return nil, fmt.Errorf("dense id %d missing from vocabulary", id)
		}
		out = append(out, Recommendation{
			DenseID:    id,
			ExternalID: entry.ExternalID,
			Title:      entry.Title,
			Year:       entry.Year,
			Score:      scores[id],
		})
	}
	return out, nil
}

// ResolveExternal maps external ids to dense ids.
func (r *Ranker) ResolveExternal(externalIDs []string) ([]int, error) {
	out := make([]int, len(externalIDs))
	for i, ext := range externalIDs {
		id, ok := r.Vocabulary.DenseID(ext)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownItem, ext)
		}
		out[i] = id
	}
	return out, nil
}

// FormatProbability renders a probability as a percentage with two decimals.
func FormatProbability(p float64) string {
	return fmt.Sprintf("%.2f", p*100)
}
