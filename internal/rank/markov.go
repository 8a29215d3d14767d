// SeqForge - Sequential Recommendation Dataset Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seqforge

package rank

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/seqforge/internal/models"
)

// ErrEmptyVocabulary is returned when a model is trained for zero items.
var ErrEmptyVocabulary = errors.New("vocabulary size must be positive")

// MarkovConfig configures TrainMarkov.
type MarkovConfig struct {
	// Smoothing is the Laplace smoothing added to every transition count.
	// Default: 0.1.
	Smoothing float64

	// PadID marks padding in scored sequences. Default: DefaultPadID.
	PadID int
}

// DefaultMarkovConfig returns the default configuration.
func DefaultMarkovConfig() MarkovConfig {
	return MarkovConfig{Smoothing: 0.1, PadID: DefaultPadID}
}

// Markov is a first-order Markov chain over dense ids:
//
//	P(next | last) = (count(last -> next) + a) / (count(last -> any) + a*V)
//
// It is a baseline Scorer for generated datasets. Sequences are newest
// first, like window contexts, so the first non-pad id is the last item.
// A last item never seen as a transition source scores by label popularity.
// A trained Markov is read-only and safe for concurrent use.
type Markov struct {
	size        int
	cfg         MarkovConfig
	transitions map[int]map[int]int
	outgoing    []int
	labels      []int
	totalLabels int
}

// TrainMarkov counts transitions in windows for a vocabulary of size ids.
// Each window contributes context[0] -> label and, inside the context,
// context[i+1] -> context[i].
func TrainMarkov(ctx context.Context, windows []models.Window, size int, cfg MarkovConfig) (*Markov, error) {
	if size <= 0 {
		return nil, ErrEmptyVocabulary
	}
	if cfg.Smoothing <= 0 {
		cfg.Smoothing = 0.1
	}

	m := &Markov{
		size:        size,
		cfg:         cfg,
		transitions: make(map[int]map[int]int),
		outgoing:    make([]int, size),
		labels:      make([]int, size),
	}

	for i, w := range windows {
		if i%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if err := m.checkID(w.Label); err != nil {
			return nil, fmt.Errorf("window %d: %w", i, err)
		}
		m.labels[w.Label]++
		m.totalLabels++

		next := w.Label
		for _, from := range w.Context {
			if err := m.checkID(from); err != nil {
				return nil, fmt.Errorf("window %d: %w", i, err)
			}
			m.count(from, next)
			next = from
		}
	}
	return m, nil
}

func (m *Markov) checkID(id int) error {
	if id < 0 || id >= m.size {
		return fmt.Errorf("dense id %d outside [0, %d)", id, m.size)
	}
	return nil
}

func (m *Markov) count(from, to int) {
	row := m.transitions[from]
	if row == nil {
		row = make(map[int]int)
		m.transitions[from] = row
	}
	row[to]++
	m.outgoing[from]++
}

// Transitions returns the number of distinct (from, to) pairs seen.
func (m *Markov) Transitions() int {
	n := 0
	for _, row := range m.transitions {
		n += len(row)
	}
	return n
}

// Score implements Scorer.
func (m *Markov) Score(ctx context.Context, sequence []int) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	last := -1
	for _, id := range sequence {
		if id == m.cfg.PadID {
			continue
		}
		if err := m.checkID(id); err != nil {
			return nil, err
		}
		last = id
		break
	}

	a := m.cfg.Smoothing
	denom := a * float64(m.size)
	scores := make([]float64, m.size)

	if last >= 0 && m.outgoing[last] > 0 {
		row := m.transitions[last]
		denom += float64(m.outgoing[last])
		for id := range scores {
			scores[id] = (float64(row[id]) + a) / denom
		}
		return scores, nil
	}

	denom += float64(m.totalLabels)
	for id := range scores {
		scores[id] = (float64(m.labels[id]) + a) / denom
	}
	return scores, nil
}
