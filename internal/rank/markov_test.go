// SeqForge - Sequential Recommendation Dataset Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seqforge

package rank

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/tomtom215/seqforge/internal/models"
)

// markovWindows yields transitions b->c (2), a->b (2), b->d (1) and labels
// c (2), d (1) over the vocabulary a=0, b=1, c=2, d=3.
func markovWindows() []models.Window {
	return []models.Window{
		{Context: []int{1, 0}, Label: 2},
		{Context: []int{1, 0}, Label: 2},
		{Context: []int{1}, Label: 3},
	}
}

func TestTrainMarkov_Score(t *testing.T) {
	m, err := TrainMarkov(context.Background(), markovWindows(), 4, DefaultMarkovConfig())
	if err != nil {
		t.Fatalf("TrainMarkov() error = %v", err)
	}
	if got := m.Transitions(); got != 3 {
		t.Errorf("Transitions() = %d, want 3", got)
	}

	tests := []struct {
		name string
		seq  []int
		want []float64
	}{
		{"known last item", []int{1, -1, -1}, []float64{0.1 / 3.4, 0.1 / 3.4, 2.1 / 3.4, 1.1 / 3.4}},
		{"leading padding skipped", []int{-1, 0, 2}, []float64{0.1 / 2.4, 2.1 / 2.4, 0.1 / 2.4, 0.1 / 2.4}},
		{"no outgoing falls back to labels", []int{3}, []float64{0.1 / 3.4, 0.1 / 3.4, 2.1 / 3.4, 1.1 / 3.4}},
		{"all padding", []int{-1, -1}, []float64{0.1 / 3.4, 0.1 / 3.4, 2.1 / 3.4, 1.1 / 3.4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.Score(context.Background(), tt.seq)
			if err != nil {
				t.Fatalf("Score() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
				t.Errorf("Score() mismatch (-want +got):\n%s", diff)
			}
			sum := 0.0
			for _, s := range got {
				sum += s
			}
			if diff := cmp.Diff(1.0, sum, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
				t.Errorf("scores do not sum to 1: %v", sum)
			}
		})
	}
}

func TestMarkov_WithRanker(t *testing.T) {
	m, err := TrainMarkov(context.Background(), markovWindows(), 4, DefaultMarkovConfig())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRanker(m, testVocab(t))

	tests := []struct {
		name string
		ids  []int
		want []string
	}{
		{"after b", []int{1}, []string{"c", "d", "a"}},
		{"after d uses popularity", []int{3}, []string{"c", "a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs, err := r.Recommend(context.Background(), tt.ids)
			if err != nil {
				t.Fatalf("Recommend() error = %v", err)
			}
			var got []string
			for _, rec := range recs {
				got = append(got, rec.ExternalID)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Recommend() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTrainMarkov_Errors(t *testing.T) {
	if _, err := TrainMarkov(context.Background(), nil, 0, MarkovConfig{}); !errors.Is(err, ErrEmptyVocabulary) {
		t.Errorf("size 0: error = %v, want ErrEmptyVocabulary", err)
	}

	bad := []models.Window{{Context: []int{9}, Label: 0}}
	if _, err := TrainMarkov(context.Background(), bad, 4, MarkovConfig{}); err == nil {
		t.Error("out-of-range context id accepted")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := TrainMarkov(ctx, markovWindows(), 4, MarkovConfig{}); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled: error = %v, want context.Canceled", err)
	}
}

func TestMarkov_ScoreRejectsUnknownIDs(t *testing.T) {
	m, err := TrainMarkov(context.Background(), markovWindows(), 4, DefaultMarkovConfig())
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		seq  []int
	}{
		{"beyond vocabulary", []int{4, 0}},
		{"after padding", []int{-1, 9}},
		{"negative non-pad", []int{-7}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got, err := m.Score(context.Background(), tt.seq); err == nil {
				t.Errorf("Score(%v) = %v, want error", tt.seq, got)
			}
		})
	}
}
