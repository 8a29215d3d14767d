// SeqForge - Sequential Recommendation Dataset Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seqforge

package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"github.com/tomtom215/seqforge/internal/config"
	"github.com/tomtom215/seqforge/internal/metadata"
	"github.com/tomtom215/seqforge/internal/models"
	"github.com/tomtom215/seqforge/internal/shard"
	"github.com/tomtom215/seqforge/internal/vocab"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// writeInput creates two raw log files: items 1 and 2 in the first, 3 and 4
// in the second. Users 1..30 rate every item, item i on 2005-01-0i. User 99
// rates item 2 only and falls below the minimum-ratings threshold.
func writeInput(t *testing.T, dir string) {
	t.Helper()
	var a, b strings.Builder
	for item := 1; item <= 4; item++ {
		w := &a
		if item > 2 {
			w = &b
		}
		fmt.Fprintf(w, "%d:\n", item)
		for user := 1; user <= 30; user++ {
			fmt.Fprintf(w, "%d,%d,2005-01-0%d\n", user, 1+user%5, item)
		}
		if item == 2 {
			fmt.Fprintf(w, "99,3,2005-03-01\n")
		}
	}
	files := map[string]string{
		"combined_data_1.txt": a.String(),
		"combined_data_2.txt": b.String(),
		"movie_titles.csv":    "1,2003,Dinosaur Planet\n2,2004,Isle of Man TT 2004 Review\n3,1997,Character\n4,1994,\"Paula Abdul's Get Up & Dance\"\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}
}

func testConfig(t *testing.T, in, out string) *config.Config {
	t.Helper()
	cfg := config.Defaults()
	cfg.Dataset.InputDir = in
	cfg.Dataset.OutputDir = out
	cfg.Dataset.Name = "tiny"
	cfg.Dataset.TopN = 3
	cfg.Dataset.ChunkSize = 2
	cfg.Dataset.ShardSize = 10
	cfg.Dataset.SplitPercentage = 0.2
	cfg.Dataset.GenerateCheck = true
	cfg.Dataset.CheckCutoff = 4
	cfg.Dataset.Workers = 3
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	return cfg
}

func TestRunner_Run(t *testing.T) {
	tests := []struct {
		name        string
		format      string
		compression string
		ext         string
	}{
		{"tfrecord", shard.FormatTFRecord, shard.CompressionNone, ".tfrec"},
		{"tfrecord gzip", shard.FormatTFRecord, shard.CompressionGzip, ".tfrec"},
		{"jsonl", shard.FormatJSONL, shard.CompressionNone, ".jsonl"},
		{"jsonl gzip", shard.FormatJSONL, shard.CompressionGzip, ".jsonl.gz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, out := t.TempDir(), t.TempDir()
			writeInput(t, in)
			cfg := testConfig(t, in, out)
			cfg.Dataset.Format = tt.format
			cfg.Dataset.Compression = tt.compression

			report, err := NewRunner(cfg).Run(context.Background())
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}

			wantCounts := Counts{
				Sources:       2,
				Ratings:       121,
				Users:         31,
				ItemsSeen:     4,
				ItemsRetained: 3,
				UsersSkipped:  1,
				Windows:       30,
				TrainWindows:  23,
				TestWindows:   6,
				CheckWindows:  4,
			}
			if diff := cmp.Diff(wantCounts, report.Counts); diff != "" {
				t.Errorf("Counts mismatch (-want +got):\n%s", diff)
			}

			wantFiles := []string{
				"tiny_2_train_0_10" + tt.ext,
				"tiny_2_train_1_10" + tt.ext,
				"tiny_2_train_2_3" + tt.ext,
				"tiny_2_test_0_6" + tt.ext,
				"tiny_check_0_4" + tt.ext,
			}
			var gotFiles []string
			for _, s := range report.Shards {
				gotFiles = append(gotFiles, s.File)
			}
			if diff := cmp.Diff(wantFiles, gotFiles); diff != "" {
				t.Errorf("shard files mismatch (-want +got):\n%s", diff)
			}

			// Items 1,2,3 map to 0,1,2; item 3 is the newest of every kept history.
			want := models.Window{Context: []int{1, 0}, Label: 2}
			for _, name := range wantFiles {
				windows, err := shard.ReadFile(filepath.Join(out, name))
				if err != nil {
					t.Fatalf("ReadFile(%s) error = %v", name, err)
				}
				parsed, err := shard.ParseShardName(name)
				if err != nil {
					t.Fatalf("ParseShardName(%s) error = %v", name, err)
				}
				if len(windows) != parsed.Count {
					t.Errorf("%s holds %d windows, name says %d", name, len(windows), parsed.Count)
				}
				for _, w := range windows {
					if diff := cmp.Diff(want, w); diff != "" {
						t.Fatalf("%s window mismatch (-want +got):\n%s", name, diff)
					}
				}
			}

			v, err := vocab.LoadFile(filepath.Join(out, "tiny_vocab.json"))
			if err != nil {
				t.Fatalf("LoadFile() error = %v", err)
			}
			if v.Len() != 3 {
				t.Errorf("vocab Len() = %d, want 3", v.Len())
			}
			if id, ok := v.DenseID("3"); !ok || id != 2 {
				t.Errorf("DenseID(3) = %d, %v", id, ok)
			}

			saved, err := ReadReport(filepath.Join(out, "tiny_report.json"))
			if err != nil {
				t.Fatalf("ReadReport() error = %v", err)
			}
			if diff := cmp.Diff(report.Counts, saved.Counts); diff != "" {
				t.Errorf("saved report mismatch (-want +got):\n%s", diff)
			}
			// user 99 keeps one rating after filtering
			if saved.Histories.N != 31 || saved.Histories.P50 != 3 || saved.PerUser.P99 != 1 {
				t.Errorf("distributions = %+v / %+v", saved.Histories, saved.PerUser)
			}
		})
	}
}

func TestRunner_Reproducible(t *testing.T) {
	in := t.TempDir()
	writeInput(t, in)

	var vocabs, reports [2][]byte
	for i := range 2 {
		out := t.TempDir()
		cfg := testConfig(t, in, out)
		cfg.Dataset.Format = shard.FormatJSONL

		if _, err := NewRunner(cfg).Run(context.Background()); err != nil {
			t.Fatalf("Run() #%d error = %v", i, err)
		}
		var err error
		if vocabs[i], err = os.ReadFile(filepath.Join(out, "tiny_vocab.json")); err != nil {
			t.Fatal(err)
		}
		if reports[i], err = os.ReadFile(filepath.Join(out, "tiny_2_test_0_6.jsonl")); err != nil {
			t.Fatal(err)
		}
	}

	if !bytes.Equal(vocabs[0], vocabs[1]) {
		t.Error("vocabulary differs between identical runs")
	}
	if !bytes.Equal(reports[0], reports[1]) {
		t.Error("test shard differs between identical runs")
	}
}

func TestRunner_Errors(t *testing.T) {
	t.Run("no input files", func(t *testing.T) {
		cfg := testConfig(t, t.TempDir(), t.TempDir())
		if _, err := NewRunner(cfg).Run(context.Background()); err == nil {
			t.Fatal("Run() expected error for empty input dir")
		}
	})

	t.Run("missing metadata", func(t *testing.T) {
		in := t.TempDir()
		writeInput(t, in)
		cfg := testConfig(t, in, t.TempDir())

		catalog := metadata.NewTable(map[string]metadata.Info{
			"1": {Title: "Dinosaur Planet", Year: "2003"},
			"2": {Title: "Isle of Man TT 2004 Review", Year: "2004"},
		})
		_, err := NewRunner(cfg, WithCatalog(catalog)).Run(context.Background())
		if !errors.Is(err, vocab.ErrMissingMetadata) {
			t.Fatalf("Run() error = %v, want ErrMissingMetadata", err)
		}
		var lookupErr *vocab.LookupError
		if !errors.As(err, &lookupErr) || lookupErr.ExternalID != "3" {
			t.Errorf("Run() error = %v, want LookupError for item 3", err)
		}
	})

	t.Run("corrupt input", func(t *testing.T) {
		in := t.TempDir()
		writeInput(t, in)
		if err := os.WriteFile(filepath.Join(in, "combined_data_0.txt"), []byte("10,3,2005-01-01\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		cfg := testConfig(t, in, t.TempDir())
		if _, err := NewRunner(cfg).Run(context.Background()); err == nil {
			t.Fatal("Run() expected error for rating line before item header")
		}
	})

	t.Run("cancelled", func(t *testing.T) {
		in := t.TempDir()
		writeInput(t, in)
		cfg := testConfig(t, in, t.TempDir())
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := NewRunner(cfg).Run(ctx); !errors.Is(err, context.Canceled) {
			t.Fatalf("Run() error = %v, want context.Canceled", err)
		}
	})
}

func TestRunner_MetricsTextfile(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	writeInput(t, in)
	cfg := testConfig(t, in, out)
	cfg.Metrics.Textfile = filepath.Join(out, "metrics", "seqforge.prom")

	if _, err := NewRunner(cfg).Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	data, err := os.ReadFile(cfg.Metrics.Textfile)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	for _, name := range []string{"seqforge_windows_generated_total", "seqforge_split_windows", "seqforge_items_retained"} {
		if !bytes.Contains(data, []byte(name)) {
			t.Errorf("textfile missing %s", name)
		}
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name   string
		values []int
		want   Distribution
	}{
		{"empty", nil, Distribution{}},
		{"single", []int{4}, Distribution{N: 1, Mean: 4, P50: 4, P90: 4, P99: 4}},
		{"constant", []int{2, 2, 2, 2}, Distribution{N: 4, Mean: 2, P50: 2, P90: 2, P99: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Describe(tt.values)); diff != "" {
				t.Errorf("Describe() mismatch (-want +got):\n%s", diff)
			}
		})
	}

	d := Describe([]int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10})
	if d.Mean != 5.5 || d.P50 != 5 || d.P90 != 9 || d.P99 != 10 {
		t.Errorf("Describe(1..10) = %+v", d)
	}
	if d.StdDev <= 0 {
		t.Errorf("StdDev = %v, want > 0", d.StdDev)
	}
}
