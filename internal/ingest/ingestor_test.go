// SeqForge - Sequential Recommendation Dataset Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seqforge

package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestIngestor_IngestFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "combined_data_1.txt", "1:\n10,3,2005-01-01\n20,4,2005-01-02\n2:\n10,5,2005-01-03\n")
	writeFile(t, dir, "combined_data_2.txt", "3:\n10,1,2005-02-01\n1:\n30,2,2005-02-02\n")
	writeFile(t, dir, "movie_titles.csv", "1,2003,Dinosaur Planet\n")

	paths, err := FindFiles(dir, "combined_data_*.txt")
	if err != nil {
		t.Fatalf("FindFiles() error = %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("FindFiles() = %v, want 2 files", paths)
	}

	res, err := NewIngestor(2).IngestFiles(context.Background(), paths)
	if err != nil {
		t.Fatalf("IngestFiles() error = %v", err)
	}

	if diff := cmp.Diff(map[string]int{"1": 3, "2": 1, "3": 1}, res.Popularity.Counts); diff != "" {
		t.Errorf("Counts mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"1", "2", "3"}, res.Popularity.Order); diff != "" {
		t.Errorf("Order mismatch (-want +got):\n%s", diff)
	}

	var items []string
	for _, r := range res.Histories[10] {
		items = append(items, r.ItemID)
	}
	if diff := cmp.Diff([]string{"1", "2", "3"}, items); diff != "" {
		t.Errorf("user 10 items mismatch (-want +got):\n%s", diff)
	}
	if res.Ratings != 5 || res.Sources != 2 {
		t.Errorf("Ratings=%d Sources=%d, want 5 and 2", res.Ratings, res.Sources)
	}
	if got := res.RawCounts()[10]; got != 3 {
		t.Errorf("RawCounts()[10] = %d, want 3", got)
	}
}

func TestIngestor_DeterministicAcrossWorkers(t *testing.T) {
	sources := func() []Source {
		var out []Source
		for i := 0; i < 8; i++ {
			var b strings.Builder
			fmt.Fprintf(&b, "%d:\n", 100-i)
			for u := 0; u < 20; u++ {
				fmt.Fprintf(&b, "%d,%d,2005-01-%02d\n", u, u%5+1, u%28+1)
			}
			out = append(out, Source{Name: fmt.Sprintf("part%d", i), Reader: strings.NewReader(b.String())})
		}
		return out
	}

	serial, err := NewIngestor(1).IngestReaders(context.Background(), sources())
	if err != nil {
		t.Fatalf("serial ingest error = %v", err)
	}
	parallel, err := NewIngestor(8).IngestReaders(context.Background(), sources())
	if err != nil {
		t.Fatalf("parallel ingest error = %v", err)
	}

	if diff := cmp.Diff(serial.Popularity, parallel.Popularity); diff != "" {
		t.Errorf("popularity differs (-serial +parallel):\n%s", diff)
	}
	if diff := cmp.Diff(serial.Histories, parallel.Histories); diff != "" {
		t.Errorf("histories differ (-serial +parallel):\n%s", diff)
	}
}

func TestFindFiles_NoMatch(t *testing.T) {
	if _, err := FindFiles(t.TempDir(), "combined_data_*.txt"); err == nil {
		t.Error("FindFiles() error = nil, want error for empty directory")
	}
}

func TestIngestFiles_MissingFile(t *testing.T) {
	_, err := NewIngestor(1).IngestFiles(context.Background(), []string{filepath.Join(t.TempDir(), "nope.txt")})
	if err == nil {
		t.Error("IngestFiles() error = nil, want open error")
	}
}
