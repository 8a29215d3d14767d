// SeqForge - Sequential Recommendation Dataset Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seqforge

package shard

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"github.com/tomtom215/seqforge/internal/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func makeWindows(n int) []models.Window {
	out := make([]models.Window, n)
	for i := range out {
		out[i] = models.Window{Label: i % 500, Context: []int{(i + 1) % 500, (i + 2) % 500}}
	}
	return out
}

func TestShardName(t *testing.T) {
	if got := ShardName("netflix_5_train", 0, 400, ".tfrec"); got != "netflix_5_train_0_400.tfrec" {
		t.Errorf("ShardName() = %q", got)
	}
	if got := TrainBase("netflix", 5); got != "netflix_5_train" {
		t.Errorf("TrainBase() = %q", got)
	}
	if got := TestBase("netflix", 5); got != "netflix_5_test" {
		t.Errorf("TestBase() = %q", got)
	}
	if got := CheckBase("netflix"); got != "netflix_check" {
		t.Errorf("CheckBase() = %q", got)
	}
}

func TestParseShardName(t *testing.T) {
	tests := []struct {
		name    string
		want    Name
		wantErr bool
	}{
		{name: "netflix_5_train_2_200.tfrec", want: Name{Base: "netflix_5_train", Index: 2, Count: 200, Ext: ".tfrec"}},
		{name: "netflix_check_0_1000.jsonl.gz", want: Name{Base: "netflix_check", Index: 0, Count: 1000, Ext: ".jsonl.gz"}},
		{name: "a_1_2", want: Name{Base: "a", Index: 1, Count: 2}},
		{name: "netflix_vocab.json", wantErr: true},
		{name: "nounderscore.tfrec", wantErr: true},
		{name: "_1_2.tfrec", wantErr: true},
		{name: "x_-1_2.tfrec", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseShardName(tt.name)
			if tt.wantErr {
				if !errors.Is(err, ErrBadShardName) {
					t.Errorf("error = %v, want ErrBadShardName", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseShardName() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseShardName() = %+v, want %+v", got, tt.want)
			}
			if rebuilt := ShardName(got.Base, got.Index, got.Count, got.Ext); rebuilt != tt.name {
				t.Errorf("rebuilt name = %q", rebuilt)
			}
		})
	}
}

func TestBlocks(t *testing.T) {
	if diff := cmp.Diff([][2]int{{0, 400}, {400, 800}, {800, 1000}}, Blocks(1000, 400)); diff != "" {
		t.Errorf("Blocks mismatch (-want +got):\n%s", diff)
	}
	if got := Blocks(0, 10); len(got) != 0 {
		t.Errorf("Blocks(0) = %v, want none", got)
	}
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

func TestEmitter_ShardSizes(t *testing.T) {
	dir := t.TempDir()
	enc, err := NewEncoder(FormatTFRecord)
	if err != nil {
		t.Fatal(err)
	}
	em, err := NewEmitter(Config{OutputDir: dir, ShardSize: 400, Workers: 3}, enc)
	if err != nil {
		t.Fatal(err)
	}

	windows := makeWindows(1000)
	files, err := em.Emit(context.Background(), windows, "netflix_5_train")
	if err != nil {
		t.Fatalf("Emit() error = %v", err)
	}

	want := []string{"netflix_5_train_0_400.tfrec", "netflix_5_train_1_400.tfrec", "netflix_5_train_2_200.tfrec"}
	if diff := cmp.Diff(want, listDir(t, dir)); diff != "" {
		t.Errorf("files mismatch (-want +got):\n%s", diff)
	}

	var decoded []models.Window
	for i, f := range files {
		if f.Index != i || filepath.Base(f.Path) != want[i] {
			t.Errorf("files[%d] = %+v", i, f)
		}
		info, err := os.Stat(f.Path)
		if err != nil {
			t.Fatal(err)
		}
		if info.Size() != f.Bytes {
			t.Errorf("%s: reported %d bytes, file has %d", want[i], f.Bytes, info.Size())
		}
		got, err := ReadFile(f.Path)
		if err != nil {
			t.Fatalf("ReadFile(%s) error = %v", want[i], err)
		}
		if len(got) != f.Count {
			t.Errorf("%s: decoded %d windows, name says %d", want[i], len(got), f.Count)
		}
		decoded = append(decoded, got...)
	}
	if diff := cmp.Diff(windows, decoded); diff != "" {
		t.Errorf("decoded windows mismatch (-want +got):\n%s", diff)
	}
}

func TestEmitter_Formats(t *testing.T) {
	tests := []struct {
		format      string
		compression string
		wantName    string
	}{
		{FormatTFRecord, CompressionNone, "ds_check_0_7.tfrec"},
		{FormatTFRecord, CompressionGzip, "ds_check_0_7.tfrec"},
		{FormatJSONL, CompressionNone, "ds_check_0_7.jsonl"},
		{FormatJSONL, CompressionGzip, "ds_check_0_7.jsonl.gz"},
	}
	for _, tt := range tests {
		t.Run(tt.format+"/"+tt.compression, func(t *testing.T) {
			dir := t.TempDir()
			enc, err := NewEncoder(tt.format)
			if err != nil {
				t.Fatal(err)
			}
			em, err := NewEmitter(Config{OutputDir: dir, ShardSize: 10, Compression: tt.compression}, enc)
			if err != nil {
				t.Fatal(err)
			}

			windows := makeWindows(7)
			if _, err := em.Emit(context.Background(), windows, "ds_check"); err != nil {
				t.Fatalf("Emit() error = %v", err)
			}
			if diff := cmp.Diff([]string{tt.wantName}, listDir(t, dir)); diff != "" {
				t.Fatalf("files mismatch (-want +got):\n%s", diff)
			}

			path := filepath.Join(dir, tt.wantName)
			raw, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			isGzip := bytes.HasPrefix(raw, []byte{0x1f, 0x8b})
			if isGzip != (tt.compression == CompressionGzip) {
				t.Errorf("gzip header present = %v, compression %s", isGzip, tt.compression)
			}

			got, err := ReadFile(path)
			if err != nil {
				t.Fatalf("ReadFile() error = %v", err)
			}
			if diff := cmp.Diff(windows, got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEmitter_Empty(t *testing.T) {
	dir := t.TempDir()
	em, err := NewEmitter(Config{OutputDir: dir, ShardSize: 5}, JSONLEncoder{})
	if err != nil {
		t.Fatal(err)
	}
	files, err := em.Emit(context.Background(), nil, "empty")
	if err != nil {
		t.Fatalf("Emit() error = %v", err)
	}
	if len(files) != 0 || len(listDir(t, dir)) != 0 {
		t.Errorf("Emit(nil) wrote %d files", len(files))
	}
}

func TestNewEmitter_Invalid(t *testing.T) {
	if _, err := NewEmitter(Config{ShardSize: 0}, JSONLEncoder{}); !errors.Is(err, ErrInvalidShardSize) {
		t.Errorf("error = %v, want ErrInvalidShardSize", err)
	}
	if _, err := NewEmitter(Config{ShardSize: 1, Compression: "zstd"}, JSONLEncoder{}); err == nil {
		t.Error("unknown compression accepted")
	}
	if _, err := NewEncoder("parquet"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("error = %v, want ErrUnknownFormat", err)
	}
}

func TestJSONLEncoder_Format(t *testing.T) {
	var buf bytes.Buffer
	if err := (JSONLEncoder{}).Encode(&buf, []models.Window{{Context: []int{3, 1}, Label: 7}}); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "{\"context\":[3,1],\"label\":7}\n" {
		t.Errorf("Encode() = %q", got)
	}
}
