// SeqForge - Sequential Recommendation Dataset Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seqforge

package metadata

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseTable(t *testing.T) {
	input := "1,2003,Dinosaur Planet\n\n2,2004,Isle of Man TT 2004 Review\n3,NULL,Character, The Sequel\n"

	table, err := ParseTable(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseTable() error = %v", err)
	}

	tests := []struct {
		id   string
		want Info
	}{
		{"1", Info{Title: "Dinosaur Planet", Year: "2003"}},
		{"2", Info{Title: "Isle of Man TT 2004 Review", Year: "2004"}},
		{"3", Info{Title: "Character, The Sequel", Year: "NULL"}},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got, ok := table.Lookup(tt.id)
			if !ok {
				t.Fatalf("Lookup(%s) not found", tt.id)
			}
			if got != tt.want {
				t.Errorf("Lookup(%s) = %+v, want %+v", tt.id, got, tt.want)
			}
		})
	}

	if _, ok := table.Lookup("4"); ok {
		t.Error("Lookup(4) found, want missing")
	}
	if table.Len() != 3 {
		t.Errorf("Len() = %d, want 3", table.Len())
	}
}

func TestParseTable_Malformed(t *testing.T) {
	_, err := ParseTable(strings.NewReader("1,2003,Ok\n2,2004\n"))
	if !errors.Is(err, ErrMalformedTitle) {
		t.Fatalf("error = %v, want ErrMalformedTitle", err)
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Errorf("error = %q, want line number", err.Error())
	}
}

func TestLoadTable_Latin1(t *testing.T) {
	path := filepath.Join(t.TempDir(), "movie_titles.csv")
	// 0xE9 is 'é' in ISO-8859-1.
	if err := os.WriteFile(path, []byte("7,1999,Am\xe9lie\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	table, err := LoadTable(path)
	if err != nil {
		t.Fatalf("LoadTable() error = %v", err)
	}
	got, _ := table.Lookup("7")
	if got.Title != "Amélie" {
		t.Errorf("Title = %q, want Amélie", got.Title)
	}
}

func TestLoadTable_Missing(t *testing.T) {
	if _, err := LoadTable(filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Error("LoadTable() error = nil, want error")
	}
}

func TestResizeImage(t *testing.T) {
	tests := []struct {
		name string
		url  string
		size int
		want string
	}{
		{"poster", "https://m.media-amazon.com/images/M/abc.jpg", 300, "https://m.media-amazon.com/images/M/abc._V1_SY300.jpg"},
		{"thumbnail", "http://x/y.jpg", 48, "http://x/y._V1_SY48.jpg"},
		{"not available", "N/A", 300, "N/A"},
		{"empty", "", 300, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResizeImage(tt.url, tt.size); got != tt.want {
				t.Errorf("ResizeImage() = %q, want %q", got, tt.want)
			}
		})
	}
}
