// SeqForge - Sequential Recommendation Dataset Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seqforge

package metadata

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// ErrMalformedTitle is returned for a catalog line without id, year and title.
var ErrMalformedTitle = errors.New("malformed title record")

// Info is the catalog metadata of one item.
type Info struct {
	Title string `json:"title"`
	Year  string `json:"year"`
}

// Source looks up metadata by external item id.
type Source interface {
	Lookup(externalID string) (Info, bool)
}

// Table is an in-memory Source loaded from a title catalog.
type Table struct {
	entries map[string]Info
}

// NewTable returns a table holding entries. The map is used as is.
func NewTable(entries map[string]Info) *Table {
	if entries == nil {
		entries = make(map[string]Info)
	}
	return &Table{entries: entries}
}

// LoadTable reads an ISO-8859-1 encoded "id,year,title" catalog file.
func LoadTable(path string) (*Table, error) {
	f, err := os.Open(path) //nolint:gosec // catalog path comes from operator configuration
	if err != nil {
		return nil, fmt.Errorf("open titles file: %w", err)
	}
	defer func() { _ = f.Close() }() //nolint:errcheck // read-only file

	return ParseTable(charmap.ISO8859_1.NewDecoder().Reader(f))
}

// ParseTable reads "id,year,title" lines from UTF-8 text. Only the first two
// commas separate fields, so titles may contain commas. A later line for the
// same id replaces the earlier one.
func ParseTable(r io.Reader) (*Table, error) {
	entries := make(map[string]Info)

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		fields := strings.SplitN(line, ",", 3)
		if len(fields) != 3 || fields[0] == "" {
			return nil, fmt.Errorf("line %d: %w: %q", lineNo, ErrMalformedTitle, line)
		}
		entries[fields[0]] = Info{Year: fields[1], Title: fields[2]}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read titles: %w", err)
	}

	return &Table{entries: entries}, nil
}

// Lookup implements Source.
func (t *Table) Lookup(externalID string) (Info, bool) {
	info, ok := t.entries[externalID]
	return info, ok
}

// Len returns the number of catalog entries.
func (t *Table) Len() int {
	return len(t.entries)
}
