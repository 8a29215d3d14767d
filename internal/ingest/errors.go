// SeqForge - Sequential Recommendation Dataset Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seqforge

package ingest

import (
	"errors"
	"fmt"
)

var (
	// ErrNoItemContext is returned when a rating line precedes every item line.
	ErrNoItemContext = errors.New("rating line has no preceding item id line")

	// ErrMalformedRecord is returned when a rating line cannot be decoded.
	ErrMalformedRecord = errors.New("malformed rating record")
)

// ParseError describes corrupt input at a specific location.
type ParseError struct {
	Source string
	Line   int
	Field  string
	Text   string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s:%d: %v (field %s, line %q)", e.Source, e.Line, e.Err, e.Field, e.Text)
	}
	return fmt.Sprintf("%s:%d: %v (line %q)", e.Source, e.Line, e.Err, e.Text)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
