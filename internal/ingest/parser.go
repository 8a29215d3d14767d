// SeqForge - Sequential Recommendation Dataset Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seqforge

package ingest

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/seqforge/internal/models"
)

const (
	// itemSuffix terminates an item id line.
	itemSuffix = ":"

	// ctxCheckInterval is how many lines are parsed between cancellation checks.
	ctxCheckInterval = 1 << 16

	// maxLineBytes bounds a single input line.
	maxLineBytes = 1 << 20
)

// Result is the accumulated output of ingestion.
type Result struct {
	// Histories holds each user's ratings in input order.
	Histories models.UserHistory

	// Popularity counts ratings per item.
	Popularity *models.ItemPopularity

	// Ratings is the total number of rating lines read.
	Ratings int

	// Sources is the number of sources merged into the result.
	Sources int
}

// NewResult returns an empty result.
func NewResult() *Result {
	return &Result{
		Histories:  make(models.UserHistory),
		Popularity: models.NewItemPopularity(),
	}
}

// Merge appends other into r. Per-user ratings from other follow r's.
func (r *Result) Merge(other *Result) {
	for userID, ratings := range other.Histories {
		r.Histories[userID] = append(r.Histories[userID], ratings...)
	}
	r.Popularity.Merge(other.Popularity)
	r.Ratings += other.Ratings
	r.Sources += other.Sources
}

// RawCounts returns each user's rating count before any filtering.
func (r *Result) RawCounts() map[int]int {
	counts := make(map[int]int, len(r.Histories))
	for userID, ratings := range r.Histories {
		counts[userID] = len(ratings)
	}
	return counts
}

// ParseSource parses one raw log source. name is used only in error messages.
func ParseSource(ctx context.Context, name string, r io.Reader) (*Result, error) {
	res := NewResult()
	res.Sources = 1

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	currentItem := ""
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		if lineNo%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasSuffix(line, itemSuffix) {
			item := strings.TrimSuffix(line, itemSuffix)
			if item == "" {
				return nil, &ParseError{Source: name, Line: lineNo, Field: "item_id", Text: line, Err: ErrMalformedRecord}
			}
			currentItem = item
			continue
		}

		if currentItem == "" {
			return nil, &ParseError{Source: name, Line: lineNo, Text: line, Err: ErrNoItemContext}
		}

		userID, rating, err := parseRatingLine(line, currentItem)
		if err != nil {
			err.Source = name
			err.Line = lineNo
			return nil, err
		}

		res.Histories[userID] = append(res.Histories[userID], rating)
		res.Popularity.Add(currentItem, 1)
		res.Ratings++
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	return res, nil
}

// parseRatingLine decodes "user_id,score,date". The returned *ParseError has
// no location; the caller fills it in.
func parseRatingLine(line, item string) (int, models.Rating, *ParseError) {
	fields := strings.Split(line, ",")
	if len(fields) != 3 {
		return 0, models.Rating{}, &ParseError{Field: "record", Text: line,
			Err: fmt.Errorf("%w: expected 3 fields, got %d", ErrMalformedRecord, len(fields))}
	}

	userID, err := strconv.Atoi(strings.TrimSpace(fields[0]))
	if err != nil {
		return 0, models.Rating{}, &ParseError{Field: "user_id", Text: line, Err: fmt.Errorf("%w: %v", ErrMalformedRecord, err)}
	}

	score, err := strconv.Atoi(strings.TrimSpace(fields[1]))
	if err != nil {
		return 0, models.Rating{}, &ParseError{Field: "score", Text: line, Err: fmt.Errorf("%w: %v", ErrMalformedRecord, err)}
	}

	date, err := time.Parse(models.DateLayout, strings.TrimSpace(fields[2]))
	if err != nil {
		return 0, models.Rating{}, &ParseError{Field: "date", Text: line, Err: fmt.Errorf("%w: %v", ErrMalformedRecord, err)}
	}

	return userID, models.Rating{ItemID: item, Score: score, Date: date}, nil
}
