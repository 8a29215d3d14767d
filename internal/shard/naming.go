// SeqForge - Sequential Recommendation Dataset Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seqforge

package shard

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrBadShardName is returned by ParseShardName for names not produced by ShardName.
var ErrBadShardName = errors.New("not a shard file name")

// Name holds the parts of a shard file name.
type Name struct {
	Base  string
	Index int
	Count int
	Ext   string
}

// ShardName builds "{base}_{index}_{count}{ext}".
func ShardName(base string, index, count int, ext string) string {
	return fmt.Sprintf("%s_%d_%d%s", base, index, count, ext)
}

// ParseShardName splits a file name built by ShardName. The extension starts
// at the first dot after the count.
func ParseShardName(name string) (Name, error) {
	u := strings.LastIndexByte(name, '_')
	if u < 0 {
		return Name{}, fmt.Errorf("%w: %q", ErrBadShardName, name)
	}
	rest := name[u+1:]
	d := strings.IndexByte(rest, '.')
	if d < 0 {
		d = len(rest)
	}

	count, err := strconv.Atoi(rest[:d])
	if err != nil || count < 0 {
		return Name{}, fmt.Errorf("%w: bad count in %q", ErrBadShardName, name)
	}

	head := name[:u]
	v := strings.LastIndexByte(head, '_')
	if v <= 0 {
		return Name{}, fmt.Errorf("%w: %q", ErrBadShardName, name)
	}
	index, err := strconv.Atoi(head[v+1:])
	if err != nil || index < 0 {
		return Name{}, fmt.Errorf("%w: bad index in %q", ErrBadShardName, name)
	}

	return Name{Base: head[:v], Index: index, Count: count, Ext: rest[d:]}, nil
}

// TrainBase returns the base name of the training split.
func TrainBase(dataset string, chunkSize int) string {
	return fmt.Sprintf("%s_%d_train", dataset, chunkSize)
}

// TestBase returns the base name of the test split.
func TestBase(dataset string, chunkSize int) string {
	return fmt.Sprintf("%s_%d_test", dataset, chunkSize)
}

// CheckBase returns the base name of the sanity-check shard set.
func CheckBase(dataset string) string {
	return dataset + "_check"
}
