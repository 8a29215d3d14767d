// SeqForge - Sequential Recommendation Dataset Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seqforge

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tomtom215/seqforge/internal/config"
	"github.com/tomtom215/seqforge/internal/logging"
	"github.com/tomtom215/seqforge/internal/models"
	"github.com/tomtom215/seqforge/internal/rank"
	"github.com/tomtom215/seqforge/internal/shard"
	"github.com/tomtom215/seqforge/internal/vocab"
)

// recommendFlagKeys maps recommend flags to configuration keys.
var recommendFlagKeys = map[string]string{
	"dataset-name": "dataset.name",
	"dataset-dir":  "dataset.output_dir",
	"chunksize":    "dataset.chunk_size",
}

func newRecommendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recommend <item-id>...",
		Short: "Rank items after a history using a Markov baseline",
		Long: `Trains a first-order Markov chain on the training shards of a generated
dataset and ranks the vocabulary for the given history. Item ids are external
ids, newest first. Items in the history are never recommended.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runRecommend,
	}

	defaults := config.Defaults()
	f := cmd.Flags()
	f.String("dataset-name", defaults.Dataset.Name, "dataset name")
	f.String("dataset-dir", defaults.Dataset.OutputDir, "directory holding the generated dataset")
	f.Int("chunksize", defaults.Dataset.ChunkSize, "context length the dataset was generated with")
	f.Int("k", rank.DefaultK, "number of recommendations")
	f.Int("max-seq-length", rank.DefaultMaxSeqLength, "length the history is padded or truncated to")
	return cmd
}

func runRecommend(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, recommendFlagKeys)
	if err != nil {
		return err
	}
	k, err := cmd.Flags().GetInt("k")
	if err != nil {
		return err
	}
	maxSeq, err := cmd.Flags().GetInt("max-seq-length")
	if err != nil {
		return err
	}
	if k <= 0 || maxSeq <= 0 {
		return errors.New("--k and --max-seq-length must be positive")
	}

	ctx := logging.ContextWithNewRunID(cmd.Context())
	ds := cfg.Dataset

	v, err := vocab.LoadFile(ds.VocabPath())
	if err != nil {
		return err
	}

	windows, files, err := readSplit(ds.OutputDir, shard.TrainBase(ds.Name, ds.ChunkSize))
	if err != nil {
		return err
	}

	model, err := rank.TrainMarkov(ctx, windows, v.Len(), rank.DefaultMarkovConfig())
	if err != nil {
		return err
	}
	logging.Ctx(ctx).Info().
		Int("shards", files).
		Int("windows", len(windows)).
		Int("transitions", model.Transitions()).
		Msg("Markov baseline trained")

	ranker := rank.NewRanker(model, v)
	ranker.K = k
	ranker.MaxSeqLength = maxSeq

	ids, err := ranker.ResolveExternal(args)
	if err != nil {
		return err
	}
	recs, err := ranker.Recommend(ctx, ids)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tID\tTITLE\tYEAR\tPROBABILITY")
	for i, r := range recs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s%%\n", i+1, r.ExternalID, r.Title, r.Year, rank.FormatProbability(r.Score))
	}
	return tw.Flush()
}

// readSplit decodes every shard of base in dir in index order.
func readSplit(dir, base string) ([]models.Window, int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, 0, fmt.Errorf("read dataset dir: %w", err)
	}

	var names []shard.Name
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		n, err := shard.ParseShardName(e.Name())
		if err != nil || n.Base != base {
			continue
		}
		names = append(names, n)
	}
	if len(names) == 0 {
		return nil, 0, fmt.Errorf("no %s shards in %s", base, dir)
	}
	sort.Slice(names, func(i, j int) bool { return names[i].Index < names[j].Index })

	var out []models.Window
	for _, n := range names {
		path := filepath.Join(dir, shard.ShardName(n.Base, n.Index, n.Count, n.Ext))
		ws, err := shard.ReadFile(path)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		out = append(out, ws...)
	}
	return out, len(names), nil
}
