// SeqForge - Sequential Recommendation Dataset Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seqforge

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tomtom215/seqforge/internal/shard"
	"github.com/tomtom215/seqforge/internal/vocab"
)

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <dir>",
		Short: "Verify shard files against their names and the vocabulary",
		Long: `Decodes every shard in <dir>, compares the record count with the count
in the file name, reports missing shard indices per set and, with --vocab-path,
checks that every dense id is inside the vocabulary.`,
		Args: cobra.ExactArgs(1),
		RunE: runInspect,
	}
	cmd.Flags().String("vocab-path", "", "vocabulary file used to range-check dense ids")
	cmd.Flags().Int("workers", 4, "files decoded in parallel")
	return cmd
}

func runInspect(cmd *cobra.Command, args []string) error {
	vocabPath, err := cmd.Flags().GetString("vocab-path")
	if err != nil {
		return err
	}
	workers, err := cmd.Flags().GetInt("workers")
	if err != nil {
		return err
	}

	vocabSize := 0
	if vocabPath != "" {
		v, err := vocab.LoadFile(vocabPath)
		if err != nil {
			return err
		}
		vocabSize = v.Len()
	}

	in, err := shard.Inspect(cmd.Context(), args[0], vocabSize, workers)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tRECORDS\tBYTES\tSTATUS")
	for _, f := range in.Files {
		status := "ok"
		if f.Err != nil {
			status = f.Err.Error()
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", f.Name, f.Decoded, f.Bytes, status)
	}
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "SET\tFILES\tWINDOWS\tMISSING")
	for _, s := range in.Sets {
		missing := "-"
		if len(s.Missing) > 0 {
			missing = fmt.Sprint(s.Missing)
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", s.Base, s.Files, s.Windows, missing)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if n := in.Problems(); n > 0 {
		return fmt.Errorf("inspect %s: %d problem(s) found", args[0], n)
	}
	if len(in.Files) == 0 {
		return fmt.Errorf("inspect %s: no shard files found", args[0])
	}
	return nil
}
