// SeqForge - Sequential Recommendation Dataset Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seqforge

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tomtom215/seqforge/internal/config"
	"github.com/tomtom215/seqforge/internal/logging"
)

// globalFlagKeys maps persistent flags to configuration keys.
var globalFlagKeys = map[string]string{
	"log-level":        "logging.level",
	"log-format":       "logging.format",
	"log-caller":       "logging.caller",
	"metrics-textfile": "metrics.textfile",
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		logging.Fatal().Err(err).Msg("Command failed")
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "seqforge",
		Short: "Build sequential recommendation datasets from rating logs",
		Long: `seqforge turns per-item rating logs into fixed-length (context, label)
training windows, split into train and test shards.

Configuration is layered: defaults < YAML file < SEQFORGE_* environment
variables < command-line flags.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	defaults := config.Defaults()
	pf := root.PersistentFlags()
	pf.String("config", "", "YAML configuration file (default: $CONFIG_PATH or ./seqforge.yaml)")
	pf.String("log-level", defaults.Logging.Level, "log level (trace, debug, info, warn, error)")
	pf.String("log-format", defaults.Logging.Format, "log format (json, console)")
	pf.Bool("log-caller", defaults.Logging.Caller, "include caller file and line in logs")
	pf.String("metrics-textfile", "", "write Prometheus metrics to this file when the command finishes")

	root.AddCommand(newGenerateCmd(), newFetchCmd(), newInspectCmd(), newRecommendCmd())
	return root
}

// loadConfig loads configuration for cmd, applying only the flags in keys
// (plus the global ones) that the user set, and initializes logging.
func loadConfig(cmd *cobra.Command, keys map[string]string) (*config.Config, error) {
	configFile, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	all := make(map[string]string, len(keys)+len(globalFlagKeys))
	for name, key := range globalFlagKeys {
		all[name] = key
	}
	for name, key := range keys {
		all[name] = key
	}

	cfg, err := config.Load(config.LoadOptions{
		ConfigFile: configFile,
		Flags:      cmd.Flags(),
		FlagKeys:   all,
	})
	if err != nil {
		return nil, err
	}

	logging.Init(cfg.Logging.ToLogging())
	return cfg, nil
}
