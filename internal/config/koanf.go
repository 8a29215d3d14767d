// SeqForge - Sequential Recommendation Dataset Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seqforge

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"seqforge.yaml",
	"seqforge.yml",
	"/etc/seqforge/config.yaml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// EnvPrefix is the prefix of every environment variable read by Load.
const EnvPrefix = "SEQFORGE_"

// defaultConfig returns a Config struct with all default values.
// These defaults are applied first, then overridden by file, env vars and flags.
func defaultConfig() *Config {
	return &Config{
		Dataset: DatasetConfig{
			InputDir:        "data/raw/netflix-prize-data",
			InputGlob:       "combined_data_*.txt",
			TitlesFile:      "movie_titles.csv",
			Name:            "netflix",
			OutputDir:       "data/processed/netflix",
			TopN:            500,
			ChunkSize:       5,
			MinRatings:      0, // 0 = chunk_size
			SplitPercentage: 0.2,
			ShardSize:       650000,
			GenerateCheck:   false,
			CheckCutoff:     1000,
			Seed:            42,
			Format:          "tfrecord",
			Compression:     "none",
			Workers:         4,
		},
		Fetch: FetchConfig{
			APIURL:      "https://www.omdbapi.com/",
			Rate:        5,
			MaxAttempts: 5,
			Timeout:     10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Defaults returns a copy of the default configuration.
func Defaults() *Config {
	cfg := defaultConfig()
	cfg.deriveFetchPaths()
	return cfg
}

// LoadOptions selects the optional layers of Load.
type LoadOptions struct {
	// ConfigFile is an explicit YAML path. Empty means CONFIG_PATH or
	// DefaultConfigPaths; an explicit path that does not exist is an error.
	ConfigFile string

	// Flags holds parsed command-line flags. Only flags the user changed
	// and that appear in FlagKeys are applied.
	Flags *pflag.FlagSet

	// FlagKeys maps flag names to koanf keys.
	FlagKeys map[string]string
}

// Load builds the configuration from defaults, YAML, environment and flags,
// then validates it.
func Load(opts LoadOptions) (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: config file (optional)
	configPath, err := resolveConfigFile(opts.ConfigFile)
	if err != nil {
		return nil, err
	}
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: environment variables
	// SEQFORGE_TOP_N -> dataset.top_n
	if err := k.Load(env.Provider(EnvPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Layer 4: flags (highest priority)
	if err := applyFlags(k, opts.Flags, opts.FlagKeys); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	cfg.deriveFetchPaths()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// resolveConfigFile returns the YAML file to load, or "" when none applies.
func resolveConfigFile(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file %s: %w", explicit, err)
		}
		return explicit, nil
	}
	return findConfigFile(), nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// applyFlags copies changed flags onto k. Values are set as the flag's
// string form and converted during Unmarshal.
func applyFlags(k *koanf.Koanf, flags *pflag.FlagSet, keys map[string]string) error {
	if flags == nil {
		return nil
	}
	var setErr error
	flags.Visit(func(f *pflag.Flag) {
		key, ok := keys[f.Name]
		if !ok || setErr != nil {
			return
		}
		if err := k.Set(key, f.Value.String()); err != nil {
			setErr = fmt.Errorf("failed to apply flag --%s: %w", f.Name, err)
		}
	})
	return setErr
}

// envMappings maps lower-cased variable names without the prefix to koanf keys.
var envMappings = map[string]string{
	// Dataset
	"input_dir":            "dataset.input_dir",
	"input_glob":           "dataset.input_glob",
	"titles_file":          "dataset.titles_file",
	"dataset_name":         "dataset.name",
	"output_dir":           "dataset.output_dir",
	"top_n":                "dataset.top_n",
	"chunk_size":           "dataset.chunk_size",
	"min_ratings":          "dataset.min_ratings",
	"split_percentage":     "dataset.split_percentage",
	"shard_size":           "dataset.shard_size",
	"generate_check":       "dataset.generate_check",
	"check_cutoff":         "dataset.check_cutoff",
	"seed":                 "dataset.seed",
	"format":               "dataset.format",
	"compression":          "dataset.compression",
	"workers":              "dataset.workers",
	"vocab_path":           "fetch.vocab_path",
	"info_path":            "fetch.output_path",
	"checkpoint_dir":       "fetch.checkpoint_dir",
	"api_url":              "fetch.api_url",
	"api_key":              "fetch.api_key",
	"fetch_rate":           "fetch.rate",
	"fetch_max_attempts":   "fetch.max_attempts",
	"fetch_timeout":        "fetch.timeout",
	"fetch_skip_not_found": "fetch.skip_not_found",
	"poster_size":          "fetch.poster_size",

	// Metrics
	"metrics_textfile": "metrics.textfile",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps SEQFORGE_* variables to koanf keys.
func envTransformFunc(key string) string {
	key = strings.TrimPrefix(strings.ToLower(key), strings.ToLower(EnvPrefix))

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}

	// For unmapped keys, return empty string to skip them
	return ""
}
