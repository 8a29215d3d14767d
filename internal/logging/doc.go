// SeqForge - Sequential Recommendation Dataset Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seqforge

// Package logging provides the zerolog-based structured logger used by every
// SeqForge command and pipeline stage.
//
// A single global logger is configured once from main via Init. Packages log
// through the level helpers (Info, Warn, Fatal) or through Ctx, which
// attaches the run id stored in a context.Context so that every line of one
// dataset-generation run can be correlated.
//
// # Quick Start
//
//	logging.Init(logging.Config{Level: "info", Format: "console"})
//
//	ctx = logging.ContextWithNewRunID(ctx)
//	logging.Ctx(ctx).Info().Str("stage", "ingest").Int("files", 4).Msg("Stage started")
//
// # Configuration
//
// Level and format usually come from the config package (logging.level,
// logging.format, logging.caller), which honours SEQFORGE_LOG_LEVEL and
// SEQFORGE_LOG_FORMAT.
//
// Always terminate log chains with .Msg() or .Send(); an event that is never
// sent is silently dropped.
package logging
