// SeqForge - Sequential Recommendation Dataset Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seqforge

// Package validation provides struct validation using go-playground/validator v10.
//
// A single validator instance is shared process-wide (it caches struct
// metadata). Field names in errors come from the koanf struct tag, so a
// failure reads like the configuration key the operator has to fix:
//
//	dataset.split_percentage must be less than 1
//
// Custom tags:
//   - glob: the value is a valid filepath.Match pattern
//
// Example:
//
//	type DatasetConfig struct {
//	    TopN      int    `koanf:"top_n" validate:"gt=0"`
//	    InputGlob string `koanf:"input_glob" validate:"required,glob"`
//	}
//
//	if err := validation.ValidateStruct(&cfg); err != nil {
//	    return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
//	}
package validation
