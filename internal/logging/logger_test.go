// SeqForge - Sequential Recommendation Dataset Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seqforge

package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestLevelOf(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
		valid bool
	}{
		{"trace", zerolog.TraceLevel, true},
		{"debug", zerolog.DebugLevel, true},
		{"info", zerolog.InfoLevel, true},
		{"warn", zerolog.WarnLevel, true},
		{"Warning", zerolog.WarnLevel, true},
		{" ERROR ", zerolog.ErrorLevel, true},
		{"disabled", zerolog.Disabled, true},
		{"chatty", zerolog.InfoLevel, false},
		{"", zerolog.InfoLevel, false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := levelOf(tt.input); got != tt.want {
				t.Errorf("levelOf(%q) = %v, want %v", tt.input, got, tt.want)
			}
			if got := ValidLevel(tt.input); got != tt.valid {
				t.Errorf("ValidLevel(%q) = %v, want %v", tt.input, got, tt.valid)
			}
		})
	}
}

func TestInit(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		want    []string
		notWant []string
	}{
		{
			name:    "json",
			cfg:     Config{Level: "info", Format: "json"},
			want:    []string{`"level":"info"`, `"message":"hello"`},
			notWant: []string{`"time"`},
		},
		{
			name: "json with timestamp and caller",
			cfg:  Config{Level: "info", Format: "json", Timestamp: true, Caller: true},
			want: []string{`"time":`, `"caller":`, "logger_test.go"},
		},
		{
			name:    "console",
			cfg:     Config{Level: "info", Format: "console"},
			want:    []string{"hello"},
			notWant: []string{`"level"`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.cfg.Output = &buf
			Init(tt.cfg)
			defer Init(DefaultConfig())

			Info().Msg("hello")

			out := buf.String()
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output %q missing %q", out, w)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(out, w) {
					t.Errorf("output %q contains %q", out, w)
				}
			}
		})
	}
}

func TestInit_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "warn", Output: &buf})
	defer Init(DefaultConfig())

	Info().Msg("dropped")
	Warn().Msg("kept")

	if strings.Contains(buf.String(), "dropped") {
		t.Errorf("info line written at warn level: %s", buf.String())
	}
	if !strings.Contains(buf.String(), "kept") {
		t.Errorf("warn line missing: %s", buf.String())
	}
}

func TestSetLogger(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(NewTestLogger(&buf))
	defer Init(DefaultConfig())

	Warn().Str("path", "x.prom").Msg("metrics")

	if !strings.Contains(buf.String(), `"path":"x.prom"`) {
		t.Errorf("expected field in output: %s", buf.String())
	}
}
