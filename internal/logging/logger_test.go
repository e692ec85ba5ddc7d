// TaskVault - Multi-Tenant Task Management API
// Copyright 2026 TaskVault Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/taskvault/taskvault

package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"bogus", zerolog.InfoLevel},
		{"DEBUG", zerolog.DebugLevel},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestTestLoggerCapturesOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := NewTestLogger(&buf)
	logger.Info().Str("key", "value").Msg("hello")

	out := buf.String()
	if !strings.Contains(out, "hello") || !strings.Contains(out, "value") {
		t.Errorf("output = %q", out)
	}
}

func TestPackageHelpersWriteToGlobalLogger(t *testing.T) {
	var buf bytes.Buffer
	prev := Logger()
	SetLogger(NewTestLogger(&buf))
	defer SetLogger(prev)

	Info().Str("op", "startup").Msg("info line")
	Warn().Msg("warn line")
	Error().Msg("error line")
	Debug().Msg("debug line")

	out := buf.String()
	for _, want := range []string{"info line", "warn line", "error line", "startup"} {
		if !strings.Contains(out, want) {
			t.Errorf("helper output missing %q: %q", want, out)
		}
	}
}

func TestSlogBridge(t *testing.T) {
	var buf bytes.Buffer
	prev := Logger()
	SetLogger(NewTestLogger(&buf))
	defer SetLogger(prev)

	slogger := NewSlogLogger()
	slogger.Info("service started", slog.String("service", "http-server"))

	out := buf.String()
	if !strings.Contains(out, "service started") {
		t.Errorf("bridge dropped the message: %q", out)
	}
	if !strings.Contains(out, "http-server") {
		t.Errorf("bridge dropped the attr: %q", out)
	}
}
