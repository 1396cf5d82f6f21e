// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package logging

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"chatty":  slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNew_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "warn").With("component", "stream")

	log.Info("submit")
	log.Warn("rollback", "cause", "request cancelled")

	out := buf.String()
	if strings.Contains(out, "submit") {
		t.Errorf("info record written at warn level: %q", out)
	}
	if !strings.Contains(out, `component=stream`) || !strings.Contains(out, `cause="request cancelled"`) {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestOpen_AppendsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "ghost.log")

	for _, msg := range []string{"first", "second"} {
		log, closer, err := Open(path, "info")
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		log.Info(msg)
		closer.Close()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "msg=first") || !strings.Contains(string(data), "msg=second") {
		t.Errorf("log file = %q", data)
	}
}

func TestDiscard(t *testing.T) {
	if Discard().Enabled(context.Background(), slog.LevelError) {
		t.Error("Discard logger should be disabled at every level")
	}
}
