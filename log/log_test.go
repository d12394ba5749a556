// log/log_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package log

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	for s, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		if lvl, ok := ParseLevel(s); !ok || lvl != want {
			t.Errorf("ParseLevel(%q) = %v, %v", s, lvl, ok)
		}
	}
	if _, ok := ParseLevel("verbose"); ok {
		t.Errorf("expected failure for unknown level")
	}
}

func TestNilLogger(t *testing.T) {
	var l *Logger
	// None of these should crash.
	l.Debug("debug")
	l.Debugf("debug %d", 1)
	l.Info("info")
	l.Infof("info %d", 1)
	if l.With("a", 1) != nil {
		t.Errorf("With on nil logger should give nil")
	}
}

func TestLoggerCallstack(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithHandler(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	l.Debugf("decoded %d records", 12)
	l.Info("airport", slog.String("id", "KJFK"))

	out := buf.String()
	if !strings.Contains(out, "decoded 12 records") || !strings.Contains(out, "id=KJFK") {
		t.Errorf("unexpected log output %q", out)
	}
	if !strings.Contains(out, "log_test.go") {
		t.Errorf("expected callstack to include the test file: %q", out)
	}
}

func TestNewWritesLogFile(t *testing.T) {
	dir := t.TempDir()
	l := New("info", dir)
	l.Info("hello")
	if l.LogFile != filepath.Join(dir, "cifp.slog") {
		t.Errorf("unexpected log file %q", l.LogFile)
	}
	if _, err := os.Stat(l.LogFile); err != nil {
		t.Errorf("log file not written: %v", err)
	}
}

func TestCallstack(t *testing.T) {
	fr := Callstack(0)
	if len(fr) == 0 || fr[0].File != "log_test.go" || !strings.HasSuffix(fr[0].Function, "TestCallstack") {
		t.Fatalf("unexpected innermost frame %+v", fr)
	}

	v := fr.LogValue().Any().([]string)
	if len(v) != len(fr) || v[0] != fr[0].String() {
		t.Errorf("got %v", v)
	}
}
