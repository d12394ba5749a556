// cmd/cifp/main_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"bytes"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mmp/cifp/arinc424"
	"github.com/mmp/cifp/aviation"
)

func line(fields map[int]string) string {
	b := bytes.Repeat([]byte{' '}, arinc424.RecordLength)
	for col, s := range fields {
		copy(b[col:], s)
	}
	return string(b)
}

var testLines = []string{
	"HDR01FAACIFP18      001P013203970722210  08-SEP-2022 09:55:36  U.S.A. DOT FAA",
	line(map[int]string{0: "SUSAP KXYZK7A", 13: "XYZ", 21: "0", 27: "080YH", 32: "N40000000W075000000",
		56: "00100", 93: "TEST AIRPORT"}),
	line(map[int]string{0: "SUSAD ", 13: "ABC", 19: "K7", 21: "0", 22: "11190VTHW ", 32: "N41100000W074100000"}),
	line(map[int]string{0: "SUSAEAENRTK7", 13: "FIXAA", 19: "K7", 21: "0", 26: "C", 32: "N40300000W074300000"}),
	line(map[int]string{0: "SUSAP KXYZK7D", 13: "TEST1", 19: "3", 20: "TRANS", 26: "010", 29: "FIXAA",
		34: "K7", 36: "EA", 38: "0", 47: "TF"}),
	line(map[int]string{0: "SUSAP KXYZK7D", 13: "TEST1", 19: "3", 20: "TRANS", 26: "020", 29: "ABC",
		34: "K7", 36: "D ", 38: "0", 47: "TF"}),
}

func writeTestFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "FAACIFP18")
	if err := os.WriteFile(path, []byte(strings.Join(testLines, "\n")+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()

	c, err := loadConfig(filepath.Join(dir, "missing.json"))
	if err != nil || c != defaultConfig() {
		t.Errorf("missing file: got %+v, %v", c, err)
	}

	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{"LogLevel": "debug", "CacheTTL": "90s"}`), 0o600); err != nil {
		t.Fatal(err)
	}
	c, err = loadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if c.LogLevel != "debug" || time.Duration(c.CacheTTL) != 90*time.Second {
		t.Errorf("got %+v", c)
	}
	if c.CacheSize != defaultConfig().CacheSize {
		t.Errorf("CacheSize %d not defaulted", c.CacheSize)
	}

	if err := os.WriteFile(path, []byte(`{"Bogus": 1}`), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := loadConfig(path); err == nil {
		t.Errorf("expected error for unknown field")
	}
}

func TestConfigSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "CIFP", "config.json")
	c := defaultConfig()
	c.CacheDir = "/tmp/cifp-cache"
	c.CacheTTL = Duration(time.Hour)
	if err := c.Save(path); err != nil {
		t.Fatal(err)
	}
	got, err := loadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if got != c {
		t.Errorf("got %+v, expected %+v", got, c)
	}
}

func TestApplyFlags(t *testing.T) {
	set := flag.NewFlagSet("cifp", flag.ContinueOnError)
	set.String("loglevel", "info", "")
	set.String("logdir", "", "")
	set.String("cachedir", "", "")
	set.String("serve", "", "")
	set.Int("lru", 1024, "")
	set.Duration("lruttl", 10*time.Minute, "")
	if err := set.Parse([]string{"-loglevel", "warn", "-lru", "5", "-lruttl", "1m", "-serve", ""}); err != nil {
		t.Fatal(err)
	}

	c := defaultConfig()
	c.LogDir = "/var/log/cifp"
	c.applyFlags(set)

	if c.LogLevel != "warn" || c.CacheSize != 5 || time.Duration(c.CacheTTL) != time.Minute {
		t.Errorf("flags not applied: %+v", c)
	}
	// Flags that weren't given and an empty -serve leave the config alone.
	if c.LogDir != "/var/log/cifp" || c.ServerAddress != defaultConfig().ServerAddress {
		t.Errorf("config overridden: %+v", c)
	}
}

func TestDecodeFiles(t *testing.T) {
	path := writeTestFile(t)

	files, err := decodeFiles([]string{path, path}, false, "", nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 {
		t.Fatalf("got %d files", len(files))
	}
	for _, f := range files {
		if f.errors.HaveErrors() {
			t.Errorf("unexpected errors: %s", f.errors.String())
		}
		if _, ok := f.result.Airports["KXYZ"]; !ok {
			t.Errorf("KXYZ missing")
		}
	}

	var b strings.Builder
	printSummary(&b, files[0])
	if s := b.String(); !strings.Contains(s, "cycle 2210") || !strings.Contains(s, "airports") {
		t.Errorf("unexpected summary %q", s)
	}

	if _, err := decodeFiles([]string{filepath.Join(t.TempDir(), "missing")}, false, "", nil); err == nil {
		t.Errorf("expected error for missing file")
	}
}

func TestDecodeFilesCached(t *testing.T) {
	path := writeTestFile(t)
	cacheDir := t.TempDir()

	for range 2 {
		files, err := decodeFiles([]string{path}, true, cacheDir, nil)
		if err != nil {
			t.Fatal(err)
		}
		if _, ok := files[0].result.VHFNavaids["ABC"]; !ok {
			t.Errorf("ABC missing")
		}
	}
}

func TestFindEntities(t *testing.T) {
	files, err := decodeFiles([]string{writeTestFile(t)}, false, "", nil)
	if err != nil {
		t.Fatal(err)
	}
	r := files[0].result

	for id, want := range map[string]int{"KXYZ": 1, "ABC": 1, "FIXAA": 1, "NOPE": 0} {
		if got := findEntities(r, id); len(got) != want {
			t.Errorf("%s: got %d entities, expected %d", id, len(got), want)
		}
	}
}

func TestPrintRoutes(t *testing.T) {
	files, err := decodeFiles([]string{writeTestFile(t)}, false, "", nil)
	if err != nil {
		t.Fatal(err)
	}
	db, err := aviation.Link(files[0].result)
	if err != nil {
		t.Fatal(err)
	}

	var b strings.Builder
	if err := printRoutes(&b, db, "KXYZ"); err != nil {
		t.Fatal(err)
	}
	if s := b.String(); !strings.Contains(s, "KXYZ/TEST1.TRANS") || !strings.Contains(s, "FIXAA ABC") {
		t.Errorf("unexpected routes %q", s)
	}

	if err := printRoutes(&b, db, "KZZZ"); err == nil {
		t.Errorf("expected error for unknown airport")
	}
}
