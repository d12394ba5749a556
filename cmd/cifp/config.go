// cmd/cifp/config.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/mmp/cifp/server"
)

// Config holds the settings that may be given in the config file; the
// corresponding command-line flags take precedence.
type Config struct {
	LogLevel      string
	LogDir        string
	CacheDir      string
	ServerAddress string
	CacheSize     int
	CacheTTL      Duration
}

// Duration is a time.Duration that is stored in the config file in
// its string form (e.g., "10m").
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	td, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(td)
	return nil
}

func defaultConfig() Config {
	return Config{
		LogLevel:      "info",
		ServerAddress: fmt.Sprintf("localhost:%d", server.DefaultPort),
		CacheSize:     1024,
		CacheTTL:      Duration(10 * time.Minute),
	}
}

func configFilePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("unable to find user config dir: %w", err)
	}
	return filepath.Join(dir, "CIFP", "config.json"), nil
}

// loadConfig returns the configuration stored at path; fields that
// are missing from the file keep their default values. A missing file
// isn't an error.
func loadConfig(path string) (Config, error) {
	c := defaultConfig()

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return c, nil
	} else if err != nil {
		return c, err
	}
	defer f.Close()

	d := json.NewDecoder(f)
	d.DisallowUnknownFields()
	if err := d.Decode(&c); err != nil {
		return defaultConfig(), fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

func (c *Config) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(c)
}

func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return c.Encode(f)
}

// applyFlags overrides the config's settings with those given
// explicitly on the command line.
func (c *Config) applyFlags(set *flag.FlagSet) {
	set.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "loglevel":
			c.LogLevel = f.Value.String()
		case "logdir":
			c.LogDir = f.Value.String()
		case "cachedir":
			c.CacheDir = f.Value.String()
		case "serve":
			if addr := f.Value.String(); addr != "" {
				c.ServerAddress = addr
			}
		case "lru":
			if g, ok := f.Value.(flag.Getter); ok {
				c.CacheSize = g.Get().(int)
			}
		case "lruttl":
			if g, ok := f.Value.(flag.Getter); ok {
				c.CacheTTL = Duration(g.Get().(time.Duration))
			}
		}
	})
}
