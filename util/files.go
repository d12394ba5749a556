// util/files.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

type zstdReadCloser struct {
	*zstd.Decoder
	f *os.File
}

func (z zstdReadCloser) Close() error {
	z.Decoder.Close()
	return z.f.Close()
}

// OpenFile opens the given file for reading; if it's zstd compressed
// (i.e., its name ends in ".zst"), the returned reader handles
// decompression transparently.
func OpenFile(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	if filepath.Ext(path) == ".zst" {
		zr, err := zstd.NewReader(bufio.NewReader(f), zstd.WithDecoderConcurrency(0))
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return zstdReadCloser{Decoder: zr, f: f}, nil
	}

	return f, nil
}

// WriteCompressedFile writes the bytes produced by the provided callback
// to the given path, zstd-compressing them if the filename ends in ".zst".
func WriteCompressedFile(path string, write func(w io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if filepath.Ext(path) != ".zst" {
		if err := write(f); err != nil {
			return err
		}
		return f.Close()
	}

	zw, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return err
	}
	if err := write(zw); err != nil {
		zw.Close()
		return err
	}
	if err := zw.Close(); err != nil {
		return err
	}
	return f.Close()
}
