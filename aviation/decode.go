// aviation/decode.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"time"
	"unicode/utf8"

	"github.com/mmp/cifp/arinc424"
	"github.com/mmp/cifp/log"
	"github.com/mmp/cifp/util"
)

// Options control decoding; the zero value is valid.
type Options struct {
	// OnError is called for each line, field and aggregation error. line
	// is zero for aggregation errors, which aren't associated with a
	// single line. If OnError is nil, errors are only logged.
	OnError func(err error, line int)
	// Progress, if non-nil, is called periodically with the number of
	// bytes consumed so far.
	Progress func(bytesRead int64)
	Logger   *log.Logger
}

const progressInterval = 1 << 20

// decoder holds the state of a single decode pass; each of the entry
// points feeds it lines in order.
type decoder struct {
	opts       Options
	builder    *Builder
	lineno     int
	bytesRead  int64
	lastReport int64
	nerrors    int
	start      time.Time
}

func newDecoder(opts Options) *decoder {
	return &decoder{
		opts:    opts,
		builder: NewBuilder(opts.Logger),
		start:   time.Now(),
	}
}

func (d *decoder) report(err error, line int) {
	d.nerrors++
	if d.opts.OnError != nil {
		d.opts.OnError(err, line)
	} else {
		d.opts.Logger.Debug("decode error", "line", line, "error", err)
	}
}

// line decodes a single line, which may include its terminator. Only
// invalid text is returned as an error.
func (d *decoder) line(b []byte) error {
	d.lineno++
	d.bytesRead += int64(len(b))
	if d.opts.Progress != nil && d.bytesRead-d.lastReport >= progressInterval {
		d.lastReport = d.bytesRead
		d.opts.Progress(d.bytesRead)
	}

	if !utf8.Valid(b) {
		return &StreamError{Line: d.lineno, Err: ErrInvalidUTF8}
	}
	if len(bytes.TrimRight(b, "\r\n")) == 0 {
		return nil
	}

	rec, err := arinc424.Decode(b, d.lineno)
	if err != nil {
		d.report(err, d.lineno)
		return nil
	}
	d.builder.Add(rec)
	return nil
}

func (d *decoder) finish() *Result {
	counts := d.builder.Counts()
	r, errs := d.builder.Build()
	for _, err := range errs {
		d.report(err, 0)
	}
	if d.opts.Progress != nil {
		d.opts.Progress(d.bytesRead)
	}

	lg := d.opts.Logger
	lg.Debug("decoded CIFP", "lines", d.lineno, "errors", d.nerrors, "entities", r.TotalRecords(),
		"elapsed", time.Since(d.start))
	for kind, n := range util.SortedMap(kindNames(counts)) {
		lg.Debug("records", "kind", kind, "count", n)
	}
	return r
}

func kindNames(counts map[arinc424.RecordKind]int) map[string]int {
	m := make(map[string]int)
	for k, n := range counts {
		m[k.String()] = n
	}
	return m
}

// Decode decodes CIFP records from r. Errors in individual lines and
// records are passed to opts.OnError and decoding continues; a non-nil
// error is only returned if r can't be read or doesn't hold valid text.
func Decode(r io.Reader, opts Options) (*Result, error) {
	d := newDecoder(opts)
	br := bufio.NewReaderSize(r, 64*1024)
	for {
		b, err := br.ReadBytes('\n')
		if len(b) > 0 {
			if lerr := d.line(b); lerr != nil {
				return nil, lerr
			}
		}
		if errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return nil, &StreamError{Line: d.lineno, Err: err}
		}
	}
	return d.finish(), nil
}

// DecodeBytes decodes CIFP records held in memory.
func DecodeBytes(b []byte, opts Options) (*Result, error) {
	return Decode(bytes.NewReader(b), opts)
}

// DecodeFile decodes the given CIFP file; files with a ".zst" extension
// are decompressed.
func DecodeFile(path string, opts Options) (*Result, error) {
	f, err := util.OpenFile(path)
	if err != nil {
		return nil, &StreamError{Err: err}
	}
	defer f.Close()

	opts.Logger = opts.Logger.With("file", path)
	return Decode(f, opts)
}

// DecodeChan decodes CIFP records from chunks of bytes received from ch;
// chunk boundaries need not fall at line boundaries. Decoding finishes
// when ch is closed. If an error is returned, ch is drained in the
// background so that the sender doesn't block.
func DecodeChan(ch <-chan []byte, opts Options) (*Result, error) {
	r, err := decodeChan(ch, opts)
	if err != nil {
		go func() {
			for range ch {
			}
		}()
	}
	return r, err
}

func decodeChan(ch <-chan []byte, opts Options) (*Result, error) {
	d := newDecoder(opts)
	var pending []byte
	for chunk := range ch {
		pending = append(pending, chunk...)
		for {
			idx := bytes.IndexByte(pending, '\n')
			if idx == -1 {
				break
			}
			if err := d.line(pending[:idx+1]); err != nil {
				return nil, err
			}
			pending = pending[idx+1:]
		}
		// Move what's left to the front so that the buffer doesn't grow
		// without bound.
		pending = append([]byte(nil), pending...)
	}
	if len(pending) > 0 {
		if err := d.line(pending); err != nil {
			return nil, err
		}
	}
	return d.finish(), nil
}
