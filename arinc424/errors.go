// arinc424/errors.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package arinc424

import (
	"errors"
	"fmt"
)

var (
	ErrBlank             = errors.New("Required field is blank")
	ErrInvalidNumber     = errors.New("Invalid number")
	ErrInvalidHemisphere = errors.New("Invalid hemisphere")
	ErrOutOfRange        = errors.New("Value out of range")
	ErrInvalidCode       = errors.New("Invalid code")
	ErrInvalidWidth      = errors.New("Unexpected field width")
)

// LineErrorKind distinguishes the ways in which a line may fail to be
// classified.
type LineErrorKind int

const (
	LineTooShort LineErrorKind = iota
	UnknownSection
	UnknownSubsection
)

func (k LineErrorKind) String() string {
	switch k {
	case LineTooShort:
		return "record too short"
	case UnknownSection:
		return "unknown section code"
	case UnknownSubsection:
		return "unknown subsection code"
	default:
		return "unknown line error"
	}
}

// LineError is reported when a line cannot be classified as a record;
// the line is skipped but decoding continues.
type LineError struct {
	Line   int
	Kind   LineErrorKind
	Code   string // offending section/subsection code, if any
	Length int    // line length, for LineTooShort
}

func (e *LineError) Error() string {
	switch e.Kind {
	case LineTooShort:
		return fmt.Sprintf("line %d: %s (%d bytes, need at least %d)", e.Line, e.Kind, e.Length, MinRecordLength)
	default:
		return fmt.Sprintf("line %d: %s %q", e.Line, e.Kind, e.Code)
	}
}

// FieldError is reported when a field of a classified record is missing
// or malformed; the whole record is dropped.
type FieldError struct {
	Line   int
	Record RecordKind
	Field  string
	Value  string
	Err    error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("line %d: %s: %s %q: %v", e.Line, e.Record, e.Field, e.Value, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}
