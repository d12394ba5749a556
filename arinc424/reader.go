// arinc424/reader.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package arinc424

import (
	"github.com/mmp/cifp/math"
)

// fieldReader extracts fields from a single record. The first failure
// is recorded as a *FieldError and subsequent failures are ignored; the
// record's decoder checks err once it has pulled out all of the fields.
type fieldReader struct {
	line   []byte
	lineno int
	kind   RecordKind
	err    error
}

func (r *fieldReader) fail(field string, start, end int, err error) {
	if r.err == nil {
		r.err = &FieldError{
			Line:   r.lineno,
			Record: r.kind,
			Field:  field,
			Value:  string(r.line[start:end]),
			Err:    err,
		}
	}
}

func (r *fieldReader) text(start, end int) string {
	return Text(r.line[start:end])
}

func (r *fieldReader) requiredText(field string, start, end int) string {
	s := r.text(start, end)
	if s == "" {
		r.fail(field, start, end, ErrBlank)
	}
	return s
}

func (r *fieldReader) flag(idx int, yes byte) bool {
	return r.line[idx] == yes
}

func optional[T any](r *fieldReader, field string, start, end int, decode func([]byte) (*T, error)) *T {
	v, err := decode(r.line[start:end])
	if err != nil {
		r.fail(field, start, end, err)
		return nil
	}
	return v
}

func required[T any](r *fieldReader, field string, start, end int, decode func([]byte) (*T, error)) T {
	v, err := decode(r.line[start:end])
	if err != nil {
		r.fail(field, start, end, err)
	} else if v == nil {
		r.fail(field, start, end, ErrBlank)
	} else {
		return *v
	}
	var zero T
	return zero
}

func (r *fieldReader) altitude(field string, start, end int, datum Datum) *Altitude {
	alt, err := ParseAltitude(r.line[start:end], datum)
	if err != nil {
		r.fail(field, start, end, err)
	}
	return alt
}

// location decodes the 19-byte latitude/longitude pair that starts at
// the given offset.
func (r *fieldReader) location(field string, start int) *math.Point2LL {
	lat := optional(r, field+" latitude", start, start+9, Latitude)
	long := optional(r, field+" longitude", start+9, start+19, Longitude)
	return r.point(field, start, start+19, lat, long)
}

// highPrecisionLocation decodes the 23-byte high precision pair used by
// path points.
func (r *fieldReader) highPrecisionLocation(field string, start int) *math.Point2LL {
	lat := optional(r, field+" latitude", start, start+11, HighPrecisionLatitude)
	long := optional(r, field+" longitude", start+11, start+23, HighPrecisionLongitude)
	return r.point(field, start, start+23, lat, long)
}

func (r *fieldReader) point(field string, start, end int, lat, long *float64) *math.Point2LL {
	if lat == nil && long == nil {
		return nil
	} else if lat == nil || long == nil {
		// Half of a coordinate is no coordinate.
		r.fail(field, start, end, ErrBlank)
		return nil
	}
	return &math.Point2LL{*long, *lat}
}

func (r *fieldReader) requiredLocation(field string, start int) math.Point2LL {
	p := r.location(field, start)
	if p == nil {
		r.fail(field, start, start+19, ErrBlank)
		return math.Point2LL{}
	}
	return *p
}

// fixRef returns a reference to a fix given the offsets of its
// identifier, region and section code; it returns nil if the identifier
// is blank. A negative offset indicates that the record does not carry
// that part of the reference.
func (r *fieldReader) fixRef(identStart, identEnd, region, section, subsection int) *FixRef {
	id := r.text(identStart, identEnd)
	if id == "" {
		return nil
	}
	ref := &FixRef{Ident: id}
	if region >= 0 {
		ref.Region = r.text(region, region+2)
	}
	if section >= 0 {
		ref.Section = SectionCode([]byte{r.line[section], r.line[subsection]})
	}
	return ref
}

// sequence decodes a record sequence number, which must be present.
func (r *fieldReader) sequence(start, end int) int {
	return required(r, "sequence number", start, end, Unsigned)
}
