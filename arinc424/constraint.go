// arinc424/constraint.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package arinc424

import (
	"fmt"

	"github.com/mmp/cifp/util"
)

// AltitudeBound describes how an altitude restricts the aircraft's
// altitude at a fix.
type AltitudeBound int

const (
	BoundAt AltitudeBound = iota
	BoundAtOrAbove
	BoundAtOrBelow
)

func (b AltitudeBound) String() string {
	switch b {
	case BoundAtOrAbove:
		return "at or above"
	case BoundAtOrBelow:
		return "at or below"
	default:
		return "at"
	}
}

func (b AltitudeBound) prefix() string {
	switch b {
	case BoundAtOrAbove:
		return "+"
	case BoundAtOrBelow:
		return "-"
	default:
		return ""
	}
}

// AltitudeConstraint is the altitude restriction at the end of a
// procedure leg. The concrete type determines how many altitudes it
// carries:
//
//	AltitudeRestriction         single altitude (' ', '+', '-', 'C')
//	AltitudeBetween             window between two altitudes ('B')
//	AltitudeAtGlideSlope        altitude plus glide slope altitude ('G', 'H')
//	AltitudeAtGlideSlopeIntcpt  altitude plus glide slope intercept ('I', 'J')
//	AltitudeWithVerticalAngle   altitude plus vertical angle altitude ('V', 'X', 'Y')
type AltitudeConstraint interface {
	// Code returns the ARINC 424 altitude description character.
	Code() byte
	fmt.Stringer

	isAltitudeConstraint()
}

type AltitudeRestriction struct {
	Bound    AltitudeBound
	Altitude Altitude
	// SecondField is set for 'C' restrictions, where the "at or above"
	// altitude is given in the second altitude field.
	SecondField bool
}

type AltitudeBetween struct {
	Lower, Upper Altitude
}

type AltitudeAtGlideSlope struct {
	Bound      AltitudeBound // BoundAt or BoundAtOrAbove
	Altitude   Altitude
	GlideSlope Altitude
}

type AltitudeAtGlideSlopeIntercept struct {
	Bound      AltitudeBound // BoundAt or BoundAtOrAbove
	Altitude   Altitude
	GlideSlope Altitude
}

type AltitudeWithVerticalAngle struct {
	Bound         AltitudeBound
	Altitude      Altitude
	AngleAltitude Altitude
}

func (AltitudeRestriction) isAltitudeConstraint()           {}
func (AltitudeBetween) isAltitudeConstraint()               {}
func (AltitudeAtGlideSlope) isAltitudeConstraint()          {}
func (AltitudeAtGlideSlopeIntercept) isAltitudeConstraint() {}
func (AltitudeWithVerticalAngle) isAltitudeConstraint()     {}

func (r AltitudeRestriction) Code() byte {
	switch r.Bound {
	case BoundAtOrAbove:
		return util.Select[byte](r.SecondField, 'C', '+')
	case BoundAtOrBelow:
		return '-'
	default:
		return ' '
	}
}

func (AltitudeBetween) Code() byte { return 'B' }

func (g AltitudeAtGlideSlope) Code() byte {
	return util.Select[byte](g.Bound == BoundAtOrAbove, 'H', 'G')
}

func (g AltitudeAtGlideSlopeIntercept) Code() byte {
	return util.Select[byte](g.Bound == BoundAtOrAbove, 'J', 'I')
}

func (v AltitudeWithVerticalAngle) Code() byte {
	switch v.Bound {
	case BoundAtOrAbove:
		return 'V'
	case BoundAtOrBelow:
		return 'Y'
	default:
		return 'X'
	}
}

func (r AltitudeRestriction) String() string {
	return r.Bound.prefix() + r.Altitude.String()
}

func (b AltitudeBetween) String() string {
	return fmt.Sprintf("%s-%s", b.Lower, b.Upper)
}

func (g AltitudeAtGlideSlope) String() string {
	return fmt.Sprintf("%s%s GS %s", g.Bound.prefix(), g.Altitude, g.GlideSlope)
}

func (g AltitudeAtGlideSlopeIntercept) String() string {
	return fmt.Sprintf("%s%s GSI %s", g.Bound.prefix(), g.Altitude, g.GlideSlope)
}

func (v AltitudeWithVerticalAngle) String() string {
	return fmt.Sprintf("%s%s VA %s", v.Bound.prefix(), v.Altitude, v.AngleAltitude)
}

// Altitudes returns the first and second altitude fields as they would
// appear in a record; the second is nil for single altitude
// constraints.
func Altitudes(c AltitudeConstraint) (*Altitude, *Altitude) {
	switch c := c.(type) {
	case AltitudeRestriction:
		if c.SecondField {
			return nil, &c.Altitude
		}
		return &c.Altitude, nil
	case AltitudeBetween:
		return &c.Upper, &c.Lower
	case AltitudeAtGlideSlope:
		return &c.Altitude, &c.GlideSlope
	case AltitudeAtGlideSlopeIntercept:
		return &c.Altitude, &c.GlideSlope
	case AltitudeWithVerticalAngle:
		return &c.Altitude, &c.AngleAltitude
	default:
		return nil, nil
	}
}

// NewAltitudeConstraint builds a constraint from an altitude description
// character and the two altitude fields of a leg. It returns false if
// the code is unknown or if the altitudes that the code requires are
// not present; in particular, a between constraint is never created
// with a single altitude.
func NewAltitudeConstraint(code byte, first, second *Altitude) (AltitudeConstraint, bool) {
	single := func(b AltitudeBound) (AltitudeConstraint, bool) {
		if first == nil {
			return nil, false
		}
		return AltitudeRestriction{Bound: b, Altitude: *first}, true
	}
	switch code {
	case ' ', '@':
		return single(BoundAt)
	case '+':
		return single(BoundAtOrAbove)
	case '-':
		return single(BoundAtOrBelow)
	case 'C':
		if second == nil {
			return nil, false
		}
		return AltitudeRestriction{Bound: BoundAtOrAbove, Altitude: *second, SecondField: true}, true
	}

	if first == nil || second == nil {
		return nil, false
	}
	switch code {
	case 'B':
		return AltitudeBetween{Upper: *first, Lower: *second}, true
	case 'G':
		return AltitudeAtGlideSlope{Bound: BoundAt, Altitude: *first, GlideSlope: *second}, true
	case 'H':
		return AltitudeAtGlideSlope{Bound: BoundAtOrAbove, Altitude: *first, GlideSlope: *second}, true
	case 'I':
		return AltitudeAtGlideSlopeIntercept{Bound: BoundAt, Altitude: *first, GlideSlope: *second}, true
	case 'J':
		return AltitudeAtGlideSlopeIntercept{Bound: BoundAtOrAbove, Altitude: *first, GlideSlope: *second}, true
	case 'V':
		return AltitudeWithVerticalAngle{Bound: BoundAtOrAbove, Altitude: *first, AngleAltitude: *second}, true
	case 'X':
		return AltitudeWithVerticalAngle{Bound: BoundAt, Altitude: *first, AngleAltitude: *second}, true
	case 'Y':
		return AltitudeWithVerticalAngle{Bound: BoundAtOrBelow, Altitude: *first, AngleAltitude: *second}, true
	default:
		return nil, false
	}
}

func validAltitudeCode(c byte) bool {
	switch c {
	case ' ', '@', '+', '-', 'B', 'C', 'G', 'H', 'I', 'J', 'V', 'X', 'Y':
		return true
	default:
		return false
	}
}

///////////////////////////////////////////////////////////////////////////
// Speed

// SpeedConstraint is the speed restriction at the end of a procedure
// leg.
type SpeedConstraint struct {
	Bound AltitudeBound
	Knots int
}

func (s SpeedConstraint) String() string {
	return fmt.Sprintf("%s%dkt", s.Bound.prefix(), s.Knots)
}

// Code returns the ARINC 424 speed limit description character.
func (s SpeedConstraint) Code() byte {
	switch s.Bound {
	case BoundAtOrAbove:
		return '+'
	case BoundAtOrBelow:
		return '-'
	default:
		return '@'
	}
}

// NewSpeedConstraint returns false if no speed is given or the
// description code is not recognized.
func NewSpeedConstraint(code byte, knots *int) (*SpeedConstraint, bool) {
	if knots == nil {
		return nil, false
	}
	switch code {
	case ' ', '@':
		return &SpeedConstraint{Bound: BoundAt, Knots: *knots}, true
	case '+':
		return &SpeedConstraint{Bound: BoundAtOrAbove, Knots: *knots}, true
	case '-':
		return &SpeedConstraint{Bound: BoundAtOrBelow, Knots: *knots}, true
	default:
		return nil, false
	}
}
