// arinc424/field.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package arinc424

import (
	"fmt"
	"slices"
	"strings"

	"github.com/mmp/cifp/util"
)

// The functions in this file decode a single fixed-width field. All of
// them follow the same convention: an all-blank field returns a nil
// result and no error, a well-formed field returns a pointer to the
// decoded value, and anything else returns an error.

func IsBlank(b []byte) bool {
	return util.SeqContainsAllFunc(slices.Values(b), func(c byte) bool { return c == ' ' })
}

// Text returns the field with trailing (and leading) blanks removed.
func Text(b []byte) string {
	return strings.TrimSpace(string(b))
}

func digits(b []byte) (int, bool) {
	if len(b) == 0 {
		return 0, false
	}
	v := 0
	for _, c := range b {
		if c < '0' || c > '9' {
			return 0, false
		}
		v = 10*v + int(c-'0')
	}
	return v, true
}

// Some numeric fields are right-justified with leading blanks rather
// than zeros.
func paddedDigits(b []byte) (int, bool) {
	i := 0
	for i < len(b) && b[i] == ' ' {
		i++
	}
	return digits(b[i:])
}

func malformed(b []byte, err error) error {
	return fmt.Errorf("%q: %w", string(b), err)
}

// Unsigned decodes an unsigned decimal integer.
func Unsigned(b []byte) (*int, error) {
	if IsBlank(b) {
		return nil, nil
	}
	if v, ok := paddedDigits(b); ok {
		return &v, nil
	}
	return nil, malformed(b, ErrInvalidNumber)
}

// Signed decodes an integer with an optional leading '+' or '-'.
func Signed(b []byte) (*int, error) {
	if IsBlank(b) {
		return nil, nil
	}
	s := strings.TrimSpace(string(b))
	sign := 1
	if s[0] == '-' || s[0] == '+' {
		if s[0] == '-' {
			sign = -1
		}
		s = s[1:]
	}
	v, ok := digits([]byte(s))
	if !ok {
		return nil, malformed(b, ErrInvalidNumber)
	}
	v *= sign
	return &v, nil
}

func scaled(v *int, err error, scale float64) (*float64, error) {
	if v == nil || err != nil {
		return nil, err
	}
	f := float64(*v) / scale
	return &f, nil
}

// Tenths decodes an unsigned value stored in tenths (distances in
// nautical miles, theta/rho, timing in minutes).
func Tenths(b []byte) (*float64, error) {
	v, err := Unsigned(b)
	return scaled(v, err, 10)
}

// Hundredths decodes an unsigned value stored in hundredths (glide slope
// angle, localizer width, course width).
func Hundredths(b []byte) (*float64, error) {
	v, err := Unsigned(b)
	return scaled(v, err, 100)
}

// SignedTenths decodes a signed value stored in tenths (ellipsoid and
// orthometric heights in meters).
func SignedTenths(b []byte) (*float64, error) {
	v, err := Signed(b)
	return scaled(v, err, 10)
}

///////////////////////////////////////////////////////////////////////////
// Coordinates

// angle decodes degrees, minutes and fractional seconds where secDigits
// gives the number of digits used for the seconds field; the seconds
// have two integer digits and the rest are fractional.
func angle(b []byte, degDigits, secDigits int, pos, neg byte, maxDeg int) (*float64, error) {
	if IsBlank(b) {
		return nil, nil
	}
	if len(b) != 1+degDigits+2+secDigits {
		return nil, malformed(b, ErrInvalidWidth)
	}

	var sign float64
	switch b[0] {
	case pos:
		sign = 1
	case neg:
		sign = -1
	default:
		return nil, malformed(b, ErrInvalidHemisphere)
	}

	deg, ok0 := digits(b[1 : 1+degDigits])
	min, ok1 := digits(b[1+degDigits : 3+degDigits])
	sec, ok2 := digits(b[3+degDigits:])
	if !ok0 || !ok1 || !ok2 {
		return nil, malformed(b, ErrInvalidNumber)
	}

	secScale := 1
	for range secDigits - 2 {
		secScale *= 10
	}
	if min >= 60 || sec >= 60*secScale || deg > maxDeg || (deg == maxDeg && (min != 0 || sec != 0)) {
		return nil, malformed(b, ErrOutOfRange)
	}

	v := sign * (float64(deg) + float64(min)/60 + float64(sec)/float64(3600*secScale))
	return &v, nil
}

// Latitude decodes a 9-byte latitude: N/S, 2 digits of degrees, 2 of
// minutes and 4 of hundredths of seconds.
func Latitude(b []byte) (*float64, error) {
	return angle(b, 2, 4, 'N', 'S', 90)
}

// Longitude decodes a 10-byte longitude: E/W, 3 digits of degrees, 2 of
// minutes and 4 of hundredths of seconds.
func Longitude(b []byte) (*float64, error) {
	return angle(b, 3, 4, 'E', 'W', 180)
}

// HighPrecisionLatitude decodes the 11-byte latitude used by path
// points, with seconds given to ten-thousandths.
func HighPrecisionLatitude(b []byte) (*float64, error) {
	return angle(b, 2, 6, 'N', 'S', 90)
}

// HighPrecisionLongitude decodes the 12-byte path point longitude.
func HighPrecisionLongitude(b []byte) (*float64, error) {
	return angle(b, 3, 6, 'E', 'W', 180)
}

// MagneticVariation decodes E/W/T followed by 4 digits of tenths of a
// degree. East and true are positive, west is negative.
func MagneticVariation(b []byte) (*float64, error) {
	if IsBlank(b) {
		return nil, nil
	}
	if len(b) != 5 {
		return nil, malformed(b, ErrInvalidWidth)
	}
	var sign float64
	switch b[0] {
	case 'E', 'T':
		sign = 1
	case 'W':
		sign = -1
	default:
		return nil, malformed(b, ErrInvalidHemisphere)
	}
	v, ok := digits(b[1:])
	if !ok {
		return nil, malformed(b, ErrInvalidNumber)
	}
	if v > 1800 {
		return nil, malformed(b, ErrOutOfRange)
	}
	mv := sign * float64(v) / 10
	return &mv, nil
}

///////////////////////////////////////////////////////////////////////////
// Altitudes

type AltitudeKind int

const (
	AltitudeFeet AltitudeKind = iota
	AltitudeFlightLevel
	AltitudeGround
	AltitudeUnknown
	AltitudeUnlimited
	AltitudeNotSpecified
)

type Datum int

const (
	MSL Datum = iota
	AGL
)

func (d Datum) String() string {
	return util.Select(d == AGL, "AGL", "MSL")
}

// Altitude is a decoded altitude field. Value holds feet for
// AltitudeFeet and the flight level (hundreds of feet) for
// AltitudeFlightLevel; it is unused for the other kinds.
type Altitude struct {
	Kind  AltitudeKind
	Value int
	Datum Datum
}

func Feet(ft int) Altitude {
	return Altitude{Kind: AltitudeFeet, Value: ft}
}

func FlightLevel(fl int) Altitude {
	return Altitude{Kind: AltitudeFlightLevel, Value: fl}
}

// Feet returns the altitude in feet if it has a numeric value; ground
// is reported as zero.
func (a Altitude) Feet() (int, bool) {
	switch a.Kind {
	case AltitudeFeet:
		return a.Value, true
	case AltitudeFlightLevel:
		return 100 * a.Value, true
	case AltitudeGround:
		return 0, true
	default:
		return 0, false
	}
}

func (a Altitude) String() string {
	switch a.Kind {
	case AltitudeFeet:
		if a.Datum == AGL {
			return fmt.Sprintf("%d AGL", a.Value)
		}
		return fmt.Sprintf("%d", a.Value)
	case AltitudeFlightLevel:
		return fmt.Sprintf("FL%03d", a.Value)
	case AltitudeGround:
		return "GND"
	case AltitudeUnknown:
		return "UNKNN"
	case AltitudeUnlimited:
		return "UNLTD"
	case AltitudeNotSpecified:
		return "NOTSP"
	default:
		return "???"
	}
}

// ParseAltitude decodes an altitude field. Plain numbers are feet
// relative to the given datum.
func ParseAltitude(b []byte, datum Datum) (*Altitude, error) {
	if IsBlank(b) {
		return nil, nil
	}
	s := strings.TrimSpace(string(b))
	switch s {
	case "GND", "SFC":
		return &Altitude{Kind: AltitudeGround, Datum: datum}, nil
	case "UNKNN":
		return &Altitude{Kind: AltitudeUnknown}, nil
	case "UNLTD":
		return &Altitude{Kind: AltitudeUnlimited}, nil
	case "NOTSP":
		return &Altitude{Kind: AltitudeNotSpecified}, nil
	}

	if fl, ok := strings.CutPrefix(s, "FL"); ok {
		v, ok := digits([]byte(fl))
		if !ok {
			return nil, malformed(b, ErrInvalidNumber)
		}
		return &Altitude{Kind: AltitudeFlightLevel, Value: v}, nil
	}

	v, err := Signed(b)
	if err != nil {
		return nil, err
	}
	return &Altitude{Kind: AltitudeFeet, Value: *v, Datum: datum}, nil
}

// MSLAltitude is ParseAltitude with the default datum, for use where a
// plain decoder function is expected.
func MSLAltitude(b []byte) (*Altitude, error) {
	return ParseAltitude(b, MSL)
}

// HundredsOfFeet decodes altitudes stored in hundreds of feet (MSA
// sector altitudes, grid MORAs). The latter use "UNK" for unknown.
func HundredsOfFeet(b []byte) (*Altitude, error) {
	if IsBlank(b) {
		return nil, nil
	}
	if strings.TrimSpace(string(b)) == "UNK" {
		return &Altitude{Kind: AltitudeUnknown}, nil
	}
	v, err := Unsigned(b)
	if err != nil {
		return nil, err
	}
	return &Altitude{Kind: AltitudeFeet, Value: 100 * *v}, nil
}

///////////////////////////////////////////////////////////////////////////
// Frequencies, courses, distances and the like

// VHFFrequency returns the frequency in MHz.
func VHFFrequency(b []byte) (*float64, error) {
	v, err := Unsigned(b)
	return scaled(v, err, 100)
}

// NDBFrequency returns the frequency in kHz.
func NDBFrequency(b []byte) (*float64, error) {
	v, err := Unsigned(b)
	return scaled(v, err, 10)
}

// Bearing is a course or bearing in degrees; True is set when it is
// referenced to true rather than magnetic north.
type Bearing struct {
	Degrees float64
	True    bool
}

func (b Bearing) String() string {
	if b.True {
		return fmt.Sprintf("%05.1fT", b.Degrees)
	}
	return fmt.Sprintf("%05.1f", b.Degrees)
}

// ParseBearing decodes a 4-byte course: either tenths of a degree
// magnetic or three digits of whole degrees followed by 'T' for true.
// 360 degrees is returned as 0.
func ParseBearing(b []byte) (*Bearing, error) {
	if IsBlank(b) {
		return nil, nil
	}
	if len(b) != 4 {
		return nil, malformed(b, ErrInvalidWidth)
	}

	var brg Bearing
	if b[3] == 'T' {
		v, ok := digits(b[:3])
		if !ok {
			return nil, malformed(b, ErrInvalidNumber)
		}
		brg = Bearing{Degrees: float64(v), True: true}
	} else {
		v, ok := digits(b)
		if !ok {
			return nil, malformed(b, ErrInvalidNumber)
		}
		brg = Bearing{Degrees: float64(v) / 10}
	}

	if brg.Degrees > 360 {
		return nil, malformed(b, ErrOutOfRange)
	} else if brg.Degrees == 360 {
		brg.Degrees = 0
	}
	return &brg, nil
}

// DistanceOrTime decodes the 4-byte leg distance field, which holds
// either tenths of a nautical mile or, with a leading 'T', tenths of a
// minute of holding time.
func DistanceOrTime(b []byte) (dist *float64, minutes *float64, err error) {
	if IsBlank(b) {
		return nil, nil, nil
	}
	if b[0] == 'T' {
		minutes, err = Tenths(b[1:])
		if err == nil && minutes == nil {
			err = malformed(b, ErrInvalidNumber)
		}
		return nil, minutes, err
	}
	dist, err = Tenths(b)
	return dist, nil, err
}

// ArcRadius decodes a radius in thousandths of a nautical mile.
func ArcRadius(b []byte) (*float64, error) {
	v, err := Unsigned(b)
	return scaled(v, err, 1000)
}

// RNP decodes the 3-byte RNP field: two digits of mantissa followed by
// a single digit negative exponent, so "031" is 0.3nm.
func RNP(b []byte) (*float64, error) {
	if IsBlank(b) {
		return nil, nil
	}
	if len(b) != 3 {
		return nil, malformed(b, ErrInvalidWidth)
	}
	m, ok0 := digits(b[:2])
	e, ok1 := digits(b[2:])
	if !ok0 || !ok1 {
		return nil, malformed(b, ErrInvalidNumber)
	}
	v := float64(m)
	for range e {
		v /= 10
	}
	return &v, nil
}

// VerticalAngle decodes a signed angle in hundredths of a degree; "-300"
// is a 3 degree descent.
func VerticalAngle(b []byte) (*float64, error) {
	v, err := Signed(b)
	return scaled(v, err, 100)
}

// Speed returns knots.
func Speed(b []byte) (*int, error) {
	return Unsigned(b)
}

// Elevation returns signed feet.
func Elevation(b []byte) (*int, error) {
	return Signed(b)
}
