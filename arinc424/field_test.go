// arinc424/field_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package arinc424

import (
	"bytes"
	"errors"
	"fmt"
	gomath "math"
	"slices"
	"testing"
)

// Encoders for the fixed-point formats; they're only needed to check
// that decoding inverts encoding.

func encodeAngle(v float64, degDigits int, pos, neg byte, secDigits int) string {
	h := pos
	if v < 0 {
		h = neg
		v = -v
	}
	scale := 3600.0
	for range secDigits - 2 {
		scale *= 10
	}
	perMin := int(scale) / 60
	n := int(gomath.Round(v * scale))
	return fmt.Sprintf("%c%0*d%02d%0*d", h, degDigits, n/int(scale), (n/perMin)%60, secDigits, n%perMin)
}

func encodeLatitude(v float64) string  { return encodeAngle(v, 2, 'N', 'S', 4) }
func encodeLongitude(v float64) string { return encodeAngle(v, 3, 'E', 'W', 4) }

func encodeMagVar(v float64) string {
	if v < 0 {
		return fmt.Sprintf("W%04d", int(gomath.Round(-v*10)))
	}
	return fmt.Sprintf("E%04d", int(gomath.Round(v*10)))
}

func encodeAltitude(a Altitude) string {
	switch a.Kind {
	case AltitudeFlightLevel:
		return fmt.Sprintf("FL%03d", a.Value)
	case AltitudeGround:
		return "GND  "
	case AltitudeUnknown:
		return "UNKNN"
	case AltitudeUnlimited:
		return "UNLTD"
	default:
		if a.Value < 0 {
			return fmt.Sprintf("-%04d", -a.Value)
		}
		return fmt.Sprintf("%05d", a.Value)
	}
}

func encodeFixed(v float64, scale float64, width int) string {
	return fmt.Sprintf("%0*d", width, int(gomath.Round(v*scale)))
}

func TestLatLongRoundTrip(t *testing.T) {
	for deg := 0; deg <= 180; deg += 7 {
		for min := 0; min < 60; min += 13 {
			for sec := 0; sec < 6000; sec += 997 {
				for _, sign := range []float64{1, -1} {
					x := sign * (float64(deg) + float64(min)/60 + float64(sec)/360000)

					if deg < 90 {
						s := encodeLatitude(x)
						lat, err := Latitude([]byte(s))
						if err != nil {
							t.Fatalf("%s: unexpected error %v", s, err)
						}
						if *lat != x {
							t.Errorf("%s: got latitude %v, expected %v", s, *lat, x)
						}
						if e := encodeLatitude(*lat); e != s {
							t.Errorf("latitude %s re-encoded as %s", s, e)
						}
					}

					s := encodeLongitude(x)
					long, err := Longitude([]byte(s))
					if err != nil {
						t.Fatalf("%s: unexpected error %v", s, err)
					}
					if *long != x {
						t.Errorf("%s: got longitude %v, expected %v", s, *long, x)
					}
				}
			}
		}
	}

	// The extremes of the valid range.
	for _, s := range []string{"N90000000", "S90000000"} {
		if lat, err := Latitude([]byte(s)); err != nil || gomath.Abs(*lat) != 90 {
			t.Errorf("%s: got %v, %v", s, lat, err)
		}
	}
	for _, s := range []string{"E180000000", "W180000000"} {
		if long, err := Longitude([]byte(s)); err != nil || gomath.Abs(*long) != 180 {
			t.Errorf("%s: got %v, %v", s, long, err)
		}
	}
}

func TestHighPrecisionLatLong(t *testing.T) {
	lat, err := HighPrecisionLatitude([]byte("N40383412345"[:11]))
	if err != nil {
		t.Fatal(err)
	}
	// Use variables so that the expected values are computed with the
	// same floating-point operations as the decoder.
	deg, min, sec := 40, 38, 341234
	expect := float64(deg) + float64(min)/60 + float64(sec)/36000000
	if *lat != expect {
		t.Errorf("got %v, expected %v", *lat, expect)
	}
	if e := encodeAngle(*lat, 2, 'N', 'S', 6); e != "N4038341234" {
		t.Errorf("re-encoded as %s", e)
	}

	long, err := HighPrecisionLongitude([]byte("W073463012345"[:12]))
	if err != nil {
		t.Fatal(err)
	}
	deg, min, sec = 73, 46, 301234
	expect = -(float64(deg) + float64(min)/60 + float64(sec)/36000000)
	if *long != expect {
		t.Errorf("got %v, expected %v", *long, expect)
	}
}

func TestMalformedCoordinates(t *testing.T) {
	for _, test := range []struct {
		s      string
		decode func([]byte) (*float64, error)
		err    error
	}{
		{"X40383412", Latitude, ErrInvalidHemisphere},
		{"N4038341A", Latitude, ErrInvalidNumber},
		{"N91000000", Latitude, ErrOutOfRange},
		{"N90000001", Latitude, ErrOutOfRange},
		{"N40603412", Latitude, ErrOutOfRange},
		{"N40386000", Latitude, ErrOutOfRange},
		{"N4038    ", Latitude, ErrInvalidNumber},
		{"W180000100", Longitude, ErrOutOfRange},
		{"S073463012", Longitude, ErrInvalidHemisphere},
		{"N40", Latitude, ErrInvalidWidth},
	} {
		v, err := test.decode([]byte(test.s))
		if v != nil {
			t.Errorf("%s: unexpectedly decoded %v", test.s, *v)
		}
		if !errors.Is(err, test.err) {
			t.Errorf("%s: got error %v, expected %v", test.s, err, test.err)
		}
	}
}

func TestMagneticVariationRoundTrip(t *testing.T) {
	for n := -1800; n <= 1800; n += 3 {
		x := float64(n) / 10
		s := encodeMagVar(x)
		mv, err := MagneticVariation([]byte(s))
		if err != nil {
			t.Fatalf("%s: %v", s, err)
		}
		if *mv != x {
			t.Errorf("%s: got %v, expected %v", s, *mv, x)
		}
	}

	if mv, err := MagneticVariation([]byte("T0000")); err != nil || *mv != 0 {
		t.Errorf("T0000: got %v, %v", mv, err)
	}
	if mv, err := MagneticVariation([]byte("T0125")); err != nil || *mv != 12.5 {
		t.Errorf("T0125: got %v, %v", mv, err)
	}
	if _, err := MagneticVariation([]byte("N0130")); !errors.Is(err, ErrInvalidHemisphere) {
		t.Errorf("N0130: expected invalid hemisphere, got %v", err)
	}
}

func TestAltitudeRoundTrip(t *testing.T) {
	alts := []Altitude{
		{Kind: AltitudeGround},
		{Kind: AltitudeUnknown},
		{Kind: AltitudeUnlimited},
		FlightLevel(180),
		FlightLevel(600),
		Feet(0),
		Feet(13),
		Feet(4000),
		Feet(17999),
		Feet(-200),
	}
	for _, alt := range alts {
		s := encodeAltitude(alt)
		got, err := ParseAltitude([]byte(s), MSL)
		if err != nil {
			t.Fatalf("%s: %v", s, err)
		}
		if *got != alt {
			t.Errorf("%s: got %+v, expected %+v", s, *got, alt)
		}
		if e := encodeAltitude(*got); e != s {
			t.Errorf("%s re-encoded as %s", s, e)
		}
	}

	if a, _ := ParseAltitude([]byte("SFC  "), MSL); a.Kind != AltitudeGround {
		t.Errorf("SFC: got %+v", *a)
	}
	if a, _ := ParseAltitude([]byte("01500"), AGL); *a != (Altitude{Kind: AltitudeFeet, Value: 1500, Datum: AGL}) {
		t.Errorf("AGL: got %+v", *a)
	}
	if ft, ok := FlightLevel(230).Feet(); !ok || ft != 23000 {
		t.Errorf("FL230: got %d feet", ft)
	}
	if _, ok := (Altitude{Kind: AltitudeUnlimited}).Feet(); ok {
		t.Errorf("unlimited altitude unexpectedly has a value in feet")
	}
	for _, s := range []string{"FLXXX", "12A00", "ABCDE"} {
		if _, err := ParseAltitude([]byte(s), MSL); err == nil {
			t.Errorf("%s: expected an error", s)
		}
	}
}

func TestHundredsOfFeet(t *testing.T) {
	if a, err := HundredsOfFeet([]byte("035")); err != nil || *a != Feet(3500) {
		t.Errorf("035: got %v, %v", a, err)
	}
	if a, err := HundredsOfFeet([]byte("UNK")); err != nil || a.Kind != AltitudeUnknown {
		t.Errorf("UNK: got %v, %v", a, err)
	}
}

func TestFrequencyRoundTrip(t *testing.T) {
	for raw := 10800; raw <= 11795; raw += 5 {
		x := float64(raw) / 100
		s := encodeFixed(x, 100, 5)
		f, err := VHFFrequency([]byte(s))
		if err != nil || *f != x {
			t.Errorf("%s: got %v, %v, expected %v", s, f, err, x)
		}
	}
	for raw := 1900; raw <= 17500; raw += 7 {
		x := float64(raw) / 10
		s := encodeFixed(x, 10, 5)
		f, err := NDBFrequency([]byte(s))
		if err != nil || *f != x {
			t.Errorf("%s: got %v, %v, expected %v", s, f, err, x)
		}
	}
}

func TestBearing(t *testing.T) {
	for n := 0; n < 3600; n++ {
		x := float64(n) / 10
		s := encodeFixed(x, 10, 4)
		b, err := ParseBearing([]byte(s))
		if err != nil {
			t.Fatalf("%s: %v", s, err)
		}
		if b.Degrees != x || b.True {
			t.Errorf("%s: got %+v, expected %v", s, *b, x)
		}
	}

	for _, test := range []struct {
		s      string
		expect Bearing
	}{
		{"3600", Bearing{Degrees: 0}},
		{"360T", Bearing{Degrees: 0, True: true}},
		{"270T", Bearing{Degrees: 270, True: true}},
		{"0005", Bearing{Degrees: 0.5}},
	} {
		b, err := ParseBearing([]byte(test.s))
		if err != nil || *b != test.expect {
			t.Errorf("%s: got %v, %v, expected %+v", test.s, b, err, test.expect)
		}
	}

	for _, s := range []string{"3601", "361T", "12X4"} {
		if b, err := ParseBearing([]byte(s)); err == nil {
			t.Errorf("%s: expected error, got %+v", s, *b)
		}
	}
}

func TestFixedPointFields(t *testing.T) {
	check := func(name string, got *float64, err error, expect float64) {
		t.Helper()
		if err != nil {
			t.Errorf("%s: unexpected error %v", name, err)
		} else if got == nil {
			t.Errorf("%s: unexpectedly absent", name)
		} else if *got != expect {
			t.Errorf("%s: got %v, expected %v", name, *got, expect)
		}
	}

	v, err := RNP([]byte("031"))
	check("RNP 031", v, err, 0.3)
	v, err = RNP([]byte("010"))
	check("RNP 010", v, err, 1)
	v, err = RNP([]byte("020"))
	check("RNP 020", v, err, 2)
	v, err = VerticalAngle([]byte("-300"))
	check("vertical angle", v, err, -3)
	v, err = VerticalAngle([]byte("-285"))
	check("vertical angle", v, err, -2.85)
	v, err = Hundredths([]byte("300"))
	check("glide slope angle", v, err, 3)
	v, err = ArcRadius([]byte("002500"))
	check("arc radius", v, err, 2.5)
	v, err = Tenths([]byte("0125"))
	check("distance", v, err, 12.5)

	d, m, err := DistanceOrTime([]byte("T010"))
	if err != nil || d != nil || m == nil || *m != 1 {
		t.Errorf("T010: got %v %v %v", d, m, err)
	}
	d, m, err = DistanceOrTime([]byte("0080"))
	if err != nil || m != nil || d == nil || *d != 8 {
		t.Errorf("0080: got %v %v %v", d, m, err)
	}

	if e, err := Elevation([]byte("-0010")); err != nil || *e != -10 {
		t.Errorf("elevation: got %v, %v", e, err)
	}
	if e, err := Elevation([]byte("00013")); err != nil || *e != 13 {
		t.Errorf("elevation: got %v, %v", e, err)
	}
	if _, err := Unsigned([]byte("12A")); !errors.Is(err, ErrInvalidNumber) {
		t.Errorf("expected invalid number, got %v", err)
	}
	if _, err := Signed([]byte("-")); !errors.Is(err, ErrInvalidNumber) {
		t.Errorf("expected invalid number, got %v", err)
	}
}

func absent[T any](decode func([]byte) (*T, error)) func([]byte) (bool, error) {
	return func(b []byte) (bool, error) {
		v, err := decode(b)
		return v == nil, err
	}
}

func TestBlankIsAbsent(t *testing.T) {
	for _, test := range []struct {
		name   string
		width  int
		decode func([]byte) (bool, error)
	}{
		{"latitude", 9, absent(Latitude)},
		{"longitude", 10, absent(Longitude)},
		{"high precision latitude", 11, absent(HighPrecisionLatitude)},
		{"high precision longitude", 12, absent(HighPrecisionLongitude)},
		{"magnetic variation", 5, absent(MagneticVariation)},
		{"altitude", 5, absent(MSLAltitude)},
		{"hundreds of feet", 3, absent(HundredsOfFeet)},
		{"VHF frequency", 5, absent(VHFFrequency)},
		{"NDB frequency", 5, absent(NDBFrequency)},
		{"bearing", 4, absent(ParseBearing)},
		{"distance", 4, absent(Tenths)},
		{"arc radius", 6, absent(ArcRadius)},
		{"RNP", 3, absent(RNP)},
		{"vertical angle", 4, absent(VerticalAngle)},
		{"glide slope angle", 3, absent(Hundredths)},
		{"speed", 3, absent(Speed)},
		{"elevation", 5, absent(Elevation)},
		{"unsigned", 4, absent(Unsigned)},
		{"signed", 6, absent(SignedTenths)},
		{"path terminator", 2, absent(ParsePathTerminator)},
		{"boundary via", 2, absent(ParseBoundaryVia)},
	} {
		t.Run(test.name, func(t *testing.T) {
			isAbsent, err := test.decode(bytes.Repeat([]byte{' '}, test.width))
			if err != nil {
				t.Errorf("unexpected error %v", err)
			}
			if !isAbsent {
				t.Errorf("blank field was not decoded as absent")
			}
		})
	}

	d, m, err := DistanceOrTime([]byte("    "))
	if d != nil || m != nil || err != nil {
		t.Errorf("blank distance/time: got %v %v %v", d, m, err)
	}
}

func TestAltitudeConstraint(t *testing.T) {
	a1, a2 := Feet(5000), Feet(3000)

	for _, test := range []struct {
		name          string
		code          byte
		first, second *Altitude
		expect        AltitudeConstraint
	}{
		{"at", ' ', &a1, nil, AltitudeRestriction{Bound: BoundAt, Altitude: a1}},
		{"at or above", '+', &a1, nil, AltitudeRestriction{Bound: BoundAtOrAbove, Altitude: a1}},
		{"at or below", '-', &a1, nil, AltitudeRestriction{Bound: BoundAtOrBelow, Altitude: a1}},
		{"at or above, second field", 'C', nil, &a2,
			AltitudeRestriction{Bound: BoundAtOrAbove, Altitude: a2, SecondField: true}},
		{"between", 'B', &a1, &a2, AltitudeBetween{Upper: a1, Lower: a2}},
		{"glide slope", 'G', &a1, &a2, AltitudeAtGlideSlope{Bound: BoundAt, Altitude: a1, GlideSlope: a2}},
		{"glide slope intercept", 'J', &a1, &a2,
			AltitudeAtGlideSlopeIntercept{Bound: BoundAtOrAbove, Altitude: a1, GlideSlope: a2}},
		{"vertical angle", 'Y', &a1, &a2,
			AltitudeWithVerticalAngle{Bound: BoundAtOrBelow, Altitude: a1, AngleAltitude: a2}},
		{"between with one altitude", 'B', &a1, nil, nil},
		{"between with other altitude", 'B', nil, &a2, nil},
		{"glide slope with one altitude", 'G', &a1, nil, nil},
		{"no altitudes", ' ', nil, nil, nil},
		{"second field missing", 'C', &a1, nil, nil},
		{"unknown code", 'Q', &a1, &a2, nil},
	} {
		t.Run(test.name, func(t *testing.T) {
			c, ok := NewAltitudeConstraint(test.code, test.first, test.second)
			if ok != (test.expect != nil) {
				t.Fatalf("got ok=%v for %+v", ok, c)
			}
			if c != test.expect {
				t.Errorf("got %+v, expected %+v", c, test.expect)
			}
			if c == nil {
				return
			}

			// Rebuilding from the code and the record fields gives the
			// same constraint.
			f, s := Altitudes(c)
			c2, ok := NewAltitudeConstraint(c.Code(), f, s)
			if !ok || c2 != c {
				t.Errorf("rebuilt as %+v", c2)
			}
		})
	}
}

func TestSpeedConstraint(t *testing.T) {
	kt := 210
	if s, ok := NewSpeedConstraint('-', &kt); !ok || *s != (SpeedConstraint{Bound: BoundAtOrBelow, Knots: 210}) {
		t.Errorf("got %v %v", s, ok)
	}
	if s, ok := NewSpeedConstraint(' ', &kt); !ok || s.Bound != BoundAt {
		t.Errorf("got %v %v", s, ok)
	}
	if _, ok := NewSpeedConstraint('+', nil); ok {
		t.Errorf("speed constraint without a speed")
	}
	if _, ok := NewSpeedConstraint('X', &kt); ok {
		t.Errorf("speed constraint with an invalid code")
	}
}

func TestWaypointDescription(t *testing.T) {
	for _, test := range []struct {
		code                         string
		missedFirst, mapt, stepDown  bool
		pathPoint, iaf, faf, holding bool
	}{
		{code: "    "},
		{code: "E  M", mapt: true},
		{code: "E P ", pathPoint: true},
		{code: "E M ", missedFirst: true},
		{code: "E S ", stepDown: true},
		{code: "EBA ", stepDown: true},
		{code: "E  F", faf: true},
		{code: "E  C", iaf: true, holding: true},
		{code: "E  S"},
	} {
		d := WaypointDescription([]byte(test.code))
		got := []bool{d.FirstMissedApproachLeg(), d.MissedApproachPoint(), d.StepDownFix(), d.PathPointFix(),
			d.IAF(), d.FAF(), d.HoldingFix()}
		want := []bool{test.missedFirst, test.mapt, test.stepDown, test.pathPoint, test.iaf, test.faf, test.holding}
		if !slices.Equal(got, want) {
			t.Errorf("%q: got %v, expected %v", test.code, got, want)
		}
	}
}
