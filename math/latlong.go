// math/latlong.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	"fmt"
	gomath "math"
)

const NMPerLatitude = 60

const NauticalMilesToFeet = 6076.12
const FeetToNauticalMiles = 1 / NauticalMilesToFeet
const MetersToFeet = 3.28084

///////////////////////////////////////////////////////////////////////////
// Point2LL

// Point2LL represents a 2D point on the Earth in latitude-longitude.
// Important: 0 (x) is longitude, 1 (y) is latitude
//
// Unlike the scope code, navigation data keeps float64 precision so that
// hundredths (and ten-thousandths) of an arc second survive decoding.
type Point2LL [2]float64

func (p Point2LL) Longitude() float64 {
	return p[0]
}

func (p Point2LL) Latitude() float64 {
	return p[1]
}

func (p Point2LL) IsZero() bool {
	return p[0] == 0 && p[1] == 0
}

// DDString returns the position in decimal degrees, e.g.:
// (39.860901, -75.274864)
func (p Point2LL) DDString() string {
	return fmt.Sprintf("(%f, %f)", p[1], p[0]) // latitude, longitude
}

// DMSString returns the position in degrees minutes, seconds, e.g.
// N039.51.39.243,W075.16.29.511
func (p Point2LL) DMSString() string {
	format := func(v float64) string {
		// Work in integer milliseconds of arc to avoid 59.9999 artifacts.
		ms := int64(Round(v * 3600000))
		deg := ms / 3600000
		ms -= deg * 3600000
		min := ms / 60000
		ms -= min * 60000
		return fmt.Sprintf("%03d.%02d.%02d.%03d", deg, min, ms/1000, ms%1000)
	}

	var s string
	if p[1] >= 0 {
		s = "N"
	} else {
		s = "S"
	}
	s += format(Abs(p[1]))

	if p[0] >= 0 {
		s += ",E"
	} else {
		s += ",W"
	}
	s += format(Abs(p[0]))

	return s
}

// NMDistance2LL returns the great circle distance between two points in
// nautical miles.
func NMDistance2LL(a Point2LL, b Point2LL) float64 {
	// https://www.movable-type.co.uk/scripts/latlong.html
	const R = 6371000 // metres
	rad := func(d float64) float64 { return d / 180 * gomath.Pi }
	lat1, lon1 := rad(a[1]), rad(a[0])
	lat2, lon2 := rad(b[1]), rad(b[0])
	dlat, dlon := lat2-lat1, lon2-lon1

	x := gomath.Sin(dlat/2)*gomath.Sin(dlat/2) +
		gomath.Cos(lat1)*gomath.Cos(lat2)*gomath.Sin(dlon/2)*gomath.Sin(dlon/2)
	c := 2 * gomath.Atan2(gomath.Sqrt(x), gomath.Sqrt(1-x))
	dm := R * c // in metres

	return dm * MetersToFeet * FeetToNauticalMiles
}
