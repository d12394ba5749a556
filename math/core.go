// math/core.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	gomath "math"

	"golang.org/x/exp/constraints"
)

func Floor(v float64) float64 {
	return gomath.Floor(v)
}

func Ceil(v float64) float64 {
	return gomath.Ceil(v)
}

func Round(v float64) float64 {
	return gomath.Round(v)
}

func Mod(a, b float64) float64 {
	return gomath.Mod(a, b)
}

func Abs[V constraints.Integer | constraints.Float](x V) V {
	if x < 0 {
		return -x
	}
	return x
}

func Sign(v float64) float64 {
	if v > 0 {
		return 1
	} else if v < 0 {
		return -1
	}
	return 0
}

func Clamp[T constraints.Ordered](x T, low T, high T) T {
	if x < low {
		return low
	} else if x > high {
		return high
	}
	return x
}

// NormalizeHeading reduces h to [0,360).
func NormalizeHeading(h float64) float64 {
	if h < 0 {
		return 360 - NormalizeHeading(-h)
	}
	h = Mod(h, 360)
	if h == 360 { // possible after the subtraction above
		return 0
	}
	return h
}

// HeadingDifference returns the minimum difference between two headings,
// always in [0,180].
func HeadingDifference(a, b float64) float64 {
	d := Abs(NormalizeHeading(a) - NormalizeHeading(b))
	if d > 180 {
		d = 360 - d
	}
	return d
}
