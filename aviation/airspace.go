// aviation/airspace.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"github.com/mmp/cifp/arinc424"
	"github.com/mmp/cifp/math"
)

// AirspaceHeader holds the properties of an airspace that are given once,
// in the first boundary record that has them.
type AirspaceHeader struct {
	Name       string
	LowerLimit *arinc424.Altitude
	UpperLimit *arinc424.Altitude
}

type ControlledAirspace struct {
	AirspaceHeader

	Region       string
	Type         arinc424.ControlledAirspaceType
	Center       arinc424.FixRef
	Class        byte
	MultipleCode byte
	Boundaries   []arinc424.AirspaceBoundary

	resolver Resolver
	db       *Database
}

// SpecialUseAirspace is a restrictive airspace: prohibited, restricted,
// MOA, warning area, etc.
type SpecialUseAirspace struct {
	AirspaceHeader

	Region       string
	Type         arinc424.RestrictiveType
	Designation  string
	MultipleCode byte
	Boundaries   []arinc424.AirspaceBoundary
}

// ResolveCenter returns the fix that the airspace is centered on.
func (ca *ControlledAirspace) ResolveCenter() (Fix, bool) {
	if ca.resolver == nil {
		return nil, false
	}
	return ca.resolver.ResolveFix(ca.Center.Ident, ca.Center.Section, "")
}

// CenterAirport returns the airport at the center of the airspace; class
// B, C and D airspace is centered on an airport.
func (ca *ControlledAirspace) CenterAirport() (*Airport, bool) {
	return parentAirport(ca.db, ca.Center.Ident)
}

func airspaceHeader(boundaries []arinc424.AirspaceBoundary) AirspaceHeader {
	var h AirspaceHeader
	for _, b := range boundaries {
		if h.Name == "" {
			h.Name = b.Name
		}
		if h.LowerLimit == nil {
			h.LowerLimit = b.LowerLimit
		}
		if h.UpperLimit == nil {
			h.UpperLimit = b.UpperLimit
		}
	}
	return h
}

// Vertices returns the boundary points of the airspace in order. Arcs
// and circles are returned as their defining points only.
func Vertices(boundaries []arinc424.AirspaceBoundary) []math.Point2LL {
	var v []math.Point2LL
	for _, b := range boundaries {
		if b.Location != nil {
			v = append(v, *b.Location)
		} else if b.ArcOrigin != nil {
			v = append(v, *b.ArcOrigin)
		}
	}
	return v
}
