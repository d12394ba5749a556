// aviation/airway.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"fmt"
	"slices"

	"github.com/mmp/cifp/arinc424"
	"github.com/mmp/cifp/math"
)

type Airway struct {
	Ident     string
	RouteType arinc424.AirwayRouteType
	Level     arinc424.AirwayLevel
	Fixes     []AirwayFix

	db *Database
}

type AirwayFix struct {
	arinc424.AirwayFix

	resolver Resolver
}

func (af AirwayFix) ResolveFix() (Fix, bool) {
	if af.resolver == nil {
		return nil, false
	}
	return af.resolver.ResolveFix(af.Fix.Ident, af.Fix.Section, "")
}

// Segment returns the fixes of the airway between the two given fixes,
// inclusive, in the order of travel from one to the other.
func (a *Airway) Segment(from, to string) ([]AirwayFix, error) {
	idx := func(id string) int {
		return slices.IndexFunc(a.Fixes, func(af AirwayFix) bool { return af.Fix.Ident == id })
	}
	i0, i1 := idx(from), idx(to)
	if i0 == -1 {
		return nil, fmt.Errorf("%s: %s not on airway", a.Ident, from)
	} else if i1 == -1 {
		return nil, fmt.Errorf("%s: %s not on airway", a.Ident, to)
	}

	if i0 <= i1 {
		return slices.Clone(a.Fixes[i0 : i1+1]), nil
	}
	seg := slices.Clone(a.Fixes[i1 : i0+1])
	slices.Reverse(seg)
	return seg, nil
}

// GridCell identifies a one-degree grid MORA cell by the latitude and
// longitude of its northwest corner.
type GridCell struct {
	Latitude  int
	Longitude int
}

// CellFor returns the grid cell containing the given point.
func CellFor(p math.Point2LL) GridCell {
	return GridCell{
		Latitude:  int(math.Ceil(p.Latitude())),
		Longitude: int(math.Floor(p.Longitude())),
	}
}

// gridRowCells expands an AS record into the cells it covers. Longitudes
// wrap at the antimeridian.
func gridRowCells(row arinc424.GridMORARow) map[GridCell]arinc424.Altitude {
	cells := make(map[GridCell]arinc424.Altitude)
	for i, mora := range row.MORAs {
		if mora == nil {
			continue
		}
		lon := row.Longitude + i
		if lon >= 180 {
			lon -= 360
		}
		cells[GridCell{Latitude: row.Latitude, Longitude: lon}] = *mora
	}
	return cells
}
