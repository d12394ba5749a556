// aviation/navaid.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"github.com/mmp/cifp/arinc424"
	"github.com/mmp/cifp/math"
)

// Fix is implemented by the entities that a procedure leg, airway or
// MSA can refer to: *VHFNavaid, *NDBNavaid and *Waypoint (both enroute
// and terminal).
type Fix interface {
	FixIdent() string
	Position() math.Point2LL
	isFix()
}

// Navaid is implemented by *VHFNavaid and *NDBNavaid.
type Navaid interface {
	Fix
	isNavaid()
}

type VHFNavaid struct {
	arinc424.VHFNavaid

	db *Database
}

type NDBNavaid struct {
	arinc424.NDBNavaid

	db *Database
}

// Waypoint is an enroute waypoint, a terminal waypoint or a heliport
// waypoint; the embedded Section says which.
type Waypoint struct {
	arinc424.Waypoint

	db *Database
}

func (n *VHFNavaid) FixIdent() string { return n.Ident }
func (n *NDBNavaid) FixIdent() string { return n.Ident }
func (w *Waypoint) FixIdent() string  { return w.Ident }

func (n *NDBNavaid) Position() math.Point2LL { return n.Location }
func (w *Waypoint) Position() math.Point2LL  { return w.Location }

func (*VHFNavaid) isFix()    {}
func (*NDBNavaid) isFix()    {}
func (*Waypoint) isFix()     {}
func (*VHFNavaid) isNavaid() {}
func (*NDBNavaid) isNavaid() {}

// IsTerminal reports whether the waypoint belongs to an airport or
// heliport.
func (w *Waypoint) IsTerminal() bool {
	return w.Section != arinc424.SectionEnrouteWaypoint
}

// ParentAirport returns the airport of a terminal navaid; it returns
// false for enroute navaids and for unlinked entities.
func (n *NDBNavaid) ParentAirport() (*Airport, bool) {
	if n.db == nil || n.Airport == "" {
		return nil, false
	}
	ap, ok := n.db.Airports[n.Airport]
	return ap, ok
}

// ParentAirport returns the airport that a terminal waypoint belongs to.
// Heliport waypoints are found with ParentHeliport.
func (w *Waypoint) ParentAirport() (*Airport, bool) {
	if w.db == nil || w.Section != arinc424.SectionTerminalWaypoint {
		return nil, false
	}
	ap, ok := w.db.Airports[w.Airport]
	return ap, ok
}

func (w *Waypoint) ParentHeliport() (*Heliport, bool) {
	if w.db == nil || w.Section != arinc424.SectionHeliportWaypoint {
		return nil, false
	}
	hp, ok := w.db.Heliports[w.Airport]
	return hp, ok
}

// DistanceTo returns the distance in nautical miles between two fixes.
func DistanceTo(a, b Fix) float64 {
	return math.NMDistance2LL(a.Position(), b.Position())
}
