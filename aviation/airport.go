// aviation/airport.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"slices"
	"strings"

	"github.com/mmp/cifp/arinc424"
	"github.com/mmp/cifp/util"
)

// Airport holds an airport's primary record along with everything that
// the CIFP defines for it. The child maps are keyed by identifier;
// procedures are keyed by procedure identifier, with one entry for each
// transition, sorted by transition name.
type Airport struct {
	arinc424.Airport

	Runways    map[string]*Runway
	Waypoints  map[string]*Waypoint
	NDBs       map[string]*NDBNavaid
	Localizers map[string]*Localizer
	PathPoints map[string]*PathPoint // keyed by approach identifier
	MSAs       []*MSA
	SIDs       map[string][]*SID
	STARs      map[string][]*STAR
	Approaches map[string][]*Approach
	Holds      map[string][]*Hold // keyed by fix

	db *Database
}

// Heliport mirrors Airport with the smaller set of children that the
// CIFP provides for heliports.
type Heliport struct {
	arinc424.Airport

	Waypoints  map[string]*Waypoint
	Approaches map[string][]*Approach
	MSAs       []*MSA

	db *Database
}

func newAirport(rec arinc424.Airport) *Airport {
	return &Airport{
		Airport:    rec,
		Runways:    make(map[string]*Runway),
		Waypoints:  make(map[string]*Waypoint),
		NDBs:       make(map[string]*NDBNavaid),
		Localizers: make(map[string]*Localizer),
		PathPoints: make(map[string]*PathPoint),
		SIDs:       make(map[string][]*SID),
		STARs:      make(map[string][]*STAR),
		Approaches: make(map[string][]*Approach),
		Holds:      make(map[string][]*Hold),
	}
}

func newHeliport(rec arinc424.Airport) *Heliport {
	return &Heliport{
		Airport:    rec,
		Waypoints:  make(map[string]*Waypoint),
		Approaches: make(map[string][]*Approach),
	}
}

// NumChildren returns the number of entities that the airport owns.
func (ap *Airport) NumChildren() int {
	n := len(ap.Runways) + len(ap.Waypoints) + len(ap.NDBs) + len(ap.Localizers) +
		len(ap.PathPoints) + len(ap.MSAs)
	n += util.SumValues(ap.SIDs, func(s []*SID) int { return len(s) })
	n += util.SumValues(ap.STARs, func(s []*STAR) int { return len(s) })
	n += util.SumValues(ap.Approaches, func(s []*Approach) int { return len(s) })
	n += util.SumValues(ap.Holds, func(s []*Hold) int { return len(s) })
	return n
}

func (hp *Heliport) NumChildren() int {
	return len(hp.Waypoints) + len(hp.MSAs) +
		util.SumValues(hp.Approaches, func(s []*Approach) int { return len(s) })
}

// Runway returns the runway with the given identifier; both "RW04R" and
// "04R" are accepted.
func (ap *Airport) Runway(id string) (*Runway, bool) {
	if !strings.HasPrefix(id, "RW") {
		id = "RW" + id
	}
	rwy, ok := ap.Runways[id]
	return rwy, ok
}

// Approach returns the final approach segment (the entry with no
// transition) of the given approach.
func (ap *Airport) Approach(id string) (*Approach, bool) {
	return commonRoute(ap.Approaches[id])
}

func (hp *Heliport) Approach(id string) (*Approach, bool) {
	return commonRoute(hp.Approaches[id])
}

func commonRoute(ap []*Approach) (*Approach, bool) {
	if idx := slices.IndexFunc(ap, func(a *Approach) bool { return a.Transition == "" }); idx != -1 {
		return ap[idx], true
	}
	return nil, false
}

type Runway struct {
	arinc424.Runway

	db *Database
}

// ParentAirport returns the airport the runway belongs to.
func (r *Runway) ParentAirport() (*Airport, bool) {
	if r.db == nil {
		return nil, false
	}
	ap, ok := r.db.Airports[r.Airport]
	return ap, ok
}

// Localizer returns the runway's primary localizer, if it has one.
func (r *Runway) Localizer() (*Localizer, bool) {
	if r.LocalizerIdent == "" {
		return nil, false
	}
	ap, ok := r.ParentAirport()
	if !ok {
		return nil, false
	}
	loc, ok := ap.Localizers[r.LocalizerIdent]
	return loc, ok
}

// Heading returns the runway's magnetic heading in degrees, or false if
// the CIFP doesn't give one.
func (r *Runway) Heading() (float64, bool) {
	if r.Bearing == nil || r.Bearing.True {
		return 0, false
	}
	return r.Bearing.Degrees, true
}

type Localizer struct {
	arinc424.Localizer

	db *Database
}

func (l *Localizer) ParentAirport() (*Airport, bool) {
	if l.db == nil {
		return nil, false
	}
	ap, ok := l.db.Airports[l.Airport]
	return ap, ok
}

// ServedRunway returns the runway that the localizer serves.
func (l *Localizer) ServedRunway() (*Runway, bool) {
	ap, ok := l.ParentAirport()
	if !ok {
		return nil, false
	}
	return ap.Runway(l.Runway)
}

// HasGlideSlope reports whether a glide slope is co-located with the
// localizer.
func (l *Localizer) HasGlideSlope() bool {
	return l.GlideSlopeLocation != nil
}

// PathPoint is a merged primary and continuation path point record;
// Continuation is nil if there was no continuation record.
type PathPoint struct {
	arinc424.PathPoint

	Continuation *arinc424.PathPointContinuation

	db *Database
}

func (p *PathPoint) ParentAirport() (*Airport, bool) {
	if p.db == nil {
		return nil, false
	}
	ap, ok := p.db.Airports[p.Airport]
	return ap, ok
}

// FinalApproach returns the approach that the path point defines the
// final approach segment for.
func (p *PathPoint) FinalApproach() (*Approach, bool) {
	ap, ok := p.ParentAirport()
	if !ok {
		return nil, false
	}
	return ap.Approach(p.Approach)
}

// MSA is a minimum sector altitude definition; the sectors of all of
// the records sharing a center are merged.
type MSA struct {
	arinc424.MSA

	Radius int // nm

	resolver Resolver
	db       *Database
}

// ResolveCenter returns the fix at the center of the MSA.
func (m *MSA) ResolveCenter() (Fix, bool) {
	if m.resolver == nil {
		return nil, false
	}
	return m.resolver.ResolveFix(m.Center.Ident, m.Center.Section, m.Airport)
}

// SectorAltitude returns the minimum altitude for the sector that
// contains the given bearing from the center.
func (m *MSA) SectorAltitude(bearing float64) (arinc424.Altitude, bool) {
	for _, s := range m.Sectors {
		if bearingInSector(bearing, s.BearingFrom, s.BearingTo) {
			return s.Altitude, true
		}
	}
	return arinc424.Altitude{}, false
}

func bearingInSector(b, from, to float64) bool {
	if from == to {
		// A single sector covering all bearings.
		return true
	}
	if from < to {
		return b >= from && b < to
	}
	return b >= from || b < to
}

// Hold is a published holding pattern, either enroute or for an
// airport.
type Hold struct {
	arinc424.Hold

	resolver Resolver
}

func (h *Hold) ResolveFix() (Fix, bool) {
	if h.resolver == nil {
		return nil, false
	}
	return h.resolver.ResolveFix(h.Fix.Ident, h.Fix.Section, h.Airport)
}
