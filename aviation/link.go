// aviation/link.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"fmt"
	"strings"

	"github.com/mmp/cifp/arinc424"
	"github.com/mmp/cifp/util"

	"github.com/brunoga/deep"
)

// Resolver looks up fixes and navaids by identifier. It is given to the
// legs, airway fixes, holds, MSAs and airspace of a linked Database so
// that they can find what they refer to.
type Resolver interface {
	// ResolveFix finds a fix given its identifier, the section code hint
	// that accompanies the reference (which may be blank) and the airport
	// that the referring record belongs to (which may be empty).
	ResolveFix(ident string, hint arinc424.SectionCode, airport string) (Fix, bool)
	// ResolveNavaid finds a VHF or NDB navaid; section may be empty.
	// Terminal NDBs are only found if airport is given.
	ResolveNavaid(ident string, section string, airport string) (Navaid, bool)
	// ResolveLocalizer finds one of the airport's localizers.
	ResolveLocalizer(ident string, airport string) (*Localizer, bool)
}

// Database is a linked, read-only copy of a Result. Its entities can
// find their parents and the fixes they refer to. It is safe for
// concurrent use.
type Database struct {
	Result
}

// Link makes a Database from a Result. The Result is copied, so it is
// unaffected and may be linked again.
func Link(r *Result) (*Database, error) {
	cp, err := deep.Copy(*r)
	if err != nil {
		return nil, fmt.Errorf("copying result: %w", err)
	}

	db := &Database{Result: cp}
	db.attach()
	return db, nil
}

// attach sets the back-references and resolvers of all entities. It is
// the only mutation of the Database after it is created.
func (db *Database) attach() {
	for _, n := range db.VHFNavaids {
		n.db = db
	}
	for _, n := range db.NDBNavaids {
		n.db = db
	}
	for _, wp := range db.EnrouteWaypoints {
		wp.db = db
	}
	for _, aw := range db.Airways {
		aw.db = db
		for i := range aw.Fixes {
			aw.Fixes[i].resolver = db
		}
	}
	for _, ca := range db.ControlledAirspace {
		ca.resolver = db
		ca.db = db
	}
	for _, holds := range db.EnrouteHolds {
		for _, h := range holds {
			h.resolver = db
		}
	}

	linkLegs := func(p *Procedure) {
		p.db = db
		for i := range p.Legs {
			p.Legs[i].resolver = db
		}
	}
	linkApproaches := func(m map[string][]*Approach) {
		for _, approaches := range m {
			for _, a := range approaches {
				linkLegs(&a.Procedure)
				for i := range a.MissedApproachLegs {
					a.MissedApproachLegs[i].resolver = db
				}
			}
		}
	}
	linkMSAs := func(msas []*MSA) {
		for _, m := range msas {
			m.resolver = db
			m.db = db
		}
	}

	for _, ap := range db.Airports {
		ap.db = db
		for _, rwy := range ap.Runways {
			rwy.db = db
		}
		for _, wp := range ap.Waypoints {
			wp.db = db
		}
		for _, n := range ap.NDBs {
			n.db = db
		}
		for _, loc := range ap.Localizers {
			loc.db = db
		}
		for _, pp := range ap.PathPoints {
			pp.db = db
		}
		for _, sids := range ap.SIDs {
			for _, s := range sids {
				linkLegs(&s.Procedure)
			}
		}
		for _, stars := range ap.STARs {
			for _, s := range stars {
				linkLegs(&s.Procedure)
			}
		}
		for _, holds := range ap.Holds {
			for _, h := range holds {
				h.resolver = db
			}
		}
		linkApproaches(ap.Approaches)
		linkMSAs(ap.MSAs)
	}

	for _, hp := range db.Heliports {
		hp.db = db
		for _, wp := range hp.Waypoints {
			wp.db = db
		}
		linkApproaches(hp.Approaches)
		linkMSAs(hp.MSAs)
	}
}

func (db *Database) lookupFix(section arinc424.SectionCode, ident, airport string) (Fix, bool) {
	switch section {
	case arinc424.SectionEnrouteWaypoint:
		if wp, ok := db.EnrouteWaypoints[ident]; ok {
			return wp, true
		}
	case arinc424.SectionVHFNavaid:
		if n, ok := db.VHFNavaids[ident]; ok {
			return n, true
		}
	case arinc424.SectionNDBNavaid:
		if n, ok := db.NDBNavaids[ident]; ok {
			return n, true
		}
	case arinc424.SectionTerminalWaypoint:
		if ap, ok := db.Airports[airport]; ok {
			if wp, ok := ap.Waypoints[ident]; ok {
				return wp, true
			}
		}
	case arinc424.SectionTerminalNDB:
		if ap, ok := db.Airports[airport]; ok {
			if n, ok := ap.NDBs[ident]; ok {
				return n, true
			}
		}
	case arinc424.SectionHeliportWaypoint:
		if hp, ok := db.Heliports[airport]; ok {
			if wp, ok := hp.Waypoints[ident]; ok {
				return wp, true
			}
		}
	}
	return nil, false
}

// fixFallback is the order in which collections are searched when a
// reference has no section hint or the hinted collection doesn't have
// the fix.
var fixFallback = []arinc424.SectionCode{
	arinc424.SectionEnrouteWaypoint,
	arinc424.SectionVHFNavaid,
	arinc424.SectionNDBNavaid,
	arinc424.SectionTerminalWaypoint,
}

// ResolveFix implements Resolver. Without a hint (or if the hinted
// collection doesn't have the fix) enroute waypoints are searched first,
// then VHF navaids, then NDB navaids and finally, if airport is given,
// the airport's terminal waypoints.
func (db *Database) ResolveFix(ident string, hint arinc424.SectionCode, airport string) (Fix, bool) {
	if ident == "" {
		return nil, false
	}
	if !hint.IsBlank() {
		if f, ok := db.lookupFix(hint, ident, airport); ok {
			return f, true
		}
	}
	for _, section := range fixFallback {
		if section == arinc424.SectionTerminalWaypoint && airport == "" {
			continue
		}
		if f, ok := db.lookupFix(section, ident, airport); ok {
			return f, true
		}
	}
	return nil, false
}

// navaidFallback is the order in which navaids are searched after the
// hinted collection.
var navaidFallback = []arinc424.SectionCode{
	arinc424.SectionVHFNavaid,
	arinc424.SectionNDBNavaid,
	arinc424.SectionTerminalNDB,
}

// ResolveNavaid implements Resolver. section is a section code such as
// "D ", "DB" or "PN" and is matched after trimming spaces, so "D" also
// selects VHF navaids. The hinted collection is searched first; if it
// doesn't have the navaid, VHF navaids, NDB navaids and then the
// airport's terminal NDBs are searched.
func (db *Database) ResolveNavaid(ident string, section string, airport string) (Navaid, bool) {
	if ident == "" {
		return nil, false
	}

	lookup := func(s arinc424.SectionCode) (Navaid, bool) {
		switch s {
		case arinc424.SectionVHFNavaid:
			if n, ok := db.VHFNavaids[ident]; ok {
				return n, true
			}
		case arinc424.SectionNDBNavaid:
			if n, ok := db.NDBNavaids[ident]; ok {
				return n, true
			}
		case arinc424.SectionTerminalNDB:
			if ap, ok := db.Airports[airport]; ok {
				if n, ok := ap.NDBs[ident]; ok {
					return n, true
				}
			}
		}
		return nil, false
	}

	hint := arinc424.SectionCode(strings.TrimSpace(section))
	if hint == "D" {
		hint = arinc424.SectionVHFNavaid
	}
	if n, ok := lookup(hint); ok {
		return n, true
	}
	for _, s := range navaidFallback {
		if n, ok := lookup(s); ok {
			return n, true
		}
	}
	return nil, false
}

// ResolveLocalizer implements Resolver.
func (db *Database) ResolveLocalizer(ident string, airport string) (*Localizer, bool) {
	ap, ok := db.Airports[airport]
	if !ok {
		return nil, false
	}
	loc, ok := ap.Localizers[ident]
	return loc, ok
}

// LookupHold returns the hold at the given fix, preferring the
// airport's holds to enroute holds.
func (db *Database) LookupHold(fix, airport string) (*Hold, bool) {
	if ap, ok := db.Airports[airport]; ok {
		if h := ap.Holds[fix]; len(h) > 0 {
			return h[0], true
		}
	}
	if h := db.EnrouteHolds[fix]; len(h) > 0 {
		return h[0], true
	}
	return nil, false
}

// LookupAirport returns the airport or heliport with the given
// identifier as an *Airport or a *Heliport.
func (db *Database) LookupAirport(icao string) (*Airport, *Heliport, error) {
	if ap, ok := db.Airports[icao]; ok {
		return ap, nil, nil
	}
	if hp, ok := db.Heliports[icao]; ok {
		return nil, hp, nil
	}
	return nil, nil, fmt.Errorf("%s: %w", icao, ErrUnknownAirport)
}

// Procedures returns the names of the given airport's SIDs, STARs and
// approaches.
func (db *Database) Procedures(icao string) (sids, stars, approaches []string, err error) {
	ap, ok := db.Airports[icao]
	if !ok {
		return nil, nil, nil, fmt.Errorf("%s: %w", icao, ErrUnknownAirport)
	}
	return util.SortedMapKeys(ap.SIDs), util.SortedMapKeys(ap.STARs), util.SortedMapKeys(ap.Approaches), nil
}

// LookupProcedure returns all of the transitions of the airport's SID,
// STAR or approach with the given identifier.
func (db *Database) LookupProcedure(icao, ident string) ([]*Procedure, error) {
	ap, ok := db.Airports[icao]
	if !ok {
		return nil, fmt.Errorf("%s: %w", icao, ErrUnknownAirport)
	}

	var procs []*Procedure
	for _, s := range ap.SIDs[ident] {
		procs = append(procs, &s.Procedure)
	}
	for _, s := range ap.STARs[ident] {
		procs = append(procs, &s.Procedure)
	}
	for _, a := range ap.Approaches[ident] {
		procs = append(procs, &a.Procedure)
	}
	if len(procs) == 0 {
		return nil, fmt.Errorf("%s/%s: %w", icao, ident, ErrUnknownProcedure)
	}
	return procs, nil
}
