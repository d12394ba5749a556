// aviation/procedure.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/mmp/cifp/arinc424"

	"github.com/vmihailenco/msgpack/v5"
)

// Procedure holds what SIDs, STARs and approaches have in common: one
// transition (or the common route, if Transition is empty) of a
// procedure at an airport or heliport.
type Procedure struct {
	Airport    string
	Ident      string
	Transition string
	Legs       []Leg

	db *Database
}

func (p *Procedure) String() string {
	if p.Transition == "" {
		return p.Airport + "/" + p.Ident
	}
	return p.Airport + "/" + p.Ident + "." + p.Transition
}

// Fixes returns the identifiers of the fixes along the procedure, in
// order.
func (p *Procedure) Fixes() []string {
	var fixes []string
	for _, leg := range p.Legs {
		if leg.Fix != nil {
			fixes = append(fixes, leg.Fix.Ident)
		}
	}
	return fixes
}

// Holds returns the published holds at the fixes of the procedure's
// hold legs. Airport holds are preferred to enroute holds at the same
// fix.
func (p *Procedure) Holds() []*Hold {
	if p.db == nil {
		return nil
	}
	var holds []*Hold
	for _, leg := range p.Legs {
		if !leg.PathTerminator.IsHold() || leg.Fix == nil {
			continue
		}
		if h, ok := p.db.LookupHold(leg.Fix.Ident, p.Airport); ok {
			holds = append(holds, h)
		}
	}
	return holds
}

type SID struct {
	Procedure

	RouteType arinc424.SIDRouteType
}

func (s *SID) ParentAirport() (*Airport, bool) {
	return parentAirport(s.db, s.Airport)
}

type STAR struct {
	Procedure

	RouteType arinc424.STARRouteType
}

func (s *STAR) ParentAirport() (*Airport, bool) {
	return parentAirport(s.db, s.Airport)
}

// Approach is an approach transition or final approach. Legs from the
// first leg marked as the start of the missed approach onward are in
// MissedApproachLegs rather than Legs.
type Approach struct {
	Procedure

	RouteType          arinc424.ApproachRouteType
	MissedApproachLegs []Leg
	SBAS               *arinc424.SBASInfo
	Heliport           bool
}

func (a *Approach) ParentAirport() (*Airport, bool) {
	if a.Heliport {
		return nil, false
	}
	return parentAirport(a.db, a.Airport)
}

func (a *Approach) ParentHeliport() (*Heliport, bool) {
	if !a.Heliport || a.db == nil {
		return nil, false
	}
	hp, ok := a.db.Heliports[a.Airport]
	return hp, ok
}

// Runway returns the runway that the approach is to, derived from the
// approach identifier (e.g., "04R" for "I04R"). It returns false for
// circling approaches.
func (a *Approach) Runway() (string, bool) {
	id := a.Ident
	if len(id) < 3 || !unicode.IsDigit(rune(id[1])) || !unicode.IsDigit(rune(id[2])) {
		return "", false
	}
	rwy := id[1:3]
	if len(id) > 3 && strings.ContainsRune("LRC", rune(id[3])) {
		rwy += id[3:4]
	}
	return rwy, true
}

// AllLegs returns the approach legs followed by the missed approach
// legs.
func (a *Approach) AllLegs() []Leg {
	return append(append([]Leg(nil), a.Legs...), a.MissedApproachLegs...)
}

func parentAirport(db *Database, icao string) (*Airport, bool) {
	if db == nil {
		return nil, false
	}
	ap, ok := db.Airports[icao]
	return ap, ok
}

// splitMissedApproach splits legs, which must be sorted by sequence
// number, at the first leg marked as the start of the missed approach.
// Only the first marked leg is considered; everything after it belongs
// to the missed approach.
func splitMissedApproach(legs []Leg) (approach, missed []Leg) {
	for i, leg := range legs {
		if leg.IsMissedApproach() {
			return legs[:i:i], legs[i:]
		}
	}
	return legs, nil
}

///////////////////////////////////////////////////////////////////////////
// Leg

// Leg is a procedure leg record along with the resolver used to look up
// the fixes and navaids it refers to.
type Leg struct {
	arinc424.ProcedureLeg

	resolver Resolver
}

func (l Leg) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%03d %s", l.Sequence, l.PathTerminator)
	if l.Fix != nil {
		sb.WriteString(" " + l.Fix.Ident)
	}
	if l.Course != nil {
		sb.WriteString(" " + l.Course.String())
	}
	if l.Altitude != nil {
		sb.WriteString(" " + l.Altitude.String())
	}
	if l.Speed != nil {
		sb.WriteString(" " + l.Speed.String())
	}
	if d := l.Description; d.IAF() {
		sb.WriteString(" IAF")
	} else if d.FAF() {
		sb.WriteString(" FAF")
	}
	return sb.String()
}

// ResolveFix returns the fix that the leg is to or from.
func (l Leg) ResolveFix() (Fix, bool) {
	if l.Fix == nil || l.resolver == nil {
		return nil, false
	}
	return l.resolver.ResolveFix(l.Fix.Ident, l.Fix.Section, l.Airport)
}

// ResolveRecommendedNavaid returns the navaid that theta and rho are
// measured from. A localizer reference is resolved with
// ResolveRecommendedLocalizer instead.
func (l Leg) ResolveRecommendedNavaid() (Navaid, bool) {
	if l.RecommendedNavaid == nil || l.resolver == nil ||
		l.RecommendedNavaid.Section == arinc424.SectionLocalizer {
		return nil, false
	}
	return l.resolver.ResolveNavaid(l.RecommendedNavaid.Ident, string(l.RecommendedNavaid.Section), l.Airport)
}

// ResolveRecommendedLocalizer returns the leg's recommended navaid if it
// is one of the airport's localizers.
func (l Leg) ResolveRecommendedLocalizer() (*Localizer, bool) {
	if l.RecommendedNavaid == nil || l.resolver == nil ||
		l.RecommendedNavaid.Section != arinc424.SectionLocalizer {
		return nil, false
	}
	return l.resolver.ResolveLocalizer(l.RecommendedNavaid.Ident, l.Airport)
}

// ResolveCenterFix returns the center of an RF leg's arc.
func (l Leg) ResolveCenterFix() (Fix, bool) {
	if l.CenterFix == nil || l.resolver == nil {
		return nil, false
	}
	return l.resolver.ResolveFix(l.CenterFix.Ident, l.CenterFix.Section, l.Airport)
}

// msgpack can't decode into the AltitudeConstraint interface, so legs
// are stored with the altitude description code and the two altitude
// fields and the constraint is rebuilt when they are decoded.
type legWire struct {
	Leg          arinc424.ProcedureLeg
	AltitudeCode byte
	Altitude1    *arinc424.Altitude
	Altitude2    *arinc424.Altitude
}

func (l Leg) EncodeMsgpack(enc *msgpack.Encoder) error {
	w := legWire{Leg: l.ProcedureLeg}
	if l.Altitude != nil {
		w.AltitudeCode = l.Altitude.Code()
		w.Altitude1, w.Altitude2 = arinc424.Altitudes(l.Altitude)
	}
	return enc.Encode(w)
}

func (l *Leg) DecodeMsgpack(dec *msgpack.Decoder) error {
	var w legWire
	if err := dec.Decode(&w); err != nil {
		return err
	}
	l.ProcedureLeg = w.Leg
	if w.AltitudeCode != 0 {
		var ok bool
		if l.Altitude, ok = arinc424.NewAltitudeConstraint(w.AltitudeCode, w.Altitude1, w.Altitude2); !ok {
			return fmt.Errorf("%s %s: invalid altitude constraint %q", l.Airport, l.Ident, w.AltitudeCode)
		}
	}
	return nil
}
