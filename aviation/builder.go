// aviation/builder.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/mmp/cifp/arinc424"
	"github.com/mmp/cifp/log"
	"github.com/mmp/cifp/util"
)

// Builder accumulates decoded records in file order. Entities that are
// made of multiple records (procedures, airways, airspace, MSAs and path
// points) are only assembled in Build, so records may arrive in any
// order. A Builder is owned by a single decode pass and must not be used
// after Build.
type Builder struct {
	lg     *log.Logger
	built  bool
	counts [arinc424.NumRecordKinds]int

	headers          []arinc424.Header
	vhfNavaids       map[string]arinc424.VHFNavaid
	ndbNavaids       map[string]arinc424.NDBNavaid
	enrouteWaypoints map[string]arinc424.Waypoint
	holds            []arinc424.Hold
	airwayFixes      map[string][]arinc424.AirwayFix
	gridMORAs        map[GridCell]arinc424.Altitude
	controlled       map[string][]arinc424.ControlledAirspace
	restrictive      map[string][]arinc424.RestrictiveAirspace

	airports          map[string]arinc424.Airport
	heliports         map[string]arinc424.Airport
	runways           []arinc424.Runway
	terminalWaypoints []arinc424.Waypoint
	heliportWaypoints []arinc424.Waypoint
	terminalNDBs      []arinc424.NDBNavaid
	localizers        []arinc424.Localizer

	sidLegs      map[string][]arinc424.ProcedureLeg
	starLegs     map[string][]arinc424.ProcedureLeg
	approachLegs map[string][]arinc424.ProcedureLeg
	heliLegs     map[string][]arinc424.ProcedureLeg
	approachSBAS map[string]arinc424.SBASInfo

	pathPoints             map[string]arinc424.PathPoint
	pathPointContinuations map[string]arinc424.PathPointContinuation
	msas                   map[string][]arinc424.MSA
}

func NewBuilder(lg *log.Logger) *Builder {
	return &Builder{
		lg:                     lg,
		vhfNavaids:             make(map[string]arinc424.VHFNavaid),
		ndbNavaids:             make(map[string]arinc424.NDBNavaid),
		enrouteWaypoints:       make(map[string]arinc424.Waypoint),
		airwayFixes:            make(map[string][]arinc424.AirwayFix),
		gridMORAs:              make(map[GridCell]arinc424.Altitude),
		controlled:             make(map[string][]arinc424.ControlledAirspace),
		restrictive:            make(map[string][]arinc424.RestrictiveAirspace),
		airports:               make(map[string]arinc424.Airport),
		heliports:              make(map[string]arinc424.Airport),
		sidLegs:                make(map[string][]arinc424.ProcedureLeg),
		starLegs:               make(map[string][]arinc424.ProcedureLeg),
		approachLegs:           make(map[string][]arinc424.ProcedureLeg),
		heliLegs:               make(map[string][]arinc424.ProcedureLeg),
		approachSBAS:           make(map[string]arinc424.SBASInfo),
		pathPoints:             make(map[string]arinc424.PathPoint),
		pathPointContinuations: make(map[string]arinc424.PathPointContinuation),
		msas:                   make(map[string][]arinc424.MSA),
	}
}

func key(parts ...string) string {
	return strings.Join(parts, "/")
}

// addFirst adds v to m unless there is already an entry for k; the
// first record with a given identifier wins.
func addFirst[K comparable, V any](b *Builder, m map[K]V, k K, v V, kind arinc424.RecordKind) {
	if _, ok := m[k]; ok {
		b.lg.Debug("duplicate record", "kind", kind.String(), "key", k)
		return
	}
	m[k] = v
}

// Add adds a decoded record.
func (b *Builder) Add(rec arinc424.Record) {
	if b.built {
		panic("Builder.Add called after Build")
	}
	if rec == nil {
		return
	}
	b.counts[rec.Kind()]++

	switch r := rec.(type) {
	case arinc424.Header:
		b.headers = append(b.headers, r)

	case arinc424.VHFNavaid:
		addFirst(b, b.vhfNavaids, r.Ident, r, r.Kind())

	case arinc424.NDBNavaid:
		if r.Section == arinc424.SectionTerminalNDB {
			b.terminalNDBs = append(b.terminalNDBs, r)
		} else {
			addFirst(b, b.ndbNavaids, r.Ident, r, r.Kind())
		}

	case arinc424.Waypoint:
		switch r.Section {
		case arinc424.SectionTerminalWaypoint:
			b.terminalWaypoints = append(b.terminalWaypoints, r)
		case arinc424.SectionHeliportWaypoint:
			b.heliportWaypoints = append(b.heliportWaypoints, r)
		default:
			addFirst(b, b.enrouteWaypoints, r.Ident, r, r.Kind())
		}

	case arinc424.Hold:
		b.holds = append(b.holds, r)

	case arinc424.AirwayFix:
		b.airwayFixes[r.Route] = append(b.airwayFixes[r.Route], r)

	case arinc424.GridMORARow:
		for cell, mora := range gridRowCells(r) {
			addFirst(b, b.gridMORAs, cell, mora, r.Kind())
		}

	case arinc424.ControlledAirspace:
		k := key(r.Region, r.Center.Ident, string(r.Type), string(r.MultipleCode))
		b.controlled[k] = append(b.controlled[k], r)

	case arinc424.RestrictiveAirspace:
		k := key(r.Region, r.Designation, string(r.MultipleCode))
		b.restrictive[k] = append(b.restrictive[k], r)

	case arinc424.Airport:
		if r.Section == arinc424.SectionHeliport {
			addFirst(b, b.heliports, r.Ident, r, r.Kind())
		} else {
			addFirst(b, b.airports, r.Ident, r, r.Kind())
		}

	case arinc424.Runway:
		b.runways = append(b.runways, r)

	case arinc424.Localizer:
		b.localizers = append(b.localizers, r)

	case arinc424.ProcedureLeg:
		k := key(r.Airport, r.Ident, r.Transition)
		switch r.Section {
		case arinc424.SectionSID:
			b.sidLegs[k] = append(b.sidLegs[k], r)
		case arinc424.SectionSTAR:
			b.starLegs[k] = append(b.starLegs[k], r)
		case arinc424.SectionHeliportApproach:
			b.heliLegs[k] = append(b.heliLegs[k], r)
		default:
			b.approachLegs[k] = append(b.approachLegs[k], r)
		}

	case arinc424.ApproachContinuation:
		k := key(string(r.Section), r.Airport, r.Ident, r.Transition)
		addFirst(b, b.approachSBAS, k, r.SBAS, r.Kind())

	case arinc424.PathPoint:
		addFirst(b, b.pathPoints, key(r.Airport, r.Approach, r.Runway), r, r.Kind())

	case arinc424.PathPointContinuation:
		addFirst(b, b.pathPointContinuations, key(r.Airport, r.Approach, r.Runway), r, r.Kind())

	case arinc424.MSA:
		k := key(string(r.Section), r.Airport, r.Center.Ident, string(r.MultipleCode))
		b.msas[k] = append(b.msas[k], r)

	default:
		panic(fmt.Sprintf("%T: unhandled record type", rec))
	}
}

// Counts returns the number of records of each kind that have been added.
func (b *Builder) Counts() map[arinc424.RecordKind]int {
	m := make(map[arinc424.RecordKind]int)
	for k, n := range b.counts {
		if n > 0 {
			m[arinc424.RecordKind(k)] = n
		}
	}
	return m
}

func bySequence[T any](seq func(T) int) func(a, b T) int {
	return func(a, b T) int { return cmp.Compare(seq(a), seq(b)) }
}

// Build assembles the accumulated records into entities. Groups of
// records that can't be assembled are reported in the returned errors
// and left out of the Result.
func (b *Builder) Build() (*Result, []error) {
	if b.built {
		panic("Builder.Build called twice")
	}
	b.built = true

	r := newResult()
	r.Headers = b.headers
	var errs []error

	for id, n := range b.vhfNavaids {
		r.VHFNavaids[id] = &VHFNavaid{VHFNavaid: n}
	}
	for id, n := range b.ndbNavaids {
		r.NDBNavaids[id] = &NDBNavaid{NDBNavaid: n}
	}
	for id, wp := range b.enrouteWaypoints {
		r.EnrouteWaypoints[id] = &Waypoint{Waypoint: wp}
	}
	r.GridMORAs = b.gridMORAs

	errs = append(errs, b.buildAirways(r)...)
	errs = append(errs, b.buildAirspace(r)...)

	for id, ap := range b.airports {
		r.Airports[id] = newAirport(ap)
	}
	for id, hp := range b.heliports {
		r.Heliports[id] = newHeliport(hp)
	}

	b.foldAirportChildren(r)
	errs = append(errs, b.buildProcedures(r)...)
	errs = append(errs, b.buildMSAs(r)...)
	b.buildPathPoints(r)
	b.buildHolds(r)

	b.release()
	return r, errs
}

// release drops the accumulated records so that the memory can be
// reclaimed even if the caller holds on to the Builder.
func (b *Builder) release() {
	*b = Builder{lg: b.lg, built: true, counts: b.counts}
}

func (b *Builder) buildAirways(r *Result) []error {
	var errs []error
	for id, fixes := range util.SortedMap(b.airwayFixes) {
		// Route type and level come from the first record seen for the
		// airway.
		first := fixes[0]
		if first.RouteType == ' ' || first.Level == ' ' {
			errs = append(errs, &AggregationError{Kind: EntityAirway, Key: id, Reason: ReasonMissingMetadata,
				Detail: fmt.Sprintf("route type %q level %q", first.RouteType, first.Level)})
			continue
		}
		if rt := arinc424.AirwayRouteType(first.RouteType); !rt.Valid() {
			errs = append(errs, &AggregationError{Kind: EntityAirway, Key: id, Reason: ReasonInvalidRouteType,
				Detail: fmt.Sprintf("%q", first.RouteType)})
			continue
		}
		if lvl := arinc424.AirwayLevel(first.Level); !lvl.Valid() {
			errs = append(errs, &AggregationError{Kind: EntityAirway, Key: id, Reason: ReasonMissingMetadata,
				Detail: fmt.Sprintf("invalid level %q", first.Level)})
			continue
		}

		slices.SortStableFunc(fixes, bySequence(func(af arinc424.AirwayFix) int { return af.Sequence }))
		r.Airways[id] = &Airway{
			Ident:     id,
			RouteType: arinc424.AirwayRouteType(first.RouteType),
			Level:     arinc424.AirwayLevel(first.Level),
			Fixes:     util.MapSlice(fixes, func(af arinc424.AirwayFix) AirwayFix { return AirwayFix{AirwayFix: af} }),
		}
	}
	return errs
}

func sortedBoundaries[T any](recs []T, boundary func(T) arinc424.AirspaceBoundary) []arinc424.AirspaceBoundary {
	b := util.MapSlice(recs, boundary)
	slices.SortStableFunc(b, bySequence(func(b arinc424.AirspaceBoundary) int { return b.Sequence }))
	return b
}

func (b *Builder) buildAirspace(r *Result) []error {
	var errs []error
	for k, recs := range util.SortedMap(b.controlled) {
		if len(recs) == 0 {
			errs = append(errs, &AggregationError{Kind: EntityControlledAirspace, Key: k, Reason: ReasonNoRecords})
			continue
		}
		first := recs[0]
		bounds := sortedBoundaries(recs, func(c arinc424.ControlledAirspace) arinc424.AirspaceBoundary { return c.Boundary })
		r.ControlledAirspace[k] = &ControlledAirspace{
			AirspaceHeader: airspaceHeader(bounds),
			Region:         first.Region,
			Type:           first.Type,
			Center:         first.Center,
			Class:          first.Class,
			MultipleCode:   first.MultipleCode,
			Boundaries:     bounds,
		}
	}

	for k, recs := range util.SortedMap(b.restrictive) {
		if len(recs) == 0 {
			errs = append(errs, &AggregationError{Kind: EntitySpecialUseAirspace, Key: k, Reason: ReasonNoRecords})
			continue
		}
		first := recs[0]
		idx := slices.IndexFunc(recs, func(ra arinc424.RestrictiveAirspace) bool { return ra.Type != ' ' })
		if idx == -1 {
			errs = append(errs, &AggregationError{Kind: EntitySpecialUseAirspace, Key: k, Reason: ReasonMissingRestrictiveType})
			continue
		}
		rt := arinc424.RestrictiveType(recs[idx].Type)
		if !rt.Valid() {
			errs = append(errs, &AggregationError{Kind: EntitySpecialUseAirspace, Key: k, Reason: ReasonMissingRestrictiveType,
				Detail: fmt.Sprintf("invalid type %q", recs[idx].Type)})
			continue
		}
		bounds := sortedBoundaries(recs, func(ra arinc424.RestrictiveAirspace) arinc424.AirspaceBoundary { return ra.Boundary })
		r.SpecialUseAirspace[k] = &SpecialUseAirspace{
			AirspaceHeader: airspaceHeader(bounds),
			Region:         first.Region,
			Type:           rt,
			Designation:    first.Designation,
			MultipleCode:   first.MultipleCode,
			Boundaries:     bounds,
		}
	}
	return errs
}

// foldAirportChildren assigns the single-record children of airports
// and heliports to their parents, one pass per kind of child.
func (b *Builder) foldAirportChildren(r *Result) {
	orphan := func(kind arinc424.RecordKind, airport, id string) {
		b.lg.Debug("record for unknown airport", "kind", kind.String(), "airport", airport, "ident", id)
	}

	for icao, rwys := range util.GroupBy(b.runways, func(rwy arinc424.Runway) string { return rwy.Airport }) {
		ap, ok := r.Airports[icao]
		if !ok {
			orphan(arinc424.KindRunway, icao, rwys[0].Ident)
			continue
		}
		for _, rwy := range rwys {
			addFirst(b, ap.Runways, rwy.Ident, &Runway{Runway: rwy}, arinc424.KindRunway)
		}
	}

	for icao, wps := range util.GroupBy(b.terminalWaypoints, func(wp arinc424.Waypoint) string { return wp.Airport }) {
		ap, ok := r.Airports[icao]
		if !ok {
			orphan(arinc424.KindTerminalWaypoint, icao, wps[0].Ident)
			continue
		}
		for _, wp := range wps {
			addFirst(b, ap.Waypoints, wp.Ident, &Waypoint{Waypoint: wp}, arinc424.KindTerminalWaypoint)
		}
	}

	for icao, wps := range util.GroupBy(b.heliportWaypoints, func(wp arinc424.Waypoint) string { return wp.Airport }) {
		hp, ok := r.Heliports[icao]
		if !ok {
			orphan(arinc424.KindHeliportWaypoint, icao, wps[0].Ident)
			continue
		}
		for _, wp := range wps {
			addFirst(b, hp.Waypoints, wp.Ident, &Waypoint{Waypoint: wp}, arinc424.KindHeliportWaypoint)
		}
	}

	for icao, ndbs := range util.GroupBy(b.terminalNDBs, func(n arinc424.NDBNavaid) string { return n.Airport }) {
		ap, ok := r.Airports[icao]
		if !ok {
			orphan(arinc424.KindTerminalNDB, icao, ndbs[0].Ident)
			continue
		}
		for _, n := range ndbs {
			addFirst(b, ap.NDBs, n.Ident, &NDBNavaid{NDBNavaid: n}, arinc424.KindTerminalNDB)
		}
	}

	for icao, locs := range util.GroupBy(b.localizers, func(l arinc424.Localizer) string { return l.Airport }) {
		ap, ok := r.Airports[icao]
		if !ok {
			orphan(arinc424.KindLocalizer, icao, locs[0].Ident)
			continue
		}
		for _, loc := range locs {
			addFirst(b, ap.Localizers, loc.Ident, &Localizer{Localizer: loc}, arinc424.KindLocalizer)
		}
	}
}

// procedureRouteType checks the route type of the first leg of a
// procedure.
func procedureRouteType(kind EntityKind, k string, rt byte, valid func(byte) bool) error {
	if rt == ' ' || rt == 0 {
		return &AggregationError{Kind: kind, Key: k, Reason: ReasonMissingRouteType}
	} else if !valid(rt) {
		return &AggregationError{Kind: kind, Key: k, Reason: ReasonInvalidRouteType, Detail: fmt.Sprintf("%q", rt)}
	}
	return nil
}

func sortedLegs(legs []arinc424.ProcedureLeg) []Leg {
	slices.SortStableFunc(legs, bySequence(func(l arinc424.ProcedureLeg) int { return l.Sequence }))
	return util.MapSlice(legs, func(l arinc424.ProcedureLeg) Leg { return Leg{ProcedureLeg: l} })
}

func newProcedure(legs []arinc424.ProcedureLeg) Procedure {
	first := legs[0]
	return Procedure{
		Airport:    first.Airport,
		Ident:      first.Ident,
		Transition: first.Transition,
		Legs:       sortedLegs(legs),
	}
}

func (b *Builder) buildProcedures(r *Result) []error {
	var errs []error
	noParent := func(kind arinc424.RecordKind, k string) {
		b.lg.Debug("procedure for unknown airport", "kind", kind.String(), "key", k)
	}

	for k, legs := range util.SortedMap(b.sidLegs) {
		if err := procedureRouteType(EntitySID, k, legs[0].RouteType, func(c byte) bool {
			return arinc424.SIDRouteType(c).Valid()
		}); err != nil {
			errs = append(errs, err)
			continue
		}
		ap, ok := r.Airports[legs[0].Airport]
		if !ok {
			noParent(arinc424.KindSIDLeg, k)
			continue
		}
		sid := &SID{Procedure: newProcedure(legs), RouteType: arinc424.SIDRouteType(legs[0].RouteType)}
		ap.SIDs[sid.Ident] = append(ap.SIDs[sid.Ident], sid)
	}

	for k, legs := range util.SortedMap(b.starLegs) {
		if err := procedureRouteType(EntitySTAR, k, legs[0].RouteType, func(c byte) bool {
			return arinc424.STARRouteType(c).Valid()
		}); err != nil {
			errs = append(errs, err)
			continue
		}
		ap, ok := r.Airports[legs[0].Airport]
		if !ok {
			noParent(arinc424.KindSTARLeg, k)
			continue
		}
		star := &STAR{Procedure: newProcedure(legs), RouteType: arinc424.STARRouteType(legs[0].RouteType)}
		ap.STARs[star.Ident] = append(ap.STARs[star.Ident], star)
	}

	makeApproach := func(kind EntityKind, k string, legs []arinc424.ProcedureLeg) (*Approach, error) {
		if err := procedureRouteType(kind, k, legs[0].RouteType, func(c byte) bool {
			return arinc424.ApproachRouteType(c).Valid()
		}); err != nil {
			return nil, err
		}
		ap := &Approach{
			Procedure: newProcedure(legs),
			RouteType: arinc424.ApproachRouteType(legs[0].RouteType),
			Heliport:  kind == EntityHeliportApproach,
		}
		ap.Legs, ap.MissedApproachLegs = splitMissedApproach(ap.Legs)

		section := util.Select(ap.Heliport, arinc424.SectionHeliportApproach, arinc424.SectionApproach)
		if sbas, ok := b.approachSBAS[key(string(section), ap.Airport, ap.Ident, ap.Transition)]; ok {
			ap.SBAS = &sbas
		}
		return ap, nil
	}

	for k, legs := range util.SortedMap(b.approachLegs) {
		appr, err := makeApproach(EntityApproach, k, legs)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		ap, ok := r.Airports[appr.Airport]
		if !ok {
			noParent(arinc424.KindApproachLeg, k)
			continue
		}
		ap.Approaches[appr.Ident] = append(ap.Approaches[appr.Ident], appr)
	}

	for k, legs := range util.SortedMap(b.heliLegs) {
		appr, err := makeApproach(EntityHeliportApproach, k, legs)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		hp, ok := r.Heliports[appr.Airport]
		if !ok {
			noParent(arinc424.KindHeliportApproachLeg, k)
			continue
		}
		hp.Approaches[appr.Ident] = append(hp.Approaches[appr.Ident], appr)
	}

	for _, ap := range r.Airports {
		sortTransitions(ap.SIDs, func(s *SID) string { return s.Transition })
		sortTransitions(ap.STARs, func(s *STAR) string { return s.Transition })
		sortTransitions(ap.Approaches, func(a *Approach) string { return a.Transition })
	}
	for _, hp := range r.Heliports {
		sortTransitions(hp.Approaches, func(a *Approach) string { return a.Transition })
	}
	return errs
}

func sortTransitions[T any](m map[string][]T, transition func(T) string) {
	for _, procs := range m {
		slices.SortFunc(procs, func(a, b T) int { return strings.Compare(transition(a), transition(b)) })
	}
}

func (b *Builder) buildMSAs(r *Result) []error {
	var errs []error
	for k, recs := range util.SortedMap(b.msas) {
		msa := &MSA{MSA: recs[0]}
		msa.Sectors = nil
		for _, rec := range recs {
			msa.Sectors = append(msa.Sectors, rec.Sectors...)
			if msa.BearingReference == 0 {
				msa.BearingReference = rec.BearingReference
			}
		}
		if msa.BearingReference == 0 {
			msa.BearingReference = arinc424.BearingMagnetic
		}

		idx := slices.IndexFunc(msa.Sectors, func(s arinc424.MSASector) bool { return s.Radius != nil })
		if idx == -1 {
			errs = append(errs, &AggregationError{Kind: EntityMSA, Key: k, Reason: ReasonMissingRadius})
			continue
		}
		msa.Radius = *msa.Sectors[idx].Radius

		if msa.Section == arinc424.SectionHeliportMSA {
			if hp, ok := r.Heliports[msa.Airport]; ok {
				hp.MSAs = append(hp.MSAs, msa)
			} else {
				b.lg.Debug("MSA for unknown heliport", "key", k)
			}
		} else if ap, ok := r.Airports[msa.Airport]; ok {
			ap.MSAs = append(ap.MSAs, msa)
		} else {
			b.lg.Debug("MSA for unknown airport", "key", k)
		}
	}
	return errs
}

// buildPathPoints merges path point continuations into their primary
// records. Continuations without a primary record are dropped.
func (b *Builder) buildPathPoints(r *Result) {
	for k, pp := range util.SortedMap(b.pathPoints) {
		ap, ok := r.Airports[pp.Airport]
		if !ok {
			b.lg.Debug("path point for unknown airport", "key", k)
			continue
		}
		p := &PathPoint{PathPoint: pp}
		if c, ok := b.pathPointContinuations[k]; ok {
			p.Continuation = &c
		}
		addFirst(b, ap.PathPoints, pp.Approach, p, arinc424.KindPathPoint)
	}
}

func (b *Builder) buildHolds(r *Result) {
	for _, h := range b.holds {
		hold := &Hold{Hold: h}
		if h.Airport == "" {
			r.EnrouteHolds[h.Fix.Ident] = append(r.EnrouteHolds[h.Fix.Ident], hold)
		} else if ap, ok := r.Airports[h.Airport]; ok {
			ap.Holds[h.Fix.Ident] = append(ap.Holds[h.Fix.Ident], hold)
		} else {
			b.lg.Debug("hold for unknown airport", "airport", h.Airport, "fix", h.Fix.Ident)
		}
	}
}
