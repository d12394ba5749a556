// aviation/result.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"github.com/mmp/cifp/arinc424"
	"github.com/mmp/cifp/util"
)

// Result holds the entities decoded from a CIFP file. All of the maps
// are keyed by identifier; a Result is not modified after Builder.Build
// returns it.
type Result struct {
	Headers            []arinc424.Header
	VHFNavaids         map[string]*VHFNavaid
	NDBNavaids         map[string]*NDBNavaid
	EnrouteWaypoints   map[string]*Waypoint
	Airways            map[string]*Airway
	GridMORAs          map[GridCell]arinc424.Altitude
	ControlledAirspace map[string]*ControlledAirspace
	SpecialUseAirspace map[string]*SpecialUseAirspace
	Airports           map[string]*Airport
	Heliports          map[string]*Heliport
	EnrouteHolds       map[string][]*Hold // keyed by fix
}

func newResult() *Result {
	return &Result{
		VHFNavaids:         make(map[string]*VHFNavaid),
		NDBNavaids:         make(map[string]*NDBNavaid),
		EnrouteWaypoints:   make(map[string]*Waypoint),
		Airways:            make(map[string]*Airway),
		GridMORAs:          make(map[GridCell]arinc424.Altitude),
		ControlledAirspace: make(map[string]*ControlledAirspace),
		SpecialUseAirspace: make(map[string]*SpecialUseAirspace),
		Airports:           make(map[string]*Airport),
		Heliports:          make(map[string]*Heliport),
		EnrouteHolds:       make(map[string][]*Hold),
	}
}

// TotalRecords returns the number of entities in the result, including
// the children of airports and heliports. Procedure legs, airway fixes
// and airspace boundaries are counted as part of their entity, not
// individually.
func (r *Result) TotalRecords() int {
	n := len(r.VHFNavaids) + len(r.NDBNavaids) + len(r.EnrouteWaypoints) + len(r.Airways) +
		len(r.GridMORAs) + len(r.ControlledAirspace) + len(r.SpecialUseAirspace) +
		len(r.Airports) + len(r.Heliports)
	n += util.SumValues(r.EnrouteHolds, func(h []*Hold) int { return len(h) })
	n += util.SumValues(r.Airports, func(ap *Airport) int { return ap.NumChildren() })
	n += util.SumValues(r.Heliports, func(hp *Heliport) int { return hp.NumChildren() })
	return n
}

// Stats returns the number of entities of each kind, for reporting.
func (r *Result) Stats() map[string]int {
	s := map[string]int{
		"VHF navaids":          len(r.VHFNavaids),
		"NDB navaids":          len(r.NDBNavaids),
		"enroute waypoints":    len(r.EnrouteWaypoints),
		"airways":              len(r.Airways),
		"grid MORA cells":      len(r.GridMORAs),
		"controlled airspace":  len(r.ControlledAirspace),
		"special use airspace": len(r.SpecialUseAirspace),
		"airports":             len(r.Airports),
		"heliports":            len(r.Heliports),
		"enroute holds":        util.SumValues(r.EnrouteHolds, func(h []*Hold) int { return len(h) }),
	}
	for _, ap := range r.Airports {
		s["runways"] += len(ap.Runways)
		s["terminal waypoints"] += len(ap.Waypoints)
		s["terminal NDBs"] += len(ap.NDBs)
		s["localizers"] += len(ap.Localizers)
		s["path points"] += len(ap.PathPoints)
		s["MSAs"] += len(ap.MSAs)
		s["SIDs"] += util.SumValues(ap.SIDs, func(p []*SID) int { return len(p) })
		s["STARs"] += util.SumValues(ap.STARs, func(p []*STAR) int { return len(p) })
		s["approaches"] += util.SumValues(ap.Approaches, func(p []*Approach) int { return len(p) })
		s["terminal holds"] += util.SumValues(ap.Holds, func(h []*Hold) int { return len(h) })
	}
	for _, hp := range r.Heliports {
		s["heliport waypoints"] += len(hp.Waypoints)
		s["heliport approaches"] += util.SumValues(hp.Approaches, func(p []*Approach) int { return len(p) })
		s["heliport MSAs"] += len(hp.MSAs)
	}
	return s
}
