// storage/export.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package storage exports a linked CIFP database to SQLite or PostgreSQL
// so that it can be queried with SQL.
package storage

import (
	"fmt"
	"slices"
	"strings"

	"github.com/mmp/cifp/arinc424"
	"github.com/mmp/cifp/aviation"
	"github.com/mmp/cifp/util"
)

type table struct {
	name    string
	columns []string
}

// tables lists the exported tables in the order in which they're
// written; referenced tables come before the tables that refer to them.
var tables = []table{
	{"headers", []string{"number", "cycle", "raw"}},
	{"navaids", []string{"ident", "type", "airport", "region", "frequency", "class", "lat", "lon", "name"}},
	{"waypoints", []string{"ident", "section", "airport", "region", "type", "lat", "lon", "name"}},
	{"airports", []string{"ident", "section", "iata", "region", "ifr", "lat", "lon", "elevation", "mag_var", "name"}},
	{"runways", []string{"airport", "ident", "length", "bearing", "lat", "lon", "threshold_elevation", "localizer"}},
	{"procedures", []string{"id", "airport", "kind", "ident", "transition", "route_type"}},
	{"legs", []string{"procedure_id", "seq", "fix", "fix_section", "path_terminator", "description", "altitude",
		"speed", "course", "distance", "missed"}},
	{"airways", []string{"ident", "route_type", "level"}},
	{"airway_fixes", []string{"airway", "seq", "fix", "region", "section", "direction", "min_altitude"}},
}

func lookupTable(name string) (table, error) {
	i := slices.IndexFunc(tables, func(t table) bool { return t.name == name })
	if i == -1 {
		return table{}, fmt.Errorf("%s: unknown table", name)
	}
	return tables[i], nil
}

// insertQuery returns an INSERT statement for t with "?" placeholders.
func (t table) insertQuery() string {
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", t.name, strings.Join(t.columns, ", "),
		strings.Join(slices.Repeat([]string{"?"}, len(t.columns)), ", "))
}

// statements splits a schema into its individual statements.
func statements(schema string) []string {
	return util.FilterSlice(util.MapSlice(strings.Split(schema, ";"), strings.TrimSpace),
		func(s string) bool { return s != "" })
}

// nullable returns nil for a nil pointer so that it's stored as NULL.
func nullable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullString(s string) any {
	return util.Select[any](s == "", nil, s)
}

func byteString(b byte) any {
	return util.Select[any](b == ' ' || b == 0, nil, string(b))
}

// rowSink receives the rows of an export; values are in the order of
// the table's columns.
type rowSink interface {
	insert(table string, values ...any) error
}

// exporter walks a database and passes its rows to a sink. Rows are
// produced in identifier order so that exports of the same data are
// identical, and procedure ids are assigned sequentially from 1.
type exporter struct {
	sink   rowSink
	procID int64
}

func writeRows(sink rowSink, cifp *aviation.Database) error {
	e := &exporter{sink: sink}
	for _, write := range []func(*aviation.Database) error{
		e.headers, e.navaids, e.waypoints, e.airports, e.airways,
	} {
		if err := write(cifp); err != nil {
			return err
		}
	}
	return nil
}

func (e *exporter) headers(cifp *aviation.Database) error {
	for _, h := range cifp.Headers {
		if err := e.sink.insert("headers", h.Number, nullString(h.Cycle), h.Raw); err != nil {
			return err
		}
	}
	return nil
}

func (e *exporter) vhf(n *aviation.VHFNavaid) error {
	p := n.Position()
	return e.sink.insert("navaids", n.Ident, "VHF", n.Airport, nullString(n.Region), n.Frequency,
		nullString(n.Class), p.Latitude(), p.Longitude(), nullString(n.Name))
}

func (e *exporter) ndb(n *aviation.NDBNavaid) error {
	return e.sink.insert("navaids", n.Ident, "NDB", n.Airport, nullString(n.Region), n.Frequency,
		nullString(n.Class), n.Location.Latitude(), n.Location.Longitude(), nullString(n.Name))
}

func (e *exporter) waypoint(wp *aviation.Waypoint) error {
	return e.sink.insert("waypoints", wp.Ident, string(wp.Section), wp.Airport, nullString(wp.Region),
		nullString(wp.Type), wp.Location.Latitude(), wp.Location.Longitude(), nullString(wp.Name))
}

func (e *exporter) navaids(cifp *aviation.Database) error {
	for _, n := range util.SortedMap(cifp.VHFNavaids) {
		if err := e.vhf(n); err != nil {
			return err
		}
	}
	for _, n := range util.SortedMap(cifp.NDBNavaids) {
		if err := e.ndb(n); err != nil {
			return err
		}
	}
	for _, ap := range util.SortedMap(cifp.Airports) {
		for _, n := range util.SortedMap(ap.NDBs) {
			if err := e.ndb(n); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *exporter) waypoints(cifp *aviation.Database) error {
	for _, wp := range util.SortedMap(cifp.EnrouteWaypoints) {
		if err := e.waypoint(wp); err != nil {
			return err
		}
	}
	for _, ap := range util.SortedMap(cifp.Airports) {
		for _, wp := range util.SortedMap(ap.Waypoints) {
			if err := e.waypoint(wp); err != nil {
				return err
			}
		}
	}
	for _, hp := range util.SortedMap(cifp.Heliports) {
		for _, wp := range util.SortedMap(hp.Waypoints) {
			if err := e.waypoint(wp); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *exporter) airport(ap arinc424.Airport) error {
	return e.sink.insert("airports", ap.Ident, string(ap.Section), nullString(ap.IATA), nullString(ap.Region),
		ap.IFR, ap.Location.Latitude(), ap.Location.Longitude(), ap.Elevation, nullable(ap.MagVar),
		nullString(ap.Name))
}

func (e *exporter) airports(cifp *aviation.Database) error {
	for icao, ap := range util.SortedMap(cifp.Airports) {
		if err := e.airport(ap.Airport); err != nil {
			return err
		}

		for _, rwy := range util.SortedMap(ap.Runways) {
			var brg *float64
			if rwy.Bearing != nil {
				brg = &rwy.Bearing.Degrees
			}
			if err := e.sink.insert("runways", icao, rwy.Ident, nullable(rwy.Length), nullable(brg),
				rwy.Threshold.Latitude(), rwy.Threshold.Longitude(), nullable(rwy.ThresholdElevation),
				nullString(rwy.LocalizerIdent)); err != nil {
				return err
			}
		}

		for _, sids := range util.SortedMap(ap.SIDs) {
			for _, s := range sids {
				if err := e.procedure("SID", string(s.RouteType), &s.Procedure, nil); err != nil {
					return err
				}
			}
		}
		for _, stars := range util.SortedMap(ap.STARs) {
			for _, s := range stars {
				if err := e.procedure("STAR", string(s.RouteType), &s.Procedure, nil); err != nil {
					return err
				}
			}
		}
		if err := e.approaches(ap.Approaches); err != nil {
			return err
		}
	}

	for _, hp := range util.SortedMap(cifp.Heliports) {
		if err := e.airport(hp.Airport); err != nil {
			return err
		}
		if err := e.approaches(hp.Approaches); err != nil {
			return err
		}
	}
	return nil
}

func (e *exporter) approaches(m map[string][]*aviation.Approach) error {
	for _, approaches := range util.SortedMap(m) {
		for _, a := range approaches {
			if err := e.procedure("APPROACH", string(a.RouteType), &a.Procedure, a.MissedApproachLegs); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *exporter) procedure(kind, routeType string, p *aviation.Procedure, missed []aviation.Leg) error {
	e.procID++
	id := e.procID
	if err := e.sink.insert("procedures", id, p.Airport, kind, p.Ident, p.Transition, nullString(routeType)); err != nil {
		return err
	}

	insert := func(legs []aviation.Leg, missed bool) error {
		for _, leg := range legs {
			var fix, section any
			if leg.Fix != nil {
				fix, section = leg.Fix.Ident, nullString(string(leg.Fix.Section))
			}
			var alt, speed any
			if leg.Altitude != nil {
				alt = leg.Altitude.String()
			}
			if leg.Speed != nil {
				speed = leg.Speed.String()
			}
			var course *float64
			if leg.Course != nil {
				course = &leg.Course.Degrees
			}
			if err := e.sink.insert("legs", id, leg.Sequence, fix, section, string(leg.PathTerminator),
				util.Select[any](leg.Description.IsBlank(), nil, leg.Description.String()), alt, speed,
				nullable(course), nullable(leg.Distance), missed); err != nil {
				return err
			}
		}
		return nil
	}
	if err := insert(p.Legs, false); err != nil {
		return err
	}
	return insert(missed, true)
}

func (e *exporter) airways(cifp *aviation.Database) error {
	for ident, aw := range util.SortedMap(cifp.Airways) {
		if err := e.sink.insert("airways", ident, string(aw.RouteType), string(aw.Level)); err != nil {
			return err
		}
		for _, af := range aw.Fixes {
			var minAlt any
			if af.MinAltitude != nil {
				minAlt = af.MinAltitude.String()
			}
			if err := e.sink.insert("airway_fixes", ident, af.Sequence, af.Fix.Ident, nullString(af.Fix.Region),
				nullString(string(af.Fix.Section)), byteString(byte(af.Direction)), minAlt); err != nil {
				return err
			}
		}
	}
	return nil
}
