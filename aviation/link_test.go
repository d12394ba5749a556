// aviation/link_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"bytes"
	"encoding/json"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/mmp/cifp/arinc424"
	"github.com/mmp/cifp/math"
)

var (
	enrouteHold = record(at{0, "SUSAEPENRTK7"}, at{29, "ABC"}, at{34, "K7D "}, at{38, "0"}, at{39, "0900R"},
		at{47, "10"})
	terminalHold = record(at{0, "SUSAEPKXYZK7"}, at{29, "ABC"}, at{34, "K7D "}, at{38, "0"}, at{39, "2700L"},
		at{47, "10"})
	gridRow = record(at{0, "SUSAAS"}, at{13, "N41W075"}, at{30, "030UNK"})
)

func testDatabase(t *testing.T, lines ...string) (*Result, *Database) {
	t.Helper()
	r, errs := decode(t, cifp(lines...))
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	db, err := Link(r)
	if err != nil {
		t.Fatalf("Link: %v", err)
	}
	return r, db
}

func TestResolveFix(t *testing.T) {
	_, db := testDatabase(t, kxyzAirport, kxyzWaypoint, abcWaypoint, abcVOR)

	for _, test := range []struct {
		name    string
		ident   string
		hint    arinc424.SectionCode
		airport string
		want    string // "waypoint", "vhf" or "" if not found
	}{
		{"no hint prefers enroute waypoints", "ABC", "  ", "", "waypoint"},
		{"hint selects VHF navaid", "ABC", arinc424.SectionVHFNavaid, "", "vhf"},
		{"hint selects enroute waypoint", "ABC", arinc424.SectionEnrouteWaypoint, "KXYZ", "waypoint"},
		{"wrong hint falls back", "ABC", arinc424.SectionNDBNavaid, "", "waypoint"},
		{"terminal waypoint", "FIXAA", arinc424.SectionTerminalWaypoint, "KXYZ", "waypoint"},
		{"terminal waypoint without hint", "FIXAA", "", "KXYZ", "waypoint"},
		{"terminal waypoint needs airport", "FIXAA", "", "", ""},
		{"unknown", "NOPE", "", "KXYZ", ""},
		{"empty", "", "", "KXYZ", ""},
	} {
		t.Run(test.name, func(t *testing.T) {
			f, ok := db.ResolveFix(test.ident, test.hint, test.airport)
			switch test.want {
			case "":
				if ok {
					t.Errorf("unexpectedly resolved to %+v", f)
				}
			case "waypoint":
				if _, isWp := f.(*Waypoint); !ok || !isWp || f.FixIdent() != test.ident {
					t.Errorf("expected waypoint, got %+v", f)
				}
			case "vhf":
				if _, isVHF := f.(*VHFNavaid); !ok || !isVHF {
					t.Errorf("expected VHF navaid, got %+v", f)
				}
			}
		})
	}
}

var (
	kxyzNDB = record(at{0, "SUSAP KXYZK7N"}, at{13, "XY"}, at{19, "K7"}, at{21, "0"}, at{22, "03500"},
		at{32, "N40050000W075050000"})
	kxyzLocalizer = record(at{0, "SUSAP KXYZK7I"}, at{13, "IXYZ"}, at{21, "0"}, at{22, "10950"},
		at{27, "RW09"}, at{32, "N40000000W074590000"})
)

func TestResolveNavaid(t *testing.T) {
	_, db := testDatabase(t, kxyzAirport, kxyzNDB, abcVOR)

	for _, test := range []struct {
		ident, section, airport string
		want                    string // "vhf", "ndb" or "" if not found
	}{
		{"ABC", "", "", "vhf"},
		{"ABC", "D ", "", "vhf"},
		{"ABC", "D", "", "vhf"},
		{"ABC", "DB", "", "vhf"},
		{"ABC", "PN", "KXYZ", "vhf"},
		{"XY", "PN", "KXYZ", "ndb"},
		{"XY", "", "KXYZ", "ndb"},
		{"XY", "D ", "KXYZ", "ndb"},
		{"XY", "PN", "", ""},
		{"NOPE", "DB", "KXYZ", ""},
		{"", "", "KXYZ", ""},
	} {
		n, ok := db.ResolveNavaid(test.ident, test.section, test.airport)
		switch test.want {
		case "":
			if ok {
				t.Errorf("%s/%q/%s: unexpectedly resolved to %+v", test.ident, test.section, test.airport, n)
			}
		case "vhf":
			if _, isVHF := n.(*VHFNavaid); !ok || !isVHF {
				t.Errorf("%s/%q/%s: expected VHF navaid, got %+v", test.ident, test.section, test.airport, n)
			}
		case "ndb":
			if ndb, isNDB := n.(*NDBNavaid); !ok || !isNDB || ndb.Airport != "KXYZ" {
				t.Errorf("%s/%q/%s: expected terminal NDB, got %+v", test.ident, test.section, test.airport, n)
			}
		}
	}
}

func TestRecommendedTerminalNavaids(t *testing.T) {
	_, db := testDatabase(t, kxyzAirport, kxyzRunway, kxyzWaypoint, kxyzNDB, kxyzLocalizer,
		sidLeg("010", "FIXAA", at{50, "XY  K7"}, at{78, "PN"}),
		sidLeg("020", "FIXAA", at{50, "IXYZK7"}, at{78, "PI"}))
	legs := db.Airports["KXYZ"].SIDs["TEST1"][0].Legs

	if n, ok := legs[0].ResolveRecommendedNavaid(); !ok || n.FixIdent() != "XY" {
		t.Errorf("got terminal NDB %v %v", n, ok)
	}
	if loc, ok := legs[0].ResolveRecommendedLocalizer(); ok {
		t.Errorf("NDB reference resolved to localizer %+v", loc)
	}

	loc, ok := legs[1].ResolveRecommendedLocalizer()
	if !ok || loc.Ident != "IXYZ" || loc.Runway != "RW09" {
		t.Fatalf("got localizer %+v %v", loc, ok)
	}
	if rwy, ok := loc.ServedRunway(); !ok || rwy.Ident != "RW09" {
		t.Errorf("got served runway %+v", rwy)
	}
	if n, ok := legs[1].ResolveRecommendedNavaid(); ok {
		t.Errorf("localizer reference resolved to navaid %+v", n)
	}
}

func TestLinkedLegs(t *testing.T) {
	alt := at{82, "+ 05000"}
	r, db := testDatabase(t, kxyzAirport, kxyzWaypoint, abcVOR,
		sidLeg("010", "FIXAA", alt), sidLeg("020", "ABC", at{36, "D "}, at{50, "ABC K7"}, at{78, "D "}))

	sid := db.Airports["KXYZ"].SIDs["TEST1"][0]
	f, ok := sid.Legs[0].ResolveFix()
	if !ok || f.FixIdent() != "FIXAA" {
		t.Errorf("got %v %v", f, ok)
	}
	wp, _ := f.(*Waypoint)
	if wp == nil || !wp.IsTerminal() {
		t.Fatalf("expected terminal waypoint, got %+v", f)
	}
	if ap, ok := wp.ParentAirport(); !ok || ap.Ident != "KXYZ" {
		t.Errorf("got parent %v", ap)
	}
	if n, ok := sid.Legs[1].ResolveRecommendedNavaid(); !ok || n.FixIdent() != "ABC" {
		t.Errorf("got recommended navaid %v %v", n, ok)
	}
	if ap, ok := sid.ParentAirport(); !ok || ap != db.Airports["KXYZ"] {
		t.Errorf("got parent airport %v", ap)
	}
	if d := DistanceTo(mustResolve(t, sid.Legs[0]), mustResolve(t, sid.Legs[1])); d < 60 || d > 90 {
		t.Errorf("got distance %f", d)
	}

	// The original result isn't linked.
	orig := r.Airports["KXYZ"].SIDs["TEST1"][0]
	if _, ok := orig.Legs[0].ResolveFix(); ok {
		t.Errorf("unlinked leg resolved its fix")
	}
	if orig == sid {
		t.Errorf("Link didn't copy the result")
	}
	if _, ok := orig.ParentAirport(); ok {
		t.Errorf("unlinked SID found its airport")
	}
	if c := sid.Legs[0].Altitude; c == nil || c.Code() != '+' {
		t.Errorf("got altitude constraint %v", c)
	}
}

func mustResolve(t *testing.T, l Leg) Fix {
	t.Helper()
	f, ok := l.ResolveFix()
	if !ok {
		t.Fatalf("%s: unable to resolve", l)
	}
	return f
}

func TestHolds(t *testing.T) {
	_, db := testDatabase(t, kxyzAirport, enrouteHold, terminalHold, abcVOR,
		sidLeg("010", "FIXAA"), sidLeg("020", "ABC", at{36, "D "}, at{47, "HM"}))

	if len(db.EnrouteHolds["ABC"]) != 1 || len(db.Airports["KXYZ"].Holds["ABC"]) != 1 {
		t.Fatalf("holds not filed: %+v / %+v", db.EnrouteHolds, db.Airports["KXYZ"].Holds)
	}

	h, ok := db.LookupHold("ABC", "KXYZ")
	if !ok || h.Turn != arinc424.TurnLeft {
		t.Errorf("expected the airport's hold, got %+v", h)
	}
	h, ok = db.LookupHold("ABC", "")
	if !ok || h.Turn != arinc424.TurnRight || h.LegTime == nil || *h.LegTime != 1 {
		t.Errorf("expected the enroute hold, got %+v", h)
	}
	if f, ok := h.ResolveFix(); !ok || f.FixIdent() != "ABC" {
		t.Errorf("hold fix not resolved: %v", f)
	}

	holds := db.Airports["KXYZ"].SIDs["TEST1"][0].Holds()
	if len(holds) != 1 || holds[0].Airport != "KXYZ" {
		t.Errorf("got procedure holds %+v", holds)
	}
}

func TestLookups(t *testing.T) {
	_, db := testDatabase(t, kxyzAirport, kxyzRunway, sidLeg("010", "FIXAA"),
		approachLeg("010", "AAAAA", false))

	if ap, hp, err := db.LookupAirport("KXYZ"); err != nil || ap == nil || hp != nil {
		t.Errorf("got %v %v %v", ap, hp, err)
	}
	if _, _, err := db.LookupAirport("KNOP"); !errors.Is(err, ErrUnknownAirport) {
		t.Errorf("got %v", err)
	}

	sids, stars, approaches, err := db.Procedures("KXYZ")
	if err != nil || !slices.Equal(sids, []string{"TEST1"}) || len(stars) != 0 ||
		!slices.Equal(approaches, []string{"R09"}) {
		t.Errorf("got %v %v %v %v", sids, stars, approaches, err)
	}

	procs, err := db.LookupProcedure("KXYZ", "TEST1")
	if err != nil || len(procs) != 1 || procs[0].String() != "KXYZ/TEST1.TRANS" {
		t.Errorf("got %v %v", procs, err)
	}
	if _, err := db.LookupProcedure("KXYZ", "NONE"); !errors.Is(err, ErrUnknownProcedure) {
		t.Errorf("got %v", err)
	}

	rwy, ok := db.Airports["KXYZ"].Runway("RW09")
	if !ok {
		t.Fatalf("runway not found")
	}
	if ap, ok := rwy.ParentAirport(); !ok || ap.Ident != "KXYZ" {
		t.Errorf("got runway parent %v", ap)
	}
	if hdg, ok := rwy.Heading(); !ok || hdg != 90 {
		t.Errorf("got heading %f %v", hdg, ok)
	}
}

func TestGridMORA(t *testing.T) {
	_, db := testDatabase(t, gridRow)

	if len(db.GridMORAs) != 2 {
		t.Fatalf("got %v", db.GridMORAs)
	}
	// 40.5N 74.5W is in the cell whose northwest corner is 41N 75W.
	cell := CellFor(math.Point2LL{-74.5, 40.5})
	if cell != (GridCell{Latitude: 41, Longitude: -75}) {
		t.Errorf("got cell %v", cell)
	}
	if alt := db.GridMORAs[cell]; alt != arinc424.Feet(3000) {
		t.Errorf("got MORA %v", alt)
	}
	if alt := db.GridMORAs[GridCell{Latitude: 41, Longitude: -74}]; alt.Kind != arinc424.AltitudeUnknown {
		t.Errorf("got MORA %v", alt)
	}
}

func TestGridRowWraps(t *testing.T) {
	var row arinc424.GridMORARow
	row.Latitude, row.Longitude = 10, 170
	for i := range row.MORAs {
		alt := arinc424.Feet(1000 * (i + 1))
		row.MORAs[i] = &alt
	}
	cells := gridRowCells(row)
	if len(cells) != 30 {
		t.Fatalf("got %d cells", len(cells))
	}
	if alt := cells[GridCell{Latitude: 10, Longitude: 179}]; alt != arinc424.Feet(10000) {
		t.Errorf("got %v at 179", alt)
	}
	if alt := cells[GridCell{Latitude: 10, Longitude: -180}]; alt != arinc424.Feet(11000) {
		t.Errorf("got %v at -180", alt)
	}
}

func TestAirwaySegment(t *testing.T) {
	aw := &Airway{Ident: "V16"}
	for i, id := range []string{"AAA", "BBB", "CCC", "DDD"} {
		var af AirwayFix
		af.Sequence = 10 * (i + 1)
		af.Fix.Ident = id
		aw.Fixes = append(aw.Fixes, af)
	}
	idents := func(fixes []AirwayFix) []string {
		var s []string
		for _, f := range fixes {
			s = append(s, f.Fix.Ident)
		}
		return s
	}

	for _, test := range []struct {
		from, to string
		want     []string
	}{
		{"BBB", "DDD", []string{"BBB", "CCC", "DDD"}},
		{"CCC", "AAA", []string{"CCC", "BBB", "AAA"}},
		{"BBB", "BBB", []string{"BBB"}},
	} {
		seg, err := aw.Segment(test.from, test.to)
		if err != nil || !slices.Equal(idents(seg), test.want) {
			t.Errorf("%s-%s: got %v %v", test.from, test.to, idents(seg), err)
		}
	}
	if _, err := aw.Segment("AAA", "ZZZ"); err == nil {
		t.Errorf("expected error for fix not on the airway")
	}
}

func TestDocument(t *testing.T) {
	_, db := testDatabase(t, testHeader, kxyzAirport, kxyzRunway, kxyzWaypoint, abcWaypoint, abcVOR, gridRow,
		sidLeg("010", "FIXAA", at{82, "- 09000"}))

	doc, err := db.Document()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"headers", "vhf_navaids", "ndb_navaids", "enroute_waypoints", "enroute_holds", "airways",
		"grid_mora", "controlled_airspace", "special_use_airspace", "airports", "heliports"}
	if keys := doc.Keys(); !slices.Equal(keys, want) {
		t.Errorf("got keys %v", keys)
	}

	var buf bytes.Buffer
	if err := db.WriteJSON(&buf); err != nil {
		t.Fatal(err)
	}
	if !json.Valid(buf.Bytes()) {
		t.Fatalf("invalid JSON: %s", buf.String())
	}
	s := buf.String()
	for _, sub := range []string{`"KXYZ"`, `"RW09"`, `"FIXAA"`, `"41,-75"`, `"TEST1"`, `"Altitude": "`} {
		if !strings.Contains(s, sub) {
			t.Errorf("%q missing from document", sub)
		}
	}
	// Sections are in order.
	if strings.Index(s, `"vhf_navaids"`) > strings.Index(s, `"airports"`) {
		t.Errorf("sections out of order")
	}
}

func TestSaveLoadResult(t *testing.T) {
	dir := t.TempDir()
	r, _ := testDatabase(t, testHeader, kxyzAirport, kxyzRunway, gridRow, abcVOR,
		sidLeg("010", "FIXAA", at{82, "B 0900005000"}), approachLeg("010", "AAAAA", false),
		approachLeg("020", "BBBBB", true))

	if err := SaveResult(dir, "test", r); err != nil {
		t.Fatalf("SaveResult: %v", err)
	}
	got, _, err := LoadResult(dir, "test")
	if err != nil {
		t.Fatalf("LoadResult: %v", err)
	}

	if got.TotalRecords() != r.TotalRecords() || len(got.Headers) != 1 || got.Headers[0].Cycle != "2210" {
		t.Errorf("got %d records, expected %d", got.TotalRecords(), r.TotalRecords())
	}
	leg := got.Airports["KXYZ"].SIDs["TEST1"][0].Legs[0]
	between, ok := leg.Altitude.(arinc424.AltitudeBetween)
	if !ok || between.Upper != arinc424.Feet(9000) || between.Lower != arinc424.Feet(5000) {
		t.Errorf("altitude constraint not restored: %v", leg.Altitude)
	}
	appr, _ := got.Airports["KXYZ"].Approach("R09")
	if appr == nil || len(appr.Legs) != 1 || len(appr.MissedApproachLegs) != 1 {
		t.Errorf("got approach %+v", appr)
	}
	if got.GridMORAs[GridCell{Latitude: 41, Longitude: -75}] != arinc424.Feet(3000) {
		t.Errorf("grid MORAs not restored: %v", got.GridMORAs)
	}

	// A restored result can be linked.
	db, err := Link(got)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := db.ResolveNavaid("ABC", "", ""); !ok {
		t.Errorf("unable to resolve navaid in restored database")
	}

	if _, _, err := LoadResult(dir, "missing"); err == nil {
		t.Errorf("expected error loading missing snapshot")
	}
}
