// aviation/decode_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"bytes"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/mmp/cifp/arinc424"
)

// at places a field at a zero-based column of a test record.
type at struct {
	col int
	s   string
}

func record(fields ...at) string {
	b := bytes.Repeat([]byte{' '}, arinc424.RecordLength)
	for _, f := range fields {
		copy(b[f.col:], f.s)
	}
	return string(b)
}

func cifp(lines ...string) []byte {
	return []byte(strings.Join(lines, "\n") + "\n")
}

const testHeader = "HDR01FAACIFP18      001P013203970722210  08-SEP-2022 09:55:36  U.S.A. DOT FAA"

var (
	kxyzAirport = record(at{0, "SUSAP KXYZK7A"}, at{13, "XYZ"}, at{21, "0"}, at{27, "080YH"},
		at{32, "N40000000W075000000"}, at{51, "W0110"}, at{56, "00100"}, at{93, "TEST AIRPORT"})
	kxyzRunway = record(at{0, "SUSAP KXYZK7G"}, at{13, "RW09"}, at{21, "0"}, at{22, "080000900"},
		at{32, "N40000000W075010000"}, at{66, "00100"})
	kxyzWaypoint = record(at{0, "SUSAP KXYZK7C"}, at{13, "FIXAA"}, at{19, "K7"}, at{21, "0"}, at{26, "W"},
		at{32, "N40100000W075100000"})
	abcWaypoint = record(at{0, "SUSAEAENRTK7"}, at{13, "ABC"}, at{19, "K7"}, at{21, "0"}, at{26, "C"},
		at{32, "N41000000W074000000"})
	abcVOR = record(at{0, "SUSAD "}, at{13, "ABC"}, at{19, "K7"}, at{21, "0"}, at{22, "11190VTHW "},
		at{32, "N41100000W074100000"}, at{93, "ABC VORTAC"})
)

func sidLeg(seq, fix string, extra ...at) string {
	return record(append([]at{{0, "SUSAP KXYZK7D"}, {13, "TEST1"}, {19, "3"}, {20, "TRANS"}, {26, seq},
		{29, fix}, {34, "K7"}, {36, "PC"}, {38, "0"}, {47, "TF"}}, extra...)...)
}

func approachLeg(seq, fix string, missed bool) string {
	fields := []at{{0, "SUSAP KXYZK7F"}, {13, "R09"}, {19, "R"}, {26, seq}, {29, fix}, {34, "K7"}, {36, "EA"},
		{38, "0"}, {47, "TF"}}
	if missed {
		fields = append(fields, at{41, "M"})
	}
	return record(fields...)
}

type collectedError struct {
	err  error
	line int
}

func decode(t *testing.T, b []byte) (*Result, []collectedError) {
	t.Helper()
	var errs []collectedError
	r, err := DecodeBytes(b, Options{OnError: func(err error, line int) {
		errs = append(errs, collectedError{err: err, line: line})
	}})
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	return r, errs
}

func legSequences(legs []Leg) []int {
	var s []int
	for _, l := range legs {
		s = append(s, l.Sequence)
	}
	return s
}

func TestEndToEnd(t *testing.T) {
	r, errs := decode(t, cifp(testHeader, kxyzAirport, sidLeg("030", "FIXCC"), sidLeg("010", "FIXAA"),
		sidLeg("020", "FIXBB")))
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	if len(r.Headers) != 1 || r.Headers[0].Cycle != "2210" {
		t.Errorf("got headers %+v", r.Headers)
	}
	if len(r.Airports) != 1 {
		t.Fatalf("expected 1 airport, got %d", len(r.Airports))
	}
	ap, ok := r.Airports["KXYZ"]
	if !ok {
		t.Fatalf("KXYZ not found")
	}
	if ap.Elevation != 100 || ap.Location.Latitude() != 40 || ap.Location.Longitude() != -75 {
		t.Errorf("got airport %+v", ap.Airport)
	}

	sids := ap.SIDs["TEST1"]
	if len(ap.SIDs) != 1 || len(sids) != 1 {
		t.Fatalf("expected one SID transition, got %+v", ap.SIDs)
	}
	sid := sids[0]
	if sid.Transition != "TRANS" || sid.RouteType != arinc424.SIDEnrouteTransition {
		t.Errorf("got SID %s route type %c", sid, sid.RouteType)
	}
	if seq := legSequences(sid.Legs); !slices.Equal(seq, []int{10, 20, 30}) {
		t.Errorf("got leg sequence %v", seq)
	}
	if fixes := sid.Fixes(); !slices.Equal(fixes, []string{"FIXAA", "FIXBB", "FIXCC"}) {
		t.Errorf("got fixes %v", fixes)
	}
	if n := r.TotalRecords(); n != 2 {
		t.Errorf("got %d total records, expected 2", n)
	}
}

func TestMissedApproachSplit(t *testing.T) {
	var lines []string
	lines = append(lines, kxyzAirport)
	for i, fix := range []string{"AAAAA", "BBBBB", "CCCCC", "DDDDD", "EEEEE", "FFFFF"} {
		// Add them in reverse so that sorting is exercised too.
		seq := []string{"010", "020", "030", "040", "050", "060"}[i]
		lines = slices.Insert(lines, 1, approachLeg(seq, fix, seq == "040"))
	}

	r, errs := decode(t, cifp(lines...))
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	appr, ok := r.Airports["KXYZ"].Approach("R09")
	if !ok {
		t.Fatalf("R09 not found")
	}
	if seq := legSequences(appr.Legs); !slices.Equal(seq, []int{10, 20, 30}) {
		t.Errorf("got approach legs %v", seq)
	}
	if seq := legSequences(appr.MissedApproachLegs); !slices.Equal(seq, []int{40, 50, 60}) {
		t.Errorf("got missed approach legs %v", seq)
	}
	if seq := legSequences(appr.AllLegs()); !slices.Equal(seq, []int{10, 20, 30, 40, 50, 60}) {
		t.Errorf("got all legs %v", seq)
	}
	if rwy, ok := appr.Runway(); !ok || rwy != "09" {
		t.Errorf("got runway %q %v", rwy, ok)
	}
}

func TestSplitMissedApproach(t *testing.T) {
	leg := func(seq int, missed bool) Leg {
		var l Leg
		l.Sequence = seq
		if missed {
			l.Description[2] = 'M'
		}
		return l
	}

	for _, test := range []struct {
		name           string
		legs           []Leg
		approach, miss []int
	}{
		{"none marked", []Leg{leg(1, false), leg(2, false)}, []int{1, 2}, nil},
		{"first marked", []Leg{leg(1, true), leg(2, false)}, nil, []int{1, 2}},
		// Only the first marked leg matters.
		{"two marked", []Leg{leg(1, false), leg(2, true), leg(3, false), leg(4, true)}, []int{1}, []int{2, 3, 4}},
	} {
		t.Run(test.name, func(t *testing.T) {
			a, m := splitMissedApproach(test.legs)
			if !slices.Equal(legSequences(a), test.approach) || !slices.Equal(legSequences(m), test.miss) {
				t.Errorf("got %v / %v", legSequences(a), legSequences(m))
			}
		})
	}
}

func TestApproachSBASMerge(t *testing.T) {
	sbas := record(at{0, "SUSAP KXYZK7F"}, at{13, "R09"}, at{19, "R"}, at{26, "010"}, at{38, "2W"},
		at{40, "YLPV"})
	r, errs := decode(t, cifp(sbas, kxyzAirport, approachLeg("010", "AAAAA", false)))
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	appr, _ := r.Airports["KXYZ"].Approach("R09")
	if appr == nil || appr.SBAS == nil || !appr.SBAS.FASBlock || appr.SBAS.LPVLevelOfService != "LPV" {
		t.Errorf("SBAS data not merged: %+v", appr)
	}
}

func TestPathPointContinuations(t *testing.T) {
	ppFields := []at{{0, "SUSAP KXYZK7P"}, {13, "R09"}, {19, "RW09"}, {24, "01"}, {26, "0"},
		{27, "0"}, {28, "00"}, {30, "01"}, {32, "W09A"}, {36, "1"},
		{37, "N4000000000"}, {48, "W07500000000"}, {60, "+00123"}, {66, "0300"},
		{70, "N4000000000"}, {81, "W07400000000"}, {93, "10500"}, {102, "000500"}, {108, "F"}}
	primary := record(ppFields...)
	cont := func(approach string) string {
		return record(at{0, "SUSAP KXYZK7P"}, at{13, approach}, at{19, "RW09"}, at{24, "01"}, at{26, "2E"},
			at{28, "-00125"}, at{46, "LP"})
	}

	t.Run("primary only", func(t *testing.T) {
		r, errs := decode(t, cifp(kxyzAirport, primary))
		if len(errs) != 0 {
			t.Fatalf("unexpected errors: %v", errs)
		}
		pp, ok := r.Airports["KXYZ"].PathPoints["R09"]
		if !ok {
			t.Fatalf("path point not found")
		}
		if pp.Continuation != nil || pp.GlidePathAngle != 3 {
			t.Errorf("got %+v", pp)
		}
	})

	t.Run("merged", func(t *testing.T) {
		// The continuation comes first; it still gets merged.
		r, errs := decode(t, cifp(kxyzAirport, cont("R09"), primary))
		if len(errs) != 0 {
			t.Fatalf("unexpected errors: %v", errs)
		}
		pp := r.Airports["KXYZ"].PathPoints["R09"]
		if pp == nil || pp.Continuation == nil || pp.Continuation.ApproachType != "LP" {
			t.Errorf("continuation not merged: %+v", pp)
		}
	})

	t.Run("orphan", func(t *testing.T) {
		r, errs := decode(t, cifp(kxyzAirport, cont("R27")))
		if len(errs) != 0 {
			t.Errorf("orphaned continuation reported errors: %v", errs)
		}
		if n := len(r.Airports["KXYZ"].PathPoints); n != 0 {
			t.Errorf("got %d path points", n)
		}
	})
}

func TestAggregationErrors(t *testing.T) {
	airway := func(route, seq, meta string) string {
		return record(at{0, "SUSAER"}, at{13, route}, at{25, seq}, at{29, "CCC"}, at{34, "K6D 0"},
			at{44, meta})
	}
	msa := func(sector string) string {
		return record(at{0, "SUSAP KXYZK7S"}, at{13, "XYZ"}, at{18, "K7PA"}, at{38, "1"}, at{42, sector})
	}
	sua := func(typ string) string {
		return record(at{0, "SUSAURK7"}, at{8, typ}, at{9, "R-1234"}, at{24, "0"}, at{20, "0010"},
			at{30, "CE"}, at{51, "N39300000W076100000"}, at{70, "0050"})
	}

	for _, test := range []struct {
		name   string
		line   string
		kind   EntityKind
		reason AggregationReason
	}{
		{"airway without metadata", airway("V99", "0010", "   "), EntityAirway, ReasonMissingMetadata},
		{"airway with invalid route type", airway("V98", "0010", "ZL "), EntityAirway, ReasonInvalidRouteType},
		{"SID with missing route type", sidLeg("010", "FIXAA", at{19, " "}), EntitySID, ReasonMissingRouteType},
		{"SID with invalid route type", sidLeg("010", "FIXAA", at{19, "Z"}), EntitySID, ReasonInvalidRouteType},
		{"MSA without radius", msa("090180030  "), EntityMSA, ReasonMissingRadius},
		{"special use airspace without type", sua(" "), EntitySpecialUseAirspace, ReasonMissingRestrictiveType},
	} {
		t.Run(test.name, func(t *testing.T) {
			r, errs := decode(t, cifp(kxyzAirport, test.line))
			if len(errs) != 1 {
				t.Fatalf("expected one error, got %v", errs)
			}
			if errs[0].line != 0 {
				t.Errorf("got line %d for aggregation error", errs[0].line)
			}
			var ae *AggregationError
			if !errors.As(errs[0].err, &ae) {
				t.Fatalf("expected *AggregationError, got %v", errs[0].err)
			}
			if ae.Kind != test.kind || ae.Reason != test.reason {
				t.Errorf("got %v", ae)
			}
			// Only the airport should have made it.
			if n := r.TotalRecords(); n != 1 {
				t.Errorf("got %d records", n)
			}
		})
	}
}

func TestValidAggregates(t *testing.T) {
	r, errs := decode(t, cifp(kxyzAirport,
		record(at{0, "SUSAER"}, at{13, "V16"}, at{25, "0200"}, at{29, "DDD"}, at{34, "K6D 0"}, at{44, "OL"}),
		record(at{0, "SUSAER"}, at{13, "V16"}, at{25, "0100"}, at{29, "CCC"}, at{34, "K6D 0"}, at{44, "OL"}),
		record(at{0, "SUSAP KXYZK7S"}, at{13, "XYZ"}, at{18, "K7PA"}, at{38, "1"}, at{42, "00018003025"},
			at{53, "18000004025"}),
		record(at{0, "SUSAURK7R"}, at{9, "R-1234"}, at{19, " 0020"}, at{24, "0"}, at{30, "GE"},
			at{32, "N39300000W076100000"}),
		record(at{0, "SUSAURK7R"}, at{9, "R-1234"}, at{19, " 0010"}, at{24, "0"}, at{30, "G "},
			at{32, "N39000000W076000000"}, at{81, "GND  M"}, at{87, "FL180M"}, at{93, "TEST AREA"}),
	))
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	aw, ok := r.Airways["V16"]
	if !ok {
		t.Fatalf("V16 not found")
	}
	if aw.RouteType != arinc424.AirwayOfficial || aw.Level != arinc424.AirwayLevelLow ||
		len(aw.Fixes) != 2 || aw.Fixes[0].Fix.Ident != "CCC" || aw.Fixes[1].Fix.Ident != "DDD" {
		t.Errorf("got airway %+v", aw)
	}

	msas := r.Airports["KXYZ"].MSAs
	if len(msas) != 1 || msas[0].Radius != 25 || msas[0].BearingReference != arinc424.BearingMagnetic {
		t.Fatalf("got MSAs %+v", msas)
	}
	if alt, ok := msas[0].SectorAltitude(270); !ok || alt != arinc424.Feet(4000) {
		t.Errorf("got sector altitude %v", alt)
	}

	sua, ok := r.SpecialUseAirspace["K7/R-1234/ "]
	if !ok {
		t.Fatalf("R-1234 not found in %v", r.SpecialUseAirspace)
	}
	if sua.Type != arinc424.RestrictiveRestricted || sua.Name != "TEST AREA" || len(sua.Boundaries) != 2 ||
		sua.Boundaries[0].Sequence != 10 || sua.UpperLimit == nil || *sua.UpperLimit != arinc424.FlightLevel(180) {
		t.Errorf("got %+v", sua)
	}
}

func TestUnknownSection(t *testing.T) {
	r, errs := decode(t, cifp(kxyzAirport, record(at{0, "SUSAZZ"}, at{13, "JUNK"}), kxyzRunway))
	if len(errs) != 1 {
		t.Fatalf("expected exactly one error, got %v", errs)
	}
	var le *arinc424.LineError
	if !errors.As(errs[0].err, &le) || le.Kind != arinc424.UnknownSection || le.Code != "ZZ" {
		t.Errorf("got %v", errs[0].err)
	}
	if errs[0].line != 2 {
		t.Errorf("got line %d", errs[0].line)
	}
	if _, ok := r.Airports["KXYZ"].Runway("09"); !ok {
		t.Errorf("following line not decoded")
	}
	if n := r.TotalRecords(); n != 2 {
		t.Errorf("got %d records", n)
	}
}

func TestFieldErrorDropsRecord(t *testing.T) {
	r, errs := decode(t, cifp(kxyzAirport, sidLeg("010", "FIXAA"), sidLeg("020", "FIXBB", at{47, "ZZ"})))
	if len(errs) != 1 || errs[0].line != 3 {
		t.Fatalf("got errors %v", errs)
	}
	var fe *arinc424.FieldError
	if !errors.As(errs[0].err, &fe) || !errors.Is(errs[0].err, arinc424.ErrInvalidCode) {
		t.Errorf("got %v", errs[0].err)
	}
	if legs := r.Airports["KXYZ"].SIDs["TEST1"][0].Legs; len(legs) != 1 {
		t.Errorf("got %d legs", len(legs))
	}
}

func TestStreamErrors(t *testing.T) {
	b := cifp(kxyzAirport)
	b = append(b, 0xff, 0xfe, '\n')
	_, err := DecodeBytes(b, Options{})
	var se *StreamError
	if !errors.As(err, &se) || !errors.Is(err, ErrInvalidUTF8) || se.Line != 2 {
		t.Errorf("got %v", err)
	}
}

func TestBlankLinesAndCRLF(t *testing.T) {
	b := []byte("\r\n" + kxyzAirport + "\r\n\n" + kxyzRunway)
	r, errs := decode(t, b)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if n := r.TotalRecords(); n != 2 {
		t.Errorf("got %d records", n)
	}
}

func TestDecodeChan(t *testing.T) {
	b := cifp(testHeader, kxyzAirport, kxyzRunway, record(at{0, "SUSAZZ"}), sidLeg("020", "FIXBB"),
		sidLeg("010", "FIXAA"), abcWaypoint, abcVOR)
	want, wantErrs := decode(t, b)

	for _, size := range []int{1, 7, 132, 1000} {
		ch := make(chan []byte)
		go func() {
			for chunk := range slices.Chunk(b, size) {
				ch <- chunk
			}
			close(ch)
		}()

		var errLines []int
		got, err := DecodeChan(ch, Options{OnError: func(err error, line int) { errLines = append(errLines, line) }})
		if err != nil {
			t.Fatalf("chunk size %d: %v", size, err)
		}
		if got.TotalRecords() != want.TotalRecords() || len(got.Headers) != len(want.Headers) {
			t.Errorf("chunk size %d: got %d records, expected %d", size, got.TotalRecords(), want.TotalRecords())
		}
		if len(errLines) != len(wantErrs) || len(errLines) != 1 || errLines[0] != 4 {
			t.Errorf("chunk size %d: got error lines %v", size, errLines)
		}
		legs := got.Airports["KXYZ"].SIDs["TEST1"][0].Legs
		if seq := legSequences(legs); !slices.Equal(seq, []int{10, 20}) {
			t.Errorf("chunk size %d: got legs %v", size, seq)
		}
	}
}

func TestProgress(t *testing.T) {
	b := cifp(kxyzAirport, kxyzRunway)
	var last int64
	_, err := DecodeBytes(b, Options{Progress: func(n int64) {
		if n < last {
			t.Errorf("progress went backward: %d after %d", n, last)
		}
		last = n
	}})
	if err != nil {
		t.Fatal(err)
	}
	if last != int64(len(b)) {
		t.Errorf("final progress %d, expected %d", last, len(b))
	}
}

func TestDuplicatesFirstWins(t *testing.T) {
	dup := strings.Replace(abcWaypoint, "N41000000", "N42000000", 1)
	r, errs := decode(t, cifp(abcWaypoint, dup))
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if wp := r.EnrouteWaypoints["ABC"]; wp == nil || wp.Location.Latitude() != 41 {
		t.Errorf("got %+v", wp)
	}
}
