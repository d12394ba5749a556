// arinc424/classify.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package arinc424

import (
	"bytes"
	"strconv"
	"time"
)

const (
	// RecordLength is the length of every non-header record.
	RecordLength = 132
	// MinRecordLength is the number of bytes needed to determine a
	// record's section and subsection.
	MinRecordLength = 13
)

// Decode classifies a single line and decodes it into the corresponding
// Record. It returns a *LineError if the line can't be classified and a
// *FieldError if one of the record's fields is missing or malformed. A
// nil Record and nil error is returned for records that are recognized
// but carry nothing of interest (e.g., runway continuation records).
//
// Lines shorter than RecordLength are treated as if they were padded
// with blanks.
func Decode(line []byte, lineno int) (Record, error) {
	line = bytes.TrimRight(line, "\r\n")

	if len(line) > 0 && line[0] == 'H' {
		return decodeHeader(line), nil
	}

	if len(line) < MinRecordLength {
		return nil, &LineError{Line: lineno, Kind: LineTooShort, Length: len(line)}
	}
	if len(line) < RecordLength {
		line = append(line[:len(line):len(line)], bytes.Repeat([]byte{' '}, RecordLength-len(line))...)
	}

	section := SectionCode(line[4:6])
	if line[5] == ' ' && (line[4] == 'P' || line[4] == 'H') {
		section = SectionCode([]byte{line[4], line[12]})
	}

	kind, ok := sectionKinds[section]
	if !ok {
		if line[4] == 'P' || line[4] == 'H' {
			return nil, &LineError{Line: lineno, Kind: UnknownSubsection, Code: string(section)}
		}
		return nil, &LineError{Line: lineno, Kind: UnknownSection, Code: string(section)}
	}

	r := &fieldReader{line: line, lineno: lineno, kind: kind}
	var rec Record
	var err error
	switch section {
	case SectionVHFNavaid:
		rec, err = decodeVHFNavaid(r)
	case SectionNDBNavaid, SectionTerminalNDB:
		rec, err = decodeNDBNavaid(r, section)
	case SectionEnrouteWaypoint, SectionTerminalWaypoint, SectionHeliportWaypoint:
		rec, err = decodeWaypoint(r, section)
	case SectionHolding:
		rec, err = decodeHold(r)
	case SectionAirway:
		rec, err = decodeAirwayFix(r)
	case SectionGridMORA:
		rec, err = decodeGridMORA(r)
	case SectionControlledAirspace:
		rec, err = decodeControlledAirspace(r)
	case SectionRestrictiveAirspace:
		rec, err = decodeRestrictiveAirspace(r)
	case SectionAirport, SectionHeliport:
		rec, err = decodeAirport(r, section)
	case SectionRunway:
		rec, err = decodeRunway(r)
	case SectionLocalizer:
		rec, err = decodeLocalizer(r)
	case SectionSID, SectionSTAR, SectionApproach, SectionHeliportApproach:
		rec, err = decodeProcedureLeg(r, section)
	case SectionPathPoint:
		rec, err = decodePathPoint(r)
	case SectionMSA, SectionHeliportMSA:
		rec, err = decodeMSA(r, section)
	}

	if err != nil {
		return nil, err
	}
	return rec, nil
}

// sectionKinds maps each of the section codes that appear in FAA CIFP to
// the kind of its primary record.
var sectionKinds = map[SectionCode]RecordKind{
	SectionVHFNavaid:           KindVHFNavaid,
	SectionNDBNavaid:           KindNDBNavaid,
	SectionEnrouteWaypoint:     KindEnrouteWaypoint,
	SectionHolding:             KindHolding,
	SectionAirway:              KindAirwayFix,
	SectionGridMORA:            KindGridMORA,
	SectionControlledAirspace:  KindControlledAirspace,
	SectionRestrictiveAirspace: KindRestrictiveAirspace,
	SectionAirport:             KindAirport,
	SectionTerminalWaypoint:    KindTerminalWaypoint,
	SectionTerminalNDB:         KindTerminalNDB,
	SectionRunway:              KindRunway,
	SectionLocalizer:           KindLocalizer,
	SectionSID:                 KindSIDLeg,
	SectionSTAR:                KindSTARLeg,
	SectionApproach:            KindApproachLeg,
	SectionPathPoint:           KindPathPoint,
	SectionMSA:                 KindMSA,
	SectionHeliport:            KindHeliport,
	SectionHeliportWaypoint:    KindHeliportWaypoint,
	SectionHeliportApproach:    KindHeliportApproachLeg,
	SectionHeliportMSA:         KindHeliportMSA,
}

// KnownSection reports whether records with the given section code are
// decoded.
func KnownSection(s SectionCode) bool {
	_, ok := sectionKinds[s]
	return ok
}

// decodeHeader never fails; header lines aren't subject to the
// positional rules of the other records and only HDR01 is broken out
// into fields.
func decodeHeader(line []byte) Header {
	h := Header{Raw: string(line)}
	if len(line) >= 5 && string(line[:3]) == "HDR" {
		h.Number, _ = strconv.Atoi(string(line[3:5]))
	}
	if h.Number != 1 || len(line) < 61 {
		return h
	}

	text := func(start, end int) string {
		return Text(line[start:min(end, len(line))])
	}
	atoi := func(start, end int) int {
		v, _ := strconv.Atoi(text(start, end))
		return v
	}

	h.FileName = text(5, 20)
	h.Version = atoi(20, 23)
	h.Production = line[23] == 'P'
	h.RecordLength = atoi(24, 28)
	h.RecordCount = atoi(28, 35)
	h.Cycle = text(35, 39)
	// Month names are matched without regard to case, so "08-SEP-2022"
	// parses.
	h.Created, _ = time.Parse("02-Jan-2006 15:04:05", text(41, 52)+" "+text(52, 61))
	if len(line) > 61 {
		h.Supplier = text(61, 77)
	}
	return h
}
