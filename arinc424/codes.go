// arinc424/codes.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package arinc424

import (
	"fmt"
	"slices"
)

// SectionCode is a two-character section+subsection code as it appears
// both in record headers (bytes 4-5, or byte 4 and byte 12 for airport
// and heliport records) and in the section hints that accompany fix
// references in procedure legs and airways.
type SectionCode string

const (
	SectionVHFNavaid           SectionCode = "D "
	SectionNDBNavaid           SectionCode = "DB"
	SectionEnrouteWaypoint     SectionCode = "EA"
	SectionHolding             SectionCode = "EP"
	SectionAirway              SectionCode = "ER"
	SectionGridMORA            SectionCode = "AS"
	SectionControlledAirspace  SectionCode = "UC"
	SectionRestrictiveAirspace SectionCode = "UR"
	SectionAirport             SectionCode = "PA"
	SectionTerminalWaypoint    SectionCode = "PC"
	SectionTerminalNDB         SectionCode = "PN"
	SectionRunway              SectionCode = "PG"
	SectionLocalizer           SectionCode = "PI"
	SectionSID                 SectionCode = "PD"
	SectionSTAR                SectionCode = "PE"
	SectionApproach            SectionCode = "PF"
	SectionPathPoint           SectionCode = "PP"
	SectionMSA                 SectionCode = "PS"
	SectionHeliport            SectionCode = "HA"
	SectionHeliportWaypoint    SectionCode = "HC"
	SectionHeliportApproach    SectionCode = "HF"
	SectionHeliportMSA         SectionCode = "HS"
)

func (s SectionCode) IsBlank() bool {
	return s == "" || s == "  "
}

///////////////////////////////////////////////////////////////////////////
// Waypoint description

// WaypointDescription holds the four independent columns of the
// waypoint description code (ARINC 424 5.17).
type WaypointDescription [4]byte

const (
	descFlyOver     = 'Y' // column 2
	descEndOfRoute  = 'E' // column 2
	descStepDownA   = 'A' // column 3, unnamed, after the FAF
	descStepDownB   = 'B' // column 3, unnamed, before the FAF
	descMissedFirst = 'M' // column 3
	descPathPoint   = 'P' // column 3
	descStepDownFix = 'S' // column 3, named
	descIAF         = 'A' // column 4
	descIF          = 'B' // column 4
	descIAFAndHold  = 'C' // column 4
	descIAFAndIF    = 'D' // column 4
	descFAF         = 'F' // column 4
	descHoldingFix  = 'H' // column 4
	descMissedPoint = 'M' // column 4
	descRunwayFix   = 'G' // column 1
	descAirwayFlyOv = 'W' // column 1
)

func (d WaypointDescription) String() string {
	return string(d[:])
}

func (d WaypointDescription) IsBlank() bool {
	return d == WaypointDescription{' ', ' ', ' ', ' '} || d == WaypointDescription{}
}

// FirstMissedApproachLeg reports whether the leg is flagged as the first
// leg of the missed approach procedure.
func (d WaypointDescription) FirstMissedApproachLeg() bool { return d[2] == descMissedFirst }
func (d WaypointDescription) FlyOver() bool                { return d[1] == descFlyOver || d[0] == descAirwayFlyOv }
func (d WaypointDescription) EndOfRoute() bool             { return d[1] == descEndOfRoute }
func (d WaypointDescription) RunwayFix() bool              { return d[0] == descRunwayFix }
func (d WaypointDescription) MissedApproachPoint() bool    { return d[3] == descMissedPoint }
func (d WaypointDescription) PathPointFix() bool           { return d[2] == descPathPoint }
func (d WaypointDescription) HoldingFix() bool             { return d[3] == descHoldingFix || d[3] == descIAFAndHold }

// StepDownFix reports whether the fix is a named or unnamed stepdown fix.
func (d WaypointDescription) StepDownFix() bool {
	return d[2] == descStepDownFix || d[2] == descStepDownA || d[2] == descStepDownB
}

func (d WaypointDescription) IAF() bool {
	return d[3] == descIAF || d[3] == descIAFAndHold || d[3] == descIAFAndIF
}

func (d WaypointDescription) IF() bool {
	return d[3] == descIF || d[3] == descIAFAndIF
}

func (d WaypointDescription) FAF() bool {
	return d[3] == descFAF
}

///////////////////////////////////////////////////////////////////////////
// Path terminators

type PathTerminator string

const (
	InitialFix             PathTerminator = "IF"
	TrackToFix             PathTerminator = "TF"
	CourseToFix            PathTerminator = "CF"
	DirectToFix            PathTerminator = "DF"
	FixToAltitude          PathTerminator = "FA"
	FixToDistance          PathTerminator = "FC"
	FixToDMEDistance       PathTerminator = "FD"
	FixToManual            PathTerminator = "FM"
	CourseToAltitude       PathTerminator = "CA"
	CourseToDMEDistance    PathTerminator = "CD"
	CourseToIntercept      PathTerminator = "CI"
	CourseToRadial         PathTerminator = "CR"
	RadiusToFix            PathTerminator = "RF"
	ArcToFix               PathTerminator = "AF"
	HeadingToAltitude      PathTerminator = "VA"
	HeadingToDMEDistance   PathTerminator = "VD"
	HeadingToIntercept     PathTerminator = "VI"
	HeadingToManual        PathTerminator = "VM"
	HeadingToRadial        PathTerminator = "VR"
	ProcedureTurn          PathTerminator = "PI"
	HoldToAltitude         PathTerminator = "HA"
	HoldToFix              PathTerminator = "HF"
	HoldToManualTerminator PathTerminator = "HM"
)

var pathTerminators = []PathTerminator{
	InitialFix, TrackToFix, CourseToFix, DirectToFix, FixToAltitude, FixToDistance,
	FixToDMEDistance, FixToManual, CourseToAltitude, CourseToDMEDistance, CourseToIntercept,
	CourseToRadial, RadiusToFix, ArcToFix, HeadingToAltitude, HeadingToDMEDistance,
	HeadingToIntercept, HeadingToManual, HeadingToRadial, ProcedureTurn, HoldToAltitude,
	HoldToFix, HoldToManualTerminator,
}

func (p PathTerminator) Valid() bool {
	return slices.Contains(pathTerminators, p)
}

func (p PathTerminator) IsHold() bool {
	return p == HoldToAltitude || p == HoldToFix || p == HoldToManualTerminator
}

// EndsAtFix reports whether the leg terminates at its fix (as opposed to
// an altitude, distance, radial or manual termination).
func (p PathTerminator) EndsAtFix() bool {
	switch p {
	case InitialFix, TrackToFix, CourseToFix, DirectToFix, RadiusToFix, ArcToFix, HoldToFix:
		return true
	default:
		return false
	}
}

func ParsePathTerminator(b []byte) (*PathTerminator, error) {
	if IsBlank(b) {
		return nil, nil
	}
	p := PathTerminator(b)
	if !p.Valid() {
		return nil, malformed(b, ErrInvalidCode)
	}
	return &p, nil
}

///////////////////////////////////////////////////////////////////////////
// Single-character codes

type TurnDirection byte

const (
	TurnUnspecified TurnDirection = ' '
	TurnLeft        TurnDirection = 'L'
	TurnRight       TurnDirection = 'R'
	TurnEither      TurnDirection = 'E'
)

func ParseTurnDirection(b byte) (TurnDirection, error) {
	switch t := TurnDirection(b); t {
	case TurnUnspecified, TurnLeft, TurnRight, TurnEither:
		return t, nil
	default:
		return TurnUnspecified, fmt.Errorf("%q: %w", b, ErrInvalidCode)
	}
}

func (t TurnDirection) String() string {
	switch t {
	case TurnLeft:
		return "left"
	case TurnRight:
		return "right"
	case TurnEither:
		return "either"
	default:
		return ""
	}
}

// SIDRouteType is the route type column of a SID leg.
type SIDRouteType byte

const (
	SIDEngineOut               SIDRouteType = '0'
	SIDRunwayTransition        SIDRouteType = '1'
	SIDCommonRoute             SIDRouteType = '2'
	SIDEnrouteTransition       SIDRouteType = '3'
	SIDRNAVRunwayTransition    SIDRouteType = '4'
	SIDRNAVCommonRoute         SIDRouteType = '5'
	SIDRNAVEnrouteTransition   SIDRouteType = '6'
	SIDFMSRunwayTransition     SIDRouteType = 'F'
	SIDFMSCommonRoute          SIDRouteType = 'M'
	SIDFMSEnrouteTransition    SIDRouteType = 'S'
	SIDVectorRunwayTransition  SIDRouteType = 'T'
	SIDVectorEnrouteTransition SIDRouteType = 'V'
)

func (t SIDRouteType) Valid() bool {
	return slices.Contains([]byte("0123456FMSTV"), byte(t))
}

// IsRunwayTransition reports whether legs of this route type belong to
// a runway transition.
func (t SIDRouteType) IsRunwayTransition() bool {
	return t == SIDRunwayTransition || t == SIDRNAVRunwayTransition || t == SIDFMSRunwayTransition ||
		t == SIDVectorRunwayTransition
}

type STARRouteType byte

const (
	STAREnrouteTransition     STARRouteType = '1'
	STARCommonRoute           STARRouteType = '2'
	STARRunwayTransition      STARRouteType = '3'
	STARRNAVEnrouteTransition STARRouteType = '4'
	STARRNAVCommonRoute       STARRouteType = '5'
	STARRNAVRunwayTransition  STARRouteType = '6'
	STARProfileDescentEnroute STARRouteType = '7'
	STARProfileDescentCommon  STARRouteType = '8'
	STARProfileDescentRunway  STARRouteType = '9'
	STARFMSEnrouteTransition  STARRouteType = 'F'
	STARFMSCommonRoute        STARRouteType = 'M'
	STARFMSRunwayTransition   STARRouteType = 'S'
)

func (t STARRouteType) Valid() bool {
	return slices.Contains([]byte("123456789FMS"), byte(t))
}

func (t STARRouteType) IsRunwayTransition() bool {
	return t == STARRunwayTransition || t == STARRNAVRunwayTransition || t == STARProfileDescentRunway ||
		t == STARFMSRunwayTransition
}

// ApproachRouteType is the route type column of an approach leg: 'A'
// marks an approach transition and the remaining codes give the type of
// the final approach.
type ApproachRouteType byte

const (
	ApproachTransition ApproachRouteType = 'A'
	ApproachLocBackCrs ApproachRouteType = 'B'
	ApproachVORDME     ApproachRouteType = 'D'
	ApproachFMS        ApproachRouteType = 'F'
	ApproachIGS        ApproachRouteType = 'G'
	ApproachRNP        ApproachRouteType = 'H'
	ApproachILS        ApproachRouteType = 'I'
	ApproachGLS        ApproachRouteType = 'J'
	ApproachLOC        ApproachRouteType = 'L'
	ApproachMLS        ApproachRouteType = 'M'
	ApproachNDB        ApproachRouteType = 'N'
	ApproachGPS        ApproachRouteType = 'P'
	ApproachNDBDME     ApproachRouteType = 'Q'
	ApproachRNAV       ApproachRouteType = 'R'
	ApproachVORTAC     ApproachRouteType = 'S'
	ApproachTACAN      ApproachRouteType = 'T'
	ApproachSDF        ApproachRouteType = 'U'
	ApproachVOR        ApproachRouteType = 'V'
	ApproachMLSTypeA   ApproachRouteType = 'W'
	ApproachLDA        ApproachRouteType = 'X'
	ApproachMLSTypeBC  ApproachRouteType = 'Y'
	ApproachMissed     ApproachRouteType = 'Z'
)

func (t ApproachRouteType) Valid() bool {
	return slices.Contains([]byte("ABDFGHIJLMNPQRSTUVWXYZ"), byte(t))
}

func (t ApproachRouteType) String() string {
	switch t {
	case ApproachTransition:
		return "transition"
	case ApproachLocBackCrs:
		return "LOC/BC"
	case ApproachVORDME:
		return "VOR/DME"
	case ApproachFMS:
		return "FMS"
	case ApproachIGS:
		return "IGS"
	case ApproachRNP:
		return "RNP"
	case ApproachILS:
		return "ILS"
	case ApproachGLS:
		return "GLS"
	case ApproachLOC:
		return "LOC"
	case ApproachMLS:
		return "MLS"
	case ApproachNDB:
		return "NDB"
	case ApproachGPS:
		return "GPS"
	case ApproachNDBDME:
		return "NDB/DME"
	case ApproachRNAV:
		return "RNAV"
	case ApproachVORTAC:
		return "VORTAC"
	case ApproachTACAN:
		return "TACAN"
	case ApproachSDF:
		return "SDF"
	case ApproachVOR:
		return "VOR"
	case ApproachMLSTypeA:
		return "MLS type A"
	case ApproachLDA:
		return "LDA"
	case ApproachMLSTypeBC:
		return "MLS type B/C"
	case ApproachMissed:
		return "missed"
	default:
		return string(t)
	}
}

type AirwayRouteType byte

const (
	AirwayAirline    AirwayRouteType = 'A'
	AirwayControl    AirwayRouteType = 'C'
	AirwayDirect     AirwayRouteType = 'D'
	AirwayHelicopter AirwayRouteType = 'H'
	AirwayOfficial   AirwayRouteType = 'O'
	AirwayRNAV       AirwayRouteType = 'R'
	AirwayUndesig    AirwayRouteType = 'S'
)

func (t AirwayRouteType) Valid() bool {
	return slices.Contains([]byte("ACDHORS"), byte(t))
}

type AirwayLevel byte

const (
	AirwayLevelAll  AirwayLevel = 'B'
	AirwayLevelHigh AirwayLevel = 'H'
	AirwayLevelLow  AirwayLevel = 'L'
)

func (l AirwayLevel) Valid() bool {
	return l == AirwayLevelAll || l == AirwayLevelHigh || l == AirwayLevelLow
}

type AirwayDirection byte

const (
	AirwayBothDirections AirwayDirection = ' '
	AirwayForward        AirwayDirection = 'F'
	AirwayBackward       AirwayDirection = 'B'
)

// BoundaryPath is the first character of an airspace boundary via.
type BoundaryPath byte

const (
	BoundaryCircle           BoundaryPath = 'C'
	BoundaryGreatCircle      BoundaryPath = 'G'
	BoundaryRhumbLine        BoundaryPath = 'H'
	BoundaryCounterClockwise BoundaryPath = 'L'
	BoundaryClockwise        BoundaryPath = 'R'
	BoundaryArc              BoundaryPath = 'A'
)

type BoundaryVia struct {
	Path BoundaryPath
	// End marks the last segment of the boundary, which returns to the
	// first point.
	End bool
}

func (v BoundaryVia) IsArc() bool {
	return v.Path == BoundaryClockwise || v.Path == BoundaryCounterClockwise || v.Path == BoundaryArc
}

func ParseBoundaryVia(b []byte) (*BoundaryVia, error) {
	if IsBlank(b) {
		return nil, nil
	}
	switch BoundaryPath(b[0]) {
	case BoundaryCircle, BoundaryGreatCircle, BoundaryRhumbLine, BoundaryCounterClockwise,
		BoundaryClockwise, BoundaryArc:
	default:
		return nil, malformed(b, ErrInvalidCode)
	}
	if b[1] != ' ' && b[1] != 'E' {
		return nil, malformed(b, ErrInvalidCode)
	}
	return &BoundaryVia{Path: BoundaryPath(b[0]), End: b[1] == 'E'}, nil
}

type ControlledAirspaceType byte

const (
	AirspaceClassC       ControlledAirspaceType = 'A'
	AirspaceControlArea  ControlledAirspaceType = 'C'
	AirspaceTerminalArea ControlledAirspaceType = 'K'
	AirspaceMilitary     ControlledAirspaceType = 'M'
	AirspaceRadarZone    ControlledAirspaceType = 'Q'
	AirspaceRadarArea    ControlledAirspaceType = 'R'
	AirspaceClassB       ControlledAirspaceType = 'T'
	AirspaceClassD       ControlledAirspaceType = 'Z'
)

type RestrictiveType byte

const (
	RestrictiveAlert      RestrictiveType = 'A'
	RestrictiveCaution    RestrictiveType = 'C'
	RestrictiveDanger     RestrictiveType = 'D'
	RestrictiveMOA        RestrictiveType = 'M'
	RestrictiveProhibited RestrictiveType = 'P'
	RestrictiveRestricted RestrictiveType = 'R'
	RestrictiveTraining   RestrictiveType = 'T'
	RestrictiveWarning    RestrictiveType = 'W'
	RestrictiveUnknown    RestrictiveType = 'U'
)

func (t RestrictiveType) Valid() bool {
	return slices.Contains([]byte("ACDMPRTWU"), byte(t))
}

// BearingReference tells whether the bearings of an MSA are magnetic or
// true.
type BearingReference byte

const (
	BearingMagnetic BearingReference = 'M'
	BearingTrue     BearingReference = 'T'
)

// UnitDatum decodes the unit indicator that follows an airspace vertical
// limit.
func UnitDatum(b byte) Datum {
	if b == 'A' {
		return AGL
	}
	return MSL
}
