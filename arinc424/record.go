// arinc424/record.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package arinc424

import (
	"time"

	"github.com/mmp/cifp/math"
)

type RecordKind int

const (
	KindHeader RecordKind = iota
	KindVHFNavaid
	KindNDBNavaid
	KindEnrouteWaypoint
	KindHolding
	KindAirwayFix
	KindGridMORA
	KindControlledAirspace
	KindRestrictiveAirspace
	KindAirport
	KindTerminalWaypoint
	KindTerminalNDB
	KindRunway
	KindLocalizer
	KindSIDLeg
	KindSTARLeg
	KindApproachLeg
	KindApproachContinuation
	KindPathPoint
	KindPathPointContinuation
	KindMSA
	KindHeliport
	KindHeliportWaypoint
	KindHeliportApproachLeg
	KindHeliportApproachContinuation
	KindHeliportMSA
	NumRecordKinds
)

var recordKindNames = [...]string{
	KindHeader:                       "header",
	KindVHFNavaid:                    "VHF navaid",
	KindNDBNavaid:                    "NDB navaid",
	KindEnrouteWaypoint:              "enroute waypoint",
	KindHolding:                      "holding pattern",
	KindAirwayFix:                    "airway fix",
	KindGridMORA:                     "grid MORA",
	KindControlledAirspace:           "controlled airspace",
	KindRestrictiveAirspace:          "restrictive airspace",
	KindAirport:                      "airport",
	KindTerminalWaypoint:             "terminal waypoint",
	KindTerminalNDB:                  "terminal NDB",
	KindRunway:                       "runway",
	KindLocalizer:                    "localizer",
	KindSIDLeg:                       "SID leg",
	KindSTARLeg:                      "STAR leg",
	KindApproachLeg:                  "approach leg",
	KindApproachContinuation:         "approach continuation",
	KindPathPoint:                    "path point",
	KindPathPointContinuation:        "path point continuation",
	KindMSA:                          "MSA",
	KindHeliport:                     "heliport",
	KindHeliportWaypoint:             "heliport waypoint",
	KindHeliportApproachLeg:          "heliport approach leg",
	KindHeliportApproachContinuation: "heliport approach continuation",
	KindHeliportMSA:                  "heliport MSA",
}

func (k RecordKind) String() string {
	if k >= 0 && int(k) < len(recordKindNames) {
		return recordKindNames[k]
	}
	return "unknown record"
}

// Record is implemented by each of the decoded record types; use a type
// switch to recover the concrete record.
type Record interface {
	Kind() RecordKind
	isRecord()
}

// FixRef is a reference from one record to a fix that is defined by
// another record. Section is the section/subsection where the fix is
// expected to be found and may be blank.
type FixRef struct {
	Ident   string
	Region  string
	Section SectionCode
}

// Header is a decoded HDR01 line. Lines for the other header numbers
// are only kept raw.
type Header struct {
	Number       int
	Raw          string
	FileName     string
	Version      int
	Production   bool
	RecordLength int
	RecordCount  int
	Cycle        string
	Created      time.Time
	Supplier     string
}

type VHFNavaid struct {
	Airport      string // only set for terminal VHF navaids
	Region       string
	Ident        string
	Frequency    float64 // MHz
	Class        string
	Location     *math.Point2LL // VOR location; nil for DME-only facilities
	DMEIdent     string
	DMELocation  *math.Point2LL
	Declination  *float64
	DMEElevation *int
	Name         string
}

// Position returns the VOR location if there is one and the DME's
// otherwise.
func (v VHFNavaid) Position() math.Point2LL {
	if v.Location != nil {
		return *v.Location
	} else if v.DMELocation != nil {
		return *v.DMELocation
	}
	return math.Point2LL{}
}

type NDBNavaid struct {
	Section   SectionCode // DB or PN
	Airport   string
	Region    string
	Ident     string
	Frequency float64 // kHz
	Class     string
	Location  math.Point2LL
	MagVar    *float64
	Name      string
}

// Waypoint is an enroute, terminal or heliport waypoint.
type Waypoint struct {
	Section  SectionCode // EA, PC or HC
	Airport  string      // blank for enroute waypoints
	Region   string
	Ident    string
	Type     string
	Usage    string
	Location math.Point2LL
	MagVar   *float64
	Name     string
}

type Hold struct {
	Airport       string // blank for enroute holds
	Region        string
	Duplicate     int
	Fix           FixRef
	InboundCourse Bearing
	Turn          TurnDirection
	LegLength     *float64 // nm
	LegTime       *float64 // minutes
	MinAltitude   *Altitude
	MaxAltitude   *Altitude
	Speed         *int
	Name          string
}

type AirwayFix struct {
	Route             string
	Sequence          int
	Fix               FixRef
	Description       WaypointDescription
	BoundaryCode      byte
	RouteType         byte
	Level             byte
	Direction         AirwayDirection
	RecommendedNavaid *FixRef
	RNP               *float64
	Theta             *float64
	Rho               *float64
	OutboundCourse    *Bearing
	Distance          *float64
	InboundCourse     *Bearing
	MinAltitude       *Altitude
	MinAltitude2      *Altitude
	MaxAltitude       *Altitude
}

// GridMORARow is one AS record, giving the MORAs for 30 one-degree
// cells proceeding east from the cell whose northwest corner is
// (Latitude, Longitude).
type GridMORARow struct {
	Latitude  int
	Longitude int
	MORAs     [30]*Altitude
}

// AirspaceBoundary holds the fields shared by controlled and restrictive
// airspace records. Vertical limits and the name are generally only
// given in the first record of an airspace.
type AirspaceBoundary struct {
	Sequence    int
	Via         BoundaryVia
	Location    *math.Point2LL
	ArcOrigin   *math.Point2LL
	ArcDistance *float64
	ArcBearing  *Bearing
	RNP         *float64
	LowerLimit  *Altitude
	UpperLimit  *Altitude
	Name        string
}

type ControlledAirspace struct {
	Region       string
	Type         ControlledAirspaceType
	Center       FixRef
	Class        byte
	MultipleCode byte
	Boundary     AirspaceBoundary
}

type RestrictiveAirspace struct {
	Region       string
	Type         byte
	Designation  string
	MultipleCode byte
	Boundary     AirspaceBoundary
}

// Airport is the primary record of both airports and heliports.
type Airport struct {
	Section            SectionCode // PA or HA
	Ident              string
	Region             string
	IATA               string
	SpeedLimitAltitude *Altitude
	LongestRunway      *int // feet
	IFR                bool
	Surface            byte
	Location           math.Point2LL
	MagVar             *float64
	Elevation          int
	SpeedLimit         *int
	RecommendedNavaid  *FixRef
	TransitionAltitude *int
	TransitionLevel    *int
	PublicMilitary     byte
	TimeZone           string
	DaylightSavings    bool
	TrueReferenced     bool
	Datum              string
	Name               string
}

type Runway struct {
	Airport                 string
	Region                  string
	Ident                   string
	Length                  *int // feet
	Bearing                 *Bearing
	Threshold               math.Point2LL
	Gradient                *float64 // percent
	EllipsoidHeight         *float64 // meters
	ThresholdElevation      *int
	DisplacedThreshold      *int
	ThresholdCrossingHeight *int
	Width                   *int
	LocalizerIdent          string
	LocalizerCategory       byte
	Stopway                 *int
	SecondLocalizerIdent    string
	SecondLocalizerCategory byte
	Description             string
}

type Localizer struct {
	Airport             string
	Region              string
	Ident               string
	Category            byte
	Frequency           float64 // MHz
	Runway              string
	Location            *math.Point2LL
	Bearing             *Bearing
	GlideSlopeLocation  *math.Point2LL
	Position            *int // feet from the runway threshold
	PositionReference   byte
	GlideSlopePosition  *int
	Width               *float64
	GlideSlopeAngle     *float64
	Declination         *float64
	GlideSlopeTCH       *int
	GlideSlopeElevation *int
}

// ProcedureLeg is one leg of a SID, STAR or approach.
type ProcedureLeg struct {
	Section            SectionCode // PD, PE, PF or HF
	Airport            string
	Region             string
	Ident              string
	RouteType          byte
	Transition         string
	Sequence           int
	Fix                *FixRef
	Description        WaypointDescription
	TurnDirection      TurnDirection
	RNP                *float64
	PathTerminator     PathTerminator
	TurnDirectionValid bool
	RecommendedNavaid  *FixRef
	ArcRadius          *float64
	Theta              *float64
	Rho                *float64
	Course             *Bearing
	Distance           *float64
	HoldTime           *float64
	Altitude           AltitudeConstraint `msgpack:"-"`
	ATCIndicator       byte
	TransitionAltitude *int
	Speed              *SpeedConstraint
	VerticalAngle      *float64
	CenterFix          *FixRef
}

// IsMissedApproach reports whether the leg is explicitly marked as the
// first leg of a missed approach.
func (l ProcedureLeg) IsMissedApproach() bool {
	return l.Description.FirstMissedApproachLeg()
}

// SBASInfo is the SBAS/LPV data carried by an approach continuation
// record.
type SBASInfo struct {
	FASBlock               bool
	LPVLevelOfService      string
	LNAVVNAVAuthorized     bool
	LNAVVNAVLevelOfService string
	LNAVAuthorized         bool
	LNAVLevelOfService     string
}

type ApproachContinuation struct {
	Section    SectionCode
	Airport    string
	Ident      string
	Transition string
	Sequence   int
	SBAS       SBASInfo
}

type PathPoint struct {
	Airport                 string
	Region                  string
	Approach                string
	Runway                  string
	OperationType           int
	RouteIndicator          byte
	SBASProvider            int
	ReferencePathSelector   int
	ReferencePathIdent      string
	ApproachPerformance     int
	LandingThreshold        math.Point2LL
	EllipsoidHeight         float64 // meters
	GlidePathAngle          float64
	FlightPathAlignment     math.Point2LL
	CourseWidth             float64 // meters
	LengthOffset            *int    // meters
	ThresholdCrossingHeight float64
	TCHUnitsFeet            bool
	HorizontalAlertLimit    *float64 // meters
	VerticalAlertLimit      *float64 // meters
	CRC                     string
}

type PathPointContinuation struct {
	Airport               string
	Approach              string
	Runway                string
	FPAPEllipsoidHeight   *float64
	FPAPOrthometricHeight *float64
	LTPOrthometricHeight  *float64
	ApproachType          string
	GNSSChannel           *int
}

type MSASector struct {
	BearingFrom float64
	BearingTo   float64
	Altitude    Altitude
	Radius      *int // nm
}

type MSA struct {
	Section          SectionCode // PS or HS
	Airport          string
	Region           string
	Center           FixRef
	MultipleCode     byte
	Sectors          []MSASector
	BearingReference BearingReference // 0 if blank
}

func (Header) isRecord()                {}
func (VHFNavaid) isRecord()             {}
func (NDBNavaid) isRecord()             {}
func (Waypoint) isRecord()              {}
func (Hold) isRecord()                  {}
func (AirwayFix) isRecord()             {}
func (GridMORARow) isRecord()           {}
func (ControlledAirspace) isRecord()    {}
func (RestrictiveAirspace) isRecord()   {}
func (Airport) isRecord()               {}
func (Runway) isRecord()                {}
func (Localizer) isRecord()             {}
func (ProcedureLeg) isRecord()          {}
func (ApproachContinuation) isRecord()  {}
func (PathPoint) isRecord()             {}
func (PathPointContinuation) isRecord() {}
func (MSA) isRecord()                   {}

func (Header) Kind() RecordKind                { return KindHeader }
func (VHFNavaid) Kind() RecordKind             { return KindVHFNavaid }
func (Hold) Kind() RecordKind                  { return KindHolding }
func (AirwayFix) Kind() RecordKind             { return KindAirwayFix }
func (GridMORARow) Kind() RecordKind           { return KindGridMORA }
func (ControlledAirspace) Kind() RecordKind    { return KindControlledAirspace }
func (RestrictiveAirspace) Kind() RecordKind   { return KindRestrictiveAirspace }
func (Runway) Kind() RecordKind                { return KindRunway }
func (Localizer) Kind() RecordKind             { return KindLocalizer }
func (PathPoint) Kind() RecordKind             { return KindPathPoint }
func (PathPointContinuation) Kind() RecordKind { return KindPathPointContinuation }

func (n NDBNavaid) Kind() RecordKind {
	if n.Section == SectionTerminalNDB {
		return KindTerminalNDB
	}
	return KindNDBNavaid
}

func (w Waypoint) Kind() RecordKind {
	switch w.Section {
	case SectionTerminalWaypoint:
		return KindTerminalWaypoint
	case SectionHeliportWaypoint:
		return KindHeliportWaypoint
	default:
		return KindEnrouteWaypoint
	}
}

func (a Airport) Kind() RecordKind {
	if a.Section == SectionHeliport {
		return KindHeliport
	}
	return KindAirport
}

func (l ProcedureLeg) Kind() RecordKind {
	switch l.Section {
	case SectionSID:
		return KindSIDLeg
	case SectionSTAR:
		return KindSTARLeg
	case SectionHeliportApproach:
		return KindHeliportApproachLeg
	default:
		return KindApproachLeg
	}
}

func (c ApproachContinuation) Kind() RecordKind {
	if c.Section == SectionHeliportApproach {
		return KindHeliportApproachContinuation
	}
	return KindApproachContinuation
}

func (m MSA) Kind() RecordKind {
	if m.Section == SectionHeliportMSA {
		return KindHeliportMSA
	}
	return KindMSA
}
