// arinc424/decoders.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package arinc424

// Offsets below are zero-based; the ARINC 424 specification numbers
// columns starting from one.

// isContinuation reports whether a continuation record number denotes
// anything other than the primary record.
func isContinuation(c byte) bool {
	return c != '0' && c != '1' && c != ' '
}

func decodeVHFNavaid(r *fieldReader) (Record, error) {
	if isContinuation(r.line[21]) {
		return nil, nil
	}

	nav := VHFNavaid{
		Airport:      r.text(6, 10),
		Ident:        r.requiredText("VOR identifier", 13, 17),
		Region:       r.text(19, 21),
		Frequency:    required(r, "frequency", 22, 27, VHFFrequency),
		Class:        r.text(27, 32),
		Location:     r.location("VOR", 32),
		DMEIdent:     r.text(51, 55),
		DMELocation:  r.location("DME", 55),
		Declination:  optional(r, "station declination", 74, 79, MagneticVariation),
		DMEElevation: optional(r, "DME elevation", 79, 84, Elevation),
		Name:         r.text(93, 123),
	}
	if nav.Location == nil && nav.DMELocation == nil {
		r.fail("VOR location", 32, 51, ErrBlank)
	}
	return nav, r.err
}

func decodeNDBNavaid(r *fieldReader, section SectionCode) (Record, error) {
	if isContinuation(r.line[21]) {
		return nil, nil
	}

	ndb := NDBNavaid{
		Section:   section,
		Ident:     r.requiredText("NDB identifier", 13, 17),
		Region:    r.text(19, 21),
		Frequency: required(r, "frequency", 22, 27, NDBFrequency),
		Class:     r.text(27, 32),
		Location:  r.requiredLocation("NDB", 32),
		MagVar:    optional(r, "magnetic variation", 74, 79, MagneticVariation),
		Name:      r.text(93, 123),
	}
	if section == SectionTerminalNDB {
		ndb.Airport = r.requiredText("airport identifier", 6, 10)
	}
	return ndb, r.err
}

func decodeWaypoint(r *fieldReader, section SectionCode) (Record, error) {
	if isContinuation(r.line[21]) {
		return nil, nil
	}

	wp := Waypoint{
		Section:  section,
		Ident:    r.requiredText("waypoint identifier", 13, 18),
		Region:   r.text(19, 21),
		Type:     r.text(26, 29),
		Usage:    r.text(29, 31),
		Location: r.requiredLocation("waypoint", 32),
		MagVar:   optional(r, "magnetic variation", 74, 79, MagneticVariation),
		Name:     r.text(98, 123),
	}
	if section != SectionEnrouteWaypoint {
		wp.Airport = r.requiredText("airport identifier", 6, 10)
	}
	return wp, r.err
}

// Holding courses are either tenths of a degree or three digits of whole
// degrees with a trailing 'T'; ParseBearing handles both.
func decodeHold(r *fieldReader) (Record, error) {
	if isContinuation(r.line[38]) {
		return nil, nil
	}

	h := Hold{
		Region:        r.text(10, 12),
		InboundCourse: required(r, "inbound holding course", 39, 43, ParseBearing),
		LegLength:     optional(r, "leg length", 44, 47, Tenths),
		LegTime:       optional(r, "leg time", 47, 49, Tenths),
		MinAltitude:   r.altitude("minimum altitude", 49, 54, MSL),
		MaxAltitude:   r.altitude("maximum altitude", 54, 59, MSL),
		Speed:         optional(r, "holding speed", 59, 62, Speed),
		Name:          r.text(98, 123),
	}
	if region := r.text(6, 10); region != "ENRT" {
		h.Airport = region
	}
	if dup := optional(r, "duplicate identifier", 27, 29, Unsigned); dup != nil {
		h.Duplicate = *dup
	}
	if fix := r.fixRef(29, 34, 34, 36, 37); fix != nil {
		h.Fix = *fix
	} else {
		r.fail("fix identifier", 29, 34, ErrBlank)
	}

	var err error
	if h.Turn, err = ParseTurnDirection(r.line[43]); err != nil {
		r.fail("turn direction", 43, 44, err)
	}
	return h, r.err
}

func decodeAirwayFix(r *fieldReader) (Record, error) {
	if isContinuation(r.line[38]) {
		return nil, nil
	}

	af := AirwayFix{
		Route:             r.requiredText("route identifier", 13, 18),
		Sequence:          r.sequence(25, 29),
		Description:       WaypointDescription(r.line[39:43]),
		BoundaryCode:      r.line[43],
		RouteType:         r.line[44],
		Level:             r.line[45],
		Direction:         AirwayDirection(r.line[46]),
		RecommendedNavaid: r.fixRef(50, 54, 54, -1, -1),
		RNP:               optional(r, "RNP", 56, 59, RNP),
		Theta:             optional(r, "theta", 62, 66, Tenths),
		Rho:               optional(r, "rho", 66, 70, Tenths),
		OutboundCourse:    optional(r, "outbound course", 70, 74, ParseBearing),
		Distance:          optional(r, "route distance", 74, 78, Tenths),
		InboundCourse:     optional(r, "inbound course", 78, 82, ParseBearing),
		MinAltitude:       r.altitude("minimum altitude", 83, 88, MSL),
		MinAltitude2:      r.altitude("minimum altitude", 88, 93, MSL),
		MaxAltitude:       r.altitude("maximum altitude", 93, 98, MSL),
	}
	if fix := r.fixRef(29, 34, 34, 36, 37); fix != nil {
		af.Fix = *fix
	} else {
		r.fail("fix identifier", 29, 34, ErrBlank)
	}
	return af, r.err
}

func gridDegrees(b []byte, pos, neg byte) (*int, error) {
	if IsBlank(b) {
		return nil, nil
	}
	v, ok := digits(b[1:])
	if !ok {
		return nil, malformed(b, ErrInvalidNumber)
	}
	switch b[0] {
	case pos:
	case neg:
		v = -v
	default:
		return nil, malformed(b, ErrInvalidHemisphere)
	}
	return &v, nil
}

func decodeGridMORA(r *fieldReader) (Record, error) {
	row := GridMORARow{
		Latitude: required(r, "starting latitude", 13, 16, func(b []byte) (*int, error) {
			return gridDegrees(b, 'N', 'S')
		}),
		Longitude: required(r, "starting longitude", 16, 20, func(b []byte) (*int, error) {
			return gridDegrees(b, 'E', 'W')
		}),
	}
	if row.Latitude < -89 || row.Latitude > 90 {
		r.fail("starting latitude", 13, 16, ErrOutOfRange)
	}
	if row.Longitude < -180 || row.Longitude > 179 {
		r.fail("starting longitude", 16, 20, ErrOutOfRange)
	}
	for i := range row.MORAs {
		start := 30 + 3*i
		row.MORAs[i] = optional(r, "MORA", start, start+3, HundredsOfFeet)
	}
	return row, r.err
}

func decodeAirspaceBoundary(r *fieldReader) AirspaceBoundary {
	b := AirspaceBoundary{
		Sequence:    r.sequence(20, 24),
		Via:         required(r, "boundary via", 30, 32, ParseBoundaryVia),
		Location:    r.location("boundary", 32),
		ArcOrigin:   r.location("arc origin", 51),
		ArcDistance: optional(r, "arc distance", 70, 74, Tenths),
		ArcBearing:  optional(r, "arc bearing", 74, 78, ParseBearing),
		RNP:         optional(r, "RNP", 78, 81, RNP),
		LowerLimit:  r.altitude("lower limit", 81, 86, UnitDatum(r.line[86])),
		UpperLimit:  r.altitude("upper limit", 87, 92, UnitDatum(r.line[92])),
		Name:        r.text(93, 123),
	}

	switch {
	case b.Via.Path == BoundaryCircle:
		if b.ArcOrigin == nil {
			r.fail("arc origin", 51, 70, ErrBlank)
		}
		if b.ArcDistance == nil {
			r.fail("arc distance", 70, 74, ErrBlank)
		}
	case b.Location == nil:
		r.fail("boundary location", 32, 51, ErrBlank)
	case b.Via.IsArc() && b.ArcOrigin == nil:
		r.fail("arc origin", 51, 70, ErrBlank)
	}
	return b
}

func decodeControlledAirspace(r *fieldReader) (Record, error) {
	if isContinuation(r.line[24]) {
		return nil, nil
	}

	ca := ControlledAirspace{
		Region:       r.text(6, 8),
		Type:         ControlledAirspaceType(r.line[8]),
		Class:        r.line[16],
		MultipleCode: r.line[19],
		Boundary:     decodeAirspaceBoundary(r),
	}
	if center := r.fixRef(9, 14, -1, 14, 15); center != nil {
		ca.Center = *center
	} else {
		r.fail("airspace center", 9, 14, ErrBlank)
	}
	return ca, r.err
}

func decodeRestrictiveAirspace(r *fieldReader) (Record, error) {
	if isContinuation(r.line[24]) {
		return nil, nil
	}

	ra := RestrictiveAirspace{
		Region:       r.text(6, 8),
		Type:         r.line[8],
		Designation:  r.requiredText("restrictive airspace designation", 9, 19),
		MultipleCode: r.line[19],
		Boundary:     decodeAirspaceBoundary(r),
	}
	return ra, r.err
}

func decodeAirport(r *fieldReader, section SectionCode) (Record, error) {
	if isContinuation(r.line[21]) {
		return nil, nil
	}

	ap := Airport{
		Section:            section,
		Ident:              r.requiredText("airport identifier", 6, 10),
		Region:             r.text(10, 12),
		IATA:               r.text(13, 16),
		SpeedLimitAltitude: r.altitude("speed limit altitude", 22, 27, MSL),
		IFR:                r.flag(30, 'Y'),
		Surface:            r.line[31],
		Location:           r.requiredLocation("airport reference point", 32),
		MagVar:             optional(r, "magnetic variation", 51, 56, MagneticVariation),
		Elevation:          required(r, "elevation", 56, 61, Elevation),
		SpeedLimit:         optional(r, "speed limit", 61, 64, Speed),
		RecommendedNavaid:  r.fixRef(64, 68, 68, -1, -1),
		TransitionAltitude: optional(r, "transition altitude", 70, 75, Unsigned),
		TransitionLevel:    optional(r, "transition level", 75, 80, Unsigned),
		PublicMilitary:     r.line[80],
		TimeZone:           r.text(81, 84),
		DaylightSavings:    r.flag(84, 'Y'),
		TrueReferenced:     r.flag(85, 'T'),
		Datum:              r.text(86, 89),
		Name:               r.text(93, 123),
	}
	if section == SectionAirport {
		if rwy := optional(r, "longest runway", 27, 30, Unsigned); rwy != nil {
			ft := 100 * *rwy
			ap.LongestRunway = &ft
		}
	}
	return ap, r.err
}

func decodeRunway(r *fieldReader) (Record, error) {
	if isContinuation(r.line[21]) {
		return nil, nil
	}

	rwy := Runway{
		Airport:                 r.requiredText("airport identifier", 6, 10),
		Region:                  r.text(10, 12),
		Ident:                   r.requiredText("runway identifier", 13, 18),
		Length:                  optional(r, "runway length", 22, 27, Unsigned),
		Bearing:                 optional(r, "runway bearing", 27, 31, ParseBearing),
		Threshold:               r.requiredLocation("runway threshold", 32),
		EllipsoidHeight:         optional(r, "ellipsoid height", 60, 66, SignedTenths),
		ThresholdElevation:      optional(r, "threshold elevation", 66, 71, Elevation),
		DisplacedThreshold:      optional(r, "displaced threshold distance", 71, 75, Unsigned),
		ThresholdCrossingHeight: optional(r, "threshold crossing height", 75, 77, Unsigned),
		Width:                   optional(r, "runway width", 77, 80, Unsigned),
		LocalizerIdent:          r.text(81, 85),
		LocalizerCategory:       r.line[85],
		Stopway:                 optional(r, "stopway", 86, 90, Unsigned),
		SecondLocalizerIdent:    r.text(90, 94),
		SecondLocalizerCategory: r.line[94],
		Description:             r.text(101, 123),
	}
	// The gradient is given in thousandths of a percent.
	if g, err := Signed(r.line[51:56]); err != nil {
		r.fail("runway gradient", 51, 56, err)
	} else if g != nil {
		pct := float64(*g) / 1000
		rwy.Gradient = &pct
	}
	return rwy, r.err
}

func decodeLocalizer(r *fieldReader) (Record, error) {
	if isContinuation(r.line[21]) {
		return nil, nil
	}

	loc := Localizer{
		Airport:             r.requiredText("airport identifier", 6, 10),
		Region:              r.text(10, 12),
		Ident:               r.requiredText("localizer identifier", 13, 17),
		Category:            r.line[17],
		Frequency:           required(r, "frequency", 22, 27, VHFFrequency),
		Runway:              r.text(27, 32),
		Location:            r.location("localizer", 32),
		Bearing:             optional(r, "localizer bearing", 51, 55, ParseBearing),
		GlideSlopeLocation:  r.location("glide slope", 55),
		Position:            optional(r, "localizer position", 74, 78, Unsigned),
		PositionReference:   r.line[78],
		GlideSlopePosition:  optional(r, "glide slope position", 79, 83, Unsigned),
		Width:               optional(r, "localizer width", 83, 87, Hundredths),
		GlideSlopeAngle:     optional(r, "glide slope angle", 87, 90, Hundredths),
		Declination:         optional(r, "station declination", 90, 95, MagneticVariation),
		GlideSlopeTCH:       optional(r, "glide slope height at landing threshold", 95, 97, Unsigned),
		GlideSlopeElevation: optional(r, "glide slope elevation", 97, 102, Elevation),
	}
	return loc, r.err
}

func decodeProcedureLeg(r *fieldReader, section SectionCode) (Record, error) {
	if isContinuation(r.line[38]) {
		if (section == SectionApproach || section == SectionHeliportApproach) && r.line[39] == 'W' {
			return decodeApproachContinuation(r, section)
		}
		// Other continuation application types don't carry anything we
		// keep.
		return nil, nil
	}

	leg := ProcedureLeg{
		Section:            section,
		Airport:            r.requiredText("airport identifier", 6, 10),
		Region:             r.text(10, 12),
		Ident:              r.requiredText("procedure identifier", 13, 19),
		RouteType:          r.line[19],
		Transition:         r.text(20, 25),
		Sequence:           r.sequence(26, 29),
		Fix:                r.fixRef(29, 34, 34, 36, 37),
		Description:        WaypointDescription(r.line[39:43]),
		RNP:                optional(r, "RNP", 44, 47, RNP),
		PathTerminator:     required(r, "path and termination", 47, 49, ParsePathTerminator),
		TurnDirectionValid: r.flag(49, 'Y'),
		RecommendedNavaid:  r.fixRef(50, 54, 54, 78, 79),
		ArcRadius:          optional(r, "arc radius", 56, 62, ArcRadius),
		Theta:              optional(r, "theta", 62, 66, Tenths),
		Rho:                optional(r, "rho", 66, 70, Tenths),
		Course:             optional(r, "magnetic course", 70, 74, ParseBearing),
		ATCIndicator:       r.line[83],
		TransitionAltitude: optional(r, "transition altitude", 94, 99, Unsigned),
		VerticalAngle:      optional(r, "vertical angle", 102, 106, VerticalAngle),
		CenterFix:          r.fixRef(106, 111, 112, 114, 115),
	}

	var err error
	if leg.TurnDirection, err = ParseTurnDirection(r.line[43]); err != nil {
		r.fail("turn direction", 43, 44, err)
	}
	if leg.Distance, leg.HoldTime, err = DistanceOrTime(r.line[74:78]); err != nil {
		r.fail("route distance/holding time", 74, 78, err)
	}

	altCode := r.line[82]
	alt1 := r.altitude("altitude", 84, 89, MSL)
	alt2 := r.altitude("altitude", 89, 94, MSL)
	if !validAltitudeCode(altCode) {
		r.fail("altitude description", 82, 83, ErrInvalidCode)
	} else if alt1 != nil || alt2 != nil {
		var ok bool
		if leg.Altitude, ok = NewAltitudeConstraint(altCode, alt1, alt2); !ok {
			r.fail("altitude", 84, 94, ErrBlank)
		}
	}

	speed := optional(r, "speed limit", 99, 102, Speed)
	if speed != nil {
		var ok bool
		if leg.Speed, ok = NewSpeedConstraint(r.line[117], speed); !ok {
			r.fail("speed limit description", 117, 118, ErrInvalidCode)
		}
	}

	if leg.PathTerminator == RadiusToFix && leg.CenterFix == nil {
		r.fail("center fix", 106, 111, ErrBlank)
	}
	return leg, r.err
}

func decodeApproachContinuation(r *fieldReader, section SectionCode) (Record, error) {
	r.kind = KindApproachContinuation
	if section == SectionHeliportApproach {
		r.kind = KindHeliportApproachContinuation
	}

	c := ApproachContinuation{
		Section:    section,
		Airport:    r.requiredText("airport identifier", 6, 10),
		Ident:      r.requiredText("procedure identifier", 13, 19),
		Transition: r.text(20, 25),
		Sequence:   r.sequence(26, 29),
		SBAS: SBASInfo{
			FASBlock:               r.flag(40, 'Y'),
			LPVLevelOfService:      r.text(41, 51),
			LNAVVNAVAuthorized:     r.flag(51, 'Y'),
			LNAVVNAVLevelOfService: r.text(52, 62),
			LNAVAuthorized:         r.flag(62, 'Y'),
			LNAVLevelOfService:     r.text(63, 73),
		},
	}
	return c, r.err
}

func decodePathPoint(r *fieldReader) (Record, error) {
	if isContinuation(r.line[26]) {
		r.kind = KindPathPointContinuation
		c := PathPointContinuation{
			Airport:               r.requiredText("airport identifier", 6, 10),
			Approach:              r.requiredText("approach identifier", 13, 19),
			Runway:                r.requiredText("runway identifier", 19, 24),
			FPAPEllipsoidHeight:   optional(r, "FPAP ellipsoid height", 28, 34, SignedTenths),
			FPAPOrthometricHeight: optional(r, "FPAP orthometric height", 34, 40, SignedTenths),
			LTPOrthometricHeight:  optional(r, "LTP orthometric height", 40, 46, SignedTenths),
			ApproachType:          r.text(46, 56),
			GNSSChannel:           optional(r, "GNSS channel number", 56, 61, Unsigned),
		}
		return c, r.err
	}

	pp := PathPoint{
		Airport:                 r.requiredText("airport identifier", 6, 10),
		Region:                  r.text(10, 12),
		Approach:                r.requiredText("approach identifier", 13, 19),
		Runway:                  r.requiredText("runway identifier", 19, 24),
		OperationType:           required(r, "operation type", 24, 26, Unsigned),
		RouteIndicator:          r.line[27],
		SBASProvider:            required(r, "SBAS service provider", 28, 30, Unsigned),
		ReferencePathSelector:   required(r, "reference path data selector", 30, 32, Unsigned),
		ReferencePathIdent:      r.requiredText("reference path identifier", 32, 36),
		ApproachPerformance:     required(r, "approach performance designator", 36, 37, Unsigned),
		EllipsoidHeight:         required(r, "LTP ellipsoid height", 60, 66, SignedTenths),
		GlidePathAngle:          required(r, "glide path angle", 66, 70, Hundredths),
		CourseWidth:             required(r, "course width at threshold", 93, 98, Hundredths),
		LengthOffset:            optional(r, "length offset", 98, 102, Unsigned),
		ThresholdCrossingHeight: required(r, "path point TCH", 102, 108, Tenths),
		TCHUnitsFeet:            r.flag(108, 'F'),
		HorizontalAlertLimit:    optional(r, "horizontal alert limit", 109, 112, Tenths),
		VerticalAlertLimit:      optional(r, "vertical alert limit", 112, 115, Tenths),
		CRC:                     r.text(115, 123),
	}
	if p := r.highPrecisionLocation("landing threshold point", 37); p != nil {
		pp.LandingThreshold = *p
	} else {
		r.fail("landing threshold point", 37, 60, ErrBlank)
	}
	if p := r.highPrecisionLocation("flight path alignment point", 70); p != nil {
		pp.FlightPathAlignment = *p
	} else {
		r.fail("flight path alignment point", 70, 93, ErrBlank)
	}
	return pp, r.err
}

// Each MSA record carries up to seven sectors of 11 bytes each: bearing
// from and to in whole degrees, altitude in hundreds of feet and radius.
const (
	msaSectorStart = 42
	msaSectorSize  = 11
	msaNumSectors  = 7
)

func decodeMSA(r *fieldReader, section SectionCode) (Record, error) {
	if isContinuation(r.line[38]) {
		return nil, nil
	}

	msa := MSA{
		Section:          section,
		Airport:          r.requiredText("airport identifier", 6, 10),
		Region:           r.text(10, 12),
		MultipleCode:     r.line[22],
		BearingReference: BearingReference(r.line[119]),
	}
	if center := r.fixRef(13, 18, 18, 20, 21); center != nil {
		msa.Center = *center
	} else {
		r.fail("MSA center", 13, 18, ErrBlank)
	}

	switch msa.BearingReference {
	case ' ':
		msa.BearingReference = 0
	case BearingMagnetic, BearingTrue:
	default:
		r.fail("magnetic/true indicator", 119, 120, ErrInvalidCode)
	}

	for i := range msaNumSectors {
		start := msaSectorStart + i*msaSectorSize
		if IsBlank(r.line[start : start+msaSectorSize]) {
			continue
		}
		sector := MSASector{
			BearingFrom: float64(required(r, "sector bearing", start, start+3, Unsigned)),
			BearingTo:   float64(required(r, "sector bearing", start+3, start+6, Unsigned)),
			Altitude:    required(r, "sector altitude", start+6, start+9, HundredsOfFeet),
			Radius:      optional(r, "sector radius", start+9, start+11, Unsigned),
		}
		if sector.BearingFrom == 360 {
			sector.BearingFrom = 0
		}
		if sector.BearingTo == 360 {
			sector.BearingTo = 0
		}
		msa.Sectors = append(msa.Sectors, sector)
	}
	return msa, r.err
}
