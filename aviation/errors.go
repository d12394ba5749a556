// aviation/errors.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidUTF8      = errors.New("Input is not valid UTF-8")
	ErrUnknownAirport   = errors.New("Unknown airport")
	ErrUnknownProcedure = errors.New("Unknown procedure")
)

// StreamError is returned when the input cannot be read or is not valid
// text. Unlike the other errors, it ends the decode.
type StreamError struct {
	Line int // 0 if the error is not associated with a line
	Err  error
}

func (e *StreamError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("read error: %v", e.Err)
	}
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *StreamError) Unwrap() error {
	return e.Err
}

// EntityKind identifies the kind of composite entity an
// AggregationError refers to.
type EntityKind int

const (
	EntityAirway EntityKind = iota
	EntitySID
	EntitySTAR
	EntityApproach
	EntityHeliportApproach
	EntityMSA
	EntityControlledAirspace
	EntitySpecialUseAirspace
)

func (k EntityKind) String() string {
	switch k {
	case EntityAirway:
		return "airway"
	case EntitySID:
		return "SID"
	case EntitySTAR:
		return "STAR"
	case EntityApproach:
		return "approach"
	case EntityHeliportApproach:
		return "heliport approach"
	case EntityMSA:
		return "MSA"
	case EntityControlledAirspace:
		return "controlled airspace"
	case EntitySpecialUseAirspace:
		return "special use airspace"
	default:
		return "unknown entity"
	}
}

// AggregationReason is the closed set of reasons a group of records may
// fail to become an entity.
type AggregationReason int

const (
	ReasonMissingMetadata AggregationReason = iota
	ReasonInvalidRouteType
	ReasonMissingRouteType
	ReasonMissingRadius
	ReasonNoRecords
	ReasonMissingRestrictiveType
)

func (r AggregationReason) String() string {
	switch r {
	case ReasonMissingMetadata:
		return "missing metadata"
	case ReasonInvalidRouteType:
		return "invalid route type"
	case ReasonMissingRouteType:
		return "missing route type"
	case ReasonMissingRadius:
		return "missing radius"
	case ReasonNoRecords:
		return "no records"
	case ReasonMissingRestrictiveType:
		return "missing restrictive type"
	default:
		return "unknown reason"
	}
}

// AggregationError is reported by Builder.Build for each group of
// records that could not be finalized; the group is left out of the
// Result.
type AggregationError struct {
	Kind   EntityKind
	Key    string
	Reason AggregationReason
	Detail string
}

func (e *AggregationError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s %s: %s (%s)", e.Kind, e.Key, e.Reason, e.Detail)
	}
	return fmt.Sprintf("%s %s: %s", e.Kind, e.Key, e.Reason)
}
