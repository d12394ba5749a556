// server/errors.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package server

import (
	"errors"
	"net/http"

	"github.com/mmp/cifp/aviation"
)

var (
	ErrUnknownFix    = errors.New("Unknown fix")
	ErrUnknownNavaid = errors.New("Unknown navaid")
	ErrUnknownAirway = errors.New("Unknown airway")
	ErrInvalidQuery  = errors.New("Invalid query")
)

var errorStatus = map[error]int{
	aviation.ErrUnknownAirport:   http.StatusNotFound,
	aviation.ErrUnknownProcedure: http.StatusNotFound,
	ErrUnknownFix:                http.StatusNotFound,
	ErrUnknownNavaid:             http.StatusNotFound,
	ErrUnknownAirway:             http.StatusNotFound,
	ErrInvalidQuery:              http.StatusBadRequest,
}

// statusForError returns the HTTP status code to report for err.
func statusForError(err error) int {
	for e, status := range errorStatus {
		if errors.Is(err, e) {
			return status
		}
	}
	return http.StatusInternalServerError
}
