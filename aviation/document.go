// aviation/document.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"cmp"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/mmp/cifp/arinc424"
	"github.com/mmp/cifp/util"

	"github.com/iancoleman/orderedmap"
)

// MarshalJSON encodes the altitude constraint in its printed form, since
// the concrete constraint type would otherwise be lost.
func (l Leg) MarshalJSON() ([]byte, error) {
	type leg arinc424.ProcedureLeg
	var alt string
	if l.Altitude != nil {
		alt = l.Altitude.String()
	}
	return json.Marshal(struct {
		leg
		Altitude string `json:",omitempty"`
	}{leg: leg(l.ProcedureLeg), Altitude: alt})
}

// toDocument converts v to an ordered map whose keys are in the order of
// v's struct fields.
func toDocument(v any) (*orderedmap.OrderedMap, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	o := orderedmap.New()
	if err := json.Unmarshal(b, o); err != nil {
		return nil, err
	}
	return o, nil
}

func section[K comparable, V any](m map[K]V, keyString func(K) string, less func(a, b K) int) (*orderedmap.OrderedMap, error) {
	keys := slices.SortedFunc(maps.Keys(m), less)

	o := orderedmap.New()
	for _, k := range keys {
		d, err := toDocument(m[k])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", keyString(k), err)
		}
		o.Set(keyString(k), d)
	}
	return o, nil
}

func stringSection[V any](m map[string]V) (*orderedmap.OrderedMap, error) {
	return section(m, func(s string) string { return s }, strings.Compare)
}

// Document flattens the database into a nested document with the
// children of airports and heliports embedded in their parents. Each
// level is ordered by identifier.
func (db *Database) Document() (*orderedmap.OrderedMap, error) {
	doc := orderedmap.New()
	doc.SetEscapeHTML(false)

	hdrs := util.MapSlice(db.Headers, func(h arinc424.Header) string { return h.Raw })
	doc.Set("headers", hdrs)

	sections := []struct {
		name  string
		build func() (*orderedmap.OrderedMap, error)
	}{
		{"vhf_navaids", func() (*orderedmap.OrderedMap, error) { return stringSection(db.VHFNavaids) }},
		{"ndb_navaids", func() (*orderedmap.OrderedMap, error) { return stringSection(db.NDBNavaids) }},
		{"enroute_waypoints", func() (*orderedmap.OrderedMap, error) { return stringSection(db.EnrouteWaypoints) }},
		{"enroute_holds", func() (*orderedmap.OrderedMap, error) { return stringSection(db.EnrouteHolds) }},
		{"airways", func() (*orderedmap.OrderedMap, error) { return stringSection(db.Airways) }},
		{"grid_mora", func() (*orderedmap.OrderedMap, error) {
			return section(db.GridMORAs, GridCell.String, compareCells)
		}},
		{"controlled_airspace", func() (*orderedmap.OrderedMap, error) { return stringSection(db.ControlledAirspace) }},
		{"special_use_airspace", func() (*orderedmap.OrderedMap, error) { return stringSection(db.SpecialUseAirspace) }},
		{"airports", func() (*orderedmap.OrderedMap, error) { return stringSection(db.Airports) }},
		{"heliports", func() (*orderedmap.OrderedMap, error) { return stringSection(db.Heliports) }},
	}
	for _, s := range sections {
		o, err := s.build()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.name, err)
		}
		doc.Set(s.name, o)
	}
	return doc, nil
}

// WriteJSON writes the database's document to w.
func (db *Database) WriteJSON(w io.Writer) error {
	doc, err := db.Document()
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func (c GridCell) String() string {
	return strconv.Itoa(c.Latitude) + "," + strconv.Itoa(c.Longitude)
}

func compareCells(a, b GridCell) int {
	if a.Latitude != b.Latitude {
		return cmp.Compare(b.Latitude, a.Latitude) // north to south
	}
	return cmp.Compare(a.Longitude, b.Longitude)
}
