// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

// Package registry is the shared store of resolved addresses.
package registry

import (
	"errors"
	"strings"
	"time"

	"github.com/jcodagnone/addrlookup/model"
	"github.com/jcodagnone/addrlookup/spatial"
	"github.com/uber/h3-go/v4"
)

// ErrNotFound is returned when no record matches.
var ErrNotFound = errors.New("record not found")

// NearbyResolution is the H3 resolution used for proximity searches.
const NearbyResolution = 7

// Registry stores address records.
//
// Exact lookups compare names case-insensitively. The city and country
// filters only apply when given and when the stored record has a value for
// them, so a record with an unknown city still matches a city filter.
type Registry interface {
	// FindExact returns the first record named name, or ErrNotFound.
	FindExact(name, city, country string) (*model.AddressRecord, error)
	// FindByPlaceID returns the first record with the provider place id.
	FindByPlaceID(placeID string) (*model.AddressRecord, error)
	// Candidates returns the records eligible for fuzzy matching.
	Candidates(country string) ([]*model.AddressRecord, error)
	// Insert appends r, assigning its ID and timestamps when unset.
	Insert(r *model.AddressRecord) error
	// Update changes the first record named name.
	Update(name string, u Update) error
	// All returns up to limit records in insertion order; limit <= 0 is all.
	All(limit int) ([]*model.AddressRecord, error)
	// LowConfidence returns the records below threshold.
	LowConfidence(threshold float64) ([]*model.AddressRecord, error)
	// Nearby returns the records within k H3 rings of p.
	Nearby(p *spatial.Point, k int) ([]*model.AddressRecord, error)
	Stats() (Stats, error)
	Close() error
}

// Update lists the fields to change; nil fields are kept.
type Update struct {
	Confidence *float64
	QAStatus   *model.QAStatus
	Notes      *string
}

// Stats summarizes the registry.
type Stats struct {
	Total       int            `json:"total_records"`
	AutoCount   int            `json:"auto_approved"`
	ReviewCount int            `json:"needs_review"`
	Sources     map[string]int `json:"sources"`
}

// trim drops the surrounding spaces, as SQL trim() does.
func trim(s string) string {
	return strings.Trim(s, " ")
}

func sameFold(a, b string) bool {
	return strings.EqualFold(trim(a), trim(b))
}

// softMatch is the filter rule for optional city/country hints.
func softMatch(want, have string) bool {
	return trim(want) == "" || trim(have) == "" || sameFold(want, have)
}

func matchesExact(r *model.AddressRecord, name, city, country string) bool {
	return sameFold(r.CompanyNormalized, name) &&
		softMatch(city, r.City) &&
		softMatch(country, r.Country)
}

func isCandidate(r *model.AddressRecord, country string) bool {
	return trim(r.CompanyNormalized) != "" && softMatch(country, r.Country)
}

// prepareInsert fills the ID and timestamps of a new record.
func prepareInsert(r *model.AddressRecord, id string, now time.Time) {
	if r.ID == "" {
		r.ID = id
	}

	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}

	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = r.CreatedAt
	}
}

func (u Update) apply(r *model.AddressRecord, now time.Time) {
	if u.Confidence != nil {
		r.Confidence = *u.Confidence
	}

	if u.QAStatus != nil {
		r.QAStatus = *u.QAStatus
	}

	if u.Notes != nil {
		r.Notes = *u.Notes
	}

	r.UpdatedAt = now
}

func summarize(records []*model.AddressRecord) Stats {
	s := Stats{Sources: map[string]int{}}

	for _, r := range records {
		s.Total++

		switch r.QAStatus {
		case model.QAAuto:
			s.AutoCount++
		case model.QAReview:
			s.ReviewCount++
		}

		src := string(r.Source)
		if src == "" {
			src = "unknown"
		}

		s.Sources[src]++
	}

	return s
}

// inCells keeps the records whose point falls in one of cells.
func inCells(records []*model.AddressRecord, cells []h3.Cell) []*model.AddressRecord {
	set := make(map[h3.Cell]bool, len(cells))
	for _, c := range cells {
		set[c] = true
	}

	var out []*model.AddressRecord

	for _, r := range records {
		if !r.Point.Valid() {
			continue
		}

		c, err := r.Point.Cell(NearbyResolution)
		if err == nil && set[c] {
			out = append(out, r)
		}
	}

	return out
}

// Registry types.
const (
	TypeDuckDB = "duckdb"
	TypeXLSX   = "xlsx"
)

// Open opens the registry of the given type. sheet only applies to XLSX.
func Open(typ, path, sheet string) (Registry, error) {
	switch typ {
	case TypeDuckDB, "":
		return OpenDuckDB(path)
	case TypeXLSX:
		return OpenSpreadsheet(path, sheet)
	default:
		return nil, errors.New("unknown registry type: " + typ)
	}
}
