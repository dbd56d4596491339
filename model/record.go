// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

// Package model holds the address record shared by every stage of the
// resolution pipeline.
package model

import (
	"time"

	"github.com/jcodagnone/addrlookup/spatial"
)

// Source tells where a lookup result came from.
type Source string

// Lookup sources. The last two never carry a record.
const (
	SourceCache        Source = "cache"
	SourceStorage      Source = "storage"
	SourceStorageFuzzy Source = "storage_fuzzy"
	SourceGeocoded     Source = "geocoded"
	SourceNotFound     Source = "not_found"
	SourceInvalidInput Source = "invalid_input"
)

// QAStatus is the review state of a record.
type QAStatus string

// QA states.
const (
	QAAuto   QAStatus = "auto"
	QAReview QAStatus = "review"
)

// AddressRecord is a resolved, standardized postal address for a company.
type AddressRecord struct {
	ID                string         `json:"id,omitempty"`
	CompanyRaw        string         `json:"company_raw"`
	CompanyNormalized string         `json:"company_normalized"`
	SiteHint          string         `json:"site_hint,omitempty"`
	Street1           string         `json:"street_1"`
	Street2           string         `json:"street_2,omitempty"`
	City              string         `json:"city"`
	StateRegion       string         `json:"state_region"`
	PostalCode        string         `json:"postal_code"`
	Country           string         `json:"country"`      // ISO-2
	CountryName       string         `json:"country_name"` // long form
	Point             *spatial.Point `json:"point,omitempty"`
	FormattedAddress  string         `json:"formatted_address,omitempty"`
	Source            Source         `json:"source"`
	Confidence        float64        `json:"confidence"`
	PlaceID           string         `json:"geocoder_place_id,omitempty"`
	QAStatus          QAStatus       `json:"qa_status"`
	Notes             string         `json:"notes,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// Clone returns a deep copy of the record.
func (r *AddressRecord) Clone() *AddressRecord {
	if r == nil {
		return nil
	}

	c := *r
	if r.Point != nil {
		p := *r.Point
		c.Point = &p
	}

	return &c
}

// AppendNote adds a note, separating it from existing ones.
func (r *AddressRecord) AppendNote(note string) {
	if note == "" {
		return
	}

	if r.Notes == "" {
		r.Notes = note
	} else {
		r.Notes += "; " + note
	}
}
