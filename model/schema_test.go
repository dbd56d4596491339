// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jcodagnone/addrlookup/spatial"
	"github.com/stretchr/testify/assert"
)

func TestRowFollowsColumns(t *testing.T) {
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	r := &AddressRecord{
		CompanyRaw:        "TCS",
		CompanyNormalized: "TATA CONSULTANCY SERVICES",
		SiteHint:          "Pune, India",
		Street1:           "Hinjewadi Phase 3",
		City:              "Pune",
		StateRegion:       "Maharashtra",
		PostalCode:        "411057",
		Country:           "IN",
		Point:             spatial.NewPoint(18.58, 73.7),
		Source:            SourceGeocoded,
		Confidence:        0.95,
		PlaceID:           "abc",
		QAStatus:          QAAuto,
		CreatedAt:         created,
		UpdatedAt:         created,
	}

	row := r.Row()
	assert.Len(t, row, len(Columns))
	assert.Equal(t, "18.58", row[9])
	assert.Equal(t, "0.95", row[12])
	assert.Equal(t, "2025-03-01T10:00:00Z", row[16])

	back := FromRow(row)
	if diff := cmp.Diff(r, back); diff != "" {
		t.Errorf("FromRow(Row()) mismatch (-want +got):\n%s", diff)
	}
}

func TestFromRowUnparsable(t *testing.T) {
	row := make([]string, len(Columns))
	row[1] = "ACME"
	row[9] = "north"
	row[10] = "east"
	row[12] = "high"

	r := FromRow(row)
	assert.True(t, math.IsNaN(r.Confidence))
	assert.False(t, r.Point.Valid())
}

func TestFromRowShort(t *testing.T) {
	r := FromRow([]string{"Acme Ltd", "ACME"})
	assert.Equal(t, "ACME", r.CompanyNormalized)
	assert.Nil(t, r.Point)
	assert.Zero(t, r.Confidence)
}

func TestDisplayNamesCoverColumns(t *testing.T) {
	for _, c := range Columns {
		assert.NotEmpty(t, DisplayNames[c], c)
	}
}

func TestAppendNote(t *testing.T) {
	r := &AddressRecord{}
	r.AppendNote("one")
	r.AppendNote("")
	r.AppendNote("two")
	assert.Equal(t, "one; two", r.Notes)
}
