// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package validate

import (
	"math"
	"testing"

	"github.com/jcodagnone/addrlookup/model"
	"github.com/jcodagnone/addrlookup/spatial"
	"github.com/stretchr/testify/assert"
)

func validRecord() *model.AddressRecord {
	return &model.AddressRecord{
		CompanyNormalized: "TATA CONSULTANCY SERVICES",
		City:              "Pune",
		PostalCode:        "411057",
		Country:           "IN",
		Point:             spatial.NewPoint(18.5913, 73.7389),
		Confidence:        1.0,
	}
}

func TestValidPostalCode(t *testing.T) {
	tests := []struct {
		name    string
		postal  string
		country string
		want    bool
	}{
		{"india six digits", "411057", "IN", true},
		{"india five digits", "41101", "IN", false},
		{"us zip", "94043", "US", true},
		{"us zip+4", "94043-1351", "US", true},
		{"us letters", "9404A", "US", false},
		{"gb", "SW1A 1AA", "GB", true},
		{"gb no space", "EC1A1BB", "GB", true},
		{"canada", "K1A 0B1", "CA", true},
		{"japan dash", "100-0001", "JP", true},
		{"japan plain", "1000001", "JP", true},
		{"australia", "2000", "AU", true},
		{"lowercase country", "411057", "in", true},
		{"surrounding spaces", " 411057 ", "IN", true},
		{"unknown country passes", "whatever", "BR", true},
		{"empty postal", "", "IN", true},
		{"empty country", "123", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidPostalCode(tt.postal, tt.country))
		})
	}
}

func TestValidCountry(t *testing.T) {
	assert.True(t, ValidCountry("IN"))
	assert.True(t, ValidCountry("us"))
	assert.False(t, ValidCountry("XX"))
	assert.False(t, ValidCountry(""))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *model.AddressRecord)
		want   []string
	}{
		{
			name:   "valid",
			mutate: func(*model.AddressRecord) {},
		},
		{
			name:   "missing name",
			mutate: func(r *model.AddressRecord) { r.CompanyNormalized = " " },
			want:   []string{"Missing company_normalized"},
		},
		{
			name:   "bad country",
			mutate: func(r *model.AddressRecord) { r.Country = "XX" },
			want:   []string{"Invalid country code: XX"},
		},
		{
			name:   "india five digit postal code",
			mutate: func(r *model.AddressRecord) { r.PostalCode = "41101" },
			want:   []string{"Invalid postal code format for IN: 41101"},
		},
		{
			name:   "latitude out of range",
			mutate: func(r *model.AddressRecord) { r.Point = spatial.NewPoint(91, 10) },
			want:   []string{"Invalid coordinates: (91, 10)"},
		},
		{
			name:   "unparsable coordinates",
			mutate: func(r *model.AddressRecord) { r.Point = spatial.NewPoint(math.NaN(), 10) },
			want:   []string{"Invalid coordinates: (NaN, 10)"},
		},
		{
			name:   "no coordinates",
			mutate: func(r *model.AddressRecord) { r.Point = nil },
		},
		{
			name:   "confidence above one",
			mutate: func(r *model.AddressRecord) { r.Confidence = 1.5 },
			want:   []string{"Invalid confidence score: 1.5"},
		},
		{
			name: "several problems",
			mutate: func(r *model.AddressRecord) {
				r.CompanyNormalized = ""
				r.Confidence = -0.1
			},
			want: []string{"Missing company_normalized", "Invalid confidence score: -0.1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRecord()
			tt.mutate(r)

			ok, errs := Validate(r)
			assert.Equal(t, len(tt.want) == 0, ok)
			assert.Equal(t, tt.want, errs)
		})
	}
}

func TestNeedsReview(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *model.AddressRecord)
		want   bool
	}{
		{"clean", func(*model.AddressRecord) {}, false},
		{"at threshold", func(r *model.AddressRecord) { r.Confidence = 0.80 }, false},
		{"low confidence", func(r *model.AddressRecord) { r.Confidence = 0.79 }, true},
		{"unparsable confidence", func(r *model.AddressRecord) { r.Confidence = math.NaN() }, true},
		{"missing city", func(r *model.AddressRecord) { r.City = "" }, true},
		{"missing country", func(r *model.AddressRecord) { r.Country = "" }, true},
		{"bad postal code", func(r *model.AddressRecord) { r.PostalCode = "41101" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRecord()
			tt.mutate(r)
			assert.Equal(t, tt.want, NeedsReview(r, DefaultReviewThreshold))
		})
	}

	assert.True(t, NeedsReview(nil, DefaultReviewThreshold))
}

func TestAssessQuality(t *testing.T) {
	q := AssessQuality(validRecord(), []string{"street_address"})
	assert.InDelta(t, 1.0, q.Score, 1e-9)
	assert.Empty(t, q.Issues)
	assert.Empty(t, q.Warnings)

	q = AssessQuality(&model.AddressRecord{PostalCode: "1"}, []string{"locality", "political"})
	assert.InDelta(t, 0.3, q.Score, 1e-9)
	assert.Equal(t, []string{"Missing city", "Missing country"}, q.Issues)
	assert.Equal(t, []string{"Result is not a specific address"}, q.Warnings)

	r := validRecord()
	r.PostalCode = "41101"
	q = AssessQuality(r, nil)
	assert.InDelta(t, 0.95, q.Score, 1e-9)
	assert.Equal(t, []string{"Postal code format may be incorrect"}, q.Warnings)
}
