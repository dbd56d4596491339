// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"math"
	"strconv"
	"time"

	"github.com/jcodagnone/addrlookup/spatial"
)

// Columns is the registry column order. Flat-file and spreadsheet backed
// registries must keep it.
var Columns = []string{
	"company_raw",
	"company_normalized",
	"site_hint",
	"street_1",
	"street_2",
	"city",
	"state_region",
	"postal_code",
	"country",
	"lat",
	"lng",
	"source",
	"confidence",
	"geocoder_place_id",
	"qa_status",
	"notes",
	"created_at",
	"updated_at",
}

// DisplayNames maps registry columns to the headers used in reports handed
// to people. Only the presentation layer uses it.
var DisplayNames = map[string]string{
	"company_raw":        "COMPANY NAME (RAW)",
	"company_normalized": "COMPANY NAME (NORMALIZED)",
	"site_hint":          "SITE HINT",
	"street_1":           "STREET ADDRESS1",
	"street_2":           "STREET ADDRESS2",
	"city":               "CITY NAME",
	"state_region":       "STATE NAME",
	"postal_code":        "PIN CODE",
	"country":            "COUNTRY NAME",
	"lat":                "LAT",
	"lng":                "LNG",
	"source":             "SOURCE",
	"confidence":         "CONFIDENCE",
	"geocoder_place_id":  "GEOCODER PLACE ID",
	"qa_status":          "QA STATUS",
	"notes":              "NOTES",
	"created_at":         "CREATED AT",
	"updated_at":         "UPDATED AT",
}

// Row flattens the record following Columns.
func (r *AddressRecord) Row() []string {
	var lat, lng string
	if r.Point != nil {
		lat = strconv.FormatFloat(r.Point.Lat, 'f', -1, 64)
		lng = strconv.FormatFloat(r.Point.Lng, 'f', -1, 64)
	}

	return []string{
		r.CompanyRaw,
		r.CompanyNormalized,
		r.SiteHint,
		r.Street1,
		r.Street2,
		r.City,
		r.StateRegion,
		r.PostalCode,
		r.Country,
		lat,
		lng,
		string(r.Source),
		strconv.FormatFloat(r.Confidence, 'f', -1, 64),
		r.PlaceID,
		string(r.QAStatus),
		r.Notes,
		formatTime(r.CreatedAt),
		formatTime(r.UpdatedAt),
	}
}

// FromRow rebuilds a record from a row laid out following Columns. Missing
// trailing cells are treated as empty. An unparsable confidence becomes NaN
// so that review checks flag it.
func FromRow(row []string) *AddressRecord {
	cell := func(i int) string {
		if i < len(row) {
			return row[i]
		}

		return ""
	}

	r := &AddressRecord{
		CompanyRaw:        cell(0),
		CompanyNormalized: cell(1),
		SiteHint:          cell(2),
		Street1:           cell(3),
		Street2:           cell(4),
		City:              cell(5),
		StateRegion:       cell(6),
		PostalCode:        cell(7),
		Country:           cell(8),
		Source:            Source(cell(11)),
		PlaceID:           cell(13),
		QAStatus:          QAStatus(cell(14)),
		Notes:             cell(15),
		CreatedAt:         parseTime(cell(16)),
		UpdatedAt:         parseTime(cell(17)),
	}

	lat, errLat := strconv.ParseFloat(cell(9), 64)
	lng, errLng := strconv.ParseFloat(cell(10), 64)

	switch {
	case cell(9) == "" && cell(10) == "":
	case errLat != nil || errLng != nil:
		r.Point = spatial.NewPoint(math.NaN(), math.NaN())
	default:
		r.Point = spatial.NewPoint(lat, lng)
	}

	switch c := cell(12); c {
	case "":
		r.Confidence = 0
	default:
		v, err := strconv.ParseFloat(c, 64)
		if err != nil {
			v = math.NaN()
		}

		r.Confidence = v
	}

	return r
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}

	return t
}
