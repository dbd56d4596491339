// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

// Package validate checks resolved address records for structural problems
// and decides when a record needs manual review.
package validate

import (
	"fmt"
	"math"
	"regexp"
	"slices"
	"strings"

	"github.com/jcodagnone/addrlookup/model"
)

// DefaultReviewThreshold is the confidence below which a record is reviewed.
const DefaultReviewThreshold = 0.80

// postalPatterns holds the known postal code formats by ISO-2 country code.
// Countries not listed accept any postal code.
var postalPatterns = map[string]*regexp.Regexp{
	"IN": regexp.MustCompile(`^\d{6}$`),
	"US": regexp.MustCompile(`^\d{5}(-\d{4})?$`),
	"GB": regexp.MustCompile(`^[A-Z]{1,2}\d{1,2}[A-Z]?\s?\d[A-Z]{2}$`),
	"CA": regexp.MustCompile(`^[A-Z]\d[A-Z]\s?\d[A-Z]\d$`),
	"AU": regexp.MustCompile(`^\d{4}$`),
	"DE": regexp.MustCompile(`^\d{5}$`),
	"FR": regexp.MustCompile(`^\d{5}$`),
	"JP": regexp.MustCompile(`^\d{3}-?\d{4}$`),
	"CN": regexp.MustCompile(`^\d{6}$`),
}

// validCountries are the ISO-2 codes records may carry.
var validCountries = map[string]bool{
	"IN": true, "US": true, "GB": true, "CA": true, "AU": true, "DE": true, "FR": true, "JP": true, "CN": true,
	"BR": true, "MX": true, "IT": true, "ES": true, "NL": true, "SE": true, "NO": true, "DK": true, "FI": true,
	"PL": true, "RO": true, "CZ": true, "HU": true, "PT": true, "GR": true, "BE": true, "AT": true, "CH": true,
	"IE": true, "NZ": true, "SG": true, "MY": true, "TH": true, "ID": true, "PH": true, "VN": true, "KR": true,
	"TW": true, "HK": true, "AE": true, "SA": true, "IL": true, "TR": true, "EG": true, "ZA": true, "NG": true,
}

// ValidCountry reports whether country is an accepted ISO-2 code.
func ValidCountry(country string) bool {
	return validCountries[strings.ToUpper(strings.TrimSpace(country))]
}

// ValidPostalCode reports whether postal matches the format of country.
// Empty values and countries without a known format pass.
func ValidPostalCode(postal, country string) bool {
	if postal == "" || country == "" {
		return true
	}

	re, ok := postalPatterns[strings.ToUpper(country)]
	if !ok {
		return true
	}

	return re.MatchString(strings.TrimSpace(postal))
}

// ValidCoordinates reports whether lat and lng are finite and within range.
func ValidCoordinates(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// ValidConfidence reports whether c is within [0,1].
func ValidConfidence(c float64) bool {
	return c >= 0 && c <= 1
}

// Validate returns the problems found in r. An empty slice means the record
// is valid. Problems are advisory: callers downgrade the record to review
// instead of discarding it.
func Validate(r *model.AddressRecord) (bool, []string) {
	if r == nil {
		return false, []string{"Missing record"}
	}

	var errs []string

	if strings.TrimSpace(r.CompanyNormalized) == "" {
		errs = append(errs, "Missing company_normalized")
	}

	if r.Country != "" && !ValidCountry(r.Country) {
		errs = append(errs, "Invalid country code: "+r.Country)
	}

	if r.PostalCode != "" && r.Country != "" && !ValidPostalCode(r.PostalCode, r.Country) {
		errs = append(errs, fmt.Sprintf("Invalid postal code format for %s: %s", r.Country, r.PostalCode))
	}

	// NaN compares false against both bounds, so it fails here as well.
	if r.Point != nil && !ValidCoordinates(r.Point.Lat, r.Point.Lng) {
		errs = append(errs, fmt.Sprintf("Invalid coordinates: (%v, %v)", r.Point.Lat, r.Point.Lng))
	}

	if !ValidConfidence(r.Confidence) {
		errs = append(errs, fmt.Sprintf("Invalid confidence score: %v", r.Confidence))
	}

	return len(errs) == 0, errs
}

// NeedsReview reports whether r should be checked by a person: its
// confidence is unusable or below threshold, city or country is missing, or
// Validate reports problems.
func NeedsReview(r *model.AddressRecord, threshold float64) bool {
	if r == nil || math.IsNaN(r.Confidence) {
		return true
	}

	if r.Confidence < threshold {
		return true
	}

	if r.City == "" || r.Country == "" {
		return true
	}

	ok, _ := Validate(r)

	return !ok
}

// Quality is the assessment of a freshly parsed provider result.
type Quality struct {
	Score    float64  `json:"score"`
	Issues   []string `json:"issues"`
	Warnings []string `json:"warnings"`
}

// AssessQuality scores a parsed result from its address fields and the
// provider's result types.
func AssessQuality(r *model.AddressRecord, resultTypes []string) Quality {
	q := Quality{Score: 1.0}

	if r.City == "" {
		q.Issues = append(q.Issues, "Missing city")
		q.Score -= 0.3
	}

	if r.Country == "" {
		q.Issues = append(q.Issues, "Missing country")
		q.Score -= 0.3
	}

	if slices.Contains(resultTypes, "political") || slices.Contains(resultTypes, "locality") {
		q.Warnings = append(q.Warnings, "Result is not a specific address")
		q.Score -= 0.1
	}

	if !ValidPostalCode(r.PostalCode, r.Country) {
		q.Warnings = append(q.Warnings, "Postal code format may be incorrect")
		q.Score -= 0.05
	}

	q.Score = max(0, min(1, q.Score))

	return q
}
