// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"math"
	"slices"
	"strings"
)

// Address is a provider result broken into record fields.
type Address struct {
	Street1          string
	Street2          string
	City             string
	StateRegion      string
	PostalCode       string
	Country          string // ISO-2
	CountryName      string
	Lat              float64
	Lng              float64
	FormattedAddress string
	PlaceID          string
	Confidence       float64
	Types            []string
}

// Parse extracts address fields and the confidence score from r.
//
// Each component fills the first field its types map to. The city is the
// locality, falling back to the postal town and then the second level
// administrative area.
func Parse(r Result) Address {
	var streetNumber, route, premise string

	a := Address{
		Lat:              r.Geometry.Location.Lat,
		Lng:              r.Geometry.Location.Lng,
		FormattedAddress: r.FormattedAddress,
		PlaceID:          r.PlaceID,
		Confidence:       Confidence(r),
		Types:            r.Types,
	}

	for _, c := range r.AddressComponents {
		has := func(t string) bool { return slices.Contains(c.Types, t) }

		switch {
		case has("street_number"):
			streetNumber = c.LongName
		case has("route"):
			route = c.LongName
		case has("subpremise"):
			a.Street2 = c.LongName
		case has("premise"):
			premise = c.LongName
		case has("locality"):
			a.City = c.LongName
		case has("postal_town"), has("administrative_area_level_2"):
			if a.City == "" {
				a.City = c.LongName
			}
		case has("administrative_area_level_1"):
			a.StateRegion = c.LongName
		case has("country"):
			a.Country = c.ShortName
			a.CountryName = c.LongName
		case has("postal_code"):
			a.PostalCode = c.LongName
		}
	}

	var street []string

	for _, s := range []string{premise, streetNumber, route} {
		if s != "" {
			street = append(street, s)
		}
	}

	if len(street) > 0 {
		a.Street1 = strings.Join(street, " ")
	} else {
		first, _, _ := strings.Cut(r.FormattedAddress, ",")
		a.Street1 = strings.TrimSpace(first)
	}

	return a
}

var (
	specificTypes = []string{"street_address", "premise", "establishment", "point_of_interest"}
	genericTypes  = []string{"locality", "administrative_area_level_1", "country"}
)

// Confidence scores r in [0,1]: partial matches, vague place types and
// imprecise geometry lower it.
func Confidence(r Result) float64 {
	c := 1.0

	if r.PartialMatch {
		c -= 0.20
	}

	hasAny := func(types []string) bool {
		return slices.ContainsFunc(r.Types, func(t string) bool { return slices.Contains(types, t) })
	}

	if !hasAny(specificTypes) && hasAny(genericTypes) {
		c -= 0.25
	}

	switch r.Geometry.LocationType {
	case LocationApproximate:
		c -= 0.15
	case LocationGeometricCenter:
		c -= 0.05
	}

	// Round away float noise so 1-0.20-0.25-0.15 is exactly 0.40.
	c = math.Round(c*100) / 100

	return max(0, min(1, c))
}
