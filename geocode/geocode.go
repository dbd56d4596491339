// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

// Package geocode talks to the geocoding provider and turns its raw results
// into address components with a confidence score.
package geocode

import "context"

// Provider resolves free-text queries into address candidates.
type Provider interface {
	// Geocode returns the candidates for query, best first. countryBias is an
	// optional ISO-2 code restricting the search. No match is an empty
	// slice and a nil error.
	Geocode(ctx context.Context, query, countryBias string) ([]Result, error)
	// ReverseGeocode returns the addresses at a coordinate.
	ReverseGeocode(ctx context.Context, lat, lng float64) ([]Result, error)
}

// AddressComponent is one typed piece of a provider address.
type AddressComponent struct {
	LongName  string   `json:"long_name"`
	ShortName string   `json:"short_name"`
	Types     []string `json:"types"`
}

// Location is a latitude/longitude pair.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Geometry holds the result location and how precise it is.
type Geometry struct {
	Location Location `json:"location"`
	// LocationType is ROOFTOP, RANGE_INTERPOLATED, GEOMETRIC_CENTER or
	// APPROXIMATE.
	LocationType string `json:"location_type"`
}

// Location types.
const (
	LocationRooftop         = "ROOFTOP"
	LocationGeometricCenter = "GEOMETRIC_CENTER"
	LocationApproximate     = "APPROXIMATE"
)

// Result is a raw provider candidate.
type Result struct {
	AddressComponents []AddressComponent `json:"address_components"`
	FormattedAddress  string             `json:"formatted_address"`
	Geometry          Geometry           `json:"geometry"`
	PartialMatch      bool               `json:"partial_match"`
	PlaceID           string             `json:"place_id"`
	Types             []string           `json:"types"`
}
