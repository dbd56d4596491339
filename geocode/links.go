// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"net/url"
	"strconv"
)

// MapsLink points Google Maps at a coordinate, pinned to placeID if given.
func MapsLink(lat, lng float64, placeID string) string {
	v := url.Values{}
	v.Set("api", "1")
	v.Set("query", strconv.FormatFloat(lat, 'f', -1, 64)+","+strconv.FormatFloat(lng, 'f', -1, 64))

	if placeID != "" {
		v.Set("query_place_id", placeID)
	}

	return "https://www.google.com/maps/search/?" + v.Encode()
}

// SearchLink is a web search for a company at an address, for reviewers.
func SearchLink(company, address string) string {
	q := company
	if address != "" {
		q += " " + address
	}

	return "https://www.google.com/search?" + url.Values{"q": {q}}.Encode()
}
