// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

// tcsPune is a street level, exact match result.
var tcsPune = Result{
	AddressComponents: []AddressComponent{
		{LongName: "Plot 2", ShortName: "Plot 2", Types: []string{"premise"}},
		{LongName: "Hinjawadi Phase 3", ShortName: "Hinjawadi Phase 3", Types: []string{"route"}},
		{LongName: "Pune", ShortName: "Pune", Types: []string{"locality", "political"}},
		{LongName: "Pune Division", ShortName: "Pune Division", Types: []string{"administrative_area_level_2", "political"}},
		{LongName: "Maharashtra", ShortName: "MH", Types: []string{"administrative_area_level_1", "political"}},
		{LongName: "India", ShortName: "IN", Types: []string{"country", "political"}},
		{LongName: "411057", ShortName: "411057", Types: []string{"postal_code"}},
	},
	FormattedAddress: "Plot 2, Hinjawadi Phase 3, Pune, Maharashtra 411057, India",
	Geometry: Geometry{
		Location:     Location{Lat: 18.5913, Lng: 73.7389},
		LocationType: LocationRooftop,
	},
	PlaceID: "ChIJ-tcs-pune",
	Types:   []string{"establishment", "point_of_interest"},
}
