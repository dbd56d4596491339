// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import "strings"

var countryCodes = map[string]string{
	"INDIA":          "IN",
	"IN":             "IN",
	"USA":            "US",
	"US":             "US",
	"UNITED STATES":  "US",
	"UK":             "GB",
	"UNITED KINGDOM": "GB",
	"CANADA":         "CA",
	"CA":             "CA",
	"AUSTRALIA":      "AU",
	"AU":             "AU",
	"GERMANY":        "DE",
	"DE":             "DE",
	"FRANCE":         "FR",
	"FR":             "FR",
	"JAPAN":          "JP",
	"JP":             "JP",
	"CHINA":          "CN",
	"CN":             "CN",
}

// SiteHint is the location qualifier given with a company name.
type SiteHint struct {
	City    string
	Country string // ISO-2, empty when unrecognized
}

// ParseSiteHint splits "City, Country" (or "City, CountryCode"). The city is
// only taken when the hint has a comma; the country comes from the last part
// and is left empty for names outside the known table.
func ParseSiteHint(hint string) SiteHint {
	var h SiteHint

	if strings.TrimSpace(hint) == "" {
		return h
	}

	parts := strings.Split(hint, ",")
	if len(parts) > 1 {
		h.City = strings.TrimSpace(parts[0])
	}

	h.Country = countryCodes[strings.ToUpper(strings.TrimSpace(parts[len(parts)-1]))]

	return h
}
