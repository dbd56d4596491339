// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// maxNaturalKey is the longest joined name|city|country kept verbatim.
const maxNaturalKey = 100

// Key identifies a cached lookup. A PlaceID, when set, is the whole key.
type Key struct {
	Name    string
	City    string
	Country string
	PlaceID string
}

// String renders the key used by both cache tiers.
func (k Key) String() string {
	if k.PlaceID != "" {
		return "placeid:" + k.PlaceID
	}

	parts := []string{strings.ToUpper(k.Name)}
	if k.City != "" {
		parts = append(parts, strings.ToUpper(k.City))
	}

	if k.Country != "" {
		parts = append(parts, strings.ToUpper(k.Country))
	}

	s := strings.Join(parts, "|")
	if len(s) > maxNaturalKey {
		sum := sha256.Sum256([]byte(s))

		return "lookup:" + hex.EncodeToString(sum[:])
	}

	return "lookup:" + s
}
