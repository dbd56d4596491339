// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/jcodagnone/addrlookup/model"
)

// SeedVersion is the version written by Export.
const SeedVersion = "1.0"

// SeedData is the JSON snapshot format of a registry.
type SeedData struct {
	Version     string                 `json:"version"`
	LastUpdated time.Time              `json:"last_updated"`
	Records     []*model.AddressRecord `json:"records"`
}

// Export writes every record of reg to a JSON file.
func Export(reg Registry, path string) (int, error) {
	records, err := reg.All(0)
	if err != nil {
		return 0, fmt.Errorf("listing records: %w", err)
	}

	seed := &SeedData{
		Version:     SeedVersion,
		LastUpdated: time.Now().UTC(),
		Records:     records,
	}

	data, err := json.MarshalIndent(seed, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("marshaling JSON: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return 0, fmt.Errorf("writing file: %w", err)
	}

	return len(records), nil
}

// Import inserts the records of a JSON snapshot into reg, keeping their ids
// and timestamps. It stops at the first record reg refuses.
func Import(reg Registry, path string) (int, error) {
	data, err := os.ReadFile(path) // #nosec G304 - path is provided by the operator
	if err != nil {
		return 0, fmt.Errorf("reading file: %w", err)
	}

	var seed SeedData
	if err := json.Unmarshal(data, &seed); err != nil {
		return 0, fmt.Errorf("parsing JSON: %w", err)
	}

	imported := 0

	for _, r := range seed.Records {
		if r == nil || r.CompanyNormalized == "" {
			continue
		}

		if err := reg.Insert(r); err != nil {
			return imported, fmt.Errorf("saving record for %s: %w", r.CompanyNormalized, err)
		}

		imported++
	}

	return imported, nil
}

// SeedIfEmpty imports path when reg has no records. A missing file is not an
// error. It reports whether it imported and how many records reg holds.
func SeedIfEmpty(reg Registry, path string) (bool, int, error) {
	st, err := reg.Stats()
	if err != nil {
		return false, 0, fmt.Errorf("counting records: %w", err)
	}

	if st.Total > 0 {
		return false, st.Total, nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return false, 0, nil
	}

	imported, err := Import(reg, path)
	if err != nil {
		return false, imported, err
	}

	return true, imported, nil
}
