// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package normalize

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadGoldenMappings reads a JSON object of alias -> canonical company name.
//
//	{"TCS": "TATA CONSULTANCY SERVICES", "HDFC": "HDFC BANK"}
//
// A missing file is reported with an error wrapping os.ErrNotExist so the
// caller may choose to continue without expansions.
func LoadGoldenMappings(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading golden mappings: %w", err)
	}

	mappings := make(map[string]string)
	if err := json.Unmarshal(data, &mappings); err != nil {
		return nil, fmt.Errorf("invalid JSON in golden mappings file %s: %w", path, err)
	}

	return mappings, nil
}
