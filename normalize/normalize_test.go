// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package normalize

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testMappings = map[string]string{
	"TCS":           "TATA CONSULTANCY SERVICES",
	"HP":            "HEWLETT PACKARD",
	"HP ENTERPRISE": "HEWLETT PACKARD ENTERPRISE",
	"hdfc":          "hdfc bank",
}

func TestNormalize(t *testing.T) {
	n := New(testMappings)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"whitespace only", "   \t ", ""},
		{"legal suffix", "Acme Ltd", "ACME"},
		{"suffix with dots", "Acme P.L.C.", "ACME"},
		{"private limited", "Infosys Private Limited", "INFOSYS"},
		{"pvt ltd", "Wipro Pvt. Ltd.", "WIPRO"},
		{"commas removed", "Foo, Inc.", "FOO"},
		{"leading suffix word kept", "Ltd Holdings Ltd", "LTD HOLDINGS"},
		{"stacked suffixes", "Acme Ltd Ltd", "ACME"},
		{"inner whitespace collapsed", "  Big    Blue   Corp ", "BIG BLUE"},
		{"suffix inside word untouched", "NASA", "NASA"},
		{"golden exact", "tcs", "TATA CONSULTANCY SERVICES"},
		{"golden prefix", "TCS Ltd", "TATA CONSULTANCY SERVICES"},
		{"golden prefix with tail", "TCS Mumbai", "TATA CONSULTANCY SERVICES MUMBAI"},
		{"golden keys prepared", "HDFC", "HDFC BANK"},
		{"golden already expanded", "HDFC Bank Ltd", "HDFC BANK"},
		{"alias must be whole word", "TCSX", "TCSX"},
		{"longest alias wins", "HP Enterprise Labs", "HEWLETT PACKARD ENTERPRISE LABS"},
		{"shorter alias", "HP Labs", "HEWLETT PACKARD LABS"},
		{"fullwidth folded by NFKC", "ＡＣＭＥ Ltd", "ACME"},
		{"only a suffix", "Ltd.", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Normalize(tt.in))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	n := New(testMappings)

	inputs := []string{
		"Tata Consultancy Services Limited",
		"TCS",
		"Acme Ltd Ltd",
		"Ltd Holdings Ltd",
		"Foo S.A.S.",
		"Müller GmbH",
		"The Coca-Cola Company",
		"HDFC",
	}

	for _, in := range inputs {
		once := n.Normalize(in)
		assert.Equal(t, once, n.Normalize(once), "input %q", in)
	}
}

func TestNormalizeExpansionNotRemapped(t *testing.T) {
	n := New(map[string]string{
		"TCS":  "TATA CONSULTANCY SERVICES",
		"TATA": "TATA GROUP",
	})

	assert.Equal(t, "TATA CONSULTANCY SERVICES", n.Normalize("TCS"))
	assert.Equal(t, "TATA CONSULTANCY SERVICES", n.Normalize("TCS Ltd Ltd"))
	assert.Equal(t, "TATA GROUP MOTORS", n.Normalize("Tata Motors"))
}

func TestNormalizeGoldenEquivalence(t *testing.T) {
	n := New(testMappings)

	assert.Equal(t,
		n.Normalize("Tata Consultancy Services Limited"),
		n.Normalize("TCS"),
	)
}

func TestNormalizeWithoutGoldenMappings(t *testing.T) {
	n := New(testMappings)

	assert.Equal(t, "TCS", n.NormalizeWith("TCS Ltd", false))
}

func TestNilMappings(t *testing.T) {
	n := New(nil)

	assert.Equal(t, 0, n.Mappings())
	assert.Equal(t, "TCS", n.Normalize("tcs"))
}

func TestVariants(t *testing.T) {
	n := New(testMappings)

	got := n.Variants("The Müller Group")

	assert.Equal(t, []string{
		"MÜLLER",
		"THE",
		"THE MULLER GROUP",
		"THE MÜLLER GROUP",
	}, got)
	assert.IsNonDecreasing(t, got)
}

func TestVariantsIncludeUnmapped(t *testing.T) {
	n := New(testMappings)

	got := n.Variants("TCS")

	assert.Contains(t, got, "TATA CONSULTANCY SERVICES")
	assert.Contains(t, got, "TCS")
	assert.Contains(t, got, "TATA")
}

func TestVariantsEmpty(t *testing.T) {
	assert.Empty(t, New(nil).Variants("  "))
}

func TestAcronym(t *testing.T) {
	assert.Equal(t, "TCS", Acronym("Tata Consultancy Services"))
	assert.Equal(t, "IBM", Acronym("international business  machines"))
	assert.Equal(t, "AB", Acronym("Alpha 42 Beta"))
	assert.Equal(t, "", Acronym(""))
}

func TestLoadGoldenMappings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "golden.json")

	require.NoError(t, os.WriteFile(path, []byte(`{"TCS": "TATA CONSULTANCY SERVICES"}`), 0o600))

	m, err := LoadGoldenMappings(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"TCS": "TATA CONSULTANCY SERVICES"}, m)

	_, err = LoadGoldenMappings(filepath.Join(dir, "missing.json"))
	require.ErrorIs(t, err, os.ErrNotExist)

	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o600))

	_, err = LoadGoldenMappings(path)
	require.Error(t, err)
}

func TestBundledGoldenMappings(t *testing.T) {
	m, err := LoadGoldenMappings(filepath.Join("..", "data", "golden_mappings.json"))
	require.NoError(t, err)

	n := New(m)
	assert.Equal(t, n.Normalize("Tata Consultancy Services Ltd"), n.Normalize("TCS"))
}
