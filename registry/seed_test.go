// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportImport(t *testing.T) {
	src := seeded(t, openers()["duckdb"])
	path := filepath.Join(t.TempDir(), "seed.json")

	n, err := Export(src, path)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	for name, open := range openers() {
		t.Run(name, func(t *testing.T) {
			dst := open(t)
			t.Cleanup(func() { dst.Close() })

			imported, err := Import(dst, path)
			require.NoError(t, err)
			assert.Equal(t, 4, imported)

			want, err := src.All(0)
			require.NoError(t, err)

			got, err := dst.All(0)
			require.NoError(t, err)
			assert.Equal(t, names(want), names(got))
			assert.True(t, got[0].CreatedAt.Equal(stamp))

			rec, err := dst.FindByPlaceID("place-tcs-pune")
			require.NoError(t, err)
			assert.Equal(t, "Pune", rec.City)
		})
	}
}

func TestImportErrors(t *testing.T) {
	dir := t.TempDir()
	reg := openers()["duckdb"](t)
	t.Cleanup(func() { reg.Close() })

	_, err := Import(reg, filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o600))

	_, err = Import(reg, bad)
	assert.ErrorContains(t, err, "parsing JSON")
}

func TestSeedIfEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "seed.json")

	_, err := Export(seeded(t, openers()["duckdb"]), path)
	require.NoError(t, err)

	empty := openers()["duckdb"](t)
	t.Cleanup(func() { empty.Close() })

	seededNow, n, err := SeedIfEmpty(empty, filepath.Join(dir, "missing.json"))
	require.NoError(t, err)
	assert.False(t, seededNow)
	assert.Zero(t, n)

	seededNow, n, err = SeedIfEmpty(empty, path)
	require.NoError(t, err)
	assert.True(t, seededNow)
	assert.Equal(t, 4, n)

	seededNow, n, err = SeedIfEmpty(empty, path)
	require.NoError(t, err)
	assert.False(t, seededNow)
	assert.Equal(t, 4, n)
}
