// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package lookup

import (
	"context"
	"testing"

	"github.com/jcodagnone/addrlookup/model"
	"github.com/jcodagnone/addrlookup/spatial"
	"github.com/jcodagnone/addrlookup/verify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyAppendsNotes(t *testing.T) {
	want := verify.Verification{
		Status:      verify.StatusVerified,
		Confidence:  0.9,
		SourceURL:   "https://www.tcs.com/contact",
		Explanation: "matches the official site",
	}
	f := newFixture(t, Options{Verifier: fakeVerifier{v: want}})

	r, _, err := f.svc.Lookup(context.Background(), "TCS", "Pune, India")
	require.NoError(t, err)

	got, err := f.svc.Verify(context.Background(), r)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, "AI verification: verified (matches the official site) source: https://www.tcs.com/contact", r.Notes)

	stored, err := f.registry.FindExact("TATA CONSULTANCY SERVICES", "", "")
	require.NoError(t, err)
	assert.Equal(t, r.Notes, stored.Notes)
}

func TestVerifySkippedChangesNothing(t *testing.T) {
	f := newFixture(t, Options{})

	r, _, err := f.svc.Lookup(context.Background(), "TCS", "Pune, India")
	require.NoError(t, err)

	got, err := f.svc.Verify(context.Background(), r)
	require.NoError(t, err)
	assert.Equal(t, verify.StatusSkipped, got.Status)
	assert.Empty(t, r.Notes)
}

func TestVerifyUnstoredRecord(t *testing.T) {
	f := newFixture(t, Options{Verifier: fakeVerifier{v: verify.Verification{Status: verify.StatusUncertain}}})

	r := &model.AddressRecord{CompanyNormalized: "GHOST", City: "Nowhere"}

	got, err := f.svc.Verify(context.Background(), r)
	require.NoError(t, err)
	assert.Equal(t, verify.StatusUncertain, got.Status)
	assert.Equal(t, "AI verification: uncertain", r.Notes)
}

func TestAddress(t *testing.T) {
	assert.Equal(t, "Plot 2, Pune", Address(&model.AddressRecord{FormattedAddress: "Plot 2, Pune", City: "x"}))
	assert.Equal(t, "Main St 1, Springfield, 12345, US", Address(&model.AddressRecord{
		Street1:    "Main St 1",
		City:       "Springfield",
		PostalCode: "12345",
		Country:    "US",
	}))
	assert.Equal(t, "Pune, India", Address(&model.AddressRecord{City: "Pune", Country: "IN", CountryName: "India"}))
}

func TestClusters(t *testing.T) {
	f := newFixture(t, Options{})

	for _, r := range []*model.AddressRecord{
		{CompanyNormalized: "TATA CONSULTANCY SERVICES", Point: spatial.NewPoint(18.5913, 73.7389)},
		{CompanyNormalized: "WIPRO", Point: spatial.NewPoint(19.0760, 72.8777)},
		{CompanyNormalized: "INFOSYS", Point: spatial.NewPoint(18.5920, 73.7400)},
	} {
		require.NoError(t, f.registry.Insert(r))
	}

	got, err := f.svc.Clusters(1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Len(t, got[0], 2)
	assert.Equal(t, "TATA CONSULTANCY SERVICES", got[0][0].CompanyNormalized)
	assert.Equal(t, "INFOSYS", got[0][1].CompanyNormalized)

	_, err = f.svc.Clusters(0)
	assert.Error(t, err)
}

func TestSuggest(t *testing.T) {
	f := newFixture(t, Options{})

	for _, name := range []string{"INFOSYS", "WIPRO", "INFOSIS"} {
		require.NoError(t, f.registry.Insert(&model.AddressRecord{CompanyRaw: name, CompanyNormalized: name}))
	}

	got, err := f.svc.Suggest("Infosyz Ltd.")
	require.NoError(t, err)
	assert.Equal(t, []string{"INFOSYS", "INFOSIS"}, got)

	got, err = f.svc.Suggest("...")
	require.NoError(t, err)
	assert.Empty(t, got)
}
