// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package lookup

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jcodagnone/addrlookup/cache"
	"github.com/jcodagnone/addrlookup/geocode"
	"github.com/jcodagnone/addrlookup/model"
	"github.com/jcodagnone/addrlookup/normalize"
	"github.com/jcodagnone/addrlookup/registry"
	"github.com/jcodagnone/addrlookup/verify"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

// tcsPune is a street level, exact match result.
var tcsPune = geocode.Result{
	AddressComponents: []geocode.AddressComponent{
		{LongName: "Plot 2", ShortName: "Plot 2", Types: []string{"premise"}},
		{LongName: "Hinjawadi Phase 3", ShortName: "Hinjawadi Phase 3", Types: []string{"route"}},
		{LongName: "Pune", ShortName: "Pune", Types: []string{"locality", "political"}},
		{LongName: "Maharashtra", ShortName: "MH", Types: []string{"administrative_area_level_1", "political"}},
		{LongName: "India", ShortName: "IN", Types: []string{"country", "political"}},
		{LongName: "411057", ShortName: "411057", Types: []string{"postal_code"}},
	},
	FormattedAddress: "Plot 2, Hinjawadi Phase 3, Pune, Maharashtra 411057, India",
	Geometry: geocode.Geometry{
		Location:     geocode.Location{Lat: 18.5913, Lng: 73.7389},
		LocationType: geocode.LocationRooftop,
	},
	PlaceID: "ChIJ-tcs-pune",
	Types:   []string{"establishment", "point_of_interest"},
}

type fakeProvider struct {
	mu      sync.Mutex
	results []geocode.Result
	err     error
	queries []string
	biases  []string
}

func (f *fakeProvider) Geocode(ctx context.Context, query, countryBias string) ([]geocode.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.queries = append(f.queries, query)
	f.biases = append(f.biases, countryBias)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return f.results, f.err
}

func (f *fakeProvider) ReverseGeocode(context.Context, float64, float64) ([]geocode.Result, error) {
	return nil, nil
}

func (f *fakeProvider) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.queries)
}

// failingInsert is a registry whose writes fail.
type failingInsert struct {
	registry.Registry
}

func (failingInsert) Insert(*model.AddressRecord) error {
	return errors.New("disk full")
}

type fakeVerifier struct {
	v verify.Verification
}

func (f fakeVerifier) Verify(context.Context, string, string) verify.Verification {
	return f.v
}

type fixture struct {
	svc      *Service
	provider *fakeProvider
	registry registry.Registry
	cache    *cache.Cache
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()

	reg, err := registry.OpenDuckDB("")
	require.NoError(t, err)
	t.Cleanup(func() { reg.Close() })

	return newFixtureWith(t, reg, opts)
}

func newFixtureWith(t *testing.T, reg registry.Registry, opts Options) *fixture {
	t.Helper()

	c := cache.New(nil, cache.Options{
		Enabled: true,
		TTL:     24 * time.Hour,
		MaxSize: 100,
		Now:     func() time.Time { return now },
	})
	p := &fakeProvider{results: []geocode.Result{tcsPune}}
	n := normalize.New(map[string]string{"TCS": "TATA CONSULTANCY SERVICES"})

	opts.Now = func() time.Time { return now }

	return &fixture{
		svc:      New(n, c, reg, p, opts),
		provider: p,
		registry: reg,
		cache:    c,
	}
}
