// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

// Package lookup resolves company names to standardized postal addresses.
//
// A lookup tries, in order, the cache, an exact registry match, a fuzzy
// registry match and finally the geocoding provider. Geocoded records are
// validated, stored in the registry and cached.
package lookup

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/jcodagnone/addrlookup/cache"
	"github.com/jcodagnone/addrlookup/geocode"
	"github.com/jcodagnone/addrlookup/matching"
	"github.com/jcodagnone/addrlookup/model"
	"github.com/jcodagnone/addrlookup/normalize"
	"github.com/jcodagnone/addrlookup/registry"
	"github.com/jcodagnone/addrlookup/spatial"
	"github.com/jcodagnone/addrlookup/validate"
	"github.com/jcodagnone/addrlookup/verify"
)

var (
	// ErrInvalidInput means the company name normalizes to nothing.
	ErrInvalidInput = errors.New("company name is empty after normalization")
	// ErrNotFound means no stage produced an address.
	ErrNotFound = errors.New("no address found")
)

// DefaultFuzzyThreshold is the minimum similarity for a fuzzy registry hit.
const DefaultFuzzyThreshold = 85.0

// Candidates are narrowed to the best few before the final fuzzy match.
const (
	prefilterThreshold = 80.0
	prefilterLimit     = 5
)

// Options tunes a Service.
type Options struct {
	// ConfidenceThreshold separates auto approved records from the ones
	// needing review.
	ConfidenceThreshold float64
	FuzzyThreshold      float64
	Verifier            verify.Verifier
	Now                 func() time.Time
}

// Service is the resolution pipeline.
type Service struct {
	normalizer *normalize.Normalizer
	cache      *cache.Cache
	registry   registry.Registry
	provider   geocode.Provider
	opts       Options
}

// New wires a Service. A nil normalizer uses no golden mappings and a nil
// cache disables caching.
func New(n *normalize.Normalizer, c *cache.Cache, reg registry.Registry, p geocode.Provider, opts Options) *Service {
	if n == nil {
		n = normalize.New(nil)
	}

	if c == nil {
		c = cache.New(nil, cache.Options{Enabled: false})
	}

	if opts.ConfidenceThreshold == 0 {
		opts.ConfidenceThreshold = validate.DefaultReviewThreshold
	}

	if opts.FuzzyThreshold == 0 {
		opts.FuzzyThreshold = DefaultFuzzyThreshold
	}

	if opts.Verifier == nil {
		opts.Verifier = verify.Disabled{}
	}

	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Service{
		normalizer: n,
		cache:      c,
		registry:   reg,
		provider:   p,
		opts:       opts,
	}
}

// Cache returns the service cache.
func (s *Service) Cache() *cache.Cache {
	return s.cache
}

// Registry returns the service registry.
func (s *Service) Registry() registry.Registry {
	return s.registry
}

// Lookup resolves company, optionally qualified by a "City, Country" site
// hint. The record is nil for the not_found and invalid_input sources.
//
// The error is only set when the provider failed (including an exhausted
// daily quota) or ctx was cancelled; the source is then not_found.
func (s *Service) Lookup(ctx context.Context, company, site string) (*model.AddressRecord, model.Source, error) {
	name := s.normalizer.Normalize(company)
	if name == "" {
		log.Printf("✗ %q: %v", company, ErrInvalidInput)

		return nil, model.SourceInvalidInput, nil
	}

	hint := geocode.ParseSiteHint(site)
	key := cache.Key{Name: name, City: hint.City, Country: hint.Country}

	if r, ok := s.cache.Get(key); ok {
		log.Printf("✓ cache hit: %s", name)

		return r, model.SourceCache, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, model.SourceNotFound, err
	}

	if r := s.findExact(name, hint); r != nil {
		log.Printf("✓ registry hit: %s", name)
		s.remember(r, key)

		return r, model.SourceStorage, nil
	}

	if r, score := s.findFuzzy(name, hint); r != nil {
		log.Printf("✓ fuzzy registry hit: %s ~ %s (%.1f)", name, r.CompanyNormalized, score)
		s.remember(r, key)

		return r, model.SourceStorageFuzzy, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, model.SourceNotFound, err
	}

	r, err := s.geocode(ctx, company, site, name, hint)
	if err != nil || r == nil {
		return nil, model.SourceNotFound, err
	}

	if err := s.registry.Insert(r); err != nil {
		log.Printf("⚠️ storing %s: %v", name, err)
	} else {
		s.remember(r, key)
	}

	return r, model.SourceGeocoded, nil
}

func (s *Service) findExact(name string, hint geocode.SiteHint) *model.AddressRecord {
	r, err := s.registry.FindExact(name, hint.City, hint.Country)
	if err != nil {
		if !errors.Is(err, registry.ErrNotFound) {
			log.Printf("⚠️ registry lookup %s: %v", name, err)
		}

		return nil
	}

	return r
}

func (s *Service) findFuzzy(name string, hint geocode.SiteHint) (*model.AddressRecord, float64) {
	candidates, err := s.registry.Candidates(hint.Country)
	if err != nil {
		log.Printf("⚠️ registry candidates %s: %v", name, err)

		return nil, 0
	}

	top := matching.Search(name, candidates, matching.ByNormalizedName, prefilterThreshold, prefilterLimit)
	if len(top) == 0 {
		return nil, 0
	}

	shortlist := make([]*model.AddressRecord, 0, len(top))
	for _, m := range top {
		shortlist = append(shortlist, m.Record)
	}

	m, ok := matching.FindBestMatch(name, shortlist, matching.ByNormalizedName, s.opts.FuzzyThreshold)
	if !ok {
		return nil, 0
	}

	return m.Record, m.Score
}

// geocode asks the provider and turns its top result into a record. It
// returns nil, nil when the provider has no results.
func (s *Service) geocode(ctx context.Context, company, site, name string, hint geocode.SiteHint) (*model.AddressRecord, error) {
	query := company
	if strings.TrimSpace(site) != "" {
		query += ", " + site
	}

	log.Printf("⟳ geocoding %q", query)

	results, err := s.provider.Geocode(ctx, query, hint.Country)

	switch {
	case geocode.IsQuotaExceeded(err):
		log.Printf("✗ %q: %v", query, err)

		return nil, err
	case geocode.IsTimeout(err):
		log.Printf("✗ %q: timed out", query)

		return nil, fmt.Errorf("geocoding %q: %w", query, err)
	case err != nil:
		log.Printf("✗ %q: %v", query, err)

		return nil, fmt.Errorf("geocoding %q: %w", query, err)
	case len(results) == 0:
		log.Printf("✗ no results for %q", query)

		return nil, nil
	}

	return s.assemble(company, site, name, results[0]), nil
}

func (s *Service) assemble(company, site, name string, top geocode.Result) *model.AddressRecord {
	a := geocode.Parse(top)
	now := s.opts.Now()

	r := &model.AddressRecord{
		CompanyRaw:        company,
		CompanyNormalized: name,
		SiteHint:          site,
		Street1:           a.Street1,
		Street2:           a.Street2,
		City:              a.City,
		StateRegion:       a.StateRegion,
		PostalCode:        a.PostalCode,
		Country:           a.Country,
		CountryName:       a.CountryName,
		Point:             spatial.NewPoint(a.Lat, a.Lng),
		FormattedAddress:  a.FormattedAddress,
		Source:            model.SourceGeocoded,
		Confidence:        a.Confidence,
		PlaceID:           a.PlaceID,
		QAStatus:          model.QAAuto,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if r.Confidence < s.opts.ConfidenceThreshold {
		r.QAStatus = model.QAReview
	}

	if ok, issues := validate.Validate(r); !ok {
		log.Printf("⚠️ validation %s: %s", name, strings.Join(issues, "; "))
		r.QAStatus = model.QAReview
		r.AppendNote("Validation issues: " + strings.Join(issues, "; "))
	}

	if q := validate.AssessQuality(r, a.Types); len(q.Issues) > 0 {
		r.AppendNote("Quality issues: " + strings.Join(q.Issues, "; "))
	}

	if r.QAStatus == model.QAReview {
		r.AppendNote("Map: " + geocode.MapsLink(a.Lat, a.Lng, a.PlaceID))
		r.AppendNote("Search: " + geocode.SearchLink(company, a.FormattedAddress))
	}

	return r
}

// remember writes r through to the cache under k and under its place id.
func (s *Service) remember(r *model.AddressRecord, k cache.Key) {
	if err := s.cache.Set(r, k); err != nil {
		log.Printf("⚠️ caching %s: %v", k, err)
	}

	if r.PlaceID == "" {
		return
	}

	if err := s.cache.Set(r, cache.Key{PlaceID: r.PlaceID}); err != nil {
		log.Printf("⚠️ caching place %s: %v", r.PlaceID, err)
	}
}
