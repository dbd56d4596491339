// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package lookup

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/jcodagnone/addrlookup/cache"
	"github.com/jcodagnone/addrlookup/matching"
	"github.com/jcodagnone/addrlookup/model"
	"github.com/jcodagnone/addrlookup/registry"
	"github.com/jcodagnone/addrlookup/spatial"
	"github.com/jcodagnone/addrlookup/verify"
)

// Stats combines registry and cache statistics.
type Stats struct {
	Registry registry.Stats `json:"registry"`
	Cache    cache.Stats    `json:"cache"`
}

// Stats reports on the registry and the cache.
func (s *Service) Stats() (Stats, error) {
	rs, err := s.registry.Stats()
	if err != nil {
		return Stats{}, fmt.Errorf("registry stats: %w", err)
	}

	return Stats{Registry: rs, Cache: s.cache.Stats()}, nil
}

// ReviewQueue returns the stored records below the confidence threshold.
func (s *Service) ReviewQueue() ([]*model.AddressRecord, error) {
	return s.registry.LowConfidence(s.opts.ConfidenceThreshold)
}

// Nearby returns the stored records within k H3 rings of (lat, lng), closest first.
func (s *Service) Nearby(lat, lng float64, k int) ([]matching.Ranked, error) {
	p := spatial.NewPoint(lat, lng)
	if !p.Valid() {
		return nil, fmt.Errorf("invalid coordinates: (%v, %v)", lat, lng)
	}

	records, err := s.registry.Nearby(p, k)
	if err != nil {
		return nil, err
	}

	return matching.RankByProximity(records, lat, lng), nil
}

// Clusters groups the stored records lying within km of each other. Only
// groups with more than one record are returned.
func (s *Service) Clusters(km float64) ([][]*model.AddressRecord, error) {
	if km <= 0 {
		return nil, fmt.Errorf("invalid distance: %v", km)
	}

	records, err := s.registry.All(0)
	if err != nil {
		return nil, err
	}

	var shared [][]*model.AddressRecord

	for _, c := range matching.ClusterByDistance(records, km) {
		if len(c) > 1 {
			shared = append(shared, c)
		}
	}

	return shared, nil
}

// Suggestion limits for Suggest.
const (
	suggestDistance = 3
	suggestLimit    = 3
)

// Suggest returns stored company names a few edits away from the
// normalized form of company, closest first.
func (s *Service) Suggest(company string) ([]string, error) {
	name := s.normalizer.Normalize(company)
	if name == "" {
		return nil, nil
	}

	candidates, err := s.registry.Candidates("")
	if err != nil {
		return nil, err
	}

	return matching.Suggest(name, candidates, matching.ByNormalizedName, suggestDistance, suggestLimit), nil
}

// Address is the single line address of r handed to verifiers.
func Address(r *model.AddressRecord) string {
	if r.FormattedAddress != "" {
		return r.FormattedAddress
	}

	var parts []string

	for _, p := range []string{r.Street1, r.Street2, r.City, r.StateRegion, r.PostalCode, r.CountryName} {
		if p != "" {
			parts = append(parts, p)
		}
	}

	if r.CountryName == "" && r.Country != "" {
		parts = append(parts, r.Country)
	}

	return strings.Join(parts, ", ")
}

// Verify runs the configured verifier over r and appends its conclusion to
// the notes of r and of its registry row. Skipped verifications change
// nothing.
func (s *Service) Verify(ctx context.Context, r *model.AddressRecord) (verify.Verification, error) {
	v := s.opts.Verifier.Verify(ctx, r.CompanyNormalized, Address(r))
	if v.Status == verify.StatusSkipped {
		return v, nil
	}

	r.AppendNote(v.Note())
	notes := r.Notes

	err := s.registry.Update(r.CompanyNormalized, registry.Update{Notes: &notes})

	switch {
	case errors.Is(err, registry.ErrNotFound):
		log.Printf("⚠️ %s is not stored, verification not saved", r.CompanyNormalized)
	case err != nil:
		return v, fmt.Errorf("saving verification of %s: %w", r.CompanyNormalized, err)
	}

	return v, nil
}
