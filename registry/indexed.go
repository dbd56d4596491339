// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"strings"
	"sync"

	"github.com/jcodagnone/addrlookup/model"
	"github.com/jcodagnone/addrlookup/spatial"
)

// Indexed answers name lookups from an in-memory index of another
// registry, avoiding a table scan per lookup. Writes go to the wrapped
// registry first. Matching rules are the same as the wrapped registry's.
type Indexed struct {
	base Registry

	mu      sync.RWMutex
	records []*model.AddressRecord
	byName  map[string][]*model.AddressRecord
	byPlace map[string]*model.AddressRecord
}

// NewIndexed loads the index from base.
func NewIndexed(base Registry) (*Indexed, error) {
	x := &Indexed{base: base}
	if err := x.Refresh(); err != nil {
		return nil, err
	}

	return x, nil
}

func indexKey(name string) string {
	return strings.ToUpper(trim(name))
}

// Refresh reloads the index from the wrapped registry.
func (x *Indexed) Refresh() error {
	records, err := x.base.All(0)
	if err != nil {
		return err
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	x.records = nil
	x.byName = make(map[string][]*model.AddressRecord)
	x.byPlace = make(map[string]*model.AddressRecord)

	for _, r := range records {
		x.add(r)
	}

	return nil
}

// add indexes r; callers hold x.mu.
func (x *Indexed) add(r *model.AddressRecord) {
	x.records = append(x.records, r)

	k := indexKey(r.CompanyNormalized)
	x.byName[k] = append(x.byName[k], r)

	if _, ok := x.byPlace[r.PlaceID]; r.PlaceID != "" && !ok {
		x.byPlace[r.PlaceID] = r
	}
}

// Len returns the number of indexed records.
func (x *Indexed) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()

	return len(x.records)
}

func (x *Indexed) FindExact(name, city, country string) (*model.AddressRecord, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	for _, r := range x.byName[indexKey(name)] {
		if matchesExact(r, name, city, country) {
			return r.Clone(), nil
		}
	}

	return nil, ErrNotFound
}

func (x *Indexed) FindByPlaceID(placeID string) (*model.AddressRecord, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if r, ok := x.byPlace[placeID]; ok && placeID != "" {
		return r.Clone(), nil
	}

	return nil, ErrNotFound
}

func (x *Indexed) Candidates(country string) ([]*model.AddressRecord, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	var out []*model.AddressRecord

	for _, r := range x.records {
		if isCandidate(r, country) {
			out = append(out, r.Clone())
		}
	}

	return out, nil
}

func (x *Indexed) Insert(r *model.AddressRecord) error {
	if err := x.base.Insert(r); err != nil {
		return err
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	x.add(r.Clone())

	return nil
}

func (x *Indexed) Update(name string, u Update) error {
	if err := x.base.Update(name, u); err != nil {
		return err
	}

	return x.Refresh()
}

func (x *Indexed) All(limit int) ([]*model.AddressRecord, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	n := len(x.records)
	if limit > 0 && limit < n {
		n = limit
	}

	out := make([]*model.AddressRecord, n)
	for i := range n {
		out[i] = x.records[i].Clone()
	}

	return out, nil
}

func (x *Indexed) LowConfidence(threshold float64) ([]*model.AddressRecord, error) {
	return x.base.LowConfidence(threshold)
}

func (x *Indexed) Nearby(p *spatial.Point, k int) ([]*model.AddressRecord, error) {
	return x.base.Nearby(p, k)
}

func (x *Indexed) Stats() (Stats, error) {
	return x.base.Stats()
}

func (x *Indexed) Close() error {
	return x.base.Close()
}
