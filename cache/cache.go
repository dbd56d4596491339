// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

// Package cache keeps resolved address records close to the lookup path: a
// bounded in-memory tier backed by an optional durable Store.
package cache

import (
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/jcodagnone/addrlookup/model"
	gocache "github.com/patrickmn/go-cache"
)

// keepRatio is the share of MaxSize kept after an eviction.
const keepRatio = 0.8

// Options configures a Cache.
type Options struct {
	Enabled bool
	Type    string // reported by Stats
	TTL     time.Duration
	MaxSize int
	// Now defaults to time.Now.
	Now func() time.Time
}

// Stats describes the cache contents.
type Stats struct {
	Type           string  `json:"type"`
	Enabled        bool    `json:"enabled"`
	MemoryEntries  int     `json:"memory_entries"`
	DurableEntries int     `json:"durable_entries"`
	TTLHours       float64 `json:"ttl_hours"`
	MaxSize        int     `json:"max_size"`
}

type memEntry struct {
	record   *model.AddressRecord
	storedAt time.Time
}

// Cache is a two level record cache. Reads may run concurrently; writes to
// the memory tier are serialized so the size check and the eviction happen
// atomically.
//
// A record found only in the durable tier is copied into memory on read,
// keeping its original timestamp.
type Cache struct {
	opts  Options
	mem   *gocache.Cache
	store Store

	mu sync.Mutex // memory tier writes
}

// New returns a cache over store. store may be nil for a memory-only cache.
func New(store Store, opts Options) *Cache {
	if opts.Now == nil {
		opts.Now = time.Now
	}

	if opts.Type == "" {
		opts.Type = TypeMemory
	}

	return &Cache{
		opts: opts,
		// Freshness is checked against opts.Now, not go-cache's clock.
		mem:   gocache.New(gocache.NoExpiration, 0),
		store: store,
	}
}

// Enabled reports whether the cache serves reads and writes.
func (c *Cache) Enabled() bool {
	return c.opts.Enabled
}

func (c *Cache) fresh(storedAt time.Time) bool {
	return c.opts.Now().Sub(storedAt) < c.opts.TTL
}

// Get returns a copy of the cached record for k. Stale entries are removed.
// Durable store failures are logged and reported as a miss.
func (c *Cache) Get(k Key) (*model.AddressRecord, bool) {
	if !c.opts.Enabled {
		return nil, false
	}

	key := k.String()

	if v, ok := c.mem.Get(key); ok {
		e := v.(memEntry)
		if c.fresh(e.storedAt) {
			return e.record.Clone(), true
		}

		c.dropStale(key)
	}

	if c.store == nil {
		return nil, false
	}

	e, ok, err := c.store.Get(key)
	if err != nil {
		log.Printf("⚠️ cache read %s: %v", key, err)

		return nil, false
	}

	if !ok {
		return nil, false
	}

	if !c.fresh(e.StoredAt) {
		if err := c.store.Delete(key); err != nil {
			log.Printf("⚠️ cache delete %s: %v", key, err)
		}

		return nil, false
	}

	var r model.AddressRecord
	if err := json.Unmarshal(e.Value, &r); err != nil {
		log.Printf("⚠️ cache decode %s: %v", key, err)

		return nil, false
	}

	c.putMemory(key, &r, e.StoredAt)

	return r.Clone(), true
}

// Set stores a copy of r under k in both tiers.
func (c *Cache) Set(r *model.AddressRecord, k Key) error {
	if !c.opts.Enabled || r == nil {
		return nil
	}

	key := k.String()
	now := c.opts.Now()

	c.putMemory(key, r.Clone(), now)

	if c.store == nil {
		return nil
	}

	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding cache entry %s: %w", key, err)
	}

	return c.store.Set(key, Entry{Value: data, StoredAt: now})
}

func (c *Cache) putMemory(key string, r *model.AddressRecord, storedAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.mem.Set(key, memEntry{record: r, storedAt: storedAt}, gocache.NoExpiration)

	if c.opts.MaxSize > 0 && c.mem.ItemCount() > c.opts.MaxSize {
		c.evict()
	}
}

func (c *Cache) dropStale(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// A concurrent Set may have refreshed the key since it was read.
	if v, ok := c.mem.Get(key); ok && !c.fresh(v.(memEntry).storedAt) {
		c.mem.Delete(key)
	}
}

// evict keeps the newest MaxSize*keepRatio entries. Callers hold c.mu.
func (c *Cache) evict() {
	type aged struct {
		key      string
		storedAt time.Time
	}

	items := c.mem.Items()

	all := make([]aged, 0, len(items))
	for k, it := range items {
		all = append(all, aged{key: k, storedAt: it.Object.(memEntry).storedAt})
	}

	sort.Slice(all, func(i, j int) bool {
		if !all[i].storedAt.Equal(all[j].storedAt) {
			return all[i].storedAt.After(all[j].storedAt)
		}

		return all[i].key < all[j].key
	})

	keep := int(float64(c.opts.MaxSize) * keepRatio)
	for _, a := range all[min(keep, len(all)):] {
		c.mem.Delete(a.key)
	}
}

// Clear empties both tiers.
func (c *Cache) Clear() error {
	c.mu.Lock()
	c.mem.Flush()
	c.mu.Unlock()

	if c.store == nil {
		return nil
	}

	return c.store.Clear()
}

// Stats reports entry counts and settings.
func (c *Cache) Stats() Stats {
	s := Stats{
		Type:          c.opts.Type,
		Enabled:       c.opts.Enabled,
		MemoryEntries: c.mem.ItemCount(),
		TTLHours:      c.opts.TTL.Hours(),
		MaxSize:       c.opts.MaxSize,
	}

	if c.store != nil {
		n, err := c.store.Count()
		if err != nil {
			log.Printf("⚠️ cache count: %v", err)
		}

		s.DurableEntries = n
	}

	return s
}

// Close releases the durable store.
func (c *Cache) Close() error {
	if c.store == nil {
		return nil
	}

	return c.store.Close()
}
