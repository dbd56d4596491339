// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/jcodagnone/addrlookup/cache"
	"github.com/jcodagnone/addrlookup/config"
	"github.com/jcodagnone/addrlookup/geocode"
	"github.com/jcodagnone/addrlookup/lookup"
	"github.com/jcodagnone/addrlookup/normalize"
	"github.com/jcodagnone/addrlookup/registry"
	"github.com/jcodagnone/addrlookup/utils/httputils"
	"github.com/jcodagnone/addrlookup/verify"
)

const (
	verifierTimeout = 60 * time.Second
	searchUserAgent = "Mozilla/5.0 (compatible; addrlookup)"
)

func userAgent() string {
	return fmt.Sprintf("addrlookup/%s (+https://github.com/jcodagnone/addrlookup)", Version)
}

func openCache(c config.Config) (*cache.Cache, error) {
	opts := cache.Options{
		Enabled: c.EnableCache,
		Type:    c.CacheType,
		TTL:     c.CacheTTL(),
		MaxSize: c.MaxCacheSize,
	}

	if !c.EnableCache {
		return cache.New(nil, opts), nil
	}

	store, err := cache.NewStore(c.CacheType, c.CacheLocation())
	if errors.Is(err, cache.ErrNoStore) {
		store = nil
	} else if err != nil {
		return nil, fmt.Errorf("opening %s cache: %w", c.CacheType, err)
	}

	return cache.New(store, opts), nil
}

func openRegistry(c config.Config) (*registry.Indexed, error) {
	base, err := registry.Open(c.RegistryType, c.RegistryPath, c.WorksheetName)
	if err != nil {
		return nil, fmt.Errorf("opening registry %s: %w", c.RegistryPath, err)
	}

	reg, err := registry.NewIndexed(base)
	if err != nil {
		base.Close()

		return nil, fmt.Errorf("indexing registry: %w", err)
	}

	return reg, nil
}

func mapsAPIKey(ctx context.Context, c config.Config) string {
	if c.GoogleMapsAPIKey != "" {
		return c.GoogleMapsAPIKey
	}

	log.Println("GOOGLE_MAPS_API_KEY is not set. Attempting to retrieve via ADC...")

	key, err := geocode.APIKeyFromADC(ctx, c.GoogleProjectID)
	if err != nil {
		log.Printf("⚠️ Failed to retrieve API key via ADC: %v", err)

		return ""
	}

	log.Println("✓ Retrieved Google Maps API key via ADC")

	return key
}

// openService builds the lookup pipeline from cfg. The returned func
// releases the stores.
func openService(ctx context.Context) (*lookup.Service, func(), error) {
	mappings, err := normalize.LoadGoldenMappings(cfg.GoldenMappingsFile)
	if errors.Is(err, os.ErrNotExist) {
		log.Printf("⚠️ golden mappings %s not found, acronyms will not be expanded", cfg.GoldenMappingsFile)
	} else if err != nil {
		return nil, nil, err
	}

	c, err := openCache(cfg)
	if err != nil {
		return nil, nil, err
	}

	reg, err := openRegistry(cfg)
	if err != nil {
		c.Close()

		return nil, nil, err
	}

	var trace io.Writer
	if cfg.HTTPTrace {
		trace = os.Stderr
	}

	provider := geocode.NewGoogleMaps(
		mapsAPIKey(ctx, cfg),
		geocode.WithHTTPClient(httputils.NewClient(cfg.Timeout(), trace, map[string]string{"User-Agent": userAgent()})),
		geocode.WithQuota(geocode.NewQuota(cfg.MaxAPICallsPerDay, cfg.WarningThreshold, cfg.RequestsPerSecond)),
	)

	verifier := verify.New(verify.Config{
		APIKey:     cfg.OpenAIAPIKey,
		Model:      cfg.OpenAIModel,
		Timeout:    verifierTimeout,
		HTTPClient: httputils.NewClient(verifierTimeout, trace, nil),
	}, verify.NewDuckDuckGo(httputils.NewClient(cfg.Timeout(), trace, map[string]string{"User-Agent": searchUserAgent})))

	svc := lookup.New(normalize.New(mappings), c, reg, provider, lookup.Options{
		ConfidenceThreshold: cfg.ConfidenceThreshold,
		FuzzyThreshold:      cfg.FuzzyThreshold,
		Verifier:            verifier,
	})

	closer := func() {
		if err := c.Close(); err != nil {
			log.Printf("⚠️ closing cache: %v", err)
		}

		if err := reg.Close(); err != nil {
			log.Printf("⚠️ closing registry: %v", err)
		}
	}

	return svc, closer, nil
}
