// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	googleMapsURL  = "https://maps.googleapis.com/maps/api/geocode/json"
	defaultTimeout = 10 * time.Second
)

// GoogleMaps uses the Google Maps Geocoding API.
type GoogleMaps struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	quota      *Quota
}

// GoogleOption customizes a GoogleMaps provider.
type GoogleOption func(*GoogleMaps)

// WithBaseURL points the provider at another endpoint.
func WithBaseURL(u string) GoogleOption {
	return func(g *GoogleMaps) { g.baseURL = u }
}

// WithHTTPClient replaces the HTTP client. Its Timeout bounds each call.
func WithHTTPClient(c *http.Client) GoogleOption {
	return func(g *GoogleMaps) { g.httpClient = c }
}

// WithQuota books every call against q.
func WithQuota(q *Quota) GoogleOption {
	return func(g *GoogleMaps) { g.quota = q }
}

// NewGoogleMaps creates a Google Maps provider.
func NewGoogleMaps(apiKey string, opts ...GoogleOption) *GoogleMaps {
	g := &GoogleMaps{
		apiKey:  apiKey,
		baseURL: googleMapsURL,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}

	for _, o := range opts {
		o(g)
	}

	return g
}

type googleMapsResponse struct {
	Results      []Result `json:"results"`
	Status       string   `json:"status"` // OK, ZERO_RESULTS, etc.
	ErrorMessage string   `json:"error_message"`
}

// Geocode looks up query, restricted to countryBias when set.
func (g *GoogleMaps) Geocode(ctx context.Context, query, countryBias string) ([]Result, error) {
	params := url.Values{}
	params.Set("address", query)

	if countryBias != "" {
		params.Set("components", "country:"+strings.ToUpper(countryBias))
	}

	return g.call(ctx, params)
}

// ReverseGeocode looks up the addresses at lat, lng.
func (g *GoogleMaps) ReverseGeocode(ctx context.Context, lat, lng float64) ([]Result, error) {
	params := url.Values{}
	params.Set("latlng", strconv.FormatFloat(lat, 'f', -1, 64)+","+strconv.FormatFloat(lng, 'f', -1, 64))

	return g.call(ctx, params)
}

func (g *GoogleMaps) call(ctx context.Context, params url.Values) ([]Result, error) {
	if g.apiKey == "" {
		return nil, &Error{Kind: KindInvalidRequest, Message: "Google Maps API key not configured"}
	}

	if g.quota != nil {
		if err := g.quota.Acquire(ctx); err != nil {
			return nil, err
		}
	}

	params.Set("key", g.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, &Error{Kind: KindInvalidRequest, Message: "building geocoding request", Err: err}
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransport(err)
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ClassifyHTTPStatus(resp.StatusCode)
	}

	var gmResp googleMapsResponse
	if err := json.NewDecoder(resp.Body).Decode(&gmResp); err != nil {
		if IsTimeout(err) {
			return nil, classifyTransport(err)
		}

		return nil, fmt.Errorf("decoding response: %w", err)
	}

	switch gmResp.Status {
	case "OK":
		return gmResp.Results, nil
	case "ZERO_RESULTS":
		return nil, nil
	default:
		return nil, ClassifyStatus(gmResp.Status, gmResp.ErrorMessage)
	}
}
