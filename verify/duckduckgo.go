// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package verify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jcodagnone/addrlookup/utils/htmlutils"
)

const (
	duckDuckGoURL = "https://html.duckduckgo.com/html/"
	maxResults    = 3
)

// DuckDuckGo searches the DuckDuckGo HTML endpoint.
type DuckDuckGo struct {
	BaseURL string
	Client  *http.Client
}

// NewDuckDuckGo returns a searcher using client, or http.DefaultClient.
func NewDuckDuckGo(client *http.Client) *DuckDuckGo {
	if client == nil {
		client = http.DefaultClient
	}

	return &DuckDuckGo{BaseURL: duckDuckGoURL, Client: client}
}

// Search returns the top results for query.
func (d *DuckDuckGo) Search(ctx context.Context, query string) ([]SearchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.BaseURL+"?"+url.Values{"q": {query}}.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating search request: %w", err)
	}

	resp, err := d.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("searching %q: %w", query, err)
	}
	defer resp.Body.Close()

	r, err := htmlutils.AsReader(resp)
	if err != nil {
		return nil, fmt.Errorf("searching %q: %w", query, err)
	}

	n, err := htmlutils.AsNode(r)
	if err != nil {
		return nil, err
	}

	var results []SearchResult

	goquery.NewDocumentFromNode(n).Find(".result").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		a := s.Find("a.result__a").First()

		href, ok := a.Attr("href")
		if !ok {
			return true
		}

		res := SearchResult{
			Title: strings.TrimSpace(a.Text()),
			Link:  resultLink(href),
		}

		if snippet := s.Find(".result__snippet"); snippet.Length() > 0 {
			res.Snippet = htmlutils.Text(snippet.Get(0))
		}

		results = append(results, res)

		return len(results) < maxResults
	})

	return results, nil
}

// resultLink unwraps DuckDuckGo's redirect links.
func resultLink(href string) string {
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}

	u, err := url.Parse(href)
	if err != nil {
		return href
	}

	if target := u.Query().Get("uddg"); target != "" {
		return target
	}

	return href
}
