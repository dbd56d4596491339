// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

// Package verify cross-checks geocoded addresses against the web with a
// language model.
package verify

import (
	"context"
	"strings"
)

// Status is the outcome of a verification.
type Status string

// Verification outcomes.
const (
	StatusVerified  Status = "verified"
	StatusUncertain Status = "uncertain"
	StatusSkipped   Status = "skipped"
	StatusError     Status = "error"
)

// verifiedAbove is the confidence a model must exceed to call an address verified.
const verifiedAbove = 0.7

// Verification is what a Verifier concluded about an address.
type Verification struct {
	Status       Status  `json:"status"`
	Confidence   float64 `json:"confidence"`
	SourceURL    string  `json:"source_url"`
	Explanation  string  `json:"explanation"`
	FoundAddress string  `json:"found_address,omitempty"`
}

// Note renders v for a record's notes column.
func (v Verification) Note() string {
	var sb strings.Builder

	sb.WriteString("AI verification: ")
	sb.WriteString(string(v.Status))

	if v.Explanation != "" {
		sb.WriteString(" (")
		sb.WriteString(v.Explanation)
		sb.WriteString(")")
	}

	if v.SourceURL != "" {
		sb.WriteString(" source: ")
		sb.WriteString(v.SourceURL)
	}

	return sb.String()
}

// Verifier checks that address is where company actually is. Failures are
// reported through the Status, never as an error.
type Verifier interface {
	Verify(ctx context.Context, company, address string) Verification
}

// Disabled is the Verifier used when no model is configured.
type Disabled struct{}

// Verify implements Verifier.
func (Disabled) Verify(context.Context, string, string) Verification {
	return Verification{Status: StatusSkipped, Explanation: "AI API key not configured"}
}

// SearchResult is one web search hit.
type SearchResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// Searcher runs web searches.
type Searcher interface {
	Search(ctx context.Context, query string) ([]SearchResult, error)
}

func searchContext(results []SearchResult) string {
	var sb strings.Builder

	for _, r := range results {
		sb.WriteString("Source: ")
		sb.WriteString(r.Link)
		sb.WriteString("\nSnippet: ")
		sb.WriteString(r.Snippet)
		sb.WriteString("\n\n")
	}

	return sb.String()
}
