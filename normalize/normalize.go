// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

// Package normalize canonicalizes raw company names into the uppercase form
// used as the primary lookup key.
package normalize

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/jcodagnone/addrlookup/utils/textutils"
	"golang.org/x/text/unicode/norm"
)

// legalSuffixes are tried as a single alternation anchored at the end of the
// name, multi-word forms first.
var legalSuffixes = []string{
	`\bPRIVATE\s+LIMITED\b`,
	`\bPVT\.?\s*LTD\.?\b`,
	`\bPTY\.?\s*LTD\.?\b`,
	`\bL\.?\s*L\.?\s*C\.?\b`,
	`\bL\.?\s*L\.?\s*P\.?\b`,
	`\bL\.?\s*T\.?\s*D\.?\b`,
	`\bP\.?\s*L\.?\s*C\.?\b`,
	`\bINC\.?\b`,
	`\bCORP\.?\b`,
	`\bLIMITED\b`,
	`\bLTD\.?\b`,
	`\bLLC\.?\b`,
	`\bLLP\.?\b`,
	`\bGMBH\.?\b`,
	`\bS\.?\s*A\.?\s*S\.?\b`,
	`\bS\.?\s*A\.?\b`,
	`\bB\.?\s*V\.?\b`,
	`\bN\.?\s*V\.?\b`,
	`\bA\.?\s*G\.?\b`,
	`\bK\.?\s*K\.?\b`,
}

var (
	legalSuffixRegex = regexp.MustCompile(`(?i)(` + strings.Join(legalSuffixes, "|") + `)$`)
	whitespaceRegex  = regexp.MustCompile(`\s+`)
)

// stopWords are dropped by Variants.
var stopWords = map[string]bool{
	"THE":       true,
	"AND":       true,
	"OF":        true,
	"GROUP":     true,
	"COMPANY":   true,
	"COMPANIES": true,
}

// maxPasses bounds the fixed-point iteration in Normalize.
const maxPasses = 8

// Normalizer turns raw company names into normalized names. It is safe for
// concurrent use: the golden mapping table is read-only after construction.
type Normalizer struct {
	mappings map[string]string
	aliases  []string // longest first
}

// New builds a Normalizer over a golden mapping table (alias -> canonical
// name). Aliases and canonical names go through the same punctuation and case
// rules as the names they are compared with. A nil table disables expansion.
func New(mappings map[string]string) *Normalizer {
	n := &Normalizer{mappings: make(map[string]string, len(mappings))}

	for alias, canonical := range mappings {
		a := prepare(alias)
		c := prepare(canonical)

		if a == "" || c == "" {
			continue
		}

		n.mappings[a] = c
	}

	n.aliases = make([]string, 0, len(n.mappings))
	for a := range n.mappings {
		n.aliases = append(n.aliases, a)
	}

	// Longest alias first so a short alias can't preempt a more specific one.
	// Ties are broken alphabetically to keep the scan deterministic.
	sort.Slice(n.aliases, func(i, j int) bool {
		if len(n.aliases[i]) != len(n.aliases[j]) {
			return len(n.aliases[i]) > len(n.aliases[j])
		}

		return n.aliases[i] < n.aliases[j]
	})

	return n
}

// Mappings returns the number of golden mappings loaded.
func (n *Normalizer) Mappings() int {
	return len(n.mappings)
}

// Normalize returns the normalized form of raw, expanding golden mappings.
// An empty result means the input is unusable.
func (n *Normalizer) Normalize(raw string) string {
	return n.NormalizeWith(raw, true)
}

// NormalizeWith is Normalize with golden mapping expansion optional.
//
// Golden mappings are applied by the first pass only: an expansion is never
// scanned for another alias. Later passes repeat suffix stripping until the
// name stops changing, so stacked suffixes ("ACME LTD LTD") are fully removed.
func (n *Normalizer) NormalizeWith(raw string, useGoldenMappings bool) string {
	s := n.pass(raw, useGoldenMappings)

	for i := 0; i < maxPasses && s != ""; i++ {
		next := n.pass(s, false)
		if next == s {
			break
		}

		s = next
	}

	return s
}

func (n *Normalizer) pass(raw string, useGoldenMappings bool) string {
	s := prepare(raw)
	if s == "" {
		return ""
	}

	if useGoldenMappings && len(n.mappings) > 0 {
		if canonical, ok := n.mappings[s]; ok {
			s = canonical
		} else {
			for _, alias := range n.aliases {
				if s != alias && !strings.HasPrefix(s, alias+" ") {
					continue
				}

				// Already expanded: "HDFC BANK" must not become "HDFC BANK BANK".
				if c := n.mappings[alias]; s != c && !strings.HasPrefix(s, c+" ") {
					s = strings.Replace(s, alias, c, 1)
				}

				break
			}
		}
	}

	s = legalSuffixRegex.ReplaceAllString(s, "")

	return collapse(s)
}

// prepare applies the case, unicode and punctuation rules.
func prepare(raw string) string {
	s := norm.NFKC.String(raw)
	s = collapse(s)
	s = strings.ToUpper(s)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, ".", " ")

	return collapse(s)
}

func collapse(s string) string {
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(s, " "))
}

// Variants returns alternate normalized forms of name to widen fuzzy recall:
// the regular form, the form without golden mappings, the form without stop
// words, an accent-folded form and the first word alone. The result is sorted
// and has no empty entries.
func (n *Normalizer) Variants(name string) []string {
	set := make(map[string]struct{})

	add := func(v string) {
		if v != "" {
			set[v] = struct{}{}
		}
	}

	normalized := n.Normalize(name)
	add(normalized)
	add(n.NormalizeWith(name, false))

	words := strings.Fields(normalized)

	filtered := make([]string, 0, len(words))
	for _, w := range words {
		if !stopWords[w] {
			filtered = append(filtered, w)
		}
	}

	add(strings.Join(filtered, " "))
	add(textutils.UpperASCIIFolding(normalized))

	if len(words) > 0 {
		add(words[0])
	}

	variants := make([]string, 0, len(set))
	for v := range set {
		variants = append(variants, v)
	}

	sort.Strings(variants)

	return variants
}

// Acronym builds an acronym from the first letter of every word that starts
// with a letter: "Tata Consultancy Services" -> "TCS".
func Acronym(name string) string {
	var sb strings.Builder

	for _, w := range strings.Fields(strings.ToUpper(name)) {
		r := []rune(w)[0]
		if unicode.IsLetter(r) {
			sb.WriteRune(r)
		}
	}

	return sb.String()
}
