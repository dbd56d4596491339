// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

// Package matching scores company names against each other and picks the
// best registry candidate for a query.
package matching

import (
	"math"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/jcodagnone/addrlookup/model"
	"github.com/jcodagnone/addrlookup/spatial"
)

// Default thresholds, on a 0-100 scale.
const (
	DefaultThreshold      = 80
	DefaultDedupThreshold = 95
)

// KeyFunc extracts the field a record is matched on.
type KeyFunc func(*model.AddressRecord) string

// ByNormalizedName matches on the normalized company name.
func ByNormalizedName(r *model.AddressRecord) string {
	return r.CompanyNormalized
}

// Match is a scored candidate.
type Match struct {
	Record *model.AddressRecord
	Score  float64
}

// Similarity is the token set ratio of a and b (0-100). It ignores word
// order and repeated words: two names score 100 when the words of one are a
// subset of the words of the other.
func Similarity(a, b string) float64 {
	ta := tokenSet(a)
	tb := tokenSet(b)

	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	var sect, onlyA, onlyB []string

	for t := range ta {
		if tb[t] {
			sect = append(sect, t)
		} else {
			onlyA = append(onlyA, t)
		}
	}

	for t := range tb {
		if !ta[t] {
			onlyB = append(onlyB, t)
		}
	}

	if len(sect) > 0 && (len(onlyA) == 0 || len(onlyB) == 0) {
		return 100
	}

	base := joinSorted(sect)
	withA := strings.TrimSpace(base + " " + joinSorted(onlyA))
	withB := strings.TrimSpace(base + " " + joinSorted(onlyB))

	score := indelRatio(withA, withB)
	if base == "" {
		return score
	}

	return math.Max(score, math.Max(indelRatio(base, withA), indelRatio(base, withB)))
}

// Ratio is a plain character similarity (0-100): the indel ratio of the
// whole strings, without tokenizing. Swapping two adjacent characters costs
// two edits out of len(a)+len(b).
func Ratio(a, b string) float64 {
	return indelRatio(a, b)
}

// Suggest returns up to limit distinct keys within maxDistance Levenshtein
// edits of query, closest first. Equal distances keep candidate order.
func Suggest(query string, candidates []*model.AddressRecord, key KeyFunc, maxDistance, limit int) []string {
	type suggestion struct {
		key      string
		distance int
	}

	var found []suggestion

	seen := make(map[string]bool)

	for _, c := range candidates {
		if c == nil {
			continue
		}

		k := key(c)
		if k == "" || seen[k] {
			continue
		}

		seen[k] = true

		if d := levenshtein.ComputeDistance(query, k); d <= maxDistance {
			found = append(found, suggestion{key: k, distance: d})
		}
	}

	sort.SliceStable(found, func(i, j int) bool {
		return found[i].distance < found[j].distance
	})

	if limit > 0 && len(found) > limit {
		found = found[:limit]
	}

	keys := make([]string, 0, len(found))
	for _, f := range found {
		keys = append(keys, f.key)
	}

	return keys
}

// FindBestMatch returns the candidate whose key scores highest against the
// query, or false when the best score is below threshold. On ties the
// earliest candidate wins.
func FindBestMatch(query string, candidates []*model.AddressRecord, key KeyFunc, threshold float64) (Match, bool) {
	best := Match{Score: -1}

	for _, c := range candidates {
		if c == nil {
			continue
		}

		if s := Similarity(query, key(c)); s > best.Score {
			best = Match{Record: c, Score: s}
		}
	}

	if best.Record == nil || best.Score < threshold {
		return Match{}, false
	}

	return best, true
}

// Search returns up to limit candidates scoring at least threshold, best
// first. Equal scores keep their input order. A limit <= 0 means no limit.
func Search(query string, candidates []*model.AddressRecord, key KeyFunc, threshold float64, limit int) []Match {
	var matches []Match

	for _, c := range candidates {
		if c == nil {
			continue
		}

		if s := Similarity(query, key(c)); s >= threshold {
			matches = append(matches, Match{Record: c, Score: s})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}

	return matches
}

// Deduplicate drops records whose key is at least threshold similar (by
// Ratio) to a record kept before it. Records with an empty key are dropped.
func Deduplicate(records []*model.AddressRecord, key KeyFunc, threshold float64) []*model.AddressRecord {
	unique := make([]*model.AddressRecord, 0, len(records))
	seen := make([]string, 0, len(records))

next:
	for _, r := range records {
		if r == nil {
			continue
		}

		v := key(r)
		if v == "" {
			continue
		}

		for _, s := range seen {
			if Ratio(v, s) >= threshold {
				continue next
			}
		}

		unique = append(unique, r)
		seen = append(seen, v)
	}

	return unique
}

// Ranked is a record with its great-circle distance to a target.
type Ranked struct {
	Record     *model.AddressRecord `json:"record"`
	DistanceKm float64              `json:"distance_km"`
}

// RankByProximity sorts records by haversine distance to (lat, lng), nearest
// first. Records without valid coordinates get an infinite distance and sort
// last, keeping their relative order.
func RankByProximity(records []*model.AddressRecord, lat, lng float64) []Ranked {
	target := spatial.NewPoint(lat, lng)

	ranked := make([]Ranked, 0, len(records))
	for _, r := range records {
		if r == nil {
			continue
		}

		d := math.Inf(1)
		if target.Valid() && r.Point.Valid() {
			d = target.DistanceKm(r.Point)
		}

		ranked = append(ranked, Ranked{Record: r, DistanceKm: d})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].DistanceKm < ranked[j].DistanceKm
	})

	return ranked
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, t := range strings.Fields(s) {
		set[t] = true
	}

	return set
}

func joinSorted(tokens []string) string {
	sort.Strings(tokens)

	return strings.Join(tokens, " ")
}
