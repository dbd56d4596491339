// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package lookup

import (
	"context"
	"sync"

	"github.com/jcodagnone/addrlookup/model"
)

// Query is one company to resolve.
type Query struct {
	Company string `json:"company"`
	Site    string `json:"site,omitempty"`
}

// Result is the outcome of one Query.
type Result struct {
	Query
	Record *model.AddressRecord `json:"record,omitempty"`
	Source model.Source         `json:"source"`
	Err    error                `json:"-"`
}

// Progress is told about every finished query. Calls are serialized.
type Progress func(done, total int, r Result)

// LookupAll resolves queries with up to workers concurrent lookups. Results
// keep the order of queries. Queries not started before ctx is done are
// reported as not_found with the context error.
func (s *Service) LookupAll(ctx context.Context, queries []Query, workers int, progress Progress) []Result {
	results := make([]Result, len(queries))
	if workers < 1 {
		workers = 1
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		done int
	)

	report := func(r Result) {
		if progress == nil {
			return
		}

		mu.Lock()
		defer mu.Unlock()

		done++
		progress(done, len(queries), r)
	}

	semaphore := make(chan struct{}, workers)

	for i, q := range queries {
		wg.Add(1)

		go func(idx int, q Query) {
			defer wg.Done()

			res := Result{Query: q, Source: model.SourceNotFound}

			select {
			case <-ctx.Done():
				res.Err = ctx.Err()
				results[idx] = res
				report(res)

				return
			case semaphore <- struct{}{}:
			}

			defer func() { <-semaphore }()

			res.Record, res.Source, res.Err = s.Lookup(ctx, q.Company, q.Site)
			results[idx] = res
			report(res)
		}(i, q)
	}

	wg.Wait()

	return results
}
