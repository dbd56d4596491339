// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Quota tracks provider calls against a daily budget and paces them.
// The counter starts over when the UTC day changes.
type Quota struct {
	mu      sync.Mutex
	max     int
	warn    int
	count   int
	day     string
	limiter *rate.Limiter
	now     func() time.Time
}

// NewQuota allows exactly maxPerDay calls a day: call maxPerDay goes out and
// the next one fails. It logs a warning for every call from warnAt on. perSecond <= 0 disables pacing; maxPerDay <= 0 disables the
// budget.
func NewQuota(maxPerDay, warnAt int, perSecond float64) *Quota {
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}

	return &Quota{
		max:     maxPerDay,
		warn:    warnAt,
		limiter: rate.NewLimiter(limit, 1),
		now:     time.Now,
	}
}

// Acquire books one call. It fails fast with ErrQuotaExceeded once the
// budget is spent and otherwise waits for the pacing limiter. A call that
// gives up waiting is not counted.
func (q *Quota) Acquire(ctx context.Context) error {
	day, err := q.book()
	if err != nil {
		return err
	}

	if err := q.limiter.Wait(ctx); err != nil {
		q.refund(day)

		return fmt.Errorf("waiting for rate limiter: %w", err)
	}

	return nil
}

// refund returns a slot booked on day, unless the counter has started over.
func (q *Quota) refund(day string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.day == day && q.count > 0 {
		q.count--
	}
}

func (q *Quota) book() (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if day := q.now().UTC().Format(time.DateOnly); day != q.day {
		q.day = day
		q.count = 0
	}

	if q.max > 0 && q.count >= q.max {
		return "", &Error{Kind: KindQuotaExceeded, Message: fmt.Sprintf("limit of %d calls", q.max), Err: ErrQuotaExceeded}
	}

	q.count++

	if q.warn > 0 && q.count >= q.warn {
		log.Printf("⚠️ %d geocoding calls made today (limit: %d)", q.count, q.max)
	}

	return q.day, nil
}

// Count returns the calls booked today.
func (q *Quota) Count() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.now().UTC().Format(time.DateOnly) != q.day {
		return 0
	}

	return q.count
}
