package strava

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Strava enforces 100 requests per 15 minutes and 1000 per day. The limiter
// tracks both windows and corrects itself from response headers.
type RateLimiter struct {
	mu      sync.Mutex
	short   window
	daily   window
	minGap  time.Duration
	lastReq time.Time
}

type window struct {
	limit    int
	usage    int
	period   time.Duration
	resetsAt time.Time
}

// NewRateLimiter creates a limiter preset with Strava's published limits
func NewRateLimiter() *RateLimiter {
	now := time.Now()
	return &RateLimiter{
		short:  window{limit: 100, period: 15 * time.Minute, resetsAt: now.Add(15 * time.Minute)},
		daily:  window{limit: 1000, period: 24 * time.Hour, resetsAt: now.Truncate(24 * time.Hour).Add(24 * time.Hour)},
		minGap: 150 * time.Millisecond,
	}
}

// Wait blocks until a request can be made without exceeding either window
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	r.short.resetIfExpired(now)
	r.daily.resetIfExpired(now)

	for _, w := range []*window{&r.short, &r.daily} {
		if w.usage < w.limit {
			continue
		}
		if err := r.sleep(ctx, time.Until(w.resetsAt)); err != nil {
			return err
		}
		w.usage = 0
		w.resetsAt = time.Now().Add(w.period)
	}

	if gap := r.minGap - time.Since(r.lastReq); gap > 0 {
		if err := r.sleep(ctx, gap); err != nil {
			return err
		}
	}

	r.short.usage++
	r.daily.usage++
	r.lastReq = time.Now()
	return nil
}

// sleep releases the lock while waiting so header updates can land
func (r *RateLimiter) sleep(ctx context.Context, d time.Duration) error {
	r.mu.Unlock()
	defer r.mu.Lock()
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// UpdateFromHeaders syncs usage from Strava's X-RateLimit headers, which
// arrive as "short,daily" pairs.
func (r *RateLimiter) UpdateFromHeaders(h http.Header) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if short, daily, ok := splitPair(h.Get("X-RateLimit-Usage")); ok {
		r.short.usage, r.daily.usage = short, daily
	}
	if short, daily, ok := splitPair(h.Get("X-RateLimit-Limit")); ok {
		r.short.limit, r.daily.limit = short, daily
	}
}

// Remaining reports how many requests are left in each window
func (r *RateLimiter) Remaining() (short, daily int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.short.limit - r.short.usage, r.daily.limit - r.daily.usage
}

func (w *window) resetIfExpired(now time.Time) {
	if now.After(w.resetsAt) {
		w.usage = 0
		w.resetsAt = now.Add(w.period)
	}
}

func splitPair(s string) (short, daily int, ok bool) {
	parts := strings.Split(s, ",")
	if len(parts) < 2 {
		return 0, 0, false
	}
	short, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	daily, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	return short, daily, err1 == nil && err2 == nil
}
