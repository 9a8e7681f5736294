package strava

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// window is one of Strava's request quotas
type window struct {
	limit    int
	used     int
	resetsAt time.Time
	next     func(now time.Time) time.Time // when a window starting now resets
}

func (w *window) roll(now time.Time) {
	if now.After(w.resetsAt) {
		w.used = 0
		w.resetsAt = w.next(now)
	}
}

func every15Minutes(now time.Time) time.Time { return now.Add(15 * time.Minute) }

// The daily quota resets at midnight UTC
func nextUTCMidnight(now time.Time) time.Time {
	return now.UTC().Truncate(24 * time.Hour).Add(24 * time.Hour)
}

// RateLimiter paces requests against the 15-minute and daily quotas. The
// quotas start at 100 and 1000 and follow the response headers after that.
type RateLimiter struct {
	mu sync.Mutex

	short, daily window
	spacing      time.Duration
	last         time.Time
}

// NewRateLimiter creates a limiter with Strava's default quotas
func NewRateLimiter() *RateLimiter {
	now := time.Now()
	return &RateLimiter{
		short:   window{limit: 100, resetsAt: every15Minutes(now), next: every15Minutes},
		daily:   window{limit: 1000, resetsAt: nextUTCMidnight(now), next: nextUTCMidnight},
		spacing: 150 * time.Millisecond,
	}
}

// Wait blocks until one more request fits in both quotas
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, w := range []*window{&r.short, &r.daily} {
		w.roll(time.Now())
		if w.used < w.limit {
			continue
		}
		if err := r.pause(ctx, time.Until(w.resetsAt)); err != nil {
			return err
		}
		w.used = 0
		w.resetsAt = w.next(time.Now())
	}

	if gap := r.spacing - time.Since(r.last); gap > 0 {
		if err := r.pause(ctx, gap); err != nil {
			return err
		}
	}

	r.short.used++
	r.daily.used++
	r.last = time.Now()
	return nil
}

// pause sleeps with the lock released
func (r *RateLimiter) pause(ctx context.Context, d time.Duration) error {
	r.mu.Unlock()
	defer r.mu.Lock()

	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// UpdateFromHeaders adopts the quotas reported with a response, sent as
// "short,daily" pairs in X-RateLimit-Limit and X-RateLimit-Usage
func (r *RateLimiter) UpdateFromHeaders(h http.Header) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if short, daily, ok := parsePair(h.Get("X-RateLimit-Usage")); ok {
		r.short.used, r.daily.used = short, daily
	}
	if short, daily, ok := parsePair(h.Get("X-RateLimit-Limit")); ok {
		r.short.limit, r.daily.limit = short, daily
	}
}

func parsePair(v string) (first, second int, ok bool) {
	a, b, found := strings.Cut(v, ",")
	if !found {
		return 0, 0, false
	}
	first, err := strconv.Atoi(strings.TrimSpace(a))
	if err != nil {
		return 0, 0, false
	}
	second, err = strconv.Atoi(strings.TrimSpace(b))
	if err != nil {
		return 0, 0, false
	}
	return first, second, true
}

// Status returns the requests left in each window
func (r *RateLimiter) Status() (shortRemaining, dailyRemaining int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.short.limit - r.short.used, r.daily.limit - r.daily.used
}

// Usage returns the requests made in each window
func (r *RateLimiter) Usage() (shortUsage, dailyUsage int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.short.used, r.daily.used
}
