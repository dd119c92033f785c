package http

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/alebedev/helpboard/internal/common/constants"
	prommetrics "github.com/alebedev/helpboard/internal/common/prometheus"
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps a token bucket per client IP. It sits in front of the auth
// endpoints to slow down credential guessing; idle buckets are evicted by a
// background sweep.
type RateLimiter struct {
	mu      sync.Mutex
	entries map[string]*limiterEntry
	limit   rate.Limit
	burst   int
	sweep   *time.Ticker
}

func NewRateLimiter(requestsPerSecond float64, burst int) *RateLimiter {
	rl := &RateLimiter{
		entries: make(map[string]*limiterEntry),
		limit:   rate.Limit(requestsPerSecond),
		burst:   burst,
		sweep:   time.NewTicker(constants.RateLimitCleanupInterval),
	}
	go rl.sweepIdle()
	return rl
}

func (rl *RateLimiter) sweepIdle() {
	for range rl.sweep.C {
		cutoff := time.Now().Add(-constants.RateLimitCleanupInterval)
		rl.mu.Lock()
		for key, entry := range rl.entries {
			if entry.lastSeen.Before(cutoff) {
				delete(rl.entries, key)
			}
		}
		rl.mu.Unlock()
	}
}

func (rl *RateLimiter) allow(key string) bool {
	rl.mu.Lock()
	entry, ok := rl.entries[key]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.entries[key] = entry
	}
	entry.lastSeen = time.Now()
	rl.mu.Unlock()

	return entry.limiter.Allow()
}

func (rl *RateLimiter) Middleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(GetClientIP(r)) {
			prommetrics.RateLimitBlocked.WithLabelValues(r.URL.Path).Inc()
			WriteErrorEnvelope(w, http.StatusTooManyRequests, CodeRateLimited, "too many requests", "")
			return
		}
		next(w, r)
	}
}

func (rl *RateLimiter) Stop() {
	rl.sweep.Stop()
}
