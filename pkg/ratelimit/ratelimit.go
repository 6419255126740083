package ratelimit

import (
	"sync"

	"golang.org/x/time/rate"
)

const secondsPerDay = 86400

// Limiter hands out one token bucket per API key, sized from its daily limit
type Limiter struct {
	mu       sync.Mutex
	limiters map[uint]*entry
}

type entry struct {
	daily   int
	limiter *rate.Limiter
}

// New creates an empty Limiter
func New() *Limiter {
	return &Limiter{limiters: make(map[uint]*entry)}
}

// Burst is the instant allowance for a daily limit: one hour of traffic, at least 1
func Burst(daily int) int {
	return max(1, daily/24)
}

func newLimiter(daily int) *rate.Limiter {
	return rate.NewLimiter(rate.Limit(float64(daily)/secondsPerDay), Burst(daily))
}

// Allow reports whether a request on keyID may proceed now. A daily limit
// that differs from the cached one replaces the bucket, so limit updates
// take effect on the next request. A non-positive limit never allows.
func (l *Limiter) Allow(keyID uint, daily int) bool {
	if daily <= 0 {
		return false
	}

	l.mu.Lock()
	e, ok := l.limiters[keyID]
	if !ok || e.daily != daily {
		e = &entry{daily: daily, limiter: newLimiter(daily)}
		l.limiters[keyID] = e
	}
	l.mu.Unlock()

	return e.limiter.Allow()
}

// Forget drops the bucket of a revoked key
func (l *Limiter) Forget(keyID uint) {
	l.mu.Lock()
	delete(l.limiters, keyID)
	l.mu.Unlock()
}
