package httpadapter

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// userLimiter throttles session endpoints per user id. Stale limiters are
// evicted lazily on the next sweep.
type userLimiter struct {
	perMinute int
	burst     int

	mu       sync.Mutex
	limiters map[string]*userEntry
	lastSeen time.Duration
	now      func() time.Time
	swept    time.Time
}

type userEntry struct {
	limiter *rate.Limiter
	seen    time.Time
}

func newUserLimiter(perMinute int) *userLimiter {
	burst := perMinute / 4
	if burst < 1 {
		burst = 1
	}
	return &userLimiter{
		perMinute: perMinute,
		burst:     burst,
		limiters:  make(map[string]*userEntry),
		lastSeen:  10 * time.Minute,
		now:       time.Now,
	}
}

func (l *userLimiter) Allow(userID string) bool {
	if l.perMinute <= 0 {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.swept) > l.lastSeen {
		for id, entry := range l.limiters {
			if now.Sub(entry.seen) > l.lastSeen {
				delete(l.limiters, id)
			}
		}
		l.swept = now
	}

	entry, ok := l.limiters[userID]
	if !ok {
		entry = &userEntry{
			limiter: rate.NewLimiter(rate.Limit(float64(l.perMinute)/60.0), l.burst),
		}
		l.limiters[userID] = entry
	}
	entry.seen = now
	return entry.limiter.Allow()
}
