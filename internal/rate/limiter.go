package rate

import (
	"sync"
	"time"

	xrate "golang.org/x/time/rate"
)

// KeyedLimiter keeps one token bucket per key, usually a client address.
type KeyedLimiter struct {
	mu              sync.Mutex
	rps             xrate.Limit
	burst           int
	idle            time.Duration
	items           map[string]*bucket
	lastCleanup     time.Time
	cleanupInterval time.Duration
	now             func() time.Time
}

type bucket struct {
	limiter  *xrate.Limiter
	lastSeen time.Time
}

// NewKeyedLimiter allows rps requests per second per key with the given burst.
// Buckets unused for idle are dropped.
func NewKeyedLimiter(rps float64, burst int, idle time.Duration) *KeyedLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &KeyedLimiter{
		rps:             xrate.Limit(rps),
		burst:           burst,
		idle:            idle,
		items:           make(map[string]*bucket),
		lastCleanup:     time.Now(),
		cleanupInterval: idle,
		now:             time.Now,
	}
}

// Allow reports whether one more request for key fits in its bucket.
func (l *KeyedLimiter) Allow(key string) bool {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	l.maybeCleanup(now)

	entry, ok := l.items[key]
	if !ok {
		entry = &bucket{limiter: xrate.NewLimiter(l.rps, l.burst)}
		l.items[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

func (l *KeyedLimiter) maybeCleanup(now time.Time) {
	if l.cleanupInterval <= 0 || l.idle <= 0 {
		return
	}
	if now.Sub(l.lastCleanup) < l.cleanupInterval {
		return
	}
	for key, entry := range l.items {
		if now.Sub(entry.lastSeen) >= l.idle {
			delete(l.items, key)
		}
	}
	l.lastCleanup = now
}
