package httpapi

import (
	"sync"
	"time"
)

// loginLimiter is a sliding-window attempt counter keyed by client ip and
// by normalized email. Keys with no attempt inside the window are dropped on
// the next sweep, so the map stays bounded by recent traffic.
type loginLimiter struct {
	mu        sync.Mutex
	window    time.Duration
	max       int
	attempts  map[string][]time.Time
	lastSweep time.Time
}

func newLoginLimiter() *loginLimiter {
	return &loginLimiter{
		window:   5 * time.Minute,
		max:      10,
		attempts: make(map[string][]time.Time),
	}
}

// Allow records an attempt for key at now and reports whether it is within
// the limit. Rejected attempts are not recorded.
func (l *loginLimiter) Allow(key string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := now.Add(-l.window)
	if now.Sub(l.lastSweep) >= l.window {
		l.sweep(cutoff)
		l.lastSweep = now
	}

	recent := pruneBefore(l.attempts[key], cutoff)
	if len(recent) >= l.max {
		l.attempts[key] = recent
		return false
	}
	l.attempts[key] = append(recent, now)
	return true
}

func (l *loginLimiter) sweep(cutoff time.Time) {
	for key, ts := range l.attempts {
		if len(ts) == 0 || !ts[len(ts)-1].After(cutoff) {
			delete(l.attempts, key)
		}
	}
}

// pruneBefore drops timestamps at or before cutoff, reusing ts.
func pruneBefore(ts []time.Time, cutoff time.Time) []time.Time {
	kept := ts[:0]
	for _, t := range ts {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	return kept
}
