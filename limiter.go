package drakkar

import (
	"sync"
	"time"
)

// RateLimiter caps attempts per client within a sliding window. The app
// runs two: one for admin logins keyed by IP and one for contact form
// submissions, where only stored messages count against the visitor.
type RateLimiter struct {
	mu     sync.Mutex
	hits   map[string][]time.Time
	max    int
	window time.Duration
	stop   chan struct{}
	once   sync.Once
}

// NewRateLimiter allows max attempts per window for each key. A background
// sweep drops idle keys until Close is called.
func NewRateLimiter(max int, window time.Duration) *RateLimiter {
	l := &RateLimiter{
		hits:   make(map[string][]time.Time),
		max:    max,
		window: window,
		stop:   make(chan struct{}),
	}
	go l.sweep()
	return l
}

// Close stops the background sweep.
func (l *RateLimiter) Close() {
	l.once.Do(func() { close(l.stop) })
}

func (l *RateLimiter) sweep() {
	ticker := time.NewTicker(l.window)
	defer ticker.Stop()
	for {
		select {
		case <-l.stop:
			return
		case now := <-ticker.C:
			l.mu.Lock()
			for key := range l.hits {
				l.prune(key, now)
			}
			l.mu.Unlock()
		}
	}
}

// prune drops attempts older than the window and returns how many remain.
// The caller holds mu.
func (l *RateLimiter) prune(key string, now time.Time) int {
	cutoff := now.Add(-l.window)
	kept := l.hits[key][:0]
	for _, t := range l.hits[key] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	if len(kept) == 0 {
		delete(l.hits, key)
		return 0
	}
	l.hits[key] = kept
	return len(kept)
}

// Allow records an attempt for key if it is still under the limit.
func (l *RateLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := time.Now()
	if l.prune(key, now) >= l.max {
		return false
	}
	l.hits[key] = append(l.hits[key], now)
	return true
}

// Check reports whether key is under the limit without recording. Login
// and contact handlers check first and Record only failed logins or
// stored messages.
func (l *RateLimiter) Check(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.prune(key, time.Now()) < l.max
}

// Record counts one attempt for key.
func (l *RateLimiter) Record(key string) {
	l.mu.Lock()
	l.hits[key] = append(l.hits[key], time.Now())
	l.mu.Unlock()
}
