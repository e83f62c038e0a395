// Package ratelimit is a process-local fixed-window request counter.
// Counts are not shared between server instances.
package ratelimit

import (
	"sync"
	"time"
)

// sweepEvery is how many calls pass between sweeps of expired windows.
const sweepEvery = 256

type window struct {
	start time.Time
	count int
}

// Limiter allows up to Limit calls per key in each fixed window.
type Limiter struct {
	limit  int
	window time.Duration

	mu      sync.Mutex
	windows map[string]*window
	calls   int
}

// New creates a limiter allowing limit calls per window.
func New(limit int, win time.Duration) *Limiter {
	return &Limiter{limit: limit, window: win, windows: make(map[string]*window)}
}

// Limit returns the number of calls allowed per window.
func (l *Limiter) Limit() int { return l.limit }

// Allow counts a call for key at now. It reports whether the call is
// within the limit, how many calls remain in the window and when the
// window resets.
func (l *Limiter) Allow(key string, now time.Time) (allowed bool, remaining int, reset time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.calls++
	if l.calls%sweepEvery == 0 {
		l.sweep(now)
	}

	start := now.Truncate(l.window)
	w, ok := l.windows[key]
	if !ok || !w.start.Equal(start) {
		w = &window{start: start}
		l.windows[key] = w
	}
	reset = start.Add(l.window)

	if w.count >= l.limit {
		return false, 0, reset
	}
	w.count++
	return true, l.limit - w.count, reset
}

// Len returns the number of tracked keys.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}

// sweep drops windows that ended before now.
func (l *Limiter) sweep(now time.Time) {
	for key, w := range l.windows {
		if !now.Before(w.start.Add(l.window)) {
			delete(l.windows, key)
		}
	}
}
