// Package ratelimit provides a keyed fixed-window request counter.
// Windows are discrete and non-overlapping: a client can burst up to max
// requests just before a window resets and again just after. That tradeoff
// is accepted for this use case; do not swap in a sliding window here.
package ratelimit

import (
	"sync"
	"time"
)

// FixedWindow counts requests per key in fixed windows.
// Entries for idle keys are never evicted on their own; they are reset in
// place on the next access after their window passes. ClearIfExceeds exists
// as a size guard for long-running processes.
type FixedWindow struct {
	window time.Duration
	max    int
	now    func() time.Time

	mu      sync.Mutex
	entries map[string]*entry
}

type entry struct {
	count   int
	resetAt time.Time
}

// Result describes the outcome of a single Allow call.
type Result struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// New creates a fixed-window limiter. now is an injectable clock; pass nil
// to use time.Now.
func New(window time.Duration, max int, now func() time.Time) *FixedWindow {
	if now == nil {
		now = time.Now
	}
	return &FixedWindow{
		window:  window,
		max:     max,
		now:     now,
		entries: make(map[string]*entry),
	}
}

// Allow records a request for key and reports whether it is within the
// current window's budget.
func (fw *FixedWindow) Allow(key string) Result {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	now := fw.now()

	e, ok := fw.entries[key]
	if !ok || !now.Before(e.resetAt) {
		e = &entry{count: 1, resetAt: now.Add(fw.window)}
		fw.entries[key] = e
		return Result{Allowed: true, Remaining: fw.max - 1, ResetAt: e.resetAt}
	}

	if e.count >= fw.max {
		return Result{Allowed: false, Remaining: 0, ResetAt: e.resetAt}
	}

	e.count++
	remaining := fw.max - e.count
	if remaining < 0 {
		remaining = 0
	}
	return Result{Allowed: true, Remaining: remaining, ResetAt: e.resetAt}
}

// Len returns the number of tracked keys, expired entries included.
func (fw *FixedWindow) Len() int {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	return len(fw.entries)
}

// ClearIfExceeds drops all entries if more than maxSize keys are tracked.
// Returns true if the map was cleared.
func (fw *FixedWindow) ClearIfExceeds(maxSize int) bool {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if len(fw.entries) > maxSize {
		fw.entries = make(map[string]*entry)
		return true
	}
	return false
}
