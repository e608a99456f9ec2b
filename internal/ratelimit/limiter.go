// Package ratelimit bounds repeated contact submissions per client key within
// a fixed time window.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Decision is the result of a single TryAcquire call.
type Decision struct {
	Allowed bool
	// ResetAt is when the key's current window expires.
	ResetAt time.Time
}

// Limiter admits or rejects attempts for a client key.
type Limiter interface {
	TryAcquire(ctx context.Context, key string) (Decision, error)
}

// Clock returns the current time. Tests substitute a fake.
type Clock func() time.Time

type record struct {
	count     int
	expiresAt time.Time
}

// FixedWindow is an in-process fixed-window limiter. The window for a key
// starts at its first admitted attempt and lasts for the configured duration.
// State is not shared across processes and is lost on restart.
type FixedWindow struct {
	limit  int
	window time.Duration
	now    Clock

	mu      sync.Mutex
	records map[string]*record
}

// NewFixedWindow creates a limiter admitting limit attempts per key per window.
func NewFixedWindow(limit int, window time.Duration) *FixedWindow {
	return NewFixedWindowWithClock(limit, window, time.Now)
}

// NewFixedWindowWithClock is NewFixedWindow with an injectable clock.
func NewFixedWindowWithClock(limit int, window time.Duration, now Clock) *FixedWindow {
	return &FixedWindow{
		limit:   limit,
		window:  window,
		now:     now,
		records: make(map[string]*record),
	}
}

// TryAcquire records an attempt for key and reports whether it is allowed.
// Rejected attempts do not consume a slot. A non-positive limit admits
// nothing.
func (l *FixedWindow) TryAcquire(_ context.Context, key string) (Decision, error) {
	now := l.now()
	if l.limit <= 0 {
		return Decision{Allowed: false, ResetAt: now.Add(l.window)}, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.records[key]
	if !ok || now.After(rec.expiresAt) {
		rec = &record{count: 1, expiresAt: now.Add(l.window)}
		l.records[key] = rec
		return Decision{Allowed: true, ResetAt: rec.expiresAt}, nil
	}

	if rec.count >= l.limit {
		return Decision{Allowed: false, ResetAt: rec.expiresAt}, nil
	}

	rec.count++
	return Decision{Allowed: true, ResetAt: rec.expiresAt}, nil
}

// Count returns the number of admitted attempts in key's active window.
func (l *FixedWindow) Count(key string) int {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.records[key]
	if !ok || now.After(rec.expiresAt) {
		return 0
	}
	return rec.count
}

// Len returns the number of tracked keys, expired or not.
func (l *FixedWindow) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}

// Sweep removes expired records and returns how many were removed.
func (l *FixedWindow) Sweep() int {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, rec := range l.records {
		if now.After(rec.expiresAt) {
			delete(l.records, key)
			removed++
		}
	}
	return removed
}

// Run sweeps expired records every interval until ctx is done.
func (l *FixedWindow) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Sweep()
		}
	}
}
