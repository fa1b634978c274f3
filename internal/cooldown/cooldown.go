// Package cooldown implements per-user fixed-window rate limiting.
package cooldown

import (
	"context"
	"sync"
	"time"
)

// Result is the outcome of a cooldown check.
type Result struct {
	Allowed   bool
	Remaining time.Duration
}

// Guard rate limits one action kind. CheckAndStamp must check and record
// in one atomic step: two concurrent calls for the same user inside one
// window never both get Allowed.
type Guard interface {
	CheckAndStamp(ctx context.Context, userID int64, now time.Time) (Result, error)
	// Remaining reports the time left in the user's window without stamping.
	Remaining(ctx context.Context, userID int64, now time.Time) (time.Duration, error)
	Window() time.Duration
}

// MemoryGuard keeps last-seen stamps in process memory.
type MemoryGuard struct {
	window   time.Duration
	mu       sync.Mutex
	lastSeen map[int64]time.Time
}

// NewMemoryGuard creates a guard with the given window.
func NewMemoryGuard(window time.Duration) *MemoryGuard {
	return &MemoryGuard{
		window:   window,
		lastSeen: make(map[int64]time.Time),
	}
}

// Window returns the cooldown window.
func (g *MemoryGuard) Window() time.Duration {
	return g.window
}

// CheckAndStamp rejects the action if the previous stamp is younger than the
// window, leaving the stamp untouched. Otherwise it records now.
func (g *MemoryGuard) CheckAndStamp(_ context.Context, userID int64, now time.Time) (Result, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if last, ok := g.lastSeen[userID]; ok {
		if elapsed := now.Sub(last); elapsed < g.window {
			return Result{Allowed: false, Remaining: g.window - elapsed}, nil
		}
	}
	g.lastSeen[userID] = now
	return Result{Allowed: true}, nil
}

// Remaining implements Guard.
func (g *MemoryGuard) Remaining(_ context.Context, userID int64, now time.Time) (time.Duration, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	last, ok := g.lastSeen[userID]
	if !ok {
		return 0, nil
	}
	if remaining := g.window - now.Sub(last); remaining > 0 {
		return remaining, nil
	}
	return 0, nil
}
