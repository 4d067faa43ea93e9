package ratelimit

import (
	"context"
	"time"
)

// LimitConfig is a fixed-window limit: at most Max requests per Window.
type LimitConfig struct {
	Window time.Duration
	Max    int64
}

// Result reports the state of a window after a Take.
type Result struct {
	Allowed bool
	Count   int64
	Max     int64
	ResetAt time.Time
}

// Remaining returns how many requests are left in the current window.
func (r Result) Remaining() int64 {
	if r.Count >= r.Max {
		return 0
	}

	return r.Max - r.Count
}

// Store holds fixed-window counters.
type Store interface {
	// Take checks and increments the counter for key as one atomic step.
	// A window whose reset time has passed is replaced by a fresh one with count 1.
	// A request that would exceed limit.Max is denied and not counted.
	Take(ctx context.Context, key string, limit LimitConfig) (Result, error)
	// Refund gives back one request taken from key's current window.
	// It is a no-op when the window has expired or is empty.
	Refund(ctx context.Context, key string, limit LimitConfig) error
}
