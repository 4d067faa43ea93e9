package ratelimit

import "context"

// Limiter decides whether a request identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

// FixedWindowLimiter applies a single fixed-window limit to every key.
type FixedWindowLimiter struct {
	store Store
	limit LimitConfig
}

// NewFixedWindowLimiter creates a limiter that allows limit.Max requests per limit.Window.
func NewFixedWindowLimiter(store Store, limit LimitConfig) *FixedWindowLimiter {
	return &FixedWindowLimiter{
		store: store,
		limit: limit,
	}
}

func (l *FixedWindowLimiter) Allow(ctx context.Context, key string) (Result, error) {
	return l.store.Take(ctx, key, l.limit)
}

// Limit returns the configured limit.
func (l *FixedWindowLimiter) Limit() LimitConfig {
	return l.limit
}
