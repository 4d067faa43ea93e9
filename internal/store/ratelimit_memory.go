package store

import (
	"context"
	"sync"
	"time"

	"github.com/serroba/launch-site-go/internal/ratelimit"
)

// sweepEvery is how many Take calls pass between removals of expired windows.
const sweepEvery = 1024

type window struct {
	count   int64
	resetAt time.Time
}

// RateLimitMemoryStore is an in-memory implementation of ratelimit.Store.
// Counters live for the lifetime of the process.
type RateLimitMemoryStore struct {
	mu      sync.Mutex
	windows map[string]*window
	now     func() time.Time
	takes   int
}

// MemoryOption configures a RateLimitMemoryStore.
type MemoryOption func(*RateLimitMemoryStore)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *RateLimitMemoryStore) {
		s.now = now
	}
}

// NewRateLimitMemoryStore creates a new in-memory rate limit store.
func NewRateLimitMemoryStore(opts ...MemoryOption) *RateLimitMemoryStore {
	s := &RateLimitMemoryStore{
		windows: make(map[string]*window),
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *RateLimitMemoryStore) Take(_ context.Context, key string, limit ratelimit.LimitConfig) (ratelimit.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	s.takes++
	if s.takes%sweepEvery == 0 {
		s.sweep(now)
	}

	w, ok := s.windows[key]
	if !ok || now.After(w.resetAt) {
		w = &window{count: 1, resetAt: now.Add(limit.Window)}
		s.windows[key] = w

		return ratelimit.Result{Allowed: true, Count: 1, Max: limit.Max, ResetAt: w.resetAt}, nil
	}

	if w.count >= limit.Max {
		return ratelimit.Result{Allowed: false, Count: w.count, Max: limit.Max, ResetAt: w.resetAt}, nil
	}

	w.count++

	return ratelimit.Result{Allowed: true, Count: w.count, Max: limit.Max, ResetAt: w.resetAt}, nil
}

// Refund gives back one request of key's current window.
func (s *RateLimitMemoryStore) Refund(_ context.Context, key string, _ ratelimit.LimitConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[key]
	if !ok || s.now().After(w.resetAt) || w.count == 0 {
		return nil
	}

	w.count--

	return nil
}

// Len returns the number of tracked windows, expired or not.
func (s *RateLimitMemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.windows)
}

func (s *RateLimitMemoryStore) sweep(now time.Time) {
	for key, w := range s.windows {
		if now.After(w.resetAt) {
			delete(s.windows, key)
		}
	}
}

var _ ratelimit.Store = (*RateLimitMemoryStore)(nil)
