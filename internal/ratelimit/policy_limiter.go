package ratelimit

import (
	"context"
	"fmt"
	"maps"
	"slices"
)

// LimitExceeded contains information about which limit was exceeded.
type LimitExceeded struct {
	Scope  Scope
	Config LimitConfig
	Result Result
}

// PolicyLimiter enforces the policy limits plus any per-route limits.
type PolicyLimiter struct {
	store  Store
	policy *Policy
}

// NewPolicyLimiter creates a new policy-based rate limiter.
func NewPolicyLimiter(store Store, policy *Policy) *PolicyLimiter {
	return &PolicyLimiter{
		store:  store,
		policy: policy,
	}
}

type check struct {
	scope Scope
	key   string
	limit LimitConfig
}

// Allow checks the route limits first, then every policy scope in name order.
// The first exhausted window denies the request and is described by the
// returned LimitExceeded; windows already taken for the request are refunded,
// so a denied request is not counted anywhere. On success the tightest window
// (fewest remaining) is returned for response headers.
func (l *PolicyLimiter) Allow(
	ctx context.Context,
	clientKey, route string,
	routeLimits []LimitConfig,
) (*Result, *LimitExceeded, error) {
	checks := make([]check, 0, len(routeLimits)+len(l.policy.Limits))

	for _, limit := range routeLimits {
		checks = append(checks, check{
			scope: ScopeRoute,
			key:   fmt.Sprintf("%s:route:%s:%d", clientKey, route, limit.Window.Milliseconds()),
			limit: limit,
		})
	}

	for _, scope := range slices.Sorted(maps.Keys(l.policy.Limits)) {
		for _, limit := range l.policy.Limits[scope] {
			checks = append(checks, check{
				scope: scope,
				key:   fmt.Sprintf("%s:%s:%d", clientKey, scope, limit.Window.Milliseconds()),
				limit: limit,
			})
		}
	}

	return l.take(ctx, checks)
}

func (l *PolicyLimiter) take(ctx context.Context, checks []check) (*Result, *LimitExceeded, error) {
	var tightest *Result

	for i, c := range checks {
		res, err := l.store.Take(ctx, c.key, c.limit)
		if err != nil {
			l.refund(ctx, checks[:i])

			return nil, nil, err
		}

		if !res.Allowed {
			l.refund(ctx, checks[:i])

			return nil, &LimitExceeded{Scope: c.scope, Config: c.limit, Result: res}, nil
		}

		tightest = tighter(tightest, res)
	}

	return tightest, nil, nil
}

// refund is best effort: a failed refund only leaves a window one request fuller.
func (l *PolicyLimiter) refund(ctx context.Context, taken []check) {
	for _, c := range taken {
		_ = l.store.Refund(ctx, c.key, c.limit)
	}
}

// Store returns the underlying rate limit store.
func (l *PolicyLimiter) Store() Store {
	return l.store
}

func tighter(current *Result, candidate Result) *Result {
	if current == nil || candidate.Remaining() < current.Remaining() {
		return &candidate
	}

	return current
}
