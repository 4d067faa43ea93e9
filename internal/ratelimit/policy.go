package ratelimit

import "time"

// Policy maps scopes to the limits enforced for them.
type Policy struct {
	Limits map[Scope][]LimitConfig
}

// DefaultPolicy mirrors the site-wide limit of the public web tier:
// 100 requests per 15 minutes per client across every endpoint.
func DefaultPolicy() *Policy {
	return &Policy{
		Limits: map[Scope][]LimitConfig{
			ScopeGlobal: {
				{Window: 15 * time.Minute, Max: 100},
			},
		},
	}
}

// ProfileLookupLimit is applied to the profile lookup endpoint, keyed by client IP.
var ProfileLookupLimit = LimitConfig{Window: time.Minute, Max: 5}
