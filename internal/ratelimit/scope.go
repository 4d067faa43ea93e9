package ratelimit

import (
	"github.com/danielgtaylor/huma/v2"
)

// Scope labels which set of limits a decision came from.
type Scope string

const (
	// ScopeGlobal applies to all requests regardless of route.
	ScopeGlobal Scope = "global"
	// ScopeRoute labels limits attached to a single operation.
	ScopeRoute Scope = "route"
)

// MetadataKey is the operation metadata key holding an EndpointConfig.
const MetadataKey = "rateLimit"

// EndpointConfig is attached to a huma.Operation via Metadata[MetadataKey].
//
// Limits are checked in addition to the policy, never instead of it, so an
// endpoint can only tighten the site-wide limit. Disabled exempts the
// operation from every limit.
type EndpointConfig struct {
	Limits   []LimitConfig
	Disabled bool
}

// GetEndpointConfig extracts the EndpointConfig from operation metadata, if present.
func GetEndpointConfig(ctx huma.Context) *EndpointConfig {
	op := ctx.Operation()
	if op == nil || op.Metadata == nil {
		return nil
	}

	cfg, ok := op.Metadata[MetadataKey].(EndpointConfig)
	if !ok {
		return nil
	}

	return &cfg
}
