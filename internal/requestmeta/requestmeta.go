// Package requestmeta carries per-request HTTP metadata through a context.
package requestmeta

import "context"

type contextKey struct{}

// Meta holds HTTP request metadata used for logging and analytics.
type Meta struct {
	RequestID string
	ClientIP  string
	UserAgent string
	Referrer  string
}

// WithMeta adds request metadata to ctx.
func WithMeta(ctx context.Context, meta Meta) context.Context {
	return context.WithValue(ctx, contextKey{}, meta)
}

// FromContext extracts request metadata, or the zero Meta when absent.
func FromContext(ctx context.Context) Meta {
	if v, ok := ctx.Value(contextKey{}).(Meta); ok {
		return v
	}

	return Meta{}
}
