package middleware

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/launch-site-go/internal/requestmeta"
)

const maxRequestIDLength = 64

// RequestMeta adds request id, client IP, user-agent and referrer to the
// request context and echoes the request id in X-Request-ID.
func RequestMeta(_ huma.API, newID func() string) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		id := ctx.Header("X-Request-ID")
		if id == "" || len(id) > maxRequestIDLength {
			id = newID()
		}

		meta := requestmeta.Meta{
			RequestID: id,
			ClientIP:  ClientIP(ctx),
			UserAgent: ctx.Header("User-Agent"),
			Referrer:  ctx.Header("Referer"),
		}

		ctx.SetHeader("X-Request-ID", id)

		next(huma.WithContext(ctx, requestmeta.WithMeta(ctx.Context(), meta)))
	}
}
