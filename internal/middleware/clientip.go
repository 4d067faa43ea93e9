package middleware

import (
	"net"
	"strings"

	"github.com/danielgtaylor/huma/v2"
)

// ClientIP resolves the caller address behind a load balancer: the first
// X-Forwarded-For hop, then X-Real-IP, then the connection's remote address.
func ClientIP(ctx huma.Context) string {
	if xff := ctx.Header("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")

		return strings.TrimSpace(first)
	}

	if xri := ctx.Header("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	addr := ctx.RemoteAddr()

	ip, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}

	return ip
}
