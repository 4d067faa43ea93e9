package middleware

import (
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/launch-site-go/internal/requestmeta"
	"go.uber.org/zap"
)

// AccessLog logs method, path, status and duration of every API request.
// Server errors log at error level, client errors at warn.
func AccessLog(logger *zap.Logger) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		start := time.Now()

		next(ctx)

		path := ctx.URL().Path
		if !strings.HasPrefix(path, "/api") {
			return
		}

		status := ctx.Status()
		fields := []zap.Field{
			zap.String("method", ctx.Method()),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("duration", time.Since(start)),
			zap.String("requestId", requestmeta.FromContext(ctx.Context()).RequestID),
		}

		switch {
		case status >= 500:
			logger.Error("request", fields...)
		case status >= 400:
			logger.Warn("request", fields...)
		default:
			logger.Info("request", fields...)
		}
	}
}
