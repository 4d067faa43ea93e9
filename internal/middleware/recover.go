package middleware

import (
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"
)

// Recover turns a panic in a handler into a 500 with a generic message.
func Recover(api huma.API, logger *zap.Logger) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error("handler panic",
					zap.String("method", ctx.Method()),
					zap.String("path", operationPath(ctx)),
					zap.String("panic", fmt.Sprint(rec)),
					zap.Stack("stack"),
				)

				_ = huma.WriteErr(api, ctx, http.StatusInternalServerError, "An error occurred")
			}
		}()

		next(ctx)
	}
}
