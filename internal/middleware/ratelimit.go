package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/launch-site-go/internal/metrics"
	"github.com/serroba/launch-site-go/internal/ratelimit"
	"go.uber.org/zap"
)

// TooManyRequestsMessage is the body message of every 429 response.
const TooManyRequestsMessage = "Too many requests. Please try again later."

// PolicyRateLimiter returns a Huma middleware enforcing any limits attached to
// the operation through ratelimit.MetadataKey plus the policy scopes for every
// request. Clients are keyed by resolved IP address.
func PolicyRateLimiter(
	api huma.API,
	limiter *ratelimit.PolicyLimiter,
	m *metrics.Metrics,
	logger *zap.Logger,
) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		cfg := ratelimit.GetEndpointConfig(ctx)
		if cfg != nil && cfg.Disabled {
			next(ctx)

			return
		}

		var routeLimits []ratelimit.LimitConfig
		if cfg != nil {
			routeLimits = cfg.Limits
		}

		path := operationPath(ctx)

		res, exceeded, err := limiter.Allow(ctx.Context(), clientKey(ctx), path, routeLimits)
		if !handleDecision(api, ctx, exceeded, err, path, m, logger) {
			return
		}

		if res != nil {
			setLimitHeaders(ctx, *res)
		}

		next(ctx)
	}
}

// handleDecision writes the error response for a failed check and reports
// whether the request may continue.
func handleDecision(
	api huma.API,
	ctx huma.Context,
	exceeded *ratelimit.LimitExceeded,
	err error,
	path string,
	m *metrics.Metrics,
	logger *zap.Logger,
) bool {
	if err != nil {
		logger.Error("rate limit check failed", zap.String("path", path), zap.Error(err))
		_ = huma.WriteErr(api, ctx, http.StatusInternalServerError, "internal server error")

		return false
	}

	if exceeded == nil {
		return true
	}

	m.RateLimited(string(exceeded.Scope))

	logger.Warn("rate limit exceeded",
		zap.String("path", path),
		zap.String("method", ctx.Method()),
		zap.String("scope", string(exceeded.Scope)),
		zap.Int64("max", exceeded.Config.Max),
		zap.Duration("window", exceeded.Config.Window),
		zap.String("client_ip", ClientIP(ctx)),
	)

	setLimitHeaders(ctx, exceeded.Result)
	ctx.SetHeader("Retry-After", strconv.Itoa(secondsUntil(exceeded.Result.ResetAt)))

	_ = huma.WriteErr(api, ctx, http.StatusTooManyRequests, TooManyRequestsMessage)

	return false
}

func setLimitHeaders(ctx huma.Context, res ratelimit.Result) {
	ctx.SetHeader("RateLimit-Limit", strconv.FormatInt(res.Max, 10))
	ctx.SetHeader("RateLimit-Remaining", strconv.FormatInt(res.Remaining(), 10))
	ctx.SetHeader("RateLimit-Reset", strconv.Itoa(secondsUntil(res.ResetAt)))
}

func secondsUntil(t time.Time) int {
	return max(0, int(math.Ceil(time.Until(t).Seconds())))
}

// clientKey hashes the client IP so raw addresses never reach the limiter store.
func clientKey(ctx huma.Context) string {
	hash := sha256.Sum256([]byte(ClientIP(ctx)))

	return hex.EncodeToString(hash[:])
}

func operationPath(ctx huma.Context) string {
	if op := ctx.Operation(); op != nil {
		return op.Path
	}

	return ""
}
