// Package health reports process liveness and dependency state.
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/redis/go-redis/v9"
	"github.com/serroba/launch-site-go/internal/ratelimit"
)

const (
	pingTimeout = 2 * time.Second

	// TimestampFormat is ISO 8601 with milliseconds in UTC.
	TimestampFormat = "2006-01-02T15:04:05.000Z"
)

// Checker defines the interface for checking service health.
type Checker interface {
	Ping(ctx context.Context) error
}

// RedisChecker adapts a redis client to the Checker interface.
type RedisChecker struct {
	client redis.UniversalClient
}

// NewRedisChecker creates a new Redis health checker.
func NewRedisChecker(client redis.UniversalClient) *RedisChecker {
	return &RedisChecker{client: client}
}

// Ping checks Redis connectivity.
func (r *RedisChecker) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Option configures a Handler.
type Option func(*Handler)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) { h.now = now }
}

// Handler handles health check operations.
type Handler struct {
	redis Checker
	now   func() time.Time
}

// NewHandler creates a new health handler.
func NewHandler(redis Checker, opts ...Option) *Handler {
	h := &Handler{redis: redis, now: time.Now}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// Response is the response for health check endpoint.
type Response struct {
	Body struct {
		Status    string `json:"status"    example:"ok"`
		Timestamp string `json:"timestamp" example:"2026-01-01T12:00:00.000Z"`
		Redis     string `json:"redis"     enum:"healthy,unhealthy"`
	}
}

// Check reports liveness. Redis state is informational and never fails the probe.
func (h *Handler) Check(ctx context.Context, _ *struct{}) (*Response, error) {
	resp := &Response{}
	resp.Body.Status = "ok"
	resp.Body.Timestamp = h.now().UTC().Format(TimestampFormat)
	resp.Body.Redis = "healthy"

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if h.redis == nil || h.redis.Ping(ctx) != nil {
		resp.Body.Redis = "unhealthy"
	}

	return resp, nil
}

// RegisterRoutes registers health check routes. Probes are exempt from rate limiting.
func RegisterRoutes(api huma.API, h *Handler) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Liveness probe",
		Tags:        []string{"Health"},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{Disabled: true},
		},
	}, h.Check)
}
