package handlers_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/serroba/launch-site-go/internal/handlers"
	"github.com/serroba/launch-site-go/internal/metrics"
	"github.com/serroba/launch-site-go/internal/middleware"
	"github.com/serroba/launch-site-go/internal/profile"
	"github.com/serroba/launch-site-go/internal/ratelimit"
	"github.com/serroba/launch-site-go/internal/store"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type stubLookup struct {
	profile *profile.Profile
	err     error
	emails  []string
}

func (s *stubLookup) FindByEmail(_ context.Context, email string) (*profile.Profile, error) {
	s.emails = append(s.emails, email)

	return s.profile, s.err
}

func profileAPI(t *testing.T, lookup profile.Lookup) humatest.TestAPI {
	t.Helper()

	api := newTestAPI(t)
	handlers.RegisterProfileRoutes(api, handlers.NewProfileHandler(lookup, zap.NewNop()))

	return api
}

func TestProfileHandler_Lookup(t *testing.T) {
	t.Run("returns the profile", func(t *testing.T) {
		email := gofakeit.Email()
		sessions := 12.0
		lookup := &stubLookup{profile: &profile.Profile{FirstName: "Ada", Email: email, SessionCount: &sessions}}
		api := profileAPI(t, lookup)

		resp := api.Post("/api/mixpanel/profile", map[string]any{"email": "  " + email + " "})

		assert.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, []string{email}, lookup.emails)

		body := decode[map[string]any](t, resp.Body.Bytes())
		assert.Equal(t, true, body["success"])

		p, ok := body["profile"].(map[string]any)
		assert.True(t, ok)
		assert.Equal(t, "Ada", p["firstName"])
		assert.InDelta(t, 12.0, p["sessionCount"], 0)
		assert.Contains(t, p, "age")
		assert.Nil(t, p["age"])
	})

	for name, payload := range map[string]any{
		"missing email": map[string]any{},
		"blank email":   map[string]any{"email": "   "},
	} {
		t.Run(name+" is rejected before the lookup", func(t *testing.T) {
			lookup := &stubLookup{}
			api := profileAPI(t, lookup)

			resp := api.Post("/api/mixpanel/profile", payload)

			assert.Equal(t, http.StatusBadRequest, resp.Code)
			assert.Equal(t, "Email is required", decode[errorBody](t, resp.Body.Bytes()).Error)
			assert.Empty(t, lookup.emails)
		})
	}

	cases := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"not found", profile.ErrNotFound, http.StatusNotFound, "User not found. Please check your email and try again."},
		{"not configured", profile.ErrNotConfigured, http.StatusInternalServerError, "Server configuration error"},
		{"timeout", profile.ErrTimeout, http.StatusGatewayTimeout, "Profile lookup timed out. Please try again."},
		{"breaker open", profile.ErrUnavailable, http.StatusServiceUnavailable, "Profile service temporarily unavailable"},
		{
			"upstream status",
			fmt.Errorf("query: %w", &profile.UpstreamError{Status: http.StatusForbidden}),
			http.StatusForbidden,
			"Failed to fetch user profile",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			api := profileAPI(t, &stubLookup{err: tc.err})

			resp := api.Post("/api/mixpanel/profile", map[string]any{"email": gofakeit.Email()})

			assert.Equal(t, tc.status, resp.Code)

			body := decode[errorBody](t, resp.Body.Bytes())
			assert.Equal(t, tc.message, body.Error)
			assert.Empty(t, body.Details)
		})
	}

	t.Run("unexpected errors carry details", func(t *testing.T) {
		api := profileAPI(t, &stubLookup{err: errors.New("decode people: unexpected EOF")})

		resp := api.Post("/api/mixpanel/profile", map[string]any{"email": gofakeit.Email()})

		assert.Equal(t, http.StatusInternalServerError, resp.Code)

		body := decode[errorBody](t, resp.Body.Bytes())
		assert.Equal(t, "Failed to fetch user profile", body.Error)
		assert.Equal(t, "decode people: unexpected EOF", body.Details)
	})

	t.Run("sixth request in a minute is limited", func(t *testing.T) {
		lookup := &stubLookup{err: profile.ErrNotFound}
		api := newTestAPI(t)
		api.UseMiddleware(middleware.PolicyRateLimiter(
			api,
			ratelimit.NewPolicyLimiter(store.NewRateLimitMemoryStore(), ratelimit.DefaultPolicy()),
			metrics.New(prometheus.NewRegistry()),
			zap.NewNop(),
		))
		handlers.RegisterProfileRoutes(api, handlers.NewProfileHandler(lookup, zap.NewNop()))

		for range 5 {
			resp := api.Post("/api/mixpanel/profile", map[string]any{"email": "golfer@example.com"})
			assert.Equal(t, http.StatusNotFound, resp.Code)
		}

		resp := api.Post("/api/mixpanel/profile", map[string]any{"email": "golfer@example.com"})

		assert.Equal(t, http.StatusTooManyRequests, resp.Code)
		assert.Equal(t, "Too many requests. Please try again later.", decode[errorBody](t, resp.Body.Bytes()).Error)
		assert.NotEmpty(t, resp.Header().Get("Retry-After"))
		assert.Len(t, lookup.emails, 5)
	})
}
