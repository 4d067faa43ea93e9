package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/serroba/launch-site-go/internal/apierror"
	"github.com/serroba/launch-site-go/internal/profile"
	"github.com/serroba/launch-site-go/internal/requestmeta"
	"go.uber.org/zap"
)

const (
	msgEmailRequired      = "Email is required"
	msgServerConfig       = "Server configuration error"
	msgLookupTimeout      = "Profile lookup timed out. Please try again."
	msgLookupFailed       = "Failed to fetch user profile"
	msgUserNotFound       = "User not found. Please check your email and try again."
	msgServiceUnavailable = "Profile service temporarily unavailable"
)

// ProfileHandler serves profile lookups.
type ProfileHandler struct {
	lookup profile.Lookup
	logger *zap.Logger
}

// NewProfileHandler creates a new profile handler.
func NewProfileHandler(lookup profile.Lookup, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{lookup: lookup, logger: logger}
}

// Lookup finds the analytics profile for the posted email.
func (h *ProfileHandler) Lookup(ctx context.Context, req *ProfileLookupRequest) (*ProfileLookupResponse, error) {
	var email string
	if req.Body != nil {
		email = strings.TrimSpace(req.Body.Email)
	}

	if email == "" {
		return nil, apierror.BadRequest(msgEmailRequired)
	}

	p, err := h.lookup.FindByEmail(ctx, email)
	if err != nil {
		return nil, h.lookupError(ctx, err)
	}

	resp := &ProfileLookupResponse{}
	resp.Body.Success = true
	resp.Body.Profile = p

	return resp, nil
}

func (h *ProfileHandler) lookupError(ctx context.Context, err error) error {
	logger := h.logger.With(zap.String("requestId", requestmeta.FromContext(ctx).RequestID))

	var upstream *profile.UpstreamError

	switch {
	case errors.Is(err, profile.ErrNotFound):
		return apierror.NotFound(msgUserNotFound)
	case errors.Is(err, profile.ErrNotConfigured):
		logger.Error("profile lookup credentials are not configured")

		return apierror.Internal(msgServerConfig)
	case errors.Is(err, profile.ErrTimeout):
		logger.Warn("profile lookup timed out", zap.Error(err))

		return apierror.New(http.StatusGatewayTimeout, msgLookupTimeout)
	case errors.Is(err, profile.ErrUnavailable):
		logger.Warn("profile lookup rejected by circuit breaker")

		return apierror.New(http.StatusServiceUnavailable, msgServiceUnavailable)
	case errors.As(err, &upstream):
		logger.Warn("profile query failed", zap.Int("status", upstream.Status))

		return apierror.New(upstream.Status, msgLookupFailed)
	default:
		logger.Error("profile lookup failed", zap.Error(err))

		return apierror.Internal(msgLookupFailed).WithDetails(err.Error())
	}
}
