package profile

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means no people record matches the email.
	ErrNotFound = errors.New("profile not found")
	// ErrNotConfigured means the query credentials are missing.
	ErrNotConfigured = errors.New("profile lookup not configured")
	// ErrTimeout means the upstream did not answer within the lookup timeout.
	ErrTimeout = errors.New("profile lookup timed out")
	// ErrUnavailable means the circuit breaker is rejecting calls.
	ErrUnavailable = errors.New("profile service unavailable")
)

// UpstreamError reports a non-2xx answer from the people store.
type UpstreamError struct {
	Status int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream returned status %d", e.Status)
}
