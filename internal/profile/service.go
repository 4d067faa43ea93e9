package profile

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/serroba/launch-site-go/internal/metrics"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// DefaultTimeout bounds a single upstream query.
const DefaultTimeout = 10 * time.Second

// Querier runs people queries against the analytics store.
type Querier interface {
	// Configured reports whether credentials for querying are present.
	Configured() bool
	// QueryPeopleByEmail returns the property maps of every exactly matching record.
	QueryPeopleByEmail(ctx context.Context, email string) ([]map[string]any, error)
}

// Lookup finds a profile by email.
type Lookup interface {
	FindByEmail(ctx context.Context, email string) (*Profile, error)
}

// ConfiguredLookup is a Lookup that can tell whether it has credentials.
type ConfiguredLookup interface {
	Lookup
	Configured() bool
}

// Service resolves profiles through a Querier guarded by a timeout and a
// circuit breaker.
type Service struct {
	querier Querier
	timeout time.Duration
	breaker *gobreaker.CircuitBreaker
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithTimeout sets the per-query timeout. Non-positive values keep the default.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithBreaker replaces the circuit breaker settings. Name and IsSuccessful
// are filled in when unset.
func WithBreaker(st gobreaker.Settings) Option {
	return func(s *Service) { s.breaker = newBreaker(st, s.logger) }
}

func NewService(querier Querier, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		querier: querier,
		timeout: DefaultTimeout,
		logger:  logger,
	}
	s.breaker = newBreaker(gobreaker.Settings{}, logger)

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func newBreaker(st gobreaker.Settings, logger *zap.Logger) *gobreaker.CircuitBreaker {
	if st.Name == "" {
		st.Name = "profile-lookup"
	}

	if st.Timeout == 0 {
		st.Timeout = 30 * time.Second
	}

	if st.ReadyToTrip == nil {
		st.ReadyToTrip = func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		}
	}

	if st.IsSuccessful == nil {
		st.IsSuccessful = upstreamHealthy
	}

	if st.OnStateChange == nil {
		st.OnStateChange = func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		}
	}

	return gobreaker.NewCircuitBreaker(st)
}

// upstreamHealthy decides which outcomes count against the breaker: client
// errors and caller cancellations say nothing about upstream health.
func upstreamHealthy(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}

	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		return upstream.Status < http.StatusInternalServerError && upstream.Status != http.StatusTooManyRequests
	}

	return false
}

// Configured reports whether the querier has credentials.
func (s *Service) Configured() bool {
	return s.querier.Configured()
}

// FindByEmail returns the first profile matching email.
func (s *Service) FindByEmail(ctx context.Context, email string) (*Profile, error) {
	if !s.querier.Configured() {
		s.metrics.ProfileLookup("not_configured")

		return nil, ErrNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	res, err := s.breaker.Execute(func() (any, error) {
		return s.querier.QueryPeopleByEmail(ctx, email)
	})
	s.metrics.ObserveUpstream(time.Since(start))

	if err != nil {
		err = classify(ctx, err)
		s.metrics.ProfileLookup(resultLabel(err))

		return nil, err
	}

	records, _ := res.([]map[string]any)
	if len(records) == 0 {
		s.metrics.ProfileLookup("not_found")

		return nil, ErrNotFound
	}

	p := FromProperties(records[0], email)
	s.metrics.ProfileLookup("found")

	return &p, nil
}

func classify(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	default:
		return err
	}
}

func resultLabel(err error) string {
	var upstream *UpstreamError

	switch {
	case errors.Is(err, ErrUnavailable):
		return "unavailable"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.As(err, &upstream):
		return "upstream_error"
	default:
		return "error"
	}
}

var _ ConfiguredLookup = (*Service)(nil)
