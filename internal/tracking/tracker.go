// Package tracking dispatches analytics events and hosts the per-page state
// machines (section views, scroll milestones, debounced search) that decide
// when an event is worth sending.
package tracking

import (
	"context"
	"fmt"
	"maps"
	"time"

	"github.com/google/uuid"
	"github.com/serroba/launch-site-go/internal/analytics"
	"github.com/serroba/launch-site-go/internal/metrics"
	"github.com/serroba/launch-site-go/internal/requestmeta"
	"go.uber.org/zap"
)

// DefaultSendTimeout bounds a single sink call.
const DefaultSendTimeout = 5 * time.Second

// Properties is the free-form property bag attached to an event.
type Properties map[string]any

// Sink receives events from the tracker.
type Sink interface {
	Send(ctx context.Context, event *analytics.TrackedEvent) error
}

// SinkFunc adapts a function to Sink. A messaging.Publish func converts directly.
type SinkFunc func(ctx context.Context, event *analytics.TrackedEvent) error

func (f SinkFunc) Send(ctx context.Context, event *analytics.TrackedEvent) error {
	return f(ctx, event)
}

// Tracker forwards events to a sink when an analytics token is configured.
// Track never fails from the caller's point of view.
type Tracker struct {
	token   string
	sink    Sink
	logger  *zap.Logger
	metrics *metrics.Metrics
	newID   func() string
	now     func() time.Time
	timeout time.Duration
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithMetrics counts dispatch outcomes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(t *Tracker) { t.metrics = m }
}

// WithIDGenerator overrides event id generation.
func WithIDGenerator(newID func() string) Option {
	return func(t *Tracker) { t.newID = newID }
}

// WithClock overrides the event timestamp source.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithSendTimeout bounds each sink call. Non-positive values keep the default.
func WithSendTimeout(d time.Duration) Option {
	return func(t *Tracker) {
		if d > 0 {
			t.timeout = d
		}
	}
}

// NewTracker creates a tracker. An empty token disables dispatch entirely.
func NewTracker(token string, sink Sink, logger *zap.Logger, opts ...Option) *Tracker {
	t := &Tracker{
		token:   token,
		sink:    sink,
		logger:  logger,
		newID:   uuid.NewString,
		now:     time.Now,
		timeout: DefaultSendTimeout,
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Enabled reports whether events are forwarded.
func (t *Tracker) Enabled() bool {
	return t != nil && t.token != "" && t.sink != nil
}

// Track sends one event. Without a token it only logs; sink errors and panics
// are logged and swallowed.
func (t *Tracker) Track(ctx context.Context, name string, props Properties) {
	if !t.Enabled() {
		if t != nil {
			t.logger.Debug("analytics token not configured", zap.String("event", name))
			t.metrics.TrackedEvent("disabled")
		}

		return
	}

	if name == "" {
		t.logger.Debug("dropping event without a name")
		t.metrics.TrackedEvent("dropped")

		return
	}

	defer func() {
		if r := recover(); r != nil {
			t.logger.Error("analytics sink panicked",
				zap.String("event", name),
				zap.String("panic", fmt.Sprint(r)),
			)
			t.metrics.TrackedEvent("failed")
		}
	}()

	event := t.build(ctx, name, props)

	sendCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	if err := t.sink.Send(sendCtx, event); err != nil {
		t.logger.Warn("failed to track event",
			zap.String("event", name),
			zap.String("requestId", requestmeta.FromContext(ctx).RequestID),
			zap.Error(err),
		)
		t.metrics.TrackedEvent("failed")

		return
	}

	t.metrics.TrackedEvent("sent")
}

func (t *Tracker) build(ctx context.Context, name string, props Properties) *analytics.TrackedEvent {
	merged := make(map[string]any, len(props)+4)
	maps.Copy(merged, superProperties(ctx))
	maps.Copy(merged, props)

	distinctID, _ := merged["distinct_id"].(string)
	meta := requestmeta.FromContext(ctx)

	return &analytics.TrackedEvent{
		ID:         t.newID(),
		Name:       name,
		DistinctID: distinctID,
		Properties: merged,
		OccurredAt: t.now().UTC(),
		ClientIP:   meta.ClientIP,
		UserAgent:  meta.UserAgent,
	}
}

type superPropsKey struct{}

// WithProperties returns a context whose events all carry props in addition
// to their own. Event properties win on conflicting keys; nested calls merge.
func WithProperties(ctx context.Context, props Properties) context.Context {
	merged := make(Properties, len(props))
	maps.Copy(merged, superProperties(ctx))
	maps.Copy(merged, props)

	return context.WithValue(ctx, superPropsKey{}, merged)
}

func superProperties(ctx context.Context) Properties {
	props, _ := ctx.Value(superPropsKey{}).(Properties)

	return props
}
