// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the service collectors. A nil *Metrics records nothing.
type Metrics struct {
	profileLookups   *prometheus.CounterVec
	upstreamDuration prometheus.Histogram
	rateLimited      *prometheus.CounterVec
	trackedEvents    *prometheus.CounterVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		profileLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "profile_lookups_total",
			Help: "Profile lookup requests by outcome",
		}, []string{"result"}),
		upstreamDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "profile_upstream_duration_seconds",
			Help:    "Latency of the analytics store profile query",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		}),
		rateLimited: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ratelimit_rejections_total",
			Help: "Requests rejected by the rate limiter",
		}, []string{"scope"}),
		trackedEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tracked_events_total",
			Help: "Analytics events by dispatch outcome",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) ProfileLookup(result string) {
	if m == nil {
		return
	}

	m.profileLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveUpstream(d time.Duration) {
	if m == nil {
		return
	}

	m.upstreamDuration.Observe(d.Seconds())
}

func (m *Metrics) RateLimited(scope string) {
	if m == nil {
		return
	}

	m.rateLimited.WithLabelValues(scope).Inc()
}

// TrackedEvent counts an event as sent, dropped (tracking disabled) or failed.
func (m *Metrics) TrackedEvent(outcome string) {
	if m == nil {
		return
	}

	m.trackedEvents.WithLabelValues(outcome).Inc()
}
