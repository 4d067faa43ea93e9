package store

import (
	"context"

	"github.com/serroba/launch-site-go/internal/analytics"
	"go.uber.org/zap"
)

// Noop is a no-op implementation of analytics.Store that logs events.
// It stands in for the ingestion API when no write token is configured.
type Noop struct {
	logger *zap.Logger
}

// NewNoop creates a new no-op analytics store.
func NewNoop(logger *zap.Logger) *Noop {
	return &Noop{logger: logger}
}

func (n *Noop) SaveTrackedEvent(_ context.Context, event *analytics.TrackedEvent) error {
	n.logger.Info("tracked event received",
		zap.String("id", event.ID),
		zap.String("name", event.Name),
		zap.String("distinctId", event.DistinctID),
		zap.Int("properties", len(event.Properties)),
		zap.Time("occurredAt", event.OccurredAt),
	)

	return nil
}
