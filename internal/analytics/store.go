package analytics

import (
	"context"
	"errors"
	"fmt"

	"github.com/serroba/launch-site-go/internal/messaging"
)

// Store persists or forwards tracked events.
type Store interface {
	SaveTrackedEvent(ctx context.Context, event *TrackedEvent) error
}

// NewHandler delivers each consumed event to every store. All stores are
// attempted; the message is nacked if any of them fails.
func NewHandler(stores ...Store) messaging.Handler[TrackedEvent] {
	return func(ctx context.Context, event *TrackedEvent) error {
		var errs []error

		for _, s := range stores {
			if err := s.SaveTrackedEvent(ctx, event); err != nil {
				errs = append(errs, fmt.Errorf("%T: %w", s, err))
			}
		}

		return errors.Join(errs...)
	}
}
