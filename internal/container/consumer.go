package container

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/samber/do"
	"github.com/serroba/launch-site-go/internal/analytics"
	eventstore "github.com/serroba/launch-site-go/internal/analytics/store"
	"github.com/serroba/launch-site-go/internal/messaging"
	"github.com/serroba/launch-site-go/internal/mixpanel"
	"github.com/serroba/launch-site-go/internal/store"
	"go.uber.org/zap"
)

// ConsumerGroupName is the Redis stream consumer group of cmd/consumer.
const ConsumerGroupName = "analytics"

// EventStoresPackage provides the stores each tracked event is written to:
// the ingestion API when a token is set (log only otherwise), plus the
// Postgres archive when a database is configured.
func EventStoresPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) ([]analytics.Store, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		var stores []analytics.Store

		if opts.MixpanelToken != "" {
			stores = append(stores, do.MustInvoke[*mixpanel.Client](i))
		} else {
			logger.Warn("analytics token not configured, events are only logged")
			stores = append(stores, eventstore.NewNoop(logger))
		}

		if opts.DatabaseURL != "" {
			pg := store.NewPostgresEventStore(do.MustInvoke[*Postgres](i).Pool)

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := pg.EnsureSchema(ctx); err != nil {
				return nil, fmt.Errorf("event archive schema: %w", err)
			}

			stores = append(stores, pg)
		}

		return stores, nil
	})
}

// ConsumerGroupPackage provides *messaging.ConsumerGroup reading tracked events.
func ConsumerGroupPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		logger := do.MustInvoke[*zap.Logger](i)

		subscriber, err := redisstream.NewSubscriber(redisstream.SubscriberConfig{
			Client:        do.MustInvoke[*Redis](i).UniversalClient,
			Unmarshaller:  redisstream.DefaultMarshallerUnmarshaller{},
			ConsumerGroup: ConsumerGroupName,
		}, messaging.NewZapLogger(logger))
		if err != nil {
			return nil, fmt.Errorf("create subscriber: %w", err)
		}

		group := messaging.NewConsumerGroup(subscriber, logger)
		group.Add(messaging.NewConsumer(
			subscriber,
			analytics.TopicEventTracked,
			analytics.NewHandler(do.MustInvoke[[]analytics.Store](i)...),
			logger,
		))

		return group, nil
	})
}
