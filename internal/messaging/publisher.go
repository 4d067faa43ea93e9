package messaging

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/serroba/launch-site-go/internal/requestmeta"
)

// MetadataRequestID is the message metadata key carrying the originating request id.
const MetadataRequestID = "request_id"

// Publish sends a typed event to a fixed topic.
type Publish[T any] func(ctx context.Context, event *T) error

// NewPublishFunc creates a typed publish function for a specific topic.
// The request id found in ctx, if any, travels with the message.
func NewPublishFunc[T any](publisher message.Publisher, topic string) Publish[T] {
	return func(ctx context.Context, event *T) error {
		payload, err := json.Marshal(event)
		if err != nil {
			return err
		}

		msg := message.NewMessage(watermill.NewUUID(), payload)
		msg.SetContext(ctx)

		if id := requestmeta.FromContext(ctx).RequestID; id != "" {
			msg.Metadata.Set(MetadataRequestID, id)
		}

		return publisher.Publish(topic, msg)
	}
}

// PublisherGroup owns the publisher shared by every Publish func.
type PublisherGroup struct {
	publisher message.Publisher
}

// NewPublisherGroup creates a new publisher group.
func NewPublisherGroup(publisher message.Publisher) *PublisherGroup {
	return &PublisherGroup{publisher: publisher}
}

// Publisher returns the underlying message publisher.
func (g *PublisherGroup) Publisher() message.Publisher {
	return g.publisher
}

// Shutdown closes the underlying publisher.
func (g *PublisherGroup) Shutdown() error {
	return g.publisher.Close()
}
