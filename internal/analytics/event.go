package analytics

import "time"

// TopicEventTracked carries every tracked interaction from the web tier to the
// ingestion consumer.
const TopicEventTracked = "events.tracked"

// TrackedEvent is one named user interaction with free-form properties.
type TrackedEvent struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	DistinctID string         `json:"distinctId,omitempty"`
	Properties map[string]any `json:"properties,omitempty"`
	OccurredAt time.Time      `json:"occurredAt"`
	ClientIP   string         `json:"clientIp,omitempty"`
	UserAgent  string         `json:"userAgent,omitempty"`
}
