package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/launch-site-go/internal/analytics"
)

const trackedEventsSchema = `
	CREATE TABLE IF NOT EXISTS tracked_events (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		distinct_id TEXT,
		properties  JSONB NOT NULL DEFAULT '{}'::jsonb,
		client_ip   TEXT,
		user_agent  TEXT,
		occurred_at TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS tracked_events_name_occurred_at_idx
		ON tracked_events (name, occurred_at);
`

// PostgresEventStore archives tracked events. It implements analytics.Store.
type PostgresEventStore struct {
	pool *pgxpool.Pool
}

// NewPostgresEventStore creates a new PostgreSQL-backed event archive.
func NewPostgresEventStore(pool *pgxpool.Pool) *PostgresEventStore {
	return &PostgresEventStore{pool: pool}
}

// EnsureSchema creates the tracked_events table when missing.
func (p *PostgresEventStore) EnsureSchema(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, trackedEventsSchema); err != nil {
		return fmt.Errorf("ensure tracked_events schema: %w", err)
	}

	return nil
}

// SaveTrackedEvent inserts the event. Redelivered events are ignored.
func (p *PostgresEventStore) SaveTrackedEvent(ctx context.Context, event *analytics.TrackedEvent) error {
	props := event.Properties
	if props == nil {
		props = map[string]any{}
	}

	raw, err := json.Marshal(props)
	if err != nil {
		return fmt.Errorf("encode properties: %w", err)
	}

	query := `
		INSERT INTO tracked_events (id, name, distinct_id, properties, client_ip, user_agent, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING
	`

	_, err = p.pool.Exec(ctx, query,
		event.ID,
		event.Name,
		nullableString(event.DistinctID),
		raw,
		nullableString(event.ClientIP),
		nullableString(event.UserAgent),
		event.OccurredAt,
	)

	return err
}

// GetTrackedEvent loads an archived event by id.
func (p *PostgresEventStore) GetTrackedEvent(ctx context.Context, id string) (*analytics.TrackedEvent, error) {
	query := `
		SELECT id, name, distinct_id, properties, client_ip, user_agent, occurred_at
		FROM tracked_events
		WHERE id = $1
	`

	var (
		event                           analytics.TrackedEvent
		distinctID, clientIP, userAgent *string
		raw                             []byte
	)

	err := p.pool.QueryRow(ctx, query, id).Scan(
		&event.ID,
		&event.Name,
		&distinctID,
		&raw,
		&clientIP,
		&userAgent,
		&event.OccurredAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEventNotFound
		}

		return nil, err
	}

	if err := json.Unmarshal(raw, &event.Properties); err != nil {
		return nil, fmt.Errorf("decode properties: %w", err)
	}

	event.DistinctID = deref(distinctID)
	event.ClientIP = deref(clientIP)
	event.UserAgent = deref(userAgent)

	return &event, nil
}

// ErrEventNotFound is returned when an archived event does not exist.
var ErrEventNotFound = errors.New("tracked event not found")

func nullableString(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}

var _ analytics.Store = (*PostgresEventStore)(nil)
