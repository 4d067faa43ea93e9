package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/launch-site-go/internal/profile"
	"go.uber.org/zap"
)

// RedisProfileCache wraps a profile lookup with a Redis read-through cache.
// Only found profiles are cached; errors always go to the wrapped lookup.
// The cache is bypassed while the lookup is not configured.
type RedisProfileCache struct {
	lookup profile.ConfiguredLookup
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisProfileCache creates a new Redis-cached profile lookup decorator.
func NewRedisProfileCache(
	lookup profile.ConfiguredLookup, client redis.UniversalClient, ttl time.Duration, logger *zap.Logger,
) *RedisProfileCache {
	return &RedisProfileCache{
		lookup: lookup,
		client: client,
		prefix: "profile:",
		ttl:    ttl,
		logger: logger,
	}
}

// FindByEmail returns the cached profile or fetches and caches it.
func (r *RedisProfileCache) FindByEmail(ctx context.Context, email string) (*profile.Profile, error) {
	if !r.lookup.Configured() {
		return r.lookup.FindByEmail(ctx, email)
	}

	key := r.key(email)

	if p, ok := r.get(ctx, key); ok {
		return p, nil
	}

	p, err := r.lookup.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	r.set(ctx, key, p)

	return p, nil
}

// key hashes the email exactly as queried upstream, where matching is
// case-sensitive. Addresses never appear in Redis.
func (r *RedisProfileCache) key(email string) string {
	sum := sha256.Sum256([]byte(email))

	return r.prefix + hex.EncodeToString(sum[:])
}

func (r *RedisProfileCache) get(ctx context.Context, key string) (*profile.Profile, bool) {
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn("profile cache read failed", zap.Error(err))
		}

		return nil, false
	}

	var p profile.Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, false
	}

	return &p, true
}

func (r *RedisProfileCache) set(ctx context.Context, key string, p *profile.Profile) {
	raw, err := json.Marshal(p)
	if err != nil {
		return
	}

	if err := r.client.Set(ctx, key, raw, r.ttl).Err(); err != nil {
		r.logger.Warn("profile cache write failed", zap.Error(err))
	}
}

var _ profile.Lookup = (*RedisProfileCache)(nil)
