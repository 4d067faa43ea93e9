package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/launch-site-go/internal/ratelimit"
)

// takeScript is the fixed-window check-and-increment. A key's PTTL elapsing is
// the window reset; a full window returns without incrementing.
var takeScript = redis.NewScript(`
local count = tonumber(redis.call("GET", KEYS[1]) or "0")
if count >= tonumber(ARGV[2]) then
	return {0, count, redis.call("PTTL", KEYS[1])}
end
count = redis.call("INCR", KEYS[1])
if count == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {1, count, redis.call("PTTL", KEYS[1])}
`)

// refundScript decrements a live window without touching its expiry.
var refundScript = redis.NewScript(`
local count = tonumber(redis.call("GET", KEYS[1]) or "0")
if count > 0 then
	return redis.call("DECR", KEYS[1])
end
return 0
`)

// RateLimitRedisStore is a Redis implementation of ratelimit.Store that shares
// counters between server replicas.
type RateLimitRedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRateLimitRedisStore creates a new Redis-backed rate limit store.
func NewRateLimitRedisStore(client redis.UniversalClient) *RateLimitRedisStore {
	return &RateLimitRedisStore{
		client: client,
		prefix: "ratelimit:",
	}
}

func (r *RateLimitRedisStore) Take(ctx context.Context, key string, limit ratelimit.LimitConfig) (ratelimit.Result, error) {
	vals, err := takeScript.Run(ctx, r.client, []string{r.prefix + key},
		limit.Window.Milliseconds(), limit.Max).Int64Slice()
	if err != nil {
		return ratelimit.Result{}, fmt.Errorf("rate limit script: %w", err)
	}

	if len(vals) != 3 {
		return ratelimit.Result{}, fmt.Errorf("rate limit script: unexpected reply length %d", len(vals))
	}

	ttl := time.Duration(vals[2]) * time.Millisecond
	if ttl < 0 {
		ttl = limit.Window
	}

	return ratelimit.Result{
		Allowed: vals[0] == 1,
		Count:   vals[1],
		Max:     limit.Max,
		ResetAt: time.Now().Add(ttl),
	}, nil
}

func (r *RateLimitRedisStore) Refund(ctx context.Context, key string, _ ratelimit.LimitConfig) error {
	if err := refundScript.Run(ctx, r.client, []string{r.prefix + key}).Err(); err != nil {
		return fmt.Errorf("rate limit refund: %w", err)
	}

	return nil
}

var _ ratelimit.Store = (*RateLimitRedisStore)(nil)
