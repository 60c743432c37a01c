// stats.go provides a short-lived per-user cache for dashboard aggregates
// (job stats, monthly funnel) so repeated dashboard loads skip the
// aggregation queries. Entries are invalidated whenever the user's jobs
// change.
package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// statsKeyPrefix namespaces cached aggregates in Valkey.
	statsKeyPrefix = "stats:"

	// DefaultStatsTTL is how long an aggregate stays cached.
	DefaultStatsTTL = 1 * time.Minute
)

// StatsCache caches serialized dashboard aggregates per user.
type StatsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStatsCache creates a stats cache backed by the given Valkey client.
func NewStatsCache(client *redis.Client, ttl time.Duration) *StatsCache {
	if ttl == 0 {
		ttl = DefaultStatsTTL
	}
	return &StatsCache{client: client, ttl: ttl}
}

func statsKey(userID uuid.UUID, name string) string {
	return statsKeyPrefix + userID.String() + ":" + name
}

// Get retrieves a cached aggregate. Returns false on miss or error; cache
// problems degrade to a recompute, never to a failed request.
func (c *StatsCache) Get(ctx context.Context, userID uuid.UUID, name string) ([]byte, bool) {
	val, err := c.client.Get(ctx, statsKey(userID, name)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("stats cache get error", "user_id", userID, "name", name, "error", err)
		return nil, false
	}
	return val, true
}

// Set stores a serialized aggregate with the configured TTL.
func (c *StatsCache) Set(ctx context.Context, userID uuid.UUID, name string, payload []byte) {
	if err := c.client.Set(ctx, statsKey(userID, name), payload, c.ttl).Err(); err != nil {
		slog.Warn("stats cache set error", "user_id", userID, "name", name, "error", err)
	}
}

// Invalidate drops all cached aggregates for one user. Called after any
// job write.
func (c *StatsCache) Invalidate(ctx context.Context, userID uuid.UUID) {
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, statsKeyPrefix+userID.String()+":*", 100).Result()
		if err != nil {
			slog.Warn("stats cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("stats cache delete error", "error", err)
			}
		}
		cursor = next
		if cursor == 0 {
			return
		}
	}
}
