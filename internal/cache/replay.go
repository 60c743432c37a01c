// replay.go provides a Valkey-backed single-use marker for step-up tokens.
// A step-up token stays reusable while code entry fails, but once a
// verification succeeds its jti is recorded here so the same token cannot
// complete the exchange again within its lifetime.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// replayKeyPrefix namespaces consumed step-up token IDs in Valkey.
	replayKeyPrefix = "stepup:used:"

	// DefaultReplayTTL must outlive the step-up token lifetime so a
	// consumed marker never expires before the token it blocks.
	DefaultReplayTTL = 10 * time.Minute
)

// ReplayGuard records consumed step-up token IDs in Valkey.
type ReplayGuard struct {
	client *redis.Client
	ttl    time.Duration
}

// NewReplayGuard creates a replay guard backed by the given Valkey client.
func NewReplayGuard(client *redis.Client, ttl time.Duration) *ReplayGuard {
	if ttl == 0 {
		ttl = DefaultReplayTTL
	}
	return &ReplayGuard{client: client, ttl: ttl}
}

// Consume marks the token ID as used. Returns true if this call was the
// first to consume it, false if it had already been used. SET NX makes the
// check-and-mark atomic under concurrent verification attempts.
func (g *ReplayGuard) Consume(ctx context.Context, tokenID string) (bool, error) {
	ok, err := g.client.SetNX(ctx, replayKeyPrefix+tokenID, 1, g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("replay guard consume: %w", err)
	}
	return ok, nil
}
