package matching

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
)

// ScoreCache keeps a user's scored discovery list in Redis for a short TTL.
// Cache misses and Redis outages both fall through to a fresh computation,
// so the app runs fine without Redis at all.
type ScoreCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewScoreCache(client *redis.Client, ttl time.Duration) *ScoreCache {
	return &ScoreCache{client: client, ttl: ttl}
}

func discoverKey(userID string) string {
	return "matching:discover:" + userID
}

func (c *ScoreCache) Get(ctx context.Context, userID string) ([]*ScoredCandidate, bool) {
	payload, err := c.client.Get(ctx, discoverKey(userID)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		log.Printf("discover cache read failed for %s: %v", userID, err)
		return nil, false
	}

	var scored []*ScoredCandidate
	if err := json.Unmarshal(payload, &scored); err != nil {
		return nil, false
	}

	return scored, true
}

func (c *ScoreCache) Set(ctx context.Context, userID string, scored []*ScoredCandidate) {
	payload, err := json.Marshal(scored)
	if err != nil {
		return
	}

	if err := c.client.Set(ctx, discoverKey(userID), payload, c.ttl).Err(); err != nil {
		log.Printf("discover cache write failed for %s: %v", userID, err)
	}
}

// Invalidate drops the cached list after an action that shrinks the
// candidate pool (like, pass, profile edit).
func (c *ScoreCache) Invalidate(ctx context.Context, userID string) {
	if err := c.client.Del(ctx, discoverKey(userID)).Err(); err != nil {
		log.Printf("discover cache invalidation failed for %s: %v", userID, err)
	}
}
