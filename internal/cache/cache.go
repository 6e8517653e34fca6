// Package cache provides an optional Redis-backed cache for ranked
// recommendation lists. Keys embed the snapshot's profile version, so a
// rebuild implicitly invalidates every cached result from the previous
// generation.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/amr-mohamed13/SmartLivingAdvisor/internal/ranking"
)

// DefaultTTL bounds how long a cached recommendation list lives even
// within one snapshot generation.
const DefaultTTL = 5 * time.Minute

// RecommendationCache caches ranked recommendation lists in Redis. A nil
// *RecommendationCache is a valid no-op cache, so callers need no
// conditional wiring when Redis is not configured.
type RecommendationCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// New creates a recommendation cache over the given Redis client.
func New(client *redis.Client, ttl time.Duration, logger *slog.Logger) *RecommendationCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RecommendationCache{client: client, ttl: ttl, logger: logger}
}

// Key builds a cache key scoped to one profile generation and query shape.
func Key(profileVersion, operation, query string) string {
	return fmt.Sprintf("rec:%s:%s:%s", profileVersion, operation, query)
}

// Get returns the cached entries for key, with a hit flag. Redis errors
// degrade to a miss; the cache never takes the serving path down.
func (c *RecommendationCache) Get(ctx context.Context, key string) ([]ranking.Entry, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("recommendation cache read failed", "key", key, "error", err)
		}
		return nil, false
	}
	var entries []ranking.Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		c.logger.Warn("recommendation cache entry corrupt, dropping", "key", key, "error", err)
		c.client.Del(ctx, key)
		return nil, false
	}
	return entries, true
}

// Set stores entries under key with the cache TTL. Failures are logged
// and swallowed.
func (c *RecommendationCache) Set(ctx context.Context, key string, entries []ranking.Entry) {
	if c == nil || c.client == nil {
		return
	}
	data, err := json.Marshal(entries)
	if err != nil {
		c.logger.Warn("recommendation cache encode failed", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("recommendation cache write failed", "key", key, "error", err)
	}
}
