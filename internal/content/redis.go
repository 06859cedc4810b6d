package content

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	redis "github.com/redis/go-redis/v9"

	"matchplay/internal/logger"
	"matchplay/internal/metrics"
)

// DefaultCacheTTL is how long a fetched pair set stays cached.
const DefaultCacheTTL = 10 * time.Minute

// RedisCache wraps a Source with a TTL cache. Redis failures fall through
// to the wrapped source.
type RedisCache struct {
	client *redis.Client
	src    Source
	ttl    time.Duration
}

// NewRedisClient connects and pings. A failed ping returns nil so callers run uncached.
func NewRedisClient(addr, password string, db int) *redis.Client {
	if addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unavailable, content cache disabled", "addr", addr, "err", err)
		_ = client.Close()
		return nil
	}
	return client
}

// NewRedisCache returns src itself when client is nil.
func NewRedisCache(client *redis.Client, src Source, ttl time.Duration) Source {
	if client == nil {
		return src
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &RedisCache{client: client, src: src, ttl: ttl}
}

func cacheKey(gameID string) string {
	return "content:pairs:" + gameID
}

func (c *RedisCache) Pairs(ctx context.Context, gameID string) ([]MatchPair, error) {
	key := cacheKey(gameID)
	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var pairs []MatchPair
		if jerr := json.Unmarshal(raw, &pairs); jerr == nil && ValidatePairs(pairs) == nil {
			metrics.ContentCache.WithLabelValues("hit").Inc()
			return pairs, nil
		}
		metrics.ContentCache.WithLabelValues("corrupt").Inc()
	case errors.Is(err, redis.Nil):
		metrics.ContentCache.WithLabelValues("miss").Inc()
	default:
		metrics.ContentCache.WithLabelValues("error").Inc()
		logger.Debug("content cache read failed", "key", key, "err", err)
	}

	pairs, err := c.src.Pairs(ctx, gameID)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, pairs)
	return pairs, nil
}

// store caches only playable sets, so a bad upstream response is refetched
// next time instead of being served for the whole TTL.
func (c *RedisCache) store(ctx context.Context, key string, pairs []MatchPair) {
	if err := ValidatePairs(pairs); err != nil {
		metrics.ContentCache.WithLabelValues("invalid").Inc()
		logger.Debug("not caching invalid content", "key", key, "err", err)
		return
	}
	data, err := json.Marshal(pairs)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		logger.Debug("content cache write failed", "key", key, "err", err)
	}
}
