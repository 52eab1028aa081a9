package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/raaihank/grammar-sentinel/internal/grammar"
)

// ResultCache stores correction results in Redis. Entries are keyed by the
// rule catalog fingerprint, the band and the text, so a catalog reload never
// serves stale corrections. A nil *ResultCache is a valid, always-missing cache.
type ResultCache struct {
	client *redis.Client
	config *Config
	logger *zap.Logger
	hits   atomic.Int64
	misses atomic.Int64
}

// NewResultCache creates a new Redis-based result cache
func NewResultCache(config *Config, logger *zap.Logger) (*ResultCache, error) {
	opts, err := redis.ParseURL(config.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	opts.PoolSize = config.MaxConnections
	opts.MinIdleConns = config.MinIdleConns

	client := redis.NewClient(opts)

	cache := &ResultCache{
		client: client,
		config: config,
		logger: logger,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Result cache initialized successfully",
		zap.String("redis_url", maskRedisURL(config.RedisURL)),
		zap.Int("max_connections", config.MaxConnections),
		zap.Duration("default_ttl", config.DefaultTTL))

	return cache, nil
}

// Get looks up a cached result. Lookup failures are logged and reported as misses.
func (c *ResultCache) Get(ctx context.Context, fingerprint string, band grammar.Band, text string) (*grammar.Result, bool) {
	if c == nil {
		return nil, false
	}

	key := c.key(fingerprint, band, text)
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		c.misses.Add(1)
		c.logger.Debug("Cache miss", zap.String("key", key))
		return nil, false
	} else if err != nil {
		c.misses.Add(1)
		c.logger.Error("Cache lookup failed", zap.Error(err))
		return nil, false
	}

	var cached CachedResult
	if err := json.Unmarshal(data, &cached); err != nil || cached.Result == nil {
		c.misses.Add(1)
		c.logger.Error("Failed to unmarshal cached result", zap.Error(err))
		// Delete corrupted cache entry
		c.client.Del(ctx, key)
		return nil, false
	}

	c.hits.Add(1)
	c.logger.Debug("Cache hit", zap.String("key", key))
	return cached.Result, true
}

// Store caches a result for the given catalog fingerprint and band
func (c *ResultCache) Store(ctx context.Context, fingerprint string, band grammar.Band, result *grammar.Result) error {
	if c == nil {
		return nil
	}

	data, err := json.Marshal(CachedResult{
		Fingerprint: fingerprint,
		Result:      result,
		CachedAt:    time.Now(),
		TTL:         int64(c.config.DefaultTTL.Seconds()),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal result for caching: %w", err)
	}

	key := c.key(fingerprint, band, result.OriginalText)
	if err := c.client.Set(ctx, key, data, c.config.DefaultTTL).Err(); err != nil {
		c.logger.Error("Failed to cache result", zap.Error(err))
		return fmt.Errorf("failed to cache result: %w", err)
	}

	c.logger.Debug("Result cached", zap.String("key", key), zap.Int("score", result.Score))
	return nil
}

// GetStats returns cache performance statistics
func (c *ResultCache) GetStats(ctx context.Context) (*CacheStats, error) {
	if c == nil {
		return &CacheStats{}, nil
	}

	stats := &CacheStats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
	}
	if total := stats.Hits + stats.Misses; total > 0 {
		stats.HitRate = float64(stats.Hits) / float64(total) * 100
	}

	info, err := c.client.Info(ctx, "memory").Result()
	if err != nil {
		return stats, fmt.Errorf("failed to get Redis info: %w", err)
	}
	stats.MemoryUsage = parseUsedMemory(info)

	if keys, err := c.client.DBSize(ctx).Result(); err == nil {
		stats.TotalKeys = keys
	}

	return stats, nil
}

// Clear removes every cached result under the configured prefix
func (c *ResultCache) Clear(ctx context.Context) error {
	if c == nil {
		return nil
	}

	iter := c.client.Scan(ctx, 0, c.config.KeyPrefix+":result:*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan cache keys: %w", err)
	}

	const batchSize = 100
	for i := 0; i < len(keys); i += batchSize {
		end := min(i+batchSize, len(keys))
		if err := c.client.Del(ctx, keys[i:end]...).Err(); err != nil {
			return fmt.Errorf("failed to delete cache keys: %w", err)
		}
	}

	c.logger.Info("Cache cleared", zap.Int("deleted_keys", len(keys)))
	return nil
}

// Close closes the Redis connection
func (c *ResultCache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

func (c *ResultCache) key(fingerprint string, band grammar.Band, text string) string {
	return Key(c.config.KeyPrefix, fingerprint, band, text)
}

// Key builds the cache key for a text checked with a catalog at a band
func Key(prefix, fingerprint string, band grammar.Band, text string) string {
	hasher := sha256.New()
	hasher.Write([]byte(fingerprint))
	hasher.Write([]byte{0})
	hasher.Write([]byte(band))
	hasher.Write([]byte{0})
	hasher.Write([]byte(text))
	return fmt.Sprintf("%s:result:%s", prefix, hex.EncodeToString(hasher.Sum(nil))[:32])
}

func parseUsedMemory(info string) int64 {
	for _, line := range strings.Split(info, "\r\n") {
		if mem, ok := strings.CutPrefix(line, "used_memory:"); ok {
			if n, err := strconv.ParseInt(mem, 10, 64); err == nil {
				return n
			}
		}
	}
	return 0
}

// maskRedisURL masks the password in a Redis URL for logging
func maskRedisURL(url string) string {
	at := strings.LastIndex(url, "@")
	if at < 0 {
		return url
	}
	userInfo := url[:at]
	colon := strings.LastIndex(userInfo, ":")
	if colon < 0 || colon <= strings.Index(userInfo, "//") {
		return url
	}
	return userInfo[:colon+1] + "***" + url[at:]
}
