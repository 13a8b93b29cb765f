package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/storefront/backend/internal/application/workcontext"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const defaultScanBatchSize = 100

// RedisVerdictCache is a Redis-backed cache for computed work context
// verdicts. Suitable for distributed deployments where multiple instances
// need to share cached state. Values are stored JSON-encoded; concurrent
// in-process computations for the same key are collapsed via singleflight.
type RedisVerdictCache struct {
	client *redis.Client
	group  singleflight.Group
	logger *zap.Logger
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisVerdictCache creates a new Redis-backed verdict cache
func NewRedisVerdictCache(cfg RedisConfig, logger *zap.Logger) (*RedisVerdictCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisVerdictCache{client: client, logger: logger}, nil
}

// NewRedisVerdictCacheWithClient creates a cache with an existing Redis client
func NewRedisVerdictCacheWithClient(client *redis.Client, logger *zap.Logger) *RedisVerdictCache {
	return &RedisVerdictCache{client: client, logger: logger}
}

// GetOrCompute returns the cached value for key, computing and storing it
// on a miss. A cache backend failure degrades to computing directly.
func (c *RedisVerdictCache) GetOrCompute(ctx context.Context, key string, ttl time.Duration, compute func(ctx context.Context) (any, error)) (any, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err == nil {
		var decoded any
		dec := json.NewDecoder(strings.NewReader(val))
		dec.UseNumber()
		if derr := dec.Decode(&decoded); derr == nil {
			return decoded, nil
		}
		c.logger.Warn("Discarding undecodable cache entry", zap.String("key", key))
	} else if err != redis.Nil {
		c.logger.Warn("Cache read failed, computing directly",
			zap.String("key", key),
			zap.Error(err))
		return compute(ctx)
	}

	result, err, _ := c.group.Do(key, func() (any, error) {
		computed, cerr := compute(ctx)
		if cerr != nil {
			return nil, cerr
		}

		encoded, merr := json.Marshal(computed)
		if merr != nil {
			c.logger.Warn("Failed to encode cache value", zap.String("key", key), zap.Error(merr))
			return computed, nil
		}
		if serr := c.client.Set(ctx, key, encoded, ttl).Err(); serr != nil {
			c.logger.Warn("Cache write failed", zap.String("key", key), zap.Error(serr))
		}
		return computed, nil
	})
	return result, err
}

// InvalidateByPattern deletes all keys matching the glob pattern using
// cursor-based SCAN to avoid blocking Redis on large keyspaces.
func (c *RedisVerdictCache) InvalidateByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	var deletedCount int64

	for {
		var keys []string
		var err error
		keys, cursor, err = c.client.Scan(ctx, cursor, pattern, defaultScanBatchSize).Result()
		if err != nil {
			c.logger.Error("Failed to scan cache keys", zap.Error(err))
			return fmt.Errorf("failed to scan cache keys: %w", err)
		}

		if len(keys) > 0 {
			deleted, err := c.client.Del(ctx, keys...).Result()
			if err != nil {
				c.logger.Error("Failed to delete cache keys", zap.Error(err))
				return fmt.Errorf("failed to delete cache keys: %w", err)
			}
			deletedCount += deleted
		}

		if cursor == 0 {
			break
		}
	}

	c.logger.Debug("Invalidated cache entries",
		zap.String("pattern", pattern),
		zap.Int64("deleted", deletedCount))
	return nil
}

// Close closes the Redis client
func (c *RedisVerdictCache) Close() error {
	return c.client.Close()
}

var _ workcontext.ContextCache = (*RedisVerdictCache)(nil)
