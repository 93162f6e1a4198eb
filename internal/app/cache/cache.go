package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "lexscribe:status:"

// StatusCache keeps recent provider status answers keyed by transcription handle
type StatusCache interface {
	Get(ctx context.Context, handle string) (string, bool)
	Set(ctx context.Context, handle, status string)
}

// Noop never caches
type Noop struct{}

func (Noop) Get(context.Context, string) (string, bool) { return "", false }
func (Noop) Set(context.Context, string, string)        {}

// RedisCache stores statuses in redis with a fixed TTL. Cache failures are
// logged and treated as misses.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisCache connects to addr and verifies the connection
func NewRedisCache(ctx context.Context, addr, password string, db int, ttl time.Duration, logger *zap.Logger) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return newRedisCache(client, ttl, logger), nil
}

func newRedisCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisCache {
	return &RedisCache{client: client, ttl: ttl, logger: logger}
}

func key(handle string) string {
	sum := sha1.Sum([]byte(handle))
	return keyPrefix + hex.EncodeToString(sum[:])
}

func (c *RedisCache) Get(ctx context.Context, handle string) (string, bool) {
	status, err := c.client.Get(ctx, key(handle)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false
	}
	if err != nil {
		c.logger.Warn("status cache read failed", zap.Error(err))
		return "", false
	}
	return status, true
}

func (c *RedisCache) Set(ctx context.Context, handle, status string) {
	if err := c.client.Set(ctx, key(handle), status, c.ttl).Err(); err != nil {
		c.logger.Warn("status cache write failed", zap.Error(err))
	}
}

// Close releases the redis connection pool
func (c *RedisCache) Close() error {
	return c.client.Close()
}
