package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyNamespace = "capristore"

// ErrMiss is returned by Get when nothing is cached under the key.
var ErrMiss = errors.New("cache miss")

// FeedCache stores raw feed documents for a limited time.
type FeedCache interface {
	Get(ctx context.Context, name string) ([]byte, error)
	Set(ctx context.Context, name string, payload []byte, ttl time.Duration) error
	Ping(ctx context.Context) error
}

type cmdable interface {
	Ping(context.Context) *redis.StatusCmd
	Get(context.Context, string) *redis.StringCmd
	Set(context.Context, string, any, time.Duration) *redis.StatusCmd
}

// RedisFeedCache keeps feeds in Redis under a namespaced key.
type RedisFeedCache struct {
	store cmdable
	raw   *redis.Client
}

// NewRedisFeedCache connects to the Redis URL and verifies connectivity.
func NewRedisFeedCache(ctx context.Context, rawURL string) (*RedisFeedCache, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	raw := redis.NewClient(opts)
	if err := raw.Ping(ctx).Err(); err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisFeedCache{store: raw, raw: raw}, nil
}

// FeedKey namespaces a feed name.
func FeedKey(name string) string {
	return keyNamespace + ":feed:" + name
}

// Get returns the cached payload or ErrMiss.
func (c *RedisFeedCache) Get(ctx context.Context, name string) ([]byte, error) {
	payload, err := c.store.Get(ctx, FeedKey(name)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("get feed %s: %w", name, err)
	}
	return payload, nil
}

// Set stores payload for ttl.
func (c *RedisFeedCache) Set(ctx context.Context, name string, payload []byte, ttl time.Duration) error {
	if err := c.store.Set(ctx, FeedKey(name), payload, ttl).Err(); err != nil {
		return fmt.Errorf("set feed %s: %w", name, err)
	}
	return nil
}

// Ping checks the connection.
func (c *RedisFeedCache) Ping(ctx context.Context) error {
	return c.store.Ping(ctx).Err()
}

// Close releases the connection pool.
func (c *RedisFeedCache) Close() error {
	if c.raw == nil {
		return nil
	}
	return c.raw.Close()
}

// NoopFeedCache never stores anything; every Get misses.
type NoopFeedCache struct{}

// Get always misses.
func (NoopFeedCache) Get(context.Context, string) ([]byte, error) { return nil, ErrMiss }

// Set discards the payload.
func (NoopFeedCache) Set(context.Context, string, []byte, time.Duration) error { return nil }

// Ping always succeeds.
func (NoopFeedCache) Ping(context.Context) error { return nil }
