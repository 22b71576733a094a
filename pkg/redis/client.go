package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/trolleyhq/trolley-backend/pkg/config"
	"github.com/trolleyhq/trolley-backend/pkg/logger"
)

const (
	keyNamespace = "trolley"
	itemPrefix   = "item"
	shopPrefix   = "shop"
	layoutPrefix = "layout"
	cachePrefix  = "aicache"
	lockPrefix   = "lock"
)

// Nil is returned by Get when a key does not exist.
var Nil = redis.Nil

type cmdable interface {
	Ping(context.Context) *redis.StatusCmd
	Set(context.Context, string, any, time.Duration) *redis.StatusCmd
	Get(context.Context, string) *redis.StringCmd
	SetNX(context.Context, string, any, time.Duration) *redis.BoolCmd
	Del(context.Context, ...string) *redis.IntCmd
	Scan(context.Context, uint64, string, int64) *redis.ScanCmd
	MGet(context.Context, ...string) *redis.SliceCmd
}

// Client wraps the redis connection helpers used as the key-value store.
type Client struct {
	store cmdable
	raw   *redis.Client
}

// Pinger exposes the health-check surface.
type Pinger interface {
	Ping(context.Context) error
}

// New bootstraps a Redis client with pooling/timeouts and verifies connectivity.
func New(ctx context.Context, cfg config.RedisConfig, logg *logger.Logger) (*Client, error) {
	opts, err := optionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	raw := redis.NewClient(opts)
	if err := raw.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Client{store: raw, raw: raw}, nil
}

func optionsFromConfig(cfg config.RedisConfig) (*redis.Options, error) {
	if cfg.URL == "" && cfg.Address == "" {
		return nil, errors.New("redis url or address is required")
	}
	var opts *redis.Options
	if cfg.URL != "" {
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parsing redis url: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{
			Addr:     cfg.Address,
			Password: cfg.Password,
			DB:       cfg.DB,
		}
	}
	if opts.DB == 0 {
		opts.DB = cfg.DB
	}
	if opts.PoolSize == 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if opts.MinIdleConns == 0 {
		opts.MinIdleConns = cfg.MinIdleConns
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}
	return opts, nil
}

// Set stores a string value with an optional TTL.
func (c *Client) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if c.store == nil {
		return errors.New("redis client not initialized")
	}
	return c.store.Set(ctx, key, value, ttl).Err()
}

// Get returns a string value stored at key. Missing keys yield Nil.
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	if c.store == nil {
		return "", errors.New("redis client not initialized")
	}
	return c.store.Get(ctx, key).Result()
}

// SetNX sets a value only if the key does not exist yet.
func (c *Client) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if c.store == nil {
		return false, errors.New("redis client not initialized")
	}
	return c.store.SetNX(ctx, key, value, ttl).Result()
}

// Del removes the provided keys and reports how many existed.
func (c *Client) Del(ctx context.Context, keys ...string) (int64, error) {
	if c.store == nil {
		return 0, errors.New("redis client not initialized")
	}
	return c.store.Del(ctx, keys...).Result()
}

// ScanKeys walks the keyspace and returns every key matching the pattern.
func (c *Client) ScanKeys(ctx context.Context, pattern string) ([]string, error) {
	if c.store == nil {
		return nil, errors.New("redis client not initialized")
	}
	var keys []string
	var cursor uint64
	for {
		batch, next, err := c.store.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return nil, fmt.Errorf("scan %q: %w", pattern, err)
		}
		keys = append(keys, batch...)
		if next == 0 {
			return keys, nil
		}
		cursor = next
	}
}

// GetMany fetches the values for the given keys in one round trip.
// Missing keys are returned as empty strings.
func (c *Client) GetMany(ctx context.Context, keys ...string) ([]string, error) {
	if c.store == nil {
		return nil, errors.New("redis client not initialized")
	}
	if len(keys) == 0 {
		return nil, nil
	}
	raw, err := c.store.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("mget: %w", err)
	}
	values := make([]string, len(raw))
	for i, v := range raw {
		if s, ok := v.(string); ok {
			values[i] = s
		}
	}
	return values, nil
}

// ItemKey addresses one active item by its composite (owner, id) key.
func (c *Client) ItemKey(owner, itemID string) string {
	return c.buildKey(itemPrefix, owner, itemID)
}

// ItemScanPattern matches every active item for one owner, or every
// owner's items when owner is empty.
func (c *Client) ItemScanPattern(owner string) string {
	if owner == "" {
		return c.buildKey(itemPrefix) + ":*"
	}
	return c.buildKey(itemPrefix, owner) + ":*"
}

// ShopKey addresses one archived shop record.
func (c *Client) ShopKey(shopID string) string {
	return c.buildKey(shopPrefix, shopID)
}

// ShopScanPattern matches every archived shop record.
func (c *Client) ShopScanPattern() string {
	return c.buildKey(shopPrefix) + ":*"
}

// LayoutKey addresses the active store-layout override.
func (c *Client) LayoutKey() string {
	return c.buildKey(layoutPrefix, "active")
}

// CacheKey addresses one cached enrichment result.
func (c *Client) CacheKey(hash string) string {
	return c.buildKey(cachePrefix, hash)
}

// CompletionLockKey addresses the shop-completion lease. A single key
// covers every scope: a household-wide run reads all owners' items, so
// it must exclude owner-scoped runs too, not just its own scope.
func (c *Client) CompletionLockKey() string {
	return c.buildKey(lockPrefix, "complete")
}

// ReconcileLockKey addresses the reconcile worker's exclusive-run lock.
func (c *Client) ReconcileLockKey() string {
	return c.buildKey(lockPrefix, "reconcile")
}

// Ping verifies the connection.
func (c *Client) Ping(ctx context.Context) error {
	if c.store == nil {
		return errors.New("redis client not initialized")
	}
	return c.store.Ping(ctx).Err()
}

// Close shuts down the underlying client if available.
func (c *Client) Close() error {
	if c.raw == nil {
		return nil
	}
	return c.raw.Close()
}

func (c *Client) buildKey(parts ...string) string {
	if len(parts) == 0 {
		return keyNamespace
	}
	clean := []string{keyNamespace}
	for _, part := range parts {
		if part == "" {
			continue
		}
		clean = append(clean, strings.TrimSpace(part))
	}
	return strings.Join(clean, ":")
}
