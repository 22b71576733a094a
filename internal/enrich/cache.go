package enrich

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	pkgredis "github.com/trolleyhq/trolley-backend/pkg/redis"
)

const cacheTTL = 30 * 24 * time.Hour

type cacheStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	CacheKey(hash string) string
}

// Cache stores validated enrichment results keyed by a stable hash of
// the normalized item name, so repeated creations of the same item
// never re-hit the model.
type Cache struct {
	kv cacheStore
}

// NewCache builds a cache over the key-value store. A nil store yields
// a cache that always misses.
func NewCache(kv cacheStore) *Cache {
	return &Cache{kv: kv}
}

func cacheHash(itemName string) string {
	normalized := strings.ToLower(strings.TrimSpace(itemName))
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// Lookup returns a cached result for the item name, if any.
func (c *Cache) Lookup(ctx context.Context, itemName string) (Result, bool) {
	if c == nil || c.kv == nil {
		return Result{}, false
	}
	raw, err := c.kv.Get(ctx, c.kv.CacheKey(cacheHash(itemName)))
	if err != nil {
		if !errors.Is(err, pkgredis.Nil) {
			// Cache trouble must never block enrichment.
			return Result{}, false
		}
		return Result{}, false
	}
	var result Result
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return Result{}, false
	}
	return result, true
}

// Store saves a validated result. Failures are swallowed; the cache is
// an optimization, not a dependency.
func (c *Cache) Store(ctx context.Context, itemName string, result Result) {
	if c == nil || c.kv == nil {
		return
	}
	encoded, err := json.Marshal(result)
	if err != nil {
		return
	}
	_ = c.kv.Set(ctx, c.kv.CacheKey(cacheHash(itemName)), string(encoded), cacheTTL)
}
