package backend

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/feirinha-uesb/storefront/pkg/logger"
)

const catalogCachePrefix = "storefront:catalog:"

// CatalogCache keeps raw backend responses of catalog reads in Redis
type CatalogCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCatalogCache returns nil when client is nil or ttl is not positive,
// which disables caching.
func NewCatalogCache(client *redis.Client, ttl time.Duration) *CatalogCache {
	if client == nil || ttl <= 0 {
		return nil
	}
	return &CatalogCache{client: client, ttl: ttl}
}

// isCacheable reports whether a GET on path serves catalog data
func isCacheable(path string) bool {
	return path == "/products" || strings.HasPrefix(path, "/products/") || path == "/tents"
}

// changesCatalog reports whether a successful write to path can make cached
// catalog responses stale. Sales lower stock, comments show on products.
func changesCatalog(path string) bool {
	switch resourceOf(path) {
	case "tents", "stock", "sales", "comentarios", "products":
		return true
	}
	return false
}

func (c *CatalogCache) get(ctx context.Context, path string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	cached, err := c.client.Get(ctx, catalogCachePrefix+path).Bytes()
	if err != nil || len(cached) == 0 {
		if err != nil && err != redis.Nil {
			logger.Logger.Warn().Err(err).Str("path", path).Msg("Catalog cache read failed")
		}
		return nil, false
	}
	logger.Logger.Debug().Str("path", path).Msg("Cache hit")
	return cached, true
}

func (c *CatalogCache) set(ctx context.Context, path string, body []byte) {
	if c == nil {
		return
	}
	if err := c.client.Set(ctx, catalogCachePrefix+path, body, c.ttl).Err(); err != nil {
		logger.Logger.Warn().
			Err(err).
			Str("path", path).
			Msg("Failed to cache response")
		return
	}
	logger.Logger.Debug().
		Str("path", path).
		Dur("ttl", c.ttl).
		Int("size", len(body)).
		Msg("Response cached")
}

// Invalidate drops every cached catalog response
func (c *CatalogCache) Invalidate(ctx context.Context) error {
	if c == nil {
		return nil
	}

	iter := c.client.Scan(ctx, 0, catalogCachePrefix+"*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}

	if len(keys) > 0 {
		if err := c.client.Del(ctx, keys...).Err(); err != nil {
			return err
		}
		logger.Logger.Info().
			Int("count", len(keys)).
			Msg("Catalog cache invalidated")
	}
	return nil
}
