package handler

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/blog-api/internal/config"
	"github.com/iliyamo/blog-api/internal/middleware"
)

// CacheInvalidator drops cached listing responses after a write.  Handlers
// call it whenever a mutation could change what a listing returns; a nil
// invalidator means caching is off.
type CacheInvalidator interface {
	Invalidate(ctx context.Context)
}

type redisInvalidator struct {
	rdb    *redis.Client
	prefix string
}

// NewCacheInvalidator builds an invalidator over the shared Redis cache.
// It tolerates a nil client, matching the rest of the cache layer.
func NewCacheInvalidator(rdb *redis.Client, cfg config.CacheConfig) CacheInvalidator {
	return redisInvalidator{rdb: rdb, prefix: cfg.Prefix}
}

func (r redisInvalidator) Invalidate(ctx context.Context) {
	middleware.InvalidateCache(ctx, r.rdb, r.prefix)
}
