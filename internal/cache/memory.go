package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache keeps results in process memory. Suitable for a single
// server instance; entries are lost on restart.
type MemoryCache struct {
	items *gocache.Cache
}

// NewMemoryCache creates a cache whose entries expire after defaultTTL
// unless Set is given a positive TTL. Expired entries are purged every
// ten minutes.
func NewMemoryCache(defaultTTL time.Duration) *MemoryCache {
	return &MemoryCache{items: gocache.New(defaultTTL, 10*time.Minute)}
}

func (c *MemoryCache) Get(_ context.Context, key string) (string, bool, error) {
	if v, found := c.items.Get(key); found {
		return v.(string), true, nil
	}
	return "", false, nil
}

func (c *MemoryCache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.DefaultExpiration
	}
	c.items.Set(key, value, ttl)
	return nil
}

func (c *MemoryCache) Close() error {
	c.items.Flush()
	return nil
}
