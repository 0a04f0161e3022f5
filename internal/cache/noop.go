package cache

import (
	"context"
	"time"
)

// NoOpCache is a cache implementation that does nothing.
// Used when caching is disabled or Redis is unavailable: every lookup is
// a miss and every write succeeds.
type NoOpCache struct{}

func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

func (c *NoOpCache) Get(context.Context, string) (string, bool, error) {
	return "", false, nil
}

func (c *NoOpCache) Set(context.Context, string, string, time.Duration) error {
	return nil
}

func (c *NoOpCache) Close() error {
	return nil
}
