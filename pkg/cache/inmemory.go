package cache

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

const (
	NoExpiration      = cache.NoExpiration
	DefaultExpiration = cache.DefaultExpiration
)

// Cache holds trained artifacts and dashboard views in process memory.
type Cache interface {
	Set(key string, value interface{}, duration time.Duration)
	Get(key string) (interface{}, bool)
	Delete(keys ...string)
	Flush()
}

type goCache struct {
	internal *cache.Cache
}

func NewCache(defaultExpiration, cleanupInterval time.Duration) Cache {
	return &goCache{
		internal: cache.New(defaultExpiration, cleanupInterval),
	}
}

func (c *goCache) Set(key string, value interface{}, duration time.Duration) {
	c.internal.Set(key, value, duration)
}

func (c *goCache) Get(key string) (interface{}, bool) {
	return c.internal.Get(key)
}

func (c *goCache) Delete(keys ...string) {
	for _, key := range keys {
		c.internal.Delete(key)
	}
}

func (c *goCache) Flush() {
	c.internal.Flush()
}

// GetAs reads key from c and type-asserts it to T. A value of another type
// counts as a miss.
func GetAs[T any](c Cache, key string) (T, bool) {
	var zero T
	val, found := c.Get(key)
	if !found {
		return zero, false
	}
	typedVal, ok := val.(T)
	if !ok {
		return zero, false
	}
	return typedVal, true
}

// GetOrLoad returns the cached value for key, or calls load and caches its
// result for ttl. Errors are returned as-is and never cached. Concurrent
// misses may each call load.
func GetOrLoad[T any](ctx context.Context, c Cache, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	if v, ok := GetAs[T](c, key); ok {
		return v, nil
	}
	v, err := load(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	c.Set(key, v, ttl)
	return v, nil
}
