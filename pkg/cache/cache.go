package cache

import (
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// ResponseCache keeps successful API responses for a fixed TTL.
// It is safe for concurrent use and is shared by every collector of a run.
type ResponseCache struct {
	cache *ttlcache.Cache[string, []byte]
	name  string
	ttl   time.Duration
}

func New(name string, ttl time.Duration) *ResponseCache {
	return &ResponseCache{
		cache: ttlcache.New[string, []byte](
			ttlcache.WithTTL[string, []byte](ttl),
			ttlcache.WithDisableTouchOnHit[string, []byte](),
		),
		name: name,
		ttl:  ttl,
	}
}

// Get returns the cached body for key if it has not expired yet.
func (c *ResponseCache) Get(key string) ([]byte, bool) {
	item := c.cache.Get(key)
	if item == nil || item.IsExpired() {
		recordLookup(c.name, false)
		return nil, false
	}

	recordLookup(c.name, true)

	return item.Value(), true
}

func (c *ResponseCache) Set(key string, body []byte) {
	c.cache.Set(key, body, ttlcache.DefaultTTL)
	c.recordMetrics()
}

// DeleteExpired drops expired entries and refreshes the size metric.
func (c *ResponseCache) DeleteExpired() {
	c.cache.DeleteExpired()
	c.recordMetrics()
}

func (c *ResponseCache) Len() int {
	return c.cache.Len()
}

func (c *ResponseCache) TTL() time.Duration {
	return c.ttl
}
