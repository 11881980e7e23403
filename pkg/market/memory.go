package market

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache is an in-process TTL cache backed by patrickmn/go-cache.
// Suitable for single-binary CLI usage where the cache dies with the
// process.
type MemoryCache struct {
	c *gocache.Cache
}

// DefaultTTL is how long a cached market board stays fresh when the caller
// doesn't specify a TTL. Market prices move quickly; anything older than
// this is more misleading than helpful.
const DefaultTTL = 15 * time.Minute

// NewMemoryCache creates an in-memory cache. Expired entries are swept
// every few minutes; reads of expired entries miss immediately regardless.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{c: gocache.New(DefaultTTL, 5*time.Minute)}
}

// Get retrieves a value from the cache.
func (m *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	v, hit := m.c.Get(key)
	if !hit {
		return nil, false, nil
	}
	data, ok := v.([]byte)
	if !ok {
		m.c.Delete(key)
		return nil, false, nil
	}
	return data, true, nil
}

// Set stores a value. A zero TTL falls back to DefaultTTL rather than
// keeping stale market data forever.
func (m *MemoryCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	m.c.Set(key, data, ttl)
	return nil
}

// Delete removes a value from the cache.
func (m *MemoryCache) Delete(ctx context.Context, key string) error {
	m.c.Delete(key)
	return nil
}

// Close does nothing for the memory cache.
func (m *MemoryCache) Close() error {
	return nil
}

// Flush drops every cached entry.
func (m *MemoryCache) Flush() {
	m.c.Flush()
}

// Len returns the number of live entries.
func (m *MemoryCache) Len() int {
	return m.c.ItemCount()
}

// Ensure MemoryCache implements Cache.
var _ Cache = (*MemoryCache)(nil)
