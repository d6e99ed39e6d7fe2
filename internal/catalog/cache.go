package catalog

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/allegro/bigcache/v3"
)

// Cache is a read cache over catalog listings. bigcache cannot delete by
// prefix, so invalidation bumps a per-entity generation counter instead;
// stale generations age out with the TTL.
type Cache struct {
	store *bigcache.BigCache

	mu   sync.Mutex
	gens map[string]uint64
}

// NewCache creates a catalog read cache. ttl <= 0 disables caching and
// returns nil, which every method tolerates.
func NewCache(ttl time.Duration) (*Cache, error) {
	if ttl <= 0 {
		return nil, nil
	}
	store, err := bigcache.New(context.Background(), bigcache.DefaultConfig(ttl))
	if err != nil {
		return nil, err
	}
	return &Cache{store: store, gens: make(map[string]uint64)}, nil
}

func (c *Cache) generation(entity string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[entity]
}

func (c *Cache) key(entity, key string) string {
	return entity + ":g" + strconv.FormatUint(c.generation(entity), 10) + ":" + key
}

// Get returns the cached payload for the entity's current generation.
func (c *Cache) Get(entity, key string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	payload, err := c.store.Get(c.key(entity, key))
	if err != nil {
		return nil, false
	}
	return payload, true
}

// Set stores a payload under the entity's current generation.
func (c *Cache) Set(entity, key string, payload []byte) {
	if c == nil {
		return
	}
	_ = c.store.Set(c.key(entity, key), payload)
}

// Invalidate drops every cached page of the entity by advancing its
// generation. Called after any mutation of that entity type.
func (c *Cache) Invalidate(entity string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.gens[entity]++
	c.mu.Unlock()
}
