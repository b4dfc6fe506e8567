// Package baseline adapts third-party caches to base.ReplacementPolicy so
// they can be replayed next to the engines of this module.
package baseline

import (
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/samber/hotsim/pkg/base"
)

// NewLRU returns a least-recently-used policy backed by hashicorp/golang-lru.
func NewLRU[K comparable, V any](capacity int) (*LRU[K, V], error) {
	return NewLRUWithEvictionCallback[K, V](capacity, nil)
}

// NewLRUWithEvictionCallback is NewLRU with a callback called on every capacity eviction.
func NewLRUWithEvictionCallback[K comparable, V any](capacity int, onEviction base.EvictionCallback[K, V]) (*LRU[K, V], error) {
	if err := base.ValidateCapacity(capacity); err != nil {
		return nil, err
	}

	var onEvicted func(K, V)
	if onEviction != nil {
		onEvicted = func(k K, v V) {
			onEviction(base.EvictionReasonCapacity, k, v)
		}
	}

	cache, err := lru.NewWithEvict(capacity, onEvicted)
	if err != nil {
		return nil, err
	}

	return &LRU[K, V]{
		cache:    cache,
		capacity: capacity,
	}, nil
}

// LRU evicts the least recently accessed key.
type LRU[K comparable, V any] struct {
	cache    *lru.Cache[K, V]
	capacity int
	hits     int64
}

var _ base.ReplacementPolicy[string, int] = (*LRU[string, int])(nil)

// Access records a request for key. On a miss, value is cached.
func (c *LRU[K, V]) Access(key K, value V) bool {
	if _, ok := c.cache.Get(key); ok {
		c.hits++
		return true
	}
	c.cache.Add(key, value)
	return false
}

// Lookup returns the value cached for key without updating recency.
func (c *LRU[K, V]) Lookup(key K) (V, bool) {
	return c.cache.Peek(key)
}

func (c *LRU[K, V]) Hits() int64       { return c.hits }
func (c *LRU[K, V]) Capacity() int     { return c.capacity }
func (c *LRU[K, V]) Len() int          { return c.cache.Len() }
func (c *LRU[K, V]) Algorithm() string { return "lru" }

// Keys returns the resident keys, least recently used first.
func (c *LRU[K, V]) Keys() []K {
	return c.cache.Keys()
}
