package baseline

import (
	arc "github.com/hashicorp/golang-lru/arc/v2"
	"github.com/samber/hotsim/pkg/base"
)

// NewHashicorpARC returns the ARC implementation of hashicorp/golang-lru.
// It is a reference point for the arc package: both follow the same paper but
// differ in how p moves and when ghosts are trimmed, so hit counts are close
// rather than identical.
func NewHashicorpARC[K comparable, V any](capacity int) (*HashicorpARC[K, V], error) {
	if err := base.ValidateCapacity(capacity); err != nil {
		return nil, err
	}

	cache, err := arc.NewARC[K, V](capacity)
	if err != nil {
		return nil, err
	}

	return &HashicorpARC[K, V]{
		cache:    cache,
		capacity: capacity,
	}, nil
}

// HashicorpARC adapts arc.ARCCache. It does not report evictions.
type HashicorpARC[K comparable, V any] struct {
	cache    *arc.ARCCache[K, V]
	capacity int
	hits     int64
}

var _ base.ReplacementPolicy[string, int] = (*HashicorpARC[string, int])(nil)

// Access records a request for key. On a miss, value is cached.
func (c *HashicorpARC[K, V]) Access(key K, value V) bool {
	if _, ok := c.cache.Get(key); ok {
		c.hits++
		return true
	}
	c.cache.Add(key, value)
	return false
}

// Lookup returns the value cached for key without updating the lists.
func (c *HashicorpARC[K, V]) Lookup(key K) (V, bool) {
	return c.cache.Peek(key)
}

func (c *HashicorpARC[K, V]) Hits() int64       { return c.hits }
func (c *HashicorpARC[K, V]) Capacity() int     { return c.capacity }
func (c *HashicorpARC[K, V]) Len() int          { return c.cache.Len() }
func (c *HashicorpARC[K, V]) Algorithm() string { return "hashicorp-arc" }
