package fifo

import (
	"github.com/DmitriyVTitov/size"
	"github.com/samber/hotsim/internal"
	"github.com/samber/hotsim/internal/arena"
	"github.com/samber/hotsim/pkg/base"
)

const queue arena.ListID = 0

type entry[K comparable, V any] struct {
	key   K
	value V
}

// NewFIFOCache creates a new FIFO cache with the specified capacity.
// The cache evicts the first admitted key when it reaches capacity.
func NewFIFOCache[K comparable, V any](capacity int) (*FIFOCache[K, V], error) {
	return NewFIFOCacheWithEvictionCallback[K, V](capacity, nil)
}

// NewFIFOCacheWithEvictionCallback creates a new FIFO cache with the specified capacity and eviction callback.
func NewFIFOCacheWithEvictionCallback[K comparable, V any](capacity int, onEviction base.EvictionCallback[K, V]) (*FIFOCache[K, V], error) {
	if err := base.ValidateCapacity(capacity); err != nil {
		return nil, err
	}

	return &FIFOCache[K, V]{
		capacity:   capacity,
		slots:      arena.New[entry[K, V]](1, capacity),
		index:      make(map[K]arena.Handle, capacity),
		onEviction: onEviction,
	}, nil
}

// FIFOCache is a First In, First Out cache. Hits do not change the eviction order.
// It is not safe for concurrent access and should be wrapped with a thread-safe layer if needed.
type FIFOCache[K comparable, V any] struct {
	noCopy internal.NoCopy

	capacity int
	hits     int64

	slots *arena.Arena[entry[K, V]] // newest at front
	index map[K]arena.Handle

	onEviction base.EvictionCallback[K, V]
}

var _ base.ReplacementPolicy[string, int] = (*FIFOCache[string, int])(nil)

// Access records a request for key. On a miss with a full cache, the oldest
// admitted key is evicted.
func (c *FIFOCache[K, V]) Access(key K, value V) bool {
	if _, ok := c.index[key]; ok {
		c.hits++
		return true
	}

	if len(c.index) >= c.capacity {
		c.evictOldest()
	}

	h := c.slots.Alloc(entry[K, V]{key: key, value: value})
	c.slots.PushFront(queue, h)
	c.index[key] = h
	return false
}

func (c *FIFOCache[K, V]) evictOldest() {
	h, ok := c.slots.Back(queue)
	internal.Assert(ok, "fifo: eviction from an empty queue")

	e := *c.slots.Value(h)
	c.slots.Remove(h)
	c.slots.Release(h)
	delete(c.index, e.key)

	if c.onEviction != nil {
		c.onEviction(base.EvictionReasonCapacity, e.key, e.value)
	}
}

// Lookup returns the value cached for key without changing the eviction order.
func (c *FIFOCache[K, V]) Lookup(key K) (value V, ok bool) {
	if h, hit := c.index[key]; hit {
		return c.slots.Value(h).value, true
	}
	return value, false
}

// Keys returns the resident keys, newest first.
func (c *FIFOCache[K, V]) Keys() []K {
	keys := make([]K, 0, len(c.index))
	c.slots.Range(queue, func(_ arena.Handle, e *entry[K, V]) bool {
		keys = append(keys, e.key)
		return true
	})
	return keys
}

func (c *FIFOCache[K, V]) Hits() int64       { return c.hits }
func (c *FIFOCache[K, V]) Capacity() int     { return c.capacity }
func (c *FIFOCache[K, V]) Len() int          { return len(c.index) }
func (c *FIFOCache[K, V]) Algorithm() string { return "fifo" }

// SizeBytes returns the estimated memory held by the cache.
func (c *FIFOCache[K, V]) SizeBytes() int64 {
	return int64(size.Of(c.index)) + int64(size.Of(c.slots))
}
