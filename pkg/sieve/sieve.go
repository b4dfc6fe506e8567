package sieve

import (
	"github.com/DmitriyVTitov/size"
	"github.com/samber/hotsim/internal"
	"github.com/samber/hotsim/internal/arena"
	"github.com/samber/hotsim/pkg/base"
)

const queue arena.ListID = 0

// SIEVECache implements the SIEVE eviction algorithm
// as described in https://cachemon.github.io/SIEVE-website/
//
// Keys are kept in admission order. Each entry has a visited bit set on hit.
// A hand scans from the oldest entry towards the newest: visited entries get a
// second chance (the bit is cleared), the first unvisited one is evicted and
// the hand stays where it stopped.
//
// References:
//   - [SIEVE is Simpler than LRU: an Efficient Turn-Key Eviction Algorithm for Web Caches](https://junchengyang.com/publication/nsdi24-SIEVE.pdf)
//     (Zhang et al., NSDI 2024)
//
// It is not safe for concurrent access and should be wrapped with a thread-safe layer if needed.
type SIEVECache[K comparable, V any] struct { //nolint:revive
	noCopy internal.NoCopy

	capacity int
	hits     int64

	slots *arena.Arena[entry[K, V]] // newest at front
	index map[K]arena.Handle
	hand  arena.Handle // next eviction candidate, Nil to restart from the oldest

	onEviction base.EvictionCallback[K, V]
}

type entry[K comparable, V any] struct {
	key     K
	value   V
	visited bool
}

// NewSIEVECache creates a new SIEVE cache with the specified capacity.
func NewSIEVECache[K comparable, V any](capacity int) (*SIEVECache[K, V], error) {
	return NewSIEVECacheWithEvictionCallback[K, V](capacity, nil)
}

// NewSIEVECacheWithEvictionCallback creates a new SIEVE cache
// with the specified capacity and eviction callback.
func NewSIEVECacheWithEvictionCallback[K comparable, V any](capacity int, onEviction base.EvictionCallback[K, V]) (*SIEVECache[K, V], error) {
	if err := base.ValidateCapacity(capacity); err != nil {
		return nil, err
	}

	return &SIEVECache[K, V]{
		capacity:   capacity,
		slots:      arena.New[entry[K, V]](1, capacity),
		index:      make(map[K]arena.Handle, capacity),
		hand:       arena.Nil,
		onEviction: onEviction,
	}, nil
}

var _ base.ReplacementPolicy[string, int] = (*SIEVECache[string, int])(nil)

// Access records a request for key. A hit only sets the visited bit.
func (c *SIEVECache[K, V]) Access(key K, value V) bool {
	if h, ok := c.index[key]; ok {
		c.slots.Value(h).visited = true
		c.hits++
		return true
	}

	if len(c.index) >= c.capacity {
		c.evict()
	}

	h := c.slots.Alloc(entry[K, V]{key: key, value: value})
	c.slots.PushFront(queue, h)
	c.index[key] = h
	return false
}

func (c *SIEVECache[K, V]) evict() {
	h := c.hand
	if h == arena.Nil {
		h, _ = c.slots.Back(queue)
	}
	internal.Assert(h != arena.Nil, "sieve: eviction from an empty queue")

	// terminates within one lap: every visited bit met is cleared
	for c.slots.Value(h).visited {
		c.slots.Value(h).visited = false
		h = c.slots.Prev(h)
		if h == arena.Nil {
			h, _ = c.slots.Back(queue)
		}
	}

	c.hand = c.slots.Prev(h)

	e := *c.slots.Value(h)
	c.slots.Remove(h)
	c.slots.Release(h)
	delete(c.index, e.key)

	if c.onEviction != nil {
		c.onEviction(base.EvictionReasonCapacity, e.key, e.value)
	}
}

// Lookup returns the value cached for key without marking it as visited.
func (c *SIEVECache[K, V]) Lookup(key K) (value V, ok bool) {
	if h, hit := c.index[key]; hit {
		return c.slots.Value(h).value, true
	}
	return value, false
}

// Keys returns the resident keys, newest first.
func (c *SIEVECache[K, V]) Keys() []K {
	keys := make([]K, 0, len(c.index))
	c.slots.Range(queue, func(_ arena.Handle, e *entry[K, V]) bool {
		keys = append(keys, e.key)
		return true
	})
	return keys
}

// Hits returns the number of hits so far.
func (c *SIEVECache[K, V]) Hits() int64 {
	return c.hits
}

// Capacity returns the maximum number of items the cache can hold.
func (c *SIEVECache[K, V]) Capacity() int {
	return c.capacity
}

// Algorithm returns the name of the eviction algorithm used by the cache.
func (c *SIEVECache[K, V]) Algorithm() string {
	return "sieve"
}

// Len returns the current number of items in the cache.
func (c *SIEVECache[K, V]) Len() int {
	return len(c.index)
}

// SizeBytes returns the estimated memory held by the cache.
func (c *SIEVECache[K, V]) SizeBytes() int64 {
	return int64(size.Of(c.index)) + int64(size.Of(c.slots))
}
