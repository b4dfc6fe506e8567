// Package optimal implements Belady's MIN replacement policy.
//
// MIN needs the whole trace upfront: on a miss with a full cache it evicts the
// resident key requested again farthest in the future. No online policy can
// score more hits on the same trace, which makes it the upper bound that the
// other engines are measured against.
package optimal

import (
	"container/heap"
	"fmt"
	"math"

	"github.com/samber/hotsim/internal"
	"github.com/samber/hotsim/pkg/base"
)

// never is the next use of a key that is not requested again.
const never = math.MaxInt

// NewOptimalCache builds the future index of trace and returns a cache
// expecting exactly these keys, in this order, through Access.
func NewOptimalCache[K comparable, V any](capacity int, trace []K) (*OptimalCache[K, V], error) {
	return NewOptimalCacheWithEvictionCallback[K, V](capacity, trace, nil)
}

// NewOptimalCacheWithEvictionCallback is NewOptimalCache with a callback
// called whenever a resident key is evicted.
func NewOptimalCacheWithEvictionCallback[K comparable, V any](capacity int, trace []K, onEviction base.EvictionCallback[K, V]) (*OptimalCache[K, V], error) {
	if err := base.ValidateCapacity(capacity); err != nil {
		return nil, err
	}

	// pass 1: 1-based positions of every occurrence of every key
	future := make(map[K][]int)
	for i, key := range trace {
		future[key] = append(future[key], i+1)
	}

	return &OptimalCache[K, V]{
		capacity:   capacity,
		trace:      trace,
		future:     future,
		resident:   make(map[K]V, capacity),
		farthest:   make(nextUses[K], 0, capacity),
		onEviction: onEviction,
	}, nil
}

// OptimalCache is an offline cache replaying a known trace with Belady's MIN policy.
//
// It is not safe for concurrent access and should be wrapped with a thread-safe layer if needed.
type OptimalCache[K comparable, V any] struct {
	noCopy internal.NoCopy

	capacity int
	hits     int64
	position int // number of requests replayed

	trace    []K
	future   map[K][]int // pending positions, front is the next use
	resident map[K]V

	// max-heap of resident keys by next use. Entries go stale when their key
	// is requested or evicted; they are skipped when they reach the top.
	farthest nextUses[K]

	onEviction base.EvictionCallback[K, V]
}

var _ base.ReplacementPolicy[string, int] = (*OptimalCache[string, int])(nil)

// Access replays the next request of the trace, which must be for key.
// It panics with an error wrapping base.ErrTraceMismatch otherwise.
func (c *OptimalCache[K, V]) Access(key K, value V) bool {
	if c.position >= len(c.trace) || c.trace[c.position] != key {
		panic(fmt.Errorf("%w: request %d is for %v", base.ErrTraceMismatch, c.position+1, key))
	}
	c.position++

	// consume this occurrence, the front becomes the next use
	if q := c.future[key]; len(q) > 0 {
		c.future[key] = q[1:]
	}
	next := c.nextUse(key)

	if _, ok := c.resident[key]; ok {
		c.hits++
		c.track(key, next)
		return true
	}

	if len(c.resident) < c.capacity {
		c.admit(key, value, next)
		return false
	}

	victim, victimNext := c.peekFarthest()
	if victimNext <= next {
		// key is needed again no sooner than any resident one: bypass the cache
		return false
	}

	heap.Pop(&c.farthest)
	evicted := c.resident[victim]
	delete(c.resident, victim)
	if c.onEviction != nil {
		c.onEviction(base.EvictionReasonCapacity, victim, evicted)
	}

	c.admit(key, value, next)
	return false
}

func (c *OptimalCache[K, V]) nextUse(key K) int {
	if q := c.future[key]; len(q) > 0 {
		return q[0]
	}
	return never
}

func (c *OptimalCache[K, V]) admit(key K, value V, next int) {
	c.resident[key] = value
	c.track(key, next)
}

func (c *OptimalCache[K, V]) track(key K, next int) {
	heap.Push(&c.farthest, nextUse[K]{key: key, next: next})

	// one entry per request: rebuild once stale entries dominate
	if len(c.farthest) > 4*c.capacity+64 {
		c.rebuild()
	}
}

// peekFarthest discards stale entries and returns the resident key used farthest in the future.
func (c *OptimalCache[K, V]) peekFarthest() (K, int) {
	for {
		internal.Assert(len(c.farthest) > 0, "optimal: no resident key to evict")

		top := c.farthest[0]
		if _, ok := c.resident[top.key]; ok && c.nextUse(top.key) == top.next {
			return top.key, top.next
		}
		heap.Pop(&c.farthest)
	}
}

func (c *OptimalCache[K, V]) rebuild() {
	c.farthest = c.farthest[:0]
	for key := range c.resident {
		c.farthest = append(c.farthest, nextUse[K]{key: key, next: c.nextUse(key)})
	}
	heap.Init(&c.farthest)
}

// Lookup returns the value cached for key without updating the cache.
func (c *OptimalCache[K, V]) Lookup(key K) (V, bool) {
	v, ok := c.resident[key]
	return v, ok
}

// Hits returns the number of hits recorded by Access.
func (c *OptimalCache[K, V]) Hits() int64 {
	return c.hits
}

// Position returns the number of requests replayed so far.
func (c *OptimalCache[K, V]) Position() int {
	return c.position
}

// Remaining returns the number of requests left in the trace.
func (c *OptimalCache[K, V]) Remaining() int {
	return len(c.trace) - c.position
}

// Capacity returns the maximum number of items the cache can hold.
func (c *OptimalCache[K, V]) Capacity() int {
	return c.capacity
}

// Len returns the current number of resident items.
func (c *OptimalCache[K, V]) Len() int {
	return len(c.resident)
}

// Algorithm returns the name of the eviction algorithm used by the cache.
func (c *OptimalCache[K, V]) Algorithm() string {
	return "optimal"
}

// Keys returns the resident keys, in no particular order.
func (c *OptimalCache[K, V]) Keys() []K {
	keys := make([]K, 0, len(c.resident))
	for k := range c.resident {
		keys = append(keys, k)
	}
	return keys
}
