package twoqueue

import (
	"fmt"

	"github.com/DmitriyVTitov/size"
	"github.com/samber/hotsim/internal"
	"github.com/samber/hotsim/internal/arena"
	"github.com/samber/hotsim/pkg/base"
)

const (
	// Default2QRecentRatio is the share of the capacity above which keys
	// admitted once are paged out before frequent ones.
	Default2QRecentRatio = 0.25

	// Default2QGhostEntries is the number of ghost keys remembered, as a
	// share of the capacity.
	Default2QGhostEntries = 0.50
)

const (
	listRecent   arena.ListID = iota // A1in: resident, seen once, FIFO
	listFrequent                     // Am: resident, seen again, LRU
	listGhost                        // A1out: keys paged out of A1in, FIFO
	listCount
)

type entry[K comparable, V any] struct {
	key   K
	value V
}

// New2QCache creates a new 2Q cache with the specified capacity and the default ratios.
func New2QCache[K comparable, V any](capacity int) (*TwoQueueCache[K, V], error) {
	return New2QCacheWithRatioAndEvictionCallback[K, V](capacity, Default2QRecentRatio, Default2QGhostEntries, nil)
}

// New2QCacheWithEvictionCallback creates a new 2Q cache with the default ratios and an eviction callback.
func New2QCacheWithEvictionCallback[K comparable, V any](capacity int, onEviction base.EvictionCallback[K, V]) (*TwoQueueCache[K, V], error) {
	return New2QCacheWithRatioAndEvictionCallback(capacity, Default2QRecentRatio, Default2QGhostEntries, onEviction)
}

// New2QCacheWithRatioAndEvictionCallback creates a new 2Q cache. recentRatio
// sizes A1in (Kin), ghostRatio sizes A1out (Kout); both are at least 1.
func New2QCacheWithRatioAndEvictionCallback[K comparable, V any](capacity int, recentRatio, ghostRatio float64, onEviction base.EvictionCallback[K, V]) (*TwoQueueCache[K, V], error) {
	if err := base.ValidateCapacity(capacity); err != nil {
		return nil, err
	}
	if recentRatio < 0.0 || recentRatio > 1.0 {
		return nil, fmt.Errorf("recentRatio must be between 0 and 1, got %v", recentRatio)
	}
	if ghostRatio < 0.0 || ghostRatio > 1.0 {
		return nil, fmt.Errorf("ghostRatio must be between 0 and 1, got %v", ghostRatio)
	}

	return &TwoQueueCache[K, V]{
		capacity:       capacity,
		recentCapacity: max(1, int(float64(capacity)*recentRatio)),
		ghostCapacity:  max(1, int(float64(capacity)*ghostRatio)),
		slots:          arena.New[entry[K, V]](int(listCount), capacity),
		index:          make(map[K]arena.Handle, capacity),
		onEviction:     onEviction,
	}, nil
}

// TwoQueueCache implements the full 2Q algorithm of Johnson and Shasha.
// Keys seen once live in a FIFO (A1in) so that a burst of new keys cannot
// flush the keys seen again (Am, an LRU). Keys paged out of A1in are
// remembered in a ghost FIFO (A1out): a miss on one of them goes straight to Am.
//
// It is not safe for concurrent access.
type TwoQueueCache[K comparable, V any] struct {
	noCopy internal.NoCopy

	capacity       int
	recentCapacity int // Kin
	ghostCapacity  int // Kout
	hits           int64

	slots *arena.Arena[entry[K, V]]
	index map[K]arena.Handle

	onEviction base.EvictionCallback[K, V]
}

var _ base.ReplacementPolicy[string, int] = (*TwoQueueCache[string, int])(nil)

// Access records a request for key.
// A hit in A1in keeps the FIFO order, a hit in Am moves the key to its front.
func (c *TwoQueueCache[K, V]) Access(key K, value V) bool {
	h, ok := c.index[key]
	if !ok {
		c.reclaim()
		h = c.slots.Alloc(entry[K, V]{key: key, value: value})
		c.slots.PushFront(listRecent, h)
		c.index[key] = h
		return false
	}

	switch c.slots.ListOf(h) {
	case listFrequent:
		c.slots.MoveToFront(listFrequent, h)
		c.hits++
		return true
	case listRecent:
		c.hits++
		return true
	}

	// ghost hit: the key was paged out too early
	c.slots.Remove(h)
	c.reclaim()
	c.slots.Value(h).value = value
	c.slots.PushFront(listFrequent, h)
	return false
}

// reclaim frees one resident slot when the cache is full.
func (c *TwoQueueCache[K, V]) reclaim() {
	recent := c.slots.Len(listRecent)
	frequent := c.slots.Len(listFrequent)
	if recent+frequent < c.capacity {
		return
	}

	if recent > c.recentCapacity || frequent == 0 {
		h, _ := c.slots.Back(listRecent)
		e := c.slots.Value(h)
		if c.onEviction != nil {
			c.onEviction(base.EvictionReasonCapacity, e.key, e.value)
		}
		var zero V
		e.value = zero
		c.slots.Remove(h)
		c.slots.PushFront(listGhost, h)

		if c.slots.Len(listGhost) > c.ghostCapacity {
			c.drop(listGhost, base.EvictionReasonGhost)
		}
		return
	}

	c.drop(listFrequent, base.EvictionReasonCapacity)
}

func (c *TwoQueueCache[K, V]) drop(list arena.ListID, reason base.EvictionReason) {
	h, ok := c.slots.Back(list)
	internal.Assert(ok, "2q: drop from an empty list")

	e := *c.slots.Value(h)
	c.slots.Remove(h)
	c.slots.Release(h)
	delete(c.index, e.key)

	if c.onEviction != nil {
		c.onEviction(reason, e.key, e.value)
	}
}

// Lookup returns the value of a resident key. Ghost keys are not resident.
func (c *TwoQueueCache[K, V]) Lookup(key K) (value V, ok bool) {
	h, hit := c.index[key]
	if !hit || c.slots.ListOf(h) == listGhost {
		return value, false
	}
	return c.slots.Value(h).value, true
}

// ListLens returns the lengths of A1in, Am and A1out.
func (c *TwoQueueCache[K, V]) ListLens() (recent, frequent, ghost int) {
	return c.slots.Len(listRecent), c.slots.Len(listFrequent), c.slots.Len(listGhost)
}

// Hits returns the number of hits so far.
func (c *TwoQueueCache[K, V]) Hits() int64 {
	return c.hits
}

// Capacity returns the maximum number of resident keys.
func (c *TwoQueueCache[K, V]) Capacity() int {
	return c.capacity
}

// Algorithm returns the name of the eviction algorithm used by the cache.
func (c *TwoQueueCache[K, V]) Algorithm() string {
	return "2q"
}

// Len returns the number of resident keys. Ghost keys are not counted.
func (c *TwoQueueCache[K, V]) Len() int {
	return c.slots.Len(listRecent) + c.slots.Len(listFrequent)
}

// SizeBytes returns the estimated memory held by the cache, ghost keys included.
func (c *TwoQueueCache[K, V]) SizeBytes() int64 {
	return int64(size.Of(c.index)) + int64(size.Of(c.slots))
}
