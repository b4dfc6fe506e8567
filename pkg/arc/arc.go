package arc

import (
	"github.com/DmitriyVTitov/size"
	"github.com/samber/hotsim/internal"
	"github.com/samber/hotsim/internal/arena"
	"github.com/samber/hotsim/pkg/base"
)

// Lists of the cache. The list holding a slot doubles as the location tag of
// its key: a key is found in exactly one of them, or nowhere.
const (
	listT1 arena.ListID = iota // resident, seen once
	listT2                     // resident, seen at least twice
	listB1                     // ghosts evicted from T1
	listB2                     // ghosts evicted from T2
	listCount

	notFound = arena.Detached
)

// entry represents a key-value pair stored in the ARC cache.
// Ghost entries keep the key and drop the value.
type entry[K comparable, V any] struct {
	key   K
	value V
}

// NewARCCache creates a new ARC cache with the specified capacity.
// A capacity lower than 1 is rejected with base.ErrInvalidCapacity.
func NewARCCache[K comparable, V any](capacity int) (*ARCCache[K, V], error) {
	return NewARCCacheWithEvictionCallback[K, V](capacity, nil)
}

// NewARCCacheWithEvictionCallback creates a new ARC cache with the specified capacity and eviction callback.
// The callback is called when a resident entry leaves the cache (base.EvictionReasonCapacity)
// and when a ghost record is forgotten (base.EvictionReasonGhost).
func NewARCCacheWithEvictionCallback[K comparable, V any](capacity int, onEviction base.EvictionCallback[K, V]) (*ARCCache[K, V], error) {
	if err := base.ValidateCapacity(capacity); err != nil {
		return nil, err
	}

	return &ARCCache[K, V]{
		capacity: capacity,
		p:        0, // starts fully biased toward recency

		// T1+T2+B1+B2 never exceeds 2*capacity
		slots: arena.New[entry[K, V]](int(listCount), 2*capacity),
		index: make(map[K]arena.Handle, 2*capacity),

		onEviction: onEviction,
	}, nil
}

// ARCCache is an Adaptive Replacement Cache.
// It balances between recency and frequency with four lists:
// - T1: resident keys seen once since they entered the cache
// - T2: resident keys seen at least twice
// - B1: ghost keys recently evicted from T1
// - B2: ghost keys recently evicted from T2
//
// The adaptive parameter 'p' is the target size of T1. A hit in B1 grows it,
// a hit in B2 shrinks it.
//
// Entries live in a slot arena; the index maps every key to its slot, and the
// slot records which list holds it. Lists are never scanned to locate a key.
//
// It is not safe for concurrent access and should be wrapped with a thread-safe layer if needed.
type ARCCache[K comparable, V any] struct {
	noCopy internal.NoCopy

	capacity int
	p        float64
	hits     int64

	slots *arena.Arena[entry[K, V]]
	index map[K]arena.Handle

	onEviction base.EvictionCallback[K, V]
}

var _ base.ReplacementPolicy[string, int] = (*ARCCache[string, int])(nil)

// Access records a request for key and reports whether it was a hit.
// On a miss, value is cached. On a hit, the cached value is kept.
// Time complexity: O(1) average case.
func (c *ARCCache[K, V]) Access(key K, value V) bool {
	h, where := c.locate(key)

	hit := false
	switch where {
	case listT1, listT2:
		c.onHit(h)
		hit = true
	case listB1:
		c.onGhostHitB1(h, value)
	case listB2:
		c.onGhostHitB2(h, value)
	case notFound:
		c.onMiss(key, value)
	}

	c.checkInvariants()
	return hit
}

// locate returns the slot and list of key. The list is notFound for unknown keys.
func (c *ARCCache[K, V]) locate(key K) (arena.Handle, arena.ListID) {
	h, ok := c.index[key]
	if !ok {
		return arena.Nil, notFound
	}
	return h, c.slots.ListOf(h)
}

// onHit promotes a resident entry to the head of T2.
func (c *ARCCache[K, V]) onHit(h arena.Handle) {
	c.slots.MoveToFront(listT2, h)
	c.hits++
}

// onGhostHitB1 handles a request for a key recently evicted from T1:
// recency was under-provisioned, so the T1 target grows.
func (c *ARCCache[K, V]) onGhostHitB1(h arena.Handle, value V) {
	b1 := c.slots.Len(listB1)
	b2 := c.slots.Len(listB2)
	c.p = min(c.p+ratio(b2, b1), float64(c.capacity))

	c.replace()
	c.revive(h, value)
}

// onGhostHitB2 handles a request for a key recently evicted from T2:
// frequency was under-provisioned, so the T1 target shrinks.
func (c *ARCCache[K, V]) onGhostHitB2(h arena.Handle, value V) {
	b1 := c.slots.Len(listB1)
	b2 := c.slots.Len(listB2)
	c.p = max(c.p-ratio(b1, b2), 0)

	c.replace()
	c.revive(h, value)
}

// onMiss inserts a key found in no list at the head of T1, making room first.
func (c *ARCCache[K, V]) onMiss(key K, value V) {
	t1 := c.slots.Len(listT1)
	b1 := c.slots.Len(listB1)
	total := t1 + c.slots.Len(listT2) + b1 + c.slots.Len(listB2)

	switch {
	case t1+b1 == c.capacity:
		// recency history is full
		if t1 < c.capacity {
			c.dropTail(listB1)
			c.replace()
		} else {
			c.dropTail(listT1)
		}
	case total >= c.capacity:
		// resident set is full, trim ghost history before growing it
		if total == 2*c.capacity {
			c.dropTail(listB2)
		}
		c.replace()
	}

	h := c.slots.Alloc(entry[K, V]{key: key, value: value})
	c.slots.PushFront(listT1, h)
	c.index[key] = h
}

// replace demotes the tail of T1 or T2 to the head of its ghost list.
// T1 loses its tail when it outgrew its target p, or matches it while B2
// shows that frequency is paying off.
func (c *ARCCache[K, V]) replace() {
	t1 := c.slots.Len(listT1)
	if t1 >= 1 && (float64(t1) > c.p || (float64(t1) == c.p && c.slots.Len(listB2) > 0)) {
		c.demote(listT1, listB1)
	} else {
		c.demote(listT2, listB2)
	}
}

// demote moves the tail of a resident list to the head of a ghost list.
func (c *ARCCache[K, V]) demote(from, to arena.ListID) {
	h, ok := c.slots.Back(from)
	internal.Assert(ok, "arc: replace on an empty resident list")

	c.slots.Remove(h)
	e := c.slots.Value(h)
	key, value := e.key, e.value
	var zero V
	e.value = zero
	c.slots.PushFront(to, h)

	if c.onEviction != nil {
		c.onEviction(base.EvictionReasonCapacity, key, value)
	}
}

// revive moves a ghost entry to the head of T2 with a fresh value.
func (c *ARCCache[K, V]) revive(h arena.Handle, value V) {
	c.slots.Remove(h)
	c.slots.Value(h).value = value
	c.slots.PushFront(listT2, h)
}

// dropTail forgets the tail of a list entirely: its key leaves the index.
func (c *ARCCache[K, V]) dropTail(list arena.ListID) {
	h, ok := c.slots.Back(list)
	internal.Assert(ok, "arc: drop from an empty list")

	c.slots.Remove(h)
	e := *c.slots.Value(h)
	delete(c.index, e.key)
	c.slots.Release(h)

	if c.onEviction != nil {
		reason := base.EvictionReasonGhost
		if list == listT1 || list == listT2 {
			reason = base.EvictionReasonCapacity
		}
		c.onEviction(reason, e.key, e.value)
	}
}

// ratio returns max(1, num/den), or 1 when den is 0.
func ratio(num, den int) float64 {
	if den == 0 {
		return 1
	}
	return max(1, float64(num)/float64(den))
}

func (c *ARCCache[K, V]) checkInvariants() {
	t1 := c.slots.Len(listT1)
	t2 := c.slots.Len(listT2)
	b1 := c.slots.Len(listB1)
	b2 := c.slots.Len(listB2)

	internal.Assert(t1+t2 <= c.capacity, "arc: |T1|+|T2| exceeds capacity")
	internal.Assert(t1+b1 <= c.capacity, "arc: |T1|+|B1| exceeds capacity")
	internal.Assert(t1+t2+b1+b2 <= 2*c.capacity, "arc: directory exceeds 2*capacity")
	internal.Assert(t1+t2+b1+b2 == len(c.index), "arc: index out of sync with lists")
	internal.Assert(c.slots.Live() == len(c.index), "arc: slot leaked or released twice")
	internal.Assert(c.p >= 0 && c.p <= float64(c.capacity), "arc: p out of [0, capacity]")
}

// Lookup returns the value cached for key without updating the access order.
// Ghost keys are not resident and report false.
func (c *ARCCache[K, V]) Lookup(key K) (value V, ok bool) {
	h, where := c.locate(key)
	if where != listT1 && where != listT2 {
		return value, false
	}
	return c.slots.Value(h).value, true
}

// Hits returns the number of hits recorded by Access.
func (c *ARCCache[K, V]) Hits() int64 {
	return c.hits
}

// P returns the current target size of T1.
func (c *ARCCache[K, V]) P() float64 {
	return c.p
}

// ListLens returns the lengths of T1, T2, B1 and B2.
func (c *ARCCache[K, V]) ListLens() (t1, t2, b1, b2 int) {
	return c.slots.Len(listT1), c.slots.Len(listT2), c.slots.Len(listB1), c.slots.Len(listB2)
}

// Capacity returns the maximum number of items the cache can hold.
func (c *ARCCache[K, V]) Capacity() int {
	return c.capacity
}

// Algorithm returns the name of the eviction algorithm used by the cache.
func (c *ARCCache[K, V]) Algorithm() string {
	return "arc"
}

// Len returns the current number of resident items.
func (c *ARCCache[K, V]) Len() int {
	return c.slots.Len(listT1) + c.slots.Len(listT2)
}

// SizeBytes returns an estimate of the memory held by the index and the arena.
func (c *ARCCache[K, V]) SizeBytes() int64 {
	return int64(size.Of(c.index) + size.Of(c.slots))
}
