package safe

import (
	"sync"

	"github.com/samber/hotsim/pkg/base"
)

// NewSafePolicy creates a thread-safe wrapper around an existing replacement policy.
// Every engine mutates its lists on Access, so only Lookup and the counters
// are served under the shared read lock.
func NewSafePolicy[K comparable, V any](policy base.ReplacementPolicy[K, V]) *SafePolicy[K, V] {
	return &SafePolicy[K, V]{
		ReplacementPolicy: policy,
		RWMutex:           sync.RWMutex{},
	}
}

// SafePolicy is a thread-safe wrapper around any replacement policy.
// It allows multiple concurrent readers but only one writer at a time.
type SafePolicy[K comparable, V any] struct {
	base.ReplacementPolicy[K, V]
	sync.RWMutex
}

var _ base.ReplacementPolicy[string, int] = (*SafePolicy[string, int])(nil)

// Access records one request with an exclusive write lock.
func (c *SafePolicy[K, V]) Access(key K, value V) bool {
	c.Lock()
	defer c.Unlock()
	return c.ReplacementPolicy.Access(key, value)
}

// Lookup reads a resident value using a shared read lock.
// Engines guarantee Lookup does not mutate their state.
func (c *SafePolicy[K, V]) Lookup(key K) (V, bool) {
	c.RLock()
	defer c.RUnlock()
	return c.ReplacementPolicy.Lookup(key)
}

// Hits returns the hit count using a shared read lock.
func (c *SafePolicy[K, V]) Hits() int64 {
	c.RLock()
	defer c.RUnlock()
	return c.ReplacementPolicy.Hits()
}

// Len returns the number of resident keys using a shared read lock.
func (c *SafePolicy[K, V]) Len() int {
	c.RLock()
	defer c.RUnlock()
	return c.ReplacementPolicy.Len()
}

// Capacity is immutable and doesn't require locking.
func (c *SafePolicy[K, V]) Capacity() int {
	return c.ReplacementPolicy.Capacity()
}

// Algorithm is immutable and doesn't require locking.
func (c *SafePolicy[K, V]) Algorithm() string {
	return c.ReplacementPolicy.Algorithm()
}

// SizeBytes returns the memory estimate of the wrapped policy, or 0 when it
// doesn't expose one.
func (c *SafePolicy[K, V]) SizeBytes() int64 {
	sized, ok := c.ReplacementPolicy.(interface{ SizeBytes() int64 })
	if !ok {
		return 0
	}

	c.RLock()
	defer c.RUnlock()
	return sized.SizeBytes()
}

// Unwrap returns the wrapped policy. Callers must not use it concurrently
// with the wrapper.
func (c *SafePolicy[K, V]) Unwrap() base.ReplacementPolicy[K, V] {
	return c.ReplacementPolicy
}
