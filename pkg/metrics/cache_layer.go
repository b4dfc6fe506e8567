package metrics

import (
	"github.com/samber/hotsim/pkg/base"
)

var _ base.ReplacementPolicy[string, int] = (*InstrumentedPolicy[string, int])(nil)

// NewInstrumentedPolicy creates a new metrics wrapper around an existing policy.
func NewInstrumentedPolicy[K comparable, V any](policy base.ReplacementPolicy[K, V], metrics Collector) *InstrumentedPolicy[K, V] {
	return &InstrumentedPolicy[K, V]{
		policy:  policy,
		metrics: metrics,
	}
}

// InstrumentedPolicy wraps any ReplacementPolicy and counts hits and misses.
// Gauges are refreshed by Sync, which may be expensive.
type InstrumentedPolicy[K comparable, V any] struct {
	policy  base.ReplacementPolicy[K, V]
	metrics Collector
}

// Access delegates to the wrapped policy and tracks hit/miss metrics.
func (m *InstrumentedPolicy[K, V]) Access(key K, value V) bool {
	hit := m.policy.Access(key, value)
	if hit {
		m.metrics.IncHit()
	} else {
		m.metrics.IncMiss()
	}
	return hit
}

// Sync refreshes the length, size and adaptive target gauges from the wrapped policy.
func (m *InstrumentedPolicy[K, V]) Sync() {
	m.metrics.UpdateLength(int64(m.policy.Len()))

	if sized, ok := m.policy.(interface{ SizeBytes() int64 }); ok {
		m.metrics.UpdateSizeBytes(sized.SizeBytes())
	}
	if adaptive, ok := m.policy.(interface{ P() float64 }); ok {
		m.metrics.UpdateAdaptiveTarget(adaptive.P())
	}
}

// Unwrap returns the wrapped policy.
func (m *InstrumentedPolicy[K, V]) Unwrap() base.ReplacementPolicy[K, V] {
	return m.policy
}

func (m *InstrumentedPolicy[K, V]) Lookup(key K) (V, bool) { return m.policy.Lookup(key) }
func (m *InstrumentedPolicy[K, V]) Hits() int64            { return m.policy.Hits() }
func (m *InstrumentedPolicy[K, V]) Capacity() int          { return m.policy.Capacity() }
func (m *InstrumentedPolicy[K, V]) Len() int               { return m.policy.Len() }
func (m *InstrumentedPolicy[K, V]) Algorithm() string      { return m.policy.Algorithm() }
