package metrics

import (
	"github.com/samber/hotsim/pkg/base"
)

// NewCollector returns a Prometheus collector when enabled, a no-op one otherwise.
func NewCollector(enabled bool, name string, algorithm string, capacity int) Collector {
	if !enabled {
		return &NoOpCollector{}
	}
	return NewPrometheusCollector(name, algorithm, capacity)
}

// Collector defines the interface for metric collection operations.
// This allows for both real Prometheus metrics and no-op implementations.
type Collector interface {
	IncHit()
	IncMiss()
	IncEviction(reason base.EvictionReason)
	UpdateLength(length int64)
	UpdateSizeBytes(bytes int64)
	UpdateAdaptiveTarget(p float64)
}

// EvictionCallback returns a callback counting evictions in c before calling next, if any.
func EvictionCallback[K comparable, V any](c Collector, next base.EvictionCallback[K, V]) base.EvictionCallback[K, V] {
	return func(reason base.EvictionReason, key K, value V) {
		c.IncEviction(reason)
		if next != nil {
			next(reason, key, value)
		}
	}
}
