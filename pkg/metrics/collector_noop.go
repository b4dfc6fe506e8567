package metrics

import (
	"github.com/samber/hotsim/pkg/base"
)

var _ Collector = (*NoOpCollector)(nil)

// NoOpCollector is a no-op implementation of Collector that does nothing.
// This provides better performance than conditional checks when metrics are disabled.
type NoOpCollector struct{}

func (n *NoOpCollector) IncHit()                                              {}
func (n *NoOpCollector) IncMiss()                                             {}
func (n *NoOpCollector) IncEviction(reason base.EvictionReason)               {}
func (n *NoOpCollector) UpdateLength(length int64)                            {}
func (n *NoOpCollector) UpdateSizeBytes(bytes int64)                          {}
func (n *NoOpCollector) UpdateAdaptiveTarget(p float64)                       {}
