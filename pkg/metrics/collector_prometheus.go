package metrics

import (
	"math"
	"strconv"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/hotsim/pkg/base"
)

var _ Collector = (*PrometheusCollector)(nil)
var _ prometheus.Collector = (*PrometheusCollector)(nil)

// PrometheusCollector implements Collector using Prometheus metrics.
type PrometheusCollector struct {
	name   string
	labels prometheus.Labels

	// Counters - use atomic operations for lock-free performance
	evictionCount map[base.EvictionReason]*int64 // fixed set of reasons, never written after construction
	hitCount      int64
	missCount     int64

	// Gauges
	sizeBytes      int64
	length         int64
	adaptiveTarget uint64 // math.Float64bits of p

	// Static configuration gauges
	settingsCapacity  prometheus.Gauge
	settingsAlgorithm prometheus.Gauge

	// Prometheus metric descriptors
	evictionDesc *prometheus.Desc
	hitDesc      *prometheus.Desc
	missDesc     *prometheus.Desc
	sizeDesc     *prometheus.Desc
	lengthDesc   *prometheus.Desc
	targetDesc   *prometheus.Desc
}

// NewPrometheusCollector creates a new Prometheus-based metric collector.
// name, algorithm and capacity become constant labels, so that several
// engines replayed side by side register distinct series.
func NewPrometheusCollector(name string, algorithm string, capacity int) *PrometheusCollector {
	labels := prometheus.Labels{
		"name":      name,
		"algorithm": algorithm,
		"capacity":  strconv.Itoa(capacity),
	}

	collector := &PrometheusCollector{
		name:          name,
		labels:        labels,
		evictionCount: make(map[base.EvictionReason]*int64, len(base.EvictionReasons)),
	}

	for _, reason := range base.EvictionReasons {
		var count int64
		collector.evictionCount[reason] = &count
	}

	collector.evictionDesc = prometheus.NewDesc(
		"hotsim_eviction_total",
		"Total number of entries evicted by the policy",
		[]string{"reason"}, labels,
	)
	collector.hitDesc = prometheus.NewDesc(
		"hotsim_hit_total",
		"Total number of replayed requests that were hits",
		nil, labels,
	)
	collector.missDesc = prometheus.NewDesc(
		"hotsim_miss_total",
		"Total number of replayed requests that were misses",
		nil, labels,
	)
	collector.sizeDesc = prometheus.NewDesc(
		"hotsim_size_bytes",
		"Estimated memory held by the policy, including ghost entries",
		nil, labels,
	)
	collector.lengthDesc = prometheus.NewDesc(
		"hotsim_length",
		"Current number of resident entries",
		nil, labels,
	)
	collector.targetDesc = prometheus.NewDesc(
		"hotsim_arc_target",
		"Adaptive target size of the ARC recency list (p)",
		nil, labels,
	)

	collector.settingsCapacity = prometheus.NewGauge(prometheus.GaugeOpts{
		Name:        "hotsim_settings_capacity",
		Help:        "Maximum number of entries the policy can hold",
		ConstLabels: labels,
	})
	collector.settingsCapacity.Set(float64(capacity))

	collector.settingsAlgorithm = prometheus.NewGauge(prometheus.GaugeOpts{
		Name:        "hotsim_settings_algorithm",
		Help:        "Replacement algorithm (0=arc, 1=optimal, 2=lru, 3=hashicorp-arc, 4=fifo, 5=sieve, 6=2q)",
		ConstLabels: labels,
	})
	collector.settingsAlgorithm.Set(algorithmValue(algorithm))

	return collector
}

// IncHit atomically increments the hit counter.
func (p *PrometheusCollector) IncHit() {
	atomic.AddInt64(&p.hitCount, 1)
}

// IncMiss atomically increments the miss counter.
func (p *PrometheusCollector) IncMiss() {
	atomic.AddInt64(&p.missCount, 1)
}

// IncEviction atomically increments the eviction counter for the given reason.
// Unknown reasons are ignored.
func (p *PrometheusCollector) IncEviction(reason base.EvictionReason) {
	if counter, ok := p.evictionCount[reason]; ok {
		atomic.AddInt64(counter, 1)
	}
}

// UpdateLength atomically updates the number of resident entries.
func (p *PrometheusCollector) UpdateLength(length int64) {
	atomic.StoreInt64(&p.length, length)
}

// UpdateSizeBytes atomically updates the memory estimate.
func (p *PrometheusCollector) UpdateSizeBytes(bytes int64) {
	atomic.StoreInt64(&p.sizeBytes, bytes)
}

// UpdateAdaptiveTarget atomically updates the ARC target p.
func (p *PrometheusCollector) UpdateAdaptiveTarget(target float64) {
	atomic.StoreUint64(&p.adaptiveTarget, math.Float64bits(target))
}

// Describe implements prometheus.Collector interface.
func (p *PrometheusCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- p.evictionDesc
	ch <- p.hitDesc
	ch <- p.missDesc
	ch <- p.sizeDesc
	ch <- p.lengthDesc
	ch <- p.targetDesc
	ch <- p.settingsCapacity.Desc()
	ch <- p.settingsAlgorithm.Desc()
}

// Collect implements prometheus.Collector interface.
func (p *PrometheusCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(
		p.hitDesc,
		prometheus.CounterValue,
		float64(atomic.LoadInt64(&p.hitCount)),
	)

	ch <- prometheus.MustNewConstMetric(
		p.missDesc,
		prometheus.CounterValue,
		float64(atomic.LoadInt64(&p.missCount)),
	)

	ch <- prometheus.MustNewConstMetric(
		p.sizeDesc,
		prometheus.GaugeValue,
		float64(atomic.LoadInt64(&p.sizeBytes)),
	)

	ch <- prometheus.MustNewConstMetric(
		p.lengthDesc,
		prometheus.GaugeValue,
		float64(atomic.LoadInt64(&p.length)),
	)

	ch <- prometheus.MustNewConstMetric(
		p.targetDesc,
		prometheus.GaugeValue,
		math.Float64frombits(atomic.LoadUint64(&p.adaptiveTarget)),
	)

	for reason, counter := range p.evictionCount {
		ch <- prometheus.MustNewConstMetric(
			p.evictionDesc,
			prometheus.CounterValue,
			float64(atomic.LoadInt64(counter)),
			string(reason),
		)
	}

	p.settingsCapacity.Collect(ch)
	p.settingsAlgorithm.Collect(ch)
}
