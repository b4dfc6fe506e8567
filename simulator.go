package hotsim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/hotsim/pkg/base"
	"github.com/samber/hotsim/pkg/metrics"
	"github.com/samber/hotsim/pkg/sharded"
)

var _ prometheus.Collector = (*Simulator[string, int])(nil)

func newSimulator[K comparable, V any](cfg SimulatorConfig[K, V], logger *slog.Logger) *Simulator[K, V] {
	collectors := make(map[Algorithm]metrics.Collector, len(cfg.algorithms))
	for _, algorithm := range cfg.algorithms {
		collectors[algorithm] = metrics.NewCollector(cfg.prometheusMetricsEnabled, cfg.prometheusMetricsName, string(algorithm), cfg.capacity)
	}

	return &Simulator[K, V]{
		capacity:        cfg.capacity,
		algorithms:      cfg.algorithms,
		shards:          cfg.shards,
		hasher:          cfg.hasher,
		optimalityCheck: cfg.optimalityCheck,
		logger:          logger,
		collectors:      collectors,
	}
}

// Simulator replays a trace with several policies at one capacity and
// compares their hit counts.
//
// A Simulator is safe for concurrent use: every Run builds fresh engines.
// Metrics accumulate over runs.
type Simulator[K comparable, V any] struct {
	capacity   int
	algorithms []Algorithm

	shards uint64
	hasher sharded.Hasher[K]

	optimalityCheck bool

	logger     *slog.Logger
	collectors map[Algorithm]metrics.Collector
}

// Capacity returns the capacity every policy is replayed at.
func (s *Simulator[K, V]) Capacity() int {
	return s.capacity
}

// Algorithms returns the replayed algorithms, in result order.
func (s *Simulator[K, V]) Algorithms() []Algorithm {
	return append([]Algorithm(nil), s.algorithms...)
}

// NewPolicy builds the engine Run would replay for algorithm: sharded when
// configured, and instrumented. keys is the trace the optimal policy plans for.
func (s *Simulator[K, V]) NewPolicy(algorithm Algorithm, keys []K) (*metrics.InstrumentedPolicy[K, V], error) {
	collector, ok := s.collectors[algorithm]
	if !ok {
		return nil, fmt.Errorf("%w: %q is not selected", ErrUnknownAlgorithm, string(algorithm))
	}
	onEviction := metrics.EvictionCallback[K, V](collector, nil)

	if s.shards == 1 {
		policy, err := NewPolicy(algorithm, s.capacity, keys, onEviction)
		if err != nil {
			return nil, err
		}
		return metrics.NewInstrumentedPolicy(policy, collector), nil
	}

	capacities := sharded.SplitCapacity(s.capacity, s.shards)
	var parts [][]K
	if algorithm == Optimal {
		parts = sharded.Partition(keys, s.shards, s.hasher)
	}

	policy, err := sharded.NewShardedPolicy[K, V](
		s.shards,
		func(shardIndex int) (base.ReplacementPolicy[K, V], error) {
			var shardKeys []K
			if parts != nil {
				shardKeys = parts[shardIndex]
			}
			return NewPolicy(algorithm, capacities[shardIndex], shardKeys, onEviction)
		},
		s.hasher,
	)
	if err != nil {
		return nil, err
	}
	return metrics.NewInstrumentedPolicy[K, V](policy, collector), nil
}

// Run replays trace with every selected algorithm, concurrently, and returns
// one Result per algorithm in the configured order.
//
// When the optimal policy is selected and the check is enabled, an online
// policy scoring more hits than it fails the run with ErrOptimalityViolated.
// Results are returned along with that error.
func (s *Simulator[K, V]) Run(ctx context.Context, trace []base.Request[K, V]) ([]Result, error) {
	keys := base.Keys(trace)

	policies := make([]*metrics.InstrumentedPolicy[K, V], len(s.algorithms))
	for i, algorithm := range s.algorithms {
		policy, err := s.NewPolicy(algorithm, keys)
		if err != nil {
			return nil, err
		}
		policies[i] = policy
	}

	s.logger.Debug("replay started",
		slog.Int("capacity", s.capacity),
		slog.Int("requests", len(trace)),
		slog.Int("algorithms", len(s.algorithms)),
		slog.Uint64("shards", s.shards),
	)

	results := make([]Result, len(policies))
	errs := make([]error, len(policies))

	var wg sync.WaitGroup
	for i := range policies {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = Replay[K, V](ctx, policies[i], trace)
		}(i)
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		s.logger.Error("replay failed", slog.Int("capacity", s.capacity), slog.Any("error", err))
		return nil, err
	}

	for _, r := range results {
		s.logger.Info("replay finished",
			slog.String("algorithm", r.Algorithm.String()),
			slog.Int("capacity", r.Capacity),
			slog.Int("requests", r.Accesses),
			slog.Int64("hits", r.Hits),
			slog.Float64("hit_ratio", r.HitRatio()),
			slog.Duration("duration", r.Duration),
		)
	}

	if s.optimalityCheck {
		if err := checkOptimality(results); err != nil {
			s.logger.Error("optimality check failed", slog.Int("capacity", s.capacity), slog.Any("error", err))
			return results, err
		}
	}

	return results, nil
}

func checkOptimality(results []Result) error {
	var best *Result
	for i := range results {
		if results[i].Algorithm == Optimal {
			best = &results[i]
		}
	}
	if best == nil {
		return nil
	}

	var errs []error
	for _, r := range results {
		if r.Algorithm.Online() && r.Hits > best.Hits {
			errs = append(errs, fmt.Errorf("%w: %s scored %d hits, optimal %d", ErrOptimalityViolated, r.Algorithm, r.Hits, best.Hits))
		}
	}
	return errors.Join(errs...)
}

// Describe implements prometheus.Collector.
func (s *Simulator[K, V]) Describe(ch chan<- *prometheus.Desc) {
	for _, algorithm := range s.algorithms {
		if c, ok := s.collectors[algorithm].(prometheus.Collector); ok {
			c.Describe(ch)
		}
	}
}

// Collect implements prometheus.Collector.
func (s *Simulator[K, V]) Collect(ch chan<- prometheus.Metric) {
	for _, algorithm := range s.algorithms {
		if c, ok := s.collectors[algorithm].(prometheus.Collector); ok {
			c.Collect(ch)
		}
	}
}

// Sweep runs the simulator described by cfg once per capacity, in order, and
// concatenates the results.
func Sweep[K comparable, V any](ctx context.Context, cfg SimulatorConfig[K, V], trace []base.Request[K, V], capacities []int) ([]Result, error) {
	var out []Result
	for _, capacity := range capacities {
		simulator, err := cfg.WithCapacity(capacity).Build()
		if err != nil {
			return nil, err
		}

		results, err := simulator.Run(ctx, trace)
		if err != nil {
			return nil, fmt.Errorf("capacity %d: %w", capacity, err)
		}
		out = append(out, results...)
	}
	return out, nil
}
