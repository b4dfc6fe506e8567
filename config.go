package hotsim

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/samber/hotsim/pkg/sharded"
)

func assertValue(ok bool, msg string) {
	if !ok {
		panic(msg)
	}
}

// NewSimulator starts the configuration of a simulator comparing policies at
// the given capacity. The capacity is validated by Build.
func NewSimulator[K comparable, V any](capacity int) SimulatorConfig[K, V] {
	return SimulatorConfig[K, V]{
		capacity:        capacity,
		algorithms:      Algorithms,
		shards:          1,
		optimalityCheck: true,
	}
}

// SimulatorConfig is an immutable builder: every With method returns a copy.
type SimulatorConfig[K comparable, V any] struct {
	capacity   int
	algorithms []Algorithm

	shards uint64
	hasher sharded.Hasher[K]

	prometheusMetricsEnabled bool
	prometheusMetricsName    string

	logger *slog.Logger

	optimalityCheck bool
}

// WithCapacity replaces the capacity.
func (cfg SimulatorConfig[K, V]) WithCapacity(capacity int) SimulatorConfig[K, V] {
	cfg.capacity = capacity
	return cfg
}

// WithAlgorithms selects the policies to replay. Duplicates are ignored.
// Defaults to every registered algorithm.
func (cfg SimulatorConfig[K, V]) WithAlgorithms(algorithms ...Algorithm) SimulatorConfig[K, V] {
	assertValue(len(algorithms) > 0, "at least one algorithm must be selected")

	cfg.algorithms = make([]Algorithm, 0, len(algorithms))
	seen := map[Algorithm]bool{}
	for _, algorithm := range algorithms {
		if !seen[algorithm] {
			seen[algorithm] = true
			cfg.algorithms = append(cfg.algorithms, algorithm)
		}
	}
	return cfg
}

// WithShards splits the capacity over shards independent engines per
// algorithm, each replaying the keys hashed to it.
func (cfg SimulatorConfig[K, V]) WithShards(shards uint64, hasher sharded.Hasher[K]) SimulatorConfig[K, V] {
	assertValue(shards >= 1, "shards must be a positive value")
	assertValue(shards == 1 || hasher != nil, "hasher must be provided when shards > 1")

	cfg.shards = shards
	cfg.hasher = hasher
	return cfg
}

// WithPrometheusMetrics enables metric collection. name is used as a constant
// label so that several simulators can be registered together.
func (cfg SimulatorConfig[K, V]) WithPrometheusMetrics(name string) SimulatorConfig[K, V] {
	assertValue(name != "", "name must be a non-empty string")

	cfg.prometheusMetricsEnabled = true
	cfg.prometheusMetricsName = name
	return cfg
}

// WithLogger sets the logger. Logs are discarded by default.
func (cfg SimulatorConfig[K, V]) WithLogger(logger *slog.Logger) SimulatorConfig[K, V] {
	cfg.logger = logger
	return cfg
}

// WithoutOptimalityCheck disables the check that no online policy beats the
// optimal one. The check only runs when Optimal is selected.
func (cfg SimulatorConfig[K, V]) WithoutOptimalityCheck() SimulatorConfig[K, V] {
	cfg.optimalityCheck = false
	return cfg
}

// Build validates the configuration and returns the simulator.
func (cfg SimulatorConfig[K, V]) Build() (*Simulator[K, V], error) {
	if err := validateCapacity(cfg.capacity, cfg.shards); err != nil {
		return nil, err
	}
	for _, algorithm := range cfg.algorithms {
		if _, err := ParseAlgorithm(string(algorithm)); err != nil {
			return nil, err
		}
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return newSimulator(cfg, logger), nil
}

func validateCapacity(capacity int, shards uint64) error {
	if capacity < 1 {
		return fmt.Errorf("%w: must be >=1 but %d was requested", ErrInvalidCapacity, capacity)
	}
	if uint64(capacity) < shards {
		return fmt.Errorf("%w: %d shards need a capacity of at least %d but %d was requested", ErrInvalidCapacity, shards, shards, capacity)
	}
	return nil
}
