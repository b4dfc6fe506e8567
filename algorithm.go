package hotsim

import (
	"fmt"
	"strings"

	"github.com/samber/hotsim/pkg/arc"
	"github.com/samber/hotsim/pkg/base"
	"github.com/samber/hotsim/pkg/baseline"
	"github.com/samber/hotsim/pkg/fifo"
	"github.com/samber/hotsim/pkg/optimal"
	"github.com/samber/hotsim/pkg/sieve"
	"github.com/samber/hotsim/pkg/twoqueue"
)

// Algorithm names a replacement policy.
type Algorithm string

const (
	// ARC is the adaptive replacement cache of Megiddo and Modha.
	ARC Algorithm = "arc"
	// Optimal is Belady's MIN. It needs the trace upfront.
	Optimal Algorithm = "optimal"
	// LRU evicts the least recently used key.
	LRU Algorithm = "lru"
	// HashicorpARC is the ARC implementation of hashicorp/golang-lru, kept
	// as a reference point.
	HashicorpARC Algorithm = "hashicorp-arc"
	// FIFO evicts in admission order and ignores hits.
	FIFO Algorithm = "fifo"
	// SIEVE is FIFO with a visited bit and a moving hand.
	SIEVE Algorithm = "sieve"
	// TwoQueue is the 2Q algorithm of Johnson and Shasha.
	TwoQueue Algorithm = "2q"
)

// Algorithms lists every registered algorithm.
var Algorithms = []Algorithm{ARC, Optimal, LRU, HashicorpARC, FIFO, SIEVE, TwoQueue}

// ParseAlgorithm returns the algorithm named s, case insensitive.
func ParseAlgorithm(s string) (Algorithm, error) {
	name := Algorithm(strings.ToLower(strings.TrimSpace(s)))
	for _, algorithm := range Algorithms {
		if algorithm == name {
			return algorithm, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAlgorithm, s)
}

// Online reports whether the algorithm decides without knowing the future.
func (a Algorithm) Online() bool {
	return a != Optimal
}

func (a Algorithm) String() string {
	return string(a)
}

// NewPolicy builds an engine. trace is only read by the optimal policy, which
// must then be replayed with exactly these keys. onEviction may be nil and is
// ignored by HashicorpARC.
func NewPolicy[K comparable, V any](algorithm Algorithm, capacity int, trace []K, onEviction base.EvictionCallback[K, V]) (base.ReplacementPolicy[K, V], error) {
	switch algorithm {
	case ARC:
		cache, err := arc.NewARCCacheWithEvictionCallback(capacity, onEviction)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", algorithm, err)
		}
		return cache, nil
	case Optimal:
		cache, err := optimal.NewOptimalCacheWithEvictionCallback(capacity, trace, onEviction)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", algorithm, err)
		}
		return cache, nil
	case LRU:
		cache, err := baseline.NewLRUWithEvictionCallback(capacity, onEviction)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", algorithm, err)
		}
		return cache, nil
	case HashicorpARC:
		cache, err := baseline.NewHashicorpARC[K, V](capacity)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", algorithm, err)
		}
		return cache, nil
	case FIFO:
		cache, err := fifo.NewFIFOCacheWithEvictionCallback(capacity, onEviction)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", algorithm, err)
		}
		return cache, nil
	case SIEVE:
		cache, err := sieve.NewSIEVECacheWithEvictionCallback(capacity, onEviction)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", algorithm, err)
		}
		return cache, nil
	case TwoQueue:
		cache, err := twoqueue.New2QCacheWithEvictionCallback(capacity, onEviction)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", algorithm, err)
		}
		return cache, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, string(algorithm))
}
