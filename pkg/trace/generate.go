package trace

import (
	"fmt"
	"math/rand"

	"github.com/samber/hotsim/pkg/base"
)

// Generator produces a synthetic trace of n requests for a cache of the given capacity.
type Generator func(capacity int, n int) (*Trace, error)

// Sequential requests keys 0, 1, 2... without repetition. Every policy scores 0 hits.
func Sequential(capacity int, n int) (*Trace, error) {
	if err := base.ValidateCapacity(capacity); err != nil {
		return nil, err
	}

	keys := make([]int, n)
	for i := range keys {
		keys[i] = i
	}
	return &Trace{Capacity: capacity, Keys: keys}, nil
}

// NewLoop returns a Generator cycling over period distinct keys. With a period
// slightly above capacity, LRU scores 0 hits while MIN keeps capacity-1 keys.
func NewLoop(period int) Generator {
	return func(capacity int, n int) (*Trace, error) {
		if err := base.ValidateCapacity(capacity); err != nil {
			return nil, err
		}
		if period < 1 {
			return nil, fmt.Errorf("invalid loop period: must be >=1 but %d was requested", period)
		}

		keys := make([]int, n)
		for i := range keys {
			keys[i] = i % period
		}
		return &Trace{Capacity: capacity, Keys: keys}, nil
	}
}

// NewZipf returns a Generator drawing keys in [0, universe) from a Zipf
// distribution of exponent s > 1. The same seed yields the same trace.
func NewZipf(universe int, s float64, seed int64) Generator {
	return func(capacity int, n int) (*Trace, error) {
		if err := base.ValidateCapacity(capacity); err != nil {
			return nil, err
		}
		if universe < 1 || s <= 1 {
			return nil, fmt.Errorf("invalid zipf parameters: universe=%d s=%v", universe, s)
		}

		zipf := rand.NewZipf(rand.New(rand.NewSource(seed)), s, 1, uint64(universe-1))
		keys := make([]int, n)
		for i := range keys {
			keys[i] = int(zipf.Uint64())
		}
		return &Trace{Capacity: capacity, Keys: keys}, nil
	}
}

// NewScan returns a Generator mixing a Zipf hot set with sequential scans of
// cold keys, one scan of scanLength keys every scanEvery requests. Scans are
// the workload where ARC's recency/frequency split pays off against LRU.
func NewScan(universe int, scanEvery int, scanLength int, seed int64) Generator {
	hot := NewZipf(universe, 1.1, seed)
	return func(capacity int, n int) (*Trace, error) {
		t, err := hot(capacity, n)
		if err != nil {
			return nil, err
		}
		if scanEvery < 1 || scanLength < 1 {
			return nil, fmt.Errorf("invalid scan parameters: every=%d length=%d", scanEvery, scanLength)
		}

		cold := universe
		for start := scanEvery; start < n; start += scanEvery {
			for i := start; i < min(n, start+scanLength); i++ {
				t.Keys[i] = cold
				cold++
			}
		}
		return t, nil
	}
}
