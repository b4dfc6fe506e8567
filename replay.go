package hotsim

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samber/hotsim/internal"
	"github.com/samber/hotsim/pkg/base"
)

// checkpoint is the number of requests replayed between two context checks.
const checkpoint = 4096

// Result is the outcome of replaying one trace with one policy.
type Result struct {
	Algorithm Algorithm
	Capacity  int
	Accesses  int
	Hits      int64
	Duration  time.Duration
}

// Misses returns the number of requests that were not hits.
func (r Result) Misses() int64 {
	return int64(r.Accesses) - r.Hits
}

// HitRatio returns hits over accesses, or 0 for an empty trace.
func (r Result) HitRatio() float64 {
	if r.Accesses == 0 {
		return 0
	}
	return float64(r.Hits) / float64(r.Accesses)
}

type syncer interface {
	Sync()
}

// Replay feeds trace to policy in order, one request at a time, and returns
// the number of hits. The policy must be fresh: its hit counter is reported
// as is.
//
// Replay stops with ctx.Err() when ctx is cancelled. It recovers the panic of
// an optimal policy replayed with a foreign trace and returns it as an error
// wrapping ErrTraceMismatch.
func Replay[K comparable, V any](ctx context.Context, policy base.ReplacementPolicy[K, V], trace []base.Request[K, V]) (result Result, err error) {
	result = Result{
		Algorithm: Algorithm(policy.Algorithm()),
		Capacity:  policy.Capacity(),
	}

	s, _ := policy.(syncer)
	start := internal.NowNano()

	defer func() {
		result.Hits = policy.Hits()
		result.Duration = time.Duration(internal.NowNano() - start)
		if s != nil {
			s.Sync()
		}

		if r := recover(); r != nil {
			e, ok := r.(error)
			if !ok || !errors.Is(e, ErrTraceMismatch) {
				panic(r)
			}
			err = fmt.Errorf("%s: request %d: %w", result.Algorithm, result.Accesses+1, e)
		}
	}()

	for i := range trace {
		if i%checkpoint == 0 {
			if err := ctx.Err(); err != nil {
				return result, err
			}
			if s != nil && i > 0 {
				s.Sync()
			}
		}

		policy.Access(trace[i].Key, trace[i].Value)
		result.Accesses++
	}

	return result, nil
}
