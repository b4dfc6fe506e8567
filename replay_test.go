package hotsim

import (
	"context"
	"errors"
	"testing"

	"github.com/samber/hotsim/pkg/arc"
	"github.com/samber/hotsim/pkg/base"
	"github.com/samber/hotsim/pkg/metrics"
	"github.com/samber/hotsim/pkg/optimal"
	"github.com/stretchr/testify/assert"
)

func requests(keys ...int) []base.Request[int, int] {
	out := make([]base.Request[int, int], len(keys))
	for i, k := range keys {
		out[i] = base.Request[int, int]{Key: k, Value: k}
	}
	return out
}

func TestReplay(t *testing.T) {
	is := assert.New(t)
	t.Parallel()

	cache, err := arc.NewARCCache[int, int](2)
	is.NoError(err)

	result, err := Replay(context.Background(), base.ReplacementPolicy[int, int](cache), requests(1, 2, 1, 3, 2))
	is.NoError(err)
	is.Equal(ARC, result.Algorithm)
	is.Equal(2, result.Capacity)
	is.Equal(5, result.Accesses)
	is.Equal(int64(1), result.Hits)
	is.Equal(int64(4), result.Misses())
	is.InDelta(0.2, result.HitRatio(), 1e-9)
	is.GreaterOrEqual(result.Duration.Nanoseconds(), int64(0))
}

func TestReplayEmptyTrace(t *testing.T) {
	is := assert.New(t)
	t.Parallel()

	cache, err := arc.NewARCCache[int, int](2)
	is.NoError(err)

	result, err := Replay[int, int](context.Background(), cache, nil)
	is.NoError(err)
	is.Zero(result.Accesses)
	is.Zero(result.Hits)
	is.Zero(result.HitRatio())
}

func TestReplayCancelled(t *testing.T) {
	is := assert.New(t)
	t.Parallel()

	cache, err := arc.NewARCCache[int, int](2)
	is.NoError(err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := Replay[int, int](ctx, cache, requests(1, 2, 3))
	is.ErrorIs(err, context.Canceled)
	is.Zero(result.Accesses)
}

func TestReplayTraceMismatch(t *testing.T) {
	is := assert.New(t)
	t.Parallel()

	cache, err := optimal.NewOptimalCache[int, int](2, []int{1, 2, 3})
	is.NoError(err)

	result, err := Replay[int, int](context.Background(), cache, requests(1, 2, 4))
	is.True(errors.Is(err, ErrTraceMismatch))
	is.True(errors.Is(err, base.ErrTraceMismatch))
	is.ErrorContains(err, "request 3")
	is.Equal(2, result.Accesses)
}

func TestReplaySyncsMetrics(t *testing.T) {
	is := assert.New(t)
	t.Parallel()

	cache, err := arc.NewARCCache[int, int](2)
	is.NoError(err)

	collector := metrics.NewPrometheusCollector("test", "arc", 2)
	policy := metrics.NewInstrumentedPolicy[int, int](cache, collector)

	keys := make([]int, 2*checkpoint+10)
	for i := range keys {
		keys[i] = i % 3
	}

	result, err := Replay[int, int](context.Background(), policy, requests(keys...))
	is.NoError(err)
	is.Equal(len(keys), result.Accesses)
	is.Equal(cache.Hits(), result.Hits)
	is.Equal(2, cache.Len())
}
