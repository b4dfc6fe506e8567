package baseline

import (
	"errors"
	"testing"

	"github.com/samber/hotsim/pkg/base"
	"github.com/stretchr/testify/assert"
)

func TestNewRejectsInvalidCapacity(t *testing.T) {
	is := assert.New(t)
	t.Parallel()

	l, err := NewLRU[int, int](0)
	is.Nil(l)
	is.True(errors.Is(err, base.ErrInvalidCapacity))

	a, err := NewHashicorpARC[int, int](-1)
	is.Nil(a)
	is.True(errors.Is(err, base.ErrInvalidCapacity))
}

func TestLRU(t *testing.T) {
	is := assert.New(t)
	t.Parallel()

	var evicted []int
	cache, err := NewLRUWithEvictionCallback(2, func(reason base.EvictionReason, k int, _ int) {
		is.Equal(base.EvictionReasonCapacity, reason)
		evicted = append(evicted, k)
	})
	is.NoError(err)
	is.Equal("lru", cache.Algorithm())
	is.Equal(2, cache.Capacity())

	is.False(cache.Access(1, 1))
	is.False(cache.Access(2, 2))
	is.True(cache.Access(1, 1))
	is.False(cache.Access(3, 3)) // evicts 2
	is.False(cache.Access(2, 2)) // evicts 1

	is.Equal([]int{2, 1}, evicted)
	is.Equal(int64(1), cache.Hits())
	is.Equal(2, cache.Len())
	is.Equal([]int{3, 2}, cache.Keys())

	// zero is a valid payload
	_, ok := cache.Lookup(0)
	is.False(ok)
	is.False(cache.Access(0, 0))
	v, ok := cache.Lookup(0)
	is.True(ok)
	is.Zero(v)
}

func TestHashicorpARC(t *testing.T) {
	is := assert.New(t)
	t.Parallel()

	cache, err := NewHashicorpARC[int, int](2)
	is.NoError(err)
	is.Equal("hashicorp-arc", cache.Algorithm())
	is.Equal(2, cache.Capacity())

	is.False(cache.Access(1, 1))
	is.True(cache.Access(1, 1))
	is.False(cache.Access(2, 2))
	is.True(cache.Access(2, 2))
	is.Equal(int64(2), cache.Hits())
	is.Equal(2, cache.Len())

	v, ok := cache.Lookup(2)
	is.True(ok)
	is.Equal(2, v)
	_, ok = cache.Lookup(3)
	is.False(ok)

	for k := 10; k < 100; k++ {
		cache.Access(k, k)
		is.LessOrEqual(cache.Len(), 2)
	}
}
