package trace

import (
	"errors"
	"testing"

	"github.com/samber/hotsim/pkg/base"
	"github.com/stretchr/testify/assert"
)

func TestSequential(t *testing.T) {
	is := assert.New(t)
	t.Parallel()

	tr, err := Sequential(3, 5)
	is.NoError(err)
	is.Equal(3, tr.Capacity)
	is.Equal([]int{0, 1, 2, 3, 4}, tr.Keys)

	_, err = Sequential(0, 5)
	is.True(errors.Is(err, base.ErrInvalidCapacity))
}

func TestLoop(t *testing.T) {
	is := assert.New(t)
	t.Parallel()

	tr, err := NewLoop(3)(2, 7)
	is.NoError(err)
	is.Equal([]int{0, 1, 2, 0, 1, 2, 0}, tr.Keys)

	_, err = NewLoop(0)(2, 7)
	is.Error(err)
}

func TestZipf(t *testing.T) {
	is := assert.New(t)
	t.Parallel()

	a, err := NewZipf(50, 1.3, 7)(4, 2000)
	is.NoError(err)
	b, err := NewZipf(50, 1.3, 7)(4, 2000)
	is.NoError(err)
	is.Equal(a, b)

	counts := map[int]int{}
	for _, k := range a.Keys {
		is.GreaterOrEqual(k, 0)
		is.Less(k, 50)
		counts[k]++
	}
	// skewed towards small keys
	is.Greater(counts[0], counts[10])

	_, err = NewZipf(50, 1, 7)(4, 10)
	is.Error(err)
	_, err = NewZipf(0, 2, 7)(4, 10)
	is.Error(err)
}

func TestScan(t *testing.T) {
	is := assert.New(t)
	t.Parallel()

	tr, err := NewScan(10, 100, 20, 1)(4, 250)
	is.NoError(err)
	is.Len(tr.Keys, 250)

	// scans use fresh keys above the hot universe
	is.Equal(10, tr.Keys[100])
	is.Equal(29, tr.Keys[119])
	is.Less(tr.Keys[120], 10)
	is.Equal(30, tr.Keys[200])

	_, err = NewScan(10, 0, 20, 1)(4, 250)
	is.Error(err)
}
