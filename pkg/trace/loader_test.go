package trace

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoaderDeduplicatesLoads(t *testing.T) {
	is := assert.New(t)
	t.Parallel()

	var calls int32
	loader, err := newLoader(4, func(path string) (*Trace, error) {
		atomic.AddInt32(&calls, 1)
		time.Sleep(20 * time.Millisecond)
		return &Trace{Capacity: 1, Keys: []int{len(path)}}, nil
	})
	is.NoError(err)

	var wg sync.WaitGroup
	results := make([]*Trace, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tr, err := loader.Load("abc")
			is.NoError(err)
			results[i] = tr
		}(i)
	}
	wg.Wait()

	for _, tr := range results {
		is.Same(results[0], tr)
	}
	is.Equal([]int{3}, results[0].Keys)

	// cached after the first load
	_, err = loader.Load("abc")
	is.NoError(err)
	is.Equal(int32(1), atomic.LoadInt32(&calls))
	is.Equal(1, loader.Len())
}

func TestLoaderError(t *testing.T) {
	is := assert.New(t)
	t.Parallel()

	boom := errors.New("boom")
	loader, err := newLoader(4, func(path string) (*Trace, error) {
		return nil, boom
	})
	is.NoError(err)

	tr, err := loader.Load("x")
	is.Nil(tr)
	is.ErrorIs(err, boom)
	is.Equal(0, loader.Len())

	_, err = NewLoader(0)
	is.Error(err)
}

func TestLoaderReadsFiles(t *testing.T) {
	is := assert.New(t)
	t.Parallel()

	path := filepath.Join(t.TempDir(), "trace.txt")
	is.NoError(os.WriteFile(path, []byte("2 3 1 2 1"), 0o600))

	loader, err := NewLoader(2)
	is.NoError(err)
	tr, err := loader.Load(path)
	is.NoError(err)
	is.Equal(&Trace{Capacity: 2, Keys: []int{1, 2, 1}}, tr)
}
