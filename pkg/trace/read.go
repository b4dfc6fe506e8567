package trace

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/samber/hotsim/pkg/base"
)

// Read parses a textual trace. A capacity below 1 is rejected with
// base.ErrInvalidCapacity before any key is read.
func Read(r io.Reader) (*Trace, error) {
	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanWords)

	next := func() (int, error) {
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return 0, err
			}
			return 0, io.EOF
		}
		return strconv.Atoi(scanner.Text())
	}

	// describe labels an error returned by next
	describe := func(what string, err error) error {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: missing %s", ErrTruncatedTrace, what)
		}
		var numErr *strconv.NumError
		if errors.As(err, &numErr) {
			return fmt.Errorf("%w: %s: %w", ErrMalformedTrace, what, err)
		}
		return err
	}

	capacity, err := next()
	if err != nil {
		return nil, describe("capacity", err)
	}
	if err := base.ValidateCapacity(capacity); err != nil {
		return nil, err
	}

	n, err := next()
	if err != nil {
		return nil, describe("request count", err)
	}
	if n < 0 {
		return nil, fmt.Errorf("%w: negative request count %d", ErrMalformedTrace, n)
	}

	// n comes from the input, so preallocation is capped
	keys := make([]int, 0, min(n, 1<<20))
	for i := 0; i < n; i++ {
		key, err := next()
		if err != nil {
			return nil, describe(fmt.Sprintf("key %d of %d", i+1, n), err)
		}
		keys = append(keys, key)
	}

	return &Trace{Capacity: capacity, Keys: keys}, nil
}

// ReadFile reads a trace file, decompressing it according to its extension.
func ReadFile(path string) (_ *Trace, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()

	r, err := NewReader(bufio.NewReader(f), CompressionFromPath(path))
	if err != nil {
		return nil, err
	}

	t, err := Read(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}
