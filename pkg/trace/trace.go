// Package trace reads, writes and generates the request traces replayed by
// the simulator.
//
// The textual format is a whitespace separated list of integers: the cache
// capacity, the number n of requests, then n keys. Every key is also used as
// its own value. Tokens past the n-th key are ignored.
package trace

import (
	"github.com/samber/hotsim/pkg/base"
)

// Trace is a sequence of requests with the capacity it should be replayed at.
type Trace struct {
	Capacity int
	Keys     []int
}

// Len returns the number of requests.
func (t *Trace) Len() int {
	return len(t.Keys)
}

// Requests returns the trace as (key, value) pairs, value being the key.
func (t *Trace) Requests() []base.Request[int, int] {
	out := make([]base.Request[int, int], len(t.Keys))
	for i, k := range t.Keys {
		out[i] = base.Request[int, int]{Key: k, Value: k}
	}
	return out
}

// Distinct returns the number of distinct keys.
func (t *Trace) Distinct() int {
	seen := make(map[int]struct{}, len(t.Keys)/2)
	for _, k := range t.Keys {
		seen[k] = struct{}{}
	}
	return len(seen)
}
