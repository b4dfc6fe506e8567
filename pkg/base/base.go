package base

// ReplacementPolicy is the contract shared by every cache engine replayed by
// the simulator. Engines are interchangeable: given the same trace and
// capacity, their hit counts are directly comparable.
//
// Implementations are not safe for concurrent use. Callers serialize access
// to one instance, see the safe and sharded packages.
type ReplacementPolicy[K comparable, V any] interface {
	// Access records one trace step for key and reports whether key was
	// resident before the step. It may evict other keys.
	Access(key K, value V) bool

	// Lookup returns the value cached for key without mutating the engine.
	// The boolean is false when key is not resident.
	Lookup(key K) (V, bool)

	// Hits returns the number of Access calls that were hits so far.
	Hits() int64

	// Capacity returns the maximum number of resident keys.
	Capacity() int

	// Len returns the current number of resident keys.
	Len() int

	// Algorithm returns the name of the replacement algorithm.
	Algorithm() string
}

// Request is one step of a trace.
type Request[K comparable, V any] struct {
	Key   K
	Value V
}

// Keys returns the keys of a trace, in order.
func Keys[K comparable, V any](trace []Request[K, V]) []K {
	keys := make([]K, len(trace))
	for i := range trace {
		keys[i] = trace[i].Key
	}
	return keys
}
