package base

// EvictionReason tells why a resident entry left a cache.
type EvictionReason string

const (
	// EvictionReasonCapacity is reported when an entry makes room for another one.
	EvictionReasonCapacity EvictionReason = "capacity"
	// EvictionReasonGhost is reported when a ghost record (key only) is forgotten.
	EvictionReasonGhost EvictionReason = "ghost"
)

// EvictionReasons lists every reason an engine may report.
var EvictionReasons = []EvictionReason{
	EvictionReasonCapacity,
	EvictionReasonGhost,
}

// EvictionCallback is called synchronously from Access whenever an engine
// drops an entry. Ghost records carry the zero value.
// The callback must not call back into the engine.
type EvictionCallback[K comparable, V any] func(reason EvictionReason, key K, value V)
