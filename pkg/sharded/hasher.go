package sharded

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Hasher maps a key to an unsigned 64 bit hash. It should minimize collisions,
// shards are picked by hash modulo the shard count.
type Hasher[K any] func(K) uint64

func (fn Hasher[K]) computeHash(key K, shards uint64) uint64 {
	return fn(key) % shards
}

// StringHasher hashes string keys with xxhash.
func StringHasher(key string) uint64 {
	return xxhash.Sum64String(key)
}

// NewFormatHasher hashes the fmt representation of any key with xxhash.
// It is slower than a dedicated Hasher but works for every key type.
func NewFormatHasher[K any]() Hasher[K] {
	return func(key K) uint64 {
		return xxhash.Sum64String(fmt.Sprint(key))
	}
}
