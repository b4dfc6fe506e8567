package sharded

import (
	"fmt"

	"github.com/samber/hotsim/internal"
	"github.com/samber/hotsim/pkg/base"
)

// NewShardedPolicy creates a policy that distributes keys across multiple
// independent engines. Each shard only ever sees the keys that hash to it,
// which is what Partition computes ahead of time for offline engines.
func NewShardedPolicy[K comparable, V any](shards uint64, newPolicy func(shardIndex int) (base.ReplacementPolicy[K, V], error), fn Hasher[K]) (*ShardedPolicy[K, V], error) {
	if shards == 0 {
		return nil, fmt.Errorf("%w: sharded policy needs at least one shard", base.ErrInvalidCapacity)
	}

	policies := make([]base.ReplacementPolicy[K, V], shards)
	for i := uint64(0); i < shards; i++ {
		policy, err := newPolicy(int(i))
		if err != nil {
			return nil, fmt.Errorf("shard %d: %w", i, err)
		}
		policies[i] = policy
	}

	return &ShardedPolicy[K, V]{
		shards:   shards,
		fn:       fn,
		policies: policies,
	}, nil
}

// ShardedPolicy spreads a trace over several engines.
// Hit and length counters are the sums over shards.
type ShardedPolicy[K comparable, V any] struct {
	noCopy internal.NoCopy

	shards   uint64
	fn       Hasher[K]
	policies []base.ReplacementPolicy[K, V]
}

var _ base.ReplacementPolicy[string, int] = (*ShardedPolicy[string, int])(nil)

// Access forwards the request to the shard owning key.
func (c *ShardedPolicy[K, V]) Access(key K, value V) bool {
	return c.policies[c.fn.computeHash(key, c.shards)].Access(key, value)
}

// Lookup reads key from the shard owning it.
func (c *ShardedPolicy[K, V]) Lookup(key K) (V, bool) {
	return c.policies[c.fn.computeHash(key, c.shards)].Lookup(key)
}

// Hits returns the sum of the hits of every shard.
func (c *ShardedPolicy[K, V]) Hits() int64 {
	var hits int64
	for i := range c.policies {
		hits += c.policies[i].Hits()
	}
	return hits
}

// Capacity returns the total capacity across all shards.
func (c *ShardedPolicy[K, V]) Capacity() int {
	total := 0
	for i := range c.policies {
		total += c.policies[i].Capacity()
	}
	return total
}

// Len returns the total number of resident keys across all shards.
func (c *ShardedPolicy[K, V]) Len() int {
	total := 0
	for i := range c.policies {
		total += c.policies[i].Len()
	}
	return total
}

// Algorithm returns the algorithm of the shards.
func (c *ShardedPolicy[K, V]) Algorithm() string {
	return c.policies[0].Algorithm()
}

// SizeBytes sums the memory estimates of the shards that expose one.
func (c *ShardedPolicy[K, V]) SizeBytes() int64 {
	var total int64
	for i := range c.policies {
		if sized, ok := c.policies[i].(interface{ SizeBytes() int64 }); ok {
			total += sized.SizeBytes()
		}
	}
	return total
}

// Shards returns the underlying engines, indexed by shard.
func (c *ShardedPolicy[K, V]) Shards() []base.ReplacementPolicy[K, V] {
	return c.policies
}

// Partition splits trace into per-shard sub-traces, keeping the order of
// requests within each shard.
func Partition[K comparable](trace []K, shards uint64, fn Hasher[K]) [][]K {
	out := make([][]K, shards)
	for _, key := range trace {
		i := fn.computeHash(key, shards)
		out[i] = append(out[i], key)
	}
	return out
}

// SplitCapacity divides capacity over shards. The first capacity%shards
// shards get one extra slot. Every shard gets at least one slot.
func SplitCapacity(capacity int, shards uint64) []int {
	out := make([]int, shards)
	n := int(shards)
	for i := range out {
		out[i] = capacity / n
		if i < capacity%n {
			out[i]++
		}
		out[i] = max(out[i], 1)
	}
	return out
}
