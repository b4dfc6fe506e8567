package arc

import (
	"fmt"
	"io"
	"strings"

	"github.com/samber/hotsim/internal/arena"
)

// Entry is a resident key-value pair as seen by Snapshot.
type Entry[K comparable, V any] struct {
	Key   K
	Value V
}

// Snapshot is a copy of the state of an ARCCache.
// Lists are ordered from most to least recently touched.
type Snapshot[K comparable, V any] struct {
	Capacity int
	P        float64
	Hits     int64

	T1 []Entry[K, V]
	T2 []Entry[K, V]
	B1 []K
	B2 []K
}

// Snapshot copies the lists of the cache. It does not mutate the cache.
func (c *ARCCache[K, V]) Snapshot() Snapshot[K, V] {
	return Snapshot[K, V]{
		Capacity: c.capacity,
		P:        c.p,
		Hits:     c.hits,
		T1:       c.residents(listT1),
		T2:       c.residents(listT2),
		B1:       c.ghosts(listB1),
		B2:       c.ghosts(listB2),
	}
}

func (c *ARCCache[K, V]) residents(list arena.ListID) []Entry[K, V] {
	out := make([]Entry[K, V], 0, c.slots.Len(list))
	c.slots.Range(list, func(_ arena.Handle, e *entry[K, V]) bool {
		out = append(out, Entry[K, V]{Key: e.key, Value: e.value})
		return true
	})
	return out
}

func (c *ARCCache[K, V]) ghosts(list arena.ListID) []K {
	out := make([]K, 0, c.slots.Len(list))
	c.slots.Range(list, func(_ arena.Handle, e *entry[K, V]) bool {
		out = append(out, e.key)
		return true
	})
	return out
}

// Keys returns the resident keys, T1 first, each list from most to least recently touched.
func (c *ARCCache[K, V]) Keys() []K {
	keys := make([]K, 0, c.Len())
	for _, list := range []arena.ListID{listT1, listT2} {
		c.slots.Range(list, func(_ arena.Handle, e *entry[K, V]) bool {
			keys = append(keys, e.key)
			return true
		})
	}
	return keys
}

// Dump writes a human-readable view of the cache to w.
//
//	capacity: 2 p: 1.00 hits: 1
//	T1: 3=3
//	T2: 2=2
//	B1:
//	B2: 1
func (c *ARCCache[K, V]) Dump(w io.Writer) error {
	return c.Snapshot().Dump(w)
}

// Dump writes a human-readable view of the snapshot to w.
func (s Snapshot[K, V]) Dump(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "capacity: %d p: %.2f hits: %d\n", s.Capacity, s.P, s.Hits)
	writeEntries(&b, "T1", s.T1)
	writeEntries(&b, "T2", s.T2)
	writeKeys(&b, "B1", s.B1)
	writeKeys(&b, "B2", s.B2)

	_, err := io.WriteString(w, b.String())
	return err
}

func writeEntries[K comparable, V any](b *strings.Builder, name string, entries []Entry[K, V]) {
	b.WriteString(name + ":")
	for _, e := range entries {
		fmt.Fprintf(b, " %v=%v", e.Key, e.Value)
	}
	b.WriteByte('\n')
}

func writeKeys[K comparable](b *strings.Builder, name string, keys []K) {
	b.WriteString(name + ":")
	for _, k := range keys {
		fmt.Fprintf(b, " %v", k)
	}
	b.WriteByte('\n')
}
