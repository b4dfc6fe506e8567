// Package arena stores values in a stable slot arena and threads them into a
// fixed number of doubly-linked sequences.
//
// Sequences link slots by index rather than by pointer: a Handle stays valid
// until the slot is released, whichever sequence currently holds it, and a
// slot belongs to at most one sequence at a time.
package arena

import (
	"github.com/samber/hotsim/internal"
)

// Handle identifies a slot in an Arena.
type Handle int32

// Nil is the Handle of no slot.
const Nil Handle = -1

// ListID names one of the sequences of an Arena.
type ListID uint8

// Detached is reported for a live slot that is not linked into any sequence.
const Detached ListID = 0xff

type slot[T any] struct {
	value T
	prev  Handle
	next  Handle
	list  ListID
	live  bool
}

type sequence struct {
	head Handle
	tail Handle
	len  int
}

// Arena holds the slots and the sequences threading them.
// It is not safe for concurrent use.
type Arena[T any] struct {
	noCopy internal.NoCopy

	slots []slot[T]
	lists []sequence
	free  Handle // head of the free chain, linked through slot.next
	live  int
}

// New returns an arena with lists sequences. sizeHint preallocates slots.
func New[T any](lists int, sizeHint int) *Arena[T] {
	internal.Assert(lists > 0 && lists < int(Detached), "arena: invalid number of lists")

	a := &Arena[T]{
		slots: make([]slot[T], 0, max(0, sizeHint)),
		lists: make([]sequence, lists),
		free:  Nil,
	}
	for i := range a.lists {
		a.lists[i] = sequence{head: Nil, tail: Nil}
	}
	return a
}

// Alloc stores v in a fresh detached slot and returns its handle.
func (a *Arena[T]) Alloc(v T) Handle {
	a.live++

	if a.free != Nil {
		h := a.free
		s := &a.slots[h]
		a.free = s.next
		*s = slot[T]{value: v, prev: Nil, next: Nil, list: Detached, live: true}
		return h
	}

	a.slots = append(a.slots, slot[T]{value: v, prev: Nil, next: Nil, list: Detached, live: true})
	return Handle(len(a.slots) - 1)
}

// Release returns a detached slot to the arena. Its value is dropped.
func (a *Arena[T]) Release(h Handle) {
	s := a.slot(h)
	internal.Assert(s.list == Detached, "arena: release of a linked slot")

	*s = slot[T]{prev: Nil, next: a.free, list: Detached}
	a.free = h
	a.live--
}

// Value returns a pointer to the value stored in h.
// The pointer must not be retained across Alloc calls.
func (a *Arena[T]) Value(h Handle) *T {
	return &a.slot(h).value
}

// ListOf returns the sequence holding h, or Detached.
func (a *Arena[T]) ListOf(h Handle) ListID {
	return a.slot(h).list
}

// Len returns the number of slots linked into list.
func (a *Arena[T]) Len(list ListID) int {
	return a.seq(list).len
}

// Live returns the number of allocated slots.
func (a *Arena[T]) Live() int {
	return a.live
}

// Front returns the head of list.
func (a *Arena[T]) Front(list ListID) (Handle, bool) {
	h := a.seq(list).head
	return h, h != Nil
}

// Back returns the tail of list.
func (a *Arena[T]) Back(list ListID) (Handle, bool) {
	h := a.seq(list).tail
	return h, h != Nil
}

// Prev returns the neighbour of h towards the head of its list, or Nil.
func (a *Arena[T]) Prev(h Handle) Handle {
	return a.slot(h).prev
}

// PushFront links the detached slot h at the head of list.
func (a *Arena[T]) PushFront(list ListID, h Handle) {
	s := a.slot(h)
	internal.Assert(s.list == Detached, "arena: push of a linked slot")

	seq := a.seq(list)
	s.list = list
	s.prev = Nil
	s.next = seq.head
	if seq.head != Nil {
		a.slots[seq.head].prev = h
	} else {
		seq.tail = h
	}
	seq.head = h
	seq.len++
}

// Remove unlinks h from the sequence holding it. The slot stays allocated.
func (a *Arena[T]) Remove(h Handle) {
	s := a.slot(h)
	internal.Assert(s.list != Detached, "arena: remove of a detached slot")

	seq := a.seq(s.list)
	if s.prev != Nil {
		a.slots[s.prev].next = s.next
	} else {
		seq.head = s.next
	}
	if s.next != Nil {
		a.slots[s.next].prev = s.prev
	} else {
		seq.tail = s.prev
	}
	seq.len--

	s.prev = Nil
	s.next = Nil
	s.list = Detached
}

// MoveToFront relinks h at the head of list, which may be its current list.
func (a *Arena[T]) MoveToFront(list ListID, h Handle) {
	if a.slot(h).list != Detached {
		a.Remove(h)
	}
	a.PushFront(list, h)
}

// Range calls f for every slot of list, from head to tail, until f returns false.
// f must not mutate the arena.
func (a *Arena[T]) Range(list ListID, f func(Handle, *T) bool) {
	for h := a.seq(list).head; h != Nil; h = a.slots[h].next {
		if !f(h, &a.slots[h].value) {
			return
		}
	}
}

func (a *Arena[T]) slot(h Handle) *slot[T] {
	internal.Assert(h >= 0 && int(h) < len(a.slots), "arena: handle out of range")
	s := &a.slots[h]
	internal.Assert(s.live, "arena: use of a released slot")
	return s
}

func (a *Arena[T]) seq(list ListID) *sequence {
	internal.Assert(int(list) < len(a.lists), "arena: unknown list")
	return &a.lists[list]
}
