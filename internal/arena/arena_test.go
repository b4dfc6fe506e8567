package arena

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	listA ListID = iota
	listB
)

func collect[T any](a *Arena[T], list ListID) []T {
	out := []T{}
	a.Range(list, func(_ Handle, v *T) bool {
		out = append(out, *v)
		return true
	})
	return out
}

func TestNew(t *testing.T) {
	is := assert.New(t)
	t.Parallel()

	is.Panics(func() {
		_ = New[int](0, 0)
	})
	is.Panics(func() {
		_ = New[int](int(Detached), 0)
	})

	a := New[int](2, 8)
	is.Equal(0, a.Len(listA))
	is.Equal(0, a.Len(listB))
	is.Equal(0, a.Live())
	_, ok := a.Front(listA)
	is.False(ok)
	_, ok = a.Back(listB)
	is.False(ok)
}

func TestPushFrontAndRemove(t *testing.T) {
	is := assert.New(t)
	t.Parallel()

	a := New[string](2, 0)
	h1 := a.Alloc("a")
	h2 := a.Alloc("b")
	h3 := a.Alloc("c")
	is.Equal(Detached, a.ListOf(h1))

	a.PushFront(listA, h1)
	a.PushFront(listA, h2)
	a.PushFront(listA, h3)
	is.Equal([]string{"c", "b", "a"}, collect(a, listA))
	is.Equal(3, a.Len(listA))

	back, ok := a.Back(listA)
	is.True(ok)
	is.Equal(h1, back)
	front, ok := a.Front(listA)
	is.True(ok)
	is.Equal(h3, front)

	// middle
	a.Remove(h2)
	is.Equal([]string{"c", "a"}, collect(a, listA))
	is.Equal(Detached, a.ListOf(h2))

	// tail
	a.Remove(h1)
	is.Equal([]string{"c"}, collect(a, listA))
	back, _ = a.Back(listA)
	is.Equal(h3, back)

	// head
	a.Remove(h3)
	is.Empty(collect(a, listA))
	is.Equal(0, a.Len(listA))
	is.Equal(3, a.Live())

	is.Panics(func() {
		a.Remove(h3)
	})
}

func TestMoveBetweenLists(t *testing.T) {
	is := assert.New(t)
	t.Parallel()

	a := New[int](2, 0)
	h1 := a.Alloc(1)
	h2 := a.Alloc(2)
	a.PushFront(listA, h1)
	a.PushFront(listA, h2)

	a.MoveToFront(listB, h1)
	is.Equal(listB, a.ListOf(h1))
	is.Equal([]int{2}, collect(a, listA))
	is.Equal([]int{1}, collect(a, listB))

	a.MoveToFront(listB, h2)
	is.Equal([]int{2, 1}, collect(a, listB))

	// same list
	a.MoveToFront(listB, h1)
	is.Equal([]int{1, 2}, collect(a, listB))
	is.Equal(0, a.Len(listA))
	is.Equal(2, a.Len(listB))

	// detached slot
	h3 := a.Alloc(3)
	a.MoveToFront(listA, h3)
	is.Equal([]int{3}, collect(a, listA))
}

func TestReleaseReusesSlots(t *testing.T) {
	is := assert.New(t)
	t.Parallel()

	a := New[int](1, 0)
	h1 := a.Alloc(1)
	a.PushFront(listA, h1)

	is.PanicsWithValue("arena: release of a linked slot", func() {
		a.Release(h1)
	})

	a.Remove(h1)
	a.Release(h1)
	is.Equal(0, a.Live())
	is.PanicsWithValue("arena: use of a released slot", func() {
		_ = a.Value(h1)
	})

	h2 := a.Alloc(2)
	is.Equal(h1, h2)
	is.Equal(2, *a.Value(h2))
	is.Equal(1, a.Live())
}

func TestValueIsMutable(t *testing.T) {
	is := assert.New(t)
	t.Parallel()

	a := New[int](1, 0)
	h := a.Alloc(1)
	*a.Value(h) = 42
	is.Equal(42, *a.Value(h))

	is.Panics(func() {
		_ = a.Value(Handle(7))
	})
	is.Panics(func() {
		_ = a.Len(ListID(3))
	})
}

func TestRangeStops(t *testing.T) {
	is := assert.New(t)
	t.Parallel()

	a := New[int](1, 0)
	for i := 0; i < 5; i++ {
		a.PushFront(listA, a.Alloc(i))
	}

	seen := 0
	a.Range(listA, func(_ Handle, _ *int) bool {
		seen++
		return seen < 2
	})
	is.Equal(2, seen)
}

func TestPrevWalksTowardsHead(t *testing.T) {
	is := assert.New(t)
	t.Parallel()

	a := New[int](1, 0)
	for i := 0; i < 4; i++ {
		a.PushFront(listA, a.Alloc(i))
	}

	out := []int{}
	h, ok := a.Back(listA)
	is.True(ok)
	for ; h != Nil; h = a.Prev(h) {
		out = append(out, *a.Value(h))
	}
	is.Equal([]int{0, 1, 2, 3}, out)
}
