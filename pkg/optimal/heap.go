package optimal

type nextUse[K comparable] struct {
	key  K
	next int
}

// nextUses implements heap.Interface, farthest next use first.
type nextUses[K comparable] []nextUse[K]

func (h nextUses[K]) Len() int           { return len(h) }
func (h nextUses[K]) Less(i, j int) bool { return h[i].next > h[j].next }
func (h nextUses[K]) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *nextUses[K]) Push(x any) {
	*h = append(*h, x.(nextUse[K]))
}

func (h *nextUses[K]) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
