package engine

import "container/heap"

// DisjunctionIterator implements OR logic over multiple PostingsIterators.
// It uses a min-heap to merge iterators in document ID order. Every child
// left in the heap is positioned after the current document.
type DisjunctionIterator struct {
	h       iterHeap
	current uint32
	started bool
}

// NewDisjunctionIterator creates an OR iterator over the given children.
func NewDisjunctionIterator(children []PostingsIterator) *DisjunctionIterator {
	d := &DisjunctionIterator{}

	// Initialize heap with all iterators that have at least one doc.
	for _, child := range children {
		if child.Next() {
			d.h = append(d.h, child)
		}
	}
	heap.Init(&d.h)

	return d
}

func (d *DisjunctionIterator) Next() bool {
	if len(d.h) == 0 {
		return false
	}
	d.consume()
	return true
}

func (d *DisjunctionIterator) DocID() uint32 {
	return d.current
}

func (d *DisjunctionIterator) Advance(target uint32) bool {
	if d.started && d.current >= target {
		return true
	}
	for len(d.h) > 0 && d.h[0].DocID() < target {
		top := d.h[0]
		if top.Advance(target) {
			heap.Fix(&d.h, 0)
		} else {
			heap.Pop(&d.h)
		}
	}
	if len(d.h) == 0 {
		return false
	}
	d.consume()
	return true
}

// consume makes the heap minimum current and moves every child sitting on
// it forward.
func (d *DisjunctionIterator) consume() {
	d.current = d.h[0].DocID()
	d.started = true
	for len(d.h) > 0 && d.h[0].DocID() == d.current {
		top := d.h[0]
		if top.Next() {
			heap.Fix(&d.h, 0)
		} else {
			heap.Pop(&d.h)
		}
	}
}

func (d *DisjunctionIterator) Cost() int64 {
	var total int64
	for _, it := range d.h {
		total += it.Cost() + 1
	}
	return total
}

// iterHeap is a min-heap of PostingsIterators ordered by current DocID.
type iterHeap []PostingsIterator

func (h iterHeap) Len() int           { return len(h) }
func (h iterHeap) Less(i, j int) bool { return h[i].DocID() < h[j].DocID() }
func (h iterHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *iterHeap) Push(x any)        { *h = append(*h, x.(PostingsIterator)) }
func (h *iterHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
