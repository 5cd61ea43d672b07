// Package engine evaluates boolean queries over sorted postings lists.
package engine

// PostingsIterator iterates over a postings list in document ID order.
type PostingsIterator interface {
	// Next advances to the next document. Returns false when exhausted.
	Next() bool

	// DocID returns the current document ID. Valid only after Next() or
	// Advance() returns true.
	DocID() uint32

	// Advance moves to the first document >= target. If the iterator is
	// already on such a document it stays there. Returns false if no such
	// document exists.
	Advance(target uint32) bool

	// Cost returns an estimate of remaining documents.
	Cost() int64
}

// SlicePostingsIterator is an in-memory PostingsIterator backed by a slice.
type SlicePostingsIterator struct {
	docIDs []uint32
	pos    int
}

// NewSlicePostingsIterator creates a PostingsIterator over docIDs, which
// must be sorted ascending without duplicates.
func NewSlicePostingsIterator(docIDs []uint32) *SlicePostingsIterator {
	return &SlicePostingsIterator{docIDs: docIDs, pos: -1}
}

func (it *SlicePostingsIterator) Next() bool {
	if it.pos < len(it.docIDs) {
		it.pos++
	}
	return it.pos < len(it.docIDs)
}

func (it *SlicePostingsIterator) DocID() uint32 {
	return it.docIDs[it.pos]
}

func (it *SlicePostingsIterator) Advance(target uint32) bool {
	if it.pos >= 0 && it.pos < len(it.docIDs) && it.docIDs[it.pos] >= target {
		return true
	}
	for it.pos+1 < len(it.docIDs) {
		it.pos++
		if it.docIDs[it.pos] >= target {
			return true
		}
	}
	it.pos = len(it.docIDs)
	return false
}

func (it *SlicePostingsIterator) Cost() int64 {
	remaining := len(it.docIDs) - it.pos - 1
	if remaining < 0 {
		return 0
	}
	return int64(remaining)
}
