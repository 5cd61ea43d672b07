package engine

// ExclusionIterator yields the documents of include that exclude does not
// contain.
type ExclusionIterator struct {
	include  PostingsIterator
	exclude  PostingsIterator
	exclDone bool
}

// NewExclusionIterator creates an include-minus-exclude iterator.
func NewExclusionIterator(include, exclude PostingsIterator) *ExclusionIterator {
	return &ExclusionIterator{include: include, exclude: exclude}
}

func (e *ExclusionIterator) Next() bool {
	for e.include.Next() {
		if !e.excluded(e.include.DocID()) {
			return true
		}
	}
	return false
}

func (e *ExclusionIterator) DocID() uint32 {
	return e.include.DocID()
}

func (e *ExclusionIterator) Advance(target uint32) bool {
	if !e.include.Advance(target) {
		return false
	}
	if !e.excluded(e.include.DocID()) {
		return true
	}
	return e.Next()
}

func (e *ExclusionIterator) Cost() int64 {
	return e.include.Cost()
}

func (e *ExclusionIterator) excluded(doc uint32) bool {
	if e.exclDone {
		return false
	}
	if !e.exclude.Advance(doc) {
		e.exclDone = true
		return false
	}
	return e.exclude.DocID() == doc
}
