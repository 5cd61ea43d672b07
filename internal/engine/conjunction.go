package engine

import "sort"

// ConjunctionIterator yields the doc ids present in every child. The child
// with the fewest postings leads and the others are advanced to its id.
// Doc frequencies are not tracked since hits are unranked.
type ConjunctionIterator struct {
	children []PostingsIterator
	lead     PostingsIterator
	current  uint32
	started  bool
}

// NewConjunctionIterator creates an AND iterator over the given children.
// Children must not be empty.
func NewConjunctionIterator(children []PostingsIterator) *ConjunctionIterator {
	// Sort by cost ascending so the cheapest iterator leads.
	sorted := make([]PostingsIterator, len(children))
	copy(sorted, children)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Cost() < sorted[j].Cost()
	})

	return &ConjunctionIterator{
		children: sorted,
		lead:     sorted[0],
	}
}

func (c *ConjunctionIterator) Next() bool {
	if !c.lead.Next() {
		return false
	}
	return c.align(c.lead.DocID())
}

func (c *ConjunctionIterator) DocID() uint32 {
	return c.current
}

// Advance moves to the first common id >= target. Once positioned, a target
// at or below the current id leaves the iterator where it is, so callers
// such as ExclusionIterator may probe with the same id repeatedly.
func (c *ConjunctionIterator) Advance(target uint32) bool {
	if c.started && c.current >= target {
		return true
	}
	if !c.lead.Advance(target) {
		return false
	}
	return c.align(c.lead.DocID())
}

func (c *ConjunctionIterator) Cost() int64 {
	return c.lead.Cost()
}

// align advances all iterators until they all point to the same document.
func (c *ConjunctionIterator) align(target uint32) bool {
	for {
		allAligned := true
		for _, child := range c.children {
			if child == c.lead {
				continue
			}
			if !child.Advance(target) {
				return false
			}
			if child.DocID() > target {
				target = child.DocID()
				if !c.lead.Advance(target) {
					return false
				}
				// Lead may have landed past target.
				target = c.lead.DocID()
				allAligned = false
				break
			}
		}
		if allAligned {
			c.current = target
			c.started = true
			return true
		}
	}
}
