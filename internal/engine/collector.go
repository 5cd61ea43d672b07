package engine

// Collected is the outcome of draining an iterator.
type Collected struct {
	DocIDs []uint32
	Total  int
}

// Collect drains it, keeping the first limit doc ids in ascending order
// and counting all matches. limit <= 0 keeps every id.
func Collect(ec *ExecutionContext, it PostingsIterator, limit int) (Collected, error) {
	if err := ec.checkNow(); err != nil {
		return Collected{}, err
	}
	var c Collected
	for it.Next() {
		if err := ec.CheckLimits(); err != nil {
			return Collected{}, err
		}
		if limit <= 0 || len(c.DocIDs) < limit {
			c.DocIDs = append(c.DocIDs, it.DocID())
		}
		c.Total++
	}
	return c, nil
}
