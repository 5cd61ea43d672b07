package query

// Rewrite applies simplification rules to a query AST until a fixed point
// is reached: nested booleans with the same operator are flattened, MatchAll
// is dropped from AND, MatchNone short-circuits AND, and MatchAll or
// MatchNone under OR and NOT collapse to their constant results.
func Rewrite(q Query) Query {
	for {
		rewritten := rewriteOnce(q)
		if queryEqual(rewritten, q) {
			return rewritten
		}
		q = rewritten
	}
}

func rewriteOnce(q Query) Query {
	switch v := q.(type) {
	case *BooleanQuery:
		return rewriteBoolean(v)
	default:
		return q
	}
}

func rewriteBoolean(q *BooleanQuery) Query {
	// Recursively rewrite children first.
	clauses := make([]BooleanClause, 0, len(q.Clauses))
	for _, c := range q.Clauses {
		rewritten := rewriteOnce(c.Query)

		// Flatten nested booleans with same operator.
		if inner, ok := rewritten.(*BooleanQuery); ok {
			if canFlatten(c.Occur, inner) {
				for _, ic := range inner.Clauses {
					clauses = append(clauses, BooleanClause{Occur: c.Occur, Query: ic.Query})
				}
				continue
			}
		}

		clauses = append(clauses, BooleanClause{Occur: c.Occur, Query: rewritten})
	}

	var (
		filtered  = make([]BooleanClause, 0, len(clauses))
		hasMust   bool
		shouldAll bool
	)
	for _, c := range clauses {
		_, all := c.Query.(*MatchAllQuery)
		_, none := c.Query.(*MatchNoneQuery)
		switch c.Occur {
		case BooleanMust:
			hasMust = true
			if none {
				return &MatchNoneQuery{}
			}
			if all {
				continue
			}
		case BooleanShould:
			if all {
				shouldAll = true
			}
			if none {
				continue
			}
		case BooleanMustNot:
			if all {
				return &MatchNoneQuery{}
			}
			if none {
				hasMust = true
				continue
			}
		}
		filtered = append(filtered, c)
	}

	// One matching-everything alternative satisfies the OR group.
	if shouldAll {
		hasMust = true
		kept := filtered[:0]
		for _, c := range filtered {
			if c.Occur != BooleanShould {
				kept = append(kept, c)
			}
		}
		filtered = kept
	}

	if len(filtered) == 0 {
		if hasMust {
			return &MatchAllQuery{}
		}
		return &MatchNoneQuery{}
	}

	// Single clause remaining: unwrap.
	if len(filtered) == 1 && filtered[0].Occur != BooleanMustNot {
		return filtered[0].Query
	}

	return &BooleanQuery{Clauses: filtered}
}

// canFlatten returns true if an inner boolean can be flattened into the outer clause.
// AND(AND(a,b)) → AND(a,b) and OR(OR(a,b)) → OR(a,b).
func canFlatten(outerOccur BooleanOp, inner *BooleanQuery) bool {
	if outerOccur == BooleanMustNot {
		return false
	}
	for _, c := range inner.Clauses {
		if c.Occur != outerOccur {
			return false
		}
	}
	return true
}

// queryEqual checks structural equality for fixed-point detection.
func queryEqual(a, b Query) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if a.Type() != b.Type() {
		return false
	}

	switch av := a.(type) {
	case *BooleanQuery:
		bb := b.(*BooleanQuery)
		if len(av.Clauses) != len(bb.Clauses) {
			return false
		}
		for i := range av.Clauses {
			if av.Clauses[i].Occur != bb.Clauses[i].Occur {
				return false
			}
			if !queryEqual(av.Clauses[i].Query, bb.Clauses[i].Query) {
				return false
			}
		}
		return true
	case *TermQuery:
		return av.Term == b.(*TermQuery).Term
	case *PrefixQuery:
		return av.Prefix == b.(*PrefixQuery).Prefix
	}
	return true
}
