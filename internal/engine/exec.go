package engine

import (
	"fmt"

	"GoStem/internal/query"
)

// Source supplies postings for query execution.
type Source interface {
	// Postings returns the sorted doc ids of term, or nil when the term is
	// not in the dictionary.
	Postings(term string) ([]uint32, error)
	// PrefixPostings returns the postings of up to limit terms starting
	// with prefix and whether more terms matched. With limit 0 it only
	// reports whether any term matched.
	PrefixPostings(prefix string, limit int) ([][]uint32, bool, error)
	// AllDocIDs returns every document id in ascending order.
	AllDocIDs() ([]uint32, error)
}

// NewIterator builds the iterator tree for q.
func NewIterator(ec *ExecutionContext, q query.Query, src Source) (PostingsIterator, error) {
	if err := ec.checkNow(); err != nil {
		return nil, err
	}
	switch v := q.(type) {
	case *query.TermQuery:
		ids, err := src.Postings(v.Term)
		if err != nil {
			return nil, err
		}
		return NewSlicePostingsIterator(ids), nil

	case *query.PrefixQuery:
		remaining := max(ec.RemainingTerms(), 0)
		lists, more, err := src.PrefixPostings(v.Prefix, remaining)
		if err != nil {
			return nil, err
		}
		n := len(lists)
		if more {
			n = remaining + 1
		}
		if err := ec.AddTerms(n); err != nil {
			return nil, fmt.Errorf("prefix %q: %w", v.Prefix, err)
		}
		children := make([]PostingsIterator, len(lists))
		for i, ids := range lists {
			children[i] = NewSlicePostingsIterator(ids)
		}
		return NewDisjunctionIterator(children), nil

	case *query.MatchAllQuery:
		ids, err := src.AllDocIDs()
		if err != nil {
			return nil, err
		}
		return NewSlicePostingsIterator(ids), nil

	case *query.MatchNoneQuery:
		return NewSlicePostingsIterator(nil), nil

	case *query.BooleanQuery:
		return newBooleanIterator(ec, v, src)
	}
	return nil, fmt.Errorf("unsupported query type %T", q)
}

// newBooleanIterator requires every Must clause and, when present, at
// least one Should clause, then removes MustNot matches. A query with only
// MustNot clauses starts from all documents.
func newBooleanIterator(ec *ExecutionContext, q *query.BooleanQuery, src Source) (PostingsIterator, error) {
	var must, should, mustNot []PostingsIterator
	for _, c := range q.Clauses {
		it, err := NewIterator(ec, c.Query, src)
		if err != nil {
			return nil, err
		}
		switch c.Occur {
		case query.BooleanMust:
			must = append(must, it)
		case query.BooleanShould:
			should = append(should, it)
		case query.BooleanMustNot:
			mustNot = append(mustNot, it)
		}
	}

	if len(should) > 0 {
		must = append(must, disjunction(should))
	}
	var include PostingsIterator
	switch len(must) {
	case 0:
		ids, err := src.AllDocIDs()
		if err != nil {
			return nil, err
		}
		include = NewSlicePostingsIterator(ids)
	case 1:
		include = must[0]
	default:
		include = NewConjunctionIterator(must)
	}

	if len(mustNot) == 0 {
		return include, nil
	}
	return NewExclusionIterator(include, disjunction(mustNot)), nil
}

func disjunction(its []PostingsIterator) PostingsIterator {
	if len(its) == 1 {
		return its[0]
	}
	return NewDisjunctionIterator(its)
}
