package engine

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GoStem/internal/query"
)

func drain(it PostingsIterator) []uint32 {
	var docs []uint32
	for it.Next() {
		docs = append(docs, it.DocID())
	}
	return docs
}

func slice(ids ...uint32) PostingsIterator { return NewSlicePostingsIterator(ids) }

// --- PostingsIterator Tests ---

func TestSlicePostingsIterator(t *testing.T) {
	assert.Equal(t, []uint32{1, 3, 5, 7}, drain(slice(1, 3, 5, 7)))
	assert.Empty(t, drain(slice()))

	it := NewSlicePostingsIterator([]uint32{1, 3, 5, 7, 9})
	assert.Equal(t, int64(5), it.Cost())
	require.True(t, it.Advance(4))
	assert.Equal(t, uint32(5), it.DocID())
	require.True(t, it.Advance(5))
	assert.Equal(t, uint32(5), it.DocID())
	assert.Equal(t, int64(2), it.Cost())
	assert.False(t, it.Advance(100))
	assert.False(t, it.Next())
	assert.False(t, it.Next())
}

// --- Conjunction Tests ---

func TestConjunctionIterator(t *testing.T) {
	tests := []struct {
		name string
		in   [][]uint32
		want []uint32
	}{
		{"basic", [][]uint32{{1, 2, 3, 5, 8}, {2, 3, 5, 7}}, []uint32{2, 3, 5}},
		{"no overlap", [][]uint32{{1, 3, 5}, {2, 4, 6}}, nil},
		{"three way", [][]uint32{{1, 2, 3, 4, 5, 6}, {2, 4, 6, 8}, {4, 6, 9}}, []uint32{4, 6}},
		{"single", [][]uint32{{7, 9}}, []uint32{7, 9}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var its []PostingsIterator
			for _, ids := range tt.in {
				its = append(its, slice(ids...))
			}
			assert.Equal(t, tt.want, drain(NewConjunctionIterator(its)))
		})
	}
}

func TestConjunctionIterator_Advance(t *testing.T) {
	c := NewConjunctionIterator([]PostingsIterator{slice(1, 3, 5, 7, 9), slice(3, 5, 9)})
	require.True(t, c.Advance(4))
	assert.Equal(t, uint32(5), c.DocID())
	require.True(t, c.Advance(5))
	assert.Equal(t, uint32(5), c.DocID())
	require.True(t, c.Advance(2))
	assert.Equal(t, uint32(5), c.DocID())
	require.True(t, c.Next())
	assert.Equal(t, uint32(9), c.DocID())
	assert.False(t, c.Next())
}

// --- Disjunction Tests ---

func TestDisjunctionIterator(t *testing.T) {
	d := NewDisjunctionIterator([]PostingsIterator{slice(1, 4, 7), slice(2, 4, 8), slice()})
	assert.Equal(t, []uint32{1, 2, 4, 7, 8}, drain(d))
	assert.Empty(t, drain(NewDisjunctionIterator(nil)))
}

func TestDisjunctionIterator_Advance(t *testing.T) {
	d := NewDisjunctionIterator([]PostingsIterator{slice(1, 5, 9), slice(3, 6)})
	require.True(t, d.Advance(4))
	assert.Equal(t, uint32(5), d.DocID())
	require.True(t, d.Advance(5))
	assert.Equal(t, uint32(5), d.DocID())
	require.True(t, d.Next())
	assert.Equal(t, uint32(6), d.DocID())
	require.True(t, d.Next())
	assert.Equal(t, uint32(9), d.DocID())
	assert.False(t, d.Advance(10))
}

func TestDisjunctionAsConjunctionLead(t *testing.T) {
	// The OR side is cheaper, so it leads and is moved with Advance.
	or := NewDisjunctionIterator([]PostingsIterator{slice(2, 6), slice(4)})
	and := NewConjunctionIterator([]PostingsIterator{or, slice(1, 2, 3, 4, 5, 6, 7, 8, 9, 10)})
	assert.Equal(t, []uint32{2, 4, 6}, drain(and))
}

// --- Exclusion Tests ---

func TestExclusionIterator(t *testing.T) {
	tests := []struct {
		name    string
		include []uint32
		exclude []uint32
		want    []uint32
	}{
		{"basic", []uint32{1, 2, 3, 4, 5}, []uint32{2, 4}, []uint32{1, 3, 5}},
		{"nothing excluded", []uint32{1, 2}, nil, []uint32{1, 2}},
		{"all excluded", []uint32{1, 2}, []uint32{1, 2, 3}, nil},
		{"exclude past end", []uint32{1, 2}, []uint32{9}, []uint32{1, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewExclusionIterator(slice(tt.include...), slice(tt.exclude...))
			assert.Equal(t, tt.want, drain(e))
		})
	}

	e := NewExclusionIterator(slice(1, 2, 3, 4), slice(3))
	require.True(t, e.Advance(3))
	assert.Equal(t, uint32(4), e.DocID())
}

// --- Execution ---

type memSource map[string][]uint32

func (m memSource) Postings(term string) ([]uint32, error) { return m[term], nil }

func (m memSource) PrefixPostings(prefix string, limit int) ([][]uint32, bool, error) {
	var terms []string
	for t := range m {
		if strings.HasPrefix(t, prefix) {
			terms = append(terms, t)
		}
	}
	sort.Strings(terms)
	more := len(terms) > limit
	if more {
		terms = terms[:limit]
	}
	out := make([][]uint32, len(terms))
	for i, t := range terms {
		out[i] = m[t]
	}
	return out, more, nil
}

func (m memSource) AllDocIDs() ([]uint32, error) {
	return []uint32{1, 2, 3, 4, 5, 6}, nil
}

var testSource = memSource{
	"нов":    {1, 3, 4},
	"новост": {3, 6},
	"машин":  {2, 4},
	"дорог":  {2, 4, 5},
}

func run(t *testing.T, q query.Query, maxTerms int) ([]uint32, error) {
	t.Helper()
	ec := NewExecutionContext(context.Background(), maxTerms)
	it, err := NewIterator(ec, q, testSource)
	if err != nil {
		return nil, err
	}
	c, err := Collect(ec, it, 0)
	return c.DocIDs, err
}

func term(s string) query.Query { return &query.TermQuery{Term: s} }

func boolean(clauses ...query.BooleanClause) query.Query {
	return &query.BooleanQuery{Clauses: clauses}
}

func must(q query.Query) query.BooleanClause {
	return query.BooleanClause{Occur: query.BooleanMust, Query: q}
}

func should(q query.Query) query.BooleanClause {
	return query.BooleanClause{Occur: query.BooleanShould, Query: q}
}

func not(q query.Query) query.BooleanClause {
	return query.BooleanClause{Occur: query.BooleanMustNot, Query: q}
}

func TestNewIterator(t *testing.T) {
	tests := []struct {
		name string
		q    query.Query
		want []uint32
	}{
		{"term", term("машин"), []uint32{2, 4}},
		{"missing term", term("кот"), nil},
		{"and", boolean(must(term("машин")), must(term("дорог"))), []uint32{2, 4}},
		{"or", boolean(should(term("машин")), should(term("нов"))), []uint32{1, 2, 3, 4}},
		{"and not", boolean(must(term("дорог")), not(term("машин"))), []uint32{5}},
		{"only not", boolean(not(term("дорог"))), []uint32{1, 3, 6}},
		{"prefix", &query.PrefixQuery{Prefix: "нов"}, []uint32{1, 3, 4, 6}},
		{"prefix not", boolean(must(&query.PrefixQuery{Prefix: "нов"}), not(term("машин"))), []uint32{1, 3, 6}},
		{"must and should", boolean(must(term("дорог")), should(term("нов")), should(term("новост"))), []uint32{4}},
		{"match all", &query.MatchAllQuery{}, []uint32{1, 2, 3, 4, 5, 6}},
		{"match none", &query.MatchNoneQuery{}, nil},
		{"nested", boolean(
			must(boolean(should(term("машин")), should(term("новост")))),
			not(boolean(must(term("дорог")), must(term("нов")))),
		), []uint32{2, 3, 6}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := run(t, tt.q, 0)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewIterator_PrefixLimit(t *testing.T) {
	_, err := run(t, &query.PrefixQuery{Prefix: "нов"}, 1)
	assert.ErrorIs(t, err, ErrMatchLimitExceeded)

	got, err := run(t, &query.PrefixQuery{Prefix: "нов"}, 2)
	require.NoError(t, err)
	assert.Equal(t, []uint32{1, 3, 4, 6}, got)

	q := boolean(should(&query.PrefixQuery{Prefix: "нов"}), should(&query.PrefixQuery{Prefix: "маш"}))
	_, err = run(t, q, 2)
	assert.ErrorIs(t, err, ErrMatchLimitExceeded)
}

func TestCollect_Limit(t *testing.T) {
	ec := NewExecutionContext(context.Background(), 0)
	c, err := Collect(ec, slice(1, 2, 3, 4, 5), 2)
	require.NoError(t, err)
	assert.Equal(t, []uint32{1, 2}, c.DocIDs)
	assert.Equal(t, 5, c.Total)
}

func TestExecutionContext_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ec := NewExecutionContext(ctx, 0)
	_, err := NewIterator(ec, term("нов"), testSource)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, ec.TimedOut)
}

func TestExecutionContext_Timeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()

	ec := NewExecutionContext(ctx, 0)
	_, err := Collect(ec, slice(1, 2, 3), 0)
	assert.ErrorIs(t, err, ErrQueryTimeout)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, ec.TimedOut)
}

func TestExecutionContext_AddTerms(t *testing.T) {
	ec := NewExecutionContext(context.Background(), 3)
	require.NoError(t, ec.AddTerms(3))
	assert.Equal(t, 0, ec.RemainingTerms())
	assert.ErrorIs(t, ec.AddTerms(1), ErrMatchLimitExceeded)
	assert.True(t, ec.LimitExceeded)
}
