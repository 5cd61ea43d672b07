// Package query holds the boolean query AST, its parser and a rewriter
// that simplifies parsed trees before execution.
package query

import "strings"

// QueryType identifies the kind of query node.
type QueryType int

const (
	QueryTypeTerm QueryType = iota
	QueryTypeBoolean
	QueryTypePrefix
	QueryTypeMatchAll
	QueryTypeMatchNone
)

// Query is the interface for all query AST nodes.
type Query interface {
	Type() QueryType
	String() string
}

// Limits enforced by the parser and executor.
const (
	MaxBooleanClauses = 1024
	MaxBooleanDepth   = 32
	MaxTermsExpanded  = 1000
)

// TermQuery matches documents containing the exact analyzed term.
type TermQuery struct {
	Term string
}

func (q *TermQuery) Type() QueryType { return QueryTypeTerm }
func (q *TermQuery) String() string  { return q.Term }

// BooleanOp defines the boolean operator.
type BooleanOp int

const (
	BooleanMust    BooleanOp = iota // AND
	BooleanShould                   // OR
	BooleanMustNot                  // NOT
)

func (op BooleanOp) String() string {
	switch op {
	case BooleanMust:
		return "AND"
	case BooleanShould:
		return "OR"
	case BooleanMustNot:
		return "NOT"
	}
	return "?"
}

// BooleanClause is a single clause within a BooleanQuery.
type BooleanClause struct {
	Occur BooleanOp
	Query Query
}

// BooleanQuery combines sub-queries with boolean logic. A document must
// match every Must clause, at least one Should clause when there are any,
// and no MustNot clause. With only MustNot clauses every other document
// matches.
type BooleanQuery struct {
	Clauses []BooleanClause
}

func (q *BooleanQuery) Type() QueryType { return QueryTypeBoolean }

func (q *BooleanQuery) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for i, c := range q.Clauses {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(c.Occur.String())
		b.WriteByte(' ')
		b.WriteString(c.Query.String())
	}
	b.WriteByte(')')
	return b.String()
}

// PrefixQuery matches every term starting with Prefix.
type PrefixQuery struct {
	Prefix string
}

func (q *PrefixQuery) Type() QueryType { return QueryTypePrefix }
func (q *PrefixQuery) String() string  { return q.Prefix + "*" }

// MatchAllQuery matches all documents.
type MatchAllQuery struct{}

func (q *MatchAllQuery) Type() QueryType { return QueryTypeMatchAll }
func (q *MatchAllQuery) String() string  { return "*:*" }

// MatchNoneQuery matches no documents.
type MatchNoneQuery struct{}

func (q *MatchNoneQuery) Type() QueryType { return QueryTypeMatchNone }
func (q *MatchNoneQuery) String() string  { return "-*:*" }
