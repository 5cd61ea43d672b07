package query

import (
	"errors"
	"fmt"
	"strings"

	"GoStem/internal/analysis"
)

var (
	ErrEmptyQuery     = errors.New("empty query")
	ErrSyntax         = errors.New("query syntax error")
	ErrTooManyClauses = errors.New("too many query clauses")
	ErrTooDeep        = errors.New("query nested too deeply")
)

type tokenKind int

const (
	tokWord tokenKind = iota
	tokAnd
	tokOr
	tokNot
	tokLParen
	tokRParen
	tokEOF
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

func (t token) describe() string {
	switch t.kind {
	case tokEOF:
		return "end of query"
	case tokWord:
		return fmt.Sprintf("%q", t.text)
	}
	return t.text
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f' || b == '\v'
}

func isDelim(b byte) bool {
	return isSpace(b) || b == '(' || b == ')' || b == '!' || b == '&' || b == '|'
}

func lex(s string) []token {
	var toks []token
	for i := 0; i < len(s); {
		b := s[i]
		switch {
		case isSpace(b):
			i++
		case b == '(':
			toks = append(toks, token{tokLParen, "(", i})
			i++
		case b == ')':
			toks = append(toks, token{tokRParen, ")", i})
			i++
		case b == '!':
			toks = append(toks, token{tokNot, "!", i})
			i++
		case b == '&' || b == '|':
			kind, n := tokAnd, 1
			if b == '|' {
				kind = tokOr
			}
			if i+1 < len(s) && s[i+1] == b {
				n = 2
			}
			toks = append(toks, token{kind, s[i : i+n], i})
			i += n
		default:
			start := i
			for i < len(s) && !isDelim(s[i]) {
				i++
			}
			word := s[start:i]
			kind := tokWord
			switch word {
			case "AND":
				kind = tokAnd
			case "OR":
				kind = tokOr
			case "NOT":
				kind = tokNot
			}
			toks = append(toks, token{kind, word, start})
		}
	}
	return append(toks, token{tokEOF, "", len(s)})
}

// Parse turns a boolean query string into a rewritten AST. Words are
// analyzed with a; words next to each other are joined with AND. The
// operators are AND or &&, OR or ||, NOT or !, and parentheses. A word
// ending in * is a prefix and is only case-folded. A word that analyzes
// to nothing matches every document.
func Parse(input string, a analysis.Analyzer) (Query, error) {
	p := &parser{toks: lex(input), analyzer: a}
	if p.peek().kind == tokEOF {
		return nil, ErrEmptyQuery
	}
	q, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, fmt.Errorf("%w: unexpected %s at %d", ErrSyntax, t.describe(), t.pos)
	}
	return Rewrite(q), nil
}

type parser struct {
	toks     []token
	pos      int
	depth    int
	leaves   int
	analyzer analysis.Analyzer
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) parseOr() (Query, error) {
	first, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokOr {
		return first, nil
	}
	bq := &BooleanQuery{Clauses: []BooleanClause{{Occur: BooleanShould, Query: first}}}
	for p.peek().kind == tokOr {
		p.next()
		q, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		bq.Clauses = append(bq.Clauses, BooleanClause{Occur: BooleanShould, Query: q})
	}
	return bq, nil
}

func startsUnary(k tokenKind) bool {
	return k == tokWord || k == tokNot || k == tokLParen
}

func (p *parser) parseAnd() (Query, error) {
	var clauses []BooleanClause
	for {
		q, neg, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		occur := BooleanMust
		if neg {
			occur = BooleanMustNot
		}
		clauses = append(clauses, BooleanClause{Occur: occur, Query: q})

		switch k := p.peek().kind; {
		case k == tokAnd:
			p.next()
		case startsUnary(k):
		default:
			if len(clauses) == 1 && clauses[0].Occur == BooleanMust {
				return clauses[0].Query, nil
			}
			return &BooleanQuery{Clauses: clauses}, nil
		}
	}
}

// parseUnary returns the operand and whether an odd number of NOTs
// preceded it.
func (p *parser) parseUnary() (Query, bool, error) {
	neg := false
	for p.peek().kind == tokNot {
		p.next()
		neg = !neg
	}
	q, err := p.parsePrimary()
	return q, neg, err
}

func (p *parser) parsePrimary() (Query, error) {
	t := p.next()
	switch t.kind {
	case tokLParen:
		p.depth++
		if p.depth > MaxBooleanDepth {
			return nil, fmt.Errorf("%w: more than %d levels at %d", ErrTooDeep, MaxBooleanDepth, t.pos)
		}
		q, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if c := p.next(); c.kind != tokRParen {
			return nil, fmt.Errorf("%w: expected ) for ( at %d, got %s", ErrSyntax, t.pos, c.describe())
		}
		p.depth--
		return q, nil
	case tokWord:
		p.leaves++
		if p.leaves > MaxBooleanClauses {
			return nil, fmt.Errorf("%w: limit is %d", ErrTooManyClauses, MaxBooleanClauses)
		}
		return p.wordQuery(t.text), nil
	}
	return nil, fmt.Errorf("%w: unexpected %s at %d", ErrSyntax, t.describe(), t.pos)
}

func (p *parser) wordQuery(raw string) Query {
	text := strings.TrimRight(raw, "*")
	if len(text) < len(raw) {
		return prefixQuery(text, p.analyzer)
	}
	return conjunction(analysis.Terms(p.analyzer, text))
}

// prefixQuery folds the word runs of text; the last run becomes the
// prefix and any earlier runs are analyzed as ordinary terms.
func prefixQuery(text string, a analysis.Analyzer) Query {
	tz := analysis.NewTokenizer(strings.NewReader(text))
	var words []string
	for tz.Scan() {
		w := tz.Word()
		analysis.FoldCase(w)
		words = append(words, w.String())
	}
	if len(words) == 0 {
		return &MatchAllQuery{}
	}
	var clauses []BooleanClause
	for _, w := range words[:len(words)-1] {
		for _, t := range analysis.Terms(a, w) {
			clauses = append(clauses, BooleanClause{Occur: BooleanMust, Query: &TermQuery{Term: t}})
		}
	}
	last := &PrefixQuery{Prefix: words[len(words)-1]}
	if len(clauses) == 0 {
		return last
	}
	return &BooleanQuery{Clauses: append(clauses, BooleanClause{Occur: BooleanMust, Query: last})}
}

func conjunction(terms []string) Query {
	switch len(terms) {
	case 0:
		return &MatchAllQuery{}
	case 1:
		return &TermQuery{Term: terms[0]}
	}
	bq := &BooleanQuery{Clauses: make([]BooleanClause, len(terms))}
	for i, t := range terms {
		bq.Clauses[i] = BooleanClause{Occur: BooleanMust, Query: &TermQuery{Term: t}}
	}
	return bq
}
