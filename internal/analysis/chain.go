package analysis

import (
	"io"
	"strings"
)

// Chain is an Analyzer built from the byte Tokenizer followed by filters
// applied in order to every word.
type Chain struct {
	name      string
	filters   []Filter
	normalize bool
}

// NewChain creates a Chain with the given filters.
func NewChain(name string, filters ...Filter) *Chain {
	return &Chain{name: name, filters: filters}
}

// WithNormalization returns a copy of c that NFC-normalizes its input.
// Token offsets then refer to the normalized stream.
func (c *Chain) WithNormalization() *Chain {
	cp := *c
	cp.normalize = true
	return &cp
}

// Name returns the name the chain was created with.
func (c *Chain) Name() string { return c.name }

// Filters returns the names of the chain's filters in order.
func (c *Chain) Filters() []string {
	names := make([]string, len(c.filters))
	for i, f := range c.filters {
		names[i] = f.Name()
	}
	return names
}

// Apply runs the filters over w and reports whether w survived.
func (c *Chain) Apply(w *Word) bool {
	for _, f := range c.filters {
		if !f.Apply(w) {
			return false
		}
	}
	return !w.Empty()
}

// Stream tokenizes r and calls fn with each surviving term.
func (c *Chain) Stream(r io.Reader, fn func(Token) error) error {
	if c.normalize {
		r = NormalizeReader(r)
	}
	tz := NewTokenizer(r)
	pos := 0
	for tz.Scan() {
		w := tz.Word()
		if !c.Apply(w) {
			continue
		}
		tok := Token{
			Term:      w.String(),
			Position:  pos,
			StartByte: int(tz.Start()),
			EndByte:   int(tz.End()),
		}
		pos++
		if err := fn(tok); err != nil {
			return err
		}
	}
	return tz.Err()
}

// Analyze tokenizes text and returns all surviving terms.
func (c *Chain) Analyze(_ string, text string) []Token {
	var tokens []Token
	_ = c.Stream(strings.NewReader(text), func(t Token) error {
		tokens = append(tokens, t)
		return nil
	})
	return tokens
}

// Terms is a convenience returning only the term strings of Analyze.
func Terms(a Analyzer, text string) []string {
	tokens := a.Analyze("", text)
	if len(tokens) == 0 {
		return nil
	}
	terms := make([]string, len(tokens))
	for i, t := range tokens {
		terms[i] = t.Term
	}
	return terms
}
