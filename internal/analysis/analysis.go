package analysis

import "io"

// Token is a single analyzed term together with its place in the input.
type Token struct {
	Term      string
	Position  int
	StartByte int
	EndByte   int
}

// Analyzer turns text into a stream of terms.
// Implementations keep no per-call state and are safe for concurrent use.
type Analyzer interface {
	// Analyze tokenizes text and returns terms with positions.
	Analyze(field string, text string) []Token

	// Stream analyzes r and calls fn for every term in order. Stream stops
	// at the first error returned by fn or by r.
	Stream(r io.Reader, fn func(Token) error) error
}
