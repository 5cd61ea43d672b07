package analysis

import (
	"io"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeReader composes decomposed sequences (for example и followed by
// a combining breve) into their NFC form before tokenization, so they reach
// the tokenizer as single two-byte characters.
func NormalizeReader(r io.Reader) io.Reader {
	return transform.NewReader(r, norm.NFC)
}
