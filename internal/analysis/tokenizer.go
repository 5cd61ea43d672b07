package analysis

import (
	"bufio"
	"errors"
	"io"
)

// Tokenizer splits a byte stream into word runs. It reads one byte at a
// time and keeps a single in-progress Word, so one Tokenizer must not be
// shared between streams.
//
// Usage mirrors bufio.Scanner:
//
//	tz := NewTokenizer(r)
//	for tz.Scan() {
//		w := tz.Word()
//		...
//	}
//	if err := tz.Err(); err != nil { ... }
type Tokenizer struct {
	r   io.ByteReader
	buf Word

	pos   int64 // bytes consumed so far
	start int64
	end   int64
	inRun bool

	err  error
	done bool
}

// NewTokenizer returns a Tokenizer reading from r. r is wrapped in a
// bufio.Reader unless it already implements io.ByteReader.
func NewTokenizer(r io.Reader) *Tokenizer {
	br, ok := r.(io.ByteReader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &Tokenizer{r: br}
}

// Scan advances to the next word. It returns false at end of input or on a
// read error. A run still open at end of input is emitted as the last word.
func (t *Tokenizer) Scan() bool {
	if t.done {
		return false
	}
	t.buf.Reset()
	t.inRun = false

	for {
		b, ok := t.readByte()
		if !ok {
			return t.err == nil && t.inRun
		}

		if !IsWordByte(b) {
			if t.inRun {
				return true
			}
			continue
		}

		if !t.inRun {
			t.inRun = true
			t.start = t.pos - 1
		}
		c := Single(b)
		if IsLeadByte(b) {
			next, ok := t.readByte()
			if !ok && t.err != nil {
				return false
			}
			if ok {
				c = Pair(b, next)
			}
		}
		// Characters past MaxTokenLen are consumed but not stored.
		t.buf.TryAppend(c)
		t.end = t.pos
	}
}

// Word returns the current word. It is owned by the Tokenizer and is
// overwritten by the next call to Scan; use Clone to keep it.
func (t *Tokenizer) Word() *Word { return &t.buf }

// Start returns the stream offset of the first byte of the current word.
func (t *Tokenizer) Start() int64 { return t.start }

// End returns the stream offset just past the current run, including
// bytes that were consumed but not stored.
func (t *Tokenizer) End() int64 { return t.end }

// Offset returns the number of bytes consumed from the source so far.
func (t *Tokenizer) Offset() int64 { return t.pos }

// Err returns the first read error other than io.EOF.
func (t *Tokenizer) Err() error { return t.err }

func (t *Tokenizer) readByte() (byte, bool) {
	b, err := t.r.ReadByte()
	if err != nil {
		t.done = true
		if !errors.Is(err, io.EOF) {
			t.err = err
		}
		return 0, false
	}
	t.pos++
	return b, true
}
