package analysis

// Lead bytes of the two-byte Cyrillic block.
const (
	LeadD0 byte = 0xD0
	LeadD1 byte = 0xD1
)

// MaxTokenLen is the largest number of bytes a single word may hold.
// Longer runs are consumed from the input but truncated in storage.
const MaxTokenLen = 256

// IsLeadByte reports whether b opens a two-byte Cyrillic character.
func IsLeadByte(b byte) bool {
	return b == LeadD0 || b == LeadD1
}

// IsWordByte reports whether b may start or continue a word run:
// ASCII letters, digits, hyphen and the Cyrillic lead bytes.
func IsWordByte(b byte) bool {
	switch {
	case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z':
		return true
	case b >= '0' && b <= '9', b == '-':
		return true
	}
	return IsLeadByte(b)
}

// Char is one unit of a Word: a single byte, or a lead byte together with
// the byte that followed it in the stream. A lead byte cut off by the end of
// input is a one-byte Char.
type Char struct {
	b [2]byte
	n uint8
}

// Single returns a one-byte Char.
func Single(b byte) Char {
	return Char{b: [2]byte{b, 0}, n: 1}
}

// Pair returns a two-byte Char.
func Pair(lead, cont byte) Char {
	return Char{b: [2]byte{lead, cont}, n: 2}
}

// Len returns the byte length of c (1 or 2).
func (c Char) Len() int { return int(c.n) }

// Lead returns the first byte of c.
func (c Char) Lead() byte { return c.b[0] }

// Cont returns the paired byte of a two-byte Char and 0 otherwise.
func (c Char) Cont() byte {
	if c.n < 2 {
		return 0
	}
	return c.b[1]
}

// IsPair reports whether c carries a lead byte and its paired byte.
func (c Char) IsPair() bool { return c.n == 2 }

// AppendTo appends the bytes of c to dst.
func (c Char) AppendTo(dst []byte) []byte {
	return append(dst, c.b[:c.n]...)
}

// Word is a token as a sequence of characters. Every mutation adds or
// removes whole characters, so a two-byte pair is never split.
type Word struct {
	chars []Char
	size  int
}

// NewWord decodes raw bytes the same way the tokenizer groups them: a lead
// byte absorbs the following byte, anything else stands alone.
func NewWord(raw []byte) Word {
	var w Word
	for i := 0; i < len(raw); i++ {
		if IsLeadByte(raw[i]) && i+1 < len(raw) {
			w.push(Pair(raw[i], raw[i+1]))
			i++
			continue
		}
		w.push(Single(raw[i]))
	}
	return w
}

// ParseWord is NewWord for string input.
func ParseWord(s string) Word {
	return NewWord([]byte(s))
}

// Len returns the byte length of the live portion of w.
func (w *Word) Len() int { return w.size }

// NumChars returns the number of characters in w.
func (w *Word) NumChars() int { return len(w.chars) }

// Char returns the i-th character.
func (w *Word) Char(i int) Char { return w.chars[i] }

// Empty reports whether w holds no characters.
func (w *Word) Empty() bool { return len(w.chars) == 0 }

// Bytes returns a fresh copy of the live bytes of w.
func (w *Word) Bytes() []byte {
	return w.AppendTo(make([]byte, 0, w.size))
}

// AppendTo appends the live bytes of w to dst.
func (w *Word) AppendTo(dst []byte) []byte {
	for _, c := range w.chars {
		dst = c.AppendTo(dst)
	}
	return dst
}

// String returns the live bytes of w as a string.
func (w *Word) String() string {
	return string(w.Bytes())
}

// Reset empties w, keeping its storage.
func (w *Word) Reset() {
	w.chars = w.chars[:0]
	w.size = 0
}

// Clone returns a copy of w that shares no storage with it.
func (w *Word) Clone() Word {
	chars := make([]Char, len(w.chars))
	copy(chars, w.chars)
	return Word{chars: chars, size: w.size}
}

// TryAppend adds c when the result stays within MaxTokenLen bytes and
// reports whether it did.
func (w *Word) TryAppend(c Char) bool {
	if w.size+c.Len() > MaxTokenLen {
		return false
	}
	w.push(c)
	return true
}

// Shrink drops trailing characters totalling n bytes and returns the new
// byte length. n must fall on a character boundary; otherwise w is left
// untouched.
func (w *Word) Shrink(n int) int {
	if n <= 0 || n > w.size {
		return w.size
	}
	k := len(w.chars)
	removed := 0
	for k > 0 && removed < n {
		k--
		removed += w.chars[k].Len()
	}
	if removed != n {
		return w.size
	}
	w.chars = w.chars[:k]
	w.size -= n
	return w.size
}

// Truncate keeps at most max bytes of w, cutting before the first character
// that would not fit whole.
func (w *Word) Truncate(max int) {
	if w.size <= max {
		return
	}
	size := 0
	k := 0
	for k < len(w.chars) && size+w.chars[k].Len() <= max {
		size += w.chars[k].Len()
		k++
	}
	w.chars = w.chars[:k]
	w.size = size
}

// SetBytes replaces the contents of w with raw, decoded as in NewWord.
func (w *Word) SetBytes(raw []byte) {
	*w = NewWord(raw)
}

func (w *Word) push(c Char) {
	w.chars = append(w.chars, c)
	w.size += c.Len()
}
