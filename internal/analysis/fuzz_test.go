package analysis

import (
	"bytes"
	"testing"
)

func FuzzTokenizer(f *testing.F) {
	f.Add([]byte("Hello World"))
	f.Add([]byte(""))
	f.Add([]byte("Привет, мир!"))
	f.Add([]byte("a\xD0"))
	f.Add([]byte("\xD0\xD0\xD1"))
	f.Add(bytes.Repeat([]byte("ж"), 200))

	f.Fuzz(func(t *testing.T, input []byte) {
		tz := NewTokenizer(bytes.NewReader(input))
		var prevEnd int64
		for tz.Scan() {
			w := tz.Word()
			raw := w.Bytes()
			if len(raw) == 0 {
				t.Fatal("empty token produced")
			}
			if len(raw) > MaxTokenLen {
				t.Fatalf("token of %d bytes exceeds capacity", len(raw))
			}
			start, end := tz.Start(), tz.End()
			if start < prevEnd || end > int64(len(input)) || start >= end {
				t.Fatalf("bad offsets [%d,%d) after %d, input %d", start, end, prevEnd, len(input))
			}
			// Stored bytes are a prefix of the consumed run.
			if !bytes.HasPrefix(input[start:end], raw) {
				t.Fatalf("token %q is not a prefix of input run %q", raw, input[start:end])
			}
			prevEnd = end

			before := w.Len()
			FoldCase(w)
			if w.Len() != before {
				t.Fatalf("fold changed length %d -> %d", before, w.Len())
			}
			folded := w.String()
			FoldCase(w)
			if w.String() != folded {
				t.Fatalf("fold not idempotent: %q -> %q", folded, w.String())
			}

			rv := RV(w)
			Stem(w)
			if w.Len() > before {
				t.Fatalf("stem grew word %d -> %d", before, w.Len())
			}
			if rv >= before && w.String() != folded {
				t.Fatalf("word without stemmable region changed: %q -> %q", folded, w.String())
			}
		}
		if tz.Err() != nil {
			t.Fatal(tz.Err())
		}
		if tz.Offset() != int64(len(input)) {
			t.Fatalf("consumed %d of %d bytes", tz.Offset(), len(input))
		}
	})
}

func FuzzStemString(f *testing.F) {
	f.Add("красивая")
	f.Add("линии")
	f.Add("")
	f.Add("\xD1")

	f.Fuzz(func(t *testing.T, s string) {
		out := StemString(s)
		if len(out) > len(s) {
			t.Errorf("StemString(%q) = %q grew", s, out)
		}
	})
}
