package analysis

// FoldCase lowercases w in place. ASCII letters shift by 32; uppercase
// Cyrillic pairs under lead 0xD0 move to their lowercase code points, which
// for Р–Я and Ё live under lead 0xD1. Byte length and char grouping never
// change.
func FoldCase(w *Word) {
	var arr [MaxTokenLen]byte
	buf := w.AppendTo(arr[:0])
	FoldBytes(buf)
	j := 0
	for i, c := range w.chars {
		if c.IsPair() {
			w.chars[i] = Pair(buf[j], buf[j+1])
		} else {
			w.chars[i] = Single(buf[j])
		}
		j += c.Len()
	}
}

// FoldBytes lowercases raw bytes in place. Every byte is examined on its
// own: a 0xD0 rewrites the byte after it, and that byte is still checked as
// an ASCII letter or as a lead in turn. A trailing 0xD0 is left alone.
func FoldBytes(b []byte) {
	for i := 0; i < len(b); i++ {
		switch {
		case b[i] >= 'A' && b[i] <= 'Z':
			b[i] += 32
		case b[i] == LeadD0 && i+1 < len(b):
			foldPair(b[i:i+2])
		}
	}
}

func foldPair(p []byte) {
	switch cont := p[1]; {
	case cont >= 0x90 && cont <= 0x9F: // А–П
		p[1] = cont + 0x20
	case cont >= 0xA0 && cont <= 0xAF: // Р–Я
		p[0], p[1] = LeadD1, cont-0x20
	case cont == 0x81: // Ё
		p[0], p[1] = LeadD1, 0x91
	}
}
