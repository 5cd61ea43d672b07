package analysis

// Suffix is an immutable ending the stemmer may strip.
type Suffix struct {
	text  string
	chars []Char
}

func newSuffix(s string) Suffix {
	w := ParseWord(s)
	return Suffix{text: s, chars: w.chars}
}

// String returns the suffix text.
func (s Suffix) String() string { return s.text }

// Len returns the byte length of the suffix.
func (s Suffix) Len() int { return len(s.text) }

func suffixList(texts ...string) []Suffix {
	out := make([]Suffix, len(texts))
	for i, t := range texts {
		out[i] = newSuffix(t)
	}
	return out
}

// Ordered suffix tables. The first entry that matches wins, so the order is
// part of the algorithm and must not be changed. NOUN lists "ей" twice; the
// second entry is unreachable and kept so the table stays as published.
var (
	adjectiveSuffixes = suffixList(
		"ее", "ие", "ые", "ое",
		"ими", "ыми", "ей",
		"ий", "ый", "ой", "ем",
		"им", "ым", "ом", "его",
		"ого", "ему", "ому",
		"их", "ых", "ую", "юю",
		"ая", "яя",
	)

	nounSuffixes = suffixList(
		"а", "ев", "ов", "ие",
		"ье", "е", "иями",
		"ями", "ами", "ей",
		"ий", "и", "ией", "ей",
		"ой", "ими", "ыми",
		"ом", "ам", "ям", "ах",
		"ях", "ы", "ью", "ию",
		"ь", "я", "ю", "о", "у",
	)

	suffixI   = newSuffix("и")
	suffixOst = newSuffix("ость")
)

// AdjectiveSuffixes returns a copy of the adjective table in match order.
func AdjectiveSuffixes() []Suffix {
	return append([]Suffix(nil), adjectiveSuffixes...)
}

// NounSuffixes returns a copy of the noun table in match order.
func NounSuffixes() []Suffix {
	return append([]Suffix(nil), nounSuffixes...)
}
