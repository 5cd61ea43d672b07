package analysis

// Steps records which stripping rules fired for one word.
type Steps uint8

const (
	StepAdjective Steps = 1 << iota
	StepNoun
	StepI
	StepOst
)

// Has reports whether every rule in s2 fired.
func (s Steps) Has(s2 Steps) bool { return s&s2 == s2 }

// String lists the fired rules, e.g. "noun+i".
func (s Steps) String() string {
	if s == 0 {
		return "none"
	}
	names := [...]string{"adjective", "noun", "i", "ost"}
	out := ""
	for i, n := range names {
		if s&(1<<i) == 0 {
			continue
		}
		if out != "" {
			out += "+"
		}
		out += n
	}
	return out
}

// RV returns the byte offset just past the first vowel of w, or w.Len()
// when w has no vowel.
func RV(w *Word) int {
	off := 0
	for _, c := range w.chars {
		if IsVowel(c) {
			return off + c.Len()
		}
		off += c.Len()
	}
	return w.size
}

// MatchSuffix returns the byte length of s when it ends w and lies wholly
// inside the region starting at rv, and 0 otherwise.
func MatchSuffix(w *Word, rv int, s Suffix) int {
	if w.size-rv < s.Len() {
		return 0
	}
	j := len(w.chars) - 1
	for i := len(s.chars) - 1; i >= 0; i-- {
		if j < 0 || w.chars[j] != s.chars[i] {
			return 0
		}
		j--
	}
	return s.Len()
}

// Stem strips inflectional endings from a case-folded word in place.
//
// RV is computed once. At most one adjective or, failing that, one noun
// ending is removed; then "и" and "ость" are each tried against the current
// tail. All four checks use the original RV even after the word has shrunk.
func Stem(w *Word) Steps {
	rv := RV(w)
	if rv >= w.size {
		return 0
	}

	var steps Steps
	if stripFirst(w, rv, adjectiveSuffixes) {
		steps |= StepAdjective
	} else if stripFirst(w, rv, nounSuffixes) {
		steps |= StepNoun
	}
	if n := MatchSuffix(w, rv, suffixI); n > 0 {
		w.Shrink(n)
		steps |= StepI
	}
	if n := MatchSuffix(w, rv, suffixOst); n > 0 {
		w.Shrink(n)
		steps |= StepOst
	}
	return steps
}

// StemString runs FoldCase and Stem over a single word given as text.
func StemString(s string) string {
	w := ParseWord(s)
	FoldCase(&w)
	Stem(&w)
	return w.String()
}

func stripFirst(w *Word, rv int, table []Suffix) bool {
	for _, s := range table {
		if n := MatchSuffix(w, rv, s); n > 0 {
			w.Shrink(n)
			return true
		}
	}
	return false
}
