package analysis

import (
	"github.com/kljensen/snowball"
)

// Filter transforms a word in place. Returning false drops the word.
type Filter interface {
	Name() string
	Apply(w *Word) bool
}

// FoldFilter lowercases words with FoldCase.
type FoldFilter struct{}

func (FoldFilter) Name() string { return "fold" }

func (FoldFilter) Apply(w *Word) bool {
	FoldCase(w)
	return true
}

// StemFilter strips Russian endings with Stem. Observe, when set, receives
// the rules that fired for every word.
type StemFilter struct {
	Observe func(Steps)
}

func (StemFilter) Name() string { return "stem" }

func (f StemFilter) Apply(w *Word) bool {
	steps := Stem(w)
	if f.Observe != nil {
		f.Observe(steps)
	}
	return true
}

// SnowballFilter stems with the Snowball algorithms: Russian for words that
// contain Cyrillic, English for pure Latin words. Other words pass through.
type SnowballFilter struct{}

func (SnowballFilter) Name() string { return "snowball" }

func (SnowballFilter) Apply(w *Word) bool {
	lang := scriptLanguage(w)
	if lang == "" {
		return true
	}
	stemmed, err := snowball.Stem(w.String(), lang, true)
	if err != nil || stemmed == "" {
		return true
	}
	w.SetBytes([]byte(stemmed))
	return true
}

// scriptLanguage picks the Snowball language for w: "russian" when any
// character is a Cyrillic pair, "english" when every byte is a Latin
// letter, "" otherwise.
func scriptLanguage(w *Word) string {
	latin := true
	for _, c := range w.chars {
		if c.IsPair() {
			return "russian"
		}
		b := c.Lead()
		if !(b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z') {
			latin = false
		}
	}
	if latin && !w.Empty() {
		return "english"
	}
	return ""
}
