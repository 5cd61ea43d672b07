package analysis

// Continuation bytes that make a vowel under each lead byte. The D0 set
// covers а, е, и, о plus 0x83, 0x8D, 0x8E, 0x8F; the D1 set covers ы and ё.
var (
	vowelsD0 = [256]bool{0xB0: true, 0xB5: true, 0xB8: true, 0xBE: true, 0x83: true, 0x8D: true, 0x8E: true, 0x8F: true}
	vowelsD1 = [256]bool{0x8B: true, 0x91: true}
)

// IsVowel reports whether c is one of the lowercase Russian vowels
// recognised by the stemmer. Single-byte characters, Latin letters
// included, are never vowels.
func IsVowel(c Char) bool {
	if !c.IsPair() {
		return false
	}
	switch c.Lead() {
	case LeadD0:
		return vowelsD0[c.Cont()]
	case LeadD1:
		return vowelsD1[c.Cont()]
	}
	return false
}
