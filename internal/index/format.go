package index

import (
	"bytes"
	"encoding/binary"
	"strings"
	"unicode/utf8"

	"GoStem/internal/analysis"
)

// Dictionary record: term [32]byte NUL padded, doc frequency uint32,
// postings byte offset uint64. All integers are little-endian.
const (
	TermFieldSize  = 32
	MaxTermLen     = TermFieldSize - 1
	DictRecordSize = TermFieldSize + 4 + 8
	PostingSize    = 4
)

// Forward record: id uint32, url [128]byte, title [124]byte.
const (
	URLFieldSize     = 128
	TitleFieldSize   = 124
	DocRecordSize    = 4 + URLFieldSize + TitleFieldSize
	MaxURLLen        = URLFieldSize - 1
	MaxTitleLen      = TitleFieldSize - 1
	urlFieldOffset   = 4
	titleFieldOffset = urlFieldOffset + URLFieldSize
)

// DictEntry is one decoded dictionary record.
type DictEntry struct {
	Term    string
	DocFreq uint32
	Offset  uint64
}

// DocRecord is one decoded forward-index record.
type DocRecord struct {
	ID    uint32 `json:"id"`
	URL   string `json:"url"`
	Title string `json:"title"`
}

// TruncateTerm shortens term to MaxTermLen bytes without splitting a
// two-byte character.
func TruncateTerm(term string) string {
	if len(term) <= MaxTermLen {
		return term
	}
	w := analysis.ParseWord(term)
	w.Truncate(MaxTermLen)
	return w.String()
}

// StorableTerm reports whether term fits a NUL padded dictionary record:
// non-empty and free of 0x00 bytes.
func StorableTerm(term string) bool {
	return term != "" && strings.IndexByte(term, 0) < 0
}

// truncateText shortens s to max bytes at a UTF-8 boundary.
func truncateText(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func encodeDictEntry(buf []byte, e DictEntry) {
	clear(buf[:TermFieldSize])
	copy(buf[:MaxTermLen], e.Term)
	binary.LittleEndian.PutUint32(buf[TermFieldSize:], e.DocFreq)
	binary.LittleEndian.PutUint64(buf[TermFieldSize+4:], e.Offset)
}

func decodeDictEntry(buf []byte) DictEntry {
	return DictEntry{
		Term:    string(termKey(buf)),
		DocFreq: binary.LittleEndian.Uint32(buf[TermFieldSize:]),
		Offset:  binary.LittleEndian.Uint64(buf[TermFieldSize+4:]),
	}
}

// termKey returns the NUL-stripped term bytes of an encoded record.
func termKey(buf []byte) []byte {
	if i := bytes.IndexByte(buf[:TermFieldSize], 0); i >= 0 {
		return buf[:i]
	}
	return buf[:TermFieldSize]
}

func encodeDoc(buf []byte, d DocRecord) {
	clear(buf[:DocRecordSize])
	binary.LittleEndian.PutUint32(buf, d.ID)
	copy(buf[urlFieldOffset:], truncateText(d.URL, MaxURLLen))
	copy(buf[titleFieldOffset:], truncateText(d.Title, MaxTitleLen))
}

func decodeDoc(buf []byte) DocRecord {
	return DocRecord{
		ID:    binary.LittleEndian.Uint32(buf),
		URL:   cString(buf[urlFieldOffset:titleFieldOffset]),
		Title: cString(buf[titleFieldOffset:DocRecordSize]),
	}
}

func cString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}
