package analysis

import (
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scanned struct {
	text       string
	start, end int64
}

func scanAll(t *testing.T, r io.Reader) []scanned {
	t.Helper()
	tz := NewTokenizer(r)
	var out []scanned
	for tz.Scan() {
		w := tz.Word()
		out = append(out, scanned{text: w.String(), start: tz.Start(), end: tz.End()})
	}
	require.NoError(t, tz.Err())
	return out
}

func scanTexts(t *testing.T, input string) []string {
	t.Helper()
	var texts []string
	for _, s := range scanAll(t, strings.NewReader(input)) {
		texts = append(texts, s.text)
	}
	return texts
}

func TestTokenizer(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"two words", "foo bar", []string{"foo", "bar"}},
		{"empty", "", nil},
		{"only separators", " ,.;\n\t", nil},
		{"hyphen is a word byte", "Hello-World", []string{"Hello-World"}},
		{"digits", "test123 456abc", []string{"test123", "456abc"}},
		{"punctuation", "  foo,, bar.  ", []string{"foo", "bar"}},
		{"cyrillic", "Привет, мир!", []string{"Привет", "мир"}},
		{"mixed scripts", "Lada-Веста 2024г", []string{"Lada-Веста", "2024г"}},
		{"no trailing separator", "последнее слово", []string{"последнее", "слово"}},
		{"other utf8 is a separator", "café", []string{"caf"}},
		{"em dash splits", "а—б", []string{"а", "б"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, scanTexts(t, tt.input))
		})
	}
}

func TestTokenizer_Offsets(t *testing.T) {
	got := scanAll(t, strings.NewReader("foo bar"))
	require.Len(t, got, 2)
	assert.Equal(t, scanned{"foo", 0, 3}, got[0])
	assert.Equal(t, scanned{"bar", 4, 7}, got[1])

	got = scanAll(t, strings.NewReader("  мир"))
	require.Len(t, got, 1)
	assert.Equal(t, int64(2), got[0].start)
	assert.Equal(t, int64(8), got[0].end)
}

func TestTokenizer_LeadByteAtEndOfStream(t *testing.T) {
	got := scanAll(t, strings.NewReader("a\xD0"))
	require.Len(t, got, 1)
	assert.Equal(t, "a\xD0", got[0].text)

	tz := NewTokenizer(strings.NewReader("a\xD0"))
	require.True(t, tz.Scan())
	w := tz.Word()
	require.Equal(t, 2, w.NumChars())
	assert.False(t, w.Char(1).IsPair())
	assert.False(t, tz.Scan())
}

func TestTokenizer_LeadByteTakesNextByteUnconditionally(t *testing.T) {
	// The space after 0xD0 is its pair, so the run continues into "x".
	assert.Equal(t, []string{"\xD0 x"}, scanTexts(t, "\xD0 x"))
	// A lone continuation byte is a separator.
	assert.Equal(t, []string{"a", "b"}, scanTexts(t, "a\xB0b"))
}

func TestTokenizer_Capacity(t *testing.T) {
	long := strings.Repeat("a", 300)
	got := scanAll(t, strings.NewReader(long+" next"))
	require.Len(t, got, 2)
	assert.Equal(t, strings.Repeat("a", MaxTokenLen), got[0].text)
	assert.Equal(t, int64(0), got[0].start)
	assert.Equal(t, int64(300), got[0].end)
	assert.Equal(t, scanned{"next", 301, 305}, got[1])
}

func TestTokenizer_CapacityExactBoundary(t *testing.T) {
	exact := strings.Repeat("ж", MaxTokenLen/2)
	got := scanAll(t, strings.NewReader(exact+"жж да"))
	require.Len(t, got, 2)
	assert.Equal(t, exact, got[0].text)
	assert.Equal(t, "да", got[1].text)
	assert.Equal(t, int64(len(exact)+4+1), got[1].start)
}

func TestTokenizer_CapacityKeepsPairsWhole(t *testing.T) {
	input := "a" + strings.Repeat("ж", 130)
	tz := NewTokenizer(strings.NewReader(input))
	require.True(t, tz.Scan())
	w := tz.Word()
	assert.Equal(t, MaxTokenLen-1, w.Len())
	assert.True(t, w.Char(w.NumChars()-1).IsPair())
	assert.Equal(t, int64(len(input)), tz.End())
	assert.False(t, tz.Scan())
}

func TestTokenizer_ReadError(t *testing.T) {
	boom := errors.New("boom")
	r := io.MultiReader(strings.NewReader("abc def"), iotest.ErrReader(boom))
	tz := NewTokenizer(r)

	require.True(t, tz.Scan())
	assert.Equal(t, "abc", tz.Word().String())
	assert.False(t, tz.Scan())
	assert.ErrorIs(t, tz.Err(), boom)
	assert.False(t, tz.Scan())
}

func TestTokenizer_OneByteReader(t *testing.T) {
	r := iotest.OneByteReader(strings.NewReader("Мама мыла раму"))
	assert.Equal(t, []string{"Мама", "мыла", "раму"}, func() []string {
		var out []string
		for _, s := range scanAll(t, r) {
			out = append(out, s.text)
		}
		return out
	}())
}
