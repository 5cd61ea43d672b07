package benchmark

import (
	"fmt"
	"strings"

	"GoStem/internal/testutil"
)

var words = []string{
	"новая", "машина", "дорога", "город", "новости", "красивая", "модель", "продажа",
	"наука", "открытие", "россия", "москва", "правительство", "экономика", "рынок", "цена",
}

// generatedDocs returns n documents of roughly bodyWords words each.
func generatedDocs(n, bodyWords int) []testutil.SampleDoc {
	docs := make([]testutil.SampleDoc, n)
	for i := range docs {
		var sb strings.Builder
		for j := 0; j < bodyWords; j++ {
			if j > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(words[(i*7+j*3+j/5)%len(words)])
		}
		docs[i] = testutil.SampleDoc{
			ID:    uint32(i + 1),
			URL:   fmt.Sprintf("https://news.example/%d", i+1),
			Title: fmt.Sprintf("Новость %d", i+1),
			Text:  sb.String(),
		}
	}
	return docs
}
