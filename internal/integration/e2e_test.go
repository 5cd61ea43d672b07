package integration

import (
	"context"
	"errors"
	"slices"
	"testing"

	"GoStem/internal/analysis"
	"GoStem/internal/query"
	"GoStem/internal/search"
	"GoStem/internal/testutil"
)

func openSearcher(t *testing.T) *search.Searcher {
	t.Helper()
	root := testutil.BuildIndex(t, testutil.SampleDocs(), analysis.AnalyzerRussian)
	s, err := search.Open(root, search.Options{Verify: true})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func hitIDs(res search.Result) []uint32 {
	ids := make([]uint32, len(res.Hits))
	for i, h := range res.Hits {
		ids[i] = h.ID
	}
	return ids
}

func TestE2E_CorpusIndexSearch(t *testing.T) {
	s := openSearcher(t)

	if st := s.Stats(); st.Docs != 4 || st.Analyzer != analysis.AnalyzerRussian {
		t.Fatalf("stats = %+v, want 4 russian docs", st)
	}

	tests := []struct {
		q    string
		want []uint32
	}{
		{"машина", []uint32{2, 4}},
		{"МАШИНЫ", []uint32{2, 4}},
		{"машина дорога", []uint32{2, 4}},
		{"машина AND lada", nil},
		{"lada OR новости", []uint32{1, 3}},
		{"нов* AND NOT машины", []uint32{1, 3}},
		{"!(машина || lada)", []uint32{3}},
		{"новая", []uint32{1, 3, 4}},
		{"Lada || (машина && !дорога)", []uint32{1}},
		{"NOT NOT lada", []uint32{1}},
		{"новост*", []uint32{3}},
		{"абракадабра", nil},
		{"абракадабра*", nil},
	}
	for _, tt := range tests {
		t.Run(tt.q, func(t *testing.T) {
			res, err := s.Search(context.Background(), tt.q, 10)
			if err != nil {
				t.Fatalf("search %q: %v", tt.q, err)
			}
			got := hitIDs(res)
			if !slices.Equal(got, tt.want) && !(len(got) == 0 && len(tt.want) == 0) {
				t.Errorf("search %q = %v, want %v (parsed %s)", tt.q, got, tt.want, res.Parsed)
			}
			if res.Total != len(tt.want) {
				t.Errorf("total = %d, want %d", res.Total, len(tt.want))
			}
		})
	}
}

func TestE2E_ForwardRecords(t *testing.T) {
	s := openSearcher(t)

	res, err := s.Search(context.Background(), "дорога", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Hits) != 2 {
		t.Fatalf("hits = %d, want 2", len(res.Hits))
	}
	if res.Hits[0].URL != "https://news.example/2" || res.Hits[0].Title != "Article 2" {
		t.Errorf("hit 0 = %+v", res.Hits[0])
	}
	if res.Hits[1].Title != "Дорога" {
		t.Errorf("hit 1 title = %q, want Дорога", res.Hits[1].Title)
	}
}

func TestE2E_Limit(t *testing.T) {
	s := openSearcher(t)

	res, err := s.Search(context.Background(), "нов*", 1)
	if err != nil {
		t.Fatal(err)
	}
	if res.Total != 3 || len(res.Hits) != 1 || res.Hits[0].ID != 1 {
		t.Errorf("total=%d hits=%v, want total 3 and first hit 1", res.Total, hitIDs(res))
	}
}

func TestE2E_QueryErrors(t *testing.T) {
	s := openSearcher(t)

	tests := []struct {
		q    string
		want error
	}{
		{"", query.ErrEmptyQuery},
		{"   ", query.ErrEmptyQuery},
		{"(машина", query.ErrSyntax},
		{"машина AND", query.ErrSyntax},
		{"машина )", query.ErrSyntax},
	}
	for _, tt := range tests {
		_, err := s.Search(context.Background(), tt.q, 10)
		if !errors.Is(err, tt.want) {
			t.Errorf("search %q: err = %v, want %v", tt.q, err, tt.want)
		}
		if !search.IsQueryError(err) {
			t.Errorf("search %q: IsQueryError = false", tt.q)
		}
	}
}

func TestE2E_AnalyzersAgree(t *testing.T) {
	for _, name := range []string{analysis.AnalyzerRussian, analysis.AnalyzerLowercase, analysis.AnalyzerSnowball} {
		t.Run(name, func(t *testing.T) {
			root := testutil.BuildIndex(t, testutil.SampleDocs(), name)
			s, err := search.Open(root, search.Options{})
			if err != nil {
				t.Fatal(err)
			}
			defer s.Close()

			// The query is analyzed like the documents, so an exact title
			// word always finds its own document.
			res, err := s.Search(context.Background(), "LADA", 10)
			if err != nil {
				t.Fatal(err)
			}
			if !slices.Equal(hitIDs(res), []uint32{1}) {
				t.Errorf("LADA hits = %v, want [1]", hitIDs(res))
			}
		})
	}
}
