package benchmark

import (
	"context"
	"path/filepath"
	"testing"

	"GoStem/internal/analysis"
	"GoStem/internal/corpus"
	"GoStem/internal/indexing"
	"GoStem/internal/testutil"
)

func benchmarkBuild(b *testing.B, docs, words, workers int) {
	c, err := corpus.Open(testutil.WriteCorpus(b, generatedDocs(docs, words)), nil)
	if err != nil {
		b.Fatal(err)
	}
	a, err := analysis.NewRegistry(analysis.Options{}).Get(analysis.AnalyzerRussian)
	if err != nil {
		b.Fatal(err)
	}
	builder := &indexing.Builder{Analyzer: a, AnalyzerName: analysis.AnalyzerRussian, Workers: workers}
	root := b.TempDir()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := builder.Build(context.Background(), c, filepath.Join(root, "index")); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkIndexing_SmallDocs(b *testing.B) { benchmarkBuild(b, 200, 20, 1) }
func BenchmarkIndexing_LargeDocs(b *testing.B) { benchmarkBuild(b, 50, 2000, 1) }
func BenchmarkIndexing_LargeDocs_Parallel(b *testing.B) { benchmarkBuild(b, 50, 2000, 4) }
