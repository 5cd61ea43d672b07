// Package testutil holds helpers shared by package tests: small corpora
// written to temp directories and indexes built from them.
package testutil

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"GoStem/internal/analysis"
	"GoStem/internal/corpus"
	"GoStem/internal/indexing"
)

// SampleDoc is one corpus entry. A doc with NoText gets metadata only.
type SampleDoc struct {
	ID     uint32
	URL    string
	Title  string
	Text   string
	NoText bool
}

// SampleDocs returns a small Russian news corpus. With the russian
// analyzer the interesting stems are:
//
//	нов    1 3 4
//	машин  2 4
//	дорог  2 4
//	lada   1
//	новост 3
//
// Document 5 has no text file.
func SampleDocs() []SampleDoc {
	return []SampleDoc{
		{ID: 1, URL: "https://news.example/1", Title: "LADA", Text: "Новая модель LADA поступила в продажу"},
		{ID: 2, URL: "https://news.example/2", Text: "Машины и дороги России"},
		{ID: 3, URL: "https://news.example/3", Title: "Наука", Text: "Новости науки: новые открытия"},
		{ID: 4, URL: "https://news.example/4", Title: "Дорога", Text: "Красивая машина на новой дороге"},
		{ID: 5, URL: "https://news.example/5", NoText: true},
	}
}

// WriteCorpus lays out docs under a new temp directory and returns it.
func WriteCorpus(t testing.TB, docs []SampleDoc) string {
	t.Helper()
	dir := t.TempDir()
	for _, sub := range []string{"meta", "text"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
	}
	f, err := os.Create(filepath.Join(dir, "meta", "metadata.jsonl"))
	if err != nil {
		t.Fatalf("create metadata: %v", err)
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	for _, d := range docs {
		rec := map[string]any{"id": strconv.FormatUint(uint64(d.ID), 10), "url": d.URL}
		if d.Title != "" {
			rec["title"] = d.Title
		}
		if err := enc.Encode(rec); err != nil {
			t.Fatalf("encode metadata: %v", err)
		}
		if d.NoText {
			continue
		}
		path := filepath.Join(dir, "text", strconv.FormatUint(uint64(d.ID), 10)+".txt")
		if err := os.WriteFile(path, []byte(d.Text), 0o644); err != nil {
			t.Fatalf("write text: %v", err)
		}
	}
	return dir
}

// BuildIndex writes docs as a corpus, indexes it with the named builtin
// analyzer and returns the index directory.
func BuildIndex(t testing.TB, docs []SampleDoc, analyzer string) string {
	t.Helper()
	c, err := corpus.Open(WriteCorpus(t, docs), nil)
	if err != nil {
		t.Fatalf("open corpus: %v", err)
	}
	a, err := analysis.NewRegistry(analysis.Options{}).Get(analyzer)
	if err != nil {
		t.Fatalf("analyzer: %v", err)
	}
	root := filepath.Join(t.TempDir(), "index")
	b := &indexing.Builder{Analyzer: a, AnalyzerName: analyzer, Workers: 2}
	if _, err := b.Build(context.Background(), c, root); err != nil {
		t.Fatalf("build index: %v", err)
	}
	return root
}

// AssertFileExists fails the test if path is not a regular file.
func AssertFileExists(t testing.TB, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("expected file %s to exist: %v", path, err)
	}
	if info.IsDir() {
		t.Fatalf("expected %s to be a file, got directory", path)
	}
}
