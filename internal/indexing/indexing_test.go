package indexing_test

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GoStem/internal/analysis"
	"GoStem/internal/corpus"
	"GoStem/internal/index"
	"GoStem/internal/indexing"
	"GoStem/internal/testutil"
)

func russian(t *testing.T) analysis.Analyzer {
	t.Helper()
	a, err := analysis.NewRegistry(analysis.Options{}).Get(analysis.AnalyzerRussian)
	require.NoError(t, err)
	return a
}

func TestBuilder_Build(t *testing.T) {
	c, err := corpus.Open(testutil.WriteCorpus(t, testutil.SampleDocs()), nil)
	require.NoError(t, err)
	root := filepath.Join(t.TempDir(), "idx")

	b := &indexing.Builder{Analyzer: russian(t), AnalyzerName: analysis.AnalyzerRussian, Workers: 3}
	res, err := b.Build(context.Background(), c, root)
	require.NoError(t, err)
	assert.Equal(t, 4, res.Indexed)
	assert.Equal(t, 1, res.Skipped)
	assert.Positive(t, res.Summary.Tokens)

	r, err := index.Open(root, true)
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, analysis.AnalyzerRussian, r.Stats().Analyzer)

	want := map[string][]uint32{
		"нов":    {1, 3, 4},
		"машин":  {2, 4},
		"дорог":  {2, 4},
		"lada":   {1},
		"новост": {3},
	}
	for term, ids := range want {
		e, ok, err := r.Lookup(term)
		require.NoError(t, err)
		require.True(t, ok, term)
		got, err := r.Postings(e)
		require.NoError(t, err)
		assert.Equal(t, ids, got, term)
	}

	d, err := r.Doc(2)
	require.NoError(t, err)
	assert.Equal(t, "Article 2", d.Title)
	_, err = r.Doc(5)
	assert.ErrorIs(t, err, index.ErrDocMissing)
}

func TestBuilder_LongTermsTruncated(t *testing.T) {
	long := strings.Repeat("ж", 40)
	docs := []testutil.SampleDoc{
		{ID: 1, URL: "u1", Text: long + "а"},
		{ID: 2, URL: "u2", Text: long + "б"},
	}
	c, err := corpus.Open(testutil.WriteCorpus(t, docs), nil)
	require.NoError(t, err)
	root := t.TempDir()

	a, err := analysis.NewRegistry(analysis.Options{}).Get(analysis.AnalyzerLowercase)
	require.NoError(t, err)
	b := &indexing.Builder{Analyzer: a, AnalyzerName: analysis.AnalyzerLowercase}
	_, err = b.Build(context.Background(), c, root)
	require.NoError(t, err)

	r, err := index.Open(root, false)
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, 1, r.NumTerms())

	e, ok, err := r.Lookup(long)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, e.Term, 30)
	ids, err := r.Postings(e)
	require.NoError(t, err)
	assert.Equal(t, []uint32{1, 2}, ids)
}

func TestBuilder_DropsNulTerms(t *testing.T) {
	docs := []testutil.SampleDoc{
		{ID: 1, URL: "u1", Text: "\xD0\x00 машина"},
		{ID: 2, URL: "u2", Text: "\xD0\x00\xD0\x00 дорога"},
	}
	c, err := corpus.Open(testutil.WriteCorpus(t, docs), nil)
	require.NoError(t, err)
	root := t.TempDir()

	a, err := analysis.NewRegistry(analysis.Options{}).Get(analysis.AnalyzerLowercase)
	require.NoError(t, err)
	b := &indexing.Builder{Analyzer: a, AnalyzerName: analysis.AnalyzerLowercase}
	res, err := b.Build(context.Background(), c, root)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Indexed)

	r, err := index.Open(root, true)
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, 2, r.NumTerms())
	for _, term := range []string{"машина", "дорога"} {
		_, ok, err := r.Lookup(term)
		require.NoError(t, err)
		assert.True(t, ok, term)
	}
}

func TestBuilder_NoAnalyzer(t *testing.T) {
	_, err := (&indexing.Builder{}).Build(context.Background(), nil, t.TempDir())
	assert.ErrorIs(t, err, indexing.ErrNoAnalyzer)
}

type failingSource struct{}

func (failingSource) Documents(context.Context) ([]corpus.Document, error) {
	return []corpus.Document{{ID: 1}, {ID: 2}}, nil
}

func (failingSource) Text(uint32) (io.ReadCloser, error) {
	return nil, io.ErrUnexpectedEOF
}

func TestBuilder_SourceError(t *testing.T) {
	b := &indexing.Builder{Analyzer: russian(t), AnalyzerName: analysis.AnalyzerRussian}
	_, err := b.Build(context.Background(), failingSource{}, t.TempDir())
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestBuilder_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c, err := corpus.Open(testutil.WriteCorpus(t, testutil.SampleDocs()), nil)
	require.NoError(t, err)
	b := &indexing.Builder{Analyzer: russian(t), AnalyzerName: analysis.AnalyzerRussian}
	_, err = b.Build(ctx, c, t.TempDir())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWriteBuffer(t *testing.T) {
	buf := indexing.NewWriteBuffer()
	require.NoError(t, buf.AddDocument(index.DocRecord{ID: 9}, []string{"б", "а"}))
	require.NoError(t, buf.AddDocument(index.DocRecord{ID: 3}, []string{"а"}))
	assert.ErrorIs(t, buf.AddDocument(index.DocRecord{ID: 3}, nil), indexing.ErrDuplicateDoc)

	terms := buf.Terms()
	require.Len(t, terms, 2)
	assert.Equal(t, index.TermPostings{Term: "а", DocIDs: []uint32{3, 9}}, terms[0])
	assert.Equal(t, index.TermPostings{Term: "б", DocIDs: []uint32{9}}, terms[1])
	assert.Equal(t, 2, buf.DocCount())
	assert.Positive(t, buf.MemoryUsed())

	buf.MemoryLimit = 1
	assert.ErrorIs(t, buf.AddDocument(index.DocRecord{ID: 4}, nil), indexing.ErrBufferFull)

	buf.Reset()
	assert.Zero(t, buf.DocCount())
	assert.Zero(t, buf.TermCount())
}
