// Package indexing turns a corpus into an on-disk index.
package indexing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"GoStem/internal/analysis"
	"GoStem/internal/corpus"
	"GoStem/internal/index"
	"GoStem/internal/pipeline"
	"GoStem/internal/stats"
)

var ErrNoAnalyzer = errors.New("indexing: analyzer is required")

// Source is a document collection with text bodies.
type Source interface {
	Documents(ctx context.Context) ([]corpus.Document, error)
	Text(id uint32) (io.ReadCloser, error)
}

// Builder analyzes every document of a Source with a pool of workers and
// writes the resulting index.
type Builder struct {
	Analyzer     analysis.Analyzer
	AnalyzerName string
	// Workers is the number of documents analyzed concurrently;
	// <= 0 means runtime.NumCPU().
	Workers int
	// MemoryLimit overrides DefaultBufferMemoryLimit when > 0.
	MemoryLimit int64
	Metrics     *stats.Metrics
	Logger      *slog.Logger
}

// BuildResult describes a finished build.
type BuildResult struct {
	Manifest *index.Manifest
	Indexed  int
	Skipped  int
	Summary  stats.Summary
}

// Build indexes src into the directory root.
func (b *Builder) Build(ctx context.Context, src Source, root string) (BuildResult, error) {
	if b.Analyzer == nil {
		return BuildResult{}, ErrNoAnalyzer
	}
	logger := b.Logger
	if logger == nil {
		logger = slog.Default()
	}
	workers := b.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	start := time.Now()
	docs, err := src.Documents(ctx)
	if err != nil {
		return BuildResult{}, fmt.Errorf("list documents: %w", err)
	}

	buf := NewWriteBuffer()
	if b.MemoryLimit > 0 {
		buf.MemoryLimit = b.MemoryLimit
	}

	var (
		mu      sync.Mutex
		total   stats.Summary
		skipped atomic.Int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, d := range docs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			terms, sum, err := b.analyzeDoc(gctx, src, d.ID)
			if errors.Is(err, corpus.ErrNoText) {
				logger.Warn("document has no text, skipping", "id", d.ID)
				skipped.Add(1)
				return nil
			}
			if err != nil {
				return fmt.Errorf("document %d: %w", d.ID, err)
			}
			rec := index.DocRecord{ID: d.ID, URL: d.URL, Title: d.DisplayTitle()}
			if err := buf.AddDocument(rec, terms); err != nil {
				return fmt.Errorf("document %d: %w", d.ID, err)
			}
			mu.Lock()
			total.Add(sum)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return BuildResult{}, err
	}
	if err := ctx.Err(); err != nil {
		return BuildResult{}, err
	}

	logger.Info("corpus analyzed",
		"docs", buf.DocCount(),
		"skipped", skipped.Load(),
		"terms", buf.TermCount(),
		"tokens", total.Tokens,
		"workers", workers,
	)

	m, err := index.NewWriter(root, logger).Write(ctx, b.AnalyzerName, buf.Terms(), buf.Docs())
	if err != nil {
		return BuildResult{}, fmt.Errorf("write index: %w", err)
	}
	b.Metrics.SetIndexSize(int(m.TotalDocs), int(m.TotalTerms))

	total.Elapsed = time.Since(start)
	return BuildResult{
		Manifest: m,
		Indexed:  int(m.TotalDocs),
		Skipped:  int(skipped.Load()),
		Summary:  total,
	}, nil
}

// analyzeDoc returns the distinct, truncated terms of one document. Terms
// holding a NUL byte cannot be stored and are dropped.
func (b *Builder) analyzeDoc(ctx context.Context, src Source, id uint32) ([]string, stats.Summary, error) {
	rc, err := src.Text(id)
	if err != nil {
		return nil, stats.Summary{}, err
	}
	defer rc.Close()

	freq := stats.NewFreqTable()
	sum, err := pipeline.Run(ctx, rc, nil, pipeline.Options{
		Analyzer: b.Analyzer,
		Name:     b.AnalyzerName,
		Freq:     freq,
		Discard:  true,
		Metrics:  b.Metrics,
		Logger:   b.Logger,
	})
	if err != nil {
		return nil, sum, err
	}

	seen := make(map[string]struct{}, freq.Len())
	terms := make([]string, 0, freq.Len())
	for _, e := range freq.Sorted() {
		t := index.TruncateTerm(e.Term)
		if !index.StorableTerm(t) {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		terms = append(terms, t)
	}
	return terms, sum, nil
}
