// Package search answers boolean queries against an open index.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"GoStem/internal/analysis"
	"GoStem/internal/engine"
	"GoStem/internal/index"
	"GoStem/internal/query"
	"GoStem/internal/stats"
)

const (
	DefaultLimit     = 50
	DefaultCacheSize = 4096

	allDocsKey = "\x00all"
)

// Options configure a Searcher.
type Options struct {
	// Registry resolves the analyzer named in the manifest. Nil means
	// analysis.NewRegistry with default options.
	Registry *analysis.Registry
	// Verify checks data file checksums when opening.
	Verify           bool
	CacheSize        int
	MaxTermsExpanded int
	// Timeout bounds a single search; zero means no extra bound.
	Timeout time.Duration
	Metrics *stats.Metrics
	Logger  *slog.Logger
}

// Result is the answer to one query.
type Result struct {
	Query  string            `json:"query"`
	Parsed string            `json:"parsed"`
	Total  int               `json:"total"`
	Hits   []index.DocRecord `json:"hits"`
	Took   time.Duration     `json:"took_ns"`
}

// Searcher parses queries with the index's analyzer and executes them.
// It is safe for concurrent use.
type Searcher struct {
	r        *index.Reader
	analyzer analysis.Analyzer
	cache    *lru.Cache[string, []uint32]
	opts     Options
	logger   *slog.Logger
}

// Open opens the index at root and returns a Searcher over it.
func Open(root string, opts Options) (*Searcher, error) {
	r, err := index.Open(root, opts.Verify)
	if err != nil {
		return nil, fmt.Errorf("open index %s: %w", root, err)
	}
	s, err := New(r, opts)
	if err != nil {
		r.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an open reader.
func New(r *index.Reader, opts Options) (*Searcher, error) {
	reg := opts.Registry
	if reg == nil {
		reg = analysis.NewRegistry(analysis.Options{})
	}
	a, err := reg.Get(r.Manifest().Analyzer)
	if err != nil {
		return nil, fmt.Errorf("index analyzer: %w", err)
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = DefaultCacheSize
	}
	if opts.MaxTermsExpanded <= 0 {
		opts.MaxTermsExpanded = query.MaxTermsExpanded
	}
	cache, err := lru.New[string, []uint32](opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("postings cache: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	st := r.Stats()
	opts.Metrics.SetIndexSize(st.Docs, st.Terms)
	return &Searcher{r: r, analyzer: a, cache: cache, opts: opts, logger: logger}, nil
}

// Close closes the underlying reader.
func (s *Searcher) Close() error { return s.r.Close() }

// Analyzer returns the analyzer queries are parsed with.
func (s *Searcher) Analyzer() analysis.Analyzer { return s.analyzer }

// Stats returns the statistics of the open index.
func (s *Searcher) Stats() index.Stats { return s.r.Stats() }

// Doc returns the forward record for id.
func (s *Searcher) Doc(id uint32) (index.DocRecord, error) { return s.r.Doc(id) }

// IsQueryError reports whether err was caused by the query text rather
// than by the index.
func IsQueryError(err error) bool {
	return errors.Is(err, query.ErrEmptyQuery) ||
		errors.Is(err, query.ErrSyntax) ||
		errors.Is(err, query.ErrTooManyClauses) ||
		errors.Is(err, query.ErrTooDeep) ||
		errors.Is(err, engine.ErrMatchLimitExceeded)
}

// Search parses q and returns the total match count and up to limit hits
// in ascending doc id order. limit <= 0 means DefaultLimit.
func (s *Searcher) Search(ctx context.Context, q string, limit int) (Result, error) {
	start := time.Now()
	res, err := s.search(ctx, q, limit)
	res.Took = time.Since(start)

	status := "ok"
	switch {
	case err == nil:
	case IsQueryError(err):
		status = "bad_query"
	case errors.Is(err, engine.ErrQueryTimeout):
		status = "timeout"
	case errors.Is(err, context.Canceled):
		status = "canceled"
	default:
		status = "error"
	}
	s.opts.Metrics.ObserveSearch(status, res.Took)
	if err != nil {
		s.logger.Debug("search failed", "query", q, "status", status, "error", err)
		return res, err
	}
	s.logger.Debug("search", "query", q, "parsed", res.Parsed, "total", res.Total, "took", res.Took)
	return res, nil
}

func (s *Searcher) search(ctx context.Context, q string, limit int) (Result, error) {
	res := Result{Query: q, Hits: []index.DocRecord{}}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	parsed, err := query.Parse(q, s.analyzer)
	if err != nil {
		return res, err
	}
	res.Parsed = parsed.String()

	ec := engine.NewExecutionContext(ctx, s.opts.MaxTermsExpanded)
	it, err := engine.NewIterator(ec, parsed, s)
	if err != nil {
		return res, err
	}
	c, err := engine.Collect(ec, it, limit)
	if err != nil {
		return res, err
	}
	res.Total = c.Total
	for _, id := range c.DocIDs {
		d, err := s.r.Doc(id)
		if errors.Is(err, index.ErrDocMissing) {
			s.logger.Warn("posting refers to unknown document", "id", id)
			d = index.DocRecord{ID: id}
		} else if err != nil {
			return res, err
		}
		res.Hits = append(res.Hits, d)
	}
	return res, nil
}

// Postings implements engine.Source.
func (s *Searcher) Postings(term string) ([]uint32, error) {
	key := index.TruncateTerm(term)
	if ids, ok := s.cache.Get(key); ok {
		return ids, nil
	}
	e, ok, err := s.r.Lookup(key)
	if err != nil || !ok {
		return nil, err
	}
	return s.entryPostings(e)
}

func (s *Searcher) entryPostings(e index.DictEntry) ([]uint32, error) {
	if ids, ok := s.cache.Get(e.Term); ok {
		return ids, nil
	}
	ids, err := s.r.Postings(e)
	if err != nil {
		return nil, err
	}
	s.cache.Add(e.Term, ids)
	return ids, nil
}

// PrefixPostings implements engine.Source.
func (s *Searcher) PrefixPostings(prefix string, limit int) ([][]uint32, bool, error) {
	if limit <= 0 {
		entries, _, err := s.r.PrefixTerms(prefix, 1)
		return nil, len(entries) > 0, err
	}
	entries, more, err := s.r.PrefixTerms(prefix, limit)
	if err != nil {
		return nil, false, err
	}
	out := make([][]uint32, len(entries))
	for i, e := range entries {
		if out[i], err = s.entryPostings(e); err != nil {
			return nil, false, err
		}
	}
	return out, more, nil
}

// AllDocIDs implements engine.Source.
func (s *Searcher) AllDocIDs() ([]uint32, error) {
	if ids, ok := s.cache.Get(allDocsKey); ok {
		return ids, nil
	}
	ids, err := s.r.AllDocIDs()
	if err != nil {
		return nil, err
	}
	s.cache.Add(allDocsKey, ids)
	return ids, nil
}

// CacheLen returns the number of cached postings lists.
func (s *Searcher) CacheLen() int { return s.cache.Len() }
