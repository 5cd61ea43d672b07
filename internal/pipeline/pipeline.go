// Package pipeline runs an analyzer over a byte stream and writes one term
// per line, collecting throughput statistics on the way.
package pipeline

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"GoStem/internal/analysis"
	"GoStem/internal/stats"
)

// checkEvery is how many terms pass between context checks.
const checkEvery = 1024

// ErrNoAnalyzer is returned when Options carries no analyzer.
var ErrNoAnalyzer = errors.New("pipeline: analyzer is required")

// Options configure a Run.
type Options struct {
	Analyzer analysis.Analyzer
	// Name labels metrics and logs; defaults to "custom".
	Name string
	// Freq, when set, receives every emitted term.
	Freq *stats.FreqTable
	// Discard suppresses term output; statistics are still collected.
	Discard bool
	Metrics *stats.Metrics
	Logger  *slog.Logger
}

// countingReader counts bytes handed to the tokenizer.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// Run analyzes in and writes each term followed by '\n' to out.
func Run(ctx context.Context, in io.Reader, out io.Writer, opts Options) (stats.Summary, error) {
	if opts.Analyzer == nil {
		return stats.Summary{}, ErrNoAnalyzer
	}
	if opts.Name == "" {
		opts.Name = "custom"
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Discard {
		out = io.Discard
	}

	start := time.Now()
	cr := &countingReader{r: in}
	bw := bufio.NewWriterSize(out, 64*1024)

	var sum stats.Summary
	err := opts.Analyzer.Stream(cr, func(tok analysis.Token) error {
		sum.Tokens++
		sum.TermBytes += int64(len(tok.Term))
		if opts.Freq != nil {
			opts.Freq.Add(tok.Term)
		}
		if _, err := bw.WriteString(tok.Term); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
		if sum.Tokens%checkEvery == 0 {
			return ctx.Err()
		}
		return nil
	})
	if ferr := bw.Flush(); err == nil && ferr != nil {
		err = ferr
	}

	sum.InputBytes = cr.n
	sum.Elapsed = time.Since(start)
	opts.Metrics.ObserveSummary(opts.Name, sum)

	if err != nil {
		return sum, fmt.Errorf("analyze stream: %w", err)
	}
	logger.Debug("stream analyzed",
		"analyzer", opts.Name,
		"tokens", sum.Tokens,
		"bytes", sum.InputBytes,
		"elapsed", sum.Elapsed,
	)
	return sum, nil
}
