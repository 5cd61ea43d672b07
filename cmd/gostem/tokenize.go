package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"GoStem/internal/pipeline"
	"GoStem/internal/stats"
)

func newTokenizeCommand(a *app) *cobra.Command {
	var quiet bool
	cmd := &cobra.Command{
		Use:   "tokenize [file...]",
		Short: "Write one analyzed term per line",
		Long: `Reads the files (or standard input when none are given), analyzes them
and writes one term per line to standard output. A summary goes to
standard error unless --quiet is set.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			an, name, err := a.analyzer()
			if err != nil {
				return err
			}
			sum, err := streamInputs(cmd.Context(), cmd, args, pipeline.Options{
				Analyzer: an,
				Name:     name,
				Metrics:  a.metrics,
				Logger:   a.logger,
			})
			if err != nil {
				return err
			}
			if !quiet {
				printSummary(cmd.ErrOrStderr(), name, sum)
			}
			return nil
		},
	}
	addAnalysisFlags(cmd)
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "do not print the summary")
	return cmd
}

// streamInputs runs the pipeline over each named file in turn, or over
// the command's input when there are none, and sums the statistics.
func streamInputs(ctx context.Context, cmd *cobra.Command, paths []string, opts pipeline.Options) (stats.Summary, error) {
	out := cmd.OutOrStdout()
	if len(paths) == 0 {
		return pipeline.Run(ctx, cmd.InOrStdin(), out, opts)
	}
	var total stats.Summary
	for _, p := range paths {
		sum, err := runFile(ctx, p, out, opts)
		total.Add(sum)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func runFile(ctx context.Context, path string, out io.Writer, opts pipeline.Options) (stats.Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return stats.Summary{}, err
	}
	defer f.Close()
	sum, err := pipeline.Run(ctx, f, out, opts)
	if err != nil {
		return sum, fmt.Errorf("%s: %w", path, err)
	}
	return sum, nil
}

func printSummary(w io.Writer, analyzer string, s stats.Summary) {
	p := newPainter(w)
	fmt.Fprintf(w, "%s %s\n", p.bold("analyzer:"), p.cyan(analyzer))
	fmt.Fprintf(w, "%s %d\n", p.bold("tokens:  "), s.Tokens)
	fmt.Fprintf(w, "%s %d\n", p.bold("bytes:   "), s.InputBytes)
	fmt.Fprintf(w, "%s %.2f\n", p.bold("avg len: "), s.AvgTermLen())
	fmt.Fprintf(w, "%s %s %s\n", p.bold("time:    "), s.Elapsed, p.gray(fmt.Sprintf("(%.2f KB/s)", s.KBPerSecond())))
}
