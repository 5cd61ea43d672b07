package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"GoStem/internal/pipeline"
	"GoStem/internal/stats"
)

func newFreqCommand(a *app) *cobra.Command {
	var (
		top    int
		zipf   bool
		output string
	)
	cmd := &cobra.Command{
		Use:   "freq [file...]",
		Short: "Count term frequencies",
		Long: `Writes "<count> <term>" lines by descending count. With --zipf it writes
rank, observed and ideal C/rank frequencies instead and reports the
fitted Zipf exponent.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			an, name, err := a.analyzer()
			if err != nil {
				return err
			}
			table := stats.NewFreqTable()
			sum, err := streamInputs(cmd.Context(), cmd, args, pipeline.Options{
				Analyzer: an,
				Name:     name,
				Freq:     table,
				Discard:  true,
				Metrics:  a.metrics,
				Logger:   a.logger,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}
			if zipf {
				points := table.Zipf(top)
				if err := writeZipf(out, points); err != nil {
					return err
				}
				p := newPainter(cmd.ErrOrStderr())
				fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", p.bold("zipf exponent:"),
					p.yellow(fmt.Sprintf("%.3f", stats.ZipfExponent(points))))
			} else if err := writeTop(out, table, top); err != nil {
				return err
			}

			p := newPainter(cmd.ErrOrStderr())
			fmt.Fprintf(cmd.ErrOrStderr(), "%s %d %s %d\n",
				p.bold("terms:"), sum.Tokens, p.bold("unique:"), table.Len())
			if output != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", p.green("written"), output)
			}
			return nil
		},
	}
	addAnalysisFlags(cmd)
	cmd.Flags().IntVarP(&top, "top", "n", 0, "only the n most frequent terms (0 for all)")
	cmd.Flags().BoolVar(&zipf, "zipf", false, "write rank/frequency data for a Zipf plot")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of standard output")
	return cmd
}

func writeTop(w io.Writer, table *stats.FreqTable, top int) error {
	if top <= 0 {
		_, err := table.WriteTo(w)
		return err
	}
	bw := bufio.NewWriter(w)
	entries := table.Sorted()
	for _, e := range entries[:min(top, len(entries))] {
		fmt.Fprintf(bw, "%d %s\n", e.Count, e.Term)
	}
	return bw.Flush()
}

func writeZipf(w io.Writer, points []stats.ZipfPoint) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "rank freq ideal term")
	for _, pt := range points {
		fmt.Fprintf(bw, "%d %d %.2f %s\n", pt.Rank, pt.Freq, pt.Ideal, pt.Term)
	}
	return bw.Flush()
}
