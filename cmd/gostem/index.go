package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"GoStem/internal/corpus"
	"GoStem/internal/indexing"
	"GoStem/internal/logging"
)

func newIndexCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Build the binary index from a corpus directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			an, name, err := a.analyzer()
			if err != nil {
				return err
			}
			c, err := corpus.Open(a.cfg.Corpus.Dir, logging.Component(a.logger, "corpus"))
			if err != nil {
				return err
			}
			b := &indexing.Builder{
				Analyzer:     an,
				AnalyzerName: name,
				Workers:      a.cfg.Index.Workers,
				MemoryLimit:  a.cfg.Index.MemoryLimit,
				Metrics:      a.metrics,
				Logger:       logging.Component(a.logger, "indexing"),
			}
			res, err := b.Build(cmd.Context(), c, a.cfg.Index.Dir)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			p := newPainter(w)
			m := res.Manifest
			fmt.Fprintf(w, "%s %s\n", p.green("index written to"), a.cfg.Index.Dir)
			fmt.Fprintf(w, "%s %d %s\n", p.bold("documents:"), res.Indexed, p.gray(fmt.Sprintf("(%d skipped)", res.Skipped)))
			fmt.Fprintf(w, "%s %d\n", p.bold("terms:    "), m.TotalTerms)
			fmt.Fprintf(w, "%s %d\n", p.bold("postings: "), m.TotalPostings)
			fmt.Fprintf(w, "%s %s\n", p.bold("build id: "), m.BuildID)
			printSummary(cmd.ErrOrStderr(), name, res.Summary)
			return nil
		},
	}
	addAnalysisFlags(cmd)
	cmd.Flags().String("corpus", "corpus", "corpus directory (meta/metadata.jsonl and text/)")
	cmd.Flags().String("index", "index", "index directory")
	cmd.Flags().Int("workers", 4, "documents analyzed in parallel")
	return cmd
}
