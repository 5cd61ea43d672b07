package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"GoStem/internal/logging"
	"GoStem/internal/search"
)

func (a *app) searchOptions() search.Options {
	return search.Options{
		Registry:         a.registry,
		Verify:           a.cfg.Index.Verify,
		CacheSize:        a.cfg.Search.CacheSize,
		MaxTermsExpanded: a.cfg.Search.MaxExpansions,
		Timeout:          a.cfg.Search.Timeout,
		Metrics:          a.metrics,
		Logger:           logging.Component(a.logger, "search"),
	}
}

func newSearchCommand(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "search QUERY...",
		Short: "Run a boolean query against the index",
		Long: `Words are joined with AND unless an operator is given. Operators are
AND (&&), OR (||), NOT (!) and parentheses; a trailing * makes a prefix.`,
		Example: `  gostem search 'машина && (дорога || трасса)'
  gostem search нов* NOT новость`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := search.Open(a.cfg.Index.Dir, a.searchOptions())
			if err != nil {
				return err
			}
			defer s.Close()

			res, err := s.Search(cmd.Context(), strings.Join(args, " "), a.cfg.Search.MaxResults)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			p := newPainter(w)
			fmt.Fprintf(w, "%s %s\n", p.gray("query:"), res.Parsed)
			for _, h := range res.Hits {
				title := h.Title
				if title == "" {
					title = fmt.Sprintf("Article %d", h.ID)
				}
				fmt.Fprintf(w, "%s %s\n   %s\n", p.yellow(fmt.Sprintf("%6d", h.ID)), p.bold(title), p.cyan(h.URL))
			}
			fmt.Fprintf(w, "%s %d %s\n", p.green("found"), res.Total, p.gray(fmt.Sprintf("(%d shown, %s)", len(res.Hits), res.Took)))
			return nil
		},
	}
	cmd.Flags().String("index", "index", "index directory")
	cmd.Flags().IntP("limit", "n", 50, "maximum hits to print")
	cmd.Flags().Duration("timeout", 0, "abort the search after this long")
	cmd.Flags().Bool("verify", false, "verify file checksums when opening the index")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	return cmd
}
