package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"GoStem/internal/index"
	"GoStem/internal/logging"
	"GoStem/internal/recovery"
)

var errUnhealthy = errors.New("index is not healthy")

func newCheckCommand(a *app) *cobra.Command {
	var repair bool
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify the index files and clean up after interrupted builds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := recovery.Recover(index.NewIndexDir(a.cfg.Index.Dir), recovery.Options{
				VerifyChecksums: true,
				Repair:          repair,
				Logger:          logging.Component(a.logger, "recovery"),
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			p := newPainter(w)
			if m := res.Manifest; m != nil {
				fmt.Fprintf(w, "%s %s (%s, %d docs, %d terms)\n", p.bold("build:"), m.BuildID, m.Analyzer, m.TotalDocs, m.TotalTerms)
			}
			for _, f := range res.CorruptFiles {
				fmt.Fprintf(w, "%s %s\n", p.yellow("corrupt:"), f)
			}
			for _, f := range res.TmpFilesRemoved {
				fmt.Fprintf(w, "%s %s\n", p.gray("removed:"), f)
			}
			for _, f := range res.Orphans {
				verb := "stray:  "
				if res.OrphansRemoved {
					verb = "removed:"
				}
				fmt.Fprintf(w, "%s %s\n", p.gray(verb), f)
			}
			if !res.Healthy() {
				fmt.Fprintf(w, "%s %s\n", p.yellow("problem:"), res.Problem)
				return errUnhealthy
			}
			fmt.Fprintln(w, p.green("ok"))
			return nil
		},
	}
	cmd.Flags().String("index", "index", "index directory")
	cmd.Flags().BoolVar(&repair, "repair", false, "remove tmp/ leftovers and stray files")
	return cmd
}
