package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"equiv/internal/logging"
	"equiv/internal/resolver"
	"equiv/internal/store"
)

func newResolveCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool
	var explain bool

	cmd := &cobra.Command{
		Use:   "resolve <uri>",
		Short: "Resolve equivalences for one content record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			st, err := ctx.openStore()
			if err != nil {
				return err
			}
			reporter, err := ctx.reporter()
			if err != nil {
				return err
			}
			uri := strings.TrimSpace(args[0])
			target, err := st.ContentByURI(cmd.Context(), uri)
			if err != nil {
				return err
			}
			if target == nil {
				return fmt.Errorf("content %s not found", uri)
			}
			router, err := resolver.NewFromConfig(cfg, st, reporter, logger)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if dryRun || explain {
				res, err := router.Explain(cmd.Context(), *target)
				if err != nil {
					return err
				}
				if explain {
					fmt.Fprint(out, res.Description.String())
				}
				if dryRun {
					rows := make([][]string, 0, res.StrongCount())
					for _, w := range res.AllStrongEquivalences() {
						rows = append(rows, []string{string(w.Candidate.Publisher), w.Candidate.URI, w.Candidate.Title, w.Score.String()})
					}
					fmt.Fprintln(out, renderTable(tableSpec{
						title:   "Strong equivalences (not saved) for " + target.URI,
						headers: []string{"Publisher", "Candidate", "Title", "Score"},
						rows:    rows,
						aligns:  []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight},
					}))
					return nil
				}
			}

			runCtx := cmd.Context()
			runID := reporter.StartReporting(runCtx, "resolve")
			runCtx = logging.WithRunID(runCtx, runID)
			ok, err := router.Update(runCtx, *target)
			reporter.EndReporting(runCtx)
			if err != nil {
				return err
			}
			if !ok {
				return errors.New("resolution failed; see `equiv events` for the reason")
			}
			eqs, err := st.EquivalencesFor(cmd.Context(), target.URI)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, renderEquivalences("Strong equivalences for "+target.URI, eqs))
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Resolve without saving or reporting")
	cmd.Flags().BoolVar(&explain, "explain", false, "Print the resolution audit trail")
	return cmd
}

func renderEquivalences(title string, eqs []store.Equivalence) string {
	rows := make([][]string, 0, len(eqs))
	for _, eq := range eqs {
		rows = append(rows, []string{string(eq.Publisher), eq.CandidateURI, formatScore(eq.Score), eq.RunID})
	}
	return renderTable(tableSpec{
		title:   title,
		headers: []string{"Publisher", "Candidate", "Score", "Run"},
		rows:    rows,
		aligns:  []columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
	})
}
