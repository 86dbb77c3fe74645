package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"equiv/internal/model"
	"equiv/internal/report"
	"equiv/internal/resolver"
	"equiv/internal/workflow"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var publishers []string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Resolve every content record of the configured publishers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			lock, err := ctx.acquireRunLock()
			if err != nil {
				return err
			}
			defer lock.Release()

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
			router, err := resolver.NewFromConfig(cfg, st, reporter, logger)
			if err != nil {
				return err
			}

			selected := model.ParsePublishers(publishers)
			if len(selected) == 0 {
				selected = router.Publishers()
			}
			items, err := st.ContentByPublisher(cmd.Context(), selected...)
			if err != nil {
				return err
			}
			stats, runID, err := dispatch[model.Content](cmd, router, reporter, cfg.Workflow.Workers, logger, "content", items)
			if err != nil {
				return err
			}
			printRunSummary(cmd, "content", runID, stats)
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&publishers, "publisher", "p", nil, "Only resolve content of these publishers")
	return cmd
}

// dispatch runs items through a worker pool and waits for the batch.
func dispatch[T model.Candidate](cmd *cobra.Command, updater workflow.Updater[T], reporter report.Reporter, workers int, logger *slog.Logger, name string, items []T) (workflow.Stats, string, error) {
	d, err := workflow.NewDispatcher(updater, reporter, workers, logger)
	if err != nil {
		return workflow.Stats{}, "", err
	}
	runID := d.Submit(cmd.Context(), name, items)
	d.Wait()
	return d.Stats(), runID, nil
}

func printRunSummary(cmd *cobra.Command, name, runID string, stats workflow.Stats) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, renderTable(tableSpec{
		title:   fmt.Sprintf("%s run %s", name, runID),
		headers: []string{"Submitted", "Succeeded", "Failed", "Panicked"},
		rows: [][]string{{
			fmt.Sprint(stats.Submitted),
			fmt.Sprint(stats.Succeeded),
			fmt.Sprint(stats.Failed),
			fmt.Sprint(stats.Panicked),
		}},
		aligns: []columnAlignment{alignRight, alignRight, alignRight, alignRight},
	}))
}
