package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"equiv/internal/channels"
	"equiv/internal/model"
	"equiv/internal/resolver"
)

func newMetadataCommand(ctx *commandContext) *cobra.Command {
	var publishers []string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "metadata",
		Short: "Describe the configured equivalence updaters",
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
			contentRouter, err := resolver.NewFromConfig(cfg, st, nil, logger)
			if err != nil {
				return err
			}
			channelRouter, err := channels.NewFromConfig(cfg, channels.NewStore(st), nil, logger)
			if err != nil {
				return err
			}
			meta := contentRouter.Metadata(model.ParsePublishers(publishers)...)
			if asJSON {
				return writeJSON(cmd, map[string]any{
					"content":  meta,
					"channels": channelRouter.Publishers(),
				})
			}

			keys := make([]model.Publisher, 0, len(meta))
			for p := range meta {
				keys = append(keys, p)
			}
			model.SortPublishers(keys)
			rows := make([][]string, 0, len(keys))
			for _, p := range keys {
				m := meta[p]
				multiple := m.Stages.Multiple
				if multiple == "" {
					multiple = "-"
				}
				rows = append(rows, []string{
					string(p),
					strings.Join(m.Generators, ", "),
					strings.Join(m.Scorers, ", "),
					m.Stages.Combiner,
					m.Stages.Filter,
					m.Stages.Extractor,
					multiple,
				})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(tableSpec{
				title:   "Content updaters",
				headers: []string{"Publisher", "Generators", "Scorers", "Combiner", "Filter", "Extractor", "Multiple"},
				rows:    rows,
			}))

			chRows := make([][]string, 0)
			for _, p := range channelRouter.Publishers() {
				strategy := "source-specific"
				if p == cfg.ForcedPublisher() {
					strategy = "forced (" + cfg.Channels.AliasNamespace + ")"
				}
				chRows = append(chRows, []string{string(p), strategy})
			}
			fmt.Fprintln(out, renderTable(tableSpec{
				title:   "Channel updaters",
				headers: []string{"Publisher", "Strategy"},
				rows:    chRows,
			}))
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&publishers, "publisher", "p", nil, "Only describe these publishers")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}
