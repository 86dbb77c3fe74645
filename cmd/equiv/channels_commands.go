package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"equiv/internal/channels"
	"equiv/internal/model"
)

func newChannelsCommand(ctx *commandContext) *cobra.Command {
	channelsCmd := &cobra.Command{
		Use:   "channels",
		Short: "Manage channels and their same-as links",
	}
	channelsCmd.AddCommand(newChannelsImportCommand(ctx))
	channelsCmd.AddCommand(newChannelsUpdateCommand(ctx))
	channelsCmd.AddCommand(newChannelsShowCommand(ctx))
	channelsCmd.AddCommand(newChannelsListCommand(ctx))
	return channelsCmd
}

func newChannelsImportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.json|->",
		Short: "Import channels from a JSON array",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := readRecords[model.Channel](args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			st, err := ctx.openStore()
			if err != nil {
				return err
			}
			for i, rec := range records {
				if strings.TrimSpace(rec.URI) == "" || rec.Publisher == "" {
					return fmt.Errorf("channel %d: uri and publisher are required", i)
				}
				rec.Publisher = model.ParsePublisher(string(rec.Publisher))
				existing, err := st.ChannelByURI(cmd.Context(), rec.URI)
				if err != nil {
					return err
				}
				// Imports describe the catalogue; links are owned by the updaters.
				rec.SameAs = nil
				if existing != nil {
					rec.SameAs = existing.SameAs
				}
				if _, err := st.CreateOrUpdateChannel(cmd.Context(), rec); err != nil {
					return fmt.Errorf("channel %d (%s): %w", i, rec.URI, err)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d channels\n", len(records))
			return nil
		},
	}
}

func newChannelsUpdateCommand(ctx *commandContext) *cobra.Command {
	var publishers []string

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update same-as links for channels of the configured publishers",
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
			router, err := channels.NewFromConfig(cfg, channels.NewStore(st), reporter, logger)
			if err != nil {
				return err
			}

			selected := model.ParsePublishers(publishers)
			if len(selected) == 0 {
				selected = router.Publishers()
			}
			items, err := st.ChannelsByPublisher(cmd.Context(), selected...)
			if err != nil {
				return err
			}
			stats, runID, err := dispatch[model.Channel](cmd, router, reporter, cfg.Workflow.Workers, logger, "channels", items)
			if err != nil {
				return err
			}
			printRunSummary(cmd, "channels", runID, stats)
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&publishers, "publisher", "p", nil, "Only update channels of these publishers")
	return cmd
}

func newChannelsShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show <uri>",
		Short: "Show a channel and its same-as link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := ctx.openStore()
			if err != nil {
				return err
			}
			uri := strings.TrimSpace(args[0])
			ch, err := st.ChannelByURI(cmd.Context(), uri)
			if err != nil {
				return err
			}
			if ch == nil {
				return fmt.Errorf("channel %s not found", uri)
			}
			if asJSON {
				return writeJSON(cmd, ch)
			}
			rows := [][]string{
				{"URI", ch.URI},
				{"Publisher", string(ch.Publisher)},
				{"Title", ch.Title},
			}
			for _, alias := range ch.Aliases {
				rows = append(rows, []string{"Alias " + alias.Namespace, alias.Value})
			}
			linked := "none"
			if ref, ok := ch.LinkedRef(); ok {
				linked = ref.URI
			}
			rows = append(rows, []string{"Same as", linked})
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(tableSpec{headers: []string{"Field", "Value"}, rows: rows}))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

func newChannelsListCommand(ctx *commandContext) *cobra.Command {
	var publishers []string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List channels and their links",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := ctx.openStore()
			if err != nil {
				return err
			}
			items, err := st.ChannelsByPublisher(cmd.Context(), model.ParsePublishers(publishers)...)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(items))
			for _, ch := range items {
				linked := ""
				if ref, ok := ch.LinkedRef(); ok {
					linked = ref.URI
				}
				rows = append(rows, []string{ch.URI, string(ch.Publisher), ch.Title, linked})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(tableSpec{
				headers: []string{"URI", "Publisher", "Title", "Same as"},
				rows:    rows,
			}))
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&publishers, "publisher", "p", nil, "Only list these publishers")
	return cmd
}
