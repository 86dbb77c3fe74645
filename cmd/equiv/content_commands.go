package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"equiv/internal/model"
)

func newContentCommand(ctx *commandContext) *cobra.Command {
	contentCmd := &cobra.Command{
		Use:   "content",
		Short: "Manage catalogue content",
	}
	contentCmd.AddCommand(newContentImportCommand(ctx))
	contentCmd.AddCommand(newContentListCommand(ctx))
	return contentCmd
}

func newContentImportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.json|->",
		Short: "Import content records from a JSON array",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := readRecords[model.Content](args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			st, err := ctx.openStore()
			if err != nil {
				return err
			}
			for i, rec := range records {
				if strings.TrimSpace(rec.URI) == "" || rec.Publisher == "" {
					return fmt.Errorf("record %d: uri and publisher are required", i)
				}
				rec.Publisher = model.ParsePublisher(string(rec.Publisher))
				if _, err := st.CreateOrUpdateContent(cmd.Context(), rec); err != nil {
					return fmt.Errorf("record %d (%s): %w", i, rec.URI, err)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d content records\n", len(records))
			return nil
		},
	}
}

func newContentListCommand(ctx *commandContext) *cobra.Command {
	var publishers []string
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored content",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := ctx.openStore()
			if err != nil {
				return err
			}
			items, err := st.ContentByPublisher(cmd.Context(), model.ParsePublishers(publishers)...)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, items)
			}
			rows := make([][]string, 0, len(items))
			for _, c := range items {
				year := ""
				if c.Year > 0 {
					year = fmt.Sprint(c.Year)
				}
				rows = append(rows, []string{c.URI, string(c.Publisher), string(c.Kind), c.Title, year, yesNo(c.Published)})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(tableSpec{
				headers: []string{"URI", "Publisher", "Kind", "Title", "Year", "Published"},
				rows:    rows,
				aligns:  []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
			}))
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&publishers, "publisher", "p", nil, "Only list these publishers")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}
