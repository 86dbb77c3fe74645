package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

func newEventsCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Show recent report events, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := ctx.openStore()
			if err != nil {
				return err
			}
			events, err := st.Events(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, events)
			}
			rows := make([][]string, 0, len(events))
			for _, ev := range events {
				detail := ev.Reason
				if detail == "" {
					detail = formatPayload(ev.Payload)
				}
				rows = append(rows, []string{
					ev.CreatedAt.Local().Format("2006-01-02 15:04:05"),
					shortRunID(ev.RunID),
					ev.RunName,
					string(ev.Kind),
					ev.Subject,
					detail,
				})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(tableSpec{
				headers:  []string{"Time", "Run", "Name", "Kind", "Subject", "Detail"},
				rows:     rows,
				colors:   map[int]func(string) text.Colors{3: eventKindColors},
				colorize: shouldColorize(out),
			}))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum number of events")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

func formatPayload(payload map[string]string) string {
	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+payload[k])
	}
	return strings.Join(parts, " ")
}

func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
