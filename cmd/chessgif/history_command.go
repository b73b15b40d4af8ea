package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

var historyColumns = []column{
	{title: "ID", right: true},
	{title: "When"},
	{title: "Outcome"},
	{title: "Notation", maxWidth: 32},
	{title: "Colors"},
	{title: "Result", maxWidth: 40},
	{title: "Took", right: true},
}

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent conversions",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openHistory()
			if err != nil {
				return err
			}
			if store == nil {
				return errors.New("history is disabled; set [history] enabled = true")
			}
			defer store.Close()

			entries, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No conversions recorded")
				return nil
			}

			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				result := fmt.Sprintf("%d B", entry.Bytes)
				if entry.Message != "" {
					result = entry.Message
				}
				rows = append(rows, []string{
					strconv.FormatInt(entry.ID, 10),
					entry.CreatedAt.Local().Format(time.DateTime),
					string(entry.Outcome),
					entry.NotationPreview,
					entry.DarkColor + " / " + entry.LightColor,
					result,
					entry.Duration.Round(time.Millisecond).String(),
				})
			}
			fmt.Fprintln(out, renderTable(historyColumns, rows))

			stats, err := store.Stats(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%d conversions retained (%d succeeded, %d failed)\n", stats.Total, stats.Successes, stats.Failures)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of conversions to show")
	return cmd
}
