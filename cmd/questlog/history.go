package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/benjamonnguyen/questlog-go"
	"github.com/benjamonnguyen/questlog-go/tracker"
)

func historyRow(c questlog.ExistingCompletionRecord) []string {
	return []string{
		string(c.ID),
		c.Title,
		tracker.FormatElapsed(c.TotalActiveSeconds),
		strconv.Itoa(len(c.PauseHistory)),
		c.EndTime.Local().Format(time.DateTime),
		c.Review,
	}
}

func newHistoryCmd(app *App) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List completed quests, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				return fmt.Errorf("--limit must be positive")
			}
			list, err := app.recorder.History(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No completed quests yet.")
				return nil
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.Header("ID", "Title", "Active", "Pauses", "Ended", "Review")
			for _, c := range list {
				if err := table.Append(historyRow(c)); err != nil {
					return err
				}
			}
			return table.Render()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "Number of entries")
	return cmd
}

func newDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <completion-id>",
		Short: "Delete a history entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deleted, err := app.recorder.Delete(cmd.Context(), questlog.CompletionID(args[0]))
			if err != nil {
				return fmt.Errorf("failed to delete %s: %w", args[0], err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s (%s)\n", deleted.Title, deleted.ID)
			return nil
		},
	}
}
