package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/benjamonnguyen/questlog-go"
	"github.com/benjamonnguyen/questlog-go/journal"
	"github.com/benjamonnguyen/questlog-go/tracker"
)

var errNoQuest = errors.New("no quest in progress")

func formatStatus(r questlog.TimerRecord, elapsedSeconds int) string {
	if r.Status() == questlog.TimerNotStarted {
		return "No quest in progress"
	}
	title := r.Title
	if title == "" {
		title = "(untitled)"
	}
	return fmt.Sprintf("%s · %s · %s · %d pause(s)",
		title, r.Status(), tracker.FormatElapsed(elapsedSeconds), len(r.PauseHistory))
}

func printStatus(w io.Writer, tr *tracker.Tracker) {
	_, _ = fmt.Fprintln(w, formatStatus(tr.Snapshot(), tracker.WholeSeconds(tr.Elapsed())))
}

// warnIfUnsaved downgrades a persistence failure to a warning. The transition already happened.
func (app *App) warnIfUnsaved(err error) error {
	if errors.Is(err, questlog.ErrPersistenceWriteFailed) {
		app.l.Warn("progress wasn't saved", "quest", app.QuestID, "err", err)
		return nil
	}
	return err
}

func newStartCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "start <title>",
		Short: "Start timing the quest",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.TrimSpace(strings.Join(args, " "))
			if title == "" {
				return fmt.Errorf("provide a title")
			}

			tr, err := app.openTracker(cmd.Context(), tracker.WithTitle(title))
			if err != nil {
				return err
			}
			defer tr.Close()

			if tr.Status() != questlog.TimerNotStarted {
				return fmt.Errorf("quest %s already in progress", app.QuestID)
			}
			if err := app.warnIfUnsaved(tr.Start(cmd.Context())); err != nil {
				return err
			}
			printStatus(cmd.OutOrStdout(), tr)
			return nil
		},
	}
}

func newPauseCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "pause",
		Short: "Pause the running quest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := app.openTracker(cmd.Context())
			if err != nil {
				return err
			}
			defer tr.Close()

			if tr.Status() == questlog.TimerNotStarted {
				return errNoQuest
			}
			if err := app.warnIfUnsaved(tr.Pause(cmd.Context())); err != nil {
				return err
			}
			printStatus(cmd.OutOrStdout(), tr)
			return nil
		},
	}
}

func newResumeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "resume",
		Short: "Resume the paused quest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := app.openTracker(cmd.Context())
			if err != nil {
				return err
			}
			defer tr.Close()

			if tr.Status() == questlog.TimerNotStarted {
				return errNoQuest
			}
			if err := app.warnIfUnsaved(tr.Resume(cmd.Context())); err != nil {
				return err
			}
			printStatus(cmd.OutOrStdout(), tr)
			return nil
		},
	}
}

func newStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the elapsed time of the quest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := app.openTracker(cmd.Context())
			if err != nil {
				return err
			}
			defer tr.Close()

			printStatus(cmd.OutOrStdout(), tr)
			return nil
		},
	}
}

func newCompleteCmd(app *App) *cobra.Command {
	var review string
	cmd := &cobra.Command{
		Use:   "complete",
		Short: "Complete the quest and log it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := app.openTracker(cmd.Context())
			if err != nil {
				return err
			}
			defer tr.Close()

			title := tr.Snapshot().Title
			rec, ok, err := tr.Complete(cmd.Context())
			if !ok {
				return errNoQuest
			}
			if err := app.warnIfUnsaved(err); err != nil {
				return err
			}
			return app.record(cmd, title, review, rec)
		},
	}
	cmd.Flags().StringVar(&review, "review", "", "A short review of how it went")
	return cmd
}

func (app *App) record(cmd *cobra.Command, title, review string, rec questlog.CompletionRecord) error {
	c, err := app.recorder.Record(cmd.Context(), app.QuestID, questlog.QuestCompletionRecord{
		TimerKey:         app.timerKey(),
		Title:            title,
		Review:           strings.TrimSpace(review),
		CompletionRecord: rec,
	})
	if errors.Is(err, journal.ErrSubmitFailed) {
		app.l.Warn("completion saved locally but not submitted", "id", c.ID, "err", err)
		err = nil
	}
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Completed %s in %s (%d pause(s)) [%s]\n",
		c.Title, tracker.FormatElapsed(c.TotalActiveSeconds), len(c.PauseHistory), c.ID)
	return nil
}

func newCancelCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel",
		Short: "Discard the quest timer without logging",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := app.openTracker(cmd.Context())
			if err != nil {
				return err
			}
			defer tr.Close()

			if tr.Status() == questlog.TimerNotStarted {
				return errNoQuest
			}
			if err := app.warnIfUnsaved(tr.Cancel(cmd.Context())); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Quest cancelled. Nothing was logged.")
			return nil
		},
	}
}
