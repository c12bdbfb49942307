package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/benjamonnguyen/questlog-go"
	"github.com/benjamonnguyen/questlog-go/tracker"
)

type TickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// watchedTimer is the part of *tracker.Tracker the live view drives.
type watchedTimer interface {
	Snapshot() questlog.TimerRecord
	Elapsed() time.Duration
	Pause(ctx context.Context) error
	Resume(ctx context.Context) error
	Complete(ctx context.Context) (questlog.CompletionRecord, bool, error)
	Cancel(ctx context.Context) error
}

type watchModel struct {
	ctx   context.Context
	timer watchedTimer

	record    questlog.TimerRecord
	elapsed   int
	warning   string
	completed *questlog.CompletionRecord
	cancelled bool
	quitting  bool
}

func newWatchModel(ctx context.Context, timer watchedTimer) watchModel {
	m := watchModel{ctx: ctx, timer: timer}
	m.refresh()
	return m
}

func (m *watchModel) refresh() {
	m.record = m.timer.Snapshot()
	m.elapsed = tracker.WholeSeconds(m.timer.Elapsed())
}

func (m *watchModel) handle(err error) {
	switch {
	case err == nil:
		m.warning = ""
	case errors.Is(err, questlog.ErrPersistenceWriteFailed):
		m.warning = "progress wasn't saved"
	default:
		m.warning = err.Error()
	}
}

func (m watchModel) Init() tea.Cmd {
	return tickCmd()
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TickMsg:
		if m.quitting {
			return m, nil
		}
		m.refresh()
		return m, tickCmd()

	case tea.KeyMsg:
		switch msg.String() {
		case " ", "p":
			if m.record.Status() == questlog.TimerRunning {
				m.handle(m.timer.Pause(m.ctx))
			} else {
				m.handle(m.timer.Resume(m.ctx))
			}
			m.refresh()
		case "c":
			title := m.record.Title
			rec, ok, err := m.timer.Complete(m.ctx)
			if !ok {
				return m, nil
			}
			m.handle(err)
			m.completed = &rec
			m.record = questlog.TimerRecord{Title: title}
			m.elapsed = rec.TotalActiveSeconds
			m.quitting = true
			return m, tea.Quit
		case "x":
			m.handle(m.timer.Cancel(m.ctx))
			m.cancelled = true
			m.quitting = true
			return m, tea.Quit
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m watchModel) statusLabel() string {
	switch {
	case m.completed != nil:
		return doneStyle.Render("Completed")
	case m.cancelled:
		return dimStyle.Render("Cancelled")
	case m.record.Status() == questlog.TimerRunning:
		return runningStyle.Render("● " + m.record.Status().String())
	default:
		return pausedStyle.Render("❚❚ " + m.record.Status().String())
	}
}

func (m watchModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.record.Title))
	b.WriteString("\n")
	b.WriteString(clockStyle.Render(tracker.FormatElapsed(m.elapsed)))
	b.WriteString("\n")
	b.WriteString(m.statusLabel())
	b.WriteString(dimStyle.Render(fmt.Sprintf("  %d pause(s)", len(m.record.PauseHistory))))
	b.WriteString("\n")
	if m.warning != "" {
		b.WriteString(warnStyle.Render("! " + m.warning))
		b.WriteString("\n")
	}
	if !m.quitting {
		b.WriteString(dimStyle.Render("space pause/resume · c complete · x cancel · q quit"))
	}
	return baseStyle.Render(b.String())
}

func newWatchCmd(app *App) *cobra.Command {
	var review string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Live view of the quest timer",
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

			m := newWatchModel(cmd.Context(), tr)
			final, err := tea.NewProgram(m, tea.WithContext(cmd.Context())).Run()
			if err != nil {
				return err
			}
			if wm, ok := final.(watchModel); ok && wm.completed != nil {
				return app.record(cmd, wm.record.Title, review, *wm.completed)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&review, "review", "", "Review logged if the quest is completed from the view")
	return cmd
}
