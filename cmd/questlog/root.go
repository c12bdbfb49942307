package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	"github.com/Thiht/transactor"
	txStdLib "github.com/Thiht/transactor/stdlib"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/benjamonnguyen/questlog-go"
	"github.com/benjamonnguyen/questlog-go/api"
	"github.com/benjamonnguyen/questlog-go/journal"
	"github.com/benjamonnguyen/questlog-go/sqlite"
	"github.com/benjamonnguyen/questlog-go/tracker"
)

type App struct {
	DBPath  string
	QuestID string
	Prod    bool

	cfg      questlog.Config
	db       *sql.DB
	tx       transactor.Transactor
	store    questlog.TimerStore
	recorder *journal.Recorder
	clock    questlog.Clock
	sched    tracker.Scheduler
	l        *log.Logger
}

func NewRootCmd() *cobra.Command {
	return newRootCmd(&App{})
}

func newRootCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "questlog",
		Short:        "Time quests and activities, pauses excluded",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Time a free-form activity
  questlog start Guitar practice
  questlog pause
  questlog resume
  questlog complete --review "scales felt smoother"

  # Time a quest from the journal
  questlog --quest q-42 start Slay the dragon

  # Live view
  questlog watch
`),
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.open()
	}
	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		return app.close()
	}

	cmd.PersistentFlags().StringVar(&app.DBPath, "db", "", "Path to the SQLite database (default from "+questlog.DatabaseURLKey+")")
	cmd.PersistentFlags().StringVar(&app.QuestID, "quest", questlog.CustomQuestID, "Quest id to time")
	cmd.PersistentFlags().BoolVar(&app.Prod, "prod", false, "Load .env instead of .env.dev")

	cmd.AddCommand(newStartCmd(app))
	cmd.AddCommand(newPauseCmd(app))
	cmd.AddCommand(newResumeCmd(app))
	cmd.AddCommand(newStatusCmd(app))
	cmd.AddCommand(newCompleteCmd(app))
	cmd.AddCommand(newCancelCmd(app))
	cmd.AddCommand(newHistoryCmd(app))
	cmd.AddCommand(newDeleteCmd(app))
	cmd.AddCommand(newWatchCmd(app))

	return cmd
}

func (app *App) open() error {
	cfg, err := questlog.LoadConfig(app.Prod)
	if err != nil {
		return err
	}
	app.cfg = cfg
	if app.DBPath == "" {
		app.DBPath = cfg.DatabaseURL
	}
	if strings.TrimSpace(app.QuestID) == "" {
		return fmt.Errorf("--quest must not be empty")
	}

	if app.l == nil {
		app.l = log.NewWithOptions(os.Stderr, log.Options{Prefix: "questlog"})
	}
	app.l.SetLevel(cfg.LogLevel)
	if app.clock == nil {
		app.clock = questlog.SystemClock
	}
	if app.sched == nil {
		app.sched = tracker.TickerScheduler{}
	}

	app.l.Debug("opening db", "path", app.DBPath)
	db, err := sqlite.Open(app.DBPath)
	if err != nil {
		return err
	}
	if err := sqlite.RunMigrations(db); err != nil {
		_ = db.Close()
		return err
	}
	app.db = db

	tx, dbGetter := txStdLib.NewTransactor(db, txStdLib.NestedTransactionsSavepoints)
	app.tx = tx
	app.store = sqlite.NewTimerStore(tx, sqlite.NewTimerRepo(dbGetter, app.l), app.l)
	app.recorder = journal.NewRecorder(sqlite.NewCompletionRepo(dbGetter, app.l), tx, app.l)
	if cfg.RemoteEnabled() {
		app.recorder.WithSubmitter(api.NewClient(cfg.APIURL, app.l), cfg.CharacterName)
	}
	return nil
}

func (app *App) close() error {
	if app.db == nil {
		return nil
	}
	err := app.db.Close()
	app.db = nil
	return err
}

func (app *App) timerKey() questlog.TimerKey {
	return questlog.KeyForQuest(app.QuestID)
}

// openTracker restores the timer of the selected quest. Close it when done.
func (app *App) openTracker(ctx context.Context, opts ...tracker.Option) (*tracker.Tracker, error) {
	base := []tracker.Option{
		tracker.WithLogger(app.l),
		tracker.WithClock(app.clock),
		tracker.WithScheduler(app.sched),
	}
	return tracker.New(ctx, app.timerKey(), app.store, append(base, opts...)...)
}
