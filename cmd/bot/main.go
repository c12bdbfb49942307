package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	txStdLib "github.com/Thiht/transactor/stdlib"
	dg "github.com/bwmarrin/discordgo"
	"github.com/charmbracelet/log"

	"github.com/benjamonnguyen/questlog-go"
	"github.com/benjamonnguyen/questlog-go/api"
	"github.com/benjamonnguyen/questlog-go/discordgo"
	"github.com/benjamonnguyen/questlog-go/journal"
	"github.com/benjamonnguyen/questlog-go/sqlite"
)

const (
	RepoURL = "https://github.com/benjamonnguyen/questlog-go"
	Version = "0.0.0"
)

func main() {
	isProd := flag.Bool("prod", false, "load .env instead of .env.dev")
	flag.Parse()

	topCtx, topCtxC := context.WithCancel(context.Background())
	initTimeout, initTimeoutC := context.WithTimeout(topCtx, 10*time.Second)

	// config
	cfg, err := questlog.LoadConfig(*isProd)
	if err != nil {
		log.Fatal(err)
	}
	if cfg.BotToken == "" {
		log.Fatal("provide " + questlog.BotTokenKey)
	}

	// logger
	log.SetLevel(cfg.LogLevel)
	log.SetReportCaller(cfg.LogLevel == log.DebugLevel)

	// db
	log.Info("opening db", "url", cfg.DatabaseURL)
	db, err := sqlite.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed database open", "err", err)
	}
	if err := sqlite.RunMigrations(db); err != nil {
		log.Fatal("failed migration", "err", err)
	}
	defer db.Close() //nolint

	tx, dbGetter := txStdLib.NewTransactor(
		db,
		txStdLib.NestedTransactionsSavepoints,
	)

	timerRepo := sqlite.NewTimerRepo(dbGetter, log.Default())
	completionRepo := sqlite.NewCompletionRepo(dbGetter, log.Default())
	timerStore := sqlite.NewTimerStore(tx, timerRepo, log.Default())
	recorder := journal.NewRecorder(completionRepo, tx, log.Default())
	if cfg.RemoteEnabled() {
		log.Info("submitting completions to journal", "url", cfg.APIURL, "character", cfg.CharacterName)
		recorder.WithSubmitter(api.NewClient(cfg.APIURL, log.Default()), cfg.CharacterName)
	}

	// quest manager
	questManager := NewQuestManager(timerStore, timerRepo, recorder, log.Default())
	panicif(questManager.RestoreQuests(initTimeout))

	// set up discord cl
	cl, err := dg.New("Bot " + cfg.BotToken)
	if err != nil {
		log.Fatal(err)
	}
	cl.ShouldRetryOnRateLimit = false
	cl.Client = &http.Client{Timeout: (20 * time.Second)}
	cl.UserAgent = fmt.Sprintf("%s (%s, v%s)", cfg.BotName, RepoURL, Version)
	cl.Identify.Intents = dg.IntentsGuilds

	dm := discordgo.NewMessenger(cl)

	// discord event hooks
	cl.AddHandler(func(s *dg.Session, m *dg.InteractionCreate) {
		_ = StartQuest(topCtx, questManager, dm, m) ||
			PauseQuest(topCtx, questManager, dm, m) ||
			ResumeQuest(topCtx, questManager, dm, m) ||
			QuestStatus(questManager, dm, m) ||
			CompleteQuest(topCtx, questManager, dm, m) ||
			CancelQuest(topCtx, questManager, dm, m) ||
			QuestHistory(topCtx, questManager, dm, m)
	})

	// open connection
	if err := cl.Open(); err != nil {
		log.Fatal("Error opening connection", "err", err)
	}
	log.Info(cfg.BotName + " running. Press CTRL-C to exit.")

	// init done
	initTimeoutC()

	// graceful shutdown
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc
	log.Info("terminating " + cfg.BotName)
	topCtxC()
	shutdownTimeout, shutdownTimeoutC := context.WithTimeout(context.Background(), time.Minute)
	go func() {
		// stop interactions before trackers so no handler sees a closed tracker
		if err := cl.Close(); err != nil {
			log.Error(err)
		}
		questManager.Shutdown()
		shutdownTimeoutC()
	}()
	<-shutdownTimeout.Done()
	if shutdownTimeout.Err() != context.Canceled {
		log.Error("failed to shut down gracefully", "err", shutdownTimeout.Err())
	}
}

func panicif(err error) {
	if err != nil {
		panic(err)
	}
}
