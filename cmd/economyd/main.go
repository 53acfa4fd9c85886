package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/levely/playereconomy"
	"github.com/levely/playereconomy/economy/events"
	"github.com/levely/playereconomy/logger"
	"github.com/levely/playereconomy/migration"
	"github.com/levely/playereconomy/store"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	path := flag.String("config", "config.toml", "path to config")
	migrateLegacy := flag.Bool("migrate-legacy", false, "import legacy mongo balances and exit")
	flag.Parse()

	cfg, err := playereconomy.LoadConfig(*path)
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(-1)
	}

	slog.SetDefault(slog.New(logger.NewHandler(cfg.Log.Level)))
	slog.Info("Starting economy host",
		slog.String("version", version),
		slog.String("commit", commit))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	var db *store.DB
	var repo store.BalanceRepository
	if cfg.Persist() {
		dbStart := time.Now()
		db, err = store.New(ctx, cfg.DB)
		if err != nil {
			slog.Error("Database connection failed",
				slog.Any("error", err),
				slog.Duration("attempted_for", time.Since(dbStart)))
			os.Exit(-1)
		}
		defer db.Close()

		if err := db.InitializeSchema(ctx); err != nil {
			slog.Error("Failed to initialize database schema", slog.Any("error", err))
			os.Exit(-1)
		}
		repo = store.NewBalanceRepository(db.BunDB())
		slog.Info("Database connected",
			slog.String("database", cfg.DB.Database),
			slog.Duration("took", time.Since(dbStart)))
	}

	if *migrateLegacy {
		if repo == nil {
			slog.Error("Legacy migration requires a configured database")
			os.Exit(-1)
		}
		if err := migration.NewMigrator(repo, cfg.Legacy).Run(ctx); err != nil {
			slog.Error("Legacy migration failed", slog.Any("error", err))
			os.Exit(-1)
		}
		return
	}

	core, err := playereconomy.New(*cfg)
	if err != nil {
		slog.Error("Failed to build economy core", slog.Any("error", err))
		os.Exit(-1)
	}
	defer core.Close()

	core.Notifier.OnAdd(func(data events.ActionData) {
		logger.LogMutation(events.ActionAdd, data)
	})
	core.Notifier.OnSubtract(func(data events.ActionData) {
		logger.LogMutation(events.ActionSubtract, data)
	})
	core.Notifier.OnSet(func(data events.ActionData) {
		logger.LogMutation(events.ActionSet, data)
	})

	var recorder *store.Recorder
	if repo != nil {
		recorder = store.NewRecorder(repo)
		core.Ledger.AttachSink(recorder)
		defer recorder.Close()

		if err := store.Restore(ctx, repo, core.Ledger); err != nil {
			slog.Error("Failed to restore balances", slog.Any("error", err))
			os.Exit(-1)
		}
	}

	if err := core.Provider.Init(); err != nil {
		slog.Error("Failed to initialize provider", slog.Any("error", err))
		os.Exit(-1)
	}

	logger.LogSystem("Economy host ready",
		slog.Int("economies", len(core.Provider.Economies())))

	s := make(chan os.Signal, 1)
	signal.Notify(s, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-s
	slog.Info("Shutting down economy host...")
}
