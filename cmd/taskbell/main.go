// Command taskbell runs the task-management bot: webhook server, periodic
// reminder reconciliation, and daily digests.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/taskbell/taskbell/internal/api"
	"github.com/taskbell/taskbell/internal/bot"
	"github.com/taskbell/taskbell/internal/cascade"
	"github.com/taskbell/taskbell/internal/clock"
	"github.com/taskbell/taskbell/internal/reconcile"
	"github.com/taskbell/taskbell/internal/scheduler"
	"github.com/taskbell/taskbell/internal/store"
	"github.com/taskbell/taskbell/internal/telegram"
	"github.com/taskbell/taskbell/internal/util"
)

// Default configuration constants
const (
	// DefaultStateDir is the default directory for TaskBell state data
	DefaultStateDir = "/var/lib/taskbell"
	// DefaultDBFileName is the default SQLite database filename
	DefaultDBFileName = "taskbell.db"
)

// Config holds environment configuration
type Config struct {
	BotToken      string
	DbDriver      string
	DbDSN         string
	StateDir      string
	APIAddr       string
	OffsetMinutes int
	DeliverMissed bool
}

func main() {
	initializeLogger()

	config := loadEnvironmentConfig()
	flags := parseCommandLineFlags(config)

	st, err := openStore(flags)
	if err != nil {
		slog.Error("Failed to open store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	notifier, err := telegram.NewClient(telegram.WithToken(*flags.botToken))
	if err != nil {
		slog.Error("Failed to create Telegram client", "error", err)
		os.Exit(1)
	}

	acc := store.NewAccessor(st)
	clk := clock.New(clock.WithOffsetMinutes(*flags.offsetMinutes))
	engine := cascade.NewEngine(acc)
	rec := reconcile.New(acc, notifier, clk, reconcile.WithDeliverMissed(*flags.deliverMissed))
	handler := bot.New(acc, notifier, clk, engine, rec)

	sched := scheduler.NewScheduler()
	defer sched.Stop()
	if err := sched.AddTick(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 55*time.Second)
		defer cancel()
		if err := rec.Tick(ctx); err != nil {
			slog.Error("Reconciler tick failed", "error", err)
		}
	}); err != nil {
		slog.Error("Failed to schedule reconciler tick", "error", err)
		os.Exit(1)
	}

	server := api.NewServer(handler, api.WithAddr(*flags.apiAddr))

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			slog.Error("TaskBell failed to run", "error", err)
			os.Exit(1)
		}
	case sig := <-sigCh:
		slog.Info("Shutting down on signal", "signal", sig.String())
		if err := server.Shutdown(context.Background()); err != nil {
			slog.Error("Graceful shutdown failed", "error", err)
		}
	}
	slog.Info("TaskBell exited successfully")
}

// Flags holds command line flag values
type Flags struct {
	botToken      *string
	stateDir      *string
	dbDriver      *string
	dbDSN         *string
	apiAddr       *string
	offsetMinutes *int
	deliverMissed *bool
}

// initializeLogger sets up structured logging with the level taken from
// TASKBELL_LOG_LEVEL (debug, info, warn, error; default info).
func initializeLogger() {
	level := slog.LevelInfo
	switch os.Getenv("TASKBELL_LOG_LEVEL") {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

// loadEnvironmentConfig loads configuration from environment variables and .env file
func loadEnvironmentConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	} else {
		slog.Debug("successfully loaded .env file")
	}

	config := Config{
		BotToken:      os.Getenv("TELEGRAM_BOT_TOKEN"),
		DbDriver:      os.Getenv("TASKBELL_DB_DRIVER"),
		DbDSN:         os.Getenv("TASKBELL_DB_DSN"),
		StateDir:      os.Getenv("TASKBELL_STATE_DIR"),
		APIAddr:       os.Getenv("API_ADDR"),
		OffsetMinutes: util.ParseIntEnv("TASKBELL_UTC_OFFSET_MINUTES", clock.DefaultOffsetMinutes),
		DeliverMissed: util.ParseBoolEnv("TASKBELL_DELIVER_MISSED", false),
	}

	if config.StateDir == "" {
		config.StateDir = DefaultStateDir
		slog.Debug("No TASKBELL_STATE_DIR set, using default", "default_state_dir", config.StateDir)
	}

	// Fall back to the generic DATABASE_URL for the Postgres backend
	if config.DbDSN == "" {
		config.DbDSN = os.Getenv("DATABASE_URL")
		if config.DbDSN != "" && config.DbDriver == "" {
			config.DbDriver = "postgres"
		}
	}

	if config.APIAddr == "" {
		config.APIAddr = api.DefaultAddr
	}

	return config
}

// parseCommandLineFlags parses flags, with environment values as defaults.
func parseCommandLineFlags(config Config) Flags {
	flags := Flags{
		botToken:      flag.String("bot-token", config.BotToken, "Telegram bot token"),
		stateDir:      flag.String("state-dir", config.StateDir, "Directory for state data"),
		dbDriver:      flag.String("db-driver", config.DbDriver, "Database driver (sqlite3 or postgres)"),
		dbDSN:         flag.String("db-dsn", config.DbDSN, "Database DSN (file path for sqlite3, URL for postgres)"),
		apiAddr:       flag.String("api-addr", config.APIAddr, "API server listen address"),
		offsetMinutes: flag.Int("utc-offset-minutes", config.OffsetMinutes, "Local timezone offset from UTC in minutes"),
		deliverMissed: flag.Bool("deliver-missed", config.DeliverMissed, "Deliver reminders missed beyond the tolerance window, late, instead of dropping them"),
	}
	flag.Parse()
	return flags
}

// openStore selects and opens the configured store backend. SQLite under the
// state directory is the default.
func openStore(flags Flags) (store.Store, error) {
	if *flags.dbDriver == "postgres" {
		slog.Info("Using PostgreSQL store backend")
		return store.NewPostgresStore(store.WithDSN(*flags.dbDSN))
	}

	dsn := *flags.dbDSN
	if dsn == "" {
		dsn = filepath.Join(*flags.stateDir, DefaultDBFileName)
	}
	slog.Info("Using SQLite store backend", "path", dsn)
	return store.NewSQLiteStore(store.WithDSN(dsn))
}
