package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/subscry/subscry/internal/api"
	"github.com/subscry/subscry/internal/config"
	"github.com/subscry/subscry/internal/ledger"
	"github.com/subscry/subscry/internal/models"
	"github.com/subscry/subscry/internal/participants"
	"github.com/subscry/subscry/internal/reminders"
	"github.com/subscry/subscry/internal/storage/snapshot"
	"github.com/subscry/subscry/internal/subscriptions"
	"github.com/subscry/subscry/pkg/logging"
)

func main() {
	logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// One snapshot table per logical row set, both under the data dir.
	subTable, err := snapshot.New[models.Subscription](cfg.DataDir, "subscriptions_db")
	if err != nil {
		slog.Error("failed to create subscriptions table", "error", err)
		os.Exit(1)
	}
	defer subTable.Close()

	partTable, err := snapshot.New[models.Participant](cfg.DataDir, "participants_db")
	if err != nil {
		slog.Error("failed to create participants table", "error", err)
		os.Exit(1)
	}
	defer partTable.Close()

	repo := subscriptions.NewRepository(subTable)
	repo.Init()
	directory := participants.NewDirectory(partTable)
	directory.Init()
	slog.Info("storage initialized", "data_dir", cfg.DataDir)

	// Fold inline participant lists into the directory on every boot;
	// the migration is idempotent.
	linked := ledger.MigrateInlineToDirectory(repo.List(), directory)
	slog.Info("participant migration complete", "links", linked)

	scheduler := reminders.NewScheduler(repo, cfg.ReminderHorizonDays)
	if err := scheduler.Start(cfg.ReminderSchedule); err != nil {
		slog.Error("failed to start reminder scheduler", "error", err)
		os.Exit(1)
	}
	defer scheduler.Stop()

	router := api.NewRouter(repo, directory)

	// h2c allows HTTP/2 without TLS on localhost.
	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      h2c.NewHandler(router, &http2.Server{}),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "address", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
