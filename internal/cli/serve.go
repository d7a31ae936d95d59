package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vietddude/enricher/internal/health"
	"github.com/vietddude/enricher/internal/infra/storage/postgres"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run enrichment on an interval with a health/metrics endpoint",
	Run:   runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("Failed to open store", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = db.Close()
	}()

	r, err := newRunner(cfg, postgres.NewProfileRepo(db))
	if err != nil {
		slog.Error("Failed to initialize runner", "error", err)
		os.Exit(1)
	}
	defer r.Close()

	healthServer := health.NewServer(db, cfg.Server.Port)
	go func() {
		if err := healthServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Health server failed", "error", err)
		}
	}()
	slog.Info("Health server listening", "port", cfg.Server.Port)

	interval := time.Duration(cfg.Enrichment.IntervalMinutes) * time.Minute
	slog.Info("Enrichment daemon started", "interval", interval)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Runs execute strictly one at a time: the next tick waits for the
	// previous pass to finish.
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	runPass := func() {
		report, err := r.RunOnce(ctx)
		healthServer.RecordRun(report, err)
		if err != nil {
			slog.Error("Enrichment run failed", "error", err)
		}
	}

	runPass()
	for {
		select {
		case <-ticker.C:
			runPass()
		case sig := <-sigChan:
			slog.Info("Received signal, shutting down...", "signal", sig)
			cancel()

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()
			if err := healthServer.Stop(shutdownCtx); err != nil {
				slog.Error("Error during shutdown", "error", err)
			}
			slog.Info("Enricher stopped gracefully")
			return
		}
	}
}
