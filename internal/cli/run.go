package cli

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vietddude/enricher/internal/core/config"
	"github.com/vietddude/enricher/internal/enrich"
	"github.com/vietddude/enricher/internal/infra/apify"
	redisclient "github.com/vietddude/enricher/internal/infra/redis"
	"github.com/vietddude/enricher/internal/infra/storage/postgres"
)

var batchCount int

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one enrichment pass and exit",
	Run:   runOnce,
}

func init() {
	runCmd.Flags().IntVar(&batchCount, "count", 0, "number of profiles to enrich (default from config)")
	rootCmd.AddCommand(runCmd)
}

func runOnce(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
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

	report, err := r.RunOnce(ctx)
	if err != nil {
		slog.Error("Enrichment run failed", "error", err)
		os.Exit(1)
	}
	if report != nil {
		slog.Info("Run finished",
			"run_id", report.RunID,
			"selected", report.Selected,
			"enriched", report.Enriched,
			"missing", report.Missing,
		)
	}
}

// runner coordinates one enrichment pass: take the run lock when redis is
// configured, run the engine, release the lock.
type runner struct {
	cfg      *config.AppConfig
	enricher *enrich.Enricher
	lock     *redisclient.Client
}

func newRunner(cfg *config.AppConfig, store enrich.Store) (*runner, error) {
	r := &runner{
		cfg:      cfg,
		enricher: enrich.NewEnricher(store, apify.NewClient(cfg.Apify), nil),
	}

	if cfg.Redis.URL != "" {
		lock, err := redisclient.NewClient(cfg.Redis)
		if err != nil {
			return nil, err
		}
		r.lock = lock
	}

	return r, nil
}

// RunOnce executes a single pass. A nil report with nil error means the run
// was skipped because another instance holds the lock.
func (r *runner) RunOnce(ctx context.Context) (*enrich.Report, error) {
	size := r.cfg.Enrichment.BatchSize
	if batchCount > 0 {
		size = batchCount
	}

	if r.lock != nil {
		ttl := time.Duration(r.cfg.Enrichment.LockTTLMinutes) * time.Minute
		acquired, err := r.lock.AcquireRunLock(ctx, ttl)
		if err != nil {
			return nil, err
		}
		if !acquired {
			slog.Info("Another enrichment run is in progress, skipping")
			return nil, nil
		}
		defer func() {
			_ = r.lock.ReleaseRunLock(ctx)
		}()
	}

	return r.enricher.Run(ctx, size)
}

// Close releases the runner's resources.
func (r *runner) Close() {
	if r.lock != nil {
		_ = r.lock.Close()
	}
}
