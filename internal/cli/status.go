package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/vietddude/enricher/internal/infra/storage/postgres"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show enrichment state counts",
	Run:   runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	db, err := postgres.NewDB(ctx, cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = db.Close()
	}()

	repo := postgres.NewProfileRepo(db)
	stats, err := repo.Stats(ctx, time.Now())
	if err != nil {
		slog.Error("Failed to query enrichment stats", "error", err)
		os.Exit(1)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "STATE\tCOUNT")
	_, _ = fmt.Fprintf(w, "pending\t%d\n", stats.Pending)
	_, _ = fmt.Fprintf(w, "enriched\t%d\n", stats.Enriched)
	_, _ = fmt.Fprintf(w, "cooldown\t%d\n", stats.Cooldown)
	_, _ = fmt.Fprintf(w, "terminal\t%d\n", stats.Terminal)
	_ = w.Flush()
}
