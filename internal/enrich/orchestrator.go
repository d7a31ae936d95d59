package enrich

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/vietddude/enricher/internal/core/domain"
	"github.com/vietddude/enricher/internal/enrich/metrics"
)

// LinkedinHost is the fixed host prepended to stored handles when building
// the URLs sent to the fetch collaborator.
const LinkedinHost = "https://www.linkedin.com"

// Store is the persistence collaborator. SelectPending applies the
// eligibility policy: non-null handle, and either never attempted or a
// non-terminal miss whose cooldown has elapsed as of now; ordered by retry
// tier then oldest attempt first. UpsertOutcomes inserts-or-updates by
// (github_user_id, linkedin_handle).
type Store interface {
	SelectPending(ctx context.Context, now time.Time, limit int) ([]domain.PendingRecord, error)
	UpsertOutcomes(ctx context.Context, records []domain.OutcomeRecord) error
}

// Fetcher is the scraping-provider collaborator. The returned profiles may be
// fewer than requested and in any order; matching is by normalized public
// identifier, never by position.
type Fetcher interface {
	FetchProfiles(ctx context.Context, urls []string) ([]domain.FetchedProfile, error)
}

// Report summarizes one enrichment run.
type Report struct {
	RunID       string
	Selected    int
	NewAttempts int
	Retries     int
	Enriched    int
	Missing     int
}

// Enricher runs the selection-and-retry engine: one read, one fetch, one
// batch upsert per run, in strict sequence.
type Enricher struct {
	store   Store
	fetcher Fetcher
	clock   Clock
	log     *slog.Logger
}

// NewEnricher creates an Enricher. A nil clock defaults to the system clock.
func NewEnricher(store Store, fetcher Fetcher, clock Clock) *Enricher {
	if clock == nil {
		clock = SystemClock()
	}
	return &Enricher{
		store:   store,
		fetcher: fetcher,
		clock:   clock,
		log:     slog.Default(),
	}
}

// Run executes one enrichment pass over up to batchSize eligible records.
// Every selected record yields exactly one persisted outcome, or the run
// aborts before writing anything: a fetch failure must not persist misleading
// miss rows for records that were never actually queried.
func (e *Enricher) Run(ctx context.Context, batchSize int) (*Report, error) {
	report := &Report{RunID: uuid.NewString()}
	log := e.log.With("run_id", report.RunID)

	now := e.clock.Now()
	records, err := e.store.SelectPending(ctx, now, batchSize)
	if err != nil {
		metrics.RunsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("select pending records: %w", err)
	}

	report.Selected = len(records)
	if len(records) == 0 {
		log.Info("No records need enrichment")
		metrics.RunsTotal.WithLabelValues("noop").Inc()
		return report, nil
	}

	for _, rec := range records {
		if rec.RetryCount == 0 {
			report.NewAttempts++
		} else {
			report.Retries++
		}
	}
	metrics.RecordsSelected.Add(float64(len(records)))
	log.Info("Selected records for enrichment",
		"count", len(records),
		"new_attempts", report.NewAttempts,
		"retries", report.Retries,
	)

	urls := make([]string, len(records))
	for i, rec := range records {
		urls[i] = fmt.Sprintf("%s/%s", LinkedinHost, rec.LinkedinHandle)
	}

	fetchStart := time.Now()
	profiles, err := e.fetcher.FetchProfiles(ctx, urls)
	if err != nil {
		metrics.RunsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("fetch profiles: %w", err)
	}
	metrics.FetchLatency.Observe(time.Since(fetchStart).Seconds())

	lookup := BuildProfileLookup(profiles)
	outcomes := MatchRecords(records, lookup)

	rows := make([]domain.OutcomeRecord, 0, len(outcomes))
	for _, m := range outcomes {
		if m.Profile != nil {
			rows = append(rows, BuildEnrichedRecord(m.Record, *m.Profile))
			report.Enriched++
		} else {
			rows = append(rows, BuildMissingRecord(m.Record, now))
			report.Missing++
		}
	}
	metrics.ProfilesMatched.Add(float64(report.Enriched))
	metrics.ProfilesMissing.Add(float64(report.Missing))
	log.Info("Matched fetched profiles",
		"matched", report.Enriched,
		"missing", report.Missing,
	)

	if err := e.store.UpsertOutcomes(ctx, rows); err != nil {
		metrics.RunsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("upsert outcome records: %w", err)
	}

	metrics.RunsTotal.WithLabelValues("ok").Inc()
	metrics.LastRunTimestamp.SetToCurrentTime()
	log.Info("Enrichment complete",
		"enriched", report.Enriched,
		"missing", report.Missing,
	)
	return report, nil
}
