package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/vietddude/enricher/internal/core/domain"
	"github.com/vietddude/enricher/internal/enrich"
)

// userDetailsColumns is the persisted column contract for
// linkedin.user_details. It must stay in lock-step with the db tags on
// domain.OutcomeRecord; TestOutcomeColumnsMatchRecord enforces that.
var userDetailsColumns = []string{
	"github_user_id",
	"social_link_url",
	"link_provider",
	"linkedin_handle",
	"record_source",
	"profile_found",
	"profile_fetch_message",
	"full_name",
	"first_name",
	"last_name",
	"headline",
	"about",
	"public_identifier",
	"linkedin_url",
	"connections",
	"followers",
	"job_title",
	"company_name",
	"company_industry",
	"company_website",
	"company_linkedin",
	"company_founded_in",
	"company_size",
	"current_job_duration_yrs",
	"address_with_country",
	"address_country_only",
	"address_without_country",
	"profile_pic_url",
	"profile_pic_high_quality_url",
	"top_skills_by_endorsements",
	"profile_data",
	"retry_count",
	"last_retry_at",
	"next_retry_after",
}

// conflictColumns is the uniqueness constraint the upsert resolves on.
var conflictColumns = []string{"github_user_id", "linkedin_handle"}

const selectPendingQuery = `
	SELECT
		lud.github_user_id,
		COALESCE(lud.social_link_url, '') AS social_link_url,
		COALESCE(lud.link_provider, '') AS link_provider,
		lud.linkedin_handle,
		COALESCE(lud.retry_count, 0) AS retry_count
	FROM linkedin.user_details lud
	WHERE lud.linkedin_handle IS NOT NULL
	AND (
		-- Never enriched
		lud.retry_count IS NULL
		OR
		-- Failed enrichment eligible for retry
		(
			lud.profile_found IS FALSE
			AND lud.retry_count < $1
			AND (lud.next_retry_after IS NULL OR lud.next_retry_after < $2)
		)
	)
	ORDER BY
		COALESCE(lud.retry_count, 0) ASC, -- Prioritize new attempts
		lud.last_retry_at ASC NULLS FIRST -- Then oldest retries
	LIMIT $3
`

// ProfileRepo implements enrich.Store using PostgreSQL.
type ProfileRepo struct {
	db          *DB
	upsertQuery string
}

var _ enrich.Store = (*ProfileRepo)(nil)

// NewProfileRepo creates a new PostgreSQL profile repository.
func NewProfileRepo(db *DB) *ProfileRepo {
	return &ProfileRepo{
		db:          db,
		upsertQuery: buildUpsertQuery(),
	}
}

// SelectPending returns up to limit records eligible for an enrichment
// attempt as of now: non-null handle, and either never attempted or a
// non-terminal miss whose cooldown has elapsed. New attempts sort before
// retries, oldest-waiting first within a tier.
func (r *ProfileRepo) SelectPending(
	ctx context.Context,
	now time.Time,
	limit int,
) ([]domain.PendingRecord, error) {
	var rows []struct {
		GithubUserID   int64  `db:"github_user_id"`
		SocialLinkURL  string `db:"social_link_url"`
		LinkProvider   string `db:"link_provider"`
		LinkedinHandle string `db:"linkedin_handle"`
		RetryCount     int    `db:"retry_count"`
	}

	err := r.db.SelectContext(
		ctx,
		&rows,
		selectPendingQuery,
		domain.MaxRetryAttempts,
		now.UnixMilli(),
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to select pending records: %w", err)
	}

	records := make([]domain.PendingRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, domain.PendingRecord{
			GithubUserID:   row.GithubUserID,
			SocialLinkURL:  row.SocialLinkURL,
			LinkProvider:   row.LinkProvider,
			LinkedinHandle: row.LinkedinHandle,
			RetryCount:     row.RetryCount,
		})
	}
	return records, nil
}

// UpsertOutcomes persists one row per enrichment attempt in a single
// statement. On conflict with an existing (github_user_id, linkedin_handle)
// pair every non-key column is overwritten, so re-processing a record
// supersedes its previous enrichment and retry state rather than duplicating
// it.
func (r *ProfileRepo) UpsertOutcomes(
	ctx context.Context,
	records []domain.OutcomeRecord,
) error {
	if len(records) == 0 {
		return nil
	}

	if _, err := r.db.NamedExecContext(ctx, r.upsertQuery, records); err != nil {
		return fmt.Errorf("failed to upsert outcome records: %w", err)
	}
	return nil
}

func buildUpsertQuery() string {
	placeholders := make([]string, len(userDetailsColumns))
	for i, col := range userDetailsColumns {
		placeholders[i] = ":" + col
	}

	isKey := make(map[string]bool, len(conflictColumns))
	for _, col := range conflictColumns {
		isKey[col] = true
	}
	updates := make([]string, 0, len(userDetailsColumns)-len(conflictColumns))
	for _, col := range userDetailsColumns {
		if isKey[col] {
			continue
		}
		updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", col, col))
	}

	return fmt.Sprintf(
		"INSERT INTO linkedin.user_details (%s) VALUES (%s) ON CONFLICT (%s) DO UPDATE SET %s",
		strings.Join(userDetailsColumns, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(conflictColumns, ", "),
		strings.Join(updates, ", "),
	)
}

// EnrichmentStats summarizes the enrichment state of the table.
type EnrichmentStats struct {
	Pending  int64 `db:"pending"`
	Enriched int64 `db:"enriched"`
	Cooldown int64 `db:"cooldown"`
	Terminal int64 `db:"terminal"`
}

// Stats returns record counts by enrichment state as of now.
func (r *ProfileRepo) Stats(ctx context.Context, now time.Time) (*EnrichmentStats, error) {
	const query = `
		SELECT
			COUNT(*) FILTER (WHERE retry_count IS NULL) AS pending,
			COUNT(*) FILTER (WHERE profile_found IS TRUE) AS enriched,
			COUNT(*) FILTER (
				WHERE profile_found IS FALSE AND retry_count < $1 AND next_retry_after >= $2
			) AS cooldown,
			COUNT(*) FILTER (
				WHERE profile_found IS FALSE AND retry_count >= $1
			) AS terminal
		FROM linkedin.user_details
		WHERE linkedin_handle IS NOT NULL
	`

	var stats EnrichmentStats
	err := r.db.GetContext(ctx, &stats, query, domain.MaxRetryAttempts, now.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("failed to query enrichment stats: %w", err)
	}
	return &stats, nil
}
