package postgres

import (
	"reflect"
	"strings"
	"testing"

	"github.com/vietddude/enricher/internal/core/domain"
)

// The column list and the db tags on domain.OutcomeRecord are a shared
// versioned contract; a drift between them corrupts rows silently.
func TestOutcomeColumnsMatchRecord(t *testing.T) {
	typ := reflect.TypeOf(domain.OutcomeRecord{})

	tags := make([]string, 0, typ.NumField())
	for i := 0; i < typ.NumField(); i++ {
		tag := typ.Field(i).Tag.Get("db")
		if tag == "" || tag == "-" {
			t.Fatalf("field %s has no db tag", typ.Field(i).Name)
		}
		tags = append(tags, tag)
	}

	if !reflect.DeepEqual(tags, userDetailsColumns) {
		t.Errorf("OutcomeRecord db tags and userDetailsColumns diverged:\n tags: %v\n cols: %v",
			tags, userDetailsColumns)
	}
}

func TestBuildUpsertQuery(t *testing.T) {
	query := buildUpsertQuery()

	if !strings.Contains(query, "ON CONFLICT (github_user_id, linkedin_handle) DO UPDATE SET") {
		t.Error("expected conflict resolution on (github_user_id, linkedin_handle)")
	}
	if strings.Count(query, ":") != len(userDetailsColumns) {
		t.Errorf("expected %d named placeholders, got %d",
			len(userDetailsColumns), strings.Count(query, ":"))
	}

	// Key columns must never be rewritten on conflict.
	for _, key := range conflictColumns {
		if strings.Contains(query, key+" = EXCLUDED."+key) {
			t.Errorf("conflict column %s must not appear in the update list", key)
		}
	}
	// Every non-key column must be overwritten on conflict.
	for _, col := range userDetailsColumns {
		if col == "github_user_id" || col == "linkedin_handle" {
			continue
		}
		if !strings.Contains(query, col+" = EXCLUDED."+col) {
			t.Errorf("column %s missing from the update list", col)
		}
	}
}

func TestSelectPendingQueryEligibility(t *testing.T) {
	// The eligibility policy lives in SQL; pin its load-bearing clauses.
	clauses := []string{
		"lud.linkedin_handle IS NOT NULL",
		"lud.retry_count IS NULL",
		"lud.profile_found IS FALSE",
		"lud.retry_count < $1",
		"lud.next_retry_after IS NULL OR lud.next_retry_after < $2",
		"COALESCE(lud.retry_count, 0) ASC",
		"lud.last_retry_at ASC NULLS FIRST",
		"LIMIT $3",
	}
	for _, clause := range clauses {
		if !strings.Contains(selectPendingQuery, clause) {
			t.Errorf("selection query missing clause %q", clause)
		}
	}
}
