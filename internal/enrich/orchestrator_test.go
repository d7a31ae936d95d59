package enrich

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/vietddude/enricher/internal/core/domain"
)

type fakeStore struct {
	pending   []domain.PendingRecord
	selectErr error
	upsertErr error

	upserted    []domain.OutcomeRecord
	upsertCalls int
	selectedNow time.Time
}

func (s *fakeStore) SelectPending(
	_ context.Context,
	now time.Time,
	limit int,
) ([]domain.PendingRecord, error) {
	s.selectedNow = now
	if s.selectErr != nil {
		return nil, s.selectErr
	}
	if len(s.pending) > limit {
		return s.pending[:limit], nil
	}
	return s.pending, nil
}

func (s *fakeStore) UpsertOutcomes(_ context.Context, records []domain.OutcomeRecord) error {
	s.upsertCalls++
	if s.upsertErr != nil {
		return s.upsertErr
	}
	s.upserted = append(s.upserted, records...)
	return nil
}

type fakeFetcher struct {
	profiles []domain.FetchedProfile
	err      error

	calls int
	urls  []string
}

func (f *fakeFetcher) FetchProfiles(
	_ context.Context,
	urls []string,
) ([]domain.FetchedProfile, error) {
	f.calls++
	f.urls = urls
	if f.err != nil {
		return nil, f.err
	}
	return f.profiles, nil
}

func TestRun_NothingToDo(t *testing.T) {
	store := &fakeStore{}
	fetcher := &fakeFetcher{}
	e := NewEnricher(store, fetcher, fixedClock{testNow})

	report, err := e.Run(context.Background(), 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Selected != 0 {
		t.Errorf("selected = %d, want 0", report.Selected)
	}
	if fetcher.calls != 0 {
		t.Error("expected no fetch when nothing is pending")
	}
	if store.upsertCalls != 0 {
		t.Error("expected no upsert when nothing is pending")
	}
}

func TestRun_MixedBatch(t *testing.T) {
	store := &fakeStore{
		pending: []domain.PendingRecord{
			{GithubUserID: 1, LinkedinHandle: "in/jdoe", RetryCount: 0},
			{GithubUserID: 2, LinkedinHandle: "in/ghost", RetryCount: 1},
			{GithubUserID: 3, LinkedinHandle: "in/ASmith", RetryCount: 0},
		},
	}
	fetcher := &fakeFetcher{
		profiles: []domain.FetchedProfile{
			{PublicIdentifier: "jdoe"},
			{PublicIdentifier: "asmith"},
		},
	}
	e := NewEnricher(store, fetcher, fixedClock{testNow})

	report, err := e.Run(context.Background(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.Selected != 3 || report.Enriched != 2 || report.Missing != 1 {
		t.Errorf("report = %+v, want 3 selected, 2 enriched, 1 missing", report)
	}
	if report.Selected != report.Enriched+report.Missing {
		t.Error("every selected record must yield exactly one outcome")
	}
	if report.NewAttempts != 2 || report.Retries != 1 {
		t.Errorf("new attempts = %d, retries = %d, want 2 and 1", report.NewAttempts, report.Retries)
	}
	if len(store.upserted) != 3 {
		t.Fatalf("upserted %d rows, want 3", len(store.upserted))
	}
	if store.upsertCalls != 1 {
		t.Errorf("upsert called %d times, want 1", store.upsertCalls)
	}

	// URL construction: fixed host + stored handle.
	for i, url := range fetcher.urls {
		if !strings.HasPrefix(url, LinkedinHost+"/") {
			t.Errorf("url %d = %q, want %s prefix", i, url, LinkedinHost)
		}
	}

	// The miss row carries advanced retry state; the matched rows reset it.
	for _, row := range store.upserted {
		if row.GithubUserID == 2 {
			if row.ProfileFound || row.RetryCount != 2 {
				t.Errorf("miss row = found %v, retry %d", row.ProfileFound, row.RetryCount)
			}
		} else {
			if !row.ProfileFound || row.RetryCount != 0 {
				t.Errorf("matched row %d = found %v, retry %d",
					row.GithubUserID, row.ProfileFound, row.RetryCount)
			}
		}
	}
}

func TestRun_BatchSizeLimitsSelection(t *testing.T) {
	store := &fakeStore{
		pending: []domain.PendingRecord{
			{GithubUserID: 1, LinkedinHandle: "in/a"},
			{GithubUserID: 2, LinkedinHandle: "in/b"},
			{GithubUserID: 3, LinkedinHandle: "in/c"},
		},
	}
	fetcher := &fakeFetcher{}
	e := NewEnricher(store, fetcher, fixedClock{testNow})

	report, err := e.Run(context.Background(), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Selected != 2 {
		t.Errorf("selected = %d, want 2", report.Selected)
	}
	if len(fetcher.urls) != 2 {
		t.Errorf("fetched %d urls, want 2", len(fetcher.urls))
	}
}

func TestRun_SelectFailureAborts(t *testing.T) {
	store := &fakeStore{selectErr: errors.New("connection refused")}
	fetcher := &fakeFetcher{}
	e := NewEnricher(store, fetcher, fixedClock{testNow})

	_, err := e.Run(context.Background(), 5)
	if err == nil {
		t.Fatal("expected error")
	}
	if fetcher.calls != 0 || store.upsertCalls != 0 {
		t.Error("expected no side effects after selection failure")
	}
}

func TestRun_FetchFailureAbortsBeforeWrite(t *testing.T) {
	store := &fakeStore{
		pending: []domain.PendingRecord{{GithubUserID: 1, LinkedinHandle: "in/jdoe"}},
	}
	fetcher := &fakeFetcher{err: errors.New("provider timeout")}
	e := NewEnricher(store, fetcher, fixedClock{testNow})

	_, err := e.Run(context.Background(), 5)
	if err == nil {
		t.Fatal("expected error")
	}
	// A provider failure must not persist miss rows for records that were
	// never actually queried.
	if store.upsertCalls != 0 {
		t.Error("expected no upsert after fetch failure")
	}
}

func TestRun_UpsertFailureSurfaces(t *testing.T) {
	store := &fakeStore{
		pending:   []domain.PendingRecord{{GithubUserID: 1, LinkedinHandle: "in/jdoe"}},
		upsertErr: errors.New("deadlock detected"),
	}
	fetcher := &fakeFetcher{
		profiles: []domain.FetchedProfile{{PublicIdentifier: "jdoe"}},
	}
	e := NewEnricher(store, fetcher, fixedClock{testNow})

	_, err := e.Run(context.Background(), 5)
	if err == nil {
		t.Fatal("expected upsert error to surface")
	}
}

func TestRun_SuccessScenario(t *testing.T) {
	// Record with a null retry history and a provider hit.
	store := &fakeStore{
		pending: []domain.PendingRecord{
			{GithubUserID: 9, LinkedinHandle: "in/jdoe", RetryCount: 0},
		},
	}
	fetcher := &fakeFetcher{
		profiles: []domain.FetchedProfile{
			{PublicIdentifier: "jdoe", FullName: strPtr("Jane Doe")},
		},
	}
	e := NewEnricher(store, fetcher, fixedClock{testNow})

	if _, err := e.Run(context.Background(), 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	row := store.upserted[0]
	if !row.ProfileFound || row.RetryCount != 0 {
		t.Errorf("row = found %v, retry %d", row.ProfileFound, row.RetryCount)
	}
	if row.LastRetryAt != nil || row.NextRetryAfter != nil {
		t.Error("expected retry timestamps cleared")
	}
	if row.FullName == nil || *row.FullName != "Jane Doe" {
		t.Error("profile fields not populated")
	}
}

func TestRun_MissScenario(t *testing.T) {
	store := &fakeStore{
		pending: []domain.PendingRecord{
			{GithubUserID: 9, LinkedinHandle: "in/jdoe", RetryCount: 0},
		},
	}
	fetcher := &fakeFetcher{}
	e := NewEnricher(store, fetcher, fixedClock{testNow})

	if _, err := e.Run(context.Background(), 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	row := store.upserted[0]
	if row.ProfileFound || row.RetryCount != 1 {
		t.Errorf("row = found %v, retry %d, want miss with retry 1", row.ProfileFound, row.RetryCount)
	}
	wantNext := testNow.Add(5 * time.Minute).UnixMilli()
	if row.NextRetryAfter == nil || *row.NextRetryAfter != wantNext {
		t.Errorf("next retry after = %v, want %d", row.NextRetryAfter, wantNext)
	}
	if row.ProfileFetchMessage == nil {
		t.Error("expected fetch message on miss")
	}
}
