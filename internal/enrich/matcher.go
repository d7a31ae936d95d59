package enrich

import "github.com/vietddude/enricher/internal/core/domain"

// MatchOutcome pairs a pending record with the profile the provider returned
// for it, if any. A nil Profile is a miss.
type MatchOutcome struct {
	Record  domain.PendingRecord
	Profile *domain.FetchedProfile
}

// BuildProfileLookup indexes fetched profiles by normalized public
// identifier. Profiles with an empty identifier are skipped. When two
// profiles normalize to the same handle the later one wins; duplicate
// provider results are unconfirmed upstream, so the collision rule is kept
// explicit rather than fixed.
func BuildProfileLookup(profiles []domain.FetchedProfile) map[string]domain.FetchedProfile {
	lookup := make(map[string]domain.FetchedProfile, len(profiles))
	for _, p := range profiles {
		if p.PublicIdentifier == "" {
			continue
		}
		lookup[NormalizeHandle(p.PublicIdentifier)] = p
	}
	return lookup
}

// MatchRecords resolves each pending record against the lookup by its
// normalized stored handle. Exactly one outcome is produced per record,
// independent of the order the provider returned profiles in.
func MatchRecords(
	records []domain.PendingRecord,
	lookup map[string]domain.FetchedProfile,
) []MatchOutcome {
	outcomes := make([]MatchOutcome, 0, len(records))
	for _, rec := range records {
		outcome := MatchOutcome{Record: rec}
		if profile, ok := lookup[NormalizeHandle(rec.LinkedinHandle)]; ok {
			outcome.Profile = &profile
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}
