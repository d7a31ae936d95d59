package enrich

import (
	"time"

	"github.com/vietddude/enricher/internal/core/domain"
)

const backoffBaseMinutes = 5

// RetrySchedule is the retry state computed after a miss.
type RetrySchedule struct {
	RetryCount     int
	LastRetryAt    int64 // epoch milliseconds
	NextRetryAfter int64 // epoch milliseconds
}

// ScheduleRetry computes the retry state following a miss. The cooldown grows
// quadratically with the attempt number (5, 20, 45 minutes) and the selection
// policy cuts attempts off at domain.MaxRetryAttempts.
func ScheduleRetry(priorRetryCount int, now time.Time) RetrySchedule {
	newCount := priorRetryCount + 1
	backoff := time.Duration(newCount*newCount*backoffBaseMinutes) * time.Minute
	nowMillis := now.UnixMilli()

	return RetrySchedule{
		RetryCount:     newCount,
		LastRetryAt:    nowMillis,
		NextRetryAfter: nowMillis + backoff.Milliseconds(),
	}
}

// BuildEnrichedRecord converts a matched (record, profile) pair into the row
// to persist. Retry state is cleared: a success resets the record regardless
// of how many misses preceded it. Provider fields that are absent persist as
// NULL, never as an error.
func BuildEnrichedRecord(
	rec domain.PendingRecord,
	profile domain.FetchedProfile,
) domain.OutcomeRecord {
	publicID := profile.PublicIdentifier

	return domain.OutcomeRecord{
		GithubUserID:   rec.GithubUserID,
		SocialLinkURL:  rec.SocialLinkURL,
		LinkProvider:   rec.LinkProvider,
		LinkedinHandle: rec.LinkedinHandle,
		RecordSource:   domain.RecordSourceApify,
		ProfileFound:   true,

		FullName:                 profile.FullName,
		FirstName:                profile.FirstName,
		LastName:                 profile.LastName,
		Headline:                 profile.Headline,
		About:                    profile.About,
		PublicIdentifier:         &publicID,
		LinkedinURL:              profile.LinkedinURL,
		Connections:              profile.Connections,
		Followers:                profile.Followers,
		JobTitle:                 profile.JobTitle,
		CompanyName:              profile.CompanyName,
		CompanyIndustry:          profile.CompanyIndustry,
		CompanyWebsite:           profile.CompanyWebsite,
		CompanyLinkedin:          profile.CompanyLinkedin,
		CompanyFoundedIn:         profile.CompanyFoundedIn,
		CompanySize:              profile.CompanySize,
		CurrentJobDurationYrs:    profile.CurrentJobDurationYrs,
		AddressWithCountry:       profile.AddressWithCountry,
		AddressCountryOnly:       profile.AddressCountryOnly,
		AddressWithoutCountry:    profile.AddressWithoutCountry,
		ProfilePicURL:            profile.ProfilePic,
		ProfilePicHighQualityURL: profile.ProfilePicHighQuality,
		TopSkillsByEndorsements:  profile.TopSkillsByEndorsements,

		ProfileData: profile.RawPayload(),

		RetryCount:     0,
		LastRetryAt:    nil,
		NextRetryAfter: nil,
	}
}

// BuildMissingRecord converts an unmatched record into the row to persist:
// every profile field NULL, the fixed miss message, and retry state advanced
// by ScheduleRetry.
func BuildMissingRecord(rec domain.PendingRecord, now time.Time) domain.OutcomeRecord {
	schedule := ScheduleRetry(rec.RetryCount, now)
	message := domain.MissingProfileMessage

	return domain.OutcomeRecord{
		GithubUserID:        rec.GithubUserID,
		SocialLinkURL:       rec.SocialLinkURL,
		LinkProvider:        rec.LinkProvider,
		LinkedinHandle:      rec.LinkedinHandle,
		RecordSource:        domain.RecordSourceApify,
		ProfileFound:        false,
		ProfileFetchMessage: &message,

		RetryCount:     schedule.RetryCount,
		LastRetryAt:    &schedule.LastRetryAt,
		NextRetryAfter: &schedule.NextRetryAfter,
	}
}
