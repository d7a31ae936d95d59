package domain

// RecordSourceApify tags rows produced by the Apify enrichment pipeline.
const RecordSourceApify = "apify"

// MaxRetryAttempts is the retry budget. A record that has missed this many
// times is terminally failed and excluded from selection until its retry
// state is reset externally.
const MaxRetryAttempts = 3

// MissingProfileMessage is the fixed message stored when the provider did not
// return a profile for a requested handle.
const MissingProfileMessage = "Profile not returned by provider"

// PendingRecord is a stored identity awaiting enrichment, as returned by the
// selection query. It is read-only within a run; every attempt derives a
// fresh OutcomeRecord that supersedes prior persisted state.
type PendingRecord struct {
	GithubUserID   int64
	SocialLinkURL  string
	LinkProvider   string
	LinkedinHandle string
	// RetryCount is the number of prior failed attempts. The selection query
	// coalesces a never-attempted NULL to 0.
	RetryCount int
}

// OutcomeRecord is the row persisted for one enrichment attempt. Field order
// follows the linkedin.user_details column contract; the postgres package
// asserts the two stay in lock-step.
//
// Profile fields are pointers: nil persists as NULL, both for misses and for
// fields the provider omitted on a successful fetch.
type OutcomeRecord struct {
	GithubUserID        int64   `db:"github_user_id"`
	SocialLinkURL       string  `db:"social_link_url"`
	LinkProvider        string  `db:"link_provider"`
	LinkedinHandle      string  `db:"linkedin_handle"`
	RecordSource        string  `db:"record_source"`
	ProfileFound        bool    `db:"profile_found"`
	ProfileFetchMessage *string `db:"profile_fetch_message"`

	FullName                 *string  `db:"full_name"`
	FirstName                *string  `db:"first_name"`
	LastName                 *string  `db:"last_name"`
	Headline                 *string  `db:"headline"`
	About                    *string  `db:"about"`
	PublicIdentifier         *string  `db:"public_identifier"`
	LinkedinURL              *string  `db:"linkedin_url"`
	Connections              *int64   `db:"connections"`
	Followers                *int64   `db:"followers"`
	JobTitle                 *string  `db:"job_title"`
	CompanyName              *string  `db:"company_name"`
	CompanyIndustry          *string  `db:"company_industry"`
	CompanyWebsite           *string  `db:"company_website"`
	CompanyLinkedin          *string  `db:"company_linkedin"`
	CompanyFoundedIn         *int64   `db:"company_founded_in"`
	CompanySize              *string  `db:"company_size"`
	CurrentJobDurationYrs    *float64 `db:"current_job_duration_yrs"`
	AddressWithCountry       *string  `db:"address_with_country"`
	AddressCountryOnly       *string  `db:"address_country_only"`
	AddressWithoutCountry    *string  `db:"address_without_country"`
	ProfilePicURL            *string  `db:"profile_pic_url"`
	ProfilePicHighQualityURL *string  `db:"profile_pic_high_quality_url"`
	TopSkillsByEndorsements  *string  `db:"top_skills_by_endorsements"`

	// ProfileData archives the raw provider payload (JSONB), NULL on a miss.
	ProfileData []byte `db:"profile_data"`

	RetryCount     int    `db:"retry_count"`
	LastRetryAt    *int64 `db:"last_retry_at"`
	NextRetryAfter *int64 `db:"next_retry_after"`
}
