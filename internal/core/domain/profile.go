package domain

import "encoding/json"

// FetchedProfile is one profile returned by the scraping provider. The
// provider's field set is open-ended; only PublicIdentifier participates in
// matching, the rest is carried through to the persisted row. Fields the
// provider omits stay nil.
type FetchedProfile struct {
	PublicIdentifier string `json:"publicIdentifier"`

	FullName                *string  `json:"fullName"`
	FirstName               *string  `json:"firstName"`
	LastName                *string  `json:"lastName"`
	Headline                *string  `json:"headline"`
	About                   *string  `json:"about"`
	LinkedinURL             *string  `json:"linkedinUrl"`
	Connections             *int64   `json:"connections"`
	Followers               *int64   `json:"followers"`
	JobTitle                *string  `json:"jobTitle"`
	CompanyName             *string  `json:"companyName"`
	CompanyIndustry         *string  `json:"companyIndustry"`
	CompanyWebsite          *string  `json:"companyWebsite"`
	CompanyLinkedin         *string  `json:"companyLinkedin"`
	CompanyFoundedIn        *int64   `json:"companyFoundedIn"`
	CompanySize             *string  `json:"companySize"`
	CurrentJobDurationYrs   *float64 `json:"currentJobDurationInYrs"`
	AddressWithCountry      *string  `json:"addressWithCountry"`
	AddressCountryOnly      *string  `json:"addressCountryOnly"`
	AddressWithoutCountry   *string  `json:"addressWithoutCountry"`
	ProfilePic              *string  `json:"profilePic"`
	ProfilePicHighQuality   *string  `json:"profilePicHighQuality"`
	TopSkillsByEndorsements *string  `json:"topSkillsByEndorsements"`

	// Raw is the provider payload exactly as received, archived alongside the
	// typed fields. Populated by the fetch client; may be empty in tests.
	Raw json.RawMessage `json:"-"`
}

// RawPayload returns the archival JSON blob for the profile. When the profile
// was not decoded from a wire payload it falls back to marshaling the typed
// fields, so the archive is never empty for a matched profile.
func (p *FetchedProfile) RawPayload() []byte {
	if len(p.Raw) > 0 {
		return p.Raw
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil
	}
	return data
}
