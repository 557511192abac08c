package models

import "time"

// Visibility controls who may see a profile's details.
type Visibility string

const (
	VisibilityPublic      Visibility = "public"
	VisibilityMatchesOnly Visibility = "matches_only"
	VisibilityPrivate     Visibility = "private"
)

// Profile is the identity-linked record for a caregiver.
type Profile struct {
	ID                 int        `db:"id" json:"id"`
	UserID             int        `db:"user_id" json:"user_id"`
	DisplayName        string     `db:"display_name" json:"display_name"`
	Bio                *string    `db:"bio" json:"bio,omitempty"`
	City               *string    `db:"city" json:"city,omitempty"`
	State              *string    `db:"state" json:"state,omitempty"`
	Latitude           *float64   `db:"latitude" json:"latitude,omitempty"`
	Longitude          *float64   `db:"longitude" json:"longitude,omitempty"`
	Visibility         Visibility `db:"visibility" json:"visibility"`
	OnboardingComplete bool       `db:"onboarding_complete" json:"onboarding_complete"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updated_at"`

	KidAges   []int    `db:"-" json:"kid_ages"`
	Interests []string `db:"-" json:"interests"`
}

// Kid belongs to exactly one profile. The list is replaced wholesale on
// every profile update.
type Kid struct {
	ID        int `db:"id" json:"id"`
	ProfileID int `db:"profile_id" json:"profile_id"`
	Age       int `db:"age" json:"age"`
}

// Interest is a single tag on a profile, unique per (profile, tag).
type Interest struct {
	ID        int    `db:"id" json:"id"`
	ProfileID int    `db:"profile_id" json:"profile_id"`
	Tag       string `db:"tag" json:"tag"`
}

// CandidateProfile is a profile eligible to be shown for swiping, together
// with the interests it shares with the requester.
type CandidateProfile struct {
	Profile
	SharedInterests []string `json:"shared_interests"`
}

// SharedInterests returns the tags present in both lists, preserving the
// candidate's tag order.
func SharedInterests(mine, theirs []string) []string {
	set := make(map[string]struct{}, len(mine))
	for _, tag := range mine {
		set[tag] = struct{}{}
	}
	shared := make([]string, 0)
	for _, tag := range theirs {
		if _, ok := set[tag]; ok {
			shared = append(shared, tag)
		}
	}
	return shared
}
