package profile

import (
	"time"

	"github.com/lib/pq"
)

// UserProfile is the stored profile row. Slider columns are nullable so the
// scorer can tell "never set" apart from "set to zero".
type UserProfile struct {
	UserID             string         `json:"id" db:"user_id"`
	DisplayName        string         `json:"display_name" db:"display_name"`
	Email              string         `json:"email" db:"email"`
	Gender             *string        `json:"gender,omitempty" db:"gender"`
	GenderPreference   pq.StringArray `json:"gender_preference" db:"gender_preference"`
	Neighborhoods      pq.StringArray `json:"neighborhoods" db:"neighborhoods"`
	HasPreferences     bool           `json:"has_preferences" db:"has_preferences"`
	Cleanliness        *int           `json:"cleanliness,omitempty" db:"cleanliness"`
	NoiseLevel         *int           `json:"noise_level,omitempty" db:"noise_level"`
	Smoking            *int           `json:"smoking,omitempty" db:"smoking"`
	Pets               *int           `json:"pets,omitempty" db:"pets"`
	Guests             *int           `json:"guests,omitempty" db:"guests"`
	SleepSchedule      *int           `json:"sleep_schedule,omitempty" db:"sleep_schedule"`
	Budget             *int           `json:"budget,omitempty" db:"budget"`
	LeaseLength        *int           `json:"lease_length,omitempty" db:"lease_length"`
	OpenToNonMatches   bool           `json:"open_to_non_matches" db:"open_to_non_matches"`
	SubscriptionTier   string         `json:"subscription_tier" db:"subscription_tier"`
	DirectMessagesSent int            `json:"direct_messages_sent" db:"direct_messages_sent"`
	ProfileComplete    bool           `json:"profile_complete" db:"profile_complete"`
	CreatedAt          time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at" db:"updated_at"`
}

// UpsertProfileDTO is the profile setup/edit payload. Sliders arrive 0-100;
// anything out of range is clamped rather than rejected, matching how the
// mobile client always behaved.
type UpsertProfileDTO struct {
	DisplayName      string   `json:"display_name" validate:"required,min=1,max=100"`
	Email            string   `json:"email" validate:"omitempty,email"`
	Gender           string   `json:"gender" validate:"omitempty,oneof=male female non-binary prefer-not-to-say"`
	GenderPreference []string `json:"gender_preference" validate:"omitempty,dive,oneof=male female non-binary any"`
	Neighborhoods    []string `json:"neighborhoods" validate:"omitempty,dive,min=1,max=100"`
	Cleanliness      *int     `json:"cleanliness,omitempty"`
	NoiseLevel       *int     `json:"noise_level,omitempty"`
	Smoking          *int     `json:"smoking,omitempty"`
	Pets             *int     `json:"pets,omitempty"`
	Guests           *int     `json:"guests,omitempty"`
	SleepSchedule    *int     `json:"sleep_schedule,omitempty"`
	Budget           *int     `json:"budget,omitempty"`
	LeaseLength      *int     `json:"lease_length,omitempty"`
	OpenToNonMatches bool     `json:"open_to_non_matches"`
}

// PublicProfile is what other users see: no email, no quota state.
type PublicProfile struct {
	UserID           string   `json:"id"`
	DisplayName      string   `json:"display_name"`
	Gender           *string  `json:"gender,omitempty"`
	Neighborhoods    []string `json:"neighborhoods"`
	OpenToNonMatches bool     `json:"open_to_non_matches"`
}

func (p *UserProfile) Public() *PublicProfile {
	return &PublicProfile{
		UserID:           p.UserID,
		DisplayName:      p.DisplayName,
		Gender:           p.Gender,
		Neighborhoods:    []string(p.Neighborhoods),
		OpenToNonMatches: p.OpenToNonMatches,
	}
}
