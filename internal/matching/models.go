package matching

import "time"

// Subscription tiers. Only the free tier is quota-limited.
const (
	TierFree    = "free"
	TierPremium = "premium"
)

// GenderAny in a gender preference set accepts every gender.
const GenderAny = "any"

// Preferences holds the eight roommate sliders, each 0-100. Nil means the
// user never set that slider; smoking and pets only count toward the score
// when both sides have set them.
type Preferences struct {
	Cleanliness   *int `json:"cleanliness,omitempty"`
	NoiseLevel    *int `json:"noise_level,omitempty"`
	Smoking       *int `json:"smoking,omitempty"`
	Pets          *int `json:"pets,omitempty"`
	Guests        *int `json:"guests,omitempty"`
	SleepSchedule *int `json:"sleep_schedule,omitempty"`
	Budget        *int `json:"budget,omitempty"`
	LeaseLength   *int `json:"lease_length,omitempty"`
}

// Profile is a user's matching-relevant state. IDs are opaque strings issued
// by the external identity provider.
type Profile struct {
	ID                 string       `json:"id"`
	DisplayName        string       `json:"display_name"`
	Email              string       `json:"email,omitempty"`
	Gender             string       `json:"gender,omitempty"`
	GenderPreference   []string     `json:"gender_preference,omitempty"`
	Neighborhoods      []string     `json:"neighborhoods,omitempty"`
	Preferences        *Preferences `json:"preferences,omitempty"`
	OpenToNonMatches   bool         `json:"open_to_non_matches"`
	SubscriptionTier   string       `json:"subscription_tier"`
	DirectMessagesSent int          `json:"direct_messages_sent"`
	ProfileComplete    bool         `json:"profile_complete"`
}

// LikeRecord is a directed like edge, created once and never mutated.
type LikeRecord struct {
	LikerID   string    `json:"liker_id" db:"liker_id"`
	LikedID   string    `json:"liked_id" db:"liked_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// PassRecord is a directed "not interested" edge, same shape as a like.
type PassRecord struct {
	PasserID  string    `json:"passer_id" db:"passer_id"`
	PassedID  string    `json:"passed_id" db:"passed_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Match is the mutual-like relationship. PairKey is the canonical identity:
// the sorted id pair joined with "_". It doubles as the idempotency key, so
// concurrent match creation for the same pair collapses to a single row.
type Match struct {
	PairKey   string    `json:"pair_key" db:"pair_key"`
	User1ID   string    `json:"user1_id" db:"user1_id"`
	User2ID   string    `json:"user2_id" db:"user2_id"`
	MatchedAt time.Time `json:"matched_at" db:"matched_at"`
}

// PairKey builds the canonical key for an unordered user pair. The same key
// format is used for message room ids.
func PairKey(userID1, userID2 string) string {
	if userID1 > userID2 {
		userID1, userID2 = userID2, userID1
	}
	return userID1 + "_" + userID2
}

// NewMatch canonicalizes the pair before storage so user1_id < user2_id
// always holds.
func NewMatch(userID1, userID2 string) *Match {
	if userID1 > userID2 {
		userID1, userID2 = userID2, userID1
	}
	return &Match{
		PairKey: userID1 + "_" + userID2,
		User1ID: userID1,
		User2ID: userID2,
	}
}

// OtherUser returns the match partner as seen from userID.
func (m *Match) OtherUser(userID string) string {
	if m.User1ID == userID {
		return m.User2ID
	}
	return m.User1ID
}
