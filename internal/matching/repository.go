package matching

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Repository is the persistence collaborator for the matching core. Every
// write is an idempotent upsert; the match upsert on the canonical pair key
// is the concurrency-safety mechanism for simultaneous mutual likes.
type Repository interface {
	// Profiles
	GetProfile(ctx context.Context, userID string) (*Profile, error)
	GetCandidateProfiles(ctx context.Context, userID string) ([]*Profile, error)

	// Likes and passes
	PutLike(ctx context.Context, likerID, likedID string) error
	PutPass(ctx context.Context, passerID, passedID string) error
	HasLike(ctx context.Context, likerID, likedID string) (bool, error)
	GetLikes(ctx context.Context, userID string) ([]*LikeRecord, error)
	GetPasses(ctx context.Context, userID string) ([]*PassRecord, error)

	// Matches
	PutMatch(ctx context.Context, match *Match) error
	GetMatchesForUser(ctx context.Context, userID string) ([]*Match, error)
	IsMatched(ctx context.Context, userID1, userID2 string) (bool, error)

	// Quota accounting
	IncrementDirectMessageCount(ctx context.Context, userID string) error
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

// profileRow is the database shape of a Profile; sliders are nullable and
// arrays come back as Postgres arrays.
type profileRow struct {
	UserID             string         `db:"user_id"`
	DisplayName        string         `db:"display_name"`
	Email              string         `db:"email"`
	Gender             sql.NullString `db:"gender"`
	GenderPreference   pq.StringArray `db:"gender_preference"`
	Neighborhoods      pq.StringArray `db:"neighborhoods"`
	HasPreferences     bool           `db:"has_preferences"`
	Cleanliness        *int           `db:"cleanliness"`
	NoiseLevel         *int           `db:"noise_level"`
	Smoking            *int           `db:"smoking"`
	Pets               *int           `db:"pets"`
	Guests             *int           `db:"guests"`
	SleepSchedule      *int           `db:"sleep_schedule"`
	Budget             *int           `db:"budget"`
	LeaseLength        *int           `db:"lease_length"`
	OpenToNonMatches   bool           `db:"open_to_non_matches"`
	SubscriptionTier   string         `db:"subscription_tier"`
	DirectMessagesSent int            `db:"direct_messages_sent"`
	ProfileComplete    bool           `db:"profile_complete"`
}

func (r *profileRow) toProfile() *Profile {
	p := &Profile{
		ID:                 r.UserID,
		DisplayName:        r.DisplayName,
		Email:              r.Email,
		Gender:             r.Gender.String,
		GenderPreference:   []string(r.GenderPreference),
		Neighborhoods:      []string(r.Neighborhoods),
		OpenToNonMatches:   r.OpenToNonMatches,
		SubscriptionTier:   r.SubscriptionTier,
		DirectMessagesSent: r.DirectMessagesSent,
		ProfileComplete:    r.ProfileComplete,
	}
	if r.HasPreferences {
		p.Preferences = &Preferences{
			Cleanliness:   r.Cleanliness,
			NoiseLevel:    r.NoiseLevel,
			Smoking:       r.Smoking,
			Pets:          r.Pets,
			Guests:        r.Guests,
			SleepSchedule: r.SleepSchedule,
			Budget:        r.Budget,
			LeaseLength:   r.LeaseLength,
		}
	}
	return p
}

const profileColumns = `
    user_id, display_name, email, gender, gender_preference, neighborhoods,
    has_preferences, cleanliness, noise_level, smoking, pets, guests,
    sleep_schedule, budget, lease_length, open_to_non_matches,
    subscription_tier, direct_messages_sent, profile_complete
`

func (r *postgresRepository) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	var row profileRow
	query := `SELECT` + profileColumns + `FROM profiles WHERE user_id = $1`

	err := r.db.GetContext(ctx, &row, query, userID)
	if err == sql.ErrNoRows {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}

	return row.toProfile(), nil
}

// GetCandidateProfiles returns complete profiles the user has not already
// liked or passed on, excluding the user themselves.
func (r *postgresRepository) GetCandidateProfiles(ctx context.Context, userID string) ([]*Profile, error) {
	query := `SELECT` + profileColumns + `
        FROM profiles p
        WHERE p.user_id != $1
          AND p.profile_complete = TRUE
          AND NOT EXISTS (
              SELECT 1 FROM likes l WHERE l.liker_id = $1 AND l.liked_id = p.user_id
          )
          AND NOT EXISTS (
              SELECT 1 FROM passes ps WHERE ps.passer_id = $1 AND ps.passed_id = p.user_id
          )
        ORDER BY p.created_at DESC
    `

	var rows []profileRow
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, err
	}

	profiles := make([]*Profile, 0, len(rows))
	for i := range rows {
		profiles = append(profiles, rows[i].toProfile())
	}

	return profiles, nil
}

func (r *postgresRepository) PutLike(ctx context.Context, likerID, likedID string) error {
	query := `
        INSERT INTO likes (liker_id, liked_id)
        VALUES ($1, $2)
        ON CONFLICT (liker_id, liked_id) DO NOTHING
    `

	_, err := r.db.ExecContext(ctx, query, likerID, likedID)
	return err
}

func (r *postgresRepository) PutPass(ctx context.Context, passerID, passedID string) error {
	query := `
        INSERT INTO passes (passer_id, passed_id)
        VALUES ($1, $2)
        ON CONFLICT (passer_id, passed_id) DO NOTHING
    `

	_, err := r.db.ExecContext(ctx, query, passerID, passedID)
	return err
}

func (r *postgresRepository) HasLike(ctx context.Context, likerID, likedID string) (bool, error) {
	var exists bool
	query := `
        SELECT EXISTS(
            SELECT 1 FROM likes WHERE liker_id = $1 AND liked_id = $2
        )
    `

	err := r.db.GetContext(ctx, &exists, query, likerID, likedID)
	return exists, err
}

func (r *postgresRepository) GetLikes(ctx context.Context, userID string) ([]*LikeRecord, error) {
	var likes []*LikeRecord
	query := `
        SELECT liker_id, liked_id, created_at
        FROM likes
        WHERE liker_id = $1
        ORDER BY created_at DESC
    `

	err := r.db.SelectContext(ctx, &likes, query, userID)
	return likes, err
}

func (r *postgresRepository) GetPasses(ctx context.Context, userID string) ([]*PassRecord, error) {
	var passes []*PassRecord
	query := `
        SELECT passer_id, passed_id, created_at
        FROM passes
        WHERE passer_id = $1
        ORDER BY created_at DESC
    `

	err := r.db.SelectContext(ctx, &passes, query, userID)
	return passes, err
}

// PutMatch upserts on the canonical pair key. Whichever of two concurrent
// writers lands first wins; the second is a no-op, never a duplicate.
func (r *postgresRepository) PutMatch(ctx context.Context, match *Match) error {
	query := `
        INSERT INTO matches (pair_key, user1_id, user2_id)
        VALUES ($1, $2, $3)
        ON CONFLICT (pair_key) DO NOTHING
    `

	_, err := r.db.ExecContext(ctx, query, match.PairKey, match.User1ID, match.User2ID)
	return err
}

func (r *postgresRepository) GetMatchesForUser(ctx context.Context, userID string) ([]*Match, error) {
	var matches []*Match
	query := `
        SELECT pair_key, user1_id, user2_id, matched_at
        FROM matches
        WHERE user1_id = $1 OR user2_id = $1
        ORDER BY matched_at DESC
    `

	err := r.db.SelectContext(ctx, &matches, query, userID)
	return matches, err
}

func (r *postgresRepository) IsMatched(ctx context.Context, userID1, userID2 string) (bool, error) {
	var exists bool
	query := `
        SELECT EXISTS(
            SELECT 1 FROM matches WHERE pair_key = $1
        )
    `

	err := r.db.GetContext(ctx, &exists, query, PairKey(userID1, userID2))
	return exists, err
}

// IncrementDirectMessageCount bumps the free-tier counter atomically in the
// store. The counter is never cached or mutated in process memory.
func (r *postgresRepository) IncrementDirectMessageCount(ctx context.Context, userID string) error {
	query := `
        UPDATE profiles
        SET direct_messages_sent = direct_messages_sent + 1,
            updated_at = CURRENT_TIMESTAMP
        WHERE user_id = $1
    `

	_, err := r.db.ExecContext(ctx, query, userID)
	return err
}
