package profile

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	GetProfile(ctx context.Context, userID string) (*UserProfile, error)
	UpsertProfile(ctx context.Context, p *UserProfile) error
	DeleteAccount(ctx context.Context, userID string) error
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) GetProfile(ctx context.Context, userID string) (*UserProfile, error) {
	var p UserProfile
	query := `SELECT * FROM profiles WHERE user_id = $1`

	err := r.db.GetContext(ctx, &p, query, userID)
	if err == sql.ErrNoRows {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}

	return &p, nil
}

// UpsertProfile merges the profile document, Firestore-style: the row is
// created on first write and updated in place after. The quota counter and
// tier are deliberately not touched here.
func (r *postgresRepository) UpsertProfile(ctx context.Context, p *UserProfile) error {
	query := `
        INSERT INTO profiles (
            user_id, display_name, email, gender, gender_preference,
            neighborhoods, has_preferences, cleanliness, noise_level, smoking,
            pets, guests, sleep_schedule, budget, lease_length,
            open_to_non_matches, profile_complete
        ) VALUES (
            :user_id, :display_name, :email, :gender, :gender_preference,
            :neighborhoods, :has_preferences, :cleanliness, :noise_level, :smoking,
            :pets, :guests, :sleep_schedule, :budget, :lease_length,
            :open_to_non_matches, :profile_complete
        )
        ON CONFLICT (user_id) DO UPDATE SET
            display_name = EXCLUDED.display_name,
            email = EXCLUDED.email,
            gender = EXCLUDED.gender,
            gender_preference = EXCLUDED.gender_preference,
            neighborhoods = EXCLUDED.neighborhoods,
            has_preferences = EXCLUDED.has_preferences,
            cleanliness = EXCLUDED.cleanliness,
            noise_level = EXCLUDED.noise_level,
            smoking = EXCLUDED.smoking,
            pets = EXCLUDED.pets,
            guests = EXCLUDED.guests,
            sleep_schedule = EXCLUDED.sleep_schedule,
            budget = EXCLUDED.budget,
            lease_length = EXCLUDED.lease_length,
            open_to_non_matches = EXCLUDED.open_to_non_matches,
            profile_complete = EXCLUDED.profile_complete,
            updated_at = CURRENT_TIMESTAMP
    `

	_, err := r.db.NamedExecContext(ctx, query, p)
	return err
}

// DeleteAccount removes every trace of the user in one transaction:
// profile, like/pass edges in both directions, matches, and messages.
func (r *postgresRepository) DeleteAccount(ctx context.Context, userID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	statements := []string{
		`DELETE FROM messages WHERE sender_id = $1 OR recipient_id = $1`,
		`DELETE FROM matches WHERE user1_id = $1 OR user2_id = $1`,
		`DELETE FROM likes WHERE liker_id = $1 OR liked_id = $1`,
		`DELETE FROM passes WHERE passer_id = $1 OR passed_id = $1`,
		`DELETE FROM profiles WHERE user_id = $1`,
	}

	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt, userID); err != nil {
			return fmt.Errorf("account deletion failed: %w", err)
		}
	}

	return tx.Commit()
}
