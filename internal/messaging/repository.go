package messaging

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	CreateMessage(ctx context.Context, msg *Message) error
	GetRoomMessages(ctx context.Context, roomID string, limit, offset int) ([]*Message, error)
	GetConversations(ctx context.Context, userID string) ([]*Conversation, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) CreateMessage(ctx context.Context, msg *Message) error {
	query := `
		INSERT INTO messages (id, room_id, sender_id, recipient_id, body, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.ExecContext(ctx, query,
		msg.ID, msg.RoomID, msg.SenderID, msg.RecipientID, msg.Body, msg.CreatedAt)
	return err
}

func (r *postgresRepository) GetRoomMessages(ctx context.Context, roomID string, limit, offset int) ([]*Message, error) {
	query := `
		SELECT id, room_id, sender_id, recipient_id, body, created_at
		FROM messages
		WHERE room_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	messages := []*Message{}
	if err := r.db.SelectContext(ctx, &messages, query, roomID, limit, offset); err != nil {
		return nil, err
	}
	return messages, nil
}

// GetConversations returns one row per conversation partner with the most
// recent message, newest conversation first.
func (r *postgresRepository) GetConversations(ctx context.Context, userID string) ([]*Conversation, error) {
	query := `
		SELECT DISTINCT ON (partner_id)
			CASE WHEN sender_id = $1 THEN recipient_id ELSE sender_id END AS partner_id,
			body AS last_message,
			created_at AS last_message_time
		FROM messages
		WHERE sender_id = $1 OR recipient_id = $1
		ORDER BY partner_id, created_at DESC`

	conversations := []*Conversation{}
	if err := r.db.SelectContext(ctx, &conversations, query, userID); err != nil {
		return nil, err
	}
	return conversations, nil
}
