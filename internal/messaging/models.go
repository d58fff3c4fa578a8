package messaging

import "time"

// Message is one direct message inside a room. Rooms are keyed by the
// canonical sorted pair of the two participants, so both directions of a
// conversation share one history.
type Message struct {
	ID          string    `db:"id" json:"id"`
	RoomID      string    `db:"room_id" json:"room_id"`
	SenderID    string    `db:"sender_id" json:"sender_id"`
	RecipientID string    `db:"recipient_id" json:"recipient_id"`
	Body        string    `db:"body" json:"body"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Conversation is one row of the inbox: the partner plus the most recent
// message exchanged with them.
type Conversation struct {
	PartnerID       string    `db:"partner_id" json:"partner_id"`
	LastMessage     string    `db:"last_message" json:"last_message"`
	LastMessageTime time.Time `db:"last_message_time" json:"last_message_time"`
}

// ConversationList splits the inbox into matched conversations and plain
// direct-message conversations, each sorted most recent first.
type ConversationList struct {
	Matches        []*Conversation `json:"matches"`
	DirectMessages []*Conversation `json:"direct_messages"`
}

type SendMessageDTO struct {
	RecipientID string `json:"recipient_id" validate:"required"`
	Body        string `json:"body" validate:"required,max=2000"`
}

// Allowance tells a free-tier sender how many non-match direct messages
// they have left before composing. Unlimited is true for premium senders
// and for matched conversations.
type Allowance struct {
	Remaining int  `json:"remaining"`
	Unlimited bool `json:"unlimited"`
}
