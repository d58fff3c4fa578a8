package messaging

import (
	"context"
	"errors"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/coexist-app/coexist-backend/internal/common/utils"
	"github.com/coexist-app/coexist-backend/internal/matching"
)

var (
	ErrNotAllowed       = errors.New("messaging not allowed with this user")
	ErrQuotaExceeded    = errors.New("free tier direct message limit reached")
	ErrUserNotFound     = errors.New("user not found")
	ErrMissingUserID    = errors.New("user id is required")
	ErrSelfConversation = errors.New("cannot message yourself")
)

type Service interface {
	SendMessage(ctx context.Context, senderID string, dto *SendMessageDTO) (*Message, error)
	GetRoomMessages(ctx context.Context, userID, otherID string, limit, offset int) ([]*Message, error)
	GetConversations(ctx context.Context, userID string) (*ConversationList, error)
	GetAllowance(ctx context.Context, senderID, recipientID string) (*Allowance, error)
}

type service struct {
	repo     Repository
	matching matching.Service
}

func NewService(repo Repository, matchingService matching.Service) Service {
	return &service{repo: repo, matching: matchingService}
}

// SendMessage runs the full send path: load both profiles, ask the matching
// module for the match state and the gate verdict, persist the message, and
// finally charge the sender's free-tier counter when the send was a
// non-match send by a free sender.
func (s *service) SendMessage(ctx context.Context, senderID string, dto *SendMessageDTO) (*Message, error) {
	if senderID == "" {
		return nil, ErrMissingUserID
	}
	if err := utils.ValidateStruct(dto); err != nil {
		return nil, err
	}
	if senderID == dto.RecipientID {
		return nil, ErrSelfConversation
	}

	sender, recipient, matched, err := s.loadPair(ctx, senderID, dto.RecipientID)
	if err != nil {
		return nil, err
	}

	if d := s.matching.AuthorizeSend(sender, recipient, matched); !d.Allowed {
		RecordSendDenied(d.Reason)
		switch d.Reason {
		case matching.DenyReasonFreeTierLimit:
			return nil, ErrQuotaExceeded
		default:
			return nil, ErrNotAllowed
		}
	}

	msg := &Message{
		ID:          uuid.New().String(),
		RoomID:      matching.PairKey(senderID, dto.RecipientID),
		SenderID:    senderID,
		RecipientID: dto.RecipientID,
		Body:        strings.TrimSpace(dto.Body),
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.repo.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}
	RecordMessageSent()

	// The counter moves only after the message is stored, so a failed
	// insert never burns the sender's allowance.
	if s.matching.CountsAgainstQuota(sender, matched) {
		if err := s.matching.CountDirectMessage(ctx, senderID); err != nil {
			log.Printf("failed to count direct message for %s: %v", senderID, err)
		}
	}

	return msg, nil
}

func (s *service) GetRoomMessages(ctx context.Context, userID, otherID string, limit, offset int) ([]*Message, error) {
	if userID == "" || otherID == "" {
		return nil, ErrMissingUserID
	}
	if limit <= 0 {
		limit = 50
	}
	return s.repo.GetRoomMessages(ctx, matching.PairKey(userID, otherID), limit, offset)
}

// GetConversations splits the inbox into matched partners and plain
// direct-message partners, each newest first.
func (s *service) GetConversations(ctx context.Context, userID string) (*ConversationList, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}

	conversations, err := s.repo.GetConversations(ctx, userID)
	if err != nil {
		return nil, err
	}

	matches, err := s.matching.GetMatches(ctx, userID)
	if err != nil {
		return nil, err
	}
	matchedPartners := make(map[string]bool, len(matches))
	for _, m := range matches {
		matchedPartners[m.PartnerID] = true
	}

	list := &ConversationList{
		Matches:        []*Conversation{},
		DirectMessages: []*Conversation{},
	}
	for _, c := range conversations {
		if matchedPartners[c.PartnerID] {
			list.Matches = append(list.Matches, c)
		} else {
			list.DirectMessages = append(list.DirectMessages, c)
		}
	}

	sortConversations(list.Matches)
	sortConversations(list.DirectMessages)
	return list, nil
}

func (s *service) GetAllowance(ctx context.Context, senderID, recipientID string) (*Allowance, error) {
	if senderID == "" || recipientID == "" {
		return nil, ErrMissingUserID
	}

	sender, _, matched, err := s.loadPair(ctx, senderID, recipientID)
	if err != nil {
		return nil, err
	}

	remaining := s.matching.RemainingDirectMessages(sender, matched)
	if remaining < 0 {
		return &Allowance{Unlimited: true}, nil
	}
	return &Allowance{Remaining: remaining}, nil
}

func (s *service) loadPair(ctx context.Context, senderID, recipientID string) (sender, recipient *matching.Profile, matched bool, err error) {
	sender, err = s.matching.GetProfile(ctx, senderID)
	if err != nil {
		return nil, nil, false, mapProfileErr(err)
	}
	recipient, err = s.matching.GetProfile(ctx, recipientID)
	if err != nil {
		return nil, nil, false, mapProfileErr(err)
	}
	matched, err = s.matching.IsMatched(ctx, senderID, recipientID)
	if err != nil {
		return nil, nil, false, err
	}
	return sender, recipient, matched, nil
}

func mapProfileErr(err error) error {
	if errors.Is(err, matching.ErrProfileNotFound) {
		return ErrUserNotFound
	}
	return err
}

func sortConversations(conversations []*Conversation) {
	sort.SliceStable(conversations, func(i, j int) bool {
		return conversations[i].LastMessageTime.After(conversations[j].LastMessageTime)
	})
}
