package notification

import (
	"context"
	"fmt"
	"log"

	"github.com/coexist-app/coexist-backend/internal/matching"
)

// Service delivers best-effort match notifications. It satisfies the
// matching module's MatchNotifier: a failed email never fails the like
// that created the match.
type Service struct {
	provider EmailProvider
	baseURL  string
}

func NewService(provider EmailProvider, baseURL string) *Service {
	return &Service{provider: provider, baseURL: baseURL}
}

func (s *Service) NotifyMatch(ctx context.Context, a, b *matching.Profile) {
	s.sendMatchEmail(ctx, a, b)
	s.sendMatchEmail(ctx, b, a)
}

func (s *Service) sendMatchEmail(ctx context.Context, to, partner *matching.Profile) {
	if to.Email == "" {
		return
	}

	email := &Email{
		To:      to.Email,
		ToName:  to.DisplayName,
		Subject: fmt.Sprintf("It's a match with %s! 🎉", partner.DisplayName),
		Text: fmt.Sprintf(
			"Hi %s,\n\nYou and %s liked each other. You can now message freely.\n\nOpen your matches: %s/matches\n",
			to.DisplayName, partner.DisplayName, s.baseURL),
	}

	if err := s.provider.SendEmail(ctx, email); err != nil {
		log.Printf("match email to %s failed: %v", to.ID, err)
	}
}
