package matching

import (
	"context"
	"errors"
	"log"
	"sort"
)

var (
	ErrMissingUserID   = errors.New("user id is required")
	ErrSelfAction      = errors.New("cannot like or pass yourself")
	ErrProfileNotFound = errors.New("profile not found")
)

// MatchNotifier is told about new mutual matches. Implementations must not
// block match creation; failures are theirs to swallow.
type MatchNotifier interface {
	NotifyMatch(ctx context.Context, a, b *Profile)
}

type Service interface {
	// Reciprocity ledger
	RecordLike(ctx context.Context, likerID, likedID string) (*LikeResult, error)
	RecordPass(ctx context.Context, passerID, passedID string) error
	GetMatches(ctx context.Context, userID string) ([]*MatchView, error)
	IsMatched(ctx context.Context, userID1, userID2 string) (bool, error)
	GetLikes(ctx context.Context, userID string) ([]*LikeRecord, error)
	GetPasses(ctx context.Context, userID string) ([]*PassRecord, error)

	// Scoring and discovery
	Compatibility(ctx context.Context, userID, otherID string) (int, error)
	DiscoverCandidates(ctx context.Context, userID string, limit int) ([]*ScoredCandidate, error)

	// Messaging gate, consumed by the messaging module
	GetProfile(ctx context.Context, userID string) (*Profile, error)
	AuthorizeSend(sender, recipient *Profile, matched bool) GateDecision
	CanMessage(sender, recipient *Profile, matched bool) GateDecision
	CountsAgainstQuota(sender *Profile, matched bool) bool
	CountDirectMessage(ctx context.Context, senderID string) error
	RemainingDirectMessages(sender *Profile, matched bool) int
}

type service struct {
	repo     Repository
	gate     *Gate
	cache    *ScoreCache // optional, nil when Redis is not configured
	notifier MatchNotifier
}

func NewService(repo Repository, gate *Gate, cache *ScoreCache, notifier MatchNotifier) Service {
	return &service{
		repo:     repo,
		gate:     gate,
		cache:    cache,
		notifier: notifier,
	}
}

// RecordLike stores the directed like, then checks the reverse edge. The
// like insert and the match upsert are separable idempotent steps: a crash
// between them is safely retried by simply liking again.
func (s *service) RecordLike(ctx context.Context, likerID, likedID string) (*LikeResult, error) {
	if err := validatePair(likerID, likedID); err != nil {
		return nil, err
	}

	if err := s.repo.PutLike(ctx, likerID, likedID); err != nil {
		return nil, err
	}
	RecordLike()
	if s.cache != nil {
		s.cache.Invalidate(ctx, likerID)
	}

	reciprocal, err := s.repo.HasLike(ctx, likedID, likerID)
	if err != nil {
		return nil, err
	}
	if !reciprocal {
		return &LikeResult{IsMatch: false}, nil
	}

	match := NewMatch(likerID, likedID)
	if err := s.repo.PutMatch(ctx, match); err != nil {
		return nil, err
	}
	RecordMatch()

	s.notifyMatch(ctx, likerID, likedID)

	return &LikeResult{IsMatch: true}, nil
}

func (s *service) notifyMatch(ctx context.Context, userID1, userID2 string) {
	if s.notifier == nil {
		return
	}

	a, err := s.repo.GetProfile(ctx, userID1)
	if err != nil {
		log.Printf("match notification skipped, profile %s: %v", userID1, err)
		return
	}
	b, err := s.repo.GetProfile(ctx, userID2)
	if err != nil {
		log.Printf("match notification skipped, profile %s: %v", userID2, err)
		return
	}

	s.notifier.NotifyMatch(ctx, a, b)
}

func (s *service) RecordPass(ctx context.Context, passerID, passedID string) error {
	if err := validatePair(passerID, passedID); err != nil {
		return err
	}

	if err := s.repo.PutPass(ctx, passerID, passedID); err != nil {
		return err
	}
	RecordPass()
	if s.cache != nil {
		s.cache.Invalidate(ctx, passerID)
	}

	return nil
}

func (s *service) GetMatches(ctx context.Context, userID string) ([]*MatchView, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}

	matches, err := s.repo.GetMatchesForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	views := make([]*MatchView, 0, len(matches))
	for _, m := range matches {
		views = append(views, &MatchView{Match: m, PartnerID: m.OtherUser(userID)})
	}

	return views, nil
}

func (s *service) IsMatched(ctx context.Context, userID1, userID2 string) (bool, error) {
	if userID1 == "" || userID2 == "" {
		return false, ErrMissingUserID
	}
	return s.repo.IsMatched(ctx, userID1, userID2)
}

func (s *service) GetLikes(ctx context.Context, userID string) ([]*LikeRecord, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	return s.repo.GetLikes(ctx, userID)
}

func (s *service) GetPasses(ctx context.Context, userID string) ([]*PassRecord, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	return s.repo.GetPasses(ctx, userID)
}

func (s *service) Compatibility(ctx context.Context, userID, otherID string) (int, error) {
	me, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		return 0, err
	}
	other, err := s.repo.GetProfile(ctx, otherID)
	if err != nil {
		return 0, err
	}

	score := Score(me, other)
	RecordCompatibilityScore(score)

	return score, nil
}

// DiscoverCandidates scores every unseen complete profile against the
// viewer and returns them best-first. Results are cached briefly since the
// candidate pool changes slowly relative to browsing.
func (s *service) DiscoverCandidates(ctx context.Context, userID string, limit int) ([]*ScoredCandidate, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}

	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, userID); ok {
			return capCandidates(cached, limit), nil
		}
	}

	me, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	candidates, err := s.repo.GetCandidateProfiles(ctx, userID)
	if err != nil {
		return nil, err
	}

	scored := make([]*ScoredCandidate, 0, len(candidates))
	for _, c := range candidates {
		score := Score(me, c)
		RecordCompatibilityScore(score)
		scored = append(scored, &ScoredCandidate{Profile: c, Score: score})
	}

	// Best match first; stable order for equal scores comes from the
	// repository's created_at ordering.
	sortCandidates(scored)

	if s.cache != nil {
		s.cache.Set(ctx, userID, scored)
	}

	return capCandidates(scored, limit), nil
}

func (s *service) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	return s.repo.GetProfile(ctx, userID)
}

func (s *service) AuthorizeSend(sender, recipient *Profile, matched bool) GateDecision {
	d := s.gate.AuthorizeSend(SendRequest{Sender: sender, Recipient: recipient, Matched: matched})
	RecordGateDecision(d)
	return d
}

func (s *service) CanMessage(sender, recipient *Profile, matched bool) GateDecision {
	return s.gate.CanMessage(SendRequest{Sender: sender, Recipient: recipient, Matched: matched})
}

func (s *service) CountsAgainstQuota(sender *Profile, matched bool) bool {
	return s.gate.CountsAgainstQuota(SendRequest{Sender: sender, Matched: matched})
}

// CountDirectMessage increments the sender's quota counter in the store.
// Callers invoke it exactly once per accepted non-match send by a free
// sender; the gate's CountsAgainstQuota decides when.
func (s *service) CountDirectMessage(ctx context.Context, senderID string) error {
	if senderID == "" {
		return ErrMissingUserID
	}
	return s.repo.IncrementDirectMessageCount(ctx, senderID)
}

func (s *service) RemainingDirectMessages(sender *Profile, matched bool) int {
	return s.gate.RemainingDirectMessages(sender, matched)
}

func validatePair(id1, id2 string) error {
	if id1 == "" || id2 == "" {
		return ErrMissingUserID
	}
	if id1 == id2 {
		return ErrSelfAction
	}
	return nil
}

func sortCandidates(scored []*ScoredCandidate) {
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
}

func capCandidates(scored []*ScoredCandidate, limit int) []*ScoredCandidate {
	if limit > 0 && len(scored) > limit {
		return scored[:limit]
	}
	return scored
}
