package messaging

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coexist-app/coexist-backend/internal/matching"
)

// fakeMatchingRepo is an in-memory matching.Repository so the send path can
// be tested against the real gate and service wiring.
type fakeMatchingRepo struct {
	profiles map[string]*matching.Profile
	likes    map[string]bool
	matches  map[string]*matching.Match
	dmCounts map[string]int
}

func newFakeMatchingRepo() *fakeMatchingRepo {
	return &fakeMatchingRepo{
		profiles: map[string]*matching.Profile{},
		likes:    map[string]bool{},
		matches:  map[string]*matching.Match{},
		dmCounts: map[string]int{},
	}
}

func (f *fakeMatchingRepo) GetProfile(ctx context.Context, userID string) (*matching.Profile, error) {
	p, ok := f.profiles[userID]
	if !ok {
		return nil, matching.ErrProfileNotFound
	}
	clone := *p
	clone.DirectMessagesSent = p.DirectMessagesSent + f.dmCounts[userID]
	return &clone, nil
}

func (f *fakeMatchingRepo) GetCandidateProfiles(ctx context.Context, userID string) ([]*matching.Profile, error) {
	return nil, nil
}

func (f *fakeMatchingRepo) PutLike(ctx context.Context, likerID, likedID string) error {
	f.likes[likerID+"|"+likedID] = true
	return nil
}

func (f *fakeMatchingRepo) PutPass(ctx context.Context, passerID, passedID string) error {
	return nil
}

func (f *fakeMatchingRepo) HasLike(ctx context.Context, likerID, likedID string) (bool, error) {
	return f.likes[likerID+"|"+likedID], nil
}

func (f *fakeMatchingRepo) GetLikes(ctx context.Context, userID string) ([]*matching.LikeRecord, error) {
	return nil, nil
}

func (f *fakeMatchingRepo) GetPasses(ctx context.Context, userID string) ([]*matching.PassRecord, error) {
	return nil, nil
}

func (f *fakeMatchingRepo) PutMatch(ctx context.Context, match *matching.Match) error {
	f.matches[match.PairKey] = match
	return nil
}

func (f *fakeMatchingRepo) GetMatchesForUser(ctx context.Context, userID string) ([]*matching.Match, error) {
	var out []*matching.Match
	for _, m := range f.matches {
		if m.User1ID == userID || m.User2ID == userID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMatchingRepo) IsMatched(ctx context.Context, userID1, userID2 string) (bool, error) {
	_, ok := f.matches[matching.PairKey(userID1, userID2)]
	return ok, nil
}

func (f *fakeMatchingRepo) IncrementDirectMessageCount(ctx context.Context, userID string) error {
	f.dmCounts[userID]++
	return nil
}

type fakeMessageRepo struct {
	messages []*Message
}

func (f *fakeMessageRepo) CreateMessage(ctx context.Context, msg *Message) error {
	f.messages = append(f.messages, msg)
	return nil
}

func (f *fakeMessageRepo) GetRoomMessages(ctx context.Context, roomID string, limit, offset int) ([]*Message, error) {
	out := []*Message{}
	for _, m := range f.messages {
		if m.RoomID == roomID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMessageRepo) GetConversations(ctx context.Context, userID string) ([]*Conversation, error) {
	latest := map[string]*Conversation{}
	for _, m := range f.messages {
		var partner string
		switch userID {
		case m.SenderID:
			partner = m.RecipientID
		case m.RecipientID:
			partner = m.SenderID
		default:
			continue
		}
		c, ok := latest[partner]
		if !ok || m.CreatedAt.After(c.LastMessageTime) {
			latest[partner] = &Conversation{
				PartnerID:       partner,
				LastMessage:     m.Body,
				LastMessageTime: m.CreatedAt,
			}
		}
	}
	out := []*Conversation{}
	for _, c := range latest {
		out = append(out, c)
	}
	return out, nil
}

func addProfile(repo *fakeMatchingRepo, id, tier string, open bool, sent int) {
	repo.profiles[id] = &matching.Profile{
		ID:                 id,
		DisplayName:        strings.ToUpper(id[:1]) + id[1:],
		SubscriptionTier:   tier,
		OpenToNonMatches:   open,
		DirectMessagesSent: sent,
	}
}

func newTestService(t *testing.T) (Service, *fakeMatchingRepo, *fakeMessageRepo) {
	t.Helper()
	matchRepo := newFakeMatchingRepo()
	msgRepo := &fakeMessageRepo{}
	matchSvc := matching.NewService(matchRepo, matching.NewGate(1), nil, nil)
	return NewService(msgRepo, matchSvc), matchRepo, msgRepo
}

func makeMatch(repo *fakeMatchingRepo, a, b string) {
	repo.matches[matching.PairKey(a, b)] = matching.NewMatch(a, b)
}

func TestSendMessageBetweenMatchedUsers(t *testing.T) {
	svc, matchRepo, msgRepo := newTestService(t)
	addProfile(matchRepo, "alice", matching.TierFree, false, 5)
	addProfile(matchRepo, "bob", matching.TierFree, false, 0)
	makeMatch(matchRepo, "alice", "bob")

	msg, err := svc.SendMessage(context.Background(), "alice", &SendMessageDTO{
		RecipientID: "bob",
		Body:        "  hey bob  ",
	})
	require.NoError(t, err)

	assert.Equal(t, "hey bob", msg.Body)
	assert.Equal(t, matching.PairKey("alice", "bob"), msg.RoomID)
	assert.NotEmpty(t, msg.ID)
	assert.Len(t, msgRepo.messages, 1)
	// Matched sends never touch the free-tier counter.
	assert.Equal(t, 0, matchRepo.dmCounts["alice"])
}

func TestSendMessageDeniedWithoutMatchOrOptIn(t *testing.T) {
	svc, matchRepo, msgRepo := newTestService(t)
	addProfile(matchRepo, "alice", matching.TierFree, false, 0)
	addProfile(matchRepo, "bob", matching.TierFree, false, 0)

	_, err := svc.SendMessage(context.Background(), "alice", &SendMessageDTO{
		RecipientID: "bob",
		Body:        "hello",
	})
	assert.ErrorIs(t, err, ErrNotAllowed)
	assert.Empty(t, msgRepo.messages)
}

func TestRecipientOptInAllowsDirectMessage(t *testing.T) {
	svc, matchRepo, msgRepo := newTestService(t)
	addProfile(matchRepo, "alice", matching.TierPremium, false, 0)
	addProfile(matchRepo, "bob", matching.TierFree, true, 0)

	_, err := svc.SendMessage(context.Background(), "alice", &SendMessageDTO{
		RecipientID: "bob",
		Body:        "hello",
	})
	require.NoError(t, err)
	assert.Len(t, msgRepo.messages, 1)
	// Premium senders are never charged.
	assert.Equal(t, 0, matchRepo.dmCounts["alice"])
}

func TestFreeSenderChargedForDirectMessage(t *testing.T) {
	svc, matchRepo, _ := newTestService(t)
	addProfile(matchRepo, "alice", matching.TierFree, false, 0)
	addProfile(matchRepo, "bob", matching.TierFree, true, 0)

	_, err := svc.SendMessage(context.Background(), "alice", &SendMessageDTO{
		RecipientID: "bob",
		Body:        "first one is free",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, matchRepo.dmCounts["alice"])

	// The allowance is now spent, so a second non-match send is rejected
	// even though the recipient stays opted in.
	_, err = svc.SendMessage(context.Background(), "alice", &SendMessageDTO{
		RecipientID: "bob",
		Body:        "second",
	})
	assert.ErrorIs(t, err, ErrQuotaExceeded)
	assert.Equal(t, 1, matchRepo.dmCounts["alice"])
}

func TestQuotaDoesNotBlockMatchedConversation(t *testing.T) {
	svc, matchRepo, _ := newTestService(t)
	addProfile(matchRepo, "alice", matching.TierFree, false, 3)
	addProfile(matchRepo, "bob", matching.TierFree, false, 0)
	makeMatch(matchRepo, "alice", "bob")

	_, err := svc.SendMessage(context.Background(), "alice", &SendMessageDTO{
		RecipientID: "bob",
		Body:        "still here",
	})
	assert.NoError(t, err)
}

func TestSendMessageValidation(t *testing.T) {
	svc, matchRepo, _ := newTestService(t)
	addProfile(matchRepo, "alice", matching.TierFree, false, 0)

	_, err := svc.SendMessage(context.Background(), "", &SendMessageDTO{RecipientID: "bob", Body: "hi"})
	assert.ErrorIs(t, err, ErrMissingUserID)

	_, err = svc.SendMessage(context.Background(), "alice", &SendMessageDTO{RecipientID: "alice", Body: "hi"})
	assert.ErrorIs(t, err, ErrSelfConversation)

	_, err = svc.SendMessage(context.Background(), "alice", &SendMessageDTO{RecipientID: "ghost", Body: "hi"})
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = svc.SendMessage(context.Background(), "alice", &SendMessageDTO{RecipientID: "bob"})
	assert.Error(t, err)
}

func TestGetConversationsSplitsMatchesFromDirect(t *testing.T) {
	svc, matchRepo, msgRepo := newTestService(t)
	addProfile(matchRepo, "alice", matching.TierPremium, false, 0)
	addProfile(matchRepo, "bob", matching.TierFree, true, 0)
	addProfile(matchRepo, "carol", matching.TierFree, true, 0)
	makeMatch(matchRepo, "alice", "bob")

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	msgRepo.messages = []*Message{
		{ID: "1", RoomID: matching.PairKey("alice", "bob"), SenderID: "alice", RecipientID: "bob", Body: "hi bob", CreatedAt: base},
		{ID: "2", RoomID: matching.PairKey("alice", "bob"), SenderID: "bob", RecipientID: "alice", Body: "hi alice", CreatedAt: base.Add(time.Minute)},
		{ID: "3", RoomID: matching.PairKey("alice", "carol"), SenderID: "alice", RecipientID: "carol", Body: "hello carol", CreatedAt: base.Add(2 * time.Minute)},
	}

	list, err := svc.GetConversations(context.Background(), "alice")
	require.NoError(t, err)

	require.Len(t, list.Matches, 1)
	assert.Equal(t, "bob", list.Matches[0].PartnerID)
	assert.Equal(t, "hi alice", list.Matches[0].LastMessage)

	require.Len(t, list.DirectMessages, 1)
	assert.Equal(t, "carol", list.DirectMessages[0].PartnerID)
}

func TestGetRoomMessagesSharesRoomAcrossDirections(t *testing.T) {
	svc, matchRepo, msgRepo := newTestService(t)
	addProfile(matchRepo, "alice", matching.TierPremium, false, 0)
	addProfile(matchRepo, "bob", matching.TierFree, true, 0)

	now := time.Now().UTC()
	msgRepo.messages = []*Message{
		{ID: "1", RoomID: matching.PairKey("alice", "bob"), SenderID: "alice", RecipientID: "bob", Body: "a", CreatedAt: now},
		{ID: "2", RoomID: matching.PairKey("bob", "alice"), SenderID: "bob", RecipientID: "alice", Body: "b", CreatedAt: now},
	}

	fromAlice, err := svc.GetRoomMessages(context.Background(), "alice", "bob", 50, 0)
	require.NoError(t, err)
	fromBob, err := svc.GetRoomMessages(context.Background(), "bob", "alice", 50, 0)
	require.NoError(t, err)

	assert.Len(t, fromAlice, 2)
	assert.Len(t, fromBob, 2)
}

func TestGetAllowance(t *testing.T) {
	svc, matchRepo, _ := newTestService(t)
	addProfile(matchRepo, "alice", matching.TierFree, false, 0)
	addProfile(matchRepo, "bob", matching.TierFree, true, 0)
	addProfile(matchRepo, "dan", matching.TierPremium, false, 0)
	addProfile(matchRepo, "eve", matching.TierFree, false, 1)
	makeMatch(matchRepo, "eve", "bob")

	a, err := svc.GetAllowance(context.Background(), "alice", "bob")
	require.NoError(t, err)
	assert.False(t, a.Unlimited)
	assert.Equal(t, 1, a.Remaining)

	a, err = svc.GetAllowance(context.Background(), "dan", "bob")
	require.NoError(t, err)
	assert.True(t, a.Unlimited)

	// Matched pairs are unlimited regardless of tier or counter.
	a, err = svc.GetAllowance(context.Background(), "eve", "bob")
	require.NoError(t, err)
	assert.True(t, a.Unlimited)
}
