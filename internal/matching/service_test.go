package matching

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRepository is an in-memory Repository with the same idempotency
// guarantees as the Postgres one: ordered-pair keyed likes/passes, canonical
// pair-keyed matches.
type fakeRepository struct {
	profiles map[string]*Profile
	likes    map[string]bool
	passes   map[string]bool
	matches  map[string]*Match
	dmCounts map[string]int
}

func newFakeRepository(profiles ...*Profile) *fakeRepository {
	r := &fakeRepository{
		profiles: make(map[string]*Profile),
		likes:    make(map[string]bool),
		passes:   make(map[string]bool),
		matches:  make(map[string]*Match),
		dmCounts: make(map[string]int),
	}
	for _, p := range profiles {
		r.profiles[p.ID] = p
	}
	return r
}

func (r *fakeRepository) GetProfile(_ context.Context, userID string) (*Profile, error) {
	p, ok := r.profiles[userID]
	if !ok {
		return nil, ErrProfileNotFound
	}
	return p, nil
}

func (r *fakeRepository) GetCandidateProfiles(_ context.Context, userID string) ([]*Profile, error) {
	var out []*Profile
	for id, p := range r.profiles {
		if id == userID || !p.ProfileComplete {
			continue
		}
		if r.likes[userID+"_"+id] || r.passes[userID+"_"+id] {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *fakeRepository) PutLike(_ context.Context, likerID, likedID string) error {
	r.likes[likerID+"_"+likedID] = true
	return nil
}

func (r *fakeRepository) PutPass(_ context.Context, passerID, passedID string) error {
	r.passes[passerID+"_"+passedID] = true
	return nil
}

func (r *fakeRepository) HasLike(_ context.Context, likerID, likedID string) (bool, error) {
	return r.likes[likerID+"_"+likedID], nil
}

func (r *fakeRepository) GetLikes(_ context.Context, userID string) ([]*LikeRecord, error) {
	var out []*LikeRecord
	for key := range r.likes {
		liker, liked, _ := splitPairKey(key)
		if liker == userID {
			out = append(out, &LikeRecord{LikerID: liker, LikedID: liked})
		}
	}
	return out, nil
}

func (r *fakeRepository) GetPasses(_ context.Context, userID string) ([]*PassRecord, error) {
	var out []*PassRecord
	for key := range r.passes {
		passer, passed, _ := splitPairKey(key)
		if passer == userID {
			out = append(out, &PassRecord{PasserID: passer, PassedID: passed})
		}
	}
	return out, nil
}

func (r *fakeRepository) PutMatch(_ context.Context, match *Match) error {
	if _, exists := r.matches[match.PairKey]; exists {
		return nil
	}
	r.matches[match.PairKey] = match
	return nil
}

func (r *fakeRepository) GetMatchesForUser(_ context.Context, userID string) ([]*Match, error) {
	var out []*Match
	for _, m := range r.matches {
		if m.User1ID == userID || m.User2ID == userID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeRepository) IsMatched(_ context.Context, userID1, userID2 string) (bool, error) {
	_, ok := r.matches[PairKey(userID1, userID2)]
	return ok, nil
}

func (r *fakeRepository) IncrementDirectMessageCount(_ context.Context, userID string) error {
	r.dmCounts[userID]++
	if p, ok := r.profiles[userID]; ok {
		p.DirectMessagesSent++
	}
	return nil
}

func splitPairKey(key string) (string, string, bool) {
	for i := 0; i < len(key); i++ {
		if key[i] == '_' {
			return key[:i], key[i+1:], true
		}
	}
	return "", "", false
}

func newTestService(repo Repository) Service {
	return NewService(repo, NewGate(1), nil, nil)
}

func TestRecordLikeRequiresReciprocity(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	svc := newTestService(repo)

	result, err := svc.RecordLike(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.False(t, result.IsMatch)

	result, err = svc.RecordLike(ctx, "bob", "alice")
	require.NoError(t, err)
	assert.True(t, result.IsMatch)
}

func TestRecordLikeIdempotentMatch(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	svc := newTestService(repo)

	// Like twice in each direction; exactly one match must exist.
	for i := 0; i < 2; i++ {
		_, err := svc.RecordLike(ctx, "alice", "bob")
		require.NoError(t, err)
		_, err = svc.RecordLike(ctx, "bob", "alice")
		require.NoError(t, err)
	}

	matches, err := svc.GetMatches(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "bob", matches[0].PartnerID)
	assert.Equal(t, PairKey("alice", "bob"), matches[0].PairKey)

	matched, err := svc.IsMatched(ctx, "bob", "alice")
	require.NoError(t, err)
	assert.True(t, matched)
}

func TestRecordLikeValidation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newFakeRepository())

	_, err := svc.RecordLike(ctx, "", "bob")
	assert.ErrorIs(t, err, ErrMissingUserID)

	_, err = svc.RecordLike(ctx, "alice", "")
	assert.ErrorIs(t, err, ErrMissingUserID)

	_, err = svc.RecordLike(ctx, "alice", "alice")
	assert.ErrorIs(t, err, ErrSelfAction)
}

func TestRecordPassNoMatchLogic(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	svc := newTestService(repo)

	require.NoError(t, svc.RecordPass(ctx, "alice", "bob"))
	require.NoError(t, svc.RecordPass(ctx, "bob", "alice"))

	// Mutual passes never create a match.
	matches, err := svc.GetMatches(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, matches)

	passes, err := svc.GetPasses(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, passes, 1)
	assert.Equal(t, "bob", passes[0].PassedID)
}

func TestCompatibilityLoadsProfiles(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository(allFifty("alice"), allFifty("bob"))
	svc := newTestService(repo)

	score, err := svc.Compatibility(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.Equal(t, 100, score)

	_, err = svc.Compatibility(ctx, "alice", "ghost")
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestDiscoverCandidatesSortedAndFiltered(t *testing.T) {
	ctx := context.Background()

	me := allFifty("me")
	me.ProfileComplete = true

	near := allFifty("near")
	near.ProfileComplete = true

	far := allFifty("far")
	far.ProfileComplete = true
	far.Preferences.Budget = intPtr(100)
	far.Preferences.Cleanliness = intPtr(0)

	incomplete := allFifty("incomplete")

	seen := allFifty("seen")
	seen.ProfileComplete = true

	repo := newFakeRepository(me, near, far, incomplete, seen)
	svc := newTestService(repo)

	_, err := svc.RecordLike(ctx, "me", "seen")
	require.NoError(t, err)

	candidates, err := svc.DiscoverCandidates(ctx, "me", 0)
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	assert.Equal(t, "near", candidates[0].Profile.ID)
	assert.Equal(t, "far", candidates[1].Profile.ID)
	assert.Greater(t, candidates[0].Score, candidates[1].Score)

	// The limit caps the list after sorting.
	capped, err := svc.DiscoverCandidates(ctx, "me", 1)
	require.NoError(t, err)
	require.Len(t, capped, 1)
	assert.Equal(t, "near", capped[0].Profile.ID)
}

func TestCountDirectMessageIncrementsStore(t *testing.T) {
	ctx := context.Background()
	sender := allFifty("sender")
	repo := newFakeRepository(sender)
	svc := newTestService(repo)

	require.NoError(t, svc.CountDirectMessage(ctx, "sender"))
	require.NoError(t, svc.CountDirectMessage(ctx, "sender"))

	assert.Equal(t, 2, repo.dmCounts["sender"])
	assert.Equal(t, 2, sender.DirectMessagesSent)
}
