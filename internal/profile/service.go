package profile

import (
	"context"
	"errors"

	"github.com/lib/pq"

	"github.com/coexist-app/coexist-backend/internal/common/utils"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrMissingUserID   = errors.New("user id is required")
)

type Service interface {
	GetProfile(ctx context.Context, userID string) (*UserProfile, error)
	GetPublicProfile(ctx context.Context, userID string) (*PublicProfile, error)
	UpsertProfile(ctx context.Context, userID string, dto *UpsertProfileDTO) (*UserProfile, error)
	DeleteAccount(ctx context.Context, userID string) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) GetProfile(ctx context.Context, userID string) (*UserProfile, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	return s.repo.GetProfile(ctx, userID)
}

func (s *service) GetPublicProfile(ctx context.Context, userID string) (*PublicProfile, error) {
	p, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	return p.Public(), nil
}

// UpsertProfile validates and persists profile edits. This is the producer
// side of the scoring invariant: every slider that reaches the store is
// clamped to [0,100].
func (s *service) UpsertProfile(ctx context.Context, userID string, dto *UpsertProfileDTO) (*UserProfile, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	if err := utils.ValidateStruct(dto); err != nil {
		return nil, err
	}

	sliders := []*int{
		dto.Cleanliness, dto.NoiseLevel, dto.Smoking, dto.Pets,
		dto.Guests, dto.SleepSchedule, dto.Budget, dto.LeaseLength,
	}
	for _, v := range sliders {
		clampSlider(v)
	}

	hasPreferences := false
	for _, v := range sliders {
		if v != nil {
			hasPreferences = true
			break
		}
	}

	p := &UserProfile{
		UserID:           userID,
		DisplayName:      dto.DisplayName,
		Email:            dto.Email,
		GenderPreference: pq.StringArray(dto.GenderPreference),
		Neighborhoods:    pq.StringArray(dto.Neighborhoods),
		HasPreferences:   hasPreferences,
		Cleanliness:      dto.Cleanliness,
		NoiseLevel:       dto.NoiseLevel,
		Smoking:          dto.Smoking,
		Pets:             dto.Pets,
		Guests:           dto.Guests,
		SleepSchedule:    dto.SleepSchedule,
		Budget:           dto.Budget,
		LeaseLength:      dto.LeaseLength,
		OpenToNonMatches: dto.OpenToNonMatches,
		ProfileComplete:  dto.DisplayName != "" && hasPreferences,
	}
	if dto.Gender != "" {
		p.Gender = &dto.Gender
	}

	if err := s.repo.UpsertProfile(ctx, p); err != nil {
		return nil, err
	}

	return s.repo.GetProfile(ctx, userID)
}

func (s *service) DeleteAccount(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrMissingUserID
	}
	return s.repo.DeleteAccount(ctx, userID)
}

func clampSlider(v *int) {
	if v == nil {
		return
	}
	if *v < 0 {
		*v = 0
	}
	if *v > 100 {
		*v = 100
	}
}
