package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/farmguardian/farm-guardian/internal/core/domain"
	"github.com/farmguardian/farm-guardian/internal/core/ports"
)

// ProfileService serves the caller's own user record.
type ProfileService struct {
	users   ports.UserRepository
	uploads *UploadPolicy
	log     zerolog.Logger
}

func NewProfileService(users ports.UserRepository, uploads *UploadPolicy, log zerolog.Logger) *ProfileService {
	return &ProfileService{users: users, uploads: uploads, log: log}
}

func (s *ProfileService) GetProfile(ctx context.Context, actor ports.Identity) (*domain.User, error) {
	return s.users.FindByID(ctx, actor.UserID)
}

// UpdateFarmData replaces the farm data of userID, which must be the caller.
func (s *ProfileService) UpdateFarmData(ctx context.Context, actor ports.Identity, userID string, farmData domain.FarmData) (*domain.User, error) {
	if err := authorizeSelf(actor, userID); err != nil {
		return nil, err
	}
	if err := farmData.Check(); err != nil {
		return nil, err
	}

	user, err := s.users.UpdateFarmData(ctx, userID, farmData)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("user_id", userID).Msg("farm data updated")
	return user, nil
}

// UpdateProfileImage stores image and points the caller's profile at it. The
// previous image is removed once the record no longer references it.
func (s *ProfileService) UpdateProfileImage(ctx context.Context, actor ports.Identity, userID string, image ports.Upload) (*domain.User, error) {
	if err := authorizeSelf(actor, userID); err != nil {
		return nil, err
	}

	current, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	ref, err := s.uploads.StoreImage(ctx, "profile-images", image)
	if err != nil {
		return nil, err
	}

	user, err := s.users.UpdateProfileImage(ctx, userID, ref)
	if err != nil {
		s.uploads.Discard(ctx, ref)
		return nil, err
	}

	if current.ProfileImage != "" && current.ProfileImage != ref {
		s.uploads.Discard(ctx, current.ProfileImage)
	}
	s.log.Info().Str("user_id", userID).Msg("profile image updated")
	return user, nil
}

// authorizeSelf rejects any mutation whose target is not the caller.
func authorizeSelf(actor ports.Identity, target string) error {
	if actor.UserID == "" || target != actor.UserID {
		return domain.ErrForbidden
	}
	return nil
}
