package ports

import (
	"context"

	"github.com/farmguardian/farm-guardian/internal/core/domain"
)

// ProfileService reads and mutates the caller's own user record. Every
// mutating call names its target and is rejected with domain.ErrForbidden
// unless the target is the caller.
type ProfileService interface {
	GetProfile(ctx context.Context, actor Identity) (*domain.User, error)
	UpdateFarmData(ctx context.Context, actor Identity, userID string, farmData domain.FarmData) (*domain.User, error)
	UpdateProfileImage(ctx context.Context, actor Identity, userID string, image Upload) (*domain.User, error)
}
