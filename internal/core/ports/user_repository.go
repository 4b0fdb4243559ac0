package ports

import (
	"context"

	"github.com/farmguardian/farm-guardian/internal/core/domain"
)

// UserRepository persists user records. Implementations enforce uniqueness of
// email, phone, Aadhaar number and license number atomically and report a
// violation as *domain.ConflictError.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	UpdateFarmData(ctx context.Context, id string, farmData domain.FarmData) (*domain.User, error)
	UpdateProfileImage(ctx context.Context, id, ref string) (*domain.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}
