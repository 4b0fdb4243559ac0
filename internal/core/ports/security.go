package ports

import (
	"context"
	"time"
)

// PasswordHasher produces salted one-way digests. The salt is generated per
// call and embedded in the digest; callers never supply it.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// TokenRevoker remembers session tokens that were logged out before expiry.
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Validator checks a struct against its validate tags and returns a
// *domain.ValidationError listing every failing field.
type Validator interface {
	Struct(s any) error
}
