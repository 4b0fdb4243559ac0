package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/farmguardian/farm-guardian/internal/api/metrics"
	"github.com/farmguardian/farm-guardian/internal/core/domain"
	"github.com/farmguardian/farm-guardian/internal/core/ports"
)

// dummyPassword is hashed once at construction so that a login for an unknown
// email spends the same bcrypt effort as a wrong password.
const dummyPassword = "farm-guardian-timing-equaliser"

// AuthConfig holds the session signing settings.
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// sessionClaims is the JWT payload: sub is the user id, ID the token id.
type sessionClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// AuthService implements registration, login and session handling.
type AuthService struct {
	users     ports.UserRepository
	hasher    ports.PasswordHasher
	validate  ports.Validator
	uploads   *UploadPolicy
	revoker   ports.TokenRevoker
	events    ports.EventEmitter
	log       zerolog.Logger
	jwtSecret []byte
	tokenTTL  time.Duration
	dummyHash string
	now       func() time.Time
}

// NewAuthService wires the service. revoker may be nil, in which case logout
// only clears the client-side marker.
func NewAuthService(
	users ports.UserRepository,
	hasher ports.PasswordHasher,
	validate ports.Validator,
	uploads *UploadPolicy,
	revoker ports.TokenRevoker,
	events ports.EventEmitter,
	cfg AuthConfig,
	log zerolog.Logger,
) (*AuthService, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("auth: empty JWT secret")
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 30 * 24 * time.Hour
	}
	dummy, err := hasher.Hash(dummyPassword)
	if err != nil {
		return nil, fmt.Errorf("auth: prepare dummy hash: %w", err)
	}
	return &AuthService{
		users:     users,
		hasher:    hasher,
		validate:  validate,
		uploads:   uploads,
		revoker:   revoker,
		events:    events,
		log:       log,
		jwtSecret: []byte(cfg.JWTSecret),
		tokenTTL:  cfg.TokenTTL,
		dummyHash: dummy,
		now:       time.Now,
	}, nil
}

// Register validates the role-shaped payload, stores any documents, hashes
// the password and persists the user with the role implied by the variant.
func (s *AuthService) Register(ctx context.Context, reg ports.Registration) (*ports.Session, error) {
	role := string(reg.Role())

	if err := s.validateRegistration(reg); err != nil {
		metrics.RegistrationsTotal.WithLabelValues(role, "invalid").Inc()
		return nil, err
	}

	user, password := newUserFrom(reg, s.now().UTC())

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = hash

	docs, err := s.storeDocuments(ctx, reg.Uploads())
	if err != nil {
		return nil, err
	}
	user.Documents = docs

	created, err := s.users.Create(ctx, user)
	if err != nil {
		if docs != nil {
			s.uploads.Discard(ctx, docs.Refs()...)
		}
		if errors.Is(err, domain.ErrAlreadyExists) {
			metrics.RegistrationsTotal.WithLabelValues(role, "conflict").Inc()
		}
		return nil, err
	}

	metrics.RegistrationsTotal.WithLabelValues(role, "created").Inc()
	s.log.Info().Str("user_id", created.ID).Str("role", role).Msg("user registered")
	s.emit(domain.NewEvent(domain.EventUserRegistered, created.ID, map[string]any{
		"role":  role,
		"email": created.Email,
	}))

	return s.issue(created)
}

// validateRegistration is the single validation dispatch over the variants:
// struct tags of the concrete variant, then its uploads.
func (s *AuthService) validateRegistration(reg ports.Registration) error {
	var fields []domain.FieldError

	switch r := reg.(type) {
	case ports.FarmerRegistration, *ports.FarmerRegistration, ports.VetRegistration, *ports.VetRegistration:
		if err := s.validate.Struct(r); err != nil {
			var ve *domain.ValidationError
			if !errors.As(err, &ve) {
				return err
			}
			fields = append(fields, ve.Fields...)
		}
	default:
		return domain.NewValidationError(domain.FieldError{Field: "role", Message: "unsupported registration role"})
	}

	for _, u := range reg.Uploads() {
		if err := s.uploads.Check(u, AllowImagesAndPDF); err != nil {
			fields = append(fields, domain.FieldError{Field: u.Field, Message: err.Error()})
		}
	}

	if len(fields) > 0 {
		return domain.NewValidationError(fields...)
	}
	return nil
}

// newUserFrom maps a validated variant onto a User and returns the plaintext
// password to hash.
func newUserFrom(reg ports.Registration, now time.Time) (*domain.User, string) {
	user := &domain.User{Role: reg.Role(), CreatedAt: now, UpdatedAt: now}

	switch r := reg.(type) {
	case *ports.FarmerRegistration:
		return newUserFrom(*r, now)
	case *ports.VetRegistration:
		return newUserFrom(*r, now)
	case ports.FarmerRegistration:
		user.Name = strings.TrimSpace(r.Name)
		user.Email = normalizeEmail(r.Email)
		user.Phone = r.Phone
		user.Address = r.Address()
		user.AadhaarNumber = r.AadhaarNumber
		user.Village = r.Village
		user.FarmSize = r.FarmSize
		user.LivestockType = r.LivestockType
		return user, r.Password
	case ports.VetRegistration:
		user.Name = strings.TrimSpace(r.Name)
		user.Email = normalizeEmail(r.Email)
		user.Phone = r.Phone
		user.Qualification = r.Qualification
		user.Specialization = r.Specialization
		user.Experience = r.Experience
		user.LicenseNumber = strings.TrimSpace(r.LicenseNumber)
		user.Organization = r.Organization
		user.IsApproved = true
		return user, r.Password
	}
	return user, ""
}

func (s *AuthService) storeDocuments(ctx context.Context, uploads []ports.Upload) (*domain.Documents, error) {
	if len(uploads) == 0 {
		return nil, nil
	}
	docs := &domain.Documents{}
	for _, u := range uploads {
		ref, err := s.uploads.Store(ctx, "documents", u)
		if err != nil {
			s.uploads.Discard(ctx, docs.Refs()...)
			return nil, err
		}
		switch u.Field {
		case "license":
			docs.License = ref
		case "degree":
			docs.Degree = ref
		case "idProof":
			docs.IDProof = ref
		}
	}
	return docs, nil
}

// Login returns a session for a matching email/password pair. An unknown
// email and a wrong password produce the same error after the same work.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.Session, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		s.hasher.Verify(password, s.dummyHash)
		metrics.LoginsTotal.WithLabelValues("rejected").Inc()
		return nil, domain.ErrInvalidCredentials
	case err != nil:
		return nil, err
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		metrics.LoginsTotal.WithLabelValues("rejected").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	metrics.LoginsTotal.WithLabelValues("accepted").Inc()
	s.log.Info().Str("user_id", user.ID).Msg("login succeeded")
	return s.issue(user)
}

// Authenticate verifies signature, expiry and revocation of token, then
// resolves it to an existing user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*ports.Identity, error) {
	if token == "" {
		metrics.SessionRejectsTotal.WithLabelValues("missing").Inc()
		return nil, domain.ErrMissingToken
	}

	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid || claims.Subject == "" || claims.ID == "" {
		metrics.SessionRejectsTotal.WithLabelValues("invalid").Inc()
		return nil, domain.ErrInvalidToken
	}

	if s.revoker != nil {
		revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
		if err != nil {
			s.log.Warn().Err(err).Msg("revocation check failed, accepting token")
		} else if revoked {
			metrics.SessionRejectsTotal.WithLabelValues("revoked").Inc()
			return nil, domain.ErrInvalidToken
		}
	}

	user, err := s.users.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			metrics.SessionRejectsTotal.WithLabelValues("user_gone").Inc()
			return nil, domain.ErrSessionUserGone
		}
		return nil, err
	}

	return &ports.Identity{
		UserID:    user.ID,
		Role:      user.Role,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Logout revokes the token id until its natural expiry when a revoker is
// configured. Clearing the cookie is the transport's job.
func (s *AuthService) Logout(ctx context.Context, id ports.Identity) error {
	if s.revoker == nil || id.TokenID == "" {
		return nil
	}
	if err := s.revoker.Revoke(ctx, id.TokenID, id.ExpiresAt); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	s.log.Info().Str("user_id", id.UserID).Msg("session revoked")
	return nil
}

// ChangePassword replaces the password after verifying the current one.
func (s *AuthService) ChangePassword(ctx context.Context, email, oldPassword, newPassword string) error {
	if err := s.validate.Struct(passwordChange{Email: email, OldPassword: oldPassword, NewPassword: newPassword}); err != nil {
		return err
	}

	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		s.hasher.Verify(oldPassword, s.dummyHash)
		return domain.ErrInvalidCredentials
	case err != nil:
		return err
	}
	if !s.hasher.Verify(oldPassword, user.PasswordHash) {
		return domain.ErrInvalidCredentials
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return err
	}

	s.log.Info().Str("user_id", user.ID).Msg("password changed")
	s.emit(domain.NewEvent(domain.EventPasswordChanged, user.ID, nil))
	return nil
}

type passwordChange struct {
	Email       string `json:"email"       validate:"required,email"`
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6,bcryptmax"`
}

func (s *AuthService) issue(user *domain.User) (*ports.Session, error) {
	now := s.now()
	expires := now.Add(s.tokenTTL)
	claims := sessionClaims{
		Role: string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &ports.Session{Token: signed, ExpiresAt: expires, User: user}, nil
}

func (s *AuthService) emit(e domain.Event) {
	if s.events != nil {
		s.events.Emit(e)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
