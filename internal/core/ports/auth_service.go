package ports

import (
	"context"
	"time"

	"github.com/farmguardian/farm-guardian/internal/core/domain"
)

// Registration is the role-shaped payload of a sign-up. FarmerRegistration
// and VetRegistration are the only variants; Role is the discriminator and
// each variant declares its own required fields through validate tags.
type Registration interface {
	Role() domain.Role
	Uploads() []Upload
}

// FarmerRegistration is submitted to the farmer sign-up endpoint.
type FarmerRegistration struct {
	Name          string `json:"name"          validate:"required,max=50"`
	Email         string `json:"email"         validate:"required,email"`
	Phone         string `json:"phone"         validate:"required,phone"`
	FlatNo        string `json:"flatNo"        validate:"required"`
	Street        string `json:"street"        validate:"required"`
	District      string `json:"district"      validate:"required"`
	State         string `json:"state"         validate:"required"`
	AadhaarNumber string `json:"aadhaarNumber" validate:"required,aadhaar"`
	Village       string `json:"village"       validate:"required"`
	FarmSize      string `json:"farmSize"      validate:"required"`
	LivestockType string `json:"livestockType" validate:"required,oneof=cattle poultry pigs goats sheep mixed other"`
	Password      string `json:"password"      validate:"required,min=6,bcryptmax"`
}

func (FarmerRegistration) Role() domain.Role { return domain.RoleFarmer }
func (FarmerRegistration) Uploads() []Upload { return nil }

// Address assembles the composite address fields into the stored form.
func (r FarmerRegistration) Address() string {
	return r.FlatNo + ", " + r.Street + ", " + r.District + ", " + r.State
}

// VetRegistration is submitted as a multipart form to the vet sign-up endpoint.
type VetRegistration struct {
	Name           string `json:"name"           form:"name"           validate:"required,max=50"`
	Email          string `json:"email"          form:"email"          validate:"required,email"`
	Phone          string `json:"phone"          form:"phone"          validate:"required,phone"`
	Password       string `json:"password"       form:"password"       validate:"required,min=6,bcryptmax"`
	Qualification  string `json:"qualification"  form:"qualification"`
	Specialization string `json:"specialization" form:"specialization" validate:"omitempty,oneof=large-animal small-animal poultry surgery pathology preventive emergency other"`
	Experience     string `json:"experience"     form:"experience"`
	LicenseNumber  string `json:"licenseNumber"  form:"licenseNumber"`
	Organization   string `json:"organization"   form:"organization"`

	License *Upload `json:"-" form:"-"`
	Degree  *Upload `json:"-" form:"-"`
	IDProof *Upload `json:"-" form:"-"`
}

func (VetRegistration) Role() domain.Role { return domain.RoleVet }

func (r VetRegistration) Uploads() []Upload {
	var out []Upload
	for _, u := range []*Upload{r.License, r.Degree, r.IDProof} {
		if u != nil {
			out = append(out, *u)
		}
	}
	return out
}

// Identity is the resolved subject of a valid session token.
type Identity struct {
	UserID    string
	Role      domain.Role
	TokenID   string
	ExpiresAt time.Time
}

// Session is the outcome of a successful login or registration.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

// AuthService covers registration, login, session validation, logout and
// password change.
type AuthService interface {
	Register(ctx context.Context, reg Registration) (*Session, error)
	Login(ctx context.Context, email, password string) (*Session, error)
	Authenticate(ctx context.Context, token string) (*Identity, error)
	Logout(ctx context.Context, id Identity) error
	ChangePassword(ctx context.Context, email, oldPassword, newPassword string) error
}
