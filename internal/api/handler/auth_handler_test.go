package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/farmguardian/farm-guardian/internal/core/domain"
	"github.com/farmguardian/farm-guardian/internal/core/ports"
)

func session(user *domain.User) *ports.Session {
	return &ports.Session{Token: "signed.jwt.token", ExpiresAt: time.Now().Add(time.Hour), User: user}
}

func TestAuthHandler_Register_Success(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, reg ports.Registration) (*ports.Session, error) {
			r, ok := reg.(ports.FarmerRegistration)
			if !ok {
				t.Fatalf("expected farmer registration, got %T", reg)
			}
			if r.Email != "a@x.com" || r.FarmSize != "5" || r.AadhaarNumber != "234567890123" {
				t.Fatalf("unexpected payload: %+v", r)
			}
			return session(&domain.User{ID: "u1", Name: r.Name, Email: r.Email, Role: domain.RoleFarmer, FarmSize: r.FarmSize}), nil
		},
	}
	h := NewAuthHandler(stub, true)

	c, rec := jsonContext(e, http.MethodPost, "/api/auth/register", `{
		"name":"A","email":"a@x.com","phone":"9876543210","flatNo":"1","street":"S",
		"district":"D","state":"ST","aadhaarNumber":"234567890123","village":"V",
		"farmSize":"5","livestockType":"poultry","password":"secret1"}`)

	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["token"] != "signed.jwt.token" {
		t.Fatalf("expected token in body, got %v", resp["token"])
	}
	user, ok := resp["user"].(map[string]any)
	if !ok || user["role"] != "farmer" || user["farmSize"] != "5" {
		t.Fatalf("unexpected user payload: %+v", resp["user"])
	}
	if _, leaked := user["password"]; leaked {
		t.Fatalf("password field must not be rendered")
	}

	cookie := sessionCookie(t, rec)
	if cookie.Value != "signed.jwt.token" || !cookie.HttpOnly || !cookie.Secure || cookie.SameSite != http.SameSiteStrictMode {
		t.Fatalf("unexpected session cookie: %+v", cookie)
	}
	if cookie.MaxAge <= 0 {
		t.Fatalf("expected positive max-age, got %d", cookie.MaxAge)
	}
}

func TestAuthHandler_Register_BadJSON(t *testing.T) {
	e := newEcho()
	h := NewAuthHandler(&stubAuthService{}, false)

	c, _ := jsonContext(e, http.MethodPost, "/api/auth/register", `{"name":`)
	err := h.Register(c)

	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestAuthHandler_Register_PassesServiceErrors(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, reg ports.Registration) (*ports.Session, error) {
			return nil, &domain.ConflictError{Field: "email"}
		},
	}
	h := NewAuthHandler(stub, false)

	c, rec := jsonContext(e, http.MethodPost, "/api/auth/register", `{"email":"a@x.com"}`)
	if err := h.Register(c); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Fatalf("no cookie expected on failure")
	}
}

func TestAuthHandler_RegisterVet_Multipart(t *testing.T) {
	e := newEcho()
	pdf := []byte("%PDF-1.4\n%test\n")
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, reg ports.Registration) (*ports.Session, error) {
			r, ok := reg.(ports.VetRegistration)
			if !ok {
				t.Fatalf("expected vet registration, got %T", reg)
			}
			if r.Name != "Dr V" || r.LicenseNumber != "LIC-9" || r.Specialization != "poultry" {
				t.Fatalf("form fields not bound: %+v", r)
			}
			if r.License == nil || r.License.Filename != "license.pdf" || r.License.Size != int64(len(pdf)) {
				t.Fatalf("license upload not passed: %+v", r.License)
			}
			if r.Degree != nil || r.IDProof != nil {
				t.Fatalf("absent files must stay nil")
			}
			f, err := r.License.Open()
			if err != nil {
				t.Fatalf("open upload: %v", err)
			}
			defer f.Close()
			got, _ := io.ReadAll(f)
			if string(got) != string(pdf) {
				t.Fatalf("upload content mismatch")
			}
			return session(&domain.User{ID: "v1", Role: domain.RoleVet, IsApproved: true}), nil
		},
	}
	h := NewAuthHandler(stub, false)

	c, rec := multipartContext(t, e, http.MethodPost, "/api/auth/register-vet", map[string]string{
		"name":           "Dr V",
		"email":          "v@x.com",
		"phone":          "9876543210",
		"password":       "secret1",
		"licenseNumber":  "LIC-9",
		"specialization": "poultry",
	}, formFile{field: "license", filename: "license.pdf", content: pdf})

	if err := h.RegisterVet(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	var resp sessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Message == "" || resp.User == nil || resp.User.Role != domain.RoleVet {
		t.Fatalf("unexpected response: %+v", resp)
	}
	sessionCookie(t, rec)
}

func TestAuthHandler_Login(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (*ports.Session, error) {
			if email != "a@x.com" || password != "secret1" {
				return nil, domain.ErrInvalidCredentials
			}
			return session(&domain.User{ID: "u1", Email: email, FarmSize: "5"}), nil
		},
	}
	h := NewAuthHandler(stub, false)

	c, rec := jsonContext(e, http.MethodPost, "/api/auth/login", `{"email":"a@x.com","password":"secret1"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if sessionCookie(t, rec).Value != "signed.jwt.token" {
		t.Fatalf("session cookie not set")
	}

	c, _ = jsonContext(e, http.MethodPost, "/api/auth/login", `{"email":"a@x.com","password":"wrong"}`)
	if err := h.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
}

func TestAuthHandler_Login_ValidatesBeforeService(t *testing.T) {
	e := newEcho()
	h := NewAuthHandler(&stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (*ports.Session, error) {
			t.Fatalf("service must not be called")
			return nil, nil
		},
	}, false)

	c, _ := jsonContext(e, http.MethodPost, "/api/auth/login", `{"email":"not-an-email"}`)
	err := h.Login(c)

	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	fields := map[string]bool{}
	for _, f := range ve.Fields {
		fields[f.Field] = true
	}
	if !fields["email"] || !fields["password"] {
		t.Fatalf("expected email and password errors, got %+v", ve.Fields)
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	e := newEcho()
	var revoked ports.Identity
	h := NewAuthHandler(&stubAuthService{
		logoutFn: func(ctx context.Context, id ports.Identity) error {
			revoked = id
			return nil
		},
	}, false)

	c, rec := jsonContext(e, http.MethodPost, "/api/auth/logout", "")
	if err := h.Logout(signedIn(c, farmer)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if revoked.TokenID != farmer.TokenID {
		t.Fatalf("expected token %q revoked, got %q", farmer.TokenID, revoked.TokenID)
	}
	cookie := sessionCookie(t, rec)
	if cookie.Value != "" || cookie.MaxAge >= 0 {
		t.Fatalf("expected cleared cookie, got %+v", cookie)
	}
}

func TestAuthHandler_Logout_RequiresSession(t *testing.T) {
	e := newEcho()
	h := NewAuthHandler(&stubAuthService{}, false)

	c, _ := jsonContext(e, http.MethodPost, "/api/auth/logout", "")
	if err := h.Logout(c); !errors.Is(err, domain.ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken, got %v", err)
	}
}

func TestAuthHandler_ChangePassword(t *testing.T) {
	e := newEcho()
	called := false
	h := NewAuthHandler(&stubAuthService{
		changePasswordFn: func(ctx context.Context, email, oldPassword, newPassword string) error {
			called = true
			if email != "a@x.com" || oldPassword != "secret1" || newPassword != "secret2" {
				t.Fatalf("unexpected args %q %q %q", email, oldPassword, newPassword)
			}
			return nil
		},
	}, false)

	c, rec := jsonContext(e, http.MethodPost, "/api/auth/forgot-password",
		`{"email":"a@x.com","oldPassword":"secret1","newPassword":"secret2"}`)
	if err := h.ChangePassword(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called || rec.Code != http.StatusOK {
		t.Fatalf("expected 200 after service call, got %d", rec.Code)
	}
}
