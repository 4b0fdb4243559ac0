package handler

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/farmguardian/farm-guardian/internal/api/middleware"
	"github.com/farmguardian/farm-guardian/internal/core/domain"
	"github.com/farmguardian/farm-guardian/internal/core/ports"
	"github.com/farmguardian/farm-guardian/internal/pkg/validation"
)

type stubAuthService struct {
	registerFn       func(ctx context.Context, reg ports.Registration) (*ports.Session, error)
	loginFn          func(ctx context.Context, email, password string) (*ports.Session, error)
	authenticateFn   func(ctx context.Context, token string) (*ports.Identity, error)
	logoutFn         func(ctx context.Context, id ports.Identity) error
	changePasswordFn func(ctx context.Context, email, oldPassword, newPassword string) error
}

func (s *stubAuthService) Register(ctx context.Context, reg ports.Registration) (*ports.Session, error) {
	return s.registerFn(ctx, reg)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*ports.Session, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) Authenticate(ctx context.Context, token string) (*ports.Identity, error) {
	return s.authenticateFn(ctx, token)
}

func (s *stubAuthService) Logout(ctx context.Context, id ports.Identity) error {
	return s.logoutFn(ctx, id)
}

func (s *stubAuthService) ChangePassword(ctx context.Context, email, oldPassword, newPassword string) error {
	return s.changePasswordFn(ctx, email, oldPassword, newPassword)
}

type stubProfileService struct {
	getFn         func(ctx context.Context, actor ports.Identity) (*domain.User, error)
	updateFarmFn  func(ctx context.Context, actor ports.Identity, userID string, fd domain.FarmData) (*domain.User, error)
	updateImageFn func(ctx context.Context, actor ports.Identity, userID string, image ports.Upload) (*domain.User, error)
}

func (s *stubProfileService) GetProfile(ctx context.Context, actor ports.Identity) (*domain.User, error) {
	return s.getFn(ctx, actor)
}

func (s *stubProfileService) UpdateFarmData(ctx context.Context, actor ports.Identity, userID string, fd domain.FarmData) (*domain.User, error) {
	return s.updateFarmFn(ctx, actor, userID, fd)
}

func (s *stubProfileService) UpdateProfileImage(ctx context.Context, actor ports.Identity, userID string, image ports.Upload) (*domain.User, error) {
	return s.updateImageFn(ctx, actor, userID, image)
}

// stubFarmService answers only the calls a test wires up.
type stubFarmService struct {
	ports.FarmService
	createFn func(ctx context.Context, actor ports.Identity, in ports.FarmInput) (*domain.Farm, error)
	listFn   func(ctx context.Context, filter ports.FarmFilter) ([]*domain.Farm, error)
	deleteFn func(ctx context.Context, actor ports.Identity, id string) error
}

func (s *stubFarmService) Create(ctx context.Context, actor ports.Identity, in ports.FarmInput) (*domain.Farm, error) {
	return s.createFn(ctx, actor, in)
}

func (s *stubFarmService) List(ctx context.Context, filter ports.FarmFilter) ([]*domain.Farm, error) {
	return s.listFn(ctx, filter)
}

func (s *stubFarmService) Delete(ctx context.Context, actor ports.Identity, id string) error {
	return s.deleteFn(ctx, actor, id)
}

type stubAssessmentService struct {
	ports.AssessmentService
	assessFn func(ctx context.Context, actor ports.Identity, in ports.AssessmentInput) (*domain.Assessment, error)
}

func (s *stubAssessmentService) Assess(ctx context.Context, actor ports.Identity, in ports.AssessmentInput) (*domain.Assessment, error) {
	return s.assessFn(ctx, actor, in)
}

var farmer = ports.Identity{UserID: "64b000000000000000000001", Role: domain.RoleFarmer, TokenID: "jti-1"}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator(validation.New())
	return e
}

func jsonContext(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

// signedIn marks c as authenticated the way the Auth middleware does.
func signedIn(c echo.Context, id ports.Identity) echo.Context {
	c.Set(middleware.IdentityKey, id)
	c.Set(middleware.RoleKey, string(id.Role))
	return c
}

type formFile struct {
	field, filename string
	content         []byte
}

func multipartContext(t *testing.T, e *echo.Echo, method, target string, fields map[string]string, files ...formFile) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	for _, f := range files {
		part, err := w.CreateFormFile(f.field, f.filename)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write(f.content); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}

	req := httptest.NewRequest(method, target, &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookie {
			return c
		}
	}
	t.Fatalf("no %q cookie in response", middleware.SessionCookie)
	return nil
}
