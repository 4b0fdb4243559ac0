package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/farmguardian/farm-guardian/internal/core/domain"
	"github.com/farmguardian/farm-guardian/internal/core/ports"
	"github.com/farmguardian/farm-guardian/internal/pkg/validation"
)

// tokenAuth accepts "farmer-token" and "vet-token"; the remaining methods
// are unused by these tests.
type tokenAuth struct {
	ports.AuthService
}

func (tokenAuth) Authenticate(_ context.Context, token string) (*ports.Identity, error) {
	switch token {
	case "":
		return nil, domain.ErrMissingToken
	case "farmer-token":
		return &ports.Identity{UserID: "u-farmer", Role: domain.RoleFarmer}, nil
	case "vet-token":
		return &ports.Identity{UserID: "u-vet", Role: domain.RoleVet}, nil
	default:
		return nil, domain.ErrInvalidToken
	}
}

func (tokenAuth) Login(_ context.Context, email, password string) (*ports.Session, error) {
	return nil, domain.ErrInvalidCredentials
}

// Register accepts a vet form only when all three documents arrive.
func (tokenAuth) Register(_ context.Context, reg ports.Registration) (*ports.Session, error) {
	if n := len(reg.Uploads()); n != 3 {
		return nil, domain.NewValidationError(domain.FieldError{Field: "documents", Message: "expected three documents"})
	}
	return &ports.Session{
		Token:     "vet-token",
		ExpiresAt: time.Now().Add(time.Hour),
		User:      &domain.User{ID: "u-vet", Role: reg.Role()},
	}, nil
}

type alertsStub struct {
	ports.AlertService
	created int
}

func (s *alertsStub) Create(_ context.Context, actor ports.Identity, in ports.AlertInput) (*domain.Alert, error) {
	s.created++
	return &domain.Alert{ID: "a1", Message: in.Message, Severity: domain.AlertSeverity(in.Severity), CreatedBy: actor.UserID}, nil
}

type profilesStub struct {
	ports.ProfileService
}

func (profilesStub) UpdateFarmData(_ context.Context, actor ports.Identity, userID string, _ domain.FarmData) (*domain.User, error) {
	if userID != actor.UserID {
		return nil, domain.ErrForbidden
	}
	return &domain.User{ID: userID}, nil
}

type farmsStub struct {
	ports.FarmService
}

func (farmsStub) Get(_ context.Context, id string) (*domain.Farm, error) {
	return nil, domain.ErrFarmNotFound
}

func newTestRouter(t *testing.T) (*echo.Echo, *alertsStub) {
	t.Helper()
	alerts := &alertsStub{}
	reg := prometheus.NewRegistry()
	e := NewRouter(Services{
		Auth:     tokenAuth{},
		Profiles: profilesStub{},
		Farms:    farmsStub{},
		Alerts:   alerts,
	}, Options{
		FrontendURL: "http://localhost:5173",
		Validator:   validation.New(),
		Logger:      zerolog.Nop(),
		Registerer:  reg,
		Gatherer:    reg,
	})
	return e, alerts
}

func do(e *echo.Echo, method, target, body string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

// vetForm builds a vet registration with license, degree and idProof files of
// size bytes each.
func vetForm(t *testing.T, size int) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	fields := map[string]string{"name": "Dr V", "email": "vet@x.com", "phone": "9123456780", "password": "secret1"}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	content := append([]byte("%PDF-1.4\n"), bytes.Repeat([]byte{'0'}, size-9)...)
	for _, field := range []string{"license", "degree", "idProof"} {
		part, err := w.CreateFormFile(field, field+".pdf")
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		if _, err := part.Write(content); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close form: %v", err)
	}
	return body, w.FormDataContentType()
}

func postForm(e *echo.Echo, target string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json %q: %v", rec.Body.String(), err)
	}
	return resp
}

func TestRouter_SessionRequired(t *testing.T) {
	e, _ := newTestRouter(t)

	rec := do(e, http.MethodGet, "/api/auth/profile", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Code != "missing_token" || resp.Error == "" {
		t.Fatalf("unexpected envelope %+v", resp)
	}

	rec = do(e, http.MethodGet, "/api/farms", "", map[string]string{"Authorization": "Bearer forged"})
	if rec.Code != http.StatusUnauthorized || decodeError(t, rec).Code != "invalid_token" {
		t.Fatalf("expected invalid_token 401, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_AlertMutationsNeedStaffRole(t *testing.T) {
	e, alerts := newTestRouter(t)
	body := `{"message":"ASF outbreak nearby","severity":"high"}`

	rec := do(e, http.MethodPost, "/api/alerts", body, map[string]string{"Authorization": "Bearer farmer-token"})
	if rec.Code != http.StatusForbidden || decodeError(t, rec).Code != "forbidden" {
		t.Fatalf("expected 403 for farmer, got %d", rec.Code)
	}
	if alerts.created != 0 {
		t.Fatalf("service must not run for a forbidden caller")
	}

	rec = do(e, http.MethodPost, "/api/alerts", body, map[string]string{"Authorization": "Bearer vet-token"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 for vet, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_FarmDataForAnotherUserIsForbidden(t *testing.T) {
	e, _ := newTestRouter(t)

	rec := do(e, http.MethodPut, "/api/users/u-other/farm-data", `{"farmData":{"totalAcres":2}}`,
		map[string]string{"Authorization": "Bearer farmer-token"})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}

	rec = do(e, http.MethodPut, "/api/users/u-farmer/farm-data", `{"farmData":{"totalAcres":2}}`,
		map[string]string{"Authorization": "Bearer farmer-token"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for own record, got %d", rec.Code)
	}
}

func TestRouter_ErrorEnvelopes(t *testing.T) {
	e, _ := newTestRouter(t)

	rec := do(e, http.MethodPost, "/api/auth/login", `{"email":"nope"}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	resp := decodeError(t, rec)
	if resp.Code != "validation_failed" || len(resp.Errors) != 2 {
		t.Fatalf("expected two field errors, got %+v", resp)
	}

	rec = do(e, http.MethodPost, "/api/auth/login", `{"email":"a@x.com","password":"x"}`, nil)
	if rec.Code != http.StatusUnauthorized || decodeError(t, rec).Error != "Invalid email or password" {
		t.Fatalf("expected uniform credentials error, got %d %s", rec.Code, rec.Body.String())
	}

	rec = do(e, http.MethodGet, "/api/farms/123", "", map[string]string{"Authorization": "Bearer farmer-token"})
	if rec.Code != http.StatusNotFound || decodeError(t, rec).Error != "Farm not found" {
		t.Fatalf("expected farm not found, got %d %s", rec.Code, rec.Body.String())
	}

	rec = do(e, http.MethodGet, "/nowhere", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestRouter_LocalizesMessages(t *testing.T) {
	e, _ := newTestRouter(t)

	rec := do(e, http.MethodGet, "/api/auth/profile", "", map[string]string{"Accept-Language": "hi-IN,hi;q=0.9"})
	if got := decodeError(t, rec).Error; got != "अधिकृत नहीं, टोकन नहीं मिला" {
		t.Fatalf("expected Hindi message, got %q", got)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/auth/profile", nil)
	req.Header.Set("Accept-Language", "hi")
	req.AddCookie(&http.Cookie{Name: "lang", Value: "en"})
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if got := decodeError(t, rec).Error; got != "Not authorized, no token" {
		t.Fatalf("expected cookie to win, got %q", got)
	}
}

func TestRouter_Operability(t *testing.T) {
	e, _ := newTestRouter(t)

	if rec := do(e, http.MethodGet, "/health", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("expected liveness 200, got %d", rec.Code)
	}
	if rec := do(e, http.MethodGet, "/health/ready", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("expected readiness 200 without checks, got %d", rec.Code)
	}
	if rec := do(e, http.MethodGet, "/metrics", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("expected metrics 200, got %d", rec.Code)
	}
}

func TestHTTPErrorHandler_HidesUnexpectedErrors(t *testing.T) {
	e := echo.New()
	e.HTTPErrorHandler = NewHTTPErrorHandler(zerolog.Nop())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	e.HTTPErrorHandler(errors.New("mongo: connection pool closed"), c)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	resp := decodeError(t, rec)
	if resp.Code != "internal_error" || strings.Contains(resp.Error, "mongo") {
		t.Fatalf("internal detail leaked: %+v", resp)
	}
}

func TestHTTPErrorHandler_Conflict(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	NewHTTPErrorHandler(zerolog.Nop())(&domain.ConflictError{Field: "email"}, c)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	resp := decodeError(t, rec)
	if resp.Code != "already_exists" || len(resp.Errors) != 1 || resp.Errors[0].Field != "email" {
		t.Fatalf("unexpected envelope %+v", resp)
	}
}

func TestRouter_VetRegistrationTakesThreeFullDocuments(t *testing.T) {
	e, _ := newTestRouter(t)

	body, ct := vetForm(t, 5<<20-1024)
	rec := postForm(e, "/api/auth/register-vet", body, ct)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 for three documents under the per-file ceiling, got %d %s", rec.Code, rec.Body.String())
	}

	body, ct = vetForm(t, 6<<20)
	rec = postForm(e, "/api/auth/register-vet", body, ct)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413 for an oversized form, got %d", rec.Code)
	}
}

func TestRouter_JSONBodyLimit(t *testing.T) {
	reg := prometheus.NewRegistry()
	e := NewRouter(Services{Auth: tokenAuth{}}, Options{
		BodyLimit:  "1K",
		Validator:  validation.New(),
		Logger:     zerolog.Nop(),
		Registerer: reg,
		Gatherer:   reg,
	})

	body := `{"email":"a@x.com","password":"` + strings.Repeat("x", 2048) + `"}`
	if rec := do(e, http.MethodPost, "/api/auth/login", body, nil); rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", rec.Code)
	}
}

func TestRouter_LogoutWithStaleCookieExpiresIt(t *testing.T) {
	e, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: "revoked-token"})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != "token" || cookies[0].MaxAge >= 0 {
		t.Fatalf("expected the stale cookie to be expired, got %+v", cookies)
	}
}
