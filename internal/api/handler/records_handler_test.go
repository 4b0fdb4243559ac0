package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/farmguardian/farm-guardian/internal/core/domain"
	"github.com/farmguardian/farm-guardian/internal/core/ports"
)

func TestFarmHandler_Create(t *testing.T) {
	e := newEcho()
	h := NewFarmHandler(&stubFarmService{
		createFn: func(ctx context.Context, actor ports.Identity, in ports.FarmInput) (*domain.Farm, error) {
			if actor.UserID != farmer.UserID {
				t.Fatalf("expected caller as actor")
			}
			if in.Name != "North" || in.Type != "pig" || len(in.Sensors) != 1 {
				t.Fatalf("unexpected input %+v", in)
			}
			return &domain.Farm{ID: "f1", Name: in.Name, OwnerID: actor.UserID}, nil
		},
	})

	c, rec := jsonContext(e, http.MethodPost, "/api/farms",
		`{"name":"North","location":"Pune","type":"pig","size":3,"sensors":[{"name":"temp","value":"21"}]}`)
	if err := h.Create(signedIn(c, farmer)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	var farm domain.Farm
	if err := json.Unmarshal(rec.Body.Bytes(), &farm); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if farm.OwnerID != farmer.UserID {
		t.Fatalf("expected owner in response, got %+v", farm)
	}
}

func TestFarmHandler_ListPassesFilters(t *testing.T) {
	e := newEcho()
	h := NewFarmHandler(&stubFarmService{
		listFn: func(ctx context.Context, filter ports.FarmFilter) ([]*domain.Farm, error) {
			if filter.OwnerID != "abc" || filter.Type != "poultry" {
				t.Fatalf("unexpected filter %+v", filter)
			}
			return []*domain.Farm{}, nil
		},
	})

	c, rec := jsonContext(e, http.MethodGet, "/api/farms?owner=abc&type=poultry", "")
	if err := h.List(signedIn(c, farmer)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if body := rec.Body.String(); body != "[]\n" {
		t.Fatalf("expected empty array, got %q", body)
	}
}

func TestFarmHandler_Delete(t *testing.T) {
	e := newEcho()
	h := NewFarmHandler(&stubFarmService{
		deleteFn: func(ctx context.Context, actor ports.Identity, id string) error {
			if id == "missing" {
				return domain.ErrFarmNotFound
			}
			return nil
		},
	})

	c, rec := jsonContext(e, http.MethodDelete, "/api/farms/f1", "")
	c.SetParamNames("id")
	c.SetParamValues("f1")
	if err := h.Delete(signedIn(c, farmer)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if body := rec.Body.String(); body != "{\"success\":true}\n" {
		t.Fatalf("unexpected body %q", body)
	}

	c, _ = jsonContext(e, http.MethodDelete, "/api/farms/missing", "")
	c.SetParamNames("id")
	c.SetParamValues("missing")
	if err := h.Delete(signedIn(c, farmer)); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAssessmentHandler_Assess(t *testing.T) {
	e := newEcho()
	h := NewAssessmentHandler(&stubAssessmentService{
		assessFn: func(ctx context.Context, actor ports.Identity, in ports.AssessmentInput) (*domain.Assessment, error) {
			if len(in.Answers) != 15 {
				t.Fatalf("expected 15 answers, got %d", len(in.Answers))
			}
			a := &domain.Assessment{ID: "a1", UserID: actor.UserID, Answers: in.Answers}
			a.Evaluate()
			return a, nil
		},
	})

	c, rec := jsonContext(e, http.MethodPost, "/api/assessments",
		`{"answers":[20,20,20,20,20,20,20,20,20,20,20,20,20,20,20]}`)
	if err := h.Assess(signedIn(c, farmer)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	var a domain.Assessment
	if err := json.Unmarshal(rec.Body.Bytes(), &a); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if a.Score != 100 || a.RiskLevel != domain.RiskLow {
		t.Fatalf("unexpected result %+v", a)
	}
}

func TestHealthDependenciesHandler_Readiness(t *testing.T) {
	e := newEcho()
	h := NewHealthDependenciesHandler(map[string]Checker{
		"mongodb": func(context.Context) error { return nil },
		"redis":   func(context.Context) error { return errors.New("connection refused") },
	})

	c, rec := jsonContext(e, http.MethodGet, "/health/ready", "")
	if err := h.Readiness(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	var resp readinessResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Status != "degraded" || resp.Dependencies["mongodb"].Status != "ok" || resp.Dependencies["redis"].Error == "" {
		t.Fatalf("unexpected readiness %+v", resp)
	}

	ok := NewHealthDependenciesHandler(map[string]Checker{"mongodb": func(context.Context) error { return nil }})
	c, rec = jsonContext(e, http.MethodGet, "/health/ready", "")
	if err := ok.Readiness(c); err != nil || rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%v)", rec.Code, err)
	}
}
