package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/farmguardian/farm-guardian/internal/core/domain"
	"github.com/farmguardian/farm-guardian/internal/core/ports"
)

type complianceService struct {
	records  ports.ComplianceRepository
	farms    ports.FarmRepository
	validate ports.Validator
	log      zerolog.Logger
	now      func() time.Time
}

// NewComplianceService returns a ComplianceService implementation.
func NewComplianceService(
	records ports.ComplianceRepository,
	farms ports.FarmRepository,
	validate ports.Validator,
	log zerolog.Logger,
) ports.ComplianceService {
	return &complianceService{records: records, farms: farms, validate: validate, log: log, now: time.Now}
}

func (s *complianceService) Create(ctx context.Context, actor ports.Identity, in ports.ComplianceInput) (*domain.Compliance, error) {
	if err := s.check(ctx, in); err != nil {
		return nil, err
	}
	rec := &domain.Compliance{}
	s.apply(rec, in)

	created, err := s.records.Create(ctx, rec)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("compliance_id", created.ID).Str("by", actor.UserID).Msg("compliance record created")
	return created, nil
}

func (s *complianceService) Get(ctx context.Context, id string) (*domain.Compliance, error) {
	return s.records.FindByID(ctx, id)
}

func (s *complianceService) List(ctx context.Context, filter ports.ComplianceFilter) ([]*domain.Compliance, error) {
	return s.records.List(ctx, filter)
}

func (s *complianceService) Update(ctx context.Context, actor ports.Identity, id string, in ports.ComplianceInput) (*domain.Compliance, error) {
	if err := s.check(ctx, in); err != nil {
		return nil, err
	}
	rec, err := s.records.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.apply(rec, in)
	return s.records.Update(ctx, rec)
}

func (s *complianceService) Delete(ctx context.Context, actor ports.Identity, id string) error {
	if err := s.records.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("compliance_id", id).Str("by", actor.UserID).Msg("compliance record deleted")
	return nil
}

func (s *complianceService) check(ctx context.Context, in ports.ComplianceInput) error {
	if err := s.validate.Struct(in); err != nil {
		return err
	}
	return checkFarmRef(ctx, s.farms, in.FarmID)
}

func (s *complianceService) apply(rec *domain.Compliance, in ports.ComplianceInput) {
	rec.FarmID = in.FarmID
	rec.Check = strings.TrimSpace(in.Check)
	rec.Status = strings.TrimSpace(in.Status)
	rec.Date = dateOrNow(in.Date, s.now)
}
