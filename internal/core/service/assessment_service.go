package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/farmguardian/farm-guardian/internal/api/metrics"
	"github.com/farmguardian/farm-guardian/internal/core/domain"
	"github.com/farmguardian/farm-guardian/internal/core/ports"
)

type assessmentService struct {
	assessments ports.AssessmentRepository
	farms       ports.FarmRepository
	validate    ports.Validator
	log         zerolog.Logger
	now         func() time.Time
}

// NewAssessmentService returns an AssessmentService implementation.
func NewAssessmentService(
	assessments ports.AssessmentRepository,
	farms ports.FarmRepository,
	validate ports.Validator,
	log zerolog.Logger,
) ports.AssessmentService {
	return &assessmentService{assessments: assessments, farms: farms, validate: validate, log: log, now: time.Now}
}

// Assess scores the questionnaire and stores the result for the caller.
func (s *assessmentService) Assess(ctx context.Context, actor ports.Identity, in ports.AssessmentInput) (*domain.Assessment, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	if err := checkFarmRef(ctx, s.farms, in.FarmID); err != nil {
		return nil, err
	}

	a := &domain.Assessment{
		UserID:    actor.UserID,
		FarmID:    in.FarmID,
		Answers:   append([]int(nil), in.Answers...),
		CreatedAt: s.now().UTC(),
	}
	a.Evaluate()

	created, err := s.assessments.Create(ctx, a)
	if err != nil {
		return nil, err
	}

	metrics.AssessmentsTotal.WithLabelValues(string(created.RiskLevel)).Inc()
	s.log.Info().
		Str("assessment_id", created.ID).
		Str("user_id", actor.UserID).
		Int("score", created.Score).
		Str("risk", string(created.RiskLevel)).
		Msg("assessment scored")
	return created, nil
}

func (s *assessmentService) Get(ctx context.Context, actor ports.Identity, id string) (*domain.Assessment, error) {
	a, err := s.assessments.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role != domain.RoleAdmin && a.UserID != actor.UserID {
		return nil, domain.ErrAssessmentNotFound
	}
	return a, nil
}

// List returns the caller's own assessments.
func (s *assessmentService) List(ctx context.Context, actor ports.Identity) ([]*domain.Assessment, error) {
	return s.assessments.List(ctx, ports.AssessmentFilter{UserID: actor.UserID})
}
