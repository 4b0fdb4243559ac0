package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/farmguardian/farm-guardian/internal/core/domain"
	"github.com/farmguardian/farm-guardian/internal/core/ports"
)

type alertService struct {
	alerts   ports.AlertRepository
	farms    ports.FarmRepository
	validate ports.Validator
	events   ports.EventEmitter
	log      zerolog.Logger
	now      func() time.Time
}

// NewAlertService returns an AlertService implementation. Only vets and
// admins may create, change or remove alerts.
func NewAlertService(
	alerts ports.AlertRepository,
	farms ports.FarmRepository,
	validate ports.Validator,
	events ports.EventEmitter,
	log zerolog.Logger,
) ports.AlertService {
	return &alertService{alerts: alerts, farms: farms, validate: validate, events: events, log: log, now: time.Now}
}

func (s *alertService) Create(ctx context.Context, actor ports.Identity, in ports.AlertInput) (*domain.Alert, error) {
	if err := requireRole(actor, domain.RoleVet, domain.RoleAdmin); err != nil {
		return nil, err
	}
	if err := s.check(ctx, in); err != nil {
		return nil, err
	}

	alert := &domain.Alert{CreatedBy: actor.UserID}
	s.apply(alert, in)

	created, err := s.alerts.Create(ctx, alert)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("alert_id", created.ID).Str("severity", string(created.Severity)).Msg("alert created")
	if s.events != nil {
		s.events.Emit(domain.NewEvent(domain.EventAlertCreated, created.ID, map[string]any{
			"farm":     created.FarmID,
			"severity": string(created.Severity),
			"message":  created.Message,
		}))
	}
	return created, nil
}

func (s *alertService) Get(ctx context.Context, id string) (*domain.Alert, error) {
	return s.alerts.FindByID(ctx, id)
}

func (s *alertService) List(ctx context.Context, filter ports.AlertFilter) ([]*domain.Alert, error) {
	return s.alerts.List(ctx, filter)
}

func (s *alertService) Update(ctx context.Context, actor ports.Identity, id string, in ports.AlertInput) (*domain.Alert, error) {
	if err := requireRole(actor, domain.RoleVet, domain.RoleAdmin); err != nil {
		return nil, err
	}
	if err := s.check(ctx, in); err != nil {
		return nil, err
	}
	alert, err := s.alerts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.apply(alert, in)
	return s.alerts.Update(ctx, alert)
}

func (s *alertService) Delete(ctx context.Context, actor ports.Identity, id string) error {
	if err := requireRole(actor, domain.RoleVet, domain.RoleAdmin); err != nil {
		return err
	}
	if err := s.alerts.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("alert_id", id).Str("by", actor.UserID).Msg("alert deleted")
	if s.events != nil {
		s.events.Emit(domain.NewEvent(domain.EventAlertDeleted, id, nil))
	}
	return nil
}

func (s *alertService) check(ctx context.Context, in ports.AlertInput) error {
	if err := s.validate.Struct(in); err != nil {
		return err
	}
	return checkFarmRef(ctx, s.farms, in.FarmID)
}

func (s *alertService) apply(alert *domain.Alert, in ports.AlertInput) {
	alert.FarmID = in.FarmID
	alert.Message = strings.TrimSpace(in.Message)
	alert.Severity = domain.AlertSeverity(in.Severity)
	alert.Date = dateOrNow(in.Date, s.now)
}

func dateOrNow(d *time.Time, now func() time.Time) time.Time {
	if d == nil || d.IsZero() {
		return now().UTC()
	}
	return d.UTC()
}

func requireRole(actor ports.Identity, allowed ...domain.Role) error {
	for _, r := range allowed {
		if actor.Role == r {
			return nil
		}
	}
	return domain.ErrForbidden
}
