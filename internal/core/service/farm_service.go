package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/farmguardian/farm-guardian/internal/core/domain"
	"github.com/farmguardian/farm-guardian/internal/core/ports"
)

type farmService struct {
	farms    ports.FarmRepository
	validate ports.Validator
	log      zerolog.Logger
	now      func() time.Time
}

// NewFarmService returns a FarmService implementation.
func NewFarmService(farms ports.FarmRepository, validate ports.Validator, log zerolog.Logger) ports.FarmService {
	return &farmService{farms: farms, validate: validate, log: log, now: time.Now}
}

func (s *farmService) Create(ctx context.Context, actor ports.Identity, in ports.FarmInput) (*domain.Farm, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	farm := &domain.Farm{OwnerID: actor.UserID, CreatedAt: now}
	applyFarmInput(farm, in, now)

	created, err := s.farms.Create(ctx, farm)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("farm_id", created.ID).Str("owner", actor.UserID).Msg("farm created")
	return created, nil
}

func (s *farmService) Get(ctx context.Context, id string) (*domain.Farm, error) {
	return s.farms.FindByID(ctx, id)
}

func (s *farmService) List(ctx context.Context, filter ports.FarmFilter) ([]*domain.Farm, error) {
	return s.farms.List(ctx, filter)
}

func (s *farmService) Update(ctx context.Context, actor ports.Identity, id string, in ports.FarmInput) (*domain.Farm, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	farm, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	applyFarmInput(farm, in, s.now().UTC())
	return s.farms.Update(ctx, farm)
}

func (s *farmService) Delete(ctx context.Context, actor ports.Identity, id string) error {
	if _, err := s.owned(ctx, actor, id); err != nil {
		return err
	}
	if err := s.farms.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("farm_id", id).Str("by", actor.UserID).Msg("farm deleted")
	return nil
}

// owned loads farm id and checks that actor owns it or is an admin.
func (s *farmService) owned(ctx context.Context, actor ports.Identity, id string) (*domain.Farm, error) {
	farm, err := s.farms.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role != domain.RoleAdmin && farm.OwnerID != actor.UserID {
		return nil, domain.ErrForbidden
	}
	return farm, nil
}

func applyFarmInput(farm *domain.Farm, in ports.FarmInput, now time.Time) {
	farm.Name = strings.TrimSpace(in.Name)
	farm.Location = strings.TrimSpace(in.Location)
	farm.Type = in.Type
	farm.Size = in.Size
	farm.Sensors = make([]domain.Sensor, 0, len(in.Sensors))
	for _, sn := range in.Sensors {
		farm.Sensors = append(farm.Sensors, domain.Sensor{Name: sn.Name, Value: sn.Value})
	}
	farm.UpdatedAt = now
}

// checkFarmRef reports a field error when a referenced farm does not exist.
func checkFarmRef(ctx context.Context, farms ports.FarmRepository, farmID string) error {
	if farmID == "" || farms == nil {
		return nil
	}
	_, err := farms.FindByID(ctx, farmID)
	if errors.Is(err, domain.ErrFarmNotFound) {
		return domain.NewValidationError(domain.FieldError{Field: "farm", Message: "farm does not exist"})
	}
	return err
}
