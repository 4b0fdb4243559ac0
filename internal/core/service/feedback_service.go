package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/farmguardian/farm-guardian/internal/core/domain"
	"github.com/farmguardian/farm-guardian/internal/core/ports"
)

type feedbackService struct {
	feedback ports.FeedbackRepository
	validate ports.Validator
	log      zerolog.Logger
	now      func() time.Time
}

// NewFeedbackService returns a FeedbackService implementation. Entries are
// visible to and editable by their author and admins.
func NewFeedbackService(feedback ports.FeedbackRepository, validate ports.Validator, log zerolog.Logger) ports.FeedbackService {
	return &feedbackService{feedback: feedback, validate: validate, log: log, now: time.Now}
}

func (s *feedbackService) Submit(ctx context.Context, actor ports.Identity, in ports.FeedbackInput) (*domain.Feedback, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	created, err := s.feedback.Create(ctx, &domain.Feedback{
		UserID:  actor.UserID,
		Message: strings.TrimSpace(in.Message),
		Date:    s.now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("feedback_id", created.ID).Str("user_id", actor.UserID).Msg("feedback submitted")
	return created, nil
}

func (s *feedbackService) Get(ctx context.Context, actor ports.Identity, id string) (*domain.Feedback, error) {
	return s.authored(ctx, actor, id)
}

func (s *feedbackService) List(ctx context.Context, filter ports.FeedbackFilter) ([]*domain.Feedback, error) {
	return s.feedback.List(ctx, filter)
}

func (s *feedbackService) Update(ctx context.Context, actor ports.Identity, id string, in ports.FeedbackInput) (*domain.Feedback, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	fb, err := s.authored(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	fb.Message = strings.TrimSpace(in.Message)
	return s.feedback.Update(ctx, fb)
}

func (s *feedbackService) Delete(ctx context.Context, actor ports.Identity, id string) error {
	if _, err := s.authored(ctx, actor, id); err != nil {
		return err
	}
	return s.feedback.Delete(ctx, id)
}

func (s *feedbackService) authored(ctx context.Context, actor ports.Identity, id string) (*domain.Feedback, error) {
	fb, err := s.feedback.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role != domain.RoleAdmin && fb.UserID != actor.UserID {
		return nil, domain.ErrForbidden
	}
	return fb, nil
}
