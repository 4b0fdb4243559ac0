package ports

import (
	"context"
	"time"

	"github.com/farmguardian/farm-guardian/internal/core/domain"
)

// RecordRepository is the plain CRUD contract shared by the flat record
// collections. FindByID, Update and Delete return the collection's
// not-found error for unknown or malformed ids.
type RecordRepository[T any, F any] interface {
	Create(ctx context.Context, rec *T) (*T, error)
	FindByID(ctx context.Context, id string) (*T, error)
	List(ctx context.Context, filter F) ([]*T, error)
	Update(ctx context.Context, rec *T) (*T, error)
	Delete(ctx context.Context, id string) error
}

// FarmFilter narrows farm listings; empty fields are ignored.
type FarmFilter struct {
	OwnerID string
	Type    string
}

// AlertFilter narrows alert listings; empty fields are ignored.
type AlertFilter struct {
	FarmID   string
	Severity string
}

// ComplianceFilter narrows compliance listings; empty fields are ignored.
type ComplianceFilter struct {
	FarmID string
	Status string
}

// FeedbackFilter narrows feedback listings; empty fields are ignored.
type FeedbackFilter struct {
	UserID string
}

// AssessmentFilter narrows assessment listings; empty fields are ignored.
type AssessmentFilter struct {
	UserID string
	FarmID string
}

type (
	FarmRepository       = RecordRepository[domain.Farm, FarmFilter]
	AlertRepository      = RecordRepository[domain.Alert, AlertFilter]
	ComplianceRepository = RecordRepository[domain.Compliance, ComplianceFilter]
	FeedbackRepository   = RecordRepository[domain.Feedback, FeedbackFilter]
	AssessmentRepository = RecordRepository[domain.Assessment, AssessmentFilter]
)

// SensorInput is one sensor reading on a farm.
type SensorInput struct {
	Name  string `json:"name"  validate:"required"`
	Value string `json:"value"`
}

// FarmInput carries the writable farm fields.
type FarmInput struct {
	Name     string        `json:"name"     validate:"required,max=100"`
	Location string        `json:"location" validate:"required"`
	Type     string        `json:"type"     validate:"required,oneof=poultry pig"`
	Size     float64       `json:"size"     validate:"gte=0"`
	Sensors  []SensorInput `json:"sensors"  validate:"omitempty,dive"`
}

// AlertInput carries the writable alert fields. A nil Date means now.
type AlertInput struct {
	FarmID   string     `json:"farm"     validate:"omitempty,hexadecimal,len=24"`
	Message  string     `json:"message"  validate:"required,max=1000"`
	Severity string     `json:"severity" validate:"required,oneof=low medium high"`
	Date     *time.Time `json:"date"`
}

// ComplianceInput carries the writable compliance fields. A nil Date means now.
type ComplianceInput struct {
	FarmID string     `json:"farm"   validate:"omitempty,hexadecimal,len=24"`
	Check  string     `json:"check"  validate:"required"`
	Status string     `json:"status" validate:"required"`
	Date   *time.Time `json:"date"`
}

// FeedbackInput carries the writable feedback fields.
type FeedbackInput struct {
	Message string `json:"message" validate:"required,max=2000"`
}

// AssessmentInput is a completed questionnaire: fifteen answers scored 0..20.
type AssessmentInput struct {
	FarmID  string `json:"farm"    validate:"omitempty,hexadecimal,len=24"`
	Answers []int  `json:"answers" validate:"len=15,dive,gte=0,lte=20"`
}

// FarmService manages farm records. Only the owner or an admin may change one.
type FarmService interface {
	Create(ctx context.Context, actor Identity, in FarmInput) (*domain.Farm, error)
	Get(ctx context.Context, id string) (*domain.Farm, error)
	List(ctx context.Context, filter FarmFilter) ([]*domain.Farm, error)
	Update(ctx context.Context, actor Identity, id string, in FarmInput) (*domain.Farm, error)
	Delete(ctx context.Context, actor Identity, id string) error
}

// AlertService manages disease alerts.
type AlertService interface {
	Create(ctx context.Context, actor Identity, in AlertInput) (*domain.Alert, error)
	Get(ctx context.Context, id string) (*domain.Alert, error)
	List(ctx context.Context, filter AlertFilter) ([]*domain.Alert, error)
	Update(ctx context.Context, actor Identity, id string, in AlertInput) (*domain.Alert, error)
	Delete(ctx context.Context, actor Identity, id string) error
}

// ComplianceService manages compliance check records.
type ComplianceService interface {
	Create(ctx context.Context, actor Identity, in ComplianceInput) (*domain.Compliance, error)
	Get(ctx context.Context, id string) (*domain.Compliance, error)
	List(ctx context.Context, filter ComplianceFilter) ([]*domain.Compliance, error)
	Update(ctx context.Context, actor Identity, id string, in ComplianceInput) (*domain.Compliance, error)
	Delete(ctx context.Context, actor Identity, id string) error
}

// FeedbackService manages user feedback. Authors may edit their own entries.
type FeedbackService interface {
	Submit(ctx context.Context, actor Identity, in FeedbackInput) (*domain.Feedback, error)
	Get(ctx context.Context, actor Identity, id string) (*domain.Feedback, error)
	List(ctx context.Context, filter FeedbackFilter) ([]*domain.Feedback, error)
	Update(ctx context.Context, actor Identity, id string, in FeedbackInput) (*domain.Feedback, error)
	Delete(ctx context.Context, actor Identity, id string) error
}

// AssessmentService scores questionnaires and keeps the caller's history.
type AssessmentService interface {
	Assess(ctx context.Context, actor Identity, in AssessmentInput) (*domain.Assessment, error)
	Get(ctx context.Context, actor Identity, id string) (*domain.Assessment, error)
	List(ctx context.Context, actor Identity) ([]*domain.Assessment, error)
}
