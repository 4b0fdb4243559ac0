package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrAlreadyExists      = errors.New("already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrMissingToken       = errors.New("missing session token")
	ErrInvalidToken       = errors.New("invalid or expired session token")
	ErrSessionUserGone    = errors.New("session user no longer exists")
	ErrForbidden          = errors.New("access forbidden")
	ErrNotFound           = errors.New("not found")
	ErrUnsupportedFile    = errors.New("only image and PDF files are allowed")
	ErrFileTooLarge       = errors.New("file exceeds the upload size limit")
)

var (
	ErrUserNotFound       = fmt.Errorf("user %w", ErrNotFound)
	ErrFarmNotFound       = fmt.Errorf("farm %w", ErrNotFound)
	ErrAlertNotFound      = fmt.Errorf("alert %w", ErrNotFound)
	ErrComplianceNotFound = fmt.Errorf("compliance record %w", ErrNotFound)
	ErrFeedbackNotFound   = fmt.Errorf("feedback %w", ErrNotFound)
	ErrAssessmentNotFound = fmt.Errorf("assessment %w", ErrNotFound)
)

// FieldError describes one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every field that failed, not just the first one.
type ValidationError struct {
	Fields []FieldError
}

// NewValidationError builds a ValidationError from field/message pairs.
func NewValidationError(fields ...FieldError) *ValidationError {
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return ErrValidation.Error() + ": " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ConflictError reports a unique field that is already taken.
type ConflictError struct {
	Field string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, ErrAlreadyExists)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrAlreadyExists
}
