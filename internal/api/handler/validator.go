package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/farmguardian/farm-guardian/internal/core/ports"
)

// echoValidator lets handlers call c.Validate(req). Failures come back as
// *domain.ValidationError so the error handler can list every field.
type echoValidator struct {
	v ports.Validator
}

// NewValidator returns an echo.Validator backed by v.
func NewValidator(v ports.Validator) echo.Validator {
	return &echoValidator{v: v}
}

// Validate satisfies the echo.Validator interface.
func (ev *echoValidator) Validate(i any) error {
	return ev.v.Struct(i)
}
