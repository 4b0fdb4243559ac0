package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/farmguardian/farm-guardian/internal/api/i18n"
	"github.com/farmguardian/farm-guardian/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error  string              `json:"error"`
	Code   string              `json:"code"`
	Errors []domain.FieldError `json:"errors,omitempty"`
}

// resolved is an error mapped onto the envelope before localization.
type resolved struct {
	status   int
	code     string
	fallback string
	data     map[string]any
	fields   []domain.FieldError
}

var notFoundResources = []struct {
	err      error
	resource string
}{
	{domain.ErrUserNotFound, "User"},
	{domain.ErrFarmNotFound, "Farm"},
	{domain.ErrAlertNotFound, "Alert"},
	{domain.ErrComplianceNotFound, "Compliance record"},
	{domain.ErrFeedbackNotFound, "Feedback"},
	{domain.ErrAssessmentNotFound, "Assessment"},
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent, localized JSON envelope:
//     {"error": "<message>", "code": "<code>", "errors": [{"field", "message"}]}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		r := resolveError(err, log, c)
		msg := i18n.T(c, r.code, r.fallback, r.data)

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(r.status)
			return
		}
		_ = c.JSON(r.status, errorResponse{Error: msg, Code: r.code, Errors: r.fields})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) resolved {
	// Echo's own errors (bind failures, 404 from router, body limit, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return resolved{status: he.Code, code: httpCode(he.Code), fallback: fmt.Sprintf("%v", he.Message)}
	}

	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return resolved{status: http.StatusBadRequest, code: "validation_failed", fallback: "Validation failed", fields: ve.Fields}
	}

	var ce *domain.ConflictError
	if errors.As(err, &ce) {
		return resolved{
			status:   http.StatusConflict,
			code:     "already_exists",
			fallback: ce.Error(),
			data:     map[string]any{"Field": ce.Field},
			fields:   []domain.FieldError{{Field: ce.Field, Message: ce.Error()}},
		}
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return resolved{status: http.StatusUnauthorized, code: "invalid_credentials", fallback: "Invalid email or password"}
	case errors.Is(err, domain.ErrMissingToken):
		return resolved{status: http.StatusUnauthorized, code: "missing_token", fallback: "Not authorized, no token"}
	case errors.Is(err, domain.ErrInvalidToken):
		return resolved{status: http.StatusUnauthorized, code: "invalid_token", fallback: "Not authorized, token failed"}
	case errors.Is(err, domain.ErrSessionUserGone):
		return resolved{status: http.StatusUnauthorized, code: "session_user_gone", fallback: "Not authorized, user not found"}
	case errors.Is(err, domain.ErrForbidden):
		return resolved{status: http.StatusForbidden, code: "forbidden", fallback: "Access forbidden"}
	case errors.Is(err, domain.ErrNotFound):
		resource := "Resource"
		for _, nf := range notFoundResources {
			if errors.Is(err, nf.err) {
				resource = nf.resource
				break
			}
		}
		return resolved{
			status:   http.StatusNotFound,
			code:     "not_found",
			fallback: resource + " not found",
			data:     map[string]any{"Resource": resource},
		}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("unhandled error")

	return resolved{status: http.StatusInternalServerError, code: "internal_error", fallback: "Internal server error"}
}

// httpCode names echo's own errors. Only bad_request and forbidden are
// localized; the others keep echo's message.
func httpCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusNotFound:
		return "route_not_found"
	case http.StatusMethodNotAllowed:
		return "method_not_allowed"
	case http.StatusRequestEntityTooLarge:
		return "payload_too_large"
	case http.StatusTooManyRequests:
		return "too_many_requests"
	case http.StatusServiceUnavailable:
		return "unavailable"
	default:
		return "error"
	}
}
