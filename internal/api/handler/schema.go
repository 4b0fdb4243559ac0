package handler

import "github.com/farmguardian/farm-guardian/internal/core/domain"

// --- Request types ---

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type changePasswordRequest struct {
	Email       string `json:"email"`
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type farmDataRequest struct {
	FarmData *domain.FarmData `json:"farmData" validate:"required"`
}

// --- Response types ---

// sessionResponse is returned by register and login. The token is also set
// as the session cookie.
type sessionResponse struct {
	User    *domain.User `json:"user"`
	Token   string       `json:"token"`
	Message string       `json:"message,omitempty"`
}

type userResponse struct {
	User    *domain.User `json:"user"`
	Message string       `json:"message,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type deletedResponse struct {
	Success bool `json:"success"`
}

// errorResponse documents the error envelope rendered by the HTTP error handler.
type errorResponse struct {
	Error  string              `json:"error"`
	Code   string              `json:"code"`
	Errors []domain.FieldError `json:"errors,omitempty"`
}
