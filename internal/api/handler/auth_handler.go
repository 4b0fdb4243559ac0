package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/farmguardian/farm-guardian/internal/api/i18n"
	"github.com/farmguardian/farm-guardian/internal/api/middleware"
	"github.com/farmguardian/farm-guardian/internal/core/ports"
)

type AuthHandler struct {
	authService  ports.AuthService
	secureCookie bool
}

func NewAuthHandler(authService ports.AuthService, secureCookie bool) *AuthHandler {
	return &AuthHandler{authService: authService, secureCookie: secureCookie}
}

// Register creates a farmer account and opens a session.
//
// @Summary      Register a farmer
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      ports.FarmerRegistration  true  "Farmer registration details"
// @Success      201   {object}  sessionResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /api/auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req ports.FarmerRegistration
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	session, err := h.authService.Register(c.Request().Context(), req)
	if err != nil {
		return err
	}

	h.setSessionCookie(c, session)
	return c.JSON(http.StatusCreated, sessionResponse{User: session.User, Token: session.Token})
}

// RegisterVet creates a veterinarian account from a multipart form with
// optional license, degree and idProof files.
//
// @Summary      Register a veterinarian
// @Tags         auth
// @Accept       multipart/form-data
// @Produce      json
// @Param        name            formData  string  true   "Full name"
// @Param        email           formData  string  true   "Email"
// @Param        phone           formData  string  true   "Phone (10-15 digits)"
// @Param        password        formData  string  true   "Password (min 6)"
// @Param        qualification   formData  string  false  "Qualification"
// @Param        specialization  formData  string  false  "Specialization"
// @Param        experience      formData  string  false  "Experience"
// @Param        licenseNumber   formData  string  false  "License number"
// @Param        organization    formData  string  false  "Organization"
// @Param        license         formData  file    false  "License document (jpeg, png or pdf)"
// @Param        degree          formData  file    false  "Degree document (jpeg, png or pdf)"
// @Param        idProof         formData  file    false  "ID proof (jpeg, png or pdf)"
// @Success      201   {object}  sessionResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /api/auth/register-vet [post]
func (h *AuthHandler) RegisterVet(c echo.Context) error {
	var req ports.VetRegistration
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	var err error
	if req.License, err = formUpload(c, "license"); err != nil {
		return err
	}
	if req.Degree, err = formUpload(c, "degree"); err != nil {
		return err
	}
	if req.IDProof, err = formUpload(c, "idProof"); err != nil {
		return err
	}

	session, err := h.authService.Register(c.Request().Context(), req)
	if err != nil {
		return err
	}

	h.setSessionCookie(c, session)
	return c.JSON(http.StatusCreated, sessionResponse{
		User:    session.User,
		Token:   session.Token,
		Message: i18n.T(c, "vet_registered", "Veterinarian registered successfully", nil),
	})
}

// Login authenticates a user and opens a session.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  sessionResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	session, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	h.setSessionCookie(c, session)
	return c.JSON(http.StatusOK, sessionResponse{User: session.User, Token: session.Token})
}

// Logout revokes the current session and clears the cookie.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200   {object}  messageResponse
// @Failure      401   {object}  errorResponse
// @Router       /api/auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	if err := h.authService.Logout(c.Request().Context(), id); err != nil {
		return err
	}

	middleware.ExpireSessionCookie(c, h.secureCookie)
	return c.JSON(http.StatusOK, messageResponse{Message: i18n.T(c, "logged_out", "Logged out successfully", nil)})
}

// ChangePassword replaces a password after checking the current one.
//
// @Summary      Change password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      changePasswordRequest  true  "Email, current and new password"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /api/auth/forgot-password [post]
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	if err := h.authService.ChangePassword(c.Request().Context(), req.Email, req.OldPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: i18n.T(c, "password_changed", "Password updated successfully", nil)})
}

func (h *AuthHandler) setSessionCookie(c echo.Context, s *ports.Session) {
	maxAge := int(time.Until(s.ExpiresAt).Seconds())
	if maxAge <= 0 {
		maxAge = -1
	}
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    s.Token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteStrictMode,
		Expires:  s.ExpiresAt,
		MaxAge:   maxAge,
	})
}
