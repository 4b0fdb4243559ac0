package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/farmguardian/farm-guardian/internal/api/i18n"
	"github.com/farmguardian/farm-guardian/internal/core/domain"
	"github.com/farmguardian/farm-guardian/internal/core/ports"
)

// ProfileHandler serves the caller's own user record.
type ProfileHandler struct {
	profiles ports.ProfileService
}

func NewProfileHandler(profiles ports.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// Get handles GET /api/auth/profile.
//
// @Summary      Current user profile
// @Tags         profile
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  userResponse
// @Failure      401  {object}  errorResponse
// @Router       /api/auth/profile [get]
func (h *ProfileHandler) Get(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	user, err := h.profiles.GetProfile(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userResponse{User: user})
}

// UpdateFarmData handles PUT /api/auth/farm-data for the caller.
//
// @Summary      Replace the caller's farm data
// @Tags         profile
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      farmDataRequest  true  "Farm data"
// @Success      200   {object}  userResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /api/auth/farm-data [put]
func (h *ProfileHandler) UpdateFarmData(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	return h.updateFarmData(c, id, id.UserID)
}

// UpdateUserFarmData handles PUT /api/users/:id/farm-data. The target must
// be the caller.
//
// @Summary      Replace a user's farm data
// @Tags         profile
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string           true  "User id"
// @Param        body  body      farmDataRequest  true  "Farm data"
// @Success      200   {object}  userResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /api/users/{id}/farm-data [put]
func (h *ProfileHandler) UpdateUserFarmData(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	return h.updateFarmData(c, id, c.Param("id"))
}

func (h *ProfileHandler) updateFarmData(c echo.Context, actor ports.Identity, target string) error {
	var req farmDataRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.profiles.UpdateFarmData(c.Request().Context(), actor, target, *req.FarmData)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userResponse{User: user})
}

// UpdateImage handles PUT /api/auth/profile-image.
//
// @Summary      Replace the caller's profile image
// @Tags         profile
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        profileImage  formData  file  true  "JPEG or PNG image"
// @Success      200   {object}  userResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /api/auth/profile-image [put]
func (h *ProfileHandler) UpdateImage(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	image, err := formUpload(c, "profileImage")
	if err != nil {
		return err
	}
	if image == nil {
		return domain.NewValidationError(domain.FieldError{Field: "profileImage", Message: "profileImage is required"})
	}

	user, err := h.profiles.UpdateProfileImage(c.Request().Context(), id, id.UserID, *image)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userResponse{
		User:    user,
		Message: i18n.T(c, "profile_image_updated", "Profile image updated successfully", nil),
	})
}
