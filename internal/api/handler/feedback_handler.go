package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/farmguardian/farm-guardian/internal/core/ports"
)

// FeedbackHandler handles HTTP requests for user feedback.
type FeedbackHandler struct {
	service ports.FeedbackService
}

func NewFeedbackHandler(service ports.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{service: service}
}

// Submit handles POST /api/feedback.
//
// @Summary      Submit feedback
// @Tags         feedback
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      ports.FeedbackInput  true  "Feedback"
// @Success      201   {object}  domain.Feedback
// @Failure      400   {object}  errorResponse
// @Router       /api/feedback [post]
func (h *FeedbackHandler) Submit(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	var req ports.FeedbackInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	fb, err := h.service.Submit(c.Request().Context(), id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, fb)
}

// List handles GET /api/feedback (admin).
//
// @Summary      List feedback
// @Tags         feedback
// @Produce      json
// @Security     BearerAuth
// @Param        user  query     string  false  "Author user id"
// @Success      200   {array}   domain.Feedback
// @Failure      403   {object}  errorResponse
// @Router       /api/feedback [get]
func (h *FeedbackHandler) List(c echo.Context) error {
	items, err := h.service.List(c.Request().Context(), ports.FeedbackFilter{UserID: c.QueryParam("user")})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

// Get handles GET /api/feedback/:id. Author or admin only.
//
// @Summary      Get feedback
// @Tags         feedback
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Feedback id"
// @Success      200  {object}  domain.Feedback
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/feedback/{id} [get]
func (h *FeedbackHandler) Get(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	fb, err := h.service.Get(c.Request().Context(), id, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, fb)
}

// Update handles PUT /api/feedback/:id. Author or admin only.
//
// @Summary      Edit feedback
// @Tags         feedback
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Feedback id"
// @Param        body  body      ports.FeedbackInput  true  "Feedback"
// @Success      200   {object}  domain.Feedback
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/feedback/{id} [put]
func (h *FeedbackHandler) Update(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	var req ports.FeedbackInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	fb, err := h.service.Update(c.Request().Context(), id, c.Param("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, fb)
}

// Delete handles DELETE /api/feedback/:id. Author or admin only.
//
// @Summary      Delete feedback
// @Tags         feedback
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Feedback id"
// @Success      200  {object}  deletedResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/feedback/{id} [delete]
func (h *FeedbackHandler) Delete(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), id, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, deletedResponse{Success: true})
}
