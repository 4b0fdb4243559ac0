package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/farmguardian/farm-guardian/internal/core/ports"
)

// AssessmentHandler scores biosecurity questionnaires.
type AssessmentHandler struct {
	service ports.AssessmentService
}

func NewAssessmentHandler(service ports.AssessmentService) *AssessmentHandler {
	return &AssessmentHandler{service: service}
}

// Assess handles POST /api/assessments.
//
// @Summary      Score a biosecurity questionnaire
// @Tags         assessments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      ports.AssessmentInput  true  "Fifteen answers, each 0 to 20"
// @Success      201   {object}  domain.Assessment
// @Failure      400   {object}  errorResponse
// @Router       /api/assessments [post]
func (h *AssessmentHandler) Assess(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	var req ports.AssessmentInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	a, err := h.service.Assess(c.Request().Context(), id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, a)
}

// List handles GET /api/assessments: the caller's own history.
//
// @Summary      List my assessments
// @Tags         assessments
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Assessment
// @Router       /api/assessments [get]
func (h *AssessmentHandler) List(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	items, err := h.service.List(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

// Get handles GET /api/assessments/:id.
//
// @Summary      Get one of my assessments
// @Tags         assessments
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Assessment id"
// @Success      200  {object}  domain.Assessment
// @Failure      404  {object}  errorResponse
// @Router       /api/assessments/{id} [get]
func (h *AssessmentHandler) Get(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	a, err := h.service.Get(c.Request().Context(), id, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}
