package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/farmguardian/farm-guardian/internal/core/ports"
)

// ComplianceHandler handles HTTP requests for compliance check records.
type ComplianceHandler struct {
	service ports.ComplianceService
}

func NewComplianceHandler(service ports.ComplianceService) *ComplianceHandler {
	return &ComplianceHandler{service: service}
}

// Create handles POST /api/compliance.
//
// @Summary      Record a compliance check
// @Tags         compliance
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      ports.ComplianceInput  true  "Compliance check"
// @Success      201   {object}  domain.Compliance
// @Failure      400   {object}  errorResponse
// @Router       /api/compliance [post]
func (h *ComplianceHandler) Create(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	var req ports.ComplianceInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	rec, err := h.service.Create(c.Request().Context(), id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, rec)
}

// List handles GET /api/compliance.
//
// @Summary      List compliance checks
// @Tags         compliance
// @Produce      json
// @Security     BearerAuth
// @Param        farm    query     string  false  "Farm id"
// @Param        status  query     string  false  "Check status"
// @Success      200     {array}   domain.Compliance
// @Router       /api/compliance [get]
func (h *ComplianceHandler) List(c echo.Context) error {
	recs, err := h.service.List(c.Request().Context(), ports.ComplianceFilter{
		FarmID: c.QueryParam("farm"),
		Status: c.QueryParam("status"),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, recs)
}

// Get handles GET /api/compliance/:id.
//
// @Summary      Get a compliance check
// @Tags         compliance
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Compliance record id"
// @Success      200  {object}  domain.Compliance
// @Failure      404  {object}  errorResponse
// @Router       /api/compliance/{id} [get]
func (h *ComplianceHandler) Get(c echo.Context) error {
	rec, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rec)
}

// Update handles PUT /api/compliance/:id.
//
// @Summary      Update a compliance check
// @Tags         compliance
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                 true  "Compliance record id"
// @Param        body  body      ports.ComplianceInput  true  "Compliance check"
// @Success      200   {object}  domain.Compliance
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/compliance/{id} [put]
func (h *ComplianceHandler) Update(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	var req ports.ComplianceInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	rec, err := h.service.Update(c.Request().Context(), id, c.Param("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rec)
}

// Delete handles DELETE /api/compliance/:id.
//
// @Summary      Delete a compliance check
// @Tags         compliance
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Compliance record id"
// @Success      200  {object}  deletedResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/compliance/{id} [delete]
func (h *ComplianceHandler) Delete(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), id, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, deletedResponse{Success: true})
}
