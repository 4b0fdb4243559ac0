package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/farmguardian/farm-guardian/internal/core/ports"
)

// AlertHandler handles HTTP requests for disease alerts.
type AlertHandler struct {
	service ports.AlertService
}

func NewAlertHandler(service ports.AlertService) *AlertHandler {
	return &AlertHandler{service: service}
}

// Create handles POST /api/alerts (vet or admin).
//
// @Summary      Raise a disease alert
// @Tags         alerts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      ports.AlertInput  true  "Alert"
// @Success      201   {object}  domain.Alert
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /api/alerts [post]
func (h *AlertHandler) Create(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	var req ports.AlertInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	alert, err := h.service.Create(c.Request().Context(), id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, alert)
}

// List handles GET /api/alerts, newest first.
//
// @Summary      List alerts
// @Tags         alerts
// @Produce      json
// @Security     BearerAuth
// @Param        farm      query     string  false  "Farm id"
// @Param        severity  query     string  false  "low, medium or high"
// @Success      200       {array}   domain.Alert
// @Router       /api/alerts [get]
func (h *AlertHandler) List(c echo.Context) error {
	alerts, err := h.service.List(c.Request().Context(), ports.AlertFilter{
		FarmID:   c.QueryParam("farm"),
		Severity: c.QueryParam("severity"),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, alerts)
}

// Get handles GET /api/alerts/:id.
//
// @Summary      Get an alert
// @Tags         alerts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Alert id"
// @Success      200  {object}  domain.Alert
// @Failure      404  {object}  errorResponse
// @Router       /api/alerts/{id} [get]
func (h *AlertHandler) Get(c echo.Context) error {
	alert, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, alert)
}

// Update handles PUT /api/alerts/:id (vet or admin).
//
// @Summary      Update an alert
// @Tags         alerts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string            true  "Alert id"
// @Param        body  body      ports.AlertInput  true  "Alert"
// @Success      200   {object}  domain.Alert
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/alerts/{id} [put]
func (h *AlertHandler) Update(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	var req ports.AlertInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	alert, err := h.service.Update(c.Request().Context(), id, c.Param("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, alert)
}

// Delete handles DELETE /api/alerts/:id (vet or admin).
//
// @Summary      Delete an alert
// @Tags         alerts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Alert id"
// @Success      200  {object}  deletedResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/alerts/{id} [delete]
func (h *AlertHandler) Delete(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), id, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, deletedResponse{Success: true})
}
