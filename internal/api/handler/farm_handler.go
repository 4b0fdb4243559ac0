package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/farmguardian/farm-guardian/internal/core/ports"
)

// FarmHandler handles HTTP requests for farm records.
type FarmHandler struct {
	service ports.FarmService
}

func NewFarmHandler(service ports.FarmService) *FarmHandler {
	return &FarmHandler{service: service}
}

// Create handles POST /api/farms. The caller becomes the owner.
//
// @Summary      Create a farm
// @Tags         farms
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      ports.FarmInput  true  "Farm"
// @Success      201   {object}  domain.Farm
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /api/farms [post]
func (h *FarmHandler) Create(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	var req ports.FarmInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	farm, err := h.service.Create(c.Request().Context(), id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, farm)
}

// List handles GET /api/farms.
//
// @Summary      List farms
// @Tags         farms
// @Produce      json
// @Security     BearerAuth
// @Param        owner  query     string  false  "Owner user id"
// @Param        type   query     string  false  "Farm type (poultry, pig)"
// @Success      200    {array}   domain.Farm
// @Failure      401    {object}  errorResponse
// @Router       /api/farms [get]
func (h *FarmHandler) List(c echo.Context) error {
	farms, err := h.service.List(c.Request().Context(), ports.FarmFilter{
		OwnerID: c.QueryParam("owner"),
		Type:    c.QueryParam("type"),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, farms)
}

// Get handles GET /api/farms/:id.
//
// @Summary      Get a farm
// @Tags         farms
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Farm id"
// @Success      200  {object}  domain.Farm
// @Failure      404  {object}  errorResponse
// @Router       /api/farms/{id} [get]
func (h *FarmHandler) Get(c echo.Context) error {
	farm, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, farm)
}

// Update handles PUT /api/farms/:id. Owner or admin only.
//
// @Summary      Update a farm
// @Tags         farms
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string           true  "Farm id"
// @Param        body  body      ports.FarmInput  true  "Farm"
// @Success      200   {object}  domain.Farm
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/farms/{id} [put]
func (h *FarmHandler) Update(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	var req ports.FarmInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	farm, err := h.service.Update(c.Request().Context(), id, c.Param("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, farm)
}

// Delete handles DELETE /api/farms/:id. Owner or admin only.
//
// @Summary      Delete a farm
// @Tags         farms
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Farm id"
// @Success      200  {object}  deletedResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/farms/{id} [delete]
func (h *FarmHandler) Delete(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), id, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, deletedResponse{Success: true})
}
