package handler

import (
	"net/http"

	"github.com/ServtechRD/SinkerProject26-sub000/internal/service"
	"github.com/ServtechRD/SinkerProject26-sub000/pkg/logger"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ModifiedSubtotalRequest overrides the production subtotal of one row
type ModifiedSubtotalRequest struct {
	ModifiedSubtotal *decimal.Decimal `json:"modified_subtotal" validate:"required"`
}

// InventoryHandler serves /api/inventory-integration
type InventoryHandler struct {
	svc *service.InventoryService
}

// NewInventoryHandler creates the inventory integration handler.
func NewInventoryHandler(svc *service.InventoryService) *InventoryHandler {
	return &InventoryHandler{svc: svc}
}

// Query returns a saved snapshot, or generates a new one when no version is given
func (h *InventoryHandler) Query(c echo.Context) error {
	rows, err := h.svc.Query(c.Request().Context(), service.InventoryQuery{
		Month:     c.QueryParam("month"),
		StartDate: c.QueryParam("start_date"),
		EndDate:   c.QueryParam("end_date"),
		Version:   c.QueryParam("version"),
	})
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(http.StatusOK, rows)
}

// UpdateModifiedSubtotal writes the override as a new row
func (h *InventoryHandler) UpdateModifiedSubtotal(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respond(c, err)
	}
	var req ModifiedSubtotalRequest
	if err := bind(c, &req); err != nil {
		return respond(c, err)
	}

	row, err := h.svc.UpdateModifiedSubtotal(c.Request().Context(), id, *req.ModifiedSubtotal)
	if err != nil {
		return respond(c, err)
	}
	logger.FromEcho(c).Info("Modified subtotal saved",
		zap.Uint("source_id", id),
		zap.Uint("id", row.ID),
		zap.String("version", row.Version))
	return c.JSON(http.StatusOK, row)
}

// Versions lists the month's snapshot versions
func (h *InventoryHandler) Versions(c echo.Context) error {
	versions, err := h.svc.Versions(c.Request().Context(), c.QueryParam("month"))
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(http.StatusOK, versions)
}
