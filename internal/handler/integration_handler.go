package handler

import (
	"net/http"

	"github.com/ServtechRD/SinkerProject26-sub000/internal/channel"
	"github.com/ServtechRD/SinkerProject26-sub000/internal/service"
	"github.com/labstack/echo/v4"
)

// IntegrationHandler serves the consolidated forecast view
type IntegrationHandler struct {
	svc *service.IntegrationService
}

// NewIntegrationHandler creates the channel integration handler.
func NewIntegrationHandler(svc *service.IntegrationService) *IntegrationHandler {
	return &IntegrationHandler{svc: svc}
}

// Query handles GET /api/sales-forecast/integration
func (h *IntegrationHandler) Query(c echo.Context) error {
	res, err := h.svc.Query(c.Request().Context(), c.QueryParam("month"), c.QueryParam("version"))
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// ListChannels returns the canonical channels and their aliases
func ListChannels(c echo.Context) error {
	return c.JSON(http.StatusOK, channel.List())
}
