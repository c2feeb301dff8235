package handler

import (
	"net/http"

	"github.com/ServtechRD/SinkerProject26-sub000/internal/apperr"
	"github.com/ServtechRD/SinkerProject26-sub000/internal/model"
	"github.com/ServtechRD/SinkerProject26-sub000/internal/store"
	"github.com/labstack/echo/v4"
)

// MaterialHandler serves the material demand stored from PDCA responses
type MaterialHandler struct {
	demands *store.MaterialDemandStore
}

// NewMaterialHandler creates the material demand handler.
func NewMaterialHandler(demands *store.MaterialDemandStore) *MaterialHandler {
	return &MaterialHandler{demands: demands}
}

// List handles GET /api/material-demand?month=
func (h *MaterialHandler) List(c echo.Context) error {
	month := c.QueryParam("month")
	if _, err := model.ParseMonth(month); err != nil {
		return respond(c, apperr.Validation("%s", err.Error()))
	}
	rows, err := h.demands.FindByMonth(c.Request().Context(), nil, month)
	if err != nil {
		return respond(c, err)
	}
	if rows == nil {
		rows = []model.MaterialDemand{}
	}
	return c.JSON(http.StatusOK, rows)
}
