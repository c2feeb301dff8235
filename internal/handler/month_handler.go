package handler

import (
	"net/http"

	"github.com/ServtechRD/SinkerProject26-sub000/internal/service"
	"github.com/labstack/echo/v4"
)

// CreateMonthsRequest defines a month range to configure
type CreateMonthsRequest struct {
	StartMonth string `json:"start_month" validate:"required,len=6,numeric"`
	EndMonth   string `json:"end_month" validate:"required,len=6,numeric"`
}

// UpdateMonthRequest changes one month configuration
type UpdateMonthRequest struct {
	AutoCloseDay *int  `json:"auto_close_day" validate:"omitempty,min=1,max=31"`
	IsClosed     *bool `json:"is_closed"`
}

// MonthHandler serves /api/sales-forecast/config
type MonthHandler struct {
	svc *service.MonthService
}

// NewMonthHandler creates the month configuration handler.
func NewMonthHandler(svc *service.MonthService) *MonthHandler {
	return &MonthHandler{svc: svc}
}

func (h *MonthHandler) List(c echo.Context) error {
	months, err := h.svc.ListMonths(c.Request().Context())
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(http.StatusOK, months)
}

func (h *MonthHandler) Create(c echo.Context) error {
	var req CreateMonthsRequest
	if err := bind(c, &req); err != nil {
		return respond(c, err)
	}
	res, err := h.svc.CreateMonths(c.Request().Context(), req.StartMonth, req.EndMonth)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}

func (h *MonthHandler) Update(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respond(c, err)
	}
	var req UpdateMonthRequest
	if err := bind(c, &req); err != nil {
		return respond(c, err)
	}
	cfg, err := h.svc.UpdateMonth(c.Request().Context(), id, service.UpdateMonthRequest{
		AutoCloseDay: req.AutoCloseDay,
		IsClosed:     req.IsClosed,
	})
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(http.StatusOK, cfg)
}
