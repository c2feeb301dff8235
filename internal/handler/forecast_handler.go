package handler

import (
	"net/http"

	"github.com/ServtechRD/SinkerProject26-sub000/internal/apperr"
	"github.com/ServtechRD/SinkerProject26-sub000/internal/excel"
	"github.com/ServtechRD/SinkerProject26-sub000/internal/service"
	"github.com/ServtechRD/SinkerProject26-sub000/pkg/logger"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ForecastRequest defines the structure for manual forecast creation
type ForecastRequest struct {
	Month             string           `json:"month" validate:"required,len=6,numeric"`
	Channel           string           `json:"channel" validate:"required"`
	Category          string           `json:"category"`
	Spec              string           `json:"spec"`
	ProductCode       string           `json:"product_code" validate:"required"`
	ProductName       string           `json:"product_name"`
	WarehouseLocation string           `json:"warehouse_location"`
	Quantity          *decimal.Decimal `json:"quantity" validate:"required"`
}

// QuantityRequest defines the structure for forecast quantity updates
type QuantityRequest struct {
	Quantity *decimal.Decimal `json:"quantity" validate:"required"`
}

// ForecastHandler serves /api/sales-forecast
type ForecastHandler struct {
	svc *service.ForecastService
}

// NewForecastHandler creates the forecast handler.
func NewForecastHandler(svc *service.ForecastService) *ForecastHandler {
	return &ForecastHandler{svc: svc}
}

// Create handles manual creation of one forecast row
func (h *ForecastHandler) Create(c echo.Context) error {
	log := logger.FromEcho(c)

	var req ForecastRequest
	if err := bind(c, &req); err != nil {
		return respond(c, err)
	}
	who, err := actor(c)
	if err != nil {
		return respond(c, err)
	}

	log.Info("Forecast creation request",
		zap.String("month", req.Month),
		zap.String("channel", req.Channel),
		zap.String("product_code", req.ProductCode))

	line, err := h.svc.Create(c.Request().Context(), who, service.CreateForecastRequest{
		Month:             req.Month,
		Channel:           req.Channel,
		Category:          req.Category,
		Spec:              req.Spec,
		ProductCode:       req.ProductCode,
		ProductName:       req.ProductName,
		WarehouseLocation: req.WarehouseLocation,
		Quantity:          *req.Quantity,
	})
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(http.StatusCreated, line)
}

// Update handles quantity changes of one forecast row
func (h *ForecastHandler) Update(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respond(c, err)
	}
	var req QuantityRequest
	if err := bind(c, &req); err != nil {
		return respond(c, err)
	}
	who, err := actor(c)
	if err != nil {
		return respond(c, err)
	}

	line, err := h.svc.Update(c.Request().Context(), who, id, *req.Quantity)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(http.StatusOK, line)
}

// Delete handles removal of one forecast row
func (h *ForecastHandler) Delete(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respond(c, err)
	}
	who, err := actor(c)
	if err != nil {
		return respond(c, err)
	}

	if err := h.svc.Delete(c.Request().Context(), who, id); err != nil {
		return respond(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// List handles retrieving one channel's rows for a version
func (h *ForecastHandler) List(c echo.Context) error {
	who, err := actor(c)
	if err != nil {
		return respond(c, err)
	}

	lines, err := h.svc.List(c.Request().Context(), who,
		c.QueryParam("month"), c.QueryParam("channel"), c.QueryParam("version"))
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(http.StatusOK, lines)
}

// Versions handles listing one channel's versions
func (h *ForecastHandler) Versions(c echo.Context) error {
	who, err := actor(c)
	if err != nil {
		return respond(c, err)
	}

	versions, err := h.svc.Versions(c.Request().Context(), who, c.QueryParam("month"), c.QueryParam("channel"))
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(http.StatusOK, versions)
}

// Upload handles a multipart spreadsheet replacing one (month, channel)
func (h *ForecastHandler) Upload(c echo.Context) error {
	log := logger.FromEcho(c)

	who, err := actor(c)
	if err != nil {
		return respond(c, err)
	}
	header, err := c.FormFile("file")
	if err != nil {
		return respond(c, apperr.Validation("file is required"))
	}
	file, err := header.Open()
	if err != nil {
		return respond(c, apperr.Internal(err, "open uploaded file"))
	}
	defer file.Close()

	month, ch := c.FormValue("month"), c.FormValue("channel")
	log.Info("Forecast upload request",
		zap.String("month", month),
		zap.String("channel", ch),
		zap.String("file_name", header.Filename),
		zap.Int64("size", header.Size))

	res, err := h.svc.Upload(c.Request().Context(), who, service.UploadRequest{
		Month:    month,
		Channel:  ch,
		FileName: header.Filename,
		File:     file,
	})
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// Template serves the upload workbook template
func (h *ForecastHandler) Template(c echo.Context) error {
	data, err := h.svc.Template()
	if err != nil {
		return respond(c, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="sales_forecast_template.xlsx"`)
	return c.Blob(http.StatusOK, excel.ContentType, data)
}
