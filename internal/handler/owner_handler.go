package handler

import (
	"net/http"

	"github.com/ServtechRD/SinkerProject26-sub000/internal/service"
	"github.com/labstack/echo/v4"
)

// AssignChannelsRequest replaces the channels a user owns
type AssignChannelsRequest struct {
	Channels []string `json:"channels" validate:"dive,required"`
}

// OwnerHandler serves /api/channel-owners
type OwnerHandler struct {
	svc *service.OwnershipService
}

// NewOwnerHandler creates the channel ownership handler.
func NewOwnerHandler(svc *service.OwnershipService) *OwnerHandler {
	return &OwnerHandler{svc: svc}
}

// Assign handles PUT /api/channel-owners/:user_id
func (h *OwnerHandler) Assign(c echo.Context) error {
	userID, err := paramID(c, "user_id")
	if err != nil {
		return respond(c, err)
	}
	var req AssignChannelsRequest
	if err := bind(c, &req); err != nil {
		return respond(c, err)
	}
	channels, err := h.svc.Assign(c.Request().Context(), userID, req.Channels)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"user_id":  userID,
		"channels": channels,
	})
}

// Get handles GET /api/channel-owners/:user_id
func (h *OwnerHandler) Get(c echo.Context) error {
	userID, err := paramID(c, "user_id")
	if err != nil {
		return respond(c, err)
	}
	channels, err := h.svc.Channels(c.Request().Context(), userID)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"user_id":  userID,
		"channels": channels,
	})
}
