package handler

import (
	"github.com/ServtechRD/SinkerProject26-sub000/pkg/jwtutil"
	mid "github.com/ServtechRD/SinkerProject26-sub000/pkg/middleware"
	"github.com/labstack/echo/v4"
)

// Handlers groups every resource handler.
type Handlers struct {
	Forecast    *ForecastHandler
	Integration *IntegrationHandler
	Inventory   *InventoryHandler
	Month       *MonthHandler
	Owner       *OwnerHandler
	Material    *MaterialHandler
}

// Register mounts the authenticated API under /api.
func Register(e *echo.Echo, h Handlers, jwtUtil *jwtutil.JWTUtil, adminRole string) {
	api := e.Group("/api", mid.JWTAuthMiddleware(jwtUtil))
	adminOnly := mid.RequireRole(adminRole)

	api.GET("/channels", ListChannels)

	forecast := api.Group("/sales-forecast")
	forecast.GET("", h.Forecast.List)
	forecast.POST("", h.Forecast.Create)
	forecast.PUT("/:id", h.Forecast.Update)
	forecast.DELETE("/:id", h.Forecast.Delete)
	forecast.GET("/versions", h.Forecast.Versions)
	forecast.POST("/upload", h.Forecast.Upload)
	forecast.GET("/template", h.Forecast.Template)
	forecast.GET("/integration", h.Integration.Query)

	config := forecast.Group("/config", adminOnly)
	config.GET("", h.Month.List)
	config.POST("", h.Month.Create)
	config.PUT("/:id", h.Month.Update)

	inventory := api.Group("/inventory-integration")
	inventory.GET("", h.Inventory.Query)
	inventory.PUT("/:id", h.Inventory.UpdateModifiedSubtotal)
	inventory.GET("/versions", h.Inventory.Versions)

	api.GET("/material-demand", h.Material.List)

	owners := api.Group("/channel-owners", adminOnly)
	owners.GET("/:user_id", h.Owner.Get)
	owners.PUT("/:user_id", h.Owner.Assign)
}
