package handler

import (
	"net/http"

	"github.com/ServtechRD/SinkerProject26-sub000/pkg/database"
	"github.com/ServtechRD/SinkerProject26-sub000/pkg/logger"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Health reports whether the database answers.
func Health(db *gorm.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := database.Ping(db); err != nil {
			logger.FromEcho(c).Error("Health check failed", zap.Error(err))
			return c.JSON(http.StatusServiceUnavailable, echo.Map{
				"status": "unavailable",
				"error":  "database unreachable",
			})
		}
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	}
}
