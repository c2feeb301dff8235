package middleware

import (
	"github.com/ServtechRD/SinkerProject26-sub000/pkg/logger"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// maxRequestIDLen bounds ids accepted from callers.
const maxRequestIDLen = 64

// RequestIDMiddleware reuses the caller's X-Request-ID or mints one, echoes it
// on the response and attaches it to the request context for every logger
// derived from it.
func RequestIDMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			requestID := req.Header.Get(echo.HeaderXRequestID)
			if requestID == "" || len(requestID) > maxRequestIDLen {
				requestID = uuid.NewString()
				req.Header.Set(echo.HeaderXRequestID, requestID)
			}
			c.Response().Header().Set(echo.HeaderXRequestID, requestID)

			ctx := logger.WithFields(req.Context(), zap.String("request_id", requestID))
			c.SetRequest(req.WithContext(ctx))
			c.Set("logger", logger.For(ctx, logger.GetLogger()))

			return next(c)
		}
	}
}
