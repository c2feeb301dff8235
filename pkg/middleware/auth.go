package middleware

import (
	"net/http"
	"strings"

	"github.com/ServtechRD/SinkerProject26-sub000/pkg/jwtutil"
	"github.com/ServtechRD/SinkerProject26-sub000/pkg/logger"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// UserContextKey is where validated claims are stored on the echo context
const UserContextKey = "user"

// JWTAuthMiddleware creates a middleware that validates JWT tokens
func JWTAuthMiddleware(jwtUtil *jwtutil.JWTUtil) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromEcho(c)

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				log.Warn("Missing authorization header")
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Missing authorization header"})
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				log.Warn("Invalid authorization header format")
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid authorization header format"})
			}

			claims, err := jwtUtil.ValidateToken(parts[1])
			if err != nil {
				log.Warn("Invalid or expired token", zap.Error(err))
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid or expired token"})
			}

			ctx := logger.WithFields(c.Request().Context(), zap.Uint("user_id", claims.UserID))
			c.SetRequest(c.Request().WithContext(ctx))
			c.Set(UserContextKey, claims)
			c.Set("logger", logger.For(ctx, logger.GetLogger()))
			log.Debug("JWT token validated successfully",
				zap.Uint("user_id", claims.UserID),
				zap.String("role", claims.Role))

			return next(c)
		}
	}
}

// RequireRole rejects authenticated callers whose role differs from role
func RequireRole(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := c.Get(UserContextKey).(*jwtutil.UserClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Missing user context"})
			}
			if claims.Role != role {
				logger.FromEcho(c).Warn("Role check failed",
					zap.Uint("user_id", claims.UserID),
					zap.String("role", claims.Role),
					zap.String("required", role))
				return c.JSON(http.StatusForbidden, map[string]string{"error": "Insufficient role"})
			}
			return next(c)
		}
	}
}
