// Package handler exposes the planner over HTTP.
package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/ServtechRD/SinkerProject26-sub000/internal/access"
	"github.com/ServtechRD/SinkerProject26-sub000/internal/apperr"
	"github.com/ServtechRD/SinkerProject26-sub000/pkg/jwtutil"
	"github.com/ServtechRD/SinkerProject26-sub000/pkg/logger"
	"github.com/ServtechRD/SinkerProject26-sub000/pkg/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// CustomValidator plugs validator/v10 into echo's c.Validate.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates the request validator.
func NewValidator() *CustomValidator {
	return &CustomValidator{validator: validator.New()}
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// validationDetails flattens validator errors into "field: tag" lines.
func validationDetails(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			out = append(out, fmt.Sprintf("%s: %s=%s", fe.Field(), fe.Tag(), fe.Param()))
			continue
		}
		out = append(out, fmt.Sprintf("%s: %s", fe.Field(), fe.Tag()))
	}
	return out
}

// bind decodes and validates the request body into req.
func bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return apperr.Validation("Invalid request data")
	}
	if err := c.Validate(req); err != nil {
		return apperr.Validation("Invalid request data").WithDetails(validationDetails(err)...)
	}
	return nil
}

// respond writes err as {"error", "code", "details"} with the status of its kind.
func respond(c echo.Context, err error) error {
	log := logger.FromEcho(c)

	e, ok := apperr.As(err)
	if !ok {
		e = apperr.Internal(err, "unexpected error")
	}

	if e.Kind == apperr.KindInternal {
		log.Error("Request failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Internal server error",
			"code":  e.Code,
		})
	}

	log.Warn("Request rejected",
		zap.String("kind", e.Kind.String()),
		zap.String("code", e.Code),
		zap.String("message", e.Message))
	body := echo.Map{
		"error": e.Message,
		"code":  e.Code,
	}
	if len(e.Details) > 0 {
		body["details"] = e.Details
	}
	return c.JSON(e.Kind.Status(), body)
}

// actor reads the authenticated caller set by the JWT middleware.
func actor(c echo.Context) (access.Actor, error) {
	claims, ok := c.Get(middleware.UserContextKey).(*jwtutil.UserClaims)
	if !ok {
		return access.Actor{}, apperr.Internal(errors.New("missing user claims"), "user context not set")
	}
	return access.Actor{UserID: claims.UserID, Role: claims.Role}, nil
}

func paramID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Validation("invalid %s %q", name, c.Param(name))
	}
	return uint(id), nil
}
