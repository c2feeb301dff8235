package logger

import (
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogConfig holds logger configuration
type LogConfig struct {
	Level       string
	Environment string
	ServiceName string
}

var log *zap.Logger

// InitLogger initializes the logger with configuration
func InitLogger(config *LogConfig) error {
	// Unknown or empty levels fall back to info
	level, err := zapcore.ParseLevel(config.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	built, err := newConfig(config.Environment, level).Build(zap.Fields(
		zap.String("service", config.ServiceName),
		zap.String("environment", config.Environment),
	))
	if err != nil {
		// Nothing to log with yet, the caller decides
		return err
	}

	// Replace the global logger
	log = built
	zap.ReplaceGlobals(log)
	return nil
}

func newConfig(environment string, level zapcore.Level) zap.Config {
	if environment == "production" {
		// JSON output with ISO8601 timestamps
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(level)
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		return cfg
	}

	// Console output with colored levels
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return cfg
}

// GetLogger returns the global logger instance, or a no-op logger before InitLogger runs
func GetLogger() *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}

// Sync flushes buffered entries
func Sync() {
	if log != nil {
		_ = log.Sync()
	}
}

// Middleware returns an Echo middleware that logs HTTP requests
func Middleware() echo.MiddlewareFunc {
	return MiddlewareWith(nil)
}

// MiddlewareWith logs HTTP requests to base, or to the global logger when
// base is nil. Server errors log at error level and client errors at warn.
func MiddlewareWith(base *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			root := base
			if root == nil {
				root = GetLogger()
			}

			// Carry the request ID on the context unless an earlier middleware did
			requestID := c.Request().Header.Get(echo.HeaderXRequestID)
			if requestID == "" {
				requestID = c.Response().Header().Get(echo.HeaderXRequestID)
			}
			ctx := c.Request().Context()
			if len(Fields(ctx)) == 0 && requestID != "" {
				ctx = WithFields(ctx, zap.String("request_id", requestID))
				c.SetRequest(c.Request().WithContext(ctx))
			}

			// Set logger in context
			ctxLogger := For(ctx, root)
			c.Set("logger", ctxLogger)

			// Let echo write the error response so the status is final
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			status := c.Response().Status
			fields := []zap.Field{
				zap.String("method", c.Request().Method),
				zap.String("path", c.Request().URL.Path),
				zap.String("route", c.Path()),
				zap.Int("status", status),
				zap.Int64("bytes_out", c.Response().Size),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", c.RealIP()),
			}
			switch {
			case status >= 500:
				ctxLogger.Error("HTTP Request", append(fields, zap.Error(err))...)
			case status >= 400:
				ctxLogger.Warn("HTTP Request", fields...)
			default:
				ctxLogger.Info("HTTP Request", fields...)
			}
			return nil
		}
	}
}
