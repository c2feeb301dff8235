package logger

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestMiddlewareLevelFollowsStatus(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)

	e := echo.New()
	e.Use(MiddlewareWith(zap.New(core)))
	e.GET("/ok", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/boom", func(c echo.Context) error { return errors.New("boom") })

	tests := []struct {
		path  string
		level zapcore.Level
	}{
		{"/ok", zap.InfoLevel},
		{"/missing", zap.WarnLevel},
		{"/boom", zap.ErrorLevel},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, tt.path, nil)
		req.Header.Set(echo.HeaderXRequestID, "req-"+tt.path)
		e.ServeHTTP(httptest.NewRecorder(), req)
	}

	entries := logs.FilterMessage("HTTP Request").All()
	if len(entries) != len(tests) {
		t.Fatalf("expected %d entries, got %d", len(tests), len(entries))
	}
	for i, tt := range tests {
		if entries[i].Level != tt.level {
			t.Errorf("%s: expected level %s, got %s", tt.path, tt.level, entries[i].Level)
		}
		if got := entries[i].ContextMap()["request_id"]; got != "req-"+tt.path {
			t.Errorf("%s: expected request id, got %v", tt.path, got)
		}
	}
}

func TestInitLoggerFallsBackToInfo(t *testing.T) {
	if err := InitLogger(&LogConfig{Level: "verbose", Environment: "production", ServiceName: "planner-test"}); err != nil {
		t.Fatalf("InitLogger: %v", err)
	}
	l := GetLogger()
	if l.Core().Enabled(zap.DebugLevel) || !l.Core().Enabled(zap.InfoLevel) {
		t.Error("expected info level after an unknown level name")
	}
}
