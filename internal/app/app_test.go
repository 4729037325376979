package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cohortcli/internal/config"
	"cohortcli/internal/infrastructure"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := config.Default()
	cfg.Server.Port = 19832
	cfg.Logging.Output = "console"
	cfg.Logging.Level = "error"
	cfg.Security.EnableCORS = false
	cfg.Security.RateLimit.Enabled = false
	cfg.Webhook.Enabled = false
	cfg.Reports.OutputDir = t.TempDir()
	return cfg
}

func newTestApplication(t *testing.T) *Application {
	t.Helper()

	infrastructure.ResetLoggerForTesting()
	app, err := NewApplicationWithConfig(testConfig(t))
	require.NoError(t, err)
	return app
}

func TestNewApplicationWithConfig(t *testing.T) {
	app := newTestApplication(t)

	assert.NotNil(t, app.Config)
	assert.NotNil(t, app.Logger)
	assert.NotNil(t, app.Router)
	assert.NotNil(t, app.Server)
	assert.NotNil(t, app.ReportService)
	assert.NotNil(t, app.Metrics)
	assert.Equal(t, ":19832", app.Server.Addr)
}

func TestRouterHealthEndpoint(t *testing.T) {
	app := newTestApplication(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, Version, body["version"])
}

func TestRouterLivenessEndpoint(t *testing.T) {
	app := newTestApplication(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health/live", nil)
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouterMetricsEndpoint(t *testing.T) {
	app := newTestApplication(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouterSetsRequestID(t *testing.T) {
	app := newTestApplication(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)

	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestGenerateRejectsInvalidBody(t *testing.T) {
	app := newTestApplication(t)

	req := httptest.NewRequest(http.MethodPost, "/api/reports/generate", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/problem+json")
}

func TestListReportsEmpty(t *testing.T) {
	app := newTestApplication(t)

	req := httptest.NewRequest(http.MethodGet, "/api/reports", nil)
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(0), body["count"])
}

func TestStartAndStop(t *testing.T) {
	app := newTestApplication(t)
	app.Server.Addr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, app.Start(ctx, cancel))
	time.Sleep(50 * time.Millisecond)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer stopCancel()
	assert.NoError(t, app.Stop(stopCtx))
}
