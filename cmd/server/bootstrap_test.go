package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/charlesng35/otpdash/internal/app"
)

func testConfig(t *testing.T) *app.Config {
	t.Helper()

	cfg, err := app.LoadConfig(t.TempDir())
	require.NoError(t, err)

	cfg.Database.Driver = "sqlite"
	cfg.Database.Path = filepath.Join(t.TempDir(), "otpdash.sqlite")
	cfg.Email.Provider = app.EmailProviderLog

	_, err = app.ApplyRuntimeDefaults(cfg)
	require.NoError(t, err)
	return cfg
}

func TestBootstrapRuntimeServesHealth(t *testing.T) {
	cfg := testConfig(t)

	stack, err := bootstrapRuntime(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { stack.Shutdown(context.Background(), zap.NewNop()) })

	require.NotNil(t, stack.OTPSvc)
	require.NotNil(t, stack.RateStore)

	rec := httptest.NewRecorder()
	stack.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	stack.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/auth", rec.Header().Get("Location"))
}

func TestBootstrapRuntimeRejectsUnknownMailProvider(t *testing.T) {
	cfg := testConfig(t)
	cfg.Email.Provider = "pigeon"

	_, err := bootstrapRuntime(cfg, zap.NewNop())
	require.ErrorContains(t, err, "initialise mailer")
}

func TestBootstrapRuntimeRejectsUnknownDriver(t *testing.T) {
	cfg := testConfig(t)
	cfg.Database.Driver = "oracle"

	_, err := bootstrapRuntime(cfg, zap.NewNop())
	require.ErrorContains(t, err, "open database")
}

func TestLoadApplicationConfig(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte("server:\n  port: 9191\n"), 0o600))

	cfg, err := loadApplicationConfig(dir)
	require.NoError(t, err)
	require.Equal(t, 9191, cfg.Server.Port)

	cfg, err = loadApplicationConfig(file)
	require.NoError(t, err)
	require.Equal(t, 9191, cfg.Server.Port)

	_, err = loadApplicationConfig(filepath.Join(dir, "missing"))
	require.ErrorContains(t, err, "does not exist")
}

func TestDashboardURL(t *testing.T) {
	require.Equal(t, "https://dash.example.com/dashboard", dashboardURL("https://dash.example.com/"))
	require.Equal(t, "/dashboard", dashboardURL("  "))
}

func TestRuntimeStackShutdownNil(t *testing.T) {
	var stack *runtimeStack
	stack.Shutdown(context.Background(), zap.NewNop())
}
