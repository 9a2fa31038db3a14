package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/bundlekit/internal/api/middleware"
	"github.com/GriffinCanCode/bundlekit/internal/infrastructure/config"
)

const manifestJSON = `{
  "app": {"bundleName": "com.example.clock", "versionCode": 1},
  "module": {"name": "entry", "type": "entry", "abilities": [{"name": "ClockAbility"}]}
}`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Logging.Level = "error"
	cfg.RateLimit.Enabled = false
	cfg.Store.Enabled = true
	cfg.Store.Dir = t.TempDir()
	return cfg
}

func serve(s *Server, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestNewServerSeedsManifests(t *testing.T) {
	cfg := testConfig(t)
	cfg.Manifests.Dir = t.TempDir()
	path := filepath.Join(cfg.Manifests.Dir, "clock", "entry", "module.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(manifestJSON), 0o644))

	srv, err := NewServer(context.Background(), cfg)
	require.NoError(t, err)
	defer srv.Close()

	assert.Equal(t, 1, srv.Manager().Count())

	w := serve(srv, "GET", "/bundles/com.example.clock?flags=ability")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ClockAbility")
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
}

func TestNewServerRestoresSnapshots(t *testing.T) {
	cfg := testConfig(t)
	cfg.Manifests.Dir = t.TempDir()
	path := filepath.Join(cfg.Manifests.Dir, "module.json")
	require.NoError(t, os.WriteFile(path, []byte(manifestJSON), 0o644))

	first, err := NewServer(context.Background(), cfg)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	cfg.Manifests.Dir = ""
	second, err := NewServer(context.Background(), cfg)
	require.NoError(t, err)
	defer second.Close()

	assert.Equal(t, []string{"com.example.clock"}, second.Manager().Bundles())
}

func TestServerRoutes(t *testing.T) {
	cfg := testConfig(t)
	cfg.Store.Enabled = false

	srv, err := NewServer(context.Background(), cfg)
	require.NoError(t, err)
	defer srv.Close()

	assert.Equal(t, http.StatusOK, serve(srv, "GET", "/health").Code)
	assert.Equal(t, http.StatusOK, serve(srv, "GET", "/metrics").Code)
	assert.Equal(t, http.StatusNotFound, serve(srv, "GET", "/bundles/com.example.none").Code)
}

func TestNewServerInvalidLogLevel(t *testing.T) {
	cfg := testConfig(t)
	cfg.Logging.Level = "verbose"

	_, err := NewServer(context.Background(), cfg)
	assert.Error(t, err)
}
