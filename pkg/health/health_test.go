package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthzAlwaysReportsOK(t *testing.T) {
	checker := NewChecker("rooms")
	srv := NewServer(":0", checker)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	srv.httpServer.Handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", rr.Body.String())
}

func TestReadyzReportsNotReadyWhenComponentUnregistered(t *testing.T) {
	checker := NewChecker("rooms", "chars", "users")
	srv := NewServer(":0", checker)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	srv.httpServer.Handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusServiceUnavailable, rr.Code)

	var status Status
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &status))
	assert.Equal(t, "not_ready", status.Status)
	assert.Equal(t, "not registered", status.Components["rooms"])
}

func TestReadyzReportsNotReadyWhenComponentUnhealthy(t *testing.T) {
	checker := NewChecker("rooms", "chars", "users")
	checker.RegisterComponent("rooms", false, "initializing")
	checker.RegisterComponent("chars", true, "preflight complete")
	checker.RegisterComponent("users", true, "preflight complete")

	srv := NewServer(":0", checker)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	srv.httpServer.Handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusServiceUnavailable, rr.Code)

	var status Status
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &status))
	assert.Equal(t, "not_ready", status.Status)
	assert.Contains(t, status.Components["rooms"], "not ready")
}

func TestReadyzReportsReadyWhenAllCriticalComponentsHealthy(t *testing.T) {
	checker := NewChecker("rooms", "chars", "users")
	checker.RegisterComponent("rooms", true, "preflight complete")
	checker.RegisterComponent("chars", true, "preflight complete")
	checker.RegisterComponent("users", true, "preflight complete")

	srv := NewServer(":0", checker)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	srv.httpServer.Handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var status Status
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &status))
	assert.Equal(t, "ready", status.Status)
	assert.Equal(t, "ready", status.Components["rooms"])
}

func TestUpdateComponentFlipsReadiness(t *testing.T) {
	checker := NewChecker("rooms")
	checker.RegisterComponent("rooms", false, "initializing")
	assert.Equal(t, "not_ready", checker.GetReadiness().Status)

	checker.UpdateComponent("rooms", true, "preflight complete")
	assert.Equal(t, "ready", checker.GetReadiness().Status)
}

func TestGetHealthReportsUnhealthyComponent(t *testing.T) {
	checker := NewChecker("rooms")
	checker.RegisterComponent("rooms", false, "disk full")

	status := checker.GetHealth()
	assert.Equal(t, "unhealthy", status.Status)
	assert.Contains(t, status.Components["rooms"], "disk full")
}

func TestMetricsEndpointIsMounted(t *testing.T) {
	checker := NewChecker("rooms")
	srv := NewServer(":0", checker)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	srv.httpServer.Handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "boris_")
}

func TestCloseShutsDownCleanly(t *testing.T) {
	checker := NewChecker("rooms")
	srv := NewServer(":0", checker)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	require.NoError(t, srv.Close())
	assert.NoError(t, <-errCh)
}
