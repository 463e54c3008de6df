package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func serveHealth(h *HealthHandler, path string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/readyz", h.Readiness)
	r.GET("/health", h.Health)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestReadiness(t *testing.T) {
	h := NewHealthHandler(pingFunc(func(context.Context) error { return nil }), "mongo", "1.2.3")
	h.AddCheck("redis", func(context.Context) error { return errors.New("connection refused") })

	w := serveHealth(h, "/readyz")
	require.Equal(t, http.StatusOK, w.Code)

	var res readinessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, "healthy", res.Status)
	assert.Equal(t, "mongo", res.Store)
	assert.Equal(t, "1.2.3", res.Version)
	assert.Equal(t, "healthy", res.Checks["store"])
	assert.Equal(t, "unhealthy: connection refused", res.Checks["redis"])
}

func TestReadinessStoreDown(t *testing.T) {
	h := NewHealthHandler(pingFunc(func(context.Context) error { return errors.New("no primary") }), "mongo", "dev")

	w := serveHealth(h, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"store":"unhealthy: no primary"`)

	w = serveHealth(h, "/health")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"status":"unhealthy","error":"store unavailable"}`, w.Body.String())
}
