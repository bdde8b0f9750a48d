package main

import (
	"compress/gzip"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomiwa-dev/naijapulse/internal/config"
)

func newTestApp(t *testing.T) (*app, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Default()
	cfg.Storage.DataDir = t.TempDir()
	cfg.Feed.Seed = 42
	cfg.Feed.MentionsPerDay = 4
	cfg.Cache.TTL = time.Minute
	cfg.Auth.JWTSecret = "test-secret"

	a, err := newApp(cfg)
	require.NoError(t, err)
	t.Cleanup(a.close)

	return a, a.router()
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", path, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	_, r := newTestApp(t)

	w := get(r, "/health")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])

	feedInfo := body["feed"].(map[string]interface{})
	assert.Equal(t, "closed", feedInfo["breaker"])
	assert.Contains(t, body, "database")
}

func TestMetricsEndpoint(t *testing.T) {
	_, r := newTestApp(t)

	// A prior request gives the counters something to count.
	get(r, "/health")

	w := get(r, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)

	var stats map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.NotEmpty(t, stats)
}

func TestSecurityAndRateLimitHeaders(t *testing.T) {
	_, r := newTestApp(t)

	w := get(r, "/health")
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, w.Header().Get("X-RateLimit-Limit"))
	assert.NotEmpty(t, w.Header().Get("X-RateLimit-Remaining"))
}

func TestChartEndpointServedFromCache(t *testing.T) {
	a, r := newTestApp(t)

	first := get(r, "/api/v1/mentions?days=2")
	require.Equal(t, http.StatusOK, first.Code)

	second := get(r, "/api/v1/mentions?days=2")
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())

	assert.Greater(t, a.cache.Size(), 0, "chart response should be cached")
}

func TestSessionFlowThroughFullStack(t *testing.T) {
	_, r := newTestApp(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/session", nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	var session map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &session))
	token := session["token"]
	require.NotEmpty(t, token)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("POST", "/api/v1/filters/states/toggle?value=Lagos", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Lagos")

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/api/v1/preferences", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Lagos")
}

func TestRateLimitStatsEndpoints(t *testing.T) {
	_, r := newTestApp(t)

	w := get(r, "/ratelimit/status")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ip_per_minute")

	w = get(r, "/ratelimit/stats")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "limiter_stats")
}

func TestCacheStatsEndpoint(t *testing.T) {
	_, r := newTestApp(t)

	w := get(r, "/cache/stats")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "response_cache")
	assert.Contains(t, w.Body.String(), "rankings_cache")
	assert.Contains(t, w.Body.String(), "compression")
}

func TestPrivacyPolicyEndpoint(t *testing.T) {
	_, r := newTestApp(t)

	w := get(r, "/privacy/policy")
	require.Equal(t, http.StatusOK, w.Code)

	var info map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, float64(30), info["session_retention_days"])
	assert.Contains(t, info, "ip_handling")
}

func TestGzipOnChartEndpoint(t *testing.T) {
	_, r := newTestApp(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/mentions?days=7", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	if w.Header().Get("Content-Encoding") != "gzip" {
		// Small windows can stay under the compression floor.
		t.Skip("response below compression threshold")
	}

	gz, err := gzip.NewReader(w.Body)
	require.NoError(t, err)
	body, err := io.ReadAll(gz)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"quality"`)
}

func TestGetEnvOrDefault(t *testing.T) {
	t.Setenv("SOME_TEST_KEY", "set")
	assert.Equal(t, "set", getEnvOrDefault("SOME_TEST_KEY", "fallback"))
	assert.Equal(t, "fallback", getEnvOrDefault("SOME_TEST_KEY_UNSET", "fallback"))
}
