package monitoring

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsIsolated(t *testing.T) {
	// Two collectors in one process must not collide on registration.
	a := NewMetrics()
	b := NewMetrics()

	a.RecordToolCall("filesystem", "filesystem.read_file", "success", time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(a.ToolCalls.WithLabelValues("filesystem", "filesystem.read_file", "success")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.ToolCalls.WithLabelValues("filesystem", "filesystem.read_file", "success")))
}

func TestRecordToolError(t *testing.T) {
	m := NewMetrics()

	m.RecordToolError("filesystem", "filesystem.delete_file", "not_found")
	m.RecordToolError("filesystem", "filesystem.delete_file", "security_violation")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SecurityViolations.WithLabelValues("filesystem.delete_file")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ToolErrors.WithLabelValues("filesystem", "filesystem.delete_file", "not_found")))

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.ToolFailures)
	assert.Equal(t, int64(1), snap.Violations)
}

func TestTimer(t *testing.T) {
	m := NewMetrics()

	NewTimer(m, "filesystem", "filesystem.stat").Stop("error")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ToolCalls.WithLabelValues("filesystem", "filesystem.stat", "error")))

	var nilTimer *Timer
	assert.NotPanics(t, func() { nilTimer.Stop("success") })
}

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics()

	router := gin.New()
	router.Use(Middleware(m))
	router.GET("/tools/:id", func(c *gin.Context) { c.String(http.StatusNotFound, "nope") })
	router.GET("/metrics", gin.WrapH(m.Handler()))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tools/filesystem.x", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/tools/:id", "404")))
	assert.Equal(t, int64(1), m.Snapshot().TotalErrors)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "fsagent_http_requests_total")
	assert.Contains(t, w.Body.String(), "fsagent_uptime_seconds")
}
