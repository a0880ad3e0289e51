package monitoring

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsStats(t *testing.T) {
	m := NewMetrics()

	m.RecordHTTPRequest("/api/employees/:id/recommendation", "GET", 200, 5*time.Millisecond)
	m.RecordHTTPRequest("/api/employees/:id/recommendation", "GET", 500, 5*time.Millisecond)
	m.IncrementCacheHit()
	m.IncrementCacheMiss()
	m.IncrementCacheMiss()

	stats := m.GetStats()
	assert.EqualValues(t, 2, stats["total_requests"])
	assert.EqualValues(t, 1, stats["error_count"])
	assert.EqualValues(t, 1, stats["cache_hits"])
	assert.EqualValues(t, 2, stats["cache_misses"])
}

func TestRateLimitStats(t *testing.T) {
	m := NewMetrics()

	m.IncrementRateLimitIPBlock()
	m.IncrementRateLimitShareBlock()
	m.IncrementRateLimitEndpoint("/api/employees/:id/feedback")
	m.IncrementRateLimitFallback()

	stats := m.GetRateLimitStats()
	assert.EqualValues(t, 1, stats["ip_blocks"])
	assert.EqualValues(t, 1, stats["share_blocks"])
	assert.EqualValues(t, 1, stats["fallback_count"])

	blocks := stats["endpoint_blocks"].(map[string]int64)
	assert.EqualValues(t, 1, blocks["/api/employees/:id/feedback"])
}

func TestMetricsHandlerExposition(t *testing.T) {
	gin.SetMode(gin.TestMode)

	m := NewMetrics()
	m.RecordRecommendation("ready")
	m.RecordShareCreated()

	router := gin.New()
	router.GET("/metrics", m.Handler())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "pulsemark_recommendations_total")
	assert.Contains(t, body, "pulsemark_shares_created_total")
}

func TestSeparateRegistries(t *testing.T) {
	// Two instances must not collide on registration.
	first := NewMetrics()
	second := NewMetrics()
	assert.NotSame(t, first.registry, second.registry)
}
