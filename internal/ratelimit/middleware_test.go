package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentops/pulsemark/internal/monitoring"
)

func newLimitedRouter(t *testing.T, handler gin.HandlerFunc) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/guarded", handler, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func TestEndpointRateLimitMiddlewareBlocks(t *testing.T) {
	limiter := newFallbackLimiter(Config{
		IPLimitPerMin:     100,
		ShareLimitPerHour: 100,
		BurstMultiplier:   1,
	})
	defer limiter.Close()

	metrics := monitoring.NewMetrics()
	router := newLimitedRouter(t, EndpointRateLimitMiddleware(limiter, "guarded", 2, metrics))

	// Minimum burst of 5 in fallback mode.
	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/guarded", nil))
		require.Equal(t, http.StatusOK, w.Code, "request %d", i+1)
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/guarded", nil))
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "guarded")

	stats := metrics.GetRateLimitStats()
	endpointBlocks, ok := stats["endpoint_blocks"].(map[string]int64)
	require.True(t, ok)
	assert.Equal(t, int64(1), endpointBlocks["guarded"])
}

func TestEndpointRateLimitMiddlewareIsolatedPerEndpoint(t *testing.T) {
	limiter := newFallbackLimiter(Config{
		IPLimitPerMin:     100,
		ShareLimitPerHour: 100,
		BurstMultiplier:   1,
	})
	defer limiter.Close()

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/first", EndpointRateLimitMiddleware(limiter, "first", 2, nil), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.POST("/second", EndpointRateLimitMiddleware(limiter, "second", 2, nil), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for i := 0; i < 6; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/first", nil))
		if i < 5 {
			require.Equal(t, http.StatusOK, w.Code)
		} else {
			require.Equal(t, http.StatusTooManyRequests, w.Code)
		}
	}

	// Exhausting one endpoint's bucket leaves the other untouched.
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/second", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
