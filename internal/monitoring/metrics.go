package monitoring

import (
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exposes the service's Prometheus metrics plus a small set of
// plain counters for the JSON stats endpoint. Each instance owns its
// registry so tests never collide on registration.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	recommendationsTotal *prometheus.CounterVec
	domainWarningsTotal  prometheus.Counter
	sharesCreatedTotal   prometheus.Counter
	sharesResolvedTotal  prometheus.Counter

	cacheHitsTotal   prometheus.Counter
	cacheMissesTotal prometheus.Counter

	rateLimitBlocksTotal *prometheus.CounterVec

	StartTime time.Time

	// Shadow counters for GetStats / GetRateLimitStats.
	requestCount int64
	errorCount   int64
	cacheHits    int64
	cacheMisses  int64

	rateLimitIPBlocks       int64
	rateLimitShareBlocks    int64
	rateLimitRedisErrors    int64
	rateLimitFallbackCount  int64
	rateLimitEndpointBlocks map[string]int64
	rateLimitMutex          sync.RWMutex
}

// NewMetrics creates a metrics instance with its own registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	auto := promauto.With(registry)

	m := &Metrics{
		registry:                registry,
		StartTime:               time.Now(),
		rateLimitEndpointBlocks: make(map[string]int64),
	}

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pulsemark",
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests by route, method, and status.",
	}, []string{"route", "method", "status"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "pulsemark",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})

	m.recommendationsTotal = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pulsemark",
		Name:      "recommendations_total",
		Help:      "Total number of computed recommendations by readiness tier.",
	}, []string{"tier"})

	m.domainWarningsTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: "pulsemark",
		Name:      "domain_warnings_total",
		Help:      "Total number of out-of-range samples clamped on intake.",
	})

	m.sharesCreatedTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: "pulsemark",
		Name:      "shares_created_total",
		Help:      "Total number of share links issued.",
	})

	m.sharesResolvedTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: "pulsemark",
		Name:      "shares_resolved_total",
		Help:      "Total number of share links resolved by recipients.",
	})

	m.cacheHitsTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: "pulsemark",
		Name:      "cache_hits_total",
		Help:      "Total number of derived-read cache hits.",
	})

	m.cacheMissesTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: "pulsemark",
		Name:      "cache_misses_total",
		Help:      "Total number of derived-read cache misses.",
	})

	m.rateLimitBlocksTotal = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pulsemark",
		Name:      "rate_limit_blocks_total",
		Help:      "Total number of rate-limited requests by scope.",
	}, []string{"scope"})

	return m
}

// Handler serves the Prometheus exposition for this instance's registry.
func (m *Metrics) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// RecordHTTPRequest records one completed HTTP request.
func (m *Metrics) RecordHTTPRequest(route, method string, status int, duration time.Duration) {
	atomic.AddInt64(&m.requestCount, 1)
	if status >= 500 {
		atomic.AddInt64(&m.errorCount, 1)
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(route, method).Observe(duration.Seconds())
}

// RecordRecommendation counts one computed recommendation.
func (m *Metrics) RecordRecommendation(tier string) {
	m.recommendationsTotal.WithLabelValues(tier).Inc()
}

// RecordDomainWarning counts one clamped out-of-range sample.
func (m *Metrics) RecordDomainWarning() {
	m.domainWarningsTotal.Inc()
}

// RecordShareCreated counts one issued share link.
func (m *Metrics) RecordShareCreated() {
	m.sharesCreatedTotal.Inc()
}

// RecordShareResolved counts one resolved share link.
func (m *Metrics) RecordShareResolved() {
	m.sharesResolvedTotal.Inc()
}

// IncrementCacheHit increments cache hit count
func (m *Metrics) IncrementCacheHit() {
	atomic.AddInt64(&m.cacheHits, 1)
	m.cacheHitsTotal.Inc()
}

// IncrementCacheMiss increments cache miss count
func (m *Metrics) IncrementCacheMiss() {
	atomic.AddInt64(&m.cacheMisses, 1)
	m.cacheMissesTotal.Inc()
}

// IncrementRateLimitIPBlock increments IP-based rate limit blocks
func (m *Metrics) IncrementRateLimitIPBlock() {
	atomic.AddInt64(&m.rateLimitIPBlocks, 1)
	m.rateLimitBlocksTotal.WithLabelValues("ip").Inc()
}

// IncrementRateLimitShareBlock increments share-resolution rate limit blocks
func (m *Metrics) IncrementRateLimitShareBlock() {
	atomic.AddInt64(&m.rateLimitShareBlocks, 1)
	m.rateLimitBlocksTotal.WithLabelValues("share").Inc()
}

// IncrementRateLimitRedisError increments Redis error count for rate limiting
func (m *Metrics) IncrementRateLimitRedisError() {
	atomic.AddInt64(&m.rateLimitRedisErrors, 1)
}

// IncrementRateLimitFallback increments fallback rate limiter usage count
func (m *Metrics) IncrementRateLimitFallback() {
	atomic.AddInt64(&m.rateLimitFallbackCount, 1)
}

// IncrementRateLimitEndpoint increments rate limit blocks for a specific endpoint
func (m *Metrics) IncrementRateLimitEndpoint(endpoint string) {
	m.rateLimitMutex.Lock()
	m.rateLimitEndpointBlocks[endpoint]++
	m.rateLimitMutex.Unlock()
	m.rateLimitBlocksTotal.WithLabelValues("endpoint").Inc()
}

// GetRateLimitStats returns rate limiting statistics
func (m *Metrics) GetRateLimitStats() map[string]interface{} {
	m.rateLimitMutex.RLock()
	endpointBlocksCopy := make(map[string]int64, len(m.rateLimitEndpointBlocks))
	for k, v := range m.rateLimitEndpointBlocks {
		endpointBlocksCopy[k] = v
	}
	m.rateLimitMutex.RUnlock()

	return map[string]interface{}{
		"ip_blocks":       atomic.LoadInt64(&m.rateLimitIPBlocks),
		"share_blocks":    atomic.LoadInt64(&m.rateLimitShareBlocks),
		"redis_errors":    atomic.LoadInt64(&m.rateLimitRedisErrors),
		"fallback_count":  atomic.LoadInt64(&m.rateLimitFallbackCount),
		"endpoint_blocks": endpointBlocksCopy,
	}
}

// GetStats returns the JSON stats snapshot for the health endpoint.
func (m *Metrics) GetStats() map[string]interface{} {
	requests := atomic.LoadInt64(&m.requestCount)
	errors := atomic.LoadInt64(&m.errorCount)
	cacheHits := atomic.LoadInt64(&m.cacheHits)
	cacheMisses := atomic.LoadInt64(&m.cacheMisses)

	errorRate := float64(0)
	if requests > 0 {
		errorRate = float64(errors) / float64(requests) * 100
	}

	cacheHitRate := float64(0)
	if total := cacheHits + cacheMisses; total > 0 {
		cacheHitRate = float64(cacheHits) / float64(total) * 100
	}

	return map[string]interface{}{
		"uptime_seconds":         time.Since(m.StartTime).Seconds(),
		"total_requests":         requests,
		"error_count":            errors,
		"error_rate_percent":     errorRate,
		"cache_hits":             cacheHits,
		"cache_misses":           cacheMisses,
		"cache_hit_rate_percent": cacheHitRate,
		"start_time":             m.StartTime.Format(time.RFC3339),
		"rate_limit":             m.GetRateLimitStats(),
	}
}
