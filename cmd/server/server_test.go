package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentops/pulsemark/internal/appraisal"
	"github.com/talentops/pulsemark/internal/cache"
	"github.com/talentops/pulsemark/internal/config"
	"github.com/talentops/pulsemark/internal/database"
	"github.com/talentops/pulsemark/internal/monitoring"
	"github.com/talentops/pulsemark/internal/ratelimit"
	"github.com/talentops/pulsemark/internal/session"
	"github.com/talentops/pulsemark/internal/share"
)

func newTestServer(t *testing.T) *gin.Engine {
	return newTestServerWithConfig(t, nil)
}

func newTestServerWithConfig(t *testing.T, tune func(*config.Config)) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.New()
	cfg.DatabasePath = filepath.Join(t.TempDir(), "pulsemark.db")
	cfg.ShareTokenSecret = "test-secret"
	cfg.ShareCreatePerMinute = 10000
	if tune != nil {
		tune(cfg)
	}
	require.NoError(t, cfg.Validate())

	db, err := database.NewDB(cfg.DatabasePath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := database.NewRepository(db)

	engine, err := appraisal.NewEngine(cfg.Engine)
	require.NoError(t, err)
	classifier := appraisal.NewClassifier(cfg.Engine.Sentiment)

	manager := session.NewManager(engine, classifier)
	shareService := share.NewService(repo, cfg.ShareTokenSecret, cfg.ShareTokenTTL())

	appMetrics := monitoring.NewMetrics()
	appLogger := monitoring.NewLogger("error")

	redisClient, _ := ratelimit.NewRedisClient("")
	rlConfig := ratelimit.DefaultConfig()
	rlConfig.IPLimitPerMin = 10000
	rlConfig.ShareLimitPerHour = 10000
	limiter := ratelimit.NewRateLimiter(redisClient, rlConfig, appMetrics)
	t.Cleanup(limiter.Close)

	appCache := cache.NewCache(cfg.CacheTTL())

	return buildRouter(cfg, manager, shareService, appCache, limiter, appMetrics, appLogger, db)
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestServer(t)

	w := doJSON(t, router, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Contains(t, body, "metrics")
	assert.Contains(t, body, "database")
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestServer(t)

	w := doJSON(t, router, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "pulsemark_http_requests_total")
}

func TestSubmitSampleAndReadIndices(t *testing.T) {
	router := newTestServer(t)

	var last map[string]any
	for i, metric := range []string{"stress", "sleep", "energy", "satisfaction"} {
		direction := "higher_is_better"
		if metric == "stress" {
			direction = "lower_is_better"
		}
		w := doJSON(t, router, http.MethodPost, "/api/employees/jane.doe/health", map[string]any{
			"metric_name": metric,
			"value":       6.0,
			"scale_min":   0.0,
			"scale_max":   10.0,
			"direction":   direction,
		})
		require.Equal(t, http.StatusOK, w.Code, "metric %s", metric)

		last = map[string]any{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &last))
		if i < 3 {
			assert.Equal(t, false, last["index_complete"], "metric %s", metric)
			assert.NotContains(t, last, "index")
		}
	}

	// The final component completes the set; the submit response carries
	// the recomputed health composite.
	require.Equal(t, true, last["index_complete"])
	require.Contains(t, last, "index")
	index, ok := last["index"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "health", index["name"])
	// stress 6/10 inverted = 40, the rest 60 each, equal weights.
	assert.InDelta(t, 55.0, index["value"], 0.001)

	w := doJSON(t, router, http.MethodGet, "/api/employees/jane.doe/indices", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		EmployeeRef string                    `json:"employee_ref"`
		Indices     map[string]map[string]any `json:"indices"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "jane.doe", body.EmployeeRef)
	assert.Contains(t, body.Indices, "health")
	assert.NotContains(t, body.Indices, "social")
}

func TestSubmitSampleOutOfRangeWarns(t *testing.T) {
	router := newTestServer(t)

	w := doJSON(t, router, http.MethodPost, "/api/employees/jane.doe/health", map[string]any{
		"metric_name": "sleep",
		"value":       14.0,
		"scale_min":   0.0,
		"scale_max":   10.0,
		"direction":   "higher_is_better",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body, "warning")
	assert.InDelta(t, 100.0, body["normalized"], 0.001)
}

func TestSubmitSampleUnknownMetric(t *testing.T) {
	router := newTestServer(t)

	w := doJSON(t, router, http.MethodPost, "/api/employees/jane.doe/health", map[string]any{
		"metric_name": "mood",
		"value":       5.0,
		"scale_min":   0.0,
		"scale_max":   10.0,
		"direction":   "higher_is_better",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecommendationIncompleteData(t *testing.T) {
	router := newTestServer(t)

	for _, metric := range []string{"stress", "sleep", "energy", "satisfaction"} {
		w := doJSON(t, router, http.MethodPost, "/api/employees/jane.doe/health", map[string]any{
			"metric_name": metric,
			"value":       5.0,
			"scale_min":   0.0,
			"scale_max":   10.0,
			"direction":   "higher_is_better",
		})
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := doJSON(t, router, http.MethodGet, "/api/employees/jane.doe/recommendation", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestUnknownEmployeeReadsFail(t *testing.T) {
	router := newTestServer(t)

	w := doJSON(t, router, http.MethodGet, "/api/employees/nobody/indices", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMalformedEmployeeRefRejected(t *testing.T) {
	router := newTestServer(t)

	w := doJSON(t, router, http.MethodGet, "/api/employees/jane%20doe/indices", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDemoSeedProducesRecommendation(t *testing.T) {
	router := newTestServer(t)

	w := doJSON(t, router, http.MethodPost, "/api/employees/demo.employee/demo", nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/employees/demo.employee/recommendation", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Recommendation struct {
			ReadinessTier string   `json:"readiness_tier"`
			IncrementBand string   `json:"increment_band"`
			Strengths     []string `json:"strengths"`
			Actions       []string `json:"actions"`
		} `json:"recommendation"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Recommendation.ReadinessTier)
	assert.NotEmpty(t, body.Recommendation.IncrementBand)
	assert.NotEmpty(t, body.Recommendation.Actions)
}

func TestProfileAppearsInReport(t *testing.T) {
	router := newTestServer(t)

	w := doJSON(t, router, http.MethodPost, "/api/employees/demo.employee/demo", nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodPut, "/api/employees/demo.employee/profile", map[string]any{
		"name":       "Priya Sharma",
		"department": "Engineering",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/employees/demo.employee/report", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Employee: Priya Sharma  (Engineering)")
	assert.Contains(t, w.Body.String(), "KEY RECOMMENDATIONS")
}

func TestProfileRequiresName(t *testing.T) {
	router := newTestServer(t)

	w := doJSON(t, router, http.MethodPut, "/api/employees/demo.employee/profile", map[string]any{
		"department": "Engineering",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReportEndpoint(t *testing.T) {
	router := newTestServer(t)

	w := doJSON(t, router, http.MethodPost, "/api/employees/demo.employee/demo", nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/employees/demo.employee/report", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "PERFORMANCE SUMMARY: demo.employee")
	assert.Contains(t, w.Body.String(), "COMPOSITE INDICES")
}

func TestShareRoundTrip(t *testing.T) {
	router := newTestServer(t)

	w := doJSON(t, router, http.MethodPost, "/api/employees/demo.employee/demo", nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/employees/demo.employee/share", map[string]any{
		"shared_with": "hr.lead",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var link struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &link))
	require.NotEmpty(t, link.Token)

	w = doJSON(t, router, http.MethodGet, "/api/shares/"+link.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var payload struct {
		SchemaVersion int    `json:"schema_version"`
		EmployeeRef   string `json:"employee_ref"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	assert.Equal(t, 1, payload.SchemaVersion)
	assert.Equal(t, "demo.employee", payload.EmployeeRef)

	w = doJSON(t, router, http.MethodGet, "/api/employees/demo.employee/shares", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "hr.lead")
}

func TestShareCreateRateLimited(t *testing.T) {
	router := newTestServerWithConfig(t, func(cfg *config.Config) {
		cfg.ShareCreatePerMinute = 2
	})

	w := doJSON(t, router, http.MethodPost, "/api/employees/demo.employee/demo", nil)
	require.Equal(t, http.StatusCreated, w.Code)

	// The in-memory bucket floors its burst at five tokens, so the
	// sixth creation in the same minute is the first one blocked.
	for i := 0; i < 5; i++ {
		w = doJSON(t, router, http.MethodPost, "/api/employees/demo.employee/share", map[string]any{
			"shared_with": "hr.lead",
		})
		require.Equal(t, http.StatusCreated, w.Code, "creation %d", i+1)
	}

	w = doJSON(t, router, http.MethodPost, "/api/employees/demo.employee/share", map[string]any{
		"shared_with": "hr.lead",
	})
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "share_create")

	// The tighter budget is scoped to share creation; reads still pass.
	w = doJSON(t, router, http.MethodGet, "/api/employees/demo.employee/indices", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestShareResolveBadToken(t *testing.T) {
	router := newTestServer(t)

	w := doJSON(t, router, http.MethodGet, "/api/shares/not-a-token", nil)
	assert.NotEqual(t, http.StatusOK, w.Code)
}

func TestDeleteSession(t *testing.T) {
	router := newTestServer(t)

	w := doJSON(t, router, http.MethodPost, "/api/employees/demo.employee/demo", nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodDelete, "/api/employees/demo.employee", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/employees/demo.employee/indices", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListEmployees(t *testing.T) {
	router := newTestServer(t)

	w := doJSON(t, router, http.MethodPost, "/api/employees/alpha/demo", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	w = doJSON(t, router, http.MethodPost, "/api/employees/beta/demo", nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/employees", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Employees []string `json:"employees"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, []string{"alpha", "beta"}, body.Employees)
}

func TestUnsupportedContentTypeRejected(t *testing.T) {
	router := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/employees/jane.doe/health", bytes.NewReader([]byte("a=b")))
	req.Header.Set("Content-Type", "text/plain")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}

func TestRateLimitHeadersPresent(t *testing.T) {
	router := newTestServer(t)

	w := doJSON(t, router, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-RateLimit-Limit"))
}
