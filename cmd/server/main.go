package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/talentops/pulsemark/internal/appraisal"
	"github.com/talentops/pulsemark/internal/cache"
	"github.com/talentops/pulsemark/internal/config"
	"github.com/talentops/pulsemark/internal/database"
	"github.com/talentops/pulsemark/internal/errors"
	"github.com/talentops/pulsemark/internal/mockdata"
	"github.com/talentops/pulsemark/internal/monitoring"
	"github.com/talentops/pulsemark/internal/ratelimit"
	"github.com/talentops/pulsemark/internal/report"
	"github.com/talentops/pulsemark/internal/security"
	"github.com/talentops/pulsemark/internal/session"
	"github.com/talentops/pulsemark/internal/share"
	"github.com/talentops/pulsemark/internal/types"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	appLogger := monitoring.NewLogger(cfg.LogLevel)
	slog.SetDefault(appLogger.Logger)

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	repo := database.NewRepository(db)

	engine, err := appraisal.NewEngine(cfg.Engine)
	if err != nil {
		slog.Error("Failed to build appraisal engine", "error", err)
		os.Exit(1)
	}
	classifier := appraisal.NewClassifier(cfg.Engine.Sentiment)

	manager := session.NewManager(engine, classifier)
	shareService := share.NewService(repo, cfg.ShareTokenSecret, cfg.ShareTokenTTL())

	appMetrics := monitoring.NewMetrics()
	runtimeMonitor := monitoring.NewRuntimeMonitor(appMetrics, 15*time.Second)
	runtimeMonitor.Start()
	defer runtimeMonitor.Stop()

	// Redis is optional; the limiter degrades to in-memory buckets.
	redisClient, err := ratelimit.NewRedisClient(cfg.RedisAddr)
	if err != nil {
		slog.Warn("Redis unavailable", "error", err)
	}
	defer redisClient.Close()

	rlConfig := ratelimit.DefaultConfig()
	rlConfig.IPLimitPerMin = cfg.RateLimitPerMinute
	limiter := ratelimit.NewRateLimiter(redisClient, rlConfig, appMetrics)
	defer limiter.Close()

	appCache := cache.NewCache(cfg.CacheTTL())

	// Expired share rows are audit-only once the token lapses; purge daily.
	purgeCtx, cancelPurge := context.WithCancel(context.Background())
	defer cancelPurge()
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-purgeCtx.Done():
				return
			case <-ticker.C:
				if purged, err := repo.PurgeExpired(purgeCtx, time.Now().UTC()); err != nil {
					slog.Error("Failed to purge expired shares", "error", err)
				} else if purged > 0 {
					slog.Info("Purged expired shares", "count", purged)
				}
			}
		}
	}()

	r := buildRouter(cfg, manager, shareService, appCache, limiter, appMetrics, appLogger, db)

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: r,
	}

	go func() {
		appLogger.SystemLogger("startup", "listening on "+cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.SystemLogger("shutdown", "signal received, draining connections")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	appLogger.SystemLogger("shutdown", "server exited")
}

func buildRouter(
	cfg *config.Config,
	manager *session.Manager,
	shareService *share.Service,
	appCache *cache.Cache,
	limiter *ratelimit.RateLimiter,
	appMetrics *monitoring.Metrics,
	appLogger *monitoring.Logger,
	db *database.DB,
) *gin.Engine {
	r := gin.New()

	r.Use(monitoring.MonitoringMiddleware(appMetrics, appLogger))
	r.Use(errors.ErrorHandler())
	r.Use(errors.RecoveryHandler())

	securityMiddleware := security.NewMiddleware(security.DefaultConfig())
	r.Use(security.SecurityHeadersMiddleware())
	r.Use(securityMiddleware.RequestTimeout)
	r.Use(securityMiddleware.ValidateContentType)
	r.Use(securityMiddleware.BodySizeLimit)

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.Use(ratelimit.IPRateLimitMiddleware(limiter, appMetrics))
	r.Use(appCache.Middleware(appMetrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
			"sessions":  manager.Len(),
			"metrics":   appMetrics.GetStats(),
			"database":  db.GetPoolStats(),
		})
	})

	r.GET("/metrics", appMetrics.Handler())
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/ratelimit/status", ratelimit.HandleRateLimitStatus(limiter))

	admin := r.Group("/admin")
	admin.GET("/ratelimit/stats", ratelimit.HandleAdminRateLimitStats(limiter, appMetrics))
	admin.POST("/ratelimit/invalidate/:ip", ratelimit.HandleAdminInvalidateIP(limiter))
	admin.POST("/ratelimit/invalidate", ratelimit.HandleAdminInvalidateAll(limiter))
	admin.GET("/cache/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, appCache.Stats())
	})
	admin.POST("/cache/clear", func(c *gin.Context) {
		appCache.Clear()
		c.JSON(http.StatusOK, gin.H{"message": "cache cleared"})
	})

	api := r.Group("/api")

	api.GET("/employees", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"employees": manager.List()})
	})

	api.GET("/shares/:token",
		ratelimit.ShareRateLimitMiddleware(limiter, appMetrics),
		resolveShare(shareService, appMetrics, appLogger))

	emp := api.Group("/employees/:id", security.ValidateEmployeeRefMiddleware())

	emp.POST("/health", submitSample(manager, appCache, appMetrics, sampleKindHealth))
	emp.POST("/social", submitSample(manager, appCache, appMetrics, sampleKindSocial))
	emp.PUT("/profile", setProfile(manager, appCache))
	emp.POST("/feedback", submitFeedback(manager, appCache))
	emp.PUT("/kras", upsertKRA(manager, appCache))
	emp.PUT("/projects", upsertProject(manager, appCache))
	emp.PUT("/initiatives", upsertInitiative(manager, appCache))
	emp.PUT("/performance", recordMonthly(manager, appCache))
	emp.POST("/demo", seedDemo(manager, appCache))

	emp.GET("/indices", getIndices(manager))
	emp.GET("/recommendation", getRecommendation(manager, appMetrics, appLogger))
	emp.GET("/export", getExport(manager))
	emp.GET("/report", getReport(manager))

	// Share creation mints outbound tokens, so it gets its own tighter
	// per-IP budget on top of the global limiter.
	emp.POST("/share",
		ratelimit.EndpointRateLimitMiddleware(limiter, "share_create", cfg.ShareCreatePerMinute, appMetrics),
		createShare(manager, shareService, appMetrics, appLogger))
	emp.GET("/shares", listShares(shareService))

	emp.DELETE("", func(c *gin.Context) {
		ref := c.Param("id")
		manager.Delete(ref)
		appCache.Invalidate(ref)
		c.JSON(http.StatusOK, gin.H{"message": "session deleted", "employee_ref": ref})
	})

	return r
}

type sampleKind int

const (
	sampleKindHealth sampleKind = iota
	sampleKindSocial
)

func respondError(c *gin.Context, err error) {
	appErr := errors.ToAppError(err)
	errors.LogError(c, appErr)
	c.JSON(appErr.HTTPStatus, appErr)
}

func submitSample(manager *session.Manager, appCache *cache.Cache, appMetrics *monitoring.Metrics, kind sampleKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.MetricSampleRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, errors.NewValidationError("invalid metric sample payload", err.Error()))
			return
		}

		sess, err := manager.GetOrCreate(c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}

		var result session.SampleResult
		if kind == sampleKindHealth {
			result, err = sess.SubmitHealthSample(req.ToSample())
		} else {
			result, err = sess.SubmitSocialSample(req.ToSample())
		}
		if err != nil && !errors.IsDomain(err) {
			respondError(c, err)
			return
		}

		appCache.Invalidate(sess.EmployeeRef)

		body := gin.H{
			"metric_name":    req.MetricName,
			"normalized":     result.Normalized,
			"index_complete": result.IndexComplete,
		}
		// The recomputed composite rides along once every weighted
		// component of the index has a reading.
		if result.IndexComplete {
			body["index"] = result.Index
		}
		// Out-of-range values are clamped and recorded. The caller gets
		// the stored value plus a warning instead of a rejection.
		if err != nil {
			appMetrics.RecordDomainWarning()
			body["warning"] = err.Error()
		}
		c.JSON(http.StatusOK, body)
	}
}

func setProfile(manager *session.Manager, appCache *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.ProfileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, errors.NewValidationError("invalid profile payload", err.Error()))
			return
		}

		sess, err := manager.GetOrCreate(c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}

		sess.SetProfile(session.Profile{Name: req.Name, Department: req.Department})

		appCache.Invalidate(sess.EmployeeRef)
		c.JSON(http.StatusOK, gin.H{"message": "profile recorded", "employee_ref": sess.EmployeeRef})
	}
}

func submitFeedback(manager *session.Manager, appCache *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.FeedbackRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, errors.NewValidationError("invalid feedback payload", err.Error()))
			return
		}

		sess, err := manager.GetOrCreate(c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}

		entry, sentiment, err := sess.SubmitFeedback(req.AuthorRef, req.AuthorRole, req.Text)
		if err != nil {
			respondError(c, err)
			return
		}

		appCache.Invalidate(sess.EmployeeRef)
		c.JSON(http.StatusCreated, gin.H{
			"feedback":  entry,
			"sentiment": sentiment,
		})
	}
}

func upsertKRA(manager *session.Manager, appCache *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.KRARequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, errors.NewValidationError("invalid KRA payload", err.Error()))
			return
		}

		sess, err := manager.GetOrCreate(c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}

		if err := sess.UpsertKRA(req.ToKRA()); err != nil {
			respondError(c, err)
			return
		}

		appCache.Invalidate(sess.EmployeeRef)
		c.JSON(http.StatusOK, gin.H{"message": "KRA recorded", "name": req.Name})
	}
}

func upsertProject(manager *session.Manager, appCache *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.ProjectRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, errors.NewValidationError("invalid project payload", err.Error()))
			return
		}

		sess, err := manager.GetOrCreate(c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}

		if err := sess.UpsertProject(req.ToProject()); err != nil {
			respondError(c, err)
			return
		}

		appCache.Invalidate(sess.EmployeeRef)
		c.JSON(http.StatusOK, gin.H{"message": "project recorded", "name": req.Name})
	}
}

func upsertInitiative(manager *session.Manager, appCache *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.InitiativeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, errors.NewValidationError("invalid initiative payload", err.Error()))
			return
		}

		sess, err := manager.GetOrCreate(c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}

		if err := sess.UpsertInitiative(req.ToInitiative()); err != nil {
			respondError(c, err)
			return
		}

		appCache.Invalidate(sess.EmployeeRef)
		c.JSON(http.StatusOK, gin.H{"message": "initiative recorded", "name": req.Name})
	}
}

func recordMonthly(manager *session.Manager, appCache *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.MonthlyPerformanceRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, errors.NewValidationError("invalid monthly performance payload", err.Error()))
			return
		}

		sess, err := manager.GetOrCreate(c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}

		if err := sess.RecordMonthlyPerformance(req.ToMonthly()); err != nil {
			respondError(c, err)
			return
		}

		appCache.Invalidate(sess.EmployeeRef)
		c.JSON(http.StatusOK, gin.H{"message": "monthly performance recorded", "month": req.Month})
	}
}

func seedDemo(manager *session.Manager, appCache *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := manager.GetOrCreate(c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}

		if err := mockdata.Seed(sess); err != nil {
			respondError(c, err)
			return
		}

		appCache.Invalidate(sess.EmployeeRef)
		c.JSON(http.StatusCreated, gin.H{
			"message":      "demo review seeded",
			"employee_ref": sess.EmployeeRef,
		})
	}
}

func getIndices(manager *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := manager.Get(c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}

		indices, err := sess.Indices()
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"employee_ref": sess.EmployeeRef,
			"indices":      indices,
		})
	}
}

func getRecommendation(manager *session.Manager, appMetrics *monitoring.Metrics, appLogger *monitoring.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := manager.Get(c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}

		rec, err := sess.Recommendation()
		if err != nil {
			respondError(c, err)
			return
		}

		appMetrics.RecordRecommendation(string(rec.ReadinessTier))
		appLogger.RecommendationLogger(sess.EmployeeRef, string(rec.ReadinessTier),
			string(rec.IncrementBand), rec.BlendedScore, len(rec.Strengths), len(rec.Risks))

		c.JSON(http.StatusOK, gin.H{
			"employee_ref":   sess.EmployeeRef,
			"recommendation": rec,
		})
	}
}

func getExport(manager *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := manager.Get(c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}

		payload, err := sess.Export()
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, payload)
	}
}

func getReport(manager *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := manager.Get(c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}

		snap, err := sess.Snapshot()
		if err != nil {
			respondError(c, err)
			return
		}
		rec, err := sess.Recommendation()
		if err != nil {
			respondError(c, err)
			return
		}

		c.String(http.StatusOK, report.Render(snap, rec))
	}
}

func createShare(manager *session.Manager, shareService *share.Service, appMetrics *monitoring.Metrics, appLogger *monitoring.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.ShareRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, errors.NewValidationError("invalid share payload", err.Error()))
			return
		}

		sess, err := manager.Get(c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}

		payload, err := sess.Export()
		if err != nil {
			respondError(c, err)
			return
		}

		link, err := shareService.Create(c.Request.Context(), payload, req.SharedWith)
		if err != nil {
			respondError(c, err)
			return
		}

		appMetrics.RecordShareCreated()
		appLogger.ShareLogger("share_created", sess.EmployeeRef, req.SharedWith)

		c.JSON(http.StatusCreated, link)
	}
}

func resolveShare(shareService *share.Service, appMetrics *monitoring.Metrics, appLogger *monitoring.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		payload, err := shareService.Resolve(c.Request.Context(), c.Param("token"), c.ClientIP())
		if err != nil {
			respondError(c, err)
			return
		}

		appMetrics.RecordShareResolved()
		appLogger.ShareLogger("share_resolved", payload.EmployeeRef, "")

		c.JSON(http.StatusOK, payload)
	}
}

func listShares(shareService *share.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := 20
		if raw := c.Query("limit"); raw != "" {
			if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
				limit = parsed
			}
		}

		records, err := shareService.History(c.Request.Context(), c.Param("id"), limit)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"employee_ref": c.Param("id"),
			"shares":       records,
		})
	}
}
