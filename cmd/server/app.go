package main

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/tomiwa-dev/naijapulse/internal/cache"
	"github.com/tomiwa-dev/naijapulse/internal/config"
	"github.com/tomiwa-dev/naijapulse/internal/dashboard"
	"github.com/tomiwa-dev/naijapulse/internal/database"
	"github.com/tomiwa-dev/naijapulse/internal/errors"
	"github.com/tomiwa-dev/naijapulse/internal/feed"
	"github.com/tomiwa-dev/naijapulse/internal/filters"
	"github.com/tomiwa-dev/naijapulse/internal/middleware"
	"github.com/tomiwa-dev/naijapulse/internal/monitoring"
	"github.com/tomiwa-dev/naijapulse/internal/privacy"
	"github.com/tomiwa-dev/naijapulse/internal/quality"
	"github.com/tomiwa-dev/naijapulse/internal/rankings"
	"github.com/tomiwa-dev/naijapulse/internal/ratelimit"
	"github.com/tomiwa-dev/naijapulse/internal/security"
)

// app holds the wired services so the router can be built and torn down in
// one place, both in main and in tests.
type app struct {
	cfg config.Config

	db          *database.DB
	repo        *database.Repository
	sessions    *database.SessionService
	filterStore *filters.Store
	thresholds  *quality.ThresholdStore
	source      *feed.GuardedSource
	charts      *dashboard.Service
	rankings    *rankings.Service
	metrics     *monitoring.Metrics
	logger      *monitoring.Logger
	redis       *ratelimit.RedisClient
	limiter     *ratelimit.RateLimiter
	security    *security.SecurityMiddleware
	cache       *cache.Cache
	compression *middleware.CompressionMiddleware
	privacy     *privacy.Service
	redisErr    error
}

func newApp(cfg config.Config) (*app, error) {
	db, err := database.NewDB(cfg.Storage.DataDir)
	if err != nil {
		return nil, errors.WrapError(err, "database init failed")
	}

	repo := database.NewRepository(db)
	metrics := monitoring.NewMetrics()
	logger := monitoring.NewLogger()

	source := feed.NewGuardedSource(feed.NewMockSource(cfg.Feed.Seed, cfg.Feed.MentionsPerDay))
	thresholds := quality.NewThresholdStore(cfg.Storage.DataDir)

	redisClient, redisErr := ratelimit.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)

	securityConfig := security.DefaultSecurityConfig()
	securityConfig.AllowedOrigins = cfg.Server.AllowedOrigins
	securityConfig.RequestTimeout = cfg.Server.RequestTimeout

	return &app{
		cfg:         cfg,
		db:          db,
		repo:        repo,
		sessions:    database.NewSessionService(repo, cfg.Auth.JWTSecret),
		filterStore: filters.NewStore(repo, 2*time.Second),
		thresholds:  thresholds,
		source:      source,
		charts:      dashboard.NewService(source, thresholds, metrics, logger),
		rankings:    rankings.NewService(repo, source),
		metrics:     metrics,
		logger:      logger,
		redis:       redisClient,
		limiter:     ratelimit.NewRateLimiter(redisClient, ratelimit.DefaultConfig(), metrics),
		security:    security.NewSecurityMiddleware(securityConfig),
		cache:       cache.NewCache(cfg.Cache.TTL),
		compression: middleware.NewCompressionMiddleware(middleware.DefaultCompressionConfig()),
		privacy:     privacy.NewService(repo, cfg.Storage.SessionRetention),
		redisErr:    redisErr,
	}, nil
}

func (a *app) router() *gin.Engine {
	r := gin.New()

	r.Use(a.compression.Handler())
	r.Use(monitoring.MonitoringMiddleware(a.metrics, a.logger))
	r.Use(monitoring.SecurityMonitoringMiddleware(a.logger))
	r.Use(errors.ErrorHandler())
	r.Use(errors.RecoveryHandler())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     a.cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.Use(a.security.SecurityHeaders)
	r.Use(a.security.RequestTimeout)
	r.Use(a.security.ValidateContentType)

	r.Use(a.limiter.IPRateLimitMiddleware())
	r.Use(a.limiter.WriteRateLimitMiddleware())

	// Response cache on the chart endpoints; filter parameters live in the
	// query string so the key covers them.
	r.Use(a.cache.Middleware(a.metrics,
		"/api/v1/mentions",
		"/api/v1/sentiment",
		"/api/v1/demographics",
		"/api/v1/parties",
		"/api/v1/politicians"))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   "1.0.0",
			"feed": gin.H{
				"breaker": a.source.BreakerState(),
			},
			"database": a.db.GetPoolStats(),
		})
	})

	r.GET("/metrics", func(c *gin.Context) {
		c.JSON(http.StatusOK, a.metrics.GetStats())
	})

	r.GET("/cache/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"response_cache": a.cache.Stats(),
			"rankings_cache": a.rankings.GetCacheStats(),
			"compression":    a.compression.GetStats(),
		})
	})

	r.GET("/privacy/policy", func(c *gin.Context) {
		c.JSON(http.StatusOK, a.privacy.GetDataRetentionInfo())
	})

	r.GET("/ratelimit/status", a.limiter.HandleRateLimitStatus())
	r.GET("/ratelimit/stats", a.limiter.HandleRateLimitStats())

	// Swagger documentation routes
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	handlers := dashboard.NewHandlers(a.charts, a.rankings, a.sessions,
		a.filterStore, a.thresholds, a.security, a.privacy)
	handlers.Register(r.Group("/api/v1"))

	return r
}

func (a *app) close() {
	a.filterStore.FlushAll()
	a.limiter.Close()
	errors.SafeClose(a.redis, "redis client")
	errors.SafeClose(a.db, "database")
}
