package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"classifieds/internal/config"
	"classifieds/internal/domain"
	"classifieds/internal/handler"
	"classifieds/internal/metrics"
	"classifieds/internal/middleware"
	"classifieds/internal/repository"
	"classifieds/internal/service"
	"classifieds/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Инициализация логгера
	appLogger := logger.New(cfg.Log.Level,
		logger.WithJSON(cfg.Log.JSON),
		logger.WithFile(logger.FileConfig{
			Path:       cfg.Log.File,
			MaxSizeMB:  cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
			MaxAgeDays: cfg.Log.MaxAgeDays,
		}),
	)

	// Подключение к PostgreSQL
	poolCfg, err := pgxpool.ParseConfig(cfg.Database.DSN)
	if err != nil {
		appLogger.Fatal("Failed to parse database DSN", "error", err)
	}
	poolCfg.MaxConns = int32(cfg.Database.MaxConnections)
	poolCfg.MaxConnIdleTime = cfg.Database.MaxIdleTime
	poolCfg.MaxConnLifetime = cfg.Database.ConnMaxLifetime

	dbPool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", "error", err)
	}
	defer dbPool.Close()

	// Проверка подключения к БД
	if err := dbPool.Ping(context.Background()); err != nil {
		appLogger.Fatal("Failed to ping database", "error", err)
	}
	appLogger.Info("Database connection established")

	checks := map[string]handler.HealthCheck{
		"postgres": dbPool.Ping,
	}

	// Redis нужен только для общего хранилища окон лимитера
	var rdb *redis.Client
	if cfg.RateLimit.Backend == "redis" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		if err := rdb.Ping(context.Background()).Err(); err != nil {
			appLogger.Fatal("Failed to connect to Redis", "error", err)
		}
		appLogger.Info("Redis connection established")

		checks["redis"] = func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}
	}

	clock := clockwork.NewRealClock()
	m := metrics.New()

	// Инициализация репозиториев
	repos := repository.NewRepositories(dbPool, rdb, appLogger)

	// Инициализация сервисов
	services := service.NewServices(repos, cfg, clock, m, appLogger)

	// Инициализация middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret, cfg.JWT.Issuer, appLogger)
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(services.RateLimit, cfg.RateLimit.Presets, m, appLogger)
	cronLimiter := rate.NewLimiter(rate.Limit(cfg.Cron.TriggerRPS), cfg.Cron.TriggerBurst)

	// Инициализация handlers
	handlers := handler.NewHandlers(services, cfg, checks, clock, appLogger)

	// Настройка роутера
	router := setupRouter(handlers, authMiddleware, rateLimitMiddleware, cronLimiter, m, cfg, appLogger)

	// Запуск HTTP сервера
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		appLogger.Info("Starting server", "port", cfg.Server.Port, "rate_limit_backend", cfg.RateLimit.Backend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Ожидание сигнала для graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Fatal("Server forced to shutdown", "error", err)
	}

	appLogger.Info("Server exited")
}

func setupRouter(
	handlers *handler.Handlers,
	authMiddleware *middleware.AuthMiddleware,
	rateLimitMiddleware *middleware.RateLimitMiddleware,
	cronLimiter *rate.Limiter,
	m *metrics.Metrics,
	cfg *config.Config,
	log logger.Logger,
) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.RequestLogger(log, m))
	router.Use(middleware.ErrorHandler(log))

	// Health check
	router.GET("/health", handlers.Health.Check)
	router.GET("/ready", handlers.Health.Ready)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})))

	// Триггеры внешнего планировщика
	cron := router.Group("/api/cron")
	cron.Use(middleware.CronAuth(cfg.Cron.Secret, cronLimiter, log))
	{
		cron.GET("/expire-promotions", handlers.Cron.ExpirePromotions)
		cron.POST("/expire-promotions", handlers.Cron.ExpirePromotions)
		cron.GET("/reset-quotas", handlers.Cron.ResetQuotas)
		cron.POST("/reset-quotas", handlers.Cron.ResetQuotas)
	}

	// API v1
	v1 := router.Group("/api/v1")
	v1.Use(authMiddleware.RequireAuth())
	{
		listings := v1.Group("/listings")
		{
			listings.POST("", rateLimitMiddleware.Limit(domain.RateLimitPresetListings), handlers.Listing.Create)
		}

		users := v1.Group("/users")
		users.Use(rateLimitMiddleware.Limit(domain.RateLimitPresetAPI))
		{
			users.GET("/me/quota", handlers.Quota.GetMine)
		}

		payments := v1.Group("/payments")
		{
			payments.POST("/complete", rateLimitMiddleware.Limit(domain.RateLimitPresetPayments), handlers.Payment.Complete)
		}

		admin := v1.Group("/admin")
		admin.Use(authMiddleware.RequireRole(domain.RoleAdmin), rateLimitMiddleware.Limit(domain.RateLimitPresetAPI))
		{
			admin.POST("/listings/:id/moderate", handlers.Admin.ModerateListing)
			admin.POST("/users/:id/ban", handlers.Admin.BanUser)
			admin.POST("/users/:id/unban", handlers.Admin.UnbanUser)
			admin.GET("/audit-logs", handlers.Admin.ListAuditLogs)
		}
	}

	return router
}
