package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/optilog/procurement-api/api/swagger"
	"github.com/optilog/procurement-api/internal/handler"
	"github.com/optilog/procurement-api/internal/middleware"
	"github.com/optilog/procurement-api/internal/models"
	"github.com/optilog/procurement-api/internal/repository"
	"github.com/optilog/procurement-api/internal/service"
	"github.com/optilog/procurement-api/pkg/cache"
	"github.com/optilog/procurement-api/pkg/config"
	"github.com/optilog/procurement-api/pkg/database"
	"github.com/optilog/procurement-api/pkg/jobs"
	"github.com/optilog/procurement-api/pkg/logger"
	corsmiddleware "github.com/optilog/procurement-api/pkg/middleware/cors"
	reqidmiddleware "github.com/optilog/procurement-api/pkg/middleware/requestid"
	"github.com/optilog/procurement-api/pkg/storage"
)

// @title Procurement API
// @version 1.0.0
// @description Procurement request lifecycle service
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Database.MigrationsDir != "" {
		runMigrations(cfg, logr)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	// Repositories.
	userRepo := repository.NewUserRepository(db)
	supplierRepo := repository.NewSupplierRepository(db)
	logistRepo := repository.NewLogistRepository(db)
	productRepo := repository.NewProductRepository(db)
	requestRepo := repository.NewRequestRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)
	reportRepo := repository.NewReportRepository(db)

	// Redis cache is optional; analytics degrade to direct queries without it.
	var cacheSvc *service.CacheService
	if cfg.Analytics.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, analytics cache disabled", "error", err)
		} else {
			defer redisClient.Close() //nolint:errcheck
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Analytics.CacheTTL, logr, true)
		}
	}

	// Services.
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "procurement-api",
	})
	userSvc := service.NewUserService(userRepo, validate, logr)
	supplierSvc := service.NewSupplierService(supplierRepo, userSvc, userRepo, validate, logr)
	logistSvc := service.NewLogistService(logistRepo, userSvc, userRepo, validate, logr)
	productSvc := service.NewProductService(productRepo, supplierRepo, validate, logr)
	requestSvc := service.NewRequestService(requestRepo, productRepo, logistRepo, supplierRepo, userRepo, logr)
	analyticsSvc := service.NewAnalyticsService(analyticsRepo, cacheSvc, metricsSvc, logr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var reportSvc *service.ReportService
	if cfg.Reports.Enabled {
		store, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to init report storage", "error", err)
		}
		signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)
		exportSvc := service.NewExportService(analyticsRepo, store, signer, service.ExportConfig{
			APIPrefix: cfg.APIPrefix,
			ResultTTL: cfg.Reports.SignedURLTTL,
		}, logr, nil, nil)
		worker := service.NewReportWorker(reportRepo, exportSvc, cfg.Reports.WorkerRetries, logr)
		queue := jobs.NewQueue("reports", worker.Handle, jobs.QueueConfig{
			Workers:    cfg.Reports.WorkerConcurrency,
			MaxRetries: cfg.Reports.WorkerRetries,
			Logger:     logr,
		})
		queue.Start(ctx)
		defer queue.Stop()

		reportSvc = service.NewReportService(reportRepo, queue, exportSvc, logr, service.ReportServiceConfig{
			ResultTTL:       cfg.Reports.SignedURLTTL,
			CleanupInterval: time.Hour,
			MaxRetries:      cfg.Reports.WorkerRetries,
		})
		reportSvc.RecoverPendingJobs(ctx)
		reportSvc.StartCleanup(ctx)
	}

	// Handlers.
	authHandler := handler.NewAuthHandler(authSvc)
	supplierHandler := handler.NewSupplierHandler(supplierSvc)
	logistHandler := handler.NewLogistHandler(logistSvc)
	productHandler := handler.NewProductHandler(productSvc)
	requestHandler := handler.NewRequestHandler(requestSvc, logistSvc, supplierSvc)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", middleware.JWT(authSvc), authHandler.Logout)
		auth.POST("/change-password", middleware.JWT(authSvc), authHandler.ChangePassword)
	}

	suppliers := api.Group("/suppliers")
	{
		suppliers.POST("", supplierHandler.Register)
		suppliers.GET("", middleware.JWT(authSvc), supplierHandler.List)
		suppliers.PUT("/me", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleSupplier), supplierHandler.UpdateMe)
		suppliers.GET("/:id", middleware.JWT(authSvc), supplierHandler.Get)
	}

	logists := api.Group("/logists")
	{
		logists.POST("", logistHandler.Register)
		logists.PUT("/me", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleLogist), logistHandler.UpdateMe)
		logists.GET("/:id", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleAdmin), logistHandler.Get)
	}

	products := api.Group("/products", middleware.JWT(authSvc))
	{
		products.POST("", middleware.RequireRoles(models.RoleSupplier), productHandler.Create)
		products.GET("", productHandler.List)
		products.PUT("/:id", middleware.RequireRoles(models.RoleSupplier), productHandler.Update)
	}

	requests := api.Group("/requests", middleware.JWT(authSvc))
	{
		requests.POST("", middleware.RequireRoles(models.RoleLogist), requestHandler.Create)
		requests.GET("", requestHandler.List)
		requests.GET("/:id", requestHandler.Get)
		requests.POST("/:id/reply", middleware.RequireRoles(models.RoleSupplier), requestHandler.Reply)
		requests.PUT("/:id/status", middleware.RequireRoles(models.RoleAdmin), requestHandler.ChangeStatus)
		requests.POST("/:id/confirm", middleware.RequireRoles(models.RoleLogist), requestHandler.ConfirmDelivery)
	}

	analytics := api.Group("/analytics", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleAdmin), middleware.WithResponseMeta())
	{
		analytics.GET("/total-requests", analyticsHandler.TotalRequests)
		analytics.GET("/rejected-requests", analyticsHandler.RejectedRequests)
		analytics.GET("/completed-requests", analyticsHandler.CompletedRequests)
		analytics.GET("/supplier-payments", analyticsHandler.SupplierPayments)
		analytics.GET("/overview", analyticsHandler.Overview)
		analytics.GET("/system", analyticsHandler.SystemMetrics)
	}

	if reportSvc != nil {
		reportHandler := handler.NewReportHandler(reportSvc)
		reports := api.Group("/reports", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleAdmin))
		{
			reports.POST("/monthly", middleware.Audit(userRepo, models.AuditActionReportCreate, "report"), reportHandler.CreateMonthly)
			reports.GET("/:id", reportHandler.Status)
		}
		// Download is authorised by the signed token alone.
		api.GET("/export/:token", reportHandler.Download)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Warnw("graceful shutdown failed", "error", err)
	}
}

func runMigrations(cfg *config.Config, logr *zap.Logger) {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(cfg.Database.User),
		url.QueryEscape(cfg.Database.Password),
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.Name,
		cfg.Database.SSLMode,
	)
	migration, err := migrate.New(cfg.Database.MigrationsDir, dsn)
	if err != nil {
		logr.Sugar().Fatalw("cannot create migrate instance", "error", err)
	}
	if err := migration.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logr.Sugar().Fatalw("failed to run migrations", "error", err)
	}
	srcErr, dbErr := migration.Close()
	if srcErr != nil || dbErr != nil {
		logr.Sugar().Warnw("closing migrate instance", "source_error", srcErr, "db_error", dbErr)
	}
	logr.Sugar().Infow("database migrated")
}
