package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/omegabiochem/WebApp-sub000/api/swagger"
	"github.com/omegabiochem/WebApp-sub000/internal/handler"
	"github.com/omegabiochem/WebApp-sub000/internal/middleware"
	"github.com/omegabiochem/WebApp-sub000/internal/repository"
	"github.com/omegabiochem/WebApp-sub000/internal/service"
	"github.com/omegabiochem/WebApp-sub000/internal/workflow"
	"github.com/omegabiochem/WebApp-sub000/pkg/cache"
	"github.com/omegabiochem/WebApp-sub000/pkg/config"
	"github.com/omegabiochem/WebApp-sub000/pkg/database"
	"github.com/omegabiochem/WebApp-sub000/pkg/logger"
	corsmiddleware "github.com/omegabiochem/WebApp-sub000/pkg/middleware/cors"
	reqidmiddleware "github.com/omegabiochem/WebApp-sub000/pkg/middleware/requestid"
)

// @title LIMS Report Lifecycle API
// @version 1.0.0
// @description Status workflow, field permissions, validation and correction ledger for lab test reports
// @BasePath /api/v1
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, correction cache disabled", zap.Error(err))
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	var metricsSvc *service.MetricsService
	if cfg.Metrics.Enabled {
		metricsSvc = service.NewMetricsService()
	}

	catalog := workflow.DefaultCatalog()
	validate := validator.New()

	reportRepo := repository.NewReportRepository(db)
	historyRepo := repository.NewStatusHistoryRepository(db)
	correctionRepo := repository.NewCorrectionRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Corrections.CacheTTL, logr, cfg.Corrections.CacheEnabled && redisClient != nil)
	tokenSvc := service.NewTokenService(cfg.JWT.Secret)
	reportSvc := service.NewReportService(reportRepo, historyRepo, catalog, validate, logr,
		service.WithReportMetrics(metricsSvc),
		service.WithReportCache(cacheSvc),
	)
	correctionSvc := service.NewCorrectionService(correctionRepo, reportRepo, catalog, validate, logr,
		service.WithCorrectionCache(cacheSvc, cfg.Corrections.CacheTTL),
		service.WithCorrectionMetrics(metricsSvc),
	)

	reportHandler := handler.NewReportHandler(reportSvc)
	correctionHandler := handler.NewCorrectionHandler(correctionSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, db)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(logger.GinMiddleware(logr))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	if cfg.Metrics.Enabled {
		r.GET(cfg.Metrics.Path, metricsHandler.Prometheus)
	}
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix, middleware.JWT(tokenSvc))
	api.POST("/reports", middleware.RequireRoles(workflow.RoleClient), reportHandler.Create)

	reports := api.Group("/reports/:id")
	reports.GET("", reportHandler.Get)
	reports.GET("/permissions", reportHandler.Permissions)
	reports.POST("/validate", reportHandler.Validate)
	reports.PATCH("/fields", reportHandler.UpdateFields)
	reports.POST("/status", reportHandler.Transition)
	reports.GET("/history", reportHandler.History)
	reports.GET("/corrections", correctionHandler.List)
	reports.POST("/corrections", correctionHandler.Create)
	reports.PATCH("/corrections/:correctionId/resolve", correctionHandler.Resolve)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
