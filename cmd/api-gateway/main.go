package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/shift-coverage-api/api/swagger"
	"github.com/noah-isme/shift-coverage-api/internal/handler"
	"github.com/noah-isme/shift-coverage-api/internal/middleware"
	"github.com/noah-isme/shift-coverage-api/internal/repository"
	"github.com/noah-isme/shift-coverage-api/internal/service"
	"github.com/noah-isme/shift-coverage-api/pkg/cache"
	"github.com/noah-isme/shift-coverage-api/pkg/config"
	"github.com/noah-isme/shift-coverage-api/pkg/database"
	"github.com/noah-isme/shift-coverage-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/shift-coverage-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/shift-coverage-api/pkg/middleware/requestid"
)

// @title Shift Coverage API
// @version 0.1.0
// @description Weekly shift planning boards, demand coverage and assignment interval commits
// @BasePath /api/v1
// @schemes http

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.RunMigrations(db.DB, logr); err != nil {
			logr.Fatal("failed to migrate database", zap.Error(err))
		}
	}

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, planning sessions stay in memory", zap.Error(err))
		redisClient = nil
	}

	metricsSvc := service.NewMetricsService()
	validate := validator.New()

	employeeRepo := repository.NewEmployeeRepository(db)
	qualificationRepo := repository.NewQualificationRepository(db)
	ruleRepo := repository.NewDemandRuleRepository(db)
	overrideRepo := repository.NewDayOverrideRepository(db)
	intervalRepo := repository.NewAssignmentIntervalRepository(db)
	revisionRepo := repository.NewPlanRevisionRepository(db)
	mappingRepo := repository.NewShiftMappingRepository(db)

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()

	var sessionBackend service.SessionBackend
	if redisClient != nil {
		sessionRepo := repository.NewSessionRepository(redisClient, logr)
		defer sessionRepo.Close() //nolint:errcheck
		sessionBackend = sessionRepo
	} else {
		memory := service.NewMemorySessionBackend()
		go memory.RunSweeper(sweepCtx, time.Minute, logr)
		sessionBackend = memory
	}
	sessionStore := service.NewSessionStore(sessionBackend, metricsSvc, cfg.Planning.SessionTTL, logr)

	rewriter := service.NewIntervalRewriter(intervalRepo, revisionRepo, db, logr, nil)
	planningSvc := service.NewPlanningService(
		employeeRepo,
		qualificationRepo,
		ruleRepo,
		overrideRepo,
		intervalRepo,
		revisionRepo,
		mappingRepo,
		rewriter,
		sessionStore,
		metricsSvc,
		validate,
		logr,
		service.PlanningConfig{
			MaxHorizonWeeks: cfg.Planning.MaxHorizonWeeks,
			StrictRules:     cfg.Planning.StrictRules,
		},
	)
	mappingSvc := service.NewShiftMappingService(mappingRepo, validate, logr)

	planningHandler := handler.NewPlanningHandler(planningSvc)
	mappingHandler := handler.NewShiftMappingHandler(mappingSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, map[string]handler.Pinger{
		"postgres": db,
		"redis":    cache.Pinger{Client: redisClient},
	})

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
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	api := r.Group(cfg.APIPrefix)
	sessions := api.Group("/planning/sessions")
	sessions.POST("", planningHandler.Open)
	sessions.GET("/:id", planningHandler.Get)
	sessions.DELETE("/:id", planningHandler.Close)
	sessions.POST("/:id/place", planningHandler.Place)
	sessions.POST("/:id/move", planningHandler.Move)
	sessions.POST("/:id/remove", planningHandler.Remove)
	sessions.GET("/:id/coverage", planningHandler.Coverage)
	sessions.POST("/:id/commit", planningHandler.Commit)

	units := api.Group("/units/:unitId")
	units.GET("/shift-mapping", mappingHandler.Get)
	units.PUT("/shift-mapping", mappingHandler.Update)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logr.Info("shutting down", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
