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

	_ "github.com/noah-isme/aicte-approval-api/api/swagger"
	"github.com/noah-isme/aicte-approval-api/internal/handler"
	internalmiddleware "github.com/noah-isme/aicte-approval-api/internal/middleware"
	"github.com/noah-isme/aicte-approval-api/internal/repository"
	"github.com/noah-isme/aicte-approval-api/internal/service"
	"github.com/noah-isme/aicte-approval-api/pkg/cache"
	"github.com/noah-isme/aicte-approval-api/pkg/config"
	"github.com/noah-isme/aicte-approval-api/pkg/database"
	"github.com/noah-isme/aicte-approval-api/pkg/jobs"
	"github.com/noah-isme/aicte-approval-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/aicte-approval-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/aicte-approval-api/pkg/middleware/requestid"
	"github.com/noah-isme/aicte-approval-api/pkg/timeline"
)

// @title Technical Education Approval API
// @version 1.0.0
// @description Application approval workflow: status machine, timelines, document ledger, evaluator assignments and dashboards.
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	catalog, err := timeline.Load(cfg.Workflow.StageTemplateFile)
	if err != nil {
		logr.Fatal("failed to load stage templates", zap.Error(err))
	}

	metrics := service.NewMetricsService()
	checks := map[string]handler.Pinger{"database": handler.PingFunc(db.PingContext)}

	var cacheRepo service.CacheRepository
	if cfg.Dashboard.CacheEnabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, dashboard cache disabled", zap.Error(err))
		} else {
			defer client.Close() //nolint:errcheck
			redisRepo := repository.NewCacheRepository(client, logr)
			cacheRepo = redisRepo
			checks["redis"] = redisRepo
		}
	}
	cacheService := service.NewCacheService(cacheRepo, metrics, cfg.Dashboard.CacheTTL, logr, cacheRepo != nil)

	windows := service.DeadlineWindows{Upcoming: cfg.Assignments.UpcomingWindow, Nearing: cfg.Assignments.NearingWindow}
	uow := repository.NewUnitOfWork(db, metrics.ObserveDBTransaction)
	reads := uow.Stores()

	dashboardService := service.NewDashboardService(reads, cacheService, logr, service.DashboardServiceConfig{
		CacheTTL: cfg.Dashboard.CacheTTL,
		Windows:  windows,
	})

	events := service.NewWorkflowEventDispatcher(dashboardService, metrics, logr, jobs.QueueConfig{
		Workers:    cfg.Events.WorkerConcurrency,
		BufferSize: cfg.Events.BufferSize,
		MaxRetries: cfg.Events.WorkerRetries,
		RetryDelay: 200 * time.Millisecond,
		Logger:     logr,
	})
	// Workers outlive the signal context so in-flight requests can still publish during shutdown.
	events.Start(context.Background())

	applicationService := service.NewApplicationService(
		uow,
		reads,
		service.NewTimelineTracker(catalog),
		validator.New(),
		logr,
		service.ApplicationServiceConfig{NumberPrefix: cfg.Workflow.NumberPrefix},
		service.WithApplicationMetrics(metrics),
		service.WithWorkflowEvents(events),
	)
	documentService := service.NewDocumentService(reads, events, logr)
	assignmentService := service.NewAssignmentService(reads.Assignments, windows, logr)
	exportService := service.NewExportService(dashboardService, logr)
	tokenService := service.NewTokenService(service.TokenConfig{
		Secret: cfg.JWT.Secret,
		Issuer: cfg.JWT.Issuer,
		Expiry: cfg.JWT.Expiration,
	})

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metrics))

	handler.RegisterRoutes(r, handler.RouterDependencies{
		Tokens:       tokenService,
		Applications: handler.NewApplicationHandler(applicationService),
		Assignments:  handler.NewAssignmentHandler(applicationService, assignmentService),
		Documents:    handler.NewDocumentHandler(documentService),
		Dashboard:    handler.NewDashboardHandler(dashboardService, exportService),
		Metrics:      handler.NewMetricsHandler(metrics, checks),
	})

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("http shutdown failed", zap.Error(err))
	}
	if err := events.Drain(shutdownCtx); err != nil {
		logr.Warn("workflow events not drained", zap.Error(err))
	}
	events.Stop()
}
