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
	"go.uber.org/zap"

	_ "github.com/noah-isme/radio-schedule-api/api/swagger"
	"github.com/noah-isme/radio-schedule-api/internal/handler"
	"github.com/noah-isme/radio-schedule-api/internal/repository"
	"github.com/noah-isme/radio-schedule-api/internal/router"
	"github.com/noah-isme/radio-schedule-api/internal/service"
	"github.com/noah-isme/radio-schedule-api/pkg/cache"
	"github.com/noah-isme/radio-schedule-api/pkg/config"
	"github.com/noah-isme/radio-schedule-api/pkg/database"
	"github.com/noah-isme/radio-schedule-api/pkg/jobs"
	"github.com/noah-isme/radio-schedule-api/pkg/logger"
	"github.com/noah-isme/radio-schedule-api/pkg/messaging"
	"github.com/noah-isme/radio-schedule-api/pkg/middleware/ratelimit"
)

// @title Radio Schedule API
// @version 1.0.0
// @description Weekly slot availability and show submission review for the station
// @BasePath /
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

	location, err := time.LoadLocation(cfg.Schedule.Timezone)
	if err != nil {
		logr.Warn("unknown schedule timezone, falling back to UTC", zap.String("timezone", cfg.Schedule.Timezone), zap.Error(err))
		location = time.UTC
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.RunMigrations {
		if err := database.RunMigrations(db.DB, logr); err != nil {
			logr.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, running without cache and slot locks", zap.Error(err))
		redisClient = nil
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	recurringRepo := repository.NewRecurringScheduleRepository(db).WithReadRetries(cfg.Database.ReadRetries)
	overrideRepo := repository.NewScheduleOverrideRepository(db).WithReadRetries(cfg.Database.ReadRetries)
	submissionRepo := repository.NewShowSubmissionRepository(db).WithReadRetries(cfg.Database.ReadRetries)
	userRepo := repository.NewUserRepository(db)

	metrics := service.NewMetricsService()
	validate := validator.New()
	catalog := service.NewSlotCatalog(cfg.Schedule.Departments)

	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Schedule.CacheTTL, logr, cfg.Schedule.CacheEnabled && redisClient != nil)
	locks := service.NewSlotLockService(nil, cfg.Schedule.LockTTL, logr)
	if redisClient != nil {
		locks = service.NewSlotLockService(cacheRepo, cfg.Schedule.LockTTL, logr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	events := service.NewEventService(nil, jobs.QueueConfig{}, metrics, logr)
	if cfg.Events.Enabled {
		publisher, err := messaging.NewPublisher(cfg.Events.AMQPURL, cfg.Events.Exchange)
		if err != nil {
			logr.Warn("event publisher unavailable, schedule events disabled", zap.Error(err))
		} else {
			defer publisher.Close() //nolint:errcheck
			events = service.NewEventService(publisher, jobs.QueueConfig{
				Workers:    cfg.Events.Workers,
				MaxRetries: cfg.Events.MaxRetries,
				RetryDelay: time.Second,
			}, metrics, logr)
		}
	}
	events.Start(ctx)
	defer events.Stop()

	checker := service.NewConflictChecker(catalog, recurringRepo, overrideRepo, submissionRepo)
	availabilitySvc := service.NewAvailabilityService(catalog, recurringRepo, overrideRepo, submissionRepo, cacheSvc, metrics, logr)
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	recurringSvc := service.NewRecurringScheduleService(recurringRepo, checker, cacheSvc, events, userRepo, validate, logr)
	overrideSvc := service.NewScheduleOverrideService(overrideRepo, catalog, cacheSvc, events, userRepo, validate, logr)
	submissionSvc := service.NewSubmissionService(service.SubmissionServiceDeps{
		Submissions: submissionRepo,
		Recurring:   recurringRepo,
		Checker:     checker,
		Tx:          db,
		Catalog:     catalog,
		Locks:       locks,
		Cache:       cacheSvc,
		Events:      events,
		Audit:       userRepo,
		Metrics:     metrics,
		Location:    location,
	}, validate, logr)
	exportSvc := service.NewExportService(availabilitySvc, logr)

	if cfg.Retention.Enabled {
		retention := service.NewRetentionWorker(overrideRepo, locks, userRepo, metrics, service.RetentionConfig{
			OverrideDays: cfg.Retention.OverrideDays,
			CronSpec:     cfg.Retention.CronSpec,
			Location:     location,
		}, logr)
		if err := retention.Start(ctx); err != nil {
			logr.Fatal("failed to schedule override retention", zap.Error(err))
		}
		defer retention.Stop()
	}

	checks := map[string]handler.HealthCheck{
		"postgres": db.PingContext,
	}
	if redisClient != nil {
		checks["redis"] = cacheRepo.Ping
	}

	engine := router.Setup(router.Handlers{
		Auth:         handler.NewAuthHandler(authSvc),
		Availability: handler.NewAvailabilityHandler(availabilitySvc, catalog, exportSvc),
		Recurring:    handler.NewRecurringScheduleHandler(recurringSvc),
		Overrides:    handler.NewScheduleOverrideHandler(overrideSvc),
		Submissions:  handler.NewSubmissionHandler(submissionSvc),
		Metrics:      handler.NewMetricsHandler(metrics.Handler(), checks, logr),
	}, router.Options{
		APIPrefix:      cfg.APIPrefix,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		EnableDocs:     cfg.Env != config.EnvProduction,
		Tokens:         authSvc,
		Observer:       metrics,
		AuditWriter:    userRepo,
		SubmitLimiter:  ratelimit.New(cfg.Submissions.RateLimit, cfg.Submissions.RateBurst),
		Logger:         logr,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
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
