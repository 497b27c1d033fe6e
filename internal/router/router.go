package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/radio-schedule-api/internal/handler"
	"github.com/noah-isme/radio-schedule-api/internal/middleware"
	"github.com/noah-isme/radio-schedule-api/internal/models"
	"github.com/noah-isme/radio-schedule-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/radio-schedule-api/pkg/middleware/cors"
	"github.com/noah-isme/radio-schedule-api/pkg/middleware/ratelimit"
	reqidmiddleware "github.com/noah-isme/radio-schedule-api/pkg/middleware/requestid"
)

// Handlers bundles every HTTP handler mounted by Setup.
type Handlers struct {
	Auth         *handler.AuthHandler
	Availability *handler.AvailabilityHandler
	Recurring    *handler.RecurringScheduleHandler
	Overrides    *handler.ScheduleOverrideHandler
	Submissions  *handler.SubmissionHandler
	Metrics      *handler.MetricsHandler
}

// Options carries the cross-cutting collaborators of the router.
type Options struct {
	APIPrefix      string
	AllowedOrigins []string
	EnableDocs     bool
	Tokens         middleware.TokenValidator
	Observer       middleware.RequestObserver
	AuditWriter    middleware.AuditWriter
	SubmitLimiter  *ratelimit.Limiter
	Logger         *zap.Logger
}

// Setup builds the gin engine with every route of the API.
func Setup(h Handlers, opts Options) *gin.Engine {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.APIPrefix == "" {
		opts.APIPrefix = "/api/v1"
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(opts.Logger))
	r.Use(corsmiddleware.New(opts.AllowedOrigins))
	r.Use(middleware.Metrics(opts.Observer))

	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)
	if opts.EnableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	admin := middleware.RequireRoles(models.RoleAdmin)
	staff := middleware.RequireRoles(models.RoleAdmin, models.RoleStaff)

	api := r.Group(opts.APIPrefix)
	api.Use(middleware.WithResponseMeta())
	{
		api.POST("/auth/login", h.Auth.Login)
		api.POST("/submissions", ratelimit.Middleware(opts.SubmitLimiter), h.Submissions.Create)

		authorized := api.Group("")
		authorized.Use(middleware.JWT(opts.Tokens))
		{
			authorized.GET("/auth/me", h.Auth.Me)
			authorized.GET("/slots", h.Availability.Slots)

			availability := authorized.Group("/availability", staff)
			{
				availability.GET("", h.Availability.Weekly)
				availability.GET("/export",
					middleware.Audit(opts.AuditWriter, opts.Logger, models.AuditActionExport, "availability"),
					h.Availability.Export,
				)
			}

			recurring := authorized.Group("/recurring-schedules")
			{
				recurring.GET("", staff, h.Recurring.List)
				recurring.POST("", admin, h.Recurring.Create)
				recurring.PUT("/:id", admin, h.Recurring.Update)
				recurring.DELETE("/:id", admin, h.Recurring.Delete)
			}

			overrides := authorized.Group("/schedule-overrides")
			{
				overrides.GET("", staff, h.Overrides.List)
				overrides.POST("", admin, h.Overrides.Upsert)
				overrides.DELETE("/:id", admin, h.Overrides.Delete)
			}

			submissions := authorized.Group("/submissions")
			{
				submissions.GET("", staff, h.Submissions.List)
				submissions.GET("/:id", staff, h.Submissions.Get)
				submissions.POST("/:id/validate", admin, h.Submissions.Validate)
				submissions.POST("/:id/accept", admin, h.Submissions.Accept)
				submissions.POST("/:id/reject", admin, h.Submissions.Reject)
			}
		}
	}

	return r
}
