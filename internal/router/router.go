// Package router assembles the HTTP route table and middleware chain.
package router

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/rentdesk/rentdesk/internal/handler"
	"github.com/rentdesk/rentdesk/internal/metrics"
	"github.com/rentdesk/rentdesk/internal/middleware"
	"github.com/rentdesk/rentdesk/internal/service"
)

// Config carries the knobs the router needs from application config.
type Config struct {
	IsDevelopment      bool
	CORSAllowedOrigins []string
	MaxRequestBodySize int64

	RateLimitEnabled bool
	RateLimitRPM     int
	RateLimitBurst   int
}

// Deps are the collaborators behind the routes.
type Deps struct {
	Services      *service.Services
	Tokens        middleware.TokenParser
	Revocations   middleware.RevocationChecker
	Limiter       middleware.RateLimiter
	LoginThrottle *middleware.LoginThrottle
	DB            handler.HealthChecker
	Cache         handler.HealthChecker
	Metrics       metrics.Recorder
	// Exposition serves /metrics; nil answers 503.
	Exposition http.Handler
	Logger     *slog.Logger
}

// New builds the root handler.
func New(cfg Config, deps Deps) http.Handler {
	logger := deps.Logger
	svc := deps.Services
	if deps.Metrics == nil {
		deps.Metrics = metrics.NewNoop()
	}
	if cfg.MaxRequestBodySize <= 0 {
		cfg.MaxRequestBodySize = middleware.DefaultSecurityConfig().MaxRequestBodySize
	}

	root := handler.New()
	health := handler.NewHealthHandler(deps.DB, deps.Cache)
	metricsHandler := handler.NewMetricsHandler(deps.Exposition)
	authH := handler.NewAuthHandler(svc.Auth, logger)
	properties := handler.NewPropertyHandler(svc.Properties, logger)
	tenants := handler.NewTenantHandler(svc.Tenants, logger)
	leases := handler.NewLeaseHandler(svc.Leases, logger)
	maintenance := handler.NewMaintenanceHandler(svc.Maintenance, logger)
	messages := handler.NewMessageHandler(svc.Messages, logger)
	payments := handler.NewPaymentHandler(svc.Payments, logger)
	notifications := handler.NewNotificationHandler(svc.Notifications, logger)
	dashboard := handler.NewDashboardHandler(svc.Dashboard, logger)
	admin := handler.NewAdminHandler(svc.Admin, logger)

	authCfg := middleware.AuthConfig{
		Logger:      logger,
		Tokens:      deps.Tokens,
		Revocations: deps.Revocations,
	}
	rateLimitCfg := middleware.RateLimitConfig{
		Logger:            logger,
		Limiter:           deps.Limiter,
		Enabled:           cfg.RateLimitEnabled,
		RequestsPerMinute: cfg.RateLimitRPM,
		Burst:             cfg.RateLimitBurst,
	}
	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.CORSAllowedOrigins

	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger, cfg.IsDevelopment))
	r.Use(middleware.Metrics(deps.Metrics))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment}))
	r.Use(middleware.CORS(corsCfg))
	r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))

	r.Get("/", root.Root)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)
	r.Get("/metrics", metricsHandler.Metrics)

	landlord := middleware.RequireLandlord()

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RequireJSON)

		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.RateLimitIP(rateLimitCfg)).Post("/register", authH.Register)
			r.With(deps.LoginThrottle.Middleware).Post("/login", authH.Login)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(authCfg))
				r.Post("/logout", authH.Logout)
				r.Get("/me", authH.Me)
				r.Patch("/me", authH.UpdateMe)
				r.Post("/password", authH.ChangePassword)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(authCfg))
			r.Use(middleware.RateLimitAPI(rateLimitCfg))

			r.Route("/properties", func(r chi.Router) {
				r.With(landlord).Get("/", properties.List)
				r.With(landlord).Post("/", properties.Create)
				r.Get("/{id}", properties.Get)
				r.With(landlord).Put("/{id}", properties.Update)
				r.With(landlord).Patch("/{id}", properties.Update)
				r.With(landlord).Delete("/{id}", properties.Delete)
				r.Get("/{id}/leases", properties.Leases)
			})

			r.Route("/tenants", func(r chi.Router) {
				r.Get("/", tenants.List)
				r.With(landlord).Post("/", tenants.Create)
				r.Get("/{id}", tenants.Get)
				r.With(landlord).Put("/{id}", tenants.Update)
				r.With(landlord).Patch("/{id}", tenants.Update)
				r.With(landlord).Delete("/{id}", tenants.Delete)
			})

			r.Route("/leases", func(r chi.Router) {
				r.Get("/", leases.List)
				r.With(landlord).Post("/", leases.Create)
				r.Get("/{id}", leases.Get)
				r.With(landlord).Patch("/{id}", leases.Update)
				r.With(landlord).Delete("/{id}", leases.Delete)
				r.With(landlord).Post("/{id}/activate", leases.Activate)
				r.With(landlord).Post("/{id}/renew", leases.Renew)
				r.With(landlord).Post("/{id}/terminate", leases.Terminate)
				r.Get("/{id}/balance", leases.Balance)
			})

			r.Route("/maintenance/requests", func(r chi.Router) {
				r.Get("/", maintenance.List)
				r.Post("/", maintenance.Create)
				r.Get("/{id}", maintenance.Get)
				r.Patch("/{id}", maintenance.Update)
				r.Post("/{id}/status", maintenance.UpdateStatus)
			})

			r.Route("/messages", func(r chi.Router) {
				r.Get("/threads", messages.ListThreads)
				r.Post("/threads", messages.CreateThread)
				r.Get("/threads/{id}", messages.GetThread)
				r.Post("/threads/{id}/messages", messages.PostMessage)
				r.Post("/threads/{id}/read", messages.MarkRead)
				r.Get("/unread-count", messages.UnreadCount)
			})

			r.Route("/payments", func(r chi.Router) {
				r.Get("/", payments.List)
				r.Post("/", payments.Record)
				r.Get("/{id}", payments.Get)
				r.With(landlord).Post("/{id}/status", payments.UpdateStatus)
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", notifications.List)
				r.Post("/read-all", notifications.MarkAllRead)
				r.Post("/{id}/read", notifications.MarkRead)
			})

			r.Get("/dashboard", dashboard.Get)

			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireAdmin())
				r.Get("/users", admin.ListUsers)
				r.Patch("/users/{id}", admin.UpdateUser)
			})
		})
	})

	r.NotFound(root.NotFound)
	r.MethodNotAllowed(root.MethodNotAllowed)

	return r
}
