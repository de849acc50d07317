// Package main is the entrypoint for the Rentdesk API server.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/rentdesk/rentdesk/internal/activity"
	"github.com/rentdesk/rentdesk/internal/auth"
	"github.com/rentdesk/rentdesk/internal/cache"
	"github.com/rentdesk/rentdesk/internal/config"
	"github.com/rentdesk/rentdesk/internal/metrics"
	"github.com/rentdesk/rentdesk/internal/middleware"
	"github.com/rentdesk/rentdesk/internal/repository"
	"github.com/rentdesk/rentdesk/internal/router"
	"github.com/rentdesk/rentdesk/internal/server"
	"github.com/rentdesk/rentdesk/internal/service"
	"github.com/rentdesk/rentdesk/internal/worker"
)

// sweepJobTimeout bounds a single lease sweep run.
const sweepJobTimeout = 10 * time.Minute

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := initLogger(cfg)

	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", config.RedactURL(cfg.DatabaseURL)),
		)
		return errors.New("database unavailable")
	}
	logger.Info("connected to database")

	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		repo.Close()
		logger.Error("failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", config.RedactURL(cfg.RedisURL)),
		)
		return errors.New("redis unavailable")
	}
	logger.Info("connected to Redis")

	var (
		recorder   metrics.Recorder = metrics.NewNoop()
		exposition http.Handler
	)
	if cfg.MetricsEnabled {
		prom := metrics.NewPrometheus()
		recorder = prom
		exposition = prom.Handler()
	}

	issuer, err := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	if err != nil {
		return err
	}

	publisher := activity.NewPublisher(cacheClient.Client(), logger, recorder)
	services := service.New(service.Deps{
		Store:   service.NewStore(repo),
		Cache:   cacheClient,
		Tokens:  cacheClient,
		Issuer:  issuer,
		Hasher:  auth.NewHasher(auth.DefaultParams()),
		Events:  publisher,
		Metrics: recorder,
		Logger:  logger,
	}, service.Options{
		ExpiringWindowDays: cfg.LeaseExpiringWindowDays,
		DashboardCacheTTL:  cfg.DashboardCacheTTL,
	})

	loginThrottle := middleware.NewLoginThrottle(cfg.LoginRatePerMinute, cfg.LoginBurst, func() {
		recorder.IncLogin("throttled")
	})

	handler := router.New(router.Config{
		IsDevelopment:      cfg.IsDevelopment(),
		CORSAllowedOrigins: cfg.GetCORSAllowedOrigins(),
		MaxRequestBodySize: cfg.MaxRequestBodySize,
		RateLimitEnabled:   cfg.RateLimitAPIEnabled,
		RateLimitRPM:       cfg.RateLimitAPIRPM,
		RateLimitBurst:     cfg.RateLimitAPIBurst,
	}, router.Deps{
		Services:      services,
		Tokens:        issuer,
		Revocations:   cacheClient,
		Limiter:       cacheClient,
		LoginThrottle: loginThrottle,
		DB:            repo,
		Cache:         cacheClient,
		Metrics:       recorder,
		Exposition:    exposition,
		Logger:        logger,
	})

	srv := server.New(handler, server.Config{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	// Registered first so they close last.
	srv.OnShutdown("postgres", func(context.Context) error {
		repo.Close()
		return nil
	})
	srv.OnShutdown("redis", func(context.Context) error {
		return cacheClient.Close()
	})

	activityWorker := activity.NewWorker(cacheClient.Client(), repo, logger, activity.NewConsumerID(), recorder)
	go func() {
		if err := activityWorker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("activity worker stopped", "error", err)
		}
	}()
	srv.OnShutdown("activity-worker", activityWorker.Shutdown)

	scheduler := worker.NewScheduler(logger, sweepJobTimeout)
	if err := scheduler.Add("lease-sweep", cfg.LeaseSweepSchedule, worker.SweepJob(services.Leases, logger)); err != nil {
		return err
	}
	if err := scheduler.Add("login-throttle-sweep", "@every 5m", func(context.Context) error {
		loginThrottle.Sweep()
		return nil
	}); err != nil {
		return err
	}
	scheduler.Start()
	srv.OnShutdown("scheduler", scheduler.Shutdown)

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"metrics", cfg.MetricsEnabled,
		"lease_sweep", cfg.LeaseSweepSchedule,
	)

	return srv.Run(ctx)
}

// initLogger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func initLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.LogLevel)}

	var h slog.Handler
	if strings.EqualFold(cfg.LogFormat, "text") {
		h = slog.NewTextHandler(os.Stdout, opts)
	} else {
		h = slog.NewJSONHandler(os.Stdout, opts)
	}

	logger := slog.New(h).With("service", "rentdesk")
	slog.SetDefault(logger)
	return logger
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

// sanitizeError strips connection-string secrets out of driver errors.
func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		msg = strings.ReplaceAll(msg, secret, config.RedactURL(secret))
	}
	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
