package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rentdesk/rentdesk/internal/activity"
	"github.com/rentdesk/rentdesk/internal/auth"
	"github.com/rentdesk/rentdesk/internal/cache"
	"github.com/rentdesk/rentdesk/internal/repository"
	"github.com/rentdesk/rentdesk/internal/service"
	"github.com/rentdesk/rentdesk/internal/worker"
)

func newBootstrapAdminCmd(opts *rootOptions) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "bootstrap-admin",
		Short: "Create an admin account, or promote an existing user to admin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				password = os.Getenv("RENTDESK_ADMIN_PASSWORD")
			}
			return opts.withServices(cmd.Context(), func(svc *service.Services, _ *slog.Logger) error {
				user, created, err := svc.Admin.BootstrapAdmin(cmd.Context(), auth.NewHasher(auth.DefaultParams()), email, password)
				if err != nil {
					return err
				}
				verb := "promoted"
				if created {
					verb = "created"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "admin %s: %s (%s)\n", verb, user.Email, user.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "admin email address")
	cmd.Flags().StringVar(&password, "password", "", "password for a new account (env RENTDESK_ADMIN_PASSWORD)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newSweepLeasesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep-leases",
		Short: "Expire ended leases and activate pending leases that have started",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withServices(cmd.Context(), func(svc *service.Services, logger *slog.Logger) error {
				return worker.SweepJob(svc.Leases, logger)(cmd.Context())
			})
		},
	}
}

// withServices connects to Postgres, and to Redis when a URL is given,
// and hands fn a service bundle.
func (o *rootOptions) withServices(ctx context.Context, fn func(*service.Services, *slog.Logger) error) error {
	if err := o.requireDatabaseURL(); err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	logger := newLogger(o.logLevel)

	repo, err := repository.New(ctx, o.databaseURL)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer repo.Close()

	deps := service.Deps{
		Store:  service.NewStore(repo),
		Logger: logger,
	}
	if o.redisURL != "" {
		c, err := cache.New(ctx, o.redisURL)
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer c.Close()
		deps.Cache = c
		deps.Events = &syncPublisher{pub: activity.NewPublisher(c.Client(), logger, nil), logger: logger}
	}

	return fn(service.New(deps, service.Options{}), logger)
}

// syncPublisher publishes inline so events are not lost when the process exits.
type syncPublisher struct {
	pub    *activity.Publisher
	logger *slog.Logger
}

func (p *syncPublisher) PublishAsync(event activity.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), activity.PublishTimeout)
	defer cancel()
	if _, err := p.pub.Publish(ctx, event); err != nil {
		p.logger.Warn("failed to publish activity event", "type", event.Type, "error", err)
	}
}

func newLogger(level string) *slog.Logger {
	var l slog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "warn", "warning":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}
