// Command rentdeskctl runs operational tasks against a Rentdesk database:
// schema migrations, admin bootstrap and an on-demand lease sweep.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

type rootOptions struct {
	databaseURL string
	redisURL    string
	logLevel    string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "rentdeskctl",
		Short:         "Rentdesk operations tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.databaseURL, "database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection URL (env DATABASE_URL)")
	cmd.PersistentFlags().StringVar(&opts.redisURL, "redis-url", os.Getenv("REDIS_URL"), "Redis URL for cache invalidation and events (env REDIS_URL, optional)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "log level: debug, info, warn, error")

	cmd.AddCommand(
		newMigrateCmd(opts),
		newBootstrapAdminCmd(opts),
		newSweepLeasesCmd(opts),
	)
	return cmd
}

func (o *rootOptions) requireDatabaseURL() error {
	if o.databaseURL == "" {
		return fmt.Errorf("database URL is required: set DATABASE_URL or --database-url")
	}
	return nil
}
