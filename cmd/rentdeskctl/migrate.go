package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rentdesk/rentdesk/migrations"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back schema migrations",
	}

	withRunner := func(fn func(r *migrations.Runner) error) error {
		if err := opts.requireDatabaseURL(); err != nil {
			return err
		}
		r, err := migrations.NewRunner(opts.databaseURL)
		if err != nil {
			return err
		}
		defer r.Close()
		return fn(r)
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRunner(func(r *migrations.Runner) error {
				if err := r.Up(); err != nil {
					return err
				}
				return printVersion(cmd, r)
			})
		},
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations (all unless --steps is given)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRunner(func(r *migrations.Runner) error {
				if err := r.Down(steps); err != nil {
					return err
				}
				return printVersion(cmd, r)
			})
		},
	}
	down.Flags().IntVar(&steps, "steps", 0, "number of migrations to roll back")

	version := &cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRunner(func(r *migrations.Runner) error {
				return printVersion(cmd, r)
			})
		},
	}

	cmd.AddCommand(up, down, version)
	return cmd
}

func printVersion(cmd *cobra.Command, r *migrations.Runner) error {
	v, dirty, err := r.Version()
	if err != nil {
		return err
	}
	suffix := ""
	if dirty {
		suffix = " (dirty)"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "schema version %d%s\n", v, suffix)
	return nil
}
