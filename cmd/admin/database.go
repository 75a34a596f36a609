package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/crljhnmngs/portfolio-admin/internal/infra/db"
)

func newPurgeSessionsCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "purge-sessions",
		Short: "Delete expired sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, closeDB, err := e.sessions(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDB()

			n, err := svc.PurgeExpired(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "purged %d expired session(s)\n", n)
			return nil
		},
	}
}

func newMigrateCmd(e *env) *cobra.Command {
	var down bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or drop the schema",
		Long: `Create every table and seed the supported languages.

With --down every table is dropped instead. Data is lost.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := e.open(cmd.Context(), e.dsn)
			if err != nil {
				return err
			}
			defer func() { _ = database.Close() }()

			if down {
				if err := db.MigrateDown(cmd.Context(), database); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "schema dropped")
				return nil
			}
			if err := db.MigrateUp(cmd.Context(), database); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		},
	}
	cmd.Flags().BoolVar(&down, "down", false, "drop every table")
	return cmd
}
