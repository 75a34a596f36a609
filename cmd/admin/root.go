package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	pgRepo "github.com/crljhnmngs/portfolio-admin/internal/infra/adapter/persistence/postgres"
	"github.com/crljhnmngs/portfolio-admin/internal/infra/db"
	"github.com/crljhnmngs/portfolio-admin/internal/observability/logging"
	"github.com/crljhnmngs/portfolio-admin/internal/repository"
	authservice "github.com/crljhnmngs/portfolio-admin/internal/service/auth"
	pkgconfig "github.com/crljhnmngs/portfolio-admin/pkg/config"
)

// Build information, set with -ldflags.
var (
	Version = "dev"
	Commit  = "none"
)

// env bundles what the commands share. Commands open the database lazily
// so hash-password and version work without DATABASE_URL.
type env struct {
	logger *slog.Logger
	dsn    string
	open   func(ctx context.Context, dsn string) (*sql.DB, error)
}

func (e *env) sessions(ctx context.Context) (*authservice.SessionService, repository.UserRepository, func(), error) {
	database, err := e.open(ctx, e.dsn)
	if err != nil {
		return nil, nil, nil, err
	}
	users := pgRepo.NewUserRepo(database)
	svc := authservice.NewSessionService(users, pgRepo.NewSessionRepo(database))
	return svc, users, func() { _ = database.Close() }, nil
}

func newRootCmd() *cobra.Command {
	e := &env{
		logger: logging.New(os.Stderr, logging.ParseLevel(pkgconfig.GetEnvString("LOG_LEVEL", "warn"))),
		open: func(ctx context.Context, dsn string) (*sql.DB, error) {
			return db.Open(ctx, dsn, db.ConnectionConfigFromEnv())
		},
	}
	return buildRootCmd(e)
}

func buildRootCmd(e *env) *cobra.Command {
	root := &cobra.Command{
		Use:   "admin",
		Short: "Portfolio admin maintenance commands",
		Long: `admin manages dashboard accounts and the portfolio database.

The database is taken from --database-url or DATABASE_URL.

Commands:
  create-user      Create a dashboard administrator
  revoke-sessions  Log a user out everywhere
  purge-sessions   Delete expired sessions
  migrate          Create or drop the schema
  hash-password    Print an argon2id hash
  version          Print version information`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			slog.SetDefault(e.logger)
		},
	}
	root.PersistentFlags().StringVar(&e.dsn, "database-url", pkgconfig.GetEnvString("DATABASE_URL", ""), "PostgreSQL DSN")

	root.AddCommand(
		newCreateUserCmd(e),
		newRevokeSessionsCmd(e),
		newPurgeSessionsCmd(e),
		newMigrateCmd(e),
		newHashPasswordCmd(),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "admin %s (%s)\n", Version, Commit)
		},
	}
}
