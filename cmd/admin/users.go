package main

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/crljhnmngs/portfolio-admin/internal/domain/entity"
	"github.com/crljhnmngs/portfolio-admin/internal/repository"
	authservice "github.com/crljhnmngs/portfolio-admin/internal/service/auth"
)

type newUser struct {
	Email     string
	FirstName string
	LastName  string
	Password  string
}

// createUser checks in and stores it with an argon2id hash.
func createUser(ctx context.Context, users repository.UserRepository, in newUser) (*entity.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("invalid email %q", in.Email)
	}
	if strings.TrimSpace(in.FirstName) == "" || strings.TrimSpace(in.LastName) == "" {
		return nil, errors.New("first and last name are required")
	}
	if err := authservice.CheckPasswordStrength(in.Password); err != nil {
		return nil, err
	}

	existing, err := users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("look up user: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("user %s already exists", email)
	}

	hash, err := authservice.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &entity.User{
		Email:          email,
		HashedPassword: hash,
		FirstName:      strings.TrimSpace(in.FirstName),
		LastName:       strings.TrimSpace(in.LastName),
	}
	if err := users.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func newCreateUserCmd(e *env) *cobra.Command {
	var in newUser
	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create a dashboard administrator",
		Long: `Create a dashboard administrator.

The password is read from --password or ADMIN_PASSWORD. Prefer the
environment variable: flags end up in shell history.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if in.Password == "" {
				in.Password = os.Getenv("ADMIN_PASSWORD")
			}
			_, users, closeDB, err := e.sessions(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDB()

			u, err := createUser(cmd.Context(), users, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created user %s (%s)\n", u.Email, u.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Email, "email", "", "login email (required)")
	cmd.Flags().StringVar(&in.FirstName, "first-name", "", "first name (required)")
	cmd.Flags().StringVar(&in.LastName, "last-name", "", "last name (required)")
	cmd.Flags().StringVar(&in.Password, "password", "", "password (default: $ADMIN_PASSWORD)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("first-name")
	_ = cmd.MarkFlagRequired("last-name")
	return cmd
}

func newRevokeSessionsCmd(e *env) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "revoke-sessions",
		Short: "Log a user out everywhere",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, users, closeDB, err := e.sessions(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDB()

			u, err := users.GetByEmail(cmd.Context(), strings.ToLower(strings.TrimSpace(email)))
			if err != nil {
				return err
			}
			if u == nil {
				return fmt.Errorf("no user with email %s", email)
			}
			n, err := svc.InvalidateUser(cmd.Context(), u.ID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "revoked %d session(s) of %s\n", n, u.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "login email (required)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newHashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print an argon2id hash",
		Long: `Print an argon2id hash for the hashed_password column.

The password is taken from the argument or ADMIN_PASSWORD.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plain := os.Getenv("ADMIN_PASSWORD")
			if len(args) == 1 {
				plain = args[0]
			}
			if err := authservice.CheckPasswordStrength(plain); err != nil {
				return err
			}
			hash, err := authservice.HashPassword(plain)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}
