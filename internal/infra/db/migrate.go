package db

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
)

//go:embed seeds/languages.sql
var seedLanguagesSQL string

type migration struct {
	name string
	up   string
}

// migrations run in order. Each statement is idempotent, so MigrateUp can
// run on every deploy.
var migrations = []migration{
	{"users", `
CREATE TABLE IF NOT EXISTS users (
    id              TEXT PRIMARY KEY,
    email           TEXT NOT NULL UNIQUE,
    hashed_password TEXT NOT NULL,
    first_name      TEXT NOT NULL DEFAULT '',
    last_name       TEXT NOT NULL DEFAULT '',
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
)`},
	{"sessions", `
CREATE TABLE IF NOT EXISTS sessions (
    id         TEXT PRIMARY KEY,
    user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    expires_at TIMESTAMPTZ NOT NULL
)`},
	// purge job: DELETE ... WHERE expires_at <= now
	{"idx_sessions_expires_at", `CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at)`},
	{"idx_sessions_user_id", `CREATE INDEX IF NOT EXISTS idx_sessions_user_id ON sessions(user_id)`},
	{"skills", `
CREATE TABLE IF NOT EXISTS skills (
    id         TEXT PRIMARY KEY,
    name       VARCHAR(100) NOT NULL,
    icon_url   VARCHAR(255),
    category   VARCHAR(50) NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`},
	{"supported_languages", `
CREATE TABLE IF NOT EXISTS supported_languages (
    code       VARCHAR(8) PRIMARY KEY,
    name       TEXT NOT NULL,
    is_default BOOLEAN NOT NULL DEFAULT FALSE
)`},
	{"seed_languages", seedLanguagesSQL},
	{"tech", `
CREATE TABLE IF NOT EXISTS tech (
    id   TEXT PRIMARY KEY,
    name TEXT NOT NULL UNIQUE
)`},
	{"portfolio_projects", `
CREATE TABLE IF NOT EXISTS portfolio_projects (
    id            TEXT PRIMARY KEY,
    name          TEXT NOT NULL,
    image_url     TEXT NOT NULL,
    about         TEXT NOT NULL,
    date          TEXT NOT NULL,
    github        TEXT,
    live          TEXT,
    is_new        BOOLEAN NOT NULL DEFAULT FALSE,
    is_dev        BOOLEAN NOT NULL DEFAULT FALSE,
    language_code VARCHAR(8) NOT NULL REFERENCES supported_languages(code),
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
)`},
	{"idx_portfolio_projects_language", `CREATE INDEX IF NOT EXISTS idx_portfolio_projects_language ON portfolio_projects(language_code, created_at DESC)`},
	{"portfolio_project_tech", `
CREATE TABLE IF NOT EXISTS portfolio_project_tech (
    project_id TEXT NOT NULL REFERENCES portfolio_projects(id) ON DELETE CASCADE,
    tech_id    TEXT NOT NULL REFERENCES tech(id) ON DELETE CASCADE,
    position   INT  NOT NULL DEFAULT 0,
    PRIMARY KEY (project_id, tech_id)
)`},
}

// MigrateUp creates the schema and seeds the supported languages.
func MigrateUp(ctx context.Context, db *sql.DB) error {
	for _, m := range migrations {
		if _, err := db.ExecContext(ctx, m.up); err != nil {
			return fmt.Errorf("migrate %s: %w", m.name, err)
		}
	}
	return nil
}

// MigrateDown drops every table MigrateUp creates, in reverse dependency
// order. All data is lost.
func MigrateDown(ctx context.Context, db *sql.DB) error {
	tables := []string{
		"portfolio_project_tech",
		"portfolio_projects",
		"tech",
		"supported_languages",
		"skills",
		"sessions",
		"users",
	}
	for _, table := range tables {
		if _, err := db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE"); err != nil {
			return fmt.Errorf("drop %s: %w", table, err)
		}
	}
	return nil
}
