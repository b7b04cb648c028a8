// Package repomanager wires repository constructors together with schema
// migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/secrets/internal/dbx"
	"github.com/dmitrijs2005/secrets/internal/server/migrations"
	"github.com/dmitrijs2005/secrets/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/secrets/internal/server/repositories/sessions"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repositories. When a
// session repository override is set (for example Redis), Sessions returns
// it instead of the sessions table.
type PostgresRepositoryManager struct {
	sessions sessions.Repository
}

func (m *PostgresRepositoryManager) Accounts(db dbx.DBTX) accounts.Repository {
	return accounts.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Sessions(db dbx.DBTX) sessions.Repository {
	if m.sessions != nil {
		return m.sessions
	}
	return sessions.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded migrations to db.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return err
	}
	return nil
}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed manager.
// A non-nil sessionStore replaces the sessions table.
func NewPostgresRepositoryManager(sessionStore sessions.Repository) *PostgresRepositoryManager {
	return &PostgresRepositoryManager{sessions: sessionStore}
}
