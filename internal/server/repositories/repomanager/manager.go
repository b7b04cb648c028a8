package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/secrets/internal/dbx"
	"github.com/dmitrijs2005/secrets/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/secrets/internal/server/repositories/sessions"
)

// RepositoryManager vends repositories bound to a DBTX so that services can
// run several repository calls inside one transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Accounts(db dbx.DBTX) accounts.Repository
	Sessions(db dbx.DBTX) sessions.Repository
}
