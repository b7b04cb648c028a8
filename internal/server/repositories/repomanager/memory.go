package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/secrets/internal/dbx"
	"github.com/dmitrijs2005/secrets/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/secrets/internal/server/repositories/sessions"
)

// MemoryRepositoryManager returns the same in-memory repositories for every
// DBTX. It has no schema, so RunMigrations does nothing.
type MemoryRepositoryManager struct {
	accounts *accounts.MemoryRepository
	sessions sessions.Repository
}

func NewMemoryRepositoryManager(sessionStore sessions.Repository) *MemoryRepositoryManager {
	if sessionStore == nil {
		sessionStore = sessions.NewMemoryRepository()
	}
	return &MemoryRepositoryManager{
		accounts: accounts.NewMemoryRepository(),
		sessions: sessionStore,
	}
}

func (m *MemoryRepositoryManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *MemoryRepositoryManager) Accounts(dbx.DBTX) accounts.Repository { return m.accounts }

func (m *MemoryRepositoryManager) Sessions(dbx.DBTX) sessions.Repository { return m.sessions }
