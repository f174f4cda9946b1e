package repomanager

import (
	"context"

	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/sessions"
)

// InMemoryRepositoryManager keeps everything in process memory. InTx is not
// atomic: fn runs against the live stores.
type InMemoryRepositoryManager struct {
	accounts *accounts.InMemoryRepository
	sessions *sessions.InMemoryRepository
}

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{
		accounts: accounts.NewInMemoryRepository(),
		sessions: sessions.NewInMemoryRepository(),
	}
}

func (m *InMemoryRepositoryManager) RunMigrations(context.Context) error { return nil }

func (m *InMemoryRepositoryManager) Accounts() accounts.Repository { return m.accounts }

func (m *InMemoryRepositoryManager) Sessions() sessions.Repository { return m.sessions }

func (m *InMemoryRepositoryManager) InTx(ctx context.Context, fn TxFunc) error {
	return fn(ctx, m.accounts, m.sessions)
}

func (m *InMemoryRepositoryManager) Close() error { return nil }
