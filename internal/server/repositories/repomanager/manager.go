package repomanager

import (
	"context"

	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/sessions"
)

// TxFunc receives repositories bound to a single unit of work.
type TxFunc func(ctx context.Context, accounts accounts.Repository, sessions sessions.Repository) error

// RepositoryManager vends the account and session stores of one backend.
type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	Accounts() accounts.Repository
	Sessions() sessions.Repository
	// InTx runs fn with repositories that commit or roll back together.
	InTx(ctx context.Context, fn TxFunc) error
	Close() error
}
