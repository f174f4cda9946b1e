package accounts

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/server/auth"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	store "github.com/dmitrijs2005/taskkeeper/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/taskkeeper/internal/server/tasks"
	"golang.org/x/crypto/bcrypt"
)

var errStoreDown = errors.New("store down")

// flakyAccounts wraps the in-memory store and fails the selected calls.
type flakyAccounts struct {
	*store.InMemoryRepository
	failList        bool
	failGet         bool
	failUpdateTasks bool
	failUpdateName  bool

	blockUpdateTasks func()
}

func (f *flakyAccounts) List(ctx context.Context) ([]*models.AccountDocument, error) {
	if f.failList {
		return nil, errStoreDown
	}
	return f.InMemoryRepository.List(ctx)
}

func (f *flakyAccounts) GetByUsername(ctx context.Context, username string) (*models.AccountDocument, error) {
	if f.failGet {
		return nil, errStoreDown
	}
	return f.InMemoryRepository.GetByUsername(ctx, username)
}

func (f *flakyAccounts) UpdateTasks(ctx context.Context, id string, list []tasks.Task) error {
	if f.blockUpdateTasks != nil {
		f.blockUpdateTasks()
	}
	if f.failUpdateTasks {
		return errStoreDown
	}
	return f.InMemoryRepository.UpdateTasks(ctx, id, list)
}

func (f *flakyAccounts) UpdateUsername(ctx context.Context, id string, username string) error {
	if f.failUpdateName {
		return errStoreDown
	}
	return f.InMemoryRepository.UpdateUsername(ctx, id, username)
}

// flakyManager serves flakyAccounts next to an in-memory session store.
type flakyManager struct {
	accounts *flakyAccounts
	sessions *sessions.InMemoryRepository
}

func newFlakyManager() *flakyManager {
	return &flakyManager{
		accounts: &flakyAccounts{InMemoryRepository: store.NewInMemoryRepository()},
		sessions: sessions.NewInMemoryRepository(),
	}
}

func (m *flakyManager) RunMigrations(context.Context) error { return nil }
func (m *flakyManager) Accounts() store.Repository          { return m.accounts }
func (m *flakyManager) Sessions() sessions.Repository       { return m.sessions }
func (m *flakyManager) Close() error                        { return nil }
func (m *flakyManager) InTx(ctx context.Context, fn repomanager.TxFunc) error {
	return fn(ctx, m.accounts, m.sessions)
}

func newTestDirectory(t *testing.T, repos repomanager.RepositoryManager) *Directory {
	t.Helper()
	if repos == nil {
		repos = repomanager.NewInMemoryRepositoryManager()
	}
	return NewDirectory(repos, auth.NewPasswordHasher(bcrypt.MinCost), logging.Nop{}, 0)
}

func urgency(u tasks.Urgency) *tasks.Urgency { return &u }
