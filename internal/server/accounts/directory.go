package accounts

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	store "github.com/dmitrijs2005/taskkeeper/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/sessions"
)

// DefaultSessionValidity is the lifetime of a session issued by Login.
const DefaultSessionValidity = 30 * time.Minute

// PasswordHasher hashes new passwords and checks candidates against stored
// hashes. Compare with an empty hash must fail after doing comparable work.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) bool
}

// Directory registers and authenticates accounts and keeps a cache of the
// accounts it has loaded.
//
// The cache is written through on sign-up, edit and delete, and replaced
// wholesale by Initialize. Accounts created or changed by other processes are
// only seen after the next Initialize (see RunCacheRefresh).
type Directory struct {
	repos           repomanager.RepositoryManager
	hasher          PasswordHasher
	logger          logging.Logger
	sessionValidity time.Duration
	now             func() time.Time

	mu    sync.RWMutex
	cache []*Account
}

// NewDirectory builds an empty directory. It does not touch the store; call
// Initialize to fill the cache.
func NewDirectory(repos repomanager.RepositoryManager, hasher PasswordHasher, logger logging.Logger, sessionValidity time.Duration) *Directory {
	if sessionValidity <= 0 {
		sessionValidity = DefaultSessionValidity
	}
	return &Directory{
		repos:           repos,
		hasher:          hasher,
		logger:          logger.With("module", "accounts"),
		sessionValidity: sessionValidity,
		now:             time.Now,
	}
}

func (d *Directory) accounts() store.Repository { return d.repos.Accounts() }

func (d *Directory) sessions() sessions.Repository { return d.repos.Sessions() }

// Initialize replaces the cache with every account in the store.
func (d *Directory) Initialize(ctx context.Context) error {
	repo := d.accounts()
	docs, err := repo.List(ctx)
	if err != nil {
		return fmt.Errorf("list accounts: %w", err)
	}

	loaded := make([]*Account, 0, len(docs))
	for _, doc := range docs {
		loaded = append(loaded, fromDocument(repo, doc))
	}

	d.mu.Lock()
	d.cache = loaded
	d.mu.Unlock()

	d.logger.Debug(ctx, "account cache loaded", "count", len(loaded))
	return nil
}

// RunCacheRefresh calls Initialize every interval until ctx is done.
func (d *Directory) RunCacheRefresh(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := d.Initialize(ctx); err != nil && ctx.Err() == nil {
				d.logger.Error(ctx, "account cache refresh failed", "error", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

// SignIn registers a new account. It returns false, without touching the
// existing account, when username is already taken.
func (d *Directory) SignIn(ctx context.Context, displayName, username, password string) (bool, error) {
	repo := d.accounts()

	_, err := repo.GetByUsername(ctx, username)
	switch {
	case err == nil:
		return false, nil
	case !errors.Is(err, common.ErrorNotFound):
		return false, fmt.Errorf("lookup account: %w", err)
	}

	hash, err := d.hasher.Hash(password)
	if err != nil {
		return false, err
	}

	acc, err := CreateAccount(ctx, repo, displayName, username, hash)
	if err != nil {
		// Lost a race with a concurrent sign-up for the same name.
		if errors.Is(err, common.ErrorAlreadyExists) {
			return false, nil
		}
		return false, err
	}

	d.mu.Lock()
	d.cache = append(d.removeLocked(username), acc)
	d.mu.Unlock()

	d.logger.Info(ctx, "account registered", "username", username)
	return true, nil
}

// Login checks the credentials and, on success, stores and returns a new
// session. Unknown usernames and wrong passwords both yield
// common.ErrorUnauthorized.
func (d *Directory) Login(ctx context.Context, username, password string) (*models.Session, error) {
	doc, err := d.accounts().GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			d.hasher.Compare("", password)
			d.logger.Info(ctx, "login rejected")
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("lookup account: %w", err)
	}

	if !d.hasher.Compare(doc.PasswordHash, password) {
		d.logger.Info(ctx, "login rejected")
		return nil, common.ErrorUnauthorized
	}

	sessionID, err := common.MakeRandHexString(common.SessionIDSize)
	if err != nil {
		return nil, fmt.Errorf("generate session id: %w", err)
	}

	now := d.now().UTC()
	session := &models.Session{
		SessionID: sessionID,
		AccountID: doc.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(d.sessionValidity),
	}
	if err := d.sessions().Create(ctx, session); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	return session, nil
}

// Logout deletes the session. Unknown sessions are ignored.
func (d *Directory) Logout(ctx context.Context, sessionID string) error {
	if err := d.sessions().Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// LookupSession returns the stored session. Expiry is reported as stored,
// not enforced.
func (d *Directory) LookupSession(ctx context.Context, sessionID string) (*models.Session, error) {
	return d.sessions().Find(ctx, sessionID)
}

// AccessUser looks username up in the cache.
func (d *Directory) AccessUser(username string) (*Account, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, acc := range d.cache {
		if acc.Username() == username {
			return acc, true
		}
	}
	return nil, false
}

// GetProfileOrThrow is AccessUser for callers that need an account: a miss
// is an error wrapping common.ErrorNotFound.
func (d *Directory) GetProfileOrThrow(username string) (*Account, error) {
	acc, ok := d.AccessUser(username)
	if !ok {
		return nil, fmt.Errorf("account %q: %w", username, common.ErrorNotFound)
	}
	return acc, nil
}

// SessionUserObject resolves a session id to its cached account. Any missing
// link (session, stored account, cache entry) yields common.ErrorNotFound.
// Session expiry is not checked here.
func (d *Directory) SessionUserObject(ctx context.Context, sessionID string) (*Account, error) {
	session, err := d.sessions().Find(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	doc, err := d.accounts().GetByID(ctx, session.AccountID)
	if err != nil {
		return nil, err
	}

	acc, ok := d.AccessUser(doc.UserName)
	if !ok {
		return nil, common.ErrorNotFound
	}
	return acc, nil
}

// DeleteUser removes the account and its sessions from the store and, when a
// document was actually removed, evicts it from the cache.
func (d *Directory) DeleteUser(ctx context.Context, username string) (bool, error) {
	var removed int64

	err := d.repos.InTx(ctx, func(ctx context.Context, accounts store.Repository, sessions sessions.Repository) error {
		doc, err := accounts.GetByUsername(ctx, username)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return nil
			}
			return err
		}
		if err := sessions.DeleteByAccount(ctx, doc.ID); err != nil {
			return err
		}
		removed, err = accounts.Delete(ctx, username)
		return err
	})
	if err != nil {
		return false, fmt.Errorf("delete account: %w", err)
	}
	if removed == 0 {
		return false, nil
	}

	d.mu.Lock()
	d.cache = d.removeLocked(username)
	d.mu.Unlock()

	d.logger.Info(ctx, "account deleted", "username", username)
	return true, nil
}

// ReturnProfileUsernames lists the cached usernames in cache order.
func (d *Directory) ReturnProfileUsernames() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	names := make([]string, 0, len(d.cache))
	for _, acc := range d.cache {
		names = append(names, acc.Username())
	}
	return names
}

// EditInformation changes display name, username and password of a cached
// account. A new username that belongs to someone else yields
// common.ErrorAlreadyExists. An empty password keeps the current one.
func (d *Directory) EditInformation(ctx context.Context, username, displayName, newUsername, password string) error {
	acc, err := d.GetProfileOrThrow(username)
	if err != nil {
		return err
	}

	if newUsername == "" {
		newUsername = username
	}
	if newUsername != username {
		if _, ok := d.AccessUser(newUsername); ok {
			return common.ErrorAlreadyExists
		}
		_, err := d.accounts().GetByUsername(ctx, newUsername)
		switch {
		case err == nil:
			return common.ErrorAlreadyExists
		case !errors.Is(err, common.ErrorNotFound):
			return fmt.Errorf("lookup account: %w", err)
		}
	}

	hash := acc.hash()
	if password != "" {
		if hash, err = d.hasher.Hash(password); err != nil {
			return err
		}
	}

	return acc.EditInformation(ctx, displayName, newUsername, hash)
}

// removeLocked returns the cache without username. Callers hold d.mu.
func (d *Directory) removeLocked(username string) []*Account {
	kept := d.cache[:0:0]
	for _, acc := range d.cache {
		if acc.Username() != username {
			kept = append(kept, acc)
		}
	}
	return kept
}
