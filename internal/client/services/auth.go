// Package services contains application services for the taskkeeper CLI.
// This file defines the authentication service: register, login, resuming a
// saved session, logout and account deletion.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/client/client"
	"github.com/dmitrijs2005/taskkeeper/internal/client/models"
	"github.com/dmitrijs2005/taskkeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
)

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Login: authenticate against the server and save the session locally.
//   - Resume: restore a saved, unexpired session into the client.
//   - Logout / DeleteAccount: end the session on the server and forget it.
//
// All methods must honor context cancellation/timeouts.
type AuthService interface {
	Register(ctx context.Context, displayName, username string, password []byte) (bool, error)
	Login(ctx context.Context, username string, password []byte) (*models.Session, error)
	Resume(ctx context.Context) (*models.Session, error)
	Logout(ctx context.Context) error
	DeleteAccount(ctx context.Context) (bool, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

type authService struct {
	client client.Client
	db     *sql.DB
	now    func() time.Time
}

func NewAuthService(client client.Client, db *sql.DB) AuthService {
	return &authService{client: client, db: db, now: time.Now}
}

func (a *authService) getMetadataRepo() metadata.Repository {
	return metadata.NewSQLiteRepository(a.db)
}

func (a *authService) Register(ctx context.Context, displayName, username string, password []byte) (bool, error) {
	return a.client.Register(ctx, displayName, username, password)
}

// Login authenticates against the server and saves username, token and
// expiry in one transaction.
func (a *authService) Login(ctx context.Context, username string, password []byte) (*models.Session, error) {
	session, err := a.client.Login(ctx, username, password)
	if err != nil {
		return nil, fmt.Errorf("login error: %w", err)
	}

	if err := a.saveSession(ctx, session); err != nil {
		return nil, fmt.Errorf("session saving error: %w", err)
	}
	return session, nil
}

func (a *authService) saveSession(ctx context.Context, s *models.Session) error {
	return dbx.WithTx(ctx, a.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, metadata.KeyUsername, []byte(s.Username)); err != nil {
			return err
		}
		if err := repo.Set(ctx, metadata.KeyAccessToken, []byte(s.AccessToken)); err != nil {
			return err
		}
		return repo.Set(ctx, metadata.KeyExpiresAt, []byte(s.ExpiresAt.Format(time.RFC3339)))
	})
}

// Resume loads the saved session. It returns (nil, nil) when nothing is
// saved or the saved session has expired; an expired session is forgotten.
func (a *authService) Resume(ctx context.Context) (*models.Session, error) {
	repo := a.getMetadataRepo()

	token, err := repo.Get(ctx, metadata.KeyAccessToken)
	if err != nil {
		return nil, err
	}
	if len(token) == 0 {
		return nil, nil
	}

	username, err := repo.Get(ctx, metadata.KeyUsername)
	if err != nil {
		return nil, err
	}

	s := &models.Session{Username: string(username), AccessToken: string(token)}

	rawExpiry, err := repo.Get(ctx, metadata.KeyExpiresAt)
	if err != nil {
		return nil, err
	}
	if len(rawExpiry) > 0 {
		if s.ExpiresAt, err = time.Parse(time.RFC3339, string(rawExpiry)); err != nil {
			return nil, fmt.Errorf("bad saved expiry: %w", err)
		}
	}

	if s.Expired(a.now()) {
		return nil, repo.Clear(ctx)
	}

	a.client.SetAccessToken(s.AccessToken)
	return s, nil
}

// Logout ends the server session and clears the saved one. A session the
// server no longer knows is still cleared locally.
func (a *authService) Logout(ctx context.Context) error {
	if err := a.client.Logout(ctx); err != nil && !errors.Is(err, client.ErrUnauthorized) {
		return err
	}
	a.client.SetAccessToken("")
	return a.getMetadataRepo().Clear(ctx)
}

func (a *authService) DeleteAccount(ctx context.Context) (bool, error) {
	deleted, err := a.client.DeleteAccount(ctx)
	if err != nil {
		return false, err
	}
	if deleted {
		if err := a.getMetadataRepo().Clear(ctx); err != nil {
			return true, err
		}
	}
	return deleted, nil
}

func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

func (a *authService) Close(ctx context.Context) error {
	return a.client.Close()
}
