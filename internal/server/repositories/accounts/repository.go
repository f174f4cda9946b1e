// Package accounts declares the account document store and its PostgreSQL and
// in-memory implementations.
package accounts

import (
	"context"

	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/tasks"
)

// Repository is the account collection. Each Update* call touches exactly one
// field of one document.
type Repository interface {
	// Create inserts a new document. A taken username yields common.ErrorAlreadyExists.
	Create(ctx context.Context, doc *models.AccountDocument) (*models.AccountDocument, error)

	// GetByUsername and GetByID return common.ErrorNotFound when nothing matches.
	GetByUsername(ctx context.Context, username string) (*models.AccountDocument, error)
	GetByID(ctx context.Context, id string) (*models.AccountDocument, error)

	// List returns every document in insertion order.
	List(ctx context.Context) ([]*models.AccountDocument, error)

	UpdateDisplayName(ctx context.Context, id string, displayName string) error
	UpdateUsername(ctx context.Context, id string, username string) error
	UpdatePasswordHash(ctx context.Context, id string, passwordHash string) error
	UpdateTasks(ctx context.Context, id string, list []tasks.Task) error

	// Delete removes the document for username and reports how many were removed.
	Delete(ctx context.Context, username string) (int64, error)
}
