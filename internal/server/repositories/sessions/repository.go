// Package sessions declares the session store used by login, along with its
// PostgreSQL and in-memory implementations.
package sessions

import (
	"context"

	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
)

// Repository defines operations for issuing, resolving, and revoking sessions.
type Repository interface {
	// Create stores a new session.
	Create(ctx context.Context, session *models.Session) error

	// Find looks up a session by id. A missing session yields common.ErrorNotFound.
	// Expired sessions are returned as-is; callers decide what expiry means.
	Find(ctx context.Context, sessionID string) (*models.Session, error)

	// Delete removes a session. Deleting a non-existent session is not an error.
	Delete(ctx context.Context, sessionID string) error

	// DeleteByAccount removes every session issued to accountID.
	DeleteByAccount(ctx context.Context, accountID string) error
}
