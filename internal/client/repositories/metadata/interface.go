// Package metadata persists small key/value facts about the local CLI
// session, such as the saved access token and the logged-in username.
package metadata

import (
	"context"
)

// Keys used by the CLI.
const (
	KeyUsername    = "username"
	KeyAccessToken = "access_token"
	KeyExpiresAt   = "expires_at"
)

type Repository interface {
	// Get returns (nil, nil) when key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
