package sessions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemory_Lifecycle(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, repo.Create(ctx, &models.Session{SessionID: "s1", AccountID: "a", CreatedAt: now, ExpiresAt: now.Add(time.Minute)}))
	require.NoError(t, repo.Create(ctx, &models.Session{SessionID: "s2", AccountID: "a", CreatedAt: now, ExpiresAt: now.Add(time.Minute)}))
	require.NoError(t, repo.Create(ctx, &models.Session{SessionID: "s3", AccountID: "b", CreatedAt: now, ExpiresAt: now.Add(time.Minute)}))

	got, err := repo.Find(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "a", got.AccountID)

	require.NoError(t, repo.Delete(ctx, "s1"))
	require.NoError(t, repo.Delete(ctx, "s1"))
	_, err = repo.Find(ctx, "s1")
	assert.True(t, errors.Is(err, common.ErrorNotFound))

	require.NoError(t, repo.DeleteByAccount(ctx, "a"))
	_, err = repo.Find(ctx, "s2")
	assert.True(t, errors.Is(err, common.ErrorNotFound))
	_, err = repo.Find(ctx, "s3")
	assert.NoError(t, err)
}

func TestSession_Expired(t *testing.T) {
	now := time.Now()
	s := &models.Session{ExpiresAt: now}
	assert.True(t, s.Expired(now))
	assert.False(t, s.Expired(now.Add(-time.Second)))
}
