package metadata

import (
	"context"
	"database/sql"
	"testing"

	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE metadata (
  key   TEXT PRIMARY KEY,
  value BLOB NOT NULL
);`)
	require.NoError(t, err)
	return db
}

func TestSetGet_Upsert(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, KeyAccessToken, []byte("old")))
	require.NoError(t, r.Set(ctx, KeyAccessToken, []byte("new")))

	v, err := r.Get(ctx, KeyAccessToken)
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), v)
}

func TestGet_Absent(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	v, err := r.Get(context.Background(), "absent")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestDeleteAndClear(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, KeyUsername, []byte("alice")))
	require.NoError(t, r.Set(ctx, KeyAccessToken, []byte("tok")))

	require.NoError(t, r.Delete(ctx, KeyUsername))
	require.NoError(t, r.Delete(ctx, KeyUsername))

	v, err := r.Get(ctx, KeyUsername)
	require.NoError(t, err)
	assert.Nil(t, v)

	require.NoError(t, r.Clear(ctx))
	v, err = r.Get(ctx, KeyAccessToken)
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestWithinTransaction_Rollback(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		require.NoError(t, NewSQLiteRepository(tx).Set(ctx, KeyUsername, []byte("bob")))
		return sql.ErrConnDone
	})
	require.ErrorIs(t, err, sql.ErrConnDone)

	v, err := NewSQLiteRepository(db).Get(ctx, KeyUsername)
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestErrorsAreWrapped(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, db.Close())

	_, err := r.Get(ctx, "k")
	assert.ErrorContains(t, err, "failed to get metadata[k]")
	assert.ErrorContains(t, r.Set(ctx, "k", []byte("v")), "failed to set metadata[k]")
	assert.ErrorContains(t, r.Delete(ctx, "k"), "failed to delete metadata[k]")
	assert.ErrorContains(t, r.Clear(ctx), "failed to clear metadata")
}
