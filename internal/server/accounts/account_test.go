package accounts

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	store "github.com/dmitrijs2005/taskkeeper/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/taskkeeper/internal/server/tasks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStoredAccount(t *testing.T, repo store.Repository) *Account {
	t.Helper()
	acc, err := CreateAccount(context.Background(), repo, "Alice", "alice", "hash")
	require.NoError(t, err)
	return acc
}

func TestCreateAccount_PersistsEmptyDocument(t *testing.T) {
	repo := store.NewInMemoryRepository()
	acc := newStoredAccount(t, repo)

	doc, err := repo.GetByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, acc.ID(), doc.ID)
	assert.Equal(t, "Alice", doc.DisplayName)
	assert.Equal(t, "hash", doc.PasswordHash)
	assert.Empty(t, doc.Tasks)
	assert.NotNil(t, acc.GetProfileTasks())
}

func TestCreateAccount_DuplicateIsStoreError(t *testing.T) {
	repo := store.NewInMemoryRepository()
	newStoredAccount(t, repo)

	_, err := CreateAccount(context.Background(), repo, "Other", "alice", "hash2")
	assert.True(t, errors.Is(err, common.ErrorAlreadyExists))
}

func TestLoadAccount(t *testing.T) {
	ctx := context.Background()
	repo := store.NewInMemoryRepository()
	orig := newStoredAccount(t, repo)
	_, err := orig.AddTask(ctx, "water plants", tasks.UrgencyDaily)
	require.NoError(t, err)

	loaded, err := LoadAccount(ctx, repo, "alice")
	require.NoError(t, err)
	assert.Equal(t, "Alice", loaded.DisplayName())
	assert.Equal(t, orig.GetProfileTasks(), loaded.GetProfileTasks())

	_, err = LoadAccount(ctx, repo, "nobody")
	assert.True(t, errors.Is(err, common.ErrorNotFound))
}

func TestAddTask_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := store.NewInMemoryRepository()
	acc := newStoredAccount(t, repo)

	task, err := acc.AddTask(ctx, "file taxes", tasks.UrgencyYearly)
	require.NoError(t, err)

	list := acc.GetProfileTasks()
	require.Len(t, list, 1)
	assert.Equal(t, task, list[0])
	assert.Equal(t, "file taxes", list[0].Description)
	assert.Equal(t, tasks.UrgencyYearly, list[0].Urgency)
	assert.False(t, list[0].Completed)
	assert.NotEmpty(t, list[0].ID)

	doc, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, list, doc.Tasks)
}

func TestAddTask_KeepsInsertionOrderAndUniqueIDs(t *testing.T) {
	ctx := context.Background()
	acc := newStoredAccount(t, store.NewInMemoryRepository())

	for _, d := range []string{"a", "b", "c"} {
		_, err := acc.AddTask(ctx, d, tasks.UrgencyWeekly)
		require.NoError(t, err)
	}

	list := acc.GetProfileTasks()
	require.Len(t, list, 3)
	seen := map[string]bool{}
	for i, d := range []string{"a", "b", "c"} {
		assert.Equal(t, d, list[i].Description)
		assert.False(t, seen[list[i].ID])
		seen[list[i].ID] = true
	}
}

func TestDeleteTask(t *testing.T) {
	ctx := context.Background()
	acc := newStoredAccount(t, store.NewInMemoryRepository())
	a, _ := acc.AddTask(ctx, "a", tasks.UrgencyDaily)
	b, _ := acc.AddTask(ctx, "b", tasks.UrgencyDaily)

	before := acc.GetProfileTasks()
	ok, err := acc.DeleteTask(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, before, acc.GetProfileTasks())

	ok, err = acc.DeleteTask(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	list := acc.GetProfileTasks()
	require.Len(t, list, 1)
	assert.Equal(t, b.ID, list[0].ID)
}

func TestToggleAndUpdateUrgency(t *testing.T) {
	ctx := context.Background()
	repo := store.NewInMemoryRepository()
	acc := newStoredAccount(t, repo)
	task, _ := acc.AddTask(ctx, "a", tasks.UrgencyDaily)

	ok, err := acc.ToggleTaskCompletion(ctx, task.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, acc.GetProfileTasks()[0].Completed)

	ok, err = acc.ToggleTaskCompletion(ctx, task.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, acc.GetProfileTasks()[0].Completed)

	ok, err = acc.UpdateTaskUrgency(ctx, task.ID, tasks.UrgencyMonthly)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, tasks.UrgencyMonthly, acc.GetProfileTasks()[0].Urgency)

	ok, err = acc.ToggleTaskCompletion(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = acc.UpdateTaskUrgency(ctx, "missing", tasks.UrgencyYearly)
	require.NoError(t, err)
	assert.False(t, ok)

	doc, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, acc.GetProfileTasks(), doc.Tasks)
}

func TestResetTasks_Idempotent(t *testing.T) {
	ctx := context.Background()
	acc := newStoredAccount(t, store.NewInMemoryRepository())
	_, _ = acc.AddTask(ctx, "a", tasks.UrgencyDaily)

	require.NoError(t, acc.ResetTasks(ctx))
	assert.Empty(t, acc.GetProfileTasks())
	require.NoError(t, acc.ResetTasks(ctx))
	assert.Empty(t, acc.GetProfileTasks())
}

func TestGetProfileTasks_IsSnapshot(t *testing.T) {
	ctx := context.Background()
	acc := newStoredAccount(t, store.NewInMemoryRepository())
	_, _ = acc.AddTask(ctx, "a", tasks.UrgencyDaily)

	snap := acc.GetProfileTasks()
	snap[0].Description = "changed"

	assert.Equal(t, "a", acc.GetProfileTasks()[0].Description)
}

func TestCompletionPercentage_Scenario(t *testing.T) {
	ctx := context.Background()
	acc := newStoredAccount(t, store.NewInMemoryRepository())
	_, err := acc.AddTask(ctx, "daily chore", tasks.UrgencyDaily)
	require.NoError(t, err)
	weekly, err := acc.AddTask(ctx, "weekly review", tasks.UrgencyWeekly)
	require.NoError(t, err)
	_, err = acc.ToggleTaskCompletion(ctx, weekly.ID)
	require.NoError(t, err)

	assert.Equal(t, 0.0, acc.CompletionPercentage(urgency(tasks.UrgencyDaily)))
	assert.Equal(t, 100.0, acc.CompletionPercentage(urgency(tasks.UrgencyWeekly)))
	assert.Equal(t, 50.0, acc.CompletionPercentage(nil))
	assert.Equal(t, 0.0, acc.CompletionPercentage(urgency(tasks.UrgencyYearly)))

	c := acc.Completion()
	assert.Equal(t, 50.0, c.All)
	assert.Equal(t, 100.0, c.ByLevel[tasks.UrgencyWeekly])
}

func TestTaskMutation_StoreFailureKeepsMemory(t *testing.T) {
	ctx := context.Background()
	repo := &flakyAccounts{InMemoryRepository: store.NewInMemoryRepository()}
	acc := newStoredAccount(t, repo)
	task, err := acc.AddTask(ctx, "a", tasks.UrgencyDaily)
	require.NoError(t, err)

	repo.failUpdateTasks = true

	_, err = acc.AddTask(ctx, "b", tasks.UrgencyDaily)
	assert.True(t, errors.Is(err, errStoreDown))
	_, err = acc.ToggleTaskCompletion(ctx, task.ID)
	assert.True(t, errors.Is(err, errStoreDown))
	err = acc.ResetTasks(ctx)
	assert.True(t, errors.Is(err, errStoreDown))

	list := acc.GetProfileTasks()
	require.Len(t, list, 1)
	assert.False(t, list[0].Completed)
}

func TestEditInformation_SeparateUpdates(t *testing.T) {
	ctx := context.Background()
	repo := &flakyAccounts{InMemoryRepository: store.NewInMemoryRepository()}
	acc := newStoredAccount(t, repo)

	require.NoError(t, acc.EditInformation(ctx, "Alice B", "aliceb", "hash2"))
	doc, err := repo.GetByUsername(ctx, "aliceb")
	require.NoError(t, err)
	assert.Equal(t, "Alice B", doc.DisplayName)
	assert.Equal(t, "hash2", doc.PasswordHash)

	repo.failUpdateName = true
	err = acc.EditInformation(ctx, "Alice C", "alicec", "hash3")
	assert.True(t, errors.Is(err, errStoreDown))

	// display name already written, later fields not
	doc, err = repo.GetByUsername(ctx, "aliceb")
	require.NoError(t, err)
	assert.Equal(t, "Alice C", doc.DisplayName)
	assert.Equal(t, "hash2", doc.PasswordHash)

	// memory follows the store field by field
	assert.Equal(t, "Alice C", acc.DisplayName())
	assert.Equal(t, "aliceb", acc.Username())
	assert.Equal(t, "hash2", acc.hash())
}

func TestView_OmitsPasswordHash(t *testing.T) {
	ctx := context.Background()
	acc := newStoredAccount(t, store.NewInMemoryRepository())
	_, _ = acc.AddTask(ctx, "a", tasks.UrgencyDaily)

	v := acc.View()
	assert.Equal(t, "alice", v.Username)
	assert.Equal(t, "Alice", v.DisplayName)
	assert.Len(t, v.Tasks, 1)

	b, err := json.Marshal(v)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "hash")
	assert.NotContains(t, string(b), "password")
}
