// Package accounts is the account and task core: Account owns one user's
// task list and keeps it in sync with the account store, Directory registers,
// authenticates and caches accounts.
package accounts

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	store "github.com/dmitrijs2005/taskkeeper/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/taskkeeper/internal/server/tasks"
)

// Account is a registered user together with its task list.
//
// Every task mutation rewrites the whole list in the store. Writes on one
// Account are serialized by mu, which is held across the store round-trip;
// writers in other processes are not coordinated with and the last write wins.
// The profile fields sit behind info, which is never held during store I/O,
// so directory scans do not wait on in-flight writes.
type Account struct {
	mu   sync.Mutex
	repo store.Repository

	id        string
	createdAt time.Time
	tasks     []tasks.Task

	info         sync.RWMutex
	username     string
	displayName  string
	passwordHash string
}

// View is the transport form of an account. It never carries the password
// hash.
type View struct {
	Username    string       `json:"username"`
	DisplayName string       `json:"displayName"`
	Tasks       []tasks.Task `json:"tasks"`
	CreatedAt   time.Time    `json:"createdAt"`
}

// CreateAccount persists a new account with an empty task list. It does not
// look for an existing username; a collision surfaces as whatever the store
// reports (common.ErrorAlreadyExists for the bundled stores).
func CreateAccount(ctx context.Context, repo store.Repository, displayName, username, passwordHash string) (*Account, error) {
	doc, err := repo.Create(ctx, &models.AccountDocument{
		UserName:     username,
		PasswordHash: passwordHash,
		DisplayName:  displayName,
		Tasks:        []tasks.Task{},
	})
	if err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}
	return fromDocument(repo, doc), nil
}

// LoadAccount hydrates the account stored under username. A missing document
// yields an error wrapping common.ErrorNotFound.
func LoadAccount(ctx context.Context, repo store.Repository, username string) (*Account, error) {
	doc, err := repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("load account %q: %w", username, err)
	}
	return fromDocument(repo, doc), nil
}

func fromDocument(repo store.Repository, doc *models.AccountDocument) *Account {
	return &Account{
		repo:         repo,
		id:           doc.ID,
		username:     doc.UserName,
		displayName:  doc.DisplayName,
		passwordHash: doc.PasswordHash,
		createdAt:    doc.CreatedAt,
		tasks:        tasks.Clone(doc.Tasks),
	}
}

func (a *Account) ID() string { return a.id }

func (a *Account) Username() string {
	a.info.RLock()
	defer a.info.RUnlock()
	return a.username
}

func (a *Account) DisplayName() string {
	a.info.RLock()
	defer a.info.RUnlock()
	return a.displayName
}

func (a *Account) hash() string {
	a.info.RLock()
	defer a.info.RUnlock()
	return a.passwordHash
}

// EditInformation writes display name, username and password hash, each with
// its own store update, and adopts each field in memory once its update
// succeeds. The updates are not atomic: a failure part way leaves the earlier
// fields written, both in the store and in memory.
func (a *Account) EditInformation(ctx context.Context, displayName, username, passwordHash string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.repo.UpdateDisplayName(ctx, a.id, displayName); err != nil {
		return fmt.Errorf("update display name: %w", err)
	}
	a.setInfo(func() { a.displayName = displayName })

	if err := a.repo.UpdateUsername(ctx, a.id, username); err != nil {
		return fmt.Errorf("update username: %w", err)
	}
	a.setInfo(func() { a.username = username })

	if err := a.repo.UpdatePasswordHash(ctx, a.id, passwordHash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	a.setInfo(func() { a.passwordHash = passwordHash })
	return nil
}

func (a *Account) setInfo(fn func()) {
	a.info.Lock()
	defer a.info.Unlock()
	fn()
}

// AddTask appends a new incomplete task and persists the list. Urgency is
// taken as given; callers validate it.
func (a *Account) AddTask(ctx context.Context, description string, urgency tasks.Urgency) (tasks.Task, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	task := tasks.New(description, urgency)
	next := append(tasks.Clone(a.tasks), task)
	if err := a.persist(ctx, next); err != nil {
		return tasks.Task{}, err
	}
	return task, nil
}

// DeleteTask removes the task with id. It reports false, and writes nothing,
// when no such task exists.
func (a *Account) DeleteTask(ctx context.Context, id string) (bool, error) {
	return a.mutate(ctx, id, func(list []tasks.Task, i int) []tasks.Task {
		return append(list[:i], list[i+1:]...)
	})
}

// ToggleTaskCompletion flips the completed flag of the task with id.
func (a *Account) ToggleTaskCompletion(ctx context.Context, id string) (bool, error) {
	return a.mutate(ctx, id, func(list []tasks.Task, i int) []tasks.Task {
		list[i].Completed = !list[i].Completed
		return list
	})
}

// UpdateTaskUrgency sets the urgency of the task with id.
func (a *Account) UpdateTaskUrgency(ctx context.Context, id string, urgency tasks.Urgency) (bool, error) {
	return a.mutate(ctx, id, func(list []tasks.Task, i int) []tasks.Task {
		list[i].Urgency = urgency
		return list
	})
}

// ResetTasks clears the task list.
func (a *Account) ResetTasks(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.persist(ctx, []tasks.Task{})
}

// GetProfileTasks returns a copy of the in-memory task list. It does not
// re-read the store.
func (a *Account) GetProfileTasks() []tasks.Task {
	a.mu.Lock()
	defer a.mu.Unlock()
	return tasks.Clone(a.tasks)
}

// CompletionPercentage is tasks.CompletionPercentage over this account's list.
func (a *Account) CompletionPercentage(urgency *tasks.Urgency) float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return tasks.CompletionPercentage(a.tasks, urgency)
}

// Completion returns the overall and per-urgency completion.
func (a *Account) Completion() tasks.Completion {
	a.mu.Lock()
	defer a.mu.Unlock()
	return tasks.Summarize(a.tasks)
}

func (a *Account) View() View {
	a.mu.Lock()
	list := tasks.Clone(a.tasks)
	a.mu.Unlock()

	a.info.RLock()
	defer a.info.RUnlock()
	return View{
		Username:    a.username,
		DisplayName: a.displayName,
		Tasks:       list,
		CreatedAt:   a.createdAt,
	}
}

// mutate applies fn to a copy of the list at the index of id and persists the
// result. Nothing is written when id is absent.
func (a *Account) mutate(ctx context.Context, id string, fn func(list []tasks.Task, i int) []tasks.Task) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	i := tasks.IndexOf(a.tasks, id)
	if i < 0 {
		return false, nil
	}
	if err := a.persist(ctx, fn(tasks.Clone(a.tasks), i)); err != nil {
		return false, err
	}
	return true, nil
}

// persist writes next to the store and adopts it in memory only on success.
// Callers hold a.mu.
func (a *Account) persist(ctx context.Context, next []tasks.Task) error {
	if err := a.repo.UpdateTasks(ctx, a.id, next); err != nil {
		return fmt.Errorf("save tasks: %w", err)
	}
	a.tasks = next
	return nil
}
