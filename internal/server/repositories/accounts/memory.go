package accounts

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/tasks"
	"github.com/google/uuid"
)

// InMemoryRepository keeps documents in process memory. Usernames are unique,
// documents are copied in and out so callers never share state with the store.
type InMemoryRepository struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]*models.AccountDocument
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{byID: make(map[string]*models.AccountDocument)}
}

func (r *InMemoryRepository) Create(_ context.Context, doc *models.AccountDocument) (*models.AccountDocument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.findByUsername(doc.UserName) != nil {
		return nil, common.ErrorAlreadyExists
	}
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.Tasks == nil {
		doc.Tasks = []tasks.Task{}
	}
	doc.CreatedAt = time.Now().UTC()

	r.byID[doc.ID] = copyDoc(doc)
	r.order = append(r.order, doc.ID)
	return doc, nil
}

func (r *InMemoryRepository) GetByUsername(_ context.Context, username string) (*models.AccountDocument, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if doc := r.findByUsername(username); doc != nil {
		return copyDoc(doc), nil
	}
	return nil, common.ErrorNotFound
}

func (r *InMemoryRepository) GetByID(_ context.Context, id string) (*models.AccountDocument, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if doc, ok := r.byID[id]; ok {
		return copyDoc(doc), nil
	}
	return nil, common.ErrorNotFound
}

func (r *InMemoryRepository) List(_ context.Context) ([]*models.AccountDocument, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*models.AccountDocument, 0, len(r.order))
	for _, id := range r.order {
		result = append(result, copyDoc(r.byID[id]))
	}
	return result, nil
}

func (r *InMemoryRepository) UpdateDisplayName(_ context.Context, id string, displayName string) error {
	return r.update(id, func(doc *models.AccountDocument) error {
		doc.DisplayName = displayName
		return nil
	})
}

func (r *InMemoryRepository) UpdateUsername(_ context.Context, id string, username string) error {
	return r.update(id, func(doc *models.AccountDocument) error {
		if other := r.findByUsername(username); other != nil && other.ID != id {
			return common.ErrorAlreadyExists
		}
		doc.UserName = username
		return nil
	})
}

func (r *InMemoryRepository) UpdatePasswordHash(_ context.Context, id string, passwordHash string) error {
	return r.update(id, func(doc *models.AccountDocument) error {
		doc.PasswordHash = passwordHash
		return nil
	})
}

func (r *InMemoryRepository) UpdateTasks(_ context.Context, id string, list []tasks.Task) error {
	return r.update(id, func(doc *models.AccountDocument) error {
		doc.Tasks = tasks.Clone(list)
		return nil
	})
}

func (r *InMemoryRepository) Delete(_ context.Context, username string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc := r.findByUsername(username)
	if doc == nil {
		return 0, nil
	}
	delete(r.byID, doc.ID)
	for i, id := range r.order {
		if id == doc.ID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return 1, nil
}

func (r *InMemoryRepository) update(id string, fn func(doc *models.AccountDocument) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, ok := r.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	return fn(doc)
}

// findByUsername expects r.mu to be held.
func (r *InMemoryRepository) findByUsername(username string) *models.AccountDocument {
	for _, id := range r.order {
		if doc := r.byID[id]; doc.UserName == username {
			return doc
		}
	}
	return nil
}

func copyDoc(doc *models.AccountDocument) *models.AccountDocument {
	c := *doc
	c.Tasks = tasks.Clone(doc.Tasks)
	return &c
}
