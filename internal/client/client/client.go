package client

import (
	"context"

	"github.com/dmitrijs2005/taskkeeper/internal/client/models"
)

type Client interface {
	Close() error
	SetAccessToken(token string)
	Ping(ctx context.Context) error
	Register(ctx context.Context, displayName, username string, password []byte) (bool, error)
	Login(ctx context.Context, username string, password []byte) (*models.Session, error)
	Logout(ctx context.Context) error
	Profile(ctx context.Context) (*models.Profile, error)
	ListTasks(ctx context.Context) ([]models.Task, error)
	AddTask(ctx context.Context, description, urgency string) (*models.Task, error)
	ToggleTask(ctx context.Context, taskID string) error
	UpdateUrgency(ctx context.Context, taskID, urgency string) error
	DeleteTask(ctx context.Context, taskID string) error
	ResetTasks(ctx context.Context) error
	Completion(ctx context.Context, urgency string) (*models.Completion, error)
	DeleteAccount(ctx context.Context) (bool, error)
}
