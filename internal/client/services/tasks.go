package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/taskkeeper/internal/client/client"
	"github.com/dmitrijs2005/taskkeeper/internal/client/models"
)

// Urgencies accepted by the server, most to least frequent.
var Urgencies = []string{"daily", "weekly", "monthly", "yearly"}

var ErrUnknownUrgency = errors.New("unknown urgency")

// NormalizeUrgency lower-cases u and checks it against Urgencies.
func NormalizeUrgency(u string) (string, error) {
	u = strings.ToLower(strings.TrimSpace(u))
	for _, known := range Urgencies {
		if u == known {
			return u, nil
		}
	}
	return "", fmt.Errorf("%w %q (want one of %s)", ErrUnknownUrgency, u, strings.Join(Urgencies, ", "))
}

type TaskService interface {
	Profile(ctx context.Context) (*models.Profile, error)
	List(ctx context.Context) ([]models.Task, error)
	Add(ctx context.Context, description, urgency string) (*models.Task, error)
	Toggle(ctx context.Context, id string) error
	SetUrgency(ctx context.Context, id, urgency string) error
	Delete(ctx context.Context, id string) error
	Reset(ctx context.Context) error
	Completion(ctx context.Context, urgency string) (*models.Completion, error)
}

type taskService struct {
	client client.Client
}

func NewTaskService(client client.Client) TaskService {
	return &taskService{client: client}
}

func (s *taskService) Profile(ctx context.Context) (*models.Profile, error) {
	return s.client.Profile(ctx)
}

func (s *taskService) List(ctx context.Context) ([]models.Task, error) {
	return s.client.ListTasks(ctx)
}

func (s *taskService) Add(ctx context.Context, description, urgency string) (*models.Task, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, fmt.Errorf("%w: description is empty", client.ErrInvalidInput)
	}
	u, err := NormalizeUrgency(urgency)
	if err != nil {
		return nil, err
	}
	return s.client.AddTask(ctx, description, u)
}

func (s *taskService) Toggle(ctx context.Context, id string) error {
	return s.client.ToggleTask(ctx, id)
}

func (s *taskService) SetUrgency(ctx context.Context, id, urgency string) error {
	u, err := NormalizeUrgency(urgency)
	if err != nil {
		return err
	}
	return s.client.UpdateUrgency(ctx, id, u)
}

func (s *taskService) Delete(ctx context.Context, id string) error {
	return s.client.DeleteTask(ctx, id)
}

func (s *taskService) Reset(ctx context.Context) error {
	return s.client.ResetTasks(ctx)
}

// Completion asks for the percentage over urgency, or over all tasks when
// urgency is empty.
func (s *taskService) Completion(ctx context.Context, urgency string) (*models.Completion, error) {
	if urgency != "" {
		u, err := NormalizeUrgency(urgency)
		if err != nil {
			return nil, err
		}
		urgency = u
	}
	return s.client.Completion(ctx, urgency)
}
