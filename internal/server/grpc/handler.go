package grpc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/server/accounts"
	"github.com/dmitrijs2005/taskkeeper/internal/server/auth"
	"github.com/dmitrijs2005/taskkeeper/internal/server/tasks"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

func (s *GRPCServer) Ping(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return toStruct(map[string]string{"status": "OK"})
}

type registerRequest struct {
	DisplayName string `json:"displayName"`
	Username    string `json:"username"`
	Password    string `json:"password"`
}

func (s *GRPCServer) Register(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in registerRequest
	if err := fromStruct(req, &in); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Username) == "" || in.Password == "" {
		return nil, status.Error(codes.InvalidArgument, "username and password are required")
	}
	if in.DisplayName == "" {
		in.DisplayName = in.Username
	}

	s.logger.Info(ctx, "Registration request")

	ok, err := s.directory.SignIn(ctx, in.DisplayName, in.Username, in.Password)
	if err != nil {
		s.logger.Error(ctx, "registration failed", "error", err)
		return nil, statusFromError(err)
	}

	return toStruct(map[string]bool{"success": ok})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *GRPCServer) Login(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in loginRequest
	if err := fromStruct(req, &in); err != nil {
		return nil, err
	}

	session, err := s.directory.Login(ctx, in.Username, in.Password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			return nil, status.Error(codes.Unauthenticated, "unauthorized")
		}
		s.logger.Error(ctx, "login failed", "error", err)
		return nil, status.Error(codes.Internal, "internal error")
	}

	token, err := auth.GenerateToken(session.SessionID, s.jwtSecret, session.ExpiresAt)
	if err != nil {
		return nil, status.Error(codes.Internal, "internal error")
	}

	return toStruct(map[string]string{
		"sessionId":   session.SessionID,
		"accessToken": token,
		"expiresAt":   session.ExpiresAt.Format(time.RFC3339),
	})
}

func (s *GRPCServer) Logout(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	sessionID, _ := ctx.Value(SessionIDKey).(string)
	if sessionID == "" {
		return nil, status.Error(codes.Unauthenticated, "unauthenticated")
	}
	if err := s.directory.Logout(ctx, sessionID); err != nil {
		return nil, statusFromError(err)
	}
	return &structpb.Struct{}, nil
}

func (s *GRPCServer) GetProfile(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	acc, err := accountFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return toStruct(acc.View())
}

func (s *GRPCServer) ListTasks(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	acc, err := accountFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return toStruct(map[string]any{"tasks": acc.GetProfileTasks()})
}

type taskRequest struct {
	TaskID      string `json:"taskId"`
	Description string `json:"description"`
	Urgency     string `json:"urgency"`
}

func (s *GRPCServer) AddTask(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	acc, err := accountFromContext(ctx)
	if err != nil {
		return nil, err
	}
	var in taskRequest
	if err := fromStruct(req, &in); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Description) == "" {
		return nil, status.Error(codes.InvalidArgument, "description is required")
	}
	urgency, err := tasks.ParseUrgency(in.Urgency)
	if err != nil {
		return nil, statusFromError(err)
	}

	task, err := acc.AddTask(ctx, in.Description, urgency)
	if err != nil {
		s.logger.Error(ctx, "add task failed", "error", err)
		return nil, statusFromError(err)
	}
	return toStruct(map[string]any{"task": task})
}

func (s *GRPCServer) DeleteTask(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.changeTask(ctx, req, func(acc *accounts.Account, in taskRequest) (bool, error) {
		return acc.DeleteTask(ctx, in.TaskID)
	})
}

func (s *GRPCServer) ToggleTask(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.changeTask(ctx, req, func(acc *accounts.Account, in taskRequest) (bool, error) {
		return acc.ToggleTaskCompletion(ctx, in.TaskID)
	})
}

func (s *GRPCServer) UpdateUrgency(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.changeTask(ctx, req, func(acc *accounts.Account, in taskRequest) (bool, error) {
		urgency, err := tasks.ParseUrgency(in.Urgency)
		if err != nil {
			return false, err
		}
		return acc.UpdateTaskUrgency(ctx, in.TaskID, urgency)
	})
}

// changeTask runs a by-id mutation for the calling account. An unknown task
// id is NotFound.
func (s *GRPCServer) changeTask(ctx context.Context, req *structpb.Struct, change func(*accounts.Account, taskRequest) (bool, error)) (*structpb.Struct, error) {
	acc, err := accountFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var in taskRequest
	if err := fromStruct(req, &in); err != nil {
		return nil, err
	}
	if in.TaskID == "" {
		return nil, status.Error(codes.InvalidArgument, "taskId is required")
	}

	changed, err := change(acc, in)
	if err != nil {
		if !errors.Is(err, common.ErrInvalidUrgency) {
			s.logger.Error(ctx, "task update failed", "error", err)
		}
		return nil, statusFromError(err)
	}
	if !changed {
		return nil, status.Error(codes.NotFound, fmt.Sprintf("task %s not found", in.TaskID))
	}
	return toStruct(map[string]bool{"success": true})
}

func (s *GRPCServer) ResetTasks(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	acc, err := accountFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := acc.ResetTasks(ctx); err != nil {
		s.logger.Error(ctx, "reset tasks failed", "error", err)
		return nil, statusFromError(err)
	}
	return toStruct(map[string]bool{"success": true})
}

type completionResponse struct {
	Urgency    string           `json:"urgency,omitempty"`
	Percentage float64          `json:"percentage"`
	Summary    tasks.Completion `json:"summary"`
}

func (s *GRPCServer) Completion(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	acc, err := accountFromContext(ctx)
	if err != nil {
		return nil, err
	}
	var in taskRequest
	if err := fromStruct(req, &in); err != nil {
		return nil, err
	}

	var filter *tasks.Urgency
	if in.Urgency != "" {
		u, err := tasks.ParseUrgency(in.Urgency)
		if err != nil {
			return nil, statusFromError(err)
		}
		filter = &u
	}

	resp := completionResponse{
		Percentage: acc.CompletionPercentage(filter),
		Summary:    acc.Completion(),
	}
	if filter != nil {
		resp.Urgency = filter.String()
	}
	return toStruct(resp)
}

func (s *GRPCServer) DeleteAccount(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	acc, err := accountFromContext(ctx)
	if err != nil {
		return nil, err
	}

	deleted, err := s.directory.DeleteUser(ctx, acc.Username())
	if err != nil {
		s.logger.Error(ctx, "delete account failed", "error", err)
		return nil, statusFromError(err)
	}
	return toStruct(map[string]bool{"deleted": deleted})
}
