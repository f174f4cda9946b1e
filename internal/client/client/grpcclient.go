package client

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/client/models"
	"github.com/dmitrijs2005/taskkeeper/internal/common"
	pb "github.com/dmitrijs2005/taskkeeper/internal/proto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// caller is the slice of pb.AccountServiceClient the client depends on.
type caller interface {
	Call(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      caller

	mu          sync.RWMutex
	accessToken string
}

var _ Client = (*GRPCClient)(nil)

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if token := s.token(); token != "" {
		ctx = withAccessToken(ctx, token)
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

func NewTaskKeeperClient(endpointURL string) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}
	if err := c.InitGRPCClient(); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient() error {
	conn, err := grpc.NewClient(s.endpointURL, grpc.WithTransportCredentials(insecure.NewCredentials()), grpc.WithUnaryInterceptor(s.accessTokenInterceptor))
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = pb.NewAccountServiceClient(conn)
	return nil
}

func (s *GRPCClient) token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// SetAccessToken replaces the token sent with subsequent calls. An empty
// token sends none.
func (s *GRPCClient) SetAccessToken(token string) {
	s.mu.Lock()
	s.accessToken = token
	s.mu.Unlock()
}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

// call sends in (any JSON-encodable value, nil for an empty message) and
// decodes the response into out when out is not nil.
func (s *GRPCClient) call(ctx context.Context, method string, in any, out any) error {
	req := &structpb.Struct{}
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		if err := protojson.Unmarshal(b, req); err != nil {
			return err
		}
	}

	resp, err := s.client.Call(ctx, method, req)
	if err != nil {
		return s.mapError(err)
	}
	if out == nil {
		return nil
	}

	b, err := protojson.Marshal(resp)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	var resp struct {
		Status string `json:"status"`
	}
	if err := s.call(ctx, pb.MethodPing, nil, &resp); err != nil {
		return err
	}
	if resp.Status != "OK" {
		return ErrUnavailable
	}
	return nil
}

func (s *GRPCClient) Register(ctx context.Context, displayName, username string, password []byte) (bool, error) {
	req := map[string]string{"displayName": displayName, "username": username, "password": string(password)}

	var resp struct {
		Success bool `json:"success"`
	}
	if err := s.call(ctx, pb.MethodRegister, req, &resp); err != nil {
		return false, err
	}
	return resp.Success, nil
}

// Login authenticates and, on success, starts sending the new access token.
func (s *GRPCClient) Login(ctx context.Context, username string, password []byte) (*models.Session, error) {
	req := map[string]string{"username": username, "password": string(password)}

	var resp struct {
		AccessToken string    `json:"accessToken"`
		ExpiresAt   time.Time `json:"expiresAt"`
	}
	if err := s.call(ctx, pb.MethodLogin, req, &resp); err != nil {
		return nil, err
	}

	s.SetAccessToken(resp.AccessToken)
	return &models.Session{Username: username, AccessToken: resp.AccessToken, ExpiresAt: resp.ExpiresAt}, nil
}

func (s *GRPCClient) Logout(ctx context.Context) error {
	if err := s.call(ctx, pb.MethodLogout, nil, nil); err != nil {
		return err
	}
	s.SetAccessToken("")
	return nil
}

func (s *GRPCClient) Profile(ctx context.Context) (*models.Profile, error) {
	var p models.Profile
	if err := s.call(ctx, pb.MethodGetProfile, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *GRPCClient) ListTasks(ctx context.Context) ([]models.Task, error) {
	var resp struct {
		Tasks []models.Task `json:"tasks"`
	}
	if err := s.call(ctx, pb.MethodListTasks, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Tasks, nil
}

func (s *GRPCClient) AddTask(ctx context.Context, description, urgency string) (*models.Task, error) {
	req := map[string]string{"description": description, "urgency": urgency}

	var resp struct {
		Task models.Task `json:"task"`
	}
	if err := s.call(ctx, pb.MethodAddTask, req, &resp); err != nil {
		return nil, err
	}
	return &resp.Task, nil
}

func (s *GRPCClient) ToggleTask(ctx context.Context, taskID string) error {
	return s.call(ctx, pb.MethodToggleTask, map[string]string{"taskId": taskID}, nil)
}

func (s *GRPCClient) UpdateUrgency(ctx context.Context, taskID, urgency string) error {
	return s.call(ctx, pb.MethodUpdateUrgency, map[string]string{"taskId": taskID, "urgency": urgency}, nil)
}

func (s *GRPCClient) DeleteTask(ctx context.Context, taskID string) error {
	return s.call(ctx, pb.MethodDeleteTask, map[string]string{"taskId": taskID}, nil)
}

func (s *GRPCClient) ResetTasks(ctx context.Context) error {
	return s.call(ctx, pb.MethodResetTasks, nil, nil)
}

func (s *GRPCClient) Completion(ctx context.Context, urgency string) (*models.Completion, error) {
	var req map[string]string
	if urgency != "" {
		req = map[string]string{"urgency": urgency}
	}

	var c models.Completion
	if err := s.call(ctx, pb.MethodCompletion, req, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *GRPCClient) DeleteAccount(ctx context.Context) (bool, error) {
	var resp struct {
		Deleted bool `json:"deleted"`
	}
	if err := s.call(ctx, pb.MethodDeleteAccount, nil, &resp); err != nil {
		return false, err
	}
	if resp.Deleted {
		s.SetAccessToken("")
	}
	return resp.Deleted, nil
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return ErrUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	case codes.NotFound:
		return ErrNotFound
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", ErrInvalidInput, st.Message())
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
