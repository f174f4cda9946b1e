package client

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	pb "github.com/dmitrijs2005/taskkeeper/internal/proto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// fakeCaller records requests and replies with canned responses per method.
type fakeCaller struct {
	requests  map[string]map[string]any
	responses map[string]map[string]any
	errs      map[string]error
}

func newFakeCaller() *fakeCaller {
	return &fakeCaller{
		requests:  map[string]map[string]any{},
		responses: map[string]map[string]any{},
		errs:      map[string]error{},
	}
}

func (f *fakeCaller) Call(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	f.requests[method] = in.AsMap()
	if err := f.errs[method]; err != nil {
		return nil, err
	}
	return structpb.NewStruct(f.responses[method])
}

func newTestClient() (*GRPCClient, *fakeCaller) {
	f := newFakeCaller()
	return &GRPCClient{client: f}, f
}

func TestInterceptor_AttachesToken(t *testing.T) {
	c := &GRPCClient{}
	c.SetAccessToken("A1")

	var got []string
	invoker := func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		md, _ := metadata.FromOutgoingContext(ctx)
		got = md.Get(common.AccessTokenHeaderName)
		return nil
	}

	ctx := metadata.AppendToOutgoingContext(context.Background(), common.AccessTokenHeaderName, "stale")
	require.NoError(t, c.accessTokenInterceptor(ctx, "/svc/Method", nil, nil, nil, invoker))
	assert.Equal(t, []string{"A1"}, got)
}

func TestInterceptor_NoTokenNoHeader(t *testing.T) {
	c := &GRPCClient{}

	var got []string
	invoker := func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		md, _ := metadata.FromOutgoingContext(ctx)
		got = md.Get(common.AccessTokenHeaderName)
		return status.Error(codes.Internal, "boom")
	}

	err := c.accessTokenInterceptor(context.Background(), "/svc/Method", nil, nil, nil, invoker)
	require.Error(t, err)
	assert.Empty(t, got)
}

func TestMapError(t *testing.T) {
	c := &GRPCClient{}

	require.Equal(t, ErrUnauthorized, c.mapError(status.Error(codes.Unauthenticated, "x")))
	require.Equal(t, ErrUnauthorized, c.mapError(status.Error(codes.PermissionDenied, "x")))
	require.Equal(t, ErrUnavailable, c.mapError(status.Error(codes.Unavailable, "x")))
	require.Equal(t, ErrUnavailable, c.mapError(status.Error(codes.DeadlineExceeded, "x")))
	require.Equal(t, ErrNotFound, c.mapError(status.Error(codes.NotFound, "x")))

	err := c.mapError(status.Error(codes.InvalidArgument, "description is required"))
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "description is required")

	require.ErrorContains(t, c.mapError(errors.New("plain")), "rpc error:")
	require.NoError(t, c.mapError(nil))
}

func TestPing(t *testing.T) {
	c, f := newTestClient()

	f.responses[pb.MethodPing] = map[string]any{"status": "OK"}
	require.NoError(t, c.Ping(context.Background()))

	f.responses[pb.MethodPing] = map[string]any{"status": "NOT_OK"}
	require.ErrorIs(t, c.Ping(context.Background()), ErrUnavailable)

	f.errs[pb.MethodPing] = status.Error(codes.Unavailable, "down")
	require.ErrorIs(t, c.Ping(context.Background()), ErrUnavailable)
}

func TestRegister(t *testing.T) {
	c, f := newTestClient()
	f.responses[pb.MethodRegister] = map[string]any{"success": true}

	ok, err := c.Register(context.Background(), "Alice", "alice", []byte("pw"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, map[string]any{"displayName": "Alice", "username": "alice", "password": "pw"}, f.requests[pb.MethodRegister])

	f.responses[pb.MethodRegister] = map[string]any{"success": false}
	ok, err = c.Register(context.Background(), "Alice", "alice", []byte("pw"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLogin_StoresToken(t *testing.T) {
	c, f := newTestClient()
	expires := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	f.responses[pb.MethodLogin] = map[string]any{
		"sessionId":   "sid",
		"accessToken": "tok",
		"expiresAt":   expires.Format(time.RFC3339),
	}

	s, err := c.Login(context.Background(), "alice", []byte("pw"))
	require.NoError(t, err)
	assert.Equal(t, "alice", s.Username)
	assert.Equal(t, "tok", s.AccessToken)
	assert.True(t, expires.Equal(s.ExpiresAt))
	assert.Equal(t, "tok", c.token())
}

func TestLogin_Unauthorized(t *testing.T) {
	c, f := newTestClient()
	f.errs[pb.MethodLogin] = status.Error(codes.Unauthenticated, "unauthorized")

	_, err := c.Login(context.Background(), "alice", []byte("bad"))
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.Empty(t, c.token())
}

func TestLogout_ClearsToken(t *testing.T) {
	c, _ := newTestClient()
	c.SetAccessToken("tok")

	require.NoError(t, c.Logout(context.Background()))
	assert.Empty(t, c.token())
}

func TestTaskCalls(t *testing.T) {
	c, f := newTestClient()
	ctx := context.Background()

	f.responses[pb.MethodAddTask] = map[string]any{"task": map[string]any{
		"id": "t1", "description": "water plants", "completed": false, "urgency": "daily", "createdAt": "2024-01-01T00:00:00Z",
	}}
	task, err := c.AddTask(ctx, "water plants", "daily")
	require.NoError(t, err)
	assert.Equal(t, "t1", task.ID)
	assert.Equal(t, "daily", task.Urgency)
	assert.Equal(t, map[string]any{"description": "water plants", "urgency": "daily"}, f.requests[pb.MethodAddTask])

	f.responses[pb.MethodListTasks] = map[string]any{"tasks": []any{
		map[string]any{"id": "t1", "description": "water plants", "urgency": "daily"},
	}}
	list, err := c.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "water plants", list[0].Description)

	require.NoError(t, c.ToggleTask(ctx, "t1"))
	assert.Equal(t, "t1", f.requests[pb.MethodToggleTask]["taskId"])

	require.NoError(t, c.UpdateUrgency(ctx, "t1", "weekly"))
	assert.Equal(t, "weekly", f.requests[pb.MethodUpdateUrgency]["urgency"])

	f.errs[pb.MethodDeleteTask] = status.Error(codes.NotFound, "task t9 not found")
	require.ErrorIs(t, c.DeleteTask(ctx, "t9"), ErrNotFound)

	require.NoError(t, c.ResetTasks(ctx))
}

func TestCompletion(t *testing.T) {
	c, f := newTestClient()
	f.responses[pb.MethodCompletion] = map[string]any{
		"urgency":    "weekly",
		"percentage": 50.0,
		"summary":    map[string]any{"all": 25.0, "byUrgency": map[string]any{"weekly": 50.0}},
	}

	got, err := c.Completion(context.Background(), "weekly")
	require.NoError(t, err)
	assert.Equal(t, "weekly", got.Urgency)
	assert.InDelta(t, 50.0, got.Percentage, 1e-9)
	assert.InDelta(t, 50.0, got.Summary.ByUrgency["weekly"], 1e-9)
	assert.Equal(t, map[string]any{"urgency": "weekly"}, f.requests[pb.MethodCompletion])

	_, err = c.Completion(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, f.requests[pb.MethodCompletion])
}

func TestProfileAndDeleteAccount(t *testing.T) {
	c, f := newTestClient()
	c.SetAccessToken("tok")

	f.responses[pb.MethodGetProfile] = map[string]any{"username": "alice", "displayName": "Alice", "tasks": []any{}}
	p, err := c.Profile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Alice", p.DisplayName)

	f.responses[pb.MethodDeleteAccount] = map[string]any{"deleted": true}
	deleted, err := c.DeleteAccount(context.Background())
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Empty(t, c.token())
}

func TestClose_WithoutConnection(t *testing.T) {
	assert.NoError(t, (&GRPCClient{}).Close())
}
