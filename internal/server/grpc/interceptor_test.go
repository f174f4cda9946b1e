package grpc

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	pb "github.com/dmitrijs2005/taskkeeper/internal/proto"
	"github.com/dmitrijs2005/taskkeeper/internal/server/accounts"
	"github.com/dmitrijs2005/taskkeeper/internal/server/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func newInterceptorServer(t *testing.T) (*GRPCServer, *accounts.Directory) {
	t.Helper()
	dir := newTestDirectory()
	return NewGRPCServer("", logging.Nop{}, dir, testSecret), dir
}

func incoming(token string) context.Context {
	md := metadata.New(map[string]string{common.AccessTokenHeaderName: token})
	return metadata.NewIncomingContext(context.Background(), md)
}

func mustNotCall(t *testing.T) grpc.UnaryHandler {
	return func(ctx context.Context, req any) (any, error) {
		t.Fatal("handler should not be called")
		return nil, nil
	}
}

func TestInterceptor_PublicMethodsSkipAuth(t *testing.T) {
	s, _ := newInterceptorServer(t)

	for _, m := range []string{pb.MethodPing, pb.MethodRegister, pb.MethodLogin} {
		called := false
		h := func(ctx context.Context, req any) (any, error) {
			called = true
			return "ok", nil
		}

		resp, err := s.accessTokenInterceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: pb.FullMethod(m)}, h)
		require.NoError(t, err, m)
		assert.True(t, called, m)
		assert.Equal(t, "ok", resp)
	}
}

func TestInterceptor_MissingToken(t *testing.T) {
	s, _ := newInterceptorServer(t)

	info := &grpc.UnaryServerInfo{FullMethod: pb.FullMethod(pb.MethodListTasks)}
	_, err := s.accessTokenInterceptor(context.Background(), nil, info, mustNotCall(t))

	assert.Equal(t, codes.Unauthenticated, status.Code(err))
	assert.Equal(t, "missing token", status.Convert(err).Message())
}

func TestInterceptor_InvalidToken(t *testing.T) {
	s, _ := newInterceptorServer(t)

	info := &grpc.UnaryServerInfo{FullMethod: pb.FullMethod(pb.MethodListTasks)}
	_, err := s.accessTokenInterceptor(incoming("not-a-valid-jwt"), nil, info, mustNotCall(t))

	assert.Equal(t, codes.Unauthenticated, status.Code(err))
	assert.Equal(t, "invalid token", status.Convert(err).Message())
}

func TestInterceptor_ExpiredToken(t *testing.T) {
	s, _ := newInterceptorServer(t)

	token, err := auth.GenerateToken("sid", []byte(testSecret), time.Now().Add(-time.Minute))
	require.NoError(t, err)

	info := &grpc.UnaryServerInfo{FullMethod: pb.FullMethod(pb.MethodListTasks)}
	_, err = s.accessTokenInterceptor(incoming(token), nil, info, mustNotCall(t))

	assert.Equal(t, codes.Unauthenticated, status.Code(err))
	assert.Equal(t, "token expired", status.Convert(err).Message())
}

func TestInterceptor_UnknownSession(t *testing.T) {
	s, _ := newInterceptorServer(t)

	token, err := auth.GenerateToken("no-such-session", []byte(testSecret), time.Now().Add(time.Hour))
	require.NoError(t, err)

	info := &grpc.UnaryServerInfo{FullMethod: pb.FullMethod(pb.MethodListTasks)}
	_, err = s.accessTokenInterceptor(incoming(token), nil, info, mustNotCall(t))

	assert.Equal(t, codes.Unauthenticated, status.Code(err))
	assert.Equal(t, "session not found", status.Convert(err).Message())
}

func TestInterceptor_ValidToken_SetsAccount(t *testing.T) {
	s, dir := newInterceptorServer(t)
	ctx := context.Background()

	ok, err := dir.SignIn(ctx, "Alice", "alice", "pw")
	require.NoError(t, err)
	require.True(t, ok)
	session, err := dir.Login(ctx, "alice", "pw")
	require.NoError(t, err)

	token, err := auth.GenerateToken(session.SessionID, []byte(testSecret), session.ExpiresAt)
	require.NoError(t, err)

	var gotAccount *accounts.Account
	var gotSession any
	h := func(ctx context.Context, req any) (any, error) {
		gotAccount, _ = ctx.Value(AccountKey).(*accounts.Account)
		gotSession = ctx.Value(SessionIDKey)
		return "ok", nil
	}

	info := &grpc.UnaryServerInfo{FullMethod: pb.FullMethod(pb.MethodListTasks)}
	_, err = s.accessTokenInterceptor(incoming(token), nil, info, h)
	require.NoError(t, err)

	require.NotNil(t, gotAccount)
	assert.Equal(t, "alice", gotAccount.Username())
	assert.Equal(t, session.SessionID, gotSession)
}
