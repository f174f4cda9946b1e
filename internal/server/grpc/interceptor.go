package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	pb "github.com/dmitrijs2005/taskkeeper/internal/proto"
	"github.com/dmitrijs2005/taskkeeper/internal/server/accounts"
	"github.com/dmitrijs2005/taskkeeper/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const (
	AccountKey   ctxKey = "account"
	SessionIDKey ctxKey = "sessionID"
)

// publicMethods can be called without an access token.
var publicMethods = map[string]bool{
	pb.FullMethod(pb.MethodPing):     true,
	pb.FullMethod(pb.MethodRegister): true,
	pb.FullMethod(pb.MethodLogin):    true,
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {

	if publicMethods[info.FullMethod] {
		return handler(ctx, req)
	}

	var accessToken string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		values := md.Get(common.AccessTokenHeaderName)
		if len(values) > 0 {
			accessToken = values[0]
		}
	}
	if len(accessToken) == 0 {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	sessionID, err := auth.GetSessionIDFromToken(accessToken, s.jwtSecret)
	if err != nil {
		if errors.Is(err, common.ErrTokenExpired) {
			return nil, status.Error(codes.Unauthenticated, "token expired")
		}
		return nil, status.Error(codes.Unauthenticated, "invalid token")
	}

	acc, err := s.directory.SessionUserObject(ctx, sessionID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, status.Error(codes.Unauthenticated, "session not found")
		}
		s.logger.Error(ctx, "session lookup failed", "error", err)
		return nil, status.Error(codes.Internal, "internal error")
	}

	ctx = context.WithValue(ctx, SessionIDKey, sessionID)
	ctx = context.WithValue(ctx, AccountKey, acc)

	return handler(ctx, req)
}

func accountFromContext(ctx context.Context) (*accounts.Account, error) {
	acc, ok := ctx.Value(AccountKey).(*accounts.Account)
	if !ok || acc == nil {
		return nil, status.Error(codes.Unauthenticated, "unauthenticated")
	}
	return acc, nil
}
