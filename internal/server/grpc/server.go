// Package grpc is the gRPC facade over the account directory. It serves
// taskkeeper.v1.AccountService with Struct-encoded messages.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	pb "github.com/dmitrijs2005/taskkeeper/internal/proto"
	"github.com/dmitrijs2005/taskkeeper/internal/server/accounts"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"google.golang.org/grpc"
)

// Directory is the part of accounts.Directory the facade uses.
type Directory interface {
	SignIn(ctx context.Context, displayName, username, password string) (bool, error)
	Login(ctx context.Context, username, password string) (*models.Session, error)
	Logout(ctx context.Context, sessionID string) error
	SessionUserObject(ctx context.Context, sessionID string) (*accounts.Account, error)
	DeleteUser(ctx context.Context, username string) (bool, error)
}

type GRPCServer struct {
	address   string
	directory Directory
	logger    logging.Logger
	jwtSecret []byte
}

var _ pb.AccountServiceServer = (*GRPCServer)(nil)

func NewGRPCServer(a string, l logging.Logger, d Directory, secretKey string) *GRPCServer {
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		directory: d,
		jwtSecret: []byte(secretKey),
	}
}

// NewServer builds a grpc.Server with the access token interceptor and the
// service registered.
func (s *GRPCServer) NewServer(opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts, grpc.ChainUnaryInterceptor(s.accessTokenInterceptor))
	srv := grpc.NewServer(opts...)
	pb.RegisterAccountServiceServer(srv, s)
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := s.NewServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", s.address)

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
