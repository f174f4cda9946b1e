// Package proto declares the taskkeeper.v1.AccountService gRPC service.
//
// Requests and responses are google.protobuf.Struct messages, so the service
// needs no generated code: the descriptor, server registration and client
// below are written by hand against the grpc-go APIs that protoc-gen-go-grpc
// would otherwise emit.
package proto

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "taskkeeper.v1.AccountService"

// Method names.
const (
	MethodPing          = "Ping"
	MethodRegister      = "Register"
	MethodLogin         = "Login"
	MethodLogout        = "Logout"
	MethodGetProfile    = "GetProfile"
	MethodListTasks     = "ListTasks"
	MethodAddTask       = "AddTask"
	MethodDeleteTask    = "DeleteTask"
	MethodToggleTask    = "ToggleTask"
	MethodUpdateUrgency = "UpdateUrgency"
	MethodResetTasks    = "ResetTasks"
	MethodCompletion    = "Completion"
	MethodDeleteAccount = "DeleteAccount"
)

// FullMethod returns "/taskkeeper.v1.AccountService/<method>".
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// AccountServiceServer is the server API for AccountService.
type AccountServiceServer interface {
	Ping(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Register(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Login(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Logout(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetProfile(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListTasks(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AddTask(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteTask(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ToggleTask(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateUrgency(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ResetTasks(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Completion(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteAccount(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(AccountServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(method string, call unaryMethod) grpc.MethodDesc {
	fullMethod := FullMethod(method)
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(AccountServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(AccountServiceServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// AccountService_ServiceDesc is the grpc.ServiceDesc for AccountService.
var AccountService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AccountServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryHandler(MethodPing, AccountServiceServer.Ping),
		unaryHandler(MethodRegister, AccountServiceServer.Register),
		unaryHandler(MethodLogin, AccountServiceServer.Login),
		unaryHandler(MethodLogout, AccountServiceServer.Logout),
		unaryHandler(MethodGetProfile, AccountServiceServer.GetProfile),
		unaryHandler(MethodListTasks, AccountServiceServer.ListTasks),
		unaryHandler(MethodAddTask, AccountServiceServer.AddTask),
		unaryHandler(MethodDeleteTask, AccountServiceServer.DeleteTask),
		unaryHandler(MethodToggleTask, AccountServiceServer.ToggleTask),
		unaryHandler(MethodUpdateUrgency, AccountServiceServer.UpdateUrgency),
		unaryHandler(MethodResetTasks, AccountServiceServer.ResetTasks),
		unaryHandler(MethodCompletion, AccountServiceServer.Completion),
		unaryHandler(MethodDeleteAccount, AccountServiceServer.DeleteAccount),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "taskkeeper/v1/account.proto",
}

// RegisterAccountServiceServer registers srv on s.
func RegisterAccountServiceServer(s grpc.ServiceRegistrar, srv AccountServiceServer) {
	s.RegisterService(&AccountService_ServiceDesc, srv)
}

// AccountServiceClient calls AccountService methods over a client connection.
type AccountServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewAccountServiceClient(cc grpc.ClientConnInterface) *AccountServiceClient {
	return &AccountServiceClient{cc: cc}
}

// Call invokes method with in. A nil in sends an empty struct.
func (c *AccountServiceClient) Call(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	if in == nil {
		in = &structpb.Struct{}
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
