// Package client is the CLI's transport to the taskkeeper server.
//
// GRPCClient implements Client over the AccountService gRPC facade. It keeps
// the current access token and attaches it to every call through a unary
// interceptor. Server status codes are mapped to the sentinel errors in
// errors.go so callers can match them with errors.Is.
//
// InitDatabase and RunMigrations bootstrap the local sqlite file the CLI uses
// to remember a session between runs.
package client
