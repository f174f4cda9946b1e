// Package cli provides the interactive taskkeeper command-line client.
//
// It wires configuration, the local session database, the gRPC client and a
// REPL. On start it resumes a saved session if one is still valid, starts a
// background connectivity watcher and then executes user commands until exit.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher and runREPL for details.
package cli
