package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to. The real App
// satisfies it; tests provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Unregister(ctx context.Context) error
	List(ctx context.Context) error
	Add(ctx context.Context, args []string) error
	Done(ctx context.Context, args []string) error
	Urgency(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Reset(ctx context.Context) error
	Stats(ctx context.Context, args []string) error
}

const (
	helpLoggedOut = "Available commands: register, login, help, exit"
	helpLoggedIn  = "Available commands: whoami, (l)ist, add [urgency description], done <id>, urgency <id> <level>, delete <id>, reset, stats [urgency], logout, unregister, help, exit"
)

// runREPL reads commands from scanner and dispatches them to a until EOF,
// "exit" or "quit". Command handlers report their own errors, so the loop
// only prints what it could not dispatch.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("tk %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpLoggedOut)
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		case "logout", "whoami", "unregister", "l", "list", "add", "done", "urgency", "delete", "reset", "stats":
			if !a.isLoggedIn() {
				printlnFn("Please login first")
				continue
			}
			dispatchAuthed(ctx, a, cmd, args)

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

func dispatchAuthed(ctx context.Context, a execIface, cmd string, args []string) {
	switch cmd {
	case "logout":
		_ = a.Logout(ctx)
	case "whoami":
		_ = a.WhoAmI(ctx)
	case "unregister":
		_ = a.Unregister(ctx)
	case "l", "list":
		_ = a.List(ctx)
	case "add":
		_ = a.Add(ctx, args)
	case "done":
		_ = a.Done(ctx, args)
	case "urgency":
		_ = a.Urgency(ctx, args)
	case "delete":
		_ = a.Delete(ctx, args)
	case "reset":
		_ = a.Reset(ctx)
	case "stats":
		_ = a.Stats(ctx, args)
	}
}
