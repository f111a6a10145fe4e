package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/juizlab/internal/client/client"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

var (
	errSignInRequired = errors.New("sign-in required")
	errNotOwner       = errors.New("you can only manage content you created")
	errUsage          = errors.New("usage")
)

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Recheck(ctx context.Context) error
	List(ctx context.Context, args []string) error
	Show(ctx context.Context, args []string) error
	Add(ctx context.Context, args []string) error
	Edit(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Profile(ctx context.Context, args []string) error
}

// runREPL reads commands from scanner until EOF, "exit" or "quit".
//
//	Not logged in:
//	  - help, register, login, whoami, recheck
//	  - list <kind>, show <kind> <id>, profile <user id>
//	  - exit | quit
//
//	Logged in, additionally:
//	  - add <kind>, edit recipe <id>, delete <kind> <id>, logout
//	  - profile (own page), edit profile
//
// Handler errors are reported to the user and never stop the loop.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("juiz %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		if quit := dispatch(ctx, a, scanner.Text()); quit {
			return
		}
		if ctx.Err() != nil {
			return
		}
	}
}

// dispatch runs one command line and reports whether the REPL should stop.
func dispatch(ctx context.Context, a execIface, line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return false
	}
	cmd, args := parts[0], parts[1:]

	var err error
	switch cmd {
	case "help":
		if a.isLoggedIn() {
			printlnFn("Available commands: (l)ist, show, profile, add, edit, delete, whoami, recheck, logout, exit")
		} else {
			printlnFn("Available commands: register, login, (l)ist, show, profile, whoami, recheck, exit")
		}
	case "register":
		err = a.Register(ctx)
	case "login":
		err = a.Login(ctx)
	case "logout":
		err = a.Logout(ctx)
	case "whoami":
		err = a.WhoAmI(ctx)
	case "recheck":
		err = a.Recheck(ctx)
	case "l", "list":
		err = a.List(ctx, args)
	case "show":
		err = a.Show(ctx, args)
	case "add":
		err = a.Add(ctx, args)
	case "edit":
		err = a.Edit(ctx, args)
	case "delete":
		err = a.Delete(ctx, args)
	case "profile":
		err = a.Profile(ctx, args)
	case "exit", "quit":
		printlnFn("Bye!")
		return true
	default:
		printlnFn("Unknown command:", cmd)
	}

	if err != nil {
		printlnFn(describe(err))
	}
	return false
}

// describe turns a command error into the message shown to the user.
func describe(err error) string {
	var ve *client.ValidationError
	switch {
	case errors.Is(err, errSignInRequired):
		return "Please log in to continue; 'login' will take you back."
	case errors.Is(err, errUsage):
		return "Usage: " + strings.TrimPrefix(err.Error(), errUsage.Error()+": ")
	case errors.Is(err, errNotOwner):
		return "Not allowed: " + errNotOwner.Error() + "."
	case errors.Is(err, client.ErrUnauthorized):
		return "Invalid username or password."
	case errors.Is(err, client.ErrForbidden):
		return "Not allowed: the server refused this action."
	case errors.Is(err, client.ErrUnavailable):
		return "Server unavailable, try again later."
	case errors.Is(err, client.ErrNotFound):
		return "Not found (or not yours)."
	case errors.Is(err, client.ErrConflict):
		return "Conflict: the resource changed meanwhile."
	case errors.As(err, &ve):
		return "Invalid input: " + ve.Error()
	default:
		return "Error: " + err.Error()
	}
}

func usage(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{errUsage}, args...)...)
}
