package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/juizlab/internal/client/session"
	"github.com/dmitrijs2005/juizlab/internal/common"
)

// Register prompts for username, email and password and creates an account.
func (a *App) Register(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.auth.Register(ctx, username, email, password); err != nil {
		return err
	}

	printlnFn("Account created. Use 'login' to sign in.")
	return nil
}

// Login signs in and, when a command was interrupted by an expired session,
// runs it again.
func (a *App) Login(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	id, err := a.auth.Login(ctx, username, password)
	if err != nil {
		return err
	}
	printlnFn("Welcome,", id.Username)

	// wait for the shell to see the new credential so the prompt is current
	_, _ = a.checkNow(ctx, a.shell)

	if next := a.nav.take(); next != "" {
		printlnFn("Resuming:", next)
		dispatch(ctx, a, next)
	}
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.shell.Logout(ctx); err != nil {
		return err
	}
	printlnFn("Signed out.")
	return nil
}

func (a *App) WhoAmI(_ context.Context) error {
	st := a.shell.State()
	switch st.Status {
	case session.Authenticated:
		printlnFn(fmt.Sprintf("%s (user #%d)", st.Display(), st.Identity.UserID))
		if p := st.Profile; p != nil {
			if p.Email != "" {
				printlnFn("  email:", p.Email)
			}
			if p.Bio != "" {
				printlnFn("  bio:", p.Bio)
			}
		}
	case session.Checking:
		printlnFn("Checking session...")
	case session.Anonymous:
		printlnFn("Not signed in.")
	default:
		printlnFn("Session not confirmed yet (server unreachable?).")
	}
	return nil
}

func (a *App) Recheck(ctx context.Context) error {
	st, err := a.checkNow(ctx, a.shell)
	if err != nil || !st.Resolved() {
		printlnFn("Session still unconfirmed:", st.Status.String())
		return nil
	}
	printlnFn("Session:", st.Status.String())
	return nil
}
